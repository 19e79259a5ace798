package persona

import (
	"fmt"
	"strings"

	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/config"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/workspace"
)

// Apply persists resolved fields into the two workspace documents and,
// only when the assistant name actually changed, into configuration.
func Apply(f Fields, ws *workspace.Workspace, cfg *config.Config) error {
	var profile []string
	if f.UserName != "" {
		profile = append(profile, fmt.Sprintf("- Name: %s", f.UserName))
		cfg.Assistant.UserName = f.UserName
	}
	if f.Language != "" {
		profile = append(profile, fmt.Sprintf("- Preferred language: %s", f.Language))
		cfg.Assistant.Language = f.Language
	}
	if len(profile) > 0 {
		if err := ws.UpsertMemorySection("User Profile", strings.Join(profile, "\n")); err != nil {
			return fmt.Errorf("failed to update memory document: %w", err)
		}
	}

	if f.AssistantName != "" && f.AssistantName != cfg.Assistant.Name {
		if err := ws.ReplaceIdentitySentence(f.AssistantName); err != nil {
			return fmt.Errorf("failed to update identity document: %w", err)
		}
		cfg.Assistant.Name = f.AssistantName
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
	}
	return nil
}

// FromWorkspace seeds current fields from the durable documents. The
// memory document's "User Profile" section is the source of truth for
// user name and language; configuration only backs the assistant name,
// which is the one field Apply persists there.
func FromWorkspace(ws *workspace.Workspace, cfg *config.Config) Fields {
	f := Fields{
		AssistantName: cfg.Assistant.Name,
		UserName:      cfg.Assistant.UserName,
		Language:      cfg.Assistant.Language,
	}

	for _, line := range strings.Split(ws.ReadMemorySection("User Profile"), "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if v, ok := strings.CutPrefix(line, "Name:"); ok {
			if v = strings.TrimSpace(v); v != "" {
				f.UserName = v
			}
		}
		if v, ok := strings.CutPrefix(line, "Preferred language:"); ok {
			if v = strings.TrimSpace(v); v != "" {
				f.Language = v
			}
		}
	}
	return f
}
