// Package workspace manages the markdown documents that hold the
// assistant's identity and long-term memory.
//
// Three files live under the data directory:
//
//	SOUL.md   - personality and identity ("You are ..." lives here)
//	MEMORY.md - durable facts, organized as "## heading" sections
//	AGENTS.md - behavior instructions
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Document names
const (
	SoulFile   = "SOUL.md"
	MemoryFile = "MEMORY.md"
	AgentsFile = "AGENTS.md"
)

const defaultSoul = `# Soul

You are Gnami, a personal assistant.

Be concise, helpful and honest. Answer in the user's preferred language.
`

// Workspace reads and writes documents under a base directory
type Workspace struct {
	dir string
}

// New creates a workspace rooted at dir, seeding SOUL.md on first run
func New(dir string) (*Workspace, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}
	w := &Workspace{dir: dir}

	soulPath := filepath.Join(dir, SoulFile)
	if _, err := os.Stat(soulPath); os.IsNotExist(err) {
		if err := os.WriteFile(soulPath, []byte(defaultSoul), 0o644); err != nil {
			return nil, fmt.Errorf("failed to seed %s: %w", SoulFile, err)
		}
	}
	return w, nil
}

// Dir returns the workspace root
func (w *Workspace) Dir() string {
	return w.dir
}

// Read returns a document's content, or "" when it doesn't exist
func (w *Workspace) Read(name string) string {
	data, err := os.ReadFile(filepath.Join(w.dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Write replaces a document's content
func (w *Workspace) Write(name, text string) error {
	if err := os.WriteFile(filepath.Join(w.dir, name), []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// BuildContext joins the documents for injection into the system prompt
func (w *Workspace) BuildContext() string {
	var parts []string

	if soul := w.Read(SoulFile); soul != "" {
		parts = append(parts, "# Personality (SOUL.md)\n\n"+soul)
	}
	if agents := w.Read(AgentsFile); agents != "" {
		parts = append(parts, "# Agent Instructions (AGENTS.md)\n\n"+agents)
	}
	if memory := w.Read(MemoryFile); memory != "" {
		parts = append(parts, "# User Memory (MEMORY.md)\n\n"+memory)
	}

	return strings.Join(parts, "\n\n---\n\n")
}

// ReadMemorySection returns the body of the "## heading" section of
// MEMORY.md, or "" when the section doesn't exist. The key match is
// case-insensitive.
func (w *Workspace) ReadMemorySection(heading string) string {
	content := w.Read(MemoryFile)
	if content == "" {
		return ""
	}

	lines := strings.Split(content, "\n")
	start := -1
	end := len(lines)
	for i, line := range lines {
		if start == -1 {
			if strings.EqualFold(strings.TrimSpace(line), "## "+heading) {
				start = i
			}
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "## ") {
			end = i
			break
		}
	}
	if start == -1 {
		return ""
	}
	return strings.TrimSpace(strings.Join(lines[start+1:end], "\n"))
}

// UpsertMemorySection replaces the "## heading" section of MEMORY.md, or
// appends it when missing. The key match is case-insensitive.
func (w *Workspace) UpsertMemorySection(heading, body string) error {
	content := w.Read(MemoryFile)
	section := fmt.Sprintf("## %s\n\n%s", heading, strings.TrimSpace(body))

	if content == "" {
		return w.Write(MemoryFile, "# Memory\n\n"+section+"\n")
	}

	lines := strings.Split(content, "\n")
	start := -1
	end := len(lines)
	for i, line := range lines {
		if start == -1 {
			if strings.EqualFold(strings.TrimSpace(line), "## "+heading) {
				start = i
			}
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "## ") {
			end = i
			break
		}
	}

	if start == -1 {
		return w.Write(MemoryFile, content+"\n\n"+section+"\n")
	}

	var out []string
	out = append(out, lines[:start]...)
	out = append(out, strings.Split(section, "\n")...)
	if end < len(lines) {
		out = append(out, "")
		out = append(out, lines[end:]...)
	}
	return w.Write(MemoryFile, strings.Join(out, "\n")+"\n")
}

var youAreRe = regexp.MustCompile(`(?m)^You are [^.\n]*\.`)

// ReplaceIdentitySentence rewrites the "You are ..." sentence of SOUL.md
// with the new assistant name. A document without one gets the sentence
// prepended after its heading.
func (w *Workspace) ReplaceIdentitySentence(assistantName string) error {
	sentence := fmt.Sprintf("You are %s, a personal assistant.", assistantName)
	content := w.Read(SoulFile)
	if content == "" {
		return w.Write(SoulFile, "# Soul\n\n"+sentence+"\n")
	}

	if youAreRe.MatchString(content) {
		return w.Write(SoulFile, youAreRe.ReplaceAllString(content, sentence)+"\n")
	}

	lines := strings.Split(content, "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "#") {
		rest := strings.Join(lines[1:], "\n")
		return w.Write(SoulFile, lines[0]+"\n\n"+sentence+"\n"+rest+"\n")
	}
	return w.Write(SoulFile, sentence+"\n\n"+content+"\n")
}

// IdentityAnswer returns the first paragraph of SOUL.md with its heading
// removed, or a generic one-liner when the document is effectively empty.
func (w *Workspace) IdentityAnswer() string {
	content := w.Read(SoulFile)

	var kept []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		kept = append(kept, line)
	}
	stripped := strings.TrimSpace(strings.Join(kept, "\n"))
	if stripped == "" {
		return "I am your personal assistant."
	}

	if idx := strings.Index(stripped, "\n\n"); idx >= 0 {
		stripped = stripped[:idx]
	}
	return strings.TrimSpace(stripped)
}
