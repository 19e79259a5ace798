package skills

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/logging"
)

// MaxSlugLen caps the directory name derived from a skill name
const MaxSlugLen = 64

// Store manages installed skills on disk with an in-memory catalog
type Store struct {
	mu      sync.RWMutex
	dir     string
	skills  map[string]*Skill // slug -> skill
	watcher *fsnotify.Watcher
}

// NewStore creates a skill store rooted at dir and loads the catalog
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create skills directory: %w", err)
	}
	s := &Store{
		dir:    dir,
		skills: make(map[string]*Skill),
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Slug derives the directory name for a skill: lowercased, runs of
// non-alphanumerics collapsed to single dashes, trimmed, length-capped.
// An empty result means the name is unusable.
func Slug(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > MaxSlugLen {
		slug = strings.Trim(slug[:MaxSlugLen], "-")
	}
	return slug
}

// Install writes a skill to disk under its slug and refreshes the catalog.
// Installing over an existing slug replaces it.
func (s *Store) Install(name, content string) (string, error) {
	slug := Slug(name)
	if slug == "" {
		return "", fmt.Errorf("invalid skill name: %q", name)
	}

	skill := &Skill{
		Name:        name,
		Description: firstLine(content),
		Template:    strings.TrimSpace(content),
	}

	dir := filepath.Join(s.dir, slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create skill directory: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(skill.Render()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write skill: %w", err)
	}
	skill.FilePath = path

	s.mu.Lock()
	s.skills[slug] = skill
	s.mu.Unlock()

	logging.Infof("[skills] Installed skill %q as %s", name, slug)
	return slug, nil
}

// Has reports whether a skill with this name is installed locally
func (s *Store) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.skills[Slug(name)]
	return ok
}

// Find returns an installed skill's instruction body, or "" when absent
func (s *Store) Find(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if skill, ok := s.skills[Slug(name)]; ok {
		return skill.Template
	}
	return ""
}

// List returns installed skills sorted by name
func (s *Store) List() []*Skill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Skill, 0, len(s.skills))
	for _, skill := range s.skills {
		out = append(out, skill)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Catalog renders a one-line-per-skill summary for the system prompt
func (s *Store) Catalog() string {
	skills := s.List()
	if len(skills) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Installed skills:\n")
	for _, skill := range skills {
		fmt.Fprintf(&b, "- %s: %s\n", skill.Name, skill.Description)
	}
	return strings.TrimSpace(b.String())
}

// reload rescans the skills directory into the catalog
func (s *Store) reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.skills = make(map[string]*Skill)
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read skills directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(s.dir, entry.Name(), FileName)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		skill, err := ParseSkillMD(data)
		if err != nil {
			logging.Warnf("[skills] Skipping %s: %v", path, err)
			continue
		}
		if err := skill.Validate(); err != nil {
			logging.Warnf("[skills] Skipping %s: %v", path, err)
			continue
		}
		skill.FilePath = path
		s.skills[entry.Name()] = skill
	}

	logging.Debugf("[skills] Loaded %d skills from %s", len(s.skills), s.dir)
	return nil
}

// Watch hot-reloads the catalog when skill files change on disk.
// It returns after starting the watch goroutine; ctx stops it.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch skills directory: %w", err)
	}

	s.mu.Lock()
	s.watcher = watcher
	s.mu.Unlock()

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
					if err := s.reload(); err != nil {
						logging.Errorf("[skills] reload failed: %v", err)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Errorf("[skills] watcher error: %v", err)
			}
		}
	}()
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimLeft(s, "# ")
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
