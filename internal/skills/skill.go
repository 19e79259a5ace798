// Package skills stores reusable skill definitions as markdown files.
//
// Each skill lives in its own directory under the skills root:
//
//	skills/
//	├── weather-report/
//	│   └── SKILL.md
//	└── standup-notes/
//	    └── SKILL.md
//
// SKILL.md carries YAML frontmatter (between --- markers) followed by the
// markdown body with the actual instructions.
package skills

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FileName is the expected filename for skill definitions
const FileName = "SKILL.md"

// Skill is a skill definition parsed from a SKILL.md file
type Skill struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`

	// Template is the markdown body, parsed separately from the frontmatter
	Template string `yaml:"-"`

	// FilePath is where this skill was loaded from
	FilePath string `yaml:"-"`
}

// Validate checks that the definition is usable
func (s *Skill) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("skill name is required")
	}
	return nil
}

// ParseSkillMD parses a SKILL.md file into a Skill
func ParseSkillMD(data []byte) (*Skill, error) {
	frontmatter, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	var skill Skill
	if err := yaml.Unmarshal(frontmatter, &skill); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	skill.Template = string(bytes.TrimSpace(body))
	return &skill, nil
}

// Render produces the SKILL.md file content for a skill
func (s *Skill) Render() string {
	version := s.Version
	if version == "" {
		version = "1.0.0"
	}
	return fmt.Sprintf("---\nname: %s\ndescription: %s\nversion: %q\n---\n\n%s\n",
		s.Name, s.Description, version, s.Template)
}

func splitFrontmatter(data []byte) (frontmatter, body []byte, err error) {
	if !bytes.HasPrefix(data, []byte("---")) {
		return nil, nil, fmt.Errorf("SKILL.md must start with --- (YAML frontmatter)")
	}

	rest := data[3:]
	rest = bytes.TrimLeft(rest, " \t\r")
	if len(rest) > 0 && rest[0] == '\n' {
		rest = rest[1:]
	}

	closing := bytes.Index(rest, []byte("\n---"))
	if closing == -1 {
		return nil, nil, fmt.Errorf("SKILL.md missing closing --- for frontmatter")
	}

	frontmatter = rest[:closing]
	body = rest[closing+4:]
	body = bytes.TrimLeft(body, " \t\r\n")
	return frontmatter, body, nil
}
