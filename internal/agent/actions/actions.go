// Package actions bridges free-form model output and bounded side
// effects. The model requests an action by emitting a fenced block
// tagged with the action marker whose body is a single JSON object:
//
//	```action
//	{"type": "shell", "command": "ls -la", "timeoutMs": 5000}
//	```
//
// Three variants exist: shell, install_skill and integration. Blocks
// that fail to parse, carry an unknown type, or miss required fields
// are silently skipped; a malformed request degrades to no action.
package actions

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Marker tags the fenced blocks carrying action requests
const Marker = "action"

// MaxPerTurn caps how many actions one model response may execute.
// Later blocks in the same response are ignored.
const MaxPerTurn = 3

// Action types
const (
	TypeShell        = "shell"
	TypeInstallSkill = "install_skill"
	TypeIntegration  = "integration"
)

// Action is the tagged variant of a single side-effect request.
// Exactly one of the payload pointers matches Type.
type Action struct {
	Type         string
	Shell        *ShellAction
	InstallSkill *InstallSkillAction
	Integration  *IntegrationAction
}

// ShellAction runs a command through the shell
type ShellAction struct {
	Command   string `json:"command"`
	TimeoutMs int    `json:"timeoutMs,omitempty"`
}

// InstallSkillAction installs a reusable skill
type InstallSkillAction struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// IntegrationAction invokes a third-party integration
type IntegrationAction struct {
	App    string         `json:"app"`
	Action string         `json:"action"`
	Params map[string]any `json:"params,omitempty"`
}

// Result is the outcome of one executed action
type Result struct {
	Action Action
	OK     bool
	Output string
}

var blockRe = regexp.MustCompile("(?s)```" + Marker + "[ \t]*\n(.*?)```")

// Parse extracts every well-formed action request from a text, in
// source order. Invalid blocks are dropped without error.
func Parse(text string) []Action {
	var out []Action
	for _, m := range blockRe.FindAllStringSubmatch(text, -1) {
		if a, ok := parseBlock(m[1]); ok {
			out = append(out, a)
		}
	}
	return out
}

func parseBlock(body string) (Action, bool) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(body), &probe); err != nil {
		return Action{}, false
	}

	switch probe.Type {
	case TypeShell:
		var a ShellAction
		if err := json.Unmarshal([]byte(body), &a); err != nil || a.Command == "" {
			return Action{}, false
		}
		return Action{Type: TypeShell, Shell: &a}, true

	case TypeInstallSkill:
		var a InstallSkillAction
		if err := json.Unmarshal([]byte(body), &a); err != nil || a.Name == "" || a.Content == "" {
			return Action{}, false
		}
		return Action{Type: TypeInstallSkill, InstallSkill: &a}, true

	case TypeIntegration:
		var a IntegrationAction
		if err := json.Unmarshal([]byte(body), &a); err != nil || a.App == "" || a.Action == "" {
			return Action{}, false
		}
		return Action{Type: TypeIntegration, Integration: &a}, true
	}
	return Action{}, false
}

// Strip removes every action block from a text and trims the remainder.
// It runs on all model output shown to a user, including second-pass
// output that was instructed not to contain action markup.
func Strip(text string) string {
	return strings.TrimSpace(blockRe.ReplaceAllString(text, ""))
}

// Describe returns a short human-readable label for an action
func (a Action) Describe() string {
	switch a.Type {
	case TypeShell:
		return "shell: " + a.Shell.Command
	case TypeInstallSkill:
		return "install_skill: " + a.InstallSkill.Name
	case TypeIntegration:
		return "integration: " + a.Integration.App + "." + a.Integration.Action
	}
	return "unknown"
}

// Summarize renders executed results as the structured text fed to the
// second model pass
func Summarize(results []Result) string {
	var b strings.Builder
	b.WriteString("Action results:")
	for i, r := range results {
		status := "succeeded"
		if !r.OK {
			status = "failed"
		}
		fmt.Fprintf(&b, "\n%d. [%s] %s\n%s", i+1, r.Action.Type, status, r.Output)
	}
	return b.String()
}
