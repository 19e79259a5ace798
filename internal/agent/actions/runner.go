package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/integrations"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/logging"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/skills"
)

// DefaultShellTimeout applies when a shell action carries no timeoutMs
const DefaultShellTimeout = 60 * time.Second

// noOutput is the placeholder for commands producing nothing
const noOutput = "(no output)"

// Runner executes parsed actions sequentially with per-action failure
// isolation: one action failing never aborts its siblings.
type Runner struct {
	Skills     *skills.Store
	Dispatcher integrations.Dispatcher

	// ShellTimeout overrides DefaultShellTimeout when positive
	ShellTimeout time.Duration
}

// ExecuteAll runs at most MaxPerTurn actions strictly in order and
// returns one result per executed action, same order.
func (r *Runner) ExecuteAll(ctx context.Context, list []Action) []Result {
	if len(list) > MaxPerTurn {
		logging.Warnf("[actions] %d actions requested, executing first %d", len(list), MaxPerTurn)
		list = list[:MaxPerTurn]
	}

	results := make([]Result, 0, len(list))
	for _, a := range list {
		results = append(results, r.execute(ctx, a))
	}
	return results
}

// execute runs one action; every failure mode becomes an ok=false
// result rather than an error
func (r *Runner) execute(ctx context.Context, a Action) (res Result) {
	res.Action = a
	defer func() {
		if p := recover(); p != nil {
			res.OK = false
			res.Output = fmt.Sprintf("action panicked: %v", p)
		}
	}()

	switch a.Type {
	case TypeShell:
		res.OK, res.Output = r.runShell(ctx, a.Shell)
	case TypeInstallSkill:
		res.OK, res.Output = r.runInstallSkill(a.InstallSkill)
	case TypeIntegration:
		res.OK, res.Output = r.runIntegration(ctx, a.Integration)
	default:
		res.OK, res.Output = false, fmt.Sprintf("unknown action type: %s", a.Type)
	}
	return res
}

// runShell executes the command through the shell with the inherited
// environment, merged output and a hard timeout that kills the process.
func (r *Runner) runShell(ctx context.Context, a *ShellAction) (bool, string) {
	timeout := DefaultShellTimeout
	if r.ShellTimeout > 0 {
		timeout = r.ShellTimeout
	}
	if a.TimeoutMs > 0 {
		timeout = time.Duration(a.TimeoutMs) * time.Millisecond
	}

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(tctx, "sh", "-c", a.Command)
	cmd.SysProcAttr = shellSysProcAttr()
	cmd.Cancel = func() error { return killShellProcess(cmd) }

	output, err := cmd.CombinedOutput()
	text := strings.TrimSpace(string(output))

	if tctx.Err() == context.DeadlineExceeded {
		return false, fmt.Sprintf("command timed out after %s", timeout)
	}
	if err != nil {
		if text == "" {
			text = fmt.Sprintf("command failed: %v", err)
		}
		return false, text
	}
	if text == "" {
		text = noOutput
	}
	return true, text
}

func (r *Runner) runInstallSkill(a *InstallSkillAction) (bool, string) {
	if r.Skills == nil {
		return false, "skill store not available"
	}
	slug, err := r.Skills.Install(a.Name, a.Content)
	if err != nil {
		return false, err.Error()
	}
	return true, fmt.Sprintf("skill %q installed as %s", a.Name, slug)
}

func (r *Runner) runIntegration(ctx context.Context, a *IntegrationAction) (bool, string) {
	if r.Dispatcher == nil {
		return false, "no integration dispatcher configured"
	}

	result, err := r.Dispatcher.Exec(ctx, integrations.Request{
		App:    a.App,
		Action: a.Action,
		Params: a.Params,
	})
	if err != nil {
		return false, err.Error()
	}

	switch v := result.(type) {
	case nil:
		return true, noOutput
	case string:
		if v == "" {
			return true, noOutput
		}
		return true, v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return true, fmt.Sprintf("%v", v)
		}
		return true, string(data)
	}
}
