package actions

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/integrations"
	"github.com/gabrivardqc123/GnamiAI-Production-Ready/internal/skills"
)

type fakeDispatcher struct {
	calls  []integrations.Request
	result any
	err    error
}

func (d *fakeDispatcher) Exec(ctx context.Context, req integrations.Request) (any, error) {
	d.calls = append(d.calls, req)
	return d.result, d.err
}

func shell(cmd string) Action {
	return Action{Type: TypeShell, Shell: &ShellAction{Command: cmd}}
}

func TestRunShellCapturesOutput(t *testing.T) {
	r := &Runner{}
	results := r.ExecuteAll(context.Background(), []Action{shell("echo hello")})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].OK {
		t.Fatalf("echo failed: %s", results[0].Output)
	}
	if results[0].Output != "hello" {
		t.Errorf("output = %q, want hello", results[0].Output)
	}
}

func TestRunShellEmptyOutputPlaceholder(t *testing.T) {
	r := &Runner{}
	results := r.ExecuteAll(context.Background(), []Action{shell("true")})
	if !results[0].OK || results[0].Output != noOutput {
		t.Errorf("result = %+v, want ok with %q", results[0], noOutput)
	}
}

func TestRunShellTimeout(t *testing.T) {
	r := &Runner{}
	a := Action{Type: TypeShell, Shell: &ShellAction{Command: "sleep 5", TimeoutMs: 50}}

	results := r.ExecuteAll(context.Background(), []Action{a})
	if results[0].OK {
		t.Fatal("expected timeout failure")
	}
	if !strings.Contains(results[0].Output, "timed out") {
		t.Errorf("output = %q, want timeout message", results[0].Output)
	}
}

func TestRunShellFailureKeepsOutput(t *testing.T) {
	r := &Runner{}
	results := r.ExecuteAll(context.Background(), []Action{shell("echo oops >&2; exit 3")})
	if results[0].OK {
		t.Fatal("expected failure")
	}
	if !strings.Contains(results[0].Output, "oops") {
		t.Errorf("output = %q, want stderr captured", results[0].Output)
	}
}

func TestExecuteAllCapsAtMaxPerTurn(t *testing.T) {
	list := []Action{
		shell("echo 1"),
		shell("echo 2"),
		shell("echo 3"),
		shell("echo 4"),
		shell("echo 5"),
	}
	r := &Runner{}
	results := r.ExecuteAll(context.Background(), list)
	if len(results) != MaxPerTurn {
		t.Fatalf("expected %d results, got %d", MaxPerTurn, len(results))
	}
	for i, want := range []string{"1", "2", "3"} {
		if results[i].Output != want {
			t.Errorf("result %d output = %q, want %q", i, results[i].Output, want)
		}
	}
}

func TestExecuteAllIsolatesFailures(t *testing.T) {
	list := []Action{
		shell("exit 1"),
		shell("echo still here"),
	}
	r := &Runner{}
	results := r.ExecuteAll(context.Background(), list)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].OK {
		t.Error("first action should have failed")
	}
	if !results[1].OK || results[1].Output != "still here" {
		t.Errorf("second action = %+v, want success", results[1])
	}
}

func TestRunIntegration(t *testing.T) {
	d := &fakeDispatcher{result: "page loaded"}
	r := &Runner{Dispatcher: d}
	a := Action{Type: TypeIntegration, Integration: &IntegrationAction{
		App:    "browser",
		Action: "navigate",
		Params: map[string]any{"url": "https://example.com"},
	}}

	results := r.ExecuteAll(context.Background(), []Action{a})
	if !results[0].OK || results[0].Output != "page loaded" {
		t.Errorf("result = %+v", results[0])
	}
	if len(d.calls) != 1 || d.calls[0].App != "browser" || d.calls[0].Action != "navigate" {
		t.Errorf("dispatcher calls = %+v", d.calls)
	}
}

func TestRunIntegrationError(t *testing.T) {
	d := &fakeDispatcher{err: errors.New("unknown integration app: calendar")}
	r := &Runner{Dispatcher: d}
	a := Action{Type: TypeIntegration, Integration: &IntegrationAction{App: "calendar", Action: "list"}}

	results := r.ExecuteAll(context.Background(), []Action{a})
	if results[0].OK {
		t.Fatal("expected failure")
	}
	if !strings.Contains(results[0].Output, "unknown integration app") {
		t.Errorf("output = %q", results[0].Output)
	}
}

func TestRunIntegrationWithoutDispatcher(t *testing.T) {
	r := &Runner{}
	a := Action{Type: TypeIntegration, Integration: &IntegrationAction{App: "browser", Action: "text"}}

	results := r.ExecuteAll(context.Background(), []Action{a})
	if results[0].OK || !strings.Contains(results[0].Output, "no integration dispatcher") {
		t.Errorf("result = %+v", results[0])
	}
}

func TestRunInstallSkill(t *testing.T) {
	store, err := skills.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := &Runner{Skills: store}
	a := Action{Type: TypeInstallSkill, InstallSkill: &InstallSkillAction{
		Name:    "Morning Brief",
		Content: "Collect overnight updates and summarize them.",
	}}

	results := r.ExecuteAll(context.Background(), []Action{a})
	if !results[0].OK {
		t.Fatalf("install failed: %s", results[0].Output)
	}
	if !store.Has("morning-brief") {
		t.Error("skill not present after install")
	}
}
