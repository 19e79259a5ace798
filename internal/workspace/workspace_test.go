package workspace

import (
	"strings"
	"testing"
)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	ws, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return ws
}

func TestNewSeedsSoul(t *testing.T) {
	ws := newTestWorkspace(t)
	soul := ws.Read(SoulFile)
	if !strings.Contains(soul, "You are Gnami,") {
		t.Errorf("seeded soul = %q", soul)
	}
}

func TestUpsertMemorySectionAppendsAndReplaces(t *testing.T) {
	ws := newTestWorkspace(t)

	if err := ws.UpsertMemorySection("User Profile", "- Name: Dana"); err != nil {
		t.Fatal(err)
	}
	if got := ws.ReadMemorySection("User Profile"); got != "- Name: Dana" {
		t.Errorf("section = %q", got)
	}

	if err := ws.UpsertMemorySection("Last Exchange", "User: hi\nAssistant: hello"); err != nil {
		t.Fatal(err)
	}

	// Replacing one section leaves the other untouched.
	if err := ws.UpsertMemorySection("User Profile", "- Name: Sam\n- Preferred language: french"); err != nil {
		t.Fatal(err)
	}
	got := ws.ReadMemorySection("User Profile")
	if !strings.Contains(got, "Sam") || strings.Contains(got, "Dana") {
		t.Errorf("replaced section = %q", got)
	}
	if got := ws.ReadMemorySection("Last Exchange"); !strings.Contains(got, "User: hi") {
		t.Errorf("sibling section lost: %q", got)
	}
}

func TestUpsertMemorySectionCaseInsensitive(t *testing.T) {
	ws := newTestWorkspace(t)

	if err := ws.UpsertMemorySection("Skill: recap", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := ws.UpsertMemorySection("skill: RECAP", "v2"); err != nil {
		t.Fatal(err)
	}

	if got := ws.ReadMemorySection("Skill: Recap"); got != "v2" {
		t.Errorf("section = %q, want v2", got)
	}
	memory := ws.Read(MemoryFile)
	if strings.Count(memory, "ecap") != 1 {
		t.Errorf("duplicate sections in %q", memory)
	}
}

func TestReadMemorySectionMissing(t *testing.T) {
	ws := newTestWorkspace(t)
	if got := ws.ReadMemorySection("Nope"); got != "" {
		t.Errorf("missing section = %q", got)
	}
}

func TestReplaceIdentitySentence(t *testing.T) {
	ws := newTestWorkspace(t)

	if err := ws.ReplaceIdentitySentence("Nova"); err != nil {
		t.Fatal(err)
	}
	soul := ws.Read(SoulFile)
	if !strings.Contains(soul, "You are Nova, a personal assistant.") {
		t.Errorf("soul = %q", soul)
	}
	if strings.Contains(soul, "You are Gnami") {
		t.Errorf("old identity kept: %q", soul)
	}
	// The rest of the document survives the rewrite.
	if !strings.Contains(soul, "Be concise") {
		t.Errorf("soul body lost: %q", soul)
	}
}

func TestReplaceIdentitySentenceWithoutExisting(t *testing.T) {
	ws := newTestWorkspace(t)
	if err := ws.Write(SoulFile, "# Soul\n\nJust vibes.\n"); err != nil {
		t.Fatal(err)
	}
	if err := ws.ReplaceIdentitySentence("Nova"); err != nil {
		t.Fatal(err)
	}
	soul := ws.Read(SoulFile)
	if !strings.Contains(soul, "You are Nova, a personal assistant.") {
		t.Errorf("soul = %q", soul)
	}
	if !strings.Contains(soul, "Just vibes.") {
		t.Errorf("original body lost: %q", soul)
	}
}

func TestIdentityAnswer(t *testing.T) {
	ws := newTestWorkspace(t)
	if got := ws.IdentityAnswer(); !strings.Contains(got, "You are Gnami,") {
		t.Errorf("IdentityAnswer = %q", got)
	}

	if err := ws.Write(SoulFile, "# Soul\n\n"); err != nil {
		t.Fatal(err)
	}
	if got := ws.IdentityAnswer(); got != "I am your personal assistant." {
		t.Errorf("empty-soul answer = %q", got)
	}
}

func TestBuildContext(t *testing.T) {
	ws := newTestWorkspace(t)
	if err := ws.Write(AgentsFile, "Always confirm before acting."); err != nil {
		t.Fatal(err)
	}
	if err := ws.UpsertMemorySection("User Profile", "- Name: Dana"); err != nil {
		t.Fatal(err)
	}

	got := ws.BuildContext()
	for _, want := range []string{
		"# Personality (SOUL.md)",
		"# Agent Instructions (AGENTS.md)",
		"# User Memory (MEMORY.md)",
		"Always confirm before acting.",
		"- Name: Dana",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("BuildContext missing %q", want)
		}
	}
}
