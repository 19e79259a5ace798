package skills

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSlug(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Weather Report", "weather-report"},
		{"weather-report", "weather-report"},
		{"  Daily  Recap!! ", "daily-recap"},
		{"Café Menu", "caf-menu"},
		{"UPPER", "upper"},
		{"---", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Slug(tc.name); got != tc.want {
			t.Errorf("Slug(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSlugCapsLength(t *testing.T) {
	got := Slug(strings.Repeat("a", 200))
	if len(got) != MaxSlugLen {
		t.Errorf("len = %d, want %d", len(got), MaxSlugLen)
	}
}

func TestInstallAndFind(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	slug, err := store.Install("Weather Report", "Fetch today's forecast.\nInclude wind speed.")
	if err != nil {
		t.Fatal(err)
	}
	if slug != "weather-report" {
		t.Errorf("slug = %q", slug)
	}

	if !store.Has("Weather Report") {
		t.Error("Has(original name) = false")
	}
	if !store.Has("weather-report") {
		t.Error("Has(slug) = false")
	}
	if store.Has("unknown") {
		t.Error("Has(unknown) = true")
	}

	body := store.Find("weather report")
	if !strings.Contains(body, "Include wind speed.") {
		t.Errorf("Find = %q", body)
	}
}

func TestInstallRejectsUnusableName(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Install("!!!", "body"); err == nil {
		t.Error("expected error for unusable name")
	}
}

func TestInstallWritesLoadableFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Install("Standup Notes", "Collect yesterday's commits."); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "standup-notes", FileName))
	if err != nil {
		t.Fatal(err)
	}
	skill, err := ParseSkillMD(data)
	if err != nil {
		t.Fatal(err)
	}
	if skill.Name != "Standup Notes" {
		t.Errorf("name = %q", skill.Name)
	}
	if !strings.Contains(skill.Template, "yesterday's commits") {
		t.Errorf("template = %q", skill.Template)
	}

	// A fresh store over the same directory sees the installed skill.
	again, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !again.Has("standup-notes") {
		t.Error("reloaded store missing skill")
	}
}

func TestCatalog(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if got := store.Catalog(); got != "" {
		t.Errorf("empty store catalog = %q", got)
	}

	if _, err := store.Install("Beta", "Second skill."); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Install("Alpha", "First skill."); err != nil {
		t.Fatal(err)
	}

	got := store.Catalog()
	if !strings.HasPrefix(got, "Installed skills:") {
		t.Errorf("catalog = %q", got)
	}
	if strings.Index(got, "Alpha") > strings.Index(got, "Beta") {
		t.Errorf("catalog not sorted: %q", got)
	}
}

func TestParseSkillMD(t *testing.T) {
	data := []byte("---\nname: Reminder\ndescription: Sets reminders\nversion: \"1.2.0\"\n---\n\nAsk for the time, then confirm.\n")
	skill, err := ParseSkillMD(data)
	if err != nil {
		t.Fatal(err)
	}
	if skill.Name != "Reminder" || skill.Version != "1.2.0" {
		t.Errorf("skill = %+v", skill)
	}
	if skill.Template != "Ask for the time, then confirm." {
		t.Errorf("template = %q", skill.Template)
	}
}

func TestParseSkillMDErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"no frontmatter", "just a body"},
		{"unclosed frontmatter", "---\nname: x\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseSkillMD([]byte(tc.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
