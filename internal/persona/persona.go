// Package persona resolves the three durable identity fields (assistant
// name, user name, preferred language) from free-form text.
//
// Parsing is an ordered list of independent matchers run first-match-wins
// per field: explicit key:value pairs, English phrases, French phrases,
// then a chunk heuristic. It is deliberately approximate, not a grammar;
// the tests pin a fixed corpus of phrasings rather than chasing
// completeness.
package persona

import (
	"regexp"
	"strings"
)

// Fields holds the resolved persona fields. Empty string means absent.
type Fields struct {
	AssistantName string
	UserName      string
	Language      string
}

// Empty reports whether nothing was resolved
func (f Fields) Empty() bool {
	return f.AssistantName == "" && f.UserName == "" && f.Language == ""
}

// Complete reports whether the fields required to start conversing are
// present. The assistant name has a default, so only user name and
// language gate the conversation.
func (f Fields) Complete() bool {
	return f.UserName != "" && f.Language != ""
}

// Merge overlays parsed fields onto current ones. A freshly parsed value
// wins; absent parsed fields keep the current value.
func Merge(current, parsed Fields) Fields {
	out := current
	if parsed.AssistantName != "" {
		out.AssistantName = parsed.AssistantName
	}
	if parsed.UserName != "" {
		out.UserName = parsed.UserName
	}
	if parsed.Language != "" {
		out.Language = parsed.Language
	}
	return out
}

var (
	keyValueRe = regexp.MustCompile(`(?im)^\s*(assistant|bot|language|lang|user)\s*[:=]\s*(.+?)\s*$`)

	// English phrases
	callYouRe    = regexp.MustCompile(`(?i)\bcall\s+you\s+(\p{L}[\p{L}'’-]*)`)
	yourNameRe   = regexp.MustCompile(`(?i)\byour\s+name\s+is\s+(\p{L}[\p{L}'’-]*)`)
	myNameRe     = regexp.MustCompile(`(?i)\bmy\s+name\s+is\s+(\p{L}[\p{L}'’-]*)`)
	iAmRe        = regexp.MustCompile(`(?i)\bi\s*am\s+(\p{L}[\p{L}'’-]*)`)
	languageIsRe = regexp.MustCompile(`(?i)\blanguage\s+is\s+(\p{L}[\p{L}'’-]*)`)
	iSpeakRe     = regexp.MustCompile(`(?i)\bi\s+speak\s+(\p{L}[\p{L}'’-]*)`)

	// French phrases
	appelleToiRe = regexp.MustCompile(`(?i)\bappelle[\s-]toi\s+(\p{L}[\p{L}'’-]*)`)
	tuTappelleRe = regexp.MustCompile(`(?i)\btu\s+t'appelles?\s+(\p{L}[\p{L}'’-]*)`)
	tonNomRe     = regexp.MustCompile(`(?i)\bton\s+nom\s+(?:est|c'est)\s+(\p{L}[\p{L}'’-]*)`)
	jemappelleRe = regexp.MustCompile(`(?i)\bje\s+m'appelle\s+(\p{L}[\p{L}'’-]*)`)
	monNomRe     = regexp.MustCompile(`(?i)\bmon\s+nom\s+(?:est|c'est)\s+(\p{L}[\p{L}'’-]*)`)
	jeSuisRe     = regexp.MustCompile(`(?i)\bje\s+suis\s+(\p{L}[\p{L}'’-]*)`)
	jeParleRe    = regexp.MustCompile(`(?i)\bje\s+parle\s+(?:le\s+|l')?(\p{L}[\p{L}'’-]*)`)
	maLangueRe   = regexp.MustCompile(`(?i)\b(?:ma\s+)?langue\s+(?:est|c'est)\s+(?:le\s+|l')?(\p{L}[\p{L}'’-]*)`)

	userLeadInRe = regexp.MustCompile(`(?i)^(my\s+name\s+is|i\s*am|i'm|je\s+m'appelle|je\s+suis|mon\s+nom\s+(?:est|c'est)|moi\s+c'est)\s+`)
)

// languageWords is the fixed vocabulary the chunk heuristic recognizes
var languageWords = map[string]bool{
	"english": true, "anglais": true,
	"french": true, "francais": true, "français": true,
	"spanish": true, "espanol": true, "español": true, "espagnol": true,
	"german": true, "deutsch": true, "allemand": true,
	"italian": true, "italiano": true, "italien": true,
	"portuguese": true, "portugais": true,
}

// Parse extracts persona fields from a message. Unresolved fields stay
// empty; the caller decides whether the result is enough to proceed.
func Parse(text string) Fields {
	var f Fields

	parseKeyValues(text, &f)
	parseEnglish(text, &f)
	parseFrench(text, &f)
	parseChunks(text, &f)

	return f
}

func parseKeyValues(text string, f *Fields) {
	for _, m := range keyValueRe.FindAllStringSubmatch(text, -1) {
		key := strings.ToLower(m[1])
		value := cleanValue(m[2])
		if value == "" {
			continue
		}
		switch key {
		case "assistant", "bot":
			if f.AssistantName == "" {
				f.AssistantName = value
			}
		case "language", "lang":
			if f.Language == "" {
				f.Language = strings.ToLower(value)
			}
		case "user":
			if f.UserName == "" {
				f.UserName = value
			}
		}
	}
}

func parseEnglish(text string, f *Fields) {
	if f.AssistantName == "" {
		if m := firstMatch(text, callYouRe, yourNameRe); m != "" {
			f.AssistantName = m
		}
	}
	if f.UserName == "" {
		if m := firstMatch(text, myNameRe, iAmRe); m != "" {
			f.UserName = m
		}
	}
	if f.Language == "" {
		if m := firstMatch(text, languageIsRe, iSpeakRe); m != "" {
			f.Language = strings.ToLower(m)
		}
	}
}

func parseFrench(text string, f *Fields) {
	if f.AssistantName == "" {
		if m := firstMatch(text, appelleToiRe, tuTappelleRe, tonNomRe); m != "" {
			f.AssistantName = m
		}
	}
	if f.UserName == "" {
		if m := firstMatch(text, jemappelleRe, monNomRe, jeSuisRe); m != "" {
			f.UserName = m
		}
	}
	if f.Language == "" {
		if m := firstMatch(text, jeParleRe, maLangueRe); m != "" {
			f.Language = strings.ToLower(m)
		}
	}
}

// parseChunks is the last-resort heuristic over comma/newline-separated
// chunks of the message
func parseChunks(text string, f *Fields) {
	chunks := splitChunks(text)

	var leftovers []string
	for _, chunk := range chunks {
		lower := strings.ToLower(chunk)

		if f.UserName == "" && userLeadInRe.MatchString(chunk) {
			name := cleanValue(userLeadInRe.ReplaceAllString(chunk, ""))
			if name != "" {
				f.UserName = firstWord(name)
				continue
			}
		}

		if f.Language == "" {
			if lang := languageInChunk(lower); lang != "" {
				f.Language = lang
				continue
			}
		}

		leftovers = append(leftovers, chunk)
	}

	// Only when still undetermined: one short leftover chunk becomes the
	// assistant name, another the user name. Fields resolved above are
	// never overwritten here. The assignment needs at least one resolved
	// field as an anchor, otherwise every short greeting would parse as
	// a name.
	if f.Empty() {
		return
	}
	for _, chunk := range leftovers {
		words := strings.Fields(chunk)
		if len(words) == 0 || len(words) > 2 {
			continue
		}
		candidate := cleanValue(chunk)
		if candidate == "" {
			continue
		}
		if f.AssistantName == "" {
			f.AssistantName = firstWord(candidate)
		} else if f.UserName == "" {
			f.UserName = firstWord(candidate)
		}
	}
}

func splitChunks(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})
	var out []string
	for _, c := range raw {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

func languageInChunk(lower string) string {
	for _, word := range strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && r != 'ç' && r != 'é' && r != 'ñ'
	}) {
		if languageWords[word] {
			return word
		}
	}
	return ""
}

func firstMatch(text string, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return cleanValue(m[1])
		}
	}
	return ""
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'.,!?`)
	if len(s) > 64 {
		s = s[:64]
	}
	return strings.TrimSpace(s)
}
