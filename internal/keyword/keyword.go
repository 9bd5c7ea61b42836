// Package keyword classifies raw user keywords into search parameters and
// applies the per-file match rule.
//
// Two keyword classes exist. Pattern keywords are short textual markers from
// a closed vocabulary ("of", "uf", "if" by default) and are required for
// spreadsheet matches. Number keywords are dotted-triple version tokens
// ("5.4.4") that associate files with a release, either through the name of
// the folder containing them or through the filename itself.
package keyword

import (
	"sort"
	"strings"

	"github.com/harrison/filescout/internal/pathutil"
)

// SpreadsheetExt is the extension class that additionally requires a pattern
// keyword. The remaining target classes match on number association alone.
const SpreadsheetExt = ".xlsx"

// DefaultPatternVocabulary is the closed set of recognized pattern keywords.
var DefaultPatternVocabulary = []string{"of", "uf", "if"}

// Params holds the classified, normalized keyword sets for one task.
// Both slices are sorted so substring scans are deterministic.
type Params struct {
	Patterns []string
	Numbers  []string

	// display maps a canonical match key back to the spelling the user
	// typed, for group labels in logs.
	display map[string]string
}

// Normalize lowercases s and applies the documented Turkish dotless-i
// substitution so "OF" and "ÖLÇÜM_dosyası" style names compare predictably.
func Normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "ı", "i")
}

// Parse classifies raw keyword strings against the given pattern vocabulary.
// Tokens are trimmed and normalized first; anything that is neither a known
// pattern keyword nor a version token is dropped silently.
func Parse(raw []string, vocabulary []string) Params {
	vocab := make(map[string]bool, len(vocabulary))
	for _, v := range vocabulary {
		vocab[Normalize(v)] = true
	}

	patterns := make(map[string]bool)
	numbers := make(map[string]bool)
	display := make(map[string]string)

	for _, kw := range raw {
		trimmed := strings.TrimSpace(kw)
		if trimmed == "" {
			continue
		}
		norm := Normalize(trimmed)
		switch {
		case vocab[norm]:
			patterns[norm] = true
			display[norm] = trimmed
		case pathutil.IsVersionToken(trimmed):
			numbers[trimmed] = true
			display[trimmed] = trimmed
		}
	}

	p := Params{
		Patterns: sortedKeys(patterns),
		Numbers:  sortedKeys(numbers),
		display:  display,
	}
	return p
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Empty reports whether no usable keyword survived classification.
func (p Params) Empty() bool {
	return len(p.Patterns) == 0 && len(p.Numbers) == 0
}

// HasNumber reports whether version is one of the number keywords.
func (p Params) HasNumber(version string) bool {
	for _, n := range p.Numbers {
		if n == version {
			return true
		}
	}
	return false
}

// Display returns the user's original spelling for a canonical match key.
// The second result is false when the key cannot be mapped back, which the
// caller reports and works around with a fallback label.
func (p Params) Display(key string) (string, bool) {
	d, ok := p.display[key]
	return d, ok
}

// MatchFile applies the per-extension match rule to one file.
//
// folderVersion is the version extracted from the containing folder's name
// when that version is among the number keywords, and "" otherwise. The file
// matches only if a number association exists at all: either folderVersion is
// set, or some number keyword is a substring of the normalized filename.
//
// For the spreadsheet class the normalized filename must additionally contain
// a pattern keyword, which becomes the match key. For the other target
// classes the associated number itself is the key.
func (p Params) MatchFile(filename, ext, folderVersion string) (key, number string, ok bool) {
	normalized := Normalize(filename)

	number = folderVersion
	if number == "" {
		for _, n := range p.Numbers {
			if strings.Contains(normalized, n) {
				number = n
				break
			}
		}
	}
	if number == "" {
		return "", "", false
	}

	if strings.EqualFold(ext, SpreadsheetExt) {
		for _, pat := range p.Patterns {
			if strings.Contains(normalized, pat) {
				return pat, number, true
			}
		}
		return "", "", false
	}

	// Data-file classes match implicitly once a number association exists;
	// grouping is by the number itself.
	return number, number, true
}
