package classify

import (
	"strings"
	"unicode"

	"github.com/raine/product-attributes/internal/vision"
)

// textScore is the weight given to OCR text when it is scanned as a term.
const textScore = 0.6

// term is a detected label, object or OCR text. text is the normalized form
// used for matching, raw the lower-cased provider wording.
type term struct {
	text   string
	raw    string
	score  float64
	object bool
}

// collectTerms returns labels then objects in provider order, normalized and
// without empty entries. With withText the OCR text is appended as one term.
func collectTerms(s *vision.Signals, withText bool) []term {
	if s == nil {
		return nil
	}
	var out []term
	for _, l := range s.Labels {
		if t := normalizePhrase(l.Term); t != "" {
			out = append(out, term{text: t, raw: rawTerm(l.Term), score: l.Score})
		}
	}
	for _, o := range s.Objects {
		if t := normalizePhrase(o.Term); t != "" {
			out = append(out, term{text: t, raw: rawTerm(o.Term), score: o.Score, object: true})
		}
	}
	if withText {
		if t := normalizePhrase(s.Text); t != "" {
			out = append(out, term{text: t, raw: t, score: textScore})
		}
	}
	return out
}

func rawTerm(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// termSet is the de-duplicated list of label and object texts in encounter
// order.
func termSet(s *vision.Signals) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range collectTerms(s, false) {
		if !seen[t.text] {
			seen[t.text] = true
			out = append(out, t.text)
		}
	}
	return out
}

// normalizePhrase lower-cases s, turns anything but letters and digits into
// spaces and collapses runs of whitespace.
func normalizePhrase(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// containsPhrase reports whether phrase occurs in text on word boundaries.
// Words of three or more letters compare equal ignoring a plural "s" or
// "es", so "shoe" is found in "running shoes" but "men" is not found in
// "women".
func containsPhrase(text, phrase string) bool {
	tw := strings.Fields(normalizePhrase(text))
	pw := strings.Fields(normalizePhrase(phrase))
	if len(pw) == 0 || len(pw) > len(tw) {
		return false
	}
outer:
	for i := 0; i+len(pw) <= len(tw); i++ {
		for j, w := range pw {
			if !wordEqual(tw[i+j], w) {
				continue outer
			}
		}
		return true
	}
	return false
}

// related reports whether either phrase contains the other.
func related(a, b string) bool {
	return containsPhrase(a, b) || containsPhrase(b, a)
}

func wordEqual(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) < 3 {
		return false
	}
	return a == b+"s" || a == b+"es"
}

// containsAny returns the first keyword found in text.
func containsAny(text string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if containsPhrase(text, kw) {
			return kw, true
		}
	}
	return "", false
}
