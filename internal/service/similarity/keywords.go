package similarity

import (
	"strings"
	"unicode"
)

// stopwords excluded from keyword sets. Deliberately small: keyword
// similarity only needs to drop the highest-frequency function words.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "to": {}, "of": {}, "in": {}, "on": {},
	"at": {}, "for": {}, "and": {}, "or": {}, "is": {}, "are": {},
	"was": {}, "be": {}, "it": {}, "this": {}, "that": {}, "with": {},
	"my": {}, "me": {}, "i": {}, "you": {}, "do": {}, "can": {},
	"please": {}, "want": {},
}

// Keywords tokenizes a turn deterministically: lowercase, split on
// non-letter/non-digit runes, stopwords and single runes dropped,
// duplicates removed with first-seen order preserved. Local and
// infallible so the keyword score never depends on the collaborator.
func Keywords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	var out []string
	for _, w := range fields {
		if len([]rune(w)) < 2 {
			continue
		}
		if _, ok := stopwords[w]; ok {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
