package stream

import "strings"

// RuneStream specializes Stream[rune] with the character-stream helpers
// spec.md §4.1 calls out for doctype/CDATA detection: Matches scans ahead
// for a literal string without consuming unless the caller commits to it.
type RuneStream struct {
	*Stream[rune]
}

// NewRunes builds a RuneStream from decoded Unicode text that has already
// had its line endings and null bytes normalized by the caller's tokenizer
// (CSS: §4.2 preprocessing; HTML: §4.4 preprocessing).
func NewRunes(text string) *RuneStream {
	return &RuneStream{Stream: New([]rune(text))}
}

// Matches reports whether the upcoming runes equal text. If startFromNext
// is true the comparison begins at the next Consume position (PeekNth(0));
// otherwise it begins one position further out, letting a caller that has
// already peeked and discarded the first matched rune check the remainder.
// On a match the matched runes are consumed; on a mismatch nothing is
// consumed.
func (r *RuneStream) Matches(text string, caseSensitive bool, startFromNext bool) bool {
	want := []rune(text)
	offset := 0
	if !startFromNext {
		offset = 1
	}
	got, ok := r.PeekRange(offset + len(want))
	if !ok || len(got) < offset+len(want) {
		return false
	}
	candidate := string(got[offset:])
	if caseSensitive {
		if candidate != text {
			return false
		}
	} else if !strings.EqualFold(candidate, text) {
		return false
	}
	for i := 0; i < offset+len(want); i++ {
		r.Consume()
	}
	return true
}
