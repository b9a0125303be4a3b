// Package stream provides a restartable cursor over a finite sequence of
// items, shared by the CSS and HTML tokenizers.
//
// Spec references:
// - spec.md §3.1 Stream, §4.1 Stream operations
package stream

// Stream is a reconsume-capable cursor over a finite ordered sequence of
// items of type T. At any time it is in exactly one of three states:
// not-yet-started, positioned at some index, or EOF. Calling Reconsume sets
// a one-step replay flag that the next Consume honors; after that, the
// cursor resumes normal advancement.
//
// Once Consume returns ok=false (EOF), every subsequent Consume also
// returns ok=false: EOF is sticky.
type Stream[T any] struct {
	items     []T
	pos       int  // index of the next item to hand out
	reconsume bool // if set, Consume replays items[pos-1] instead of advancing
	eof       bool
}

// New wraps items in a Stream. The slice is not copied; callers must not
// mutate it while the Stream is in use.
func New[T any](items []T) *Stream[T] {
	return &Stream[T]{items: items}
}

// Consume advances the cursor and returns the next item, or ok=false at
// EOF. If Reconsume was called since the last Consume, the previously
// returned item is replayed instead and the flag is cleared.
func (s *Stream[T]) Consume() (item T, ok bool) {
	if s.eof {
		var zero T
		return zero, false
	}
	if s.reconsume {
		s.reconsume = false
		return s.items[s.pos-1], true
	}
	if s.pos >= len(s.items) {
		s.eof = true
		var zero T
		return zero, false
	}
	item = s.items[s.pos]
	s.pos++
	return item, true
}

// Reconsume sets the replay flag: the next Consume returns the same item
// just consumed instead of advancing. It is a no-op before the first
// Consume or once EOF has been reached.
func (s *Stream[T]) Reconsume() {
	if s.pos > 0 && !s.eof {
		s.reconsume = true
	}
}

// Peek returns the item that the next Consume would return, without
// advancing the cursor.
func (s *Stream[T]) Peek() (item T, ok bool) {
	return s.PeekNth(0)
}

// PeekNth returns the item n steps ahead of the next Consume (PeekNth(0) ==
// Peek), without advancing the cursor. It honors a pending Reconsume.
func (s *Stream[T]) PeekNth(n int) (item T, ok bool) {
	if s.eof {
		var zero T
		return zero, false
	}
	idx := s.pos + n
	if s.reconsume {
		idx = s.pos - 1 + n
	}
	if idx < 0 || idx >= len(s.items) {
		var zero T
		return zero, false
	}
	return s.items[idx], true
}

// PeekRange returns a slice of length up to n starting at the position the
// next Consume would return from. The returned slice may be shorter than n
// if fewer items remain; ok is false only if start is already past EOF.
func (s *Stream[T]) PeekRange(n int) (items []T, ok bool) {
	start := s.pos
	if s.reconsume {
		start = s.pos - 1
	}
	if start >= len(s.items) {
		return nil, false
	}
	end := start + n
	if end > len(s.items) {
		end = len(s.items)
	}
	return s.items[start:end], true
}

// AtEOF reports whether the cursor has been exhausted.
func (s *Stream[T]) AtEOF() bool {
	if s.eof {
		return true
	}
	pos := s.pos
	if s.reconsume {
		pos--
	}
	return pos >= len(s.items)
}

// Finish drains every remaining item from the current position and marks
// the stream EOF.
func (s *Stream[T]) Finish() []T {
	start := s.pos
	if s.reconsume {
		start = s.pos - 1
		s.reconsume = false
	}
	if start >= len(s.items) {
		s.eof = true
		return nil
	}
	rest := s.items[start:]
	s.pos = len(s.items)
	s.eof = true
	return rest
}

// Pos returns the index of the next item Consume would hand out, ignoring
// any pending reconsume. The value is an item index (for a rune stream, a
// rune index rather than a byte offset) and can be passed back to SeekTo.
func (s *Stream[T]) Pos() int {
	return s.pos
}

// SeekTo restores the cursor to a position previously returned by Pos,
// clearing any pending reconsume and the EOF latch. Used by lookahead
// parsers (e.g. the HTML tokenizer's speculative markup-declaration and
// named-character-reference matching) that need to backtrack after a failed
// multi-item match.
func (s *Stream[T]) SeekTo(pos int) {
	s.pos = pos
	s.reconsume = false
	s.eof = false
}
