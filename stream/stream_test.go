package stream

import "testing"

func TestConsumeStickyEOF(t *testing.T) {
	s := New([]byte("ab"))
	for i := 0; i < 2; i++ {
		if _, ok := s.Consume(); !ok {
			t.Fatalf("expected item %d", i)
		}
	}
	if _, ok := s.Consume(); ok {
		t.Fatal("expected EOF")
	}
	if _, ok := s.Consume(); ok {
		t.Fatal("expected EOF to remain sticky")
	}
}

func TestReconsume(t *testing.T) {
	s := New([]byte("xy"))
	b, _ := s.Consume()
	if b != 'x' {
		t.Fatalf("got %q", b)
	}
	s.Reconsume()
	b, _ = s.Consume()
	if b != 'x' {
		t.Fatalf("reconsume: got %q, want 'x'", b)
	}
	b, _ = s.Consume()
	if b != 'y' {
		t.Fatalf("got %q, want 'y'", b)
	}
}

func TestPeekNthMatchesPeekWhenNotReconsuming(t *testing.T) {
	s := New([]byte("abc"))
	p0, _ := s.Peek()
	pn, _ := s.PeekNth(0)
	if p0 != pn {
		t.Fatalf("peek %q != peekNth(0) %q", p0, pn)
	}
}

func TestFinish(t *testing.T) {
	s := New([]byte("hello"))
	s.Consume()
	rest := s.Finish()
	if string(rest) != "ello" {
		t.Fatalf("got %q", rest)
	}
	if !s.AtEOF() {
		t.Fatal("expected EOF after Finish")
	}
}

func TestRuneStreamMatches(t *testing.T) {
	r := NewRunes("DOCTYPE html")
	if !r.Matches("doctype", false, true) {
		t.Fatal("expected case-insensitive match")
	}
	if r.Pos() != len("DOCTYPE") {
		t.Fatalf("pos = %d", r.Pos())
	}
}

func TestRuneStreamMatchesNoConsumeOnFailure(t *testing.T) {
	r := NewRunes("hello")
	if r.Matches("world", true, true) {
		t.Fatal("expected no match")
	}
	if r.Pos() != 0 {
		t.Fatalf("expected no consumption on mismatch, pos = %d", r.Pos())
	}
}
