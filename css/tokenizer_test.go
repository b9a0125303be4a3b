package css

import "testing"

func tokenTypes(input string) []TokenType {
	tok := NewTokenizer(input)
	var types []TokenType
	for {
		tk := tok.Next()
		types = append(types, tk.Type)
		if tk.Type == EOFToken {
			return types
		}
	}
}

func TestTokenizeIdentAndColon(t *testing.T) {
	tok := NewTokenizer("color: red;")
	want := []TokenType{IdentToken, ColonToken, WhitespaceToken, IdentToken, SemicolonToken, EOFToken}
	for _, w := range want {
		tk := tok.Next()
		if tk.Type != w {
			t.Fatalf("got %v, want %v", tk.Type, w)
		}
	}
}

func TestTokenizeHashID(t *testing.T) {
	tok := NewTokenizer("#nav")
	tk := tok.Next()
	if tk.Type != HashToken || tk.Value != "nav" || tk.HashType != HashID {
		t.Fatalf("got %+v", tk)
	}
}

func TestTokenizeHashUnrestricted(t *testing.T) {
	// Leading digit: valid hash value but not a valid identifier.
	tok := NewTokenizer("#1a2b")
	tk := tok.Next()
	if tk.Type != HashToken || tk.HashType != HashUnrestricted {
		t.Fatalf("got %+v", tk)
	}
}

func TestTokenizeNumberDimensionPercentage(t *testing.T) {
	cases := []struct {
		input string
		want  TokenType
	}{
		{"12", NumberToken},
		{"12px", DimensionToken},
		{"50%", PercentageToken},
		{"-3.14", NumberToken},
		{"1e3", NumberToken},
	}
	for _, c := range cases {
		tk := NewTokenizer(c.input).Next()
		if tk.Type != c.want {
			t.Errorf("%q: got %v, want %v", c.input, tk.Type, c.want)
		}
	}
}

func TestTokenizeString(t *testing.T) {
	tk := NewTokenizer(`"hello\"world"`).Next()
	if tk.Type != StringToken || tk.Value != `hello"world` {
		t.Fatalf("got %+v", tk)
	}
}

func TestTokenizeBadStringOnNewline(t *testing.T) {
	tok := NewTokenizer("\"abc\ndef")
	tk := tok.Next()
	if tk.Type != BadStringToken || tk.Value != "abc" {
		t.Fatalf("got %+v", tk)
	}
	// Newline must be reconsumed, not swallowed.
	next := tok.Next()
	if next.Type != WhitespaceToken {
		t.Fatalf("expected reconsumed newline as whitespace, got %v", next.Type)
	}
}

func TestTokenizeFunctionVsIdent(t *testing.T) {
	tk := NewTokenizer("rgba(").Next()
	if tk.Type != FunctionToken || tk.Value != "rgba" {
		t.Fatalf("got %+v", tk)
	}
	tk2 := NewTokenizer("rgba").Next()
	if tk2.Type != IdentToken {
		t.Fatalf("got %+v", tk2)
	}
}

func TestTokenizeURLUnquoted(t *testing.T) {
	tk := NewTokenizer("url(foo.png)").Next()
	if tk.Type != URLToken || tk.Value != "foo.png" {
		t.Fatalf("got %+v", tk)
	}
}

func TestTokenizeURLQuotedBecomesFunction(t *testing.T) {
	tk := NewTokenizer(`url("foo.png")`).Next()
	if tk.Type != FunctionToken || tk.Value != "url" {
		t.Fatalf("got %+v", tk)
	}
}

func TestTokenizeBadURL(t *testing.T) {
	tk := NewTokenizer("url(foo bar.png)").Next()
	if tk.Type != BadURLToken {
		t.Fatalf("got %+v", tk)
	}
}

func TestTokenizeCDOCDC(t *testing.T) {
	types := tokenTypes("<!-- -->")
	if types[0] != CDOToken {
		t.Fatalf("got %v", types[0])
	}
	found := false
	for _, tt := range types {
		if tt == CDCToken {
			found = true
		}
	}
	if !found {
		t.Fatal("expected CDC token")
	}
}

func TestTokenizeComment(t *testing.T) {
	types := tokenTypes("a/* comment */b")
	want := []TokenType{IdentToken, IdentToken, EOFToken}
	if len(types) != len(want) {
		t.Fatalf("got %v", types)
	}
}

func TestTokenizeUnterminatedCommentReachesEOF(t *testing.T) {
	types := tokenTypes("a/* comment")
	if types[len(types)-1] != EOFToken {
		t.Fatalf("expected tokenizer to terminate, got %v", types)
	}
}

func TestTokenizeEscape(t *testing.T) {
	tk := NewTokenizer(`\41 bc`).Next() // \41 is 'A'
	if tk.Type != IdentToken || tk.Value != "Abc" {
		t.Fatalf("got %+v", tk)
	}
}

func TestPreprocessNullReplacedWithFFFD(t *testing.T) {
	tk := NewTokenizer("a\x00b").Next()
	if tk.Type != IdentToken || tk.Value != "a�b" {
		t.Fatalf("got %+v", tk)
	}
}

func TestTokenizeAtKeyword(t *testing.T) {
	tk := NewTokenizer("@media").Next()
	if tk.Type != AtKeywordToken || tk.Value != "media" {
		t.Fatalf("got %+v", tk)
	}
}

func TestRoundTripReserializeRetokenizes(t *testing.T) {
	// spec.md §8: re-serializing tokens with single-space separators then
	// re-tokenizing yields the same token sequence (for normalized input
	// containing no information only recoverable from raw whitespace runs).
	// The separators themselves tokenize as Whitespace, so the re-tokenized
	// sequence is compared with its Whitespace tokens left out.
	input := "div.a#b:hover{color:red}"
	first := tokenTypes(input)

	tok := NewTokenizer(input)
	var rendered string
	for {
		tk := tok.Next()
		if tk.Type == EOFToken {
			break
		}
		s := serializeToken(tk)
		switch tk.Type {
		case LeftBraceToken:
			s = "{"
		case RightBraceToken:
			s = "}"
		}
		rendered += s + " "
	}
	var second []TokenType
	for _, ty := range tokenTypes(rendered) {
		if ty != WhitespaceToken {
			second = append(second, ty)
		}
	}
	if len(first) != len(second) {
		t.Fatalf("tokenization not stable: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("token %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}
