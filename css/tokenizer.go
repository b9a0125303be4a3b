// Package css provides a CSS Syntax Level 3 tokenizer and parser: component
// values, qualified/at-rules, declaration blocks, and a selector grammar
// with specificity computation.
//
// Spec references:
// - spec.md §4.2 CSS Tokenizer
// - https://www.w3.org/TR/css-syntax-3/
package css

import (
	"strconv"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/mosaicbrowser/webcore/stream"
)

// TokenType identifies the kind of a CSS token.
type TokenType int

const (
	EOFToken TokenType = iota
	IdentToken
	FunctionToken
	AtKeywordToken
	HashToken
	StringToken
	BadStringToken
	URLToken
	BadURLToken
	DelimToken
	NumberToken
	PercentageToken
	DimensionToken
	WhitespaceToken
	CDOToken
	CDCToken
	ColonToken
	SemicolonToken
	CommaToken
	LeftBracketToken
	RightBracketToken
	LeftParenToken
	RightParenToken
	LeftBraceToken
	RightBraceToken
)

func (t TokenType) String() string {
	switch t {
	case EOFToken:
		return "EOF"
	case IdentToken:
		return "Ident"
	case FunctionToken:
		return "Function"
	case AtKeywordToken:
		return "AtKeyword"
	case HashToken:
		return "Hash"
	case StringToken:
		return "String"
	case BadStringToken:
		return "BadString"
	case URLToken:
		return "URL"
	case BadURLToken:
		return "BadURL"
	case DelimToken:
		return "Delim"
	case NumberToken:
		return "Number"
	case PercentageToken:
		return "Percentage"
	case DimensionToken:
		return "Dimension"
	case WhitespaceToken:
		return "Whitespace"
	case CDOToken:
		return "CDO"
	case CDCToken:
		return "CDC"
	case ColonToken:
		return "Colon"
	case SemicolonToken:
		return "Semicolon"
	case CommaToken:
		return "Comma"
	case LeftBracketToken:
		return "["
	case RightBracketToken:
		return "]"
	case LeftParenToken:
		return "("
	case RightParenToken:
		return ")"
	case LeftBraceToken:
		return "{"
	case RightBraceToken:
		return "}"
	default:
		return "?"
	}
}

// NumericType distinguishes an integer literal from one that used a
// fractional part or exponent (spec.md §4.2 consume-number).
type NumericType int

const (
	IntegerNumber NumericType = iota
	NumberType_
)

// HashType records whether a hash token's value would itself be a valid
// identifier (spec.md §4.2 Hash{value, HashType}).
type HashType int

const (
	HashUnrestricted HashType = iota
	HashID
)

// Token is one lexical unit of CSS Syntax Level 3.
type Token struct {
	Type TokenType

	// Ident, Function, AtKeyword, Hash, String, URL, Dimension unit.
	Value string

	HashType HashType

	// Delim.
	Delim rune

	// Number, Percentage, Dimension.
	NumValue   float64
	NumericT   NumericType
	Repr       string // the original textual representation of the number
}

// Tokenizer produces a lazy sequence of CSS tokens from preprocessed input.
type Tokenizer struct {
	s *stream.RuneStream
}

// replacementTransformer rewrites U+0000 and lone surrogate codepoints to
// U+FFFD, per CSS Syntax Level 3 §3.3's input preprocessing step.
var replacementTransformer = runes.Map(func(r rune) rune {
	if r == 0 || (r >= 0xD800 && r <= 0xDFFF) {
		return '�'
	}
	return r
})

// preprocess normalizes line endings and replaces U+0000 / surrogates, per
// CSS Syntax Level 3 §3.3 and spec.md §4.2.
func preprocess(input string) string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")
	input = strings.ReplaceAll(input, "\f", "\n")
	out, _, err := transform.String(replacementTransformer, input)
	if err != nil {
		return input
	}
	return out
}

// NewTokenizer creates a Tokenizer over raw (unpreprocessed) CSS source.
func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{s: stream.NewRunes(preprocess(input))}
}

func isWhitespace(r rune) bool {
	return r == '\n' || r == '\t' || r == ' '
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isNonASCII(r rune) bool {
	return r >= 0x80
}

func isNameStart(r rune) bool {
	return isLetter(r) || isNonASCII(r) || r == '_'
}

func isNameChar(r rune) bool {
	return isNameStart(r) || isDigit(r) || r == '-'
}

// Next consumes and returns the next token. It always terminates at EOF
// (spec.md §4.2: "tokenization does not fail — it always terminates").
func (t *Tokenizer) Next() Token {
	t.consumeComments()

	r, ok := t.s.Consume()
	if !ok {
		return Token{Type: EOFToken}
	}

	switch {
	case isWhitespace(r):
		for {
			next, ok := t.s.Peek()
			if !ok || !isWhitespace(next) {
				break
			}
			t.s.Consume()
		}
		return Token{Type: WhitespaceToken}
	case r == '"':
		return t.consumeString('"')
	case r == '\'':
		return t.consumeString('\'')
	case r == '#':
		if n, ok := t.s.Peek(); ok && (isNameChar(n) || t.isValidEscapeAt(0)) {
			ht := HashUnrestricted
			if t.wouldStartIdentifier() {
				ht = HashID
			}
			name := t.consumeName()
			return Token{Type: HashToken, Value: name, HashType: ht}
		}
		return Token{Type: DelimToken, Delim: '#'}
	case r == '(':
		return Token{Type: LeftParenToken}
	case r == ')':
		return Token{Type: RightParenToken}
	case r == '+':
		if t.wouldStartNumber('+') {
			t.s.Reconsume()
			return t.consumeNumeric()
		}
		return Token{Type: DelimToken, Delim: '+'}
	case r == ',':
		return Token{Type: CommaToken}
	case r == '-':
		if t.wouldStartNumber('-') {
			t.s.Reconsume()
			return t.consumeNumeric()
		}
		if n1, ok1 := t.s.PeekNth(0); ok1 && n1 == '-' {
			if n2, ok2 := t.s.PeekNth(1); ok2 && n2 == '>' {
				t.s.Consume()
				t.s.Consume()
				return Token{Type: CDCToken}
			}
		}
		if t.wouldStartIdentifierAt('-') {
			t.s.Reconsume()
			return t.consumeIdentLike()
		}
		return Token{Type: DelimToken, Delim: '-'}
	case r == '.':
		if t.wouldStartNumber('.') {
			t.s.Reconsume()
			return t.consumeNumeric()
		}
		return Token{Type: DelimToken, Delim: '.'}
	case r == ':':
		return Token{Type: ColonToken}
	case r == ';':
		return Token{Type: SemicolonToken}
	case r == '<':
		if t.s.Matches("!--", true, true) {
			return Token{Type: CDOToken}
		}
		return Token{Type: DelimToken, Delim: '<'}
	case r == '@':
		if t.wouldStartIdentifier() {
			name := t.consumeName()
			return Token{Type: AtKeywordToken, Value: name}
		}
		return Token{Type: DelimToken, Delim: '@'}
	case r == '[':
		return Token{Type: LeftBracketToken}
	case r == '\\':
		if t.isValidEscapeAt(-1) {
			t.s.Reconsume()
			return t.consumeIdentLike()
		}
		return Token{Type: DelimToken, Delim: '\\'}
	case r == ']':
		return Token{Type: RightBracketToken}
	case r == '{':
		return Token{Type: LeftBraceToken}
	case r == '}':
		return Token{Type: RightBraceToken}
	case isDigit(r):
		t.s.Reconsume()
		return t.consumeNumeric()
	case isNameStart(r):
		t.s.Reconsume()
		return t.consumeIdentLike()
	default:
		return Token{Type: DelimToken, Delim: r}
	}
}

// consumeComments strips one or more /* ... */ blocks, tolerating an
// unterminated comment by running to EOF (spec.md §4.2).
func (t *Tokenizer) consumeComments() {
	for {
		r1, ok1 := t.s.PeekNth(0)
		r2, ok2 := t.s.PeekNth(1)
		if !ok1 || !ok2 || r1 != '/' || r2 != '*' {
			return
		}
		t.s.Consume()
		t.s.Consume()
		for {
			a, ok := t.s.Consume()
			if !ok {
				return
			}
			if a == '*' {
				if b, ok := t.s.Peek(); ok && b == '/' {
					t.s.Consume()
					break
				}
			}
		}
	}
}

// isValidEscapeAt reports whether, starting delta runes after the cursor's
// replay position, there is a backslash followed by a non-newline.
// delta == -1 checks starting at the already-consumed backslash.
func (t *Tokenizer) isValidEscapeAt(delta int) bool {
	r0, ok0 := t.s.PeekNth(delta)
	if !ok0 || r0 != '\\' {
		return false
	}
	r1, ok1 := t.s.PeekNth(delta + 1)
	return ok1 && r1 != '\n'
}

// wouldStartIdentifier implements the 3-char lookahead from spec.md §4.2,
// evaluated with the cursor positioned just before the first character.
func (t *Tokenizer) wouldStartIdentifier() bool {
	r0, ok0 := t.s.PeekNth(0)
	if !ok0 {
		return false
	}
	return t.wouldStartIdentifierAt(r0)
}

func (t *Tokenizer) wouldStartIdentifierAt(first rune) bool {
	switch {
	case first == '-':
		r1, ok1 := t.s.PeekNth(1)
		if !ok1 {
			return false
		}
		if isNameStart(r1) || r1 == '-' {
			return true
		}
		if r1 == '\\' {
			r2, ok2 := t.s.PeekNth(2)
			return ok2 && r2 != '\n'
		}
		return false
	case isNameStart(first):
		return true
	case first == '\\':
		r1, ok1 := t.s.PeekNth(1)
		return ok1 && r1 != '\n'
	default:
		return false
	}
}

// wouldStartNumber checks whether, with first already conceptually at the
// cursor, a number follows (spec.md §4.2 consume-number lookahead).
func (t *Tokenizer) wouldStartNumber(first rune) bool {
	switch first {
	case '+', '-':
		r1, ok1 := t.s.PeekNth(0)
		if !ok1 {
			return false
		}
		if isDigit(r1) {
			return true
		}
		if r1 == '.' {
			r2, ok2 := t.s.PeekNth(1)
			return ok2 && isDigit(r2)
		}
		return false
	case '.':
		r1, ok1 := t.s.PeekNth(0)
		return ok1 && isDigit(r1)
	default:
		return isDigit(first)
	}
}

// consumeEscape implements spec.md §4.2 consume-escape: the caller has
// already consumed the backslash.
func (t *Tokenizer) consumeEscape() rune {
	r, ok := t.s.Consume()
	if !ok {
		return '�'
	}
	if isHexDigit(r) {
		hex := string(r)
		for i := 0; i < 5; i++ {
			n, ok := t.s.Peek()
			if !ok || !isHexDigit(n) {
				break
			}
			hex += string(n)
			t.s.Consume()
		}
		if n, ok := t.s.Peek(); ok && isWhitespace(n) {
			t.s.Consume()
		}
		v, err := strconv.ParseInt(hex, 16, 64)
		if err != nil || v == 0 || v > 0x10FFFF || (v >= 0xD800 && v <= 0xDFFF) {
			return '�'
		}
		return rune(v)
	}
	return r
}

// consumeName reads a name per spec.md §4.2, resolving escapes.
func (t *Tokenizer) consumeName() string {
	var b strings.Builder
	for {
		r, ok := t.s.Consume()
		if !ok {
			return b.String()
		}
		if isNameChar(r) {
			b.WriteRune(r)
			continue
		}
		if r == '\\' {
			if n, ok := t.s.Peek(); ok && n != '\n' {
				b.WriteRune(t.consumeEscape())
				continue
			}
		}
		t.s.Reconsume()
		return b.String()
	}
}

func (t *Tokenizer) consumeString(quote rune) Token {
	var b strings.Builder
	for {
		r, ok := t.s.Consume()
		if !ok {
			return Token{Type: StringToken, Value: b.String()}
		}
		if r == quote {
			return Token{Type: StringToken, Value: b.String()}
		}
		if r == '\n' {
			t.s.Reconsume()
			return Token{Type: BadStringToken, Value: b.String()}
		}
		if r == '\\' {
			n, ok := t.s.Peek()
			if !ok {
				continue
			}
			if n == '\n' {
				t.s.Consume()
				continue
			}
			b.WriteRune(t.consumeEscape())
			continue
		}
		b.WriteRune(r)
	}
}

// consumeNumeric implements consume-number plus its number/percentage/
// dimension dispatch (spec.md §4.2).
func (t *Tokenizer) consumeNumeric() Token {
	val, repr, numType := t.consumeNumber()
	if t.wouldStartIdentifier() {
		unit := t.consumeName()
		return Token{Type: DimensionToken, NumValue: val, Repr: repr, NumericT: numType, Value: unit}
	}
	if n, ok := t.s.Peek(); ok && n == '%' {
		t.s.Consume()
		return Token{Type: PercentageToken, NumValue: val, Repr: repr, NumericT: numType}
	}
	return Token{Type: NumberToken, NumValue: val, Repr: repr, NumericT: numType}
}

func (t *Tokenizer) consumeNumber() (float64, string, NumericType) {
	var repr strings.Builder
	numType := IntegerNumber

	if r, ok := t.s.Peek(); ok && (r == '+' || r == '-') {
		repr.WriteRune(r)
		t.s.Consume()
	}
	for {
		r, ok := t.s.Peek()
		if !ok || !isDigit(r) {
			break
		}
		repr.WriteRune(r)
		t.s.Consume()
	}
	if r, ok := t.s.PeekNth(0); ok && r == '.' {
		if r2, ok2 := t.s.PeekNth(1); ok2 && isDigit(r2) {
			numType = NumberType_
			repr.WriteRune(r)
			t.s.Consume()
			for {
				d, ok := t.s.Peek()
				if !ok || !isDigit(d) {
					break
				}
				repr.WriteRune(d)
				t.s.Consume()
			}
		}
	}
	if r, ok := t.s.PeekNth(0); ok && (r == 'e' || r == 'E') {
		off := 1
		if s, ok2 := t.s.PeekNth(1); ok2 && (s == '+' || s == '-') {
			off = 2
		}
		if d, ok3 := t.s.PeekNth(off); ok3 && isDigit(d) {
			numType = NumberType_
			repr.WriteRune(r)
			t.s.Consume()
			if s, ok2 := t.s.Peek(); ok2 && (s == '+' || s == '-') {
				repr.WriteRune(s)
				t.s.Consume()
			}
			for {
				d, ok := t.s.Peek()
				if !ok || !isDigit(d) {
					break
				}
				repr.WriteRune(d)
				t.s.Consume()
			}
		}
	}

	f, _ := strconv.ParseFloat(repr.String(), 64)
	return f, repr.String(), numType
}

// consumeIdentLike implements consume-ident-like, including the url(...)
// special case (spec.md §4.2).
func (t *Tokenizer) consumeIdentLike() Token {
	name := t.consumeName()
	if strings.EqualFold(name, "url") {
		if r, ok := t.s.Peek(); ok && r == '(' {
			t.s.Consume()
			// Skip whitespace, then decide between quoted and bare URL.
			for {
				n, ok := t.s.Peek()
				if !ok || !isWhitespace(n) {
					break
				}
				t.s.Consume()
			}
			if n, ok := t.s.Peek(); ok && (n == '"' || n == '\'') {
				return Token{Type: FunctionToken, Value: name}
			}
			return t.consumeURL()
		}
	}
	if r, ok := t.s.Peek(); ok && r == '(' {
		t.s.Consume()
		return Token{Type: FunctionToken, Value: name}
	}
	return Token{Type: IdentToken, Value: name}
}

func (t *Tokenizer) consumeURL() Token {
	var b strings.Builder
	for {
		n, ok := t.s.Peek()
		if !ok || !isWhitespace(n) {
			break
		}
		t.s.Consume()
	}
	for {
		r, ok := t.s.Consume()
		if !ok {
			return Token{Type: URLToken, Value: b.String()}
		}
		switch {
		case r == ')':
			return Token{Type: URLToken, Value: b.String()}
		case isWhitespace(r):
			for {
				n, ok := t.s.Peek()
				if !ok || !isWhitespace(n) {
					break
				}
				t.s.Consume()
			}
			if n, ok := t.s.Consume(); !ok || n != ')' {
				return t.consumeBadURLRemnants(b.String())
			}
			return Token{Type: URLToken, Value: b.String()}
		case r == '"' || r == '\'' || r == '(' || isNonPrintable(r):
			return t.consumeBadURLRemnants(b.String())
		case r == '\\':
			if t.isValidEscapeAt(-1) {
				b.WriteRune(t.consumeEscape())
				continue
			}
			return t.consumeBadURLRemnants(b.String())
		default:
			b.WriteRune(r)
		}
	}
}

func isNonPrintable(r rune) bool {
	return (r >= 0 && r <= 0x08) || r == 0x0B || (r >= 0x0E && r <= 0x1F) || r == 0x7F
}

func (t *Tokenizer) consumeBadURLRemnants(partial string) Token {
	for {
		r, ok := t.s.Consume()
		if !ok || r == ')' {
			return Token{Type: BadURLToken, Value: partial}
		}
		if r == '\\' && t.isValidEscapeAt(-1) {
			t.consumeEscape()
		}
	}
}
