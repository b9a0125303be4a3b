// Package html provides HTML5 tokenization and tree construction.
//
// Spec references:
// - HTML5 §12.2.5 Tokenization: https://html.spec.whatwg.org/multipage/parsing.html#tokenization
package html

import (
	"strconv"
	"strings"

	"github.com/mosaicbrowser/webcore/stream"
)

// TokenType discriminates the kind of an HTML token.
type TokenType int

const (
	ErrorToken TokenType = iota
	DoctypeToken
	StartTagToken
	EndTagToken
	CommentToken
	TextToken
	EOFToken
)

// Attribute is one name/value pair on a start tag token. Attribute names are
// lowercased by the tokenizer; a name already present is dropped (HTML5
// §12.2.5.33 "duplicate attribute" parse error: keep the first, discard
// later).
type Attribute struct {
	Name  string
	Value string
}

// Token is one unit emitted by the tokenizer to the tree builder.
type Token struct {
	Type        TokenType
	Name        string // tag name, or empty for comment/text
	Data        string // comment text, or run of character data
	Attrs       []Attribute
	SelfClosing bool

	// Doctype fields.
	PublicID    string
	SystemID    string
	ForceQuirks bool
}

// rawtextKind selects which of the tag-content states follows a start tag,
// chosen by the tree builder based on the element name (spec.md §4.4
// "RAWTEXT / RCDATA / PLAINTEXT: per-element-name selection").
type rawtextKind int

const (
	normalContent rawtextKind = iota
	rawtextContent
	rcdataContent
	scriptDataContent
	plaintextContent
)

// RawtextKindForTag reports which content model a tree builder should switch
// the tokenizer into immediately after emitting the given start tag, per the
// elements the HTML5 tokenizer treats specially.
func RawtextKindForTag(name string) rawtextKind {
	switch name {
	case "script":
		return scriptDataContent
	case "style", "xmp", "iframe", "noembed", "noframes":
		return rawtextContent
	case "textarea", "title":
		return rcdataContent
	case "plaintext":
		return plaintextContent
	default:
		return normalContent
	}
}

const (
	RawtextKindNormal     = normalContent
	RawtextKindRawtext    = rawtextContent
	RawtextKindRCDATA     = rcdataContent
	RawtextKindScriptData = scriptDataContent
	RawtextKindPlaintext  = plaintextContent
)

type tokenizerState int

const (
	dataState tokenizerState = iota
	rcdataState
	rawtextState
	scriptDataState
	plaintextState
)

// Tokenizer implements the HTML5 tokenization state machine (spec.md §4.4).
// It is driven codepoint-at-a-time via an internal stream.Stream[rune], but
// Next coalesces consecutive character tokens into a single TextToken — the
// tree builder processes runs of character data together in every insertion
// mode, so per-codepoint emission would only add bookkeeping on both sides.
type Tokenizer struct {
	s       *stream.Stream[rune]
	state   tokenizerState
	lastTag string // name of the most recently emitted start tag, for </script> etc. matching
	pending *Token // a token already computed but not yet returned, e.g. an
	// end tag recognized while closing out a pending text run
}

// NewTokenizer creates a tokenizer positioned at the start of input.
func NewTokenizer(input string) *Tokenizer {
	runes := []rune(normalizeInput(input))
	return &Tokenizer{s: stream.New(runes), state: dataState}
}

// normalizeInput applies HTML5 preprocessing: normalize CRLF/CR to LF, and
// replace U+0000 with U+FFFD (spec.md §4.4 "preprocessing normalizes line
// endings and U+0000").
func normalizeInput(input string) string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")
	return strings.ReplaceAll(input, "\x00", "�")
}

// SwitchTo sets the tokenizer's content-model state. The tree builder calls
// this immediately after consuming a start tag whose name demands RAWTEXT,
// RCDATA, script-data or PLAINTEXT content.
func (t *Tokenizer) SwitchTo(kind rawtextKind) {
	switch kind {
	case rawtextContent:
		t.state = rawtextState
	case rcdataContent:
		t.state = rcdataState
	case scriptDataContent:
		t.state = scriptDataState
	case plaintextContent:
		t.state = plaintextState
	default:
		t.state = dataState
	}
}

func (t *Tokenizer) peek() (rune, bool) { return t.s.Peek() }
func (t *Tokenizer) next() (rune, bool) { return t.s.Consume() }
func (t *Tokenizer) reconsume(rune)     { t.s.Reconsume() }

// Next returns the next token, or an EOFToken once input is exhausted.
func (t *Tokenizer) Next() Token {
	if t.pending != nil {
		tok := *t.pending
		t.pending = nil
		return tok
	}
	switch t.state {
	case rawtextState:
		return t.readRawtextLike(false)
	case rcdataState:
		return t.readRawtextLike(true)
	case scriptDataState:
		return t.readScriptData()
	case plaintextState:
		return t.readPlaintext()
	}

	r, ok := t.next()
	if !ok {
		return Token{Type: EOFToken}
	}
	if r != '<' {
		t.reconsume(r)
		return t.readText()
	}

	r2, ok2 := t.next()
	if !ok2 {
		return Token{Type: TextToken, Data: "<"}
	}
	switch {
	case r2 == '!':
		return t.readMarkupDeclaration()
	case r2 == '/':
		return t.readEndTagOpen()
	case isASCIIAlpha(r2):
		t.reconsume(r2)
		return t.readStartTag()
	case r2 == '?':
		return t.readBogusComment()
	default:
		t.reconsume(r2)
		return Token{Type: TextToken, Data: "<"}
	}
}

// readText consumes the Data state's character run up to the next '<',
// resolving character references as it goes (spec.md §4.4 "Character
// references: in data/attribute value").
func (t *Tokenizer) readText() Token {
	var b strings.Builder
	for {
		r, ok := t.peek()
		if !ok || r == '<' {
			break
		}
		t.next()
		if r == '&' {
			b.WriteString(t.consumeCharacterReference(false))
			continue
		}
		b.WriteRune(r)
	}
	return Token{Type: TextToken, Data: b.String()}
}

// readRawtextLike consumes RAWTEXT/RCDATA content, watching only for the end
// tag matching the tag that opened this content model.
func (t *Tokenizer) readRawtextLike(decodeEntities bool) Token {
	var b strings.Builder
	for {
		r, ok := t.peek()
		if !ok {
			t.state = dataState
			if b.Len() == 0 {
				return Token{Type: EOFToken}
			}
			return Token{Type: TextToken, Data: b.String()}
		}
		if r == '&' && decodeEntities {
			t.next()
			b.WriteString(t.consumeCharacterReference(false))
			continue
		}
		if r == '<' {
			if end, ok := t.tryConsumeMatchingEndTag(); ok {
				t.state = dataState
				if b.Len() == 0 {
					return end
				}
				t.pending = &end
				return Token{Type: TextToken, Data: b.String()}
			}
		}
		t.next()
		b.WriteRune(r)
	}
}

// readScriptData consumes script-data content, including the escaped and
// double-escaped sub-states triggered by a "<!--" appearing inside a
// <script> element: a "<script>...</script>" pair nested inside that
// comment doesn't end the outer element, but a bare "</script>" while only
// singly escaped does, exactly as an unescaped closing tag would. "-->"
// always drops back to plain script data, regardless of nesting depth.
func (t *Tokenizer) readScriptData() Token {
	var b strings.Builder
	escaped := false
	double := false
	dashes := 0

	for {
		r, ok := t.peek()
		if !ok {
			t.state = dataState
			if b.Len() == 0 {
				return Token{Type: EOFToken}
			}
			return Token{Type: TextToken, Data: b.String()}
		}

		if !escaped {
			if r == '<' {
				if end, ok := t.tryConsumeMatchingEndTag(); ok {
					t.state = dataState
					if b.Len() == 0 {
						return end
					}
					t.pending = &end
					return Token{Type: TextToken, Data: b.String()}
				}
				if t.matchesAndConsume("<!--") {
					b.WriteString("<!--")
					escaped, dashes = true, 2
					continue
				}
			}
			t.next()
			b.WriteRune(r)
			continue
		}

		switch r {
		case '-':
			t.next()
			b.WriteByte('-')
			if dashes < 2 {
				dashes++
			}
			continue
		case '>':
			if dashes >= 2 {
				t.next()
				b.WriteByte('>')
				escaped, double, dashes = false, false, 0
				continue
			}
		case '<':
			dashes = 0
			if !double {
				if end, ok := t.tryConsumeMatchingEndTag(); ok {
					t.state = dataState
					if b.Len() == 0 {
						return end
					}
					t.pending = &end
					return Token{Type: TextToken, Data: b.String()}
				}
				if t.matchesTagMarkerAndConsume("<script") {
					b.WriteString("<script")
					double = true
					continue
				}
			} else if t.matchesTagMarkerAndConsume("</script") {
				b.WriteString("</script")
				double = false
				continue
			}
		}

		dashes = 0
		t.next()
		b.WriteRune(r)
	}
}

// matchesTagMarkerAndConsume matches marker (e.g. "<script") case
// insensitively, requiring it be followed by a tag-name boundary (anything
// but a letter or digit, or EOF) so "<scriptx" doesn't falsely match. On a
// match it consumes marker and leaves the boundary character unconsumed; on
// a mismatch it leaves the stream untouched.
func (t *Tokenizer) matchesTagMarkerAndConsume(marker string) bool {
	save := t.s.Pos()
	if !t.matchesCaseInsensitiveAndConsume(marker) {
		return false
	}
	if c, ok := t.peek(); ok && isASCIIAlnum(c) {
		t.s.SeekTo(save)
		return false
	}
	return true
}

// tryConsumeMatchingEndTag peeks past a '<' for "</" + lastTag (case
// insensitive) + '>' and, on a match, consumes it and returns the resulting
// end tag token. On mismatch it leaves the stream untouched.
func (t *Tokenizer) tryConsumeMatchingEndTag() (Token, bool) {
	save := t.s.Pos()
	r, _ := t.next() // consume '<'
	_ = r
	slash, ok := t.next()
	if !ok || slash != '/' {
		t.s.SeekTo(save)
		return Token{}, false
	}
	var name strings.Builder
	for {
		c, ok := t.peek()
		if !ok || !(isASCIIAlpha(c) || (name.Len() > 0 && isASCIIAlnum(c))) {
			break
		}
		t.next()
		name.WriteRune(c)
	}
	if !strings.EqualFold(name.String(), t.lastTag) || name.Len() == 0 {
		t.s.SeekTo(save)
		return Token{}, false
	}
	for {
		c, ok := t.next()
		if !ok || c == '>' {
			break
		}
	}
	return Token{Type: EndTagToken, Name: strings.ToLower(name.String())}, true
}

func (t *Tokenizer) readPlaintext() Token {
	var b strings.Builder
	for {
		r, ok := t.next()
		if !ok {
			if b.Len() == 0 {
				return Token{Type: EOFToken}
			}
			return Token{Type: TextToken, Data: b.String()}
		}
		b.WriteRune(r)
	}
}

// readStartTag implements the Tag-open/Tag-name/attribute states for a start
// tag (spec.md §4.4).
func (t *Tokenizer) readStartTag() Token {
	name := t.readTagName()
	attrs := t.readAttributes()
	selfClosing := false

	for {
		r, ok := t.next()
		if !ok {
			break
		}
		if r == '/' {
			if n, ok := t.peek(); ok && n == '>' {
				t.next()
				selfClosing = true
				break
			}
			continue
		}
		if r == '>' {
			break
		}
		// Unexpected char where '>' was expected (malformed tag); drop it
		// and keep looking for the terminator (HTML5 bogus-tag recovery).
	}

	t.lastTag = strings.ToLower(name)
	return Token{Type: StartTagToken, Name: strings.ToLower(name), Attrs: attrs, SelfClosing: selfClosing}
}

func (t *Tokenizer) readEndTagOpen() Token {
	r, ok := t.peek()
	if !ok {
		return Token{Type: TextToken, Data: "</"}
	}
	if r == '>' {
		t.next()
		return t.Next() // HTML5: end-tag-open with '>' is a parse error, emit nothing, reconsume in data
	}
	if !isASCIIAlpha(r) {
		return t.readBogusComment()
	}
	name := t.readTagName()
	// Skip to '>' ; attributes on an end tag are parse errors but tolerated.
	t.readAttributes()
	for {
		c, ok := t.next()
		if !ok || c == '>' {
			break
		}
	}
	return Token{Type: EndTagToken, Name: strings.ToLower(name)}
}

func (t *Tokenizer) readTagName() string {
	var b strings.Builder
	for {
		r, ok := t.peek()
		if !ok || r == '>' || r == '/' || isHTMLSpace(r) {
			break
		}
		t.next()
		b.WriteRune(r)
	}
	return b.String()
}

// readAttributes implements the Before-attribute-name through
// After-attribute-value states (spec.md §4.4 "Attribute").
func (t *Tokenizer) readAttributes() []Attribute {
	var attrs []Attribute
	seen := map[string]bool{}

	for {
		for {
			r, ok := t.peek()
			if !ok || !isHTMLSpace(r) {
				break
			}
			t.next()
		}
		r, ok := t.peek()
		if !ok || r == '>' || r == '/' {
			break
		}

		var nameB strings.Builder
		for {
			r, ok := t.peek()
			if !ok || r == '=' || r == '>' || r == '/' || isHTMLSpace(r) {
				break
			}
			t.next()
			nameB.WriteRune(toASCIILower(r))
		}
		name := nameB.String()
		if name == "" {
			break
		}

		for {
			r, ok := t.peek()
			if !ok || !isHTMLSpace(r) {
				break
			}
			t.next()
		}

		value := ""
		if r, ok := t.peek(); ok && r == '=' {
			t.next()
			for {
				r, ok := t.peek()
				if !ok || !isHTMLSpace(r) {
					break
				}
				t.next()
			}
			value = t.readAttributeValue()
		}

		if !seen[name] {
			seen[name] = true
			attrs = append(attrs, Attribute{Name: name, Value: value})
		}
	}
	return attrs
}

func (t *Tokenizer) readAttributeValue() string {
	r, ok := t.peek()
	if !ok {
		return ""
	}
	if r == '"' || r == '\'' {
		quote := r
		t.next()
		var b strings.Builder
		for {
			r, ok := t.next()
			if !ok || r == quote {
				break
			}
			if r == '&' {
				b.WriteString(t.consumeCharacterReference(true))
				continue
			}
			b.WriteRune(r)
		}
		return b.String()
	}

	var b strings.Builder
	for {
		r, ok := t.peek()
		if !ok || isHTMLSpace(r) || r == '>' {
			break
		}
		t.next()
		if r == '&' {
			b.WriteString(t.consumeCharacterReference(true))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// readMarkupDeclaration implements the Markup-declaration-open state
// (spec.md §4.4): comments, DOCTYPE, and CDATA sections (read by readCDATA
// into a comment token); anything else becomes a bogus comment.
func (t *Tokenizer) readMarkupDeclaration() Token {
	if t.matchesAndConsume("--") {
		return t.readComment()
	}
	if t.matchesCaseInsensitiveAndConsume("DOCTYPE") {
		return t.readDoctype()
	}
	if t.matchesAndConsume("[CDATA[") {
		return t.readCDATA()
	}
	return t.readBogusComment()
}

func (t *Tokenizer) matchesAndConsume(s string) bool {
	save := t.s.Pos()
	for _, want := range s {
		got, ok := t.next()
		if !ok || got != want {
			t.s.SeekTo(save)
			return false
		}
	}
	return true
}

func (t *Tokenizer) matchesCaseInsensitiveAndConsume(s string) bool {
	save := t.s.Pos()
	for _, want := range s {
		got, ok := t.next()
		if !ok || toASCIILower(got) != toASCIILower(want) {
			t.s.SeekTo(save)
			return false
		}
	}
	return true
}

// readComment implements the Comment states (spec.md §4.4), collapsing them
// since Go strings make the "append one rune" approach trivial without the
// separate comment-start/comment-end-dash substates mattering observably.
func (t *Tokenizer) readComment() Token {
	var b strings.Builder
	for {
		r, ok := t.next()
		if !ok {
			return Token{Type: CommentToken, Data: b.String()}
		}
		if r == '-' && t.matchesAndConsume("->") {
			return Token{Type: CommentToken, Data: b.String()}
		}
		b.WriteRune(r)
	}
}

// readBogusComment implements the Bogus-comment state: everything up to '>'
// (or EOF) becomes comment data, used for "<?", malformed "<!", and "</" not
// followed by a letter.
func (t *Tokenizer) readBogusComment() Token {
	var b strings.Builder
	for {
		r, ok := t.next()
		if !ok || r == '>' {
			break
		}
		b.WriteRune(r)
	}
	return Token{Type: CommentToken, Data: b.String()}
}

// readCDATA is only reachable from markup-declaration-open. It emits the
// section's text, up to the closing "]]>" (or EOF), as a comment token. It
// does not reproduce HTML5's bogus-comment handling outside foreign content,
// which keeps the "[CDATA[" prefix and ends at the first '>'.
func (t *Tokenizer) readCDATA() Token {
	var b strings.Builder
	for {
		if t.matchesAndConsume("]]>") {
			break
		}
		r, ok := t.next()
		if !ok {
			break
		}
		b.WriteRune(r)
	}
	return Token{Type: CommentToken, Data: b.String()}
}

// readDoctype implements the DOCTYPE states (spec.md §4.4), extracting the
// name and, when present, the PUBLIC/SYSTEM identifiers; anything it can't
// make sense of forces quirks mode rather than aborting.
func (t *Tokenizer) readDoctype() Token {
	tok := Token{Type: DoctypeToken}
	t.skipHTMLSpace()

	var name strings.Builder
	for {
		r, ok := t.peek()
		if !ok || r == '>' || isHTMLSpace(r) {
			break
		}
		t.next()
		name.WriteRune(toASCIILower(r))
	}
	tok.Name = name.String()
	t.skipHTMLSpace()

	if t.matchesCaseInsensitiveAndConsume("PUBLIC") {
		t.skipHTMLSpace()
		tok.PublicID = t.readQuotedDoctypeID()
		t.skipHTMLSpace()
		if r, ok := t.peek(); ok && (r == '"' || r == '\'') {
			tok.SystemID = t.readQuotedDoctypeID()
		}
	} else if t.matchesCaseInsensitiveAndConsume("SYSTEM") {
		t.skipHTMLSpace()
		tok.SystemID = t.readQuotedDoctypeID()
	}

	for {
		r, ok := t.next()
		if !ok || r == '>' {
			break
		}
	}
	if tok.Name == "" {
		tok.ForceQuirks = true
	}
	return tok
}

func (t *Tokenizer) readQuotedDoctypeID() string {
	r, ok := t.peek()
	if !ok || (r != '"' && r != '\'') {
		return ""
	}
	quote := r
	t.next()
	var b strings.Builder
	for {
		r, ok := t.next()
		if !ok || r == quote {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (t *Tokenizer) skipHTMLSpace() {
	for {
		r, ok := t.peek()
		if !ok || !isHTMLSpace(r) {
			return
		}
		t.next()
	}
}

// consumeCharacterReference implements HTML5 §12.2.4.2 Character reference
// state: named references are matched against the table in entities.go,
// numeric references use the legacy C1 remap and U+FFFD fallback.
func (t *Tokenizer) consumeCharacterReference(inAttribute bool) string {
	r, ok := t.peek()
	if !ok {
		return "&"
	}
	if r == '#' {
		t.next()
		return t.consumeNumericCharacterReference()
	}

	// Named reference: the run of ASCII alphanumerics up to a ';' is looked
	// up whole in namedEntities. No shorter prefix is tried, and a name
	// without a terminating ';' is left as literal text.
	save := t.s.Pos()
	var raw strings.Builder
	for i := 0; i < 32; i++ {
		c, ok := t.peek()
		if !ok || !(isASCIIAlnum(c)) {
			break
		}
		t.next()
		raw.WriteRune(c)
		if c2, ok := t.peek(); ok && c2 == ';' {
			t.next()
			if v, ok := namedEntities[raw.String()]; ok {
				return v
			}
			t.s.SeekTo(save)
			break
		}
	}
	t.s.SeekTo(save)
	if inAttribute {
		return "&"
	}
	return "&"
}

// consumeNumericCharacterReference implements §12.2.4.3: decimal or
// hexadecimal, with the legacy 0x80-0x9F Windows-1252 remap and the
// overflow/surrogate fallback to U+FFFD.
func (t *Tokenizer) consumeNumericCharacterReference() string {
	hex := false
	if r, ok := t.peek(); ok && (r == 'x' || r == 'X') {
		t.next()
		hex = true
	}
	var digits strings.Builder
	for {
		r, ok := t.peek()
		if !ok {
			break
		}
		if hex && isHexDigit(r) {
			t.next()
			digits.WriteRune(r)
			continue
		}
		if !hex && r >= '0' && r <= '9' {
			t.next()
			digits.WriteRune(r)
			continue
		}
		break
	}
	if r, ok := t.peek(); ok && r == ';' {
		t.next()
	}
	if digits.Len() == 0 {
		return "�"
	}
	base := 10
	if hex {
		base = 16
	}
	code, err := strconv.ParseInt(digits.String(), base, 64)
	if err != nil {
		return "�"
	}
	if v, ok := c1ControlRemap[code]; ok {
		return string(rune(v))
	}
	if code == 0 || code > 0x10FFFF || (code >= 0xD800 && code <= 0xDFFF) {
		return "�"
	}
	return string(rune(code))
}

// c1ControlRemap is the legacy numeric character reference table for the
// Windows-1252 codepoints 0x80-0x9F (spec.md §4.4 "legacy remap per the
// published table").
var c1ControlRemap = map[int64]rune{
	0x80: 0x20AC, 0x82: 0x201A, 0x83: 0x0192, 0x84: 0x201E,
	0x85: 0x2026, 0x86: 0x2020, 0x87: 0x2021, 0x88: 0x02C6,
	0x89: 0x2030, 0x8A: 0x0160, 0x8B: 0x2039, 0x8C: 0x0152,
	0x8E: 0x017D, 0x91: 0x2018, 0x92: 0x2019, 0x93: 0x201C,
	0x94: 0x201D, 0x95: 0x2022, 0x96: 0x2013, 0x97: 0x2014,
	0x98: 0x02DC, 0x99: 0x2122, 0x9A: 0x0161, 0x9B: 0x203A,
	0x9C: 0x0153, 0x9E: 0x017E, 0x9F: 0x0178,
}

func isASCIIAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isASCIIAlnum(r rune) bool {
	return isASCIIAlpha(r) || (r >= '0' && r <= '9')
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isHTMLSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}

func toASCIILower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
