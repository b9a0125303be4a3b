package css

import (
	"strings"

	"github.com/mosaicbrowser/webcore/stream"
)

// Rule is one of StyleRule, AtRule, ImportRule, or MediaRule (spec.md
// §3.3 Stylesheet Model).
type Rule interface {
	rule()
}

// StyleRule is a qualified rule whose prelude parsed as a selector list.
type StyleRule struct {
	Selectors    SelectorList
	Declarations []*Declaration
}

func (*StyleRule) rule() {}

// AtRuleNode is a generic at-rule retained for at-rules this package does
// not give special cascade treatment to (e.g. @font-face, @keyframes).
type AtRuleNode struct {
	Name    string
	Prelude []ComponentValue
	Block   *SimpleBlock // nil if the at-rule was terminated by ';'
}

func (*AtRuleNode) rule() {}

// ImportRule is a parsed @import.
type ImportRule struct {
	URL   string
	Media []string
}

func (*ImportRule) rule() {}

// MediaRule is a parsed @media, holding its own nested rule list.
type MediaRule struct {
	Prelude []ComponentValue
	Rules   []Rule
}

func (*MediaRule) rule() {}

// Declaration is one property: value pair inside a declaration block
// (spec.md §3.3).
type Declaration struct {
	Property      string
	Value         []ComponentValue
	Important     bool
	CaseSensitive bool
}

// Stylesheet is an ordered list of rules, plus the metadata spec.md §3.3
// attaches to it.
type Stylesheet struct {
	OriginURL string
	Media     []string
	// Owner is a weak back-reference to the linking <link>/<style> element,
	// or nil for a constructed stylesheet. It is `any` rather than
	// *dom.Node to avoid a css<->dom import cycle (dom already imports css
	// for Document.Stylesheets).
	Owner any
	Rules []Rule
}

// Parser consumes a flat token sequence into rules and declarations.
type Parser struct {
	s *stream.Stream[Token]
}

func newTokenStream(tokens []Token) *stream.Stream[Token] {
	return stream.New(append(append([]Token{}, tokens...), Token{Type: EOFToken}))
}

// NewParser tokenizes input and prepares a Parser over the result.
func NewParser(input string) *Parser {
	tok := NewTokenizer(input)
	var tokens []Token
	for {
		t := tok.Next()
		tokens = append(tokens, t)
		if t.Type == EOFToken {
			break
		}
	}
	return &Parser{s: stream.New(tokens)}
}

func (p *Parser) peek() Token {
	t, ok := p.s.Peek()
	if !ok {
		return Token{Type: EOFToken}
	}
	return t
}

func (p *Parser) next() Token {
	t, ok := p.s.Consume()
	if !ok {
		return Token{Type: EOFToken}
	}
	return t
}

func (p *Parser) skipWhitespace() {
	for p.peek().Type == WhitespaceToken {
		p.next()
	}
}

// ParseStylesheet parses top-level CSS into a Stylesheet (spec.md §4.3
// "Parsing at top level").
func ParseStylesheet(input string) *Stylesheet {
	p := NewParser(input)
	sheet := &Stylesheet{}
	for {
		tk := p.peek()
		switch tk.Type {
		case EOFToken:
			return sheet
		case WhitespaceToken, CDOToken, CDCToken:
			p.next() // top-level CDO/CDC is skipped per spec.md §4.3
		case AtKeywordToken:
			if r := p.consumeAtRule(); r != nil {
				sheet.Rules = append(sheet.Rules, r)
			}
		default:
			if r := p.consumeQualifiedRule(topLevelStyleRule); r != nil {
				sheet.Rules = append(sheet.Rules, r)
			}
		}
	}
}

type qualifiedRuleKind int

const (
	topLevelStyleRule qualifiedRuleKind = iota
	nestedStyleRule
)

// consumeQualifiedRule reads a prelude up to the next simple block and
// parses the prelude as a selector list.
func (p *Parser) consumeQualifiedRule(kind qualifiedRuleKind) Rule {
	var prelude []ComponentValue
	for {
		tk := p.peek()
		switch tk.Type {
		case EOFToken:
			return nil // parse error: qualified rule dropped, per spec.md §4.3
		case LeftBraceToken:
			p.next()
			block := p.consumeSimpleBlockBody(LeftBraceToken)
			selectors := ParseSelectorList(preludeTokens(prelude))
			if len(selectors) == 0 {
				return nil
			}
			return &StyleRule{Selectors: selectors, Declarations: parseDeclarationsFromBlock(block)}
		default:
			prelude = append(prelude, p.consumeComponentValue())
		}
	}
}

// consumeAtRule reads an @-rule: name, prelude, then either a block or a
// terminating ';' (spec.md §4.3).
func (p *Parser) consumeAtRule() Rule {
	name := p.next().Value // AtKeywordToken
	var prelude []ComponentValue
	for {
		tk := p.peek()
		switch tk.Type {
		case SemicolonToken:
			p.next()
			return finishAtRule(name, prelude, nil)
		case EOFToken:
			return finishAtRule(name, prelude, nil)
		case LeftBraceToken:
			p.next()
			block := p.consumeSimpleBlockBody(LeftBraceToken)
			return finishAtRule(name, prelude, block)
		default:
			prelude = append(prelude, p.consumeComponentValue())
		}
	}
}

func finishAtRule(name string, prelude []ComponentValue, block *SimpleBlock) Rule {
	switch strings.ToLower(name) {
	case "import":
		url := ""
		for _, cv := range prelude {
			switch v := cv.(type) {
			case TokenValue:
				if v.Token.Type == StringToken || v.Token.Type == URLToken {
					url = v.Token.Value
				}
			case Function:
				if strings.EqualFold(v.Name, "url") {
					for _, inner := range v.Values {
						if tv, ok := inner.(TokenValue); ok && tv.Token.Type == StringToken {
							url = tv.Token.Value
						}
					}
				}
			}
		}
		return &ImportRule{URL: url}
	case "media":
		var nested []Rule
		if block != nil {
			nested = parseRuleListFromBlock(block)
		}
		return &MediaRule{Prelude: prelude, Rules: nested}
	default:
		return &AtRuleNode{Name: name, Prelude: prelude, Block: block}
	}
}

// consumeComponentValue dispatches on the next token: a block-opening token
// yields a SimpleBlock, a Function-token yields a Function, anything else a
// TokenValue (spec.md §4.3 "Component value").
func (p *Parser) consumeComponentValue() ComponentValue {
	tk := p.next()
	switch tk.Type {
	case LeftBraceToken, LeftBracketToken, LeftParenToken:
		return SimpleBlock{Open: tk.Type, Values: p.consumeSimpleBlockValues(tk.Type)}
	case FunctionToken:
		return Function{Name: tk.Value, Values: p.consumeFunctionValues()}
	default:
		return TokenValue{Token: tk}
	}
}

func (p *Parser) consumeSimpleBlockValues(open TokenType) []ComponentValue {
	close := matchingClose[open]
	var values []ComponentValue
	for {
		tk := p.peek()
		if tk.Type == close || tk.Type == EOFToken {
			if tk.Type == close {
				p.next()
			}
			return values
		}
		values = append(values, p.consumeComponentValue())
	}
}

// consumeSimpleBlockBody is consumeSimpleBlockValues specialized for the
// `{`-block already consumed by the caller (used by rule parsing, which
// needs the *SimpleBlock value itself for declaration splitting).
func (p *Parser) consumeSimpleBlockBody(open TokenType) *SimpleBlock {
	return &SimpleBlock{Open: open, Values: p.consumeSimpleBlockValues(open)}
}

func (p *Parser) consumeFunctionValues() []ComponentValue {
	var values []ComponentValue
	for {
		tk := p.peek()
		if tk.Type == RightParenToken || tk.Type == EOFToken {
			if tk.Type == RightParenToken {
				p.next()
			}
			return values
		}
		values = append(values, p.consumeComponentValue())
	}
}

func parseRuleListFromBlock(block *SimpleBlock) []Rule {
	var rules []Rule
	p := &Parser{s: stream.New(append(componentValuesToTokens(block.Values), Token{Type: EOFToken}))}
	for {
		tk := p.peek()
		switch tk.Type {
		case EOFToken:
			return rules
		case WhitespaceToken, CDOToken, CDCToken:
			p.next()
		case AtKeywordToken:
			if r := p.consumeAtRule(); r != nil {
				rules = append(rules, r)
			}
		default:
			if r := p.consumeQualifiedRule(nestedStyleRule); r != nil {
				rules = append(rules, r)
			}
		}
	}
}

// componentValuesToTokens flattens component values back to a token
// sequence so nested rule lists (e.g. inside @media) can reuse the same
// token-stream-based rule parser. Functions and simple blocks are expanded
// back into their delimiting tokens plus contents.
func componentValuesToTokens(values []ComponentValue) []Token {
	var out []Token
	for _, v := range values {
		switch cv := v.(type) {
		case TokenValue:
			out = append(out, cv.Token)
		case Function:
			out = append(out, Token{Type: FunctionToken, Value: cv.Name})
			out = append(out, componentValuesToTokens(cv.Values)...)
			out = append(out, Token{Type: RightParenToken})
		case SimpleBlock:
			out = append(out, Token{Type: cv.Open})
			out = append(out, componentValuesToTokens(cv.Values)...)
			out = append(out, Token{Type: matchingClose[cv.Open]})
		}
	}
	return out
}

func preludeTokens(prelude []ComponentValue) []Token {
	return append(componentValuesToTokens(prelude), Token{Type: EOFToken})
}

// parseDeclarationsFromBlock implements spec.md §4.3's declaration-block
// parsing: split the block's token list on top-level ';', then parse each
// non-empty chunk as one declaration, discarding malformed ones.
func parseDeclarationsFromBlock(block *SimpleBlock) []*Declaration {
	return ParseDeclarationList(componentValuesToTokens(block.Values))
}

// ParseDeclarationList splits tokens on top-level semicolons and parses
// each chunk as a declaration. Exported so the style resolver can reuse it
// for `style="..."` attribute values (spec.md's inline-style path).
func ParseDeclarationList(tokens []Token) []*Declaration {
	var decls []*Declaration
	var chunk []Token
	depth := 0
	flush := func() {
		if d := parseOneDeclaration(chunk); d != nil {
			decls = append(decls, d)
		}
		chunk = nil
	}
	for _, tk := range tokens {
		switch tk.Type {
		case LeftBraceToken, LeftBracketToken, LeftParenToken:
			depth++
		case RightBraceToken, RightBracketToken, RightParenToken:
			if depth > 0 {
				depth--
			}
		}
		if tk.Type == SemicolonToken && depth == 0 {
			flush()
			continue
		}
		if tk.Type == EOFToken {
			continue
		}
		chunk = append(chunk, tk)
	}
	flush()
	return decls
}

// parseOneDeclaration consumes: Ident, whitespace, ':', value tokens, with
// an optional trailing "!important" (spec.md §4.3).
func parseOneDeclaration(tokens []Token) *Declaration {
	i := 0
	skipWS := func() {
		for i < len(tokens) && tokens[i].Type == WhitespaceToken {
			i++
		}
	}
	skipWS()
	if i >= len(tokens) || tokens[i].Type != IdentToken {
		return nil
	}
	name := strings.ToLower(tokens[i].Value)
	i++
	skipWS()
	if i >= len(tokens) || tokens[i].Type != ColonToken {
		return nil
	}
	i++

	valueTokens := tokens[i:]
	important := false
	// Trim trailing whitespace, then detect "!important" (a '!' delim
	// immediately followed, modulo whitespace, by ident "important").
	end := len(valueTokens)
	for end > 0 && valueTokens[end-1].Type == WhitespaceToken {
		end--
	}
	j := end
	if j > 0 && valueTokens[j-1].Type == IdentToken && strings.EqualFold(valueTokens[j-1].Value, "important") {
		k := j - 1
		for k > 0 && valueTokens[k-1].Type == WhitespaceToken {
			k--
		}
		if k > 0 && valueTokens[k-1].Type == DelimToken && valueTokens[k-1].Delim == '!' {
			important = true
			end = k - 1
			for end > 0 && valueTokens[end-1].Type == WhitespaceToken {
				end--
			}
		}
	}
	valueTokens = valueTokens[:end]

	var values []ComponentValue
	sub := &Parser{s: stream.New(append(append([]Token{}, valueTokens...), Token{Type: EOFToken}))}
	for sub.peek().Type != EOFToken {
		values = append(values, sub.consumeComponentValue())
	}

	return &Declaration{Property: name, Value: values, Important: important}
}

// ParseInlineStyle parses a `style="..."` attribute value as a declaration
// list (no selector, no surrounding block).
func ParseInlineStyle(value string) []*Declaration {
	tok := NewTokenizer(value)
	var tokens []Token
	for {
		t := tok.Next()
		if t.Type == EOFToken {
			break
		}
		tokens = append(tokens, t)
	}
	return ParseDeclarationList(tokens)
}

// Serialize renders a component-value list back to CSS text, collapsing
// every whitespace token to a single space. Used by the tokenizer
// round-trip property in spec.md §8.
func Serialize(values []ComponentValue) string {
	var b strings.Builder
	for _, v := range values {
		switch cv := v.(type) {
		case TokenValue:
			b.WriteString(serializeToken(cv.Token))
		case Function:
			b.WriteString(cv.Name)
			b.WriteByte('(')
			b.WriteString(Serialize(cv.Values))
			b.WriteByte(')')
		case SimpleBlock:
			open, close := blockDelims(cv.Open)
			b.WriteString(open)
			b.WriteString(Serialize(cv.Values))
			b.WriteString(close)
		}
	}
	return b.String()
}

func blockDelims(open TokenType) (string, string) {
	switch open {
	case LeftBraceToken:
		return "{", "}"
	case LeftBracketToken:
		return "[", "]"
	default:
		return "(", ")"
	}
}

func serializeToken(tk Token) string {
	switch tk.Type {
	case WhitespaceToken:
		return " "
	case IdentToken:
		return tk.Value
	case StringToken:
		return `"` + tk.Value + `"`
	case NumberToken:
		return tk.Repr
	case DimensionToken:
		return tk.Repr + tk.Value
	case PercentageToken:
		return tk.Repr + "%"
	case DelimToken:
		return string(tk.Delim)
	case ColonToken:
		return ":"
	case SemicolonToken:
		return ";"
	case CommaToken:
		return ","
	case HashToken:
		return "#" + tk.Value
	default:
		return ""
	}
}
