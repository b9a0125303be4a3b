package css

import (
	"strings"

	"github.com/mosaicbrowser/webcore/stream"
)

// Combinator separates two compound selectors within a complex selector
// (spec.md §4.3 selector grammar).
type Combinator int

const (
	Descendant Combinator = iota
	Child
	AdjacentSibling
	GeneralSibling
)

// SimpleSelectorKind classifies one simple selector (spec.md §3.3).
type SimpleSelectorKind int

const (
	TypeSelector SimpleSelectorKind = iota
	UniversalSelector
	IDSelector
	ClassSelector
	AttrSelector
	PseudoClass
	PseudoElement
)

// SimpleSelector is one atom of a compound selector.
type SimpleSelector struct {
	Kind SimpleSelectorKind
	// Value is the tag name, id, class name, attribute name, or
	// pseudo-class/element name, depending on Kind.
	Value string

	// AttrSelector fields.
	AttrMatcher  string // one of "", "=", "~=", "|=", "^=", "$=", "*="
	AttrValue    string
	AttrFoldCase bool // modifier 'i'

	// Functional pseudo-class argument, parsed as a selector list for
	// :not()/:is()/:has()/:where(); nil for every other pseudo-class.
	Args SelectorList
}

// CompoundSelector is a contiguous run of simple selectors with no
// combinators (spec.md GLOSSARY).
type CompoundSelector struct {
	Simple []SimpleSelector
}

// ComplexSelector is compound (combinator compound)* (spec.md §4.3).
// Combinators[i] is the combinator between Compounds[i] and Compounds[i+1].
type ComplexSelector struct {
	Compounds   []CompoundSelector
	Combinators []Combinator
}

// SelectorList is a comma-separated list of complex selectors.
type SelectorList []ComplexSelector

// Specificity is the (A, B, C) tuple from spec.md §4.3.
type Specificity struct {
	A, B, C int
}

// Less reports whether s is less specific than other, breaking ties
// lexicographically on (A, B, C) as spec.md §4.3 requires. Document order
// is not this type's concern; callers break further ties themselves.
func (s Specificity) Less(other Specificity) bool {
	if s.A != other.A {
		return s.A < other.A
	}
	if s.B != other.B {
		return s.B < other.B
	}
	return s.C < other.C
}

func maxSpecificity(a, b Specificity) Specificity {
	if a.Less(b) {
		return b
	}
	return a
}

// ParseSelectorList parses a selector list out of a flat token sequence
// (typically a qualified rule's prelude or a functional pseudo-class's
// argument tokens).
func ParseSelectorList(tokens []Token) SelectorList {
	s := &selectorParser{s: stream.New(tokens)}
	return s.parseList(EOFToken)
}

type selectorParser struct {
	s *stream.Stream[Token]
}

func (p *selectorParser) peek() Token {
	t, ok := p.s.Peek()
	if !ok {
		return Token{Type: EOFToken}
	}
	return t
}

func (p *selectorParser) next() Token {
	t, ok := p.s.Consume()
	if !ok {
		return Token{Type: EOFToken}
	}
	return t
}

func (p *selectorParser) skipWS() bool {
	saw := false
	for p.peek().Type == WhitespaceToken {
		p.next()
		saw = true
	}
	return saw
}

// parseList parses complex-selector (',' complex-selector)* until `end`
// (EOFToken for a top-level prelude, RightParenToken inside a functional
// pseudo-class).
func (p *selectorParser) parseList(end TokenType) SelectorList {
	var list SelectorList
	p.skipWS()
	for {
		cs, ok := p.parseComplex(end)
		if ok {
			list = append(list, cs)
		}
		p.skipWS()
		tk := p.peek()
		if tk.Type == CommaToken {
			p.next()
			p.skipWS()
			continue
		}
		if tk.Type == end {
			if end == RightParenToken {
				p.next()
			}
			return list
		}
		return list
	}
}

func (p *selectorParser) parseComplex(end TokenType) (ComplexSelector, bool) {
	var cs ComplexSelector
	first, ok := p.parseCompound()
	if !ok {
		return cs, false
	}
	cs.Compounds = append(cs.Compounds, first)

	for {
		hadWS := p.skipWS()
		tk := p.peek()
		var comb Combinator
		haveComb := false
		switch {
		case tk.Type == DelimToken && tk.Delim == '>':
			comb, haveComb = Child, true
		case tk.Type == DelimToken && tk.Delim == '+':
			comb, haveComb = AdjacentSibling, true
		case tk.Type == DelimToken && tk.Delim == '~':
			comb, haveComb = GeneralSibling, true
		}
		if haveComb {
			p.next()
			p.skipWS()
			next, ok := p.parseCompound()
			if !ok {
				return cs, len(cs.Compounds) > 0
			}
			cs.Combinators = append(cs.Combinators, comb)
			cs.Compounds = append(cs.Compounds, next)
			continue
		}
		if tk.Type == CommaToken || tk.Type == end || tk.Type == EOFToken {
			return cs, true
		}
		if hadWS {
			next, ok := p.parseCompound()
			if !ok {
				return cs, true
			}
			cs.Combinators = append(cs.Combinators, Descendant)
			cs.Compounds = append(cs.Compounds, next)
			continue
		}
		// Unrecognized token where a combinator or compound was expected:
		// bail out of this complex selector (parse error, recovered).
		return cs, true
	}
}

func (p *selectorParser) parseCompound() (CompoundSelector, bool) {
	var cp CompoundSelector

	tk := p.peek()
	switch {
	case tk.Type == IdentToken:
		p.next()
		cp.Simple = append(cp.Simple, SimpleSelector{Kind: TypeSelector, Value: tk.Value})
	case tk.Type == DelimToken && tk.Delim == '*':
		p.next()
		cp.Simple = append(cp.Simple, SimpleSelector{Kind: UniversalSelector})
	}

	for {
		tk := p.peek()
		switch {
		case tk.Type == HashToken:
			p.next()
			cp.Simple = append(cp.Simple, SimpleSelector{Kind: IDSelector, Value: tk.Value})
		case tk.Type == DelimToken && tk.Delim == '.':
			p.next()
			name := p.next()
			if name.Type == IdentToken {
				cp.Simple = append(cp.Simple, SimpleSelector{Kind: ClassSelector, Value: name.Value})
			}
		case tk.Type == LeftBracketToken:
			p.next()
			cp.Simple = append(cp.Simple, p.parseAttrSelector())
		case tk.Type == ColonToken:
			p.next()
			pseudoEl := false
			if p.peek().Type == ColonToken {
				p.next()
				pseudoEl = true
			}
			sel, ok := p.parsePseudo(pseudoEl)
			if ok {
				cp.Simple = append(cp.Simple, sel)
			}
		default:
			if len(cp.Simple) == 0 {
				return cp, false
			}
			return cp, true
		}
	}
}

func (p *selectorParser) parseAttrSelector() SimpleSelector {
	p.skipWS()
	name := p.next()
	sel := SimpleSelector{Kind: AttrSelector, Value: name.Value}
	p.skipWS()

	matcher := ""
	tk := p.peek()
	switch {
	case tk.Type == DelimToken && tk.Delim == '=':
		matcher = "="
		p.next()
	case tk.Type == DelimToken:
		two := map[rune]string{'~': "~=", '|': "|=", '^': "^=", '$': "$=", '*': "*="}[tk.Delim]
		if two != "" {
			p.next()
			if eq := p.next(); eq.Type == DelimToken && eq.Delim == '=' {
				matcher = two
			}
		}
	}
	if matcher != "" {
		sel.AttrMatcher = matcher
		p.skipWS()
		v := p.next()
		if v.Type == StringToken || v.Type == IdentToken {
			sel.AttrValue = v.Value
		}
		p.skipWS()
		if id := p.peek(); id.Type == IdentToken && (id.Value == "i" || id.Value == "I") {
			p.next()
			sel.AttrFoldCase = true
		} else if id.Type == IdentToken && (id.Value == "s" || id.Value == "S") {
			p.next()
		}
	}
	p.skipWS()
	if p.peek().Type == RightBracketToken {
		p.next()
	}
	return sel
}

var logicalPseudoClasses = map[string]bool{"not": true, "is": true, "has": true, "where": true}

func (p *selectorParser) parsePseudo(pseudoElement bool) (SimpleSelector, bool) {
	tk := p.next()
	switch tk.Type {
	case IdentToken:
		kind := PseudoClass
		if pseudoElement || legacyPseudoElementNames[strings.ToLower(tk.Value)] {
			kind = PseudoElement
		}
		return SimpleSelector{Kind: kind, Value: strings.ToLower(tk.Value)}, true
	case FunctionToken:
		name := strings.ToLower(tk.Value)
		args := p.parseList(RightParenToken)
		if !logicalPseudoClasses[name] {
			// Unknown functional pseudo-class: still consume to the
			// matching ')' (already done by parseList) but don't retain
			// args we don't assign any specificity meaning to.
			return SimpleSelector{Kind: PseudoClass, Value: name}, true
		}
		return SimpleSelector{Kind: PseudoClass, Value: name, Args: args}, true
	default:
		return SimpleSelector{}, false
	}
}

var legacyPseudoElementNames = map[string]bool{
	"before": true, "after": true, "first-line": true, "first-letter": true,
}

// Specificity computes the (A, B, C) tuple for a complex selector (spec.md
// §4.3). :where() contributes zero; :not()/:is()/:has() contribute the
// maximum specificity among their arguments, per spec.md §9(b).
func (cs ComplexSelector) Specificity() Specificity {
	var total Specificity
	for _, comp := range cs.Compounds {
		for _, simple := range comp.Simple {
			switch simple.Kind {
			case IDSelector:
				total.A++
			case ClassSelector, AttrSelector:
				total.B++
			case TypeSelector:
				total.C++
			case PseudoElement:
				total.C++
			case UniversalSelector:
				// contributes nothing
			case PseudoClass:
				if simple.Value == "where" {
					continue
				}
				if logicalPseudoClasses[simple.Value] {
					var best Specificity
					for i, arg := range simple.Args {
						s := arg.Specificity()
						if i == 0 || best.Less(s) {
							best = maxSpecificity(best, s)
						}
					}
					total.A += best.A
					total.B += best.B
					total.C += best.C
					continue
				}
				total.B++
			}
		}
	}
	return total
}
