package css

import "testing"

func parseOneSelector(t *testing.T, input string) ComplexSelector {
	t.Helper()
	tok := NewTokenizer(input)
	var tokens []Token
	for {
		tk := tok.Next()
		if tk.Type == EOFToken {
			break
		}
		tokens = append(tokens, tk)
	}
	list := ParseSelectorList(tokens)
	if len(list) != 1 {
		t.Fatalf("expected 1 selector, got %d: %+v", len(list), list)
	}
	return list[0]
}

func TestSpecificityUlNavLiActiveA(t *testing.T) {
	// spec.md §8 scenario 4: "ul#nav li.active a" -> (1, 1, 3)
	cs := parseOneSelector(t, "ul#nav li.active a")
	got := cs.Specificity()
	want := Specificity{A: 1, B: 1, C: 3}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSpecificityFooterNotNavLi(t *testing.T) {
	// spec.md §8 scenario 5: "#footer *:not(nav) li" -> (1, 0, 2)
	cs := parseOneSelector(t, "#footer *:not(nav) li")
	got := cs.Specificity()
	want := Specificity{A: 1, B: 0, C: 2}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSpecificityNotContributesMaxOfArguments(t *testing.T) {
	// :not(#a.b) should contribute (1,1,0), matching the max-specificity
	// argument "#a.b" taken alone.
	cs := parseOneSelector(t, "div:not(#a.b)")
	got := cs.Specificity()
	want := Specificity{A: 1, B: 1, C: 1} // div contributes C=1 too
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSpecificityWhereContributesZero(t *testing.T) {
	cs := parseOneSelector(t, "div:where(#a.b)")
	got := cs.Specificity()
	want := Specificity{A: 0, B: 0, C: 1} // only div's type selector counts
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestParseChildAndSiblingCombinators(t *testing.T) {
	cs := parseOneSelector(t, "ul > li + li ~ span")
	if len(cs.Compounds) != 4 {
		t.Fatalf("expected 4 compounds, got %d", len(cs.Compounds))
	}
	want := []Combinator{Child, AdjacentSibling, GeneralSibling}
	for i, c := range want {
		if cs.Combinators[i] != c {
			t.Fatalf("combinator %d: got %v, want %v", i, cs.Combinators[i], c)
		}
	}
}

func TestParseAttributeSelectorWithMatcherAndModifier(t *testing.T) {
	cs := parseOneSelector(t, `a[href^="https://" i]`)
	compound := cs.Compounds[0]
	var attr *SimpleSelector
	for i := range compound.Simple {
		if compound.Simple[i].Kind == AttrSelector {
			attr = &compound.Simple[i]
		}
	}
	if attr == nil {
		t.Fatal("expected an attribute selector")
	}
	if attr.Value != "href" || attr.AttrMatcher != "^=" || attr.AttrValue != "https://" || !attr.AttrFoldCase {
		t.Fatalf("got %+v", attr)
	}
}

func TestParsePseudoElementDoubleColon(t *testing.T) {
	cs := parseOneSelector(t, "p::before")
	found := false
	for _, s := range cs.Compounds[0].Simple {
		if s.Kind == PseudoElement && s.Value == "before" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected ::before parsed as pseudo-element")
	}
}

func TestParseUniversalSelectorContributesNothing(t *testing.T) {
	cs := parseOneSelector(t, "*")
	got := cs.Specificity()
	if got != (Specificity{}) {
		t.Fatalf("expected zero specificity, got %+v", got)
	}
}

func TestParseMultipleSelectorsInList(t *testing.T) {
	tok := NewTokenizer("h1, h2, h3")
	var tokens []Token
	for {
		tk := tok.Next()
		if tk.Type == EOFToken {
			break
		}
		tokens = append(tokens, tk)
	}
	list := ParseSelectorList(tokens)
	if len(list) != 3 {
		t.Fatalf("expected 3 selectors, got %d", len(list))
	}
}
