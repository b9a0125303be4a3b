package style

import (
	"testing"

	"github.com/mosaicbrowser/webcore/css"
	"github.com/mosaicbrowser/webcore/dom"
)

func elem(tag string, attrs map[string]string, children ...*dom.Node) *dom.Node {
	n := dom.NewElement(dom.HTMLNamespace, tag)
	for k, v := range attrs {
		n.SetAttribute(k, v)
	}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func rule(selector string, decls ...*css.Declaration) *css.Stylesheet {
	return &css.Stylesheet{
		Rules: []css.Rule{
			&css.StyleRule{
				Selectors:    css.ParseSelectorList(tokenize(selector)),
				Declarations: decls,
			},
		},
	}
}

func tokenize(input string) []css.Token {
	tok := css.NewTokenizer(input)
	var tokens []css.Token
	for {
		t := tok.Next()
		tokens = append(tokens, t)
		if t.Type == css.EOFToken {
			break
		}
	}
	return tokens
}

func decl(property, value string) *css.Declaration {
	d := css.ParseDeclarationList(tokenize(property + ":" + value))
	if len(d) != 1 {
		panic("decl: expected exactly one declaration from " + property + ":" + value)
	}
	return d[0]
}

func TestMatchesSimpleSelectorTagName(t *testing.T) {
	div := elem("div", nil)
	sel := css.ParseSelectorList(tokenize("div"))[0]
	if !matchesComplexSelector(div, sel) {
		t.Error("expected div to match selector 'div'")
	}
	sel2 := css.ParseSelectorList(tokenize("p"))[0]
	if matchesComplexSelector(div, sel2) {
		t.Error("expected div not to match selector 'p'")
	}
}

func TestMatchesSimpleSelectorID(t *testing.T) {
	div := elem("div", map[string]string{"id": "header"})
	sel := css.ParseSelectorList(tokenize("#header"))[0]
	if !matchesComplexSelector(div, sel) {
		t.Error("expected div#header to match '#header'")
	}
	sel2 := css.ParseSelectorList(tokenize("#footer"))[0]
	if matchesComplexSelector(div, sel2) {
		t.Error("expected div#header not to match '#footer'")
	}
}

func TestMatchesSimpleSelectorClass(t *testing.T) {
	div := elem("div", map[string]string{"class": "container active main"})
	sel := css.ParseSelectorList(tokenize(".container.active"))[0]
	if !matchesComplexSelector(div, sel) {
		t.Error("expected div to match '.container.active'")
	}
	sel2 := css.ParseSelectorList(tokenize(".footer"))[0]
	if matchesComplexSelector(div, sel2) {
		t.Error("expected div not to match '.footer'")
	}
}

func TestSpecificityScenarios(t *testing.T) {
	// spec.md §8 scenario 4.
	cs := css.ParseSelectorList(tokenize("ul#nav li.active a"))[0]
	spec := cs.Specificity()
	if spec != (css.Specificity{A: 1, B: 1, C: 3}) {
		t.Errorf("expected specificity (1,1,3), got %+v", spec)
	}

	// spec.md §8 scenario 5.
	cs2 := css.ParseSelectorList(tokenize("#footer *:not(nav) li"))[0]
	spec2 := cs2.Specificity()
	if spec2 != (css.Specificity{A: 1, B: 0, C: 2}) {
		t.Errorf("expected specificity (1,0,2), got %+v", spec2)
	}
}

func TestCombinators(t *testing.T) {
	span := elem("span", nil)
	p := elem("p", nil, span)
	elem("div", nil, p) // sets span's grandparent

	childSel := css.ParseSelectorList(tokenize("p > span"))[0]
	if !matchesComplexSelector(span, childSel) {
		t.Error("expected span to match 'p > span'")
	}

	descendantSel := css.ParseSelectorList(tokenize("div span"))[0]
	if !matchesComplexSelector(span, descendantSel) {
		t.Error("expected span to match 'div span'")
	}

	wrongChildSel := css.ParseSelectorList(tokenize("div > span"))[0]
	if matchesComplexSelector(span, wrongChildSel) {
		t.Error("expected span NOT to match 'div > span' (span is a grandchild)")
	}
}

func TestAdjacentSiblingCombinator(t *testing.T) {
	p1 := elem("p", nil)
	p2 := elem("p", nil)
	elem("div", nil, p1, p2)

	sel := css.ParseSelectorList(tokenize("p + p"))[0]
	if matchesComplexSelector(p1, sel) {
		t.Error("first p has no preceding sibling, should not match 'p + p'")
	}
	if !matchesComplexSelector(p2, sel) {
		t.Error("second p should match 'p + p'")
	}
}

func TestPseudoClassNot(t *testing.T) {
	nav := elem("nav", nil)
	li := elem("li", nil)
	footer := elem("footer", map[string]string{"id": "footer"}, nav, li)
	_ = footer

	sel := css.ParseSelectorList(tokenize("#footer *:not(nav) li"))[0]
	if matchesComplexSelector(nav, sel) {
		t.Error("nav itself is not a li, should not match")
	}
}

func TestPseudoClassFirstLastChild(t *testing.T) {
	p1 := elem("p", nil)
	p2 := elem("p", nil)
	p3 := elem("p", nil)
	elem("div", nil, p1, p2, p3)

	first := css.ParseSelectorList(tokenize("p:first-child"))[0]
	last := css.ParseSelectorList(tokenize("p:last-child"))[0]

	if !matchesComplexSelector(p1, first) {
		t.Error("p1 should match :first-child")
	}
	if matchesComplexSelector(p2, first) {
		t.Error("p2 should not match :first-child")
	}
	if !matchesComplexSelector(p3, last) {
		t.Error("p3 should match :last-child")
	}
	if matchesComplexSelector(p2, last) {
		t.Error("p2 should not match :last-child")
	}
}

func TestStyleTreeBasicCascade(t *testing.T) {
	div := elem("div", map[string]string{"id": "main", "class": "container"})
	p := elem("p", nil)
	div.AppendChild(p)
	p.AppendChild(dom.NewText("Hello"))
	doc := dom.NewDocument()
	doc.AppendChild(div)

	sheet := &css.Stylesheet{
		Rules: []css.Rule{
			&css.StyleRule{
				Selectors:    css.ParseSelectorList(tokenize("div")),
				Declarations: []*css.Declaration{decl("color", "red")},
			},
			&css.StyleRule{
				Selectors:    css.ParseSelectorList(tokenize("#main")),
				Declarations: []*css.Declaration{decl("background", "blue")},
			},
			&css.StyleRule{
				Selectors:    css.ParseSelectorList(tokenize(".container")),
				Declarations: []*css.Declaration{decl("margin", "10px")},
			},
		},
	}

	tree := StyleTree(doc, sheet)
	divStyled := tree.Children[0]

	if divStyled.Styles["color"] != "red" {
		t.Errorf("expected color 'red', got %v", divStyled.Styles["color"])
	}
	if divStyled.Styles["background"] != "blue" {
		t.Errorf("expected background 'blue', got %v", divStyled.Styles["background"])
	}
	for _, side := range []string{"top", "right", "bottom", "left"} {
		if divStyled.Styles["margin-"+side] != "10px" {
			t.Errorf("expected margin-%s '10px', got %v", side, divStyled.Styles["margin-"+side])
		}
	}
}

func TestStyleTreeInheritance(t *testing.T) {
	span := elem("span", nil)
	p := elem("p", nil, span)
	div := elem("div", nil, p)
	doc := dom.NewDocument()
	doc.AppendChild(div)

	sheet := rule("div", decl("color", "red"), decl("font-size", "16px"))
	tree := StyleTree(doc, sheet)

	divStyled := tree.Children[0]
	pStyled := divStyled.Children[0]
	spanStyled := pStyled.Children[0]

	if pStyled.Styles["color"] != "red" {
		t.Errorf("expected p to inherit color 'red', got %v", pStyled.Styles["color"])
	}
	if spanStyled.Styles["font-size"] != "16px" {
		t.Errorf("expected span to inherit font-size '16px', got %v", spanStyled.Styles["font-size"])
	}
}

func TestStyleTreeSpecificityWins(t *testing.T) {
	div := elem("div", map[string]string{"id": "unique", "class": "special highlight"})
	doc := dom.NewDocument()
	doc.AppendChild(div)

	sheet := &css.Stylesheet{
		Rules: []css.Rule{
			&css.StyleRule{Selectors: css.ParseSelectorList(tokenize("div")), Declarations: []*css.Declaration{decl("color", "blue")}},
			&css.StyleRule{Selectors: css.ParseSelectorList(tokenize(".special")), Declarations: []*css.Declaration{decl("color", "green")}},
			&css.StyleRule{Selectors: css.ParseSelectorList(tokenize("#unique")), Declarations: []*css.Declaration{decl("color", "yellow")}},
		},
	}

	tree := StyleTree(doc, sheet)
	if tree.Children[0].Styles["color"] != "yellow" {
		t.Errorf("expected ID selector to win with color 'yellow', got %v", tree.Children[0].Styles["color"])
	}
}

func TestStyleTreeImportantOverridesSpecificity(t *testing.T) {
	div := elem("div", map[string]string{"id": "unique"})
	doc := dom.NewDocument()
	doc.AppendChild(div)

	lowSpec := decl("color", "red")
	lowSpec.Important = true

	sheet := &css.Stylesheet{
		Rules: []css.Rule{
			&css.StyleRule{Selectors: css.ParseSelectorList(tokenize("div")), Declarations: []*css.Declaration{lowSpec}},
			&css.StyleRule{Selectors: css.ParseSelectorList(tokenize("#unique")), Declarations: []*css.Declaration{decl("color", "blue")}},
		},
	}

	tree := StyleTree(doc, sheet)
	if tree.Children[0].Styles["color"] != "red" {
		t.Errorf("expected !important to win over higher specificity, got %v", tree.Children[0].Styles["color"])
	}
}

func TestStyleTreeInlineStyleWinsOverSelectors(t *testing.T) {
	div := elem("div", map[string]string{"id": "unique", "style": "color: red"})
	doc := dom.NewDocument()
	doc.AppendChild(div)

	sheet := &css.Stylesheet{
		Rules: []css.Rule{
			&css.StyleRule{Selectors: css.ParseSelectorList(tokenize("#unique")), Declarations: []*css.Declaration{decl("color", "blue")}},
		},
	}

	tree := StyleTree(doc, sheet)
	if tree.Children[0].Styles["color"] != "red" {
		t.Errorf("expected inline style 'red' to win, got %v", tree.Children[0].Styles["color"])
	}
}

func TestExpandShorthandMargin(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected map[string]string
	}{
		{"1 value", "10px", map[string]string{"margin-top": "10px", "margin-right": "10px", "margin-bottom": "10px", "margin-left": "10px"}},
		{"2 values", "10px 20px", map[string]string{"margin-top": "10px", "margin-right": "20px", "margin-bottom": "10px", "margin-left": "20px"}},
		{"3 values", "10px 20px 30px", map[string]string{"margin-top": "10px", "margin-right": "20px", "margin-bottom": "30px", "margin-left": "20px"}},
		{"4 values", "10px 20px 30px 40px", map[string]string{"margin-top": "10px", "margin-right": "20px", "margin-bottom": "30px", "margin-left": "40px"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandShorthand("margin", tt.value)
			for k, v := range tt.expected {
				if result[k] != v {
					t.Errorf("%s: expected %s, got %s", k, v, result[k])
				}
			}
		})
	}
}

func TestExpandShorthandBorder(t *testing.T) {
	result := expandShorthand("border", "2px solid #2196F3")
	want := map[string]string{
		"border-top-width": "2px", "border-right-width": "2px",
		"border-bottom-width": "2px", "border-left-width": "2px",
		"border-style": "solid", "border-color": "#2196F3",
	}
	for k, v := range want {
		if result[k] != v {
			t.Errorf("%s: expected %s, got %s", k, v, result[k])
		}
	}
}

func TestExpandShorthandNonShorthand(t *testing.T) {
	result := expandShorthand("color", "red")
	if result["color"] != "red" {
		t.Errorf("expected color 'red', got %v", result["color"])
	}
}

func TestSplitWhitespace(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"10px", []string{"10px"}},
		{"10px 20px 30px", []string{"10px", "20px", "30px"}},
		{"10px  20px   30px", []string{"10px", "20px", "30px"}},
		{"10px\t20px 30px", []string{"10px", "20px", "30px"}},
		{"", nil},
	}
	for _, tt := range tests {
		result := splitWhitespace(tt.input)
		if len(result) != len(tt.expected) {
			t.Errorf("input %q: expected %v, got %v", tt.input, tt.expected, result)
			continue
		}
		for i, v := range tt.expected {
			if result[i] != v {
				t.Errorf("input %q: expected %v, got %v", tt.input, tt.expected, result)
			}
		}
	}
}

func TestPresentationalHints(t *testing.T) {
	tests := []struct {
		name     string
		node     *dom.Node
		expected map[string]string
	}{
		{"font color", elem("font", map[string]string{"color": "red"}), map[string]string{"color": "red"}},
		{"font color hex", elem("font", map[string]string{"color": "#0000FF"}), map[string]string{"color": "#0000FF"}},
		{"bgcolor on td", elem("td", map[string]string{"bgcolor": "yellow"}), map[string]string{"background-color": "yellow"}},
		{"no attrs", elem("div", nil), map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			styles := make(map[string]string)
			applyPresentationalHints(tt.node, styles)
			for k, v := range tt.expected {
				if styles[k] != v {
					t.Errorf("expected %s=%s, got %s", k, v, styles[k])
				}
			}
		})
	}
}

func TestUserAgentStylesheetParses(t *testing.T) {
	sheet := DefaultUserAgentStylesheet()
	if len(sheet.Rules) == 0 {
		t.Fatal("expected the user-agent stylesheet to parse at least one rule")
	}
}
