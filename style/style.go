// Package style handles style computation and the CSS cascade.
// It matches CSS selectors to DOM elements and computes final styles.
//
// Spec references:
// - spec.md §4.7 Style Resolver
package style

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mosaicbrowser/webcore/css"
	"github.com/mosaicbrowser/webcore/dom"
)

// StyledNode represents a DOM node with its cascaded and inherited styles.
// Styles holds the serialized specified value of every declared or
// inherited property, keyed by (already-expanded) longhand property name.
type StyledNode struct {
	Node     *dom.Node
	Styles   map[string]string
	Children []*StyledNode
}

// inheritedProperties lists the longhand properties that propagate from
// parent to child absent an explicit declaration (spec.md §4.7 step 3).
var inheritedProperties = map[string]bool{
	"color":           true,
	"font-size":       true,
	"font-family":     true,
	"font-weight":     true,
	"font-style":      true,
	"line-height":     true,
	"text-align":      true,
	"white-space":     true,
	"visibility":      true,
	"letter-spacing":  true,
	"word-spacing":    true,
	"list-style-type": true,
	"cursor":          true,
}

// candidateDecl is one declaration that matched an element, carrying enough
// of spec.md §4.7 step 1's "origin/specificity/order" record to sort it.
type candidateDecl struct {
	property    string
	value       string
	important   bool
	origin      int
	specificity css.Specificity
	order       int
}

// StyleTree computes a StyledNode tree for root against the given
// stylesheets, lowest-origin-precedence first (e.g. the user-agent
// stylesheet, then author stylesheets in document order). CSS 2.1 §6.4.4.
func StyleTree(root *dom.Node, stylesheets ...*css.Stylesheet) *StyledNode {
	return styleNode(root, stylesheets, nil)
}

func styleNode(node *dom.Node, stylesheets []*css.Stylesheet, parentStyles map[string]string) *StyledNode {
	styled := &StyledNode{
		Node:   node,
		Styles: make(map[string]string),
	}

	for prop := range inheritedProperties {
		if val, ok := parentStyles[prop]; ok {
			styled.Styles[prop] = val
		}
	}

	if node.Type == dom.ElementNode {
		// HTML5 §2.4.4: presentational hints sit below the cascade proper.
		applyPresentationalHints(node, styled.Styles)

		candidates := matchDeclarations(node, stylesheets)

		if styleAttr := node.GetAttribute("style"); styleAttr != "" {
			tok := css.NewTokenizer(styleAttr)
			var tokens []css.Token
			for {
				t := tok.Next()
				tokens = append(tokens, t)
				if t.Type == css.EOFToken {
					break
				}
			}
			for _, decl := range css.ParseDeclarationList(tokens) {
				// CSS 2.1 §6.4.3: inline declarations win over every
				// selector-matched rule regardless of specificity, modeled
				// here as an origin above every stylesheet's.
				candidates = append(candidates, candidateDecl{
					property:  strings.ToLower(decl.Property),
					value:     serializeComponentValues(decl.Value),
					important: decl.Important,
					origin:    len(stylesheets) + 1,
					order:     len(candidates),
				})
			}
		}

		applyCascade(styled.Styles, candidates)
	}

	for _, child := range node.Children {
		styled.Children = append(styled.Children, styleNode(child, stylesheets, styled.Styles))
	}

	return styled
}

// matchDeclarations implements spec.md §4.7 step 1: selector-match node
// against every stylesheet's style rules, recording origin/specificity/
// order, then expanding shorthands to longhands.
func matchDeclarations(node *dom.Node, stylesheets []*css.Stylesheet) []candidateDecl {
	var candidates []candidateDecl
	order := 0
	for origin, sheet := range stylesheets {
		if sheet == nil {
			continue
		}
		for _, rule := range sheet.Rules {
			styleRule, ok := rule.(*css.StyleRule)
			if !ok {
				continue
			}
			best, matched := bestMatch(node, styleRule.Selectors)
			if !matched {
				continue
			}
			for _, decl := range styleRule.Declarations {
				for prop, val := range expandShorthand(strings.ToLower(decl.Property), serializeComponentValues(decl.Value)) {
					candidates = append(candidates, candidateDecl{
						property:    prop,
						value:       val,
						important:   decl.Important,
						origin:      origin,
						specificity: best,
						order:       order,
					})
					order++
				}
			}
		}
	}
	return candidates
}

// bestMatch returns the highest specificity among the selectors in list
// that match node, and whether any did.
func bestMatch(node *dom.Node, list css.SelectorList) (css.Specificity, bool) {
	var best css.Specificity
	matched := false
	for _, complex := range list {
		if !matchesComplexSelector(node, complex) {
			continue
		}
		s := complex.Specificity()
		if !matched || best.Less(s) {
			best = s
		}
		matched = true
	}
	return best, matched
}

// applyCascade implements spec.md §4.7 steps 2: sort candidates by
// (!important flag, origin precedence, specificity, source order), so an
// !important declaration outranks every normal one whatever its origin, and let
// later entries in that order win ties, one property at a time.
func applyCascade(styles map[string]string, candidates []candidateDecl) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.important != b.important {
			return !a.important && b.important
		}
		if a.origin != b.origin {
			return a.origin < b.origin
		}
		if a.specificity != b.specificity {
			return a.specificity.Less(b.specificity)
		}
		return a.order < b.order
	})
	for _, c := range candidates {
		styles[c.property] = c.value
	}
}

// matchesComplexSelector implements spec.md §4.3's right-to-left matching:
// the rightmost compound must match node itself, each combinator to its
// left is then checked against progressively further ancestors/siblings.
func matchesComplexSelector(node *dom.Node, cs css.ComplexSelector) bool {
	n := len(cs.Compounds)
	if n == 0 {
		return false
	}
	if !matchesCompound(node, cs.Compounds[n-1]) {
		return false
	}
	current := node
	for i := n - 2; i >= 0; i-- {
		comb := cs.Combinators[i]
		next, ok := stepCombinator(current, comb, cs.Compounds[i])
		if !ok {
			return false
		}
		current = next
	}
	return true
}

// stepCombinator walks from current across comb looking for an element
// matching compound, returning the first (nearest) one found for Child/
// AdjacentSibling (which admit only one candidate) and the nearest
// matching ancestor/sibling for Descendant/GeneralSibling.
func stepCombinator(current *dom.Node, comb css.Combinator, compound css.CompoundSelector) (*dom.Node, bool) {
	switch comb {
	case css.Child:
		p := current.Parent
		if p != nil && p.Type == dom.ElementNode && matchesCompound(p, compound) {
			return p, true
		}
		return nil, false
	case css.Descendant:
		for p := current.Parent; p != nil; p = p.Parent {
			if p.Type == dom.ElementNode && matchesCompound(p, compound) {
				return p, true
			}
		}
		return nil, false
	case css.AdjacentSibling:
		s := precedingElementSibling(current)
		if s != nil && matchesCompound(s, compound) {
			return s, true
		}
		return nil, false
	case css.GeneralSibling:
		for s := precedingElementSibling(current); s != nil; s = precedingElementSibling(s) {
			if matchesCompound(s, compound) {
				return s, true
			}
		}
		return nil, false
	}
	return nil, false
}

func precedingElementSibling(node *dom.Node) *dom.Node {
	if node.Parent == nil {
		return nil
	}
	siblings := node.Parent.Children
	for i, c := range siblings {
		if c == node {
			for j := i - 1; j >= 0; j-- {
				if siblings[j].Type == dom.ElementNode {
					return siblings[j]
				}
			}
			return nil
		}
	}
	return nil
}

func matchesCompound(node *dom.Node, compound css.CompoundSelector) bool {
	if node.Type != dom.ElementNode {
		return false
	}
	for _, simple := range compound.Simple {
		if !matchesSimple(node, simple) {
			return false
		}
	}
	return true
}

func matchesSimple(node *dom.Node, sel css.SimpleSelector) bool {
	switch sel.Kind {
	case css.TypeSelector:
		return strings.EqualFold(sel.Value, node.LocalName)
	case css.UniversalSelector:
		return true
	case css.IDSelector:
		return node.ID() == sel.Value
	case css.ClassSelector:
		for _, c := range node.Classes() {
			if c == sel.Value {
				return true
			}
		}
		return false
	case css.AttrSelector:
		return matchesAttr(node, sel)
	case css.PseudoClass:
		return matchesPseudoClass(node, sel)
	case css.PseudoElement:
		// Pseudo-elements generate their own box, not matched against an
		// existing element; treated as always-false for element matching.
		return false
	}
	return false
}

func matchesAttr(node *dom.Node, sel css.SimpleSelector) bool {
	if !node.HasAttribute(sel.Value) {
		return false
	}
	if sel.AttrMatcher == "" {
		return true
	}
	actual := node.GetAttribute(sel.Value)
	want := sel.AttrValue
	if sel.AttrFoldCase {
		actual = strings.ToLower(actual)
		want = strings.ToLower(want)
	}
	switch sel.AttrMatcher {
	case "=":
		return actual == want
	case "~=":
		for _, w := range strings.Fields(actual) {
			if w == want {
				return true
			}
		}
		return false
	case "|=":
		return actual == want || strings.HasPrefix(actual, want+"-")
	case "^=":
		return want != "" && strings.HasPrefix(actual, want)
	case "$=":
		return want != "" && strings.HasSuffix(actual, want)
	case "*=":
		return want != "" && strings.Contains(actual, want)
	}
	return false
}

// matchesPseudoClass handles the structural pseudo-classes that are
// decidable from tree shape alone; state-dependent ones (:hover, :visited,
// :focus) have no observable state in this static resolver and never
// match. :not()/:is()/:where() recurse into their argument selector list.
func matchesPseudoClass(node *dom.Node, sel css.SimpleSelector) bool {
	switch sel.Value {
	case "not":
		for _, arg := range sel.Args {
			if matchesComplexSelector(node, arg) {
				return false
			}
		}
		return true
	case "is", "where":
		for _, arg := range sel.Args {
			if matchesComplexSelector(node, arg) {
				return true
			}
		}
		return false
	case "has":
		for _, arg := range sel.Args {
			if hasDescendantMatching(node, arg) {
				return true
			}
		}
		return false
	case "first-child":
		return firstElementChild(node.Parent) == node
	case "last-child":
		return lastElementChild(node.Parent) == node
	case "root":
		return node.Parent == nil || node.Parent.Type == dom.DocumentNode
	case "empty":
		for _, c := range node.Children {
			if c.Type == dom.ElementNode || (c.Type == dom.TextNode && c.Data != "") {
				return false
			}
		}
		return true
	}
	return false
}

func hasDescendantMatching(node *dom.Node, cs css.ComplexSelector) bool {
	for _, c := range node.Children {
		if c.Type == dom.ElementNode && matchesComplexSelector(c, cs) {
			return true
		}
		if hasDescendantMatching(c, cs) {
			return true
		}
	}
	return false
}

func firstElementChild(parent *dom.Node) *dom.Node {
	if parent == nil {
		return nil
	}
	for _, c := range parent.Children {
		if c.Type == dom.ElementNode {
			return c
		}
	}
	return nil
}

func lastElementChild(parent *dom.Node) *dom.Node {
	if parent == nil {
		return nil
	}
	for i := len(parent.Children) - 1; i >= 0; i-- {
		if parent.Children[i].Type == dom.ElementNode {
			return parent.Children[i]
		}
	}
	return nil
}

// serializeComponentValues reconstructs a declaration value's source text
// well enough for downstream numeric parsing (e.g. layout's "10px"), by
// re-joining each token's original representation with single spaces.
func serializeComponentValues(values []css.ComponentValue) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(' ')
		}
		writeComponentValue(&b, v)
	}
	return b.String()
}

func writeComponentValue(b *strings.Builder, v css.ComponentValue) {
	switch cv := v.(type) {
	case css.TokenValue:
		writeToken(b, cv.Token)
	case css.Function:
		b.WriteString(cv.Name)
		b.WriteByte('(')
		for i, inner := range cv.Values {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeComponentValue(b, inner)
		}
		b.WriteByte(')')
	case css.SimpleBlock:
		for i, inner := range cv.Values {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeComponentValue(b, inner)
		}
	}
}

func writeToken(b *strings.Builder, t css.Token) {
	switch t.Type {
	case css.NumberToken:
		if t.Repr != "" {
			b.WriteString(t.Repr)
		} else {
			b.WriteString(strconv.FormatFloat(t.NumValue, 'g', -1, 64))
		}
	case css.PercentageToken:
		if t.Repr != "" {
			b.WriteString(t.Repr)
		} else {
			b.WriteString(strconv.FormatFloat(t.NumValue, 'g', -1, 64))
		}
		b.WriteByte('%')
	case css.DimensionToken:
		if t.Repr != "" {
			b.WriteString(t.Repr)
		} else {
			b.WriteString(strconv.FormatFloat(t.NumValue, 'g', -1, 64))
		}
		b.WriteString(t.Value)
	case css.HashToken:
		b.WriteByte('#')
		b.WriteString(t.Value)
	case css.StringToken:
		b.WriteString(t.Value)
	case css.WhitespaceToken:
		// collapsed by the caller's inter-token space
	default:
		if t.Delim != 0 {
			b.WriteRune(t.Delim)
		} else {
			b.WriteString(t.Value)
		}
	}
}

// expandShorthand expands CSS shorthand properties to their longhand
// equivalents. CSS 2.1 §8.3, §8.4: margin/padding support the 1-4 value
// patterns; border expands width/style/color for all four edges.
func expandShorthand(property, value string) map[string]string {
	result := make(map[string]string)

	switch property {
	case "margin", "padding":
		expandBoxShorthand(property, value, result)
	case "border":
		expandBorderShorthand("", value, result)
	case "border-top", "border-right", "border-bottom", "border-left":
		edge := strings.TrimPrefix(property, "border-")
		expandBorderShorthand(edge, value, result)
	default:
		result[property] = value
	}
	return result
}

func expandBoxShorthand(prefix, value string, result map[string]string) {
	values := splitWhitespace(value)
	var top, right, bottom, left string
	switch len(values) {
	case 1:
		top, right, bottom, left = values[0], values[0], values[0], values[0]
	case 2:
		top, right, bottom, left = values[0], values[1], values[0], values[1]
	case 3:
		top, right, bottom, left = values[0], values[1], values[2], values[1]
	case 4:
		top, right, bottom, left = values[0], values[1], values[2], values[3]
	default:
		result[prefix] = value
		return
	}
	result[prefix+"-top"] = top
	result[prefix+"-right"] = right
	result[prefix+"-bottom"] = bottom
	result[prefix+"-left"] = left
}

// expandBorderShorthand splits a "<width> <style> <color>" triple onto the
// given edge, or all four edges when edge == "" (the width is stored per
// edge; style and color go to border-style/border-color for all four edges
// and to border-<edge>-style/-color for one). Components are recognized
// by keyword/shape regardless of position, but only one occurrence of each
// is honored; stylesheets that repeat a component to override an earlier
// one within the same shorthand aren't supported.
func expandBorderShorthand(edge, value string, result map[string]string) {
	values := splitWhitespace(value)
	var width, style, color string
	for _, v := range values {
		switch {
		case isBorderStyleKeyword(v):
			style = v
		case isColorLike(v):
			color = v
		default:
			width = v
		}
	}
	edges := []string{"top", "right", "bottom", "left"}
	if edge != "" {
		edges = []string{edge}
	}
	for _, e := range edges {
		if width != "" {
			result["border-"+e+"-width"] = width
		}
	}
	if style != "" {
		if edge == "" {
			result["border-style"] = style
		} else {
			result["border-"+edge+"-style"] = style
		}
	}
	if color != "" {
		if edge == "" {
			result["border-color"] = color
		} else {
			result["border-"+edge+"-color"] = color
		}
	}
}

var borderStyleKeywords = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true, "solid": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

func isBorderStyleKeyword(v string) bool {
	return borderStyleKeywords[strings.ToLower(v)]
}

func isColorLike(v string) bool {
	if strings.HasPrefix(v, "#") {
		return true
	}
	if strings.Contains(v, "(") {
		return true
	}
	return !strings.HasSuffix(v, "px") && !strings.HasSuffix(v, "em") &&
		!strings.HasSuffix(v, "%") && !isBorderStyleKeyword(v)
}

// splitWhitespace splits a string on whitespace characters.
func splitWhitespace(s string) []string {
	var result []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			result = append(result, current.String())
			current.Reset()
		}
	}
	for _, ch := range s {
		switch ch {
		case ' ', '\t', '\n', '\r':
			flush()
		default:
			current.WriteRune(ch)
		}
	}
	flush()
	return result
}

// applyPresentationalHints converts HTML presentational attributes to CSS
// styles. HTML5 §2.4.4: these sit below the cascade proper.
func applyPresentationalHints(node *dom.Node, styles map[string]string) {
	if node.LocalName == "font" {
		if color := node.GetAttribute("color"); color != "" {
			styles["color"] = color
		}
	}
	if bgcolor := node.GetAttribute("bgcolor"); bgcolor != "" {
		styles["background-color"] = bgcolor
	}
}
