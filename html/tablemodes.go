package html

import "github.com/mosaicbrowser/webcore/dom"

// inTableMode implements HTML5 §12.2.6.4.9.
func inTableMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case TextToken:
		// Character data inside a table is buffered until a non-character
		// token decides whether it was all whitespace (inserted directly)
		// or not (inserted with foster parenting) — spec.md §4.5
		// "Insertion".
		p.originalMode = inTableMode
		p.pendingTextChars.Reset()
		return inTableTextMode, false

	case CommentToken:
		p.insertComment(p.cur.Data)
		return inTableMode, true

	case StartTagToken:
		switch p.cur.Name {
		case "caption":
			p.clearStackBackToTableContext()
			p.afe = append(p.afe, afeEntry{isMarker: true})
			p.insertElementForToken(p.cur)
			return inCaptionMode, true
		case "colgroup":
			p.clearStackBackToTableContext()
			p.insertElementForToken(p.cur)
			return inColumnGroupMode, true
		case "col":
			p.clearStackBackToTableContext()
			p.insertElementForToken(Token{Name: "colgroup"})
			return inColumnGroupMode, false
		case "tbody", "tfoot", "thead":
			p.clearStackBackToTableContext()
			p.insertElementForToken(p.cur)
			return inTableBodyMode, true
		case "td", "th", "tr":
			p.clearStackBackToTableContext()
			p.insertElementForToken(Token{Name: "tbody"})
			return inTableBodyMode, false
		case "table":
			if p.popUntilTagPopped("table") {
				return inBodyMode, false
			}
			return inTableMode, true
		case "script", "style", "template":
			return inHeadMode(p)
		}

	case EndTagToken:
		switch p.cur.Name {
		case "table":
			if p.popUntilTagPopped("table") {
				return inBodyMode, true
			}
			return inTableMode, true
		case "template":
			return inHeadMode(p)
		case "body", "caption", "col", "colgroup", "html", "tbody", "td", "tfoot", "th", "thead", "tr":
			return inTableMode, true
		}
	case EOFToken:
		return nil, true
	}
	return inBodyMode(p)
}

func (p *Parser) clearStackBackToTableContext() {
	for len(p.openElements) > 0 {
		top := p.current().LocalName
		if top == "table" || top == "template" || top == "html" {
			return
		}
		p.pop()
	}
}

// inTableTextMode implements HTML5 §12.2.6.4.10: character tokens routed
// here by inTableMode accumulate until a non-character token arrives, at
// which point an all-whitespace run is inserted directly and any other run
// goes through the normal (foster-parenting-aware) text insertion.
func inTableTextMode(p *Parser) (insertionMode, bool) {
	if p.cur.Type == TextToken {
		p.pendingTextChars.WriteString(p.cur.Data)
		return inTableTextMode, true
	}
	pending := p.pendingTextChars.String()
	p.pendingTextChars.Reset()
	if pending != "" {
		if isWhitespace(pending) {
			p.current().AppendChild(dom.NewText(pending))
		} else {
			p.insertText(pending)
		}
	}
	return p.originalMode, false
}

// inCaptionMode implements HTML5 §12.2.6.4.11.
func inCaptionMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case StartTagToken:
		switch p.cur.Name {
		case "caption", "col", "colgroup", "tbody", "td", "tfoot", "th", "thead", "tr":
			if p.hasInScope("caption", scopeTable) {
				p.generateImpliedEndTags("")
				p.popUntilTagPopped("caption")
				p.clearActiveFormattingElementsToLastMarker()
				return inTableMode, false
			}
			return inCaptionMode, true
		}
	case EndTagToken:
		switch p.cur.Name {
		case "caption":
			if p.hasInScope("caption", scopeTable) {
				p.generateImpliedEndTags("")
				p.popUntilTagPopped("caption")
				p.clearActiveFormattingElementsToLastMarker()
				return inTableMode, true
			}
			return inCaptionMode, true
		case "table":
			if p.hasInScope("caption", scopeTable) {
				p.generateImpliedEndTags("")
				p.popUntilTagPopped("caption")
				p.clearActiveFormattingElementsToLastMarker()
				return inTableMode, false
			}
			return inCaptionMode, true
		case "body", "col", "colgroup", "html", "tbody", "td", "tfoot", "th", "thead", "tr":
			return inCaptionMode, true
		}
	}
	return inBodyMode(p)
}

// inColumnGroupMode implements HTML5 §12.2.6.4.12.
func inColumnGroupMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case TextToken:
		ws, rest := splitLeadingWhitespace(p.cur.Data)
		if ws != "" {
			p.insertText(ws)
		}
		if rest == "" {
			return inColumnGroupMode, true
		}
		p.cur.Data = rest
	case CommentToken:
		p.insertComment(p.cur.Data)
		return inColumnGroupMode, true
	case DoctypeToken:
		return inColumnGroupMode, true
	case StartTagToken:
		switch p.cur.Name {
		case "html":
			return inBodyMode(p)
		case "col":
			p.insertElementForToken(p.cur)
			p.pop()
			return inColumnGroupMode, true
		case "template":
			return inHeadMode(p)
		}
	case EndTagToken:
		switch p.cur.Name {
		case "colgroup":
			if p.current().LocalName == "colgroup" {
				p.pop()
				return inTableMode, true
			}
			return inColumnGroupMode, true
		case "col":
			return inColumnGroupMode, true
		case "template":
			return inHeadMode(p)
		}
	case EOFToken:
		return nil, true
	}
	if p.current().LocalName != "colgroup" {
		return inColumnGroupMode, true
	}
	p.pop()
	return inTableMode, false
}

// inTableBodyMode implements HTML5 §12.2.6.4.13.
func inTableBodyMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case StartTagToken:
		switch p.cur.Name {
		case "tr":
			p.clearStackBackToTableBodyContext()
			p.insertElementForToken(p.cur)
			return inRowMode, true
		case "td", "th":
			p.clearStackBackToTableBodyContext()
			p.insertElementForToken(Token{Name: "tr"})
			return inRowMode, false
		case "caption", "col", "colgroup", "tbody", "tfoot", "thead":
			if p.popUntilTagPopped("tbody") || p.popUntilTagPopped("thead") || p.popUntilTagPopped("tfoot") {
				return inTableMode, false
			}
			return inTableBodyMode, true
		}
	case EndTagToken:
		switch p.cur.Name {
		case "tbody", "tfoot", "thead":
			p.popUntilTagPopped(p.cur.Name)
			return inTableMode, true
		case "table":
			if p.popUntilTagPopped("tbody") || p.popUntilTagPopped("thead") || p.popUntilTagPopped("tfoot") {
				return inTableMode, false
			}
			return inTableBodyMode, true
		case "body", "caption", "col", "colgroup", "html", "td", "th", "tr":
			return inTableBodyMode, true
		}
	}
	return inTableMode(p)
}

func (p *Parser) clearStackBackToTableBodyContext() {
	for len(p.openElements) > 0 {
		top := p.current().LocalName
		if top == "tbody" || top == "tfoot" || top == "thead" || top == "html" {
			return
		}
		p.pop()
	}
}

func (p *Parser) clearStackBackToTableRowContext() {
	for len(p.openElements) > 0 {
		top := p.current().LocalName
		if top == "tr" || top == "html" {
			return
		}
		p.pop()
	}
}

// inRowMode implements HTML5 §12.2.6.4.14.
func inRowMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case StartTagToken:
		switch p.cur.Name {
		case "td", "th":
			p.clearStackBackToTableRowContext()
			p.insertElementForToken(p.cur)
			p.afe = append(p.afe, afeEntry{isMarker: true})
			return inCellMode, true
		case "caption", "col", "colgroup", "tbody", "tfoot", "thead", "tr":
			if p.popUntilTagPopped("tr") {
				return inTableBodyMode, false
			}
			return inRowMode, true
		}
	case EndTagToken:
		switch p.cur.Name {
		case "tr":
			p.popUntilTagPopped("tr")
			return inTableBodyMode, true
		case "table":
			if p.popUntilTagPopped("tr") {
				return inTableBodyMode, false
			}
			return inRowMode, true
		case "tbody", "tfoot", "thead":
			if p.popUntilTagPopped("tr") {
				return inTableBodyMode, false
			}
			return inRowMode, true
		case "body", "caption", "col", "colgroup", "html", "td", "th":
			return inRowMode, true
		}
	}
	return inTableMode(p)
}

// inCellMode implements HTML5 §12.2.6.4.15.
func inCellMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case StartTagToken:
		switch p.cur.Name {
		case "caption", "col", "colgroup", "tbody", "td", "tfoot", "th", "thead", "tr":
			if p.closeCell() {
				return inRowMode, false
			}
		}
	case EndTagToken:
		switch p.cur.Name {
		case "td", "th":
			if p.hasInScope(p.cur.Name, scopeTable) {
				p.generateImpliedEndTags("")
				p.popUntilTagPopped(p.cur.Name)
				p.clearActiveFormattingElementsToLastMarker()
				return inRowMode, true
			}
			return inCellMode, true
		case "body", "caption", "col", "colgroup", "html":
			return inCellMode, true
		case "table", "tbody", "tfoot", "thead", "tr":
			if p.closeCell() {
				return inRowMode, false
			}
		}
	}
	return inBodyMode(p)
}

func (p *Parser) closeCell() bool {
	ok := p.hasInScope("td", scopeTable) || p.hasInScope("th", scopeTable)
	if !ok {
		return false
	}
	if p.popUntilTagPopped("td") || p.popUntilTagPopped("th") {
		p.clearActiveFormattingElementsToLastMarker()
		return true
	}
	return false
}
