package html

import "github.com/mosaicbrowser/webcore/dom"

// inSelectMode implements HTML5 §12.2.6.4.16.
func inSelectMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case TextToken:
		p.insertText(p.cur.Data)
		return inSelectMode, true
	case CommentToken:
		p.insertComment(p.cur.Data)
		return inSelectMode, true
	case DoctypeToken:
		return inSelectMode, true
	case StartTagToken:
		switch p.cur.Name {
		case "html":
			return inBodyMode(p)
		case "option":
			if p.current().LocalName == "option" {
				p.pop()
			}
			p.insertElementForToken(p.cur)
			return inSelectMode, true
		case "optgroup":
			if p.current().LocalName == "option" {
				p.pop()
			}
			if p.current().LocalName == "optgroup" {
				p.pop()
			}
			p.insertElementForToken(p.cur)
			return inSelectMode, true
		case "hr":
			if p.current().LocalName == "option" {
				p.pop()
			}
			if p.current().LocalName == "optgroup" {
				p.pop()
			}
			p.insertElementForToken(p.cur)
			p.pop()
			return inSelectMode, true
		case "select":
			// A <select> start tag while already inside a select is treated
			// as its matching end tag (parse error, tolerated).
			if p.hasInScope("select", scopeSelect) {
				p.popUntilTagPopped("select")
				return p.resetInsertionMode(), true
			}
			return inSelectMode, true
		case "input", "keygen", "textarea":
			if p.hasInScope("select", scopeSelect) {
				p.popUntilTagPopped("select")
				return p.resetInsertionMode(), false
			}
			return inSelectMode, true
		case "script", "template":
			return inHeadMode(p)
		}
	case EndTagToken:
		switch p.cur.Name {
		case "optgroup":
			if p.current().LocalName == "option" && len(p.openElements) > 1 &&
				p.openElements[len(p.openElements)-2].LocalName == "optgroup" {
				p.pop()
			}
			if p.current().LocalName == "optgroup" {
				p.pop()
			}
			return inSelectMode, true
		case "option":
			if p.current().LocalName == "option" {
				p.pop()
			}
			return inSelectMode, true
		case "select":
			if p.hasInScope("select", scopeSelect) {
				p.popUntilTagPopped("select")
				return p.resetInsertionMode(), true
			}
			return inSelectMode, true
		case "template":
			return inHeadMode(p)
		}
	case EOFToken:
		return nil, true
	}
	return inSelectMode, true
}

// inSelectInTableMode implements HTML5 §12.2.6.4.17: a <select> nested
// inside a <table> closes back out to table context on any table
// structural tag, but otherwise behaves exactly like inSelectMode.
func inSelectInTableMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case StartTagToken:
		switch p.cur.Name {
		case "caption", "table", "tbody", "tfoot", "thead", "tr", "td", "th":
			p.popUntilTagPopped("select")
			return p.resetInsertionMode(), false
		}
	case EndTagToken:
		switch p.cur.Name {
		case "caption", "table", "tbody", "tfoot", "thead", "tr", "td", "th":
			if p.hasInScope(p.cur.Name, scopeTable) {
				p.popUntilTagPopped("select")
				return p.resetInsertionMode(), false
			}
			return inSelectInTableMode, true
		}
	}
	return inSelectMode(p)
}

// inTemplateMode implements HTML5 §12.2.6.4.18: start tags are dispatched to
// whichever of the head/table/select rules they'd trigger outside a
// template, tracked via a stack of template insertion modes since templates
// can nest.
func inTemplateMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case TextToken, CommentToken, DoctypeToken:
		return inBodyMode(p)

	case StartTagToken:
		switch p.cur.Name {
		case "base", "basefont", "bgsound", "link", "meta", "noframes", "script", "style", "template", "title":
			return inHeadMode(p)
		case "caption", "colgroup", "tbody", "tfoot", "thead":
			p.popTemplateMode()
			p.pushTemplateMode(inTableMode)
			return inTableMode, false
		case "col":
			p.popTemplateMode()
			p.pushTemplateMode(inColumnGroupMode)
			return inColumnGroupMode, false
		case "tr":
			p.popTemplateMode()
			p.pushTemplateMode(inTableBodyMode)
			return inTableBodyMode, false
		case "td", "th":
			p.popTemplateMode()
			p.pushTemplateMode(inRowMode)
			return inRowMode, false
		}
		p.popTemplateMode()
		p.pushTemplateMode(inBodyMode)
		return inBodyMode, false

	case EndTagToken:
		if p.cur.Name == "template" {
			return inHeadMode(p)
		}
		return inTemplateMode, true

	case EOFToken:
		if !p.hasOpenTag("template") {
			return nil, true
		}
		p.popUntilTagPopped("template")
		p.clearActiveFormattingElementsToLastMarker()
		p.popTemplateMode()
		return p.resetInsertionMode(), false
	}
	return inTemplateMode, true
}

// inHeadNoscriptMode implements HTML5 §12.2.6.4.5, reached from a
// <noscript> start tag while in head: since this implementation never
// executes scripts, noscript content is parsed as ordinary markup rather
// than as RAWTEXT.
func inHeadNoscriptMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case DoctypeToken:
		return inHeadNoscriptMode, true
	case StartTagToken:
		switch p.cur.Name {
		case "html":
			return inBodyMode(p)
		case "basefont", "bgsound", "link", "meta", "noframes", "style":
			return inHeadMode(p)
		case "head", "noscript":
			return inHeadNoscriptMode, true
		}
	case EndTagToken:
		switch p.cur.Name {
		case "noscript":
			p.pop()
			return inHeadMode, true
		case "br":
			p.pop()
			return inHeadMode, false
		default:
			return inHeadNoscriptMode, true
		}
	case CommentToken:
		return inHeadMode(p)
	case TextToken:
		_, rest := splitLeadingWhitespace(p.cur.Data)
		if rest == "" {
			return inHeadMode(p)
		}
	}
	p.pop()
	return inHeadMode, false
}

// inFramesetMode implements HTML5 §12.2.6.4.20.
func inFramesetMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case TextToken:
		ws, _ := splitLeadingWhitespace(p.cur.Data)
		if ws != "" {
			p.insertText(ws)
		}
		return inFramesetMode, true
	case CommentToken:
		p.insertComment(p.cur.Data)
		return inFramesetMode, true
	case DoctypeToken:
		return inFramesetMode, true
	case StartTagToken:
		switch p.cur.Name {
		case "html":
			return inBodyMode(p)
		case "frameset":
			p.insertElementForToken(p.cur)
			return inFramesetMode, true
		case "frame":
			p.insertElementForToken(p.cur)
			p.pop()
			return inFramesetMode, true
		case "noframes":
			return inHeadMode(p)
		}
	case EndTagToken:
		if p.cur.Name == "frameset" {
			p.pop()
			if len(p.openElements) > 0 && p.current().LocalName != "frameset" {
				return afterFramesetMode, true
			}
			return inFramesetMode, true
		}
	case EOFToken:
		return nil, true
	}
	return inFramesetMode, true
}

// afterFramesetMode implements HTML5 §12.2.6.4.21.
func afterFramesetMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case TextToken:
		ws, _ := splitLeadingWhitespace(p.cur.Data)
		if ws != "" {
			p.insertText(ws)
		}
		return afterFramesetMode, true
	case CommentToken:
		p.insertComment(p.cur.Data)
		return afterFramesetMode, true
	case DoctypeToken:
		return afterFramesetMode, true
	case StartTagToken:
		switch p.cur.Name {
		case "html":
			return inBodyMode(p)
		case "noframes":
			return inHeadMode(p)
		}
	case EndTagToken:
		if p.cur.Name == "html" {
			return afterAfterFramesetMode, true
		}
	case EOFToken:
		return nil, true
	}
	return afterFramesetMode, true
}

// afterAfterFramesetMode implements HTML5 §12.2.6.4.23.
func afterAfterFramesetMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case CommentToken:
		p.doc.AppendChild(dom.NewComment(p.cur.Data))
		return afterAfterFramesetMode, true
	case DoctypeToken:
		return afterAfterFramesetMode, true
	case TextToken:
		ws, _ := splitLeadingWhitespace(p.cur.Data)
		if ws != "" {
			return inBodyMode(p)
		}
		return afterAfterFramesetMode, true
	case StartTagToken:
		switch p.cur.Name {
		case "html":
			return inBodyMode(p)
		case "noframes":
			return inHeadMode(p)
		}
	case EOFToken:
		return nil, true
	}
	return afterAfterFramesetMode, true
}
