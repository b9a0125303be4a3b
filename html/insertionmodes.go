package html

import (
	"strings"

	"github.com/mosaicbrowser/webcore/dom"
)

func isWhitespace(s string) bool {
	for _, r := range s {
		if !isHTMLSpace(r) {
			return false
		}
	}
	return true
}

// splitLeadingWhitespace separates a leading run of HTML whitespace (which
// most insertion modes handle specially before a non-whitespace character
// forces "anything else" processing) from the rest of a text token.
func splitLeadingWhitespace(s string) (ws, rest string) {
	i := 0
	for i < len(s) && isHTMLSpace(rune(s[i])) {
		i++
	}
	return s[:i], s[i:]
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// initialMode implements HTML5 §12.2.6.4.1.
func initialMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case TextToken:
		ws, rest := splitLeadingWhitespace(p.cur.Data)
		_ = ws
		if rest == "" {
			return initialMode, true
		}
		p.doc.Mode = dom.Quirks
		p.cur.Data = rest
		return beforeHTMLMode, false
	case CommentToken:
		p.doc.AppendChild(dom.NewComment(p.cur.Data))
		return initialMode, true
	case DoctypeToken:
		dt := dom.NewDocumentType(p.cur.Name, p.cur.PublicID, p.cur.SystemID)
		p.doc.Doctype = dt
		p.doc.AppendChild(dt)
		if p.cur.ForceQuirks || !strings.EqualFold(p.cur.Name, "html") {
			p.doc.Mode = dom.Quirks
		}
		return beforeHTMLMode, true
	default:
		return beforeHTMLMode, false
	}
}

// beforeHTMLMode implements HTML5 §12.2.6.4.2.
func beforeHTMLMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case DoctypeToken:
		return beforeHTMLMode, true
	case CommentToken:
		p.doc.AppendChild(dom.NewComment(p.cur.Data))
		return beforeHTMLMode, true
	case TextToken:
		ws, rest := splitLeadingWhitespace(p.cur.Data)
		_ = ws
		if rest == "" {
			return beforeHTMLMode, true
		}
	case StartTagToken:
		if p.cur.Name == "html" {
			html := p.insertElementForToken(p.cur)
			_ = html
			return beforeHeadMode, true
		}
	case EndTagToken:
		switch p.cur.Name {
		case "head", "body", "html", "br":
		default:
			return beforeHTMLMode, true
		}
	}
	html := dom.NewElement(dom.HTMLNamespace, "html")
	p.doc.AppendChild(html)
	p.push(html)
	return beforeHeadMode, false
}

// beforeHeadMode implements HTML5 §12.2.6.4.3.
func beforeHeadMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case TextToken:
		_, rest := splitLeadingWhitespace(p.cur.Data)
		if rest == "" {
			return beforeHeadMode, true
		}
	case CommentToken:
		p.insertComment(p.cur.Data)
		return beforeHeadMode, true
	case DoctypeToken:
		return beforeHeadMode, true
	case StartTagToken:
		switch p.cur.Name {
		case "html":
			return inBodyMode(p)
		case "head":
			head := p.insertElementForToken(p.cur)
			p.headElement = head
			return inHeadMode, true
		}
	case EndTagToken:
		switch p.cur.Name {
		case "head", "body", "html", "br":
		default:
			return beforeHeadMode, true
		}
	}
	head := dom.NewElement(dom.HTMLNamespace, "head")
	p.insertNode(head)
	p.push(head)
	p.headElement = head
	return inHeadMode, false
}

// inHeadMode implements HTML5 §12.2.6.4.4.
func inHeadMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case TextToken:
		ws, rest := splitLeadingWhitespace(p.cur.Data)
		if ws != "" {
			p.insertText(ws)
		}
		if rest == "" {
			return inHeadMode, true
		}
		p.cur.Data = rest
	case CommentToken:
		p.insertComment(p.cur.Data)
		return inHeadMode, true
	case DoctypeToken:
		return inHeadMode, true
	case StartTagToken:
		switch p.cur.Name {
		case "html":
			return inBodyMode(p)
		case "base", "basefont", "bgsound", "link", "meta":
			p.insertElementForToken(p.cur)
			p.pop()
			return inHeadMode, true
		case "title":
			p.insertElementForToken(p.cur)
			p.tok.SwitchTo(RawtextKindRCDATA)
			p.originalMode = inHeadMode
			return textMode, true
		case "noframes", "style":
			p.insertElementForToken(p.cur)
			p.tok.SwitchTo(RawtextKindRawtext)
			p.originalMode = inHeadMode
			return textMode, true
		case "noscript":
			p.insertElementForToken(p.cur)
			return inHeadNoscriptMode, true
		case "script":
			p.insertElementForToken(p.cur)
			p.tok.SwitchTo(RawtextKindScriptData)
			p.originalMode = inHeadMode
			return textMode, true
		case "template":
			p.insertElementForToken(p.cur)
			p.afe = append(p.afe, afeEntry{isMarker: true})
			p.framesetOK = false
			p.pushTemplateMode(inTemplateMode)
			return inTemplateMode, true
		case "head":
			return inHeadMode, true
		}
	case EndTagToken:
		switch p.cur.Name {
		case "head":
			p.pop()
			return afterHeadMode, true
		case "body", "html", "br":
			p.pop()
			return afterHeadMode, false
		case "template":
			if !p.hasOpenTag("template") {
				return inHeadMode, true
			}
			p.generateImpliedEndTags("")
			p.popUntilTagPopped("template")
			p.clearActiveFormattingElementsToLastMarker()
			p.popTemplateMode()
			return p.resetInsertionMode(), true
		default:
			return inHeadMode, true
		}
	}
	p.pop()
	return afterHeadMode, false
}

// textMode implements HTML5 §12.2.6.4.8 ("text" insertion mode), used while
// consuming RCDATA/RAWTEXT/script-data content.
func textMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case TextToken:
		p.insertText(p.cur.Data)
		return textMode, true
	case EOFToken:
		p.pop()
		return p.originalMode, false
	case EndTagToken:
		p.pop()
		return p.originalMode, true
	}
	return textMode, true
}

// afterHeadMode implements HTML5 §12.2.6.4.6.
func afterHeadMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case TextToken:
		ws, rest := splitLeadingWhitespace(p.cur.Data)
		if ws != "" {
			p.insertText(ws)
		}
		if rest == "" {
			return afterHeadMode, true
		}
		p.cur.Data = rest
	case CommentToken:
		p.insertComment(p.cur.Data)
		return afterHeadMode, true
	case DoctypeToken:
		return afterHeadMode, true
	case StartTagToken:
		switch p.cur.Name {
		case "html":
			return inBodyMode(p)
		case "body":
			p.insertElementForToken(p.cur)
			p.framesetOK = false
			return inBodyMode, true
		case "frameset":
			p.insertElementForToken(p.cur)
			return inFramesetMode, true
		case "base", "basefont", "bgsound", "link", "meta", "noframes", "script", "style", "title":
			p.openElements = append(p.openElements, p.headElement)
			mode, consumed := inHeadMode(p)
			p.removeFromOpen(p.headElement)
			return mode, consumed
		case "head":
			return afterHeadMode, true
		}
	case EndTagToken:
		switch p.cur.Name {
		case "body", "html", "br":
		default:
			return afterHeadMode, true
		}
	}
	body := dom.NewElement(dom.HTMLNamespace, "body")
	p.insertNode(body)
	p.push(body)
	return inBodyMode, false
}

// inBodyMode implements the bulk of HTML5 §12.2.6.4.7.
func inBodyMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case TextToken:
		p.reconstructActiveFormattingElements()
		if !isWhitespace(p.cur.Data) {
			p.framesetOK = false
		}
		p.insertText(p.cur.Data)
		return inBodyMode, true

	case CommentToken:
		p.insertComment(p.cur.Data)
		return inBodyMode, true

	case DoctypeToken:
		return inBodyMode, true

	case StartTagToken:
		return inBodyStartTag(p)

	case EndTagToken:
		return inBodyEndTag(p)

	case EOFToken:
		return nil, true
	}
	return inBodyMode, true
}

var headingTags = map[string]bool{"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true}

func (p *Parser) closePIfInButtonScope() {
	if p.hasInScope("p", scopeButton) {
		p.generateImpliedEndTags("p")
		p.popUntilTagPopped("p")
	}
}

func inBodyStartTag(p *Parser) (insertionMode, bool) {
	tok := p.cur
	switch tok.Name {
	case "html":
		return inBodyMode, true

	case "base", "basefont", "bgsound", "link", "meta", "noframes", "script", "style", "template", "title":
		return inHeadMode(p)

	case "body":
		return inBodyMode, true

	case "frameset":
		if p.framesetOK && len(p.openElements) >= 2 && p.openElements[1].LocalName == "body" {
			body := p.openElements[1]
			if body.Parent != nil {
				body.Parent.RemoveChild(body)
			}
			p.openElements = p.openElements[:1]
			p.insertElementForToken(tok)
			return inFramesetMode, true
		}
		return inBodyMode, true

	case "select":
		p.reconstructActiveFormattingElements()
		p.insertElementForToken(tok)
		p.framesetOK = false
		if p.hasOpenTag("table") {
			return inSelectInTableMode, true
		}
		return inSelectMode, true

	case "optgroup", "option":
		if p.current().LocalName == "option" {
			p.pop()
		}
		p.reconstructActiveFormattingElements()
		p.insertElementForToken(tok)
		return inBodyMode, true

	case "p", "div", "article", "aside", "blockquote", "center", "details",
		"dialog", "dir", "fieldset", "figcaption", "figure", "footer",
		"header", "hgroup", "main", "menu", "nav", "ol", "section",
		"summary", "ul", "address":
		p.closePIfInButtonScope()
		p.insertElementForToken(tok)
		return inBodyMode, true

	case "h1", "h2", "h3", "h4", "h5", "h6":
		p.closePIfInButtonScope()
		if headingTags[p.current().LocalName] {
			p.pop()
		}
		p.insertElementForToken(tok)
		return inBodyMode, true

	case "li":
		p.framesetOK = false
		for i := len(p.openElements) - 1; i >= 0; i-- {
			n := p.openElements[i]
			if n.LocalName == "li" {
				p.generateImpliedEndTags("li")
				p.popUntilTagPopped("li")
				break
			}
			if specialTags[n.LocalName] && n.LocalName != "address" && n.LocalName != "div" && n.LocalName != "p" {
				break
			}
		}
		p.closePIfInButtonScope()
		p.insertElementForToken(tok)
		return inBodyMode, true

	case "dd", "dt":
		p.framesetOK = false
		for i := len(p.openElements) - 1; i >= 0; i-- {
			n := p.openElements[i]
			if n.LocalName == "dd" || n.LocalName == "dt" {
				p.generateImpliedEndTags("")
				p.popUntilTagPopped(n.LocalName)
				break
			}
			if specialTags[n.LocalName] && n.LocalName != "address" && n.LocalName != "div" && n.LocalName != "p" {
				break
			}
		}
		p.closePIfInButtonScope()
		p.insertElementForToken(tok)
		return inBodyMode, true

	case "a":
		if idx := p.afeIndexOfTag("a"); idx != -1 {
			el := p.afe[idx].node
			p.adoptionAgency("a")
			p.removeFromOpen(el)
			if j := p.afeIndexOf(el); j != -1 {
				p.afe = append(p.afe[:j], p.afe[j+1:]...)
			}
		}
		p.reconstructActiveFormattingElements()
		n := p.insertElementForToken(tok)
		p.pushFormattingElement(n, tok)
		return inBodyMode, true

	case "b", "big", "code", "em", "font", "i", "s", "small", "strike", "strong", "tt", "u":
		p.reconstructActiveFormattingElements()
		n := p.insertElementForToken(tok)
		p.pushFormattingElement(n, tok)
		return inBodyMode, true

	case "nobr":
		p.reconstructActiveFormattingElements()
		if p.hasInScope("nobr", scopeDefault) {
			p.adoptionAgency("nobr")
			p.reconstructActiveFormattingElements()
		}
		n := p.insertElementForToken(tok)
		p.pushFormattingElement(n, tok)
		return inBodyMode, true

	case "table":
		p.closePIfInButtonScope()
		p.insertElementForToken(tok)
		p.framesetOK = false
		return inTableMode, true

	case "area", "br", "embed", "img", "keygen", "wbr":
		p.reconstructActiveFormattingElements()
		p.insertElementForToken(tok)
		p.pop()
		p.framesetOK = false
		return inBodyMode, true

	case "input":
		p.reconstructActiveFormattingElements()
		p.insertElementForToken(tok)
		p.pop()
		if t := attrValue(tok.Attrs, "type"); !strings.EqualFold(t, "hidden") {
			p.framesetOK = false
		}
		return inBodyMode, true

	case "hr":
		p.closePIfInButtonScope()
		p.insertElementForToken(tok)
		p.pop()
		p.framesetOK = false
		return inBodyMode, true

	case "textarea":
		p.insertElementForToken(tok)
		p.tok.SwitchTo(RawtextKindRCDATA)
		p.originalMode = inBodyMode
		p.framesetOK = false
		return textMode, true

	case "xmp", "iframe", "noembed":
		p.reconstructActiveFormattingElements()
		p.insertElementForToken(tok)
		p.tok.SwitchTo(RawtextKindRawtext)
		p.originalMode = inBodyMode
		p.framesetOK = false
		return textMode, true

	default:
		if voidElements[tok.Name] {
			p.reconstructActiveFormattingElements()
			p.insertElementForToken(tok)
			p.pop()
			return inBodyMode, true
		}
		p.reconstructActiveFormattingElements()
		p.insertElementForToken(tok)
		return inBodyMode, true
	}
}

func inBodyEndTag(p *Parser) (insertionMode, bool) {
	tok := p.cur
	switch tok.Name {
	case "body":
		if p.hasInScope("body", scopeDefault) {
			return afterBodyMode, false
		}
		return inBodyMode, true

	case "html":
		if p.hasInScope("body", scopeDefault) {
			return afterBodyMode, false
		}
		return inBodyMode, true

	case "p":
		if !p.hasInScope("p", scopeButton) {
			p.insertElementForToken(Token{Name: "p"})
		}
		p.generateImpliedEndTags("p")
		p.popUntilTagPopped("p")
		return inBodyMode, true

	case "li":
		if p.hasInScope("li", scopeListItem) {
			p.generateImpliedEndTags("li")
			p.popUntilTagPopped("li")
		}
		return inBodyMode, true

	case "dd", "dt":
		if p.hasInScope(tok.Name, scopeDefault) {
			p.generateImpliedEndTags(tok.Name)
			p.popUntilTagPopped(tok.Name)
		}
		return inBodyMode, true

	case "h1", "h2", "h3", "h4", "h5", "h6":
		for i := len(p.openElements) - 1; i >= 0; i-- {
			if headingTags[p.openElements[i].LocalName] {
				p.generateImpliedEndTags("")
				p.openElements = p.openElements[:i]
				break
			}
		}
		return inBodyMode, true

	case "a", "b", "big", "code", "em", "font", "i", "nobr", "s", "small",
		"strike", "strong", "tt", "u":
		p.adoptionAgency(tok.Name)
		return inBodyMode, true

	default:
		p.anyOtherEndTagInBody(tok.Name)
		return inBodyMode, true
	}
}

func (p *Parser) afeIndexOfTag(tag string) int {
	marker := p.lastMarkerIndex()
	for i := len(p.afe) - 1; i > marker; i-- {
		if p.afe[i].node.LocalName == tag {
			return i
		}
	}
	return -1
}

func attrValue(attrs []Attribute, name string) string {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// afterBodyMode implements HTML5 §12.2.6.4.19.
func afterBodyMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case TextToken:
		_, rest := splitLeadingWhitespace(p.cur.Data)
		if rest == "" {
			return inBodyMode(p)
		}
	case CommentToken:
		if len(p.openElements) > 0 {
			p.openElements[0].AppendChild(dom.NewComment(p.cur.Data))
		}
		return afterBodyMode, true
	case DoctypeToken:
		return afterBodyMode, true
	case StartTagToken:
		if p.cur.Name == "html" {
			return inBodyMode(p)
		}
	case EndTagToken:
		if p.cur.Name == "html" {
			return afterAfterBodyMode, true
		}
	case EOFToken:
		return nil, true
	}
	return inBodyMode(p)
}

// afterAfterBodyMode implements HTML5 §12.2.6.4.22.
func afterAfterBodyMode(p *Parser) (insertionMode, bool) {
	switch p.cur.Type {
	case CommentToken:
		p.doc.AppendChild(dom.NewComment(p.cur.Data))
		return afterAfterBodyMode, true
	case DoctypeToken:
		return afterAfterBodyMode, true
	case TextToken:
		_, rest := splitLeadingWhitespace(p.cur.Data)
		if rest == "" {
			return afterAfterBodyMode, true
		}
	case StartTagToken:
		if p.cur.Name == "html" {
			return inBodyMode(p)
		}
	case EOFToken:
		return nil, true
	}
	return inBodyMode(p)
}
