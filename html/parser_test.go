package html

import (
	"testing"

	"github.com/mosaicbrowser/webcore/dom"
)

func findBody(doc *dom.Node) *dom.Node {
	var html *dom.Node
	for _, c := range doc.Children {
		if c.Type == dom.ElementNode && c.LocalName == "html" {
			html = c
		}
	}
	if html == nil {
		return nil
	}
	for _, c := range html.Children {
		if c.Type == dom.ElementNode && c.LocalName == "body" {
			return c
		}
	}
	return nil
}

func textContent(n *dom.Node) string {
	var s string
	for _, c := range n.Children {
		if c.Type == dom.TextNode {
			s += c.Data
		} else {
			s += textContent(c)
		}
	}
	return s
}

func TestParseImplicitParagraphClose(t *testing.T) {
	doc := Parse("<!DOCTYPE html><p>x<p>y")
	body := findBody(doc)
	if body == nil {
		t.Fatal("expected a body element")
	}
	var ps []*dom.Node
	for _, c := range body.Children {
		if c.Type == dom.ElementNode && c.LocalName == "p" {
			ps = append(ps, c)
		}
	}
	if len(ps) != 2 {
		t.Fatalf("expected two sibling <p> elements, got %d: %+v", len(ps), body.Children)
	}
	if textContent(ps[0]) != "x" || textContent(ps[1]) != "y" {
		t.Fatalf("got %q, %q", textContent(ps[0]), textContent(ps[1]))
	}
}

func TestParseDoctypeSetsNoQuirks(t *testing.T) {
	doc := Parse("<!DOCTYPE html><p>hi</p>")
	if doc.Mode != dom.NoQuirks {
		t.Fatalf("expected NoQuirks mode, got %v", doc.Mode)
	}
}

func TestParseAdoptionAgencyMisnestedFormatting(t *testing.T) {
	// spec.md §8 scenario 2: "<b>1<p>2</b>3" — the adoption agency
	// algorithm must split <b> across the <p> boundary so "2" and "3"
	// both end up in bold.
	doc := Parse("<b>1<p>2</b>3")
	body := findBody(doc)
	if body == nil {
		t.Fatal("expected a body element")
	}
	if textContent(body) != "123" {
		t.Fatalf("expected full text content \"123\", got %q", textContent(body))
	}

	var firstB, p *dom.Node
	for _, c := range body.Children {
		switch {
		case c.Type == dom.ElementNode && c.LocalName == "b" && firstB == nil:
			firstB = c
		case c.Type == dom.ElementNode && c.LocalName == "p":
			p = c
		}
	}
	if firstB == nil || textContent(firstB) != "1" {
		t.Fatalf("expected a top-level <b>1</b>, got %+v", firstB)
	}
	if p == nil {
		t.Fatal("expected a <p> element")
	}
	foundBInP := false
	for _, c := range p.Children {
		if c.Type == dom.ElementNode && c.LocalName == "b" {
			foundBInP = true
			if textContent(c) != "2" {
				t.Fatalf("expected cloned <b> to wrap \"2\", got %q", textContent(c))
			}
		}
	}
	if !foundBInP {
		t.Fatalf("expected adoption agency to clone <b> inside <p>, got %+v", p.Children)
	}
}

func TestParseFosterParentingOutOfTable(t *testing.T) {
	// spec.md §8 scenario 3: "<table>x<tr><td>y" — the stray text "x"
	// before any row must be foster-parented out of the table, not become
	// a child of it.
	doc := Parse("<table>x<tr><td>y")
	body := findBody(doc)
	if body == nil {
		t.Fatal("expected a body element")
	}

	var table *dom.Node
	for _, c := range body.Children {
		if c.Type == dom.ElementNode && c.LocalName == "table" {
			table = c
		}
	}
	if table == nil {
		t.Fatal("expected a <table> element")
	}
	for _, c := range table.Children {
		if c.Type == dom.TextNode {
			t.Fatalf("text node foster-parented incorrectly, found inside <table>: %q", c.Data)
		}
	}

	foundFosteredText := false
	for _, c := range body.Children {
		if c.Type == dom.TextNode && c.Data == "x" {
			foundFosteredText = true
		}
	}
	if !foundFosteredText {
		t.Fatalf("expected \"x\" foster-parented as a sibling of <table>, got children %+v", body.Children)
	}

	var td *dom.Node
	var walk func(*dom.Node)
	walk = func(n *dom.Node) {
		if n.Type == dom.ElementNode && n.LocalName == "td" {
			td = n
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(table)
	if td == nil || textContent(td) != "y" {
		t.Fatalf("expected <td>y</td> inside the table, got %+v", td)
	}
}

func TestParseVoidElementNotPushedOnStack(t *testing.T) {
	doc := Parse("<div><br>after</div>")
	body := findBody(doc)
	var div *dom.Node
	for _, c := range body.Children {
		if c.Type == dom.ElementNode && c.LocalName == "div" {
			div = c
		}
	}
	if div == nil {
		t.Fatal("expected a <div>")
	}
	if textContent(div) != "after" {
		t.Fatalf("expected <br> to not nest following content, got %q", textContent(div))
	}
}

func TestParseSelfClosingVoidElementAttributes(t *testing.T) {
	doc := Parse(`<img src="a.png">`)
	body := findBody(doc)
	var img *dom.Node
	for _, c := range body.Children {
		if c.Type == dom.ElementNode && c.LocalName == "img" {
			img = c
		}
	}
	if img == nil || img.GetAttribute("src") != "a.png" {
		t.Fatalf("got %+v", img)
	}
}

func TestParseCommentPreservedInBody(t *testing.T) {
	doc := Parse("<p><!-- note --></p>")
	body := findBody(doc)
	var p *dom.Node
	for _, c := range body.Children {
		if c.Type == dom.ElementNode && c.LocalName == "p" {
			p = c
		}
	}
	if p == nil || len(p.Children) != 1 || p.Children[0].Type != dom.CommentNode {
		t.Fatalf("got %+v", p)
	}
}
