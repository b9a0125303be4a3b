package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendChildMergesAdjacentText(t *testing.T) {
	div := NewElement("", "div")
	div.AppendChild(NewText("hello "))
	div.AppendChild(NewText("world"))

	require.Len(t, div.Children, 1, "expected text nodes to merge")
	assert.Equal(t, "hello world", div.Children[0].Data)
}

func TestAppendChildDoesNotMergeAcrossElement(t *testing.T) {
	div := NewElement("", "div")
	div.AppendChild(NewText("a"))
	div.AppendChild(NewElement("", "br"))
	div.AppendChild(NewText("b"))

	require.Len(t, div.Children, 3)
}

func TestAppendChildSetsParent(t *testing.T) {
	div := NewElement("", "div")
	span := NewElement("", "span")
	div.AppendChild(span)
	assert.Equal(t, div, span.Parent)
}

func TestInsertBeforeFosterParenting(t *testing.T) {
	// Simulates inserting text before the table that triggered foster
	// parenting: body[ table ] -> InsertBefore(text, table) -> body[text,
	// table].
	body := NewElement("", "body")
	table := NewElement("", "table")
	body.AppendChild(table)

	body.InsertBefore(NewText("x"), table)

	require.Len(t, body.Children, 2)
	assert.Equal(t, TextNode, body.Children[0].Type)
	assert.Equal(t, "x", body.Children[0].Data)
	assert.Same(t, table, body.Children[1])
}

func TestInsertBeforeMergesWithFollowingText(t *testing.T) {
	body := NewElement("", "body")
	existing := NewText("y")
	body.AppendChild(existing)

	body.InsertBefore(NewText("x"), existing)

	require.Len(t, body.Children, 1, "expected merge")
	assert.Equal(t, "xy", body.Children[0].Data)
}

func TestSetAttributeDeduplicatesAndPreservesOrder(t *testing.T) {
	el := NewElement("", "a")
	el.SetAttribute("href", "/first")
	el.SetAttribute("class", "link")
	el.SetAttribute("href", "/second")

	require.Len(t, el.Attributes, 2)
	assert.Equal(t, "href", el.Attributes[0].Name)
	assert.Equal(t, "/second", el.Attributes[0].Value)
}

func TestAppendAttributeFirstWins(t *testing.T) {
	el := NewElement("", "div")
	// The tree builder is responsible for the "keep first, discard later"
	// rule (spec.md §4.4); AppendAttribute itself just appends, and
	// GetAttribute returns the first attribute with a matching name.
	el.AppendAttribute("", "id", "first")
	el.AppendAttribute("", "id", "second")
	require.True(t, el.HasAttribute("id"))
	assert.Equal(t, "first", el.GetAttribute("id"))
}

func TestClasses(t *testing.T) {
	el := NewElement("", "div")
	el.SetAttribute("class", "  a  b\tc ")
	assert.Equal(t, []string{"a", "b", "c"}, el.Classes())
}

func TestIsDescendantOf(t *testing.T) {
	doc := NewDocument()
	html := NewElement("", "html")
	body := NewElement("", "body")
	doc.AppendChild(html)
	html.AppendChild(body)

	assert.True(t, body.IsDescendantOf(doc))
	assert.False(t, doc.IsDescendantOf(body))
}

func TestRemoveChild(t *testing.T) {
	div := NewElement("", "div")
	span := NewElement("", "span")
	div.AppendChild(span)
	div.RemoveChild(span)

	assert.Empty(t, div.Children)
	assert.Nil(t, span.Parent)
}
