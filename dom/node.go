// Package dom provides the Document Object Model tree structure produced by
// the HTML tree builder: Document, DocumentType, Element, Text, Comment and
// ProcessingInstruction nodes, plus the invariants that must hold over them.
//
// Spec references:
// - spec.md §3.2 DOM
package dom

import "github.com/mosaicbrowser/webcore/css"

// NodeType discriminates the kind of a Node.
type NodeType int

const (
	DocumentNode NodeType = iota
	DocumentTypeNode
	ElementNode
	TextNode
	CommentNode
	ProcessingInstructionNode
)

func (t NodeType) String() string {
	switch t {
	case DocumentNode:
		return "#document"
	case DocumentTypeNode:
		return "#doctype"
	case ElementNode:
		return "#element"
	case TextNode:
		return "#text"
	case CommentNode:
		return "#comment"
	case ProcessingInstructionNode:
		return "#processing-instruction"
	default:
		return "#unknown"
	}
}

// HTMLNamespace is the default namespace URI for elements created by the
// HTML tree builder. spec.md §3.2: "namespace URI (HTML namespace by
// default)".
const HTMLNamespace = "http://www.w3.org/1999/xhtml"

// SVGNamespace and MathMLNamespace are recognized but foreign-content
// adjustment (tag-name case-fixing, attribute namespacing, the breakout
// rules for <svg>/<math> integration points) is not implemented — they
// exist so callers can construct foreign elements directly without the
// tree builder rejecting them.
const (
	SVGNamespace    = "http://www.w3.org/2000/svg"
	MathMLNamespace = "http://www.w3.org/1998/Math/MathML"
)

// QuirksMode records which of the three document compliance modes applies.
type QuirksMode int

const (
	NoQuirks QuirksMode = iota
	Quirks
	LimitedQuirks
)

// Attribute is one (namespace, local name, value) triple on an Element.
// Attributes are ordered; the tree builder is responsible for dropping
// duplicate names before they reach AppendAttribute (spec.md §3.2, §4.4
// "Duplicate attribute names ... keep the first, discard later").
type Attribute struct {
	Namespace string
	Name      string
	Value     string
}

// Node is a single node in the document tree. Every node except a Document
// has exactly one parent (spec.md §3.2); Parent is a plain pointer rather
// than a weak reference — spec.md §9 calls out that an arena-of-integer-
// indices representation "removes the weak/strong distinction entirely",
// and Go's GC collects the resulting parent/child cycles without
// assistance, so a strong back-pointer is the idiomatic realization here.
type Node struct {
	Type   NodeType
	Parent *Node

	// Element fields.
	Namespace  string
	LocalName  string // tag name, e.g. "div"
	Attributes []Attribute

	// Text / Comment character buffer.
	Data string

	// DocumentType fields.
	Name     string
	PublicID string
	SystemID string

	// ProcessingInstruction fields.
	Target string

	// Document fields.
	Doctype     *Node
	Mode        QuirksMode
	BaseURL     string
	Stylesheets []*css.Stylesheet

	Children []*Node
}

// NewDocument creates an empty Document node.
func NewDocument() *Node {
	return &Node{Type: DocumentNode, Mode: NoQuirks}
}

// NewDocumentType creates a DocumentType node (never attached to a parent
// other than a Document, enforced by AppendChild).
func NewDocumentType(name, publicID, systemID string) *Node {
	return &Node{Type: DocumentTypeNode, Name: name, PublicID: publicID, SystemID: systemID}
}

// NewElement creates an Element in the given namespace (defaulting to the
// HTML namespace when ns == "").
func NewElement(ns, localName string) *Node {
	if ns == "" {
		ns = HTMLNamespace
	}
	return &Node{Type: ElementNode, Namespace: ns, LocalName: localName}
}

// NewText creates a Text node holding the given characters.
func NewText(data string) *Node {
	return &Node{Type: TextNode, Data: data}
}

// NewComment creates a Comment node holding the given characters.
func NewComment(data string) *Node {
	return &Node{Type: CommentNode, Data: data}
}

// NewProcessingInstruction creates a ProcessingInstruction node. The HTML
// tokenizer never produces one (a leading "<?" is tokenized as a bogus
// comment, per spec.md §4.4); this constructor exists for data-model
// completeness (spec.md §3.2 names the entity) and direct construction by
// callers/tests.
func NewProcessingInstruction(target, data string) *Node {
	return &Node{Type: ProcessingInstructionNode, Target: target, Data: data}
}

// AppendChild appends child as the last child of n, merging it into a
// trailing Text sibling when both n's current last child and child are
// Text nodes (spec.md §3.2 text-merge invariant: "no two adjacent Text
// siblings").
func (n *Node) AppendChild(child *Node) {
	if child.Type == TextNode && len(n.Children) > 0 {
		if last := n.Children[len(n.Children)-1]; last.Type == TextNode {
			last.Data += child.Data
			return
		}
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// InsertBefore inserts node immediately before reference among n's
// children, or appends it if reference is nil or not found. It honors the
// text-merge invariant on both sides: a Text node is merged into a Text
// sibling immediately before the insertion point or, failing that, into a
// Text sibling immediately after it. Used by the HTML tree builder for foster
// parenting (spec.md §4.5) where insertion does not happen at the end of
// the target's child list.
func (n *Node) InsertBefore(node, reference *Node) {
	idx := len(n.Children)
	if reference != nil {
		for i, c := range n.Children {
			if c == reference {
				idx = i
				break
			}
		}
	}

	if node.Type == TextNode && idx > 0 && n.Children[idx-1].Type == TextNode {
		n.Children[idx-1].Data += node.Data
		return
	}
	if node.Type == TextNode && idx < len(n.Children) && n.Children[idx].Type == TextNode {
		n.Children[idx].Data = node.Data + n.Children[idx].Data
		return
	}

	node.Parent = n
	n.Children = append(n.Children, nil)
	copy(n.Children[idx+1:], n.Children[idx:])
	n.Children[idx] = node
}

// RemoveChild detaches child from n's child list, if present.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// GetAttribute returns the value of the named attribute in the HTML
// namespace, or "" if absent.
func (n *Node) GetAttribute(name string) string {
	for _, a := range n.Attributes {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// HasAttribute reports whether the named attribute is present.
func (n *Node) HasAttribute(name string) bool {
	for _, a := range n.Attributes {
		if a.Name == name {
			return true
		}
	}
	return false
}

// SetAttribute sets (or replaces) an HTML-namespace attribute, preserving
// the ordered-attributes invariant: a name already present keeps its
// original position.
func (n *Node) SetAttribute(name, value string) {
	for i, a := range n.Attributes {
		if a.Name == name {
			n.Attributes[i].Value = value
			return
		}
	}
	n.Attributes = append(n.Attributes, Attribute{Name: name, Value: value})
}

// AppendAttribute appends an attribute without checking for duplicates;
// the HTML tree builder calls this only after its own duplicate check
// (spec.md §4.4), so the invariant "no duplicate attribute names on an
// element" holds by construction at the call site.
func (n *Node) AppendAttribute(ns, name, value string) {
	n.Attributes = append(n.Attributes, Attribute{Namespace: ns, Name: name, Value: value})
}

// ID returns the element's id attribute.
func (n *Node) ID() string {
	return n.GetAttribute("id")
}

// Classes returns the element's class list, split on ASCII whitespace.
func (n *Node) Classes() []string {
	class := n.GetAttribute("class")
	if class == "" {
		return nil
	}
	var classes []string
	start := -1
	isSpace := func(b byte) bool {
		switch b {
		case ' ', '\t', '\n', '\f', '\r':
			return true
		}
		return false
	}
	for i := 0; i <= len(class); i++ {
		if i == len(class) || isSpace(class[i]) {
			if start >= 0 {
				classes = append(classes, class[start:i])
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	return classes
}

// IsDescendantOf reports whether n is a (possibly indirect) descendant of
// ancestor, walking Parent links. Used by the tree-invariant checks and by
// scope-style lookups elsewhere.
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Root returns the outermost ancestor of n (n itself if it has no parent).
func (n *Node) Root() *Node {
	cur := n
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}
