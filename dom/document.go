package dom

import (
	"strings"

	"github.com/AdguardTeam/golibs/errors"
	"golang.org/x/net/html"

	"github.com/AdguardTeam/domguard/cssvalue"
)

// ErrBadMarkup is returned when constraint HTML fails to parse.
const ErrBadMarkup errors.Error = "cannot parse constraint markup"

// Document wraps a live or side document and the host state attached to it.
type Document struct {
	// Node is the underlying document node; its element children form the
	// document tree.
	Node *html.Node

	frame *Frame

	hasWindow        bool
	parsing          bool
	canExecuteScript bool

	// shadowHost maps a shadow-root container back to its host element,
	// uaShadow marks the containers belonging to user-agent shadow roots,
	// and authorShadow maps a host to its author shadow root.
	shadowHost   map[*html.Node]*html.Node
	uaShadow     map[*html.Node]struct{}
	authorShadow map[*html.Node]*html.Node

	styles  map[*html.Node]*cssvalue.ComputedStyle
	pending map[*html.Node][]pendingAttr
}

// NewDocument creates an empty document with a window.
func NewDocument() *Document {
	return &Document{
		Node:         &html.Node{Type: html.DocumentNode},
		hasWindow:    true,
		shadowHost:   map[*html.Node]*html.Node{},
		uaShadow:     map[*html.Node]struct{}{},
		authorShadow: map[*html.Node]*html.Node{},
		styles:       map[*html.Node]*cssvalue.ComputedStyle{},
		pending:      map[*html.Node][]pendingAttr{},
	}
}

// ParseDocument parses markup into a new document.
func ParseDocument(markup string) (d *Document, err error) {
	node, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, errors.Annotate(err, "parsing document: %w")
	}

	d = NewDocument()
	d.Node = node

	return d, nil
}

// ParseFragment parses markup in body context into a document-fragment
// container, the shape a host hands to an insertion hook.
func ParseFragment(markup string) (frag *html.Node, err error) {
	context := CreateElement("body")
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, errors.Annotate(err, "parsing fragment: %w")
	}

	frag = NewFragment()
	for _, n := range nodes {
		frag.AppendChild(n)
	}

	return frag, nil
}

// Frame returns the frame this document belongs to, nil for side documents.
func (d *Document) Frame() *Frame {
	return d.frame
}

// HasWindow reports whether the document is attached to a window.
func (d *Document) HasWindow() bool {
	return d.hasWindow
}

// SetHasWindow toggles the window attachment flag.
func (d *Document) SetHasWindow(has bool) {
	d.hasWindow = has
}

// IsParsing reports whether the document parser is currently running.
func (d *Document) IsParsing() bool {
	return d.parsing
}

// SetParsing toggles the parser-running flag.
func (d *Document) SetParsing(parsing bool) {
	d.parsing = parsing
}

// CanExecuteScript reports whether the document parser may execute script.
func (d *Document) CanExecuteScript() bool {
	return d.canExecuteScript
}

// SetCanExecuteScript toggles the script execution flag.
func (d *Document) SetCanExecuteScript(can bool) {
	d.canExecuteScript = can
}

// AttachShadow creates a shadow root on host. A user-agent shadow root makes
// the whole hosted subtree invisible to the policy engine.
func (d *Document) AttachShadow(host *html.Node, userAgent bool) (root *html.Node) {
	root = &html.Node{Type: html.ElementNode, Data: shadowRootData}
	d.shadowHost[root] = host
	if userAgent {
		d.uaShadow[root] = struct{}{}
	} else {
		d.authorShadow[host] = root
	}

	return root
}

// AuthorShadowRoot returns the author shadow root attached to host, if any.
func (d *Document) AuthorShadowRoot(host *html.Node) *html.Node {
	return d.authorShadow[host]
}

// IsUserAgentShadowRoot reports whether n is the container of a user-agent
// shadow root.
func (d *Document) IsUserAgentShadowRoot(n *html.Node) bool {
	_, ok := d.uaShadow[n]

	return ok
}

// ParentOrShadowHost returns the parent of n, crossing from a shadow root to
// its host.
func (d *Document) ParentOrShadowHost(n *html.Node) *html.Node {
	if host, ok := d.shadowHost[n]; ok {
		return host
	}

	return n.Parent
}

// ComputedStyle returns the computed style stored for an element, nil when
// the element has none.
func (d *Document) ComputedStyle(n *html.Node) *cssvalue.ComputedStyle {
	return d.styles[n]
}

// SetComputedStyle stores the computed style of an element.
func (d *Document) SetComputedStyle(n *html.Node, cs *cssvalue.ComputedStyle) {
	d.styles[n] = cs
}

// Contains reports whether n's ancestor chain, crossing shadow boundaries,
// ends at this document's node.
func (d *Document) Contains(n *html.Node) bool {
	for ; n != nil; n = d.ParentOrShadowHost(n) {
		if n == d.Node {
			return true
		}
	}

	return false
}

// Ancestors collects n and its ancestors bottom-up, crossing shadow
// boundaries, into dst. The last entry is the chain's root. The returned
// slice reuses dst's backing array; tree depth is typically small enough for
// the caller to keep one scratch vector.
func (d *Document) Ancestors(n *html.Node, dst []*html.Node) []*html.Node {
	dst = dst[:0]
	for ; n != nil; n = d.ParentOrShadowHost(n) {
		dst = append(dst, n)
	}

	return dst
}
