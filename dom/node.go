// Package dom is the document facade DOMGuard operates on. It builds on
// golang.org/x/net/html nodes and adds the host state the policy engine
// needs: frames, a constraint side document, user-agent shadow roots,
// computed styles, parser state and pending attribute changes.
//
// Attribute access distinguishes an absent attribute from an empty one;
// every accessor returns a presence flag alongside the value.
package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// fragmentData marks a DocumentNode used as a detached document fragment
// container rather than a full document.
const fragmentData = "#fragment"

// shadowRootData marks the container node of an attached shadow root.
const shadowRootData = "#shadow-root"

// NewFragment creates an empty document-fragment container. Inserting a
// fragment inserts its children; the container itself never appears in a
// document.
func NewFragment() *html.Node {
	return &html.Node{Type: html.DocumentNode, Data: fragmentData}
}

// IsFragment reports whether n is a document-fragment container.
func IsFragment(n *html.Node) bool {
	return n != nil && n.Type == html.DocumentNode && n.Data == fragmentData
}

// IsDocument reports whether n is a document node proper.
func IsDocument(n *html.Node) bool {
	return n != nil && n.Type == html.DocumentNode && n.Data != fragmentData
}

// IsElement reports whether n is a real element, excluding the internal
// container nodes.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && !strings.HasPrefix(n.Data, "#")
}

// CreateElement creates a detached element with the given tag name.
func CreateElement(tag string) (n *html.Node) {
	tag = strings.ToLower(tag)

	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// TagName returns the upper-cased tag name of an element, or "" for
// non-elements.
func TagName(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}

	return strings.ToUpper(n.Data)
}

// Attr returns the value of the named attribute and whether it is present.
func Attr(n *html.Node, name string) (value string, ok bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}

	return "", false
}

// SetAttr sets the named attribute, replacing an existing value.
func SetAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return
		}
	}

	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr removes the named attribute if present.
func RemoveAttr(n *html.Node, name string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// ID returns the element's id attribute and whether it is present.
func ID(n *html.Node) (id string, ok bool) {
	return Attr(n, "id")
}
