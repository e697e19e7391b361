package dom

import "golang.org/x/net/html"

// pendingAttr is an attribute change queued while the element was not yet
// policy-visible, typically during document parsing.
type pendingAttr struct {
	name  string
	value string
}

// QueuePendingAttr queues an attribute change on an element to be applied by
// a later FlushPendingSubtree call.
func (d *Document) QueuePendingAttr(n *html.Node, name, value string) {
	d.pending[n] = append(d.pending[n], pendingAttr{name: name, value: value})
}

// HasPendingAttrs reports whether an element has queued attribute changes.
func (d *Document) HasPendingAttrs(n *html.Node) bool {
	return len(d.pending[n]) > 0
}

// FlushPendingSubtree applies the queued attribute changes of every element
// under node, including elements inside author shadow roots. Fragment
// containers are flattened into their children.
func (d *Document) FlushPendingSubtree(node *html.Node) {
	if node == nil {
		return
	}

	if IsFragment(node) {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			d.FlushPendingSubtree(child)
		}
		return
	}

	if !IsElement(node) {
		return
	}

	for _, p := range d.pending[node] {
		SetAttr(node, p.name, p.value)
	}
	delete(d.pending, node)

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		d.FlushPendingSubtree(child)
	}

	if root := d.authorShadow[node]; root != nil {
		for child := root.FirstChild; child != nil; child = child.NextSibling {
			d.FlushPendingSubtree(child)
		}
	}
}
