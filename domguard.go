// Package domguard implements a runtime policy engine that mediates every
// mutation of a frame's document tree.
//
// The engine maintains a shadow tree: a side document describing every DOM
// shape, attribute value and computed-style value the frame has been
// observed to reach. In record mode each mutation extends the shadow tree;
// in enforce mode a mutation is allowed only when the shadow tree already
// accounts for it.
package domguard

import (
	"github.com/AdguardTeam/golibs/log"
	"golang.org/x/net/html"

	"github.com/AdguardTeam/domguard/cssvalue"
	"github.com/AdguardTeam/domguard/dom"
)

// DOMGuard is the per-frame policy engine. All methods must be called on the
// frame's thread; the engine has no locking of its own.
type DOMGuard struct {
	frame *dom.Frame

	// propertyIDs is the fixed ordered list of monitored CSS properties,
	// seeded by FrameAttachedToParent. The two parallel slices below are
	// scratch state valid only inside a single WillSetStyle call.
	propertyIDs   []cssvalue.PropertyID
	propModified  []bool
	propValues    []*cssvalue.Value
	modifiedCount int
}

// New creates an engine for the frame and registers it with the frame's
// probe sink. Call Shutdown before releasing the frame.
func New(frame *dom.Frame) (g *DOMGuard) {
	g = &DOMGuard{frame: frame}
	frame.ProbeSink().Add(g)

	return g
}

// Shutdown deregisters the engine and severs the frame reference. It is a
// no-op when called twice. After shutdown every hook allows.
func (g *DOMGuard) Shutdown() {
	if g.frame == nil {
		return
	}

	g.frame.ProbeSink().Remove(g)
	g.frame = nil
}

// FrameAttachedToParent seeds the per-frame state: the monitored property
// list comes from the registry, the constraint tree is cleared, and the mode
// starts as record.
func (g *DOMGuard) FrameAttachedToParent() {
	if g.frame == nil {
		return
	}

	g.propertyIDs = cssvalue.MonitoredProperties()
	g.propModified = make([]bool, len(g.propertyIDs))
	g.propValues = make([]*cssvalue.Value, len(g.propertyIDs))
	g.modifiedCount = 0

	_ = g.frame.SetDOMConstraintHTML("")
	g.frame.SetDOMConstraintMode("r")
}

// ParseHTML is the probe payload delivered around a document parser run.
type ParseHTML struct {
	Document *dom.Document
}

// Will receives the parser-start probe.
func (g *DOMGuard) Will(probe ParseHTML) {
	if probe.Document == nil || !probe.Document.CanExecuteScript() {
		return
	}

	log.Debug("domguard: parsing started for a script-capable document")
}

// Did receives the parser-end probe.
func (g *DOMGuard) Did(probe ParseHTML) {}

// DidParseHTML is invoked after a parser finished building a subtree.
// Parsers that can execute script have already been observed through the
// mutation hooks.
func (g *DOMGuard) DidParseHTML(doc *dom.Document) {
	if doc == nil || doc.CanExecuteScript() {
		return
	}

	log.Debug("domguard: script-incapable parser finished")
}

// recording reports whether the frame is in record mode, enforcing whether
// it is in enforce mode. A frame with an empty mode string is in neither and
// every hook passes mutations through.
func (g *DOMGuard) recording() bool {
	mode := g.frame.DOMConstraintMode()

	return len(mode) > 0 && mode[0] == 'r'
}

func (g *DOMGuard) enforcing() bool {
	mode := g.frame.DOMConstraintMode()

	return len(mode) > 0 && mode[0] == 'e'
}

// isDescendantOfUserAgentShadowRoot reports whether node sits inside a
// user-agent shadow root, whose mutations are the host's business, not the
// page's.
func (g *DOMGuard) isDescendantOfUserAgentShadowRoot(d *dom.Document, node *html.Node) bool {
	for ; node != nil; node = d.ParentOrShadowHost(node) {
		if d.IsUserAgentShadowRoot(node) {
			return true
		}
	}

	return false
}
