package domguard

import (
	"golang.org/x/net/html"

	"github.com/AdguardTeam/domguard/cssvalue"
	"github.com/AdguardTeam/domguard/dom"
)

// WillInsertDOMNode mediates the insertion of node (an element, text node or
// document fragment) under parent before next. In record mode the shadow
// tree absorbs the inserted subtree; in enforce mode the insertion is
// allowed only when the shadow tree accounts for every inserted element.
func (g *DOMGuard) WillInsertDOMNode(parent, node, next *html.Node) (allowed bool) {
	allowed = true
	if g.frame == nil {
		return allowed
	}

	d := g.frame.Document()
	if !d.HasWindow() {
		return allowed
	}

	if g.isDescendantOfUserAgentShadowRoot(d, parent) {
		d.FlushPendingSubtree(node)
		return allowed
	}

	if d.IsParsing() {
		d.FlushPendingSubtree(node)
		return allowed
	}

	if g.recording() {
		shadowPtr, result := g.locateNodeAndCreateAncestorsInShadowTree(parent)
		if result != matchFound {
			return allowed
		}

		g.createShadowNode(shadowPtr, node)
		d.FlushPendingSubtree(node)

		return allowed
	}

	if g.enforcing() {
		shadowParent, result := g.locateNodeInShadowTree(parent)
		switch result {
		case matchRootIsNotDocument:
			// The parent is not connected to the document; no policy
			// applies to detached trees.
			allowed = true
		case matchFound:
			allowed = g.hasMatchingSubtreeInShadowTree(node, shadowParent)
		case matchWhitelistMatch:
			allowed = g.matchesNodeWhitelistInShadowTree(node, shadowParent)
		default:
			allowed = false
		}

		if !allowed {
			g.logRejectedInsertion(result, parent, node)
		} else if result != matchRootIsNotDocument {
			d.FlushPendingSubtree(node)
		}
	}

	return allowed
}

// WillModifyDOMAttr mediates an attribute change on element. newPresent is
// false when the change removes the attribute. Unmonitored attributes pass
// through untouched.
func (g *DOMGuard) WillModifyDOMAttr(element *html.Node, name, oldValue, newValue string, newPresent bool) (allowed bool) {
	allowed = true
	if g.frame == nil {
		return allowed
	}

	d := g.frame.Document()
	if !d.HasWindow() {
		return allowed
	}

	if g.isDescendantOfUserAgentShadowRoot(d, element) {
		return allowed
	}

	if d.IsParsing() {
		d.FlushPendingSubtree(element)
		return allowed
	}

	if !shouldMonitorAttribute(element, name) {
		return allowed
	}

	if g.recording() {
		shadowPtr, result := g.locateNodeAndCreateAncestorsInShadowTree(element)
		if result != matchFound {
			return allowed
		}

		pattern, patternPresent := dom.Attr(shadowPtr, name)
		if !g.attributeEquals(element, name, pattern, patternPresent, newValue, newPresent) {
			g.outputAttributeModification(shadowPtr, name, newValue)
			dom.SetAttr(shadowPtr, name, g.mergeShadowAttribute(element, name, pattern, patternPresent, newValue, newPresent))
		}

		return allowed
	}

	if g.enforcing() {
		shadowPtr, result := g.locateNodeInShadowTree(element)
		var pattern string
		var patternPresent bool
		switch result {
		case matchRootIsNotDocument:
			allowed = true
		case matchFound:
			pattern, patternPresent = dom.Attr(shadowPtr, name)
			allowed = g.attributeEquals(element, name, pattern, patternPresent, newValue, newPresent)
		case matchWhitelistMatch:
			allowed = g.matchesAttributeWhitelistInShadowTree(element, name, newValue, newPresent, shadowPtr)
		default:
			allowed = false
		}

		if !allowed {
			g.logRejectedAttribute(result, element, name, newValue, pattern)
		}
	}

	return allowed
}

// WillRemoveDOMNode mediates a node removal. Removal cannot drive the
// document outside the recorded set, so it is always allowed.
func (g *DOMGuard) WillRemoveDOMNode(node *html.Node) (allowed bool) {
	allowed = true
	if g.frame == nil {
		return allowed
	}

	d := g.frame.Document()
	if !d.HasWindow() {
		return allowed
	}

	if g.isDescendantOfUserAgentShadowRoot(d, node) {
		return allowed
	}

	return allowed
}

// WillSetStyle mediates a computed-style change on element. Only monitored
// properties that survive both equality fast paths count as modified; in
// record mode they merge into the shadow's dtt-s-* patterns, in enforce mode
// each must be cleared by the located shadow or, under a whitelist, by some
// descendant shadow.
func (g *DOMGuard) WillSetStyle(element *html.Node, newStyle *cssvalue.ComputedStyle) (allowed bool) {
	allowed = true
	if g.frame == nil {
		return allowed
	}

	d := g.frame.Document()
	if !d.HasWindow() {
		// Moving an element into a window always triggers a style set;
		// there is nothing to compare yet.
		return allowed
	}

	if g.isDescendantOfUserAgentShadowRoot(d, element) {
		return allowed
	}

	if d.IsParsing() {
		d.FlushPendingSubtree(element)
		return allowed
	}

	if g.recording() {
		shadowPtr, result := g.locateNodeAndCreateAncestorsInShadowTree(element)
		if result != matchFound {
			return allowed
		}

		g.collectStyleChanges(d.ComputedStyle(element), newStyle, false)
		for count, id := range g.propertyIDs {
			if !g.propModified[count] {
				continue
			}

			name := shadowStyleAttr(id)
			pattern, _ := dom.Attr(shadowPtr, name)
			newValue := computedValue(newStyle, id)
			merged, present := g.mergeShadowProperty(id, pattern, newValue)
			if present {
				g.outputPropertyModification(shadowPtr, id, newValue)
				dom.SetAttr(shadowPtr, name, merged)
			}
		}

		return allowed
	}

	if g.enforcing() {
		shadowPtr, result := g.locateNodeInShadowTree(element)
		if shadowPtr == nil {
			// Unlike the other hooks, a style change with no locatable
			// shadow is denied outright, detached or not.
			allowed = false
			g.logRejectedStyle(result, element, cssvalue.PropertyInvalid, "", "")

			return allowed
		}

		switch result {
		case matchFound:
			allowed = g.enforceStyleFound(element, shadowPtr, newStyle)
		case matchWhitelistMatch:
			g.collectStyleChanges(d.ComputedStyle(element), newStyle, true)
			allowed = g.matchesPropertyWhitelistInShadowTree(shadowPtr, newStyle, false)
			if !allowed {
				allowed = g.matchesPropertyWhitelistInShadowTree(shadowPtr, newStyle, true)
			}
			if !allowed {
				g.logRejectedStyleWhitelist(result, element, newStyle)
			}
		}
	}

	return allowed
}

// enforceStyleFound checks every changed property of element against the
// located shadow element: first the shadow's own computed style, then its
// stored dtt-s-* pattern. The first surviving mismatch denies the change.
func (g *DOMGuard) enforceStyleFound(element, shadowPtr *html.Node, newStyle *cssvalue.ComputedStyle) bool {
	d := g.frame.Document()
	currentStyle := d.ComputedStyle(element)
	shadowStyle := g.frame.DOMConstraint().ComputedStyle(shadowPtr)

	for _, id := range g.propertyIDs {
		newText := computedText(newStyle, id)

		if currentStyle == nil {
			if newText == "" {
				continue
			}
		} else {
			fast := cssvalue.PropertiesEqual(id, currentStyle, newStyle)
			if fast == 1 {
				continue
			}
			if fast == -1 && computedText(currentStyle, id) == newText {
				continue
			}
		}

		if shadowStyle != nil {
			if cssvalue.PropertiesEqual(id, shadowStyle, newStyle) == 1 {
				continue
			}
			if computedText(shadowStyle, id) == newText {
				continue
			}
		}

		pattern, patternPresent := dom.Attr(shadowPtr, shadowStyleAttr(id))
		if !cssvalue.PropertyEquals(id, pattern, patternPresent, computedValue(newStyle, id)) {
			g.logRejectedStyle(matchFound, element, id, newText, pattern)

			return false
		}
	}

	return true
}
