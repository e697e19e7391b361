package domguard

import (
	"golang.org/x/net/html"

	"github.com/AdguardTeam/domguard/dom"
	"github.com/AdguardTeam/domguard/patterns"
)

// Shadow bookkeeping attribute names.
const (
	attrShadowID  = "dtt-id"
	attrDangling  = "dtt-dangling"
	attrWhitelist = "dtt-whitelist"

	// shadowStylePrefix prefixes the per-property computed style patterns.
	shadowStylePrefix = "dtt-s-"
)

// matchResult is the outcome of locating a live node in the shadow tree.
type matchResult int

const (
	matchFound matchResult = iota
	matchNotFound
	matchRootIsNotDocument
	matchWhitelistMatch
)

func (r matchResult) String() string {
	switch r {
	case matchFound:
		return "Found"
	case matchNotFound:
		return "NotFound"
	case matchRootIsNotDocument:
		return "RootIsNotDocument"
	case matchWhitelistMatch:
		return "WhitelistMatch"
	}

	return "Unknown"
}

func (g *DOMGuard) mode() string {
	return g.frame.DOMConstraintMode()
}

// attributeEquals evaluates a stored shadow pattern against an attribute
// value using the attribute's semantic class.
func (g *DOMGuard) attributeEquals(el *html.Node, name, pattern string, patternPresent bool, value string, valuePresent bool) bool {
	return patterns.AttributeEquals(attributeClass(el, name), g.mode(), pattern, patternPresent, value, valuePresent)
}

// mergeShadowAttribute merges a newly observed attribute value into the
// shadow's stored pattern, leaving the pattern alone when it already
// matches.
func (g *DOMGuard) mergeShadowAttribute(el *html.Node, name, pattern string, patternPresent bool, value string, valuePresent bool) string {
	return patterns.MergeAttributeValue(attributeClass(el, name), g.mode(), pattern, patternPresent, value, valuePresent)
}

// isEqualInShadowTree reports whether a shadow element stands for the live
// element: same tag, and the dtt-id pattern matches the live id.
func (g *DOMGuard) isEqualInShadowTree(shadow, actual *html.Node) bool {
	if dom.TagName(shadow) != dom.TagName(actual) {
		return false
	}

	pattern, patternPresent := dom.Attr(shadow, attrShadowID)
	id, idPresent := dom.ID(actual)

	return g.attributeEquals(actual, attrShadowID, pattern, patternPresent, id, idPresent)
}

// findShadowChild returns the first shadow child standing for the live
// element, or nil.
func (g *DOMGuard) findShadowChild(shadowParent, actual *html.Node) *html.Node {
	for child := shadowParent.FirstChild; child != nil; child = child.NextSibling {
		if dom.IsElement(child) && g.isEqualInShadowTree(child, actual) {
			return child
		}
	}

	return nil
}

// locateNodeInShadowTree walks the live ancestors of node top-down and
// follows the shadow tree alongside. It never mutates the shadow tree.
//
// A matched shadow carrying dtt-whitelist short-circuits the walk: the
// result is WhitelistMatch unless the whitelist shadow stands for node
// itself, in which case it is Found.
func (g *DOMGuard) locateNodeInShadowTree(node *html.Node) (shadow *html.Node, result matchResult) {
	d := g.frame.Document()
	ancestors := d.Ancestors(node, nil)

	root := ancestors[len(ancestors)-1]
	if !dom.IsDocument(root) {
		return nil, matchRootIsNotDocument
	}
	ancestors = ancestors[:len(ancestors)-1]

	shadowPtr := g.frame.DOMConstraint().Node
	for i := len(ancestors) - 1; i >= 0; i-- {
		ancestor := ancestors[i]
		if !dom.IsElement(ancestor) {
			// Document fragments and shadow-root containers are transparent
			// for structural matching.
			continue
		}

		found := g.findShadowChild(shadowPtr, ancestor)
		if found == nil {
			return nil, matchNotFound
		}

		shadowPtr = found
		if _, ok := dom.Attr(found, attrWhitelist); ok {
			if i > 0 {
				return shadowPtr, matchWhitelistMatch
			}

			return shadowPtr, matchFound
		}
	}

	return shadowPtr, matchFound
}

// locateNodeAndCreateAncestorsInShadowTree is the record-mode locate: when
// the walk stalls it creates minimal shadow ancestors, tag and mirrored
// dtt-id only, for the remaining live ancestors. Their other attributes are
// deliberately not cloned: those elements existed before the engine observed
// them and their attribute history is unknown.
func (g *DOMGuard) locateNodeAndCreateAncestorsInShadowTree(node *html.Node) (shadow *html.Node, result matchResult) {
	d := g.frame.Document()
	ancestors := d.Ancestors(node, nil)

	root := ancestors[len(ancestors)-1]
	if !dom.IsDocument(root) || root != d.Node {
		return nil, matchRootIsNotDocument
	}
	ancestors = ancestors[:len(ancestors)-1]

	constraint := g.frame.DOMConstraint()
	shadowPtr := constraint.Node

	i := len(ancestors) - 1
	for ; i >= 0; i-- {
		ancestor := ancestors[i]
		if !dom.IsElement(ancestor) {
			continue
		}

		found := g.findShadowChild(shadowPtr, ancestor)
		if found == nil {
			break
		}
		shadowPtr = found
	}

	for ; i >= 0; i-- {
		ancestor := ancestors[i]
		if !dom.IsElement(ancestor) {
			continue
		}

		shadowElement := dom.CreateElement(dom.TagName(ancestor))
		if id, ok := dom.ID(ancestor); ok {
			dom.SetAttr(shadowElement, attrShadowID, id)
		}
		g.markDangling(shadowPtr, shadowElement)

		shadowPtr.AppendChild(shadowElement)
		shadowPtr = shadowElement
	}

	return shadowPtr, matchFound
}

// markDangling flags a non-HEAD/non-BODY child of the HTML shadow. The flag
// is written but not read by the engine; it distinguishes the canonical
// document spine in exported constraint trees.
func (g *DOMGuard) markDangling(shadowParent, shadowElement *html.Node) {
	if dom.TagName(shadowParent) != "HTML" {
		return
	}
	if tag := dom.TagName(shadowElement); tag != "HEAD" && tag != "BODY" {
		dom.SetAttr(shadowElement, attrDangling, "")
	}
}

// createShadowNode records an inserted subtree under the located shadow
// parent. Fragments dissolve into their children; a new shadow element
// mirrors the live id and every monitored attribute; an existing matching
// shadow element absorbs the observed attribute values into its patterns.
func (g *DOMGuard) createShadowNode(shadowPtr, node *html.Node) {
	if dom.IsFragment(node) {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			g.createShadowNode(shadowPtr, child)
		}
		return
	}

	// Non-element nodes are flat and usually benign; no shadow for them.
	if !dom.IsElement(node) {
		return
	}

	shadowElement := g.findShadowChild(shadowPtr, node)
	if shadowElement == nil {
		shadowElement = dom.CreateElement(dom.TagName(node))
		for _, attr := range node.Attr {
			if attr.Namespace != "" {
				continue
			}
			if attr.Key == "id" {
				dom.SetAttr(shadowElement, attrShadowID, attr.Val)
			}
			if shouldMonitorAttribute(node, attr.Key) {
				dom.SetAttr(shadowElement, attr.Key, attr.Val)
			}
		}
		g.markDangling(shadowPtr, shadowElement)

		shadowPtr.AppendChild(shadowElement)
		g.outputElementInsertion(shadowPtr, shadowElement)
	} else {
		for _, attr := range node.Attr {
			if attr.Namespace != "" || !shouldMonitorAttribute(node, attr.Key) {
				continue
			}
			pattern, patternPresent := dom.Attr(shadowElement, attr.Key)
			merged := g.mergeShadowAttribute(node, attr.Key, pattern, patternPresent, attr.Val, true)
			dom.SetAttr(shadowElement, attr.Key, merged)
		}
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		g.createShadowNode(shadowElement, child)
	}
}

// matchingNode reports whether a shadow node fully stands for the live
// element: tag, dtt-id, and every monitored attribute pattern.
func (g *DOMGuard) matchingNode(node, shadowNode *html.Node) *html.Node {
	if !dom.IsElement(shadowNode) {
		// The shadow tree can contain text nodes from an authored
		// constraint document.
		return nil
	}

	if dom.TagName(node) != dom.TagName(shadowNode) {
		return nil
	}

	pattern, patternPresent := dom.Attr(shadowNode, attrShadowID)
	id, idPresent := dom.ID(node)
	if !g.attributeEquals(node, attrShadowID, pattern, patternPresent, id, idPresent) {
		return nil
	}

	for _, attr := range node.Attr {
		if attr.Namespace != "" || !shouldMonitorAttribute(node, attr.Key) {
			continue
		}
		if attr.Key == "id" {
			// Already matched through dtt-id; an authored constraint need
			// not duplicate the pattern in an id slot.
			continue
		}

		pattern, patternPresent = dom.Attr(shadowNode, attr.Key)
		if !g.attributeEquals(node, attr.Key, pattern, patternPresent, attr.Val, true) {
			return nil
		}
	}

	return shadowNode
}

// hasMatchingSubtreeInShadowTree requires, for every element under node, a
// matching shadow element at the corresponding position under shadowParent.
func (g *DOMGuard) hasMatchingSubtreeInShadowTree(node, shadowParent *html.Node) bool {
	if dom.IsFragment(node) {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if !g.hasMatchingSubtreeInShadowTree(child, shadowParent) {
				return false
			}
		}
		return true
	}

	if !dom.IsElement(node) {
		return true
	}

	var shadowNode *html.Node
	for child := shadowParent.FirstChild; child != nil; child = child.NextSibling {
		if shadowNode = g.matchingNode(node, child); shadowNode != nil {
			break
		}
	}
	if shadowNode == nil {
		g.logNoMatchingShadow(node, shadowParent)
		return false
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if !g.hasMatchingSubtreeInShadowTree(child, shadowNode) {
			return false
		}
	}

	return true
}

// hasMatchingNodeInShadowTree searches the whole shadow subtree for a node
// matching the live element, regardless of position.
func (g *DOMGuard) hasMatchingNodeInShadowTree(node, shadowParent *html.Node) bool {
	for child := shadowParent.FirstChild; child != nil; child = child.NextSibling {
		if g.matchingNode(node, child) != nil || g.hasMatchingNodeInShadowTree(node, child) {
			return true
		}
	}

	return false
}

// matchesNodeWhitelistInShadowTree checks an inserted subtree against a
// whitelist shadow: every element under node must match some shadow element
// anywhere beneath the whitelist root.
func (g *DOMGuard) matchesNodeWhitelistInShadowTree(node, shadowParent *html.Node) bool {
	if dom.IsFragment(node) {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if !g.matchesNodeWhitelistInShadowTree(child, shadowParent) {
				return false
			}
		}
		return true
	}

	if !dom.IsElement(node) {
		return true
	}

	if !g.hasMatchingNodeInShadowTree(node, shadowParent) {
		g.logNoMatchingShadow(node, shadowParent)
		return false
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if !g.matchesNodeWhitelistInShadowTree(child, shadowParent) {
			return false
		}
	}

	return true
}

// matchesAttributeWhitelistInShadowTree accepts an attribute change when any
// shadow element under the whitelist root has a pattern in that attribute
// slot matching the new value.
func (g *DOMGuard) matchesAttributeWhitelistInShadowTree(el *html.Node, name, value string, valuePresent bool, shadowParent *html.Node) bool {
	for child := shadowParent.FirstChild; child != nil; child = child.NextSibling {
		if !dom.IsElement(child) {
			continue
		}

		pattern, patternPresent := dom.Attr(child, name)
		if g.attributeEquals(el, name, pattern, patternPresent, value, valuePresent) {
			return true
		}
		if g.matchesAttributeWhitelistInShadowTree(el, name, value, valuePresent, child) {
			return true
		}
	}

	return false
}
