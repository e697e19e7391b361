package domguard

import (
	"golang.org/x/net/html"

	"github.com/AdguardTeam/domguard/cssvalue"
	"github.com/AdguardTeam/domguard/dom"
	"github.com/AdguardTeam/domguard/patterns"
)

// shadowStyleAttr returns the shadow attribute name storing the pattern for
// a property: dtt-s-<property-name>.
func shadowStyleAttr(id cssvalue.PropertyID) string {
	return shadowStylePrefix + cssvalue.Get(id).Name
}

// computedText returns the textual computed value of a property, "" when
// the style has none.
func computedText(cs *cssvalue.ComputedStyle, id cssvalue.PropertyID) string {
	text, _ := cs.Get(id)

	return text
}

// computedValue parses the computed value of a property. It returns nil when
// the style has no value or the value does not parse; both mean there is no
// value to compare.
func computedValue(cs *cssvalue.ComputedStyle, id cssvalue.PropertyID) *cssvalue.Value {
	text, ok := cs.Get(id)
	if !ok || text == "" {
		return nil
	}

	v, err := cssvalue.Parse(id, text)
	if err != nil {
		return nil
	}

	return v
}

// collectStyleChanges fills the per-call scratch vectors with the monitored
// properties that actually change between the current and the new style. A
// property survives as modified only when both the engine fast path and the
// textual comparison see a difference. keepValues additionally stores the
// parsed new values for the whitelist walk.
func (g *DOMGuard) collectStyleChanges(currentStyle, newStyle *cssvalue.ComputedStyle, keepValues bool) {
	g.modifiedCount = 0

	for count, id := range g.propertyIDs {
		g.propModified[count] = false
		if keepValues {
			g.propValues[count] = computedValue(newStyle, id)
		}

		if currentStyle == nil {
			if computedText(newStyle, id) != "" {
				g.propModified[count] = true
				g.modifiedCount++
			}
			continue
		}

		fast := cssvalue.PropertiesEqual(id, currentStyle, newStyle)
		if fast == 0 {
			g.propModified[count] = true
			g.modifiedCount++
		} else if fast == -1 {
			if computedText(currentStyle, id) != computedText(newStyle, id) {
				g.propModified[count] = true
				g.modifiedCount++
			}
		}
	}
}

// mergeShadowProperty merges a new computed value into the stored dtt-s-*
// pattern. An empty pattern takes the value's text verbatim; afterwards the
// pattern grows by appended alternatives only.
func (g *DOMGuard) mergeShadowProperty(id cssvalue.PropertyID, pattern string, newValue *cssvalue.Value) (merged string, present bool) {
	if pattern == "" {
		if newValue == nil {
			return "", false
		}

		return newValue.Text, true
	}

	if cssvalue.PropertyEquals(id, pattern, true, newValue) {
		return pattern, true
	}

	newText := ""
	if newValue != nil {
		newText = newValue.Text
	}

	return patterns.EscapeAndAddToAttributeValue(pattern, newText), true
}

// matchesPropertyWhitelistInShadowTree tries to clear every still-modified
// property against the descendants of a whitelist shadow. The fast pass
// compares against each descendant's own computed style; the slow pass
// evaluates each descendant's stored dtt-s-* patterns. The walk succeeds as
// soon as no modified property remains.
func (g *DOMGuard) matchesPropertyWhitelistInShadowTree(shadowParent *html.Node, newStyle *cssvalue.ComputedStyle, slowPath bool) bool {
	constraint := g.frame.DOMConstraint()

	for child := shadowParent.FirstChild; child != nil; child = child.NextSibling {
		if !dom.IsElement(child) {
			continue
		}

		for count, id := range g.propertyIDs {
			if !g.propModified[count] {
				continue
			}
			newValue := g.propValues[count]

			if slowPath {
				pattern, present := dom.Attr(child, shadowStyleAttr(id))
				if cssvalue.PropertyEquals(id, pattern, present, newValue) {
					g.propModified[count] = false
					g.modifiedCount--
				}
				continue
			}

			shadowStyle := constraint.ComputedStyle(child)
			if shadowStyle == nil {
				continue
			}
			if cssvalue.PropertiesEqual(id, shadowStyle, newStyle) == 1 {
				g.propModified[count] = false
				g.modifiedCount--
				continue
			}

			newText := ""
			if newValue != nil {
				newText = newValue.Text
			}
			if computedText(shadowStyle, id) == newText {
				g.propModified[count] = false
				g.modifiedCount--
			}
		}

		if g.modifiedCount == 0 || g.matchesPropertyWhitelistInShadowTree(child, newStyle, slowPath) {
			return true
		}
	}

	return false
}
