package domguard

import (
	"github.com/AdguardTeam/golibs/log"
	"golang.org/x/net/html"

	"github.com/AdguardTeam/domguard/cssvalue"
	"github.com/AdguardTeam/domguard/dom"
)

// logNoMatchingShadow records a failed structural match during enforcement.
func (g *DOMGuard) logNoMatchingShadow(node, shadowParent *html.Node) {
	log.Debug(
		"domguard: no matching shadow node for %s under %s",
		dom.Markup(node),
		g.frame.DOMConstraint().NodePath(shadowParent),
	)
}

// outputElementInsertion records a new shadow element.
func (g *DOMGuard) outputElementInsertion(shadowPtr, shadowElement *html.Node) {
	log.Debug(
		"domguard: shadow element %s recorded at %s",
		dom.Markup(shadowElement),
		g.frame.DOMConstraint().NodePath(shadowPtr),
	)
}

// outputAttributeModification records a broadened shadow attribute pattern.
func (g *DOMGuard) outputAttributeModification(shadowElement *html.Node, name, value string) {
	log.Debug(
		"domguard: shadow attribute %s = %q recorded at %s",
		name,
		value,
		g.frame.DOMConstraint().NodePath(shadowElement),
	)
}

// outputPropertyModification records a broadened shadow property pattern.
// Only values that can carry a URL are interesting enough to log.
func (g *DOMGuard) outputPropertyModification(shadowElement *html.Node, id cssvalue.PropertyID, value *cssvalue.Value) {
	if !valueMayContainURL(value) {
		return
	}

	log.Debug(
		"domguard: shadow property %s = %q recorded at %s",
		cssvalue.Get(id).Name,
		value.Text,
		g.frame.DOMConstraint().NodePath(shadowElement),
	)
}

func valueMayContainURL(v *cssvalue.Value) bool {
	if v == nil {
		return false
	}

	switch v.Kind {
	case cssvalue.KindURI, cssvalue.KindImage:
		return true
	case cssvalue.KindList:
		for _, item := range v.Items {
			if valueMayContainURL(item) {
				return true
			}
		}
	}

	return false
}

// logRejectedInsertion names the hook, the match result, the insertion point
// and the rejected subtree.
func (g *DOMGuard) logRejectedInsertion(result matchResult, parent, node *html.Node) {
	log.Info(
		"domguard: InsertDOMNode rejected: match_result=%s, parent=%s, node=%s",
		result,
		g.frame.Document().NodePath(parent),
		dom.Markup(node),
	)
}

// logRejectedAttribute names the hook, the match result, the element path,
// the attribute, the offending value and the allowed pattern.
func (g *DOMGuard) logRejectedAttribute(result matchResult, element *html.Node, name, value, pattern string) {
	log.Info(
		"domguard: ModifyDOMAttr rejected: match_result=%s, element=%s, attribute=%s, value=%q, allowed_values=%q",
		result,
		g.frame.Document().NodePath(element),
		name,
		value,
		pattern,
	)
}

// logRejectedStyle names the hook, the match result, the element path, the
// property, the offending value and the allowed pattern.
func (g *DOMGuard) logRejectedStyle(result matchResult, element *html.Node, id cssvalue.PropertyID, value, pattern string) {
	name := ""
	if id != cssvalue.PropertyInvalid {
		name = cssvalue.Get(id).Name
	}

	log.Info(
		"domguard: SetStyle rejected: match_result=%s, element=%s, property=%s, value=%q, allowed_values=%q",
		result,
		g.frame.Document().NodePath(element),
		name,
		value,
		pattern,
	)
}

// logRejectedStyleWhitelist lists every property the whitelist walk could
// not clear.
func (g *DOMGuard) logRejectedStyleWhitelist(result matchResult, element *html.Node, newStyle *cssvalue.ComputedStyle) {
	for count, id := range g.propertyIDs {
		if !g.propModified[count] {
			continue
		}

		log.Info(
			"domguard: SetStyle rejected: match_result=%s, element=%s, property=%s, value=%q",
			result,
			g.frame.Document().NodePath(element),
			cssvalue.Get(id).Name,
			computedText(newStyle, id),
		)
	}
}
