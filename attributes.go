package domguard

import (
	"strings"

	"golang.org/x/exp/slices"
	"golang.org/x/net/html"

	"github.com/AdguardTeam/domguard/dom"
	"github.com/AdguardTeam/domguard/patterns"
)

// internalAttrPrefix marks the shadow-tree bookkeeping attributes. They are
// never monitored or merged like regular attributes.
const internalAttrPrefix = "dtt-"

// urlAttributes lists, per tag, the attributes whose values are URLs the
// element can load or navigate to.
var urlAttributes = map[string][]string{
	"A":          {"href", "ping"},
	"AREA":       {"href"},
	"AUDIO":      {"src"},
	"BASE":       {"href"},
	"BLOCKQUOTE": {"cite"},
	"BUTTON":     {"formaction"},
	"DEL":        {"cite"},
	"EMBED":      {"src"},
	"FORM":       {"action"},
	"FRAME":      {"src", "longdesc"},
	"IFRAME":     {"src", "longdesc"},
	"IMG":        {"src", "longdesc", "srcset"},
	"INPUT":      {"src", "formaction"},
	"INS":        {"cite"},
	"LINK":       {"href"},
	"OBJECT":     {"data", "codebase"},
	"Q":          {"cite"},
	"SCRIPT":     {"src"},
	"SOURCE":     {"src", "srcset"},
	"TRACK":      {"src"},
	"VIDEO":      {"src", "poster"},
	"WEBVIEW":    {"src"},
}

// trustedTypeAttributes lists the attributes that accept trusted-type
// payloads: markup or script the element will interpret.
var trustedTypeAttributes = map[string][]string{
	"SCRIPT": {"src", "text"},
	"IFRAME": {"srcdoc"},
	"OBJECT": {"data", "codebase"},
	"EMBED":  {"src"},
}

// htmlContentAttributes lists the attributes carrying serialized HTML.
var htmlContentAttributes = map[string][]string{
	"IFRAME": {"srcdoc"},
}

// svgAnimationAttributes lists, per SVG animation tag, the attributes that
// can retarget an animated value to a javascript: URL.
var svgAnimationAttributes = map[string][]string{
	"ANIMATE":          {"from", "to", "values", "by"},
	"ANIMATEMOTION":    {"from", "to", "values", "by"},
	"ANIMATETRANSFORM": {"from", "to", "values", "by"},
	"SET":              {"to"},
}

func tableContains(table map[string][]string, el *html.Node, name string) bool {
	return slices.Contains(table[dom.TagName(el)], name)
}

// isScriptAttribute reports whether the attribute holds an event handler:
// an un-namespaced name starting with "on".
func isScriptAttribute(_ *html.Node, name string) bool {
	return strings.HasPrefix(name, "on")
}

// isURLAttribute reports whether the attribute holds a URL for this element.
func isURLAttribute(el *html.Node, name string) bool {
	return tableContains(urlAttributes, el, name)
}

// shouldMonitorAttribute decides whether DOMGuard tracks changes of the
// attribute on this element.
func shouldMonitorAttribute(el *html.Node, name string) bool {
	switch {
	case strings.HasPrefix(name, internalAttrPrefix):
		return false
	case name == "id":
		// This changes an element's identifier.
		return true
	case name == "name":
		return true
	case tableContains(trustedTypeAttributes, el, name):
		return true
	case isScriptAttribute(el, name):
		return true
	case isURLAttribute(el, name):
		return true
	case tableContains(htmlContentAttributes, el, name):
		return true
	case tableContains(svgAnimationAttributes, el, name):
		return true
	case dom.TagName(el) == "FORM":
		return name == "target" || name == "method"
	}

	return false
}

// attributeClass maps an attribute to its semantic comparison class.
func attributeClass(el *html.Node, name string) patterns.AttrClass {
	switch {
	case name == "id" || name == "dtt-id":
		return patterns.ClassID
	case isScriptAttribute(el, name):
		return patterns.ClassScript
	case isURLAttribute(el, name):
		return patterns.ClassURL
	}

	return patterns.ClassPlain
}
