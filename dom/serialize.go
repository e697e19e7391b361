package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Markup serializes a node and its subtree, for logging and export. Nodes
// that cannot be rendered come back as an empty string.
func Markup(n *html.Node) string {
	if n == nil {
		return ""
	}

	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}

	return sb.String()
}

// NodePath builds a CSS-selector-like path of a node for rejection logs:
// "html > body > div#item".
func (d *Document) NodePath(n *html.Node) string {
	var parts []string
	for ; n != nil; n = d.ParentOrShadowHost(n) {
		if !IsElement(n) {
			continue
		}
		part := strings.ToLower(TagName(n))
		if id, ok := ID(n); ok && id != "" {
			part += "#" + id
		}
		parts = append(parts, part)
	}

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}

	return strings.Join(parts, " > ")
}
