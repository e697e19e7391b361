package domguard

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/AdguardTeam/domguard/dom"
)

// newTestFrame builds a frame over a minimal live document with an attached
// engine in record mode.
func newTestFrame(t *testing.T) (g *DOMGuard, f *dom.Frame) {
	t.Helper()

	d, err := dom.ParseDocument(`<html><head></head><body></body></html>`)
	require.NoError(t, err)

	f = dom.NewFrame(d)
	g = New(f)
	g.FrameAttachedToParent()
	t.Cleanup(g.Shutdown)

	return g, f
}

// findTag returns the first element with the given tag under n, in tree
// order.
func findTag(n *html.Node, tag string) *html.Node {
	if dom.IsElement(n) && n.Data == tag {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findTag(child, tag); found != nil {
			return found
		}
	}

	return nil
}

func bodyOf(t *testing.T, f *dom.Frame) (body *html.Node) {
	t.Helper()

	body = findTag(f.Document().Node, "body")
	require.NotNil(t, body)

	return body
}

func mustFragment(t *testing.T, markup string) (frag *html.Node) {
	t.Helper()

	frag, err := dom.ParseFragment(markup)
	require.NoError(t, err)

	return frag
}

// insert runs the insertion hook for markup under parent and, when allowed,
// attaches the parsed nodes the way the host would.
func insert(t *testing.T, g *DOMGuard, parent *html.Node, markup string) bool {
	t.Helper()

	frag := mustFragment(t, markup)
	if !g.WillInsertDOMNode(parent, frag, nil) {
		return false
	}

	for frag.FirstChild != nil {
		n := frag.FirstChild
		frag.RemoveChild(n)
		parent.AppendChild(n)
	}

	return true
}

// checkInsert runs the insertion hook without attaching anything.
func checkInsert(t *testing.T, g *DOMGuard, parent *html.Node, markup string) bool {
	t.Helper()

	return g.WillInsertDOMNode(parent, mustFragment(t, markup), nil)
}

func TestLifecycle(t *testing.T) {
	d, err := dom.ParseDocument(`<html><body></body></html>`)
	require.NoError(t, err)
	f := dom.NewFrame(d)

	g := New(f)
	assert.True(t, f.ProbeSink().Has(g))

	g.FrameAttachedToParent()
	assert.Equal(t, "r", f.DOMConstraintMode())
	assert.Nil(t, f.DOMConstraint().Node.FirstChild)

	g.Shutdown()
	assert.False(t, f.ProbeSink().Has(g))

	// Shutdown is idempotent and a shut-down engine passes everything.
	g.Shutdown()
	assert.True(t, g.WillInsertDOMNode(d.Node, dom.CreateElement("div"), nil))
	assert.True(t, g.WillModifyDOMAttr(dom.CreateElement("div"), "id", "", "x", true))
}

func TestRecordThenEnforceBasic(t *testing.T) {
	g, f := newTestFrame(t)
	body := bodyOf(t, f)

	require.True(t, insert(t, g, body, `<div id="a"><span>x</span></div>`))

	f.SetDOMConstraintMode("e")

	assert.True(t, checkInsert(t, g, body, `<div id="a"><span>x</span></div>`))
	assert.False(t, checkInsert(t, g, body, `<div id="b"><span>x</span></div>`))
}

func TestPatternAlternation(t *testing.T) {
	g, f := newTestFrame(t)
	body := bodyOf(t, f)

	require.True(t, insert(t, g, body, `<a href="https://x.test/">x</a>`))
	require.True(t, insert(t, g, body, `<a href="https://y.test/">y</a>`))

	f.SetDOMConstraintMode("e")

	assert.True(t, checkInsert(t, g, body, `<a href="https://x.test/">z</a>`))
	assert.False(t, checkInsert(t, g, body, `<a href="https://z.test/">z</a>`))
}

func TestWildcardIDFromConstraintHTML(t *testing.T) {
	g, f := newTestFrame(t)
	body := bodyOf(t, f)

	require.NoError(t, f.SetDOMConstraintHTML(`<div dtt-id="item-*"></div>`))
	f.SetDOMConstraintMode("e")

	assert.True(t, checkInsert(t, g, body, `<div id="item-42"></div>`))
	assert.False(t, checkInsert(t, g, body, `<div id="other"></div>`))
}

func TestScriptEquivalence(t *testing.T) {
	g, f := newTestFrame(t)
	body := bodyOf(t, f)

	require.True(t, insert(t, g, body, `<a onclick="f(1)">go</a>`))

	f.SetDOMConstraintMode("e")

	assert.True(t, checkInsert(t, g, body, `<a onclick="f ( 1 )">go</a>`))
	assert.False(t, checkInsert(t, g, body, `<a onclick="g(1)">go</a>`))
}

func TestURLOriginGrouping(t *testing.T) {
	g, f := newTestFrame(t)
	body := bodyOf(t, f)

	require.True(t, insert(t, g, body, `<img src="https://cdn.test/a.png">`))
	require.True(t, insert(t, g, body, `<img src="https://cdn.test/b.png">`))

	f.SetDOMConstraintMode("e")

	// Same protocol, host and port: the recorded origin admits new paths.
	assert.True(t, checkInsert(t, g, body, `<img src="https://cdn.test/c.png">`))
	assert.False(t, checkInsert(t, g, body, `<img src="https://evil.test/c.png">`))
}

func TestAttributeModification(t *testing.T) {
	g, f := newTestFrame(t)
	body := bodyOf(t, f)

	require.True(t, insert(t, g, body, `<div id="a"></div>`))
	div := findTag(f.Document().Node, "div")
	require.NotNil(t, div)

	require.True(t, g.WillModifyDOMAttr(div, "name", "", "menu", true))

	f.SetDOMConstraintMode("e")

	assert.True(t, g.WillModifyDOMAttr(div, "name", "", "menu", true))
	assert.False(t, g.WillModifyDOMAttr(div, "name", "", "evil", true))

	// Unmonitored attributes pass through.
	assert.True(t, g.WillModifyDOMAttr(div, "data-x", "", "anything", true))
}

func TestNodeWhitelist(t *testing.T) {
	g, f := newTestFrame(t)
	body := bodyOf(t, f)

	require.NoError(t, f.SetDOMConstraintHTML(
		`<div dtt-id="trusted" dtt-whitelist=""><span dtt-id="w" name="menu"></span></div>`,
	))

	// The live region exists with a nested container the shadow tree has
	// never seen at that position.
	section := dom.CreateElement("section")
	trusted := dom.CreateElement("div")
	dom.SetAttr(trusted, "id", "trusted")
	trusted.AppendChild(section)
	body.AppendChild(trusted)

	f.SetDOMConstraintMode("e")

	// Anywhere-beneath matching: the span shadow is a child of the
	// whitelist root, the live span is two levels deeper.
	assert.True(t, checkInsert(t, g, section, `<span id="w"></span>`))
	assert.False(t, checkInsert(t, g, section, `<em id="w"></em>`))

	// Attribute whitelist: any shadow in the subtree with a matching
	// pattern in that slot accepts the change.
	span := dom.CreateElement("span")
	dom.SetAttr(span, "id", "w")
	section.AppendChild(span)

	assert.True(t, g.WillModifyDOMAttr(span, "name", "", "menu", true))
	assert.False(t, g.WillModifyDOMAttr(span, "name", "", "evil", true))
}

func TestEarlyExits(t *testing.T) {
	t.Run("no_window", func(t *testing.T) {
		g, f := newTestFrame(t)
		body := bodyOf(t, f)
		f.SetDOMConstraintMode("e")
		f.Document().SetHasWindow(false)

		assert.True(t, checkInsert(t, g, body, `<div id="anything"></div>`))
	})

	t.Run("parsing_flushes_pending", func(t *testing.T) {
		g, f := newTestFrame(t)
		body := bodyOf(t, f)
		d := f.Document()
		f.SetDOMConstraintMode("e")
		d.SetParsing(true)

		el := dom.CreateElement("div")
		d.QueuePendingAttr(el, "id", "late")

		assert.True(t, g.WillInsertDOMNode(body, el, nil))
		id, ok := dom.ID(el)
		assert.True(t, ok)
		assert.Equal(t, "late", id)
	})

	t.Run("user_agent_shadow_root", func(t *testing.T) {
		g, f := newTestFrame(t)
		d := f.Document()
		f.SetDOMConstraintMode("e")

		host := bodyOf(t, f)
		root := d.AttachShadow(host, true)

		assert.True(t, g.WillInsertDOMNode(root, dom.CreateElement("div"), nil))
		assert.True(t, g.WillModifyDOMAttr(root, "id", "", "x", true))
	})

	t.Run("detached_parent", func(t *testing.T) {
		g, f := newTestFrame(t)
		f.SetDOMConstraintMode("e")

		detached := dom.CreateElement("div")
		assert.True(t, g.WillInsertDOMNode(detached, dom.CreateElement("span"), nil))
	})
}

func TestRemovalAlwaysAllowed(t *testing.T) {
	g, f := newTestFrame(t)
	body := bodyOf(t, f)

	require.True(t, insert(t, g, body, `<div id="a"></div>`))
	f.SetDOMConstraintMode("e")

	div := findTag(f.Document().Node, "div")
	assert.True(t, g.WillRemoveDOMNode(div))
}

func TestRecordMonotonicity(t *testing.T) {
	g, f := newTestFrame(t)
	body := bodyOf(t, f)

	require.True(t, insert(t, g, body, `<a href="https://x.test/">x</a>`))

	shadowA := findTag(f.DOMConstraint().Node, "a")
	require.NotNil(t, shadowA)
	previous, ok := dom.Attr(shadowA, "href")
	require.True(t, ok)

	for i := 0; i < 4; i++ {
		require.True(t, insert(t, g, body, fmt.Sprintf(`<a href="https://host%d.test/">x</a>`, i)))

		current, _ := dom.Attr(shadowA, "href")
		assert.True(t, strings.HasPrefix(current, previous), "pattern %q lost prefix %q", current, previous)
		previous = current
	}
}

func TestRecordThenEnforceSoundness(t *testing.T) {
	g, f := newTestFrame(t)
	body := bodyOf(t, f)

	markups := []string{
		`<div id="nav"><a href="https://x.test/">x</a></div>`,
		`<div id="nav"><a href="https://y.test/" onclick="go(2)">y</a></div>`,
		`<p>text</p>`,
	}

	for _, m := range markups {
		require.True(t, insert(t, g, body, m))
	}
	div := findTag(f.Document().Node, "div")
	require.True(t, g.WillModifyDOMAttr(div, "name", "", "menu", true))

	f.SetDOMConstraintMode("e")

	for _, m := range markups {
		assert.True(t, checkInsert(t, g, body, m), "markup: %s", m)
	}
	assert.True(t, g.WillModifyDOMAttr(div, "name", "", "menu", true))
}

func TestEnforceWithoutRecordDenies(t *testing.T) {
	g, f := newTestFrame(t)
	body := bodyOf(t, f)

	f.SetDOMConstraintMode("e")

	// Empty shadow tree: nothing is accounted for.
	assert.False(t, checkInsert(t, g, body, `<div></div>`))
}

func TestDanglingMark(t *testing.T) {
	g, f := newTestFrame(t)

	htmlEl := findTag(f.Document().Node, "html")
	require.NotNil(t, htmlEl)

	// A non-HEAD/BODY child of HTML is marked dangling in the shadow.
	require.True(t, insert(t, g, htmlEl, `<template id="tpl"></template>`))

	shadowTemplate := findTag(f.DOMConstraint().Node, "template")
	require.NotNil(t, shadowTemplate)
	_, ok := dom.Attr(shadowTemplate, "dtt-dangling")
	assert.True(t, ok)

	shadowBody := findTag(f.DOMConstraint().Node, "body")
	if shadowBody != nil {
		_, ok = dom.Attr(shadowBody, "dtt-dangling")
		assert.False(t, ok)
	}
}
