package proxy

import (
	"testing"

	"github.com/AdguardTeam/golibs/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderAccumulatesConstraints(t *testing.T) {
	r := NewRecorder()
	testutil.CleanupAndRequireSuccess(t, r.Close)

	err := r.RecordHTML("example.org", `<html><body><div id="nav"><a href="https://example.org/a">a</a></div></body></html>`)
	require.NoError(t, err)

	markup, ok := r.ConstraintHTML("example.org")
	require.True(t, ok)
	assert.Contains(t, markup, `dtt-id="nav"`)
	assert.Contains(t, markup, `href="https://example.org/a"`)

	// Another path on the recorded origin merges as a no-op.
	err = r.RecordHTML("example.org", `<html><body><div id="nav"><a href="https://example.org/b">b</a></div></body></html>`)
	require.NoError(t, err)

	markup, _ = r.ConstraintHTML("example.org")
	assert.NotContains(t, markup, "https://example.org/b")

	// A new origin broadens the pattern instead of duplicating structure.
	err = r.RecordHTML("example.org", `<html><body><div id="nav"><a href="https://cdn.example.org/c">c</a></div></body></html>`)
	require.NoError(t, err)

	markup, _ = r.ConstraintHTML("example.org")
	assert.Contains(t, markup, `https://example.org/a|https://cdn.example.org/c`)
}

func TestRecorderPerHostIsolation(t *testing.T) {
	r := NewRecorder()
	testutil.CleanupAndRequireSuccess(t, r.Close)

	require.NoError(t, r.RecordHTML("a.test", `<html><body><p id="a"></p></body></html>`))
	require.NoError(t, r.RecordHTML("b.test", `<html><body><p id="b"></p></body></html>`))

	assert.Equal(t, []string{"a.test", "b.test"}, r.Hosts())

	markupA, _ := r.ConstraintHTML("a.test")
	assert.Contains(t, markupA, `dtt-id="a"`)
	assert.NotContains(t, markupA, `dtt-id="b"`)

	_, ok := r.ConstraintHTML("c.test")
	assert.False(t, ok)
}
