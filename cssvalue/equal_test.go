package cssvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseValue(t *testing.T, id PropertyID, text string) (v *Value) {
	t.Helper()

	v, err := Parse(id, text)
	require.NoError(t, err)

	return v
}

func TestValueEqualsNumericPartialOrder(t *testing.T) {
	subject := parseValue(t, PropertyZIndex, "5")

	// A single recorded endpoint on one side leaves the state one-sided.
	state := MatchUnresolved
	ValueEquals(parseValue(t, PropertyZIndex, "10"), subject, &state)
	assert.Equal(t, MatchShadowGreater, state)

	// The opposite endpoint closes the range.
	ValueEquals(parseValue(t, PropertyZIndex, "1"), subject, &state)
	assert.Equal(t, MatchFound, state)

	// Exact equality matches immediately.
	state = MatchUnresolved
	ValueEquals(parseValue(t, PropertyZIndex, "5"), subject, &state)
	assert.Equal(t, MatchFound, state)

	// Two endpoints on the same side never close the range.
	state = MatchUnresolved
	ValueEquals(parseValue(t, PropertyZIndex, "10"), subject, &state)
	ValueEquals(parseValue(t, PropertyZIndex, "20"), subject, &state)
	assert.Equal(t, MatchShadowGreater, state)
}

func TestValueEqualsColor(t *testing.T) {
	state := MatchUnresolved
	ValueEquals(parseValue(t, PropertyColor, "rgb(255, 0, 0)"), parseValue(t, PropertyColor, "rgb(0, 128, 0)"), &state)
	assert.Equal(t, MatchFound, state)

	// A color never matches a non-color.
	state = MatchUnresolved
	ValueEquals(parseValue(t, PropertyColor, "rgb(255, 0, 0)"), parseValue(t, PropertyZIndex, "5"), &state)
	assert.Equal(t, MatchUnresolved, state)
}

func TestValueEqualsURI(t *testing.T) {
	state := MatchUnresolved
	ValueEquals(
		parseValue(t, PropertyBackgroundImage, "url(https://cdn.test/a.png)"),
		parseValue(t, PropertyBackgroundImage, "url(https://cdn.test/b.png)"),
		&state,
	)
	assert.Equal(t, MatchFound, state)

	state = MatchUnresolved
	ValueEquals(
		parseValue(t, PropertyBackgroundImage, "url(https://cdn.test/a.png)"),
		parseValue(t, PropertyBackgroundImage, "url(https://evil.test/a.png)"),
		&state,
	)
	assert.Equal(t, MatchUnresolved, state)
}

func TestValueEqualsList(t *testing.T) {
	shadow := parseValue(t, PropertyFontFamily, "Arial, sans-serif")

	state := MatchUnresolved
	ValueEquals(shadow, parseValue(t, PropertyFontFamily, "Arial, sans-serif"), &state)
	// Keyword members only match textually, which the caller's fast path
	// handles; the structural walk stops at the first unresolved member.
	assert.Equal(t, MatchUnresolved, state)

	state = MatchUnresolved
	ValueEquals(
		parseValue(t, PropertyZIndex, "1 2"),
		parseValue(t, PropertyZIndex, "1 2"),
		&state,
	)
	assert.Equal(t, MatchFound, state)

	state = MatchUnresolved
	ValueEquals(
		parseValue(t, PropertyZIndex, "1 2"),
		parseValue(t, PropertyZIndex, "1 2 3"),
		&state,
	)
	assert.Equal(t, MatchUnresolved, state)
}

func TestPropertyEquals(t *testing.T) {
	testCases := []struct {
		name    string
		id      PropertyID
		pattern string
		present bool
		actual  string
		want    bool
	}{{
		name:    "textual_alternative",
		id:      PropertyColor,
		pattern: "rgb(255, 0, 0)|rgb(0, 0, 255)",
		present: true,
		actual:  "rgb(0, 0, 255)",
		want:    true,
	}, {
		name:    "color_matches_color",
		id:      PropertyColor,
		pattern: "rgb(255, 0, 0)",
		present: true,
		actual:  "rgb(0, 128, 0)",
		want:    true,
	}, {
		name:    "numeric_range_across_alternatives",
		id:      PropertyZIndex,
		pattern: "1|10",
		present: true,
		actual:  "5",
		want:    true,
	}, {
		name:    "numeric_outside_range",
		id:      PropertyZIndex,
		pattern: "1|10",
		present: true,
		actual:  "20",
		want:    false,
	}, {
		name:    "keyword_exact_only",
		id:      PropertyDisplay,
		pattern: "block",
		present: true,
		actual:  "flex",
		want:    false,
	}, {
		name:    "wildcard_text",
		id:      PropertyFontFamily,
		pattern: "Arial*",
		present: true,
		actual:  "Arial, sans-serif",
		want:    true,
	}, {
		name:    "uri_same_origin",
		id:      PropertyBackgroundImage,
		pattern: "url(https://cdn.test/a.png)",
		present: true,
		actual:  "url(https://cdn.test/b.png)",
		want:    true,
	}, {
		name:    "unparsable_alternative_skipped",
		id:      PropertyZIndex,
		pattern: "|5",
		present: true,
		actual:  "5",
		want:    true,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var actual *Value
			if tc.actual != "" {
				actual = parseValue(t, tc.id, tc.actual)
			}
			assert.Equal(t, tc.want, PropertyEquals(tc.id, tc.pattern, tc.present, actual))
		})
	}
}

func TestPropertyEqualsAbsent(t *testing.T) {
	assert.True(t, PropertyEquals(PropertyColor, "", false, nil))
	assert.False(t, PropertyEquals(PropertyColor, "", false, parseValue(t, PropertyColor, "red")))

	// An empty alternative matches an absent value.
	assert.True(t, PropertyEquals(PropertyColor, "", true, nil))
}

func TestPropertiesEqualFastPath(t *testing.T) {
	a := FromDeclarations(map[string]string{"display": "block", "color": "rgb(0, 0, 0)"})
	b := FromDeclarations(map[string]string{"display": "block", "color": "rgb(255, 0, 0)"})

	assert.Equal(t, 1, PropertiesEqual(PropertyDisplay, a, b))
	assert.Equal(t, 0, PropertiesEqual(PropertyColor, a, b))

	// No stored value or a slow property leaves the fast path undecided.
	assert.Equal(t, -1, PropertiesEqual(PropertyZIndex, a, b))
	assert.Equal(t, -1, PropertiesEqual(PropertyBackgroundImage, a, b))
	assert.Equal(t, -1, PropertiesEqual(PropertyDisplay, nil, b))
}
