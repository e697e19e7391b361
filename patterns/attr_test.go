package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttributeEqualsPlain(t *testing.T) {
	testCases := []struct {
		name           string
		pattern        string
		patternPresent bool
		value          string
		valuePresent   bool
		want           bool
	}{{
		name:           "single_alternative",
		pattern:        "left",
		patternPresent: true,
		value:          "left",
		valuePresent:   true,
		want:           true,
	}, {
		name:           "second_alternative",
		pattern:        "left|right",
		patternPresent: true,
		value:          "right",
		valuePresent:   true,
		want:           true,
	}, {
		name:           "no_alternative",
		pattern:        "left|right",
		patternPresent: true,
		value:          "middle",
		valuePresent:   true,
		want:           false,
	}, {
		name:           "escaped_separator_in_value",
		pattern:        `a\|b`,
		patternPresent: true,
		value:          "a|b",
		valuePresent:   true,
		want:           true,
	}, {
		name:           "absent_matches_absent",
		patternPresent: false,
		valuePresent:   false,
		want:           true,
	}, {
		name:           "absent_rejects_empty",
		patternPresent: false,
		value:          "",
		valuePresent:   true,
		want:           false,
	}, {
		name:           "empty_rejects_absent",
		pattern:        "",
		patternPresent: true,
		valuePresent:   false,
		want:           false,
	}, {
		name:           "empty_matches_empty",
		pattern:        "",
		patternPresent: true,
		value:          "",
		valuePresent:   true,
		want:           true,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := AttributeEquals(ClassPlain, "e", tc.pattern, tc.patternPresent, tc.value, tc.valuePresent)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAttributeEqualsScript(t *testing.T) {
	pattern := "f(1)"

	assert.True(t, AttributeEquals(ClassScript, "e", pattern, true, "f ( 1 )", true))
	assert.True(t, AttributeEquals(ClassScript, "e", pattern, true, "f(2)", true))
	assert.False(t, AttributeEquals(ClassScript, "e", pattern, true, "g(1)", true))
	assert.False(t, AttributeEquals(ClassScript, "e", pattern, true, "f(1, 2)", true))
}

func TestAttributeEqualsURLList(t *testing.T) {
	// Two recorded origins; the whole list is evaluated together, so any
	// recorded origin admits the subject.
	pattern := "https://x.test/|https://y.test/"

	assert.True(t, AttributeEquals(ClassURL, "e", pattern, true, "https://x.test/other", true))
	assert.True(t, AttributeEquals(ClassURL, "e", pattern, true, "https://y.test/", true))
	assert.False(t, AttributeEquals(ClassURL, "e", pattern, true, "https://z.test/", true))

	// Invalid subject URLs are harmless.
	assert.True(t, AttributeEquals(ClassURL, "e", pattern, true, "not a url", true))
}

func TestAttributeEqualsID(t *testing.T) {
	assert.True(t, AttributeEquals(ClassID, "e", "item-*", true, "item-42", true))
	assert.False(t, AttributeEquals(ClassID, "e", "item-*", true, "other", true))
	assert.True(t, AttributeEquals(ClassID, "e app-", "app-a", true, "app-b", true))
}

func TestMergeAttributeValue(t *testing.T) {
	// A value that already matches leaves the pattern untouched.
	merged := MergeAttributeValue(ClassPlain, "r", "left|right", true, "right", true)
	assert.Equal(t, "left|right", merged)

	// A new value is appended escaped.
	merged = MergeAttributeValue(ClassPlain, "r", "left", true, "mid|dle", true)
	assert.Equal(t, `left|mid\|dle`, merged)

	// Merging into an absent pattern records the value as the second,
	// empty-prefixed alternative.
	merged = MergeAttributeValue(ClassPlain, "r", "", false, "v", true)
	assert.Equal(t, "|v", merged)

	// URL-class merge is a no-op for a same-origin value.
	merged = MergeAttributeValue(ClassURL, "r", "https://cdn.test/a.png", true, "https://cdn.test/b.png", true)
	assert.Equal(t, "https://cdn.test/a.png", merged)
}

func TestMergeIdempotent(t *testing.T) {
	pattern := "a"
	for _, v := range []string{"b", "c|d", `e\f`} {
		pattern = MergeAttributeValue(ClassPlain, "r", pattern, true, v, true)
		again := MergeAttributeValue(ClassPlain, "r", pattern, true, v, true)
		assert.Equal(t, pattern, again, "value: %q", v)
	}
}
