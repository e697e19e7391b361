package patterns

import "net/url"

// AttrClass is the semantic class of a monitored attribute.
type AttrClass int

// Attribute semantic classes.
const (
	// ClassPlain compares alternatives with StringEquals.
	ClassPlain AttrClass = iota

	// ClassID compares alternatives with IDEquals, honoring the id-prefix
	// whitelist carried by the constraint mode string.
	ClassID

	// ClassScript compares alternatives as script fragments.
	ClassScript

	// ClassURL collects all alternatives into a URL constraint list and
	// evaluates them together.
	ClassURL
)

// AttributeEquals - checks whether an attribute value matches a stored
// shadow pattern.
//
// The pattern is a `|`-separated list of escaped alternatives; each
// alternative is evaluated with the predicate of the attribute's semantic
// class. URL alternatives are not evaluated one by one: they accumulate into
// a constraint list compared once, which makes every recorded origin an
// acceptable destination for the subject.
//
// An absent pattern only matches an absent value, and vice versa; absence
// and emptiness are distinct.
func AttributeEquals(class AttrClass, mode, pattern string, patternPresent bool, value string, valuePresent bool) bool {
	if !patternPresent {
		return !valuePresent
	}
	if !valuePresent {
		return false
	}

	var urlConstraints []*url.URL

	for _, alternative := range SplitAlternatives(pattern) {
		switch class {
		case ClassID:
			if IDEquals(alternative, value, mode) {
				return true
			}
		case ClassScript:
			if ScriptEquals(alternative, value) {
				return true
			}
		case ClassURL:
			urlConstraints = append(urlConstraints, ParseURL(alternative))
		default:
			if StringEquals(alternative, value) {
				return true
			}
		}
	}

	if class == ClassURL {
		return URLListEquals(urlConstraints, ParseURL(value))
	}

	return false
}

// MergeAttributeValue merges a newly observed value into the stored pattern,
// returning the pattern unchanged when the value already matches. Otherwise
// the escaped value is appended as a new alternative: record-mode patterns
// only ever grow.
func MergeAttributeValue(class AttrClass, mode, pattern string, patternPresent bool, value string, valuePresent bool) string {
	if AttributeEquals(class, mode, pattern, patternPresent, value, valuePresent) {
		return pattern
	}

	return EscapeAndAddToAttributeValue(pattern, value)
}
