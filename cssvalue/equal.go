package cssvalue

import "github.com/AdguardTeam/domguard/patterns"

// Match states shared across the alternatives of a stored property pattern.
// The two one-sided states implement the numeric partial order: once a
// pattern has alternatives both above and below the subject value, the
// subject is inside the recorded range and matches.
const (
	MatchUnresolved    = 0
	MatchShadowGreater = 1
	MatchShadowLess    = 2
	MatchFound         = -1
)

// ValueEquals structurally compares a stored shadow value against the
// subject value, accumulating into state. Values of different kinds never
// affect the state.
func ValueEquals(shadow, actual *Value, state *int) {
	if shadow.Kind != actual.Kind {
		return
	}

	switch shadow.Kind {
	case KindList:
		if shadow.Sep != actual.Sep || len(shadow.Items) != len(actual.Items) {
			return
		}
		for i := range shadow.Items {
			ValueEquals(shadow.Items[i], actual.Items[i], state)
			if *state != MatchFound {
				return
			}
		}
		*state = MatchFound
	case KindNumeric:
		switch {
		case shadow.Number == actual.Number:
			*state = MatchFound
		case shadow.Number > actual.Number:
			if *state == MatchUnresolved {
				*state = MatchShadowGreater
			} else if *state == MatchShadowLess {
				*state = MatchFound
			}
		default:
			if *state == MatchUnresolved {
				*state = MatchShadowLess
			} else if *state == MatchShadowGreater {
				*state = MatchFound
			}
		}
	case KindURI, KindImage:
		if patterns.URLEquals(shadow.URL, actual.URL) {
			*state = MatchFound
		}
	case KindColor:
		*state = MatchFound
	}
}

// TextValueEquals compares one textual pattern alternative against the
// subject value: first the cheap pattern match over the raw text, then a
// parse and structural comparison. An alternative that fails to parse is
// skipped, leaving the state for the remaining alternatives.
func TextValueEquals(id PropertyID, shadowText string, actual *Value, state *int) {
	if shadowText == "" {
		if actual == nil {
			*state = MatchFound
		}
		return
	}
	if actual == nil {
		*state = MatchUnresolved
		return
	}

	if patterns.StringEquals(shadowText, actual.Text) {
		*state = MatchFound
		return
	}

	shadow, err := Parse(id, shadowText)
	if err != nil {
		return
	}
	ValueEquals(shadow, actual, state)
}

// PropertyEquals checks a subject value against the stored dtt-s-<name>
// pattern of a shadow element. An absent pattern matches only an absent
// value. The match state carries across alternatives, which is what lets a
// pair of recorded numeric endpoints admit every value between them.
func PropertyEquals(id PropertyID, pattern string, patternPresent bool, actual *Value) bool {
	if !patternPresent {
		return actual == nil
	}

	state := MatchUnresolved
	for _, alternative := range patterns.SplitAlternatives(pattern) {
		TextValueEquals(id, alternative, actual, &state)
		if state == MatchFound {
			return true
		}
	}

	return false
}
