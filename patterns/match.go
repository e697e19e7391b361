// Package patterns implements the wildcard/alternation pattern language used
// by the DOMGuard shadow tree, together with the semantic comparison rules
// for identifiers, URLs and script fragments.
//
// A pattern matches a subject string anchored at both ends. `*` matches any
// run of characters, `?` matches exactly one, `\` escapes the next character.
// A stored attribute pattern is a list of alternatives separated by
// unescaped `|`.
package patterns

import "strings"

const (
	escapeCharacter      = '\\'
	alternativeSeparator = '|'
)

// StringEquals - checks whether the wildcard pattern matches the subject.
//
// The matcher is iterative: on a `*` it records a backtrack point and, on a
// later mismatch, re-extends the star by one character. This keeps the worst
// case close to O(len(pattern) * len(subject)) where the natural recursive
// formulation explodes on adversarial inputs.
func StringEquals(pattern, subject string) bool {
	p := []rune(pattern)
	s := []rune(subject)

	i, j := 0, 0
	starIdx, starMatch := -1, 0

	for j < len(s) {
		if i < len(p) {
			switch c := p[i]; {
			case c == escapeCharacter && i+1 < len(p):
				if p[i+1] == s[j] {
					i += 2
					j++
					continue
				}
			case c == '*':
				starIdx = i
				starMatch = j
				i++
				continue
			case c == '?' || c == s[j]:
				i++
				j++
				continue
			}
		}

		if starIdx < 0 {
			return false
		}

		// Re-extend the last star by one subject character.
		i = starIdx + 1
		starMatch++
		j = starMatch
	}

	// The subject is exhausted. The pattern matches if nothing remains, if a
	// single trailing `*` remains, or if only a dangling escape remains.
	if i == len(p) {
		return true
	}

	return i == len(p)-1 && (p[i] == '*' || p[i] == escapeCharacter)
}

// EscapeAndAddToAttributeValue appends value as another `|`-alternative to the
// current pattern, escaping the separator, the escape character and `*`.
// Note that `?` is deliberately left unescaped, so a recorded value
// containing `?` keeps its single-character wildcard meaning.
func EscapeAndAddToAttributeValue(current, value string) string {
	var sb strings.Builder
	sb.Grow(len(current) + len(value) + 1)
	sb.WriteString(current)
	sb.WriteByte(alternativeSeparator)
	for i := 0; i < len(value); i++ {
		switch c := value[i]; c {
		case escapeCharacter, alternativeSeparator, '*':
			sb.WriteByte(escapeCharacter)
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}

	return sb.String()
}

// SplitAlternatives splits a stored pattern on unescaped `|` separators. The
// escape in front of a `|` is removed; every other escape sequence is kept,
// so each part, used as a StringEquals pattern, still matches an escaped `*`
// or `\` literally. All parts are preserved, including empty ones; an empty
// pattern yields a single empty part.
func SplitAlternatives(pattern string) (parts []string) {
	var sb strings.Builder
	escaped := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case escaped:
			if c != alternativeSeparator {
				sb.WriteByte(escapeCharacter)
			}
			sb.WriteByte(c)
			escaped = false
		case c == escapeCharacter:
			escaped = true
		case c == alternativeSeparator:
			parts = append(parts, sb.String())
			sb.Reset()
		default:
			sb.WriteByte(c)
		}
	}

	return append(parts, sb.String())
}

// IDEquals - compares an id against a stored id pattern. When the constraint
// mode string carries a prefix whitelist (everything after the first
// character, split on spaces), two ids sharing any listed prefix are
// considered equal without a pattern match.
func IDEquals(pattern, subject, mode string) bool {
	if len(mode) > 1 {
		for _, prefix := range strings.Fields(mode[1:]) {
			if strings.HasPrefix(pattern, prefix) && strings.HasPrefix(subject, prefix) {
				return true
			}
		}
	}

	return StringEquals(pattern, subject)
}
