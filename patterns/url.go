package patterns

import (
	"net/url"
	"strings"

	"github.com/AdguardTeam/domguard/guardutil"
)

// ParseURL parses a raw URL for constraint comparison. net/url rejects
// percent-encoded ASCII in a host, so a string that fails to parse is parsed
// once more with its escape sequences decoded. It returns nil for strings
// that still do not parse or that have no scheme: a relative reference is
// not a valid constraint subject and, as a subject, is treated as harmless
// by URLEquals.
func ParseURL(raw string) (u *url.URL) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		u, err = url.Parse(guardutil.DecodeURLEscapeSequences(raw))
	}
	if err != nil || u.Scheme == "" {
		return nil
	}

	return u
}

// URLEquals - compares a subject URL against a single constraint URL. An
// invalid subject matches unconditionally since it cannot navigate anywhere
// meaningful. Otherwise the schemes and ports must be equal and the
// constraint host, percent-decoded, must match the decoded subject host as a
// pattern.
func URLEquals(constraint, subject *url.URL) bool {
	if subject == nil {
		return true
	}
	if constraint == nil {
		return false
	}

	return subject.Scheme == constraint.Scheme &&
		StringEquals(
			guardutil.DecodeURLEscapeSequences(constraint.Hostname()),
			guardutil.DecodeURLEscapeSequences(subject.Hostname()),
		) &&
		subject.Port() == constraint.Port()
}

// URLListEquals - compares a subject URL against a list of constraint URLs
// recorded for the same attribute. The list form is what gives recorded
// origins a same-origin-like interpretation: any recorded scheme/host/port
// triple admits the subject. javascript: constraints compare their decoded
// script contents instead.
func URLListEquals(constraints []*url.URL, subject *url.URL) bool {
	if subject == nil {
		return true
	}
	if len(constraints) == 0 {
		return false
	}

	for _, c := range constraints {
		if c == nil || subject.Scheme != c.Scheme {
			continue
		}

		if subject.Scheme == "javascript" {
			if ScriptEquals(
				guardutil.DecodeURLEscapeSequences(opaqueContent(c)),
				guardutil.DecodeURLEscapeSequences(opaqueContent(subject)),
			) {
				return true
			}
		} else if subject.Port() == c.Port() &&
			StringEquals(
				guardutil.DecodeURLEscapeSequences(c.Hostname()),
				guardutil.DecodeURLEscapeSequences(subject.Hostname()),
			) {
			return true
		}
	}

	return false
}

// opaqueContent reconstructs everything after the scheme separator of a
// non-hierarchical URL such as javascript:.
func opaqueContent(u *url.URL) string {
	var sb strings.Builder
	sb.WriteString(u.Opaque)
	if u.RawQuery != "" {
		sb.WriteByte('?')
		sb.WriteString(u.RawQuery)
	}
	if u.Fragment != "" {
		sb.WriteByte('#')
		sb.WriteString(u.Fragment)
	}

	return sb.String()
}
