package patterns

import "github.com/AdguardTeam/domguard/jsscanner"

// ScriptEquals - compares two script fragments for lexical equivalence.
//
// Both fragments are tokenized and the token streams are compared
// element-wise until either side reaches a terminal token (EOS or ILLEGAL).
// Whitespace, comments and formatting therefore never affect the outcome.
// Identifier-like tokens also compare their spelling, so renaming a callee
// is not equivalent while reformatting its argument list is.
func ScriptEquals(constraint, subject string) bool {
	cs := jsscanner.New(constraint)
	ss := jsscanner.New(subject)

	for {
		ct := cs.Next()
		st := ss.Next()
		if ct != st {
			return false
		}

		switch ct {
		case jsscanner.Identifier, jsscanner.Keyword, jsscanner.PrivateName:
			if cs.Literal() != ss.Literal() {
				return false
			}
		}

		if ct == jsscanner.EOS || ct == jsscanner.Illegal {
			return true
		}
	}
}
