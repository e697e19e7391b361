package guardutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeURLEscapeSequences(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{{
		name: "no_escapes",
		in:   "example.org",
		want: "example.org",
	}, {
		name: "simple",
		in:   "ex%61mple.org",
		want: "example.org",
	}, {
		name: "utf8_bytes",
		in:   "%D0%BF%D1%80%D0%B8",
		want: "при",
	}, {
		name: "malformed_kept",
		in:   "100%zz",
		want: "100%zz",
	}, {
		name: "truncated_escape",
		in:   "abc%4",
		want: "abc%4",
	}, {
		name: "empty",
		in:   "",
		want: "",
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DecodeURLEscapeSequences(tc.in))
		})
	}
}
