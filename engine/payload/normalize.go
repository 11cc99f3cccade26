package payload

import (
	"encoding/base64"
	"strings"
)

const dataURIPrefix = "data:"

// Normalize repairs a possibly malformed base64 string and decodes it into
// raw bytes. Captured payloads are routinely whitespace-polluted, truncated
// or inconsistently padded; the goal is to recover as many frames as
// possible instead of rejecting on the first irregularity.
//
// The repair pipeline:
//  1. strip an optional "data:...;base64," URI prefix
//  2. drop every character outside the base64 alphabet
//  3. trim a dangling character while the core length is ≡ 1 (mod 4),
//     which no amount of padding can make valid
//  4. re-pad to exactly a multiple of 4, tolerating inputs that carried
//     correct, missing or excess padding
func Normalize(raw string) ([]byte, error) {
	body := raw
	if strings.HasPrefix(body, dataURIPrefix) {
		_, rest, found := strings.Cut(body, ",")
		if !found {
			return nil, &MalformedPayloadError{Reason: "data URI without payload separator"}
		}
		body = rest
	}
	cleaned := stripNonAlphabet(body)
	core := strings.TrimRight(cleaned, "=")
	for len(core) > 0 && len(core)%4 == 1 {
		core = core[:len(core)-1]
	}
	// Re-pad to exactly the required amount. Any padding the input carried
	// beyond that is discarded: a lenient decoder would shrug it off, but
	// the strict one rejects strings whose length is not a multiple of 4.
	padding := 0
	if rem := len(core) % 4; rem != 0 {
		padding = 4 - rem
	}
	decoded, err := base64.StdEncoding.DecodeString(core + strings.Repeat("=", padding))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return decoded, nil
}

// stripNonAlphabet removes every character outside [A-Za-z0-9+/=].
func stripNonAlphabet(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z',
			c >= 'a' && c <= 'z',
			c >= '0' && c <= '9',
			c == '+', c == '/', c == '=':
			b.WriteByte(c)
		}
	}
	return b.String()
}
