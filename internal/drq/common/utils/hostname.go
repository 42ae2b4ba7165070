package utils

import (
	"strings"

	"golang.org/x/net/idna"
)

// CanonicalHostname returns a hostname in the form used as a pattern key:
// - Trimmed and lowercased
// - Port suffix (":443") removed
// - No trailing dot
// - Leading "www." removed
// - Internationalized labels converted to their ASCII (punycode) form
func CanonicalHostname(raw string) string {
	name := StripPort(strings.TrimSpace(raw))
	name = strings.ToLower(name)
	for strings.HasSuffix(name, ".") {
		name = strings.TrimSuffix(name, ".")
	}
	name = strings.TrimPrefix(name, "www.")
	if name == "" {
		return ""
	}
	ascii, err := idna.ToASCII(name)
	if err != nil {
		return name
	}
	return ascii
}

// StripPort removes everything from the first ':' on, if the colon is not the first byte.
func StripPort(name string) string {
	if i := strings.IndexByte(name, ':'); i > 0 {
		return name[:i]
	}
	return name
}
