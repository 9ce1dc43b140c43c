package utils

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// CanonicalHostname returns a hostname in canonical form:
// - Lowercased
// - Trimmed of surrounding whitespace
// - No trailing dot because it doesn't add any runtime benefit, only legacy baggage.
// - Unicode labels converted to their ASCII (punycode) form
func CanonicalHostname(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	// remove all trailing dots
	for strings.HasSuffix(name, ".") {
		name = strings.TrimSuffix(name, ".")
	}
	// best-effort punycode conversion; keep the lowercased input on failure
	if ascii, err := idna.Lookup.ToASCII(name); err == nil {
		name = ascii
	}
	return name
}

// HostnameFromURL extracts the hostname from a raw request URL.
// Returns an error when the URL cannot be parsed or carries no host,
// so callers can apply their malformed-URL policy explicitly.
func HostnameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse request url: %w", err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("request url %q has no hostname", rawURL)
	}
	return CanonicalHostname(host), nil
}
