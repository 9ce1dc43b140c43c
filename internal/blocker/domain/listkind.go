package domain

import (
	"fmt"
	"strings"
)

// ListKind names one of the two user-mutable domain lists.
// The string values double as the persisted store keys.
type ListKind string

const (
	// ListWhitelist holds domains exempt from blocking.
	ListWhitelist ListKind = "whitelist"
	// ListBlacklist holds domains that are always blocked.
	ListBlacklist ListKind = "blacklist"
)

// ParseListKind converts a string into a ListKind.
// Accepts: "whitelist", "blacklist" (case-insensitive).
func ParseListKind(s string) (ListKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "whitelist":
		return ListWhitelist, nil
	case "blacklist":
		return ListBlacklist, nil
	default:
		return "", fmt.Errorf("unsupported ListKind: %q", s)
	}
}

// String returns the persisted store key for the list.
func (k ListKind) String() string { return string(k) }
