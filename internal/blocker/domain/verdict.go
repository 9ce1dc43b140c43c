package domain

import "fmt"

// MatchKind identifies which list produced a classification outcome.
type MatchKind uint8

const (
	// MatchNone means no rule matched; the request is allowed by default.
	MatchNone MatchKind = iota
	// MatchWhitelist means the hostname is exempted by the whitelist.
	MatchWhitelist
	// MatchTracker means the request URL contains a built-in tracker fragment.
	MatchTracker
	// MatchFeed means the hostname matched a rule loaded from a feed file.
	MatchFeed
	// MatchBlacklist means the hostname is on the user blacklist.
	MatchBlacklist
)

// String returns a stable string representation of the match kind.
func (k MatchKind) String() string {
	switch k {
	case MatchNone:
		return "none"
	case MatchWhitelist:
		return "whitelist"
	case MatchTracker:
		return "tracker"
	case MatchFeed:
		return "feed"
	case MatchBlacklist:
		return "blacklist"
	default:
		return fmt.Sprintf("MatchKind(%d)", k)
	}
}

// Verdict represents the outcome of classifying a single outbound request.
// Pure value type, no external dependencies.
type Verdict struct {
	Blocked bool      // true if the request must be cancelled
	Rule    string    // the fragment or domain that matched (empty when none)
	Kind    MatchKind // which list produced the outcome
}

// IsBlocked is a convenience accessor.
func (v Verdict) IsBlocked() bool { return v.Blocked }

// Allowed returns the default allow verdict with no matched rule.
func Allowed() Verdict { return Verdict{Blocked: false, Kind: MatchNone} }

// AllowedBy returns an allow verdict attributed to the given kind and rule.
func AllowedBy(kind MatchKind, rule string) Verdict {
	return Verdict{Blocked: false, Rule: rule, Kind: kind}
}

// BlockedBy returns a block verdict attributed to the given kind and rule.
func BlockedBy(kind MatchKind, rule string) Verdict {
	return Verdict{Blocked: true, Rule: rule, Kind: kind}
}
