package classifier

import "github.com/VIJAY-mark/blockd/internal/blocker/domain"

// Lists is the in-memory mirror of the user lists and the blocked counter.
// Lookups must be non-blocking; they run on the request-intercept path.
type Lists interface {
	InWhitelist(host string) bool
	InBlacklist(host string) bool
	IncrementBlocked() uint64
}

// Trackers is the tracker domain set: built-in URL fragments plus feed rules.
type Trackers interface {
	MatchFragment(rawURL string) (string, bool)
	MatchHost(host string) (domain.TrackerRule, bool)
}

// Badge receives the visible counter text and background color on every block.
type Badge interface {
	Update(text, color string)
}

// CounterWriter persists the blocked counter. Writes happen off the request
// path; a failed write is logged and dropped, never retried.
type CounterWriter interface {
	SetBlockedCount(n uint64) error
}

// VerdictCache memoizes classification outcomes by raw URL.
type VerdictCache interface {
	Get(rawURL string) (domain.Verdict, bool)
	Put(rawURL string, v domain.Verdict)
	Purge()
}
