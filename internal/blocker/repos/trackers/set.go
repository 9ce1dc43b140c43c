package trackers

import (
	"strings"

	"github.com/VIJAY-mark/blockd/internal/blocker/domain"
)

// Set is the tracker domain set: an immutable collection of built-in URL
// fragments plus optional feed rules (exact and suffix hostnames). It is
// built once at startup and never mutated afterwards, so lookups need no
// locking on the request path.
//
// Lookup pipeline for feed rules follows bloom -> maps: the Bloom filter
// gives a definitive negative for the vast majority of hostnames, so large
// feeds cost one filter probe per label instead of map lookups.
type Set struct {
	fragments []string

	exact  map[string]domain.TrackerRule
	suffix map[string]domain.TrackerRule
	bloom  BloomFilter // nil when no feed rules are loaded
}

// New builds a Set from the given fragments with no feed rules.
func New(fragments []string) *Set {
	return NewWithRules(fragments, nil, nil, 0)
}

// NewWithRules builds a Set from fragments and feed rules. When rules are
// present and a factory is provided, a Bloom filter sized for the rule count
// is built as a negative pre-check. fpRate is the target false-positive rate.
func NewWithRules(fragments []string, rules []domain.TrackerRule, factory BloomFactory, fpRate float64) *Set {
	s := &Set{
		fragments: append([]string(nil), fragments...),
		exact:     make(map[string]domain.TrackerRule, len(rules)),
		suffix:    make(map[string]domain.TrackerRule),
	}

	for _, r := range rules {
		switch r.Kind {
		case domain.TrackerRuleExact:
			s.exact[r.Name] = r
		case domain.TrackerRuleSuffix:
			s.suffix[r.Name] = r
		}
	}

	if len(rules) > 0 && factory != nil {
		bf := factory.New(uint64(len(rules)), fpRate)
		for name := range s.exact {
			bf.Add([]byte(name))
		}
		for name := range s.suffix {
			bf.Add([]byte(name))
		}
		s.bloom = bf
	}

	return s
}

// MatchFragment reports whether the raw request URL contains any built-in
// tracker fragment as a substring, returning the first fragment that matched.
func (s *Set) MatchFragment(rawURL string) (string, bool) {
	for _, f := range s.fragments {
		if strings.Contains(rawURL, f) {
			return f, true
		}
	}
	return "", false
}

// MatchHost checks the canonical hostname against the feed rules: an exact
// rule for the hostname itself, or a suffix rule for the hostname or any of
// its parent domains (apex-inclusive).
func (s *Set) MatchHost(host string) (domain.TrackerRule, bool) {
	if len(s.exact) == 0 && len(s.suffix) == 0 {
		return domain.TrackerRule{}, false
	}
	// Definitive negative: neither the host nor any ancestor is in the filter.
	if !s.checkBloom(host) {
		return domain.TrackerRule{}, false
	}
	if r, ok := s.exact[host]; ok {
		return r, true
	}
	for a := host; a != ""; {
		if r, ok := s.suffix[a]; ok {
			return r, true
		}
		i := strings.IndexByte(a, '.')
		if i < 0 {
			break
		}
		a = a[i+1:]
	}
	return domain.TrackerRule{}, false
}

// checkBloom returns true if we should consult the rule maps (maybe-positive),
// or false if we can early-allow (definitely negative). If no bloom is loaded,
// returns true to allow authoritative checking.
func (s *Set) checkBloom(host string) bool {
	if s.bloom == nil {
		return true
	}
	for a := host; a != ""; {
		if s.bloom.MightContain([]byte(a)) {
			return true
		}
		i := strings.IndexByte(a, '.')
		if i < 0 {
			break
		}
		a = a[i+1:]
	}
	return false
}

// Fragments returns a copy of the fragment list.
func (s *Set) Fragments() []string {
	out := make([]string, len(s.fragments))
	copy(out, s.fragments)
	return out
}

// RuleCount returns the number of loaded feed rules.
func (s *Set) RuleCount() int {
	return len(s.exact) + len(s.suffix)
}
