package domain

import (
	"fmt"
	"strings"
	"time"
)

// TrackerRuleKind defines how a feed rule matches hostnames.
//
// exact  - matches the hostname only (name == request hostname)
// suffix - matches the hostname and any subdomain (apex-inclusive)
type TrackerRuleKind uint8

const (
	// TrackerRuleExact matches only the exact hostname.
	TrackerRuleExact TrackerRuleKind = iota
	// TrackerRuleSuffix matches the hostname and all its subdomains.
	TrackerRuleSuffix
)

// String returns a stable string representation of the rule kind.
func (k TrackerRuleKind) String() string {
	switch k {
	case TrackerRuleExact:
		return "exact"
	case TrackerRuleSuffix:
		return "suffix"
	default:
		return fmt.Sprintf("TrackerRuleKind(%d)", k)
	}
}

// TrackerRule represents a single host-blocking rule sourced from a feed file.
//
// Notes:
// - Name is expected to be canonical and without a trailing dot (normalization handled elsewhere).
// - Source should identify where the rule came from (file path or feed alias).
// - AddedAt records when the rule was ingested.
type TrackerRule struct {
	Name    string          // canonical hostname (no trailing dot), e.g., "ads.example.com"
	Kind    TrackerRuleKind // exact or suffix (apex-inclusive)
	Source  string          // feed/file identifier
	AddedAt time.Time       // ingestion timestamp
}

// NewTrackerRule constructs a TrackerRule and validates its fields.
func NewTrackerRule(name string, kind TrackerRuleKind, source string, addedAt time.Time) (TrackerRule, error) {
	r := TrackerRule{
		Name:    strings.TrimSpace(name),
		Kind:    kind,
		Source:  strings.TrimSpace(source),
		AddedAt: addedAt,
	}
	if err := r.Validate(); err != nil {
		return TrackerRule{}, err
	}
	return r, nil
}

// NewExactTrackerRule convenience constructor for an exact rule.
func NewExactTrackerRule(name, source string, addedAt time.Time) (TrackerRule, error) {
	return NewTrackerRule(name, TrackerRuleExact, source, addedAt)
}

// NewSuffixTrackerRule convenience constructor for a suffix rule (apex-inclusive).
func NewSuffixTrackerRule(name, source string, addedAt time.Time) (TrackerRule, error) {
	return NewTrackerRule(name, TrackerRuleSuffix, source, addedAt)
}

// Validate checks the TrackerRule for required fields and supported values.
func (r TrackerRule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule name must not be empty")
	}
	if r.Source == "" {
		return fmt.Errorf("rule source must not be empty")
	}
	if r.AddedAt.IsZero() {
		return fmt.Errorf("rule addedAt must be set")
	}
	switch r.Kind {
	case TrackerRuleExact, TrackerRuleSuffix:
		// ok
	default:
		return fmt.Errorf("unsupported TrackerRuleKind: %d", r.Kind)
	}
	return nil
}

// IsExact returns true when the rule kind is exact.
func (r TrackerRule) IsExact() bool { return r.Kind == TrackerRuleExact }

// IsSuffix returns true when the rule kind is suffix (apex-inclusive).
func (r TrackerRule) IsSuffix() bool { return r.Kind == TrackerRuleSuffix }
