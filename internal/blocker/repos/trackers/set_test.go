package trackers

import (
	"testing"
	"time"

	"github.com/VIJAY-mark/blockd/internal/blocker/domain"
)

func mustRule(t *testing.T, name string, kind domain.TrackerRuleKind) domain.TrackerRule {
	t.Helper()
	r, err := domain.NewTrackerRule(name, kind, "test-feed", time.Now())
	if err != nil {
		t.Fatalf("NewTrackerRule(%q) error: %v", name, err)
	}
	return r
}

// passthroughFactory builds a bloom that never pre-filters, so map lookups
// stay authoritative in tests that don't target the bloom path.
type passthroughBloom struct{}

func (passthroughBloom) Add([]byte)               {}
func (passthroughBloom) MightContain([]byte) bool { return true }

type passthroughFactory struct{}

func (passthroughFactory) New(uint64, float64) BloomFilter { return passthroughBloom{} }

// negativeBloom denies everything; used to verify the early-allow path.
type negativeBloom struct{}

func (negativeBloom) Add([]byte)               {}
func (negativeBloom) MightContain([]byte) bool { return false }

type negativeFactory struct{}

func (negativeFactory) New(uint64, float64) BloomFilter { return negativeBloom{} }

func TestMatchFragment(t *testing.T) {
	s := New([]string{"ads.example.com", "tracker.js"})

	tests := []struct {
		url      string
		wantFrag string
		wantOK   bool
	}{
		{"https://ads.example.com/track", "ads.example.com", true},
		{"https://cdn.example.com/lib/tracker.js?v=2", "tracker.js", true},
		{"https://shop.example.com/cart", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		frag, ok := s.MatchFragment(tt.url)
		if ok != tt.wantOK || frag != tt.wantFrag {
			t.Errorf("MatchFragment(%q) = (%q, %v); want (%q, %v)", tt.url, frag, ok, tt.wantFrag, tt.wantOK)
		}
	}
}

func TestMatchHost_ExactAndSuffix(t *testing.T) {
	rules := []domain.TrackerRule{
		mustRule(t, "pixel.example.net", domain.TrackerRuleExact),
		mustRule(t, "telemetry.example.org", domain.TrackerRuleSuffix),
	}
	s := NewWithRules(nil, rules, passthroughFactory{}, 0.01)

	tests := []struct {
		host   string
		want   string
		wantOK bool
	}{
		{"pixel.example.net", "pixel.example.net", true},
		{"sub.pixel.example.net", "", false}, // exact does not cover subdomains
		{"telemetry.example.org", "telemetry.example.org", true},
		{"a.telemetry.example.org", "telemetry.example.org", true},
		{"deep.a.telemetry.example.org", "telemetry.example.org", true},
		{"example.org", "", false},
		{"unrelated.com", "", false},
	}
	for _, tt := range tests {
		r, ok := s.MatchHost(tt.host)
		if ok != tt.wantOK {
			t.Errorf("MatchHost(%q) ok = %v; want %v", tt.host, ok, tt.wantOK)
			continue
		}
		if ok && r.Name != tt.want {
			t.Errorf("MatchHost(%q) rule = %q; want %q", tt.host, r.Name, tt.want)
		}
	}
}

func TestMatchHost_NoRules(t *testing.T) {
	s := New([]string{"ads.example.com"})
	if _, ok := s.MatchHost("ads.example.com"); ok {
		t.Error("MatchHost matched with no feed rules loaded")
	}
}

func TestMatchHost_BloomNegativeShortCircuits(t *testing.T) {
	rules := []domain.TrackerRule{mustRule(t, "pixel.example.net", domain.TrackerRuleExact)}
	s := NewWithRules(nil, rules, negativeFactory{}, 0.01)

	// the rule is in the map, but the (lying) bloom denies it: early allow
	if _, ok := s.MatchHost("pixel.example.net"); ok {
		t.Error("bloom negative should short-circuit to no match")
	}
}

func TestMatchHost_NilFactorySkipsBloom(t *testing.T) {
	rules := []domain.TrackerRule{mustRule(t, "pixel.example.net", domain.TrackerRuleExact)}
	s := NewWithRules(nil, rules, nil, 0)
	if _, ok := s.MatchHost("pixel.example.net"); !ok {
		t.Error("expected match without bloom")
	}
}

func TestBuiltinIsCopied(t *testing.T) {
	a := Builtin()
	a[0] = "mutated"
	b := Builtin()
	if b[0] == "mutated" {
		t.Error("Builtin() returned a shared slice")
	}
}

func TestRuleCountAndFragments(t *testing.T) {
	rules := []domain.TrackerRule{
		mustRule(t, "a.example.com", domain.TrackerRuleExact),
		mustRule(t, "b.example.com", domain.TrackerRuleSuffix),
	}
	s := NewWithRules([]string{"x", "y"}, rules, nil, 0)
	if s.RuleCount() != 2 {
		t.Errorf("RuleCount() = %d; want 2", s.RuleCount())
	}
	if got := len(s.Fragments()); got != 2 {
		t.Errorf("len(Fragments()) = %d; want 2", got)
	}
}
