package parsers

import (
	"strings"
	"testing"

	"github.com/VIJAY-mark/blockd/internal/blocker/common/log"
	"github.com/VIJAY-mark/blockd/internal/blocker/domain"
)

func TestParseHostsFile(t *testing.T) {
	input := strings.Join([]string{
		"# ad servers",
		"0.0.0.0 ads.example.com",
		"0.0.0.0 pixel.example.net metrics.example.net   # two hosts",
		"127.0.0.1 localhost.localdomain",
		"0.0.0.0 *.wild.example.com", // wildcards invalid in hosts files
		"0.0.0.0 .dot.example.com",   // leading dot invalid
		"0.0.0.0 ads.example.com",    // duplicate
		"0.0.0.0",                    // no hostnames
		"",
	}, "\n")

	rules, err := ParseHostsFile(strings.NewReader(input), "hosts.txt", log.NewNoopLogger(), testNow)
	if err != nil {
		t.Fatalf("ParseHostsFile error: %v", err)
	}

	want := []string{"ads.example.com", "pixel.example.net", "metrics.example.net", "localhost.localdomain"}
	if len(rules) != len(want) {
		t.Fatalf("got %d rules; want %d: %+v", len(rules), len(want), rules)
	}
	for i, name := range want {
		if rules[i].Name != name {
			t.Errorf("rule[%d] = %q; want %q", i, rules[i].Name, name)
		}
		if rules[i].Kind != domain.TrackerRuleExact {
			t.Errorf("rule[%d] kind = %v; want exact", i, rules[i].Kind)
		}
	}
}

func TestIsValidFQDN(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"example.com", true},
		{"sub.example.com", true},
		{"1234.example.com", true},
		{"single", false},
		{"", false},
		{"double..dot.com", false},
		{strings.Repeat("a", 64) + ".com", false},
		{strings.Repeat("a.", 130) + "com", false},
		{"-leadinghyphen.example.com", false},
	}
	for _, tt := range tests {
		if got := isValidFQDN(tt.name); got != tt.want {
			t.Errorf("isValidFQDN(%q) = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestNormalizeHostname(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"*.Example.COM", "example.com"},
		{".example.com", "example.com"},
		{"  example.com.  ", "example.com"},
	}
	for _, tt := range tests {
		if got := normalizeHostname(tt.in); got != tt.want {
			t.Errorf("normalizeHostname(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
