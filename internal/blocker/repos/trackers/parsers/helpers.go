package parsers

import (
	"strings"
	"unicode"

	"github.com/VIJAY-mark/blockd/internal/blocker/common/utils"
	"github.com/VIJAY-mark/blockd/internal/blocker/domain"
)

// ruleKindFromRaw decides the TrackerRuleKind based on the raw, uncanonicalized input.
// Returns TrackerRuleSuffix if the name begins with "*." or ".", otherwise TrackerRuleExact.
func ruleKindFromRaw(raw string) domain.TrackerRuleKind {
	if strings.HasPrefix(raw, "*.") || strings.HasPrefix(raw, ".") {
		return domain.TrackerRuleSuffix
	}
	return domain.TrackerRuleExact
}

// isValidFQDN checks whether the provided string is a valid Fully Qualified Domain Name (FQDN).
// It enforces the following rules:
//   - The total length must not exceed 255 characters.
//   - The name must contain at least two labels (separated by dots).
//   - Each label must be between 1 and 63 characters long.
//   - The first label must start with a letter, number, or wildcard character.
//
// Returns true if the input meets all FQDN requirements, false otherwise.
func isValidFQDN(name string) bool {
	// the maximum length of an FQDN must not exceed 255 characters
	if len(name) > 255 {
		return false
	}
	// require at least two labels (e.g., example.com)
	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return false
	}
	// each label must be no more than 63 characters
	for _, label := range labels {
		if len(label) > 63 || len(label) == 0 {
			return false
		}
	}
	// it must start only with a letter, number, or wildcard
	firstLabel := labels[0]
	runes := []rune(firstLabel)
	if !isAlphaNumeric(runes[0]) && !isWildcard(runes[0]) {
		return false
	}
	return true
}

// normalizeHostname takes a hostname string, trims leading and trailing whitespace,
// removes any leading "*." or "." prefixes, and returns the canonical form via
// utils.CanonicalHostname. This ensures the name is normalized for further processing.
func normalizeHostname(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "*.")
	name = strings.TrimPrefix(name, ".")
	return utils.CanonicalHostname(name)
}

// stripLineBOM removes a UTF-8 byte order mark from the start of a line.
func stripLineBOM(line string) string {
	return strings.TrimPrefix(line, "\uFEFF")
}

// classifyLine reports whether the line is empty or a whole-line comment,
// evaluated before inline comments are stripped.
func classifyLine(line string) (isEmpty, isComment bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true, false
	}
	if strings.HasPrefix(trimmed, "#") {
		return false, true
	}
	return false, false
}

// stripInlineComment removes everything from the first '#' onwards.
func stripInlineComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx]
	}
	return line
}

// isAlphaNumeric reports whether the given rune is an ASCII letter or digit.
func isAlphaNumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isWildcard checks if the given rune represents a wildcard character ('*').
func isWildcard(r rune) bool {
	return r == '*'
}
