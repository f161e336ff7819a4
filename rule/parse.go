package rule

import (
	"fmt"
	"regexp"
	"strings"
)

// ParseRule parses one line of a filter list. It returns (nil, nil) for a
// blank line or a comment ("!" or "#" prefix), several Rules for a
// host-file line naming more than one hostname, or a parse error for a
// malformed rule. Callers that index rules by file offset should record the
// offset before calling ParseRule, since this function does not report one.
func ParseRule(line string) ([]*Rule, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "!") || strings.HasPrefix(line, "#") {
		return nil, nil
	}

	if IsHostFileRule(line) {
		return parseHostFileRule(line)
	}

	r, err := parseAdblockRule(line)
	if err != nil {
		return nil, err
	}
	return []*Rule{r}, nil
}

// parseAdblockRule implements spec.md §4.1's adblock branch: strip the
// exception marker, split off $modifiers, extract match info from what's
// left, and pick a match method.
func parseAdblockRule(line string) (*Rule, error) {
	text := line
	exception := false
	if strings.HasPrefix(text, "@@") {
		exception = true
		text = text[2:]
	}

	if lower := strings.ToLower(text); IsDomainName(lower) {
		// A bare domain name with no anchors, wildcard, or modifiers takes
		// the original parser's is_domain_name fast path straight to
		// MMID_EXACT, skipping the pattern_mode==0 shortcuts branch below.
		return &Rule{
			Text:          line,
			Kind:          KindAdblock,
			Exception:     exception,
			MatchMethod:   MethodExact,
			MatchingParts: []string{lower},
		}, nil
	}

	patternPart, optionsPart := splitPatternAndOptions(text)
	if patternPart == "" {
		return nil, fmt.Errorf("rule: empty pattern in %q", line)
	}

	r := &Rule{Text: line, Kind: KindAdblock, Exception: exception}
	if optionsPart != "" {
		if err := applyModifiers(optionsPart, r); err != nil {
			return nil, fmt.Errorf("rule: %q: %w", line, err)
		}
	}

	info := extractMatchInfo(strings.ToLower(patternPart))

	// spec.md §4.1 step 7: the stripped text must be a valid domain or IP
	// pattern, and must not be "too wide" (length < 3, or all '.'/'*'),
	// unless the rule carries its own selectivity via $dnstype or
	// $dnsrewrite. A slash-delimited regex is exempt from the domain/IP
	// charset check — its text is whatever the regex author wrote — but
	// not from the too-wide check, matching is_too_wide_rule in
	// rule_utils.cpp, which runs unconditionally.
	if !info.isRegexRule && !IsValidDomainPattern(info.text) && !IsValidIPPattern(info.text) {
		return nil, fmt.Errorf("rule: %q: invalid pattern %q", line, info.text)
	}
	if isTooWidePattern(info.text) && r.DNSType == nil && r.DNSRewrite == nil {
		return nil, fmt.Errorf("rule: %q: pattern %q is too wide", line, info.text)
	}

	switch {
	case info.isRegexRule:
		re, err := regexp.Compile(info.text)
		if err != nil {
			return nil, fmt.Errorf("rule: %q: %w", line, err)
		}
		r.MatchMethod = MethodRegex
		r.Regexp = re

	case !info.hasWildcard && info.mode == 0:
		// No wildcard and no anchors at all: the original's pattern_mode==0
		// branch in rule_utils.cpp treats this as an unanchored ordered
		// substring search rather than full-name equality.
		r.MatchMethod = MethodShortcuts
		r.MatchingParts = extractShortcuts(stripPlaceholders(info.text))

	case !info.hasWildcard:
		canon, isIP := "", false
		if info.isSet(modeLineStartAsserted) && info.isSet(modeLineEndAsserted) {
			canon, isIP = canonicalIPPattern(info.text)
		}
		switch {
		case isIP:
			// spec.md §4.1 step 8's first bullet: a valid IP literal with
			// both start and end asserted is exact on the canonicalized
			// form, so e.g. "|[::01]|" and "|::1|" match each other.
			r.MatchMethod = MethodExact
			r.MatchingParts = []string{canon}
		case info.isSet(modeDomainStartAsserted):
			r.MatchMethod = MethodSubdomains
			r.MatchingParts = []string{info.text}
		default:
			r.MatchMethod = MethodExact
			r.MatchingParts = []string{info.text}
		}

	default:
		shortcuts := extractShortcuts(stripPlaceholders(info.text))
		re, err := regexp.Compile(buildAnchoredRegex(info))
		if err != nil {
			return nil, fmt.Errorf("rule: %q: %w", line, err)
		}
		r.Regexp = re
		if len(shortcuts) == 0 {
			r.MatchMethod = MethodRegex
		} else {
			r.MatchMethod = MethodShortcutsAndRegex
			r.MatchingParts = shortcuts
		}
	}

	return r, nil
}

// splitPatternAndOptions separates a rule's pattern from its trailing
// "$modifier,modifier=value" suffix. A slash-delimited regex pattern is
// recognized by its closing slash rather than by scanning for "$", since
// the pattern itself may legitimately contain a literal "$".
func splitPatternAndOptions(text string) (pattern, options string) {
	if strings.HasPrefix(text, "/") {
		if closeIdx := strings.LastIndexByte(text, '/'); closeIdx > 0 {
			pattern = text[:closeIdx+1]
			rest := text[closeIdx+1:]
			if strings.HasPrefix(rest, "$") {
				options = rest[1:]
			}
			return pattern, options
		}
	}
	if idx := findUnescapedDollar(text); idx >= 0 {
		return text[:idx], text[idx+1:]
	}
	return text, ""
}

// isTooWidePattern reports whether text is short enough, or unspecific
// enough, that a rule built from it would match far more than intended:
// fewer than 3 bytes, or every byte is '.' or '*'. Mirrors
// is_too_wide_rule in rule_utils.cpp.
func isTooWidePattern(text string) bool {
	if len(text) < 3 {
		return true
	}
	return strings.Trim(text, ".*") == ""
}

func findUnescapedDollar(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '$' && (i == 0 || s[i-1] != '\\') {
			return i
		}
	}
	return -1
}

// TextWithoutBadFilter returns text with its "badfilter" modifier token
// removed, along with one adjoining comma, or the leading "$" when badfilter
// is the only modifier. The
// filterlist negation table keys on this stripped form, so that a
// "$badfilter" rule cancels another rule regardless of where badfilter
// happened to appear in that rule's own modifier list.
func TextWithoutBadFilter(text string) string {
	idx := strings.Index(text, "badfilter")
	if idx < 0 {
		return text
	}

	start, end := idx, idx+len("badfilter")
	switch {
	case start > 0 && text[start-1] == ',':
		start--
	case end < len(text) && text[end] == ',':
		end++
	case start > 0 && text[start-1] == '$':
		start--
	}
	return text[:start] + text[end:]
}
