package rule

import "strings"

// patternMode flags record which anchors were stripped from a pattern while
// extracting its match info, following the fixed order in spec.md §4.1 step 6.
type patternMode int

const (
	modeLineStartAsserted patternMode = 1 << iota
	modeDomainStartAsserted
	modeLineEndAsserted
)

var skippableURLPrefixes = []string{
	"https://", "http://", "http*://", "ws://", "wss://", "ws*://", "://", "//",
}

var specialSuffixes = []string{"|", "^", "/"}

// matchInfo is the result of stripping anchors, skippable URL prefixes, and
// a trailing port from a rule's pattern text.
type matchInfo struct {
	text        string
	isRegexRule bool
	hasWildcard bool
	mode        patternMode
}

func (m matchInfo) isSet(f patternMode) bool { return m.mode&f != 0 }

// extractMatchInfo implements spec.md §4.1 step 6. Regex rules (wrapped in
// /.../ ) are returned unstripped, with their delimiters removed and no
// further processing: no anchors are stripped from a slash-delimited regex.
// Any "$modifiers" after its closing slash were already split off by
// splitPatternAndOptions.
func extractMatchInfo(pattern string) matchInfo {
	if isSlashRegex(pattern) {
		return matchInfo{text: pattern[1 : len(pattern)-1], isRegexRule: true}
	}

	info := matchInfo{text: pattern}

	// Special prefixes (||, |) come before skippable ones so that
	// "||http://example.org" is recognized correctly.
	info.text, info.mode = removeSpecialPrefix(info.text, info.mode)
	info.text, info.mode = removeSkippablePrefix(info.text, info.mode)
	if info.isSet(modeDomainStartAsserted) && info.isSet(modeLineStartAsserted) {
		// Mutually exclusive; line_start_asserted wins.
		info.mode &^= modeDomainStartAsserted
	}

	info.text, info.mode = removeSpecialSuffixes(info.text, info.mode)
	info.text, info.mode = removePort(info.text, info.mode)

	info.hasWildcard = strings.Contains(info.text, "*")

	return info
}

func isSlashRegex(s string) bool {
	return len(s) > 1 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/")
}

func removeSpecialPrefix(text string, mode patternMode) (string, patternMode) {
	if strings.HasPrefix(text, "||") {
		return text[2:], mode | modeDomainStartAsserted
	}
	if strings.HasPrefix(text, "|") {
		return text[1:], mode | modeLineStartAsserted
	}
	return text, mode
}

func removeSkippablePrefix(text string, mode patternMode) (string, patternMode) {
	for _, prefix := range skippableURLPrefixes {
		if strings.HasPrefix(text, prefix) {
			return text[len(prefix):], mode | modeDomainStartAsserted
		}
	}
	return text, mode
}

func removeSpecialSuffixes(text string, mode patternMode) (string, patternMode) {
	for {
		stripped := false
		for _, suffix := range specialSuffixes {
			if strings.HasSuffix(text, suffix) {
				text = text[:len(text)-len(suffix)]
				mode |= modeLineEndAsserted
				stripped = true
			}
		}
		if !stripped {
			break
		}
	}
	return text, mode
}

// removePort strips a trailing ":<port>" (hostname form, at most 5 digits)
// or a bracketed IPv6 literal with a trailing port ("[::1]:53").
func removePort(text string, mode patternMode) (string, patternMode) {
	if strings.HasPrefix(text, "[") {
		if close := strings.Index(text, "]:"); close > 0 {
			port := text[close+2:]
			if isValidPort(port) {
				return text[1:close], mode | modeLineStartAsserted | modeLineEndAsserted
			}
		}
		return text, mode
	}

	idx := strings.LastIndex(text, ":")
	if idx < 0 || idx == len(text)-1 {
		return text, mode
	}
	// Only treat as a port when there is exactly one colon; a hostname
	// cannot contain a colon, so more than one signals an IPv6 literal we
	// must not mistake for "host:port".
	if strings.Count(text, ":") != 1 {
		return text, mode
	}
	port := text[idx+1:]
	if !isValidPort(port) {
		return text, mode
	}
	return text[:idx], mode | modeLineEndAsserted
}
