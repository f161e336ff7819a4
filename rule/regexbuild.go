package rule

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// buildAnchoredRegex assembles the canonical regex for a non-regex-syntax
// rule from its stripped match info, following spec.md §4.1's construction:
// an anchor ("^" for a line-start assertion, the subdomains anchor for a
// domain-start assertion, nothing otherwise) plus the pattern text plus an
// end anchor, with '*' expanded to ".*" and '.' escaped to "\." in one pass
// over the assembled string.
//
// The domain-start anchor is built from the literal placeholder "^(*.)?":
// running it through the same '*'/'.' substitution pass that expands the
// pattern's own wildcards turns it into "^(.*\.)?", which is exactly the
// "optional dot-terminated prefix" anchor the subdomains match method needs.
// See the Open Question note in SPEC_FULL.md §11.
func buildAnchoredRegex(info matchInfo) string {
	var prefix, suffix string
	switch {
	case info.isSet(modeLineStartAsserted):
		prefix = "^"
	case info.isSet(modeDomainStartAsserted):
		prefix = "^(*.)?"
	}
	if info.isSet(modeLineEndAsserted) {
		suffix = "$"
	}

	assembled := prefix + info.text + suffix

	var b strings.Builder
	b.Grow(len(assembled) + 8)
	for _, ch := range assembled {
		switch ch {
		case '*':
			b.WriteString(".*")
		case '.':
			b.WriteString(`\.`)
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// shortcutPlaceholderPatterns strip bracketed groups and single-letter regex
// escapes, replacing each with the three-dot placeholder "...", so that the
// remaining literal runs can be pulled out as match shortcuts.
var shortcutPlaceholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`([^\\]*)\([^\\]*\)`),
	regexp.MustCompile(`([^\\]*)\{[^\\]*\}`),
	regexp.MustCompile(`([^\\]*)\[[^\\]*\]`),
	regexp.MustCompile(`([^\\]*)\\[a-zA-Z]`),
}

const specialRegexChars = `\^$*+?.()|[]{}`

// recognizedEscapeSequences are the escape sequences extractShortcuts (via
// skipSpecialChars) treats as a single unit when skipping past a metacharacter run, rather
// than peeling off one byte at a time.
var recognizedEscapeSequences = []string{
	`\n`, `\r`, `\t`,
	`\d`, `\D`, `\w`, `\W`, `\s`, `\S`,
	`\b`, `\B`, `\<`, `\>`, `\A`, `\Z`,
}

// stripPlaceholders replaces bracketed groups and escape classes with "...".
func stripPlaceholders(text string) string {
	for _, re := range shortcutPlaceholderPatterns {
		text = re.ReplaceAllString(text, "$1...")
	}
	return text
}

// extractShortcuts pulls out the literal runs of text between regex
// metacharacters, used both as the shortcut prefilter for a
// shortcuts_and_regex rule and to decide whether a regex rule has any
// shortcut at all.
func extractShortcuts(text string) []string {
	var shortcuts []string
	for len(text) > 0 {
		seek := strings.IndexAny(text, specialRegexChars)
		if seek < 0 {
			shortcuts = append(shortcuts, text)
			break
		}
		if seek > 0 {
			shortcuts = append(shortcuts, text[:seek])
		}
		text = skipSpecialChars(text[seek:])
	}
	return shortcuts
}

func skipSpecialChars(s string) string {
	if s == "" {
		return s
	}
	for _, seq := range recognizedEscapeSequences {
		if strings.HasPrefix(s, seq) {
			return s[len(seq):]
		}
	}
	_, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		size = 1
	}
	return s[size:]
}
