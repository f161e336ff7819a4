// Package rule parses DNS filtering rule lines (the AdBlock-Plus DNS subset
// plus classic /etc/hosts syntax) into a normalized form that the filterlist
// and engine packages index and match against.
package rule

import (
	"net"
	"regexp"
)

// Kind distinguishes the rule's source syntax.
type Kind int

const (
	// KindAdblock is a rule written in the AdBlock-Plus DNS subset
	// (||example.com^, @@..., $modifiers, /regex/).
	KindAdblock Kind = iota
	// KindHostFile is a classic /etc/hosts line: "<ip> <name> [<name>...]".
	KindHostFile
)

func (k Kind) String() string {
	switch k {
	case KindAdblock:
		return "adblock"
	case KindHostFile:
		return "host_file"
	default:
		return "unknown"
	}
}

// MatchMethod selects how Rule.MatchingParts (or Regexp) is interpreted
// against a queried name.
type MatchMethod int

const (
	MethodExact MatchMethod = iota
	MethodSubdomains
	MethodShortcuts
	MethodShortcutsAndRegex
	MethodRegex
)

func (m MatchMethod) String() string {
	switch m {
	case MethodExact:
		return "exact"
	case MethodSubdomains:
		return "subdomains"
	case MethodShortcuts:
		return "shortcuts"
	case MethodShortcutsAndRegex:
		return "shortcuts_and_regex"
	case MethodRegex:
		return "regex"
	default:
		return "unknown"
	}
}

// Rule is the normalized form of one parsed filter-list line.
type Rule struct {
	// Text is the original source line, untrimmed of nothing but leading/
	// trailing whitespace.
	Text string

	Kind        Kind
	MatchMethod MatchMethod

	// MatchingParts holds, depending on MatchMethod:
	//   exact/subdomains: candidate full-domain keys.
	//   shortcuts: ordered substrings that must appear, in order, non-overlapping.
	//   shortcuts_and_regex: the shortcuts prefilter; Regexp holds the regex.
	//   regex: unused; Regexp holds the regex.
	MatchingParts []string

	// Regexp is set for MethodRegex and MethodShortcutsAndRegex rules.
	Regexp *regexp.Regexp

	Exception bool
	Important bool
	BadFilter bool

	DNSType    *DNSTypeModifier
	DNSRewrite *DNSRewrite

	// HostIP is the substituted address for a host-file rule.
	HostIP net.IP
}

// DNSTypeMode distinguishes an enable-list from an exclude-list for $dnstype.
type DNSTypeMode int

const (
	DNSTypeEnable DNSTypeMode = iota
	DNSTypeExclude
)

// DNSTypeModifier is the parsed form of $dnstype=<T>[|<T>...].
type DNSTypeModifier struct {
	Mode  DNSTypeMode
	Types []uint16
}

// Allows reports whether rrType is selected by the modifier.
func (d *DNSTypeModifier) Allows(rrType uint16) bool {
	if d == nil {
		return true
	}
	found := false
	for _, t := range d.Types {
		if t == rrType {
			found = true
			break
		}
	}
	if d.Mode == DNSTypeEnable {
		return found
	}
	return !found
}
