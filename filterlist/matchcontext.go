package filterlist

import (
	"strings"

	"github.com/miekg/dns"
)

// Query is the normalized per-lookup input the caller hands to the engine:
// the queried name, its record type, and any extra names discovered after
// resolution (CNAME targets, answer addresses) that also need checking
// against the same rule set.
type Query struct {
	Host       string
	RRType     uint16
	ExtraNames []string
}

// candidateName is one name to probe the domain tables with, tagged with
// whether it is the queried name itself (full) or a strict parent suffix of
// it. An exact-method rule only matches a full name; a subdomains-method
// rule matches either.
type candidateName struct {
	name string
	full bool
}

// primaryNames returns the queried name and its extra names, normalized,
// with no suffix expansion — the names the shortcut and regex phases probe,
// since a subdomains-anchored regex already matches its own suffixes.
func primaryNames(q Query) []string {
	names := make([]string, 0, 1+len(q.ExtraNames))
	if h := normalizeName(q.Host); h != "" {
		names = append(names, h)
	}
	for _, n := range q.ExtraNames {
		if h := normalizeName(n); h != "" {
			names = append(names, h)
		}
	}
	return names
}

// domainCandidates returns every name and suffix the domain-table phase
// should probe for q, including a reverse-lookup FQDN when q is itself a PTR
// lookup against the reverse zone.
func domainCandidates(q Query) []candidateName {
	var out []candidateName
	out = append(out, expandWithDepth(q.Host, q.RRType)...)
	for _, n := range q.ExtraNames {
		out = append(out, expandWithDepth(n, q.RRType)...)
	}
	return out
}

// expandWithDepth returns host itself plus each strict parent suffix down to,
// but not including, the bare top-level label — create_match_context in
// filter.cpp computes this as n = dots > 0 ? dots - 1 : 0, so that a
// subdomains-method rule whose pattern happens to equal a TLD (e.g. "org")
// never matches every query under it.
func expandWithDepth(host string, rrType uint16) []candidateName {
	host = normalizeName(host)
	if host == "" {
		return nil
	}
	labels := strings.Split(host, ".")
	limit := len(labels) - 1
	if limit < 1 {
		limit = 1
	}
	out := make([]candidateName, 0, limit+1)
	for i := 0; i < limit; i++ {
		out = append(out, candidateName{name: strings.Join(labels[i:], "."), full: i == 0})
	}
	if rev, ok := reverseLookupFQDN(host, rrType); ok {
		out = append(out, candidateName{name: rev, full: true})
	}
	return out
}

func normalizeName(host string) string {
	return strings.ToLower(strings.TrimSuffix(host, "."))
}

// reverseLookupFQDN reports whether host is itself a reverse-DNS lookup: a
// PTR query against an already-PTR-shaped name ending in ".in-addr.arpa" or
// ".ip6.arpa". Mirrors create_match_context in filter.cpp, which only sets
// reverse_lookup_fqdn for a literal reverse-DNS query, never for a host that
// merely happens to look like an IP literal. host is returned unchanged
// (rather than with the original's trailing dot appended) since this
// index's domain tables are keyed without one.
func reverseLookupFQDN(host string, rrType uint16) (string, bool) {
	if rrType != dns.TypePTR {
		return "", false
	}
	if !strings.HasSuffix(host, ".in-addr.arpa") && !strings.HasSuffix(host, ".ip6.arpa") {
		return "", false
	}
	return host, true
}
