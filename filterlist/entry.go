package filterlist

import "dnsfilter/rule"

// ruleEntry is the index's in-memory footprint for one stored rule: just
// enough to route a query to it and to rehydrate it on demand. The parsed
// rule.Rule itself (with its compiled regexp and modifiers) is not kept
// here; it is re-parsed from disk only when a candidate actually needs its
// full fields checked.
type ruleEntry struct {
	offset int64
	method rule.MatchMethod
	kind   rule.Kind

	// matchingParts caches the ordered substring list for a shortcuts or
	// shortcuts_and_regex entry, so the matcher can reject most candidates
	// without rehydrating them. For a plain shortcuts entry the ordered
	// match is the whole pattern test; the entry is still rehydrated once
	// to check its modifiers and build the result.
	matchingParts []string
}
