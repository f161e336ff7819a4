package filterlist

import (
	"strings"

	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"

	"dnsfilter/rule"
)

// Match runs the three pattern-search phases from spec.md §4.3 against idx
// in order — domain, shortcut, leftovers — and returns every surviving
// rule, rehydrated from disk. Badfilter cancellation is not applied here:
// it is a cross-filter concern the engine package resolves once all of a
// query's indices have been matched (see engine.SelectEffectiveRules).
func Match(idx *Index, q Query) []rule.MatchedRule {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	matched := make(map[int64]struct{})
	var out []rule.MatchedRule

	add := func(entry *ruleEntry, key string) {
		if _, ok := matched[entry.offset]; ok {
			return
		}
		r, err := rehydrate(idx, entry, key)
		if err != nil {
			logrus.WithField("filter_id", idx.FilterID).WithError(err).
				Warn("filterlist: dropping stale index entry")
			return
		}
		if !r.DNSType.Allows(q.RRType) {
			return
		}
		// A $dnsrewrite answer applies only to a compatible query type: a
		// CNAME rewrite serves A/AAAA queries, any other record type serves
		// queries of that same type. An rcode-only rewrite has no type.
		if rw := r.DNSRewrite; rw != nil && rw.RRType != 0 {
			if rw.RRType == dns.TypeCNAME {
				if q.RRType != dns.TypeA && q.RRType != dns.TypeAAAA {
					return
				}
			} else if rw.RRType != q.RRType {
				return
			}
		}
		matched[entry.offset] = struct{}{}
		out = append(out, rule.MatchedRule{Rule: r, FilterID: idx.FilterID})
	}

	searchDomains(idx, q, add)
	searchShortcuts(idx, q, add)
	searchLeftovers(idx, q, add)

	return out
}

func searchDomains(idx *Index, q Query, add func(*ruleEntry, string)) {
	for _, c := range domainCandidates(q) {
		key := hash32(c.name)
		if e, ok := idx.uniqueDomains[key]; ok && domainEntryApplies(e, c.full) {
			add(e, c.name)
		}
		for _, e := range idx.domains[key] {
			if domainEntryApplies(e, c.full) {
				add(e, c.name)
			}
		}
	}
}

func domainEntryApplies(e *ruleEntry, full bool) bool {
	if e.method == rule.MethodExact {
		return full
	}
	return true
}

// searchShortcuts slides a ShortcutLength window across each primary name,
// probing the shortcut table at every window's hash, and verifies a hit by
// checking that the candidate's full shortcut list appears in order. A
// shortcuts_and_regex entry still needs its compiled regex confirmed after
// that; a plain shortcuts entry has no regex and the ordered match is final.
func searchShortcuts(idx *Index, q Query, add func(*ruleEntry, string)) {
	for _, name := range primaryNames(q) {
		if len(name) < ShortcutLength {
			continue
		}
		seenKeys := make(map[uint32]bool)
		for i := 0; i+ShortcutLength <= len(name); i++ {
			key := hash32(name[i : i+ShortcutLength])
			if seenKeys[key] {
				continue
			}
			seenKeys[key] = true
			for _, e := range idx.shortcuts[key] {
				if !matchShortcutsInOrder(name, e.matchingParts) {
					continue
				}
				if e.method == rule.MethodShortcuts {
					// No regex was compiled for a plain shortcuts rule: the
					// ordered substring match above is the whole test.
					add(e, "")
					continue
				}
				confirmRegex(idx, e, name, add)
			}
		}
	}
}

// matchShortcutsInOrder reports whether every shortcut in parts occurs in
// host, in order, without overlapping with the previous match.
func matchShortcutsInOrder(host string, parts []string) bool {
	pos := 0
	for _, p := range parts {
		idx := strings.Index(host[pos:], p)
		if idx < 0 {
			return false
		}
		pos += idx + len(p)
	}
	return true
}

func searchLeftovers(idx *Index, q Query, add func(*ruleEntry, string)) {
	for _, name := range primaryNames(q) {
		for _, e := range idx.leftovers {
			if e.method == rule.MethodShortcuts {
				if matchShortcutsInOrder(name, e.matchingParts) {
					add(e, "")
				}
				continue
			}
			confirmRegex(idx, e, name, add)
		}
	}
}

// confirmRegex rehydrates entry to test its compiled regexp against name;
// add() does its own rehydration for the returned result, so an accepted
// entry is read and parsed twice. That trade keeps the index itself free of
// compiled regexps.
func confirmRegex(idx *Index, entry *ruleEntry, name string, add func(*ruleEntry, string)) bool {
	r, err := rehydrate(idx, entry, "")
	if err != nil {
		logrus.WithField("filter_id", idx.FilterID).WithError(err).
			Warn("filterlist: dropping stale index entry")
		return false
	}
	if r.Regexp == nil || !r.Regexp.MatchString(name) {
		return false
	}
	add(entry, "")
	return true
}
