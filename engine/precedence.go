package engine

import "dnsfilter/rule"

// SelectEffectiveRules reduces a query's raw candidate rules (the
// concatenation of every filter list's Match result) to the rules that
// actually govern the query, in the fixed precedence order:
//
//  1. Badfilter cancellation: drop any rule some loaded $badfilter rule
//     names.
//  2. Host-file rules, if any survive, are an authoritative address
//     substitution and short-circuit everything else.
//  3. $important narrows the remaining rules to the important ones, if any;
//     within that set a non-exception rule always wins over an important
//     exception, and only an all-exception important set returns as is.
//  4. Otherwise, an exception ($@@) rule in what's left wins outright.
//  5. A $dnsrewrite rule in what's left substitutes the response.
//  6. A $dnstype rule in what's left wins over rules without one. Matching
//     has already dropped any $dnstype rule whose type list excludes the
//     query's record type (rule.DNSTypeModifier.Allows).
//  7. Catch-all: every rule still standing.
func (e *Engine) SelectEffectiveRules(matched []rule.MatchedRule) []rule.MatchedRule {
	survivors := make([]rule.MatchedRule, 0, len(matched))
	for _, m := range matched {
		if e.cancelledByAnyBadFilter(m.Rule.Text) {
			continue
		}
		survivors = append(survivors, m)
	}
	if len(survivors) == 0 {
		return nil
	}

	var hostFile, adblock []rule.MatchedRule
	for _, m := range survivors {
		if m.Rule.Kind == rule.KindHostFile {
			hostFile = append(hostFile, m)
		} else {
			adblock = append(adblock, m)
		}
	}
	if len(hostFile) > 0 {
		return hostFile
	}
	working := adblock

	if important := filterRules(working, func(m rule.MatchedRule) bool { return m.Rule.Important }); len(important) > 0 {
		// Within the important set, a non-exception rule always wins over
		// an important exception; only an all-exception important set
		// falls through to the exception itself.
		if blocks := filterRules(important, func(m rule.MatchedRule) bool { return !m.Rule.Exception }); len(blocks) > 0 {
			return blocks
		}
		return important
	}

	if exceptions := filterRules(working, func(m rule.MatchedRule) bool { return m.Rule.Exception }); len(exceptions) > 0 {
		return exceptions
	}

	if rewrites := filterRules(working, func(m rule.MatchedRule) bool { return m.Rule.DNSRewrite != nil }); len(rewrites) > 0 {
		return rewrites
	}

	if typed := filterRules(working, func(m rule.MatchedRule) bool { return m.Rule.DNSType != nil }); len(typed) > 0 {
		return typed
	}

	return working
}

func (e *Engine) cancelledByAnyBadFilter(text string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, idx := range e.indices {
		if idx.CancelledByBadFilter(text) {
			return true
		}
	}
	return false
}

func filterRules(in []rule.MatchedRule, keep func(rule.MatchedRule) bool) []rule.MatchedRule {
	var out []rule.MatchedRule
	for _, m := range in {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}
