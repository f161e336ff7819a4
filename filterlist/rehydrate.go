package filterlist

import (
	"fmt"

	"dnsfilter/rule"
)

// rehydrate re-parses the line an entry points at and returns the specific
// rule.Rule it represents. A host-file line can name more than one host on
// a single offset; wantKey (non-empty for a domain-table entry) picks out
// the rule whose matching key is that exact string.
func rehydrate(idx *Index, entry *ruleEntry, wantKey string) (*rule.Rule, error) {
	line, err := idx.source.ReadLineAt(entry.offset)
	if err != nil {
		return nil, fmt.Errorf("filterlist: rehydrating offset %d in %s: %w", entry.offset, idx.source.Name(), err)
	}

	parsed, err := rule.ParseRule(line)
	if err != nil {
		return nil, fmt.Errorf("filterlist: re-parsing offset %d in %s: %w", entry.offset, idx.source.Name(), err)
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("filterlist: offset %d in %s no longer parses to a rule", entry.offset, idx.source.Name())
	}
	if wantKey == "" || len(parsed) == 1 {
		return parsed[0], nil
	}
	for _, r := range parsed {
		if len(r.MatchingParts) > 0 && r.MatchingParts[0] == wantKey {
			return r, nil
		}
	}
	return parsed[0], nil
}
