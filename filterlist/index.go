package filterlist

import (
	"sync"
	"time"

	"dnsfilter/rule"
)

// Index holds one filter list's compiled rule tables: two domain tables
// (the promotion split between a single-owner fast path and a multi-rule
// slow path), a shortcut table keyed on a 5-byte prefix, a leftovers bucket
// for anything with no usable domain or shortcut key, and the badfilter
// negation table. It is the Go shape of the original's per-filter khash
// tables, minus their C structs.
type Index struct {
	mu sync.RWMutex

	FilterID int
	source   Source
	loadedAt time.Time

	uniqueDomains map[uint32]*ruleEntry
	domains       map[uint32][]*ruleEntry
	shortcuts     map[uint32][]*ruleEntry
	leftovers     []*ruleEntry
	badfilter     map[uint32]bool

	approxMemory int64
}

// CancelledByBadFilter reports whether some $badfilter rule in this index
// cancels a rule whose own text (badfilter token stripped) is text.
func (idx *Index) CancelledByBadFilter(text string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.badfilter[hash32(rule.TextWithoutBadFilter(text))]
}

// ApproxMemory returns the index's current approximate byte footprint.
func (idx *Index) ApproxMemory() int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.approxMemory
}

// Stale reports whether the backing source's mtime has moved past the
// index's load time. An in-memory source is never stale.
func (idx *Index) Stale() bool {
	mtime, tracked := idx.source.ModTime()
	if !tracked {
		return false
	}
	return mtime.After(idx.loadedAt)
}

func newIndex(filterID int, src Source, domainCap, shortcutCap, leftoverCap int) *Index {
	return &Index{
		FilterID:      filterID,
		source:        src,
		uniqueDomains: make(map[uint32]*ruleEntry, domainCap),
		domains:       make(map[uint32][]*ruleEntry),
		shortcuts:     make(map[uint32][]*ruleEntry, shortcutCap),
		leftovers:     make([]*ruleEntry, 0, leftoverCap),
		badfilter:     make(map[uint32]bool),
	}
}

// insert routes a parsed rule into the appropriate table. A $badfilter rule
// goes only into the negation table, keyed by its own stripped text hash;
// it never participates in ordinary matching.
func (idx *Index) insert(r *rule.Rule, offset int64) {
	if r.BadFilter {
		idx.badfilter[hash32(rule.TextWithoutBadFilter(r.Text))] = true
		return
	}

	entry := &ruleEntry{offset: offset, method: r.MatchMethod, kind: r.Kind}

	switch r.MatchMethod {
	case rule.MethodExact, rule.MethodSubdomains:
		key := hash32(r.MatchingParts[0])
		switch {
		case idx.domains[key] != nil:
			idx.domains[key] = append(idx.domains[key], entry)
		case idx.uniqueDomains[key] != nil:
			idx.domains[key] = []*ruleEntry{idx.uniqueDomains[key], entry}
			delete(idx.uniqueDomains, key)
		default:
			idx.uniqueDomains[key] = entry
		}

	case rule.MethodShortcuts, rule.MethodShortcutsAndRegex:
		entry.matchingParts = r.MatchingParts
		if key, ok := shortcutKey(r.MatchingParts); ok {
			idx.shortcuts[key] = append(idx.shortcuts[key], entry)
		} else {
			idx.leftovers = append(idx.leftovers, entry)
		}

	default: // rule.MethodRegex
		idx.leftovers = append(idx.leftovers, entry)
	}
}

// shortcutKey picks the first matching part at least ShortcutLength bytes
// long and hashes its first ShortcutLength bytes, matching the original's
// shortcut-key selection rule.
func shortcutKey(parts []string) (uint32, bool) {
	for _, p := range parts {
		if len(p) >= ShortcutLength {
			return hash32(p[:ShortcutLength]), true
		}
	}
	return 0, false
}

// estimateRuleMemory approximates a rule's footprint using the original's
// fragmentation coefficient plus a flat per-compiled-regex charge.
func estimateRuleMemory(r *rule.Rule) int64 {
	mem := float64(len(r.Text)) * approxFragmentationCoef
	if r.Regexp != nil {
		mem += approxCompiledRegexBytes
	}
	return int64(mem)
}
