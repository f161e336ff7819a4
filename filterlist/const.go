// Package filterlist indexes one filter list's rules for fast matching and
// resolves a matched rule's disk position back into a parsed rule.Rule.
package filterlist

// ShortcutLength is the number of leading bytes of a shortcut used as its
// hash-table key ("SHORTCUT_LENGTH" in the original source). A shortcut
// shorter than this cannot serve as a table key and falls back to the
// leftovers bucket.
const ShortcutLength = 5

// Memory-accounting constants used by the loader's approximate byte-budget
// formula, carried from the original's CHECK_MEM bookkeeping.
const (
	approxCompiledRegexBytes = 1024
	approxFragmentationCoef  = 1.5
)
