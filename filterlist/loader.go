package filterlist

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"dnsfilter/rule"
)

var errBudgetExhausted = errors.New("filterlist: budget exhausted")

// Load builds an Index for one filter list in two passes over src: a count
// pass that pre-sizes the domain/shortcut/leftover tables, then an insert
// pass that charges each rule against budget and stops (returning the
// partial index alongside ErrMemLimitReached) the moment the budget refuses
// a reservation.
func Load(filterID int, src Source, budget Budget) (*Index, error) {
	domainCount, shortcutCount, leftoverCount, err := countRules(src)
	if err != nil {
		return nil, fmt.Errorf("filterlist: counting pass for %s: %w", src.Name(), err)
	}

	idx := newIndex(filterID, src, domainCount, shortcutCount, leftoverCount)
	if mtime, tracked := src.ModTime(); tracked {
		idx.loadedAt = mtime
	}

	r, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("filterlist: opening %s: %w", src.Name(), err)
	}
	defer r.Close()

	memErr := scanLines(r, func(offset int64, line string) error {
		parsed, perr := rule.ParseRule(line)
		if perr != nil {
			logrus.WithFields(logrus.Fields{"filter_id": filterID, "line": line}).
				WithError(perr).Debug("filterlist: skipping unparseable rule")
			return nil
		}
		for _, pr := range parsed {
			cost := estimateRuleMemory(pr)
			if !budget.Reserve(cost) {
				return errBudgetExhausted
			}
			idx.insert(pr, offset)
			idx.approxMemory += cost
		}
		return nil
	})

	if memErr != nil {
		if errors.Is(memErr, errBudgetExhausted) {
			logrus.WithField("filter_id", filterID).Warn("filterlist: memory limit reached, returning partial index")
			return idx, ErrMemLimitReached
		}
		return idx, fmt.Errorf("filterlist: loading %s: %w", src.Name(), memErr)
	}
	return idx, nil
}

// countRules runs the same parse over src without inserting anything, to
// learn how many entries each table needs before allocating it.
func countRules(src Source) (domains, shortcuts, leftovers int, err error) {
	r, err := src.Open()
	if err != nil {
		return 0, 0, 0, err
	}
	defer r.Close()

	err = scanLines(r, func(_ int64, line string) error {
		parsed, perr := rule.ParseRule(line)
		if perr != nil {
			return nil
		}
		for _, pr := range parsed {
			if pr.BadFilter {
				continue
			}
			switch pr.MatchMethod {
			case rule.MethodExact, rule.MethodSubdomains:
				domains++
			case rule.MethodShortcuts, rule.MethodShortcutsAndRegex:
				shortcuts++
			default:
				leftovers++
			}
		}
		return nil
	})
	return domains, shortcuts, leftovers, err
}
