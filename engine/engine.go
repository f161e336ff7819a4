// Package engine owns every loaded filter list, enforces the shared memory
// budget across them, runs a query against all of them, and reduces the
// resulting candidate rules to the ones that actually govern the query.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"dnsfilter/config"
	"dnsfilter/filterlist"
	"dnsfilter/rule"
)

// Engine holds every loaded filter list's Index plus the budget they share.
type Engine struct {
	mu      sync.RWMutex
	order   []int
	indices map[int]*filterlist.Index
	sources map[int]filterlist.Source
	budget  *budget
}

// LoadWarning reports filter lists that were only partially loaded because
// they hit the memory budget, the Go analogue of the original's per-filter
// load_result enum value for the mem-limit case.
type LoadWarning struct {
	FilterIDsOverBudget []int
}

// Load builds an Engine from filters, loading each filter list concurrently
// (one goroutine per list, fanned out with errgroup the way the teacher's
// ReloadRules hand-rolls with a WaitGroup) and charging every rule against
// one shared memLimit-byte budget.
func Load(ctx context.Context, filters []config.FilterConfig, memLimit int64) (*Engine, *LoadWarning, error) {
	b := newBudget(memLimit)
	order := make([]int, len(filters))
	for i, fc := range filters {
		order[i] = fc.ID
	}
	e := &Engine{
		order:   order,
		indices: make(map[int]*filterlist.Index, len(filters)),
		sources: make(map[int]filterlist.Source, len(filters)),
		budget:  b,
	}

	var mu sync.Mutex
	warn := &LoadWarning{}

	g, _ := errgroup.WithContext(ctx)
	for _, fc := range filters {
		fc := fc
		g.Go(func() error {
			src := sourceFor(fc)
			idx, err := filterlist.Load(fc.ID, src, b)
			if err != nil {
				if !errors.Is(err, filterlist.ErrMemLimitReached) {
					return fmt.Errorf("engine: loading filter %d: %w", fc.ID, err)
				}
				logrus.WithField("filter_id", fc.ID).Warn("engine: filter list truncated by memory limit")
				mu.Lock()
				warn.FilterIDsOverBudget = append(warn.FilterIDsOverBudget, fc.ID)
				mu.Unlock()
			}

			mu.Lock()
			e.indices[fc.ID] = idx
			e.sources[fc.ID] = src
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if len(warn.FilterIDsOverBudget) == 0 {
		warn = nil
	}
	return e, warn, nil
}

func sourceFor(fc config.FilterConfig) filterlist.Source {
	if fc.InMemory {
		return filterlist.NewMemorySource(fmt.Sprintf("filter-%d", fc.ID), fc.Data)
	}
	return filterlist.NewDiskSource(fc.Path)
}

// Match runs q against every loaded filter list and returns the raw,
// un-reduced candidate rules. Call SelectEffectiveRules on the result
// before acting on it.
func (e *Engine) Match(q filterlist.Query) []rule.MatchedRule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []rule.MatchedRule
	for _, id := range e.order {
		idx, ok := e.indices[id]
		if !ok {
			continue
		}
		out = append(out, filterlist.Match(idx, q)...)
	}
	return out
}

// UpdateIfChanged reloads every disk-backed filter list whose mtime has
// moved past its last load, releasing its old memory charge and reserving
// a fresh one. An in-memory filter list is never stale and is skipped.
func (e *Engine) UpdateIfChanged(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range e.order {
		if err := ctx.Err(); err != nil {
			return err
		}
		idx, ok := e.indices[id]
		if !ok || !idx.Stale() {
			continue
		}

		logrus.WithField("filter_id", id).Info("engine: filter list changed, reloading")
		freed := idx.ApproxMemory()
		e.budget.Release(freed)

		newIdx, err := filterlist.Load(id, e.sources[id], e.budget)
		if err != nil && !errors.Is(err, filterlist.ErrMemLimitReached) {
			if newIdx != nil {
				e.budget.Release(newIdx.ApproxMemory())
			}
			e.budget.Reserve(freed)
			return fmt.Errorf("engine: reloading filter %d: %w", id, err)
		}
		e.indices[id] = newIdx
	}
	return nil
}

// MemoryUsed returns the engine's current total approximate byte footprint
// across every loaded filter list.
func (e *Engine) MemoryUsed() int64 { return e.budget.Used() }
