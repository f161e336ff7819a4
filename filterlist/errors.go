package filterlist

import "errors"

// ErrMemLimitReached is returned (alongside the partial index)
// from Load when the filter list's memory budget ran out partway through
// insertion. The caller gets a usable, truncated index rather than nothing.
var ErrMemLimitReached = errors.New("filterlist: memory limit reached while loading")
