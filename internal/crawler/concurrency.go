package crawler

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ItemResult tallies the outcome of a ForEachLimit run.
type ItemResult struct {
	Processed    int
	Succeeded    int
	Failed       int
	Skipped      int
	FailureKinds map[string]int
	SkipKinds    map[string]int
}

func (r *ItemResult) record(err error) {
	r.Processed++
	if err == nil {
		r.Succeeded++
		return
	}
	kind := KindOf(err)
	if IsEmptyResult(err) {
		r.Skipped++
		r.SkipKinds = mergeKind(r.SkipKinds, kind)
		return
	}
	r.Failed++
	r.FailureKinds = mergeKind(r.FailureKinds, kind)
}

// ForEachLimit calls fn for every item with at most limit calls in flight.
// One item failing does not stop the others; a canceled ctx stops handing
// out new items. Errors reporting an empty result count as skipped.
func ForEachLimit[T any](ctx context.Context, items []T, limit int, fn func(context.Context, T) error) ItemResult {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		mu  sync.Mutex
		out ItemResult
		g   errgroup.Group
	)
	g.SetLimit(max(limit, 1))
	for _, it := range items {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			err := fn(ctx, it)
			mu.Lock()
			out.record(err)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func mergeKind(m map[string]int, kind ErrorKind) map[string]int {
	if kind == "" {
		kind = ErrorKindUnknown
	}
	if m == nil {
		m = map[string]int{}
	}
	m[string(kind)]++
	return m
}
