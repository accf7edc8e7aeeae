package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	"memberlink/pkg/platform/sentinel"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes  int32
	Duplicates int32
	Errors     int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Duplicates + r.Errors
}

// RunConcurrent executes fn in parallel goroutines and buckets the results.
// sentinel.ErrAlreadyUsed counts as a duplicate, any other error as a failure.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, dups, errs atomic.Int32

	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				dups.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}
	wg.Wait()

	return &ConcurrentResult{
		Successes:  successes.Load(),
		Duplicates: dups.Load(),
		Errors:     errs.Load(),
	}
}
