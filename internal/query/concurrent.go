package query

import "sync"

// runConcurrent fans out n independent thunks and fans their results back
// in index order, ported from the teacher's executeConcurrent
// (composite_queries.go): a WaitGroup plus an index-tagged wrapper struct
// collected through a buffered channel. Used for either_or's two branches;
// grouped partitions are reduced one after another, not through this helper.
func runConcurrent[T any](thunks []func() (T, error)) ([]T, error) {
	type wrapped struct {
		index int
		value T
		err   error
	}

	results := make([]T, len(thunks))
	resCh := make(chan wrapped, len(thunks))

	var wg sync.WaitGroup
	wg.Add(len(thunks))

	for i, thunk := range thunks {
		go func(i int, thunk func() (T, error)) {
			defer wg.Done()
			v, err := thunk()
			resCh <- wrapped{index: i, value: v, err: err}
		}(i, thunk)
	}

	go func() {
		wg.Wait()
		close(resCh)
	}()

	var firstErr error
	for w := range resCh {
		if w.err != nil && firstErr == nil {
			firstErr = w.err
			continue
		}
		results[w.index] = w.value
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
