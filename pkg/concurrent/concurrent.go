package concurrent

import (
	"golang.org/x/sync/errgroup"
)

// MapOrdered applies fn to every element of in on its own goroutine and
// returns the results in input order. At most workers calls run at once; a
// non-positive workers value means no limit. It waits for every call and
// returns the first error encountered.
func MapOrdered[T any, R any](in []T, workers int, fn func(T) (R, error)) ([]R, error) {
	out := make([]R, len(in))
	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}

	for idx, val := range in {
		g.Go(func() error {
			r, err := fn(val)
			if err != nil {
				return err
			}
			out[idx] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
