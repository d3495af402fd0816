package pipeline

import (
	"golang.org/x/sync/errgroup"
)

// fanOut runs fn once per item concurrently and waits for all of them. The
// first error is returned; units already running are left to finish.
func fanOut[T, R any](items []T, fn func(T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	var g errgroup.Group
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			r, err := fn(item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
