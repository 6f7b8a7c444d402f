// Package concurrency runs a function over a slice on a fixed number of workers.
package concurrency

import (
	"sync"
)

// Map applies f to every item and returns the results in input order.
// With workers <= 1, or a single item, it runs sequentially and stops at the
// first error. Otherwise every item is attempted and the error of the
// lowest failing index is returned.
func Map[T any, U any](workers int, items []T, f func(item T) (U, error)) ([]U, error) {
	results := make([]U, len(items))
	if workers <= 1 || len(items) < 2 {
		for i, item := range items {
			res, err := f(item)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
		return results, nil
	}

	errs := make([]error, len(items))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(workers, len(items)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = f(items[i])
			}
		}()
	}
	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
