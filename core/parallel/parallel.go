// Package parallel distributes row loops across CPU cores for the kernel
// matrix builders.
package parallel

import (
	"runtime"
	"sync"
)

// Rows runs fn concurrently over the rows [0, items). Each worker goroutine
// receives an offset and a stride and owns the rows offset, offset+stride,
// offset+2·stride, and so on. Interleaving keeps workers balanced when later
// rows are cheaper than earlier ones, as in a triangular Gram loop. Rows
// returns after every worker has finished.
func Rows(items int, fn func(offset, stride int)) {
	if items == 0 {
		return
	}

	workers := runtime.NumCPU()
	if workers > items {
		workers = items
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(offset int) {
			defer wg.Done()
			fn(offset, workers)
		}(w)
	}
	wg.Wait()
}

// RowsWithThreshold runs fn(0, 1) on the calling goroutine when items is at
// or below threshold, avoiding goroutine overhead on small inputs, and falls
// back to Rows otherwise.
func RowsWithThreshold(items int, threshold int, fn func(offset, stride int)) {
	if items <= threshold {
		fn(0, 1)
		return
	}
	Rows(items, fn)
}
