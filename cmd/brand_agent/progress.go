package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/jonathan/brand-studio/internal/pipeline"
)

// progressPrinter writes one line per step transition. Content runs report
// from two goroutines, so writes are serialized.
func progressPrinter(w io.Writer) pipeline.ProgressCallback {
	var mu sync.Mutex
	return func(event pipeline.ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		if event.Message != "" {
			fmt.Fprintf(w, "[%s] %-10s %s\n", event.Step, event.Status, event.Message) //nolint:errcheck
			return
		}
		fmt.Fprintf(w, "[%s] %s\n", event.Step, event.Status) //nolint:errcheck
	}
}
