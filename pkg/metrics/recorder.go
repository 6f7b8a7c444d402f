package metrics

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"easyfilter/pkg/log"
)

// Metric names recorded by the scanner.
const (
	MFrame   = "Frame"   // Grabbing one frame from the camera.
	MDecode  = "Decode"  // One decode attempt on a frame.
	MSession = "Session" // A whole scan, from Start to result or stop.
	MLabel   = "Label"   // Rendering one PDF label.
)

// Recorder collects wall-clock samples per metric name. It is safe for
// concurrent use; a nil *Recorder records nothing.
type Recorder struct {
	printDebug bool

	mu      sync.Mutex
	samples map[string][]time.Duration
}

// NewRecorder creates an empty recorder. With printDebug each sample is logged.
func NewRecorder(printDebug bool) *Recorder {
	return &Recorder{
		printDebug: printDebug,
		samples:    make(map[string][]time.Duration),
	}
}

// Record wraps a function call, measuring its wall-clock time.
// The sample is kept even if f fails.
func (r *Recorder) Record(name string, f func() error) error {
	if r == nil {
		return f()
	}
	start := time.Now()
	err := f()
	r.Add(name, time.Since(start))
	return err
}

// Add stores a sample measured elsewhere.
func (r *Recorder) Add(name string, d time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.samples[name] = append(r.samples[name], d)
	r.mu.Unlock()

	if r.printDebug {
		log.Info("[METRIC: %s] Wall: %s", name, d)
	}
}

// Count returns the number of samples for name.
func (r *Recorder) Count(name string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples[name])
}

// Summaries computes a StatSummary per metric name.
func (r *Recorder) Summaries() map[string]StatSummary {
	out := make(map[string]StatSummary)
	if r == nil {
		return out
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, ds := range r.samples {
		out[name] = calculateStats(ds)
	}
	return out
}

// PrintSummary writes one line per metric, sorted by name.
func (r *Recorder) PrintSummary(w io.Writer) {
	summaries := r.Summaries()
	names := make([]string, 0, len(summaries))
	for name := range summaries {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "-------------------------------------------------")
	for _, name := range names {
		s := summaries[name]
		fmt.Fprintf(w, "%-8s n=%-5d mean=%-10s p50=%-10s p95=%-10s max=%s\n",
			name, s.Count, s.Mean, s.P50, s.P95, s.Max)
	}
	fmt.Fprintln(w, "-------------------------------------------------")
}
