// Package diag implements the warning aggregator of spec.md §7: rather
// than logging one line per malformed record (which would drown a
// multi-million-segment run), every dropped/malformed input is counted
// by kind, and only the first offender of each kind is retained as a
// sample for the final report.
package diag

import (
	"fmt"
	"sort"
	"sync"
)

// Kind identifies why a segment was dropped or a value coerced away,
// per the recoverable conditions spec.md §7 lists.
type Kind string

const (
	MalformedWKB      Kind = "malformed_wkb"
	UnsupportedGeom   Kind = "unsupported_geometry"
	ZeroLengthSegment Kind = "zero_length_segment"
	ClosedFerry       Kind = "closed_ferry_dropped"
	MalformedNumeric  Kind = "malformed_numeric_value"
)

// Aggregator counts warnings by kind and retains one sample per kind.
// Safe for concurrent use. The partition driver gives each chunk its
// own Aggregator and combines them afterwards with Merge.
type Aggregator struct {
	mu      sync.Mutex
	counts  map[Kind]int
	samples map[Kind]string
}

// New creates an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{
		counts:  make(map[Kind]int),
		samples: make(map[Kind]string),
	}
}

// Record increments kind's count and, if this is the first occurrence,
// stores sample (e.g. a segment identifier or error string) for the
// final report.
func (a *Aggregator) Record(kind Kind, sample string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counts[kind]++
	if _, ok := a.samples[kind]; !ok {
		a.samples[kind] = sample
	}
}

// Count returns how many times kind has been recorded.
func (a *Aggregator) Count(kind Kind) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts[kind]
}

// Total returns the sum of every kind's count.
func (a *Aggregator) Total() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	var total int
	for _, c := range a.counts {
		total += c
	}
	return total
}

// Merge folds another Aggregator's counts and samples into a, keeping
// a's own sample for any kind both hold (first-wins by merge order) —
// used to combine per-chunk aggregators from the partition driver.
func (a *Aggregator) Merge(other *Aggregator) {
	other.mu.Lock()
	counts := make(map[Kind]int, len(other.counts))
	for k, v := range other.counts {
		counts[k] = v
	}
	samples := make(map[Kind]string, len(other.samples))
	for k, v := range other.samples {
		samples[k] = v
	}
	other.mu.Unlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	for k, v := range counts {
		a.counts[k] += v
		if _, ok := a.samples[k]; !ok {
			a.samples[k] = samples[k]
		}
	}
}

// Report renders a deterministic, human-readable summary for log
// output, one line per kind seen, ordered alphabetically by kind.
func (a *Aggregator) Report() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.counts) == 0 {
		return "no warnings"
	}
	kinds := make([]string, 0, len(a.counts))
	for k := range a.counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	out := ""
	for i, k := range kinds {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%s: %d (e.g. %s)", k, a.counts[Kind(k)], a.samples[Kind(k)])
	}
	return out
}
