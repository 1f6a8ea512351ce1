// Package stats aggregates server-wide request and session counters behind
// a single mutex so every snapshot reflects one consistent point in time.
package stats

import (
	"math"
	"sync"
)

// Snapshot is a consistent copy of the aggregator state, shaped for the
// stats command payload. Durations are rounded to 6 decimal digits.
type Snapshot struct {
	TotalRequests      int64   `json:"total_requests"`
	PrimeChecks        int64   `json:"prime_checks"`
	RangeRequests      int64   `json:"range_requests"`
	RangeCounts        int64   `json:"range_counts"`
	AverageDurationSec float64 `json:"average_duration_sec"`
	MaxDurationSec     float64 `json:"max_duration_sec"`
	ActiveClients      int64   `json:"active_clients"`
	CompletedClients   int64   `json:"completed_clients"`
	LastError          *string `json:"last_error"`
}

// Aggregator is the one piece of state shared across all sessions. All
// mutations and reads take the same mutex.
type Aggregator struct {
	mu                 sync.Mutex
	totalRequests      int64
	primeChecks        int64
	rangeRequests      int64
	rangeCounts        int64
	cumulativeDuration float64
	maxDuration        float64
	activeClients      int64
	completedClients   int64
	lastError          string
	hasLastError       bool
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// RecordCompletion counts one finished request under its command and folds
// the measured duration into the cumulative and max figures. Only the three
// compute commands reach here; stats queries do not touch counters.
func (a *Aggregator) RecordCompletion(command string, seconds float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalRequests++
	switch command {
	case "prime":
		a.primeChecks++
	case "range":
		a.rangeRequests++
	case "count":
		a.rangeCounts++
	}
	a.cumulativeDuration += seconds
	if seconds > a.maxDuration {
		a.maxDuration = seconds
	}
}

func (a *Aggregator) SetActiveClients(n int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.activeClients = n
}

func (a *Aggregator) IncrementCompletedClients() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.completedClients++
}

func (a *Aggregator) SetLastError(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = msg
	a.hasLastError = true
}

// Snapshot returns a consistent copy. The average is derived, not stored:
// cumulative duration over total requests, zero while no request completed.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	average := 0.0
	if a.totalRequests > 0 {
		average = a.cumulativeDuration / float64(a.totalRequests)
	}
	snap := Snapshot{
		TotalRequests:      a.totalRequests,
		PrimeChecks:        a.primeChecks,
		RangeRequests:      a.rangeRequests,
		RangeCounts:        a.rangeCounts,
		AverageDurationSec: round6(average),
		MaxDurationSec:     round6(a.maxDuration),
		ActiveClients:      a.activeClients,
		CompletedClients:   a.completedClients,
	}
	if a.hasLastError {
		msg := a.lastError
		snap.LastError = &msg
	}
	return snap
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
