package stats

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
)

func TestCountersSplitByCommand(t *testing.T) {
	a := NewAggregator()
	a.RecordCompletion("prime", 0.001)
	a.RecordCompletion("prime", 0.002)
	a.RecordCompletion("range", 0.003)
	a.RecordCompletion("count", 0.004)

	snap := a.Snapshot()
	if snap.TotalRequests != 4 || snap.PrimeChecks != 2 || snap.RangeRequests != 1 || snap.RangeCounts != 1 {
		t.Fatalf("unexpected counters: %+v", snap)
	}
	if snap.TotalRequests != snap.PrimeChecks+snap.RangeRequests+snap.RangeCounts {
		t.Fatalf("counter invariant broken: %+v", snap)
	}
}

func TestAverageAndMaxDerivation(t *testing.T) {
	a := NewAggregator()
	if got := a.Snapshot().AverageDurationSec; got != 0 {
		t.Fatalf("average before any request = %v, want 0", got)
	}
	a.RecordCompletion("prime", 0.25)
	a.RecordCompletion("prime", 0.75)
	snap := a.Snapshot()
	if snap.AverageDurationSec != 0.5 {
		t.Fatalf("average = %v, want 0.5", snap.AverageDurationSec)
	}
	if snap.MaxDurationSec != 0.75 {
		t.Fatalf("max = %v, want 0.75", snap.MaxDurationSec)
	}
}

func TestDurationsRoundedToSixDigits(t *testing.T) {
	a := NewAggregator()
	a.RecordCompletion("prime", 0.1234567891)
	snap := a.Snapshot()
	if snap.AverageDurationSec != 0.123457 {
		t.Fatalf("average = %v, want 0.123457", snap.AverageDurationSec)
	}
	if snap.MaxDurationSec != 0.123457 {
		t.Fatalf("max = %v, want 0.123457", snap.MaxDurationSec)
	}
}

func TestLastErrorIsNullUntilSet(t *testing.T) {
	a := NewAggregator()
	raw, err := json.Marshal(a.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"last_error":null`) {
		t.Fatalf("expected null last_error, got %s", raw)
	}
	a.SetLastError("unknown command: bogus")
	snap := a.Snapshot()
	if snap.LastError == nil || *snap.LastError != "unknown command: bogus" {
		t.Fatalf("unexpected last_error: %v", snap.LastError)
	}
}

func TestSessionCounters(t *testing.T) {
	a := NewAggregator()
	a.SetActiveClients(3)
	a.IncrementCompletedClients()
	a.IncrementCompletedClients()
	snap := a.Snapshot()
	if snap.ActiveClients != 3 || snap.CompletedClients != 2 {
		t.Fatalf("unexpected session counters: %+v", snap)
	}
}

func TestConcurrentRecordingKeepsInvariant(t *testing.T) {
	a := NewAggregator()
	const goroutines = 8
	const perGoroutine = 250

	var wg sync.WaitGroup
	commands := []string{"prime", "range", "count"}
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				a.RecordCompletion(commands[(i+j)%len(commands)], 0.0001)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			snap := a.Snapshot()
			if snap.TotalRequests != snap.PrimeChecks+snap.RangeRequests+snap.RangeCounts {
				t.Errorf("inconsistent snapshot: %+v", snap)
				return
			}
		}
	}()

	wg.Wait()
	<-done

	snap := a.Snapshot()
	if snap.TotalRequests != goroutines*perGoroutine {
		t.Fatalf("total = %d, want %d", snap.TotalRequests, goroutines*perGoroutine)
	}
}
