// Package dispatch routes decoded commands to the compute functions through
// the shared worker pool, measures wall-clock duration, and feeds the stats
// aggregator and metrics.
package dispatch

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"primecalc/go-server/internal/metrics"
	"primecalc/go-server/internal/primes"
	"primecalc/go-server/internal/protocol"
	"primecalc/go-server/internal/stats"
	"primecalc/go-server/internal/workerpool"
)

// Oversized range listings are cut to this many entries; the reported count
// stays the true total.
const rangeResultLimit = 200

type PrimeResult struct {
	Number  int  `json:"number"`
	IsPrime bool `json:"is_prime"`
}

type RangeResult struct {
	Start       int     `json:"start"`
	End         int     `json:"end"`
	Count       int     `json:"count"`
	Primes      []int   `json:"primes"`
	Truncated   bool    `json:"truncated"`
	DurationSec float64 `json:"duration_sec"`
}

type CountResult struct {
	Start       int     `json:"start"`
	End         int     `json:"end"`
	Count       int     `json:"count"`
	DurationSec float64 `json:"duration_sec"`
}

type Dispatcher struct {
	pool    *workerpool.Pool
	stats   *stats.Aggregator
	metrics *metrics.Metrics
}

// New builds a dispatcher around a fresh pool of the given size. The metrics
// argument may be nil.
func New(workers int, agg *stats.Aggregator, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		pool:    workerpool.New(workers),
		stats:   agg,
		metrics: m,
	}
}

func (d *Dispatcher) Stats() *stats.Aggregator { return d.stats }

// Dispatch runs one decoded command and returns its response payload.
// Protocol violations come back as *protocol.Error; anything else is an
// internal failure the session reports generically.
func (d *Dispatcher) Dispatch(msg protocol.Message) (any, error) {
	switch msg.Command {
	case "prime":
		number, err := requireInt(msg.Data, "number")
		if err != nil {
			return nil, err
		}
		return d.executePrime(number)
	case "range":
		start, end, err := requireIntPair(msg.Data)
		if err != nil {
			return nil, err
		}
		return d.executeRange(start, end)
	case "count":
		start, end, err := requireIntPair(msg.Data)
		if err != nil {
			return nil, err
		}
		return d.executeCount(start, end)
	case "stats":
		return d.stats.Snapshot(), nil
	default:
		return nil, protocol.Errorf("unknown command: %s", msg.Command)
	}
}

// Close shuts down the worker pool, waiting for outstanding submissions.
func (d *Dispatcher) Close() {
	d.pool.Close()
}

func (d *Dispatcher) executePrime(number int) (any, error) {
	started := time.Now()
	result, err := d.pool.Submit(func() any { return primes.IsPrime(number) })
	if err != nil {
		return nil, fmt.Errorf("submit prime check: %w", err)
	}
	d.record("prime", time.Since(started))
	return PrimeResult{Number: number, IsPrime: result.(bool)}, nil
}

func (d *Dispatcher) executeRange(start, end int) (any, error) {
	started := time.Now()
	result, err := d.pool.Submit(func() any { return primes.InRange(start, end) })
	if err != nil {
		return nil, fmt.Errorf("submit range listing: %w", err)
	}
	elapsed := time.Since(started)
	d.record("range", elapsed)

	found := result.([]int)
	listed := found
	if len(found) > rangeResultLimit {
		listed = found[:rangeResultLimit]
	}
	if listed == nil {
		listed = []int{}
	}
	return RangeResult{
		Start:       start,
		End:         end,
		Count:       len(found),
		Primes:      listed,
		Truncated:   len(found) > rangeResultLimit,
		DurationSec: roundSeconds(elapsed),
	}, nil
}

func (d *Dispatcher) executeCount(start, end int) (any, error) {
	started := time.Now()
	result, err := d.pool.Submit(func() any { return primes.Count(start, end) })
	if err != nil {
		return nil, fmt.Errorf("submit range count: %w", err)
	}
	elapsed := time.Since(started)
	d.record("count", elapsed)
	return CountResult{
		Start:       start,
		End:         end,
		Count:       result.(int),
		DurationSec: roundSeconds(elapsed),
	}, nil
}

func (d *Dispatcher) record(command string, elapsed time.Duration) {
	seconds := elapsed.Seconds()
	d.stats.RecordCompletion(command, seconds)
	d.metrics.ObserveRequest(command, seconds)
}

func requireIntPair(data map[string]any) (int, int, error) {
	start, err := requireInt(data, "start")
	if err != nil {
		return 0, 0, err
	}
	end, err := requireInt(data, "end")
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// requireInt extracts a required integer field. Fractional JSON numbers are
// rejected the same as missing or non-numeric values.
func requireInt(data map[string]any, key string) (int, error) {
	switch v := data[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			break
		}
		return int(n), nil
	case int:
		return v, nil
	}
	return 0, protocol.Errorf("field '%s' must be an integer", key)
}

func roundSeconds(elapsed time.Duration) float64 {
	return math.Round(elapsed.Seconds()*1e6) / 1e6
}
