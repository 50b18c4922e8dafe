package util

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

type TimerState struct {
	name         string
	lastDuration float64

	totalDuration  float64
	executionCount int64

	minDuration float64
	maxDuration float64
	samples     []float64
}

func (t *TimerState) Average() float64 {
	if t.executionCount == 0 {
		return 0
	}
	return t.totalDuration / float64(t.executionCount)
}

func (t *TimerState) Min() float64 {
	if t.executionCount == 0 {
		return 0
	}
	return t.minDuration
}

func (t *TimerState) Max() float64 {
	if t.executionCount == 0 {
		return 0
	}
	return t.maxDuration
}

// Percentile returns the p-th percentile (0..100) of all recorded durations in
// milliseconds, using nearest rank.
func (t *TimerState) Percentile(p float64) float64 {
	if len(t.samples) == 0 {
		return 0
	}
	sorted := append([]float64(nil), t.samples...)
	sort.Float64s(sorted)
	rank := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}

func (t *TimerState) String() string {
	return fmt.Sprintf("%s n=%d last: %.3fms, avg: %.3fms, p95: %.3fms\n> min: %.3fms, max: %.3fms", t.name, t.executionCount, t.lastDuration, t.Average(), t.Percentile(95), t.Min(), t.Max())
}

func (t *TimerState) record(durationInMS float64) {
	t.lastDuration = durationInMS
	t.totalDuration += durationInMS
	t.executionCount++
	t.samples = append(t.samples, durationInMS)
	if durationInMS < t.minDuration {
		t.minDuration = durationInMS
	}
	if durationInMS > t.maxDuration {
		t.maxDuration = durationInMS
	}
}

// Timer collects named wall clock measurements in milliseconds. It is not
// safe for concurrent use.
type Timer struct {
	states     map[string]*TimerState
	timerNames []string
}

func NewTimer() *Timer {
	return &Timer{
		states: make(map[string]*TimerState),
	}
}

func (t *Timer) String() string {
	var sb strings.Builder
	for _, name := range t.timerNames {
		sb.WriteString(t.states[name].String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Start begins a measurement; calling the returned func stops it and returns
// the elapsed milliseconds.
func (t *Timer) Start(name string) func() float64 {
	state, ok := t.states[name]
	if !ok {
		t.timerNames = append(t.timerNames, name)
		state = &TimerState{
			name:        name,
			minDuration: math.MaxFloat64,
			maxDuration: -math.MaxFloat64,
		}
		t.states[name] = state
	}
	start := time.Now()
	return func() float64 {
		durationInMS := float64(time.Since(start).Microseconds()) / 1000.0
		state.record(durationInMS)
		return durationInMS
	}
}
