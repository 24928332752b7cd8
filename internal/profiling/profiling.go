// Package profiling accumulates wall time per named stage over one frame.
package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	mu     sync.Mutex
	totals = make(map[string]time.Duration)
)

// Track starts timing a stage and returns the function that stops it.
//
//	defer profiling.Track("streaming.Frame")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		totals[name] += d
		mu.Unlock()
	}
}

// ResetFrame clears the totals. Call it at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(totals)
	mu.Unlock()
}

// snapshot returns a copy of the current totals.
func snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(totals))
	for k, v := range totals {
		out[k] = v
	}
	return out
}

// SumWithPrefix returns the total of every stage whose name starts with
// prefix.
func SumWithPrefix(prefix string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	var sum time.Duration
	for k, v := range totals {
		if strings.HasPrefix(k, prefix) {
			sum += v
		}
	}
	return sum
}

// TopN formats the n slowest stages of the frame, slowest first, as
// "streaming.Frame:4.2ms, render.Chunks:2.1ms".
func TopN(n int) string {
	type stage struct {
		name string
		dur  time.Duration
	}
	ss := snapshot()
	list := make([]stage, 0, len(ss))
	for k, v := range ss {
		list = append(list, stage{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].dur != list[j].dur {
			return list[i].dur > list[j].dur
		}
		return list[i].name < list[j].name
	})
	n = min(max(n, 0), len(list))

	parts := make([]string, 0, n)
	for _, s := range list[:n] {
		parts = append(parts, s.name+":"+formatMs(s.dur))
	}
	return strings.Join(parts, ", ")
}

// formatMs renders d in milliseconds with at most one decimal.
func formatMs(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000
	s := strconv.FormatFloat(ms, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + "ms"
}
