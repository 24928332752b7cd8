package profiling

import (
	"testing"
	"time"
)

func record(name string, d time.Duration) {
	mu.Lock()
	totals[name] += d
	mu.Unlock()
}

func TestTopNOrdersSlowestFirst(t *testing.T) {
	ResetFrame()
	record("streaming.Upload", 1500*time.Microsecond)
	record("streaming.Frame", 4200*time.Microsecond)
	record("render.Chunks", 2*time.Millisecond)

	if got, want := TopN(2), "streaming.Frame:4.2ms, render.Chunks:2ms"; got != want {
		t.Fatalf("TopN(2) = %q, want %q", got, want)
	}
	if got := TopN(10); got != "streaming.Frame:4.2ms, render.Chunks:2ms, streaming.Upload:1.5ms" {
		t.Fatalf("TopN(10) = %q", got)
	}
	if got := TopN(0); got != "" {
		t.Fatalf("TopN(0) = %q", got)
	}
}

func TestSumWithPrefix(t *testing.T) {
	ResetFrame()
	record("streaming.Upload", time.Millisecond)
	record("streaming.Submit", 2*time.Millisecond)
	record("render.Chunks", 5*time.Millisecond)

	if got := SumWithPrefix("streaming."); got != 3*time.Millisecond {
		t.Fatalf("sum = %v, want 3ms", got)
	}
}

func TestTrackAccumulates(t *testing.T) {
	ResetFrame()
	for i := 0; i < 3; i++ {
		stop := Track("stage")
		time.Sleep(time.Millisecond)
		stop()
	}
	if got := snapshot()["stage"]; got < 3*time.Millisecond {
		t.Fatalf("tracked %v, want at least 3ms", got)
	}
	ResetFrame()
	if len(snapshot()) != 0 {
		t.Fatalf("ResetFrame left totals behind")
	}
}
