package core

import (
	"strings"
	"testing"
	"time"
)

type fakeTime struct {
	t time.Time
}

func (f *fakeTime) now() time.Time { return f.t }

func (f *fakeTime) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestRecordingMetricsAverage(t *testing.T) {
	ft := &fakeTime{t: time.Unix(0, 0)}
	m := newRecordingMetrics(newClockWithSource(ft.now))

	for _, d := range []time.Duration{2 * time.Millisecond, 4 * time.Millisecond} {
		m.RecordingStarted()
		ft.advance(d)
		m.RecordingEnded()
	}

	m.RecordingStarted()
	ft.advance(time.Second)
	m.RecordingDiscarded()

	if got := m.Average(); got != 3*time.Millisecond {
		t.Errorf("Average() = %v, want 3ms", got)
	}
	if m.Recorded() != 2 || m.Discarded() != 1 {
		t.Errorf("Recorded() = %d, Discarded() = %d", m.Recorded(), m.Discarded())
	}
}

func TestRecordingMetricsKeepsLastSamples(t *testing.T) {
	ft := &fakeTime{t: time.Unix(0, 0)}
	m := newRecordingMetrics(newClockWithSource(ft.now))

	for i := 0; i < AVG_COUNT; i++ {
		m.RecordingStarted()
		ft.advance(time.Hour)
		m.RecordingEnded()
	}
	for i := 0; i < AVG_COUNT; i++ {
		m.RecordingStarted()
		ft.advance(time.Millisecond)
		m.RecordingEnded()
	}
	if got := m.Average(); got != time.Millisecond {
		t.Errorf("Average() = %v, want 1ms", got)
	}
}

func TestRecordingEndedWithoutStart(t *testing.T) {
	m := NewRecordingMetrics()
	m.RecordingEnded()
	if m.Recorded() != 0 || m.Average() != 0 {
		t.Errorf("unexpected sample from an unstarted clock")
	}
}

func TestNewLabel(t *testing.T) {
	if got := NewLabel("encoder", "upload"); got != "upload" {
		t.Errorf("NewLabel kept %q, want upload", got)
	}
	a, b := NewLabel("encoder", ""), NewLabel("encoder", "")
	if !strings.HasPrefix(a, "encoder-") || a == b {
		t.Errorf("generated labels %q and %q should be unique and prefixed", a, b)
	}
}
