package core

import (
	"time"

	"github.com/spaghettifunk/anima-hal/engine/containers"
)

const AVG_COUNT = 30

// RecordingMetrics tracks how long command buffers stay open between begin
// and end, averaged over the last AVG_COUNT recordings.
type RecordingMetrics struct {
	clock     *Clock
	samples   *containers.RingQueue[time.Duration]
	recorded  uint64
	discarded uint64
}

func NewRecordingMetrics() *RecordingMetrics {
	return newRecordingMetrics(NewClock())
}

func newRecordingMetrics(clock *Clock) *RecordingMetrics {
	return &RecordingMetrics{
		clock:   clock,
		samples: containers.NewRingQueue[time.Duration](AVG_COUNT),
	}
}

// RecordingStarted marks the beginning of a recording.
func (m *RecordingMetrics) RecordingStarted() {
	m.clock.Start()
}

// RecordingEnded stores the duration of the current recording.
func (m *RecordingMetrics) RecordingEnded() {
	if !m.clock.Running() {
		return
	}
	m.clock.Stop()
	m.samples.Push(m.clock.Elapsed())
	m.recorded++
}

// RecordingDiscarded stops the clock without keeping a sample.
func (m *RecordingMetrics) RecordingDiscarded() {
	m.clock.Stop()
	m.discarded++
}

// Average returns the mean recording time over the kept samples.
func (m *RecordingMetrics) Average() time.Duration {
	if m.samples.IsEmpty() {
		return 0
	}
	var total time.Duration
	m.samples.Each(func(d time.Duration) { total += d })
	return total / time.Duration(m.samples.Len())
}

func (m *RecordingMetrics) Recorded() uint64 {
	return m.recorded
}

func (m *RecordingMetrics) Discarded() uint64 {
	return m.discarded
}
