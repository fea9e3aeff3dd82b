package stats

import (
	"sync"
	"time"
)

// Stats is the shared record of probe outcomes. The prober is its only
// writer; the status server reads it through Snapshot.
type Stats struct {
	mutex               sync.RWMutex
	startTime           time.Time
	totalPings          int64
	successfulPings     int64
	failedPings         int64
	lastPing            time.Time
	lastSuccess         time.Time
	consecutiveFailures int
}

// Snapshot is a point-in-time copy of the statistics record, shaped for
// JSON encoding on the /stats route. LastPing and LastSuccess are null
// until the first cycle / first success.
type Snapshot struct {
	StartTime           time.Time  `json:"start_time"`
	TotalPings          int64      `json:"total_pings"`
	SuccessfulPings     int64      `json:"successful_pings"`
	FailedPings         int64      `json:"failed_pings"`
	LastPing            *time.Time `json:"last_ping"`
	LastSuccess         *time.Time `json:"last_success"`
	UptimePercentage    float64    `json:"uptime_percentage"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
}

// New creates a statistics record with the start time set to now.
func New() *Stats {
	return &Stats{
		startTime: time.Now().UTC(),
	}
}

// BeginCycle marks the start of a probe cycle: it counts the cycle and
// records the cycle timestamp.
func (s *Stats) BeginCycle() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.totalPings++
	s.lastPing = time.Now().UTC()
}

// RecordSuccess marks the current cycle successful and resets the
// consecutive failure streak.
func (s *Stats) RecordSuccess() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.successfulPings++
	s.lastSuccess = time.Now().UTC()
	s.consecutiveFailures = 0
}

// RecordFailure marks the current cycle as fully failed and extends the
// consecutive failure streak.
func (s *Stats) RecordFailure() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.failedPings++
	s.consecutiveFailures++
}

// ConsecutiveFailures returns the current failure streak length.
func (s *Stats) ConsecutiveFailures() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.consecutiveFailures
}

// TotalPings returns the number of cycles counted so far.
func (s *Stats) TotalPings() int64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.totalPings
}

// Snapshot returns a consistent copy of the record taken under the lock.
// Uptime percentage is 100.0 until the first cycle completes.
func (s *Stats) Snapshot() Snapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	snap := Snapshot{
		StartTime:           s.startTime,
		TotalPings:          s.totalPings,
		SuccessfulPings:     s.successfulPings,
		FailedPings:         s.failedPings,
		UptimePercentage:    100.0,
		ConsecutiveFailures: s.consecutiveFailures,
	}

	if s.totalPings > 0 {
		snap.UptimePercentage = float64(s.successfulPings) / float64(s.totalPings) * 100
	}

	if !s.lastPing.IsZero() {
		t := s.lastPing
		snap.LastPing = &t
	}
	if !s.lastSuccess.IsZero() {
		t := s.lastSuccess
		snap.LastSuccess = &t
	}

	return snap
}
