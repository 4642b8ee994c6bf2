package exporter

import (
	"fmt"
	"time"
)

// Stats tracks how an export run went.
type Stats struct {
	ExportedRecords int
	FailedRecords   int
	StartTime       time.Time
	EndTime         time.Time
}

// NewStats returns a Stats with the clock already running.
func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

// Finish stamps the end time.
func (s *Stats) Finish() {
	s.EndTime = time.Now()
}

// Duration returns the elapsed export time, or zero when not finished.
func (s *Stats) Duration() time.Duration {
	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// RecordsPerSecond returns the export throughput, or zero for an
// instantaneous or unfinished run.
func (s *Stats) RecordsPerSecond() float64 {
	d := s.Duration()
	if d <= 0 {
		return 0
	}
	return float64(s.ExportedRecords) / d.Seconds()
}

// SuccessRate returns the percentage of records exported successfully.
func (s *Stats) SuccessRate() float64 {
	total := s.ExportedRecords + s.FailedRecords
	if total == 0 {
		return 0
	}
	return float64(s.ExportedRecords) / float64(total) * 100
}

// Merge folds another run's counters into s, keeping the earliest start and
// the latest end.
func (s *Stats) Merge(other *Stats) {
	s.ExportedRecords += other.ExportedRecords
	s.FailedRecords += other.FailedRecords

	if !other.StartTime.IsZero() && (s.StartTime.IsZero() || other.StartTime.Before(s.StartTime)) {
		s.StartTime = other.StartTime
	}
	if other.EndTime.After(s.EndTime) {
		s.EndTime = other.EndTime
	}
}

func (s *Stats) String() string {
	out := fmt.Sprintf("exported: %d, failed: %d", s.ExportedRecords, s.FailedRecords)
	if d := s.Duration(); d > 0 {
		out += fmt.Sprintf(", took: %.2fs, rate: %.1f records/s", d.Seconds(), s.RecordsPerSecond())
	}
	return fmt.Sprintf("%s, success: %.1f%%", out, s.SuccessRate())
}
