package models

import "time"

// TimingRecord stores timing data for a completed extraction run.
// Used for the end-of-run summary and for debugging slow exports.
type TimingRecord struct {
	RunID       string           `json:"run_id"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
	TotalMs     int64            `json:"total_ms"`
	Phases      map[string]int64 `json:"phases,omitempty"`
	Status      string           `json:"status"` // "success" or "failed"
	Error       string           `json:"error,omitempty"`
}

// Phase names recorded in TimingRecord.Phases.
const (
	PhaseRead      = "read"
	PhaseSegment   = "segment"
	PhaseParse     = "parse"
	PhaseSerialize = "serialize"
)

// MarkPhase records the elapsed milliseconds for a named phase.
func (t *TimingRecord) MarkPhase(name string, elapsed time.Duration) {
	if t.Phases == nil {
		t.Phases = make(map[string]int64)
	}
	t.Phases[name] = elapsed.Milliseconds()
}
