package models

// Metadata keys retained from nested MetadataEntry elements. Every other
// key found in the export is discarded.
const (
	MetadataKeyActivityType       = "HKActivityType"
	MetadataKeyPhysicalEffortType = "HKPhysicalEffortEstimationType"
)

// HealthRecord is one extracted record from the health export document.
// Value is kept as the raw attribute text rather than parsed to a float:
// category records carry non-numeric payloads (sleep stages, event labels)
// that an eager numeric parse would silently drop.
type HealthRecord struct {
	Type      string            `json:"type"`
	Unit      string            `json:"unit,omitempty"`
	Value     string            `json:"value,omitempty"`
	StartDate string            `json:"startDate,omitempty"`
	EndDate   string            `json:"endDate,omitempty"`
	Metadata  map[string]string `json:"metadata"`
}

// ExtractResult is the materialized outcome of a pipeline run. Records
// preserve the relative order of their units in the source document.
type ExtractResult struct {
	Records   []HealthRecord `json:"records"`
	UnitCount int            `json:"unit_count"`
	CacheHit  bool           `json:"cache_hit"`
	Timing    TimingRecord   `json:"timing"`
}
