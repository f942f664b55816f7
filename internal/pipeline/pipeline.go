// Package pipeline orchestrates the extraction run: cache resolution,
// segmentation, and the ordered parallel fan-out of the unit parser.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/vitals/internal/archive"
	"github.com/ternarybob/vitals/internal/cache"
	"github.com/ternarybob/vitals/internal/common"
	"github.com/ternarybob/vitals/internal/models"
	"github.com/ternarybob/vitals/internal/parser"
)

// Service runs the extraction pipeline end to end.
type Service struct {
	config *common.Config
	cache  *cache.Service
	logger arbor.ILogger
}

// NewService creates a pipeline service. The content cache is wired to the
// archive loader as its miss producer.
func NewService(config *common.Config, logger arbor.ILogger) *Service {
	loader := func(path string) (string, error) {
		return archive.ExtractEntry(path, config.Input.EntryName)
	}

	return &Service{
		config: config,
		cache:  cache.NewService(config.Cache.Dir, loader, logger),
		logger: logger,
	}
}

// Run executes one extraction: resolve the document text, segment it into
// record units, parse the units in parallel, and materialize the surviving
// records in source order. The run either completes or fails as a whole;
// there is no partial-result delivery.
func (s *Service) Run(ctx context.Context) (*models.ExtractResult, error) {
	runID := "run_" + uuid.New().String()
	startedAt := time.Now()

	result := &models.ExtractResult{
		Timing: models.TimingRecord{
			RunID:     runID,
			StartedAt: startedAt,
		},
	}

	s.logger.Info().
		Str("run_id", runID).
		Str("archive", s.config.Input.ArchivePath).
		Msg("Starting extraction")

	// Resolve the document before fan-out: the cache write is a single
	// sequential step, so workers never race on a cache entry.
	tRead := time.Now()
	doc, hit, err := s.cache.Resolve(s.config.Input.ArchivePath)
	if err != nil {
		result.Timing.Status = "failed"
		result.Timing.Error = err.Error()
		return result, fmt.Errorf("read export document: %w", err)
	}
	result.CacheHit = hit
	result.Timing.MarkPhase(models.PhaseRead, time.Since(tRead))

	s.logger.Info().
		Str("run_id", runID).
		Bool("cache_hit", hit).
		Int("bytes", len(doc)).
		Float64("duration_sec", time.Since(tRead).Seconds()).
		Msg("Export document loaded")

	if err := ctx.Err(); err != nil {
		result.Timing.Status = "failed"
		result.Timing.Error = err.Error()
		return result, err
	}

	tSegment := time.Now()
	units := parser.Segment(doc)
	result.UnitCount = len(units)
	result.Timing.MarkPhase(models.PhaseSegment, time.Since(tSegment))

	s.logger.Info().
		Str("run_id", runID).
		Int("units", len(units)).
		Float64("duration_sec", time.Since(tSegment).Seconds()).
		Msg("Document segmented")

	tParse := time.Now()
	unitParser := parser.NewUnitParser(
		parser.NewTypeFilter(s.config.Parser.AllowedTypes),
		parser.NewRecencyFilter(time.Now(), s.config.Parser.RecencyDays),
	)
	result.Records = s.parseAll(units, unitParser)
	result.Timing.MarkPhase(models.PhaseParse, time.Since(tParse))

	result.Timing.CompletedAt = time.Now()
	result.Timing.TotalMs = time.Since(startedAt).Milliseconds()
	result.Timing.Status = "success"

	s.logger.Info().
		Str("run_id", runID).
		Int("units", len(units)).
		Int("records", len(result.Records)).
		Float64("duration_sec", time.Since(tParse).Seconds()).
		Msg("Parsing completed")

	return result, nil
}

// parseAll fans the unit parser out across the worker pool and gathers
// results into a slice indexed by unit position, so the output preserves
// source-document order no matter which worker finishes first. Units are
// independent: workers share only the read-only document text.
func (s *Service) parseAll(units []string, unitParser *parser.UnitParser) []models.HealthRecord {
	workerCount := s.config.Workers.Count
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if workerCount > len(units) && len(units) > 0 {
		workerCount = len(units)
	}

	results := make([]*models.HealthRecord, len(units))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = unitParser.Parse(units[i])
			}
		}()
	}

	for i := range units {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	records := make([]models.HealthRecord, 0, len(units))
	for _, rec := range results {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records
}
