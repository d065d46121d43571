package ingestion

import (
	"context"
	"errors"
	"sync"
	"time"

	"weblynx/internal/analysis"
	"weblynx/internal/database/models"
	"weblynx/internal/database/repositories"
	parsers "weblynx/internal/parser"

	"github.com/pterm/pterm"
)

// Enricher adds data to a record before it is stored
type Enricher interface {
	Enrich(record *models.RequestRecord) error
}

// ProcessorConfig tunes batching and parallelism of a SourceProcessor
type ProcessorConfig struct {
	BatchSize    int
	BatchTimeout time.Duration
	PollInterval time.Duration
	Workers      int
}

// DefaultProcessorConfig returns the settings used when none are configured
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		BatchSize:    500,
		BatchTimeout: 2 * time.Second,
		PollInterval: time.Second,
		Workers:      4,
	}
}

// ProcessorStats is a snapshot of a processor's counters
type ProcessorStats struct {
	SourceName     string
	Path           string
	Parser         string
	TotalProcessed int64
	TotalErrors    int64
	Duplicates     int64
	Position       int64
	StartedAt      time.Time
}

// SourceProcessor tails a single log source, analyzes each line and stores the result
type SourceProcessor struct {
	source     *models.LogSource
	parser     parsers.LogParser
	reader     *IncrementalReader
	analyzer   *analysis.Analyzer
	recordRepo repositories.RequestRecordRepository
	sourceRepo repositories.LogSourceRepository
	enricher   Enricher
	logger     *pterm.Logger
	cfg        ProcessorConfig
	notify     chan struct{}
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	// Statistics
	totalProcessed int64
	totalErrors    int64
	duplicates     int64
	startTime      time.Time
	statsMu        sync.Mutex
}

// NewSourceProcessor creates a new source processor. enricher may be nil.
func NewSourceProcessor(
	source *models.LogSource,
	parser parsers.LogParser,
	analyzer *analysis.Analyzer,
	recordRepo repositories.RequestRecordRepository,
	sourceRepo repositories.LogSourceRepository,
	enricher Enricher,
	cfg ProcessorConfig,
	logger *pterm.Logger,
) *SourceProcessor {
	defaults := DefaultProcessorConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = defaults.BatchTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaults.PollInterval
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}

	ctx, cancel := context.WithCancel(context.Background())

	reader := NewIncrementalReader(
		source.Path,
		source.LastPosition,
		source.LastInode,
		source.LastLineContent,
		logger,
	)

	return &SourceProcessor{
		source:     source,
		parser:     parser,
		reader:     reader,
		analyzer:   analyzer,
		recordRepo: recordRepo,
		sourceRepo: sourceRepo,
		enricher:   enricher,
		logger:     logger,
		cfg:        cfg,
		notify:     make(chan struct{}, 1),
		ctx:        ctx,
		cancel:     cancel,
		startTime:  time.Now(),
	}
}

// Start begins processing logs from the source
func (sp *SourceProcessor) Start() {
	sp.wg.Add(1)
	go sp.processLoop()
	sp.logger.Info("Started source processor",
		sp.logger.Args("source", sp.source.Name, "path", sp.source.Path, "parser", sp.parser.Name()))
}

// Stop gracefully stops the processor, flushing what was already read
func (sp *SourceProcessor) Stop() {
	sp.logger.Debug("Stopping source processor", sp.logger.Args("source", sp.source.Name))
	sp.cancel()
	sp.wg.Wait()
	sp.logger.Info("Stopped source processor", sp.logger.Args("source", sp.source.Name))
}

// Notify wakes the processor before its next poll. It never blocks.
func (sp *SourceProcessor) Notify() {
	select {
	case sp.notify <- struct{}{}:
	default:
	}
}

// Source returns the log source this processor reads
func (sp *SourceProcessor) Source() *models.LogSource {
	return sp.source
}

// Stats returns a snapshot of the processor counters
func (sp *SourceProcessor) Stats() ProcessorStats {
	position, _ := sp.reader.Position()

	sp.statsMu.Lock()
	defer sp.statsMu.Unlock()
	return ProcessorStats{
		SourceName:     sp.source.Name,
		Path:           sp.source.Path,
		Parser:         sp.parser.Name(),
		TotalProcessed: sp.totalProcessed,
		TotalErrors:    sp.totalErrors,
		Duplicates:     sp.duplicates,
		Position:       position,
		StartedAt:      sp.startTime,
	}
}

// processLoop is the main processing loop
func (sp *SourceProcessor) processLoop() {
	defer sp.wg.Done()

	var batch []*models.RequestRecord
	ticker := time.NewTicker(sp.cfg.PollInterval)
	defer ticker.Stop()

	flushTimer := time.NewTimer(sp.cfg.BatchTimeout)
	defer flushTimer.Stop()

	for {
		select {
		case <-sp.ctx.Done():
			if len(batch) > 0 {
				sp.logger.Debug("Flushing remaining batch on shutdown",
					sp.logger.Args("source", sp.source.Name, "count", len(batch)))
				sp.flushBatch(batch)
			}
			return

		case <-flushTimer.C:
			if len(batch) > 0 {
				sp.logger.Trace("Batch timeout reached, flushing",
					sp.logger.Args("source", sp.source.Name, "count", len(batch)))
				sp.flushBatch(batch)
				batch = nil
			}
			flushTimer.Reset(sp.cfg.BatchTimeout)

		case <-ticker.C:
			batch = sp.poll(batch, flushTimer)

		case <-sp.notify:
			batch = sp.poll(batch, flushTimer)
		}
	}
}

// poll reads whatever is available and appends the analyzed records to batch
func (sp *SourceProcessor) poll(batch []*models.RequestRecord, flushTimer *time.Timer) []*models.RequestRecord {
	for {
		lines, newPos, newLastLine, err := sp.reader.ReadBatch(sp.cfg.BatchSize - len(batch))
		if err != nil {
			sp.logger.WithCaller().Error("Failed to read from log file",
				sp.logger.Args("source", sp.source.Name, "error", err))
			return batch
		}

		if len(lines) == 0 {
			return batch
		}

		sp.logger.Trace("Read new log lines",
			sp.logger.Args("source", sp.source.Name, "count", len(lines)))

		batch = append(batch, sp.analyzeParallel(lines)...)

		if len(batch) >= sp.cfg.BatchSize {
			sp.logger.Trace("Batch full, flushing",
				sp.logger.Args("source", sp.source.Name, "count", len(batch)))
			sp.flushBatch(batch)
			batch = nil
			flushTimer.Reset(sp.cfg.BatchTimeout)
		}

		_, inode := sp.reader.Position()
		if err := sp.sourceRepo.UpdateTracking(sp.source.Name, newPos, inode, newLastLine); err != nil {
			sp.logger.WithCaller().Error("Failed to update source tracking",
				sp.logger.Args("source", sp.source.Name, "error", err))
			return batch
		}
		sp.reader.UpdatePosition(newPos, newLastLine)

		if sp.ctx.Err() != nil || len(batch) > 0 {
			return batch
		}
	}
}

// analyzeParallel parses and analyzes lines using a worker pool. Lines that
// do not belong to this source's format are skipped.
func (sp *SourceProcessor) analyzeParallel(lines []string) []*models.RequestRecord {
	if len(lines) == 0 {
		return nil
	}

	numWorkers := min(sp.cfg.Workers, len(lines))

	jobs := make(chan string, len(lines))
	results := make(chan *models.RequestRecord, len(lines))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for line := range jobs {
				if record := sp.processLine(line); record != nil {
					results <- record
				}
			}
		}()
	}

	for _, line := range lines {
		jobs <- line
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	records := make([]*models.RequestRecord, 0, len(lines))
	for record := range results {
		records = append(records, record)
	}

	return records
}

func (sp *SourceProcessor) processLine(line string) *models.RequestRecord {
	if !sp.parser.CanParse(line) {
		sp.logger.Trace("Skipping line not supported by parser",
			sp.logger.Args("source", sp.source.Name, "parser", sp.parser.Name()))
		return nil
	}

	event, err := sp.parser.Parse(line)
	if err != nil {
		if !errors.Is(err, parsers.ErrEmptyLine) {
			sp.logger.Warn("Failed to parse log line",
				sp.logger.Args("source", sp.source.Name, "error", err, "line_preview", truncate(line, 100)))
			sp.statsMu.Lock()
			sp.totalErrors++
			sp.statsMu.Unlock()
		}
		return nil
	}
	event.SetSourceName(sp.source.Name)

	record := NewRecord(sp.analyzer.Analyze(event))

	if sp.enricher != nil {
		if err := sp.enricher.Enrich(record); err != nil {
			sp.logger.Debug("GeoIP enrichment failed",
				sp.logger.Args("ip", record.ClientIP, "error", err))
		}
	}

	return record
}

// flushBatch inserts the batch into the database
func (sp *SourceProcessor) flushBatch(batch []*models.RequestRecord) {
	if len(batch) == 0 {
		return
	}

	startTime := time.Now()

	inserted, err := sp.recordRepo.CreateBatch(batch)
	if err != nil {
		sp.logger.WithCaller().Error("Failed to insert batch into database",
			sp.logger.Args(
				"source", sp.source.Name,
				"count", len(batch),
				"error", err,
			))
		sp.statsMu.Lock()
		sp.totalErrors += int64(len(batch))
		sp.statsMu.Unlock()
		return
	}

	sp.statsMu.Lock()
	sp.totalProcessed += int64(inserted)
	sp.duplicates += int64(len(batch) - inserted)
	totalProcessed := sp.totalProcessed
	sp.statsMu.Unlock()

	elapsed := time.Since(sp.startTime)
	rate := float64(totalProcessed) / max(elapsed.Seconds(), 1)

	sp.logger.Info("Batch processed successfully",
		sp.logger.Args(
			"source", sp.source.Name,
			"batch_count", len(batch),
			"inserted", inserted,
			"batch_duration_ms", time.Since(startTime).Milliseconds(),
			"total_processed", totalProcessed,
			"rate_per_sec", int(rate),
			"elapsed", elapsed.Round(time.Second).String(),
		))
}

// truncate truncates a string to maxLen characters for logging
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
