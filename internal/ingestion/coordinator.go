// MIT License
//
// # Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
package ingestion

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"weblynx/internal/analysis"
	"weblynx/internal/database/models"
	"weblynx/internal/database/repositories"
	parsers "weblynx/internal/parser"

	"github.com/pterm/pterm"
)

// ErrNotRunning is returned when processors are changed on a stopped coordinator
var ErrNotRunning = errors.New("coordinator is not running")

// Coordinator manages multiple source processors
type Coordinator struct {
	sourceRepo repositories.LogSourceRepository
	recordRepo repositories.RequestRecordRepository
	parserReg  *parsers.Registry
	analyzer   *analysis.Analyzer
	enricher   Enricher
	cfg        ProcessorConfig
	watcher    *FileWatcher
	processors map[string]*SourceProcessor
	logger     *pterm.Logger
	mu         sync.RWMutex
	isRunning  bool
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

// NewCoordinator creates a new ingestion coordinator. enricher may be nil.
func NewCoordinator(
	sourceRepo repositories.LogSourceRepository,
	recordRepo repositories.RequestRecordRepository,
	parserReg *parsers.Registry,
	analyzer *analysis.Analyzer,
	enricher Enricher,
	cfg ProcessorConfig,
	logger *pterm.Logger,
) *Coordinator {
	return &Coordinator{
		sourceRepo: sourceRepo,
		recordRepo: recordRepo,
		parserReg:  parserReg,
		analyzer:   analyzer,
		enricher:   enricher,
		cfg:        cfg,
		processors: make(map[string]*SourceProcessor),
		logger:     logger,
	}
}

// SetWatcher routes file change notifications from w to the processors
// reading the changed files. It must be called before Start.
func (c *Coordinator) SetWatcher(w *FileWatcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watcher = w
}

// Start initializes and starts all source processors
func (c *Coordinator) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		c.logger.Warn("Coordinator already running, skipping start")
		return nil
	}

	c.logger.Info("Starting ingestion coordinator...")

	sources, err := c.sourceRepo.FindAll()
	if err != nil {
		c.logger.WithCaller().Error("Failed to load log sources from database",
			c.logger.Args("error", err))
		return fmt.Errorf("failed to load log sources: %w", err)
	}

	c.isRunning = true
	c.stopCh = make(chan struct{})

	if c.watcher != nil {
		c.wg.Add(1)
		go c.routeEvents(c.watcher, c.stopCh)
	}

	if len(sources) == 0 {
		c.logger.Warn("No log sources found in database. Configure LOG_SOURCES or enable auto discovery.")
		c.logger.Info("Ingestion coordinator will run in standby mode, waiting for log sources to be added.")
		return nil
	}

	if hasData, err := c.recordRepo.HasExistingData(); err == nil && hasData {
		c.logger.Info("Resuming ingestion over existing records")
	}

	successCount := 0
	for _, source := range sources {
		if err := c.startSourceProcessorLocked(source); err != nil {
			c.logger.WithCaller().Warn("Failed to start processor for source",
				c.logger.Args("source", source.Name, "error", err))
			continue
		}
		successCount++
	}

	c.logger.Info("Ingestion coordinator started",
		c.logger.Args("active_processors", successCount, "total_sources", len(sources)))

	return nil
}

// startSourceProcessorLocked creates and starts a processor for a single source.
// Caller must hold c.mu.
func (c *Coordinator) startSourceProcessorLocked(source *models.LogSource) error {
	if _, exists := c.processors[source.Name]; exists {
		c.logger.Debug("Processor already exists for source, skipping", c.logger.Args("source", source.Name))
		return nil
	}

	parser, err := c.parserReg.Get(source.ParserType)
	if err != nil {
		return err
	}

	processor := NewSourceProcessor(
		source,
		parser,
		c.analyzer,
		c.recordRepo,
		c.sourceRepo,
		c.enricher,
		c.cfg,
		c.logger,
	)
	processor.Start()
	c.processors[source.Name] = processor

	if c.watcher != nil {
		if err := c.watcher.AddPath(source.Path); err != nil {
			c.logger.Warn("Source will be polled only",
				c.logger.Args("source", source.Name, "path", source.Path, "error", err))
		}
	}

	c.logger.Debug("Started processor for source",
		c.logger.Args(
			"source", source.Name,
			"path", source.Path,
			"last_position", source.LastPosition,
		))

	return nil
}

// stopSourceProcessorLocked stops and forgets a processor. Caller must hold c.mu.
func (c *Coordinator) stopSourceProcessorLocked(name string) {
	processor, exists := c.processors[name]
	if !exists {
		return
	}

	processor.Stop()
	delete(c.processors, name)

	if c.watcher != nil {
		_ = c.watcher.RemovePath(processor.Source().Path)
	}
}

// routeEvents wakes the processors whose files changed
func (c *Coordinator) routeEvents(w *FileWatcher, stopCh <-chan struct{}) {
	defer c.wg.Done()

	for {
		select {
		case <-stopCh:
			return
		case path, ok := <-w.Events():
			if !ok {
				return
			}
			c.mu.RLock()
			for _, processor := range c.processors {
				if filepath.Clean(processor.Source().Path) == path {
					processor.Notify()
				}
			}
			c.mu.RUnlock()
		}
	}
}

// Stop gracefully stops all source processors
func (c *Coordinator) Stop() {
	c.mu.Lock()

	if !c.isRunning {
		c.mu.Unlock()
		c.logger.Debug("Coordinator not running, skipping stop")
		return
	}

	c.logger.Info("Stopping ingestion coordinator...",
		c.logger.Args("active_processors", len(c.processors)))

	close(c.stopCh)

	var wg sync.WaitGroup
	for name, processor := range c.processors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.logger.Debug("Stopping processor", c.logger.Args("source", name))
			processor.Stop()
		}()
	}
	wg.Wait()

	c.processors = make(map[string]*SourceProcessor)
	c.isRunning = false
	c.mu.Unlock()

	// routeEvents takes the read lock, so wait for it outside the write lock
	c.wg.Wait()

	c.logger.Info("Ingestion coordinator stopped successfully")
}

// Status summarizes the coordinator and its processors
type Status struct {
	IsRunning        bool             `json:"is_running"`
	ActiveProcessors int              `json:"active_processors"`
	Sources          []ProcessorStats `json:"sources"`
}

// GetStatus returns the current status of the coordinator
func (c *Coordinator) GetStatus() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := Status{
		IsRunning:        c.isRunning,
		ActiveProcessors: len(c.processors),
		Sources:          make([]ProcessorStats, 0, len(c.processors)),
	}
	for _, processor := range c.processors {
		status.Sources = append(status.Sources, processor.Stats())
	}
	return status
}

// IsRunning returns whether the coordinator is currently running
func (c *Coordinator) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isRunning
}

// GetProcessorCount returns the number of active processors
func (c *Coordinator) GetProcessorCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.processors)
}

// AddProcessor dynamically adds a processor for a new log source
func (c *Coordinator) AddProcessor(source *models.LogSource) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		return ErrNotRunning
	}

	if err := c.startSourceProcessorLocked(source); err != nil {
		c.logger.WithCaller().Error("Failed to add processor",
			c.logger.Args("source", source.Name, "error", err))
		return fmt.Errorf("failed to add processor: %w", err)
	}

	c.logger.Info("Added processor",
		c.logger.Args("source", source.Name, "total_processors", len(c.processors)))
	return nil
}

// RemoveProcessor gracefully stops and removes a processor for a log source
func (c *Coordinator) RemoveProcessor(sourceName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		return ErrNotRunning
	}

	if _, exists := c.processors[sourceName]; !exists {
		c.logger.Debug("Processor not found, nothing to remove", c.logger.Args("source", sourceName))
		return nil
	}

	c.stopSourceProcessorLocked(sourceName)

	c.logger.Info("Removed processor",
		c.logger.Args("source", sourceName, "remaining_processors", len(c.processors)))
	return nil
}

// SyncWithDatabase reconciles active processors with database log sources
func (c *Coordinator) SyncWithDatabase() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		c.logger.Debug("Coordinator not running, skipping database sync")
		return nil
	}

	sources, err := c.sourceRepo.FindAll()
	if err != nil {
		c.logger.WithCaller().Error("Failed to load log sources during sync",
			c.logger.Args("error", err))
		return fmt.Errorf("failed to load log sources: %w", err)
	}

	dbSources := make(map[string]*models.LogSource, len(sources))
	for _, source := range sources {
		dbSources[source.Name] = source
	}

	removed := 0
	for name := range c.processors {
		if _, exists := dbSources[name]; !exists {
			c.logger.Info("Source removed from database, stopping processor",
				c.logger.Args("source", name))
			c.stopSourceProcessorLocked(name)
			removed++
		}
	}

	added := 0
	for _, source := range sources {
		if _, exists := c.processors[source.Name]; exists {
			continue
		}
		if err := c.startSourceProcessorLocked(source); err != nil {
			c.logger.WithCaller().Warn("Failed to start processor for new source",
				c.logger.Args("source", source.Name, "error", err))
			continue
		}
		added++
	}

	c.logger.Debug("Database sync completed",
		c.logger.Args("added", added, "removed", removed, "total_processors", len(c.processors)))
	return nil
}

// StartSyncLoop periodically syncs processors with the database until Stop
func (c *Coordinator) StartSyncLoop(interval time.Duration) {
	c.mu.RLock()
	stopCh := c.stopCh
	running := c.isRunning
	c.mu.RUnlock()

	if !running {
		return
	}

	c.logger.Info("Starting database sync loop", c.logger.Args("interval", interval.String()))

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				if err := c.SyncWithDatabase(); err != nil {
					c.logger.WithCaller().Warn("Database sync failed", c.logger.Args("error", err))
				}
			}
		}
	}()
}
