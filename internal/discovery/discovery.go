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
package discovery

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"weblynx/internal/database/models"
	"weblynx/internal/database/repositories"
	parsers "weblynx/internal/parser"

	"github.com/pterm/pterm"
)

// Options controls where detectors look for access logs
type Options struct {
	AutoDiscover   bool
	CaddyLogPath   string
	TraefikLogPath string
}

type ServiceDetector interface {
	Name() string
	Detect() ([]*models.LogSource, error)
}

type Engine struct {
	repo      repositories.LogSourceRepository
	detectors []ServiceDetector
	logger    *pterm.Logger
}

// NewEngine creates a discovery engine with the Traefik and Caddy detectors.
// A detector is skipped when its parser is not registered.
func NewEngine(repo repositories.LogSourceRepository, registry *parsers.Registry, opts Options, logger *pterm.Logger) *Engine {
	e := &Engine{repo: repo, logger: logger}

	if parser, err := registry.Get("traefik"); err == nil {
		e.detectors = append(e.detectors, NewTraefikDetector(parser, opts, logger))
	}
	if parser, err := registry.Get("caddy"); err == nil {
		e.detectors = append(e.detectors, NewCaddyDetector(parser, opts, logger))
	}

	return e
}

// Run registers discovered sources when none are registered yet. It returns
// the number of sources added.
func (e *Engine) Run() (int, error) {
	e.logger.Trace("Check if the discovery is needed.")
	existing, err := e.repo.FindAll()
	if err != nil {
		return 0, err
	}

	if len(existing) > 0 {
		e.logger.Trace("Discovery is not needed.", e.logger.Args("sources", len(existing)))
		return 0, nil
	}

	e.logger.Debug("Starting discovery...")

	registered := 0
	for _, detector := range e.detectors {
		sources, err := detector.Detect()
		e.logger.Trace("Detector executed.", e.logger.Args("name", detector.Name()))
		if err != nil {
			e.logger.WithCaller().Warn("Detection failed", e.logger.Args("detector", detector.Name(), "error", err))
			continue
		}

		for _, source := range sources {
			if err := e.repo.Create(source); err != nil {
				e.logger.WithCaller().Error("Failed to register log source", e.logger.Args("source", source.Name, "error", err))
				continue
			}
			e.logger.Info("Registered new log source.", e.logger.Args("name", source.Name, "path", source.Path))
			registered++
		}
	}

	e.logger.Debug("Discovery completed", e.logger.Args("registered", registered))
	return registered, nil
}

// probe returns the first candidate whose first line the parser accepts
func probe(candidates []string, parser parsers.LogParser, logger *pterm.Logger) (string, bool) {
	for _, path := range candidates {
		fileInfo, err := os.Stat(path)
		if err != nil {
			logger.Trace("File not accessible", logger.Args("path", path, "error", err))
			continue
		}
		if fileInfo.IsDir() || fileInfo.Size() == 0 {
			logger.Trace("File is directory or empty", logger.Args("path", path, "size", fileInfo.Size()))
			continue
		}

		line, err := firstLine(path)
		if err != nil {
			logger.Debug("Failed to read file", logger.Args("path", path, "error", err))
			continue
		}
		if parser.CanParse(line) {
			return path, true
		}
		logger.WithCaller().Warn("Format invalid", logger.Args("path", path, "parser", parser.Name()))
	}
	return "", false
}

func firstLine(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	return "", scanner.Err()
}

// sourceName derives "<prefix>-<file name without extension>" from path
func sourceName(prefix, path string) string {
	base := filepath.Base(strings.ReplaceAll(path, "\\", "/"))
	name, _, _ := strings.Cut(base, ".")
	return prefix + "-" + name
}
