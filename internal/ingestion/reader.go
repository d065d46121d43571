package ingestion

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pterm/pterm"
)

// maxLineLength bounds a single log line; longer lines are skipped.
const maxLineLength = 1 << 20

// IncrementalReader reads complete lines appended to a log file since the
// last recorded position. A partially written last line is left for the next read.
type IncrementalReader struct {
	path     string
	position int64
	inode    int64
	lastLine string
	logger   *pterm.Logger
	mu       sync.Mutex
}

// NewIncrementalReader creates a reader resuming at position
func NewIncrementalReader(path string, position int64, inode int64, lastLine string, logger *pterm.Logger) *IncrementalReader {
	return &IncrementalReader{
		path:     path,
		position: position,
		inode:    inode,
		lastLine: lastLine,
		logger:   logger,
	}
}

// ReadBatch returns up to maxLines new non-empty lines, the position after
// the last consumed line and that line's content. A missing file yields no lines.
func (r *IncrementalReader) ReadBatch(maxLines int) ([]string, int64, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if maxLines <= 0 {
		return nil, r.position, r.lastLine, nil
	}

	info, err := os.Stat(r.path)
	if errors.Is(err, os.ErrNotExist) {
		r.logger.Trace("Log file not found yet", r.logger.Args("path", r.path))
		return nil, r.position, r.lastLine, nil
	}
	if err != nil {
		return nil, r.position, r.lastLine, fmt.Errorf("stat %s: %w", r.path, err)
	}

	inode := fileInode(info)
	switch {
	case r.inode != 0 && inode != 0 && inode != r.inode:
		r.logger.Info("Log rotation detected, reading from start",
			r.logger.Args("path", r.path, "old_inode", r.inode, "new_inode", inode))
		r.position = 0
	case info.Size() < r.position:
		r.logger.Info("Log file truncated, reading from start",
			r.logger.Args("path", r.path, "size", info.Size(), "position", r.position))
		r.position = 0
	}
	r.inode = inode

	if info.Size() == r.position {
		return nil, r.position, r.lastLine, nil
	}

	file, err := os.Open(r.path)
	if err != nil {
		return nil, r.position, r.lastLine, fmt.Errorf("open %s: %w", r.path, err)
	}
	defer file.Close()

	if _, err := file.Seek(r.position, io.SeekStart); err != nil {
		return nil, r.position, r.lastLine, fmt.Errorf("seek %s: %w", r.path, err)
	}

	reader := bufio.NewReaderSize(file, 64*1024)
	position := r.position
	lastLine := r.lastLine
	lines := make([]string, 0, min(maxLines, 256))

	for len(lines) < maxLines {
		raw, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				break // incomplete line stays for the next read
			}
			return lines, position, lastLine, fmt.Errorf("read %s: %w", r.path, err)
		}

		position += int64(len(raw))
		line := strings.TrimRight(raw, "\r\n")
		if line == "" {
			continue
		}
		if len(line) > maxLineLength {
			r.logger.Warn("Skipping oversized log line", r.logger.Args("path", r.path, "length", len(line)))
			continue
		}

		lines = append(lines, line)
		lastLine = line
	}

	return lines, position, lastLine, nil
}

// UpdatePosition commits a position returned by ReadBatch
func (r *IncrementalReader) UpdatePosition(position int64, lastLine string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.position = position
	r.lastLine = lastLine
}

// Position returns the committed position and file identity
func (r *IncrementalReader) Position() (int64, int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.position, r.inode
}
