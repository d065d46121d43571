package ingestion

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pterm/pterm"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func appendFile(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("Failed to append to %s: %v", path, err)
	}
}

func TestIncrementalReader_ReadsCompleteLines(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	path := filepath.Join(t.TempDir(), "access.log")
	writeFile(t, path, "first\r\n\nsecond\nthird-partial")

	r := NewIncrementalReader(path, 0, 0, "", logger)
	lines, pos, last, err := r.ReadBatch(10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !reflect.DeepEqual(lines, []string{"first", "second"}) {
		t.Errorf("Expected [first second], got %q", lines)
	}
	if pos != int64(len("first\r\n\nsecond\n")) {
		t.Errorf("Expected position %d, got %d", len("first\r\n\nsecond\n"), pos)
	}
	if last != "second" {
		t.Errorf("Expected last line 'second', got '%s'", last)
	}

	r.UpdatePosition(pos, last)
	appendFile(t, path, "\nfourth\n")

	lines, pos, _, err = r.ReadBatch(10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"third-partial", "fourth"}) {
		t.Errorf("Expected [third-partial fourth], got %q", lines)
	}

	info, _ := os.Stat(path)
	if pos != info.Size() {
		t.Errorf("Expected position %d, got %d", info.Size(), pos)
	}
}

func TestIncrementalReader_RespectsMaxLines(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	path := filepath.Join(t.TempDir(), "access.log")
	writeFile(t, path, "a\nb\nc\n")

	r := NewIncrementalReader(path, 0, 0, "", logger)
	lines, pos, last, err := r.ReadBatch(2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(lines) != 2 || pos != 4 || last != "b" {
		t.Errorf("Expected 2 lines up to position 4, got %q at %d", lines, pos)
	}

	r.UpdatePosition(pos, last)
	lines, _, _, _ = r.ReadBatch(2)
	if !reflect.DeepEqual(lines, []string{"c"}) {
		t.Errorf("Expected [c], got %q", lines)
	}
}

func TestIncrementalReader_UncommittedPositionIsReread(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	path := filepath.Join(t.TempDir(), "access.log")
	writeFile(t, path, "a\nb\n")

	r := NewIncrementalReader(path, 0, 0, "", logger)
	first, _, _, _ := r.ReadBatch(10)
	second, _, _, _ := r.ReadBatch(10)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected the same lines without UpdatePosition, got %q and %q", first, second)
	}
}

func TestIncrementalReader_Truncation(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	path := filepath.Join(t.TempDir(), "access.log")
	writeFile(t, path, "a much longer first line\n")

	r := NewIncrementalReader(path, 0, 0, "", logger)
	_, pos, last, _ := r.ReadBatch(10)
	r.UpdatePosition(pos, last)

	writeFile(t, path, "new\n")

	lines, pos, _, err := r.ReadBatch(10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"new"}) {
		t.Errorf("Expected [new] after truncation, got %q", lines)
	}
	if pos != 4 {
		t.Errorf("Expected position 4, got %d", pos)
	}
}

func TestIncrementalReader_Rotation(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	dir := t.TempDir()
	path := filepath.Join(dir, "access.log")
	writeFile(t, path, "old-1\nold-2\n")

	r := NewIncrementalReader(path, 0, 0, "", logger)
	_, pos, last, _ := r.ReadBatch(10)
	r.UpdatePosition(pos, last)

	if _, inode := r.Position(); inode == 0 {
		t.Skip("File identity is not available on this platform")
	}

	// rotated file keeps the old inode; the new one is at least as large as the old position
	if err := os.Rename(path, filepath.Join(dir, "access.log.1")); err != nil {
		t.Fatalf("Failed to rotate: %v", err)
	}
	writeFile(t, path, "rotated-1\nrotated-2\n")

	lines, _, _, err := r.ReadBatch(10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"rotated-1", "rotated-2"}) {
		t.Errorf("Expected the rotated file from the start, got %q", lines)
	}
}

func TestIncrementalReader_MissingFile(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	path := filepath.Join(t.TempDir(), "missing.log")

	r := NewIncrementalReader(path, 42, 0, "previous", logger)
	lines, pos, last, err := r.ReadBatch(10)
	if err != nil {
		t.Errorf("Expected no error for a missing file, got %v", err)
	}
	if len(lines) != 0 || pos != 42 || last != "previous" {
		t.Errorf("Expected the position to be kept, got %q at %d (%s)", lines, pos, last)
	}
}
