package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-scripts/wordbook/internal/types"
)

// utf8BOM lets spreadsheet tools detect the encoding.
const utf8BOM = "\ufeff"

// CSVWriter writes word entries as comma-separated rows.
type CSVWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates path, writes the byte-order mark and the header row.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, types.ErrIO{Path: path, Err: fmt.Errorf("create output directory: %w", err)}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, types.ErrIO{Path: path, Err: err}
	}
	if _, err := f.WriteString(utf8BOM); err != nil {
		f.Close()
		return nil, types.ErrIO{Path: path, Err: fmt.Errorf("write byte-order mark: %w", err)}
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(types.Header); err != nil {
		f.Close()
		return nil, types.ErrIO{Path: path, Err: fmt.Errorf("write csv header: %w", err)}
	}

	return &CSVWriter{
		path:   path,
		file:   f,
		writer: writer,
	}, nil
}

// Write appends entries and flushes them to disk.
func (cw *CSVWriter) Write(entries []types.WordEntry) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, entry := range entries {
		if err := cw.writer.Write(entry.Record()); err != nil {
			return types.ErrIO{Path: cw.path, Err: fmt.Errorf("write csv record: %w", err)}
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return types.ErrIO{Path: cw.path, Err: fmt.Errorf("flush csv records: %w", err)}
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		cw.file.Close()
		return types.ErrIO{Path: cw.path, Err: fmt.Errorf("flush csv: %w", err)}
	}
	if err := cw.file.Close(); err != nil {
		return types.ErrIO{Path: cw.path, Err: err}
	}
	return nil
}

// WriteCSV writes entries to a new file at path.
func WriteCSV(path string, entries []types.WordEntry) error {
	cw, err := NewCSVWriter(path)
	if err != nil {
		return err
	}
	if err := cw.Write(entries); err != nil {
		cw.Close()
		return err
	}
	return cw.Close()
}

// OutputPath joins dir and name, appending ".csv" when name lacks it.
func OutputPath(dir, name string) string {
	name = strings.TrimSpace(name)
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		name += ".csv"
	}
	return filepath.Join(dir, name)
}

var unsafeNameChars = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_", " ", "_",
)

// CollectionPath is OutputPath with the collection name appended to the file
// stem, so several collections can be exported to one directory.
func CollectionPath(dir, name, collection string) string {
	path := OutputPath(dir, name)
	ext := filepath.Ext(path)
	suffix := unsafeNameChars.Replace(strings.TrimSpace(collection))
	if suffix == "" {
		return path
	}
	return strings.TrimSuffix(path, ext) + "_" + suffix + ext
}
