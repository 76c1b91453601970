package importer

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrSourceUnavailable is returned when the import source cannot be opened or
// read. It is the only error that aborts a run.
var ErrSourceUnavailable = errors.New("import source unavailable")

// DefaultChunkSize is the number of rows per chunk when none is configured.
const DefaultChunkSize = 100

// Row is one data row of an import source keyed by header name.
type Row struct {
	// Line is the 1-based position of the row in the source, the header being
	// line 1.
	Line   int
	Fields map[string]string
}

// Get returns the trimmed value of column, empty when absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.Fields[column])
}

// Chunks yields successive row chunks of one source.
type Chunks interface {
	// Next returns the next non-empty chunk, or io.EOF once the source is
	// exhausted.
	Next(ctx context.Context) ([]Row, error)
	Close() error
}

// Reader opens import sources. Rows that are blank or whose column count does
// not match the header are skipped and logged.
type Reader interface {
	Open(source string, chunkSize int) (Chunks, error)
}

// FileReader picks the reader for a source by file extension: .xlsx sources
// are read as spreadsheets, everything else as CSV.
type FileReader struct {
	log *zap.Logger
}

func NewFileReader(log *zap.Logger) *FileReader {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileReader{log: log}
}

func (r *FileReader) Open(source string, chunkSize int) (Chunks, error) {
	if strings.EqualFold(filepath.Ext(source), ".xlsx") {
		return NewXLSXReader(r.log).Open(source, chunkSize)
	}
	return NewCSVReader(r.log).Open(source, chunkSize)
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func normalizeHeader(cells []string) []string {
	header := make([]string, len(cells))
	for i, c := range cells {
		if i == 0 {
			c = strings.TrimPrefix(c, "\ufeff")
		}
		header[i] = strings.TrimSpace(c)
	}
	return header
}

func zipRow(header, cells []string, line int) Row {
	fields := make(map[string]string, len(header))
	for i, h := range header {
		fields[h] = cells[i]
	}
	return Row{Line: line, Fields: fields}
}
