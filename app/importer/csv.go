package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

type CSVReader struct {
	log *zap.Logger
}

func NewCSVReader(log *zap.Logger) *CSVReader {
	if log == nil {
		log = zap.NewNop()
	}
	return &CSVReader{log: log}
}

func (r *CSVReader) Open(source string, chunkSize int) (Chunks, error) {
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	chunks, err := newCSVChunks(f, source, chunkSize, r.log)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return chunks, nil
}

type csvChunks struct {
	closer    io.Closer
	reader    *csv.Reader
	header    []string
	source    string
	chunkSize int
	log       *zap.Logger
	done      bool
}

func newCSVChunks(rc io.ReadCloser, source string, chunkSize int, log *zap.Logger) (*csvChunks, error) {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	reader := csv.NewReader(rc)
	reader.FieldsPerRecord = -1

	first, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header of %s: %v", ErrSourceUnavailable, source, err)
	}

	return &csvChunks{
		closer:    rc,
		reader:    reader,
		header:    normalizeHeader(first),
		source:    source,
		chunkSize: chunkSize,
		log:       log,
	}, nil
}

func (c *csvChunks) Next(ctx context.Context) ([]Row, error) {
	if c.done {
		return nil, io.EOF
	}

	chunk := make([]Row, 0, c.chunkSize)
	for len(chunk) < c.chunkSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cells, err := c.reader.Read()
		if errors.Is(err, io.EOF) {
			c.done = true
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			c.log.Warn("skipping malformed row",
				zap.String("source", c.source),
				zap.Int("line", parseErr.Line),
				zap.Error(err))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrSourceUnavailable, c.source, err)
		}

		line, _ := c.reader.FieldPos(0)
		if blank(cells) {
			continue
		}
		if len(cells) != len(c.header) {
			c.log.Warn("skipping row with wrong column count",
				zap.String("source", c.source),
				zap.Int("line", line),
				zap.Int("columns", len(cells)),
				zap.Int("expected", len(c.header)),
				zap.Strings("row", cells))
			continue
		}
		chunk = append(chunk, zipRow(c.header, cells, line))
	}

	if len(chunk) == 0 {
		return nil, io.EOF
	}
	return chunk, nil
}

func (c *csvChunks) Close() error {
	return c.closer.Close()
}
