package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// XLSXReader reads the first sheet of a workbook with the same header
// conventions as CSV sources.
type XLSXReader struct {
	log *zap.Logger
}

func NewXLSXReader(log *zap.Logger) *XLSXReader {
	if log == nil {
		log = zap.NewNop()
	}
	return &XLSXReader{log: log}
}

func (r *XLSXReader) Open(source string, chunkSize int) (Chunks, error) {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}

	f, err := excelize.OpenFile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s has no sheets", ErrSourceUnavailable, source)
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	c := &xlsxChunks{file: f, rows: rows, source: source, chunkSize: chunkSize, log: r.log}
	if !rows.Next() {
		_ = c.Close()
		return nil, fmt.Errorf("%w: %s has no header row", ErrSourceUnavailable, source)
	}
	first, err := rows.Columns()
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("%w: read header of %s: %v", ErrSourceUnavailable, source, err)
	}
	c.header = normalizeHeader(first)
	c.line = 1
	return c, nil
}

type xlsxChunks struct {
	file      *excelize.File
	rows      *excelize.Rows
	header    []string
	source    string
	chunkSize int
	line      int
	log       *zap.Logger
	done      bool
}

func (c *xlsxChunks) Next(ctx context.Context) ([]Row, error) {
	if c.done {
		return nil, io.EOF
	}

	chunk := make([]Row, 0, c.chunkSize)
	for len(chunk) < c.chunkSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !c.rows.Next() {
			if err := c.rows.Error(); err != nil {
				return nil, fmt.Errorf("%w: read %s: %v", ErrSourceUnavailable, c.source, err)
			}
			c.done = true
			break
		}
		c.line++

		cells, err := c.rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrSourceUnavailable, c.source, err)
		}
		if blank(cells) {
			continue
		}
		// Trailing empty cells are not stored in the sheet.
		for len(cells) < len(c.header) {
			cells = append(cells, "")
		}
		if len(cells) != len(c.header) {
			c.log.Warn("skipping row with wrong column count",
				zap.String("source", c.source),
				zap.Int("line", c.line),
				zap.Int("columns", len(cells)),
				zap.Int("expected", len(c.header)),
				zap.Strings("row", cells))
			continue
		}
		chunk = append(chunk, zipRow(c.header, cells, c.line))
	}

	if len(chunk) == 0 {
		return nil, io.EOF
	}
	return chunk, nil
}

func (c *xlsxChunks) Close() error {
	rowsErr := c.rows.Close()
	if err := c.file.Close(); err != nil {
		return err
	}
	return rowsErr
}
