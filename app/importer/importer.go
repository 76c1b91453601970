// Package importer loads products from flat files into the catalog.
//
// A run reads its source in chunks, turns each row into a record and writes
// the records of a chunk one transaction at a time. Bad rows and failed writes
// are counted and logged; only a source that cannot be read stops the run.
package importer

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voltaic/catalog/config"
	"github.com/voltaic/catalog/metrics"
)

// Summary reports the outcome of one run.
type Summary struct {
	RunID     string
	Category  string
	Processed int
	Succeeded int
	Skipped   int
	Failed    int
	Duration  time.Duration
}

// Errors is the number of rows that were not imported.
func (s Summary) Errors() int {
	return s.Skipped + s.Failed
}

// BatchWriter writes a chunk of records and returns how many succeeded.
type BatchWriter interface {
	WriteBatch(ctx context.Context, recs []Record) int
}

type Importer struct {
	reader    Reader
	dict      Dictionary
	writer    BatchWriter
	mapping   *config.Mapping
	metrics   *metrics.Metrics
	chunkSize int
	log       *zap.Logger
}

type Option func(*Importer)

// WithChunkSize sets the number of rows per chunk.
func WithChunkSize(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.chunkSize = n
		}
	}
}

// WithMetrics records row outcomes and chunk durations in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Importer) { i.metrics = m }
}

func New(reader Reader, dict Dictionary, writer BatchWriter, mapping *config.Mapping, log *zap.Logger, opts ...Option) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	i := &Importer{
		reader:    reader,
		dict:      dict,
		writer:    writer,
		mapping:   mapping,
		chunkSize: DefaultChunkSize,
		log:       log,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run imports source into category. The returned error is non-nil only when
// the run could not complete: the source is unavailable, the category cannot
// be resolved, or ctx is done. The summary covers the rows handled until then.
func (i *Importer) Run(ctx context.Context, source, category string) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: uuid.NewString(), Category: category}
	log := i.log.With(
		zap.String("run_id", summary.RunID),
		zap.String("source", source),
		zap.String("category", category))

	finish := func(err error) (Summary, error) {
		summary.Duration = time.Since(start)
		fields := []zap.Field{
			zap.Int("processed", summary.Processed),
			zap.Int("succeeded", summary.Succeeded),
			zap.Int("skipped", summary.Skipped),
			zap.Int("failed", summary.Failed),
			zap.Duration("duration", summary.Duration),
		}
		if err != nil {
			log.Error("import aborted", append(fields, zap.Error(err))...)
		} else {
			log.Info("import completed", fields...)
		}
		return summary, err
	}

	if category == "" {
		return finish(ErrCategoryUnresolved)
	}

	chunks, err := i.reader.Open(source, i.chunkSize)
	if err != nil {
		return finish(err)
	}
	defer func() {
		if err := chunks.Close(); err != nil {
			log.Warn("failed to close import source", zap.Error(err))
		}
	}()

	processor := NewProcessor(i.dict, i.mapping, category, log)
	if _, err := processor.Category(ctx); err != nil {
		return finish(err)
	}
	log.Info("import started", zap.Int("chunk_size", i.chunkSize))

	for {
		rows, err := chunks.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return finish(err)
		}
		i.runChunk(ctx, log, processor, rows, &summary)
	}
	return finish(nil)
}

func (i *Importer) runChunk(ctx context.Context, log *zap.Logger, processor *Processor, rows []Row, summary *Summary) {
	started := time.Now()

	records := make([]Record, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		rec, err := processor.Process(ctx, row)
		if err != nil {
			skipped++
			log.Warn("skipping row",
				zap.Int("line", row.Line),
				zap.Any("row", row.Fields),
				zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	succeeded := 0
	if len(records) > 0 {
		succeeded = i.writer.WriteBatch(ctx, records)
	}
	failed := len(records) - succeeded

	summary.Processed += len(rows)
	summary.Succeeded += succeeded
	summary.Skipped += skipped
	summary.Failed += failed

	i.metrics.ImportRows(metrics.OutcomeProcessed, len(rows))
	i.metrics.ImportRows(metrics.OutcomeSucceeded, succeeded)
	i.metrics.ImportRows(metrics.OutcomeSkipped, skipped)
	i.metrics.ImportRows(metrics.OutcomeFailed, failed)
	i.metrics.ObserveChunk(time.Since(started))

	log.Info("chunk imported",
		zap.Int("rows", len(rows)),
		zap.Int("succeeded", succeeded),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed))
}
