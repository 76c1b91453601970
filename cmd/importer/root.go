package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/voltaic/catalog/app/importer"
	"github.com/voltaic/catalog/config"
	"github.com/voltaic/catalog/database"
	"github.com/voltaic/catalog/logger"
	"github.com/voltaic/catalog/metrics"
	"github.com/voltaic/catalog/models"
)

type importOptions struct {
	category        string
	chunkSize       int
	mappingFile     string
	metricsTextfile string
}

func newRootCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:           "catalog-import <file>",
		Short:         "Import products from a CSV or XLSX file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return withCode(exitConfig, err)
			}
			if !cmd.Flags().Changed("chunk") {
				opts.chunkSize = cfg.Import.ChunkSize
			}
			if opts.mappingFile == "" {
				opts.mappingFile = cfg.Import.MappingFile
			}

			log, err := logger.New(logger.Config{Level: cfg.LogLevel, ServiceName: cfg.ServiceName})
			if err != nil {
				return withCode(exitConfig, err)
			}
			defer func() { _ = log.Sync() }()

			db, err := database.Open(cfg.Database, log)
			if err != nil {
				return withCode(exitDB, err)
			}
			defer func() { _ = database.Close(db) }()
			if err := database.Migrate(cmd.Context(), db); err != nil {
				return withCode(exitDB, err)
			}

			m := metrics.New(cfg.ServiceName, false)
			return runImport(cmd.Context(), cmd.OutOrStdout(), db, m, log, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.category, "category", "", "Category slug (default: derived from the file name)")
	cmd.Flags().IntVar(&opts.chunkSize, "chunk", importer.DefaultChunkSize, "Number of rows to process per chunk")
	cmd.Flags().StringVar(&opts.mappingFile, "mapping", "", "Attribute mapping file (default: ATTRIBUTE_MAPPING_FILE or the built-in mapping)")
	cmd.Flags().StringVar(&opts.metricsTextfile, "metrics-textfile", "", "Write import metrics to this file in the Prometheus text format")
	return cmd
}

func loadMapping(path string) (*config.Mapping, error) {
	if path == "" {
		return config.DefaultMapping()
	}
	return config.LoadMapping(path)
}

func runImport(ctx context.Context, out io.Writer, db *gorm.DB, m *metrics.Metrics, log *zap.Logger, source string, opts importOptions) error {
	if opts.chunkSize < 1 {
		return withCode(exitUsage, fmt.Errorf("--chunk must be positive, got %d", opts.chunkSize))
	}
	mapping, err := loadMapping(opts.mappingFile)
	if err != nil {
		return withCode(exitConfig, err)
	}
	category, ok := mapping.ResolveCategory(opts.category, source)
	if !ok {
		return withCode(exitUsage, errors.New("could not determine category, please specify --category"))
	}

	fmt.Fprintf(out, "Starting import from: %s\n", source)
	fmt.Fprintf(out, "Category: %s\n", category)
	fmt.Fprintf(out, "Chunk size: %d\n", opts.chunkSize)

	imp := importer.New(
		importer.NewFileReader(log),
		models.NewDictionaryRepository(db),
		importer.NewDatabaseWriter(models.NewProductsRepository(db), log),
		mapping,
		log,
		importer.WithChunkSize(opts.chunkSize),
		importer.WithMetrics(m),
	)
	summary, runErr := imp.Run(ctx, source, category)
	printSummary(out, summary)

	if opts.metricsTextfile != "" && m != nil {
		if err := prometheus.WriteToTextfile(opts.metricsTextfile, m.Registry); err != nil {
			log.Warn("failed to write metrics textfile", zap.String("path", opts.metricsTextfile), zap.Error(err))
		}
	}

	switch {
	case runErr == nil:
		return nil
	case errors.Is(runErr, importer.ErrSourceUnavailable):
		return withCode(exitSource, runErr)
	case errors.Is(runErr, importer.ErrCategoryUnresolved):
		return withCode(exitUsage, runErr)
	default:
		return withCode(exitDB, runErr)
	}
}

func printSummary(out io.Writer, s importer.Summary) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "=== Import Summary ===")
	fmt.Fprintf(out, "Run: %s\n", s.RunID)
	fmt.Fprintf(out, "Total processed: %d\n", s.Processed)
	fmt.Fprintf(out, "Successfully imported: %d\n", s.Succeeded)
	fmt.Fprintf(out, "Skipped: %d\n", s.Skipped)
	fmt.Fprintf(out, "Failed: %d\n", s.Failed)
	fmt.Fprintf(out, "Errors: %d\n", s.Errors())
	fmt.Fprintf(out, "Duration: %.2fs\n", s.Duration.Seconds())
}
