package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voltaic/catalog/database/databasetest"
	"github.com/voltaic/catalog/metrics"
	"github.com/voltaic/catalog/models"
)

const batteriesCSV = "id,name,manufacturer,price,description,capacity\n" +
	"B-1,EcoCell 100,Voltix,499.90,Lithium cell,100\n" +
	"B-2,PowerBlock 75,Voltix,389.00,Compact,75\n" +
	"B-3,,Voltix,10,Missing name,5\n"

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunImport(t *testing.T) {
	// Arrange
	db := databasetest.New(t)
	source := writeSource(t, "batteries.csv", batteriesCSV)
	textfile := filepath.Join(t.TempDir(), "import.prom")
	var out bytes.Buffer

	// Act
	err := runImport(context.Background(), &out, db, metrics.New("catalog-test", false), zap.NewNop(), source,
		importOptions{chunkSize: 2, metricsTextfile: textfile})

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Category: battery")
	assert.Contains(t, out.String(), "Total processed: 3")
	assert.Contains(t, out.String(), "Successfully imported: 2")
	assert.Contains(t, out.String(), "Errors: 1")

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	prom, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `catalog_import_rows_total{outcome="succeeded",service="catalog-test"} 2`)
}

func TestRunImport_ExplicitCategoryWins(t *testing.T) {
	db := databasetest.New(t)
	source := writeSource(t, "export-2024.csv", "id,name,manufacturer,price\nC-1,MC4 Pair,Stäubli,9.99\n")
	var out bytes.Buffer

	err := runImport(context.Background(), &out, db, nil, zap.NewNop(), source,
		importOptions{category: "connector", chunkSize: 100})

	require.NoError(t, err)
	var category models.Category
	require.NoError(t, db.Where("slug = ?", "connector").Take(&category).Error)
	assert.Equal(t, "Connectors", category.Title)
}

func TestRunImport_ExitCodes(t *testing.T) {
	testCases := []struct {
		name     string
		source   func(t *testing.T) string
		opts     importOptions
		expected int
	}{
		{
			name:     "unresolved category",
			source:   func(t *testing.T) string { return writeSource(t, "products.csv", batteriesCSV) },
			opts:     importOptions{chunkSize: 100},
			expected: exitUsage,
		},
		{
			name:     "missing source",
			source:   func(t *testing.T) string { return filepath.Join(t.TempDir(), "batteries.csv") },
			opts:     importOptions{chunkSize: 100},
			expected: exitSource,
		},
		{
			name:     "non-positive chunk",
			source:   func(t *testing.T) string { return writeSource(t, "batteries.csv", batteriesCSV) },
			opts:     importOptions{chunkSize: 0},
			expected: exitUsage,
		},
		{
			name:     "missing mapping file",
			source:   func(t *testing.T) string { return writeSource(t, "batteries.csv", batteriesCSV) },
			opts:     importOptions{chunkSize: 100, mappingFile: "/nonexistent/mapping.yaml"},
			expected: exitConfig,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			db := databasetest.New(t)

			// Act
			err := runImport(context.Background(), &bytes.Buffer{}, db, nil, zap.NewNop(), tc.source(t), tc.opts)

			// Assert
			require.Error(t, err)
			assert.Equal(t, tc.expected, exitCode(err))
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, exitDB, exitCode(withCode(exitDB, errors.New("db down"))))
	assert.Nil(t, withCode(exitDB, nil))
}

func TestRootCmd_RequiresFile(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()

	assert.Error(t, err)
}
