package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Import.ChunkSize)
	assert.Equal(t, 12, cfg.HTTP.PageSize)
	assert.Equal(t, 100, cfg.HTTP.MaxPageSize)
	assert.Equal(t, 10, cfg.HTTP.SearchLimit)
	assert.Equal(t, time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSAllowedOrigins)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "shop")
	t.Setenv("IMPORT_CHUNK_SIZE", "250")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Import.ChunkSize)
	assert.Contains(t, cfg.Database.DSN(), "host=db.internal")
	assert.Contains(t, cfg.Database.DSN(), "dbname=shop")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSAllowedOrigins)
}

func TestParse_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		val  string
	}{
		{"zero chunk", "IMPORT_CHUNK_SIZE", "0"},
		{"page size above max", "PAGE_SIZE", "500"},
		{"not a number", "SEARCH_LIMIT", "ten"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("CATALOG_TEST_VALUE=from-file\n"), 0o600))
	t.Setenv("CATALOG_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("CATALOG_TEST_VALUE"))

	n, err := LoadEnv([]string{file, filepath.Join(dir, ".env.local")})
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, "from-file", os.Getenv("CATALOG_TEST_VALUE"))
}
