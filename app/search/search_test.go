package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=catalog dbname=catalog sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestTokens(t *testing.T) {
	testCases := []struct {
		in   string
		want []string
	}{
		{"eco", []string{"eco"}},
		{"  Eco   CELL ", []string{"eco", "cell"}},
		{"eco:* | !cell & (x)", []string{"eco", "cell", "x"}},
		{"Überstrom 12V", []string{"überstrom", "12v"}},
		{"   ", nil},
		{"| & !", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Tokens(tc.in))
		})
	}
}

func TestPrefixQuery(t *testing.T) {
	assert.Equal(t, "eco:*", PrefixQuery([]string{"eco"}))
	assert.Equal(t, "eco:* | cell:*", PrefixQuery([]string{"eco", "cell"}))
}

func TestSearch_BlankQueryDoesNotTouchStorage(t *testing.T) {
	s := New(nil, nil, nil)

	for _, q := range []string{"", "   ", "\t\n", "!!! ::"} {
		got, err := s.Search(context.Background(), q, 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestRankQuery_SQL(t *testing.T) {
	db := dryRunDB(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []rankedRow
		return rankQuery(tx, "eco:*", "eco", []uint{4, 9}, 5).Scan(&rows)
	})

	assert.Contains(t, sql, `SELECT products.id AS id, (3 * (CASE WHEN to_tsvector('simple', products.title) @@ to_tsquery('simple', 'eco:*') THEN 1 + ts_rank(to_tsvector('simple', products.title), plainto_tsquery('simple', 'eco'), 32) ELSE 0 END)`)
	assert.Contains(t, sql, `+ 2 * (CASE WHEN to_tsvector('simple', products.description) @@ to_tsquery('simple', 'eco:*')`)
	assert.Contains(t, sql, `+ 1 * (CASE WHEN products.manufacturer_id IN (4,9) THEN 1 ELSE 0 END)) AS relevance`)
	assert.Contains(t, sql, `FROM "products" WHERE to_tsvector('simple', products.title) @@ to_tsquery('simple', 'eco:*') OR to_tsvector('simple', products.description) @@ to_tsquery('simple', 'eco:*') OR products.manufacturer_id IN (4,9)`)
	assert.Contains(t, sql, `ORDER BY relevance DESC,products.id LIMIT 5`)
}

func TestRankQuery_SQLWithoutManufacturers(t *testing.T) {
	db := dryRunDB(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []rankedRow
		return rankQuery(tx, "eco:* | cell:*", "eco cell", nil, 10).Scan(&rows)
	})

	assert.Contains(t, sql, `+ 1 * 0) AS relevance`)
	assert.NotContains(t, sql, "manufacturer_id IN")
	assert.Contains(t, sql, `to_tsquery('simple', 'eco:* | cell:*')`)
	assert.Contains(t, sql, `plainto_tsquery('simple', 'eco cell')`)
}

func TestManufacturerQuery_SQL(t *testing.T) {
	db := dryRunDB(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var ids []uint
		return manufacturerQuery(tx, "eco:*").Pluck("manufacturers.id", &ids)
	})

	assert.Contains(t, sql, `FROM "manufacturers" WHERE to_tsvector('simple', manufacturers.title) @@ to_tsquery('simple', 'eco:*')`)
}
