// Package search ranks products against free text using PostgreSQL full-text
// search.
//
// Every whitespace separated token is matched as a prefix against product
// titles, descriptions and manufacturer names. Matching products are ordered
// by a weighted score: title 3, description 2, manufacturer 1.
package search

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/voltaic/catalog/models"
)

// Field weights of the relevance score.
const (
	TitleWeight        = 3
	DescriptionWeight  = 2
	ManufacturerWeight = 1
)

// DefaultLimit is used when a search asks for no limit.
const DefaultLimit = 10

// ProductLoader loads full products keeping the order of ids.
type ProductLoader interface {
	GetByIDs(ctx context.Context, ids []uint) ([]models.Product, error)
}

// Result is a product with its relevance score.
type Result struct {
	Product   models.Product
	Relevance float64
}

type Searcher struct {
	db       *gorm.DB
	products ProductLoader
	log      *zap.Logger
}

func New(db *gorm.DB, products ProductLoader, log *zap.Logger) *Searcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Searcher{db: db, products: products, log: log}
}

// Tokens splits query on whitespace and keeps the letters and digits of each
// token, lower-cased. Tokens left empty are dropped.
func Tokens(query string) []string {
	var tokens []string
	for _, field := range strings.Fields(query) {
		var b strings.Builder
		for _, r := range field {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(unicode.ToLower(r))
			}
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
		}
	}
	return tokens
}

// PrefixQuery builds a tsquery matching any token as a prefix.
func PrefixQuery(tokens []string) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t + ":*"
	}
	return strings.Join(parts, " | ")
}

const (
	titleVector        = "to_tsvector('simple', products.title)"
	descriptionVector  = "to_tsvector('simple', products.description)"
	manufacturerVector = "to_tsvector('simple', manufacturers.title)"
	prefixTSQuery      = "to_tsquery('simple', ?)"
	plainTSQuery       = "plainto_tsquery('simple', ?)"
)

// fieldScore is 1 plus the normalized rank of the whole query when the field
// matches the prefix query, 0 otherwise.
func fieldScore(vector string) string {
	return fmt.Sprintf("(CASE WHEN %[1]s @@ %[2]s THEN 1 + ts_rank(%[1]s, %[3]s, 32) ELSE 0 END)",
		vector, prefixTSQuery, plainTSQuery)
}

type rankedRow struct {
	ID        uint
	Relevance float64
}

// Search returns at most limit products matching query, best first. A query
// without tokens returns no results and does not touch the database.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	tokens := Tokens(query)
	if len(tokens) == 0 {
		return nil, nil
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	prefix := PrefixQuery(tokens)
	plain := strings.Join(tokens, " ")
	tx := s.db.WithContext(ctx)

	manufacturerIDs, err := s.matchingManufacturers(tx, prefix)
	if err != nil {
		return nil, err
	}

	var rows []rankedRow
	if err := rankQuery(tx, prefix, plain, manufacturerIDs, limit).Scan(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to rank products")
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uint, len(rows))
	relevance := make(map[uint]float64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
		relevance[r.ID] = r.Relevance
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(products))
	for i, p := range products {
		results[i] = Result{Product: p, Relevance: relevance[p.ID]}
	}
	s.log.Debug("search",
		zap.Strings("tokens", tokens),
		zap.Int("manufacturers", len(manufacturerIDs)),
		zap.Int("results", len(results)))
	return results, nil
}

func (s *Searcher) matchingManufacturers(tx *gorm.DB, prefix string) ([]uint, error) {
	var ids []uint
	if err := manufacturerQuery(tx, prefix).Pluck("manufacturers.id", &ids).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to match manufacturers")
	}
	return ids, nil
}

func manufacturerQuery(tx *gorm.DB, prefix string) *gorm.DB {
	return tx.Model(&models.Manufacturer{}).
		Where(manufacturerVector+" @@ "+prefixTSQuery, prefix)
}

func rankQuery(tx *gorm.DB, prefix, plain string, manufacturerIDs []uint, limit int) *gorm.DB {
	manufacturerScore := "0"
	var manufacturerArgs []any
	if len(manufacturerIDs) > 0 {
		manufacturerScore = "(CASE WHEN products.manufacturer_id IN ? THEN 1 ELSE 0 END)"
		manufacturerArgs = []any{manufacturerIDs}
	}

	relevance := fmt.Sprintf("%d * %s + %d * %s + %d * %s",
		TitleWeight, fieldScore(titleVector),
		DescriptionWeight, fieldScore(descriptionVector),
		ManufacturerWeight, manufacturerScore)
	selectArgs := append([]any{prefix, plain, prefix, plain}, manufacturerArgs...)

	match := titleVector + " @@ " + prefixTSQuery + " OR " + descriptionVector + " @@ " + prefixTSQuery
	matchArgs := []any{prefix, prefix}
	if len(manufacturerIDs) > 0 {
		match += " OR products.manufacturer_id IN ?"
		matchArgs = append(matchArgs, manufacturerIDs)
	}

	return tx.Model(&models.Product{}).
		Select("products.id AS id, ("+relevance+") AS relevance", selectArgs...).
		Where(match, matchArgs...).
		Order("relevance DESC").
		Order("products.id").
		Limit(limit)
}
