package importer

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/voltaic/catalog/app/codec"
	"github.com/voltaic/catalog/models"
)

// ProductStore persists one product with its full value set atomically.
type ProductStore interface {
	ReplaceProduct(ctx context.Context, p *models.Product, values models.ValuesBuilder) (bool, error)
}

type DatabaseWriter struct {
	store ProductStore
	log   *zap.Logger
}

func NewDatabaseWriter(store ProductStore, log *zap.Logger) *DatabaseWriter {
	if log == nil {
		log = zap.NewNop()
	}
	return &DatabaseWriter{store: store, log: log}
}

// Write stores rec in its own transaction. An existing product with the same
// external id is updated and its attribute values replaced.
func (w *DatabaseWriter) Write(ctx context.Context, rec Record) error {
	product := rec.Product
	created, err := w.store.ReplaceProduct(ctx, &product, w.valuesOf(rec))
	if err != nil {
		w.log.Error("failed to write product",
			zap.Int("line", rec.Line),
			zap.Stringp("external_id", product.ExternalID),
			zap.String("title", product.Title),
			zap.String("slug", product.Slug),
			zap.String("price", product.Price.String()),
			zap.Error(err))
		return err
	}

	action := "updated product"
	if created {
		action = "created product"
	}
	w.log.Debug(action,
		zap.Uint("product_id", product.ID),
		zap.Stringp("external_id", product.ExternalID),
		zap.String("slug", product.Slug))
	return nil
}

// WriteBatch writes records one by one and returns how many succeeded. A
// failed record does not undo the ones written before it.
func (w *DatabaseWriter) WriteBatch(ctx context.Context, recs []Record) int {
	ok := 0
	for _, rec := range recs {
		if err := w.Write(ctx, rec); err == nil {
			ok++
		}
	}
	return ok
}

// valuesOf encodes the pending values of rec inside the write transaction.
// A cell that does not fit its attribute's type is dropped with a warning.
func (w *DatabaseWriter) valuesOf(rec Record) models.ValuesBuilder {
	return func(ctx context.Context, dict *models.DictionaryRepository) ([]models.ProductAttributeValue, error) {
		values := make([]models.ProductAttributeValue, 0, len(rec.Values))
		for _, pv := range rec.Values {
			attr := pv.Attribute
			resolve := func(ctx context.Context, label string) (uint, error) {
				opt, created, err := dict.GetOrCreateOption(ctx, attr.ID, label)
				if err != nil {
					return 0, err
				}
				if created {
					w.log.Info("created attribute option",
						zap.String("attribute", attr.Slug),
						zap.String("label", opt.Label),
						zap.Uint("option_id", opt.ID))
				}
				return opt.ID, nil
			}

			v, err := codec.ParseCell(ctx, attr.Type, pv.Raw, resolve)
			if errors.Is(err, codec.ErrInvalidValue) || errors.Is(err, codec.ErrUnknownType) {
				w.log.Warn("dropping attribute value",
					zap.Int("line", rec.Line),
					zap.String("attribute", attr.Slug),
					zap.String("value", pv.Raw),
					zap.Error(err))
				continue
			}
			if err != nil {
				return nil, err
			}

			pav := models.ProductAttributeValue{AttributeID: attr.ID}
			codec.Encode(v).Apply(&pav)
			values = append(values, pav)
		}
		return values, nil
	}
}
