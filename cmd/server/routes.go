package main

import (
	"net/http"

	"github.com/rs/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/voltaic/catalog/app/catalog"
	"github.com/voltaic/catalog/app/categories"
	"github.com/voltaic/catalog/app/filter"
	"github.com/voltaic/catalog/app/manufacturers"
	"github.com/voltaic/catalog/app/search"
	"github.com/voltaic/catalog/config"
	"github.com/voltaic/catalog/metrics"
	"github.com/voltaic/catalog/models"
)

type handlers struct {
	catalog       *catalog.CatalogHandler
	categories    *categories.CategoryHandler
	manufacturers *manufacturers.ManufacturerHandler
}

func newHandlers(cfg *config.Config, db *gorm.DB, lookup filter.AttributeLookup, log *zap.Logger) handlers {
	products := models.NewProductsRepository(db)
	return handlers{
		catalog: catalog.NewCatalogHandler(
			products,
			filter.NewCompiler(lookup, log),
			search.New(db, products, log),
			catalog.Options{
				PageSize:    cfg.HTTP.PageSize,
				MaxPageSize: cfg.HTTP.MaxPageSize,
				SearchLimit: cfg.HTTP.SearchLimit,
			},
			log,
		),
		categories:    categories.NewCategoryHandler(models.NewCategoriesRepository(db), log),
		manufacturers: manufacturers.NewManufacturerHandler(products, log),
	}
}

func newRouter(cfg *config.Config, h handlers, m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()
	route := func(pattern, name string, fn http.HandlerFunc) {
		mux.Handle(pattern, m.Instrument(name, fn))
	}

	route("GET /products", "/products", h.catalog.HandleGet)
	route("GET /products/search", "/products/search", h.catalog.HandleSearch)
	route("GET /products/{slug}", "/products/{slug}", h.catalog.HandleGetProduct)
	route("GET /categories", "/categories", h.categories.HandleGetAll)
	route("GET /categories/{id}/attributes", "/categories/{id}/attributes", h.categories.HandleGetAttributes)
	route("GET /manufacturers", "/manufacturers", h.manufacturers.HandleGetAll)
	mux.Handle("GET "+cfg.HTTP.MetricsPath, m.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	return c.Handler(mux)
}
