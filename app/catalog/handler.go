package catalog

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/voltaic/catalog/app/api"
	"github.com/voltaic/catalog/app/filter"
	"github.com/voltaic/catalog/app/search"
	"github.com/voltaic/catalog/models"
)

const (
	DefaultPageSize    = 12
	DefaultMaxPageSize = 100
	MaxSearchLimit     = 100
)

type ProductProvider interface {
	GetFilteredProducts(ctx context.Context, offset, limit int, filter models.Scope) ([]models.Product, int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
}

type FilterCompiler interface {
	Compile(ctx context.Context, criteria filter.Criteria) (filter.Query, error)
}

type ProductSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]search.Result, error)
}

// Options are the paging defaults of the handler. Zero values fall back to
// the package defaults.
type Options struct {
	PageSize    int
	MaxPageSize int
	SearchLimit int
}

type CatalogHandler struct {
	repo     ProductProvider
	compiler FilterCompiler
	searcher ProductSearcher
	opts     Options
	validate *validator.Validate
	log      *zap.Logger
}

func NewCatalogHandler(r ProductProvider, c FilterCompiler, s ProductSearcher, opts Options, log *zap.Logger) *CatalogHandler {
	if opts.PageSize < 1 {
		opts.PageSize = DefaultPageSize
	}
	if opts.MaxPageSize < 1 {
		opts.MaxPageSize = DefaultMaxPageSize
	}
	if opts.SearchLimit < 1 {
		opts.SearchLimit = search.DefaultLimit
	}
	opts.SearchLimit = min(opts.SearchLimit, MaxSearchLimit)
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogHandler{
		repo:     r,
		compiler: c,
		searcher: s,
		opts:     opts,
		validate: validator.New(),
		log:      log,
	}
}

// HandleGet lists products matching the filter criteria of the query string,
// one page at a time.
func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	// Parse pagination query params
	limit := h.opts.PageSize
	if lStr := values.Get(filter.ParamLimit); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			if l < 1 {
				limit = 1
			} else if l > h.opts.MaxPageSize {
				limit = h.opts.MaxPageSize
			} else {
				limit = l
			}
		}
	}

	page := 1
	if pStr := values.Get(filter.ParamPage); pStr != "" {
		if p, err := strconv.Atoi(pStr); err == nil && p > 1 {
			page = p
		}
	}
	// keep the offset from overflowing
	page = min(page, math.MaxInt/limit)

	query, err := h.compiler.Compile(r.Context(), filter.ParseCriteria(values))
	if err != nil {
		h.log.Error("failed to compile product filter", zap.Error(err))
		_ = api.WriteError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	res, total, err := h.repo.GetFilteredProducts(r.Context(), (page-1)*limit, limit, query.Scope())
	if err != nil {
		h.log.Error("failed to list products", zap.Error(err))
		_ = api.WriteError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	meta := api.NewMeta(page, limit, total)
	_ = api.WriteData(w, api.NewProducts(res), &meta)
}

type searchRequest struct {
	Query string `validate:"required,min=1,max=255"`
	Limit int    `validate:"min=1,max=100"`
}

// HandleSearch ranks products against the q parameter.
func (h *CatalogHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	req := searchRequest{
		Query: values.Get("q"),
		Limit: h.opts.SearchLimit,
	}
	if lStr := values.Get(filter.ParamLimit); lStr != "" {
		l, err := strconv.Atoi(lStr)
		if err != nil {
			_ = api.WriteError(w, http.StatusUnprocessableEntity, "limit must be an integer")
			return
		}
		req.Limit = l
	}
	if err := h.validate.Struct(req); err != nil {
		_ = api.WriteError(w, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}

	results, err := h.searcher.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		h.log.Error("failed to search products", zap.String("query", req.Query), zap.Error(err))
		_ = api.WriteError(w, http.StatusInternalServerError, "failed to search products")
		return
	}

	out := make([]api.SearchResult, len(results))
	for i, res := range results {
		out[i] = api.SearchResult{Product: api.NewProduct(res.Product), Relevance: res.Relevance}
	}
	_ = api.WriteData(w, out, nil)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	switch fe := verrs[0]; fe.Field() {
	case "Query":
		return "q is required and must be at most 255 characters"
	case "Limit":
		return "limit must be between 1 and " + strconv.Itoa(MaxSearchLimit)
	default:
		return fe.Error()
	}
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	product, err := h.repo.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			_ = api.WriteError(w, http.StatusNotFound, "product not found")
			return
		}
		h.log.Error("failed to load product", zap.String("slug", slug), zap.Error(err))
		_ = api.WriteError(w, http.StatusInternalServerError, "failed to load product")
		return
	}

	_ = api.WriteData(w, api.NewProduct(*product), nil)
}
