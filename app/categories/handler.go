package categories

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/voltaic/catalog/app/api"
	"github.com/voltaic/catalog/models"
)

type CategoryProvider interface {
	GetAllCategories(ctx context.Context, slug string) ([]models.Category, error)
	GetCategoryAttributes(ctx context.Context, categoryID uint) ([]models.Attribute, error)
}

type CategoryHandler struct {
	repo CategoryProvider
	log  *zap.Logger
}

func NewCategoryHandler(r CategoryProvider, log *zap.Logger) *CategoryHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CategoryHandler{repo: r, log: log}
}

// HandleGetAll lists categories, optionally narrowed by the slug parameter.
func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAllCategories(r.Context(), r.URL.Query().Get("slug"))
	if err != nil {
		h.log.Error("failed to fetch categories", zap.Error(err))
		_ = api.WriteError(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}

	response := make([]api.Category, len(categories))
	for i, c := range categories {
		response[i] = api.NewCategory(c)
	}
	_ = api.WriteData(w, response, nil)
}

// HandleGetAttributes lists the attributes of the category in the id path
// value, with their options.
func (h *CategoryHandler) HandleGetAttributes(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil || id == 0 {
		_ = api.WriteError(w, http.StatusNotFound, "category not found")
		return
	}

	attrs, err := h.repo.GetCategoryAttributes(r.Context(), uint(id))
	if err != nil {
		if errors.Is(err, models.ErrCategoryNotFound) {
			_ = api.WriteError(w, http.StatusNotFound, "category not found")
			return
		}
		h.log.Error("failed to fetch category attributes", zap.Uint64("category_id", id), zap.Error(err))
		_ = api.WriteError(w, http.StatusInternalServerError, "failed to fetch category attributes")
		return
	}

	response := make([]api.Attribute, len(attrs))
	for i, a := range attrs {
		response[i] = api.NewAttribute(a)
	}
	_ = api.WriteData(w, response, nil)
}
