package manufacturers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/voltaic/catalog/app/api"
	"github.com/voltaic/catalog/models"
)

type ManufacturerProvider interface {
	GetAllManufacturers(ctx context.Context) ([]models.Manufacturer, error)
}

type ManufacturerHandler struct {
	repo ManufacturerProvider
	log  *zap.Logger
}

func NewManufacturerHandler(r ManufacturerProvider, log *zap.Logger) *ManufacturerHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ManufacturerHandler{repo: r, log: log}
}

func (h *ManufacturerHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	manufacturers, err := h.repo.GetAllManufacturers(r.Context())
	if err != nil {
		h.log.Error("failed to fetch manufacturers", zap.Error(err))
		_ = api.WriteError(w, http.StatusInternalServerError, "failed to fetch manufacturers")
		return
	}

	response := make([]api.Manufacturer, len(manufacturers))
	for i, m := range manufacturers {
		response[i] = api.NewManufacturer(m)
	}
	_ = api.WriteData(w, response, nil)
}
