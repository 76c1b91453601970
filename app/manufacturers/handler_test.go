package manufacturers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/voltaic/catalog/app/api"
	"github.com/voltaic/catalog/models"
)

type MockManufacturerRepo struct {
	Manufacturers []models.Manufacturer
	Err           error
}

func (m *MockManufacturerRepo) GetAllManufacturers(context.Context) ([]models.Manufacturer, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Manufacturers, nil
}

func TestHandleGetAll(t *testing.T) {
	testCases := []struct {
		name               string
		repo               *MockManufacturerRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "Success",
			repo: &MockManufacturerRepo{Manufacturers: []models.Manufacturer{
				{ID: 2, Slug: "ecotech", Title: "Ecotech"},
				{ID: 1, Slug: "voltix", Title: "Voltix"},
			}},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp struct {
					Data []api.Manufacturer `json:"data"`
				}
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, []api.Manufacturer{
					{ID: 2, Slug: "ecotech", Title: "Ecotech"},
					{ID: 1, Slug: "voltix", Title: "Voltix"},
				}, resp.Data)
			},
		},
		{
			name:               "Empty list",
			repo:               &MockManufacturerRepo{},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
			},
		},
		{
			name:               "Repository error",
			repo:               &MockManufacturerRepo{Err: errors.New("db down")},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"error":"failed to fetch manufacturers"}`, rec.Body.String())
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			handler := NewManufacturerHandler(tc.repo, nil)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleGetAll(rec, httptest.NewRequest("GET", "/manufacturers", nil))

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			tc.checkResponse(t, rec)
		})
	}
}

func TestHandleGetAll_LogsRepositoryError(t *testing.T) {
	// Arrange
	core, logs := observer.New(zapcore.ErrorLevel)
	handler := NewManufacturerHandler(&MockManufacturerRepo{Err: errors.New("db down")}, zap.New(core))

	// Act
	handler.HandleGetAll(httptest.NewRecorder(), httptest.NewRequest("GET", "/manufacturers", nil))

	// Assert
	entries := logs.FilterMessage("failed to fetch manufacturers").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "db down", entries[0].ContextMap()["error"])
	}
}
