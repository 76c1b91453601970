// Package api holds the JSON envelope shared by the HTTP handlers.
package api

import (
	"encoding/json"
	"net/http"
)

// ErrorEnvelope is the body of every error response.
type ErrorEnvelope struct {
	Error string `json:"error"`
}

// Meta describes one page of a paginated listing.
type Meta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

// Envelope wraps response data, with Meta set on paginated listings.
type Envelope struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// NewMeta computes the page meta. LastPage is at least 1.
func NewMeta(page, perPage int, total int64) Meta {
	last := 1
	if perPage > 0 && total > 0 {
		last = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return Meta{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    last,
	}
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

// WriteData writes data inside an Envelope with status 200.
func WriteData(w http.ResponseWriter, data any, meta *Meta) error {
	return WriteJSON(w, http.StatusOK, Envelope{Data: data, Meta: meta})
}

func WriteError(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, ErrorEnvelope{Error: message})
}
