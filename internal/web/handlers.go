package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/greendigit-eu/cnr-sql-adapter/internal/core"
)

// maxBodySize bounds the submission body. One event per request; anything
// bigger than this is not a valid envelope.
const maxBodySize = 1 << 20

// IngestResponse is the success body for POST /cnr-sql-adapter.
type IngestResponse struct {
	OK          bool   `json:"ok"`
	EventID     int64  `json:"event_id"`
	DetailTable string `json:"detail_table"`
	SiteID      int64  `json:"site_id"`
}

// DeleteResponse is the success body for DELETE /delete-cnr-entry/{event_id}.
type DeleteResponse struct {
	OK             bool   `json:"ok"`
	DeletedEventID int64  `json:"deleted_event_id"`
	SiteType       string `json:"site_type"`
}

// handleIngest accepts one telemetry event envelope and records it.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req core.IngestRequest

	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		respondError(w, r, &core.ValidationError{Field: "body", Reason: err.Error()})
		return
	}

	result, err := s.service.Ingest(r.Context(), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, IngestResponse{
		OK:          true,
		EventID:     result.EventID,
		DetailTable: result.DetailTable,
		SiteID:      result.SiteID,
	})
}

// handleGetEntry returns the fact and detail rows for one event.
func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	record, err := s.service.GetEvent(r.Context(), eventID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, record)
}

// handleDeleteEntry removes one event's detail and fact rows.
func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.service.DeleteEvent(r.Context(), eventID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, DeleteResponse{
		OK:             true,
		DeletedEventID: result.EventID,
		SiteType:       result.SiteType,
	})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// eventIDParam parses the event_id path parameter.
func eventIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "event_id")
	eventID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &core.ValidationError{Field: "event_id", Reason: "must be an integer"}
	}
	return eventID, nil
}
