package web

// errors.go maps the core error taxonomy onto HTTP responses. The technical
// error is logged server-side with the request id; the client receives the
// coded user message.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/greendigit-eu/cnr-sql-adapter/internal/core"
	"github.com/greendigit-eu/cnr-sql-adapter/internal/logging"
)

// ErrorResponse is the JSON structure for error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor maps a core error to its HTTP status.
// Validation and unsupported-type failures are client errors; an unknown
// event id is not-found; everything else, including the missing-detail
// integrity defect, is a server error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrEventNotFound):
		return http.StatusNotFound
	case core.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err with request context and writes the mapped JSON
// error response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error",
			"error", err,
			"request_id", middleware.GetReqID(r.Context()),
		)
	}
}
