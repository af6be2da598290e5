package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/model"
)

// rejectionStatus maps each rejection kind to its HTTP status.
var rejectionStatus = map[model.RejectionKind]int{
	model.KindNotFound:            http.StatusNotFound,
	model.KindInvalidInput:        http.StatusBadRequest,
	model.KindInsufficientPayment: http.StatusPaymentRequired,
	model.KindInvalidState:        http.StatusConflict,
	model.KindUnauthorized:        http.StatusForbidden,
	model.KindTransferFailed:      http.StatusFailedDependency,
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorResponse{Error: message})
}

// respondError writes err as a JSON error. Rejections carry their kind as the
// code; anything else is logged and reported as an internal error.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var rej *model.Rejection
	if errors.As(err, &rej) {
		status, ok := rejectionStatus[rej.Kind]
		if !ok {
			status = http.StatusBadRequest
		}
		jsonResponse(w, status, errorResponse{Error: rej.Error(), Code: string(rej.Kind)})
		return
	}

	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	jsonResponse(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
}

// decodeJSON decodes a JSON request body into the given target, refusing
// unknown fields.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}
