package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/demoscope/demoscope/internal/errors"
	"github.com/demoscope/demoscope/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError maps an error to its HTTP shape. AppErrors carry their own
// status and user-safe message; everything else is a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		log.Warn("request error: %v", err)
		writeJSON(w, appErr.Status, errorResponse{Error: appErr.Message, Code: appErr.Code})
		return
	}

	log.Error("unhandled request error: %v", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error: "internal server error",
		Code:  apperrors.ErrCodeInternal,
	})
}
