package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/treecontrast/pkg/errors"
)

// errorResponse is the JSON body for all error statuses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps error codes to HTTP statuses. Contract violations in the
// submitted documents are 422: the request was well-formed but the inputs
// cannot be computed on.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidLabel,
		errors.ErrCodeMalformedTree,
		errors.ErrCodeTraitMismatch,
		errors.ErrCodeDegenerateBranch,
		errors.ErrCodeCycleDetected:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound,
		errors.ErrCodeRunNotFound,
		errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.Classify(err)
	status := statusFor(code)

	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}

	writeJSON(w, status, errorResponse{
		Error: errorBody{
			Code:    string(code),
			Message: errors.UserMessage(err),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
