package handler

import (
	"errors"
	"io"
	"net/http"

	"MiniBase/internal/domain"
	"MiniBase/internal/platform/api"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StatusFor maps a storage error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSchema), errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTransactionState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	output, err := json.Marshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(output)
}

func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusFor(err), api.ErrorResponse{Error: err.Error()})
}

// ReadJSON decodes the request body into v. Malformed bodies are validation errors.
func ReadJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return domain.IOError("read request body", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return domain.ValidationError("malformed request body: %v", err)
	}
	return nil
}
