package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/service/riskcsv"
	"github.com/neonzero/OpenERM/pkg/usecase"
	"github.com/neonzero/OpenERM/pkg/utils/errutil"
	"github.com/neonzero/OpenERM/pkg/utils/safe"
)

// statusOf maps use case error classes onto HTTP status codes
func statusOf(err error) int {
	switch {
	case usecase.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrValidation), errors.Is(err, riskcsv.ErrInvalidRow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

// decodeJSON reads the request body into v. Malformed bodies are validation errors.
func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return goerr.Wrap(err, "failed to read request body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return goerr.Wrap(usecase.ErrValidation, "malformed JSON body", goerr.V("error", err.Error()))
	}
	return nil
}
