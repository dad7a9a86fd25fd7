package apihttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"maintenance-kpi/internal/failure"
)

type errorResponse struct {
	Error string `json:"error"`
}

type noDataResponse struct {
	NoData bool   `json:"no_data"`
	Reason string `json:"reason"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps an error kind to a response. NoData is a successful
// response carrying no value.
func writeError(w http.ResponseWriter, logger *log.Logger, op string, err error) {
	if errors.Is(err, failure.ErrNoData) {
		writeJSON(w, http.StatusOK, noDataResponse{NoData: true, Reason: err.Error()})
		return
	}
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Printf("api %s error: %v", op, err)
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, failure.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, failure.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, failure.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, failure.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func parsePeriods(r *http.Request, fallback int) (int, error) {
	value := r.URL.Query().Get("periods")
	if value == "" {
		return fallback, nil
	}
	periods, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("periods must be an integer: %w", failure.ErrInvalidArgument)
	}
	return periods, nil
}
