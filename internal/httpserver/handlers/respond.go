package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/folio/internal/apiclient"
	"github.com/MrSnakeDoc/folio/internal/domain"
	"github.com/MrSnakeDoc/folio/internal/logger"
	"github.com/MrSnakeDoc/folio/internal/mutation"
)

const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Message string             `json:"message"`
	Errors  domain.FieldErrors `json:"errors"`
}

type mutationResponse struct {
	Data   any              `json:"data,omitempty"`
	Notice *mutation.Notice `json:"notice,omitempty"`
}

type failureResponse struct {
	Message string           `json:"message"`
	Notice  *mutation.Notice `json:"notice,omitempty"`
}

type confirmResponse struct {
	Message string `json:"message"`
	Confirm string `json:"confirm"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// decodeBody reads at most maxBodyBytes of JSON into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// writeError maps the error of an upstream call or a dashboard mutation
// to a response. notice is the notification the mutation emitted, if any.
func writeError(w http.ResponseWriter, log logger.Logger, err error, notice *mutation.Notice) {
	var fe domain.FieldErrors
	var te *apiclient.TransportError
	switch {
	case errors.As(err, &fe):
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Message: "validation failed", Errors: fe})
	case errors.Is(err, mutation.ErrInFlight):
		writeMessage(w, http.StatusConflict, "operation already in progress")
	case errors.Is(err, apiclient.ErrNotFound):
		writeJSON(w, http.StatusNotFound, failureResponse{Message: apiclient.Message(err), Notice: notice})
	case errors.As(err, &te):
		log.Warn("upstream call failed", logger.String("op", te.Op), logger.Int("status", te.Status), logger.Error(err))
		writeJSON(w, upstreamStatus(te.Status), failureResponse{Message: apiclient.Message(err), Notice: notice})
	default:
		log.Error("dashboard mutation failed", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, failureResponse{Message: apiclient.Message(err), Notice: notice})
	}
}

// upstreamStatus keeps client errors of the API and reports the rest as a bad gateway.
func upstreamStatus(status int) int {
	if status >= 400 && status < 500 {
		return status
	}
	return http.StatusBadGateway
}
