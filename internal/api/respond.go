package api

import (
	"encoding/json"
	"net/http"

	"github.com/MikeSquared-Agency/colive/internal/processor"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, kind processor.Kind, message string) {
	respondJSON(w, statusFor(kind), map[string]string{
		"error": message,
		"kind":  string(kind),
	})
}

func statusFor(kind processor.Kind) int {
	switch kind {
	case processor.KindInvalidRequest:
		return http.StatusBadRequest
	case processor.KindTransport:
		return http.StatusBadGateway
	case processor.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
