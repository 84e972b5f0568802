package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/roma2023/SketchAI/internal/datauri"
)

var (
	errInvalidBody  = errors.New("invalid request body")
	errBodyTooLarge = errors.New("request body too large")
)

func respondWithJSON(w http.ResponseWriter, status int, data interface{}) {
	jsonBody, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(jsonBody)
}

// publicError maps an internal error to the status and message a caller may
// see. Anything not listed here is reported as a generic conversion failure.
func publicError(err error) (int, string) {
	switch {
	case errors.Is(err, datauri.ErrInvalidImageData):
		return http.StatusBadRequest, "Invalid image data"
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, "Invalid request body"
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge, "Request body too large"
	default:
		return http.StatusInternalServerError, "Failed to convert sketch"
	}
}

func respondWithError(w http.ResponseWriter, err error) {
	status, message := publicError(err)
	respondWithJSON(w, status, ErrorResponse{Error: message})
}
