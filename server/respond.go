package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ridoystarlord/custompost/apperr"
)

// envelope is the body shape of every API response.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

// writeError maps err onto its HTTP status and the error envelope. Storage
// failures are logged here since they are the only ones a caller cannot fix.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	code := apperr.CodeOf(err)
	status := apperr.HTTPStatus(code)
	if code == apperr.StorageFailure {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, envelope{
		Success: false,
		Message: apperr.PublicMessage(err),
		Errors:  apperr.FieldsOf(err),
	})
}
