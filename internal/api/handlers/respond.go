package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/hoot-be/internal/auth"
	"github.com/isdelr/hoot-be/internal/common"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ackMessage is the body of comment edit and removal responses.
var ackMessage = map[string]string{"message": "Ok"}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps a service error to a status code and logs it.
// Client errors are logged at warn, everything else at error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string, fields map[string]string) {
	status, msg := http.StatusInternalServerError, "Something went wrong, try again."
	switch {
	case errors.Is(err, common.ErrorValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorAlreadyExists):
		status, msg = http.StatusBadRequest, "User already exists, try again."
	case errors.Is(err, common.ErrorInvalidCredentials):
		status, msg = http.StatusBadRequest, "Invalid Credentials"
	case errors.Is(err, common.ErrorUnauthenticated):
		status, msg = http.StatusUnauthorized, "Invalid auth token"
	case errors.Is(err, common.ErrorForbidden):
		status, msg = http.StatusForbidden, "You're not allowed to do that!"
	case errors.Is(err, common.ErrorNotFound):
		status, msg = http.StatusNotFound, "Not found"
	case errors.Is(err, common.ErrorConcurrentModification):
		status, msg = http.StatusConflict, "The resource changed concurrently, try again."
	}

	var ev *zerolog.Event
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	} else {
		ev = log.Warn()
	}
	ev = ev.Err(err).Str("method", r.Method).Str("path", r.URL.Path)
	for k, v := range fields {
		ev = ev.Str(k, v)
	}
	ev.Msg(action)

	writeError(w, status, msg)
}

// callerClaims returns the verified identity placed on the request by auth.Middleware.
func callerClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Str("path", r.URL.Path).Msg("Could not retrieve user claims from context")
		writeError(w, http.StatusUnauthorized, "Missing auth token")
		return nil, false
	}
	return claims, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
