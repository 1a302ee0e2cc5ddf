package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/auth"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/service"
	"github.com/Lixing-Zhang/striv-storefront/backend/pkg/logger"
)

// messageResponse is the body of endpoints that only report an outcome.
type messageResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, log *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, message string, log *logger.Logger) {
	WriteJSON(w, status, map[string]interface{}{"error": message}, log)
}

// writeServiceError maps a service failure to its status code. Errors that
// are not *service.Error are logged and hidden behind a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", log)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	default:
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	body := map[string]interface{}{"error": svcErr.Error()}
	for k, v := range svcErr.Fields {
		body[k] = v
	}
	WriteJSON(w, status, body, log)
}

// decodeJSON reads the request body into dst. An empty body leaves dst at
// its zero value so required-field checks report the missing fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, log *logger.Logger) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	log.Warn("failed to decode request body", "path", r.URL.Path, "error", err)
	WriteError(w, http.StatusBadRequest, "Invalid request body", log)
	return false
}

// decodeValid decodes the body and runs struct validation on it.
func decodeValid(w http.ResponseWriter, r *http.Request, dst interface{}, log *logger.Logger) bool {
	if !decodeJSON(w, r, dst, log) {
		return false
	}
	if err := models.Validate(dst); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), log)
		return false
	}
	return true
}

// currentUser returns the authenticated user or writes a 401.
func currentUser(w http.ResponseWriter, r *http.Request, log *logger.Logger) (*models.User, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.", log)
	}
	return u, ok
}
