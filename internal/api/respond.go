package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"rentacar/internal/gateway"
	"rentacar/internal/models"
	"rentacar/internal/service"
)

type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorResponse{Code: code, Message: message})
}

// writeServiceError maps service and gateway errors to the JSON error contract.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr   *service.ValidationError
		apiErr *gateway.APIError
	)

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "validation_failed",
			Message: "request is not valid",
			Errors:  verr.Errors,
		})
	case errors.Is(err, service.ErrInvalidWindow):
		writeError(w, http.StatusBadRequest, "invalid_window", err.Error())
	case errors.Is(err, models.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
	case errors.Is(err, gateway.ErrInvalidLogin):
		writeError(w, http.StatusBadGateway, "upstream_invalid", err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		code := apiErr.Code
		if code == "" {
			code = "upstream_rejected"
		}
		writeError(w, status, code, apiErr.Message)
	case errors.Is(err, gateway.ErrUnreachable):
		writeError(w, http.StatusBadGateway, "upstream_unreachable", gateway.ErrUnreachable.Error())
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func decodeBody(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
