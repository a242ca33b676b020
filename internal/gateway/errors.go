package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnreachable covers transport failures and timeouts.
	ErrUnreachable = errors.New("could not reach server")
	// ErrUnauthorized is returned (wrapped in an APIError) for 401 responses.
	ErrUnauthorized = errors.New("session expired or not authorized")
	// ErrNotFound is returned (wrapped in an APIError) for 404 responses.
	ErrNotFound = errors.New("resource not found")
)

// APIError is a rejection reported by the remote API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`

	err error
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.err }

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// decodeAPIError builds an APIError from a non-2xx response body. Structured
// {code, message} bodies win, legacy {error} bodies are carried whole, anything
// else falls back to the per-operation message.
func decodeAPIError(status int, body []byte, fallback string) *APIError {
	apiErr := &APIError{Status: status, Message: fallback}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		switch {
		case eb.Message != "":
			apiErr.Code = eb.Code
			apiErr.Message = eb.Message
		case eb.Error != "":
			apiErr.Code = eb.Code
			apiErr.Message = eb.Error
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) < 512 {
		apiErr.Message = text
	}

	switch status {
	case http.StatusUnauthorized:
		apiErr.err = ErrUnauthorized
		if apiErr.Code == "" {
			apiErr.Code = "unauthorized"
		}
	case http.StatusNotFound:
		apiErr.err = ErrNotFound
	}
	return apiErr
}
