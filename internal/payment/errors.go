package payment

import (
	"errors"
	"fmt"
)

// ErrNotConfigured means gateway credentials are missing. Surfaces as a
// server error, never as a gateway failure.
var ErrNotConfigured = errors.New("payment gateway credentials not configured")

// ErrUnavailable means the gateway could not be reached at the transport
// level (connect failure, timeout). Maps to 503 at the handler.
var ErrUnavailable = errors.New("payment gateway unreachable")

// GatewayError is a non-2xx response from the gateway, with whatever
// structured detail the gateway supplied.
type GatewayError struct {
	HTTPStatus  int
	ErrorName   string `json:"errorName"`
	Message     string `json:"message"`
	Description string `json:"description"`
	CustomCode  string `json:"customCode"`
}

func (e *GatewayError) Error() string {
	if e.ErrorName != "" {
		return fmt.Sprintf("gateway returned %d (%s): %s", e.HTTPStatus, e.ErrorName, e.Message)
	}
	return fmt.Sprintf("gateway returned %d: %s", e.HTTPStatus, e.Message)
}
