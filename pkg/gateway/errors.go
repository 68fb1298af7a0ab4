package gateway

import (
	"errors"
	"fmt"
	"strings"

	"github.com/papercomputeco/gwstream/pkg/llm"
)

// ErrNilRequest is returned when a completion is requested without a request.
var ErrNilRequest = errors.New("chat request is nil")

// APIError is a non-success HTTP status from the gateway.
type APIError struct {
	StatusCode int
	Body       string

	// Message is the error text extracted from Body, if any.
	Message string
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{
		StatusCode: status,
		Body:       strings.TrimSpace(string(body)),
		Message:    llm.ExtractErrorMessage(body),
	}
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Message)
	}
	if e.Body != "" {
		return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("gateway returned status %d", e.StatusCode)
}
