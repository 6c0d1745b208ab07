package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spigell/skillmatch/internal/gaps"
	"github.com/spigell/skillmatch/internal/matching"
)

// ErrValidation indicates a request body that failed decoding or validation.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the status code for an error produced while serving a
// request.
func HTTPStatus(err error) int {
	var validation *ErrValidation
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, matching.ErrInvalidArgument),
		errors.Is(err, matching.ErrMalformedEvidence),
		errors.Is(err, gaps.ErrInvalidConfig),
		errors.Is(err, gaps.ErrMalformedInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
