package blogapp

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/TahaY291/blogapp/logger"
)

// Error taxonomy shared by the store, the service and the HTTP layer.
// The error handler maps each of these to a stable status code.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrUpstream           = errors.New("upstream failure")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRateLimited        = errors.New("too many attempts, try again later")
)

// ValidationError carries field-level messages. It unwraps to ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// invalid builds a single-field ValidationError.
func invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// upstream passes taxonomy errors through and turns anything else (a
// database or image host failure) into a logged ErrUpstream.
func upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrValidation, ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrConflict, ErrUpstream, ErrInvalidCredentials} {
		if errors.Is(err, known) {
			return err
		}
	}
	logger.Errorf("%s: %v", op, err)
	return fmt.Errorf("%s: %w", op, ErrUpstream)
}
