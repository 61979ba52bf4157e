package subscription

import (
	"errors"
	"fmt"

	"github.com/fatflowers/financeplus/internal/app/store"
)

// Error kinds returned by the service. Match them with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidState     = errors.New("invalid subscription state")
	ErrAlreadyCancelled = errors.New("subscription already cancelled")
	ErrValidation       = errors.New("validation failed")
	ErrInfrastructure   = errors.New("storage failure")
)

var kinds = []error{ErrNotFound, ErrConflict, ErrInvalidState, ErrAlreadyCancelled, ErrValidation, ErrInfrastructure}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// classify maps storage errors onto the service error kinds.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return err
		}
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return fmt.Errorf("%w: %w", ErrInfrastructure, err)
}

// Kind names the error kind of err for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrAlreadyCancelled):
		return "already_cancelled"
	case errors.Is(err, ErrValidation):
		return "validation"
	default:
		return "infrastructure"
	}
}
