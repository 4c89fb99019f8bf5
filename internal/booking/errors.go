package booking

import (
	"errors"
	"fmt"

	"github.com/zayas4k/barberbook/internal/storage"
)

// ValidationError rejects a create request before any storage interaction.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsSlotTaken reports whether a create lost the race for its slot. The
// caller should re-fetch availability and prompt re-selection.
func IsSlotTaken(err error) bool {
	return storage.IsSlotTaken(err)
}
