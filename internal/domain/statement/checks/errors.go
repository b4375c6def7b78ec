package checks

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-checks/pkg/money"
)

var (
	// ErrCountMismatch matches any ValidationError of kind CountMismatch.
	ErrCountMismatch = errors.New("check count mismatch")
	// ErrTotalMismatch matches any ValidationError of kind TotalMismatch.
	ErrTotalMismatch = errors.New("check total mismatch")
)

// MismatchKind identifies which expectation was violated.
type MismatchKind string

const (
	CountMismatch MismatchKind = "count_mismatch"
	TotalMismatch MismatchKind = "total_mismatch"
)

// ValidationError reports an extraction that disagrees with the caller's
// expectations. For CountMismatch, Found and Expected hold whole numbers.
type ValidationError struct {
	Kind     MismatchKind
	Found    decimal.Decimal
	Expected decimal.Decimal
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case CountMismatch:
		return fmt.Sprintf("Expected %s checks, found %s", e.Expected.String(), e.Found.String())
	case TotalMismatch:
		return fmt.Sprintf("Check total mismatch: found %s, expected %s",
			e.Found.StringFixed(money.CentPlaces), e.Expected.String())
	default:
		return fmt.Sprintf("validation failed: found %s, expected %s", e.Found.String(), e.Expected.String())
	}
}

// Unwrap lets callers use errors.Is with ErrCountMismatch and ErrTotalMismatch.
func (e *ValidationError) Unwrap() error {
	switch e.Kind {
	case CountMismatch:
		return ErrCountMismatch
	case TotalMismatch:
		return ErrTotalMismatch
	default:
		return nil
	}
}

// AsValidationError extracts a *ValidationError from err's chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
