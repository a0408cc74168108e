// Package dataentry implements the seven-state lifecycle a polling
// station's results go through: a first entry, a second entry by a
// different typist, structural comparison of the two, and resolution of
// any disagreement, ending in a definitive result.
package dataentry

import (
	"fmt"

	"github.com/rawblock/kieswet-engine/internal/domain"
	"github.com/rawblock/kieswet-engine/internal/validation"
)

// TransitionError reports that a requested state transition could not be
// applied, either because the current state doesn't allow it, because the
// wrong user attempted it, or because the entry being finalised failed
// validation.
type TransitionError struct {
	Kind TransitionErrorKind

	// DataErr is set when Kind is ValidatorError.
	DataErr *domain.DataError
	// ValidationErr is set when Kind is ValidationError.
	ValidationErr validation.Results
}

// TransitionErrorKind enumerates the ways a transition can be refused.
type TransitionErrorKind string

const (
	ErrInvalid                         TransitionErrorKind = "invalid"
	ErrFirstEntryAlreadyClaimed         TransitionErrorKind = "first_entry_already_claimed"
	ErrSecondEntryAlreadyClaimed        TransitionErrorKind = "second_entry_already_claimed"
	ErrFirstEntryAlreadyFinalised       TransitionErrorKind = "first_entry_already_finalised"
	ErrSecondEntryAlreadyFinalised      TransitionErrorKind = "second_entry_already_finalised"
	ErrCannotTransitionUsingDifferentUser TransitionErrorKind = "cannot_transition_using_different_user"
	ErrSecondEntryNeedsDifferentUser    TransitionErrorKind = "second_entry_needs_different_user"
	ErrValidatorError                  TransitionErrorKind = "validator_error"
	ErrValidationError                 TransitionErrorKind = "validation_error"
)

func (e *TransitionError) Error() string {
	switch e.Kind {
	case ErrValidatorError:
		return fmt.Sprintf("data entry transition: %s", e.DataErr.Error())
	case ErrValidationError:
		return "data entry transition: entry has validation errors"
	default:
		return fmt.Sprintf("data entry transition: %s", string(e.Kind))
	}
}

func simple(kind TransitionErrorKind) error {
	return &TransitionError{Kind: kind}
}

func fromDataError(err *domain.DataError) error {
	return &TransitionError{Kind: ErrValidatorError, DataErr: err}
}

func fromValidationResults(results validation.Results) error {
	return &TransitionError{Kind: ErrValidationError, ValidationErr: results}
}
