package dataentry

import (
	"time"

	"github.com/rawblock/kieswet-engine/internal/domain"
	"github.com/rawblock/kieswet-engine/internal/validation"
)

// CurrentEntry carries the arguments a typist's save submits: the entry
// itself, who is submitting it, how far along they say they are, and
// their opaque client-side UI state.
type CurrentEntry struct {
	UserID      domain.UserID
	Entry       domain.PollingStationResults
	Progress    int
	ClientState domain.ClientState
}

// ClaimFirst starts or resumes the first entry for a user. A second claim
// by the same user who already holds it is a no-op; a claim by anyone
// else while it's held is refused.
func ClaimFirst(status domain.DataEntryStatus, entry CurrentEntry) (domain.DataEntryStatus, error) {
	switch status.Kind {
	case domain.KindFirstEntryNotStarted:
		return domain.DataEntryStatus{
			Kind: domain.KindFirstEntryInProgress,
			FirstInProgress: &domain.FirstEntryInProgress{
				Progress:         entry.Progress,
				FirstEntryUserID: entry.UserID,
				FirstEntry:       entry.Entry,
				ClientState:      entry.ClientState,
			},
		}, nil
	case domain.KindFirstEntryInProgress:
		if status.FirstInProgress.FirstEntryUserID == entry.UserID {
			return status, nil
		}
		return domain.DataEntryStatus{}, simple(ErrFirstEntryAlreadyClaimed)
	case domain.KindSecondEntryNotStarted, domain.KindSecondEntryInProgress:
		return domain.DataEntryStatus{}, simple(ErrFirstEntryAlreadyFinalised)
	case domain.KindDefinitive:
		return domain.DataEntryStatus{}, simple(ErrSecondEntryAlreadyFinalised)
	default:
		return domain.DataEntryStatus{}, simple(ErrInvalid)
	}
}

// ClaimSecond starts or resumes the second entry. It must be claimed by a
// user other than whoever finalised the first entry, and the claimed
// entry's tagged variant must match the finalised first entry's.
func ClaimSecond(status domain.DataEntryStatus, entry CurrentEntry) (domain.DataEntryStatus, error) {
	switch status.Kind {
	case domain.KindSecondEntryNotStarted:
		state := status.SecondNotStarted
		if entry.UserID == state.FirstEntryUserID {
			return domain.DataEntryStatus{}, simple(ErrSecondEntryNeedsDifferentUser)
		}
		if !state.FinalisedFirstEntry.IsSameModel(entry.Entry) {
			return domain.DataEntryStatus{}, simple(ErrInvalid)
		}
		return domain.DataEntryStatus{
			Kind: domain.KindSecondEntryInProgress,
			SecondInProgress: &domain.SecondEntryInProgress{
				FirstEntryUserID:     state.FirstEntryUserID,
				FinalisedFirstEntry:  state.FinalisedFirstEntry,
				FirstEntryFinishedAt: state.FirstEntryFinishedAt,
				Progress:             entry.Progress,
				SecondEntryUserID:    entry.UserID,
				SecondEntry:          entry.Entry,
				ClientState:          entry.ClientState,
			},
		}, nil
	case domain.KindSecondEntryInProgress:
		if status.SecondInProgress.SecondEntryUserID == entry.UserID {
			return status, nil
		}
		return domain.DataEntryStatus{}, simple(ErrSecondEntryAlreadyClaimed)
	case domain.KindDefinitive:
		return domain.DataEntryStatus{}, simple(ErrSecondEntryAlreadyFinalised)
	default:
		return domain.DataEntryStatus{}, simple(ErrInvalid)
	}
}

// UpdateFirst saves new values into an in-progress first entry; the
// saving user must match the one who claimed it, and the saved entry must
// still be the same tagged variant (first-session vs. next-session) as
// the one originally claimed.
func UpdateFirst(status domain.DataEntryStatus, entry CurrentEntry) (domain.DataEntryStatus, error) {
	if status.Kind != domain.KindFirstEntryInProgress {
		return updateFirstRefusal(status)
	}
	state := status.FirstInProgress
	if state.FirstEntryUserID != entry.UserID {
		return domain.DataEntryStatus{}, simple(ErrCannotTransitionUsingDifferentUser)
	}
	if !state.FirstEntry.IsSameModel(entry.Entry) {
		return domain.DataEntryStatus{}, simple(ErrInvalid)
	}
	return domain.DataEntryStatus{
		Kind: domain.KindFirstEntryInProgress,
		FirstInProgress: &domain.FirstEntryInProgress{
			Progress:         entry.Progress,
			FirstEntryUserID: state.FirstEntryUserID,
			FirstEntry:       entry.Entry,
			ClientState:      entry.ClientState,
		},
	}, nil
}

func updateFirstRefusal(status domain.DataEntryStatus) (domain.DataEntryStatus, error) {
	switch status.Kind {
	case domain.KindSecondEntryNotStarted, domain.KindSecondEntryInProgress:
		return domain.DataEntryStatus{}, simple(ErrFirstEntryAlreadyFinalised)
	case domain.KindDefinitive:
		return domain.DataEntryStatus{}, simple(ErrSecondEntryAlreadyFinalised)
	default:
		return domain.DataEntryStatus{}, simple(ErrInvalid)
	}
}

// UpdateSecond saves new values into an in-progress second entry, with
// the same user and model-shape discipline as UpdateFirst.
func UpdateSecond(status domain.DataEntryStatus, entry CurrentEntry) (domain.DataEntryStatus, error) {
	if status.Kind == domain.KindDefinitive {
		return domain.DataEntryStatus{}, simple(ErrSecondEntryAlreadyFinalised)
	}
	if status.Kind != domain.KindSecondEntryInProgress {
		return domain.DataEntryStatus{}, simple(ErrInvalid)
	}
	state := status.SecondInProgress
	if state.SecondEntryUserID != entry.UserID {
		return domain.DataEntryStatus{}, simple(ErrCannotTransitionUsingDifferentUser)
	}
	if !state.SecondEntry.IsSameModel(entry.Entry) {
		return domain.DataEntryStatus{}, simple(ErrInvalid)
	}
	return domain.DataEntryStatus{
		Kind: domain.KindSecondEntryInProgress,
		SecondInProgress: &domain.SecondEntryInProgress{
			FirstEntryUserID:     state.FirstEntryUserID,
			FinalisedFirstEntry:  state.FinalisedFirstEntry,
			FirstEntryFinishedAt: state.FirstEntryFinishedAt,
			Progress:             entry.Progress,
			SecondEntryUserID:    state.SecondEntryUserID,
			SecondEntry:          entry.Entry,
			ClientState:          entry.ClientState,
		},
	}, nil
}

// FinaliseFirst validates the in-progress first entry and moves to
// either FirstEntryHasErrors or SecondEntryNotStarted, depending on
// whether any blocking diagnostic fired.
func FinaliseFirst(status domain.DataEntryStatus, userID domain.UserID, election domain.Election) (domain.DataEntryStatus, error) {
	switch status.Kind {
	case domain.KindFirstEntryInProgress:
		state := status.FirstInProgress
		if state.FirstEntryUserID != userID {
			return domain.DataEntryStatus{}, simple(ErrCannotTransitionUsingDifferentUser)
		}
		results, err := validation.Validate(state.FirstEntry, election)
		if err != nil {
			return domain.DataEntryStatus{}, fromDataError(err.(*domain.DataError))
		}
		now := time.Now()
		if results.HasErrors() {
			return domain.DataEntryStatus{
				Kind: domain.KindFirstEntryHasErrors,
				FirstHasErrors: &domain.FirstEntryHasErrors{
					FirstEntryUserID:     state.FirstEntryUserID,
					FinalisedFirstEntry:  state.FirstEntry,
					FirstEntryFinishedAt: now,
				},
			}, nil
		}
		return domain.DataEntryStatus{
			Kind: domain.KindSecondEntryNotStarted,
			SecondNotStarted: &domain.SecondEntryNotStarted{
				FirstEntryUserID:      state.FirstEntryUserID,
				FinalisedFirstEntry:   state.FirstEntry,
				FirstEntryFinishedAt:  now,
				FinalisedWithWarnings: results.HasWarnings(),
			},
		}, nil
	case domain.KindSecondEntryNotStarted, domain.KindSecondEntryInProgress:
		return domain.DataEntryStatus{}, simple(ErrFirstEntryAlreadyFinalised)
	case domain.KindDefinitive:
		return domain.DataEntryStatus{}, simple(ErrSecondEntryAlreadyFinalised)
	default:
		return domain.DataEntryStatus{}, simple(ErrInvalid)
	}
}

// FinalisationOutcome is the result of FinaliseSecond: either a
// Definitive status and the agreed result, or an EntriesDifferent status
// with no result (the caller still needs a reviewer to resolve it).
type FinalisationOutcome struct {
	Status domain.DataEntryStatus
	Result *domain.PollingStationResults
	// Differences carries the W001 diagnostic when Status lands on
	// EntriesDifferent: the dotted field paths where the two entries
	// disagreed. Nil whenever Status is Definitive.
	Differences *validation.Diagnostic
}

// FinaliseSecond validates the in-progress second entry and structurally
// compares it against the finalised first entry. Agreement moves to
// Definitive; disagreement moves to EntriesDifferent.
func FinaliseSecond(status domain.DataEntryStatus, userID domain.UserID, election domain.Election) (FinalisationOutcome, error) {
	if status.Kind == domain.KindDefinitive {
		return FinalisationOutcome{}, simple(ErrSecondEntryAlreadyFinalised)
	}
	if status.Kind != domain.KindSecondEntryInProgress {
		return FinalisationOutcome{}, simple(ErrInvalid)
	}
	state := status.SecondInProgress
	if state.SecondEntryUserID != userID {
		return FinalisationOutcome{}, simple(ErrCannotTransitionUsingDifferentUser)
	}

	diffs := validation.Compare(state.FinalisedFirstEntry, state.SecondEntry)
	if len(diffs) == 0 {
		results, err := validation.Validate(state.SecondEntry, election)
		if err != nil {
			return FinalisationOutcome{}, fromDataError(err.(*domain.DataError))
		}
		if results.HasErrors() {
			return FinalisationOutcome{}, fromValidationResults(results)
		}
		entry := state.SecondEntry
		return FinalisationOutcome{
			Status: domain.DataEntryStatus{
				Kind: domain.KindDefinitive,
				Definitive: &domain.Definitive{
					FirstEntryUserID:      state.FirstEntryUserID,
					SecondEntryUserID:     state.SecondEntryUserID,
					FinishedAt:            time.Now(),
					FinalisedWithWarnings: results.HasWarnings(),
				},
			},
			Result: &entry,
		}, nil
	}

	diagnostic := validation.EntriesDifferDiagnostic(diffs)
	return FinalisationOutcome{
		Status: domain.DataEntryStatus{
			Kind: domain.KindEntriesDifferent,
			Different: &domain.EntriesDifferent{
				FirstEntryUserID:      state.FirstEntryUserID,
				SecondEntryUserID:     state.SecondEntryUserID,
				FirstEntry:            state.FinalisedFirstEntry,
				SecondEntry:           state.SecondEntry,
				FirstEntryFinishedAt:  state.FirstEntryFinishedAt,
				SecondEntryFinishedAt: time.Now(),
			},
		},
		Differences: &diagnostic,
	}, nil
}

// DeleteFirst discards an in-progress first entry, returning to
// FirstEntryNotStarted.
func DeleteFirst(status domain.DataEntryStatus, userID domain.UserID) (domain.DataEntryStatus, error) {
	switch status.Kind {
	case domain.KindFirstEntryInProgress:
		if status.FirstInProgress.FirstEntryUserID != userID {
			return domain.DataEntryStatus{}, simple(ErrCannotTransitionUsingDifferentUser)
		}
		return domain.NotStartedDataEntryStatus(), nil
	case domain.KindSecondEntryNotStarted, domain.KindSecondEntryInProgress:
		return domain.DataEntryStatus{}, simple(ErrFirstEntryAlreadyFinalised)
	case domain.KindDefinitive:
		return domain.DataEntryStatus{}, simple(ErrSecondEntryAlreadyFinalised)
	default:
		return domain.DataEntryStatus{}, simple(ErrInvalid)
	}
}

// DeleteSecond discards an in-progress second entry, returning to
// SecondEntryNotStarted so a new typist can claim it. The first entry is
// re-validated since it may now be stale against a changed election
// definition.
func DeleteSecond(status domain.DataEntryStatus, userID domain.UserID, election domain.Election) (domain.DataEntryStatus, error) {
	if status.Kind == domain.KindDefinitive {
		return domain.DataEntryStatus{}, simple(ErrSecondEntryAlreadyFinalised)
	}
	if status.Kind != domain.KindSecondEntryInProgress {
		return domain.DataEntryStatus{}, simple(ErrInvalid)
	}
	state := status.SecondInProgress
	if state.SecondEntryUserID != userID {
		return domain.DataEntryStatus{}, simple(ErrCannotTransitionUsingDifferentUser)
	}
	results, err := validation.Validate(state.FinalisedFirstEntry, election)
	if err != nil {
		return domain.DataEntryStatus{}, fromDataError(err.(*domain.DataError))
	}
	return domain.DataEntryStatus{
		Kind: domain.KindSecondEntryNotStarted,
		SecondNotStarted: &domain.SecondEntryNotStarted{
			FirstEntryUserID:      state.FirstEntryUserID,
			FinalisedFirstEntry:   state.FinalisedFirstEntry,
			FirstEntryFinishedAt:  state.FirstEntryFinishedAt,
			FinalisedWithWarnings: results.HasWarnings(),
		},
	}, nil
}

// ResumeFirst reopens a FirstEntryHasErrors result for further editing by
// the same typist.
func ResumeFirst(status domain.DataEntryStatus) (domain.DataEntryStatus, error) {
	if status.Kind != domain.KindFirstEntryHasErrors {
		return domain.DataEntryStatus{}, simple(ErrInvalid)
	}
	state := status.FirstHasErrors
	return domain.DataEntryStatus{
		Kind: domain.KindFirstEntryInProgress,
		FirstInProgress: &domain.FirstEntryInProgress{
			Progress:         0,
			FirstEntryUserID: state.FirstEntryUserID,
			FirstEntry:       state.FinalisedFirstEntry,
		},
	}, nil
}

// DiscardFirst abandons a FirstEntryHasErrors result entirely, returning
// to FirstEntryNotStarted.
func DiscardFirst(status domain.DataEntryStatus) (domain.DataEntryStatus, error) {
	if status.Kind != domain.KindFirstEntryHasErrors {
		return domain.DataEntryStatus{}, simple(ErrInvalid)
	}
	return domain.NotStartedDataEntryStatus(), nil
}

// DiscardBoth abandons an EntriesDifferent conflict entirely, returning to
// FirstEntryNotStarted so data entry restarts from scratch.
func DiscardBoth(status domain.DataEntryStatus) (domain.DataEntryStatus, error) {
	if status.Kind != domain.KindEntriesDifferent {
		return domain.DataEntryStatus{}, simple(ErrInvalid)
	}
	return domain.NotStartedDataEntryStatus(), nil
}

// KeepFirst resolves an EntriesDifferent conflict by keeping the first
// entry; it re-validates it and moves to FirstEntryHasErrors if it fails
// validation, otherwise to SecondEntryNotStarted so a new second entry can
// be keyed.
func KeepFirst(status domain.DataEntryStatus, election domain.Election) (domain.DataEntryStatus, error) {
	if status.Kind != domain.KindEntriesDifferent {
		return domain.DataEntryStatus{}, simple(ErrInvalid)
	}
	state := status.Different
	results, err := validation.Validate(state.FirstEntry, election)
	if err != nil {
		return domain.DataEntryStatus{}, fromDataError(err.(*domain.DataError))
	}
	if results.HasErrors() {
		return domain.DataEntryStatus{
			Kind: domain.KindFirstEntryHasErrors,
			FirstHasErrors: &domain.FirstEntryHasErrors{
				FirstEntryUserID:     state.FirstEntryUserID,
				FinalisedFirstEntry:  state.FirstEntry,
				FirstEntryFinishedAt: state.FirstEntryFinishedAt,
			},
		}, nil
	}
	return domain.DataEntryStatus{
		Kind: domain.KindSecondEntryNotStarted,
		SecondNotStarted: &domain.SecondEntryNotStarted{
			FirstEntryUserID:      state.FirstEntryUserID,
			FinalisedFirstEntry:   state.FirstEntry,
			FirstEntryFinishedAt:  state.FirstEntryFinishedAt,
			FinalisedWithWarnings: results.HasWarnings(),
		},
	}, nil
}

// KeepSecond resolves an EntriesDifferent conflict by keeping the second
// entry. The second entry becomes the new first entry: if it now fails
// validation it moves to FirstEntryHasErrors, otherwise to
// SecondEntryNotStarted awaiting a fresh second typist.
func KeepSecond(status domain.DataEntryStatus, election domain.Election) (domain.DataEntryStatus, error) {
	if status.Kind != domain.KindEntriesDifferent {
		return domain.DataEntryStatus{}, simple(ErrInvalid)
	}
	state := status.Different
	results, err := validation.Validate(state.SecondEntry, election)
	if err != nil {
		return domain.DataEntryStatus{}, fromDataError(err.(*domain.DataError))
	}
	if results.HasErrors() {
		return domain.DataEntryStatus{
			Kind: domain.KindFirstEntryHasErrors,
			FirstHasErrors: &domain.FirstEntryHasErrors{
				FirstEntryUserID:     state.SecondEntryUserID,
				FinalisedFirstEntry:  state.SecondEntry,
				FirstEntryFinishedAt: state.SecondEntryFinishedAt,
			},
		}, nil
	}
	return domain.DataEntryStatus{
		Kind: domain.KindSecondEntryNotStarted,
		SecondNotStarted: &domain.SecondEntryNotStarted{
			FirstEntryUserID:      state.SecondEntryUserID,
			FinalisedFirstEntry:   state.SecondEntry,
			FirstEntryFinishedAt:  state.SecondEntryFinishedAt,
			FinalisedWithWarnings: results.HasWarnings(),
		},
	}, nil
}
