package domain

import "time"

// DataEntryStatusKind names one of the seven states a polling station's
// data entry can be in. It exists alongside the pointer-tagged
// DataEntryStatus so callers can switch on it without a type assertion.
type DataEntryStatusKind string

const (
	KindFirstEntryNotStarted  DataEntryStatusKind = "first_entry_not_started"
	KindFirstEntryInProgress  DataEntryStatusKind = "first_entry_in_progress"
	KindFirstEntryHasErrors   DataEntryStatusKind = "first_entry_has_errors"
	KindSecondEntryNotStarted DataEntryStatusKind = "second_entry_not_started"
	KindSecondEntryInProgress DataEntryStatusKind = "second_entry_in_progress"
	KindEntriesDifferent      DataEntryStatusKind = "entries_different"
	KindDefinitive            DataEntryStatusKind = "definitive"
)

// ClientState is an opaque blob of UI state the typist's browser persists
// across saves; the core never looks inside it.
type ClientState []byte

// FirstEntryInProgress is the state while a single typist is keying the
// first entry.
type FirstEntryInProgress struct {
	Progress         int
	FirstEntryUserID UserID
	FirstEntry       PollingStationResults
	ClientState      ClientState
}

// FirstEntryHasErrors is reached when the first entry is finalised but
// Validate reports blocking errors; a user must resume or discard it.
type FirstEntryHasErrors struct {
	FirstEntryUserID     UserID
	FinalisedFirstEntry  PollingStationResults
	FirstEntryFinishedAt time.Time
}

// SecondEntryNotStarted is reached once the first entry is finalised
// clean (or with only warnings) and is waiting for a second typist.
type SecondEntryNotStarted struct {
	FirstEntryUserID      UserID
	FinalisedFirstEntry   PollingStationResults
	FirstEntryFinishedAt  time.Time
	FinalisedWithWarnings bool
}

// SecondEntryInProgress is the state while a second, different typist is
// keying the second entry.
type SecondEntryInProgress struct {
	FirstEntryUserID     UserID
	FinalisedFirstEntry  PollingStationResults
	FirstEntryFinishedAt time.Time
	Progress             int
	SecondEntryUserID    UserID
	SecondEntry          PollingStationResults
	ClientState          ClientState
}

// EntriesDifferent is reached when both entries finalise but do not
// structurally agree; a reviewer must keep one or discard both.
type EntriesDifferent struct {
	FirstEntryUserID      UserID
	SecondEntryUserID     UserID
	FirstEntry            PollingStationResults
	SecondEntry           PollingStationResults
	FirstEntryFinishedAt  time.Time
	SecondEntryFinishedAt time.Time
}

// Definitive is the terminal state: both entries agreed (or were
// reconciled), and the result is fixed for reporting and apportionment.
type Definitive struct {
	FirstEntryUserID      UserID
	SecondEntryUserID     UserID
	FinishedAt            time.Time
	FinalisedWithWarnings bool
}

// DataEntryStatus is the seven-state tagged variant describing where a
// polling station's data entry stands. Kind names the active variant;
// exactly the corresponding pointer field is non-nil, except for
// FirstEntryNotStarted, which carries no data at all.
type DataEntryStatus struct {
	Kind DataEntryStatusKind

	FirstInProgress  *FirstEntryInProgress
	FirstHasErrors   *FirstEntryHasErrors
	SecondNotStarted *SecondEntryNotStarted
	SecondInProgress *SecondEntryInProgress
	Different        *EntriesDifferent
	Definitive       *Definitive
}

// NotStartedDataEntryStatus is the zero state a freshly created polling
// station result starts in.
func NotStartedDataEntryStatus() DataEntryStatus {
	return DataEntryStatus{Kind: KindFirstEntryNotStarted}
}

// FirstEntryProgress returns the completion percentage of the first
// entry for states where that is meaningful: 0 in FirstEntryNotStarted,
// the in-progress value while it's being keyed, and 100 once finalised
// in any form.
func (s DataEntryStatus) FirstEntryProgress() int {
	switch s.Kind {
	case KindFirstEntryNotStarted:
		return 0
	case KindFirstEntryInProgress:
		return s.FirstInProgress.Progress
	default:
		return 100
	}
}

// FinishedAt returns the timestamp at which the data entry process most
// recently settled. Only FirstEntryHasErrors, SecondEntryNotStarted and
// Definitive report one; every other state returns false.
func (s DataEntryStatus) FinishedAt() (time.Time, bool) {
	switch s.Kind {
	case KindFirstEntryHasErrors:
		return s.FirstHasErrors.FirstEntryFinishedAt, true
	case KindSecondEntryNotStarted:
		return s.SecondNotStarted.FirstEntryFinishedAt, true
	case KindDefinitive:
		return s.Definitive.FinishedAt, true
	default:
		return time.Time{}, false
	}
}
