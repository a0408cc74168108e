package domain

import "github.com/rawblock/kieswet-engine/internal/fraction"

// ListStanding is one list's working tuple during seat apportionment: how
// many votes it received, how many full and residual seats it holds so
// far, and the figures the residual-seat rounds compare lists by.
type ListStanding struct {
	ListNumber              PoliticalGroupNumber `json:"listNumber"`
	VotesCast               Count                `json:"votesCast"`
	FullSeats               int                  `json:"fullSeats"`
	ResidualSeats           int                  `json:"residualSeats"`
	RemainderVotes          fraction.Fraction    `json:"remainderVotes"`
	MeetsRemainderThreshold bool                 `json:"meetsRemainderThreshold"`
	NextVotesPerSeat        fraction.Fraction    `json:"nextVotesPerSeat"`
}

// TotalSeats is the list's full and residual seats combined.
func (s ListStanding) TotalSeats() int { return s.FullSeats + s.ResidualSeats }

// SeatChangeKind names which of the four seat-assignment events a
// SeatChangeStep records.
type SeatChangeKind string

const (
	ChangeLargestRemainderAssignment   SeatChangeKind = "largest_remainder_assignment"
	ChangeLargestAverageAssignment     SeatChangeKind = "largest_average_assignment"
	ChangeAbsoluteMajorityReassignment SeatChangeKind = "absolute_majority_reassignment"
	ChangeListExhaustionRemoval        SeatChangeKind = "list_exhaustion_removal"
)

// LargestRemainderAssignment records a residual seat awarded by the
// largest-remainder rule. TiedWith lists every list number that shared
// the winning remainder, for audit, even though only ListNumber won.
type LargestRemainderAssignment struct {
	ListNumber PoliticalGroupNumber
	TiedWith   []PoliticalGroupNumber
}

// LargestAverageAssignment records a residual seat awarded by the
// largest-average rule. Unique marks the "unique largest average" phase,
// where a list already holding any residual seat is ineligible.
type LargestAverageAssignment struct {
	ListNumber PoliticalGroupNumber
	TiedWith   []PoliticalGroupNumber
	Unique     bool
}

// AbsoluteMajorityReassignment records Article P 9's correction: a
// residual seat retracted from RetractedFrom and handed to ListNumber,
// whose votes constitute an absolute majority the original round didn't
// reflect in its seat count.
type AbsoluteMajorityReassignment struct {
	ListNumber    PoliticalGroupNumber
	RetractedFrom PoliticalGroupNumber
}

// ListExhaustionRemoval records Article P 10's correction: a seat taken
// back from a list that was assigned more seats than it has candidates.
// FromResidual is true when the removed seat was one of the list's
// residual seats, false when it was a full seat.
type ListExhaustionRemoval struct {
	ListNumber   PoliticalGroupNumber
	FromResidual bool
}

// SeatChange is the tagged variant of the four seat-assignment events.
// Exactly the field matching Kind is non-nil.
type SeatChange struct {
	Kind SeatChangeKind

	LargestRemainder *LargestRemainderAssignment
	LargestAverage   *LargestAverageAssignment
	AbsoluteMajority *AbsoluteMajorityReassignment
	ListExhaustion   *ListExhaustionRemoval
}

// SeatChangeStep is one entry in the ordered audit trail a seat
// assignment run produces: the standings as they were immediately before
// the change, which residual seat (1-based) this round is assigning (0
// for the P9/P10 correction steps, which aren't part of the residual
// loop's own numbering), and the change itself.
type SeatChangeStep struct {
	StandingsBefore     []ListStanding
	ResidualSeatOrdinal int
	Change              SeatChange
}

// ChosenCandidate names one candidate nominated to a seat, identified by
// the list and candidate numbers on their ballot.
type ChosenCandidate struct {
	ListNumber      PoliticalGroupNumber
	CandidateNumber CandidateNumber
}

// ListCandidateNomination is one list's nomination outcome: its
// preferentially-elected candidates, the remainder filled by ballot
// order, and the revised list ranking Article P 19 produces (empty when
// the ranking doesn't change).
type ListCandidateNomination struct {
	ListNumber                 PoliticalGroupNumber
	ListSeats                  int
	PreferenceThresholdPercent int
	PreferenceThreshold        fraction.Fraction
	PreferentialNominations    []CandidateNumber
	OtherNominations           []CandidateNumber
	UpdatedRanking             []CandidateNumber
}
