// Package apportionment implements seat assignment: turning a list of
// per-list vote totals into full and residual seat counts, following the
// quota, largest-remainder/largest-average, and statutory correction
// rules a municipal council election uses.
package apportionment

import (
	"fmt"
	"sort"

	"github.com/rawblock/kieswet-engine/internal/domain"
	"github.com/rawblock/kieswet-engine/internal/fraction"
)

// ListVotes is one list's input to seat assignment: its vote total and
// how many candidates stand on it (needed to detect Article P 10
// exhaustion).
type ListVotes struct {
	ListNumber         domain.PoliticalGroupNumber
	Votes              domain.Count
	NumberOfCandidates int
}

// Input is everything seat_assignment needs.
type Input struct {
	NumberOfSeats int
	ListVotes     []ListVotes
}

// Result is the outcome of a successful Apportion call.
type Result struct {
	Seats         int
	FullSeats     int
	ResidualSeats int
	Quota         fraction.Fraction
	Steps         []domain.SeatChangeStep
	FinalStanding []domain.ListStanding
}

// ErrorKind enumerates the ways seat assignment can fail outright.
type ErrorKind string

const (
	// ErrZeroVotesCast means no votes were cast on any candidate; a
	// quota cannot be computed.
	ErrZeroVotesCast ErrorKind = "zero_votes_cast"
	// ErrDrawingOfLotsNotImplemented means a statutory drawing of lots
	// would be required to break a tie, and this implementation
	// deliberately doesn't perform one.
	ErrDrawingOfLotsNotImplemented ErrorKind = "drawing_of_lots_not_implemented"
	// ErrAllListsExhausted means an Article P 10 correction couldn't
	// place its reassigned seats because every remaining list had
	// already used up its candidates.
	ErrAllListsExhausted ErrorKind = "all_lists_exhausted"
	// ErrNotAvailableUntilDataEntryFinalised is surfaced by the service
	// shell, not by Apportion itself, when a caller asks for results
	// before every polling station's data entry reached Definitive.
	ErrNotAvailableUntilDataEntryFinalised ErrorKind = "not_available_until_data_entry_finalised"
)

// Error reports why Apportion failed, optionally carrying the tied list
// numbers a drawing-of-lots failure would have had to choose among.
type Error struct {
	Kind    ErrorKind
	TiedOn  []domain.PoliticalGroupNumber
}

func (e *Error) Error() string {
	return fmt.Sprintf("seat assignment: %s", string(e.Kind))
}

// Apportion runs the full seat-assignment algorithm: quota, initial
// standings, the residual-seat loop, the Article P 9 absolute-majority
// correction, and the Article P 10 list-exhaustion correction.
func Apportion(input Input) (Result, error) {
	var total domain.Count
	for _, lv := range input.ListVotes {
		total += lv.Votes
	}
	if total == 0 {
		return Result{}, &Error{Kind: ErrZeroVotesCast}
	}

	quota := fraction.FromInt(int64(total)).Div(fraction.FromInt(int64(input.NumberOfSeats)))

	standings := make([]domain.ListStanding, len(input.ListVotes))
	fullSeatsSum := 0
	for i, lv := range input.ListVotes {
		standings[i] = initialStanding(lv, quota)
		fullSeatsSum += standings[i].FullSeats
	}
	residualSeats := input.NumberOfSeats - fullSeatsSum

	var steps []domain.SeatChangeStep
	var err error
	if residualSeats > 0 {
		steps, standings, err = assignRemainder(standings, input.NumberOfSeats, residualSeats, 0, nil)
		if err != nil {
			return Result{}, err
		}
	}

	if len(steps) > 0 {
		lastWinners := winnersOf(steps[len(steps)-1].Change)
		newStandings, change, err := reassignForAbsoluteMajority(input.NumberOfSeats, total, input.ListVotes, lastWinners, standings)
		if err != nil {
			return Result{}, err
		}
		if change != nil {
			steps = append(steps, domain.SeatChangeStep{
				StandingsBefore: cloneStandings(standings),
				Change:          *change,
			})
			standings = newStandings
		}
	}

	steps, standings, err = reassignForExhaustedLists(standings, input.NumberOfSeats, input.ListVotes, residualSeats, steps)
	if err != nil {
		return Result{}, err
	}

	finalFull := 0
	for _, s := range standings {
		finalFull += s.FullSeats
	}
	finalResidual := input.NumberOfSeats - finalFull

	return Result{
		Seats:         input.NumberOfSeats,
		FullSeats:     finalFull,
		ResidualSeats: finalResidual,
		Quota:         quota,
		Steps:         steps,
		FinalStanding: standings,
	}, nil
}

func initialStanding(lv ListVotes, quota fraction.Fraction) domain.ListStanding {
	v := fraction.FromInt(int64(lv.Votes))
	fullSeats := v.Div(quota).IntegerPart()
	remainder := v.Sub(quota.Mul(fraction.FromInt(fullSeats)))
	threshold := quota.Mul(fraction.New(domain.RemainderThresholdPercent, 100))
	return domain.ListStanding{
		ListNumber:              lv.ListNumber,
		VotesCast:               lv.Votes,
		FullSeats:               int(fullSeats),
		RemainderVotes:          remainder,
		MeetsRemainderThreshold: v.GreaterThanOrEqual(threshold),
		NextVotesPerSeat:        v.Div(fraction.FromInt(fullSeats + 1)),
	}
}

func cloneStandings(standings []domain.ListStanding) []domain.ListStanding {
	out := make([]domain.ListStanding, len(standings))
	copy(out, standings)
	return out
}

func indexOfList(standings []domain.ListStanding, number domain.PoliticalGroupNumber) int {
	for i, s := range standings {
		if s.ListNumber == number {
			return i
		}
	}
	return -1
}

func recomputeNextVotesPerSeat(s *domain.ListStanding) {
	v := fraction.FromInt(int64(s.VotesCast))
	s.NextVotesPerSeat = v.Div(fraction.FromInt(int64(s.TotalSeats() + 1)))
}

// assignRemainder assigns seatsNeeded residual seats one at a time,
// starting the step ordinal count at startOrdinal+1. excluded lists are
// ineligible to receive any of these seats (used when Article P 10
// reassigns seats taken from an exhausted list).
func assignRemainder(standings []domain.ListStanding, totalSeats, seatsNeeded, startOrdinal int, excluded map[domain.PoliticalGroupNumber]bool) ([]domain.SeatChangeStep, []domain.ListStanding, error) {
	current := cloneStandings(standings)
	large := totalSeats >= domain.LargeCouncilThreshold
	assignedThisLoop := map[domain.PoliticalGroupNumber]bool{}
	steps := make([]domain.SeatChangeStep, 0, seatsNeeded)

	for seatNum := 1; seatNum <= seatsNeeded; seatNum++ {
		before := cloneStandings(current)
		remaining := seatsNeeded - seatNum + 1

		var change domain.SeatChange
		var err error
		if large {
			change, err = assignLargeCouncilSeat(current, excluded, remaining)
		} else {
			change, err = assignSmallCouncilSeat(current, assignedThisLoop, excluded, remaining)
		}
		if err != nil {
			return nil, nil, err
		}

		winner := canonicalWinner(change)
		idx := indexOfList(current, winner)
		current[idx].ResidualSeats++
		recomputeNextVotesPerSeat(&current[idx])
		assignedThisLoop[winner] = true

		steps = append(steps, domain.SeatChangeStep{
			StandingsBefore:     before,
			ResidualSeatOrdinal: startOrdinal + seatNum,
			Change:              change,
		})
	}
	return steps, current, nil
}

func canonicalWinner(change domain.SeatChange) domain.PoliticalGroupNumber {
	switch change.Kind {
	case domain.ChangeLargestRemainderAssignment:
		return change.LargestRemainder.ListNumber
	case domain.ChangeLargestAverageAssignment:
		return change.LargestAverage.ListNumber
	default:
		return 0
	}
}

func winnersOf(change domain.SeatChange) []domain.PoliticalGroupNumber {
	switch change.Kind {
	case domain.ChangeLargestRemainderAssignment:
		return change.LargestRemainder.TiedWith
	case domain.ChangeLargestAverageAssignment:
		return change.LargestAverage.TiedWith
	default:
		return nil
	}
}

func assignSmallCouncilSeat(standings []domain.ListStanding, assignedThisLoop, excluded map[domain.PoliticalGroupNumber]bool, remaining int) (domain.SeatChange, error) {
	eligible := filterStandings(standings, func(s domain.ListStanding) bool {
		return s.MeetsRemainderThreshold && !assignedThisLoop[s.ListNumber] && !excluded[s.ListNumber]
	})
	if len(eligible) > 0 {
		winner, tied := maxBy(eligible, func(s domain.ListStanding) fraction.Fraction { return s.RemainderVotes })
		if len(tied) > remaining {
			return domain.SeatChange{}, &Error{Kind: ErrDrawingOfLotsNotImplemented, TiedOn: tied}
		}
		return domain.SeatChange{
			Kind:             domain.ChangeLargestRemainderAssignment,
			LargestRemainder: &domain.LargestRemainderAssignment{ListNumber: winner, TiedWith: tied},
		}, nil
	}

	unique := filterStandings(standings, func(s domain.ListStanding) bool {
		return s.ResidualSeats == 0 && !excluded[s.ListNumber]
	})
	if len(unique) > 0 {
		winner, tied := maxBy(unique, func(s domain.ListStanding) fraction.Fraction { return s.NextVotesPerSeat })
		if len(tied) > remaining {
			return domain.SeatChange{}, &Error{Kind: ErrDrawingOfLotsNotImplemented, TiedOn: tied}
		}
		return domain.SeatChange{
			Kind:           domain.ChangeLargestAverageAssignment,
			LargestAverage: &domain.LargestAverageAssignment{ListNumber: winner, TiedWith: tied, Unique: true},
		}, nil
	}

	return assignByUnrestrictedAverage(standings, excluded, remaining)
}

func assignLargeCouncilSeat(standings []domain.ListStanding, excluded map[domain.PoliticalGroupNumber]bool, remaining int) (domain.SeatChange, error) {
	return assignByUnrestrictedAverage(standings, excluded, remaining)
}

func assignByUnrestrictedAverage(standings []domain.ListStanding, excluded map[domain.PoliticalGroupNumber]bool, remaining int) (domain.SeatChange, error) {
	all := filterStandings(standings, func(s domain.ListStanding) bool { return !excluded[s.ListNumber] })
	if len(all) == 0 {
		return domain.SeatChange{}, &Error{Kind: ErrAllListsExhausted}
	}
	winner, tied := maxBy(all, func(s domain.ListStanding) fraction.Fraction { return s.NextVotesPerSeat })
	if len(tied) > remaining {
		return domain.SeatChange{}, &Error{Kind: ErrDrawingOfLotsNotImplemented, TiedOn: tied}
	}
	return domain.SeatChange{
		Kind:           domain.ChangeLargestAverageAssignment,
		LargestAverage: &domain.LargestAverageAssignment{ListNumber: winner, TiedWith: tied, Unique: false},
	}, nil
}

func filterStandings(standings []domain.ListStanding, keep func(domain.ListStanding) bool) []domain.ListStanding {
	var out []domain.ListStanding
	for _, s := range standings {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// maxBy returns the list number with the greatest key value, and the
// full set of list numbers that share that maximum (sorted ascending, so
// the canonical winner is always tied[0]).
func maxBy(standings []domain.ListStanding, key func(domain.ListStanding) fraction.Fraction) (domain.PoliticalGroupNumber, []domain.PoliticalGroupNumber) {
	best := key(standings[0])
	for _, s := range standings[1:] {
		if key(s).GreaterThan(best) {
			best = key(s)
		}
	}
	var tied []domain.PoliticalGroupNumber
	for _, s := range standings {
		if key(s).Equal(best) {
			tied = append(tied, s.ListNumber)
		}
	}
	sort.Slice(tied, func(i, j int) bool { return tied[i] < tied[j] })
	return tied[0], tied
}

// reassignForAbsoluteMajority implements Article P 9: a list with an
// absolute majority of the votes must hold an absolute majority of the
// seats; if it doesn't, the most recently assigned residual seat is
// retracted and handed to it.
func reassignForAbsoluteMajority(totalSeats int, totalVotes domain.Count, listVotes []ListVotes, lastWinners []domain.PoliticalGroupNumber, standings []domain.ListStanding) ([]domain.ListStanding, *domain.SeatChange, error) {
	halfVotes := fraction.FromInt(int64(totalVotes)).Mul(fraction.New(1, 2))

	var majority *ListVotes
	for i := range listVotes {
		if fraction.FromInt(int64(listVotes[i].Votes)).GreaterThan(halfVotes) {
			majority = &listVotes[i]
			break
		}
	}
	if majority == nil {
		return standings, nil, nil
	}

	halfSeats := fraction.FromInt(int64(totalSeats)).Mul(fraction.New(1, 2))
	idx := indexOfList(standings, majority.ListNumber)
	listSeats := fraction.FromInt(int64(standings[idx].TotalSeats()))
	if !listSeats.LessThanOrEqual(halfSeats) {
		return standings, nil, nil
	}

	if len(lastWinners) > 1 {
		return nil, nil, &Error{Kind: ErrDrawingOfLotsNotImplemented, TiedOn: lastWinners}
	}

	out := cloneStandings(standings)
	retractFrom := lastWinners[0]
	out[indexOfList(out, retractFrom)].ResidualSeats--
	out[indexOfList(out, majority.ListNumber)].ResidualSeats++

	change := domain.SeatChange{
		Kind: domain.ChangeAbsoluteMajorityReassignment,
		AbsoluteMajority: &domain.AbsoluteMajorityReassignment{
			ListNumber:    majority.ListNumber,
			RetractedFrom: retractFrom,
		},
	}
	return out, &change, nil
}

// reassignForExhaustedLists implements Article P 10: a list assigned more
// seats than it has candidates gives up the excess, which is reassigned
// among the remaining lists through another pass of the residual loop.
func reassignForExhaustedLists(standings []domain.ListStanding, totalSeats int, listVotes []ListVotes, assignedResidualSeats int, priorSteps []domain.SeatChangeStep) ([]domain.SeatChangeStep, []domain.ListStanding, error) {
	candidateCounts := make(map[domain.PoliticalGroupNumber]int, len(listVotes))
	for _, lv := range listVotes {
		candidateCounts[lv.ListNumber] = lv.NumberOfCandidates
	}

	type excess struct {
		listNumber domain.PoliticalGroupNumber
		seats      int
	}
	var exhausted []excess
	for _, s := range standings {
		if n := candidateCounts[s.ListNumber]; s.TotalSeats() > n {
			exhausted = append(exhausted, excess{listNumber: s.ListNumber, seats: s.TotalSeats() - n})
		}
	}
	if len(exhausted) == 0 {
		return priorSteps, standings, nil
	}

	current := cloneStandings(standings)
	steps := append([]domain.SeatChangeStep{}, priorSteps...)
	seatsToReassign := 0
	excludedFromReceiving := map[domain.PoliticalGroupNumber]bool{}

	for _, e := range exhausted {
		seatsToReassign += e.seats
		excludedFromReceiving[e.listNumber] = true
		idx := indexOfList(current, e.listNumber)
		for i := 0; i < e.seats; i++ {
			before := cloneStandings(current)
			fromResidual := current[idx].ResidualSeats > 0
			if fromResidual {
				current[idx].ResidualSeats--
			} else {
				current[idx].FullSeats--
			}
			steps = append(steps, domain.SeatChangeStep{
				StandingsBefore: before,
				Change: domain.SeatChange{
					Kind: domain.ChangeListExhaustionRemoval,
					ListExhaustion: &domain.ListExhaustionRemoval{
						ListNumber:   e.listNumber,
						FromResidual: fromResidual,
					},
				},
			})
		}
	}

	if len(excludedFromReceiving) == len(current) {
		return nil, nil, &Error{Kind: ErrAllListsExhausted}
	}

	newSteps, finalStandings, err := assignRemainder(current, totalSeats, seatsToReassign, assignedResidualSeats, excludedFromReceiving)
	if err != nil {
		return nil, nil, err
	}
	steps = append(steps, newSteps...)
	return steps, finalStandings, nil
}
