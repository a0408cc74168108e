// Package nomination implements candidate nomination (§4.5): once seat
// apportionment has decided how many seats each list holds, this package
// decides which candidates on each list fill those seats, first by
// preferential vote and then by ballot order, and produces the revised
// list ranking Article P 19 calls for when preferential votes reorder a
// list.
package nomination

import (
	"fmt"
	"sort"

	"github.com/rawblock/kieswet-engine/internal/domain"
	"github.com/rawblock/kieswet-engine/internal/fraction"
)

// ListCandidateVotes is one list's per-candidate votes in ballot order,
// together with how many seats apportionment assigned it.
type ListCandidateVotes struct {
	ListNumber     domain.PoliticalGroupNumber
	ListSeats      int
	CandidateVotes []domain.CandidateVotes
}

// Input is everything candidate_nomination needs: the seat count (to
// select the 19-seat preference-threshold percentage), the quota §4.4
// computed, and each list's candidates and seat allocation.
type Input struct {
	NumberOfSeats int
	Quota         fraction.Fraction
	Lists         []ListCandidateVotes
}

// Result is the outcome of a successful Nominate call.
type Result struct {
	PreferenceThresholdPercent int
	PreferenceThreshold        fraction.Fraction
	ListNominations            []domain.ListCandidateNomination
	ChosenCandidates           []domain.ChosenCandidate
}

// ErrorKind enumerates the ways candidate nomination can fail outright.
type ErrorKind string

// ErrDrawingOfLotsNotImplemented means more candidates share the vote
// count at the cutoff than there are remaining seats to nominate them to,
// and a statutory drawing of lots would be needed to pick among them.
const ErrDrawingOfLotsNotImplemented ErrorKind = "drawing_of_lots_not_implemented"

// Error reports why Nominate failed, carrying the tied candidate numbers
// (within ListNumber) a drawing-of-lots failure would have had to choose
// among.
type Error struct {
	Kind       ErrorKind
	ListNumber domain.PoliticalGroupNumber
	TiedOn     []domain.CandidateNumber
}

func (e *Error) Error() string {
	return fmt.Sprintf("candidate nomination: %s (list %d)", string(e.Kind), e.ListNumber)
}

// Nominate runs candidate nomination (Articles P 15, P 17, P 19) for
// every list in input, then flattens every list's nominated candidates
// into one chosen-candidates list.
func Nominate(input Input) (Result, error) {
	pct := domain.PreferenceThresholdPercentSmall
	if input.NumberOfSeats >= domain.LargeCouncilThreshold {
		pct = domain.PreferenceThresholdPercentLarge
	}
	threshold := input.Quota.Mul(fraction.New(int64(pct), 100))

	nominations := make([]domain.ListCandidateNomination, 0, len(input.Lists))
	for _, list := range input.Lists {
		nomination, err := nominateList(input.NumberOfSeats, list, threshold, pct)
		if err != nil {
			return Result{}, err
		}
		nominations = append(nominations, nomination)
	}

	return Result{
		PreferenceThresholdPercent: pct,
		PreferenceThreshold:        threshold,
		ListNominations:            nominations,
		ChosenCandidates:           allChosenCandidates(input.Lists, nominations),
	}, nil
}

// nominateList runs candidate_nomination_per_list for a single list.
func nominateList(numberOfSeats int, list ListCandidateVotes, threshold fraction.Fraction, pct int) (domain.ListCandidateNomination, error) {
	eligible := candidatesMeetingThreshold(threshold, list.CandidateVotes)

	preferential, err := preferentialNomination(eligible, list.ListSeats)
	if err != nil {
		return domain.ListCandidateNomination{}, &Error{Kind: ErrDrawingOfLotsNotImplemented, ListNumber: list.ListNumber, TiedOn: err}
	}

	remaining := list.ListSeats - len(preferential)
	other := otherNomination(preferential, list.CandidateVotes, remaining)

	var updatedRanking []domain.CandidateNumber
	if len(eligible) > 0 && !(numberOfSeats >= domain.LargeCouncilThreshold && list.ListSeats == 0) {
		candidate := updateCandidateRanking(threshold, eligible, list.CandidateVotes)
		if !sameOrder(candidate, originalRanking(list.CandidateVotes)) {
			updatedRanking = candidate
		}
	}

	return domain.ListCandidateNomination{
		ListNumber:                 list.ListNumber,
		ListSeats:                  list.ListSeats,
		PreferenceThresholdPercent: pct,
		PreferenceThreshold:        threshold,
		PreferentialNominations:    candidateNumbers(preferential),
		OtherNominations:           candidateNumbers(other),
		UpdatedRanking:             updatedRanking,
	}, nil
}

// candidatesMeetingThreshold lists the candidates whose votes reach
// threshold, sorted by votes descending (ties keep ballot order, Go's
// sort.SliceStable).
func candidatesMeetingThreshold(threshold fraction.Fraction, candidateVotes []domain.CandidateVotes) []domain.CandidateVotes {
	var eligible []domain.CandidateVotes
	for _, cv := range candidateVotes {
		if fraction.FromInt(int64(cv.Votes)).GreaterThanOrEqual(threshold) {
			eligible = append(eligible, cv)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].Votes > eligible[j].Votes })
	return eligible
}

// preferentialNomination nominates candidates from eligible to fill up to
// listSeats seats. When eligible outnumbers the seats, it works from the
// cutoff downward one seat at a time, failing if a tie at the cutoff
// can't be resolved with the seats remaining at that step.
func preferentialNomination(eligible []domain.CandidateVotes, listSeats int) ([]domain.CandidateVotes, []domain.CandidateNumber) {
	if len(eligible) <= listSeats {
		return append([]domain.CandidateVotes{}, eligible...), nil
	}

	nominated := make([]domain.CandidateVotes, 0, listSeats)
	isNominated := map[domain.CandidateNumber]bool{}
	for i, remaining := 0, listSeats; remaining >= 1; i, remaining = i+1, remaining-1 {
		pivot := eligible[i]
		var sameVotes []domain.CandidateVotes
		for _, cv := range eligible {
			if !isNominated[cv.Number] && cv.Votes == pivot.Votes {
				sameVotes = append(sameVotes, cv)
			}
		}
		if len(sameVotes) > remaining {
			tied := make([]domain.CandidateNumber, len(sameVotes))
			for i, cv := range sameVotes {
				tied[i] = cv.Number
			}
			return nil, tied
		}
		nominated = append(nominated, pivot)
		isNominated[pivot.Number] = true
	}
	return nominated, nil
}

// otherNomination fills the remaining seats from candidates not already
// preferentially nominated, taken in original ballot order.
func otherNomination(preferential []domain.CandidateVotes, candidateVotes []domain.CandidateVotes, remaining int) []domain.CandidateVotes {
	if remaining <= 0 {
		return nil
	}
	preferred := map[domain.CandidateNumber]bool{}
	for _, cv := range preferential {
		preferred[cv.Number] = true
	}
	var out []domain.CandidateVotes
	for _, cv := range candidateVotes {
		if len(out) == remaining {
			break
		}
		if !preferred[cv.Number] {
			out = append(out, cv)
		}
	}
	return out
}

// updateCandidateRanking builds Article P 19's revised list ranking: every
// eligible candidate first (in vote-descending order), then every
// candidate below threshold in their original ballot order.
func updateCandidateRanking(threshold fraction.Fraction, eligible []domain.CandidateVotes, candidateVotes []domain.CandidateVotes) []domain.CandidateNumber {
	ranking := candidateNumbers(eligible)
	for _, cv := range candidateVotes {
		if fraction.FromInt(int64(cv.Votes)).LessThan(threshold) {
			ranking = append(ranking, cv.Number)
		}
	}
	return ranking
}

func originalRanking(candidateVotes []domain.CandidateVotes) []domain.CandidateNumber {
	return candidateNumbers(candidateVotes)
}

func sameOrder(a, b []domain.CandidateNumber) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func candidateNumbers(candidateVotes []domain.CandidateVotes) []domain.CandidateNumber {
	if len(candidateVotes) == 0 {
		return nil
	}
	out := make([]domain.CandidateNumber, len(candidateVotes))
	for i, cv := range candidateVotes {
		out[i] = cv.Number
	}
	return out
}

// allChosenCandidates flattens every list's preferential and other
// nominations into one ordered (list_number, candidate_number) list,
// following ballot order within each list.
func allChosenCandidates(lists []ListCandidateVotes, nominations []domain.ListCandidateNomination) []domain.ChosenCandidate {
	byList := make(map[domain.PoliticalGroupNumber]domain.ListCandidateNomination, len(nominations))
	for _, n := range nominations {
		byList[n.ListNumber] = n
	}

	var chosen []domain.ChosenCandidate
	for _, list := range lists {
		nomination := byList[list.ListNumber]
		chosenHere := map[domain.CandidateNumber]bool{}
		for _, n := range nomination.PreferentialNominations {
			chosenHere[n] = true
		}
		for _, n := range nomination.OtherNominations {
			chosenHere[n] = true
		}
		for _, cv := range list.CandidateVotes {
			if chosenHere[cv.Number] {
				chosen = append(chosen, domain.ChosenCandidate{ListNumber: list.ListNumber, CandidateNumber: cv.Number})
			}
		}
	}
	return chosen
}
