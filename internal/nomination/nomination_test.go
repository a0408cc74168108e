package nomination

import (
	"reflect"
	"testing"

	"github.com/rawblock/kieswet-engine/internal/domain"
	"github.com/rawblock/kieswet-engine/internal/fraction"
)

func candidateVotes(votes ...domain.Count) []domain.CandidateVotes {
	out := make([]domain.CandidateVotes, len(votes))
	for i, v := range votes {
		out[i] = domain.CandidateVotes{Number: domain.CandidateNumber(i + 1), Votes: v}
	}
	return out
}

func numbers(ns ...int) []domain.CandidateNumber {
	if len(ns) == 0 {
		return nil
	}
	out := make([]domain.CandidateNumber, len(ns))
	for i, n := range ns {
		out[i] = domain.CandidateNumber(n)
	}
	return out
}

func findNomination(t *testing.T, result Result, list domain.PoliticalGroupNumber) domain.ListCandidateNomination {
	t.Helper()
	for _, n := range result.ListNominations {
		if n.ListNumber == list {
			return n
		}
	}
	t.Fatalf("no nomination for list %d", list)
	return domain.ListCandidateNomination{}
}

// scenario 5 (spec.md §8): reordering due to preferential nomination.
func TestNominate_ReorderingFromPreferentialVotes(t *testing.T) {
	quota := fraction.New(5104, 15)
	input := Input{
		NumberOfSeats: 15,
		Quota:         quota,
		Lists: []ListCandidateVotes{
			{
				ListNumber:     1,
				ListSeats:      8,
				CandidateVotes: candidateVotes(1069, 303, 321, 210, 36, 101, 79, 121, 150, 149, 15, 17),
			},
			{ListNumber: 2, ListSeats: 3, CandidateVotes: candidateVotes(452, 39, 81, 76, 35, 109, 29, 25, 17, 6, 18, 9, 25, 30, 5, 18, 3)},
			{ListNumber: 4, ListSeats: 2, CandidateVotes: candidateVotes(229, 63, 65, 9, 10, 58, 29, 50, 6, 11, 37)},
			{ListNumber: 5, ListSeats: 1, CandidateVotes: candidateVotes(347, 33, 14, 82, 30, 30)},
			{ListNumber: 7, ListSeats: 1, CandidateVotes: candidateVotes(266, 36, 39, 36, 38, 38)},
		},
	}

	result, err := Nominate(input)
	if err != nil {
		t.Fatalf("Nominate: %v", err)
	}
	if result.PreferenceThresholdPercent != 50 {
		t.Fatalf("threshold percent = %d, want 50", result.PreferenceThresholdPercent)
	}

	list1 := findNomination(t, result, 1)
	if !reflect.DeepEqual(list1.PreferentialNominations, numbers(1, 3, 2, 4)) {
		t.Errorf("list 1 preferential = %v, want [1 3 2 4]", list1.PreferentialNominations)
	}
	if !reflect.DeepEqual(list1.OtherNominations, numbers(5, 6, 7, 8)) {
		t.Errorf("list 1 other = %v, want [5 6 7 8]", list1.OtherNominations)
	}
	if !reflect.DeepEqual(list1.UpdatedRanking, numbers(1, 3, 2, 4, 5, 6, 7, 8, 9, 10, 11, 12)) {
		t.Errorf("list 1 updated ranking = %v", list1.UpdatedRanking)
	}

	list4 := findNomination(t, result, 4)
	if !reflect.DeepEqual(list4.PreferentialNominations, numbers(1)) || !reflect.DeepEqual(list4.OtherNominations, numbers(2)) {
		t.Errorf("list 4 nominations = %v / %v", list4.PreferentialNominations, list4.OtherNominations)
	}
	if list4.UpdatedRanking != nil {
		t.Errorf("list 4 updated ranking = %v, want empty (unchanged order)", list4.UpdatedRanking)
	}
}

// scenario 6 (spec.md §8): a tie at the cutoff with insufficient seats
// fails with DrawingOfLotsNotImplemented.
func TestNominate_DrawingOfLotsError(t *testing.T) {
	quota := fraction.New(9600, 19)
	input := Input{
		NumberOfSeats: 19,
		Quota:         quota,
		Lists: []ListCandidateVotes{
			{ListNumber: 1, ListSeats: 6, CandidateVotes: candidateVotes(500, 500, 500, 500, 500, 500)},
			{ListNumber: 2, ListSeats: 5, CandidateVotes: candidateVotes(400, 400, 400, 400, 400, 400)},
			{ListNumber: 3, ListSeats: 4, CandidateVotes: candidateVotes(300, 300, 300, 300, 300, 300)},
			{ListNumber: 4, ListSeats: 2, CandidateVotes: candidateVotes(200, 200, 200, 200, 200, 200)},
			{ListNumber: 5, ListSeats: 2, CandidateVotes: candidateVotes(200, 200, 200, 200, 200, 200)},
		},
	}

	_, err := Nominate(input)
	nomErr, ok := err.(*Error)
	if !ok || nomErr.Kind != ErrDrawingOfLotsNotImplemented {
		t.Fatalf("err = %v, want DrawingOfLotsNotImplemented", err)
	}
	if nomErr.ListNumber != 2 {
		t.Fatalf("failing list = %d, want 2 (list 1's 6 all tie exactly at 6 seats, list 2 is first over)", nomErr.ListNumber)
	}
}

// No preferential nominations at all: every candidate falls below
// threshold, so the only nomination comes from ballot order.
func TestNominate_NoPreferentialNominations(t *testing.T) {
	quota := fraction.New(105, 5)
	input := Input{
		NumberOfSeats: 5,
		Quota:         quota,
		Lists: []ListCandidateVotes{
			{ListNumber: 1, ListSeats: 1, CandidateVotes: candidateVotes(5, 4, 4, 4, 4)},
			{ListNumber: 2, ListSeats: 1, CandidateVotes: candidateVotes(4, 5, 4, 4, 4)},
		},
	}

	result, err := Nominate(input)
	if err != nil {
		t.Fatalf("Nominate: %v", err)
	}
	list1 := findNomination(t, result, 1)
	if list1.PreferentialNominations != nil {
		t.Errorf("list 1 preferential = %v, want none", list1.PreferentialNominations)
	}
	if !reflect.DeepEqual(list1.OtherNominations, numbers(1)) {
		t.Errorf("list 1 other = %v, want [1]", list1.OtherNominations)
	}
}

// Below the large-council threshold (18 seats), a list with zero seats
// still gets an updated ranking when a candidate meets the preference
// threshold, while receiving no nominations.
func TestNominate_SmallCouncilZeroSeatsStillRanked(t *testing.T) {
	quota := fraction.New(570, 18)
	input := Input{
		NumberOfSeats: 18,
		Quota:         quota,
		Lists: []ListCandidateVotes{
			{ListNumber: 1, ListSeats: 11, CandidateVotes: candidateVotes(80, 70, 60, 50, 40, 30, 20, 0, 0, 0, 0, 0)},
			{ListNumber: 2, ListSeats: 7, CandidateVotes: candidateVotes(80, 60, 40, 20, 4, 0, 0)},
			{ListNumber: 3, ListSeats: 0, CandidateVotes: candidateVotes(0, 0, 0, 0, 16)},
		},
	}

	result, err := Nominate(input)
	if err != nil {
		t.Fatalf("Nominate: %v", err)
	}
	list3 := findNomination(t, result, 3)
	if list3.PreferentialNominations != nil || list3.OtherNominations != nil {
		t.Errorf("list 3 nominations = %v / %v, want none", list3.PreferentialNominations, list3.OtherNominations)
	}
	if !reflect.DeepEqual(list3.UpdatedRanking, numbers(5, 1, 2, 3, 4)) {
		t.Errorf("list 3 updated ranking = %v, want [5 1 2 3 4]", list3.UpdatedRanking)
	}
}

func TestNominate_ChosenCandidatesFlattened(t *testing.T) {
	quota := fraction.New(105, 5)
	input := Input{
		NumberOfSeats: 5,
		Quota:         quota,
		Lists: []ListCandidateVotes{
			{ListNumber: 1, ListSeats: 1, CandidateVotes: candidateVotes(5, 4)},
			{ListNumber: 2, ListSeats: 1, CandidateVotes: candidateVotes(4, 5)},
		},
	}
	result, err := Nominate(input)
	if err != nil {
		t.Fatalf("Nominate: %v", err)
	}
	want := []domain.ChosenCandidate{
		{ListNumber: 1, CandidateNumber: 1},
		{ListNumber: 2, CandidateNumber: 1},
	}
	if !reflect.DeepEqual(result.ChosenCandidates, want) {
		t.Errorf("chosen candidates = %v, want %v", result.ChosenCandidates, want)
	}
}
