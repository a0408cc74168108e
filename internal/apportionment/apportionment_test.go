package apportionment

import (
	"testing"

	"github.com/rawblock/kieswet-engine/internal/domain"
)

func listVotesFrom(votes ...int) []ListVotes {
	out := make([]ListVotes, len(votes))
	for i, v := range votes {
		out[i] = ListVotes{ListNumber: domain.PoliticalGroupNumber(i + 1), Votes: domain.Count(v), NumberOfCandidates: 1000}
	}
	return out
}

func totals(result Result) []int {
	out := make([]int, len(result.FinalStanding))
	for i, s := range result.FinalStanding {
		out[i] = s.TotalSeats()
	}
	return out
}

func assertTotals(t *testing.T, got []int, want []int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("totals = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("totals = %v, want %v", got, want)
		}
	}
}

// scenario 1 (spec.md §8): small council, no residual seats needed.
func TestApportion_SmallCouncilNoResiduals(t *testing.T) {
	input := Input{NumberOfSeats: 15, ListVotes: listVotesFrom(480, 160, 160, 160, 80, 80, 80)}
	result, err := Apportion(input)
	if err != nil {
		t.Fatalf("Apportion: %v", err)
	}
	assertTotals(t, totals(result), []int{6, 2, 2, 2, 1, 1, 1})
	if len(result.Steps) != 0 {
		t.Errorf("steps = %d, want 0", len(result.Steps))
	}
}

// scenario 2: largest-remainder residual seats.
func TestApportion_LargestRemainderResidual(t *testing.T) {
	input := Input{NumberOfSeats: 15, ListVotes: listVotesFrom(540, 160, 160, 80, 80, 80, 60, 40)}
	result, err := Apportion(input)
	if err != nil {
		t.Fatalf("Apportion: %v", err)
	}
	assertTotals(t, totals(result), []int{7, 2, 2, 1, 1, 1, 1, 0})
	if len(result.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(result.Steps))
	}
	if result.Steps[0].Change.Kind != domain.ChangeLargestRemainderAssignment || result.Steps[0].Change.LargestRemainder.ListNumber != 1 {
		t.Errorf("step 0 = %+v, want largest-remainder to list 1", result.Steps[0].Change)
	}
	if result.Steps[1].Change.Kind != domain.ChangeLargestRemainderAssignment || result.Steps[1].Change.LargestRemainder.ListNumber != 7 {
		t.Errorf("step 1 = %+v, want largest-remainder to list 7", result.Steps[1].Change)
	}
}

// scenario 3: Article P 9 absolute-majority correction. List 1 holds 755
// of 1500 votes cast (just over half) but its remainder (55) is smaller
// than the remainders (80) of lists 2-5, so the four residual seats all go
// to those smaller lists by largest remainder, leaving it with only 7 of
// 15 seats (not a majority) until the correction retracts the
// last-assigned residual seat (list 5's) and hands it to list 1.
func TestApportion_P9AbsoluteMajorityCorrection(t *testing.T) {
	input := Input{NumberOfSeats: 15, ListVotes: listVotesFrom(755, 80, 80, 80, 80, 425)}
	result, err := Apportion(input)
	if err != nil {
		t.Fatalf("Apportion: %v", err)
	}
	assertTotals(t, totals(result), []int{8, 1, 1, 1, 0, 4})

	last := result.Steps[len(result.Steps)-1]
	if last.Change.Kind != domain.ChangeAbsoluteMajorityReassignment {
		t.Fatalf("last step = %+v, want AbsoluteMajorityReassignment", last.Change)
	}
	if last.Change.AbsoluteMajority.ListNumber != 1 || last.Change.AbsoluteMajority.RetractedFrom != 5 {
		t.Errorf("P9 step = %+v, want list 1 gains seat retracted from list 5", last.Change.AbsoluteMajority)
	}
}

// scenario 4: Article P 10 list-exhaustion reassignment. The quota is 430,
// so full seats are [5,3,3,1,1] and the two residual seats go to lists 2
// and 4 (remainders 410 and 370). List 1 then holds 5 seats but has only
// 4 candidates; its excess seat is removed and reassigned to list 2, which
// still has the largest remainder, for final totals [4,5,3,2,1].
func TestApportion_P10ListExhaustionReassignment(t *testing.T) {
	lv := []ListVotes{
		{ListNumber: 1, Votes: 2200, NumberOfCandidates: 4},
		{ListNumber: 2, Votes: 1700, NumberOfCandidates: 5},
		{ListNumber: 3, Votes: 1300, NumberOfCandidates: 3},
		{ListNumber: 4, Votes: 800, NumberOfCandidates: 2},
		{ListNumber: 5, Votes: 450, NumberOfCandidates: 1},
	}
	input := Input{NumberOfSeats: 15, ListVotes: lv}
	result, err := Apportion(input)
	if err != nil {
		t.Fatalf("Apportion: %v", err)
	}

	var exhaustion *domain.SeatChangeStep
	for i := range result.Steps {
		if result.Steps[i].Change.Kind == domain.ChangeListExhaustionRemoval {
			exhaustion = &result.Steps[i]
			break
		}
	}
	if exhaustion == nil {
		t.Fatal("no ListExhaustionRemoval step found")
	}
	if exhaustion.Change.ListExhaustion.ListNumber != 1 {
		t.Errorf("exhaustion from list %d, want 1", exhaustion.Change.ListExhaustion.ListNumber)
	}

	total := 0
	for _, s := range result.FinalStanding {
		if s.TotalSeats() > 0 {
			idx := -1
			for i, lvv := range lv {
				if lvv.ListNumber == s.ListNumber {
					idx = i
				}
			}
			if idx >= 0 && s.TotalSeats() > lv[idx].NumberOfCandidates {
				t.Errorf("list %d holds %d seats but only has %d candidates", s.ListNumber, s.TotalSeats(), lv[idx].NumberOfCandidates)
			}
		}
		total += s.TotalSeats()
	}
	if total != 15 {
		t.Errorf("total seats assigned = %d, want 15", total)
	}
}

// TestApportion_P10AfterResidualAssignmentKeepsSeatTotal guards against
// assignRemainder being asked to place more seats than Article P 10
// actually took back, when the earlier residual loop had already
// assigned some seats of its own. The two residual seats go to lists 1
// and 7 as in TestApportion_LargestRemainderResidual, but list 1 only has
// 6 candidates, so P 10 claws its residual seat back; exactly one seat
// must be reassigned among the rest, not the full seat count again.
func TestApportion_P10AfterResidualAssignmentKeepsSeatTotal(t *testing.T) {
	lv := []ListVotes{
		{ListNumber: 1, Votes: 540, NumberOfCandidates: 6},
		{ListNumber: 2, Votes: 160, NumberOfCandidates: 1000},
		{ListNumber: 3, Votes: 160, NumberOfCandidates: 1000},
		{ListNumber: 4, Votes: 80, NumberOfCandidates: 1000},
		{ListNumber: 5, Votes: 80, NumberOfCandidates: 1000},
		{ListNumber: 6, Votes: 80, NumberOfCandidates: 1000},
		{ListNumber: 7, Votes: 60, NumberOfCandidates: 1000},
		{ListNumber: 8, Votes: 40, NumberOfCandidates: 1000},
	}
	result, err := Apportion(Input{NumberOfSeats: 15, ListVotes: lv})
	if err != nil {
		t.Fatalf("Apportion: %v", err)
	}

	sum := 0
	for i, s := range result.FinalStanding {
		if s.TotalSeats() > lv[i].NumberOfCandidates {
			t.Errorf("list %d holds %d seats but only has %d candidates", s.ListNumber, s.TotalSeats(), lv[i].NumberOfCandidates)
		}
		sum += s.TotalSeats()
	}
	if sum != 15 {
		t.Fatalf("total seats assigned = %d, want 15", sum)
	}

	var exhaustion bool
	for _, step := range result.Steps {
		if step.Change.Kind == domain.ChangeListExhaustionRemoval && step.Change.ListExhaustion.ListNumber == 1 {
			exhaustion = true
		}
	}
	if !exhaustion {
		t.Fatal("expected a ListExhaustionRemoval step for list 1")
	}
}

func TestApportion_ZeroVotesCast(t *testing.T) {
	input := Input{NumberOfSeats: 15, ListVotes: listVotesFrom(0, 0)}
	_, err := Apportion(input)
	apErr, ok := err.(*Error)
	if !ok || apErr.Kind != ErrZeroVotesCast {
		t.Fatalf("err = %v, want ZeroVotesCast", err)
	}
}

func TestApportion_TotalSeatsAlwaysEqualsSeatCount(t *testing.T) {
	cases := [][]int{
		{480, 160, 160, 160, 80, 80, 80},
		{540, 160, 160, 80, 80, 80, 60, 40},
		{2571, 977, 567, 536, 453},
	}
	for _, votes := range cases {
		input := Input{NumberOfSeats: 15, ListVotes: listVotesFrom(votes...)}
		result, err := Apportion(input)
		if err != nil {
			t.Fatalf("Apportion(%v): %v", votes, err)
		}
		sum := 0
		for _, s := range result.FinalStanding {
			if s.FullSeats+s.ResidualSeats != s.TotalSeats() {
				t.Errorf("full+residual != total for list %d", s.ListNumber)
			}
			sum += s.TotalSeats()
		}
		if sum != 15 {
			t.Errorf("votes=%v: total seats = %d, want 15", votes, sum)
		}
	}
}
