package reporting

import (
	"testing"

	"github.com/rawblock/kieswet-engine/internal/domain"
)

func testElection() domain.Election {
	return domain.Election{
		NumberOfSeats: 15,
		PoliticalGroups: []domain.PoliticalGroup{
			{Number: 1, Candidates: []domain.Candidate{{Number: 1}, {Number: 2}}},
			{Number: 2, Candidates: []domain.Candidate{{Number: 1}}},
		},
	}
}

func station(admitted domain.Count, list1c1, list1c2, list2c1 domain.Count) domain.PollingStationResults {
	list1Total := list1c1 + list1c2
	return domain.NewNextSessionResults(domain.NextSessionResults{
		VotersCounts: domain.VotersCounts{
			PollCardCount:            admitted,
			TotalAdmittedVotersCount: admitted,
		},
		VotesCounts: domain.VotesCounts{
			PoliticalGroupTotalVotes: []domain.PoliticalGroupTotalVotes{
				{Number: 1, Total: list1Total},
				{Number: 2, Total: list2c1},
			},
			TotalVotesCandidatesCount: list1Total + list2c1,
			TotalVotesCastCount:       list1Total + list2c1,
		},
		PoliticalGroupVotes: []domain.PoliticalGroupCandidateVotes{
			{Number: 1, Total: list1Total, CandidateVotes: []domain.CandidateVotes{{Number: 1, Votes: list1c1}, {Number: 2, Votes: list1c2}}},
			{Number: 2, Total: list2c1, CandidateVotes: []domain.CandidateVotes{{Number: 1, Votes: list2c1}}},
		},
	})
}

func TestAggregate_SumsAcrossStations(t *testing.T) {
	election := testElection()
	results := []domain.PollingStationResults{
		station(100, 30, 20, 50),
		station(80, 10, 10, 60),
	}

	summary, err := Aggregate(election, results)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if summary.VotersCounts.TotalAdmittedVotersCount != 180 {
		t.Errorf("total admitted = %d, want 180", summary.VotersCounts.TotalAdmittedVotersCount)
	}
	if summary.PoliticalGroupVotes[0].Total != 70 {
		t.Errorf("list 1 total = %d, want 70", summary.PoliticalGroupVotes[0].Total)
	}
	if summary.PoliticalGroupVotes[0].CandidateVotes[0].Votes != 40 {
		t.Errorf("list 1 candidate 1 votes = %d, want 40", summary.PoliticalGroupVotes[0].CandidateVotes[0].Votes)
	}
	if summary.PoliticalGroupVotes[1].Total != 110 {
		t.Errorf("list 2 total = %d, want 110", summary.PoliticalGroupVotes[1].Total)
	}
}

func TestAggregate_EmptyInputYieldsZeroedShape(t *testing.T) {
	election := testElection()
	summary, err := Aggregate(election, nil)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(summary.PoliticalGroupVotes) != 2 {
		t.Fatalf("groups = %d, want 2", len(summary.PoliticalGroupVotes))
	}
	if summary.PoliticalGroupVotes[0].Total != 0 {
		t.Errorf("list 1 total = %d, want 0", summary.PoliticalGroupVotes[0].Total)
	}
}

func TestAggregate_GroupMismatchFails(t *testing.T) {
	election := testElection()
	bad := domain.NewNextSessionResults(domain.NextSessionResults{
		PoliticalGroupVotes: []domain.PoliticalGroupCandidateVotes{
			{Number: 1, CandidateVotes: []domain.CandidateVotes{{Number: 1}, {Number: 2}}},
		},
	})

	_, err := Aggregate(election, []domain.PollingStationResults{bad})
	repErr, ok := err.(*Error)
	if !ok || repErr.Kind != ErrInvalidVoteGroup {
		t.Fatalf("err = %v, want InvalidVoteGroup", err)
	}
}

func TestAggregate_CandidateMismatchFails(t *testing.T) {
	election := testElection()
	bad := domain.NewNextSessionResults(domain.NextSessionResults{
		PoliticalGroupVotes: []domain.PoliticalGroupCandidateVotes{
			{Number: 1, CandidateVotes: []domain.CandidateVotes{{Number: 1}}},
			{Number: 2, CandidateVotes: []domain.CandidateVotes{{Number: 1}}},
		},
	})

	_, err := Aggregate(election, []domain.PollingStationResults{bad})
	repErr, ok := err.(*Error)
	if !ok || repErr.Kind != ErrInvalidVoteCandidate {
		t.Fatalf("err = %v, want InvalidVoteCandidate", err)
	}
}
