package dataentry

import (
	"testing"

	"github.com/rawblock/kieswet-engine/internal/domain"
	"github.com/rawblock/kieswet-engine/internal/validation"
)

func testElection() domain.Election {
	return domain.Election{
		NumberOfSeats: 9,
		PoliticalGroups: []domain.PoliticalGroup{
			{Number: 1, Candidates: []domain.Candidate{{Number: 1}, {Number: 2}}},
		},
	}
}

func cleanFirstEntry(election domain.Election) domain.PollingStationResults {
	r := domain.EmptyFirstSessionResults(election.PoliticalGroups)
	r.VotersCounts = domain.VotersCounts{PollCardCount: 100, TotalAdmittedVotersCount: 100}
	r.VotesCounts.TotalVotesCastCount = 100
	r.VotesCounts.TotalVotesCandidatesCount = 100
	r.PoliticalGroupVotes[0].Total = 100
	r.PoliticalGroupVotes[0].CandidateVotes[0].Votes = 60
	r.PoliticalGroupVotes[0].CandidateVotes[1].Votes = 40
	r.DifferencesCounts.CompareVotesCastAdmittedVoters.AdmittedVotersEqualVotesCast = true
	r.DifferencesCounts.DifferenceCompletelyAccountedFor = domain.YesNoYes()
	r.ExtraInvestigation.ExtraInvestigationOtherReason = domain.YesNoNo()
	r.ExtraInvestigation.BallotsRecountedExtraInvestigation = domain.YesNoNo()
	r.CountingDifferencesPollingStation.UnexplainedDifferenceBallotsVoters = domain.YesNoNo()
	r.CountingDifferencesPollingStation.DifferenceBallotsPerList = domain.YesNoNo()
	return domain.NewFirstSessionResults(r)
}

func TestClaimFirst(t *testing.T) {
	election := testElection()
	entry := CurrentEntry{UserID: 1, Entry: cleanFirstEntry(election)}

	status, err := ClaimFirst(domain.NotStartedDataEntryStatus(), entry)
	if err != nil {
		t.Fatalf("ClaimFirst: unexpected error: %v", err)
	}
	if status.Kind != domain.KindFirstEntryInProgress {
		t.Fatalf("expected FirstEntryInProgress, got %s", status.Kind)
	}

	// Re-claiming as the same user is a no-op.
	status2, err := ClaimFirst(status, entry)
	if err != nil {
		t.Fatalf("re-claim by same user: unexpected error: %v", err)
	}
	if status2.Kind != domain.KindFirstEntryInProgress {
		t.Fatalf("expected FirstEntryInProgress after re-claim, got %s", status2.Kind)
	}

	// Claiming as a different user is refused.
	_, err = ClaimFirst(status, CurrentEntry{UserID: 2, Entry: entry.Entry})
	te, ok := err.(*TransitionError)
	if !ok || te.Kind != ErrFirstEntryAlreadyClaimed {
		t.Fatalf("expected ErrFirstEntryAlreadyClaimed, got %v", err)
	}
}

func TestFinaliseFirstCleanEntry(t *testing.T) {
	election := testElection()
	entry := CurrentEntry{UserID: 1, Entry: cleanFirstEntry(election)}
	status, err := ClaimFirst(domain.NotStartedDataEntryStatus(), entry)
	if err != nil {
		t.Fatalf("ClaimFirst: %v", err)
	}

	status, err = FinaliseFirst(status, 1, election)
	if err != nil {
		t.Fatalf("FinaliseFirst: unexpected error: %v", err)
	}
	if status.Kind != domain.KindSecondEntryNotStarted {
		t.Fatalf("expected SecondEntryNotStarted, got %s", status.Kind)
	}
	if status.SecondNotStarted.FinalisedWithWarnings {
		t.Fatalf("expected no warnings for a clean entry")
	}
}

func TestFinaliseFirstWithErrors(t *testing.T) {
	election := testElection()
	bad := cleanFirstEntry(election)
	bad.FirstSession.VotersCounts.TotalAdmittedVotersCount = 999 // breaks F201

	status, err := ClaimFirst(domain.NotStartedDataEntryStatus(), CurrentEntry{UserID: 1, Entry: bad})
	if err != nil {
		t.Fatalf("ClaimFirst: %v", err)
	}
	status, err = FinaliseFirst(status, 1, election)
	if err != nil {
		t.Fatalf("FinaliseFirst: unexpected error: %v", err)
	}
	if status.Kind != domain.KindFirstEntryHasErrors {
		t.Fatalf("expected FirstEntryHasErrors, got %s", status.Kind)
	}

	resumed, err := ResumeFirst(status)
	if err != nil {
		t.Fatalf("ResumeFirst: %v", err)
	}
	if resumed.Kind != domain.KindFirstEntryInProgress {
		t.Fatalf("expected FirstEntryInProgress after resume, got %s", resumed.Kind)
	}
}

func TestFinaliseFirstWrongUser(t *testing.T) {
	election := testElection()
	status, _ := ClaimFirst(domain.NotStartedDataEntryStatus(), CurrentEntry{UserID: 1, Entry: cleanFirstEntry(election)})

	_, err := FinaliseFirst(status, 2, election)
	te, ok := err.(*TransitionError)
	if !ok || te.Kind != ErrCannotTransitionUsingDifferentUser {
		t.Fatalf("expected ErrCannotTransitionUsingDifferentUser, got %v", err)
	}
}

func TestFullLifecycleAgreement(t *testing.T) {
	election := testElection()
	entry := cleanFirstEntry(election)

	status, err := ClaimFirst(domain.NotStartedDataEntryStatus(), CurrentEntry{UserID: 1, Entry: entry})
	if err != nil {
		t.Fatalf("ClaimFirst: %v", err)
	}
	status, err = FinaliseFirst(status, 1, election)
	if err != nil {
		t.Fatalf("FinaliseFirst: %v", err)
	}

	status, err = ClaimSecond(status, CurrentEntry{UserID: 2, Entry: entry})
	if err != nil {
		t.Fatalf("ClaimSecond: %v", err)
	}
	if status.Kind != domain.KindSecondEntryInProgress {
		t.Fatalf("expected SecondEntryInProgress, got %s", status.Kind)
	}

	outcome, err := FinaliseSecond(status, 2, election)
	if err != nil {
		t.Fatalf("FinaliseSecond: %v", err)
	}
	if outcome.Status.Kind != domain.KindDefinitive {
		t.Fatalf("expected Definitive, got %s", outcome.Status.Kind)
	}
	if outcome.Result == nil {
		t.Fatalf("expected a result to be returned on agreement")
	}
}

func TestSecondEntryNeedsDifferentUser(t *testing.T) {
	election := testElection()
	entry := cleanFirstEntry(election)
	status, _ := ClaimFirst(domain.NotStartedDataEntryStatus(), CurrentEntry{UserID: 1, Entry: entry})
	status, _ = FinaliseFirst(status, 1, election)

	_, err := ClaimSecond(status, CurrentEntry{UserID: 1, Entry: entry})
	te, ok := err.(*TransitionError)
	if !ok || te.Kind != ErrSecondEntryNeedsDifferentUser {
		t.Fatalf("expected ErrSecondEntryNeedsDifferentUser, got %v", err)
	}
}

func TestEntriesDifferentResolution(t *testing.T) {
	election := testElection()
	first := cleanFirstEntry(election)
	status, _ := ClaimFirst(domain.NotStartedDataEntryStatus(), CurrentEntry{UserID: 1, Entry: first})
	status, _ = FinaliseFirst(status, 1, election)

	second := cleanFirstEntry(election)
	second.FirstSession.PoliticalGroupVotes[0].CandidateVotes[0].Votes = 55
	second.FirstSession.PoliticalGroupVotes[0].CandidateVotes[1].Votes = 45

	status, err := ClaimSecond(status, CurrentEntry{UserID: 2, Entry: second})
	if err != nil {
		t.Fatalf("ClaimSecond: %v", err)
	}

	outcome, err := FinaliseSecond(status, 2, election)
	if err != nil {
		t.Fatalf("FinaliseSecond: %v", err)
	}
	if outcome.Status.Kind != domain.KindEntriesDifferent {
		t.Fatalf("expected EntriesDifferent, got %s", outcome.Status.Kind)
	}
	if outcome.Result != nil {
		t.Fatalf("expected no result while entries disagree")
	}
	if outcome.Differences == nil || outcome.Differences.Code != validation.W001 {
		t.Fatalf("expected a W001 diagnostic carrying the diverging field paths, got %v", outcome.Differences)
	}
	if len(outcome.Differences.Fields) == 0 {
		t.Fatalf("expected W001 to list at least one diverging field path")
	}

	resolved, err := KeepSecond(outcome.Status, election)
	if err != nil {
		t.Fatalf("KeepSecond: %v", err)
	}
	if resolved.Kind != domain.KindSecondEntryNotStarted {
		t.Fatalf("expected SecondEntryNotStarted after KeepSecond, got %s", resolved.Kind)
	}
	if resolved.SecondNotStarted.FirstEntryUserID != 2 {
		t.Fatalf("expected the second typist to become the new first-entry user")
	}

	discarded, err := DiscardBoth(outcome.Status)
	if err != nil {
		t.Fatalf("DiscardBoth: %v", err)
	}
	if discarded.Kind != domain.KindFirstEntryNotStarted {
		t.Fatalf("expected FirstEntryNotStarted after DiscardBoth, got %s", discarded.Kind)
	}
}

func TestDeleteFirstWrongUser(t *testing.T) {
	election := testElection()
	status, _ := ClaimFirst(domain.NotStartedDataEntryStatus(), CurrentEntry{UserID: 1, Entry: cleanFirstEntry(election)})

	_, err := DeleteFirst(status, 2)
	te, ok := err.(*TransitionError)
	if !ok || te.Kind != ErrCannotTransitionUsingDifferentUser {
		t.Fatalf("expected ErrCannotTransitionUsingDifferentUser, got %v", err)
	}

	status, err = DeleteFirst(status, 1)
	if err != nil {
		t.Fatalf("DeleteFirst: %v", err)
	}
	if status.Kind != domain.KindFirstEntryNotStarted {
		t.Fatalf("expected FirstEntryNotStarted, got %s", status.Kind)
	}
}
