package validation

import (
	"fmt"

	"github.com/rawblock/kieswet-engine/internal/domain"
)

// Compare walks a and b structurally and returns the dotted field path of
// every leaf that differs between them. It is used by the data-entry state
// machine to detect disagreement between a first and second entry; callers
// are expected to have already confirmed both share the same tagged
// variant (domain.PollingStationResults.IsSameModel).
func Compare(a, b domain.PollingStationResults) []string {
	var diffs []string

	if a.FirstSession != nil && b.FirstSession != nil {
		diffs = append(diffs, compareExtraInvestigation(a.FirstSession.ExtraInvestigation, b.FirstSession.ExtraInvestigation)...)
		diffs = append(diffs, compareCountingDifferences(a.FirstSession.CountingDifferencesPollingStation, b.FirstSession.CountingDifferencesPollingStation)...)
	}

	diffs = append(diffs, compareCommon(a.Common(), b.Common())...)
	return diffs
}

func compareExtraInvestigation(a, b domain.ExtraInvestigation) []string {
	const path = "extra_investigation"
	var diffs []string
	if a.ExtraInvestigationOtherReason != b.ExtraInvestigationOtherReason {
		diffs = append(diffs, path+".extra_investigation_other_reason")
	}
	if a.BallotsRecountedExtraInvestigation != b.BallotsRecountedExtraInvestigation {
		diffs = append(diffs, path+".ballots_recounted_extra_investigation")
	}
	return diffs
}

func compareCountingDifferences(a, b domain.CountingDifferencesPollingStation) []string {
	const path = "counting_differences_polling_station"
	var diffs []string
	if a.UnexplainedDifferenceBallotsVoters != b.UnexplainedDifferenceBallotsVoters {
		diffs = append(diffs, path+".unexplained_difference_ballots_voters")
	}
	if a.DifferenceBallotsPerList != b.DifferenceBallotsPerList {
		diffs = append(diffs, path+".difference_ballots_per_list")
	}
	return diffs
}

func compareCommon(a, b domain.CommonPollingStationResults) []string {
	var diffs []string

	const votersPath = "voters_counts"
	if a.VotersCounts.PollCardCount != b.VotersCounts.PollCardCount {
		diffs = append(diffs, votersPath+".poll_card_count")
	}
	if a.VotersCounts.ProxyCertificateCount != b.VotersCounts.ProxyCertificateCount {
		diffs = append(diffs, votersPath+".proxy_certificate_count")
	}
	if a.VotersCounts.TotalAdmittedVotersCount != b.VotersCounts.TotalAdmittedVotersCount {
		diffs = append(diffs, votersPath+".total_admitted_voters_count")
	}

	const votesPath = "votes_counts"
	if a.VotesCounts.TotalVotesCandidatesCount != b.VotesCounts.TotalVotesCandidatesCount {
		diffs = append(diffs, votesPath+".total_votes_candidates_count")
	}
	if a.VotesCounts.BlankVotesCount != b.VotesCounts.BlankVotesCount {
		diffs = append(diffs, votesPath+".blank_votes_count")
	}
	if a.VotesCounts.InvalidVotesCount != b.VotesCounts.InvalidVotesCount {
		diffs = append(diffs, votesPath+".invalid_votes_count")
	}
	if a.VotesCounts.TotalVotesCastCount != b.VotesCounts.TotalVotesCastCount {
		diffs = append(diffs, votesPath+".total_votes_cast_count")
	}

	const diffPath = "differences_counts"
	if a.DifferencesCounts.CompareVotesCastAdmittedVoters != b.DifferencesCounts.CompareVotesCastAdmittedVoters {
		diffs = append(diffs, diffPath+".compare_votes_cast_admitted_voters")
	}
	if a.DifferencesCounts.MoreBallotsCount != b.DifferencesCounts.MoreBallotsCount {
		diffs = append(diffs, diffPath+".more_ballots_count")
	}
	if a.DifferencesCounts.FewerBallotsCount != b.DifferencesCounts.FewerBallotsCount {
		diffs = append(diffs, diffPath+".fewer_ballots_count")
	}
	if a.DifferencesCounts.DifferenceCompletelyAccountedFor != b.DifferencesCounts.DifferenceCompletelyAccountedFor {
		diffs = append(diffs, diffPath+".difference_completely_accounted_for")
	}

	diffs = append(diffs, comparePoliticalGroupVotes(a.PoliticalGroupVotes, b.PoliticalGroupVotes)...)
	return diffs
}

func comparePoliticalGroupVotes(a, b []domain.PoliticalGroupCandidateVotes) []string {
	var diffs []string
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		path := fmt.Sprintf("political_group_votes[%d]", a[i].Number)
		if a[i].Total != b[i].Total {
			diffs = append(diffs, path+".total")
		}
		m := len(a[i].CandidateVotes)
		if len(b[i].CandidateVotes) < m {
			m = len(b[i].CandidateVotes)
		}
		for j := 0; j < m; j++ {
			if a[i].CandidateVotes[j].Votes != b[i].CandidateVotes[j].Votes {
				diffs = append(diffs, fmt.Sprintf("%s.candidate_votes[%d]", path, a[i].CandidateVotes[j].Number))
			}
		}
	}
	return diffs
}
