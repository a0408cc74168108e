package validation

import (
	"fmt"

	"github.com/rawblock/kieswet-engine/internal/domain"
)

// Validate runs every cross-field invariant check from §4.2 over results,
// for the groups defined by election. It returns a DataError only when the
// input is structurally malformed beyond what a field-level diagnostic can
// express (wrong list/candidate counts, non-consecutive numbering);
// ordinary rule violations are reported as Results, never as an error.
func Validate(results domain.PollingStationResults, election domain.Election) (Results, error) {
	var out Results

	common := results.Common()
	if err := validateStructure(common, election); err != nil {
		return Results{}, err
	}

	if results.FirstSession != nil {
		validateExtraInvestigation(results.FirstSession.ExtraInvestigation, &out)
		validateCountingDifferences(results.FirstSession.CountingDifferencesPollingStation, &out)
	}

	validateVotersCounts(common.VotersCounts, &out)
	validateVotesAndLists(common, &out)
	validateDifferencesCounts(common.VotersCounts.TotalAdmittedVotersCount, common.VotesCounts.TotalVotesCastCount, common.DifferencesCounts, &out)

	sortDiagnostics(out.Errors)
	sortDiagnostics(out.Warnings)
	return out, nil
}

// validateStructure checks the shape that a diagnostic code cannot address:
// dense list numbers matching the election's groups, and dense candidate
// numbers matching each group's ballot.
func validateStructure(common domain.CommonPollingStationResults, election domain.Election) error {
	if len(common.PoliticalGroupVotes) != len(election.PoliticalGroups) {
		return domain.NewDataError("number of political group votes does not match the election's groups")
	}
	for i, pgv := range common.PoliticalGroupVotes {
		group := election.PoliticalGroups[i]
		if pgv.Number != group.Number {
			return domain.NewDataError(fmt.Sprintf("political group votes out of order at index %d", i))
		}
		if len(pgv.CandidateVotes) != len(group.Candidates) {
			return domain.NewDataError(fmt.Sprintf("list %d: candidate vote count does not match candidate list", group.Number))
		}
		for j, cv := range pgv.CandidateVotes {
			if int(cv.Number) != j+1 {
				return domain.NewDataError(fmt.Sprintf("list %d: candidate numbers are not consecutive", group.Number))
			}
		}
	}
	return nil
}

func validateExtraInvestigation(ei domain.ExtraInvestigation, out *Results) {
	const path = "extra_investigation"
	if ei.ExtraInvestigationOtherReason.IsAnswered() != ei.BallotsRecountedExtraInvestigation.IsAnswered() {
		out.addError(F101, path)
	}
	if ei.ExtraInvestigationOtherReason.IsInvalid() || ei.BallotsRecountedExtraInvestigation.IsInvalid() {
		out.addError(F102, path)
	}
}

func validateCountingDifferences(cd domain.CountingDifferencesPollingStation, out *Results) {
	const path = "counting_differences_polling_station"
	if !cd.UnexplainedDifferenceBallotsVoters.IsAnswered() || !cd.DifferenceBallotsPerList.IsAnswered() {
		out.addError(F111, path)
	}
	if cd.UnexplainedDifferenceBallotsVoters.IsInvalid() || cd.DifferenceBallotsPerList.IsInvalid() {
		out.addError(F112, path)
	}
}

func validateVotersCounts(vc domain.VotersCounts, out *Results) {
	const path = "voters_counts"
	if vc.PollCardCount+vc.ProxyCertificateCount != vc.TotalAdmittedVotersCount {
		out.addError(F201,
			path+".poll_card_count",
			path+".proxy_certificate_count",
			path+".total_admitted_voters_count",
		)
	}
}

func validateVotesAndLists(common domain.CommonPollingStationResults, out *Results) {
	const votesPath = "votes_counts"
	vc := common.VotesCounts

	var listTotalSum uint64
	for _, pgv := range common.PoliticalGroupVotes {
		listTotalSum += uint64(pgv.Total)
	}
	if uint64(vc.TotalVotesCandidatesCount) != listTotalSum {
		out.addError(F202, votesPath+".total_votes_candidates_count", "political_group_votes")
	}

	if vc.TotalVotesCandidatesCount+vc.BlankVotesCount+vc.InvalidVotesCount != vc.TotalVotesCastCount {
		out.addError(F203,
			votesPath+".total_votes_candidates_count",
			votesPath+".blank_votes_count",
			votesPath+".invalid_votes_count",
			votesPath+".total_votes_cast_count",
		)
	}

	// Warnings about the cast total are only meaningful once the counts
	// themselves reconcile, mirroring the source's "stop on error" rule.
	if len(out.Errors) == 0 {
		if aboveThreshold(vc.BlankVotesCount, vc.TotalVotesCastCount, domain.BlankInvalidWarningPercent) {
			out.addWarning(W201, votesPath+".blank_votes_count")
		}
		if aboveThreshold(vc.InvalidVotesCount, vc.TotalVotesCastCount, domain.BlankInvalidWarningPercent) {
			out.addWarning(W202, votesPath+".invalid_votes_count")
		}
		if vc.TotalVotesCastCount == 0 {
			out.addWarning(W205, votesPath+".total_votes_cast_count")
		}
	}

	for _, pgv := range common.PoliticalGroupVotes {
		validateListTotal(pgv, out)
	}
}

func validateListTotal(pgv domain.PoliticalGroupCandidateVotes, out *Results) {
	var sum uint64
	for _, cv := range pgv.CandidateVotes {
		sum += uint64(cv.Votes)
	}
	path := fmt.Sprintf("political_group_votes[%d]", pgv.Number)
	switch {
	case sum > 0 && pgv.Total == 0:
		out.addError(F402, path+".total")
	case uint64(pgv.Total) != sum:
		out.addError(F401, path)
	}
}

func validateDifferencesCounts(totalVoters, totalVotes domain.Count, dc domain.DifferencesCounts, out *Results) {
	const path = "differences_counts"
	cmp := dc.CompareVotesCastAdmittedVoters

	if cmp.AdmittedVotersEqualVotesCast && totalVoters != totalVotes {
		out.addError(F301, path+".compare_votes_cast_admitted_voters.admitted_voters_equal_votes_cast")
	}
	if cmp.VotesCastGreaterThanAdmittedVoters && totalVotes <= totalVoters {
		out.addError(F302, path+".compare_votes_cast_admitted_voters.votes_cast_greater_than_admitted_voters")
	}
	if cmp.VotesCastSmallerThanAdmittedVoters && totalVotes >= totalVoters {
		out.addError(F303, path+".compare_votes_cast_admitted_voters.votes_cast_smaller_than_admitted_voters")
	}
	selected := boolCount(cmp.AdmittedVotersEqualVotesCast, cmp.VotesCastGreaterThanAdmittedVoters, cmp.VotesCastSmallerThanAdmittedVoters)
	if selected != 1 {
		out.addError(F304, path+".compare_votes_cast_admitted_voters")
	}

	switch {
	case totalVoters == totalVotes:
		var fields []string
		if dc.MoreBallotsCount != 0 {
			fields = append(fields, path+".more_ballots_count")
		}
		if dc.FewerBallotsCount != 0 {
			fields = append(fields, path+".fewer_ballots_count")
		}
		if len(fields) > 0 {
			out.addError(F305, fields...)
		}
	case totalVotes > totalVoters:
		diff := totalVotes - totalVoters
		if dc.MoreBallotsCount != diff {
			out.addError(F306, path+".more_ballots_count")
		}
		if dc.FewerBallotsCount != 0 {
			out.addError(F307, path+".fewer_ballots_count")
		}
	case totalVotes < totalVoters:
		diff := totalVoters - totalVotes
		if dc.FewerBallotsCount != diff {
			out.addError(F308, path+".fewer_ballots_count")
		}
		if dc.MoreBallotsCount != 0 {
			out.addError(F309, path+".more_ballots_count")
		}
	}

	if totalVoters != totalVotes && !dc.DifferenceCompletelyAccountedFor.IsAnswered() {
		out.addError(F310, path+".difference_completely_accounted_for")
	}

	if aboveSmallDifferenceThreshold(totalVoters, totalVotes) {
		out.addWarning(W203, votesAndVotersPaths()...)
	}

	explainedNo := dc.DifferenceCompletelyAccountedFor.No && !dc.DifferenceCompletelyAccountedFor.Yes
	if dc.MoreBallotsCount != 0 && cmp.VotesCastGreaterThanAdmittedVoters &&
		!cmp.AdmittedVotersEqualVotesCast && !cmp.VotesCastSmallerThanAdmittedVoters && explainedNo {
		out.addWarning(W301, path+".more_ballots_count")
	}
	if dc.FewerBallotsCount != 0 && cmp.VotesCastSmallerThanAdmittedVoters &&
		!cmp.AdmittedVotersEqualVotesCast && !cmp.VotesCastGreaterThanAdmittedVoters && explainedNo {
		out.addWarning(W302, path+".fewer_ballots_count")
	}
}

func votesAndVotersPaths() []string {
	return []string{"votes_counts.total_votes_cast_count", "voters_counts.total_admitted_voters_count"}
}

func boolCount(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

// aboveThreshold reports whether count is more than pct percent of total,
// computed with integer arithmetic to avoid float rounding.
func aboveThreshold(count, total domain.Count, pct uint64) bool {
	if total == 0 {
		return count > 0
	}
	return uint64(count)*100 > pct*uint64(total)
}

// aboveSmallDifferenceThreshold reports whether the gap between voters and
// votes meets the W203 threshold: 2% of votes cast, or 15 absolute.
func aboveSmallDifferenceThreshold(voters, votes domain.Count) bool {
	diff := diffCount(voters, votes)
	if diff >= domain.SmallDifferenceWarningAbsolute {
		return true
	}
	if votes == 0 {
		return diff > 0
	}
	return uint64(diff)*100 >= domain.SmallDifferenceWarningPercent*uint64(votes)
}

func diffCount(a, b domain.Count) domain.Count {
	if a > b {
		return a - b
	}
	return b - a
}
