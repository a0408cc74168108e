// Package reporting implements the thin aggregation adaptor (§4.6): once
// every polling station in an election has reached Definitive, it sums
// their results into one election-wide summary that feeds seat
// apportionment and nomination, and ultimately the PDF/EML report
// collaborators this core treats as external.
package reporting

import (
	"fmt"

	"github.com/rawblock/kieswet-engine/internal/domain"
)

// ErrorKind enumerates the ways aggregation can fail outright.
type ErrorKind string

const (
	// ErrInvalidVoteGroup means a station's results carry a different set
	// of list numbers than the election, or in a different order.
	ErrInvalidVoteGroup ErrorKind = "invalid_vote_group"
	// ErrInvalidVoteCandidate means a list's candidate numbers don't match
	// across stations being summed.
	ErrInvalidVoteCandidate ErrorKind = "invalid_vote_candidate"
)

// Error reports why Aggregate failed.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("reporting: %s: %s", string(e.Kind), e.Msg) }

// Summary is the election-wide aggregate: every Definitive polling
// station's voter counts, vote counts, and per-candidate votes, summed.
type Summary struct {
	VotersCounts        domain.VotersCounts
	VotesCounts         domain.VotesCounts
	PoliticalGroupVotes []domain.PoliticalGroupCandidateVotes
}

// Aggregate sums the Definitive results of every polling station in
// election into one Summary. Every station's results must carry exactly
// the election's list and candidate numbers, in the same order; summation
// is commutative and associative by construction, so caller order doesn't
// matter for the result, only for which station a mismatch is reported
// against.
func Aggregate(election domain.Election, results []domain.PollingStationResults) (Summary, error) {
	summary := Summary{
		VotesCounts:         domain.VotesCounts{PoliticalGroupTotalVotes: emptyGroupTotalVotes(election.PoliticalGroups)},
		PoliticalGroupVotes: emptyGroupVotes(election.PoliticalGroups),
	}
	for i, r := range results {
		common := r.Common()
		if err := checkShape(election, common, i); err != nil {
			return Summary{}, err
		}
		summary.VotersCounts.Add(common.VotersCounts)
		addVotesCounts(&summary.VotesCounts, common.VotesCounts)
		addGroupVotes(summary.PoliticalGroupVotes, common.PoliticalGroupVotes)
	}
	return summary, nil
}

func checkShape(election domain.Election, common domain.CommonPollingStationResults, index int) error {
	if len(common.PoliticalGroupVotes) != len(election.PoliticalGroups) {
		return &Error{Kind: ErrInvalidVoteGroup, Msg: fmt.Sprintf("station %d: group count mismatch", index)}
	}
	for i, pgv := range common.PoliticalGroupVotes {
		group := election.PoliticalGroups[i]
		if pgv.Number != group.Number {
			return &Error{Kind: ErrInvalidVoteGroup, Msg: fmt.Sprintf("station %d: list %d out of order", index, pgv.Number)}
		}
		if len(pgv.CandidateVotes) != len(group.Candidates) {
			return &Error{Kind: ErrInvalidVoteCandidate, Msg: fmt.Sprintf("station %d: list %d candidate count mismatch", index, group.Number)}
		}
		for j, cv := range pgv.CandidateVotes {
			if cv.Number != group.Candidates[j].Number {
				return &Error{Kind: ErrInvalidVoteCandidate, Msg: fmt.Sprintf("station %d: list %d candidate %d out of order", index, group.Number, cv.Number)}
			}
		}
	}
	return nil
}

func addVotesCounts(sum *domain.VotesCounts, other domain.VotesCounts) {
	sum.TotalVotesCandidatesCount += other.TotalVotesCandidatesCount
	sum.BlankVotesCount += other.BlankVotesCount
	sum.InvalidVotesCount += other.InvalidVotesCount
	sum.TotalVotesCastCount += other.TotalVotesCastCount
	for i := range sum.PoliticalGroupTotalVotes {
		sum.PoliticalGroupTotalVotes[i].Total += other.PoliticalGroupTotalVotes[i].Total
	}
}

func addGroupVotes(sum []domain.PoliticalGroupCandidateVotes, other []domain.PoliticalGroupCandidateVotes) {
	for i := range sum {
		sum[i].Total += other[i].Total
		for j := range sum[i].CandidateVotes {
			sum[i].CandidateVotes[j].Votes += other[i].CandidateVotes[j].Votes
		}
	}
}

func emptyGroupTotalVotes(groups []domain.PoliticalGroup) []domain.PoliticalGroupTotalVotes {
	out := make([]domain.PoliticalGroupTotalVotes, len(groups))
	for i, pg := range groups {
		out[i] = domain.PoliticalGroupTotalVotes{Number: pg.Number}
	}
	return out
}

func emptyGroupVotes(groups []domain.PoliticalGroup) []domain.PoliticalGroupCandidateVotes {
	out := make([]domain.PoliticalGroupCandidateVotes, 0, len(groups))
	for _, pg := range groups {
		cv := make([]domain.CandidateVotes, 0, len(pg.Candidates))
		for _, c := range pg.Candidates {
			cv = append(cv, domain.CandidateVotes{Number: c.Number})
		}
		out = append(out, domain.PoliticalGroupCandidateVotes{Number: pg.Number, CandidateVotes: cv})
	}
	return out
}

// ListVotes converts a Summary plus the election's candidate lists into
// the per-list shape apportionment and nomination need, so a caller can
// pipe Aggregate's output straight into seat assignment.
func (s Summary) ListVotes(election domain.Election) []ListVotesInput {
	out := make([]ListVotesInput, len(s.PoliticalGroupVotes))
	for i, pgv := range s.PoliticalGroupVotes {
		group, _ := election.PoliticalGroup(pgv.Number)
		out[i] = ListVotesInput{
			ListNumber:         pgv.Number,
			Votes:              pgv.Total,
			NumberOfCandidates: len(group.Candidates),
			CandidateVotes:     pgv.CandidateVotes,
		}
	}
	return out
}

// ListVotesInput carries one list's aggregated votes in the shape both
// the apportionment and nomination packages need: the total used for
// apportionment, and the per-candidate breakdown used for nomination.
type ListVotesInput struct {
	ListNumber         domain.PoliticalGroupNumber
	Votes              domain.Count
	NumberOfCandidates int
	CandidateVotes     []domain.CandidateVotes
}
