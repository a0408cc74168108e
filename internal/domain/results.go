package domain

// VotersCounts records how many voters were admitted, part of a polling
// station's results ("1. Aantal toegelaten kiezers").
type VotersCounts struct {
	PollCardCount            Count `json:"pollCardCount"`
	ProxyCertificateCount    Count `json:"proxyCertificateCount"`
	TotalAdmittedVotersCount Count `json:"totalAdmittedVotersCount"`
}

// Add accumulates other into c, used by the reporting adaptor (§4.6).
func (c *VotersCounts) Add(other VotersCounts) {
	c.PollCardCount += other.PollCardCount
	c.ProxyCertificateCount += other.ProxyCertificateCount
	c.TotalAdmittedVotersCount += other.TotalAdmittedVotersCount
}

// CandidateVotes is the vote tally for a single candidate.
type CandidateVotes struct {
	Number CandidateNumber `json:"number"`
	Votes  Count           `json:"votes"`
}

// PoliticalGroupCandidateVotes is one list's per-candidate votes plus the
// list's own total ("5. Aantal stemmen per lijst en kandidaat").
type PoliticalGroupCandidateVotes struct {
	Number         PoliticalGroupNumber `json:"number"`
	Total          Count                `json:"total"`
	CandidateVotes []CandidateVotes     `json:"candidateVotes"`
}

// PoliticalGroupTotalVotes is one list's vote total without the
// per-candidate breakdown, as carried inside VotesCounts.
type PoliticalGroupTotalVotes struct {
	Number PoliticalGroupNumber `json:"number"`
	Total  Count                `json:"total"`
}

// VotesCounts records how many ballots were cast, part of a polling
// station's results ("2. Aantal getelde stembiljetten").
type VotesCounts struct {
	PoliticalGroupTotalVotes  []PoliticalGroupTotalVotes `json:"politicalGroupTotalVotes"`
	TotalVotesCandidatesCount Count                      `json:"totalVotesCandidatesCount"`
	BlankVotesCount           Count                      `json:"blankVotesCount"`
	InvalidVotesCount         Count                      `json:"invalidVotesCount"`
	TotalVotesCastCount       Count                      `json:"totalVotesCastCount"`
}

// DifferenceCountsCompareVotesCastAdmittedVoters is the three-way
// exactly-one-true comparison between admitted voters and votes cast
// (B1-3.3.1).
type DifferenceCountsCompareVotesCastAdmittedVoters struct {
	AdmittedVotersEqualVotesCast       bool `json:"admittedVotersEqualVotesCast"`
	VotesCastGreaterThanAdmittedVoters bool `json:"votesCastGreaterThanAdmittedVoters"`
	VotesCastSmallerThanAdmittedVoters bool `json:"votesCastSmallerThanAdmittedVoters"`
}

// DifferencesCounts records the reconciliation between admitted voters
// and votes cast (B1-3.3).
type DifferencesCounts struct {
	CompareVotesCastAdmittedVoters   DifferenceCountsCompareVotesCastAdmittedVoters `json:"compareVotesCastAdmittedVoters"`
	MoreBallotsCount                 Count                                         `json:"moreBallotsCount"`
	FewerBallotsCount                Count                                         `json:"fewerBallotsCount"`
	DifferenceCompletelyAccountedFor YesNo                                         `json:"differenceCompletelyAccountedFor"`
}

// ExtraInvestigation records the B1-1 questions, present only on
// first-session results.
type ExtraInvestigation struct {
	ExtraInvestigationOtherReason      YesNo `json:"extraInvestigationOtherReason"`
	BallotsRecountedExtraInvestigation YesNo `json:"ballotsRecountedExtraInvestigation"`
}

// CountingDifferencesPollingStation records the B1-2 questions, present
// only on first-session results.
type CountingDifferencesPollingStation struct {
	UnexplainedDifferenceBallotsVoters YesNo `json:"unexplainedDifferenceBallotsVoters"`
	DifferenceBallotsPerList           YesNo `json:"differenceBallotsPerList"`
}

// CommonPollingStationResults holds the fields shared by both result
// variants.
type CommonPollingStationResults struct {
	VotersCounts        VotersCounts                   `json:"votersCounts"`
	VotesCounts         VotesCounts                    `json:"votesCounts"`
	DifferencesCounts   DifferencesCounts              `json:"differencesCounts"`
	PoliticalGroupVotes []PoliticalGroupCandidateVotes `json:"politicalGroupVotes"`
}

// FirstSessionResults is the full first-session model ("Model Na 31-2
// Bijlage 2"): the common fields plus the extra-investigation and
// counting-differences blocks that only apply to a polling station's own
// count.
type FirstSessionResults struct {
	ExtraInvestigation                ExtraInvestigation                `json:"extraInvestigation"`
	CountingDifferencesPollingStation CountingDifferencesPollingStation `json:"countingDifferencesPollingStation"`
	VotersCounts                      VotersCounts                      `json:"votersCounts"`
	VotesCounts                       VotesCounts                       `json:"votesCounts"`
	DifferencesCounts                 DifferencesCounts                 `json:"differencesCounts"`
	PoliticalGroupVotes               []PoliticalGroupCandidateVotes    `json:"politicalGroupVotes"`
}

// AdmittedVotersHaveBeenRecounted reports whether the entry's own markers
// indicate the admitted-voter count was recounted during this session:
// either of the B1-2 unexplained-difference markers is "yes", or the
// B1-3.3.2 explained marker is "no".
func (r FirstSessionResults) AdmittedVotersHaveBeenRecounted() bool {
	if v, ok := r.CountingDifferencesPollingStation.UnexplainedDifferenceBallotsVoters.AsBool(); ok && v {
		return true
	}
	if v, ok := r.CountingDifferencesPollingStation.DifferenceBallotsPerList.AsBool(); ok && v {
		return true
	}
	if v, ok := r.DifferencesCounts.DifferenceCompletelyAccountedFor.AsBool(); ok && !v {
		return true
	}
	return false
}

// Common projects r onto the fields shared with NextSessionResults.
func (r FirstSessionResults) Common() CommonPollingStationResults {
	return CommonPollingStationResults{
		VotersCounts:        r.VotersCounts,
		VotesCounts:         r.VotesCounts,
		DifferencesCounts:   r.DifferencesCounts,
		PoliticalGroupVotes: r.PoliticalGroupVotes,
	}
}

// NextSessionResults is the corrigendum model ("Model Na 14-2 Bijlage
// 1"): the common fields only, used when a result is re-entered in a
// later counting session without repeating the investigation questions.
type NextSessionResults struct {
	VotersCounts        VotersCounts                   `json:"votersCounts"`
	VotesCounts         VotesCounts                    `json:"votesCounts"`
	DifferencesCounts   DifferencesCounts              `json:"differencesCounts"`
	PoliticalGroupVotes []PoliticalGroupCandidateVotes `json:"politicalGroupVotes"`
}

// Common projects r onto the fields shared with FirstSessionResults.
func (r NextSessionResults) Common() CommonPollingStationResults {
	return CommonPollingStationResults{
		VotersCounts:        r.VotersCounts,
		VotesCounts:         r.VotesCounts,
		DifferencesCounts:   r.DifferencesCounts,
		PoliticalGroupVotes: r.PoliticalGroupVotes,
	}
}

// PollingStationResults is the tagged variant carried through the
// data-entry workflow: either a FirstSession or a NextSession result.
// Exactly one of the two pointer fields is non-nil.
type PollingStationResults struct {
	FirstSession *FirstSessionResults `json:"firstSession,omitempty"`
	NextSession  *NextSessionResults  `json:"nextSession,omitempty"`
}

// NewFirstSessionResults wraps r as a PollingStationResults.
func NewFirstSessionResults(r FirstSessionResults) PollingStationResults {
	return PollingStationResults{FirstSession: &r}
}

// NewNextSessionResults wraps r as a PollingStationResults.
func NewNextSessionResults(r NextSessionResults) PollingStationResults {
	return PollingStationResults{NextSession: &r}
}

// IsSameModel reports whether p and other are the same tagged variant
// (both first-session or both next-session), without comparing contents.
// The data-entry state machine uses this to stop a first and second entry
// from mixing models.
func (p PollingStationResults) IsSameModel(other PollingStationResults) bool {
	return (p.FirstSession != nil) == (other.FirstSession != nil)
}

// Common projects whichever variant is set onto the shared fields.
func (p PollingStationResults) Common() CommonPollingStationResults {
	if p.FirstSession != nil {
		return p.FirstSession.Common()
	}
	return p.NextSession.Common()
}

// EmptyFirstSessionResults builds a zero-valued first-session result
// shaped for the given groups, with one zero CandidateVotes entry per
// candidate and one zero PoliticalGroupTotalVotes per group.
func EmptyFirstSessionResults(groups []PoliticalGroup) FirstSessionResults {
	totals := make([]PoliticalGroupTotalVotes, 0, len(groups))
	for _, pg := range groups {
		totals = append(totals, PoliticalGroupTotalVotes{Number: pg.Number})
	}
	return FirstSessionResults{
		VotesCounts:         VotesCounts{PoliticalGroupTotalVotes: totals},
		PoliticalGroupVotes: emptyPoliticalGroupVotes(groups),
	}
}

// EmptyNextSessionResults builds a zero-valued next-session result shaped
// for the given groups.
func EmptyNextSessionResults(groups []PoliticalGroup) NextSessionResults {
	return NextSessionResults{
		PoliticalGroupVotes: emptyPoliticalGroupVotes(groups),
	}
}

func emptyPoliticalGroupVotes(groups []PoliticalGroup) []PoliticalGroupCandidateVotes {
	out := make([]PoliticalGroupCandidateVotes, 0, len(groups))
	for _, pg := range groups {
		cv := make([]CandidateVotes, 0, len(pg.Candidates))
		for _, c := range pg.Candidates {
			cv = append(cv, CandidateVotes{Number: c.Number})
		}
		out = append(out, PoliticalGroupCandidateVotes{Number: pg.Number, CandidateVotes: cv})
	}
	return out
}
