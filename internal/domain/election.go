package domain

// Candidate is one name on a political group's list.
type Candidate struct {
	Number CandidateNumber `json:"number"`
}

// PoliticalGroup is one list on the ballot: its identity is its list
// number, and its candidates are ordered by ballot position.
type PoliticalGroup struct {
	Number     PoliticalGroupNumber `json:"number"`
	Candidates []Candidate          `json:"candidates"`
}

// Election is the aggregate that the apportionment and reporting
// operations are parameterized over. It is supplementary scaffolding:
// the distilled model left "election" implicit, but a seat-assignment
// run has to know the seat count and the ordered list of groups.
type Election struct {
	ID              ElectionID       `json:"id"`
	NumberOfSeats   int              `json:"numberOfSeats"`
	NumberOfVoters  int              `json:"numberOfVoters"`
	PoliticalGroups []PoliticalGroup `json:"politicalGroups"`
}

// IsLargeCouncil reports whether this election's council has 19 or more
// seats, which switches several apportionment and nomination rules.
func (e Election) IsLargeCouncil() bool {
	return e.NumberOfSeats >= 19
}

// PoliticalGroup looks up a group by number, returning false if absent.
func (e Election) PoliticalGroup(number PoliticalGroupNumber) (PoliticalGroup, bool) {
	for _, pg := range e.PoliticalGroups {
		if pg.Number == number {
			return pg, true
		}
	}
	return PoliticalGroup{}, false
}
