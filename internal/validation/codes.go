// Package validation implements the cross-field invariant checks (§4.2)
// over a single polling station result, plus structural comparison of two
// results for the second-entry conflict check the data-entry state
// machine relies on.
package validation

// Code is a stable validation diagnostic identifier. F-series codes are
// blocking errors; W-series codes are accept-with-warning.
type Code string

const (
	F101 Code = "F101" // extra_investigation: both questions answered, or neither
	F102 Code = "F102" // extra_investigation: no contradictory yes-and-no answer
	F111 Code = "F111" // counting_differences_polling_station: both questions answered
	F112 Code = "F112" // counting_differences_polling_station: no contradictory answer

	F201 Code = "F201" // poll_card + proxy_certificate = total_admitted_voters
	F202 Code = "F202" // sum of per-list totals = total_votes_candidates
	F203 Code = "F203" // total_votes_candidates + blank + invalid = total_cast

	F301 Code = "F301" // compare.equal checked but voters != votes
	F302 Code = "F302" // compare.greater checked but votes <= voters
	F303 Code = "F303" // compare.smaller checked but votes >= voters
	F304 Code = "F304" // compare triple does not have exactly one selection
	F305 Code = "F305" // voters == votes but more/fewer ballots is non-zero
	F306 Code = "F306" // votes > voters but more_ballots != the actual difference
	F307 Code = "F307" // votes > voters but fewer_ballots != 0
	F308 Code = "F308" // votes < voters but fewer_ballots != the actual difference
	F309 Code = "F309" // votes < voters but more_ballots != 0
	F310 Code = "F310" // difference_explained not exactly-one when a difference exists

	F401 Code = "F401" // list total != sum of its candidate votes
	F402 Code = "F402" // list total is zero despite non-zero candidate votes

	W201 Code = "W201" // blank votes > 3% of total cast
	W202 Code = "W202" // invalid votes > 3% of total cast
	W203 Code = "W203" // |voters - votes| >= 2% or >= 15 absolute
	W205 Code = "W205" // total cast is zero
	W301 Code = "W301" // more_ballots entered without an unexplained-difference marker
	W302 Code = "W302" // fewer_ballots entered without an unexplained-difference marker

	// W001 is never emitted by Validate itself — it is attached by the
	// data-entry state machine when a second entry's Compare against the
	// first turns up differing field paths.
	W001 Code = "W001"
)
