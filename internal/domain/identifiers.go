// Package domain holds the shared data model for election results: the
// identifiers, aggregate types, and tagged result variants that every
// other package (validation, dataentry, apportionment, nomination,
// reporting) operates on. It carries no behavior beyond simple accessors;
// the algorithms live in their own packages.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ListNumber identifies a political group's list on the ballot. Dense,
// 1-based, assigned externally.
type ListNumber int

// PoliticalGroupNumber is an alias of ListNumber: a political group's
// identity is its list number.
type PoliticalGroupNumber = ListNumber

// CandidateNumber identifies a candidate's position on a list. Dense,
// 1-based, within the scope of a single list.
type CandidateNumber int

// Count is a non-negative vote or voter tally.
type Count uint32

// ElectionID identifies an election. Minted by the service layer when an
// election is registered; the core treats it as an opaque comparable key.
type ElectionID uuid.UUID

// NewElectionID mints a fresh, random ElectionID.
func NewElectionID() ElectionID { return ElectionID(uuid.New()) }

// ParseElectionID parses s as an ElectionID.
func ParseElectionID(s string) (ElectionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ElectionID{}, fmt.Errorf("invalid election id: %v", err)
	}
	return ElectionID(id), nil
}

func (id ElectionID) String() string { return uuid.UUID(id).String() }

func (id ElectionID) MarshalJSON() ([]byte, error) { return json.Marshal(uuid.UUID(id).String()) }

func (id *ElectionID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return (*uuid.UUID)(id).UnmarshalText([]byte(s))
}

// Value implements database/sql/driver.Valuer so pgx can write an
// ElectionID as a native Postgres uuid.
func (id ElectionID) Value() (driver.Value, error) { return uuid.UUID(id).String(), nil }

// Scan implements database/sql.Scanner so pgx can read a Postgres uuid
// column back into an ElectionID.
func (id *ElectionID) Scan(src any) error { return (*uuid.UUID)(id).Scan(src) }

// PollingStationID identifies a polling station within an election.
type PollingStationID uuid.UUID

// NewPollingStationID mints a fresh, random PollingStationID.
func NewPollingStationID() PollingStationID { return PollingStationID(uuid.New()) }

// ParsePollingStationID parses s as a PollingStationID.
func ParsePollingStationID(s string) (PollingStationID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return PollingStationID{}, fmt.Errorf("invalid polling station id: %v", err)
	}
	return PollingStationID(id), nil
}

func (id PollingStationID) String() string { return uuid.UUID(id).String() }

func (id PollingStationID) MarshalJSON() ([]byte, error) {
	return json.Marshal(uuid.UUID(id).String())
}

func (id *PollingStationID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return (*uuid.UUID)(id).UnmarshalText([]byte(s))
}

// Value implements database/sql/driver.Valuer so pgx can write a
// PollingStationID as a native Postgres uuid.
func (id PollingStationID) Value() (driver.Value, error) { return uuid.UUID(id).String(), nil }

// Scan implements database/sql.Scanner so pgx can read a Postgres uuid
// column back into a PollingStationID.
func (id *PollingStationID) Scan(src any) error { return (*uuid.UUID)(id).Scan(src) }

// UserID identifies the person who claimed or entered data. The core
// never interprets it beyond equality comparison for transition guards.
type UserID int
