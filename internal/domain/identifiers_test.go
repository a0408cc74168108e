package domain

import (
	"encoding/json"
	"testing"
)

func TestElectionID_JSONRoundTrip(t *testing.T) {
	id := NewElectionID()
	data, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got ElectionID
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != id {
		t.Errorf("got %v, want %v", got, id)
	}
}

func TestParseElectionID_RoundTripsString(t *testing.T) {
	id := NewElectionID()
	parsed, err := ParseElectionID(id.String())
	if err != nil {
		t.Fatalf("ParseElectionID: %v", err)
	}
	if parsed != id {
		t.Errorf("parsed %v, want %v", parsed, id)
	}
}

func TestParsePollingStationID_RejectsGarbage(t *testing.T) {
	if _, err := ParsePollingStationID("not-a-uuid"); err == nil {
		t.Error("want error for malformed id")
	}
}
