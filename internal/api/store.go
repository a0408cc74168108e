package api

import (
	"context"

	"github.com/rawblock/kieswet-engine/internal/domain"
	"github.com/rawblock/kieswet-engine/internal/store"
)

// Store is everything APIHandler needs from persistence. It's the same
// method set *store.PostgresStore exposes, narrowed to an interface so
// handler tests can run against a hand-written in-memory fake instead of
// a live Postgres instance.
type Store interface {
	SaveElection(ctx context.Context, election domain.Election) error
	LoadElection(ctx context.Context, electionID domain.ElectionID) (domain.Election, bool, error)

	SaveEntryStatus(ctx context.Context, electionID domain.ElectionID, stationID domain.PollingStationID, status domain.DataEntryStatus, result *domain.PollingStationResults) error
	LoadEntryStatus(ctx context.Context, electionID domain.ElectionID, stationID domain.PollingStationID) (domain.DataEntryStatus, bool, error)

	ListDefinitiveResults(ctx context.Context, electionID domain.ElectionID) ([]domain.PollingStationResults, error)
	ListStationStatuses(ctx context.Context, electionID domain.ElectionID) ([]store.StationStatus, error)

	SaveApportionmentResult(ctx context.Context, electionID domain.ElectionID, record store.ApportionmentRecord) error
	LoadApportionmentResult(ctx context.Context, electionID domain.ElectionID) (store.ApportionmentRecord, bool, error)
}
