// Package store persists polling station data-entry status and the seat
// apportionment audit trail to Postgres. The core packages never touch
// this: a caller loads a domain.DataEntryStatus, runs it through
// internal/dataentry's transitions, and hands the result back here to
// persist.
package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rawblock/kieswet-engine/internal/apportionment"
	"github.com/rawblock/kieswet-engine/internal/domain"
	"github.com/rawblock/kieswet-engine/internal/nomination"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore is the pgx/v5 pgxpool-backed persistence layer for
// polling station entries and seat change audit steps.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect opens the connection pool to Postgres and verifies it with a
// ping before returning.
func Connect(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping failed: %v", err)
	}

	log.Println("Successfully connected to PostgreSQL for kieswet-engine")
	return &PostgresStore{pool: pool}, nil
}

// Close gracefully closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema creates the tables this store needs if they don't already
// exist.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema migrations: %v", err)
	}
	log.Println("kieswet-engine schema initialized")
	return nil
}

// SaveEntryStatus upserts a polling station's current DataEntryStatus,
// keyed on the (election, station) pair. When result is non-nil (the
// transition that reached status was FinaliseSecond landing on
// Definitive), the agreed result is upserted into the same transaction
// so a station's final figures are never recorded without their
// Definitive status, or vice versa.
func (s *PostgresStore) SaveEntryStatus(ctx context.Context, electionID domain.ElectionID, stationID domain.PollingStationID, status domain.DataEntryStatus, result *domain.PollingStationResults) error {
	statusJSON, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal data entry status: %v", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	statusSQL := `
		INSERT INTO polling_station_entries (election_id, station_id, status_kind, status_json)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (election_id, station_id) DO UPDATE
		SET status_kind = EXCLUDED.status_kind, status_json = EXCLUDED.status_json, updated_at = NOW();
	`
	if _, err := tx.Exec(ctx, statusSQL, electionID, stationID, string(status.Kind), statusJSON); err != nil {
		return fmt.Errorf("failed to upsert polling station entry: %v", err)
	}

	if result != nil {
		resultJSON, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal definitive result: %v", err)
		}
		resultSQL := `
			INSERT INTO definitive_results (election_id, station_id, result_json)
			VALUES ($1, $2, $3)
			ON CONFLICT (election_id, station_id) DO UPDATE
			SET result_json = EXCLUDED.result_json;
		`
		if _, err := tx.Exec(ctx, resultSQL, electionID, stationID, resultJSON); err != nil {
			return fmt.Errorf("failed to upsert definitive result: %v", err)
		}
	}

	return tx.Commit(ctx)
}

// LoadEntryStatus fetches a polling station's current DataEntryStatus.
// found is false when no row exists yet, meaning the caller should treat
// the station as NotStartedDataEntryStatus.
func (s *PostgresStore) LoadEntryStatus(ctx context.Context, electionID domain.ElectionID, stationID domain.PollingStationID) (status domain.DataEntryStatus, found bool, err error) {
	var statusJSON []byte
	sql := `SELECT status_json FROM polling_station_entries WHERE election_id = $1 AND station_id = $2;`
	row := s.pool.QueryRow(ctx, sql, electionID, stationID)
	if err := row.Scan(&statusJSON); err != nil {
		if err.Error() == "no rows in result set" {
			return domain.NotStartedDataEntryStatus(), false, nil
		}
		return domain.DataEntryStatus{}, false, fmt.Errorf("failed to load polling station entry: %v", err)
	}
	if err := json.Unmarshal(statusJSON, &status); err != nil {
		return domain.DataEntryStatus{}, false, fmt.Errorf("failed to unmarshal data entry status: %v", err)
	}
	return status, true, nil
}

// StationStatus pairs a polling station with its current DataEntryStatus,
// for the per-election status summary endpoint.
type StationStatus struct {
	StationID domain.PollingStationID
	Status    domain.DataEntryStatus
}

// ListStationStatuses returns the current status of every polling
// station that has at least started data entry within an election.
func (s *PostgresStore) ListStationStatuses(ctx context.Context, electionID domain.ElectionID) ([]StationStatus, error) {
	sql := `SELECT station_id, status_json FROM polling_station_entries WHERE election_id = $1;`
	rows, err := s.pool.Query(ctx, sql, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list station statuses: %v", err)
	}
	defer rows.Close()

	var out []StationStatus
	for rows.Next() {
		var stationID domain.PollingStationID
		var statusJSON []byte
		if err := rows.Scan(&stationID, &statusJSON); err != nil {
			return nil, fmt.Errorf("failed to scan station status: %v", err)
		}
		var status domain.DataEntryStatus
		if err := json.Unmarshal(statusJSON, &status); err != nil {
			return nil, fmt.Errorf("failed to unmarshal station status: %v", err)
		}
		out = append(out, StationStatus{StationID: stationID, Status: status})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate station statuses: %v", err)
	}
	return out, nil
}

// ListDefinitiveResults returns the agreed PollingStationResults of every
// station in an election that has reached Definitive, for the reporting
// adaptor to aggregate. Order is unspecified; aggregation is commutative.
func (s *PostgresStore) ListDefinitiveResults(ctx context.Context, electionID domain.ElectionID) ([]domain.PollingStationResults, error) {
	sql := `
		SELECT d.result_json FROM definitive_results d
		JOIN polling_station_entries e ON e.election_id = d.election_id AND e.station_id = d.station_id
		WHERE d.election_id = $1 AND e.status_kind = $2;
	`
	rows, err := s.pool.Query(ctx, sql, electionID, string(domain.KindDefinitive))
	if err != nil {
		return nil, fmt.Errorf("failed to list definitive results: %v", err)
	}
	defer rows.Close()

	var out []domain.PollingStationResults
	for rows.Next() {
		var resultJSON []byte
		if err := rows.Scan(&resultJSON); err != nil {
			return nil, fmt.Errorf("failed to scan definitive result: %v", err)
		}
		var result domain.PollingStationResults
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal definitive result: %v", err)
		}
		out = append(out, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate definitive results: %v", err)
	}
	return out, nil
}

// SaveSeatChangeSteps appends an apportionment run's audit trail for an
// election, one row per step, inside a single transaction, mirroring the
// batch-insert-then-commit shape used elsewhere for append-only audit
// data.
func (s *PostgresStore) SaveSeatChangeSteps(ctx context.Context, electionID domain.ElectionID, steps []domain.SeatChangeStep) error {
	if len(steps) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sql := `
		INSERT INTO seat_change_steps (election_id, ordinal, step_json)
		VALUES ($1, $2, $3);
	`
	for i, step := range steps {
		stepJSON, err := json.Marshal(step)
		if err != nil {
			return fmt.Errorf("failed to marshal seat change step %d: %v", i, err)
		}
		if _, err := tx.Exec(ctx, sql, electionID, i, stepJSON); err != nil {
			return fmt.Errorf("failed to insert seat change step %d: %v", i, err)
		}
	}

	return tx.Commit(ctx)
}

// ApportionmentRecord is the full persisted outcome of one apportion+
// nominate run for an election, replayed verbatim by GET apportionment so
// repeated requests don't recompute it.
type ApportionmentRecord struct {
	Apportionment apportionment.Result
	Nomination    nomination.Result
}

// SaveApportionmentResult upserts the latest apportionment+nomination
// outcome for an election, and separately appends the run's step audit
// trail as append-only rows (see SaveSeatChangeSteps), inside one
// transaction so the two never disagree about which run is "current".
func (s *PostgresStore) SaveApportionmentResult(ctx context.Context, electionID domain.ElectionID, record ApportionmentRecord) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal apportionment record: %v", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	upsertSQL := `
		INSERT INTO apportionment_results (election_id, result_json)
		VALUES ($1, $2)
		ON CONFLICT (election_id) DO UPDATE
		SET result_json = EXCLUDED.result_json, computed_at = NOW();
	`
	if _, err := tx.Exec(ctx, upsertSQL, electionID, recordJSON); err != nil {
		return fmt.Errorf("failed to upsert apportionment result: %v", err)
	}

	if len(record.Apportionment.Steps) > 0 {
		insertStepSQL := `
			INSERT INTO seat_change_steps (election_id, ordinal, step_json)
			VALUES ($1, $2, $3);
		`
		for i, step := range record.Apportionment.Steps {
			stepJSON, err := json.Marshal(step)
			if err != nil {
				return fmt.Errorf("failed to marshal seat change step %d: %v", i, err)
			}
			if _, err := tx.Exec(ctx, insertStepSQL, electionID, i, stepJSON); err != nil {
				return fmt.Errorf("failed to insert seat change step %d: %v", i, err)
			}
		}
	}

	return tx.Commit(ctx)
}

// LoadApportionmentResult fetches the most recently saved apportionment
// outcome for an election. found is false when no run has completed yet.
func (s *PostgresStore) LoadApportionmentResult(ctx context.Context, electionID domain.ElectionID) (record ApportionmentRecord, found bool, err error) {
	var recordJSON []byte
	sql := `SELECT result_json FROM apportionment_results WHERE election_id = $1;`
	row := s.pool.QueryRow(ctx, sql, electionID)
	if err := row.Scan(&recordJSON); err != nil {
		if err.Error() == "no rows in result set" {
			return ApportionmentRecord{}, false, nil
		}
		return ApportionmentRecord{}, false, fmt.Errorf("failed to load apportionment result: %v", err)
	}
	if err := json.Unmarshal(recordJSON, &record); err != nil {
		return ApportionmentRecord{}, false, fmt.Errorf("failed to unmarshal apportionment result: %v", err)
	}
	return record, true, nil
}

// SaveElection upserts an election's definition: seat count, voter count,
// and its ordered political groups.
func (s *PostgresStore) SaveElection(ctx context.Context, election domain.Election) error {
	groupsJSON, err := json.Marshal(election.PoliticalGroups)
	if err != nil {
		return fmt.Errorf("failed to marshal political groups: %v", err)
	}
	sql := `
		INSERT INTO elections (id, number_of_seats, number_of_voters, political_groups_json)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET number_of_seats = EXCLUDED.number_of_seats, number_of_voters = EXCLUDED.number_of_voters,
			political_groups_json = EXCLUDED.political_groups_json;
	`
	if _, err := s.pool.Exec(ctx, sql, election.ID, election.NumberOfSeats, election.NumberOfVoters, groupsJSON); err != nil {
		return fmt.Errorf("failed to upsert election: %v", err)
	}
	return nil
}

// LoadElection fetches an election's definition. found is false when no
// election with this id has been registered.
func (s *PostgresStore) LoadElection(ctx context.Context, electionID domain.ElectionID) (election domain.Election, found bool, err error) {
	var groupsJSON []byte
	sql := `SELECT number_of_seats, number_of_voters, political_groups_json FROM elections WHERE id = $1;`
	row := s.pool.QueryRow(ctx, sql, electionID)
	if err := row.Scan(&election.NumberOfSeats, &election.NumberOfVoters, &groupsJSON); err != nil {
		if err.Error() == "no rows in result set" {
			return domain.Election{}, false, nil
		}
		return domain.Election{}, false, fmt.Errorf("failed to load election: %v", err)
	}
	if err := json.Unmarshal(groupsJSON, &election.PoliticalGroups); err != nil {
		return domain.Election{}, false, fmt.Errorf("failed to unmarshal political groups: %v", err)
	}
	election.ID = electionID
	return election, true, nil
}

// GetPool exposes the underlying pool for callers (health checks,
// integration tests against a real database) that need it directly.
func (s *PostgresStore) GetPool() *pgxpool.Pool {
	return s.pool
}
