package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storepulse/backend/internal/models"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// InsertInsights stores one collection cycle's batch. Records are keyed by
// (store_id, collection_date); re-importing a cycle replaces it.
func (s *Store) InsertInsights(ctx context.Context, insights []models.StoreInsight) (int64, error) {
	rows := make([][]any, 0, len(insights))
	for _, in := range insights {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("marshal insight %s: %w", in.StoreID, err)
		}
		rows = append(rows, []any{in.StoreID, in.CollectionDate, in.Rating, in.ReviewCount, payload})
	}

	var copied int64
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		dates := map[string]bool{}
		for _, in := range insights {
			if !dates[in.CollectionDate] {
				dates[in.CollectionDate] = true
				if _, err := tx.Exec(ctx, `DELETE FROM store_insights WHERE collection_date = $1`, in.CollectionDate); err != nil {
					return err
				}
			}
		}
		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"store_insights"},
			[]string{"store_id", "collection_date", "rating", "review_count", "payload"},
			pgx.CopyFromRows(rows))
		copied = n
		return err
	})
	return copied, err
}

func (s *Store) GetInsightsByDate(ctx context.Context, date string) ([]models.StoreInsight, error) {
	rows, err := s.Pool.Query(ctx, `SELECT payload FROM store_insights WHERE collection_date = $1 ORDER BY store_id`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInsights(rows)
}

// LatestInsightDates returns the most recent distinct collection dates, newest
// first. The first is the current cycle, the second the baseline cycle.
func (s *Store) LatestInsightDates(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT DISTINCT collection_date FROM store_insights ORDER BY collection_date DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (s *Store) SaveSnapshot(ctx context.Context, snap models.ExecutiveSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO snapshots (snapshot_date, payload, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (snapshot_date) DO UPDATE SET payload = EXCLUDED.payload, created_at = EXCLUDED.created_at`,
		snap.SnapshotDate, payload, time.Now().UTC())
	return err
}

func (s *Store) GetSnapshotByDate(ctx context.Context, date string) (models.ExecutiveSnapshot, error) {
	return s.scanSnapshot(s.Pool.QueryRow(ctx, `SELECT payload FROM snapshots WHERE snapshot_date = $1`, date))
}

func (s *Store) GetLatestSnapshot(ctx context.Context) (models.ExecutiveSnapshot, error) {
	return s.scanSnapshot(s.Pool.QueryRow(ctx, `SELECT payload FROM snapshots ORDER BY snapshot_date DESC LIMIT 1`))
}

func (s *Store) scanSnapshot(row pgx.Row) (models.ExecutiveSnapshot, error) {
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ExecutiveSnapshot{}, ErrNotFound
		}
		return models.ExecutiveSnapshot{}, err
	}
	var snap models.ExecutiveSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return models.ExecutiveSnapshot{}, err
	}
	return snap, nil
}

func (s *Store) CreateRun(ctx context.Context, status string) (string, error) {
	var id string
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO runs (started_at, status) VALUES ($1, $2) RETURNING id`,
		time.Now().UTC(), status).Scan(&id)
	return id, err
}

func (s *Store) FinishRun(ctx context.Context, id string, status string, summary []byte) error {
	_, err := s.Pool.Exec(ctx,
		`UPDATE runs SET finished_at = $1, status = $2, summary = $3 WHERE id = $4`,
		time.Now().UTC(), status, summary, id)
	return err
}

func (s *Store) GetLatestRun(ctx context.Context) (models.Run, error) {
	var r models.Run
	var finished *time.Time
	err := s.Pool.QueryRow(ctx,
		`SELECT id, started_at, finished_at, status, COALESCE(summary, '{}') FROM runs ORDER BY started_at DESC LIMIT 1`).
		Scan(&r.ID, &r.StartedAt, &finished, &r.Status, &r.Summary)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Run{}, ErrNotFound
	}
	if err != nil {
		return models.Run{}, err
	}
	if finished != nil {
		r.FinishedAt = *finished
	}
	return r, nil
}

func scanInsights(rows pgx.Rows) ([]models.StoreInsight, error) {
	var out []models.StoreInsight
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var in models.StoreInsight
		if err := json.Unmarshal(payload, &in); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}
