package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pricefetch-service/internal/logger"
	"pricefetch-service/internal/metrics"
	"pricefetch-service/internal/model"
)

// PriceStore is the persistent gateway for price_points rows. It is the only
// component that writes to the table; the unique timestamp constraint is the
// sole resolver of concurrent duplicate writes.
type PriceStore struct {
	pool *pgxpool.Pool
}

// NewPriceStore creates a new price store backed by the given pool
func NewPriceStore(pool *pgxpool.Pool) *PriceStore {
	return &PriceStore{pool: pool}
}

// InsertPoint commits a single price point and returns the stored row,
// including the generated id and created_at. Constraint violations on this
// path are surfaced, not swallowed.
func (s *PriceStore) InsertPoint(ctx context.Context, timestampMs int64, price float64) (*model.PricePoint, error) {
	start := time.Now()

	row := s.pool.QueryRow(ctx,
		`INSERT INTO price_points (timestamp, price)
		 VALUES ($1, $2)
		 RETURNING id, timestamp, price, created_at`,
		timestampMs, price,
	)

	point, err := scanPricePoint(row)
	s.record(ctx, "insert_point", 1, start, err)
	if err != nil {
		return nil, fmt.Errorf("insert price point: %w", err)
	}
	return point, nil
}

// InsertBatch commits a set of price points in one transaction. Rows whose
// timestamp already exists are silently skipped; everything else commits or
// the whole batch rolls back. Returns the number of rows actually inserted.
// Empty input returns without touching the database.
func (s *PriceStore) InsertBatch(ctx context.Context, points []model.PricePoint) (int64, error) {
	if len(points) == 0 {
		return 0, nil
	}

	start := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		s.record(ctx, "insert_batch", 0, start, err)
		return 0, fmt.Errorf("begin batch insert: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(
			`INSERT INTO price_points (timestamp, price)
			 VALUES ($1, $2)
			 ON CONFLICT (timestamp) DO NOTHING`,
			p.Timestamp, p.Price,
		)
	}

	br := tx.SendBatch(ctx, batch)

	var inserted int64
	for range points {
		tag, execErr := br.Exec()
		if execErr != nil {
			br.Close()
			s.record(ctx, "insert_batch", inserted, start, execErr)
			return 0, fmt.Errorf("batch insert price points: %w", execErr)
		}
		inserted += tag.RowsAffected()
	}

	if err := br.Close(); err != nil {
		s.record(ctx, "insert_batch", inserted, start, err)
		return 0, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.record(ctx, "insert_batch", inserted, start, err)
		return 0, fmt.Errorf("commit batch insert: %w", err)
	}

	s.record(ctx, "insert_batch", inserted, start, nil)
	return inserted, nil
}

// QueryRange returns all rows with timestamp in [fromMs, toMs] inclusive,
// ordered newest first. The descending order is a contract the response
// shape depends on.
func (s *PriceStore) QueryRange(ctx context.Context, fromMs, toMs int64) ([]model.PricePoint, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx,
		`SELECT id, timestamp, price, created_at
		 FROM price_points
		 WHERE timestamp BETWEEN $1 AND $2
		 ORDER BY timestamp DESC`,
		fromMs, toMs,
	)
	if err != nil {
		s.record(ctx, "query_range", 0, start, err)
		return nil, fmt.Errorf("query price range: %w", err)
	}
	defer rows.Close()

	points, err := collectPricePoints(rows)
	s.record(ctx, "query_range", int64(len(points)), start, err)
	if err != nil {
		return nil, fmt.Errorf("query price range: %w", err)
	}
	return points, nil
}

func (s *PriceStore) record(ctx context.Context, operation string, rows int64, start time.Time, err error) {
	duration := time.Since(start)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordStoreOperation(operation, status, duration)
	logger.LogStoreOperation(ctx, operation, rows, duration, err)
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

func scanPricePoint(row scannable) (*model.PricePoint, error) {
	var p model.PricePoint
	if err := row.Scan(&p.ID, &p.Timestamp, &p.Price, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPricePoints(rows pgx.Rows) ([]model.PricePoint, error) {
	var out []model.PricePoint
	for rows.Next() {
		var p model.PricePoint
		if err := rows.Scan(&p.ID, &p.Timestamp, &p.Price, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
