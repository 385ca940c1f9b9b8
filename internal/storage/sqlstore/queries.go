package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/liftops/lift-telemetry-service/internal/domain/model"
	"github.com/liftops/lift-telemetry-service/internal/storage"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SeedEventTypes inserts each missing catalog name. ON CONFLICT DO NOTHING is
// understood by both drivers and keeps the seed idempotent under races.
func (s *Store) SeedEventTypes(ctx context.Context, names []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	q := s.rebind(`INSERT INTO event_types (name) VALUES (?) ON CONFLICT (name) DO NOTHING`)
	for _, name := range names {
		if _, err := tx.ExecContext(ctx, q, name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("seed event type %q: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

// AppendEvent resolves the catalog row and writes the event inside one
// transaction; any failure rolls the whole write back.
func (s *Store) AppendEvent(ctx context.Context, typeName string, at time.Time, floor *int) (model.Event, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Event{}, fmt.Errorf("begin append: %w", err)
	}

	var typeID int64
	err = tx.QueryRowContext(ctx,
		s.rebind(`SELECT id FROM event_types WHERE name = ?`), typeName,
	).Scan(&typeID)
	if errors.Is(err, sql.ErrNoRows) {
		_ = tx.Rollback()
		return model.Event{}, fmt.Errorf("%w: %q", storage.ErrUnknownEventType, typeName)
	}
	if err != nil {
		_ = tx.Rollback()
		return model.Event{}, fmt.Errorf("resolve event type %q: %w", typeName, err)
	}

	occurred := at.UTC()
	var id int64
	err = tx.QueryRowContext(ctx,
		s.rebind(`INSERT INTO events (event_type_id, occurred_at_us, floor) VALUES (?, ?, ?) RETURNING id`),
		typeID, occurred.UnixMicro(), floor,
	).Scan(&id)
	if err != nil {
		_ = tx.Rollback()
		return model.Event{}, fmt.Errorf("insert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Event{}, fmt.Errorf("commit append: %w", err)
	}
	return model.Event{
		ID:         id,
		TypeID:     typeID,
		TypeName:   typeName,
		OccurredAt: occurred,
		Floor:      floor,
	}, nil
}

func (s *Store) CountByTypes(ctx context.Context, names []string, rng model.Range) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}
	conds, args := typeFilter(names)
	conds, args = rangeFilter(conds, args, rng)
	q := `SELECT COUNT(*) FROM events e JOIN event_types t ON t.id = e.event_type_id WHERE ` +
		strings.Join(conds, " AND ")

	var n int
	if err := s.db.QueryRowContext(ctx, s.rebind(q), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func (s *Store) CountByFloorForTypes(ctx context.Context, names []string, rng model.Range) (map[int]int, error) {
	if len(names) == 0 {
		return map[int]int{}, nil
	}
	conds, args := typeFilter(names)
	conds = append(conds, "e.floor IS NOT NULL")
	conds, args = rangeFilter(conds, args, rng)
	q := `SELECT e.floor, COUNT(*) FROM events e JOIN event_types t ON t.id = e.event_type_id WHERE ` +
		strings.Join(conds, " AND ") + ` GROUP BY e.floor`

	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("count by floor: %w", err)
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var floor, n int
		if err := rows.Scan(&floor, &n); err != nil {
			return nil, fmt.Errorf("scan floor count: %w", err)
		}
		out[floor] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate floor counts: %w", err)
	}
	return out, nil
}

func (s *Store) TimestampsByTypes(ctx context.Context, names []string, rng model.Range) ([]time.Time, error) {
	var (
		conds []string
		args  []any
	)
	q := `SELECT e.occurred_at_us FROM events e`
	if len(names) > 0 {
		q += ` JOIN event_types t ON t.id = e.event_type_id`
		conds, args = typeFilter(names)
	}
	conds, args = rangeFilter(conds, args, rng)
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY e.occurred_at_us ASC`

	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list timestamps: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var us int64
		if err := rows.Scan(&us); err != nil {
			return nil, fmt.Errorf("scan timestamp: %w", err)
		}
		out = append(out, time.UnixMicro(us).UTC())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timestamps: %w", err)
	}
	return out, nil
}

// typeFilter builds the name IN (...) condition with one placeholder per name.
func typeFilter(names []string) ([]string, []any) {
	ps := make([]string, len(names))
	args := make([]any, len(names))
	for i, n := range names {
		ps[i] = "?"
		args[i] = n
	}
	return []string{"t.name IN (" + strings.Join(ps, ", ") + ")"}, args
}

// rangeFilter appends the inclusive time-window conditions.
func rangeFilter(conds []string, args []any, rng model.Range) ([]string, []any) {
	if rng.Start != nil {
		conds = append(conds, "e.occurred_at_us >= ?")
		args = append(args, rng.Start.UTC().UnixMicro())
	}
	if rng.End != nil {
		conds = append(conds, "e.occurred_at_us <= ?")
		args = append(args, rng.End.UTC().UnixMicro())
	}
	return conds, args
}
