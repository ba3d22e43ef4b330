package storage

import (
	"context"

	"github.com/md-rashed-zaman/apptslots/libs/db"
	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/availability"
)

// PostgresSource reads the provider's data from two tables:
//
//	events(begin_at bigint, end_at bigint, created_at bigint, updated_at bigint)
//	workhours(weekday smallint, is_day_off boolean, open_interval bigint, close_interval bigint)
type PostgresSource struct {
	pool *db.Pool
}

func NewPostgresSource(pool *db.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

func (s *PostgresSource) LoadEvents(ctx context.Context) ([]availability.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT begin_at, end_at, created_at, updated_at
		FROM events
		ORDER BY begin_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []availability.Event
	for rows.Next() {
		var e availability.Event
		if err := rows.Scan(&e.BeginAt, &e.EndAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (s *PostgresSource) LoadWorkhours(ctx context.Context) ([]availability.WorkhourRule, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT weekday, is_day_off, open_interval, close_interval
		FROM workhours
		ORDER BY weekday
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []availability.WorkhourRule
	for rows.Next() {
		var r availability.WorkhourRule
		if err := rows.Scan(&r.Weekday, &r.IsDayOff, &r.OpenInterval, &r.CloseInterval); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
