package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zayas4k/barberbook/internal/model"
)

// Postgres is the production store. The unique index on (booking_date,
// slot_time) is the authoritative double-booking guard, so concurrent
// inserts for one slot resolve in the database regardless of how many
// barberd replicas run.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the bookings table when it does not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS bookings (
			id UUID PRIMARY KEY,
			customer_name TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			customer_phone TEXT NOT NULL DEFAULT '',
			service_name TEXT NOT NULL,
			duration_minutes INT NOT NULL,
			price NUMERIC(10,2) NOT NULL,
			booking_date TEXT NOT NULL,
			slot_time TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			UNIQUE (booking_date, slot_time)
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure bookings schema: %w", err)
	}
	return nil
}

func (p *Postgres) Booked(ctx context.Context, dateKey string) (map[string]struct{}, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT slot_time FROM bookings WHERE booking_date = $1
	`, dateKey)
	if err != nil {
		return nil, fmt.Errorf("query booked times: %w", err)
	}
	defer rows.Close()

	times := map[string]struct{}{}
	for rows.Next() {
		var hhmm string
		if err := rows.Scan(&hhmm); err != nil {
			return nil, err
		}
		times[hhmm] = struct{}{}
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return times, nil
}

func (p *Postgres) Add(ctx context.Context, b model.Booking) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO bookings
			(id, customer_name, customer_email, customer_phone, service_name,
			duration_minutes, price, booking_date, slot_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, b.ID, b.Name, b.Email, b.Phone, b.Service,
		b.DurationMinutes, b.Price, b.Date, b.Time, b.Created)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlotTaken
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context) ([]model.Booking, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, customer_name, customer_email, customer_phone, service_name,
			duration_minutes, price, booking_date, slot_time, created_at
		FROM bookings
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(
			&b.ID,
			&b.Name,
			&b.Email,
			&b.Phone,
			&b.Service,
			&b.DurationMinutes,
			&b.Price,
			&b.Date,
			&b.Time,
			&b.Created,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return bookings, nil
}

// OpenPool connects a pgx pool with the service's standing pool limits.
func OpenPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
