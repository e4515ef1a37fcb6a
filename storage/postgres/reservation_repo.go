package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"restobook/pkg/logger"
	"restobook/pkg/models"
	"restobook/pkg/timeutil"
	"restobook/storage"
)

var ErrNotFound = errors.New("record not found")

type reservationRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewReservationRepo(db *pgxpool.Pool, log logger.ILogger) storage.IReservationStorage {
	return &reservationRepo{db: db, log: log}
}

const reservationColumns = `id, first_name, last_name, phone, email, start_at, end_at,
	room_id, table_id, party_size, status, status_reason, notes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	var r models.Reservation
	var startAt time.Time
	var endAt *time.Time
	err := row.Scan(
		&r.ID, &r.FirstName, &r.LastName, &r.Phone, &r.Email,
		&startAt, &endAt, &r.RoomID, &r.TableID, &r.PartySize,
		&r.Status, &r.StatusReason, &r.Notes, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	r.StartAt = startAt.UTC().Format(timeutil.CanonicalLayout)
	if endAt != nil {
		s := endAt.UTC().Format(timeutil.CanonicalLayout)
		r.EndAt = &s
	}
	return &r, nil
}

// reservationTimes parses the canonical UTC strings into time.Time so
// the driver binds real timestamps. Binding the raw text would let the
// session TimeZone reinterpret the instant.
func reservationTimes(res *models.Reservation) (time.Time, *time.Time, error) {
	startAt, err := time.Parse(timeutil.CanonicalLayout, res.StartAt)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("start_at %q: %w", res.StartAt, err)
	}
	var endAt *time.Time
	if res.EndAt != nil {
		t, err := time.Parse(timeutil.CanonicalLayout, *res.EndAt)
		if err != nil {
			return time.Time{}, nil, fmt.Errorf("end_at %q: %w", *res.EndAt, err)
		}
		endAt = &t
	}
	return startAt, endAt, nil
}

func (r *reservationRepo) List(ctx context.Context, params storage.ReservationListParams) ([]*models.Reservation, error) {
	conds := []string{}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.From != "" {
		conds = append(conds, "start_at::date >= "+arg(params.From)+"::date")
	}
	if params.To != "" {
		conds = append(conds, "start_at::date <= "+arg(params.To)+"::date")
	}
	if params.Status != "" && params.Status != "all" {
		conds = append(conds, "status = "+arg(params.Status))
	}
	if params.Query != "" {
		needle := arg("%" + params.Query + "%")
		conds = append(conds, `(coalesce(first_name, '') ILIKE `+needle+
			` OR coalesce(last_name, '') ILIKE `+needle+
			` OR coalesce(phone, '') ILIKE `+needle+
			` OR coalesce(email, '') ILIKE `+needle+
			` OR coalesce(notes, '') ILIKE `+needle+`)`)
	}

	query := "SELECT " + reservationColumns + " FROM reservations"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY start_at ASC, id ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list reservations", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []*models.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *reservationRepo) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	query := "SELECT " + reservationColumns + " FROM reservations WHERE id = $1"
	res, err := scanReservation(r.db.QueryRow(ctx, query, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		r.log.Error("failed to get reservation", logger.Int64("id", id), logger.Error(err))
	}
	return res, err
}

func (r *reservationRepo) Create(ctx context.Context, res *models.Reservation) (*models.Reservation, error) {
	startAt, endAt, err := reservationTimes(res)
	if err != nil {
		return nil, err
	}
	query := `
		INSERT INTO reservations (first_name, last_name, phone, email, start_at, end_at,
			room_id, table_id, party_size, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + reservationColumns
	created, err := scanReservation(r.db.QueryRow(ctx, query,
		res.FirstName, res.LastName, res.Phone, res.Email,
		startAt, endAt, res.RoomID, res.TableID,
		res.PartySize, res.Status, res.Notes,
	))
	if err != nil {
		r.log.Error("failed to create reservation", logger.Error(err))
	}
	return created, err
}

func (r *reservationRepo) Update(ctx context.Context, res *models.Reservation) (*models.Reservation, error) {
	startAt, endAt, err := reservationTimes(res)
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE reservations
		SET first_name = $1, last_name = $2, phone = $3, email = $4, start_at = $5,
			end_at = $6, room_id = $7, table_id = $8, party_size = $9, notes = $10,
			updated_at = now()
		WHERE id = $11
		RETURNING ` + reservationColumns
	updated, err := scanReservation(r.db.QueryRow(ctx, query,
		res.FirstName, res.LastName, res.Phone, res.Email,
		startAt, endAt, res.RoomID, res.TableID,
		res.PartySize, res.Notes, res.ID,
	))
	if err != nil && !errors.Is(err, ErrNotFound) {
		r.log.Error("failed to update reservation", logger.Int64("id", res.ID), logger.Error(err))
	}
	return updated, err
}

func (r *reservationRepo) UpdateStatus(ctx context.Context, id int64, status string, reason *string) (*models.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = $1, status_reason = $2, updated_at = now()
		WHERE id = $3
		RETURNING ` + reservationColumns
	updated, err := scanReservation(r.db.QueryRow(ctx, query, status, reason, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		r.log.Error("failed to update reservation status", logger.Int64("id", id), logger.Error(err))
	}
	return updated, err
}

func (r *reservationRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Exec(ctx, "DELETE FROM reservations WHERE id = $1", id)
	if err != nil {
		r.log.Error("failed to delete reservation", logger.Int64("id", id), logger.Error(err))
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
