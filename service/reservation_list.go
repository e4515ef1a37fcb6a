package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"restobook/pkg/api"
	"restobook/pkg/logger"
	"restobook/pkg/models"
	"restobook/pkg/timeutil"
)

// Filter presets determine how the date range is derived.
const (
	PresetToday  = "today"
	Preset7d     = "7d"
	PresetAll    = "all"
	PresetCustom = "custom"
)

type reservationAPI interface {
	ListReservations(ctx context.Context, q api.ReservationQuery) ([]models.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id int64, action, reason string) (models.Reservation, error)
	RemoveReservation(ctx context.Context, id int64, opts api.RemoveOptions) error
}

// ReservationList drives the reservation table: filter state, loads,
// status actions and the hard-delete gate. Any filter mutation triggers
// a reload; status actions reload on success instead of patching rows,
// so the snapshot never drifts from the server.
type ReservationList struct {
	observerList

	mu  sync.Mutex
	api reservationAPI
	log logger.ILogger
	now func() time.Time

	preset string
	status string
	from   string
	to     string
	query  string

	rows    []models.Reservation
	loading bool
	err     error

	// loadGen discards responses of superseded loads, so a late reply
	// from an older request can never overwrite newer state.
	loadGen uint64

	forceDelete bool
}

func NewReservationList(api reservationAPI, log logger.ILogger) *ReservationList {
	return &ReservationList{
		api:    api,
		log:    log,
		now:    time.Now,
		preset: PresetToday,
		status: "all",
	}
}

func (l *ReservationList) Rows() []models.Reservation {
	l.mu.Lock()
	defer l.mu.Unlock()
	rows := make([]models.Reservation, len(l.rows))
	copy(rows, l.rows)
	return rows
}

func (l *ReservationList) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

func (l *ReservationList) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *ReservationList) Preset() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.preset
}

func (l *ReservationList) SetPreset(ctx context.Context, preset string) error {
	switch preset {
	case PresetToday, Preset7d, PresetAll, PresetCustom:
	default:
		return fmt.Errorf("unknown filter preset %q", preset)
	}
	l.mu.Lock()
	l.preset = preset
	l.mu.Unlock()
	return l.Load(ctx)
}

func (l *ReservationList) SetStatus(ctx context.Context, status string) error {
	l.mu.Lock()
	l.status = status
	l.mu.Unlock()
	return l.Load(ctx)
}

func (l *ReservationList) SetQuery(ctx context.Context, query string) error {
	l.mu.Lock()
	l.query = query
	l.mu.Unlock()
	return l.Load(ctx)
}

// SetCustomRange stores a user-supplied range and switches to the
// custom preset. The range only applies once both ends are present.
func (l *ReservationList) SetCustomRange(ctx context.Context, from, to string) error {
	l.mu.Lock()
	l.preset = PresetCustom
	l.from = from
	l.to = to
	l.mu.Unlock()
	return l.Load(ctx)
}

func (l *ReservationList) SetForceDelete(force bool) {
	l.mu.Lock()
	l.forceDelete = force
	l.mu.Unlock()
	l.notify()
}

// QueryParams derives the wire filter from the current preset.
func (l *ReservationList) QueryParams() api.ReservationQuery {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queryParamsLocked()
}

func (l *ReservationList) queryParamsLocked() api.ReservationQuery {
	q := api.ReservationQuery{Status: l.status, Query: l.query}
	today := timeutil.LocalDate(l.now())
	switch l.preset {
	case PresetToday:
		q.From, q.To = today, today
	case Preset7d:
		q.From = timeutil.LocalDate(l.now().AddDate(0, 0, -7))
		q.To = today
	case PresetCustom:
		if l.from != "" && l.to != "" {
			q.From, q.To = l.from, l.to
		}
	}
	return q
}

// Load is the single entry point for refreshing the snapshot. A failing
// call leaves the previous rows untouched and records the error; loading
// is cleared on every path.
func (l *ReservationList) Load(ctx context.Context) error {
	l.mu.Lock()
	l.loadGen++
	gen := l.loadGen
	l.loading = true
	l.err = nil
	q := l.queryParamsLocked()
	l.mu.Unlock()
	l.notify()

	rows, err := l.api.ListReservations(ctx, q)

	l.mu.Lock()
	if gen != l.loadGen {
		// A newer load owns the state now; this response is stale.
		l.mu.Unlock()
		return nil
	}
	l.loading = false
	if err != nil {
		l.err = err
		l.mu.Unlock()
		l.notify()
		l.log.Error("reservation load failed", logger.Error(err))
		return err
	}
	if rows == nil {
		rows = []models.Reservation{}
	}
	l.rows = rows
	l.err = nil
	l.mu.Unlock()
	l.notify()
	return nil
}

func (l *ReservationList) Accept(ctx context.Context, id int64) error {
	return l.applyAction(ctx, id, models.ActionAccept, "")
}

func (l *ReservationList) Reject(ctx context.Context, id int64, reason string) error {
	return l.applyAction(ctx, id, models.ActionReject, reason)
}

func (l *ReservationList) Cancel(ctx context.Context, id int64, reason string) error {
	return l.applyAction(ctx, id, models.ActionCancel, reason)
}

// applyAction sends the transition and reloads the full list on success.
// On failure the stale row stays as-is and the error is surfaced.
func (l *ReservationList) applyAction(ctx context.Context, id int64, action, reason string) error {
	if _, err := l.api.UpdateReservationStatus(ctx, id, action, reason); err != nil {
		l.mu.Lock()
		l.err = err
		l.mu.Unlock()
		l.notify()
		l.log.Error("status action failed",
			logger.Int64("id", id), logger.String("action", action), logger.Error(err))
		return err
	}
	return l.Load(ctx)
}

// CanHardDelete reports whether the local policy offers hard delete for
// a row: cancelled status, or the force override.
func (l *ReservationList) CanHardDelete(r models.Reservation) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return r.Status == models.ReservationCancelled || l.forceDelete
}

// HardDelete removes a reservation for good. It refuses without an
// explicit confirmation and enforces the same gate as CanHardDelete.
func (l *ReservationList) HardDelete(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return fmt.Errorf("hard delete of reservation %d requires confirmation", id)
	}

	l.mu.Lock()
	force := l.forceDelete
	var row *models.Reservation
	for i := range l.rows {
		if l.rows[i].ID == id {
			row = &l.rows[i]
			break
		}
	}
	if row == nil {
		l.mu.Unlock()
		return fmt.Errorf("reservation %d is not in the current list", id)
	}
	if row.Status != models.ReservationCancelled && !force {
		l.mu.Unlock()
		return fmt.Errorf("reservation %d is not cancelled; hard delete needs the force override", id)
	}
	l.mu.Unlock()

	opts := api.DefaultRemoveOptions()
	opts.Force = force
	if err := l.api.RemoveReservation(ctx, id, opts); err != nil {
		l.mu.Lock()
		l.err = err
		l.mu.Unlock()
		l.notify()
		return err
	}
	return l.Load(ctx)
}
