package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"restobook/pkg/models"
	"restobook/pkg/timeutil"
)

// ReservationQuery is the wire form of the list filter: empty fields are
// simply not sent.
type ReservationQuery struct {
	From   string
	To     string
	Status string
	Query  string
}

func (q ReservationQuery) values() url.Values {
	v := url.Values{}
	if q.From != "" {
		v.Set("from", q.From)
	}
	if q.To != "" {
		v.Set("to", q.To)
	}
	if q.Status != "" && q.Status != "all" {
		v.Set("status", q.Status)
	}
	if q.Query != "" {
		v.Set("q", q.Query)
	}
	return v
}

// ListReservations returns an ordered sequence regardless of the envelope
// shape the server chose for it.
func (c *Client) ListReservations(ctx context.Context, q ReservationQuery) ([]models.Reservation, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/api/reservations", q.values(), nil, &raw); err != nil {
		return nil, err
	}
	return normalizeReservations(raw)
}

var listEnvelopeKeys = []string{"rows", "data", "items", "reservations"}

func normalizeReservations(raw json.RawMessage) ([]models.Reservation, error) {
	var rows []models.Reservation
	if err := json.Unmarshal(raw, &rows); err == nil {
		return rows, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("unexpected reservation list shape: %w", err)
	}
	for _, key := range listEnvelopeKeys {
		inner, ok := wrapper[key]
		if !ok {
			continue
		}
		return normalizeReservations(inner)
	}

	// Single object lifted into a one-element sequence.
	var one models.Reservation
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("unexpected reservation list shape: %w", err)
	}
	return []models.Reservation{one}, nil
}

func (c *Client) GetReservation(ctx context.Context, id int64) (models.Reservation, error) {
	var r models.Reservation
	err := c.doJSON(ctx, http.MethodGet, "/api/reservations/"+strconv.FormatInt(id, 10), nil, nil, &r)
	return r, err
}

// ReservationPayload is the create/update body. It never carries an id,
// and optional text travels as explicit null (see OptText).
type ReservationPayload struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email" validate:"omitempty,email"`
	StartAt   string  `json:"start_at" validate:"required"`
	EndAt     *string `json:"end_at"`
	RoomID    *int64  `json:"room_id"`
	TableID   *int64  `json:"table_id"`
	PartySize int     `json:"party_size" validate:"required,min=1"`
	Notes     *string `json:"notes"`
}

// checkPayload fails fast, before any network call.
func (c *Client) checkPayload(p ReservationPayload) error {
	if err := c.validate.Struct(p); err != nil {
		return fmt.Errorf("invalid reservation payload: %w", err)
	}
	if _, err := time.Parse(timeutil.CanonicalLayout, p.StartAt); err != nil {
		return fmt.Errorf("start_at %q is not a canonical UTC timestamp", p.StartAt)
	}
	if p.EndAt != nil {
		if _, err := time.Parse(timeutil.CanonicalLayout, *p.EndAt); err != nil {
			return fmt.Errorf("end_at %q is not a canonical UTC timestamp", *p.EndAt)
		}
	}
	if p.TableID != nil && p.RoomID == nil {
		return fmt.Errorf("table_id is only meaningful with a room_id")
	}
	return nil
}

func (c *Client) CreateReservation(ctx context.Context, p ReservationPayload) (models.Reservation, error) {
	if err := c.checkPayload(p); err != nil {
		return models.Reservation{}, err
	}
	var r models.Reservation
	err := c.doJSON(ctx, http.MethodPost, "/api/reservations", nil, p, &r)
	return r, err
}

func (c *Client) UpdateReservation(ctx context.Context, id int64, p ReservationPayload) (models.Reservation, error) {
	if err := c.checkPayload(p); err != nil {
		return models.Reservation{}, err
	}
	var r models.Reservation
	err := c.doJSON(ctx, http.MethodPut, "/api/reservations/"+strconv.FormatInt(id, 10), nil, p, &r)
	return r, err
}

type statusChangeRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason,omitempty"`
}

// UpdateReservationStatus applies accept/reject/cancel. An empty reason
// means "no reason"; whether one is required is the caller's policy.
func (c *Client) UpdateReservationStatus(ctx context.Context, id int64, action, reason string) (models.Reservation, error) {
	switch action {
	case models.ActionAccept, models.ActionReject, models.ActionCancel:
	default:
		return models.Reservation{}, fmt.Errorf("unknown status action %q", action)
	}
	var r models.Reservation
	err := c.doJSON(ctx, http.MethodPut, "/api/reservations/"+strconv.FormatInt(id, 10)+"/status", nil,
		statusChangeRequest{Action: action, Reason: reason}, &r)
	return r, err
}

// RemoveOptions control a hard delete. Force bypasses the
// cancelled-only precondition; Notify triggers downstream dispatch.
type RemoveOptions struct {
	Force  bool
	Notify bool
}

func DefaultRemoveOptions() RemoveOptions {
	return RemoveOptions{Force: false, Notify: true}
}

func (c *Client) RemoveReservation(ctx context.Context, id int64, opts RemoveOptions) error {
	v := url.Values{}
	v.Set("force", strconv.FormatBool(opts.Force))
	v.Set("notify", strconv.FormatBool(opts.Notify))
	return c.doJSON(ctx, http.MethodDelete, "/api/reservations/"+strconv.FormatInt(id, 10), v, nil, nil)
}
