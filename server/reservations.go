package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"restobook/pkg/logger"
	"restobook/pkg/models"
	"restobook/pkg/timeutil"
	"restobook/storage"
	"restobook/storage/postgres"
)

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func optText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *Server) listReservations(c *gin.Context) {
	params := storage.ReservationListParams{
		From:   c.Query("from"),
		To:     c.Query("to"),
		Status: c.Query("status"),
		Query:  c.Query("q"),
	}
	rows, err := s.stg.Reservation().List(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rows == nil {
		rows = []*models.Reservation{}
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
}

func (s *Server) getReservation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := s.stg.Reservation().GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

type reservationRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	StartAt   string  `json:"start_at" binding:"required"`
	EndAt     *string `json:"end_at"`
	RoomID    *int64  `json:"room_id"`
	TableID   *int64  `json:"table_id"`
	PartySize int     `json:"party_size" binding:"required,min=1"`
	Notes     *string `json:"notes"`
}

// toModel validates the timestamps and the table/room pairing before
// anything touches the database.
func (s *Server) toModel(ctx context.Context, req reservationRequest) (*models.Reservation, error) {
	if _, err := time.Parse(timeutil.CanonicalLayout, req.StartAt); err != nil {
		return nil, fmt.Errorf("start_at must be %q in UTC", timeutil.CanonicalLayout)
	}
	if req.EndAt != nil {
		if _, err := time.Parse(timeutil.CanonicalLayout, *req.EndAt); err != nil {
			return nil, fmt.Errorf("end_at must be %q in UTC", timeutil.CanonicalLayout)
		}
	}
	if req.TableID != nil {
		if req.RoomID == nil {
			return nil, fmt.Errorf("table_id requires room_id")
		}
		ok, err := s.stg.Room().TableInRoom(ctx, *req.TableID, *req.RoomID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("table %d does not belong to room %d", *req.TableID, *req.RoomID)
		}
	}
	return &models.Reservation{
		FirstName: optText(req.FirstName),
		LastName:  optText(req.LastName),
		Phone:     optText(req.Phone),
		Email:     optText(req.Email),
		StartAt:   req.StartAt,
		EndAt:     req.EndAt,
		RoomID:    req.RoomID,
		TableID:   req.TableID,
		PartySize: req.PartySize,
		Notes:     optText(req.Notes),
	}, nil
}

func (s *Server) createReservation(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.toModel(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res.Status = models.ReservationPending

	created, err := s.stg.Reservation().Create(c.Request.Context(), res)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Dispatch is fire-and-forget; a failed notification never blocks
	// the reservation itself.
	s.dispatch(fmt.Sprintf("New reservation #%d for %s, party of %d at %s",
		created.ID, created.GuestName(), created.PartySize, created.StartAt))

	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateReservation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.toModel(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res.ID = id

	updated, err := s.stg.Reservation().Update(c.Request.Context(), res)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

type statusRequest struct {
	Action string  `json:"action" binding:"required"`
	Reason *string `json:"reason"`
}

func (s *Server) updateReservationStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, err := s.stg.Reservation().GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	next, known := storage.StatusAfterAction(req.Action)
	if !known {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown action %q", req.Action)})
		return
	}
	if !storage.ValidReservationAction(req.Action, current.Status) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          fmt.Sprintf("cannot %s a %s reservation", req.Action, current.Status),
			"current_status": current.Status,
		})
		return
	}

	updated, err := s.stg.Reservation().UpdateStatus(c.Request.Context(), id, next, optText(req.Reason))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.dispatch(fmt.Sprintf("Reservation #%d is now %s", updated.ID, updated.Status))
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteReservation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	force := c.Query("force") == "true"
	notify := c.Query("notify") != "false"

	current, err := s.stg.Reservation().GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if current.Status != models.ReservationCancelled && !force {
		c.JSON(http.StatusConflict, gin.H{"error": "only cancelled reservations can be deleted without force"})
		return
	}

	if err := s.stg.Reservation().Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if notify {
		s.dispatch(fmt.Sprintf("Reservation #%d for %s was deleted", current.ID, current.GuestName()))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) dispatch(message string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.notifier.Send(ctx, message); err != nil {
			s.log.Warning("notification dispatch failed", logger.Error(err))
		}
	}()
}
