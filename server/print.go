package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"restobook/pkg/logger"
	"restobook/pkg/models"
	"restobook/storage"
	"restobook/storage/postgres"
)

// The dev backend has no physical spooler: print jobs render to the log
// and report the number of lines, which is what the client shows.

type printRequest struct {
	Date   string `json:"date" binding:"required"`
	Status string `json:"status"`
}

func (s *Server) printDaily(c *gin.Context) {
	var req printRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, err := s.reservationsForDate(c, req.Date, req.Status)
	if err != nil {
		return
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s  %-24s party %d  table %s",
			r.StartAt, r.GuestName(), r.PartySize, tableRef(r)))
	}
	s.spool("daily sheet "+req.Date, lines)
	c.JSON(http.StatusOK, gin.H{"ok": true, "lines": len(lines)})
}

func (s *Server) printPlacecards(c *gin.Context) {
	var req printRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, err := s.reservationsForDate(c, req.Date, req.Status)
	if err != nil {
		return
	}

	var lines []string
	for _, r := range rows {
		lines = append(lines, placecardLines(r)...)
	}
	s.spool("placecards "+req.Date, lines)
	c.JSON(http.StatusOK, gin.H{"ok": true, "lines": len(lines)})
}

func (s *Server) printPlacecard(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	r, err := s.stg.Reservation().GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	lines := placecardLines(r)
	s.spool(fmt.Sprintf("placecard #%d", id), lines)
	c.JSON(http.StatusOK, gin.H{"ok": true, "lines": len(lines)})
}

func (s *Server) reservationsForDate(c *gin.Context, date, status string) ([]*models.Reservation, error) {
	rows, err := s.stg.Reservation().List(c.Request.Context(), storage.ReservationListParams{
		From:   date,
		To:     date,
		Status: status,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, err
	}
	return rows, nil
}

func tableRef(r *models.Reservation) string {
	if r.TableID == nil {
		return "-"
	}
	return fmt.Sprintf("#%d", *r.TableID)
}

func placecardLines(r *models.Reservation) []string {
	name := r.GuestName()
	if name == "" {
		name = fmt.Sprintf("Reservation #%d", r.ID)
	}
	return []string{
		strings.ToUpper(name),
		fmt.Sprintf("party of %d, %s", r.PartySize, r.StartAt),
	}
}

func (s *Server) spool(job string, lines []string) {
	s.log.Info("print job", logger.String("job", job), logger.Int("lines", len(lines)))
	for _, line := range lines {
		s.log.Debug("print", logger.String("line", line))
	}
}
