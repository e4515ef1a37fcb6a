package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"restobook/pkg/models"
	"restobook/storage"
	"restobook/storage/postgres"
)

func (s *Server) listOrders(c *gin.Context) {
	status := c.Query("status")
	hours := 0
	if raw := c.Query("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hours"})
			return
		}
		hours = parsed
	}

	orders, err := s.stg.Order().List(c.Request.Context(), status, hours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) getOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	order, err := s.stg.Order().GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

type orderItemRequest struct {
	Name  string  `json:"name" binding:"required"`
	Qty   int     `json:"qty" binding:"required,min=1"`
	Price int     `json:"price"`
	Notes *string `json:"notes"`
}

type createOrderRequest struct {
	RoomID  *int64             `json:"room_id"`
	TableID *int64             `json:"table_id"`
	Items   []orderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// createOrder exists for the customer-facing flow the dev environment
// fakes; the admin client itself never creates orders.
func (s *Server) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order := &models.Order{
		RoomID:  req.RoomID,
		TableID: req.TableID,
		Status:  models.OrderPending,
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, models.OrderItem{
			Name:  item.Name,
			Qty:   item.Qty,
			Price: item.Price,
			Notes: optText(item.Notes),
		})
	}

	created, err := s.stg.Order().Create(c.Request.Context(), order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.hub.Broadcast("created")
	c.JSON(http.StatusCreated, created)
}

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, err := s.stg.Order().GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !storage.ValidOrderTransition(current.Status, req.Status) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          fmt.Sprintf("cannot move order from %s to %s", current.Status, req.Status),
			"current_status": current.Status,
		})
		return
	}

	updated, err := s.stg.Order().UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.hub.Broadcast("status")
	c.JSON(http.StatusOK, updated)
}
