package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"restobook/pkg/models"
)

func (s *Server) listRooms(c *gin.Context) {
	rooms, err := s.stg.Room().GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rooms == nil {
		rooms = []*models.Room{}
	}
	c.JSON(http.StatusOK, rooms)
}

func (s *Server) listTables(c *gin.Context) {
	roomID, ok := idParam(c)
	if !ok {
		return
	}
	tables, err := s.stg.Room().GetTables(c.Request.Context(), roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if tables == nil {
		tables = []*models.Table{}
	}
	c.JSON(http.StatusOK, tables)
}
