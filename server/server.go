// Package server is the development backend: it implements the HTTP
// surface the admin client consumes, over Postgres, so the client can
// run and be integration-tested without the production system.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"restobook/config"
	"restobook/notify"
	"restobook/pkg/logger"
	"restobook/storage"
)

type Server struct {
	cfg      config.Config
	stg      storage.IStorage
	hub      *Hub
	notifier notify.Notifier
	log      logger.ILogger
}

func New(cfg config.Config, stg storage.IStorage, hub *Hub, notifier notify.Notifier, log logger.ILogger) *Server {
	return &Server{
		cfg:      cfg,
		stg:      stg,
		hub:      hub,
		notifier: notifier,
		log:      log,
	}
}

func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/api/auth/login", s.login)

	api := r.Group("/api")
	api.Use(s.authRequired())
	{
		api.GET("/reservations", s.listReservations)
		api.POST("/reservations", s.createReservation)
		api.GET("/reservations/:id", s.getReservation)
		api.PUT("/reservations/:id", s.updateReservation)
		api.PUT("/reservations/:id/status", s.updateReservationStatus)
		api.DELETE("/reservations/:id", s.deleteReservation)

		api.GET("/orders", s.listOrders)
		api.POST("/orders", s.createOrder)
		api.GET("/orders/:id", s.getOrder)
		api.PUT("/orders/:id/status", s.updateOrderStatus)

		api.GET("/rooms", s.listRooms)
		api.GET("/rooms/:id/tables", s.listTables)

		api.POST("/print/daily", s.printDaily)
		api.POST("/print/placecards", s.printPlacecards)
		api.POST("/print/placecards/:id", s.printPlacecard)

		api.GET("/events", s.events)
	}

	return r
}
