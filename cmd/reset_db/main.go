package main

import (
	"context"
	"fmt"

	"restobook/config"
	"restobook/pkg/logger"
	"restobook/storage/postgres"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)
	pg, err := postgres.New(context.Background(), cfg, log)

	if err != nil {
		panic(err)
	}
	defer pg.Close()

	// Rooms, tables and users are seed data and survive a reset; only
	// the mutable records go.
	_, err = pg.GetPool().Exec(context.Background(), "TRUNCATE TABLE reservations, orders, order_items CASCADE")
	if err != nil {
		log.Error(fmt.Sprintf("failed to truncate tables: %v", err))
	} else {
		log.Info("truncated reservations, orders and order_items")
	}
}
