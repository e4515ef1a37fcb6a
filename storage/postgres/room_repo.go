package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"restobook/pkg/logger"
	"restobook/pkg/models"
	"restobook/storage"
)

type roomRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewRoomRepo(db *pgxpool.Pool, log logger.ILogger) storage.IRoomStorage {
	return &roomRepo{db: db, log: log}
}

func (r *roomRepo) GetAll(ctx context.Context) ([]*models.Room, error) {
	rows, err := r.db.Query(ctx, "SELECT id, name FROM rooms ORDER BY id ASC")
	if err != nil {
		r.log.Error("failed to list rooms", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.Name); err != nil {
			return nil, err
		}
		rooms = append(rooms, &room)
	}
	return rooms, rows.Err()
}

func (r *roomRepo) GetTables(ctx context.Context, roomID int64) ([]*models.Table, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, room_id, name, seats
		FROM tables
		WHERE room_id = $1
		ORDER BY id ASC
	`, roomID)
	if err != nil {
		r.log.Error("failed to list tables", logger.Int64("room_id", roomID), logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var tables []*models.Table
	for rows.Next() {
		var t models.Table
		if err := rows.Scan(&t.ID, &t.RoomID, &t.Name, &t.Seats); err != nil {
			return nil, err
		}
		tables = append(tables, &t)
	}
	return tables, rows.Err()
}

func (r *roomRepo) TableInRoom(ctx context.Context, tableID, roomID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM tables WHERE id = $1 AND room_id = $2)",
		tableID, roomID,
	).Scan(&ok)
	return ok, err
}
