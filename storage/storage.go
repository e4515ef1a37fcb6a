package storage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"restobook/pkg/models"
)

type IStorage interface {
	User() IUserStorage
	Reservation() IReservationStorage
	Order() IOrderStorage
	Room() IRoomStorage
	Close()
	GetPool() *pgxpool.Pool
}

type IUserStorage interface {
	GetByUsername(ctx context.Context, username string) (*models.User, string, error)
	Create(ctx context.Context, username, fullName, role, passwordHash string) (*models.User, error)
}

// ReservationListParams mirror the query surface of the list endpoint:
// an optional local-date range, a status and a free-text needle.
type ReservationListParams struct {
	From   string
	To     string
	Status string
	Query  string
}

type IReservationStorage interface {
	List(ctx context.Context, params ReservationListParams) ([]*models.Reservation, error)
	GetByID(ctx context.Context, id int64) (*models.Reservation, error)
	Create(ctx context.Context, r *models.Reservation) (*models.Reservation, error)
	Update(ctx context.Context, r *models.Reservation) (*models.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, status string, reason *string) (*models.Reservation, error)
	Delete(ctx context.Context, id int64) error
}

type IOrderStorage interface {
	List(ctx context.Context, status string, hours int) ([]*models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	Create(ctx context.Context, o *models.Order) (*models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*models.Order, error)
}

type IRoomStorage interface {
	GetAll(ctx context.Context) ([]*models.Room, error)
	GetTables(ctx context.Context, roomID int64) ([]*models.Table, error)
	TableInRoom(ctx context.Context, tableID, roomID int64) (bool, error)
}
