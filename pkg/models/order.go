package models

import "time"

const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderPreparing = "preparing"
	OrderReady     = "ready"
	OrderCompleted = "completed"
)

// OrderFlow is the ordered status workflow. The server is the sole
// validator of legal transitions; clients only display it.
var OrderFlow = []string{
	OrderPending,
	OrderConfirmed,
	OrderPreparing,
	OrderReady,
	OrderCompleted,
}

type Order struct {
	ID        int64       `json:"id"`
	RoomID    *int64      `json:"room_id"`
	TableID   *int64      `json:"table_id"`
	Status    string      `json:"status"`
	Items     []OrderItem `json:"items,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID      int64   `json:"id"`
	OrderID int64   `json:"order_id"`
	Name    string  `json:"name"`
	Qty     int     `json:"qty"`
	Price   int     `json:"price"`
	Notes   *string `json:"notes"`
}
