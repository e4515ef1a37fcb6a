package api

import (
	"context"
	"net/http"
	"strconv"

	"restobook/pkg/models"
)

// Reference data. No caching: a room change invalidates any previously
// chosen table, so callers re-fetch on every change.

func (c *Client) ListRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := c.doJSON(ctx, http.MethodGet, "/api/rooms", nil, nil, &rooms)
	return rooms, err
}

func (c *Client) ListTablesByRoom(ctx context.Context, roomID int64) ([]models.Table, error) {
	var tables []models.Table
	err := c.doJSON(ctx, http.MethodGet, "/api/rooms/"+strconv.FormatInt(roomID, 10)+"/tables", nil, nil, &tables)
	return tables, err
}
