package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"restobook/pkg/models"
)

// OrderQuery filters the board listing. Status "all" (or empty) sends no
// status constraint; Hours bounds the lookback window for recent orders.
type OrderQuery struct {
	Status string
	Hours  int
}

func (q OrderQuery) values() url.Values {
	v := url.Values{}
	if q.Status != "" && q.Status != "all" {
		v.Set("status", q.Status)
	}
	if q.Hours > 0 {
		v.Set("hours", strconv.Itoa(q.Hours))
	}
	return v
}

// ListOrders returns orders without line items; detail is fetched lazily
// per order with GetOrder.
func (c *Client) ListOrders(ctx context.Context, q OrderQuery) ([]models.Order, error) {
	var orders []models.Order
	if err := c.doJSON(ctx, http.MethodGet, "/api/orders", q.values(), nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id int64) (models.Order, error) {
	var o models.Order
	err := c.doJSON(ctx, http.MethodGet, "/api/orders/"+strconv.FormatInt(id, 10), nil, nil, &o)
	return o, err
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus writes a single status step. The server is the sole
// validator of legal transitions.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status string) (models.Order, error) {
	var o models.Order
	err := c.doJSON(ctx, http.MethodPut, "/api/orders/"+strconv.FormatInt(id, 10)+"/status", nil,
		orderStatusRequest{Status: status}, &o)
	return o, err
}
