package service

import (
	"context"
	"fmt"
	"sync"

	"restobook/pkg/api"
	"restobook/pkg/logger"
	"restobook/pkg/models"
)

type orderAPI interface {
	ListOrders(ctx context.Context, q api.OrderQuery) ([]models.Order, error)
	GetOrder(ctx context.Context, id int64) (models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) (models.Order, error)
}

type pushStream interface {
	Events() <-chan api.Event
	Close()
}

type streamOpener func(ctx context.Context) (pushStream, error)

// OrderBoard mirrors the live order table. While started it keeps the
// push channel open and maps every change signal to a full reload;
// events carry no payload, so re-querying is the only correct reaction.
type OrderBoard struct {
	observerList

	mu   sync.Mutex
	api  orderAPI
	open streamOpener
	log  logger.ILogger

	status string
	hours  int

	rows    []models.Order
	loading bool
	err     error
	loadGen uint64

	stream  pushStream
	stopCh  chan struct{}
	stopped bool
}

const defaultBoardHours = 8

func NewOrderBoard(client *api.Client, log logger.ILogger) *OrderBoard {
	return newOrderBoard(client, func(ctx context.Context) (pushStream, error) {
		return client.Stream(ctx)
	}, log)
}

func newOrderBoard(api orderAPI, open streamOpener, log logger.ILogger) *OrderBoard {
	return &OrderBoard{
		api:    api,
		open:   open,
		log:    log,
		status: "all",
		hours:  defaultBoardHours,
	}
}

func (b *OrderBoard) Rows() []models.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	rows := make([]models.Order, len(b.rows))
	copy(rows, b.rows)
	return rows
}

func (b *OrderBoard) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

func (b *OrderBoard) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *OrderBoard) SetStatus(ctx context.Context, status string) error {
	b.mu.Lock()
	b.status = status
	b.mu.Unlock()
	return b.Load(ctx)
}

func (b *OrderBoard) SetHours(ctx context.Context, hours int) error {
	b.mu.Lock()
	b.hours = hours
	b.mu.Unlock()
	return b.Load(ctx)
}

// Load mirrors the reservation list pipeline: stale responses are
// discarded, failures keep the previous snapshot.
func (b *OrderBoard) Load(ctx context.Context) error {
	b.mu.Lock()
	b.loadGen++
	gen := b.loadGen
	b.loading = true
	b.err = nil
	q := api.OrderQuery{Status: b.status, Hours: b.hours}
	b.mu.Unlock()
	b.notify()

	rows, err := b.api.ListOrders(ctx, q)

	b.mu.Lock()
	if gen != b.loadGen {
		b.mu.Unlock()
		return nil
	}
	if b.stopped {
		// Stop won the race with an in-flight load; the response must
		// not mutate the snapshot anymore.
		b.loading = false
		b.mu.Unlock()
		return nil
	}
	b.loading = false
	if err != nil {
		b.err = err
		b.mu.Unlock()
		b.notify()
		b.log.Error("order board load failed", logger.Error(err))
		return err
	}
	if rows == nil {
		rows = []models.Order{}
	}
	b.rows = rows
	b.err = nil
	b.mu.Unlock()
	b.notify()
	return nil
}

// Detail fetches the line items of one order; list rows never carry
// them.
func (b *OrderBoard) Detail(ctx context.Context, id int64) (models.Order, error) {
	return b.api.GetOrder(ctx, id)
}

func (b *OrderBoard) UpdateStatus(ctx context.Context, id int64, status string) error {
	if _, err := b.api.UpdateOrderStatus(ctx, id, status); err != nil {
		b.mu.Lock()
		b.err = err
		b.mu.Unlock()
		b.notify()
		b.log.Error("order status update failed",
			logger.Int64("id", id), logger.String("status", status), logger.Error(err))
		return err
	}
	return b.Load(ctx)
}

// Start performs the initial load and opens the push channel. Both
// "created" and "status" events trigger a reload.
func (b *OrderBoard) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.stream != nil {
		b.mu.Unlock()
		return fmt.Errorf("order board already started")
	}
	b.stopped = false
	b.mu.Unlock()

	if err := b.Load(ctx); err != nil {
		b.log.Warning("initial board load failed", logger.Error(err))
	}

	stream, err := b.open(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.stream = stream
	stopCh := make(chan struct{})
	b.stopCh = stopCh
	b.mu.Unlock()

	go b.watch(ctx, stream, stopCh)
	return nil
}

func (b *OrderBoard) watch(ctx context.Context, stream pushStream, stopCh chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		case ev, ok := <-stream.Events():
			if !ok {
				return
			}
			b.mu.Lock()
			stopped := b.stopped
			b.mu.Unlock()
			if stopped {
				return
			}
			switch ev.Name {
			case "created", "status":
				_ = b.Load(ctx)
			}
		}
	}
}

// Stop closes the push channel. Best-effort and idempotent: after it
// returns, the channel triggers no further loads.
func (b *OrderBoard) Stop() {
	b.mu.Lock()
	stream := b.stream
	stopCh := b.stopCh
	b.stream = nil
	b.stopCh = nil
	b.stopped = true
	b.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
	}
	if stream != nil {
		stream.Close()
	}
}
