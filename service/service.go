// Package service holds the stateful controllers behind the admin
// surface: the reservation list and the live order board. Controllers
// own their row snapshots and filter state exclusively and report
// changes through an observer list; no view code lives here.
package service

import (
	"sync"

	"restobook/pkg/api"
	"restobook/pkg/logger"
)

type IServiceManager interface {
	Reservations() *ReservationList
	Board() *OrderBoard
}

type manager struct {
	reservations *ReservationList
	board        *OrderBoard
}

func New(client *api.Client, log logger.ILogger) IServiceManager {
	return &manager{
		reservations: NewReservationList(client, log),
		board:        NewOrderBoard(client, log),
	}
}

func (m *manager) Reservations() *ReservationList {
	return m.reservations
}

func (m *manager) Board() *OrderBoard {
	return m.board
}

// observerList is the notify-on-change mechanism shared by the
// controllers. Callbacks run on the mutating goroutine, outside the
// controller lock.
type observerList struct {
	mu   sync.Mutex
	next int
	fns  map[int]func()
}

func (o *observerList) Subscribe(fn func()) (unsubscribe func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fns == nil {
		o.fns = make(map[int]func())
	}
	id := o.next
	o.next++
	o.fns[id] = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.fns, id)
	}
}

func (o *observerList) notify() {
	o.mu.Lock()
	fns := make([]func(), 0, len(o.fns))
	for _, fn := range o.fns {
		fns = append(fns, fn)
	}
	o.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
