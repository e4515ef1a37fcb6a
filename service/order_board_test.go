package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"restobook/pkg/api"
	"restobook/pkg/logger"
	"restobook/pkg/models"
)

type fakeOrderAPI struct {
	mu        sync.Mutex
	rows      []models.Order
	listErr   error
	listCalls int
	lastQuery api.OrderQuery

	statusErr error
}

func (f *fakeOrderAPI) ListOrders(ctx context.Context, q api.OrderQuery) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.lastQuery = q
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows, nil
}

func (f *fakeOrderAPI) GetOrder(ctx context.Context, id int64) (models.Order, error) {
	return models.Order{ID: id}, nil
}

func (f *fakeOrderAPI) UpdateOrderStatus(ctx context.Context, id int64, status string) (models.Order, error) {
	if f.statusErr != nil {
		return models.Order{}, f.statusErr
	}
	return models.Order{ID: id, Status: status}, nil
}

func (f *fakeOrderAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type fakeStream struct {
	events chan api.Event
	once   sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{events: make(chan api.Event, 16)}
}

func (s *fakeStream) Events() <-chan api.Event { return s.events }

func (s *fakeStream) Close() {
	s.once.Do(func() { close(s.events) })
}

func testBoard(fake *fakeOrderAPI, stream *fakeStream) *OrderBoard {
	return newOrderBoard(fake, func(ctx context.Context) (pushStream, error) {
		return stream, nil
	}, logger.New("board-test", "error"))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func TestBoardDefaultsAndFilter(t *testing.T) {
	fake := &fakeOrderAPI{}
	board := testBoard(fake, newFakeStream())

	if err := board.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if q := fake.lastQuery; q.Status != "all" || q.Hours != 8 {
		t.Fatalf("defaults = %+v", q)
	}

	if err := board.SetStatus(context.Background(), "preparing"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := board.SetHours(context.Background(), 24); err != nil {
		t.Fatalf("SetHours: %v", err)
	}
	if q := fake.lastQuery; q.Status != "preparing" || q.Hours != 24 {
		t.Fatalf("filter = %+v", q)
	}
}

func TestBoardEventTriggersReload(t *testing.T) {
	fake := &fakeOrderAPI{rows: []models.Order{{ID: 1, Status: models.OrderPending}}}
	stream := newFakeStream()
	board := testBoard(fake, stream)

	if err := board.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer board.Stop()

	before := fake.calls()
	stream.events <- api.Event{Name: "created"}
	waitFor(t, func() bool { return fake.calls() > before })

	// Unknown event names are ignored.
	mid := fake.calls()
	stream.events <- api.Event{Name: "heartbeat"}
	stream.events <- api.Event{Name: "status"}
	waitFor(t, func() bool { return fake.calls() > mid })
	if fake.calls() != mid+1 {
		t.Fatalf("reloads = %d, want %d", fake.calls(), mid+1)
	}
}

func TestBoardStartTwiceFails(t *testing.T) {
	fake := &fakeOrderAPI{}
	board := testBoard(fake, newFakeStream())

	if err := board.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer board.Stop()
	if err := board.Start(context.Background()); err == nil {
		t.Fatal("second Start must fail while running")
	}
}

func TestBoardStopEndsReloads(t *testing.T) {
	fake := &fakeOrderAPI{}
	stream := newFakeStream()
	board := testBoard(fake, stream)

	if err := board.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	board.Stop()
	board.Stop()

	after := fake.calls()
	// The channel is closed by Stop; a buffered leftover must not load.
	time.Sleep(50 * time.Millisecond)
	if fake.calls() != after {
		t.Fatal("loads continued after Stop")
	}
}

func TestBoardLoadRacingStopIsDiscarded(t *testing.T) {
	fake := &fakeOrderAPI{rows: []models.Order{{ID: 1}}}
	stream := newFakeStream()
	board := testBoard(fake, stream)

	if err := board.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	rows := board.Rows()
	board.Stop()

	// A load that slipped past the watcher gate when Stop ran must not
	// touch the snapshot anymore.
	fake.mu.Lock()
	fake.rows = []models.Order{{ID: 1}, {ID: 2}}
	fake.mu.Unlock()
	if err := board.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(board.Rows()) != len(rows) {
		t.Fatalf("rows = %d after Stop, want %d", len(board.Rows()), len(rows))
	}
	if board.Loading() {
		t.Fatal("loading must clear on the discard path")
	}
}

func TestBoardStreamEndStopsWatcher(t *testing.T) {
	fake := &fakeOrderAPI{}
	stream := newFakeStream()
	board := testBoard(fake, stream)

	if err := board.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	stream.Close()
	time.Sleep(50 * time.Millisecond)

	before := fake.calls()
	time.Sleep(50 * time.Millisecond)
	if fake.calls() != before {
		t.Fatal("watcher kept loading after the stream ended")
	}
	board.Stop()
}

func TestBoardStatusUpdateReloads(t *testing.T) {
	fake := &fakeOrderAPI{rows: []models.Order{{ID: 3, Status: models.OrderConfirmed}}}
	board := testBoard(fake, newFakeStream())

	if err := board.UpdateStatus(context.Background(), 3, models.OrderPreparing); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if fake.calls() != 1 {
		t.Fatalf("list calls = %d, want 1", fake.calls())
	}

	fake.statusErr = errors.New("invalid transition")
	if err := board.UpdateStatus(context.Background(), 3, models.OrderCompleted); err == nil {
		t.Fatal("expected error")
	}
	if board.Err() == nil {
		t.Fatal("error must be recorded")
	}
	if fake.calls() != 1 {
		t.Fatal("failed update must not reload")
	}
}
