package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"restobook/config"
	"restobook/pkg/logger"
	"restobook/pkg/models"
	"restobook/storage"
	"restobook/storage/postgres"
)

// fakeStore backs the handlers with in-memory maps so the HTTP surface
// can be tested without Postgres.
type fakeStore struct {
	users        map[string]fakeUser
	reservations map[int64]*models.Reservation
	orders       map[int64]*models.Order
	nextID       int64
}

type fakeUser struct {
	user *models.User
	hash string
}

func newFakeStore() *fakeStore {
	hash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	return &fakeStore{
		users: map[string]fakeUser{
			"admin": {user: &models.User{ID: 1, Username: "admin", Role: "admin"}, hash: string(hash)},
		},
		reservations: map[int64]*models.Reservation{},
		orders:       map[int64]*models.Order{},
		nextID:       100,
	}
}

func (f *fakeStore) User() storage.IUserStorage               { return fakeUserRepo{f} }
func (f *fakeStore) Reservation() storage.IReservationStorage { return fakeReservationRepo{f} }
func (f *fakeStore) Order() storage.IOrderStorage             { return fakeOrderRepo{f} }
func (f *fakeStore) Room() storage.IRoomStorage               { return fakeRoomRepo{} }
func (f *fakeStore) Close()                                   {}
func (f *fakeStore) GetPool() *pgxpool.Pool                   { return nil }

type fakeUserRepo struct{ s *fakeStore }

func (r fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, string, error) {
	u, ok := r.s.users[username]
	if !ok {
		return nil, "", postgres.ErrNotFound
	}
	return u.user, u.hash, nil
}

func (r fakeUserRepo) Create(ctx context.Context, username, fullName, role, passwordHash string) (*models.User, error) {
	r.s.nextID++
	u := &models.User{ID: r.s.nextID, Username: username, FullName: fullName, Role: role}
	r.s.users[username] = fakeUser{user: u, hash: passwordHash}
	return u, nil
}

type fakeReservationRepo struct{ s *fakeStore }

func (r fakeReservationRepo) List(ctx context.Context, params storage.ReservationListParams) ([]*models.Reservation, error) {
	var rows []*models.Reservation
	for _, res := range r.s.reservations {
		if params.Status != "" && params.Status != "all" && res.Status != params.Status {
			continue
		}
		rows = append(rows, res)
	}
	return rows, nil
}

func (r fakeReservationRepo) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	res, ok := r.s.reservations[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	return res, nil
}

func (r fakeReservationRepo) Create(ctx context.Context, res *models.Reservation) (*models.Reservation, error) {
	r.s.nextID++
	res.ID = r.s.nextID
	r.s.reservations[res.ID] = res
	return res, nil
}

func (r fakeReservationRepo) Update(ctx context.Context, res *models.Reservation) (*models.Reservation, error) {
	current, ok := r.s.reservations[res.ID]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	res.Status = current.Status
	r.s.reservations[res.ID] = res
	return res, nil
}

func (r fakeReservationRepo) UpdateStatus(ctx context.Context, id int64, status string, reason *string) (*models.Reservation, error) {
	res, ok := r.s.reservations[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	res.Status = status
	res.StatusReason = reason
	return res, nil
}

func (r fakeReservationRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.reservations[id]; !ok {
		return postgres.ErrNotFound
	}
	delete(r.s.reservations, id)
	return nil
}

type fakeOrderRepo struct{ s *fakeStore }

func (r fakeOrderRepo) List(ctx context.Context, status string, hours int) ([]*models.Order, error) {
	var rows []*models.Order
	for _, o := range r.s.orders {
		if status != "" && status != "all" && o.Status != status {
			continue
		}
		rows = append(rows, o)
	}
	return rows, nil
}

func (r fakeOrderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	return o, nil
}

func (r fakeOrderRepo) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	r.s.nextID++
	o.ID = r.s.nextID
	r.s.orders[o.ID] = o
	return o, nil
}

func (r fakeOrderRepo) UpdateStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	o.Status = status
	return o, nil
}

type fakeRoomRepo struct{}

func (fakeRoomRepo) GetAll(ctx context.Context) ([]*models.Room, error) {
	return []*models.Room{{ID: 1, Name: "Main Hall"}}, nil
}

func (fakeRoomRepo) GetTables(ctx context.Context, roomID int64) ([]*models.Table, error) {
	if roomID != 1 {
		return nil, nil
	}
	return []*models.Table{{ID: 1, RoomID: 1, Name: "T1", Seats: 4}}, nil
}

func (fakeRoomRepo) TableInRoom(ctx context.Context, tableID, roomID int64) (bool, error) {
	return roomID == 1 && tableID == 1, nil
}

func testServer(t *testing.T) (*Server, *fakeStore) {
	t.Helper()
	cfg := config.Config{JWTSecret: "test-secret", JWTTTLMin: 60}
	store := newFakeStore()
	log := logger.New("server-test", "error")
	return New(cfg, store, NewHub(), noopTestNotifier{}, log), store
}

type noopTestNotifier struct{}

func (noopTestNotifier) Send(ctx context.Context, message string) error { return nil }

func doRequest(t *testing.T, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func login(t *testing.T, srv *Server) string {
	t.Helper()
	w := doRequest(t, srv, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "admin", "password": "admin123"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Token == "" || resp.User.Username != "admin" {
		t.Fatalf("login response incomplete: %s", w.Body.String())
	}
	return resp.Token
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv, _ := testServer(t)
	w := doRequest(t, srv, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "admin", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	w = doRequest(t, srv, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "ghost", "password": "admin123"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: status = %d", w.Code)
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	srv, _ := testServer(t)
	w := doRequest(t, srv, http.MethodGet, "/api/reservations", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	w = doRequest(t, srv, http.MethodGet, "/api/reservations", "not-a-jwt", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d", w.Code)
	}
}

func TestListReservationsEnvelope(t *testing.T) {
	srv, store := testServer(t)
	token := login(t, srv)
	store.reservations[1] = &models.Reservation{ID: 1, Status: models.ReservationPending, PartySize: 2}

	w := doRequest(t, srv, http.MethodGet, "/api/reservations", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Rows  []models.Reservation `json:"rows"`
		Count int                  `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || len(resp.Rows) != 1 {
		t.Fatalf("envelope = %s", w.Body.String())
	}
}

func TestCreateReservationValidation(t *testing.T) {
	srv, _ := testServer(t)
	token := login(t, srv)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing start", map[string]interface{}{"party_size": 2}},
		{"zero party", map[string]interface{}{"start_at": "2024-03-10 18:30:00", "party_size": 0}},
		{"bad timestamp", map[string]interface{}{"start_at": "tonight", "party_size": 2}},
		{"table without room", map[string]interface{}{"start_at": "2024-03-10 18:30:00", "party_size": 2, "table_id": 1}},
		{"table in wrong room", map[string]interface{}{"start_at": "2024-03-10 18:30:00", "party_size": 2, "room_id": 2, "table_id": 1}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, srv, http.MethodPost, "/api/reservations", token, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestCreateReservationStartsPending(t *testing.T) {
	srv, _ := testServer(t)
	token := login(t, srv)

	w := doRequest(t, srv, http.MethodPost, "/api/reservations", token, map[string]interface{}{
		"first_name": "Ada",
		"start_at":   "2024-03-10 18:30:00",
		"party_size": 4,
		"room_id":    1,
		"table_id":   1,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var created models.Reservation
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Status != models.ReservationPending {
		t.Fatalf("status = %q, want pending", created.Status)
	}
}

func TestReservationStatusTransitions(t *testing.T) {
	srv, store := testServer(t)
	token := login(t, srv)
	store.reservations[5] = &models.Reservation{ID: 5, Status: models.ReservationPending}

	w := doRequest(t, srv, http.MethodPut, "/api/reservations/5/status", token,
		map[string]string{"action": "accept"})
	if w.Code != http.StatusOK {
		t.Fatalf("accept: status = %d, body %s", w.Code, w.Body.String())
	}

	// accept is only legal from pending
	w = doRequest(t, srv, http.MethodPut, "/api/reservations/5/status", token,
		map[string]string{"action": "accept"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("double accept: status = %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["current_status"] != models.ReservationAccepted {
		t.Fatalf("current_status = %q", resp["current_status"])
	}

	w = doRequest(t, srv, http.MethodPut, "/api/reservations/5/status", token,
		map[string]string{"action": "cancel", "reason": "guest called"})
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: status = %d", w.Code)
	}
	res := store.reservations[5]
	if res.Status != models.ReservationCancelled || res.StatusReason == nil || *res.StatusReason != "guest called" {
		t.Fatalf("reservation after cancel: %+v", res)
	}

	w = doRequest(t, srv, http.MethodPut, "/api/reservations/5/status", token,
		map[string]string{"action": "archive"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown action: status = %d", w.Code)
	}
}

func TestDeleteReservationGate(t *testing.T) {
	srv, store := testServer(t)
	token := login(t, srv)
	store.reservations[7] = &models.Reservation{ID: 7, Status: models.ReservationAccepted}

	w := doRequest(t, srv, http.MethodDelete, "/api/reservations/7", token, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("ungated delete: status = %d", w.Code)
	}
	if _, ok := store.reservations[7]; !ok {
		t.Fatal("refused delete must not remove the row")
	}

	w = doRequest(t, srv, http.MethodDelete, "/api/reservations/7?force=true", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("forced delete: status = %d, body %s", w.Code, w.Body.String())
	}
	if _, ok := store.reservations[7]; ok {
		t.Fatal("forced delete must remove the row")
	}

	store.reservations[8] = &models.Reservation{ID: 8, Status: models.ReservationCancelled}
	w = doRequest(t, srv, http.MethodDelete, "/api/reservations/8", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cancelled delete: status = %d", w.Code)
	}
}

func TestOrderStatusSkipRejected(t *testing.T) {
	srv, store := testServer(t)
	token := login(t, srv)
	store.orders[3] = &models.Order{ID: 3, Status: models.OrderPending}

	w := doRequest(t, srv, http.MethodPut, "/api/orders/3/status", token,
		map[string]string{"status": models.OrderPreparing})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("skip transition: status = %d, body %s", w.Code, w.Body.String())
	}

	w = doRequest(t, srv, http.MethodPut, "/api/orders/3/status", token,
		map[string]string{"status": models.OrderConfirmed})
	if w.Code != http.StatusOK {
		t.Fatalf("adjacent transition: status = %d, body %s", w.Code, w.Body.String())
	}
	if store.orders[3].Status != models.OrderConfirmed {
		t.Fatalf("order status = %q", store.orders[3].Status)
	}
}

func TestListOrdersRejectsBadHours(t *testing.T) {
	srv, _ := testServer(t)
	token := login(t, srv)
	w := doRequest(t, srv, http.MethodGet, "/api/orders?hours=soon", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRoomsAndTables(t *testing.T) {
	srv, _ := testServer(t)
	token := login(t, srv)

	w := doRequest(t, srv, http.MethodGet, "/api/rooms", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("rooms: status = %d", w.Code)
	}
	var rooms []models.Room
	if err := json.Unmarshal(w.Body.Bytes(), &rooms); err != nil {
		t.Fatal(err)
	}
	if len(rooms) != 1 {
		t.Fatalf("rooms = %+v", rooms)
	}

	w = doRequest(t, srv, http.MethodGet, "/api/rooms/2/tables", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("empty room: status = %d", w.Code)
	}
	var tables []models.Table
	if err := json.Unmarshal(w.Body.Bytes(), &tables); err != nil {
		t.Fatal(err)
	}
	if len(tables) != 0 {
		t.Fatalf("tables of unknown room = %+v", tables)
	}
}
