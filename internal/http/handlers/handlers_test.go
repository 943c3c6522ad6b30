package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/secondserve/internal/apperr"
	"github.com/geocoder89/secondserve/internal/domain/donation"
	"github.com/geocoder89/secondserve/internal/domain/order"
	"github.com/geocoder89/secondserve/internal/domain/stats"
	"github.com/geocoder89/secondserve/internal/domain/user"
	"github.com/geocoder89/secondserve/internal/http/handlers"
	"github.com/geocoder89/secondserve/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuth resolves the bearer token "<role>" to a user holding that role.
type fakeAuth struct{}

func (fakeAuth) Authenticate(_ context.Context, token string) (user.User, error) {
	role, err := user.ParseRole(token)
	if err != nil {
		return user.User{}, apperr.ErrUnauthorized
	}
	return user.User{ID: "user-" + token, Name: token, Role: role}, nil
}

// Fake service implementations of the handler interfaces

type fakeDonations struct {
	createFn func(ctx context.Context, donor user.User, req donation.CreateRequest) (donation.Donation, error)
	listFn   func(ctx context.Context, requester user.User, status *donation.Status) ([]donation.Donation, error)
	getFn    func(ctx context.Context, id string) (donation.Donation, error)
}

func (f *fakeDonations) Create(ctx context.Context, donor user.User, req donation.CreateRequest) (donation.Donation, error) {
	if f.createFn != nil {
		return f.createFn(ctx, donor, req)
	}
	return donation.Donation{}, nil
}

func (f *fakeDonations) List(ctx context.Context, requester user.User, status *donation.Status) ([]donation.Donation, error) {
	if f.listFn != nil {
		return f.listFn(ctx, requester, status)
	}
	return nil, nil
}

func (f *fakeDonations) Get(ctx context.Context, id string) (donation.Donation, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return donation.Donation{}, nil
}

type fakeOrders struct {
	createFn        func(ctx context.Context, recipient user.User, req order.CreateRequest) (order.Order, error)
	listFn          func(ctx context.Context, requester user.User) ([]order.Order, error)
	listAvailableFn func(ctx context.Context, driver user.User) ([]order.Order, error)
	assignFn        func(ctx context.Context, driver user.User, orderID string) error
	updateStatusFn  func(ctx context.Context, orderID, newStatus string) error
}

func (f *fakeOrders) Create(ctx context.Context, recipient user.User, req order.CreateRequest) (order.Order, error) {
	if f.createFn != nil {
		return f.createFn(ctx, recipient, req)
	}
	return order.Order{}, nil
}

func (f *fakeOrders) List(ctx context.Context, requester user.User) ([]order.Order, error) {
	if f.listFn != nil {
		return f.listFn(ctx, requester)
	}
	return nil, nil
}

func (f *fakeOrders) ListAvailable(ctx context.Context, driver user.User) ([]order.Order, error) {
	if f.listAvailableFn != nil {
		return f.listAvailableFn(ctx, driver)
	}
	return nil, nil
}

func (f *fakeOrders) Assign(ctx context.Context, driver user.User, orderID string) error {
	if f.assignFn != nil {
		return f.assignFn(ctx, driver, orderID)
	}
	return nil
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, orderID, newStatus string) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, orderID, newStatus)
	}
	return nil
}

type fakeImpact struct {
	impactFn func(ctx context.Context) (stats.Impact, error)
}

func (f *fakeImpact) Impact(ctx context.Context) (stats.Impact, error) {
	return f.impactFn(ctx)
}

// small helper which mounts one authenticated handler per test
func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	auth := middlewares.NewAuthMiddleware(fakeAuth{})
	r.Handle(method, path, auth.RequireAuth(), h)
	return r
}

func perform(r *gin.Engine, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Error handlers.APIError `json:"error"`
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", order.ErrNotFound, http.StatusNotFound, "not_found"},
		{"not pending", order.ErrNotPending, http.StatusBadRequest, "invalid_state"},
		{"forbidden", errors.Join(errors.New("nope"), apperr.ErrForbidden), http.StatusForbidden, "forbidden"},
		{"conflict", user.ErrEmailTaken, http.StatusConflict, "conflict"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeOrders{
				assignFn: func(ctx context.Context, driver user.User, orderID string) error {
					return tc.err
				},
			}
			h := handlers.NewOrdersHandler(svc, nil)
			r := setupRouter(http.MethodPatch, "/orders/:id/assign", h.Assign)

			w := perform(r, http.MethodPatch, "/orders/o-1/assign", "driver", "")

			if w.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tc.wantStatus, w.Body.String())
			}

			var resp envelope
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal: %v", err)
			}
			if resp.Error.Code != tc.wantCode {
				t.Fatalf("got code %q, want %q", resp.Error.Code, tc.wantCode)
			}
			if tc.wantStatus == http.StatusInternalServerError && resp.Error.Message != "Could not assign order" {
				t.Fatalf("internal errors must not leak details, got %q", resp.Error.Message)
			}
		})
	}
}

func TestAssignPassesDriverAndOrderID(t *testing.T) {
	var gotDriver user.User
	var gotID string

	svc := &fakeOrders{
		assignFn: func(ctx context.Context, driver user.User, orderID string) error {
			gotDriver, gotID = driver, orderID
			return nil
		},
	}
	h := handlers.NewOrdersHandler(svc, nil)
	r := setupRouter(http.MethodPatch, "/orders/:id/assign", h.Assign)

	w := perform(r, http.MethodPatch, "/orders/o-42/assign", "driver", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
	if gotID != "o-42" || gotDriver.Role != user.RoleDriver {
		t.Fatalf("unexpected call: id=%q driver=%+v", gotID, gotDriver)
	}

	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["message"] == "" {
		t.Fatalf("expected a message, got %s", w.Body.String())
	}
}

func TestUpdateStatusSources(t *testing.T) {
	var got string
	svc := &fakeOrders{
		updateStatusFn: func(ctx context.Context, orderID, newStatus string) error {
			got = newStatus
			return nil
		},
	}
	h := handlers.NewOrdersHandler(svc, nil)
	r := setupRouter(http.MethodPatch, "/orders/:id/status", h.UpdateStatus)

	w := perform(r, http.MethodPatch, "/orders/o-1/status?new_status=in_transit", "recipient", "")
	if w.Code != http.StatusOK || got != "in_transit" {
		t.Fatalf("query form: status=%d got=%q", w.Code, got)
	}

	w = perform(r, http.MethodPatch, "/orders/o-1/status", "recipient", `{"status":"delivered"}`)
	if w.Code != http.StatusOK || got != "delivered" {
		t.Fatalf("body form: status=%d got=%q", w.Code, got)
	}

	w = perform(r, http.MethodPatch, "/orders/o-1/status", "recipient", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing status: got %d, want 400", w.Code)
	}
}

func TestListDonationsStatusFilter(t *testing.T) {
	var gotStatus *donation.Status

	svc := &fakeDonations{
		listFn: func(ctx context.Context, requester user.User, status *donation.Status) ([]donation.Donation, error) {
			gotStatus = status
			return nil, nil
		},
	}
	h := handlers.NewDonationsHandler(svc, nil)
	r := setupRouter(http.MethodGet, "/donations", h.List)

	w := perform(r, http.MethodGet, "/donations?status_filter=claimed", "driver", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
	if gotStatus == nil || *gotStatus != donation.StatusClaimed {
		t.Fatalf("expected claimed filter, got %v", gotStatus)
	}
	if w.Body.String() != "[]" {
		t.Fatalf("empty list should render [], got %s", w.Body.String())
	}

	w = perform(r, http.MethodGet, "/donations?status_filter=eaten", "driver", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad filter: got %d, want 400", w.Code)
	}
}

func TestCreateDonationValidation(t *testing.T) {
	called := false
	svc := &fakeDonations{
		createFn: func(ctx context.Context, donor user.User, req donation.CreateRequest) (donation.Donation, error) {
			called = true
			return donation.NewFromCreateRequest(donor, req), nil
		},
	}
	h := handlers.NewDonationsHandler(svc, nil)
	r := setupRouter(http.MethodPost, "/donations", h.Create)

	w := perform(r, http.MethodPost, "/donations", "donor", `{"food_type":"Soup"}`)
	if w.Code != http.StatusBadRequest || called {
		t.Fatalf("invalid body: status=%d called=%v", w.Code, called)
	}

	body := `{"food_type":"Soup","quantity":"3 litres","expiry_date":"2026-10-20T12:00","location":{"city":"Accra"}}`
	w = perform(r, http.MethodPost, "/donations", "donor", body)
	if w.Code != http.StatusOK || !called {
		t.Fatalf("valid body: status=%d body=%s", w.Code, w.Body.String())
	}

	var d donation.Donation
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if d.Status != donation.StatusAvailable || d.DonorID != "user-donor" || d.Location.City != "Accra" {
		t.Fatalf("unexpected donation: %+v", d)
	}
}

func TestCreateRequiresLocation(t *testing.T) {
	called := false
	donations := handlers.NewDonationsHandler(&fakeDonations{
		createFn: func(ctx context.Context, donor user.User, req donation.CreateRequest) (donation.Donation, error) {
			called = true
			return donation.Donation{}, nil
		},
	}, nil)
	orders := handlers.NewOrdersHandler(&fakeOrders{
		createFn: func(ctx context.Context, recipient user.User, req order.CreateRequest) (order.Order, error) {
			called = true
			return order.Order{}, nil
		},
	}, nil)

	tests := []struct {
		name  string
		path  string
		h     gin.HandlerFunc
		token string
		body  string
		field string
	}{
		{
			name:  "donation without pickup location",
			path:  "/donations",
			h:     donations.Create,
			token: "donor",
			body:  `{"food_type":"Soup","quantity":"3 litres","expiry_date":"2026-10-20T12:00"}`,
			field: "location",
		},
		{
			name:  "order without delivery location",
			path:  "/orders",
			h:     orders.Create,
			token: "recipient",
			body:  `{"donation_id":"d-1","dietary_preferences":["vegan"]}`,
			field: "delivery_location",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called = false
			r := setupRouter(http.MethodPost, tc.path, tc.h)

			w := perform(r, http.MethodPost, tc.path, tc.token, tc.body)
			if w.Code != http.StatusBadRequest || called {
				t.Fatalf("status=%d called=%v body=%s", w.Code, called, w.Body.String())
			}

			var resp struct {
				Error struct {
					Details struct {
						Fields []handlers.FieldError `json:"fields"`
					} `json:"details"`
				} `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal: %v", err)
			}

			fields := resp.Error.Details.Fields
			if len(fields) != 1 || fields[0].Field != tc.field || fields[0].Rule != "required" {
				t.Fatalf("expected a required error on %s, got %+v", tc.field, fields)
			}
		})
	}
}

func TestGetDonationETag(t *testing.T) {
	d := donation.Donation{ID: "d-1", Status: donation.StatusAvailable, CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := &fakeDonations{
		getFn: func(ctx context.Context, id string) (donation.Donation, error) {
			if id != d.ID {
				return donation.Donation{}, donation.ErrNotFound
			}
			return d, nil
		},
	}
	h := handlers.NewDonationsHandler(svc, nil)
	r := setupRouter(http.MethodGet, "/donations/:id", h.Get)

	w := perform(r, http.MethodGet, "/donations/d-1", "recipient", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected an ETag header")
	}
	if got := w.Header().Get("Cache-Control"); got != "private, no-cache" {
		t.Fatalf("authenticated reads must be private, got %q", got)
	}

	for _, inm := range []string{etag, `"stale", W/` + etag, "*"} {
		req := httptest.NewRequest(http.MethodGet, "/donations/d-1", nil)
		req.Header.Set("Authorization", "Bearer recipient")
		req.Header.Set("If-None-Match", inm)
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNotModified || w.Body.Len() != 0 {
			t.Fatalf("If-None-Match %s: got %d, want 304 with no body", inm, w.Code)
		}
		if w.Header().Get("ETag") != etag {
			t.Fatalf("304 should repeat the ETag")
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/donations/d-1", nil)
	req.Header.Set("Authorization", "Bearer recipient")
	req.Header.Set("If-None-Match", `"stale"`)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("stale If-None-Match: got %d, want 200", w.Code)
	}

	w = perform(r, http.MethodGet, "/donations/other", "recipient", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing donation: got %d, want 404", w.Code)
	}
}

func TestImpactIsPublic(t *testing.T) {
	h := handlers.NewStatsHandler(&fakeImpact{
		impactFn: func(ctx context.Context) (stats.Impact, error) {
			return stats.Impact{TotalMeals: 3, ActiveDonors: 2, CommunitiesServed: 1, CO2Saved: 7.5}, nil
		},
	})

	r := gin.New()
	r.GET("/stats", h.Impact)

	w := perform(r, http.MethodGet, "/stats", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}

	var got stats.Impact
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if got.TotalMeals != 3 || got.CO2Saved != 7.5 {
		t.Fatalf("unexpected impact: %+v", got)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, no-cache" {
		t.Fatalf("public stats should be revalidated by shared caches, got %q", cc)
	}
}

func TestReadyz(t *testing.T) {
	up := handlers.Check{Name: "postgres", Ping: func(ctx context.Context) error { return nil }}
	down := handlers.Check{Name: "redis", Ping: func(ctx context.Context) error { return errors.New("dial tcp: refused") }}

	r := gin.New()
	r.GET("/ok", handlers.NewHealthHandler(up).Readyz)
	r.GET("/bad", handlers.NewHealthHandler(up, down).Readyz)

	if w := perform(r, http.MethodGet, "/ok", "", ""); w.Code != http.StatusOK {
		t.Fatalf("ready: got %d", w.Code)
	}
	if w := perform(r, http.MethodGet, "/bad", "", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("not ready: got %d", w.Code)
	}
}
