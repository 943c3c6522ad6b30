package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/geocoder89/secondserve/internal/auth"
	"github.com/geocoder89/secondserve/internal/config"
	"github.com/geocoder89/secondserve/internal/db"
	"github.com/geocoder89/secondserve/internal/domain/order"
	apphttp "github.com/geocoder89/secondserve/internal/http"
	"github.com/geocoder89/secondserve/internal/http/middlewares"
	"github.com/geocoder89/secondserve/internal/repo/memory"
	"github.com/geocoder89/secondserve/internal/repo/postgres"
	"github.com/geocoder89/secondserve/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "admin-pass-123"
)

type storeSet struct {
	users     service.UserStore
	donations service.DonationStore
	orders    service.OrderStore
}

func testConfig() config.Config {
	return config.Config{
		Env:         "test",
		StoreDriver: "memory",
		JWTSecret:   "test-secret-key",
		JWTTTLHours: 24 * 7,
		CORSOrigins: []string{"*"},
	}
}

func memoryStores(t *testing.T) storeSet {
	t.Helper()
	mem := memory.NewDB()
	return storeSet{
		users:     memory.NewUsersRepo(mem),
		donations: memory.NewDonationsRepo(mem),
		orders:    memory.NewOrdersRepo(mem),
	}
}

// postgresStores needs TEST_DB_DSN; every table is truncated first.
func postgresStores(t *testing.T) storeSet {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, db.PoolConfig{URL: dsn, MaxConns: 4})
	if err != nil {
		t.Fatalf("Failed to create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	if _, err := pool.Exec(ctx, `TRUNCATE orders, donations, users CASCADE`); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	return storeSet{
		users:     postgres.NewUsersRepo(pool, nil),
		donations: postgres.NewDonationsRepo(pool, nil),
		orders:    postgres.NewOrdersRepo(pool, nil),
	}
}

func newRouter(t *testing.T, st storeSet, policy order.Policy, limiter middlewares.Limiter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())
	accounts := service.NewAccounts(st.users, tokens)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := accounts.EnsureAdmin(ctx, testAdminEmail, testAdminPassword, "Test Admin"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}

	return apphttp.NewRouter(cfg, apphttp.Deps{
		Accounts:    accounts,
		Gate:        service.NewGate(st.users, tokens),
		Donations:   service.NewDonations(st.donations),
		Orders:      service.NewOrders(st.orders, st.donations, policy),
		Stats:       service.NewStats(st.users, st.donations, st.orders),
		AuthLimiter: limiter,
	})
}

// helpers

func doRequest(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reader)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, want, w.Body.String())
	}
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

type sessionResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	} `json:"user"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func register(t *testing.T, router http.Handler, email, name, role string) sessionResponse {
	t.Helper()

	body := `{"email":"` + email + `","password":"secret123","name":"` + name + `","role":"` + role + `"}`
	w := doRequest(router, http.MethodPost, "/api/auth/register", "", body)
	expectStatus(t, w, http.StatusOK)

	var resp sessionResponse
	mustReadJSON(t, w, &resp)
	return resp
}

func login(t *testing.T, router http.Handler, email, password string) sessionResponse {
	t.Helper()

	body := `{"email":"` + email + `","password":"` + password + `"}`
	w := doRequest(router, http.MethodPost, "/api/auth/login", "", body)
	expectStatus(t, w, http.StatusOK)

	var resp sessionResponse
	mustReadJSON(t, w, &resp)
	return resp
}
