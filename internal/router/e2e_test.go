//go:build integration

package router

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storepos/internal/config"
	"storepos/internal/dto"
	"storepos/internal/infra"
	"storepos/internal/permission"
	"storepos/internal/repository"
	"storepos/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := do(t, e.server, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": username, "password": password}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:15-alpine",
		tcPostgres.WithDatabase("storepos_test"),
		tcPostgres.WithUsername("storepos"),
		tcPostgres.WithPassword("storepos"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		PDFStoragePath:     t.TempDir(),
		StoreName:          "Test Store",
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// seed the admin through the service so hashing stays in one place
	authSvc := service.NewAuthService(repository.NewUserRepository(db), cfg)
	_, err = authSvc.CreateUser(ctx, permission.RoleAdmin, dto.CreateUserRequest{
		Username: "admin", Name: "Admin E2E", Password: "storepos2026", Role: "admin",
	})
	require.NoError(t, err)

	mailerCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	srv := httptest.NewServer(New(cfg, db, rdb, mailerCB))
	t.Cleanup(srv.Close)

	env := &testEnv{server: srv}
	env.token = env.login(t, "admin", "storepos2026")
	return env
}

func (e *testEnv) createProduct(t *testing.T, barcode string, initialShelf int) string {
	t.Helper()
	resp := do(t, e.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{
			"barcode":             barcode,
			"name":                "Cola 500ml " + barcode,
			"category":            "drinks",
			"cost":                1.2,
			"price":               2.5,
			"initial_shelf_stock": initialShelf,
			"min_shelf_stock":     5,
		}),
		e.token,
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prod)
	return prod.ID
}

func (e *testEnv) getProduct(t *testing.T, id string) (shelf, warehouse int) {
	t.Helper()
	resp := do(t, e.server, "GET", "/v1/products/"+id, nil, e.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var prod struct {
		ShelfStock     int `json:"shelf_stock"`
		WarehouseStock int `json:"warehouse_stock"`
	}
	decodeJSON(t, resp, &prod)
	return prod.ShelfStock, prod.WarehouseStock
}

func TestFullRetailCycle(t *testing.T) {
	env := setupTestEnv(t)

	// supplier
	supResp := do(t, env.server, "POST", "/v1/suppliers",
		jsonBody(t, map[string]any{"name": "Drinks Wholesale"}), env.token)
	require.Equal(t, http.StatusCreated, supResp.StatusCode)
	var supplier struct {
		ID string `json:"id"`
	}
	decodeJSON(t, supResp, &supplier)

	// product with 20 on the shelf
	prodID := env.createProduct(t, "7790001000001", 20)

	// purchase order: draft -> lines -> approve -> receive
	poResp := do(t, env.server, "POST", "/v1/purchases",
		jsonBody(t, map[string]any{"name": "June restock", "supplier_id": supplier.ID}), env.token)
	require.Equal(t, http.StatusCreated, poResp.StatusCode)
	var po struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeJSON(t, poResp, &po)
	require.Equal(t, "draft", po.Status)

	linesResp := do(t, env.server, "PUT", "/v1/purchases/"+po.ID+"/lines",
		jsonBody(t, map[string]any{
			"lines": []map[string]any{
				{"product_id": prodID, "quantity": 30, "unit_price": 1.1},
			},
		}), env.token)
	require.Equal(t, http.StatusOK, linesResp.StatusCode)
	linesResp.Body.Close()

	approveResp := do(t, env.server, "POST", "/v1/purchases/"+po.ID+"/approve", nil, env.token)
	require.Equal(t, http.StatusOK, approveResp.StatusCode)
	approveResp.Body.Close()

	receiveResp := do(t, env.server, "POST", "/v1/purchases/"+po.ID+"/receive", nil, env.token)
	require.Equal(t, http.StatusOK, receiveResp.StatusCode)
	receiveResp.Body.Close()

	shelf, warehouse := env.getProduct(t, prodID)
	assert.Equal(t, 20, shelf)
	assert.Equal(t, 30, warehouse)

	// a second receive must conflict and not double-book
	again := do(t, env.server, "POST", "/v1/purchases/"+po.ID+"/receive", nil, env.token)
	assert.Equal(t, http.StatusConflict, again.StatusCode)
	again.Body.Close()
	_, warehouse = env.getProduct(t, prodID)
	assert.Equal(t, 30, warehouse)

	// move 10 from warehouse to shelf
	transferResp := do(t, env.server, "POST", "/v1/stock/transfer",
		jsonBody(t, map[string]any{
			"product_id": prodID, "quantity": 10,
			"from": "warehouse", "to": "shelf", "reason": "restock shelf",
		}), env.token)
	require.Equal(t, http.StatusNoContent, transferResp.StatusCode)
	transferResp.Body.Close()

	shelf, warehouse = env.getProduct(t, prodID)
	require.Equal(t, 30, shelf)
	require.Equal(t, 20, warehouse)

	// checkout 3 units
	saleResp := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"lines": []map[string]any{{"product_id": prodID, "quantity": 3}},
			"paid":  10,
		}), env.token)
	require.Equal(t, http.StatusCreated, saleResp.StatusCode)
	var sale struct {
		ID     string `json:"id"`
		Total  string `json:"total"`
		Change string `json:"change"`
	}
	decodeJSON(t, saleResp, &sale)
	assert.Equal(t, "7.5", sale.Total)

	shelf, _ = env.getProduct(t, prodID)
	require.Equal(t, 27, shelf)

	// refund restores the shelf
	refundResp := do(t, env.server, "POST", "/v1/sales/"+sale.ID+"/refund",
		jsonBody(t, map[string]any{"reason": "customer returned unopened"}), env.token)
	require.Equal(t, http.StatusOK, refundResp.StatusCode)
	refundResp.Body.Close()

	shelf, _ = env.getProduct(t, prodID)
	assert.Equal(t, 30, shelf)

	// refunding twice conflicts
	twice := do(t, env.server, "POST", "/v1/sales/"+sale.ID+"/refund",
		jsonBody(t, map[string]any{"reason": "again"}), env.token)
	assert.Equal(t, http.StatusConflict, twice.StatusCode)
	twice.Body.Close()

	// the ledger kept every step
	histResp := do(t, env.server, "GET", "/v1/products/"+prodID+"/history", nil, env.token)
	require.Equal(t, http.StatusOK, histResp.StatusCode)
	var hist struct {
		Total int64 `json:"total"`
	}
	decodeJSON(t, histResp, &hist)
	// initial_add, warehouse_in, transfer out+in, sale, refund
	assert.Equal(t, int64(6), hist.Total)
}

func TestRoleEnforcementOverHTTP(t *testing.T) {
	env := setupTestEnv(t)
	prodID := env.createProduct(t, "7790001000002", 10)

	// create a cashier and log in as them
	resp := do(t, env.server, "POST", "/v1/users",
		jsonBody(t, map[string]any{
			"username": "cajera", "name": "Ana", "password": "till1234", "role": "cashier",
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	cashierToken := env.login(t, "cajera", "till1234")

	// cashiers sell
	saleResp := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"lines": []map[string]any{{"product_id": prodID, "quantity": 1}},
			"paid":  5,
		}), cashierToken)
	assert.Equal(t, http.StatusCreated, saleResp.StatusCode)
	saleResp.Body.Close()

	// but cannot touch purchasing, stock or user management
	denied := []struct {
		method, path string
		body         *bytes.Buffer
	}{
		{"POST", "/v1/purchases", jsonBody(t, map[string]any{"name": "x", "supplier_id": prodID})},
		{"POST", "/v1/stock/adjust", jsonBody(t, map[string]any{
			"product_id": prodID, "balance": "shelf", "quantity": 1, "direction": "in", "reason": "x",
		})},
		{"GET", "/v1/reports/revenue", nil},
		{"POST", "/v1/users", jsonBody(t, map[string]any{
			"username": "x", "name": "x", "password": "xxxx", "role": "cashier",
		})},
	}
	for _, d := range denied {
		r := do(t, env.server, d.method, d.path, d.body, cashierToken)
		assert.Equal(t, http.StatusForbidden, r.StatusCode, "%s %s", d.method, d.path)
		r.Body.Close()
	}

	// the advisory check endpoint agrees with the enforcement above
	for action, want := range map[string]bool{"CHECKOUT": true, "CREATE_PO": false} {
		check := do(t, env.server, "GET", "/v1/permissions/check?action="+action, nil, cashierToken)
		assert.Equal(t, http.StatusOK, check.StatusCode)
		var body struct {
			Allowed bool `json:"allowed"`
		}
		decodeJSON(t, check, &body)
		assert.Equal(t, want, body.Allowed, action)
	}

	// no token at all is unauthorized
	anon := do(t, env.server, "GET", "/v1/products", nil, "")
	assert.Equal(t, http.StatusUnauthorized, anon.StatusCode)
	anon.Body.Close()
}

func TestInsufficientStockOverHTTP(t *testing.T) {
	env := setupTestEnv(t)
	prodID := env.createProduct(t, "7790001000003", 2)

	resp := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"lines": []map[string]any{{"product_id": prodID, "quantity": 5}},
			"paid":  100,
		}), env.token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	shelf, _ := env.getProduct(t, prodID)
	assert.Equal(t, 2, shelf)
}

func TestBarcodeLookupAndHealth(t *testing.T) {
	env := setupTestEnv(t)
	env.createProduct(t, "7790001000004", 5)

	// first hit fills the cache, second hit serves from it
	for i := 0; i < 2; i++ {
		resp := do(t, env.server, "GET", "/v1/barcode/7790001000004", nil, env.token)
		require.Equal(t, http.StatusOK, resp.StatusCode, "lookup %d", i)
		var prod struct {
			Barcode string `json:"barcode"`
		}
		decodeJSON(t, resp, &prod)
		assert.Equal(t, "7790001000004", prod.Barcode)
	}

	miss := do(t, env.server, "GET", "/v1/barcode/0000000000000", nil, env.token)
	assert.Equal(t, http.StatusNotFound, miss.StatusCode)
	miss.Body.Close()

	health := do(t, env.server, "GET", "/health", nil, "")
	require.Equal(t, http.StatusOK, health.StatusCode)
	var h struct {
		OK bool `json:"ok"`
	}
	decodeJSON(t, health, &h)
	assert.True(t, h.OK)
}
