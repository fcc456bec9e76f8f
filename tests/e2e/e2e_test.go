//go:build integration

package e2e

// End-to-end integration tests using real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ciprianbratila/ortho-orders/internal/config"
	"github.com/ciprianbratila/ortho-orders/internal/infra"
	"github.com/ciprianbratila/ortho-orders/internal/model"
	"github.com/ciprianbratila/ortho-orders/internal/repository"
	"github.com/ciprianbratila/ortho-orders/internal/router"
	"github.com/ciprianbratila/ortho-orders/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

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

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
	engine *gin.Engine
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("ortholab_test"),
		tcPostgres.WithUsername("ortholab"),
		tcPostgres.WithPassword("ortholab"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
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
		CompanyName:        "OrthoLab E2E",
		VATPercent:         19.0,
		InvoiceDueDays:     15,
		PDFStoragePath:     t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	require.NoError(t, infra.RunMigrations(db))

	// Seed an admin group and user
	group := model.UserGroup{Name: "Administrators", Modules: model.AllModules()}
	require.NoError(t, db.Create(&group).Error)
	hash, err := bcrypt.GenerateFromPassword([]byte("ortholab2026"), bcrypt.MinCost)
	require.NoError(t, err)
	user := model.User{
		Username: "admin", FirstName: "Admin", LastName: "E2E",
		PasswordHash: string(hash), GroupID: group.ID, Active: true,
	}
	require.NoError(t, db.Create(&user).Error)

	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	dispatcher := worker.NewDispatcher(rdb)
	invoiceRepo := repository.NewInvoiceRepository(db)
	handlers := worker.Handlers{
		Invoice: worker.NewInvoiceWorker(invoiceRepo, dispatcher, cfg.CompanyName, cfg.PDFStoragePath),
		Email:   nil, // no SMTP in e2e; email jobs stay queued
	}
	workerCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)
	worker.StartWorkerPool(workerCtx, rdb, cfg.WorkerPoolSize, handlers)

	r := router.New(cfg, db, rdb, dispatcher, smtpCB)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "ortholab2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{
		server: srv,
		token:  loginBody.AccessToken,
		engine: r,
	}
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Full lab cycle: material → product → client → order → completion → invoice.
func TestE2E_FullOrderCycle(t *testing.T) {
	env := setupTestEnv(t)

	matResp := do(t, env.server, "POST", "/v1/materials",
		jsonBody(t, map[string]any{
			"name":           "Acrylic resin",
			"unit_price":     "10.00",
			"stock_quantity": "100",
		}), env.token)
	require.Equal(t, http.StatusCreated, matResp.StatusCode)
	var mat struct {
		ID string `json:"id"`
	}
	decodeJSON(t, matResp, &mat)

	prodResp := do(t, env.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{
			"kind":        "product",
			"name":        "Occlusal splint",
			"labor_price": "50.00",
			"components": []map[string]any{
				{"material_id": mat.ID, "quantity": "2"},
			},
		}), env.token)
	require.Equal(t, http.StatusCreated, prodResp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, prodResp, &prod)

	// Cost breakdown: 2 x 10 materials + 50 labor
	priceResp := do(t, env.server, "GET", "/v1/products/"+prod.ID+"/price", nil, env.token)
	require.Equal(t, http.StatusOK, priceResp.StatusCode)
	var price struct {
		MaterialCost string `json:"material_cost"`
		Total        string `json:"total"`
	}
	decodeJSON(t, priceResp, &price)
	assert.Equal(t, "20", price.MaterialCost)
	assert.Equal(t, "70", price.Total)

	clientResp := do(t, env.server, "POST", "/v1/clients",
		jsonBody(t, map[string]any{
			"first_name":  "Maria",
			"last_name":   "Ionescu",
			"national_id": "2850101223344",
			"phone":       "0722000000",
		}), env.token)
	require.Equal(t, http.StatusCreated, clientResp.StatusCode)
	var client struct {
		ID string `json:"id"`
	}
	decodeJSON(t, clientResp, &client)

	orderResp := do(t, env.server, "POST", "/v1/orders",
		jsonBody(t, map[string]any{
			"client_id":      client.ID,
			"payment_method": "cash",
			"advance":        "20.00",
			"items": []map[string]any{
				{"product_id": prod.ID, "quantity": 2},
			},
		}), env.token)
	require.Equal(t, http.StatusCreated, orderResp.StatusCode)
	var order struct {
		ID     string `json:"id"`
		Number string `json:"number"`
		Total  string `json:"total"`
		Status string `json:"status"`
	}
	decodeJSON(t, orderResp, &order)
	assert.Contains(t, order.Number, "CMD-")
	assert.Equal(t, "140", order.Total)
	assert.Equal(t, "new", order.Status)

	for _, status := range []string{"in_progress", "completed"} {
		resp := do(t, env.server, "PATCH", "/v1/orders/"+order.ID+"/status",
			jsonBody(t, map[string]string{"status": status}), env.token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	invResp := do(t, env.server, "POST", "/v1/invoices",
		jsonBody(t, map[string]any{"order_id": order.ID}), env.token)
	require.Equal(t, http.StatusCreated, invResp.StatusCode)
	var inv struct {
		Number    string `json:"number"`
		Subtotal  string `json:"subtotal"`
		VATAmount string `json:"vat_amount"`
		Total     string `json:"total"`
		Balance   string `json:"balance"`
	}
	decodeJSON(t, invResp, &inv)
	assert.Contains(t, inv.Number, "FACT-")
	assert.Equal(t, "140", inv.Subtotal)
	assert.Equal(t, "26.6", inv.VATAmount)
	assert.Equal(t, "166.6", inv.Total)
	assert.Equal(t, "146.6", inv.Balance)

	// A second invoice for the same order is a conflict
	dupResp := do(t, env.server, "POST", "/v1/invoices",
		jsonBody(t, map[string]any{"order_id": order.ID}), env.token)
	assert.Equal(t, http.StatusConflict, dupResp.StatusCode)
	dupResp.Body.Close()
}

// Duplicate composition is rejected unless forced.
func TestE2E_DuplicateComposition(t *testing.T) {
	env := setupTestEnv(t)

	matResp := do(t, env.server, "POST", "/v1/materials",
		jsonBody(t, map[string]any{"name": "Wire", "unit_price": "3.00"}), env.token)
	require.Equal(t, http.StatusCreated, matResp.StatusCode)
	var mat struct {
		ID string `json:"id"`
	}
	decodeJSON(t, matResp, &mat)

	body := func(name string, force bool) *bytes.Buffer {
		return jsonBody(t, map[string]any{
			"kind": "product", "name": name, "labor_price": "10.00",
			"components": []map[string]any{{"material_id": mat.ID, "quantity": "4"}},
			"force":      force,
		})
	}

	first := do(t, env.server, "POST", "/v1/products", body("Retainer", false), env.token)
	require.Equal(t, http.StatusCreated, first.StatusCode)
	first.Body.Close()

	second := do(t, env.server, "POST", "/v1/products", body("Retainer copy", false), env.token)
	assert.Equal(t, http.StatusConflict, second.StatusCode)
	second.Body.Close()

	forced := do(t, env.server, "POST", "/v1/products", body("Retainer copy", true), env.token)
	assert.Equal(t, http.StatusCreated, forced.StatusCode)
	forced.Body.Close()
}

// A material price change invalidates cached product prices.
func TestE2E_PriceCacheInvalidation(t *testing.T) {
	env := setupTestEnv(t)

	matResp := do(t, env.server, "POST", "/v1/materials",
		jsonBody(t, map[string]any{"name": "Plaster", "unit_price": "5.00"}), env.token)
	require.Equal(t, http.StatusCreated, matResp.StatusCode)
	var mat struct {
		ID string `json:"id"`
	}
	decodeJSON(t, matResp, &mat)

	prodResp := do(t, env.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{
			"kind": "product", "name": "Model cast", "labor_price": "0",
			"components": []map[string]any{{"material_id": mat.ID, "quantity": "2"}},
		}), env.token)
	require.Equal(t, http.StatusCreated, prodResp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, prodResp, &prod)

	// Prime the cache
	warm := do(t, env.server, "GET", "/v1/products/"+prod.ID+"/price", nil, env.token)
	require.Equal(t, http.StatusOK, warm.StatusCode)
	var before struct {
		Total string `json:"total"`
	}
	decodeJSON(t, warm, &before)
	assert.Equal(t, "10", before.Total)

	updResp := do(t, env.server, "PUT", "/v1/materials/"+mat.ID,
		jsonBody(t, map[string]any{"unit_price": "8.00"}), env.token)
	require.Equal(t, http.StatusOK, updResp.StatusCode)
	updResp.Body.Close()

	fresh := do(t, env.server, "GET", "/v1/products/"+prod.ID+"/price", nil, env.token)
	require.Equal(t, http.StatusOK, fresh.StatusCode)
	var after struct {
		Total string `json:"total"`
	}
	decodeJSON(t, fresh, &after)
	assert.Equal(t, "16", after.Total)

	// Price history recorded for the change
	histResp := do(t, env.server, "GET", "/v1/materials/"+mat.ID+"/price-history", nil, env.token)
	require.Equal(t, http.StatusOK, histResp.StatusCode)
	var hist []struct {
		OldPrice string `json:"old_price"`
		NewPrice string `json:"new_price"`
	}
	decodeJSON(t, histResp, &hist)
	require.Len(t, hist, 1)
	assert.Equal(t, "5", hist[0].OldPrice)
	assert.Equal(t, "8", hist[0].NewPrice)
}
