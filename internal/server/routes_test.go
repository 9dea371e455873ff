package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/database"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/middleware"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/repository"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminKey = "admin-key"

type stubPrices struct {
	mu       sync.Mutex
	snapshot *models.PriceSnapshot
	forced   []bool
}

func (s *stubPrices) Current() *models.PriceSnapshot { return s.snapshot }

func (s *stubPrices) Refresh(ctx context.Context, forced bool) models.RefreshResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forced = append(s.forced, forced)
	return models.RefreshResult{Success: true, Data: s.snapshot, Sources: []models.SourceReport{}}
}

type testServer struct {
	router *gin.Engine
	prices *stubPrices
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	prices := &stubPrices{snapshot: &models.PriceSnapshot{
		USDToLocal:    50000,
		Gold18ToLocal: 7000000,
		FiatPrices:    models.PriceMap{"USD": 50000},
		CryptoPrices:  models.PriceMap{"BTC": 2500000000},
		GoldPrices:    models.PriceMap{"GOLD18": 7000000},
		FetchedAt:     time.Now(),
	}}

	users := repository.NewUserRepository(db)
	ledger := repository.NewTransactionRepository(db)
	txService := services.NewTransactionService(ledger, prices)
	recorder := services.NewHistoryRecorder(users, ledger, repository.NewHistoryRepository(db), prices, zerolog.Nop())

	auth := middleware.NewAuth("test-secret", users)
	h := &middleware.Handlers{
		Transactions: txService,
		Prices:       prices,
		History:      recorder,
		Users:        users,
		AdminKey:     testAdminKey,
		Log:          zerolog.Nop(),
	}

	router := gin.New()
	RegisterRoutes(router, auth, h)
	ts := &testServer{router: router, prices: prices}

	w := ts.do(t, http.MethodPost, "/signup", gin.H{"email": "ali@example.com", "password": "secret1", "name": "Ali"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	ts.token = resp.Token
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func TestTransactionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/transactions", gin.H{
		"asset_symbol":       "btc",
		"quantity":           0.5,
		"buy_price_per_unit": 40000,
		"buy_currency":       "USD",
		"fees_toman":         100000,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Transaction models.Transaction `json:"transaction"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Transaction.ID
	assert.Equal(t, "BTC", created.Transaction.AssetSymbol)

	w = ts.do(t, http.MethodGet, "/transactions/"+id, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var details models.TransactionDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	assert.Equal(t, 1000100000.0, details.CostLocal)
	assert.Equal(t, 1250000000.0, details.CurrentValue)

	w = ts.do(t, http.MethodGet, "/portfolio/summary", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary models.PortfolioSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	require.Len(t, summary.Assets, 1)
	assert.Equal(t, 249900000.0, summary.TotalPnlLocal)

	w = ts.do(t, http.MethodGet, "/portfolio/performance", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var perf models.Performance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &perf))
	require.NotNil(t, perf.TopGainer)
	assert.Equal(t, "BTC", perf.TopGainer.Symbol)

	w = ts.do(t, http.MethodPut, "/transactions/"+id, gin.H{
		"asset_symbol": "BTC", "quantity": 1, "buy_price_per_unit": 40000, "buy_currency": "USD",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/transactions", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Transactions []models.Transaction `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Transactions, 1)
	assert.Equal(t, 1.0, list.Transactions[0].Quantity)

	w = ts.do(t, http.MethodDelete, "/transactions/"+id, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodGet, "/transactions/"+id, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTransaction_Invalid(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/transactions", gin.H{"asset_symbol": "BTC", "quantity": -1, "buy_price_per_unit": 1}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/transactions", gin.H{
		"asset_symbol": "BTC", "quantity": 1, "buy_price_per_unit": 1, "buy_currency": "EUR",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	ts := newTestServer(t)
	ts.token = ""

	for _, path := range []string{"/transactions", "/prices", "/portfolio/summary"} {
		w := ts.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRefreshPrices_ForcedNeedsAdmin(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/prices/refresh", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/prices/refresh", gin.H{"forced": true}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPost, "/prices/refresh", gin.H{"forced": true}, map[string]string{"Admin-Key": testAdminKey})
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/admin/prices/refresh", nil, map[string]string{"Admin-Key": testAdminKey})
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []bool{false, true, true}, ts.prices.forced)

	var res models.RefreshResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, 50000.0, res.Data.USDToLocal)
}

func TestPortfolioHistory(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/portfolio/history", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, "empty portfolio records nothing")

	w = ts.do(t, http.MethodPost, "/transactions", gin.H{
		"asset_symbol": "GOLD18", "quantity": 2, "buy_price_per_unit": 6500000,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/portfolio/history", nil, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/portfolio/history?period=week", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		History []models.PortfolioHistory `json:"history"`
		Chart   models.PortfolioChartData `json:"chart"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.History, 1)
	assert.Equal(t, 14000000.0, resp.History[0].TotalValue)
	assert.Equal(t, []float64{14000000}, resp.Chart.Values)

	w = ts.do(t, http.MethodGet, "/portfolio/history?period=century", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminUsers(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/admin/users", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/admin/users", nil, map[string]string{"Admin-Key": testAdminKey})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ali@example.com")
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRecordHistory_DefaultPricesUnavailable(t *testing.T) {
	ts := newTestServer(t)
	ts.prices.snapshot = services.DefaultSnapshot(time.Now())

	w := ts.do(t, http.MethodPost, "/transactions", gin.H{
		"asset_symbol": "USD", "quantity": 100, "buy_price_per_unit": 90000,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/portfolio/history", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
