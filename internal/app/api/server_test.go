package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/propshare/exchange/internal/app/engine"
	memoryledger "github.com/propshare/exchange/internal/infrastructure/memory/ledger"
	memorymarketdata "github.com/propshare/exchange/internal/infrastructure/memory/marketdata"
	memoryorder "github.com/propshare/exchange/internal/infrastructure/memory/order"
	memorytrade "github.com/propshare/exchange/internal/infrastructure/memory/trade"
	"github.com/propshare/exchange/internal/usecase/fees"
	"github.com/propshare/exchange/internal/usecase/marketdata"
	"github.com/propshare/exchange/internal/usecase/matching"
	"github.com/propshare/exchange/internal/usecase/settlement"
	tradepublisher "github.com/propshare/exchange/internal/usecase/trade-publisher"
	"github.com/propshare/exchange/internal/usecase/validator"
	"github.com/propshare/exchange/pkg/config"
	"github.com/propshare/exchange/pkg/httplib/healthcheck"
	"github.com/propshare/exchange/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	handler http.Handler
	tokens  *memoryledger.TokenLedger
	cash    *memoryledger.CashLedger
	now     time.Time
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	log, err := logger.NewLogger()
	require.NoError(t, err)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	orders := memoryorder.NewRepository()
	trades := memorytrade.NewRepository()
	tokens := memoryledger.NewTokenLedger()
	cash := memoryledger.NewCashLedger()
	history := memorymarketdata.NewHistoryRepository()
	snapshots := memorymarketdata.NewSnapshotRepository()

	feeCalculator := fees.NewCalculator()
	settler := settlement.NewAdapter(tokens, cash, trades, log)
	aggregator := marketdata.NewAggregator(history, snapshots)
	matcher := matching.NewMatcher(feeCalculator, settler, aggregator, orders, log).WithClock(clock)

	eng := engine.NewEngine(
		validator.NewValidator(feeCalculator),
		matcher,
		feeCalculator,
		orders,
		trades,
		tokens,
		cash,
		snapshots,
		tradepublisher.NopPublisher{},
		log,
		&config.EngineConfig{ExpirySweepInterval: time.Minute},
	).WithClock(clock)

	server := NewServer(eng, healthcheck.New(), log, &config.AppConfig{HTTPPort: 0})

	return &apiFixture{
		handler: server.http.Handler,
		tokens:  tokens,
		cash:    cash,
		now:     now,
	}
}

func (f *apiFixture) request(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_PlaceOrder(t *testing.T) {
	f := newAPIFixture(t)
	require.NoError(t, f.cash.Credit(context.Background(), "alice", decimal.NewFromInt(1000)))

	rec := f.request(t, http.MethodPost, "/api/v1/orders", "alice", map[string]any{
		"instrumentID": "PROP-1",
		"side":         "buy",
		"kind":         "limit",
		"quantity":     10,
		"price":        "10.00",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var result engine.PlaceOrderResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotNil(t, result.Order)
	assert.Equal(t, "alice", result.Order.UserID)
	assert.Equal(t, "pending", string(result.Order.Status))
	assert.Empty(t, result.Fills)
}

func TestServer_PlaceOrder_MissingIdentity(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.request(t, http.MethodPost, "/api/v1/orders", "", map[string]any{
		"instrumentID": "PROP-1",
		"side":         "buy",
		"kind":         "limit",
		"quantity":     10,
		"price":        "10.00",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_PlaceOrder_ValidationErrors(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.request(t, http.MethodPost, "/api/v1/orders", "alice", map[string]any{
		"instrumentID": "PROP-1",
		"side":         "buy",
		"kind":         "limit",
		"quantity":     0,
		"price":        "0.50",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	var codes []string
	for _, e := range resp.Errors {
		codes = append(codes, e.Code)
	}
	assert.Contains(t, codes, "price_out_of_range")
	assert.Contains(t, codes, "quantity_out_of_range")
}

func TestServer_CancelOrder_Forbidden(t *testing.T) {
	f := newAPIFixture(t)
	require.NoError(t, f.cash.Credit(context.Background(), "alice", decimal.NewFromInt(1000)))

	rec := f.request(t, http.MethodPost, "/api/v1/orders", "alice", map[string]any{
		"instrumentID": "PROP-1",
		"side":         "buy",
		"kind":         "limit",
		"quantity":     10,
		"price":        "10.00",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var result engine.PlaceOrderResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	rec = f.request(t, http.MethodDelete, "/api/v1/orders/"+result.Order.ID, "bob", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.request(t, http.MethodDelete, "/api/v1/orders/"+result.Order.ID, "alice", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A second cancel hits a terminal order.
	rec = f.request(t, http.MethodDelete, "/api/v1/orders/"+result.Order.ID, "alice", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_GetOrderBook(t *testing.T) {
	f := newAPIFixture(t)
	require.NoError(t, f.cash.Credit(context.Background(), "alice", decimal.NewFromInt(1000)))

	rec := f.request(t, http.MethodPost, "/api/v1/orders", "alice", map[string]any{
		"instrumentID": "PROP-1",
		"side":         "buy",
		"kind":         "limit",
		"quantity":     10,
		"price":        "9.50",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.request(t, http.MethodGet, "/api/v1/instruments/PROP-1/book", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot struct {
		InstrumentID string `json:"instrumentID"`
		Bids         []struct {
			Quantity   int64 `json:"quantity"`
			OrderCount int   `json:"orderCount"`
		} `json:"bids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, "PROP-1", snapshot.InstrumentID)
	require.Len(t, snapshot.Bids, 1)
	assert.Equal(t, int64(10), snapshot.Bids[0].Quantity)
}

func TestServer_GetMarketData_NotFound(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.request(t, http.MethodGet, "/api/v1/instruments/PROP-1/market-data", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_GetUserTokenLots(t *testing.T) {
	f := newAPIFixture(t)
	_, err := f.tokens.Credit(context.Background(), "alice", "PROP-1", 25, decimal.NewFromInt(8), f.now.Add(-60*24*time.Hour))
	require.NoError(t, err)

	rec := f.request(t, http.MethodGet, "/api/v1/instruments/PROP-1/lots", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var lots []tokenLotView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lots))
	require.Len(t, lots, 1)
	assert.Equal(t, int64(25), lots[0].Quantity)
	assert.Equal(t, "8.00", lots[0].CostBasis)
	assert.True(t, lots[0].IsUnlocked)
}

func TestServer_RecentTradesAndOrderFills(t *testing.T) {
	f := newAPIFixture(t)
	require.NoError(t, f.cash.Credit(context.Background(), "alice", decimal.NewFromInt(1000)))
	_, err := f.tokens.Credit(context.Background(), "bob", "PROP-1", 10, decimal.NewFromInt(8), f.now.Add(-60*24*time.Hour))
	require.NoError(t, err)

	rec := f.request(t, http.MethodPost, "/api/v1/orders", "bob", map[string]any{
		"instrumentID": "PROP-1",
		"side":         "sell",
		"kind":         "limit",
		"quantity":     10,
		"price":        "10.00",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/v1/orders", "alice", map[string]any{
		"instrumentID": "PROP-1",
		"side":         "buy",
		"kind":         "limit",
		"quantity":     10,
		"price":        "10.00",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var result engine.PlaceOrderResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Fills, 1)

	rec = f.request(t, http.MethodGet, "/api/v1/instruments/PROP-1/trades", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var trades []struct {
		Price    string `json:"price"`
		Quantity int64  `json:"quantity"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trades))
	require.Len(t, trades, 1)
	assert.Equal(t, int64(10), trades[0].Quantity)

	// A bad limit is rejected.
	rec = f.request(t, http.MethodGet, "/api/v1/instruments/PROP-1/trades?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Fills are visible to the order's owner only.
	rec = f.request(t, http.MethodGet, "/api/v1/orders/"+result.Order.ID+"/fills", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fills []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fills))
	require.Len(t, fills, 1)

	rec = f.request(t, http.MethodGet, "/api/v1/orders/"+result.Order.ID+"/fills", "bob", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_HealthEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.request(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
}
