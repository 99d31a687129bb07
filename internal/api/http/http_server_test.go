package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nilzex/exchange/internal/adapter/in_memory"
	"github.com/nilzex/exchange/internal/analytics"
	"github.com/nilzex/exchange/internal/api/dto"
	"github.com/nilzex/exchange/internal/core"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := in_memory.NewMemoryRepo()
	eng := core.NewEngine(repo, in_memory.NewCache(), nil, nil, core.Config{})
	srv := NewHTTPServer(eng, analytics.NewAnalyzer(repo), repo, nil, nil)
	return srv.Router()
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response: %v\n%s", err, w.Body.String())
		}
	}
	return w
}

func TestStatusEndpoint(t *testing.T) {
	r := newTestServer(t)
	w := doJSON(t, r, http.MethodGet, "/api/v1/status", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestPlaceOrderEndpointValidation(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/trading/orders", map[string]any{
		"symbol": "AAPL", "side": "BUY", "price": "0", "quantity": 10, "user_id": 1,
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("zero price: status = %d, want 400", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/trading/orders", map[string]any{
		"symbol": "AAPL", "side": "SHORT", "price": "10.00", "quantity": 10, "user_id": 1,
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad side: status = %d, want 400", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/trading/orders", map[string]any{
		"symbol": "AAPL", "side": "BUY", "price": "10.00", "user_id": 1,
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing quantity: status = %d, want 400", w.Code)
	}
}

func TestTradingFlowEndToEnd(t *testing.T) {
	r := newTestServer(t)

	var o dto.Order
	w := doJSON(t, r, http.MethodPost, "/api/trading/orders", map[string]any{
		"symbol": "AAPL", "side": "buy", "price": "150.00", "quantity": 100, "user_id": 1,
	}, &o)
	if w.Code != http.StatusOK {
		t.Fatalf("place buy: status = %d: %s", w.Code, w.Body.String())
	}
	if o.Status != "OPEN" || o.Kind != "LIMIT" {
		t.Fatalf("order = %+v, want OPEN LIMIT", o)
	}

	doJSON(t, r, http.MethodPost, "/api/trading/orders", map[string]any{
		"symbol": "AAPL", "side": "SELL", "price": "150.50", "quantity": 80, "user_id": 4,
	}, nil)

	var match dto.MatchResponse
	doJSON(t, r, http.MethodPost, "/api/trading/match/AAPL", nil, &match)
	if match.TradesExecuted != 0 {
		t.Fatalf("uncrossed spread executed %d trades", match.TradesExecuted)
	}

	doJSON(t, r, http.MethodPost, "/api/trading/orders", map[string]any{
		"symbol": "AAPL", "side": "BUY", "price": "151.00", "quantity": 50, "user_id": 7,
	}, nil)

	doJSON(t, r, http.MethodPost, "/api/trading/match/AAPL", nil, &match)
	if match.TradesExecuted != 1 {
		t.Fatalf("trades executed = %d, want 1", match.TradesExecuted)
	}
	if len(match.RecentTrades) != 1 || match.RecentTrades[0].BuyerID != 7 || match.RecentTrades[0].SellerID != 4 {
		t.Fatalf("recent trades = %+v", match.RecentTrades)
	}

	var book dto.OrderBookResponse
	doJSON(t, r, http.MethodGet, "/api/trading/orderbook/AAPL", nil, &book)
	if len(book.SellOrders) != 1 || book.SellOrders[0].Filled != 50 {
		t.Fatalf("sell book = %+v, want one sell with filled=50", book.SellOrders)
	}
	if len(book.BuyOrders) != 1 {
		t.Fatalf("buy book = %+v, want the resting 150.00 bid", book.BuyOrders)
	}

	var orders []dto.Order
	doJSON(t, r, http.MethodGet, "/api/trading/orders/user/7", nil, &orders)
	if len(orders) != 1 || orders[0].Status != "COMPLETED" {
		t.Fatalf("user 7 orders = %+v, want one COMPLETED", orders)
	}

	// Plain-text analytics over the executed trade.
	req := httptest.NewRequest(http.MethodGet, "/api/trading/report/AAPL", nil)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK || !bytes.Contains(w2.Body.Bytes(), []byte("TRADE SUMMARY")) {
		t.Fatalf("report: %d %q", w2.Code, w2.Body.String())
	}
}

func TestDemoPopulateEndpoint(t *testing.T) {
	r := newTestServer(t)

	var seed dto.SeedResponse
	w := doJSON(t, r, http.MethodPost, "/api/trading/demo/populate", nil, &seed)
	if w.Code != http.StatusOK {
		t.Fatalf("populate: status = %d", w.Code)
	}
	if seed.OrdersCreated != 8 {
		t.Fatalf("orders created = %d, want 8", seed.OrdersCreated)
	}

	var book dto.OrderBookResponse
	doJSON(t, r, http.MethodGet, "/api/trading/orderbook/AAPL", nil, &book)
	if len(book.BuyOrders) != 3 || len(book.SellOrders) != 3 {
		t.Fatalf("AAPL book = %d/%d, want 3/3", len(book.BuyOrders), len(book.SellOrders))
	}
}

func TestAssetEndpoints(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/assets", map[string]any{
		"symbol": "aapl", "name": "Apple Inc.", "type": "STOCK", "currency": "USD", "exchange": "NASDAQ",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("create asset: status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/assets/AAPL", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get asset: status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/assets/MISSING", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing asset: status = %d, want 404", w.Code)
	}
}
