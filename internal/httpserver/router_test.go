package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pos-backend/internal/domain"
	"pos-backend/internal/metrics"
	cartrepo "pos-backend/internal/repository/cart"
	"pos-backend/internal/repository/memory"
	cartsvc "pos-backend/internal/service/cart"
	categorysvc "pos-backend/internal/service/category"
	"pos-backend/internal/service/checkout"
	customersvc "pos-backend/internal/service/customer"
	productsvc "pos-backend/internal/service/product"
	reportsvc "pos-backend/internal/service/report"

	"github.com/gin-gonic/gin"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(_ context.Context) error {
	return s.err
}

type apiFixture struct {
	store   *memory.Store
	handler http.Handler
}

func newAPI(t *testing.T, ready map[string]Pinger) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memory.New()
	rec := metrics.New()
	committer := checkout.New(store, nil, nil, checkout.WithMetrics(rec))
	srv, err := New(":0", nil, Deps{
		Products:   productsvc.New(store.Products(), nil),
		Categories: categorysvc.New(store.Categories(), nil, nil),
		Carts:      cartsvc.New(cartrepo.NewMemory(time.Hour), store.Products(), committer, nil),
		Customers:  customersvc.New(store.Customers(), store.Sales(), nil, nil),
		Reports:    reportsvc.New(store.Sales(), store.Products(), reportsvc.Config{}, nil),
		Sales:      store.Sales(),
		Metrics:    rec,
		Ready:      ready,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &apiFixture{store: store, handler: srv.Handler()}
}

func (f *apiFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func (f *apiFixture) createProduct(t *testing.T, name, price string, stock int) string {
	t.Helper()
	body, _ := json.Marshal(map[string]interface{}{"name": name, "price": price, "stock": stock})
	rec := f.do(t, http.MethodPost, "/products", string(body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: status %d body %s", rec.Code, rec.Body.String())
	}
	var p domain.Product
	decode(t, rec, &p)
	return p.ID
}

func (f *apiFixture) cartWithLine(t *testing.T, productID string, qty int) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/carts", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create cart: status %d", rec.Code)
	}
	var ct struct {
		ID string `json:"id"`
	}
	decode(t, rec, &ct)
	body, _ := json.Marshal(map[string]interface{}{"productId": productID, "quantity": qty})
	rec = f.do(t, http.MethodPost, "/carts/"+ct.ID+"/lines", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("add line: status %d body %s", rec.Code, rec.Body.String())
	}
	return ct.ID
}

func TestHealthAndReadiness(t *testing.T) {
	api := newAPI(t, map[string]Pinger{"postgres": stubPinger{}, "redis": stubPinger{err: errors.New("down")}})

	if rec := api.do(t, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from healthz, got %d", rec.Code)
	}
	rec := api.do(t, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "redis") {
		t.Fatalf("expected redis readiness failure, got %d %s", rec.Code, rec.Body.String())
	}

	api = newAPI(t, map[string]Pinger{"postgres": stubPinger{}})
	if rec := api.do(t, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected ready, got %d", rec.Code)
	}
}

func TestProductEndpoints(t *testing.T) {
	api := newAPI(t, nil)
	id := api.createProduct(t, "Kopi Susu", "12500", 4)

	rec := api.do(t, http.MethodGet, "/products/"+id, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"price":"12500"`) {
		t.Fatalf("expected price encoded as string, got %d %s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodPost, "/products/"+id+"/restock", `{"quantity":6}`)
	var p domain.Product
	decode(t, rec, &p)
	if rec.Code != http.StatusOK || p.Stock != 10 {
		t.Fatalf("expected stock 10 after restock, got %d %+v", rec.Code, p)
	}

	rec = api.do(t, http.MethodPost, "/products/"+id+"/restock", `{"quantity":0}`)
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), "invalid_quantity") {
		t.Fatalf("expected invalid_quantity, got %d %s", rec.Code, rec.Body.String())
	}

	if rec := api.do(t, http.MethodPost, "/products", `{"name":`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}

	if rec := api.do(t, http.MethodDelete, "/products/"+id, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on archive, got %d", rec.Code)
	}
	rec = api.do(t, http.MethodGet, "/products", "")
	var list struct {
		Count int `json:"count"`
	}
	decode(t, rec, &list)
	if list.Count != 0 {
		t.Fatalf("archived product must be hidden, got %d", list.Count)
	}
	rec = api.do(t, http.MethodGet, "/products?includeArchived=true", "")
	decode(t, rec, &list)
	if list.Count != 1 {
		t.Fatalf("expected archived product with includeArchived, got %d", list.Count)
	}

	if rec := api.do(t, http.MethodGet, "/products/missing", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	api := newAPI(t, nil)
	api.createProduct(t, "Kopi", "18000", 2)

	rec := api.do(t, http.MethodGet, "/categories", "")
	var resp struct {
		Results []domain.Category `json:"results"`
	}
	decode(t, rec, &resp)
	if rec.Code != http.StatusOK || len(resp.Results) != len(categorysvc.DefaultPresets) {
		t.Fatalf("unexpected categories %d %s", rec.Code, rec.Body.String())
	}
	other := resp.Results[len(resp.Results)-1]
	if other.Name != domain.DefaultCategory || other.ProductCount != 1 || other.Stock != 2 {
		t.Fatalf("uncategorised product must count under %s, got %+v", domain.DefaultCategory, other)
	}
}

func TestCheckoutFlow(t *testing.T) {
	api := newAPI(t, nil)
	productID := api.createProduct(t, "Roti Bakar", "12500", 5)

	rec := api.do(t, http.MethodPost, "/customers", `{"name":"Sari","email":"sari@example.com"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create customer: %d %s", rec.Code, rec.Body.String())
	}
	var cust domain.Customer
	decode(t, rec, &cust)

	cartID := api.cartWithLine(t, productID, 3)

	rec = api.do(t, http.MethodPost, "/carts/"+cartID+"/commit", `{"tendered":"40000","cashierId":"till-1","customerId":"`+cust.ID+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("commit: status %d body %s", rec.Code, rec.Body.String())
	}
	var receipt checkout.Receipt
	decode(t, rec, &receipt)
	if receipt.Total.String() != "37500" || receipt.Change.String() != "2500" {
		t.Fatalf("unexpected receipt totals %s / %s", receipt.Total, receipt.Change)
	}
	if receipt.PaymentMethod != domain.PaymentCash {
		t.Fatalf("expected default cash payment, got %q", receipt.PaymentMethod)
	}
	if receipt.Customer == nil || receipt.Customer.PointsEarned != 37 {
		t.Fatalf("expected 37 points earned, got %+v", receipt.Customer)
	}

	p, err := api.store.Products().Get(context.Background(), productID)
	if err != nil || p.Stock != 2 {
		t.Fatalf("expected stock 2 after commit, got %+v err=%v", p, err)
	}
	if rec := api.do(t, http.MethodGet, "/carts/"+cartID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("committed cart must be gone, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodGet, "/sales/"+receipt.SaleID, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"pointsEarned":37`) {
		t.Fatalf("unexpected sale detail %d %s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodGet, "/customers/"+cust.ID+"/tier", "")
	var tier customersvc.TierInfo
	decode(t, rec, &tier)
	if tier.Name != "regular" || tier.Points != 37 || tier.NextTier != "silver" {
		t.Fatalf("unexpected tier info %+v", tier)
	}

	rec = api.do(t, http.MethodGet, "/customers/"+cust.ID+"/sales", "")
	var history struct {
		Count int `json:"count"`
	}
	decode(t, rec, &history)
	if history.Count != 1 {
		t.Fatalf("expected one sale in history, got %d", history.Count)
	}

	rec = api.do(t, http.MethodGet, "/reports/dashboard", "")
	var dash struct {
		TotalSales string `json:"totalSales"`
		TotalCount int    `json:"totalCount"`
	}
	decode(t, rec, &dash)
	if rec.Code != http.StatusOK || dash.TotalCount != 1 || dash.TotalSales != "37500" {
		t.Fatalf("unexpected dashboard %d %s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `pos_sale_commits_total{outcome="committed"} 1`) {
		t.Fatalf("expected committed counter in metrics output")
	}
}

func TestCommitStockConflict(t *testing.T) {
	api := newAPI(t, nil)
	productID := api.createProduct(t, "Es Teh", "5000", 5)
	first := api.cartWithLine(t, productID, 3)
	second := api.cartWithLine(t, productID, 3)

	if rec := api.do(t, http.MethodPost, "/carts/"+first+"/commit", `{"tendered":15000,"cashierId":"till-1"}`); rec.Code != http.StatusCreated {
		t.Fatalf("first commit: %d %s", rec.Code, rec.Body.String())
	}
	rec := api.do(t, http.MethodPost, "/carts/"+second+"/commit", `{"tendered":15000,"cashierId":"till-2"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d %s", rec.Code, rec.Body.String())
	}
	var resp errorResponse
	decode(t, rec, &resp)
	if resp.Code != "stock_conflict" || resp.ProductID != productID || resp.Available == nil || *resp.Available != 2 {
		t.Fatalf("unexpected conflict body %+v", resp)
	}
	if rec := api.do(t, http.MethodGet, "/carts/"+second, ""); rec.Code != http.StatusOK {
		t.Fatalf("failed commit must keep the cart, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodPost, "/carts/"+second+"/refresh", "")
	var refreshed struct {
		Adjustments []cartsvc.Adjustment `json:"adjustments"`
	}
	decode(t, rec, &refreshed)
	if len(refreshed.Adjustments) != 1 || refreshed.Adjustments[0].Quantity != 2 {
		t.Fatalf("expected quantity clamped to 2, got %+v", refreshed.Adjustments)
	}
}

func TestCartValidationErrors(t *testing.T) {
	api := newAPI(t, nil)
	productID := api.createProduct(t, "Nasi Goreng", "20000", 2)
	cartID := api.cartWithLine(t, productID, 1)

	rec := api.do(t, http.MethodPost, "/carts/"+cartID+"/lines", `{"productId":"`+productID+`","quantity":2}`)
	var resp errorResponse
	decode(t, rec, &resp)
	if rec.Code != http.StatusUnprocessableEntity || resp.Code != "insufficient_stock" || *resp.Available != 2 {
		t.Fatalf("expected insufficient_stock, got %d %+v", rec.Code, resp)
	}

	rec = api.do(t, http.MethodPost, "/carts/"+cartID+"/commit", `{"tendered":"100","cashierId":"till-1"}`)
	decode(t, rec, &resp)
	if rec.Code != http.StatusUnprocessableEntity || resp.Code != "insufficient_payment" {
		t.Fatalf("expected insufficient_payment, got %d %+v", rec.Code, resp)
	}

	rec = api.do(t, http.MethodPost, "/carts/"+cartID+"/commit", `{"tendered":"20000"}`)
	decode(t, rec, &resp)
	if resp.Code != "cashier_required" {
		t.Fatalf("expected cashier_required, got %+v", resp)
	}

	if rec := api.do(t, http.MethodPut, "/carts/"+cartID+"/lines/"+productID, `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without quantity, got %d", rec.Code)
	}
	if rec := api.do(t, http.MethodDelete, "/carts/"+cartID+"/lines/"+productID, ""); rec.Code != http.StatusOK {
		t.Fatalf("remove line: %d", rec.Code)
	}
	rec = api.do(t, http.MethodPost, "/carts/"+cartID+"/commit", `{"tendered":"0","cashierId":"till-1"}`)
	decode(t, rec, &resp)
	if resp.Code != "empty_cart" {
		t.Fatalf("expected empty_cart, got %+v", resp)
	}

	if rec := api.do(t, http.MethodDelete, "/carts/"+cartID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("cancel: %d", rec.Code)
	}
	if rec := api.do(t, http.MethodDelete, "/carts/"+cartID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second cancel must 404, got %d", rec.Code)
	}
}

func TestCommitOutcomeUnknown(t *testing.T) {
	api := newAPI(t, nil)
	productID := api.createProduct(t, "Mie Ayam", "15000", 3)
	cartID := api.cartWithLine(t, productID, 1)
	api.store.FailOn(memory.OpCommit, errors.New("connection reset"))

	rec := api.do(t, http.MethodPost, "/carts/"+cartID+"/commit", `{"tendered":"15000","cashierId":"till-1"}`)
	var resp errorResponse
	decode(t, rec, &resp)
	if rec.Code != http.StatusInternalServerError || resp.Code != "commit_outcome_unknown" {
		t.Fatalf("expected commit_outcome_unknown, got %d %+v", rec.Code, resp)
	}
	if strings.Contains(resp.Message, "connection reset") {
		t.Fatalf("storage detail leaked: %q", resp.Message)
	}
	if rec := api.do(t, http.MethodGet, "/carts/"+cartID, ""); rec.Code != http.StatusOK {
		t.Fatalf("cart must survive a failed commit, got %d", rec.Code)
	}
}

func TestReportParams(t *testing.T) {
	api := newAPI(t, nil)

	if rec := api.do(t, http.MethodGet, "/reports/summary?granularity=hourly", ""); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown granularity, got %d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, "/reports/summary?from=yesterday", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad from, got %d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, "/reports/summary?from=2024-06-10&to=2024-06-01", ""); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for inverted window, got %d", rec.Code)
	}
	rec := api.do(t, http.MethodGet, "/reports/summary?from=2024-06-01&to=2024-07-01&granularity=weekly", "")
	var sum struct {
		Buckets []string `json:"buckets"`
		Average string   `json:"average"`
	}
	decode(t, rec, &sum)
	if rec.Code != http.StatusOK || len(sum.Buckets) != 4 || sum.Average != "0" {
		t.Fatalf("unexpected empty weekly summary %d %s", rec.Code, rec.Body.String())
	}
	if rec := api.do(t, http.MethodGet, "/reports/top-products?limit=0", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero limit, got %d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, "/nowhere", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown route, got %d", rec.Code)
	}
}

func TestParseTimeParam(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	got, err := parseTimeParam("2024-06-01", jakarta)
	if err != nil {
		t.Fatalf("parseTimeParam: %v", err)
	}
	if !got.Equal(time.Date(2024, 5, 31, 17, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected local midnight, got %s", got)
	}
	if got, _ := parseTimeParam("", jakarta); !got.IsZero() {
		t.Fatalf("empty value must stay zero")
	}
	if _, err := parseTimeParam("2024-06-01T10:00:00Z", nil); err != nil {
		t.Fatalf("RFC 3339: %v", err)
	}
}

func TestCORSConfig(t *testing.T) {
	cfg := corsConfig([]string{"https://till.example.com", "*"})
	if !cfg.AllowAllOrigins || cfg.AllowOrigins != nil {
		t.Fatalf("wildcard must allow all origins, got %+v", cfg)
	}
	cfg = corsConfig([]string{"https://till.example.com"})
	if cfg.AllowAllOrigins || len(cfg.AllowOrigins) != 1 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
