package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore-management/auditlog"
	"bookstore-management/bookstore"
	"bookstore-management/customers"
	"bookstore-management/reports"
	"bookstore-management/tickets"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()

	bookStore := bookstore.NewStore(filepath.Join(dir, "books.csv"))
	require.NoError(t, bookStore.EnsureFile())
	customerStore := customers.NewStore(filepath.Join(dir, "customers.csv"))
	require.NoError(t, customerStore.EnsureFile())
	ticketStore := tickets.NewStore(filepath.Join(dir, "tickets.csv"))
	require.NoError(t, ticketStore.EnsureFile())

	auditPath := filepath.Join(dir, "actions.log")
	audit := auditlog.NewLogger(auditPath)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(
		bookstore.NewLedger(bookStore, audit),
		customers.NewService(customerStore, audit),
		tickets.NewService(ticketStore),
		reports.NewEngine(auditlog.NewReader(auditPath)),
		logger,
		"",
	)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestBookCRUD(t *testing.T) {
	ts := testServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/books", map[string]any{
		"title": "1984", "author": "George Orwell", "quantity": 5, "price": "49,90",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	created := decode[bookstore.Book](t, resp)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, 49.9, created.Price)

	// Numeric price is accepted too, and the duplicate merges.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/books", map[string]any{
		"title": " 1984 ", "author": "george orwell", "quantity": 2, "price": 10,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	merged := decode[bookstore.Book](t, resp)
	assert.Equal(t, 1, merged.ID)
	assert.Equal(t, 7, merged.Quantity)
	assert.Equal(t, 49.9, merged.Price)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/books", nil)
	books := decode[[]bookstore.Book](t, resp)
	require.Len(t, books, 1)

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/books/1", map[string]any{
		"title": "1984", "author": "George Orwell", "quantity": 3, "price": "55.00",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[bookstore.Book](t, resp)
	assert.Equal(t, 3, updated.Quantity)

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/books/1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/books", nil)
	books = decode[[]bookstore.Book](t, resp)
	assert.Empty(t, books)
}

func TestBookErrors(t *testing.T) {
	ts := testServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/books", map[string]any{
		"title": "", "author": "Nobody",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/books/99", map[string]any{
		"title": "T", "author": "A", "price": "1",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/books/abc", map[string]any{
		"title": "T", "author": "A", "price": "1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/books/99", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPurchaseFlow(t *testing.T) {
	ts := testServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/api/books", map[string]any{
		"title": "Dune", "author": "Frank Herbert", "quantity": 2, "price": "64.90",
	})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/purchases", map[string]any{
		"title": "dune", "customer": "Ana Souza", "quantity": 1,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// More than remaining stock conflicts and changes nothing.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/purchases", map[string]any{
		"title": "Dune", "customer": "Bruno", "quantity": 5,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/books", nil)
	books := decode[[]bookstore.Book](t, resp)
	require.Len(t, books, 1)
	assert.Equal(t, 1, books[0].Quantity)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/purchases", map[string]any{
		"title": "Unknown", "customer": "Ana",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBlockedDeleteKeepsRow(t *testing.T) {
	ts := testServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/api/books", map[string]any{
		"title": "Sold Out", "author": "A", "quantity": 0, "price": "10",
	})

	resp := doJSON(t, http.MethodDelete, ts.URL+"/api/books/1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/books", nil)
	books := decode[[]bookstore.Book](t, resp)
	assert.Len(t, books, 1)
}

func TestCustomerRoutes(t *testing.T) {
	ts := testServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/customers", map[string]any{
		"name": "Ana Souza", "email": "ana@example.com",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/customers", map[string]any{
		"name": "ana souza", "email": "ANA@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/customers/1", map[string]any{
		"name": "Ana Maria", "email": "ana@example.com",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/customers/1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/customers", nil)
	all := decode[[]customers.Customer](t, resp)
	assert.Empty(t, all)
}

func TestTicketRoutes(t *testing.T) {
	ts := testServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/tickets", map[string]any{
		"title": "Damaged cover", "email": "ana@example.com", "priority": "high",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[tickets.Ticket](t, resp)
	assert.Equal(t, tickets.PriorityHigh, created.Priority)
	assert.Equal(t, tickets.StatusOpen, created.Status)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/tickets/1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/tickets", map[string]any{
		"title": "Bad email", "email": "nope",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/tickets/9", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReportEndpoint(t *testing.T) {
	ts := testServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/api/books", map[string]any{
		"title": "1984", "author": "George Orwell", "quantity": 5, "price": "49.90",
	})
	doJSON(t, http.MethodPost, ts.URL+"/api/purchases", map[string]any{
		"title": "1984", "customer": "Ana", "quantity": 2,
	})

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/report?kind=COMPRA", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[reports.Result](t, resp)
	require.Equal(t, 1, result.Totals.RowCount)
	assert.Equal(t, int64(2), result.Totals.UnitsSold)
	assert.Equal(t, "Ana", result.Rows[0].Customer)
	assert.Equal(t, "1984", result.Rows[0].Book)

	// Unparseable paging values fall back to defaults.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/report?page=x&size=y", nil)
	result = decode[reports.Result](t, resp)
	assert.Equal(t, 1, result.Pagination.Page)
	assert.Equal(t, reports.DefaultPageSize, result.Pagination.Size)
}

func TestRecoverRespondsWithJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), Recover(logger))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/books", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Error)
}

func TestInvalidJSONBody(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Post(ts.URL+"/api/books", "application/json", bytes.NewBufferString("{nope"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
