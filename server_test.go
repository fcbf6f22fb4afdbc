package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/invoices_backend/actions"
	"github.com/mmdatafocus/invoices_backend/config"
	"github.com/mmdatafocus/invoices_backend/models"
	"github.com/mmdatafocus/invoices_backend/utils"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
)

const listingKey = "View:/dashboard/invoices#0"

var testDay = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*gin.Engine, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := config.OpenDatabase(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), config.DatabaseConfig{})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	views := utils.NewViewCache(client, time.Minute)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	invoiceActions := actions.NewInvoiceActions(models.NewGormInvoiceStore(db), views, utils.FixedClock(testDay), logger)

	return newRouter(config.Config{}, logger, invoiceActions, views), mock, mr
}

func postForm(r http.Handler, method, target string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func invoiceValues(customerId, amount, status string) url.Values {
	return url.Values{
		"customerId": {customerId},
		"amount":     {amount},
		"status":     {status},
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCreateInvoiceRoute_RedirectsAndRevalidates(t *testing.T) {
	r, mock, mr := newTestServer(t)
	require.NoError(t, mr.Set(listingKey, `{"invoices":[]}`))

	mock.ExpectExec("INSERT INTO invoices \\(customer_id, amount, status, date\\)").
		WithArgs("c1", int64(1999), "pending", "2026-10-19").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := postForm(r, http.MethodPost, "/dashboard/invoices", invoiceValues("c1", "19.99", "pending"))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard/invoices", w.Header().Get("Location"))
	assert.False(t, mr.Exists(listingKey))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInvoiceRoute_ValidationErrors(t *testing.T) {
	r, mock, mr := newTestServer(t)
	require.NoError(t, mr.Set(listingKey, `{"invoices":[]}`))

	w := postForm(r, http.MethodPost, "/dashboard/invoices", invoiceValues("c1", "0", "archived"))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, map[string]any{
		"errors": map[string]any{
			"amount": []any{"Please enter an amount greater than $0."},
			"status": []any{"Please select an invoice status."},
		},
		"message": "Missing Fields: Failed to Create Invoice",
	}, decodeBody(t, w))
	assert.True(t, mr.Exists(listingKey))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInvoiceRoute_StoreFailure(t *testing.T) {
	r, mock, mr := newTestServer(t)
	require.NoError(t, mr.Set(listingKey, `{"invoices":[]}`))

	mock.ExpectExec("INSERT INTO invoices").WillReturnError(errors.New("deadlock"))

	w := postForm(r, http.MethodPost, "/dashboard/invoices", invoiceValues("c1", "10", "paid"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
	assert.Equal(t, map[string]any{"message": "Database Error: Failed to Create Invoice."}, decodeBody(t, w))
	assert.True(t, mr.Exists(listingKey))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateInvoiceRoute(t *testing.T) {
	r, mock, _ := newTestServer(t)

	mock.ExpectExec("UPDATE invoices SET customer_id = \\?, amount = \\?, status = \\? WHERE id = \\?").
		WithArgs("c2", int64(500), "paid", "inv1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := postForm(r, http.MethodPut, "/dashboard/invoices/inv1/edit", invoiceValues("c2", "5", "paid"))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard/invoices", w.Header().Get("Location"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateInvoiceRoute_StoreFailure(t *testing.T) {
	r, mock, _ := newTestServer(t)

	mock.ExpectExec("UPDATE invoices").WillReturnError(errors.New("gone away"))

	w := postForm(r, http.MethodPost, "/dashboard/invoices/inv1/edit", invoiceValues("c2", "5", "paid"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, map[string]any{"message": "Database Error: Failed to Update Invoice."}, decodeBody(t, w))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteInvoiceRoute(t *testing.T) {
	r, mock, mr := newTestServer(t)
	require.NoError(t, mr.Set(listingKey, `{"invoices":[]}`))

	mock.ExpectExec("DELETE FROM invoices WHERE id = \\?").
		WithArgs("inv1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	req := httptest.NewRequest(http.MethodDelete, "/dashboard/invoices/inv1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
	assert.Equal(t, map[string]any{"message": "Invoice Deleted"}, decodeBody(t, w))
	assert.False(t, mr.Exists(listingKey))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteInvoiceRoute_StoreFailure(t *testing.T) {
	r, mock, _ := newTestServer(t)

	mock.ExpectExec("DELETE FROM invoices").WillReturnError(errors.New("read only"))

	w := postForm(r, http.MethodPost, "/dashboard/invoices/inv1/delete", url.Values{})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, map[string]any{"message": "Database Error: Failed to Delete Invoice."}, decodeBody(t, w))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListInvoicesRoute_CachesUntilRevalidated(t *testing.T) {
	r, mock, mr := newTestServer(t)
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT \\* FROM `invoices`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "amount", "status", "date"}).
			AddRow("inv1", "c1", int64(1999), "pending", day))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/invoices", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "miss", w.Header().Get("X-View-Cache"))
	expected := map[string]any{
		"invoices": []any{map[string]any{
			"id":          "inv1",
			"customer_id": "c1",
			"amount":      float64(1999),
			"status":      "pending",
			"date":        "2026-10-19",
		}},
	}
	assert.Equal(t, expected, decodeBody(t, w))
	assert.True(t, mr.Exists(listingKey))

	// second render comes from the cache, no query expected
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/invoices", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hit", w.Header().Get("X-View-Cache"))
	assert.Equal(t, expected, decodeBody(t, w))

	mock.ExpectExec("DELETE FROM invoices").WillReturnResult(sqlmock.NewResult(0, 1))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/dashboard/invoices/inv1", nil))
	assert.False(t, mr.Exists(listingKey))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListInvoicesRoute_RenderFromBeforeWriteIsNotServed(t *testing.T) {
	r, mock, mr := newTestServer(t)
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	views := utils.NewViewCache(client, time.Minute)
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	// a listing request misses and reads the table while it is still empty
	var missed invoiceListView
	version, hit, err := views.Load(ctx, models.InvoicesPath, &missed)
	require.NoError(t, err)
	require.False(t, hit)

	mock.ExpectExec("INSERT INTO invoices").WillReturnResult(sqlmock.NewResult(0, 1))
	w := postForm(r, http.MethodPost, "/dashboard/invoices", invoiceValues("c1", "19.99", "pending"))
	require.Equal(t, http.StatusSeeOther, w.Code)

	// its store lands after the create revalidated the listing
	require.NoError(t, views.Store(ctx, models.InvoicesPath, version, invoiceListView{Invoices: []invoiceView{}}))

	mock.ExpectQuery("SELECT \\* FROM `invoices`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "amount", "status", "date"}).
			AddRow("inv1", "c1", int64(1999), "pending", day))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/invoices", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "miss", w.Header().Get("X-View-Cache"))
	body := decodeBody(t, w)
	require.Len(t, body["invoices"], 1)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/invoices", nil))
	assert.Equal(t, "hit", w.Header().Get("X-View-Cache"))
	assert.Equal(t, body, decodeBody(t, w))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetInvoiceRoute_NotFound(t *testing.T) {
	r, mock, _ := newTestServer(t)

	mock.ExpectQuery("SELECT \\* FROM `invoices` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "amount", "status", "date"}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard/invoices/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthzAndMetrics(t *testing.T) {
	r, _, _ := newTestServer(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "invoices_http_request_duration_seconds")
}
