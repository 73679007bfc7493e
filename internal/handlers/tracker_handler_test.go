package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"order_tracker/internal/dates"
	"order_tracker/internal/export"
	"order_tracker/internal/logger"
	"order_tracker/internal/metrics"
	"order_tracker/internal/pricing"
	"order_tracker/internal/redis"
	"order_tracker/internal/repository"
	"order_tracker/internal/services"
	"order_tracker/pkg/source"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const pricesJSON = `{
  "free_minutes": 5,
  "whatsapp": "0812 3456",
  "backup_request_message": "Minta backup {{judul}}",
  "packages": [{"id": 2, "name": "Standard", "price": 150000, "overtime_rate": 10000, "buffer_fee": 15000,
                "deadline_tiers": [{"max_days": 2, "amount": 30000, "percent": 10}], "included_revisions": 2}]
}`

var wib = time.FixedZone("WIB", 7*3600)

type upstream struct {
	server      *httptest.Server
	sheetCalls  atomic.Int32
	noCacheSeen atomic.Bool
	csv         string
}

func newUpstream(t *testing.T, csv string) *upstream {
	t.Helper()
	u := &upstream{csv: csv}
	mux := http.NewServeMux()
	mux.HandleFunc("/sheet.csv", func(w http.ResponseWriter, r *http.Request) {
		u.sheetCalls.Add(1)
		if strings.Contains(r.Header.Get("Cache-Control"), "no-cache") {
			u.noCacheSeen.Store(true)
		}
		w.Write([]byte(u.csv))
	})
	mux.HandleFunc("/prices.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pricesJSON))
	})
	u.server = httptest.NewServer(mux)
	t.Cleanup(u.server.Close)
	return u
}

func kys(payload string) string {
	return "KYS-" + base64.RawURLEncoding.EncodeToString([]byte(payload))
}

func sheetCSV(finish string) string {
	return "Judul,Status Progres,Tanggal Order,Tanggal Selesai,Expired Backup,Status File,Code Projek,Code Order,Revisi\n" +
		`"Video A","Approved","2024-01-01","` + finish + `","-","File Tersedia","PRJ1","` + kys(`{"pid":2,"dur":8,"ddl":2}`) + `",1` + "\n" +
		`"Video B","Payment","2024-01-02","","-","File Tersedia","PRJ2","ORD-2",0` + "\n"
}

func setupRouter(t *testing.T, u *upstream) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	client := source.NewClient(5 * time.Second)
	sheetSource := source.NewSheet(client, u.server.URL+"/sheet.csv")
	pricingSource := source.NewPricing(client, u.server.URL+"/prices.json", "")
	reg := metrics.NewRegistry()

	logs := repository.NewMemoryLookupLogRepository(100)
	tracker := services.NewTrackerService(sheetSource, pricingSource, pricing.NewCalculator(), dates.NewFormatter(wib), logs, reg)
	backup := services.NewBackupService(pricingSource, nil, reg)
	lastInput := services.NewLastInputService(redis.NewMemoryStore(), time.Hour)

	audit := services.NewAuditService(logs, wib)

	h := NewTrackerHandler(tracker, backup, lastInput, audit, export.NewExporter(wib), services.NewSession(time.Hour))
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func do(r *gin.Engine, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func today() string {
	return time.Now().In(wib).Format("02/01/2006")
}

func TestLookupFound(t *testing.T) {
	u := newUpstream(t, sheetCSV("05/01/2024"))
	r := setupRouter(t, u)

	w := do(r, http.MethodPost, "/api/orders/lookup", LookupRequest{Code: kys(`{"pid":2,"dur":8,"ddl":2}`)})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "found", body["status"])
	assert.Equal(t, "ready", body["pricing_status"])
	order := body["order"].(map[string]any)
	assert.Equal(t, "Video A", order["title"])
	invoice := body["invoice"].(map[string]any)
	assert.EqualValues(t, 240000, invoice["subtotal"])
	assert.EqualValues(t, 240000, invoice["total"])
}

func TestLookupNotFoundIsNotAnError(t *testing.T) {
	r := setupRouter(t, newUpstream(t, sheetCSV("")))

	w := do(r, http.MethodPost, "/api/orders/lookup", LookupRequest{Code: "NOPE"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "not_found", decode(t, w)["status"])
}

func TestLookupErrors(t *testing.T) {
	r := setupRouter(t, newUpstream(t, sheetCSV("")))

	w := do(r, http.MethodPost, "/api/orders/lookup", LookupRequest{Code: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/lookup", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	down := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(down.Close)
	broken := setupRouter(t, &upstream{server: down})
	w = do(broken, http.MethodPost, "/api/orders/lookup", LookupRequest{Code: "ORD-2"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestRefreshBypassesCache(t *testing.T) {
	u := newUpstream(t, sheetCSV(""))
	r := setupRouter(t, u)

	do(r, http.MethodPost, "/api/orders/lookup", LookupRequest{Code: "ORD-2"})
	do(r, http.MethodPost, "/api/orders/lookup", LookupRequest{Code: "ORD-2"})
	assert.EqualValues(t, 1, u.sheetCalls.Load())
	assert.False(t, u.noCacheSeen.Load())

	w := do(r, http.MethodPost, "/api/orders/refresh", CodeRequest{Code: "ORD-2"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, u.sheetCalls.Load())
	assert.True(t, u.noCacheSeen.Load())
}

func TestBackupRequest(t *testing.T) {
	r := setupRouter(t, newUpstream(t, sheetCSV("")))
	code := kys(`{"pid":2,"dur":8,"ddl":2}`)

	w := do(r, http.MethodGet, "/api/orders/backup-request?code=ORD-2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	do(r, http.MethodPost, "/api/orders/lookup", LookupRequest{Code: code})
	do(r, http.MethodPost, "/api/orders/lookup", LookupRequest{Code: "ORD-2"})

	w = do(r, http.MethodGet, "/api/orders/backup-request?code="+code, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://wa.me/08123456?text=Minta%20backup%20Video%20A", decode(t, w)["url"])

	w = do(r, http.MethodGet, "/api/orders/backup-request?code=ORD-2", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/api/orders/backup-request/send", CodeRequest{Code: code})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestExportInvoice(t *testing.T) {
	code := kys(`{"pid":2,"dur":8,"ddl":2}`)

	r := setupRouter(t, newUpstream(t, sheetCSV(today())))
	do(r, http.MethodPost, "/api/orders/lookup", LookupRequest{Code: code})
	w := do(r, http.MethodGet, "/api/orders/invoice.xlsx?code="+code, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invoice-PRJ1-")
	assert.NotZero(t, w.Body.Len())

	late := setupRouter(t, newUpstream(t, sheetCSV("01/01/2020")))
	do(late, http.MethodPost, "/api/orders/lookup", LookupRequest{Code: code})
	w = do(late, http.MethodGet, "/api/orders/invoice.xlsx?code="+code, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLastInput(t *testing.T) {
	r := setupRouter(t, newUpstream(t, sheetCSV("")))

	w := do(r, http.MethodGet, "/api/tracker/last-input", nil, ClientIDHeader, "tab-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", decode(t, w)["code"])

	w = do(r, http.MethodPut, "/api/tracker/last-input", CodeRequest{Code: " ORD-2 "}, ClientIDHeader, "tab-1")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/api/tracker/last-input", nil, ClientIDHeader, "tab-1")
	assert.Equal(t, "ORD-2", decode(t, w)["code"])

	do(r, http.MethodPost, "/api/orders/lookup", LookupRequest{Code: "ORD-9"})
	w = do(r, http.MethodGet, "/api/tracker/last-input", nil)
	assert.Equal(t, "ORD-9", decode(t, w)["code"])

	w = do(r, http.MethodDelete, "/api/tracker/last-input", nil, ClientIDHeader, "tab-1")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(r, http.MethodGet, "/api/tracker/last-input", nil, ClientIDHeader, "tab-1")
	assert.Equal(t, "", decode(t, w)["code"])
}

func TestLookupAudit(t *testing.T) {
	r := setupRouter(t, newUpstream(t, sheetCSV("")))

	do(r, http.MethodPost, "/api/orders/lookup", LookupRequest{Code: "ORD-2"})
	do(r, http.MethodPost, "/api/orders/lookup", LookupRequest{Code: "ORD-2"})
	do(r, http.MethodPost, "/api/orders/lookup", LookupRequest{Code: "NOPE"})

	w := do(r, http.MethodGet, "/api/orders/lookups?code=ORD-2&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["count"])
	lookups := body["lookups"].([]any)
	assert.Equal(t, "found", lookups[0].(map[string]any)["outcome"])

	today := time.Now().In(wib).Format("2006-01-02")
	w = do(r, http.MethodGet, "/api/orders/lookups?from="+today+"&to="+today, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["count"])

	w = do(r, http.MethodGet, "/api/orders/lookups?from=yesterday&to="+today, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/orders/lookups/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)
	assert.EqualValues(t, 3, stats["total"])
	assert.Equal(t, map[string]any{"found": float64(2), "not_found": float64(1)}, stats["counts"])
}

type brokenStore struct{}

func (brokenStore) SaveLastInput(context.Context, string, string, time.Duration) error {
	return errors.New("store offline")
}

func (brokenStore) LoadLastInput(context.Context, string) (*redis.LastInput, error) {
	return nil, errors.New("store offline")
}

func (brokenStore) DeleteLastInput(context.Context, string) error {
	return errors.New("store offline")
}

func TestLookupSurvivesLastInputFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	t.Cleanup(zap.ReplaceGlobals(zap.New(core)))

	u := newUpstream(t, sheetCSV(""))
	client := source.NewClient(5 * time.Second)
	reg := metrics.NewRegistry()
	tracker := services.NewTrackerService(source.NewSheet(client, u.server.URL+"/sheet.csv"), source.NewPricing(client, u.server.URL+"/prices.json", ""),
		pricing.NewCalculator(), dates.NewFormatter(wib), nil, reg)
	h := NewTrackerHandler(tracker, nil, services.NewLastInputService(brokenStore{}, time.Hour), services.NewAuditService(nil, wib),
		export.NewExporter(wib), services.NewSession(time.Hour))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(logger.GinMiddleware())
	h.RegisterRoutes(r)

	w := do(r, http.MethodPost, "/api/orders/lookup", LookupRequest{Code: "ORD-2"}, logger.RequestIDHeader, "req-42")
	require.Equal(t, http.StatusOK, w.Code)

	saved := logs.FilterMessage("failed to save last input").All()
	require.Len(t, saved, 1)
	assert.Equal(t, "req-42", saved[0].ContextMap()["request_id"])

	w = do(r, http.MethodGet, "/api/orders/lookups/stats", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealth(t *testing.T) {
	r := setupRouter(t, newUpstream(t, ""))
	w := do(r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
