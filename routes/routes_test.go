package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"freshscan/controllers"
	"freshscan/controllers/admins"
	"freshscan/database"
	"freshscan/freshness"
	"freshscan/qrgen"
)

func newTestRouter(t *testing.T) (http.Handler, *database.Store, string) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Initialize(db); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	store := database.NewStore(db)

	qrDir := t.TempDir()
	qr, err := qrgen.New(qrgen.Config{
		BaseURL:   "http://localhost:5003",
		OutputDir: qrDir,
	}, nil)
	if err != nil {
		t.Fatalf("qr generator: %v", err)
	}

	th := freshness.DefaultThresholds()
	styles := freshness.DefaultStyles()
	router := InitRouter(Deps{
		Public: controllers.NewProductController(store, th, styles),
		Admin:  admins.NewAdminController(store, qr, th, styles),
		QRDir:  qrDir,
	})
	return router, store, qrDir
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Code    string                 `json:"code"`
	Data    map[string]interface{} `json:"data"`
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: invalid JSON response %q: %v", method, path, rec.Body.String(), err)
	}
	return rec, env
}

func productBody(name, batch, expiryOffsetDays int) map[string]string {
	now := time.Now()
	return map[string]string{
		"product_name":         fmt.Sprintf("Product %d", name),
		"batch_id":             fmt.Sprintf("BATCH%03d", batch),
		"category":             "Dairy",
		"mfg_date":             now.AddDate(0, 0, -5).Format(freshness.DateLayout),
		"expiry_date":          now.AddDate(0, 0, expiryOffsetDays).Format(freshness.DateLayout),
		"storage_instructions": "Keep refrigerated",
	}
}

func TestScanUnknownProductReturnsNotFound(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodGet, "/v1/product/9999", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if env.Code != "not_found" {
		t.Fatalf("expected not_found code, got %q", env.Code)
	}
}

func TestCreateScanAndConflict(t *testing.T) {
	router, store, _ := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/v1/admin/products", productBody(1, 1, 1))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, env.Message)
	}
	id := int(env.Data["id"].(float64))
	if id == 0 {
		t.Fatal("expected a product id")
	}

	// scan view carries the derived status; expiry tomorrow -> NEAR_EXPIRY
	rec, env = doJSON(t, router, http.MethodGet, fmt.Sprintf("/v1/product/%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	statusInfo, ok := env.Data["status_info"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing status_info in %v", env.Data)
	}
	if statusInfo["status"] != "NEAR_EXPIRY" {
		t.Fatalf("expected NEAR_EXPIRY, got %v", statusInfo["status"])
	}
	if env.Data["category_icon"] != "🥛" {
		t.Fatalf("expected dairy icon, got %v", env.Data["category_icon"])
	}

	// duplicate batch id: structured conflict, row count unchanged
	rec, env = doJSON(t, router, http.MethodPost, "/v1/admin/products", productBody(2, 1, 5))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if env.Code != "conflict" {
		t.Fatalf("expected conflict code, got %q", env.Code)
	}
	stats, err := store.Stats(context.Background(), freshness.DefaultThresholds(), time.Now())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 1 {
		t.Fatalf("conflict created a row: total=%d", stats.Total)
	}
}

func TestCreateWritesQRImage(t *testing.T) {
	router, _, qrDir := newTestRouter(t)

	rec, env := doJSON(t, router, http.MethodPost, "/v1/admin/products", productBody(1, 7, 30))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	id := int(env.Data["id"].(float64))
	path := fmt.Sprintf("%s/product_%d.png", qrDir, id)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected QR image at %s: %v", path, err)
	}
	if env.Data["qr_path"] != path {
		t.Fatalf("response qr_path %v does not match %s", env.Data["qr_path"], path)
	}
}

func TestAdminListingWithStats(t *testing.T) {
	router, _, _ := newTestRouter(t)

	// one product per tier: NEAR_EXPIRY, EXPIRED, SAFE
	for i, offset := range []int{1, -1, 365} {
		rec, env := doJSON(t, router, http.MethodPost, "/v1/admin/products", productBody(i, i, offset))
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %d: expected 201, got %d: %s", i, rec.Code, env.Message)
		}
	}

	rec, env := doJSON(t, router, http.MethodGet, "/v1/admin/products", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	stats, ok := env.Data["stats"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing stats in %v", env.Data)
	}
	for key, want := range map[string]float64{"total": 3, "safe": 1, "near_expiry": 1, "expired": 1} {
		if stats[key] != want {
			t.Fatalf("stats[%s]: expected %v, got %v", key, want, stats[key])
		}
	}

	products, ok := env.Data["products"].([]interface{})
	if !ok || len(products) != 3 {
		t.Fatalf("expected 3 products, got %v", env.Data["products"])
	}
	// expiry ascending: expired first, safe last
	first := products[0].(map[string]interface{})
	last := products[2].(map[string]interface{})
	if first["status_info"].(map[string]interface{})["status"] != "EXPIRED" {
		t.Fatalf("expected soonest-expiring first, got %v", first)
	}
	if last["status_info"].(map[string]interface{})["status"] != "SAFE" {
		t.Fatalf("expected latest expiry last, got %v", last)
	}
}

func TestBulkClearAndRegenerate(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for i := 0; i < 2; i++ {
		rec, _ := doJSON(t, router, http.MethodPost, "/v1/admin/products", productBody(i, i, 10+i))
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %d failed: %d", i, rec.Code)
		}
	}

	rec, env := doJSON(t, router, http.MethodPost, "/v1/admin/qrcodes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("regenerate: expected 200, got %d", rec.Code)
	}
	if env.Data["generated"] != float64(2) {
		t.Fatalf("expected 2 regenerated, got %v", env.Data["generated"])
	}

	rec, env = doJSON(t, router, http.MethodDelete, "/v1/admin/products", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear: expected 200, got %d", rec.Code)
	}
	if env.Data["deleted"] != float64(2) {
		t.Fatalf("expected 2 deleted, got %v", env.Data["deleted"])
	}

	rec, env = doJSON(t, router, http.MethodGet, "/v1/admin/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", rec.Code)
	}
	if env.Data["total"] != float64(0) {
		t.Fatalf("expected empty store, got %v", env.Data)
	}
}

func TestCreateRejectsInvalidPayload(t *testing.T) {
	router, _, _ := newTestRouter(t)

	body := productBody(1, 1, 5)
	body["expiry_date"] = "not-a-date"
	rec, _ := doJSON(t, router, http.MethodPost, "/v1/admin/products", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}

	body = productBody(1, 1, 5)
	body["batch_id"] = ""
	rec, _ = doJSON(t, router, http.MethodPost, "/v1/admin/products", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing batch id, got %d", rec.Code)
	}
}

func TestAdminAuthGate(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "letmein")
	t.Setenv("JWT_SECRET", "test-secret")
	router, _, _ := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/v1/admin/products", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec, env := doJSON(t, router, http.MethodPost, "/v1/admin/login", map[string]string{"password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rec.Code)
	}

	rec, env = doJSON(t, router, http.MethodPost, "/v1/admin/login", map[string]string{"password": "letmein"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, env.Message)
	}
	token, _ := env.Data["token"].(string)
	if token == "" {
		t.Fatal("expected a token")
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", recorder.Code)
	}

	// public scan stays open
	rec, _ = doJSON(t, router, http.MethodGet, "/v1/product/9999", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("public endpoint must not be gated: got %d", rec.Code)
	}
}
