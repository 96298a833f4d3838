package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/autoexport/go-export-backend/internal/config"
	"github.com/autoexport/go-export-backend/internal/repo"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		GinMode:     gin.TestMode,
		APIBasePath: "/api",
		Auth: config.AuthConfig{
			AdminUsername: "admin",
			AdminPassword: "pw",
			JWTSecret:     "0123456789abcdef0123456789abcdef",
			TokenTTL:      time.Hour,
		},
		Upload: config.UploadConfig{
			Dir:           t.TempDir(),
			PublicPath:    "/uploads",
			MaxImageBytes: 10 << 20,
			MaxVideoBytes: 100 << 20,
		},
		WatchedPaths:   []string{"/contact", "/vehicles"},
		RateRPS:        100,
		RateBurst:      100,
		IdempotencyTTL: time.Hour,
		OTEL:           config.OTELConfig{ServiceName: "test"},
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	return newTestRouterWith(t, func(*config.Config) {})
}

func newTestRouterWith(t *testing.T, tweak func(*config.Config)) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "router.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := testConfig(t)
	tweak(&cfg)

	r := gin.New()
	RegisterRoutes(r, db, cfg)
	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	// Identify gzip-free plain responses for simpler assertions.
	req.Header.Set("Accept-Encoding", "identity")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/admin/login",
		map[string]string{"username": "admin", "password": "pw"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d (%s)", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login: bad body %s", w.Body.String())
	}
	return resp.Token
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}
}

func TestNoRoute_JSONEnvelope(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/nope", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body not JSON: %s", w.Body.String())
	}
	if body["code"] != "not_found" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/admin/login",
		map[string]string{"username": "admin", "password": "wrong"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["message"] != "Invalid credentials" {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/admin/site-config", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["code"] != "missing_token" {
		t.Fatalf("code = %v", body["code"])
	}

	token := login(t, r)
	w = doJSON(t, r, http.MethodGet, "/api/admin/site-config", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d (%s)", w.Code, w.Body.String())
	}
}

func TestVehicleFlow_CreateGet404(t *testing.T) {
	r, _ := newTestRouter(t)
	token := login(t, r)

	// Unknown id → 404 with the canonical message.
	w := doJSON(t, r, http.MethodGet, "/api/vehicles/123e4567-e89b-12d3-a456-426614174000", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["message"] != "Vehicle not found" {
		t.Fatalf("message = %v", body["message"])
	}

	// Create requires auth.
	payload := map[string]any{
		"title": "Clio 2019", "make": "renault", "model": "Clio",
		"year": 2019, "price": 9500, "mileage": 42000,
		"fuelType": "essence", "transmission": "manuelle",
	}
	if w := doJSON(t, r, http.MethodPost, "/api/vehicles", payload, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated create: status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/vehicles", payload, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d (%s)", w.Code, w.Body.String())
	}
	var created map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("create: missing id in %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/vehicles/"+id, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: status = %d", w.Code)
	}
}

func TestContactFlow_SubmitRespond(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/contact",
		map[string]string{"name": "A", "email": "a@b.com", "message": "hi"}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: status = %d (%s)", w.Code, w.Body.String())
	}
	var msg map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &msg)
	if msg["responded"] != false {
		t.Fatalf("responded = %v", msg["responded"])
	}
	id, _ := msg["id"].(string)

	token := login(t, r)
	if w := doJSON(t, r, http.MethodPut, "/api/contact/"+id+"/respond", nil, token); w.Code != http.StatusNoContent {
		t.Fatalf("respond: status = %d (%s)", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/contact/"+id, nil, token)
	_ = json.Unmarshal(w.Body.Bytes(), &msg)
	if msg["responded"] != true {
		t.Fatalf("after respond: responded = %v", msg["responded"])
	}
}

func TestContact_IdempotentReplay(t *testing.T) {
	r, db := newTestRouter(t)

	send := func() *httptest.ResponseRecorder {
		var buf bytes.Buffer
		_ = json.NewEncoder(&buf).Encode(map[string]string{
			"name": "B", "email": "b@c.com", "message": "again",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/contact", &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept-Encoding", "identity")
		req.Header.Set("Idempotency-Key", "retry-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := send(); w.Code != http.StatusCreated {
		t.Fatalf("first submit: status = %d (%s)", w.Code, w.Body.String())
	}
	if w := send(); w.Code != http.StatusOK {
		t.Fatalf("replay: status = %d (%s)", w.Code, w.Body.String())
	}

	var n int64
	if err := db.Table("contact_messages").Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected a single stored message, got %d", n)
	}
}

func TestVisitorRecord_AlwaysSucceeds(t *testing.T) {
	r, db := newTestRouter(t)

	// Break persistence; the endpoint must still answer 200.
	if err := db.Migrator().DropTable("visitors"); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/api/visitors/record",
		map[string]string{"page": "/vehicles/9"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["message"] != "recorded" {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestRateLimiter_ScopedToContactForm(t *testing.T) {
	r, _ := newTestRouterWith(t, func(cfg *config.Config) {
		cfg.RateRPS = 1
		cfg.RateBurst = 2
	})

	// Visit recording is never throttled, no matter how fast it is hit.
	for i := 0; i < 10; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/visitors/record",
			map[string]string{"page": "/vehicles"}, "")
		if w.Code != http.StatusOK {
			t.Fatalf("visit %d: status = %d (%s)", i, w.Code, w.Body.String())
		}
	}

	// Login answers on credentials, not on the bucket.
	for i := 0; i < 5; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/admin/login",
			map[string]string{"username": "admin", "password": "wrong"}, "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("login %d: status = %d (%s)", i, w.Code, w.Body.String())
		}
	}

	// The public contact form is the throttled surface.
	var limited bool
	for i := 0; i < 5; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/contact", map[string]string{
			"name":    "Alice",
			"email":   "alice@example.com",
			"message": "hello",
		}, "")
		if w.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
		if w.Code != http.StatusCreated {
			t.Fatalf("contact %d: status = %d (%s)", i, w.Code, w.Body.String())
		}
	}
	if !limited {
		t.Fatal("expected contact form to hit the rate limit")
	}
}
