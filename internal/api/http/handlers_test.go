package http

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/bitcoin-os/shell/internal/api/ws"
	"github.com/bitcoin-os/shell/internal/domain/registry"
	"github.com/bitcoin-os/shell/internal/domain/service"
	"github.com/bitcoin-os/shell/internal/domain/session"
	"github.com/bitcoin-os/shell/internal/domain/window"
	"github.com/bitcoin-os/shell/internal/infrastructure/monitoring"
	"github.com/bitcoin-os/shell/internal/infrastructure/storage"
	"github.com/bitcoin-os/shell/internal/providers/auth"
	"github.com/bitcoin-os/shell/internal/providers/drive"
	"github.com/bitcoin-os/shell/internal/providers/httpclient"
	"github.com/bitcoin-os/shell/internal/providers/oauth"
	"github.com/bitcoin-os/shell/internal/providers/payments"
	"github.com/bitcoin-os/shell/internal/providers/theme"
	"github.com/bitcoin-os/shell/internal/providers/wallet"
	"github.com/bitcoin-os/shell/internal/pwa"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "whsec_test"

// failingWallet fails every identity creation
type failingWallet struct {
	wallet.Wallet
}

func (failingWallet) CreateIdentity(ctx context.Context, opts wallet.IdentityOptions) (*wallet.Identity, error) {
	return nil, errors.New("vault unavailable")
}

type fixture struct {
	router  *gin.Engine
	desktop *window.Manager
	hub     *ws.Hub
	vendor  *httptest.Server
}

func newVendor(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("code") != "good" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"bearer"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":42,"login":"satoshi","name":"Satoshi"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newFixture(t *testing.T, w wallet.Wallet) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemory()
	metrics := monitoring.NewMetrics()

	apps, err := registry.New(registry.Development, registry.Defaults())
	require.NoError(t, err)
	desktop, err := window.NewManager(window.Config{
		Viewport: window.Viewport{Width: 1280, Height: 800, TopInset: 28},
	}, apps)
	require.NoError(t, err)
	desktop.WithMetrics(metrics)
	hub := ws.NewHub(desktop).WithMetrics(metrics)
	desktop.WithCloseHook(hub.Disconnect)

	opts := httpclient.DefaultOptions("http-test")
	opts.Retries = 0
	client := httpclient.New(opts)

	authProvider := auth.NewProvider(auth.Config{JWTSecret: "test-secret", SessionTTL: time.Hour, ChallengeTTL: time.Minute}, store, nil)
	if w == nil {
		w = wallet.NewBSV(wallet.NewHybridStorage(store, nil, nil), "vault-secret", nil)
	}
	stripe := payments.NewProvider(payments.Config{SecretKey: "sk_test", WebhookSecret: webhookSecret}, client, store, nil)
	files := drive.New(store, 64, nil)

	themes := theme.NewProvider(store, hub, nil)
	hub.WithThemes(themes)

	services := service.NewRegistry().WithMetrics(metrics)
	require.NoError(t, services.Register(authProvider))
	require.NoError(t, services.Register(wallet.NewProvider(w)))
	require.NoError(t, services.Register(stripe))
	require.NoError(t, services.Register(drive.NewProvider(files)))
	require.NoError(t, services.Register(themes))

	vendor := newVendor(t)
	endpoints := oauth.DefaultEndpoints()
	github := endpoints["github"]
	github.TokenURL = vendor.URL + "/token"
	github.ProfileURL = vendor.URL + "/user"
	endpoints["github"] = github
	logins := oauth.New(map[string]oauth.Credentials{
		"github": {ClientID: "gh-id", ClientSecret: "gh-secret"},
	}, client, "https://shell.example", nil).WithEndpoints(endpoints)

	h := NewHandlers(Deps{
		Apps:     apps,
		Desktop:  desktop,
		Sessions: session.NewManager(desktop, store),
		Services: services,
		Hub:      hub,
		Themes:   themes,
		Bridge:   ws.NewHandler(hub, nil),
		Auth:     authProvider,
		OAuth:    logins,
		Stripe:   stripe,
		Drive:    files,
		PWA:      pwa.NewHandler(pwa.NewWorkerFS(nil, "test", nil), apps),
		Metrics:  metrics,
	})
	router := gin.New()
	router.Use(monitoring.Middleware(metrics))
	h.Register(router)

	return &fixture{router: router, desktop: desktop, hub: hub, vendor: vendor}
}

func (f *fixture) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
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
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRootAndHealth(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "online", decode(t, rec)["status"])

	rec = f.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	for _, key := range []string{"desktop", "apps", "services", "sessions", "bridge", "auth", "oauth"} {
		assert.Contains(t, body, key)
	}
}

func TestWindowLifecycle(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/windows", map[string]string{"app_id": "wallet"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["created"])
	windowID := body["window"].(map[string]interface{})["id"].(string)

	rec = f.do(http.MethodPost, "/windows", map[string]string{"app_id": "wallet"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["created"])

	rec = f.do(http.MethodGet, "/windows", nil)
	assert.Equal(t, windowID, decode(t, rec)["active"].(map[string]interface{})["id"])

	for _, command := range []string{"focus", "minimize", "restore", "maximize", "toggle"} {
		rec = f.do(http.MethodPost, "/windows/"+windowID+"/"+command, nil)
		assert.Equal(t, http.StatusOK, rec.Code, command)
	}

	rec = f.do(http.MethodPost, "/windows/"+windowID+"/minimize", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "minimized", decode(t, rec)["window"].(map[string]interface{})["mode"])

	rec = f.do(http.MethodGet, "/windows", nil)
	listed := decode(t, rec)
	assert.Len(t, listed["windows"], 1)
	assert.NotContains(t, listed, "active")

	rec = f.do(http.MethodDelete, "/windows/"+windowID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/windows/"+windowID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])

	rec = f.do(http.MethodPost, "/windows/"+windowID+"/focus", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLaunchValidation(t *testing.T) {
	f := newFixture(t, nil)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/windows", map[string]string{}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/windows", map[string]string{"app_id": "../etc"}).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/windows", map[string]string{"app_id": "nope"}).Code)
}

func TestPointerDrag(t *testing.T) {
	f := newFixture(t, nil)
	w, _, err := f.desktop.Launch(context.Background(), "writer")
	require.NoError(t, err)
	path := "/windows/" + w.ID.String() + "/pointer"

	rec := f.do(http.MethodPost, path, map[string]interface{}{"kind": "down", "x": w.Frame.Position.X + 10, "y": w.Frame.Position.Y + 5, "target": "header"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = f.do(http.MethodPost, path, map[string]interface{}{"kind": "move", "x": w.Frame.Position.X + 60, "y": w.Frame.Position.Y + 45})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(http.MethodPost, path, map[string]interface{}{"kind": "up", "x": w.Frame.Position.X + 60, "y": w.Frame.Position.Y + 45})
	require.Equal(t, http.StatusOK, rec.Code)

	moved, err := f.desktop.Get(w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.Frame.Position.X+50, moved.Frame.Position.X)
	assert.Equal(t, w.Frame.Position.Y+40, moved.Frame.Position.Y)

	rec = f.do(http.MethodPost, path, map[string]interface{}{"kind": "down", "x": 1, "y": 1, "target": "nowhere"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestViewport(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPut, "/viewport", map[string]int{"width": 1920, "height": 1080, "top_inset": 28})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1920, f.desktop.Viewport().Width)

	rec = f.do(http.MethodPut, "/viewport", map[string]int{"width": 800, "height": 20, "top_inset": 28})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDockTaskbarDrawer(t *testing.T) {
	f := newFixture(t, nil)
	_, _, err := f.desktop.Launch(context.Background(), "email")
	require.NoError(t, err)

	rec := f.do(http.MethodGet, "/dock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["items"])

	rec = f.do(http.MethodGet, "/taskbar", nil)
	items := decode(t, rec)["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "email", items[0].(map[string]interface{})["app_id"])

	rec = f.do(http.MethodGet, "/drawer?q=wallet", nil)
	body := decode(t, rec)
	assert.Equal(t, "wallet", body["query"])
	assert.NotEmpty(t, body["items"])
}

func TestApps(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/apps/wallet", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	app := decode(t, rec)["app"].(map[string]interface{})
	assert.Equal(t, "http://localhost:1050", app["resolved_url"])
	assert.NotContains(t, decode(t, rec), "window")

	w, _, err := f.desktop.Launch(context.Background(), "wallet")
	require.NoError(t, err)
	rec = f.do(http.MethodGet, "/apps/wallet", nil)
	assert.Equal(t, w.ID.String(), decode(t, rec)["window"].(map[string]interface{})["id"])

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/apps/missing", nil).Code)
}

func TestSessions(t *testing.T) {
	f := newFixture(t, nil)
	_, _, err := f.desktop.Launch(context.Background(), "wallet")
	require.NoError(t, err)

	rec := f.do(http.MethodPost, "/sessions/save", map[string]string{"name": "work"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sessionID := decode(t, rec)["session"].(map[string]interface{})["id"].(string)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/sessions/save", map[string]string{}).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/sessions/save-default", nil).Code)

	rec = f.do(http.MethodGet, "/sessions", nil)
	assert.Len(t, decode(t, rec)["sessions"], 2)

	f.desktop.CloseAll()
	rec = f.do(http.MethodPost, "/sessions/"+sessionID+"/restore", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode(t, rec)["windows"], 1)

	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/sessions/"+sessionID, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/sessions/"+sessionID, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/sessions/"+sessionID+"/restore", nil).Code)
}

func TestExecuteServiceAuthFlow(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/auth", map[string]string{"action": "challenge"})
	require.Equal(t, http.StatusOK, rec.Code)
	challenge := decode(t, rec)["challenge"].(string)

	rec = f.do(http.MethodPost, "/api/auth", map[string]string{"action": "verify", "challenge": challenge})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])

	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	rec = f.do(http.MethodPost, "/api/auth", map[string]string{
		"action":    "verify",
		"challenge": challenge,
		"publicKey": hex.EncodeToString(key.PubKey().SerializeCompressed()),
		"signature": wallet.SignMessage(key, []byte(challenge)),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	token := body["token"].(string)

	rec = f.do(http.MethodPost, "/api/auth", map[string]string{"action": "session"}, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode(t, rec)["valid"])

	rec = f.do(http.MethodPost, "/api/auth", map[string]string{"action": "logout"}, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(http.MethodPost, "/api/auth", map[string]string{"action": "session"}, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExecuteServiceWalletError(t *testing.T) {
	f := newFixture(t, failingWallet{})

	rec := f.do(http.MethodPost, "/api/wallet", map[string]interface{}{
		"action":  "create_identity",
		"options": map[string]string{"label": "main"},
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"vault unavailable"}`, rec.Body.String())
}

func TestExecuteServiceWalletCreate(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/wallet", map[string]interface{}{
		"action":  "create_identity",
		"options": map[string]string{"label": "main", "passphrase": "hunter2"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	identity := body["identity"].(map[string]interface{})
	assert.True(t, wallet.ValidAddress(identity["address"].(string)))
	assert.NotContains(t, body, "data")
}

func TestExecuteServiceErrors(t *testing.T) {
	f := newFixture(t, nil)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/api/nope", map[string]string{"action": "run"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/auth", map[string]string{}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/auth", map[string]string{"action": "Bad Action"}).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for header, want := range map[string]string{
		"Bearer abc":  "abc",
		"bearer  xyz": "xyz",
		"Basic abc":   "",
		"":            "",
	} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("Authorization", header)
		assert.Equal(t, want, bearerToken(c), header)
	}
}

func TestOAuthLoginAndCallback(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/api/oauth/github/login", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	var stateCookieValue string
	for _, c := range rec.Result().Cookies() {
		if c.Name == stateCookie {
			stateCookieValue = c.Value
			assert.True(t, c.HttpOnly)
		}
	}
	assert.Equal(t, state, stateCookieValue)

	cookie := (&http.Cookie{Name: stateCookie, Value: state}).String()
	rec = f.do(http.MethodGet, "/api/oauth/github/callback?code=good&state=forged", nil, "Cookie", cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodGet, "/api/oauth/github/callback?code=good&state="+state, nil, "Cookie", cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "github", body["provider"])
	assert.Equal(t, "tok-123", body["token"])
	assert.Equal(t, "42", body["profile"].(map[string]interface{})["id"])

	rec = f.do(http.MethodGet, "/api/oauth/github/callback?code=bad&state="+state, nil, "Cookie", cookie)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestOAuthErrors(t *testing.T) {
	f := newFixture(t, nil)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/oauth/myspace/login", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(http.MethodGet, "/api/oauth/google/login", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/oauth/myspace/callback?code=x", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(http.MethodGet, "/api/oauth/google/callback?code=x", nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/oauth/github/callback?code=good&state=abc", nil).Code)
}

func TestStripeWebhook(t *testing.T) {
	f := newFixture(t, nil)
	payload := []byte(`{"type":"checkout.session.completed","data":{"object":{"customer":"cus_1","subscription":"sub_1","customer_details":{"email":"Sat@Example.com"}}}}`)

	post := func(sig string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader(payload))
		req.Header.Set("Stripe-Signature", sig)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	rec := post(payments.SignatureHeader(payload, webhookSecret, time.Now()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "checkout.session.completed", decode(t, rec)["type"])

	assert.Equal(t, http.StatusBadRequest, post("").Code)
	assert.Equal(t, http.StatusBadRequest, post(payments.SignatureHeader(payload, "whsec_other", time.Now())).Code)

	rec = f.do(http.MethodPost, "/api/stripe", map[string]string{"action": "subscription_status", "email": "sat@example.com"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["active"])
	assert.Equal(t, "active", body["status"])
}

func multipartUpload(t *testing.T, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("owner", "satoshi"))
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDriveRoutes(t *testing.T) {
	f := newFixture(t, nil)

	upload := func(name string, content []byte) *httptest.ResponseRecorder {
		body, contentType := multipartUpload(t, name, content)
		req := httptest.NewRequest(http.MethodPost, "/api/drive/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("notes.txt", []byte("hello drive"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	file := decode(t, rec)["file"].(map[string]interface{})
	fileID := file["id"].(string)
	assert.Equal(t, "satoshi", file["owner"])

	rec = f.do(http.MethodGet, "/api/drive/files?owner=satoshi", nil)
	assert.Equal(t, float64(1), decode(t, rec)["count"])

	rec = f.do(http.MethodGet, "/api/drive/files/"+fileID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello drive", rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	assert.Equal(t, http.StatusRequestEntityTooLarge, upload("big.bin", bytes.Repeat([]byte("x"), 100)).Code)
	assert.Equal(t, http.StatusBadRequest, upload("empty.txt", nil).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/drive/upload", strings.NewReader("plain"))
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/drive/files/"+fileID, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/drive/files/"+fileID, nil).Code)
}

func TestThemeAndConfig(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPut, "/theme", map[string]string{"mode": "light", "accent": "#00ff00"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "light", string(f.hub.Theme().Mode))

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPut, "/theme", map[string]string{"mode": "sepia"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPut, "/theme", map[string]string{"mode": "dark", "accent": "red"}).Code)

	rec = f.do(http.MethodPost, "/api/theme", map[string]string{"action": "current"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	current := decode(t, rec)["theme"].(map[string]interface{})
	assert.Equal(t, "#00ff00", current["accent"])

	rec = f.do(http.MethodGet, "/config", nil)
	config := decode(t, rec)["config"].(map[string]interface{})
	assert.Equal(t, float64(28), config["topInset"])
	assert.Equal(t, true, decode(t, rec)["embedded"])

	rec = f.do(http.MethodGet, "/config", nil, "Sec-Fetch-Dest", "iframe")
	assert.Equal(t, true, decode(t, rec)["embedded"])
	rec = f.do(http.MethodGet, "/config", nil, "Sec-Fetch-Dest", "document")
	assert.Equal(t, false, decode(t, rec)["embedded"])
}

func TestMetricsAndPWA(t *testing.T) {
	f := newFixture(t, nil)
	f.do(http.MethodGet, "/", nil)

	rec := f.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shell_http_requests_total")

	rec = f.do(http.MethodGet, "/metrics/json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec), "summary")

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/sw.js", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/manifest.webmanifest", nil).Code)
}

func TestStreamLogs(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/logs", map[string]interface{}{
		"source":  "shell",
		"entries": []map[string]interface{}{{"id": "1", "level": "warn", "message": "iframe slow", "context": map[string]interface{}{"ms": 900}}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["entries_processed"])

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/logs", map[string]interface{}{"source": "kernel"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/logs", map[string]interface{}{"source": "shell"}).Code)
}
