package pwa

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/bitcoin-os/shell/internal/domain/registry"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":         {Data: []byte("<html></html>")},
		"assets/app.js":      {Data: []byte("")},
		"assets/app.css":     {Data: []byte("")},
		"icons/icon-192.png": {Data: []byte("")},
		"api/cached.json":    {Data: []byte("{}")},
		"sw.js":              {Data: []byte("")},
		"notes/readme.md":    {Data: []byte("")},
		"fonts/inter.woff2":  {Data: []byte("")},
	}
}

func TestAssets(t *testing.T) {
	w := NewWorkerFS(testFS(), "test", nil)
	assets, err := w.Assets()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/",
		"/manifest.webmanifest",
		"/assets/app.css",
		"/assets/app.js",
		"/fonts/inter.woff2",
		"/icons/icon-192.png",
		"/index.html",
	}, assets)
}

func TestAssetsWithoutStaticDir(t *testing.T) {
	w := NewWorker("/nonexistent/static", "", nil)
	assets, err := w.Assets()
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/manifest.webmanifest"}, assets)
}

func TestRenderNeverCachesAPI(t *testing.T) {
	w := NewWorkerFS(testFS(), "test", nil)
	script, err := w.Render()
	require.NoError(t, err)

	s := string(script)
	assert.Contains(t, s, `"/assets/app.js"`)
	assert.NotContains(t, s, `"/api/cached.json"`)
	assert.Contains(t, s, "url.pathname.startsWith('/api/')")
	assert.Contains(t, s, `const CACHE_NAME = "test-`)
}

func TestVersionTracksAssets(t *testing.T) {
	w := NewWorkerFS(nil, "v", nil)
	assert.NotEqual(t, w.Version([]string{"/a"}), w.Version([]string{"/b"}))
	assert.Equal(t, w.Version([]string{"/a"}), w.Version([]string{"/a"}))
	assert.True(t, IsAPIPath("/api/auth"))
	assert.False(t, IsAPIPath("/apiary"))
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg, err := registry.New(registry.Production, registry.Defaults())
	require.NoError(t, err)

	h := NewHandler(NewWorkerFS(testFS(), "test", nil), reg)
	router := gin.New()
	router.GET("/sw.js", h.ServiceWorker)
	router.GET("/manifest.webmanifest", h.Manifest)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sw.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/javascript"))
	assert.Equal(t, "/", rec.Header().Get("Service-Worker-Allowed"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/manifest.webmanifest", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"start_url":"/"`)
	assert.Contains(t, rec.Body.String(), "/?app=wallet")
}
