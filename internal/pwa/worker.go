package pwa

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/bitcoin-os/shell/internal/infrastructure/logging"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// AssetPattern selects precached static files
const AssetPattern = "**/*.{html,js,css,png,jpg,jpeg,svg,ico,webp,woff,woff2,json,webmanifest}"

// shellRoutes are always precached
var shellRoutes = []string{"/", "/manifest.webmanifest"}

// Worker renders the service worker script for a static directory
type Worker struct {
	fsys      fs.FS
	cacheName string
	logger    *zap.Logger
}

// NewWorker creates a worker over staticDir. A missing directory yields a
// worker that precaches only the shell routes.
func NewWorker(staticDir, cacheName string, logger *zap.Logger) *Worker {
	var fsys fs.FS
	if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
		fsys = os.DirFS(staticDir)
	}
	return NewWorkerFS(fsys, cacheName, logger)
}

// NewWorkerFS creates a worker over an fs.FS; fsys may be nil
func NewWorkerFS(fsys fs.FS, cacheName string, logger *zap.Logger) *Worker {
	if cacheName == "" {
		cacheName = "bitcoin-os"
	}
	return &Worker{fsys: fsys, cacheName: cacheName, logger: logging.OrNop(logger).Named("pwa")}
}

// Assets returns the precache list: shell routes plus matching static
// files, sorted, never including /api/ paths or the worker itself.
func (w *Worker) Assets() ([]string, error) {
	seen := make(map[string]bool)
	assets := make([]string, 0, len(shellRoutes))
	add := func(p string) {
		if seen[p] || IsAPIPath(p) || p == "/sw.js" {
			return
		}
		seen[p] = true
		assets = append(assets, p)
	}
	for _, r := range shellRoutes {
		add(r)
	}

	if w.fsys != nil {
		matches, err := doublestar.Glob(w.fsys, AssetPattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob static assets: %w", err)
		}
		for _, m := range matches {
			add("/" + strings.TrimPrefix(m, "./"))
		}
	}

	sort.Strings(assets[len(shellRoutes):])
	return assets, nil
}

// IsAPIPath reports whether p is served by the API and must not be cached
func IsAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}

// Version is the cache name suffixed with a digest of the asset list, so a
// changed asset set installs a fresh cache.
func (w *Worker) Version(assets []string) string {
	sum := sha256.Sum256([]byte(strings.Join(assets, "\n")))
	return w.cacheName + "-" + hex.EncodeToString(sum[:4])
}

// Render produces the service worker script
func (w *Worker) Render() ([]byte, error) {
	assets, err := w.Assets()
	if err != nil {
		return nil, err
	}
	list, err := sonic.Marshal(assets)
	if err != nil {
		return nil, err
	}
	cache, err := sonic.Marshal(w.Version(assets))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := workerTemplate.Execute(&buf, map[string]string{
		"Cache":  string(cache),
		"Assets": string(list),
	}); err != nil {
		return nil, fmt.Errorf("render service worker: %w", err)
	}
	w.logger.Debug("service worker rendered", zap.Int("assets", len(assets)))
	return buf.Bytes(), nil
}

var workerTemplate = template.Must(template.New("sw.js").Parse(`// generated by the shell server
const CACHE_NAME = {{.Cache}};
const PRECACHE = {{.Assets}};

self.addEventListener('install', (event) => {
  event.waitUntil(
    caches.open(CACHE_NAME).then((cache) => cache.addAll(PRECACHE)).then(() => self.skipWaiting())
  );
});

self.addEventListener('activate', (event) => {
  event.waitUntil(
    caches.keys().then((keys) =>
      Promise.all(keys.filter((key) => key !== CACHE_NAME).map((key) => caches.delete(key)))
    ).then(() => self.clients.claim())
  );
});

self.addEventListener('fetch', (event) => {
  const url = new URL(event.request.url);
  if (event.request.method !== 'GET' || url.origin !== self.location.origin) {
    return;
  }
  if (url.pathname === '/api' || url.pathname.startsWith('/api/')) {
    return;
  }
  event.respondWith(
    caches.match(event.request).then((cached) => cached || fetch(event.request))
  );
});
`))
