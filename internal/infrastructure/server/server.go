package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/bitcoin-os/shell/internal/api/http"
	"github.com/bitcoin-os/shell/internal/api/middleware"
	"github.com/bitcoin-os/shell/internal/api/ws"
	"github.com/bitcoin-os/shell/internal/domain/registry"
	"github.com/bitcoin-os/shell/internal/domain/service"
	"github.com/bitcoin-os/shell/internal/domain/session"
	"github.com/bitcoin-os/shell/internal/domain/window"
	"github.com/bitcoin-os/shell/internal/infrastructure/config"
	"github.com/bitcoin-os/shell/internal/infrastructure/logging"
	"github.com/bitcoin-os/shell/internal/infrastructure/monitoring"
	"github.com/bitcoin-os/shell/internal/infrastructure/storage"
	"github.com/bitcoin-os/shell/internal/infrastructure/tracing"
	"github.com/bitcoin-os/shell/internal/providers/auth"
	"github.com/bitcoin-os/shell/internal/providers/drive"
	"github.com/bitcoin-os/shell/internal/providers/email"
	"github.com/bitcoin-os/shell/internal/providers/embedcheck"
	"github.com/bitcoin-os/shell/internal/providers/httpclient"
	"github.com/bitcoin-os/shell/internal/providers/oauth"
	"github.com/bitcoin-os/shell/internal/providers/payments"
	"github.com/bitcoin-os/shell/internal/providers/theme"
	"github.com/bitcoin-os/shell/internal/providers/wallet"
	"github.com/bitcoin-os/shell/internal/pwa"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	config   *config.Config
	router   *gin.Engine
	handler  http.Handler
	store    storage.Store
	mirror   storage.Store
	desktop  *window.Manager
	hub      *ws.Hub
	services *service.Registry
	tracer   *tracing.Tracer
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// NewServer wires every component from cfg
func NewServer(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		l, err := logging.New(logging.Config{Level: cfg.Logging.Level})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l
	}
	log := logger.Logger

	log.Info("Initializing Bitcoin OS shell",
		zap.String("port", cfg.Server.Port),
		zap.String("environment", cfg.Apps.Environment),
		zap.String("storage", cfg.Storage.Path),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("shell", log)

	store, err := storage.Open(cfg.Storage.Path, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	mirror, err := openMirror(cfg.Storage.MirrorPath, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	env := registry.ParseEnvironment(cfg.Apps.Environment)
	apps, err := registry.Build(env, cfg.Apps.ConfigDir, log)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to build app registry: %w", err)
	}
	metrics.SetRegistryApps(apps.Stats().TotalApps)
	log.Info("App registry loaded", zap.Int("apps", apps.Stats().TotalApps))

	desktop, err := window.NewManager(window.Config{
		Viewport: window.Viewport{
			Width:    cfg.Desktop.ViewportWidth,
			Height:   cfg.Desktop.ViewportHeight,
			TopInset: cfg.Desktop.TopInset,
		},
		DefaultSize: window.Size{Width: cfg.Desktop.DefaultWidth, Height: cfg.Desktop.DefaultHeight},
		MinSize:     window.Size{Width: cfg.Desktop.MinWindowWidth, Height: cfg.Desktop.MinWindowHeight},
	}, apps)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create window manager: %w", err)
	}
	desktop.WithMetrics(metrics).WithLogger(log)
	if cfg.Desktop.ProbeEmbedding {
		probe := httpclient.New(httpclient.DefaultOptions("embedcheck"))
		desktop.WithEmbedChecker(embedcheck.New(probe, cfg.Server.PublicURL, log))
	}

	sessions := session.NewManager(desktop, store).WithMetrics(metrics).WithLogger(log)
	hub := ws.NewHub(desktop).WithMetrics(metrics).WithLogger(log)
	desktop.WithCloseHook(hub.Disconnect)

	integrations := httpclient.New(httpclient.DefaultOptions("integrations"))
	authProvider := auth.NewProvider(auth.Config{
		JWTSecret:    cfg.Auth.JWTSecret,
		SessionTTL:   cfg.Auth.SessionTTL,
		ChallengeTTL: cfg.Auth.ChallengeTTL,
	}, store, log)
	if cfg.Auth.JWTSecret == "" {
		log.Warn("AUTH_JWT_SECRET not set, wallet sign-in disabled")
	}
	stripe := payments.NewProvider(payments.Config{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		PriceID:       cfg.Stripe.PriceID,
		SuccessURL:    cfg.Stripe.SuccessURL,
		CancelURL:     cfg.Stripe.CancelURL,
	}, integrations, store, log)
	files := drive.New(store, cfg.Storage.DriveMaxBytes, log)

	themes := theme.NewProvider(store, hub, log)
	hub.WithThemes(themes)
	if err := themes.Restore(context.Background()); err != nil {
		log.Warn("Failed to restore theme", zap.Error(err))
	}

	services := service.NewRegistry().WithMetrics(metrics).WithLogger(log)
	registerProviders(services, log,
		authProvider,
		wallet.NewProvider(wallet.NewBSV(wallet.NewHybridStorage(store, mirror, log), cfg.Storage.VaultSecret, log)),
		stripe,
		email.NewProvider(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, nil, log),
		drive.NewProvider(files),
		themes,
	)

	logins := oauth.New(map[string]oauth.Credentials{
		"github":   credentials(cfg.OAuth.GitHubClient()),
		"google":   credentials(cfg.OAuth.GoogleClient()),
		"twitter":  credentials(cfg.OAuth.TwitterClient()),
		"handcash": credentials(cfg.OAuth.HandCashClient()),
	}, integrations, cfg.Server.PublicURL, log)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(logging.Middleware(log))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.CORSForOrigins(cfg.Server.AllowedOrigins)))
	if cfg.RateLimit.Enabled {
		log.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			Skip:              []string{"/health", "/metrics", "/bridge"},
		}))
	}

	handlers := apihttp.NewHandlers(apihttp.Deps{
		Apps:          apps,
		Desktop:       desktop,
		Sessions:      sessions,
		Services:      services,
		Hub:           hub,
		Themes:        themes,
		Bridge:        ws.NewHandler(hub, cfg.Server.AllowedOrigins),
		Auth:          authProvider,
		OAuth:         logins,
		Stripe:        stripe,
		Drive:         files,
		PWA:           pwa.NewHandler(pwa.NewWorker(cfg.PWA.StaticDir, cfg.PWA.CacheName, log), apps),
		Metrics:       metrics,
		Logger:        log,
		SecureCookies: cfg.Auth.CookieSecure,
	})
	handlers.Register(router)
	router.NoRoute(staticFallback(cfg.PWA.StaticDir))

	handler := http.Handler(router)
	if cfg.Server.Compress {
		handler, err = compress(router)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	log.Info("Server initialized successfully",
		zap.Int("services", services.Stats().TotalServices),
		zap.Strings("oauth", logins.Names()),
	)

	return &Server{
		config:   cfg,
		router:   router,
		handler:  handler,
		store:    store,
		mirror:   mirror,
		desktop:  desktop,
		hub:      hub,
		services: services,
		tracer:   tracer,
		logger:   logger,
		metrics:  metrics,
	}, nil
}

func openMirror(path string, logger *zap.Logger) (storage.Store, error) {
	if path == "" {
		return nil, nil
	}
	mirror, err := storage.OpenSQLite(path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet mirror: %w", err)
	}
	return mirror, nil
}

func credentials(c config.OAuthClient) oauth.Credentials {
	return oauth.Credentials{ClientID: c.ClientID, ClientSecret: c.ClientSecret}
}

func registerProviders(services *service.Registry, logger *zap.Logger, providers ...service.Provider) {
	for _, p := range providers {
		if err := services.Register(p); err != nil {
			logger.Warn("Failed to register service provider",
				zap.String("service", p.Definition().ID),
				zap.Error(err))
		}
	}
}

// compress gzips responses except the bridge upgrade, which needs the raw
// connection.
func compress(router http.Handler) (http.Handler, error) {
	wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(1024))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip wrapper: %w", err)
	}
	gzipped := wrap(router)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bridge" {
			router.ServeHTTP(w, r)
			return
		}
		gzipped.ServeHTTP(w, r)
	}), nil
}

// staticFallback serves the shell frontend for unknown GET paths
func staticFallback(dir string) gin.HandlerFunc {
	files := http.FileServer(http.Dir(dir))
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || pwa.IsAPIPath(c.Request.URL.Path) || strings.Contains(c.Request.URL.Path, "..") {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: s.config.Server.ReadTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// Close releases storage and flushes logs
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	var errs []error
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
	}
	if s.mirror != nil {
		if err := s.mirror.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close wallet mirror: %w", err))
		}
	}
	s.tracer.Close()
	_ = s.logger.Sync()
	return errors.Join(errs...)
}
