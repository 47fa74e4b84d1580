package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Desktop   DesktopConfig
	Apps      AppsConfig
	Storage   StorageConfig
	Auth      AuthConfig
	OAuth     OAuthConfig
	Stripe    StripeConfig
	SMTP      SMTPConfig
	PWA       PWAConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	PublicURL       string        `envconfig:"PUBLIC_URL" default:"http://localhost:8000"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	// AllowedOrigins limits CORS and bridge origins. Empty allows any.
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`
	Compress       bool     `envconfig:"COMPRESS" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// DesktopConfig holds window chrome geometry defaults.
type DesktopConfig struct {
	ViewportWidth   int  `envconfig:"VIEWPORT_WIDTH" default:"1440"`
	ViewportHeight  int  `envconfig:"VIEWPORT_HEIGHT" default:"900"`
	TopInset        int  `envconfig:"TOP_INSET" default:"28"`
	DefaultWidth    int  `envconfig:"WINDOW_WIDTH" default:"1024"`
	DefaultHeight   int  `envconfig:"WINDOW_HEIGHT" default:"700"`
	MinWindowWidth  int  `envconfig:"WINDOW_MIN_WIDTH" default:"320"`
	MinWindowHeight int  `envconfig:"WINDOW_MIN_HEIGHT" default:"200"`
	ProbeEmbedding  bool `envconfig:"PROBE_EMBEDDING" default:"true"`
}

// AppsConfig holds app registry configuration.
type AppsConfig struct {
	Environment string `envconfig:"NODE_ENV" default:"development"`
	ConfigDir   string `envconfig:"APPS_DIR" default:""`
}

// StorageConfig holds persistence configuration.
// An empty Path keeps everything in memory.
type StorageConfig struct {
	Path          string `envconfig:"STORAGE_PATH" default:"/tmp/bitcoin-os/shell.db"`
	MirrorPath    string `envconfig:"WALLET_MIRROR_PATH" default:""`
	VaultSecret   string `envconfig:"WALLET_VAULT_SECRET" default:""`
	DriveMaxBytes int64  `envconfig:"DRIVE_MAX_BYTES" default:"26214400"`
}

// AuthConfig holds wallet-signature auth configuration.
type AuthConfig struct {
	JWTSecret    string        `envconfig:"AUTH_JWT_SECRET" default:""`
	SessionTTL   time.Duration `envconfig:"AUTH_SESSION_TTL" default:"24h"`
	ChallengeTTL time.Duration `envconfig:"AUTH_CHALLENGE_TTL" default:"5m"`
	CookieSecure bool          `envconfig:"AUTH_COOKIE_SECURE" default:"false"`
}

// OAuthClient holds one OAuth provider's credentials.
type OAuthClient struct {
	ClientID     string
	ClientSecret string
}

// Configured reports whether both credentials are present.
func (c OAuthClient) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// OAuthConfig holds the third-party sign-in providers.
type OAuthConfig struct {
	GitHub   GitHubOAuth
	Google   GoogleOAuth
	Twitter  TwitterOAuth
	HandCash HandCashConfig
}

// GitHubOAuth holds GitHub OAuth credentials.
type GitHubOAuth struct {
	ClientID     string `envconfig:"GITHUB_CLIENT_ID"`
	ClientSecret string `envconfig:"GITHUB_CLIENT_SECRET"`
}

// GoogleOAuth holds Google OAuth credentials.
type GoogleOAuth struct {
	ClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	ClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
}

// TwitterOAuth holds Twitter (X) OAuth 2.0 credentials.
type TwitterOAuth struct {
	ClientID     string `envconfig:"TWITTER_CLIENT_ID"`
	ClientSecret string `envconfig:"TWITTER_CLIENT_SECRET"`
}

// HandCashConfig holds HandCash Connect credentials.
type HandCashConfig struct {
	AppID     string `envconfig:"HANDCASH_APP_ID"`
	AppSecret string `envconfig:"HANDCASH_APP_SECRET"`
}

// StripeConfig holds Stripe Checkout configuration.
type StripeConfig struct {
	SecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	WebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	PriceID       string `envconfig:"STRIPE_PRICE_ID"`
	SuccessURL    string `envconfig:"STRIPE_SUCCESS_URL" default:"http://localhost:8000/?checkout=success"`
	CancelURL     string `envconfig:"STRIPE_CANCEL_URL" default:"http://localhost:8000/?checkout=cancel"`
}

// SMTPConfig holds outbound mail configuration.
type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USER"`
	Password string `envconfig:"SMTP_PASSWORD"`
	From     string `envconfig:"SMTP_FROM"`
}

// PWAConfig holds service worker configuration.
type PWAConfig struct {
	StaticDir string `envconfig:"STATIC_DIR" default:"./public"`
	CacheName string `envconfig:"PWA_CACHE_NAME" default:"bitcoin-os-v1"`
}

// GitHubClient returns the GitHub credentials as a generic client.
func (o OAuthConfig) GitHubClient() OAuthClient {
	return OAuthClient{ClientID: o.GitHub.ClientID, ClientSecret: o.GitHub.ClientSecret}
}

// GoogleClient returns the Google credentials as a generic client.
func (o OAuthConfig) GoogleClient() OAuthClient {
	return OAuthClient{ClientID: o.Google.ClientID, ClientSecret: o.Google.ClientSecret}
}

// TwitterClient returns the Twitter credentials as a generic client.
func (o OAuthConfig) TwitterClient() OAuthClient {
	return OAuthClient{ClientID: o.Twitter.ClientID, ClientSecret: o.Twitter.ClientSecret}
}

// HandCashClient returns the HandCash credentials as a generic client.
func (o OAuthConfig) HandCashClient() OAuthClient {
	return OAuthClient{ClientID: o.HandCash.AppID, ClientSecret: o.HandCash.AppSecret}
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			PublicURL:       "http://localhost:8000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Compress:        true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Desktop: DesktopConfig{
			ViewportWidth:   1440,
			ViewportHeight:  900,
			TopInset:        28,
			DefaultWidth:    1024,
			DefaultHeight:   700,
			MinWindowWidth:  320,
			MinWindowHeight: 200,
			ProbeEmbedding:  true,
		},
		Apps: AppsConfig{
			Environment: "development",
		},
		Storage: StorageConfig{
			Path:          "/tmp/bitcoin-os/shell.db",
			DriveMaxBytes: 25 << 20,
		},
		Auth: AuthConfig{
			SessionTTL:   24 * time.Hour,
			ChallengeTTL: 5 * time.Minute,
		},
		Stripe: StripeConfig{
			SuccessURL: "http://localhost:8000/?checkout=success",
			CancelURL:  "http://localhost:8000/?checkout=cancel",
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
		PWA: PWAConfig{
			StaticDir: "./public",
			CacheName: "bitcoin-os-v1",
		},
	}
}
