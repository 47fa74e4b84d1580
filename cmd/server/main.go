package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/bitcoin-os/shell/internal/infrastructure/config"
	"github.com/bitcoin-os/shell/internal/infrastructure/server"
)

func main() {
	port := pflag.StringP("port", "p", "", "Server port (overrides PORT)")
	dev := pflag.Bool("dev", false, "Development logging and app URLs")
	envFile := pflag.String("env-file", ".env", "Dotenv file loaded before the environment is read")
	appsDir := pflag.String("apps-dir", "", "Directory of app descriptor files (overrides APPS_DIR)")
	staticDir := pflag.String("static-dir", "", "Frontend build directory (overrides STATIC_DIR)")
	pflag.Parse()

	if err := loadEnvFile(*envFile); err != nil {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Apps.Environment = "development"
	}
	if *appsDir != "" {
		cfg.Apps.ConfigDir = *appsDir
	}
	if *staticDir != "" {
		cfg.PWA.StaticDir = *staticDir
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := srv.Run(ctx)
	if err := srv.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
	}
	if runErr != nil {
		log.Fatalf("Server error: %v", runErr)
	}
}

// loadEnvFile loads a dotenv file without overriding variables already set.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
