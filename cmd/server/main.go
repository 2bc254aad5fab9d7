package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/woozymasta/geoindex/internal/config"
	"github.com/woozymasta/geoindex/internal/logger"
	"github.com/woozymasta/geoindex/internal/processor"
	"github.com/woozymasta/geoindex/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string `short:"c" long:"config"      env:"CONFIG_FILE"    description:"Path to configuration file"        default:"config.yaml"`
	EnvFile     string `short:"e" long:"env-file"    env:"ENV_FILE"       description:"Optional .env file loaded at start" default:".env"`
	Addr        string `short:"a" long:"addr"        env:"LISTEN_ADDRESS" description:"Address to listen on"              default:"0.0.0.0"`
	Port        int    `short:"p" long:"port"        env:"LISTEN_PORT"    description:"Port to listen on"                 default:"8080"`
	Concurrency int    `short:"j" long:"concurrency" env:"CONCURRENCY"    description:"Parallel layer downloads"          default:"4"`
}

func main() {
	// .env values must be in the environment before flags resolve env tags
	_ = godotenv.Load(envFileFromEnv())

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := &http.Client{
		Transport: &http.Transport{
			TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
		Timeout: 60 * time.Second,
	}

	catalog, err := processor.Build(ctx, client, cfg, opts.Concurrency)
	if err != nil {
		log.Warn().Err(err).Msg("Some layers failed to load")
	}

	srvCtx := server.NewServerContext(catalog)
	handler := server.RequestLogger(srvCtx.Routes())

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("addr", listenAddr).
		Int("layers_loaded", len(catalog.Layers())).
		Int("features", catalog.Stats().Features).
		Msg("Web server started")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Web server stopped")
}

// envFileFromEnv returns the .env path before flags are parsed.
func envFileFromEnv() string {
	if p, ok := envFileFromArgs(os.Args[1:]); ok {
		return p
	}
	if p := os.Getenv("ENV_FILE"); p != "" {
		return p
	}
	return ".env"
}

// envFileFromArgs finds the env-file option in the forms go-flags accepts:
// "-e path", "-epath", "-e=path", "--env-file path" and "--env-file=path".
// The last occurrence wins and parsing stops at "--".
func envFileFromArgs(args []string) (string, bool) {
	path, found := "", false

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch {
		case arg == "--":
			return path, found

		case arg == "-e" || arg == "--env-file":
			if i+1 < len(args) {
				path, found = args[i+1], true
				i++
			}

		case strings.HasPrefix(arg, "--env-file="):
			path, found = strings.TrimPrefix(arg, "--env-file="), true

		case strings.HasPrefix(arg, "-e="):
			path, found = strings.TrimPrefix(arg, "-e="), true

		case strings.HasPrefix(arg, "-e") && !strings.HasPrefix(arg, "--"):
			path, found = strings.TrimPrefix(arg, "-e"), true
		}
	}

	return path, found
}
