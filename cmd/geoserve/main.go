// Command geoserve serves a greeting at "/" and the static and geojson
// directories under "/static/" and "/geojson/".
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/en9inerd/geoserve/config"
	"github.com/en9inerd/geoserve/server"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "geoserve:", err)
		stop()
		os.Exit(1)
	}
}

// envFile is read before flags are parsed so that flag defaults reflect it.
func envFile() string {
	if p, ok := os.LookupEnv(config.EnvPrefix + "ENV_FILE"); ok {
		return p
	}
	return ".env"
}

func newRootCmd() *cobra.Command {
	cfg, loadErr := config.Load(envFile())

	cmd := &cobra.Command{
		Use:           "geoserve",
		Short:         "Serve a greeting and the static and geojson directories over HTTP",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if loadErr != nil {
				return loadErr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	bindFlags(cmd, &cfg)
	cmd.AddCommand(newProbeCmd(&cfg))
	return cmd
}

func bindFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	f.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	f.StringVar(&cfg.StaticDir, "static-dir", cfg.StaticDir, "directory served under /static/")
	f.StringVar(&cfg.GeoJSONDir, "geojson-dir", cfg.GeoJSONDir, "directory served under /geojson/")
	f.BoolVar(&cfg.RequireDirs, "require-dirs", cfg.RequireDirs, "fail at startup if a served directory is missing")
	f.StringVar(&cfg.HealthPath, "health-path", cfg.HealthPath, "path of the JSON health endpoint, empty disables it")
	f.DurationVar(&cfg.ReadHeaderTimeout, "read-header-timeout", cfg.ReadHeaderTimeout, "time allowed to read request headers")
	f.DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "time allowed to write a response")
	f.DurationVar(&cfg.IdleTimeout, "idle-timeout", cfg.IdleTimeout, "keep-alive idle timeout")
	f.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "grace period for in-flight requests on shutdown")
	f.DurationVar(&cfg.RequestTimeout, "request-timeout", cfg.RequestTimeout, "per-request handler timeout, 0 disables it")
	f.Int64Var(&cfg.MaxInFlight, "max-in-flight", cfg.MaxInFlight, "maximum concurrent requests, 0 means unlimited")
	f.Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "requests per second per client, 0 disables limiting")
	f.IntVar(&cfg.RateBurst, "rate-burst", cfg.RateBurst, "burst size per client when rate limiting")
	f.StringSliceVar(&cfg.TrustedProxies, "trusted-proxies", cfg.TrustedProxies, "proxy IPs or CIDRs allowed to set X-Forwarded-For")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: auto, text or json")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
}

func serve(ctx context.Context, cfg config.Config) error {
	if err := cfg.Check(); err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	logger.Info("starting", "version", version, "static_dir", cfg.StaticDir, "geojson_dir", cfg.GeoJSONDir)
	return srv.Run(ctx)
}
