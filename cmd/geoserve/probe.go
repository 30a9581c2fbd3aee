package main

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/en9inerd/geoserve/config"
	"github.com/en9inerd/geoserve/httpclient"
	"github.com/en9inerd/geoserve/retry"
)

// newProbeCmd checks that a running server answers, for container health
// checks on images without curl.
func newProbeCmd(cfg *config.Config) *cobra.Command {
	var (
		url      string
		path     string
		attempts int
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Exit 0 if a running server answers with 2xx",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				u, err := baseURL(cfg.Addr)
				if err != nil {
					return err
				}
				url = u
			}
			if path == "" {
				path = cfg.HealthPath
			}
			if path == "" {
				path = "/"
			}

			client := httpclient.New(httpclient.Config{
				BaseURL: url,
				Timeout: timeout,
				Headers: map[string]string{"User-Agent": "geoserve-probe/" + version},
				Logger:  newLogger(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel),
			})
			strategy := retry.DefaultStrategy()
			strategy.MaxAttempts = attempts

			status, err := client.Probe(cmd.Context(), path, strategy)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status, "OK")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&url, "url", "", "base URL of the server, derived from the listen address if empty")
	f.StringVar(&path, "path", "", "path to request, the health path or / if empty")
	f.IntVar(&attempts, "attempts", 3, "attempts before giving up")
	f.DurationVar(&timeout, "timeout", 2*time.Second, "per-attempt timeout")
	return cmd
}

// baseURL turns a listen address into a URL on the loopback interface when
// it binds every interface.
func baseURL(addr string) (string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("addr %q: %w", addr, err)
	}
	switch host {
	case "", "0.0.0.0":
		host = "127.0.0.1"
	case "::":
		host = "::1"
	}
	return "http://" + net.JoinHostPort(host, port), nil
}
