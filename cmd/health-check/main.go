// Package main provides a standalone health check command for recipefinder.
// It can be used for container health checks and monitoring scripts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/alchemorsel/recipefinder/internal/infrastructure/config"
	"github.com/alchemorsel/recipefinder/pkg/healthcheck"
	"github.com/avast/retry-go/v4"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeError   = 2
)

// Options holds command-line configuration
type Options struct {
	URL          string
	Timeout      time.Duration
	OutputFormat string
	RetryCount   int
	RetryDelay   time.Duration
	ConfigPath   string
}

func main() {
	opts := parseFlags()

	if opts.URL == "" {
		url, err := defaultURL(opts.ConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "health-check: %v\n", err)
			os.Exit(exitCodeError)
		}
		opts.URL = url
	}

	os.Exit(run(context.Background(), opts, os.Stdout))
}

func parseFlags() Options {
	opts := Options{}

	flag.StringVar(&opts.URL, "url", "", "Readiness endpoint URL (default derived from config)")
	flag.DurationVar(&opts.Timeout, "timeout", 5*time.Second, "Request timeout")
	flag.StringVar(&opts.OutputFormat, "format", "text", "Output format: text, json")
	flag.IntVar(&opts.RetryCount, "retry", 0, "Number of retries on failure")
	flag.DurationVar(&opts.RetryDelay, "retry-delay", time.Second, "Delay between retries")
	flag.StringVar(&opts.ConfigPath, "config", "", "Configuration file path")
	flag.Parse()

	return opts
}

// defaultURL points at the local readiness endpoint of the configured server
func defaultURL(configPath string) (string, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://127.0.0.1:%d%s", cfg.Server.Port, cfg.Monitoring.ReadinessPath), nil
}

// run probes the endpoint and returns the process exit code
func run(ctx context.Context, opts Options, out io.Writer) int {
	client := &http.Client{Timeout: opts.Timeout}

	var (
		response   healthcheck.Response
		statusCode int
	)
	err := retry.Do(
		func() error {
			var err error
			response, statusCode, err = probe(ctx, client, opts.URL)
			if err != nil {
				return err
			}
			if statusCode != http.StatusOK {
				return fmt.Errorf("status %d", statusCode)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(opts.RetryCount)+1),
		retry.Delay(opts.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)

	if statusCode == 0 {
		fmt.Fprintf(out, "UNREACHABLE %s: %v\n", opts.URL, err)
		return exitCodeError
	}

	output(out, opts.OutputFormat, response)
	if err != nil {
		return exitCodeFailure
	}
	return exitCodeSuccess
}

func probe(ctx context.Context, client *http.Client, url string) (healthcheck.Response, int, error) {
	var response healthcheck.Response

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return response, 0, retry.Unrecoverable(err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return response, 0, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return response, resp.StatusCode, fmt.Errorf("invalid health response: %w", err)
	}
	return response, resp.StatusCode, nil
}

func output(out io.Writer, format string, response healthcheck.Response) {
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(response)
		return
	}

	fmt.Fprintf(out, "%s (version %s)\n", response.Status, response.Version)
	for _, check := range response.Checks {
		line := fmt.Sprintf("  %-28s %s", check.Name, check.Status)
		if check.Message != "" {
			line += ": " + check.Message
		}
		fmt.Fprintln(out, line)
	}
}
