// Command mock-backend runs a deterministic Databricks model serving
// endpoint for local development and end-to-end tests. Responses are
// derived from the request so the same prompt always yields the same
// output and token usage.
//
// Special model names select failure modes:
//
//	mock-error      returns an error object with HTTP 400
//	mock-ratelimit  returns HTTP 429 without a body
//	mock-empty      returns a completion with no choices
//
// Configuration:
//
//	MOCK_PORT  - Listen port (default: 9091)
//	MOCK_TOKEN - Required bearer token (default: any token is accepted)
//	MOCK_RPM   - Requests per minute allowed per token (default: unlimited)
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9091"
	}

	rpm := 0
	if v := os.Getenv("MOCK_RPM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Error("invalid MOCK_RPM", "value", v, "error", err)
			os.Exit(1)
		}
		rpm = n
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           newMux(os.Getenv("MOCK_TOKEN"), rpm),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock backend starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("mock backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}
