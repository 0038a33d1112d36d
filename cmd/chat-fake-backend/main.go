// ABOUTME: Fake chat backend for manual end-to-end runs of coven-chat
// ABOUTME: Usage: chat-fake-backend [-addr localhost:5000] [-prefix /api] [-secret s] [-seed doc1,doc2] [-fail messages=503]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/2389/coven-chat/internal/auth"
	"github.com/2389/coven-chat/internal/fakeapi"
)

func main() {
	addr := flag.String("addr", "localhost:5000", "listen address")
	prefix := flag.String("prefix", "/api", "path prefix the API is served under")
	secret := flag.String("secret", "", "require bearer tokens signed with this secret")
	delay := flag.Duration("delay", 40*time.Millisecond, "pause between streamed chunks")
	seed := flag.String("seed", "", "comma-separated document ids to create one conversation for")
	fail := flag.String("fail", "", "route=status to fail every request to (e.g. messages=503)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if err := run(logger, *addr, *prefix, *secret, *delay, *seed, *fail); err != nil {
		logger.Error("fake backend failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, addr, prefix, secret string, delay time.Duration, seed, fail string) error {
	opts := []fakeapi.Option{
		fakeapi.WithChunkDelay(delay),
		fakeapi.WithLogger(logger),
	}
	if secret != "" {
		opts = append(opts, fakeapi.WithSecret([]byte(secret)))
		token, err := auth.Issue([]byte(secret), "chat-fake-backend", 24*time.Hour)
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}
		fmt.Fprintf(os.Stderr, "bearer token (24h): %s\n", token)
	}

	backend := fakeapi.New(opts...)
	for _, doc := range strings.Split(seed, ",") {
		if doc = strings.TrimSpace(doc); doc != "" {
			conv := backend.AddConversation(doc)
			logger.Info("seeded conversation", "document_id", doc, "conversation_id", conv.ID)
		}
	}
	if fail != "" {
		route, status, err := parseFailure(fail)
		if err != nil {
			return err
		}
		backend.Fail(route, fakeapi.Failure{
			Status:      status,
			Body:        "<!doctype html><html><body><h1>" + http.StatusText(status) + "</h1></body></html>",
			ContentType: "text/html; charset=utf-8",
		})
	}

	mux := http.NewServeMux()
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		mux.Handle("/", backend.Handler())
	} else {
		mux.Handle(prefix+"/", http.StripPrefix(prefix, backend.Handler()))
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "prefix", prefix)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func parseFailure(s string) (fakeapi.Route, int, error) {
	name, code, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, fmt.Errorf("invalid -fail %q, want route=status", s)
	}
	var status int
	if _, err := fmt.Sscanf(code, "%d", &status); err != nil || status < 400 || status > 599 {
		return "", 0, fmt.Errorf("invalid -fail status %q", code)
	}
	return fakeapi.Route(name), status, nil
}
