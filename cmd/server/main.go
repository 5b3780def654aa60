package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/choc763-lab/chocbear2/internal/config"
	"github.com/choc763-lab/chocbear2/internal/engine"
	"github.com/choc763-lab/chocbear2/internal/httpapi"
	"github.com/choc763-lab/chocbear2/internal/logger"
	"github.com/choc763-lab/chocbear2/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := session.New(ctx, engine.NewState(cfg.Rules()), clockwork.NewRealClock(), zl)
	handler := httpapi.SetupRoutes(sess, zl, cfg.AllowedOrigins)

	srv := &http.Server{Addr: cfg.Addr, Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zl.Info("listening", zap.String("addr", cfg.Addr), zap.String("env", cfg.Env))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Fatal("server failed", zap.Error(err))
	}

	sess.Inbox() <- session.Shutdown{}
	zl.Info("shut down cleanly")
}
