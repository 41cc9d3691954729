package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hollando78/airgen-sub002/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("failed to start: %v\n", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:    ":" + a.Cfg.Port,
		Handler: a.Router,
	}

	go func() {
		a.Log.Info("listening", "port", a.Cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	a.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Log.Warn("http shutdown failed", "error", err)
	}
	a.Close(shutdownCtx)
}
