// Command server runs the cultivation tracker API.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tuluyen/internal/config"
	"tuluyen/internal/serverapp"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	env, err := config.FromEnv()
	if err != nil {
		log.Fatalf("parse environment: %v", err)
	}
	cfg, err := config.Load(env.ConfigPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	app, err := serverapp.New(serverapp.Options{
		Config: cfg,
		Env:    env,
		Logger: log.Default(),
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              env.Addr,
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("listening on http://localhost%s", env.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	app.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
