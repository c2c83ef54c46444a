// Package serverapp assembles the running service: storage, saved state,
// the engine, the HTTP surface, and the background loops.
package serverapp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"tuluyen/internal/config"
	"tuluyen/internal/game"
	"tuluyen/internal/gen"
	"tuluyen/internal/httpmw"
	"tuluyen/internal/model"
	"tuluyen/internal/state"
	"tuluyen/internal/storage"
)

type Options struct {
	Config *config.Config
	Env    config.Env
	Logger *log.Logger

	// Generator overrides the default Gemini client, used by tests.
	Generator gen.Generator
}

// App is the assembled service. Handler serves traffic; Run drives the
// background loops until the context is canceled.
type App struct {
	Handler http.Handler
	Engine  *game.Engine
	Store   storage.Store

	logger   *log.Logger
	autosave time.Duration
}

func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if strings.TrimSpace(opts.Env.DataDir) == "" {
		opts.Env.DataDir = "data"
	}

	store, err := openStore(opts.Env)
	if err != nil {
		return nil, err
	}

	loaded, found := state.Load(context.Background(), store, opts.Logger)
	st := state.NewStore(loaded)
	if !found {
		// No saved character: apply the configured starting resources.
		start := opts.Config.Start
		st.Update(func(s *state.State) {
			s.Character.Gold = start.Gold
			s.Character.Stats = model.Stats{
				Strength:  start.Stat,
				Intellect: start.Stat,
				Spirit:    start.Stat,
				Social:    start.Stat,
				Finance:   start.Stat,
			}
		})
	}

	generator := opts.Generator
	if generator == nil {
		generator = gen.NewGemini(opts.Env.GeminiAPIKey, opts.Env.TextModel, opts.Env.ImageModel)
	}

	engine := game.New(st, generator, store, opts.Config, opts.Logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		fmt.Fprintf(w, `{"ok":true,"service":"tuluyen","time":%q}`+"\n",
			time.Now().UTC().Format(time.RFC3339))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := store.Get(r.Context(), storage.KeyCharacter); err != nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		fmt.Fprintln(w, `{"ready":true}`)
	})
	game.NewHandler(engine).Register(mux)

	handler := httpmw.Chain(mux,
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
		httpmw.WithAccessLog(opts.Logger),
	)

	return &App{
		Handler:  handler,
		Engine:   engine,
		Store:    store,
		logger:   opts.Logger,
		autosave: time.Duration(opts.Config.Autosave.IntervalSeconds) * time.Second,
	}, nil
}

func openStore(env config.Env) (storage.Store, error) {
	switch env.Storage {
	case "", "file":
		return storage.NewFile(env.DataDir)
	case "sqlite":
		return storage.NewSQLite(env.DataDir)
	case "memory":
		return storage.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", env.Storage)
	}
}

// Run starts the autosave loop and the daily check, rerunning the check
// hourly so a process alive at midnight rolls over. Blocks until ctx ends.
func (a *App) Run(ctx context.Context) {
	go state.Autosave(ctx, a.Engine.State, a.Store, a.autosave, a.logger)

	go func() {
		a.Engine.CheckDaily(ctx)
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.Engine.CheckDaily(ctx)
			}
		}
	}()

	<-ctx.Done()
}

// Close releases the storage backend.
func (a *App) Close() error {
	if c, ok := a.Store.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
