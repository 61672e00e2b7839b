package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pricedrop/tracker-cli/internal/items"
	"github.com/pricedrop/tracker-cli/internal/journal"
	"github.com/pricedrop/tracker-cli/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tracker HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initTracker(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		a := newAPI(ctx, env)
		router := buildRouter(a, cfg.Server.CORSOrigins)

		return startServer(ctx, router, resolvePort(servePort, cfg.Server.Port))
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// resolvePort prefers the flag value over the configured port.
func resolvePort(flagPort, cfgPort int) int {
	if flagPort != 0 {
		return flagPort
	}
	return cfgPort
}

// api serves the read-only tracker endpoints plus on-demand cycle
// triggers. Cycles run on their own goroutine, one at a time.
type api struct {
	runCtx context.Context
	env    *trackerEnv
	busy   atomic.Bool
}

func newAPI(ctx context.Context, env *trackerEnv) *api {
	return &api{runCtx: ctx, env: env}
}

// buildRouter wires the API routes with CORS for the given origins.
func buildRouter(a *api, origins []string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", a.handleHealth)
	r.Get("/api/items", a.handleItems)
	r.Get("/api/history", a.handleHistory)
	r.Get("/api/history/{name}", a.handleItemHistory)
	r.Get("/api/checks", a.handleChecks)
	r.Post("/api/check", a.handleTriggerCheck)

	return r
}

// startServer runs the HTTP server until ctx is cancelled, then shuts it
// down gracefully.
func startServer(ctx context.Context, handler http.Handler, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("starting api server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *api) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *api) handleItems(w http.ResponseWriter, _ *http.Request) {
	list, err := items.Load(cfg.ItemsFile)
	if err != nil {
		zap.L().Error("api: load items", zap.Error(err))
		http.Error(w, `{"error":"could not load items"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []model.Item{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *api) handleHistory(w http.ResponseWriter, _ *http.Request) {
	h, err := a.env.Store.Load()
	if err != nil {
		zap.L().Error("api: load history", zap.Error(err))
		http.Error(w, `{"error":"could not load history"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (a *api) handleItemHistory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	h, err := a.env.Store.Load()
	if err != nil {
		zap.L().Error("api: load history", zap.Error(err))
		http.Error(w, `{"error":"could not load history"}`, http.StatusInternalServerError)
		return
	}

	obs, ok := h[name]
	if !ok {
		http.Error(w, `{"error":"item not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, obs)
}

func (a *api) handleChecks(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	checks, err := a.env.Journal.RecentChecks(r.Context(), r.URL.Query().Get("item"), limit)
	if err != nil {
		zap.L().Error("api: recent checks", zap.Error(err))
		http.Error(w, `{"error":"could not query journal"}`, http.StatusInternalServerError)
		return
	}
	if checks == nil {
		checks = []journal.Check{}
	}
	writeJSON(w, http.StatusOK, checks)
}

func (a *api) handleTriggerCheck(w http.ResponseWriter, _ *http.Request) {
	if !a.busy.CompareAndSwap(false, true) {
		http.Error(w, `{"error":"a cycle is already running"}`, http.StatusConflict)
		return
	}

	// Run on the server's context, not the request's: the response
	// returns immediately while the cycle keeps going.
	go func() {
		defer a.busy.Store(false)
		outcomes, err := runTrackingCycle(a.runCtx, a.env, "")
		if err != nil {
			zap.L().Error("api: triggered cycle failed", zap.Error(err))
			return
		}
		zap.L().Info("api: triggered cycle complete", zap.Int("items", len(outcomes)))
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
