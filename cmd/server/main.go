// Package main serves Prometheus metrics, stored run reports and a
// WebSocket feed of equity points for runs started over HTTP.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"options-sim-lab/internal/app"
	"options-sim-lab/internal/backtest"
	"options-sim-lab/internal/config"
	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/ingestion"
	"options-sim-lab/internal/observability"
	"options-sim-lab/internal/reporting"
	"options-sim-lab/internal/storage"
	"options-sim-lab/internal/stream"
)

// Server holds the HTTP handlers and the background runs they start.
type Server struct {
	app    *app.App
	hub    *stream.Hub
	runner *backtest.Runner
	logger *zap.Logger

	mu      sync.Mutex
	running int
	wg      sync.WaitGroup
}

func main() {
	// Parse flags
	configPath := flag.String("config", "", "YAML config file")
	barsCSV := flag.String("bars", "", "CSV file of bars to load at startup")
	addr := flag.String("addr", "", "HTTP listen address (overrides server.addr)")
	overrides := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, *configPath, overrides.Apply)
	if err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())
	logger := a.Logger.Named("server")

	if *barsCSV != "" {
		mgr := ingestion.NewManager(ingestion.ManagerOptions{
			BarSource: ingestion.NewCSVBarSource(*barsCSV),
			BarStore:  a.Stores.Bars,
			Logger:    logger,
		})
		if _, err := mgr.IngestBars(ctx, a.Config.Profile.Symbol); err != nil {
			logger.Error("load bars", zap.Error(err))
			a.Close(context.Background())
			os.Exit(1)
		}
	}

	hub := stream.NewHub(stream.DefaultConfig(), logger)
	s := &Server{
		app:    a,
		hub:    hub,
		logger: logger,
	}
	s.runner = a.Runner(backtest.Options{OnEquity: hub.PublishEquity})

	listen := a.Config.Server.Addr
	if *addr != "" {
		listen = *addr
	}
	srv := &http.Server{
		Addr:              listen,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", listen))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("http server", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	s.wg.Wait()
	hub.Close()
	logger.Info("shutdown complete")
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", observability.Handler(s.app.Registry))
	mux.Handle("GET /ws", s.hub)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /runs", s.handleRuns)
	mux.HandleFunc("GET /runs/{id}/report", s.handleReport)
	mux.HandleFunc("POST /runs", s.handleStartRun)
	return mux
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"running_runs": running,
		"subscribers":  s.hub.Clients(),
		"storage":      s.app.Config.Storage.Backend,
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.app.Stores.Runs.GetAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	gen := reporting.NewGenerator(s.app.Stores.Runs, s.app.Stores.Trades, s.app.Stores.Equity)
	report, err := gen.Generate(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(reporting.RenderMarkdown(report)))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleStartRun starts the configured job in the background. The
// scenario query parameter selects another cost scenario.
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	job, err := s.app.Job()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if job.Profile.ProfileID == "" {
		writeError(w, http.StatusBadRequest, errors.New("server config has no profile"))
		return
	}
	if id := r.URL.Query().Get("scenario"); id != "" {
		scenario, ok := domain.ScenarioByID(id)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %q", config.ErrUnknownScenario, id))
			return
		}
		job.Scenario = scenario
	}

	s.mu.Lock()
	s.running++
	s.mu.Unlock()
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			s.running--
			s.mu.Unlock()
		}()

		out, err := s.runner.Run(context.Background(), job)
		if err != nil && !errors.Is(err, backtest.ErrRunExists) {
			s.logger.Error("background run failed", zap.Error(err))
			return
		}
		if err := s.hub.PublishRun(out.Run); err != nil {
			s.logger.Warn("publish run", zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":   "started",
		"profile":  job.Profile.ProfileID,
		"scenario": job.Scenario.ScenarioID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
