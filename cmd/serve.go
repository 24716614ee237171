package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadverify/internal/config"
	"github.com/sells-group/leadverify/internal/model"
	"github.com/sells-group/leadverify/internal/orchestrator"
	"github.com/sells-group/leadverify/internal/scrape"
)

var (
	serveAddr       string
	serveConfigPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an HTTP server that verifies lead batches on demand",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		configs, err := scrape.LoadConfigs(scrapersPath(serveConfigPath))
		if err != nil {
			return err
		}

		// Instances are shared across requests so each scraper's rate
		// window covers the whole process, not a single request.
		instances, err := scrape.Build(scrape.Default(), configs)
		if err != nil {
			return err
		}

		mux := buildMux(cfg.Run, instances)
		addr := resolveAddr(serveAddr, cfg.Server.Addr)

		zap.L().Info("starting server",
			zap.String("addr", addr),
			zap.Int("scrapers", len(instances)),
		)
		return startServer(ctx, mux, addr)
	},
}

// verifyRequest is the POST /verify payload. Run settings fall back to the
// server's configured defaults when omitted.
type verifyRequest struct {
	Leads        []model.Lead `json:"leads"`
	Mode         string       `json:"mode,omitempty"`
	MaxWorkers   int          `json:"max_workers,omitempty"`
	RaiseOnError *bool        `json:"raise_on_error,omitempty"`
}

// buildMux wires the HTTP routes. Scraper instances are shared across
// requests; each request gets its own engine so report stats stay isolated.
func buildMux(defaults config.RunConfig, instances []*scrape.Instance) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /verify", func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if len(req.Leads) == 0 {
			http.Error(w, `{"error":"leads is required"}`, http.StatusBadRequest)
			return
		}

		// Records are keyed by batch position, whatever the client sent.
		for i := range req.Leads {
			req.Leads[i].Index = i
		}

		opts := orchestrator.Options{
			Mode:         orchestrator.Mode(defaults.Mode),
			MaxWorkers:   defaults.MaxWorkers,
			RaiseOnError: defaults.RaiseOnError,
		}
		if req.Mode != "" {
			opts.Mode = orchestrator.Mode(req.Mode)
		}
		if req.MaxWorkers > 0 {
			opts.MaxWorkers = req.MaxWorkers
		}
		if req.RaiseOnError != nil {
			opts.RaiseOnError = *req.RaiseOnError
		}

		eng, err := orchestrator.New(instances, opts)
		if err != nil {
			http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadRequest)
			return
		}

		report, err := eng.Run(r.Context(), req.Leads)
		if err != nil {
			zap.L().Error("verify request failed",
				zap.Int("leads", len(req.Leads)),
				zap.Error(err),
			)
			http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(report)
	})

	return mux
}

// resolveAddr picks the flag value when set, the configured one otherwise.
func resolveAddr(flagValue, configured string) string {
	if flagValue != "" {
		return flagValue
	}
	return configured
}

// startServer serves mux until ctx is cancelled, then shuts down gracefully.
func startServer(ctx context.Context, mux *http.ServeMux, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		srv.Shutdown(context.Background())
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "path to the scrapers YAML (default from config.yaml)")
	rootCmd.AddCommand(serveCmd)
}
