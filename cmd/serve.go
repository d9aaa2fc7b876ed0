package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-scout/internal/model"
	"github.com/sells-group/prospect-scout/internal/research"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the discovery and crawl HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(env.Orchestrator, env.Crawler, env.Research, cfg.Crawl.MaxPages),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// analyzer is the slice of research.Service the API needs.
type analyzer interface {
	Analyze(ctx context.Context, req model.DiscoveryRequest, opts research.AnalyzeOptions) (*research.AnalysisResult, error)
}

// newRouter builds the API routes over the given services. defaultMaxPages
// bounds crawl requests that do not set their own budget.
func newRouter(discoverer research.Discoverer, crawler research.SiteCrawler, analyze analyzer, defaultMaxPages int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/v1/discover", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			CompanyName string `json:"company_name"`
			Industry    string `json:"industry,omitempty"`
			Location    string `json:"location,omitempty"`
			CompanyType string `json:"company_type,omitempty"`
			TimeoutSecs int    `json:"timeout_secs,omitempty"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.CompanyName == "" {
			writeError(w, http.StatusBadRequest, "company_name is required")
			return
		}

		dreq := model.NewDiscoveryRequest(body.CompanyName)
		dreq.IndustryHint = body.Industry
		dreq.LocationHint = body.Location
		dreq.CompanyTypeHint = body.CompanyType
		if body.TimeoutSecs > 0 {
			dreq.Timeout = time.Duration(body.TimeoutSecs) * time.Second
		}

		result, err := discoverer.Discover(req.Context(), dreq)
		if err != nil {
			zap.L().Error("api discover failed", zap.String("company", body.CompanyName), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "discovery failed")
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	r.Post("/v1/crawl", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			SiteURL  string   `json:"site_url"`
			MaxPages int      `json:"max_pages,omitempty"`
			Keywords []string `json:"keywords,omitempty"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.SiteURL == "" {
			writeError(w, http.StatusBadRequest, "site_url is required")
			return
		}

		maxPages := body.MaxPages
		if maxPages <= 0 {
			maxPages = defaultMaxPages
		}

		result, err := crawler.Crawl(req.Context(), body.SiteURL, maxPages, body.Keywords)
		if err != nil {
			zap.L().Error("api crawl failed", zap.String("site", body.SiteURL), zap.Error(err))
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	r.Post("/v1/analyze", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			CompanyName string   `json:"company_name"`
			MaxPages    int      `json:"max_pages,omitempty"`
			Keywords    []string `json:"keywords,omitempty"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.CompanyName == "" {
			writeError(w, http.StatusBadRequest, "company_name is required")
			return
		}

		maxPages := body.MaxPages
		if maxPages <= 0 {
			maxPages = defaultMaxPages
		}

		analysis, err := analyze.Analyze(req.Context(), model.NewDiscoveryRequest(body.CompanyName), research.AnalyzeOptions{
			MaxPages: maxPages,
			Keywords: body.Keywords,
		})
		if err != nil {
			zap.L().Error("api analyze failed", zap.String("company", body.CompanyName), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "analysis failed")
			return
		}
		writeJSON(w, http.StatusOK, analysis)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
