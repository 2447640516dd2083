// Package server exposes the reconciliation engine and the upstream
// platform clients over an authenticated HTTP API.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campaign-reconciliation-service/internal/clients/meta"
	"campaign-reconciliation-service/internal/models"
	"campaign-reconciliation-service/internal/reconciler"
	apperrors "campaign-reconciliation-service/pkg/errors"
	"campaign-reconciliation-service/pkg/logger"
)

// MetaAPI is the Meta client surface the server consumes.
type MetaAPI interface {
	GetAdAccounts(ctx context.Context, token string) ([]models.AdAccount, error)
	GetCampaigns(ctx context.Context, token, adAccountID string) ([]models.Campaign, error)
	GetAdSets(ctx context.Context, token, adAccountID string) ([]models.AdSet, error)
	GetAds(ctx context.Context, token, adAccountID string) ([]models.Ad, error)
	GetInsights(ctx context.Context, token, adAccountID, datePreset, level string) ([]models.Insight, error)
	GetInsightsByDateRange(ctx context.Context, token, adAccountID, startDate, endDate, level string) ([]models.Insight, error)
	GetAll(ctx context.Context, token, startDate, endDate string) (*meta.AllData, error)
}

// TrendyolAPI is the Trendyol client surface the server consumes.
type TrendyolAPI interface {
	GetReports(ctx context.Context, token string, startDate, endDate int64) ([]models.CommerceReport, error)
}

// Config holds the HTTP server settings.
type Config struct {
	Addr          string        `json:"addr"`
	JWTSecret     string        `json:"jwt_secret"`
	AdminUsername string        `json:"admin_username"`
	AdminPassword string        `json:"admin_password"`
	TokenTTL      time.Duration `json:"token_ttl"`
}

// Validate checks the server configuration.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return apperrors.ConfigurationError(apperrors.CodeMissingConfig, "server.addr", c.Addr, nil)
	}
	if c.JWTSecret == "" {
		return apperrors.ConfigurationError(apperrors.CodeMissingConfig, "server.jwt_secret", "", nil)
	}
	if c.AdminUsername == "" || c.AdminPassword == "" {
		return apperrors.ConfigurationError(apperrors.CodeMissingConfig, "server.admin credentials", "", nil)
	}
	return nil
}

// Server wires the router, clients and reconciliation engine together.
type Server struct {
	config   Config
	tokens   *TokenService
	meta     MetaAPI
	trendyol TrendyolAPI
	engine   *reconciler.Engine
	router   chi.Router
	log      logger.Logger
}

// NewServer builds the server and its route table.
func NewServer(config Config, metaAPI MetaAPI, trendyolAPI TrendyolAPI, engine *reconciler.Engine) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if engine == nil {
		engine = reconciler.NewEngine(nil)
	}

	s := &Server{
		config:   config,
		tokens:   NewTokenService(config.JWTSecret, config.TokenTTL),
		meta:     metaAPI,
		trendyol: trendyolAPI,
		engine:   engine,
		log:      logger.GetGlobalLogger().WithComponent("server"),
	}
	s.router = s.buildRouter()
	return s, nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(instrument)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/login", s.handleLogin)

		api.Group(func(protected chi.Router) {
			protected.Use(s.requireAuth)

			protected.Post("/reports", s.handleReports)
			protected.Post("/combined", s.handleCombined)

			protected.Route("/meta", func(m chi.Router) {
				m.Post("/all", s.handleMetaAll)
				m.Get("/accounts", s.handleMetaAccounts)
				m.Get("/campaigns/{accountID}", s.handleMetaCampaigns)
				m.Get("/adsets/{accountID}", s.handleMetaAdSets)
				m.Get("/ads/{accountID}", s.handleMetaAds)
				m.Get("/insights/{accountID}", s.handleMetaInsights)
			})
		})
	})

	return r
}

// Router returns the HTTP handler for mounting or testing.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe runs the server until the context is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.config.Addr).Info("Server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// logRequests emits one structured log line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logger.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"latency": time.Since(start).String(),
		}).Info("Request handled")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps categorized errors onto HTTP statuses and emits the
// {"error": ...} body the dashboard expects.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	if appErr, ok := apperrors.AsAppError(err); ok {
		status = appErr.HTTPStatus()
		message = appErr.Message
	}

	writeJSON(w, status, map[string]string{"error": message})
}
