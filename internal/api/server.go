// Package api exposes the HTTP interface for the audit service.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/serptools/queryaudit/internal/audit"
	"github.com/serptools/queryaudit/internal/config"
	"github.com/serptools/queryaudit/internal/export"
	"github.com/serptools/queryaudit/internal/metrics"
)

// IDGenerator labels analysis runs.
type IDGenerator interface {
	NewID() (string, error)
}

// Server wires HTTP handlers to the analyzer and session. The server owns a
// single session; incremental POSTs extend it and /reset clears it.
type Server struct {
	router   chi.Router
	analyzer *audit.Analyzer
	session  *audit.Session
	idGen    IDGenerator
	cfg      config.Config
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	analyzer *audit.Analyzer,
	session *audit.Session,
	idGen IDGenerator,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		analyzer: analyzer,
		session:  session,
		idGen:    idGen,
		cfg:      cfg,
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(5 * time.Minute))

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/audits", func(r chi.Router) {
			r.Post("/", s.runAudit)
			r.Get("/summary", s.getSummary)
			r.Get("/records", s.getRecords)
			r.Get("/export", s.exportCSV)
			r.Post("/reset", s.resetSession)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type auditRequest struct {
	Rows []audit.QueryRow `json:"rows"`
	// BrandedTerms overrides the configured exclusion list when non-nil.
	BrandedTerms []string `json:"branded_terms"`
}

type auditResponse struct {
	RunID   string        `json:"run_id"`
	Summary audit.Summary `json:"summary"`
}

func (s *Server) runAudit(w http.ResponseWriter, r *http.Request) {
	var req auditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := validateRows(req.Rows); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	terms := s.cfg.Analysis.BrandedTerms
	if req.BrandedTerms != nil {
		terms = req.BrandedTerms
	}
	rows := audit.FilterBranded(req.Rows, terms)

	runID, err := s.idGen.NewID()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "id generation failed")
		return
	}

	summary, err := s.analyzer.Run(r.Context(), s.session, rows)
	if err != nil {
		if errors.Is(err, audit.ErrNoRows) {
			writeError(w, http.StatusUnprocessableEntity, "no rows to analyze after branded-term filtering")
			return
		}
		s.logger.Error("audit run failed", zap.String("run_id", runID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "audit run failed")
		return
	}

	writeJSON(w, http.StatusOK, auditResponse{RunID: runID, Summary: summary})
}

func (s *Server) getSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Summary())
}

func (s *Server) getRecords(w http.ResponseWriter, _ *http.Request) {
	records := s.session.Records()
	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}

func (s *Server) exportCSV(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="seo_analysis_results.csv"`)
	if err := export.WriteCSV(w, s.session.Records()); err != nil {
		s.logger.Error("csv export failed", zap.Error(err))
	}
}

func (s *Server) resetSession(w http.ResponseWriter, _ *http.Request) {
	s.session.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func validateRows(rows []audit.QueryRow) error {
	if len(rows) == 0 {
		return errors.New("rows must not be empty")
	}
	for i, row := range rows {
		if row.Query == "" {
			return fmt.Errorf("row %d: query must not be empty", i)
		}
		if row.LandingPage == "" {
			return fmt.Errorf("row %d: landing_page must not be empty", i)
		}
		if row.Clicks < 0 || row.Impressions < 0 {
			return fmt.Errorf("row %d: clicks and impressions must be >= 0", i)
		}
	}
	return nil
}
