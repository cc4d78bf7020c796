package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/redlinehq/redline/compare"
	"github.com/redlinehq/redline/evaluate"
	"github.com/redlinehq/redline/internal/logger"
	"github.com/redlinehq/redline/legislation"
	"github.com/redlinehq/redline/report"
	"github.com/redlinehq/redline/rules"
	"github.com/redlinehq/redline/taxonomy"
)

type Server struct {
	tax    *taxonomy.Taxonomy
	corpus *legislation.Corpus
	engine *evaluate.Engine
	store  report.Store
	router *chi.Mux
}

// NewServer loads the taxonomy and corpus (embedded defaults, or
// REDLINE_TAXONOMY / REDLINE_CORPUS_DIR overrides) and compiles the
// corpus rules into the applicability engine. Any configuration error is
// fatal here: a partially loaded corpus must never serve comparisons.
func NewServer() (*Server, error) {
	var tax *taxonomy.Taxonomy
	var err error
	if path := os.Getenv("REDLINE_TAXONOMY"); path != "" {
		tax, err = taxonomy.LoadFile(path)
	} else {
		tax, err = taxonomy.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}

	var corpus *legislation.Corpus
	if dir := os.Getenv("REDLINE_CORPUS_DIR"); dir != "" {
		corpus, err = legislation.LoadDir(dir, tax)
	} else {
		corpus, err = legislation.Load(tax)
	}
	if err != nil {
		return nil, fmt.Errorf("load legislation corpus: %w", err)
	}

	engine, err := evaluate.NewEngine()
	if err != nil {
		return nil, err
	}
	var compiled int
	var compileErr error
	corpus.EachRule(func(topic string, jur rules.Jurisdiction, leg *rules.Legislation, r rules.Rule) {
		if compileErr != nil {
			return
		}
		if err := engine.AddRule(r); err != nil {
			compileErr = err
			return
		}
		compiled++
	})
	if compileErr != nil {
		return nil, fmt.Errorf("compile corpus rules: %w", compileErr)
	}
	slog.Info("corpus loaded", "topics", len(corpus.Topics()), "compiled_rules", compiled)

	s := &Server{
		tax:    tax,
		corpus: corpus,
		engine: engine,
		store:  report.NewInMemoryStore(),
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/api/v1/health", s.handleHealth)
	r.Get("/api/v1/legislation", s.handleListLegislation)
	r.Post("/api/v1/compare", s.handleCompare)
	r.Post("/api/v1/evaluate", s.handleEvaluate)

	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Get("/", s.handleListReports)
		r.Get("/{reportId}", s.handleGetReport)
		r.Post("/{reportId}/review", s.handleReview)
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Topics: len(s.corpus.Topics()),
	})
}

func (s *Server) handleListLegislation(w http.ResponseWriter, r *http.Request) {
	topics := s.corpus.Topics()
	out := make([]LegislationSummary, 0, len(topics)*len(rules.Jurisdictions))
	for _, topic := range topics {
		for _, jur := range rules.Jurisdictions {
			leg, ok := s.corpus.Get(topic, jur)
			if !ok {
				continue
			}
			out = append(out, LegislationSummary{
				Topic:         topic,
				Jurisdiction:  jur,
				Name:          leg.Name,
				EffectiveDate: leg.EffectiveDate,
				SourceURL:     leg.SourceURL,
				RuleCount:     len(leg.Rules),
			})
		}
	}
	respondJSON(w, http.StatusOK, LegislationListResponse{Legislation: out})
}

// handleCompare runs the full pipeline on an extracted rule set:
// dedupe, normalize, match, classify, aggregate, store.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.PolicyName == "" {
		respondError(w, http.StatusBadRequest, "policy_name is required", nil)
		return
	}
	if len(req.Rules) == 0 {
		respondError(w, http.StatusBadRequest, "rules are required", nil)
		return
	}

	start := time.Now()
	deduped := rules.Deduplicate(req.Rules)
	comparison := compare.Run(deduped, s.corpus, s.tax)
	rep := report.New(req.PolicyName, comparison)

	if err := s.store.Put(rep); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to store report", err)
		return
	}

	slog.Info("comparison complete",
		"report_id", rep.ReportID,
		"rules_in", len(req.Rules),
		"rules_compared", comparison.Summary.Total,
		"conflicts", comparison.Summary.Conflicts,
		"duration", time.Since(start).String(),
	)
	respondJSON(w, http.StatusCreated, rep)
}

// handleEvaluate answers which legislation rules apply to a fact set.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Facts == nil {
		respondError(w, http.StatusBadRequest, "facts are required", nil)
		return
	}

	start := time.Now()
	var results []*evaluate.Result
	if len(req.RuleIDs) > 0 {
		results = make([]*evaluate.Result, 0, len(req.RuleIDs))
		for _, id := range req.RuleIDs {
			result, err := s.engine.Evaluate(id, req.Facts)
			if err != nil {
				respondError(w, http.StatusNotFound, "rule not found", err)
				return
			}
			results = append(results, result)
		}
	} else {
		results = s.engine.EvaluateAll(req.Facts)
	}

	respondJSON(w, http.StatusOK, EvaluateResponse{
		Results:        results,
		EvaluationTime: time.Since(start).String(),
	})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	stored := s.store.List()
	out := make([]ReportSummary, 0, len(stored))
	for _, rep := range stored {
		out = append(out, ReportSummary{
			ReportID:    rep.ReportID,
			PolicyName:  rep.PolicyName,
			GeneratedAt: rep.GeneratedAt,
			Revision:    rep.Revision,
			Summary:     rep.Comparison.Summary,
		})
	}
	respondJSON(w, http.StatusOK, ReportListResponse{Reports: out})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.store.Get(chi.URLParam(r, "reportId"))
	if err != nil {
		respondError(w, http.StatusNotFound, "report not found", err)
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// handleReview records lawyer decisions as a new report revision. The
// stored report is replaced, never mutated; edits require a fresh
// comparison run by the caller.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportId")

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if len(req.Reviews) == 0 {
		respondError(w, http.StatusBadRequest, "reviews are required", nil)
		return
	}

	rep, err := s.store.Get(reportID)
	if err != nil {
		respondError(w, http.StatusNotFound, "report not found", err)
		return
	}

	next, err := rep.ApplyReviews(req.Reviews)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to apply reviews", err)
		return
	}
	if err := s.store.Put(next); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to store revision", err)
		return
	}

	respondJSON(w, http.StatusOK, ReviewResponse{
		ReportID:      next.ReportID,
		Revision:      next.Revision,
		ReviewedCount: len(req.Reviews),
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]string{"error": message}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}

func main() {
	logger.Setup("redline-server")

	server, err := NewServer()
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	if err := logger.Shutdown(ctx); err != nil {
		slog.Error("logger shutdown error", "error", err)
	}
}
