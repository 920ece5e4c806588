// Package server exposes the advisor over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"funding-advisor/internal/advisor"
	"funding-advisor/internal/common/config"
	"funding-advisor/internal/common/logger"
	"funding-advisor/internal/common/metrics"
	"funding-advisor/internal/models"
)

// AdvisorService is the slice of the advisor the HTTP layer needs.
type AdvisorService interface {
	Analyze(ctx context.Context, profile *models.CompanyProfile) (*advisor.AnalysisResult, error)
	ClearCache(ctx context.Context) (int, error)
}

// Server is the HTTP front of the advisor.
type Server struct {
	httpServer *http.Server
	service    AdvisorService
	log        logger.Logger
}

// New builds the server with its routes registered.
func New(cfg config.ServerConfig, service AdvisorService, log logger.Logger) *Server {
	s := &Server{service: service, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/v1/cache/clear", s.handleCacheClear)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:    cfg.Address,
		Handler: mux,
		// Analyze requests cover live fetches of several sources, so the
		// write timeout is generous.
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
	}
	return s
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", map[string]interface{}{"address": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// analyzeRequest is the analyze endpoint's request body.
type analyzeRequest struct {
	CompanyName       string   `json:"company_name"`
	BusinessID        string   `json:"business_id"`
	Industry          string   `json:"industry"`
	IndustryKeywords  []string `json:"industry_keywords"`
	Region            string   `json:"region"`
	EmployeeCount     int      `json:"employee_count"`
	FundingNeedAmount int64    `json:"funding_need_amount"`
	GrowthStage       string   `json:"growth_stage"`
	FundingPurpose    string   `json:"funding_purpose"`
	AdditionalInfo    string   `json:"additional_info"`
}

func (r *analyzeRequest) validate() error {
	if strings.TrimSpace(r.CompanyName) == "" {
		return fmt.Errorf("company_name is required")
	}
	if strings.TrimSpace(r.Industry) == "" {
		return fmt.Errorf("industry is required")
	}
	if r.EmployeeCount < 0 {
		return fmt.Errorf("employee_count must not be negative")
	}
	if r.FundingNeedAmount < 0 {
		return fmt.Errorf("funding_need_amount must not be negative")
	}
	if !models.GrowthStage(r.GrowthStage).Valid() {
		return fmt.Errorf("growth_stage must be one of pre-seed, seed, growth, scale-up")
	}
	if !models.FundingPurpose(r.FundingPurpose).Valid() {
		return fmt.Errorf("funding_purpose must be one of rdi, internationalization, investments, equipment, working_capital")
	}
	return nil
}

func (r *analyzeRequest) profile() *models.CompanyProfile {
	return &models.CompanyProfile{
		CompanyName:       strings.TrimSpace(r.CompanyName),
		BusinessID:        strings.TrimSpace(r.BusinessID),
		Industry:          strings.ToLower(strings.TrimSpace(r.Industry)),
		IndustryKeywords:  r.IndustryKeywords,
		Region:            strings.ToLower(strings.TrimSpace(r.Region)),
		EmployeeCount:     r.EmployeeCount,
		FundingNeedAmount: r.FundingNeedAmount,
		GrowthStage:       models.GrowthStage(r.GrowthStage),
		FundingPurpose:    models.FundingPurpose(r.FundingPurpose),
		AdditionalInfo:    strings.TrimSpace(r.AdditionalInfo),
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.AnalyzeRequests.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := req.validate(); err != nil {
		metrics.AnalyzeRequests.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.Analyze(r.Context(), req.profile())
	if err != nil {
		s.log.WithError(err).Error("Analysis failed", nil)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	removed, err := s.service.ClearCache(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cache clear failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
