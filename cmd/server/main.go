// Package main provides a local HTTP server for development and testing.
// It serves the same handlers as the Lambda functions plus the back-office
// endpoints (lead export, stats, batch reports) and Prometheus metrics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"homebuyer-lead-engine/internal/config"
	"homebuyer-lead-engine/internal/handlers"
	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/services/census"
	"homebuyer-lead-engine/internal/utils"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Server holds all dependencies
type Server struct {
	services   *handlers.Services
	health     *handlers.HealthHandler
	reports    *handlers.ReportHandler
	leads      *handlers.LeadHandler
	reportLink *handlers.ReportLinkHandler
	batch      *handlers.BatchHandler
}

// Response represents a standard API response
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel, "homebuyer-api"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()
	logger := utils.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services := handlers.NewServices(ctx, cfg)
	defer services.Close()

	server := &Server{
		services:   services,
		health:     handlers.NewHealthHandler(services.HealthOptions()),
		reports:    services.ReportHandler(),
		leads:      services.LeadHandler(),
		reportLink: services.ReportLinkHandler(),
		batch:      services.BatchHandler(models.LocaleEnglish),
	}

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("/health", server.healthHandler)
	mux.HandleFunc("/api/health", server.healthHandler)

	mux.HandleFunc("/api/report", server.reportHandler)
	mux.HandleFunc("/api/report/batch", server.batchHandler)

	mux.HandleFunc("/api/leads", server.leadsHandler)
	mux.HandleFunc("/api/leads/export", server.exportHandler)
	mux.HandleFunc("/api/leads/stats", server.statsHandler)
	mux.HandleFunc("/api/leads/report-url", server.reportURLHandler)

	mux.HandleFunc("/api/census", server.censusHandler)

	mux.Handle("/metrics", promhttp.Handler())

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           c.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received, stopping server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", utils.Error(err))
		}
	}()

	logger.Info("Homebuyer Lead Engine API Server",
		utils.String("addr", addr),
		utils.String("health", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
		utils.String("metrics", fmt.Sprintf("http://localhost:%s/metrics", cfg.Port)))

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed", utils.Error(err))
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	check, status := s.health.Check(r.Context())

	writeJSON(w, status, Response{
		Success: status == http.StatusOK,
		Message: "Homebuyer Lead Engine API is running",
		Data:    check,
	})
}

func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.reports.Generate(r.Context(), body, r.Header.Get("Accept-Language"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    resp,
	})
}

func (s *Server) batchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10MB max
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Failed to parse form: " + err.Error(),
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "No file provided",
		})
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Only CSV files are allowed",
		})
		return
	}

	locale := handlers.RequestLocale(r.FormValue("locale"), r.Header.Get("Accept-Language"))
	result, err := s.batch.Process(r.Context(), file, handlers.NewBatchID(header.Filename), locale)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: result.Message,
		Data:    result,
	})
}

func (s *Server) leadsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.submitLead(w, r)
	case http.MethodGet:
		s.listLeads(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) submitLead(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.leads.Submit(r.Context(), body, r.Header.Get("Accept-Language"))
	if err != nil {
		writeError(w, err)
		return
	}

	status := resp.StatusCode()
	message := "Lead submitted"
	if status != http.StatusCreated {
		message = "Lead could not be delivered to the CRM"
	}

	writeJSON(w, status, Response{
		Success: status == http.StatusCreated,
		Message: message,
		Data:    resp,
	})
}

func (s *Server) listLeads(w http.ResponseWriter, r *http.Request) {
	leadsList, ok := s.recentLeads(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    leadsList,
	})
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	leadsList, ok := s.recentLeads(w, r)
	if !ok {
		return
	}

	filename := fmt.Sprintf("leads_%s.csv", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)

	if err := utils.WriteLeadsCSV(w, leadsList); err != nil {
		utils.GetLogger().Error("Failed to write lead export", utils.Error(err))
	}
}

// recentLeads loads leads filtered by the status and limit query
// parameters. It writes the error response itself and reports false on
// failure.
func (s *Server) recentLeads(w http.ResponseWriter, r *http.Request) ([]*models.Lead, bool) {
	if s.services.DB == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Database not available",
		})
		return nil, false
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	status := models.LeadStatus(r.URL.Query().Get("status"))

	leadsList, err := s.services.DB.Leads().ListRecent(r.Context(), status, limit)
	if err != nil {
		utils.GetLogger().Error("Failed to list leads", utils.Error(err))
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to fetch leads",
		})
		return nil, false
	}
	return leadsList, true
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.services.DB == nil {
		writeJSON(w, http.StatusOK, Response{
			Success: true,
			Data:    map[models.LeadType]int64{},
		})
		return
	}

	counts, err := s.services.DB.Leads().CountByLeadType(r.Context())
	if err != nil {
		utils.GetLogger().Error("Failed to count leads", utils.Error(err))
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to fetch lead stats",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    counts,
	})
}

func (s *Server) reportURLHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	link, err := s.reportLink.Link(r.Context(), r.URL.Query().Get("leadId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    link,
	})
}

func (s *Server) censusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	loc := models.Location{
		Zip:  r.URL.Query().Get("zip"),
		City: r.URL.Query().Get("city"),
	}

	insights, err := s.services.Census.Lookup(r.Context(), loc)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, Response{
			Success: true,
			Data:    insights,
		})
	case errors.Is(err, census.ErrNoLocation), errors.Is(err, census.ErrInvalidZip), errors.Is(err, census.ErrZipRequired):
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
	case errors.Is(err, census.ErrNotFound):
		writeJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   err.Error(),
		})
	default:
		utils.GetLogger().Warn("Census lookup failed", utils.Error(err))
		writeJSON(w, http.StatusBadGateway, Response{
			Success: false,
			Error:   "Census data unavailable",
		})
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

func writeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, Response{
			Success: false,
			Error:   "Request body too large",
		})
		return
	}

	status, body := handlers.ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		utils.GetLogger().Error("Request failed", utils.Int("status", status), utils.Error(err))
	}

	writeJSON(w, status, Response{
		Success: false,
		Error:   body.Message,
		Fields:  body.Fields,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
