package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"metacalc/internal/service"
	"metacalc/internal/transport/rest/handler"
	"metacalc/internal/transport/rest/middleware"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService       *service.AuthService
	StudyService      *service.StudyService
	AssessmentService *service.AssessmentService
	ChartService      *service.ChartService
	StatsService      *service.StatsService
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	studyHandler := handler.NewStudyHandler(c.StudyService)
	assessHandler := handler.NewAssessmentHandler(c.AssessmentService)
	chartHandler := handler.NewChartHandler(c.ChartService)
	statsHandler := handler.NewStatsHandler(c.StatsService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Reviewer routes (require auth)
	reviewer := v1.NewRoute().Subrouter()
	reviewer.Use(authMW.RequireReviewer)

	reviewer.HandleFunc("/studies", studyHandler.List).Methods("GET", "OPTIONS")
	reviewer.HandleFunc("/studies", studyHandler.Create).Methods("POST", "OPTIONS")
	reviewer.HandleFunc("/studies", studyHandler.Clear).Methods("DELETE", "OPTIONS")
	reviewer.HandleFunc("/studies/{studyId}", studyHandler.Get).Methods("GET", "OPTIONS")
	reviewer.HandleFunc("/studies/{studyId}", studyHandler.Update).Methods("PUT", "OPTIONS")
	reviewer.HandleFunc("/studies/{studyId}", studyHandler.Delete).Methods("DELETE", "OPTIONS")
	reviewer.HandleFunc("/studies/{studyId}/duplicate", studyHandler.Duplicate).Methods("POST", "OPTIONS")
	reviewer.HandleFunc("/studies/{studyId}/progress", assessHandler.Progress).Methods("GET", "OPTIONS")

	reviewer.HandleFunc("/studies/{studyId}/domains", assessHandler.Domains).Methods("GET", "OPTIONS")
	reviewer.HandleFunc("/studies/{studyId}/domains/{domain}/questions", assessHandler.Questions).Methods("GET", "OPTIONS")
	reviewer.HandleFunc("/studies/{studyId}/domains/{domain}/answers/{question}", assessHandler.SetAnswer).Methods("PUT", "OPTIONS")
	reviewer.HandleFunc("/studies/{studyId}/domains/{domain}/judgment", assessHandler.SetJudgment).Methods("PUT", "OPTIONS")
	reviewer.HandleFunc("/studies/{studyId}/domains/{domain}/rationale", assessHandler.SetRationale).Methods("PUT", "OPTIONS")
	reviewer.HandleFunc("/studies/{studyId}/domains/{domain}/direction", assessHandler.SetBiasDirection).Methods("PUT", "OPTIONS")

	reviewer.HandleFunc("/charts/traffic-light", chartHandler.TrafficLight).Methods("GET", "OPTIONS")
	reviewer.HandleFunc("/charts/weighted-bar", chartHandler.WeightedBar).Methods("GET", "OPTIONS")

	reviewer.HandleFunc("/export", studyHandler.Export).Methods("GET", "OPTIONS")
	reviewer.HandleFunc("/import", studyHandler.Import).Methods("POST", "OPTIONS")

	reviewer.HandleFunc("/stats/se-sd", statsHandler.SEToSD).Methods("POST", "OPTIONS")
	reviewer.HandleFunc("/stats/ci-mean-sd", statsHandler.CIToMeanSD).Methods("POST", "OPTIONS")
	reviewer.HandleFunc("/stats/smd", statsHandler.SMD).Methods("POST", "OPTIONS")
	reviewer.HandleFunc("/stats/binary", statsHandler.Binary).Methods("POST", "OPTIONS")
	reviewer.HandleFunc("/stats/history", statsHandler.History).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
