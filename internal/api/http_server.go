package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rentacar/internal/config"
	"rentacar/internal/database"
	"rentacar/internal/export"
	"rentacar/internal/gateway"
	"rentacar/internal/models"
	"rentacar/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type AuditSource interface {
	RecentEvents(ctx context.Context, limit int) ([]database.AuditEntry, error)
}

// maxAuditLimit caps how many audit entries one request may read.
const maxAuditLimit = 500

type Deps struct {
	Reservations  *service.ReservationService
	Auth          *service.AuthService
	Sessions      *service.SessionService
	Health        HealthChecker
	Audit         AuditSource
	DefaultPolicy service.AvailabilityPolicy
}

// HTTPServer is the JSON API the browser front end calls.
type HTTPServer struct {
	cfg     config.ServerConfig
	deps    Deps
	server  *http.Server
	handler http.Handler
	logger  *zerolog.Logger
	now     func() time.Time
}

func NewHTTPServer(cfg config.ServerConfig, deps Deps, logger *zerolog.Logger) *HTTPServer {
	if deps.DefaultPolicy == "" {
		deps.DefaultPolicy = service.PolicyHide
	}
	srv := &HTTPServer{cfg: cfg, deps: deps, logger: logger, now: time.Now}

	r := mux.NewRouter()
	r.Use(loggingMiddleware(logger), newRateLimiter(cfg.RateLimit).middleware, tokenMiddleware([]byte(cfg.JWTSecret), func() time.Time { return srv.now() }))

	r.HandleFunc("/healthz", srv.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", srv.handleReady).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/auth/login", srv.handleLogin).Methods(http.MethodPost)
	v1.HandleFunc("/auth/validate", srv.handleValidateToken).Methods(http.MethodGet)
	v1.HandleFunc("/quote", srv.handleQuote).Methods(http.MethodGet)
	v1.HandleFunc("/reservations/validate", srv.handleValidate).Methods(http.MethodPost)
	v1.HandleFunc("/reservations/mine", srv.handleMyReservations).Methods(http.MethodGet)
	v1.HandleFunc("/reservations", srv.handleCreateReservation).Methods(http.MethodPost)
	v1.HandleFunc("/reservations/{id}", srv.handleCancelReservation).Methods(http.MethodDelete)
	v1.HandleFunc("/vehicles", srv.handleVehicles).Methods(http.MethodGet)
	v1.HandleFunc("/vehicles/{id}", srv.handleVehicle).Methods(http.MethodGet)
	v1.HandleFunc("/sessions", srv.handleStartSession).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{id}", srv.handleEndSession).Methods(http.MethodDelete)
	v1.HandleFunc("/sessions/{id}/dates", srv.handleSessionDates).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{id}/dates", srv.handleUpdateSessionDates).Methods(http.MethodPut)
	v1.HandleFunc("/sessions/{id}/dates", srv.handleClearSessionDates).Methods(http.MethodDelete)

	admin := v1.PathPrefix("/admin").Subrouter()
	var validator TokenValidator
	if deps.Auth != nil {
		validator = deps.Auth
	}
	admin.Use(adminOnly(func() time.Time { return srv.now() }, validator))
	admin.HandleFunc("/reservations", srv.handleAdminReservations).Methods(http.MethodGet)
	admin.HandleFunc("/reservations/export", srv.handleExport).Methods(http.MethodGet)
	admin.HandleFunc("/dashboard", srv.handleDashboard).Methods(http.MethodGet)
	admin.HandleFunc("/vehicles", srv.handleCreateVehicle).Methods(http.MethodPost)
	admin.HandleFunc("/vehicles/{id}", srv.handleUpdateVehicle).Methods(http.MethodPut)
	admin.HandleFunc("/vehicles/{id}", srv.handleDeleteVehicle).Methods(http.MethodDelete)
	admin.HandleFunc("/vehicles/{id}/status", srv.handleVehicleStatus).Methods(http.MethodPut)
	admin.HandleFunc("/audit", srv.handleAudit).Methods(http.MethodGet)

	var handler http.Handler = r
	if len(cfg.CORSOrigins) > 0 {
		handler = handlers.CORS(
			handlers.AllowedOrigins(cfg.CORSOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Request-ID"}),
			handlers.ExposedHeaders([]string{"X-Request-ID", "Content-Disposition"}),
		)(r)
	}
	srv.handler = handler

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		if err := s.deps.Health.Ping(r.Context()); err != nil {
			s.logger.Warn().Err(err).Msg("readiness check failed")
			writeError(w, http.StatusServiceUnavailable, "not_ready", "local store unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.deps.Auth == nil {
		writeError(w, http.StatusServiceUnavailable, "auth_unavailable", "login is not configured")
		return
	}
	var creds models.Credentials
	if err := decodeBody(r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}

	session, err := s.deps.Auth.Login(r.Context(), creds)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *HTTPServer) handleValidateToken(w http.ResponseWriter, r *http.Request) {
	if gateway.TokenFromContext(r.Context()) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	if s.deps.Auth == nil {
		writeError(w, http.StatusServiceUnavailable, "auth_unavailable", "token validation is not configured")
		return
	}
	valid, err := s.deps.Auth.ValidateToken(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

func (s *HTTPServer) handleQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	price := 0.0
	if raw := strings.TrimSpace(q.Get("price_per_day")); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil || p < 0 {
			writeError(w, http.StatusBadRequest, "invalid_price", "price_per_day must be a non-negative number")
			return
		}
		price = p
	}

	stay, err := service.QuoteStay(q.Get("start"), q.Get("end"), price)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stay)
}

func (s *HTTPServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	var candidate models.ReservationCandidate
	if err := decodeBody(r, &candidate); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Reservations.Validate(candidate))
}

func (s *HTTPServer) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	var candidate models.ReservationCandidate
	if err := decodeBody(r, &candidate); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if candidate.UserID.IsZero() {
		if claims := claimsFrom(r.Context()); claims != nil {
			candidate.UserID = models.ID(claims.UserID)
		}
	}

	created, err := s.deps.Reservations.CreateReservation(r.Context(), candidate)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *HTTPServer) handleCancelReservation(w http.ResponseWriter, r *http.Request) {
	id := models.ID(mux.Vars(r)["id"])
	if err := s.deps.Reservations.CancelReservation(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleMyReservations(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		if claims := claimsFrom(r.Context()); claims != nil {
			userID = claims.UserID
		}
	}

	views, err := s.deps.Reservations.UserReservations(r.Context(), models.ID(userID))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": views})
}

func (s *HTTPServer) handleVehicles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	policy := s.deps.DefaultPolicy
	if raw := strings.TrimSpace(q.Get("policy")); raw != "" {
		p, err := service.ParsePolicy(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_policy", err.Error())
			return
		}
		policy = p
	}

	window := models.DateRange{StartDate: q.Get("start"), EndDate: q.Get("end")}
	result, err := s.deps.Reservations.AvailableVehicles(r.Context(), window, policy)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) handleVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := s.deps.Reservations.Vehicle(r.Context(), models.ID(mux.Vars(r)["id"]))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *HTTPServer) handleStartSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.deps.Sessions.Start(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *HTTPServer) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Sessions.End(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleSessionDates(w http.ResponseWriter, r *http.Request) {
	dates, err := s.deps.Sessions.Dates(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dates)
}

func (s *HTTPServer) handleUpdateSessionDates(w http.ResponseWriter, r *http.Request) {
	var dates models.DateRange
	if err := decodeBody(r, &dates); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	id := mux.Vars(r)["id"]
	if err := s.deps.Sessions.Update(r.Context(), id, dates); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.handleSessionDates(w, r)
}

func (s *HTTPServer) handleClearSessionDates(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Sessions.Clear(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reservationQuery reads the admin list filters from the query string.
func reservationQuery(r *http.Request) (service.ReservationQuery, error) {
	q := r.URL.Query()
	query := service.ReservationQuery{
		Search:      q.Get("search"),
		VehicleType: q.Get("type"),
		DateFilter:  q.Get("date"),
		SortBy:      q.Get("sort"),
		Descending:  strings.EqualFold(q.Get("order"), "desc"),
	}
	if raw := q.Get("status"); raw != "" && raw != "all" {
		status := models.DisplayStatus(raw)
		if !status.Valid() {
			return query, fmt.Errorf("unknown status %q", raw)
		}
		query.Status = status
	}
	return query, nil
}

func (s *HTTPServer) handleAdminReservations(w http.ResponseWriter, r *http.Request) {
	query, err := reservationQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}
	views, err := s.deps.Reservations.AllReservations(r.Context(), query)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": views, "total": len(views)})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	query, err := reservationQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}
	from, err := models.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	to, err := models.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	views, err := s.deps.Reservations.AllReservations(r.Context(), query)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, views, export.Period{From: from, To: to}); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	name := fmt.Sprintf("reservations_%s.xlsx", s.deps.Reservations.Today())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *HTTPServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Reservations.Dashboard(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *HTTPServer) handleVehicleStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}

	updated, err := s.deps.Reservations.UpdateVehicleStatus(r.Context(), models.ID(mux.Vars(r)["id"]), body.Status)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *HTTPServer) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var in models.VehicleInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	created, err := s.deps.Reservations.CreateVehicle(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *HTTPServer) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	var patch models.VehiclePatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	updated, err := s.deps.Reservations.UpdateVehicle(r.Context(), models.ID(mux.Vars(r)["id"]), patch)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *HTTPServer) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Reservations.DeleteVehicle(r.Context(), models.ID(mux.Vars(r)["id"])); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// auditLimit reads ?limit=. Absent means the store default; larger values are capped.
func auditLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("limit must be a positive integer, got %q", raw)
	}
	return min(limit, maxAuditLimit), nil
}

func (s *HTTPServer) handleAudit(w http.ResponseWriter, r *http.Request) {
	limit, err := auditLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_limit", err.Error())
		return
	}
	if s.deps.Audit == nil {
		writeJSON(w, http.StatusOK, map[string]any{"events": []database.AuditEntry{}})
		return
	}
	entries, err := s.deps.Audit.RecentEvents(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": entries})
}
