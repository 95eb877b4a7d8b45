package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"smartagri/portal/internal/advisory"
	"smartagri/portal/internal/auth"
	"smartagri/portal/internal/config"
	"smartagri/portal/internal/crypto"
	"smartagri/portal/internal/model"
	"smartagri/portal/internal/schemes"
	"smartagri/portal/internal/weather"
)

// Store is the persistence surface the handlers need. *repository.Store
// satisfies it; tests substitute an in-memory fake.
type Store interface {
	CreateUser(ctx context.Context, user model.User) error
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByID(ctx context.Context, userID string) (model.User, error)
	CreateRequest(ctx context.Context, request model.PowerRequest) error
	GetRequest(ctx context.Context, requestID string) (model.PowerRequest, error)
	ListRequestsByFarmer(ctx context.Context, farmerID string) ([]model.PowerRequest, error)
	ListRequests(ctx context.Context) ([]model.PowerRequest, error)
	UpdateRequestStatus(ctx context.Context, requestID, status string, updatedAt time.Time) (model.PowerRequest, error)
	DeleteRequest(ctx context.Context, requestID string) (bool, error)
}

// WeatherProvider resolves a location query or a coordinate pair to a
// current reading.
type WeatherProvider interface {
	CurrentByQuery(ctx context.Context, location string) (weather.Reading, error)
	CurrentByCoords(ctx context.Context, lat, lon float64) (weather.Reading, error)
}

type Server struct {
	cfg     config.Config
	store   Store
	weather WeatherProvider
	logger  *zap.Logger
}

func NewServer(cfg config.Config, store Store, weatherProvider WeatherProvider, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		store:   store,
		weather: weatherProvider,
		logger:  logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)
	r.With(s.authMiddleware).Get("/auth/me", s.handleGetMe)

	r.Route("/requests", func(r chi.Router) {
		r.With(s.authMiddleware, s.requireFarmer).Post("/", s.handleCreateRequest)
		r.With(s.authMiddleware, s.requireFarmer).Get("/me", s.handleListMyRequests)
		r.With(s.authMiddleware, s.requireAdmin).Get("/", s.handleListRequests)
		r.With(s.authMiddleware, s.requireAdmin).Put("/{requestId}/approve", s.handleApproveRequest)
		r.With(s.authMiddleware, s.requireAdmin).Put("/{requestId}/reject", s.handleRejectRequest)
		r.With(s.authMiddleware, s.requireAdmin).Delete("/{requestId}", s.handleDeleteRequest)
	})

	r.With(s.authMiddleware).Get("/weather", s.handleWeather)
	r.With(s.authMiddleware).Get("/schemes", s.handleSchemes)

	return r
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

type userSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type requestSummary struct {
	ID            string  `json:"id"`
	FarmerID      string  `json:"farmerId"`
	FarmerName    string  `json:"farmerName"`
	Area          string  `json:"area"`
	PowerRequired float64 `json:"powerRequired"`
	Purpose       string  `json:"purpose"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Role = strings.TrimSpace(strings.ToLower(req.Role))
	if req.Role == "" {
		req.Role = model.RoleFarmer
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	// Self-service signup only creates farmers. The admin account comes
	// from deployment configuration, never from this endpoint.
	if req.Role != model.RoleFarmer {
		writeError(w, http.StatusBadRequest, "invalid_role")
		return
	}

	if _, err := s.store.GetUserByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusConflict, "email_taken")
		return
	} else if !errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "password_hash_failed")
		return
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleFarmer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		writeError(w, http.StatusBadRequest, "user_create_failed")
		return
	}

	s.logger.Info("farmer registered", zap.String("user_id", user.ID))
	s.writeAuthResponse(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_credentials")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	s.writeAuthResponse(w, http.StatusOK, user)
}

func (s *Server) writeAuthResponse(w http.ResponseWriter, status int, user model.User) {
	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, auth.Claims{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}
	writeJSON(w, status, authResponse{
		Token: token,
		Role:  user.Role,
		Name:  user.Name,
	})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user_not_found")
		return
	}

	writeJSON(w, http.StatusOK, userSummary{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	})
}

type createRequestRequest struct {
	Area          string   `json:"area"`
	PowerRequired *float64 `json:"powerRequired"`
	Purpose       string   `json:"purpose"`
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	var req createRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	req.Area = strings.TrimSpace(req.Area)
	req.Purpose = strings.TrimSpace(req.Purpose)
	if req.Area == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	// Non-numeric input reaches the API as a JSON null, so a nil pointer
	// and a non-positive value get the same rejection.
	if req.PowerRequired == nil || *req.PowerRequired <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_power_required")
		return
	}

	now := time.Now().UTC()
	request := model.PowerRequest{
		ID:            uuid.NewString(),
		FarmerID:      claims.UserID,
		FarmerName:    claims.Name,
		Area:          req.Area,
		PowerRequired: *req.PowerRequired,
		Purpose:       req.Purpose,
		Status:        model.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreateRequest(r.Context(), request); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	s.logger.Info("power request submitted",
		zap.String("request_id", request.ID),
		zap.String("farmer_id", request.FarmerID),
	)
	writeJSON(w, http.StatusCreated, mapRequestSummary(request))
}

func (s *Server) handleListMyRequests(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	requests, err := s.store.ListRequestsByFarmer(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, mapRequestSummaries(requests))
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := s.store.ListRequests(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, mapRequestSummaries(requests))
}

func (s *Server) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	s.updateRequestStatus(w, r, model.StatusApproved)
}

func (s *Server) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	s.updateRequestStatus(w, r, model.StatusRejected)
}

func (s *Server) updateRequestStatus(w http.ResponseWriter, r *http.Request, status string) {
	requestID := chi.URLParam(r, "requestId")
	if requestID == "" {
		writeError(w, http.StatusBadRequest, "missing_request_id")
		return
	}

	request, err := s.store.UpdateRequestStatus(r.Context(), requestID, status, time.Now().UTC())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "request_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	s.logger.Info("power request status updated",
		zap.String("request_id", request.ID),
		zap.String("status", request.Status),
	)
	writeJSON(w, http.StatusOK, mapRequestSummary(request))
}

func (s *Server) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestId")
	if requestID == "" {
		writeError(w, http.StatusBadRequest, "missing_request_id")
		return
	}

	deleted, err := s.store.DeleteRequest(r.Context(), requestID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "request_not_found")
		return
	}

	s.logger.Info("power request deleted", zap.String("request_id", requestID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type weatherResponse struct {
	Weather  weather.Reading   `json:"weather"`
	Advisory advisory.Advisory `json:"advisory"`
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	var reading weather.Reading
	var err error

	rawLat := strings.TrimSpace(r.URL.Query().Get("lat"))
	rawLon := strings.TrimSpace(r.URL.Query().Get("lon"))
	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if rawLat != "" || rawLon != "" {
		lat, latErr := strconv.ParseFloat(rawLat, 64)
		lon, lonErr := strconv.ParseFloat(rawLon, 64)
		if latErr != nil || lonErr != nil {
			writeError(w, http.StatusBadRequest, "invalid_coordinates")
			return
		}
		reading, err = s.weather.CurrentByCoords(r.Context(), lat, lon)
	} else {
		if location == "" {
			location = s.cfg.DefaultLocation
		}
		reading, err = s.weather.CurrentByQuery(r.Context(), location)
	}
	if err != nil {
		if errors.Is(err, weather.ErrLocationNotFound) {
			writeError(w, http.StatusNotFound, "location_not_found")
			return
		}
		s.logger.Warn("weather lookup failed", zap.String("location", location), zap.Error(err))
		writeError(w, http.StatusBadGateway, "weather_unavailable")
		return
	}

	writeJSON(w, http.StatusOK, weatherResponse{
		Weather: reading,
		Advisory: advisory.Evaluate(advisory.Reading{
			TemperatureC: reading.TemperatureC,
			Condition:    reading.Condition,
			WindSpeedMS:  reading.WindSpeedMS,
		}),
	})
}

func (s *Server) handleSchemes(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	writeJSON(w, http.StatusOK, schemes.List(category))
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}

		claims, err := auth.ParseToken(s.cfg.JWTSecret, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireFarmer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil || claims.Role != model.RoleFarmer {
			writeError(w, http.StatusForbidden, "farmer_only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil || claims.Role != model.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin_only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type claimsKey struct{}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

func mapRequestSummary(request model.PowerRequest) requestSummary {
	return requestSummary{
		ID:            request.ID,
		FarmerID:      request.FarmerID,
		FarmerName:    request.FarmerName,
		Area:          request.Area,
		PowerRequired: request.PowerRequired,
		Purpose:       request.Purpose,
		Status:        request.Status,
		CreatedAt:     request.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     request.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapRequestSummaries(requests []model.PowerRequest) []requestSummary {
	summaries := make([]requestSummary, 0, len(requests))
	for _, request := range requests {
		summaries = append(summaries, mapRequestSummary(request))
	}
	return summaries
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
