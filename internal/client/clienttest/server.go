// ABOUTME: In-process fake of the summarizer backend for tests
// ABOUTME: Routes with gorilla/mux, enforces bearer tokens, and counts hits per route

package clienttest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/markalston/yt-summarizer/internal/models"
)

// Route names accepted by Hits and Override
const (
	RouteRegister     = "register"
	RouteLogin        = "login"
	RouteGoogle       = "google"
	RouteGoogleStatus = "google-status"
	RouteMe           = "me"
	RouteCheck        = "check"
	RouteGenerate     = "generate"
	RouteHistory      = "history"
	RouteRecent       = "recent"
	RouteGetSummary   = "get-summary"
	RouteDelete       = "delete-summary"
	RouteStats        = "stats"
	RouteProfile      = "profile"
	RouteLimits       = "limits"
	RouteUpgrade      = "upgrade"
	RouteAudio        = "audio"
)

// GoogleCredential is the only identity-provider credential the fake accepts
const GoogleCredential = "google-id-token"

// AudioBytes is the body served by the audio endpoint
var AudioBytes = []byte("ID3\x03\x00fake-mp3-frames")

type account struct {
	password string
	profile  models.UserProfile
	usage    int
}

// Server is a fake backend. Base URL for the client is URL + "/api".
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	hits       map[string]int
	overrides  map[string]http.HandlerFunc
	accounts   map[string]*account
	tokens     map[string]string
	summaries  map[int64]models.SummaryRecord
	owners     map[int64]string
	nextUserID int64
	nextID     int64

	generateErr string
}

// NewServer starts a fake backend; it is closed when the test ends
func NewServer(t interface{ Cleanup(func()) }) *Server {
	s := &Server{
		hits:       make(map[string]int),
		overrides:  make(map[string]http.HandlerFunc),
		accounts:   make(map[string]*account),
		tokens:     make(map[string]string),
		summaries:  make(map[int64]models.SummaryRecord),
		owners:     make(map[int64]string),
		nextUserID: 1,
		nextID:     100,
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// APIURL returns the base address to hand to client.New
func (s *Server) APIURL() string {
	return s.URL + "/api"
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.Handle("/auth/register", s.route(RouteRegister, false, s.handleRegister)).Methods(http.MethodPost)
	api.Handle("/auth/login", s.route(RouteLogin, false, s.handleLogin)).Methods(http.MethodPost)
	api.Handle("/auth/google", s.route(RouteGoogle, false, s.handleGoogle)).Methods(http.MethodPost)
	api.Handle("/auth/google/status", s.route(RouteGoogleStatus, false, s.handleGoogleStatus)).Methods(http.MethodGet)
	api.Handle("/auth/me", s.route(RouteMe, true, s.handleMe)).Methods(http.MethodGet)
	api.Handle("/auth/check", s.route(RouteCheck, false, s.handleCheck)).Methods(http.MethodGet)

	api.Handle("/summaries/generate", s.route(RouteGenerate, true, s.handleGenerate)).Methods(http.MethodPost)
	api.Handle("/summaries/history", s.route(RouteHistory, true, s.handleHistory)).Methods(http.MethodGet)
	api.Handle("/summaries/recent", s.route(RouteRecent, true, s.handleRecent)).Methods(http.MethodGet)
	api.Handle("/summaries/stats", s.route(RouteStats, true, s.handleStats)).Methods(http.MethodGet)
	api.Handle("/summaries/{id:[0-9]+}", s.route(RouteGetSummary, true, s.handleGetSummary)).Methods(http.MethodGet)
	api.Handle("/summaries/{id:[0-9]+}", s.route(RouteDelete, true, s.handleDelete)).Methods(http.MethodDelete)

	api.Handle("/users/profile", s.route(RouteProfile, true, s.handleProfile)).Methods(http.MethodGet)
	api.Handle("/users/limits", s.route(RouteLimits, true, s.handleLimits)).Methods(http.MethodGet)
	api.Handle("/users/upgrade", s.route(RouteUpgrade, true, s.handleUpgrade)).Methods(http.MethodPut)

	api.Handle("/audio/download", s.route(RouteAudio, true, s.handleAudio)).Methods(http.MethodPost)
	return r
}

type authedHandler func(w http.ResponseWriter, r *http.Request, username string)

// route counts the hit, applies overrides, and enforces the bearer token
func (s *Server) route(name string, auth bool, h authedHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[name]++
		override := s.overrides[name]
		s.mu.Unlock()

		if override != nil {
			override(w, r)
			return
		}

		username := s.userForRequest(r)
		if auth && username == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		h(w, r, username)
	})
}

func (s *Server) userForRequest(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[token]
}

// --- Test controls ---

// AddUser registers an account directly and returns its profile
func (s *Server) AddUser(username, email, password string) models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, email, password)
}

func (s *Server) addUserLocked(username, email, password string) models.UserProfile {
	p := models.UserProfile{
		ID:                      s.nextUserID,
		Username:                username,
		Email:                   email,
		UserType:                models.UserTypeFree,
		DailyLimit:              5,
		MaxVideoDurationSeconds: 600,
		CreatedAt:               models.Timestamp{Time: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
	}
	s.nextUserID++
	s.accounts[username] = &account{password: password, profile: p}
	return p
}

// IssueToken mints a valid token for an existing user
func (s *Server) IssueToken(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueTokenLocked(username)
}

func (s *Server) issueTokenLocked(username string) string {
	token := "tok-" + uuid.NewString()
	s.tokens[token] = username
	return token
}

// RevokeAll invalidates every issued token so later calls get 401
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

// AddSummary stores a record owned by username and returns it with its id
func (s *Server) AddSummary(username string, rec models.SummaryRecord) models.SummaryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addSummaryLocked(username, rec)
}

func (s *Server) addSummaryLocked(username string, rec models.SummaryRecord) models.SummaryRecord {
	rec.ID = s.nextID
	s.nextID++
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = models.Timestamp{Time: time.Now().UTC().Truncate(time.Second)}
	}
	s.summaries[rec.ID] = rec
	s.owners[rec.ID] = username
	return rec
}

// FailGenerate makes summary generation answer 400 with msg ("" resets)
func (s *Server) FailGenerate(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generateErr = msg
}

// Override replaces a route's handler. Hits are still counted.
func (s *Server) Override(route string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[route] = h
}

// Hits returns how many requests reached route
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// TotalHits returns the number of requests across all routes
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

// --- Handlers ---

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request, _ string) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[req.Username]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Username is already taken")
		return
	}
	p := s.addUserLocked(req.Username, req.Email, req.Password)
	token := s.issueTokenLocked(req.Username)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, authResponse(token, p))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, _ string) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[req.Username]
	if !ok || acct.password != req.Password {
		s.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	token := s.issueTokenLocked(req.Username)
	p := acct.profile
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, authResponse(token, p))
}

func (s *Server) handleGoogle(w http.ResponseWriter, r *http.Request, _ string) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token != GoogleCredential {
		writeError(w, http.StatusUnauthorized, "Invalid Google token")
		return
	}

	s.mu.Lock()
	acct, exists := s.accounts["google-user"]
	var p models.UserProfile
	if exists {
		p = acct.profile
	} else {
		p = s.addUserLocked("google-user", "google-user@example.com", "")
	}
	token := s.issueTokenLocked("google-user")
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.GoogleAuthResponse{
		AuthResponse: authResponse(token, p),
		PictureURL:   "https://example.com/avatar.png",
		IsNewUser:    !exists,
	})
}

func (s *Server) handleGoogleStatus(w http.ResponseWriter, _ *http.Request, _ string) {
	writeJSON(w, http.StatusOK, models.GoogleStatus{Status: "Google OAuth2 enabled", Provider: "google"})
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, username string) {
	s.mu.Lock()
	p := s.accounts[username].profile
	s.mu.Unlock()

	// /auth/me spells the duration field maxVideoDuration
	writeJSON(w, http.StatusOK, map[string]any{
		"id":               p.ID,
		"username":         p.Username,
		"email":            p.Email,
		"userType":         p.UserType,
		"dailyLimit":       p.DailyLimit,
		"maxVideoDuration": p.MaxVideoDurationSeconds,
		"createdAt":        p.CreatedAt.Format("2006-01-02T15:04:05"),
	})
}

func (s *Server) handleCheck(w http.ResponseWriter, _ *http.Request, username string) {
	writeJSON(w, http.StatusOK, models.AuthCheck{Authenticated: username != "", Username: username})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, username string) {
	var req models.SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generateErr != "" {
		writeError(w, http.StatusBadRequest, s.generateErr)
		return
	}
	acct := s.accounts[username]
	if acct.usage >= acct.profile.DailyLimit {
		writeError(w, http.StatusBadRequest, "Has alcanzado el límite diario de resúmenes")
		return
	}
	acct.usage++

	rec := s.addSummaryLocked(username, models.SummaryRecord{
		VideoURL:             req.VideoURL,
		VideoTitle:           "Video " + strconv.FormatInt(s.nextID, 10),
		SummaryText:          "A summary of " + req.VideoURL,
		Language:             req.Language,
		WordCount:            150,
		VideoDurationSeconds: 300,
	})
	writeJSON(w, http.StatusOK, models.GeneratedSummary{
		SummaryRecord:     rec,
		RemainingRequests: acct.profile.DailyLimit - acct.usage,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request, username string) {
	writeJSON(w, http.StatusOK, s.recordsFor(username, 0))
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request, username string) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	writeJSON(w, http.StatusOK, s.recordsFor(username, limit))
}

// recordsFor returns the user's records newest first
func (s *Server) recordsFor(username string, limit int) []models.SummaryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.SummaryRecord{}
	for id := s.nextID - 1; id >= 100; id-- {
		rec, ok := s.summaries[id]
		if !ok || s.owners[id] != username {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (s *Server) ownedSummary(r *http.Request, username string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, false
	}
	_, exists := s.summaries[id]
	return id, exists && s.owners[id] == username
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request, username string) {
	s.mu.Lock()
	id, ok := s.ownedSummary(r, username)
	rec := s.summaries[id]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Resumen no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, username string) {
	s.mu.Lock()
	id, ok := s.ownedSummary(r, username)
	if ok {
		delete(s.summaries, id)
		delete(s.owners, id)
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Resumen no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, models.Ack{Message: "Resumen eliminado correctamente"})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request, username string) {
	s.mu.Lock()
	acct := s.accounts[username]
	var total int64
	for _, owner := range s.owners {
		if owner == username {
			total++
		}
	}
	stats := models.UsageStats{
		RemainingRequests: max(acct.profile.DailyLimit-acct.usage, 0),
		TotalSummaries:    total,
		DailyLimit:        acct.profile.DailyLimit,
		TodayUsage:        acct.usage,
		UserType:          acct.profile.UserType,
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleProfile(w http.ResponseWriter, _ *http.Request, username string) {
	s.mu.Lock()
	acct := s.accounts[username]
	profile := models.AccountProfile{
		UserProfile:       acct.profile,
		RemainingRequests: max(acct.profile.DailyLimit-acct.usage, 0),
		TodayUsage:        acct.usage,
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleLimits(w http.ResponseWriter, _ *http.Request, username string) {
	s.mu.Lock()
	acct := s.accounts[username]
	remaining := max(acct.profile.DailyLimit-acct.usage, 0)
	limits := models.UserLimits{
		UserType:                acct.profile.UserType,
		DailyLimit:              acct.profile.DailyLimit,
		MaxVideoDurationSeconds: acct.profile.MaxVideoDurationSeconds,
		RemainingRequests:       remaining,
		TodayUsage:              acct.usage,
		HasReachedLimit:         remaining == 0,
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, limits)
}

var tierLimits = map[models.UserType]struct{ daily, duration int }{
	models.UserTypeFree:    {5, 600},
	models.UserTypePremium: {50, 3600},
	models.UserTypeVIP:     {500, 14400},
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request, username string) {
	tier, err := models.ParseUserType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Tipo de usuario inválido. Opciones: FREE, PREMIUM, VIP")
		return
	}

	s.mu.Lock()
	acct := s.accounts[username]
	acct.profile.UserType = tier
	acct.profile.DailyLimit = tierLimits[tier].daily
	acct.profile.MaxVideoDurationSeconds = tierLimits[tier].duration
	p := acct.profile
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.UpgradeResult{
		Message:          "Tipo de usuario actualizado correctamente",
		NewType:          p.UserType,
		DailyLimit:       p.DailyLimit,
		MaxVideoDuration: p.MaxVideoDurationSeconds,
	})
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request, _ string) {
	var req struct {
		VideoURL string `json:"videoUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VideoURL == "" {
		writeError(w, http.StatusBadRequest, "videoUrl is required")
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(AudioBytes)))
	w.WriteHeader(http.StatusOK)
	w.Write(AudioBytes)
}

func authResponse(token string, p models.UserProfile) models.AuthResponse {
	return models.AuthResponse{
		Token:            token,
		Type:             "Bearer",
		UserID:           p.ID,
		Username:         p.Username,
		Email:            p.Email,
		UserType:         p.UserType,
		DailyLimit:       p.DailyLimit,
		MaxVideoDuration: p.MaxVideoDurationSeconds,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(fmt.Sprintf("clienttest: encode response: %v", err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
