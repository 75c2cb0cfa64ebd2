package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"edusense-backend/internal/auth"
	"edusense-backend/internal/config"
	"edusense-backend/internal/core"
	"edusense-backend/internal/logger"
	"edusense-backend/internal/store"
)

type APIHandler struct {
	store store.Store
	chat  *core.ChatService
	cfg   config.Config
	log   *logger.Logger
}

func NewAPIHandler(st store.Store, chat *core.ChatService, cfg config.Config, log *logger.Logger) *APIHandler {
	return &APIHandler{
		store: st,
		chat:  chat,
		cfg:   cfg,
		log:   log,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	// Best-effort uniqueness: the check and the insert are not atomic, so
	// concurrent registrations with the same email can race.
	existing, err := h.store.FindUserByEmail(r.Context(), req.Email)
	if err != nil {
		h.log.Error("failed to check existing email", "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to register user")
		return
	}
	if existing != nil {
		WriteError(w, http.StatusBadRequest, "email already registered")
		return
	}

	user := &store.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: auth.HashPassword(req.Password),
	}
	userID, err := h.store.CreateUser(r.Context(), user)
	if err != nil {
		h.log.Error("failed to create user", "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"user_id": userID})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.store.FindUserByEmail(r.Context(), req.Email)
	if err != nil {
		h.log.Error("failed to query user for login", "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to log in")
		return
	}
	// Same response for unknown email and wrong password.
	if user == nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	WriteJSON(w, http.StatusOK, LoginResponse{
		UserID: user.ID.Hex(),
		Name:   user.Name,
		Email:  user.Email,
	})
}

type CreateMaterialRequest struct {
	UserID  string  `json:"user_id"`
	Title   string  `json:"title"`
	Subject *string `json:"subject,omitempty"`
	Content string  `json:"content"`
}

func (h *APIHandler) CreateMaterialHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Title == "" || req.Content == "" {
		WriteError(w, http.StatusBadRequest, "user_id, title and content are required")
		return
	}

	material := &store.Material{
		UserID:     req.UserID,
		Title:      req.Title,
		Subject:    req.Subject,
		Content:    req.Content,
		Difficulty: "normal",
	}
	materialID, err := h.store.CreateMaterial(r.Context(), material)
	if err != nil {
		h.log.Error("failed to create material", "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to create material")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"material_id": materialID})
}

func (h *APIHandler) ListMaterialsHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	materials, err := h.store.MaterialsByUser(r.Context(), userID)
	if err != nil {
		h.log.Error("failed to list materials", "user_id", userID, "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to list materials")
		return
	}
	if materials == nil {
		materials = []store.Material{}
	}
	WriteJSON(w, http.StatusOK, materials)
}

type CreateVideoRequest struct {
	UserID  string  `json:"user_id"`
	Title   string  `json:"title"`
	Subject *string `json:"subject,omitempty"`
	URL     string  `json:"url"`
}

func (h *APIHandler) CreateVideoHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Title == "" || req.URL == "" {
		WriteError(w, http.StatusBadRequest, "user_id, title and url are required")
		return
	}

	// The URL is stored as-is; no reachability or format validation.
	video := &store.Video{
		UserID:  req.UserID,
		Title:   req.Title,
		Subject: req.Subject,
		URL:     req.URL,
	}
	videoID, err := h.store.CreateVideo(r.Context(), video)
	if err != nil {
		h.log.Error("failed to create video", "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to create video")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"video_id": videoID})
}

func (h *APIHandler) ListVideosHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	videos, err := h.store.VideosByUser(r.Context(), userID)
	if err != nil {
		h.log.Error("failed to list videos", "user_id", userID, "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to list videos")
		return
	}
	if videos == nil {
		videos = []store.Video{}
	}
	WriteJSON(w, http.StatusOK, videos)
}

type LogEmotionRequest struct {
	UserID  string  `json:"user_id"`
	Emotion string  `json:"emotion"`
	Note    *string `json:"note,omitempty"`
}

func (h *APIHandler) LogEmotionHandler(w http.ResponseWriter, r *http.Request) {
	var req LogEmotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Emotion == "" {
		WriteError(w, http.StatusBadRequest, "user_id and emotion are required")
		return
	}

	entry := &store.EmotionLog{
		UserID:  req.UserID,
		Emotion: req.Emotion,
		Note:    req.Note,
	}
	logID, err := h.store.CreateEmotionLog(r.Context(), entry)
	if err != nil {
		h.log.Error("failed to create emotion log", "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to log emotion")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"log_id": logID})
}

func (h *APIHandler) EmotionSummaryHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	logs, err := h.store.EmotionLogsByUser(r.Context(), userID)
	if err != nil {
		h.log.Error("failed to load emotion logs", "user_id", userID, "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to summarize emotions")
		return
	}

	WriteJSON(w, http.StatusOK, core.SummarizeEmotions(logs))
}

type AdaptRequest struct {
	UserID        string `json:"user_id"`
	MaterialID    string `json:"material_id,omitempty"`
	LatestEmotion string `json:"latest_emotion"`
}

type AdaptResponse struct {
	Policy         core.Policy     `json:"policy"`
	Material       *store.Material `json:"material"`
	SuggestedIntro string          `json:"suggested_intro,omitempty"`
}

func (h *APIHandler) AdaptHandler(w http.ResponseWriter, r *http.Request) {
	var req AdaptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.LatestEmotion == "" {
		WriteError(w, http.StatusBadRequest, "user_id and latest_emotion are required")
		return
	}

	policy := core.PolicyForEmotion(req.LatestEmotion)

	// Any material lookup failure degrades to "no material" rather than
	// failing the request.
	var material *store.Material
	if req.MaterialID != "" {
		found, err := h.store.MaterialByID(r.Context(), req.MaterialID)
		if err != nil {
			h.log.Warn("material lookup failed, adapting without it", "material_id", req.MaterialID, "error", err)
		} else {
			material = found
		}
	}

	resp := AdaptResponse{
		Policy:   policy,
		Material: material,
	}
	if material != nil {
		resp.SuggestedIntro = core.SuggestedIntro(policy)
	}

	WriteJSON(w, http.StatusOK, resp)
}

type ChatRequest struct {
	UserID      string `json:"user_id"`
	Message     string `json:"message"`
	EmotionHint string `json:"emotion_hint,omitempty"`
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Message == "" {
		WriteError(w, http.StatusBadRequest, "user_id and message are required")
		return
	}

	reply, err := h.chat.Chat(r.Context(), req.UserID, req.Message, req.EmotionHint)
	if err != nil {
		h.log.Error("chat failed", "user_id", req.UserID, "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (h *APIHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"message": "EduSense backend running"})
}

type DiagnosticResponse struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURLSet   bool     `json:"database_url_set"`
	DatabaseNameSet  bool     `json:"database_name_set"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

// TestHandler reports storage connectivity. Storage problems show up here
// as descriptive text, never as a non-200 response.
func (h *APIHandler) TestHandler(w http.ResponseWriter, r *http.Request) {
	resp := DiagnosticResponse{
		Backend:          "running",
		Database:         "not available",
		DatabaseURLSet:   h.cfg.MongoURI != "",
		DatabaseNameSet:  h.cfg.DatabaseName != "",
		ConnectionStatus: "not connected",
		Collections:      []string{},
	}

	if err := h.store.Ping(r.Context()); err != nil {
		resp.Database = "error: " + err.Error()
		WriteJSON(w, http.StatusOK, resp)
		return
	}

	resp.Database = "connected"
	resp.ConnectionStatus = "connected"
	names, err := h.store.CollectionNames(r.Context())
	if err != nil {
		resp.Database = "connected but error: " + err.Error()
	} else if len(names) > 0 {
		if len(names) > 10 {
			names = names[:10]
		}
		resp.Collections = names
	}

	WriteJSON(w, http.StatusOK, resp)
}
