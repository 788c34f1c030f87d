package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/lily-ai/lily/internal/config"
	"github.com/lily-ai/lily/internal/emotion"
	"github.com/lily-ai/lily/internal/memory"
	"github.com/lily-ai/lily/internal/observability"
	"github.com/lily-ai/lily/internal/session"
	"github.com/lily-ai/lily/internal/voice"
	"github.com/lily-ai/lily/internal/wakeword"
)

// Companion is the conversational core the API fronts.
type Companion interface {
	GenerateResponse(ctx context.Context, userID, message string) (string, emotion.Emotion, error)
	EmotionState() emotion.Record
	ConversationSummary(ctx context.Context, userID string) string
	EmotionalSummary(ctx context.Context, userID string) string
	RecentContext(ctx context.Context, userID string, limit int) ([]memory.Turn, error)
}

// Pinger reports generative backend reachability for health checks.
type Pinger interface {
	Ping(ctx context.Context) bool
}

type Server struct {
	cfg         config.Config
	companion   Companion
	sessions    *session.Manager
	metrics     *observability.Metrics
	detector    *wakeword.Detector
	files       *voice.FileStore
	synthesizer voice.Synthesizer
	transcriber voice.Transcriber
	pinger      Pinger
	upgrader    websocket.Upgrader
}

func New(
	cfg config.Config,
	companion Companion,
	sessions *session.Manager,
	metrics *observability.Metrics,
	detector *wakeword.Detector,
	files *voice.FileStore,
	synthesizer voice.Synthesizer,
	transcriber voice.Transcriber,
	pinger Pinger,
) *Server {
	return &Server{
		cfg:         cfg,
		companion:   companion,
		sessions:    sessions,
		metrics:     metrics,
		detector:    detector,
		files:       files,
		synthesizer: synthesizer,
		transcriber: transcriber,
		pinger:      pinger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same
				// origin unless explicitly opened up. Non-browser clients
				// often omit Origin; allow them.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/api/chat", s.handleChat)
	r.Get("/api/chat/ws", s.handleChatWS)
	r.Get("/api/emotion", s.handleEmotion)
	r.Get("/api/memory/{userID}", s.handleMemory)

	r.Post("/api/tts", s.handleTTS)
	r.Post("/api/transcribe", s.handleTranscribe)
	r.Get("/api/audio/{filename}", s.handleGetAudio)
	r.Delete("/api/audio/{filename}", s.handleDeleteAudio)

	r.Post("/api/wake_word/enable", s.handleWakeWordEnable)
	r.Post("/api/wake_word/disable", s.handleWakeWordDisable)
	r.Get("/api/wake_word/status", s.handleWakeWordStatus)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	modelConnected := s.pinger == nil || s.pinger.Ping(r.Context())
	status := "healthy"
	if !modelConnected {
		status = "degraded"
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          status,
		"model_connected": modelConnected,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type chatResponse struct {
	Response  string    `json:"response"`
	Emotion   string    `json:"emotion"`
	AudioURL  string    `json:"audio_url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = "default_user"
	}

	resp, err := s.runTurn(r.Context(), req.UserID, req.Message)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "memory_write_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// runTurn drives one conversational turn and the bookkeeping around it.
func (s *Server) runTurn(ctx context.Context, userID, message string) (chatResponse, error) {
	text, emo, err := s.companion.GenerateResponse(ctx, userID, message)
	if err != nil {
		return chatResponse{}, err
	}

	_, created := s.sessions.RecordTurn(userID, emo)
	if created {
		s.metrics.SessionEvents.WithLabelValues("created").Inc()
	}
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))

	resp := chatResponse{
		Response:  text,
		Emotion:   string(emo),
		Timestamp: time.Now().UTC(),
	}

	// Audio rendering is best-effort; the reply text stands on its own.
	if s.synthesizer != nil {
		audioURL, synthErr := s.synthesizer.Synthesize(ctx, text, emo)
		if synthErr == nil {
			resp.AudioURL = audioURL
		}
	}
	return resp, nil
}

func (s *Server) handleEmotion(w http.ResponseWriter, _ *http.Request) {
	rec := s.companion.EmotionState()
	respondJSON(w, http.StatusOK, map[string]any{
		"emotion":   rec.Emotion,
		"intensity": rec.Intensity,
		"reason":    rec.Reason,
		"timestamp": rec.Timestamp.Format(time.RFC3339),
	})
}

func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if strings.TrimSpace(userID) == "" {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "missing user id")
		return
	}

	recent, err := s.companion.RecentContext(r.Context(), userID, 10)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "memory_read_failed", err.Error())
		return
	}
	if recent == nil {
		recent = []memory.Turn{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":              userID,
		"conversation_summary": s.companion.ConversationSummary(r.Context(), userID),
		"emotional_summary":    s.companion.EmotionalSummary(r.Context(), userID),
		"recent_messages":      recent,
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
