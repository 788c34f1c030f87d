package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lily-ai/lily/internal/emotion"
)

type ttsRequest struct {
	Text    string `json:"text"`
	Emotion string `json:"emotion"`
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	if s.synthesizer == nil {
		respondError(w, http.StatusNotImplemented, "tts_unavailable", "no synthesizer configured")
		return
	}

	var req ttsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}
	emo := emotion.Emotion(req.Emotion)
	if emo == "" {
		emo = emotion.Neutral
	}

	audioURL, err := s.synthesizer.Synthesize(r.Context(), req.Text, emo)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "tts_failed", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"audio_url": audioURL,
		"text":      req.Text,
		"emotion":   string(emo),
	})
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if s.transcriber == nil {
		respondError(w, http.StatusNotImplemented, "stt_unavailable", "no transcriber configured")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	text, err := s.transcriber.Transcribe(r.Context(), file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "stt_failed", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"text":               text,
		"wake_word_detected": s.detector.Detect(text),
	})
}

func (s *Server) handleGetAudio(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	path, err := s.files.Path(name)
	if err != nil {
		respondError(w, http.StatusNotFound, "audio_not_found", "audio file not found")
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	http.ServeFile(w, r, path)
}

func (s *Server) handleDeleteAudio(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if err := s.files.Delete(name); err != nil {
		respondError(w, http.StatusNotFound, "audio_not_found", "audio file not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "success"})
}

func (s *Server) handleWakeWordEnable(w http.ResponseWriter, _ *http.Request) {
	s.detector.Enable()
	respondJSON(w, http.StatusOK, map[string]any{"status": "success", "enabled": true})
}

func (s *Server) handleWakeWordDisable(w http.ResponseWriter, _ *http.Request) {
	s.detector.Disable()
	respondJSON(w, http.StatusOK, map[string]any{"status": "success", "enabled": false})
}

func (s *Server) handleWakeWordStatus(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"enabled":   s.detector.Enabled(),
		"wake_word": s.detector.Word(),
	})
}
