package delivery

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voxstudio/internal/domain"
	"github.com/Vovarama1992/voxstudio/internal/models"
	"github.com/Vovarama1992/voxstudio/internal/ports"
	"github.com/go-chi/chi/v5"
)

type StudioHandler struct {
	studio ports.Studio
	log    *logger.ZapLogger
}

func NewStudioHandler(studio ports.Studio, log *logger.ZapLogger) *StudioHandler {
	return &StudioHandler{
		studio: studio,
		log:    log,
	}
}

// POST /api/scenes
func (h *StudioHandler) Scenes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt         string  `json:"prompt"`
		Duration       float64 `json:"duration"`
		Style          string  `json:"style"`
		AnimationLevel string  `json:"animationLevel"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	plan, err := h.studio.DraftScenes(r.Context(), ports.SceneRequest{
		Prompt:         req.Prompt,
		Duration:       req.Duration,
		Style:          req.Style,
		AnimationLevel: req.AnimationLevel,
	})
	if err != nil {
		h.fail(w, "scene generation failed", err)
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "scenes drafted",
		Fields:  map[string]any{"title": plan.Title, "scenes": len(plan.Scenes)},
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": plan})
}

// POST /api/generate-reel
func (h *StudioHandler) GenerateReel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt   string  `json:"prompt"`
		Duration float64 `json:"duration"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	plan, err := h.studio.DraftReel(r.Context(), req.Prompt, req.Duration)
	if err != nil {
		h.fail(w, "reel generation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "plan": plan})
}

// POST /api/edit-scenes
func (h *StudioHandler) EditScenes(w http.ResponseWriter, r *http.Request) {
	var req ports.EditRequest
	if !h.decode(w, r, &req) {
		return
	}

	scenes, err := h.studio.EditScenes(r.Context(), req)
	if err != nil {
		h.fail(w, "scene edit failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "scenes": scenes})
}

// POST /api/generate-visual
func (h *StudioHandler) GenerateVisual(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt     string    `json:"prompt"`
		SceneID    flexValue `json:"sceneId"`
		IsVertical bool      `json:"isVertical"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	v, err := h.studio.GenerateVisual(r.Context(), req.Prompt, string(req.SceneID), req.IsVertical)
	if err != nil {
		h.fail(w, "visual generation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*models.Visual
	}{true, v})
}

// POST /api/generate-images
func (h *StudioHandler) GenerateImages(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
		Count  int    `json:"count"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "imageUrls": h.studio.StockImages(req.Prompt, req.Count)})
}

// POST /api/tts
func (h *StudioHandler) TTS(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	n, err := h.studio.Narrate(r.Context(), req.Text, req.Language)
	if err != nil {
		h.fail(w, "tts failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "audioUrl": n.AudioURL, "duration": n.Duration})
}

// POST /api/veo
func (h *StudioHandler) Veo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt      string    `json:"prompt"`
		AspectRatio string    `json:"aspectRatio"`
		Duration    flexValue `json:"duration"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	url, err := h.studio.GenerateClip(r.Context(), req.Prompt, req.AspectRatio, req.Duration.Int())
	if err != nil {
		h.fail(w, "veo generation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "videoUrl": url})
}

// POST /api/generate
func (h *StudioHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt        string    `json:"prompt"`
		AspectRatio   string    `json:"aspectRatio"`
		Resolution    string    `json:"resolution"`
		Duration      flexValue `json:"duration"`
		EnableTTS     bool      `json:"enableTts"`
		NarrationText string    `json:"narrationText"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.studio.Generate(r.Context(), ports.GenerateRequest{
		Prompt:        req.Prompt,
		AspectRatio:   req.AspectRatio,
		Resolution:    req.Resolution,
		Duration:      req.Duration.Int(),
		EnableTTS:     req.EnableTTS,
		NarrationText: req.NarrationText,
	})
	if err != nil {
		h.fail(w, "generation failed", err)
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "clip generated",
		Fields:  map[string]any{"status": res.Video.Status, "id": res.ID},
	})
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*ports.GenerateResult
	}{true, res})
}

// POST /api/render
func (h *StudioHandler) Render(w http.ResponseWriter, r *http.Request) {
	var req ports.RenderRequest
	if !h.decode(w, r, &req) {
		return
	}

	v, err := h.studio.Render(r.Context(), req)
	if err != nil {
		h.fail(w, "render failed", err)
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "video rendered",
		Fields:  map[string]any{"id": v.ID, "url": v.VideoURL},
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": v.ID, "videoUrl": v.VideoURL})
}

// GET /api/videos?limit=
func (h *StudioHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	videos, err := h.studio.ListVideos(r.Context(), limit)
	if err != nil {
		h.fail(w, "list videos failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

// GET /api/videos/{id}
func (h *StudioHandler) GetVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("missing id"))
		return
	}

	v, err := h.studio.GetVideo(r.Context(), id)
	if err != nil {
		h.fail(w, "get video failed", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *StudioHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json: "+err.Error()))
		return false
	}
	return true
}

func (h *StudioHandler) fail(w http.ResponseWriter, msg string, err error) {
	status := statusOf(err)
	level := "error"
	if status < http.StatusInternalServerError {
		level = "warn"
	}
	h.log.Log(logger.LogEntry{
		Level:   level,
		Message: msg,
		Error:   err,
	})
	writeJSON(w, status, errorBody(err.Error()))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// flexValue accepts a JSON string or number: the dashboard sends
// durations and scene ids either way.
type flexValue string

func (f *flexValue) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*f = flexValue(strings.TrimSpace(str))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", s)
	}
	*f = flexValue(n.String())
	return nil
}

// Int is 0 when the value is empty or not a number.
func (f flexValue) Int() int {
	n, err := strconv.ParseFloat(string(f), 64)
	if err != nil {
		return 0
	}
	return int(n)
}
