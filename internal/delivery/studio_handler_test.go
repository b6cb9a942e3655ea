package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voxstudio/internal/domain"
	"github.com/Vovarama1992/voxstudio/internal/models"
	"github.com/Vovarama1992/voxstudio/internal/ports"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type fakeStudio struct {
	ports.Studio

	gotGenerate ports.GenerateRequest
	gotVisual   [2]string
	gotClipSecs int
	drafted     *models.VideoPlan
	err         error
}

func (f *fakeStudio) DraftScenes(_ context.Context, req ports.SceneRequest) (*models.VideoPlan, error) {
	if f.err != nil {
		return nil, f.err
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, &domain.InputError{}
	}
	return f.drafted, nil
}

func (f *fakeStudio) GenerateVisual(_ context.Context, prompt, sceneID string, _ bool) (*models.Visual, error) {
	f.gotVisual = [2]string{prompt, sceneID}
	return &models.Visual{Type: models.VisualImage, URLs: []string{"/assets/images/a.jpg"}}, nil
}

func (f *fakeStudio) GenerateClip(_ context.Context, _, _ string, seconds int) (string, error) {
	f.gotClipSecs = seconds
	return "/assets/videos/veo-1.mp4", nil
}

func (f *fakeStudio) Generate(_ context.Context, req ports.GenerateRequest) (*ports.GenerateResult, error) {
	f.gotGenerate = req
	return &ports.GenerateResult{
		OriginalPrompt: req.Prompt,
		Video:          ports.ClipResult{Status: ports.ClipUnavailable, Message: "quota"},
	}, nil
}

func (f *fakeStudio) GetVideo(_ context.Context, id string) (*models.Video, error) {
	if id != "v1" {
		return nil, domain.ErrNotFound
	}
	return &models.Video{ID: "v1", Title: "Bees"}, nil
}

func newTestRouter(studio ports.Studio, auth ports.AuthService) http.Handler {
	zl := logger.NewZapLogger(zap.NewNop().Sugar())
	r := chi.NewRouter()
	if auth != nil {
		r.Use(AuthMiddleware(auth))
	}
	RegisterRoutes(r, NewAuthHandler(auth, zl), NewStudioHandler(studio, zl))
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s %s: body %q is not json: %v", method, path, rec.Body.String(), err)
	}
	return rec, out
}

func TestScenesStatusMapping(t *testing.T) {
	studio := &fakeStudio{drafted: &models.VideoPlan{Title: "Bees"}}
	h := newTestRouter(studio, nil)

	rec, out := do(t, h, http.MethodPost, "/api/scenes", `{"prompt":"bees"}`)
	if rec.Code != http.StatusOK || out["success"] != true {
		t.Fatalf("code=%d body=%v", rec.Code, out)
	}
	if data, _ := out["data"].(map[string]any); data["title"] != "Bees" {
		t.Errorf("data = %v", out["data"])
	}

	tests := []struct {
		name string
		body string
		err  error
		code int
	}{
		{"bad json", `{`, nil, http.StatusBadRequest},
		{"validation", `{"prompt":" "}`, nil, http.StatusBadRequest},
		{"upstream", `{"prompt":"x"}`, errors.New("gemini down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			studio.err = tt.err
			rec, out := do(t, h, http.MethodPost, "/api/scenes", tt.body)
			if rec.Code != tt.code {
				t.Errorf("code = %d, want %d", rec.Code, tt.code)
			}
			if _, ok := out["error"]; !ok {
				t.Errorf("body = %v", out)
			}
		})
	}
}

func TestGenerateAcceptsStringDuration(t *testing.T) {
	studio := &fakeStudio{}
	h := newTestRouter(studio, nil)

	rec, out := do(t, h, http.MethodPost, "/api/generate", `{"prompt":"fox","duration":"8","enableTts":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if studio.gotGenerate.Duration != 8 || !studio.gotGenerate.EnableTTS {
		t.Errorf("request = %+v", studio.gotGenerate)
	}
	video, _ := out["video"].(map[string]any)
	if out["success"] != true || video["status"] != "veo_unavailable" || out["originalPrompt"] != "fox" {
		t.Errorf("body = %v", out)
	}
	if _, ok := out["ttsAudioUrl"]; !ok {
		t.Error("ttsAudioUrl should be present even when null")
	}
}

func TestVeoAndVisualFlexibleFields(t *testing.T) {
	studio := &fakeStudio{}
	h := newTestRouter(studio, nil)

	if rec, out := do(t, h, http.MethodPost, "/api/veo", `{"prompt":"x","duration":6}`); rec.Code != 200 || out["videoUrl"] != "/assets/videos/veo-1.mp4" {
		t.Errorf("veo: code=%d body=%v", rec.Code, out)
	}
	if studio.gotClipSecs != 6 {
		t.Errorf("seconds = %d", studio.gotClipSecs)
	}

	rec, out := do(t, h, http.MethodPost, "/api/generate-visual", `{"prompt":"x","sceneId":3}`)
	if rec.Code != 200 || out["type"] != "image" || out["success"] != true {
		t.Errorf("visual: code=%d body=%v", rec.Code, out)
	}
	if _, ok := out["url"]; ok {
		t.Errorf("empty url should be omitted: %v", out)
	}
	if studio.gotVisual[1] != "3" {
		t.Errorf("scene id = %q", studio.gotVisual[1])
	}
}

func TestGetVideoNotFound(t *testing.T) {
	h := newTestRouter(&fakeStudio{}, nil)

	if rec, out := do(t, h, http.MethodGet, "/api/videos/v1", ""); rec.Code != 200 || out["title"] != "Bees" {
		t.Errorf("code=%d body=%v", rec.Code, out)
	}
	if rec, _ := do(t, h, http.MethodGet, "/api/videos/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("code = %d", rec.Code)
	}
}

func TestFlexValue(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{`6`, 6},
		{`"8"`, 8},
		{`" 4 "`, 4},
		{`7.9`, 7},
		{`null`, 0},
		{`"abc"`, 0},
	}
	for _, tt := range tests {
		var f flexValue
		if err := json.Unmarshal([]byte(tt.in), &f); err != nil {
			t.Errorf("%s: %v", tt.in, err)
			continue
		}
		if got := f.Int(); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.in, got, tt.want)
		}
	}

	var f flexValue
	if err := json.Unmarshal([]byte(`true`), &f); err == nil {
		t.Error("bool should be rejected")
	}
}
