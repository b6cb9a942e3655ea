package delivery

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, hAuth *AuthHandler, hStudio *StudioHandler) {

	// login
	r.Post("/api/login", hAuth.Login)

	// script
	r.Post("/api/scenes", hStudio.Scenes)
	r.Post("/api/generate-reel", hStudio.GenerateReel)
	r.Post("/api/edit-scenes", hStudio.EditScenes)

	// assets
	r.Post("/api/generate-visual", hStudio.GenerateVisual)
	r.Post("/api/generate-images", hStudio.GenerateImages)
	r.Post("/api/tts", hStudio.TTS)
	r.Post("/api/veo", hStudio.Veo)
	r.Post("/api/generate", hStudio.Generate)

	// render + history
	r.Post("/api/render", hStudio.Render)
	r.Get("/api/videos", hStudio.ListVideos)
	r.Get("/api/videos/{id}", hStudio.GetVideo)
}

// RegisterStatic serves rendered videos, narration and generated assets
// out of publicDir.
func RegisterStatic(r chi.Router, publicDir string) {
	for _, dir := range []string{"videos", "audio", "assets"} {
		prefix := "/" + dir + "/"
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(filepath.Join(publicDir, dir))))
		r.Handle(prefix+"*", fs)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
}
