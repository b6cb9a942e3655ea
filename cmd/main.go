package main

import (
	"context"
	"log"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voxstudio/internal/config"
	"github.com/Vovarama1992/voxstudio/internal/delivery"
	ws "github.com/Vovarama1992/voxstudio/internal/delivery/ws"
	"github.com/Vovarama1992/voxstudio/internal/domain"
	"github.com/Vovarama1992/voxstudio/internal/domain/stations"
	"github.com/Vovarama1992/voxstudio/internal/domain/timeline"
	"github.com/Vovarama1992/voxstudio/internal/infra"
	"github.com/Vovarama1992/voxstudio/internal/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {

	// LOGGER
	zcore, _ := zap.NewProduction()
	defer zcore.Sync()
	zl := logger.NewZapLogger(zcore.Sugar())

	// ENV
	cfg := config.Load()
	ctx := context.Background()

	// POSTGRES (optional)
	var (
		pool *pgxpool.Pool
		repo ports.VideoRepository = infra.NewMemoryVideoRepo()
	)
	if cfg.DatabaseURL != "" {
		p, err := infra.NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			panic("postgres: " + err.Error())
		}
		defer p.Close()
		pool = p
		repo = infra.NewPostgresVideoRepo(pool)
	}

	// VERTEX AI
	tokens, err := infra.NewGoogleTokenSource(ctx, cfg.CredentialsFile)
	if err != nil {
		panic("google credentials: " + err.Error())
	}
	vertex := infra.NewVertexClient(cfg.ProjectID, cfg.Location, tokens)

	writer := infra.NewGeminiWriter(vertex)
	veo := infra.NewVeoClient(vertex, cfg.VeoPollInterval, cfg.VeoMaxPolls)
	imagen := infra.NewImagenClient(vertex)

	// TTS, STORAGE, RENDER
	tts := infra.NewWSSpeechClient(cfg.TTSURL)
	store := infra.NewFileAssetStore(cfg.PublicDir)
	renderer := infra.NewRemotionRenderer(infra.RemotionConfig{
		Command:   cfg.RenderCommand,
		Entry:     cfg.RenderEntry,
		WorkDir:   cfg.RenderWorkDir,
		PublicDir: cfg.PublicDir,
		TmpDir:    cfg.TmpDir,
		Timeout:   cfg.RenderTimeout,
	})

	// STATIONS
	s2 := stations.NewS2Narrate(tts, store)
	s3 := stations.NewS3Visualize(veo, imagen, store)
	s4 := stations.NewS4Compose(timeline.DefaultFPS)
	s5 := stations.NewS5Render(renderer)

	// STUDIO SERVICE (оркестратор)
	studio := domain.NewStudioService(writer, repo, s2, s3, s4, s5, domain.StudioConfig{
		Workers:  cfg.SceneWorkers,
		Language: cfg.TTSLanguage,
		LogDir:   cfg.LogDir,
	})

	// WS HUB
	hub := ws.NewHub()
	go hub.Pump(studio.Events())

	// HANDLERS
	authService := domain.NewAuthService(pool, cfg.StudioPassword, cfg.AuthSecret)
	authHandler := delivery.NewAuthHandler(authService, zl)
	studioHandler := delivery.NewStudioHandler(studio, zl)

	// ROUTER
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Auth"},
		AllowCredentials: true,
	}))
	if cfg.AuthEnabled() {
		r.Use(delivery.AuthMiddleware(authService))
	}

	delivery.RegisterRoutes(r, authHandler, studioHandler)
	delivery.RegisterStatic(r, cfg.PublicDir)
	r.Get("/ws", ws.WSHandler(hub, studio))

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "server started",
		Fields: map[string]any{
			"port":     cfg.Port,
			"project":  cfg.ProjectID,
			"location": cfg.Location,
			"auth":     cfg.AuthEnabled(),
			"postgres": pool != nil,
		},
	})
	log.Printf("[BOOT] public=%s render=%q workers=%d", cfg.PublicDir, cfg.RenderCommand, cfg.SceneWorkers)

	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		zl.Log(logger.LogEntry{
			Level:   "error",
			Message: "server crashed",
			Error:   err,
		})
	}
}
