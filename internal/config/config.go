package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DatabaseURL    string
	AuthSecret     string
	StudioPassword string

	CredentialsFile string
	ProjectID       string
	Location        string

	TTSURL      string
	TTSLanguage string

	PublicDir     string
	TmpDir        string
	RenderCommand string
	RenderEntry   string
	RenderWorkDir string
	RenderTimeout time.Duration

	VeoMaxPolls     int
	VeoPollInterval time.Duration
	SceneWorkers    int

	LogDir string // per-job logs; empty disables them
}

// Load reads .env when present, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AuthSecret:     os.Getenv("AUTH_SECRET"),
		StudioPassword: os.Getenv("STUDIO_PASSWORD"),

		CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", "service-account.json"),
		ProjectID:       getEnv("PROJECT_ID", "veo-test-487816"),
		Location:        getEnv("LOCATION", "us-central1"),

		TTSURL:      getEnv("TTS_URL", "wss://supertts.dextora.org/ws/tts"),
		TTSLanguage: getEnv("TTS_LANGUAGE", "en"),

		PublicDir:     getEnv("PUBLIC_DIR", "public"),
		TmpDir:        getEnv("TMP_DIR", "tmp"),
		RenderCommand: getEnv("RENDER_CMD", "npx remotion render"),
		RenderEntry:   getEnv("RENDER_ENTRY", "src/remotion/index.ts"),
		RenderWorkDir: getEnv("RENDER_WORKDIR", "."),
		RenderTimeout: getEnvDuration("RENDER_TIMEOUT", 5*time.Minute),

		VeoMaxPolls:     getEnvInt("VEO_MAX_POLLS", 60),
		VeoPollInterval: getEnvDuration("VEO_POLL_INTERVAL", 5*time.Second),
		SceneWorkers:    getEnvInt("SCENE_WORKERS", 2),

		LogDir: os.Getenv("LOG_DIR"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("WARN: DATABASE_URL is not set; video history is kept in memory")
	}
	if cfg.AuthSecret == "" {
		log.Println("WARN: AUTH_SECRET is not set; API is open")
	}
	return cfg
}

// AuthEnabled reports whether /api routes require a token.
func (c *Config) AuthEnabled() bool { return c.AuthSecret != "" }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("WARN: %s=%q is not a positive integer, using %d", key, v, def)
		return def
	}
	return n
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	log.Printf("WARN: %s=%q is not a duration, using %s", key, v, def)
	return def
}
