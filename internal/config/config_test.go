package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "AUTH_SECRET", "VEO_MAX_POLLS", "RENDER_TIMEOUT", "LOCATION"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Location != "us-central1" {
		t.Errorf("Location = %q", cfg.Location)
	}
	if cfg.VeoMaxPolls != 60 || cfg.VeoPollInterval != 5*time.Second {
		t.Errorf("veo polling = %d x %s", cfg.VeoMaxPolls, cfg.VeoPollInterval)
	}
	if cfg.RenderTimeout != 5*time.Minute {
		t.Errorf("RenderTimeout = %s", cfg.RenderTimeout)
	}
	if cfg.AuthEnabled() {
		t.Error("auth enabled without secret")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AUTH_SECRET", "s3cret")
	t.Setenv("VEO_MAX_POLLS", "30")
	t.Setenv("VEO_POLL_INTERVAL", "2")
	t.Setenv("RENDER_TIMEOUT", "90s")
	t.Setenv("SCENE_WORKERS", "-3")

	cfg := Load()
	if cfg.Port != "9090" || !cfg.AuthEnabled() {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.VeoMaxPolls != 30 || cfg.VeoPollInterval != 2*time.Second {
		t.Errorf("veo polling = %d x %s", cfg.VeoMaxPolls, cfg.VeoPollInterval)
	}
	if cfg.RenderTimeout != 90*time.Second {
		t.Errorf("RenderTimeout = %s", cfg.RenderTimeout)
	}
	if cfg.SceneWorkers != 2 {
		t.Errorf("SceneWorkers = %d, want default for bad value", cfg.SceneWorkers)
	}
}
