package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected resolved path %s, got %s", path, resolved)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	def := Default()
	if cfg.Addr != def.Addr || cfg.SendQueueSize != def.SendQueueSize || cfg.RoomIdleTTL != def.RoomIdleTTL {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.MetricsEnabled {
		t.Fatal("metrics should be enabled by default")
	}
}

func TestLoadReadsFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("addr: \":9090\"\nmax_rooms: 25\nroom_idle_ttl: 90s\nallowed_origins:\n  - example.com\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("DIAGRAMHUB_MAX_ROOMS", "50")
	t.Setenv("DIAGRAMHUB_WRITE_TIMEOUT", "3s")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("expected addr from file, got %q", cfg.Addr)
	}
	if cfg.RoomIdleTTL != 90*time.Second {
		t.Fatalf("expected room_idle_ttl 90s, got %v", cfg.RoomIdleTTL)
	}
	if cfg.MaxRooms != 50 {
		t.Fatalf("expected env to override max_rooms, got %d", cfg.MaxRooms)
	}
	if cfg.WriteTimeout != 3*time.Second {
		t.Fatalf("expected env write_timeout 3s, got %v", cfg.WriteTimeout)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "example.com" {
		t.Fatalf("unexpected allowed_origins: %v", cfg.AllowedOrigins)
	}
	if cfg.SendQueueSize != Default().SendQueueSize {
		t.Fatalf("expected default send_queue_size, got %d", cfg.SendQueueSize)
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: [unterminated"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, err := Load(nil, path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestUpdateFromKeepsZeroValues(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":1234", MaxRooms: 3})

	if cfg.Addr != ":1234" || cfg.MaxRooms != 3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.ShutdownTimeout != Default().ShutdownTimeout {
		t.Fatalf("zero value overwrote default: %v", cfg.ShutdownTimeout)
	}
}
