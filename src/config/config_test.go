package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MY_SIGNING_KEY", "secret")
	t.Setenv("STORE", "")
	t.Setenv("LOCATION_MIN_INTERVAL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8888" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.Store != StoreMongo {
		t.Errorf("Store = %q", cfg.Store)
	}
	if cfg.LocationMinInterval != 5*time.Second {
		t.Errorf("LocationMinInterval = %v", cfg.LocationMinInterval)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadRequiresSigningKey(t *testing.T) {
	t.Setenv("MY_SIGNING_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error without MY_SIGNING_KEY")
	}
}

func TestLoadMemoryStoreNeedsSeed(t *testing.T) {
	t.Setenv("MY_SIGNING_KEY", "secret")
	t.Setenv("STORE", "MEMORY")
	t.Setenv("SEED_FILE", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for memory store without seed file")
	}

	t.Setenv("SEED_FILE", "points.tsv")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store != StoreMemory {
		t.Fatalf("Store = %q", cfg.Store)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("MY_SIGNING_KEY", "secret")
	t.Setenv("LOCATION_TTL", "ten minutes")
	if _, err := Load(); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" http://a , ,http://b")
	if len(got) != 2 || got[0] != "http://a" || got[1] != "http://b" {
		t.Fatalf("splitCSV = %v", got)
	}
}

func TestUsers(t *testing.T) {
	cfg := &Config{AdminUser: "admin"}
	if len(cfg.Users()) != 0 {
		t.Fatal("no users expected without a password hash")
	}
	cfg.AdminPasswordHash = "$2a$10$hash"
	users := cfg.Users()
	if users["admin"] != "$2a$10$hash" {
		t.Fatalf("Users = %v", users)
	}
}
