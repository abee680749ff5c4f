package config

import (
	"errors"
	"os"
	"testing"
)

func TestGetIntBool(t *testing.T) {
	os.Setenv("X_INT", "42")
	t.Cleanup(func() { os.Unsetenv("X_INT") })
	if v := getInt("X_INT", 1); v != 42 {
		t.Fatalf("want 42, got %d", v)
	}

	os.Setenv("X_BOOL_T", "true")
	os.Setenv("X_BOOL_F", "false")
	t.Cleanup(func() { os.Unsetenv("X_BOOL_T"); os.Unsetenv("X_BOOL_F") })
	if !getBool("X_BOOL_T", false) {
		t.Fatalf("want true")
	}
	if getBool("X_BOOL_F", true) {
		t.Fatalf("want false")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, store, closer, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if closer != nil {
		closer()
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Fatalf("default backend: %s", cfg.Storage.Backend)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("default addr: %s", cfg.Server.Addr)
	}
	if store.Get() != cfg {
		t.Fatalf("store must hold the loaded config")
	}
}

func TestStore_ValidatorVeto(t *testing.T) {
	cfg := &Config{}
	cfg.PG.MaxOpenConns = 10
	cfg.PG.MaxIdleConns = 5
	store := NewStore(cfg)

	store.AddValidator(func(newCfg *Config, changed map[string]bool) error {
		if newCfg.PG.MaxIdleConns > newCfg.PG.MaxOpenConns {
			return errors.New("PG_MAX_IDLE cannot exceed PG_MAX_OPEN")
		}
		return nil
	})

	bad := cloneConfig(cfg)
	bad.PG.MaxIdleConns = 99
	if store.UpdateValidated(bad, map[string]bool{"pg.max_idle": true}) {
		t.Fatalf("invalid update must be rejected")
	}
	if store.Get().PG.MaxIdleConns != 5 {
		t.Fatalf("rejected update must not apply")
	}

	good := cloneConfig(cfg)
	good.PG.MaxOpenConns = 20
	if !store.UpdateValidated(good, map[string]bool{"pg.max_open": true}) {
		t.Fatalf("valid update must apply")
	}
	if store.Get().PG.MaxOpenConns != 20 {
		t.Fatalf("applied update must be visible")
	}
}
