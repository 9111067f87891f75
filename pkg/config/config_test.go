package config

import "testing"

func TestLoadRequiresStoreConfig(t *testing.T) {
	t.Setenv("PG_CONN", "")
	t.Setenv("MONGODB_URI", "")

	if _, err := Load(); err == nil {
		t.Fatal("Expected an error when PG_CONN is missing")
	}

	t.Setenv("PG_CONN", "postgres://localhost:5432/smartpark")
	if _, err := Load(); err == nil {
		t.Fatal("Expected an error when MONGODB_URI is missing")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PG_CONN", "postgres://localhost:5432/smartpark")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("SCHEMA_GENERATION", "")
	t.Setenv("PROJECTION", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("Expected permissive CORS default, got %v", cfg.AllowedOrigins)
	}
	if cfg.Schema != "extended" || cfg.Projection != "registro" {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
}
