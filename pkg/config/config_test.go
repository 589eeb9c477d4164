package config

import "testing"

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("TIENDA_DB_DSN", "postgres://localhost:5432/tienda?sslmode=disable")
	t.Setenv("TIENDA_JWT_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.App.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.App.Port)
	}
	if !cfg.App.IsDev() {
		t.Fatal("expected dev env by default")
	}
	if cfg.Pricing.TaxRate != "0.10" {
		t.Fatalf("expected default tax rate, got %q", cfg.Pricing.TaxRate)
	}
	if cfg.Pricing.FlatShippingFee != "5.99" {
		t.Fatalf("expected default shipping fee, got %q", cfg.Pricing.FlatShippingFee)
	}
	if cfg.JWT.ExpirationMinutes != 60 {
		t.Fatalf("expected default jwt ttl, got %d", cfg.JWT.ExpirationMinutes)
	}
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("TIENDA_DB_DSN", "")
	t.Setenv("TIENDA_JWT_SECRET", "s3cret")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DSN is missing")
	}
}
