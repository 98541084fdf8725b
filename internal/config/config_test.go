package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "web.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg := load(nil)
	if cfg.ServerAddr != ":5173" {
		t.Fatalf("expected default addr, got %q", cfg.ServerAddr)
	}
	if cfg.RegistrationDomain != "haycarb.com" {
		t.Fatalf("expected haycarb.com, got %q", cfg.RegistrationDomain)
	}
	if cfg.Session.TTL != 12*time.Hour {
		t.Fatalf("expected 12h session ttl, got %v", cfg.Session.TTL)
	}
	if len(cfg.OIDC.Scopes) != 3 {
		t.Fatalf("expected 3 default scopes, got %v", cfg.OIDC.Scopes)
	}
	if cfg.OIDC.AllowIdPInitiated {
		t.Fatal("callback without state must be refused by default")
	}
	if cfg.AuthRateLimit != 30 || cfg.TrustProxy {
		t.Fatalf("unexpected rate limit defaults %d %v", cfg.AuthRateLimit, cfg.TrustProxy)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := writeYAML(t, `
api_base_url: https://api.example.com/api/
session_ttl_hours: 2
registration_domain: "@Example.com"
oidc:
  client_id: from-yaml
  scopes: [openid]
`)
	t.Setenv("OIDC_CLIENT_ID", "from-env")
	t.Setenv("AUTH_RATE_LIMIT", "5")
	t.Setenv("TRUST_PROXY", "true")

	cfg := load([]string{path})
	if cfg.APIBaseURL != "https://api.example.com/api" {
		t.Fatalf("trailing slash not trimmed: %q", cfg.APIBaseURL)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Fatalf("expected 2h, got %v", cfg.Session.TTL)
	}
	if cfg.OIDC.ClientID != "from-env" {
		t.Fatalf("env must win over yaml, got %q", cfg.OIDC.ClientID)
	}
	if cfg.RegistrationDomain != "example.com" {
		t.Fatalf("expected normalized domain, got %q", cfg.RegistrationDomain)
	}
	if len(cfg.OIDC.Scopes) != 1 || cfg.OIDC.Scopes[0] != "openid" {
		t.Fatalf("unexpected scopes %v", cfg.OIDC.Scopes)
	}
	if cfg.AuthRateLimit != 5 || !cfg.TrustProxy {
		t.Fatalf("expected rate limit settings from env, got %d %v", cfg.AuthRateLimit, cfg.TrustProxy)
	}
}

func TestLoadTracing(t *testing.T) {
	path := writeYAML(t, `
tracing:
  endpoint: otel-collector:4317
  sample_ratio: 0.5
`)
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")
	t.Setenv("APP_ENV", "staging")

	cfg := load([]string{path})
	tr := cfg.Tracing
	if tr.Endpoint != "otel-collector:4317" || !tr.Insecure || tr.SampleRatio != 0.5 || tr.Environment != "staging" {
		t.Fatalf("unexpected tracing config %+v", tr)
	}
	if def := load(nil).Tracing; def.Endpoint != "" || def.SampleRatio != 1 {
		t.Fatalf("tracing must be off by default with full sampling, got %+v", def)
	}
}

func TestLoadBrokenYAMLFallsBack(t *testing.T) {
	path := writeYAML(t, "server_addr: [unterminated")
	cfg := load([]string{path})
	if cfg.ServerAddr != ":5173" {
		t.Fatalf("expected defaults after parse error, got %q", cfg.ServerAddr)
	}
}

func TestValidateProduction(t *testing.T) {
	cfg := load(nil)
	if err := validateProduction(cfg); err == nil {
		t.Fatal("insecure cookie must be rejected")
	}
	cfg.Session.Secure = true
	if err := validateProduction(cfg); err == nil {
		t.Fatal("dev client secret must be rejected")
	}
	cfg.OIDC.ClientSecret = "real-secret"
	if err := validateProduction(cfg); err == nil {
		t.Fatal("dev session secret must be rejected")
	}
	cfg.Session.Secret = strings.Repeat("s", 32)
	if err := validateProduction(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("REGISTRATION_DOMAIN=from-dotenv.com\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "services", "web")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(sub); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("APP_ENV", "")
	t.Setenv("REGISTRATION_DOMAIN", "")
	os.Unsetenv("REGISTRATION_DOMAIN")

	loadEnv()
	if got := load(nil).RegistrationDomain; got != "from-dotenv.com" {
		t.Fatalf("expected domain from .env in parent dir, got %q", got)
	}
}
