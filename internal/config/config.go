package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fueltrackr/internal/logger"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	devClientSecret  = "dev-client-secret"
	devSessionSecret = "dev-session-secret-change-me"
)

// loadEnv читает .env только вне production (в контейнере конфиг приходит из env).
// Файл ищется в текущей директории и до четырёх уровней выше; уже заданные переменные не меняются.
func loadEnv() {
	if os.Getenv("APP_ENV") == "production" {
		return
	}
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				logger.Errorf("config: %s: %v", path, err)
			}
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// OIDCConfig — параметры клиента у провайдера идентификации (WSO2 IS).
type OIDCConfig struct {
	AuthURL               string   `yaml:"auth_url"`
	TokenURL              string   `yaml:"token_url"`
	EndSessionURL         string   `yaml:"end_session_url"`
	ClientID              string   `yaml:"client_id"`
	ClientSecret          string   `yaml:"client_secret"`
	RedirectURL           string   `yaml:"redirect_url"`
	PostLogoutRedirectURL string   `yaml:"post_logout_redirect_url"`
	Scopes                []string `yaml:"scopes"`
	// AllowIdPInitiated — принимать callback без state cookie (вход, начатый у провайдера).
	AllowIdPInitiated bool `yaml:"allow_idp_initiated"`
}

// SessionConfig — cookie сессии браузера и срок хранения записи в store.
// Secret подписывает служебные cookie (уведомления, state входа).
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
	Secret     string
}

// TracingConfig — экспорт трасс OTLP gRPC. Пустой Endpoint — трассировка выключена.
type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
	Environment string  `yaml:"-"`
}

// RedisConfig — Redis для сессий и одноразовых кодов.
type RedisConfig struct {
	URL string
}

// Config содержит настройки веб-фронта.
// Приоритет: переменные окружения > YAML > значения по умолчанию.
type Config struct {
	ServerAddr   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// APIBaseURL — адрес удалённого FuelTrackr API, включая префикс /api.
	APIBaseURL string
	APITimeout time.Duration

	OIDC    OIDCConfig
	Session SessionConfig
	Redis   RedisConfig
	Tracing TracingConfig

	// CodeTTL — сколько помнить использованный authorization code.
	CodeTTL time.Duration

	// RegistrationDomain — регистрироваться могут только адреса @RegistrationDomain.
	RegistrationDomain string

	CORSAllowedOrigins string
	LogLevel           string

	// AuthRateLimit — запросов в минуту с одного IP на вход, callback и публичные формы.
	AuthRateLimit int
	// TrustProxy — доверять X-Forwarded-For/X-Real-IP. Включать только за своим прокси.
	TrustProxy bool
}

type yamlConfig struct {
	ServerAddr         string        `yaml:"server_addr"`
	ReadTimeout        int           `yaml:"read_timeout"`
	WriteTimeout       int           `yaml:"write_timeout"`
	IdleTimeout        int           `yaml:"idle_timeout"`
	APIBaseURL         string        `yaml:"api_base_url"`
	APITimeout         int           `yaml:"api_timeout_seconds"`
	OIDC               OIDCConfig    `yaml:"oidc"`
	Tracing            TracingConfig `yaml:"tracing"`
	SessionCookie      string        `yaml:"session_cookie"`
	SessionTTLHours    int           `yaml:"session_ttl_hours"`
	SessionSecure      bool          `yaml:"session_secure"`
	SessionSecret      string        `yaml:"session_secret"`
	RedisURL           string        `yaml:"redis_url"`
	CodeTTLMinutes     int           `yaml:"code_ttl_minutes"`
	RegistrationDomain string        `yaml:"registration_domain"`
	CORSAllowedOrigins string        `yaml:"cors_allowed_origins"`
	LogLevel           string        `yaml:"log_level"`
	AuthRateLimit      int           `yaml:"auth_rate_limit"`
	TrustProxy         bool          `yaml:"trust_proxy"`
}

func defaults() yamlConfig {
	return yamlConfig{
		ServerAddr:   ":5173",
		ReadTimeout:  15,
		WriteTimeout: 30,
		IdleTimeout:  60,
		APIBaseURL:   "http://localhost:8000/api",
		APITimeout:   15,
		OIDC: OIDCConfig{
			AuthURL:               "https://localhost:9443/oauth2/authorize",
			TokenURL:              "https://localhost:9443/oauth2/token",
			EndSessionURL:         "https://localhost:9443/oidc/logout",
			ClientID:              "fueltrackr-web",
			ClientSecret:          devClientSecret,
			RedirectURL:           "http://localhost:5173/callback",
			PostLogoutRedirectURL: "http://localhost:5173/",
			Scopes:                []string{"openid", "email", "profile"},
		},
		SessionCookie:      "fueltrackr_session",
		SessionTTLHours:    12,
		SessionSecret:      devSessionSecret,
		RedisURL:           "redis://localhost:6379",
		CodeTTLMinutes:     10,
		Tracing:            TracingConfig{SampleRatio: 1},
		RegistrationDomain: "haycarb.com",
		CORSAllowedOrigins: "*",
		LogLevel:           "info",
		AuthRateLimit:      30,
	}
}

// Load загружает конфигурацию: .env (вне production), YAML (CONFIG_PATH или config/web.yaml), env.
// В production с небезопасными настройками процесс завершается.
func Load() *Config {
	loadEnv()
	cfg := load([]string{os.Getenv("CONFIG_PATH"), "config/web.yaml"})
	if os.Getenv("APP_ENV") == "production" {
		if err := validateProduction(cfg); err != nil {
			logger.Errorf("config: %v", err)
			os.Exit(1)
		}
	}
	return cfg
}

func load(paths []string) *Config {
	yc := defaults()
	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &yc); err != nil {
			logger.Errorf("config: parse %s: %v (using defaults)", path, err)
			yc = defaults()
		} else {
			logger.Infof("config: loaded %s", path)
		}
		break
	}

	scopes := yc.OIDC.Scopes
	if raw := os.Getenv("OIDC_SCOPES"); raw != "" {
		scopes = strings.Fields(strings.ReplaceAll(raw, ",", " "))
	}

	return &Config{
		ServerAddr:   envStr("SERVER_ADDR", yc.ServerAddr),
		ReadTimeout:  time.Duration(envInt("READ_TIMEOUT", yc.ReadTimeout)) * time.Second,
		WriteTimeout: time.Duration(envInt("WRITE_TIMEOUT", yc.WriteTimeout)) * time.Second,
		IdleTimeout:  time.Duration(envInt("IDLE_TIMEOUT", yc.IdleTimeout)) * time.Second,
		APIBaseURL:   strings.TrimSuffix(envStr("API_BASE_URL", yc.APIBaseURL), "/"),
		APITimeout:   time.Duration(envInt("API_TIMEOUT_SECONDS", yc.APITimeout)) * time.Second,
		OIDC: OIDCConfig{
			AuthURL:               envStr("OIDC_AUTH_URL", yc.OIDC.AuthURL),
			TokenURL:              envStr("OIDC_TOKEN_URL", yc.OIDC.TokenURL),
			EndSessionURL:         envStr("OIDC_END_SESSION_URL", yc.OIDC.EndSessionURL),
			ClientID:              envStr("OIDC_CLIENT_ID", yc.OIDC.ClientID),
			ClientSecret:          envStr("OIDC_CLIENT_SECRET", yc.OIDC.ClientSecret),
			RedirectURL:           envStr("OIDC_REDIRECT_URL", yc.OIDC.RedirectURL),
			PostLogoutRedirectURL: envStr("OIDC_POST_LOGOUT_REDIRECT_URL", yc.OIDC.PostLogoutRedirectURL),
			Scopes:                scopes,
			AllowIdPInitiated:     envBool("OIDC_ALLOW_IDP_INITIATED", yc.OIDC.AllowIdPInitiated),
		},
		Session: SessionConfig{
			CookieName: envStr("SESSION_COOKIE", yc.SessionCookie),
			TTL:        time.Duration(envInt("SESSION_TTL_HOURS", yc.SessionTTLHours)) * time.Hour,
			Secure:     envBool("SESSION_SECURE", yc.SessionSecure),
			Secret:     envStr("SESSION_SECRET", yc.SessionSecret),
		},
		Tracing: TracingConfig{
			Endpoint:    envStr("OTEL_EXPORTER_OTLP_ENDPOINT", yc.Tracing.Endpoint),
			Insecure:    envBool("OTEL_EXPORTER_OTLP_INSECURE", yc.Tracing.Insecure),
			SampleRatio: envFloat("OTEL_TRACES_SAMPLER_ARG", yc.Tracing.SampleRatio),
			Environment: envStr("APP_ENV", "development"),
		},
		Redis:              RedisConfig{URL: envStr("REDIS_URL", yc.RedisURL)},
		CodeTTL:            time.Duration(envInt("CODE_TTL_MINUTES", yc.CodeTTLMinutes)) * time.Minute,
		RegistrationDomain: strings.ToLower(strings.TrimPrefix(envStr("REGISTRATION_DOMAIN", yc.RegistrationDomain), "@")),
		CORSAllowedOrigins: envStr("CORS_ALLOWED_ORIGINS", yc.CORSAllowedOrigins),
		LogLevel:           envStr("LOG_LEVEL", yc.LogLevel),
		AuthRateLimit:      envInt("AUTH_RATE_LIMIT", yc.AuthRateLimit),
		TrustProxy:         envBool("TRUST_PROXY", yc.TrustProxy),
	}
}

func validateProduction(cfg *Config) error {
	if !cfg.Session.Secure {
		return errors.New("SESSION_SECURE must be true in production")
	}
	if cfg.OIDC.ClientSecret == "" || cfg.OIDC.ClientSecret == devClientSecret {
		return errors.New("set OIDC_CLIENT_SECRET in production")
	}
	if len(cfg.Session.Secret) < 32 || cfg.Session.Secret == devSessionSecret {
		return errors.New("set SESSION_SECRET (at least 32 bytes) in production")
	}
	if cfg.CORSAllowedOrigins == "" || cfg.CORSAllowedOrigins == "*" {
		// не роняем процесс: /api/session доступен только с cookie
		logger.Errorf("config: set CORS_ALLOWED_ORIGINS in production (explicit origins, not *)")
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return fallback
	}
	return f
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
