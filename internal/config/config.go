// Package config reads process configuration once at start. Nothing below cmd
// reads the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"estate-chat/internal/integrations/openai"
	"estate-chat/internal/integrations/paramstore"
)

const (
	EnvAPIKey          = "GROQ_API_KEY"
	EnvAPIKeyParameter = "GROQ_API_KEY_PARAMETER"
	EnvProviderBaseURL = "CHAT_PROVIDER_BASE_URL"
	EnvListenAddr      = "LISTEN_ADDR"
	EnvProxyURL        = "CHAT_PROXY_URL"
	EnvLogLevel        = "LOG_LEVEL"
	EnvLogFormat       = "LOG_FORMAT"

	DefaultListenAddr = ":3000"
	DefaultProxyURL   = "http://localhost:3000/api/chat"
)

type Config struct {
	APIKey          string
	APIKeyParameter string
	ProviderBaseURL string
	ListenAddr      string
	ProxyURL        string
	LogLevel        slog.Level
	LogFormat       string
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadDotEnv loads the first .env file found among paths into the process
// environment. Existing variables win. Missing files are not an error.
func LoadDotEnv(paths ...string) (string, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return "", fmt.Errorf("config: load %s: %w", p, err)
		}
		return p, nil
	}
	return "", nil
}

// Load builds a Config from lookup. A missing API key is not an error; the
// endpoint reports it per request.
func Load(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		APIKey:          get(EnvAPIKey, ""),
		APIKeyParameter: get(EnvAPIKeyParameter, ""),
		ProviderBaseURL: get(EnvProviderBaseURL, openai.DefaultBaseURL),
		ListenAddr:      get(EnvListenAddr, DefaultListenAddr),
		ProxyURL:        get(EnvProxyURL, DefaultProxyURL),
		LogFormat:       strings.ToLower(get(EnvLogFormat, "text")),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get(EnvLogLevel, "info"))); err != nil {
		return Config{}, fmt.Errorf("config: invalid %s: %w", EnvLogLevel, err)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("config: invalid %s %q: want text or json", EnvLogFormat, cfg.LogFormat)
	}
	return cfg, nil
}

// Logger builds the process logger writing to w.
func (c Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SecretGetter is satisfied by *paramstore.Client.
type SecretGetter interface {
	Secret(ctx context.Context, name string) (string, error)
}

// ResolveAPIKey returns the provider credential. The environment value wins;
// otherwise the SSM parameter is read through getter when one is named. An
// empty result with a nil error means no credential is configured, which
// includes a named parameter that is missing or blank. Other SSM failures are
// returned.
func ResolveAPIKey(ctx context.Context, cfg Config, getter SecretGetter) (string, error) {
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}
	if cfg.APIKeyParameter == "" {
		return "", nil
	}
	if getter == nil {
		return "", errors.New("config: secret getter must not be nil when a key parameter is set")
	}
	key, err := getter.Secret(ctx, cfg.APIKeyParameter)
	if errors.Is(err, paramstore.ErrNotFound) || errors.Is(err, paramstore.ErrEmpty) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("config: resolve api key: %w", err)
	}
	return key, nil
}
