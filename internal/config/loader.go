// Package config loads promptdeck configuration from defaults, an optional
// YAML file and environment variables, and decodes it into Config.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/promptdeck/promptdeck/internal/appid"
)

const (
	GroqBaseURL   = "https://api.groq.com/openai/v1"
	OpenAIBaseURL = "https://api.openai.com/v1"
	PexelsBaseURL = "https://api.pexels.com/v1"

	DefaultCORSOrigin    = "https://mrowinski-thorge.github.io"
	DefaultExecutorModel = "groq/compound"
)

// ErrMissingAPIKey and ErrMissingPassword are returned by Validate.
var (
	ErrMissingAPIKey   = errors.New("GROQ_API_KEY must be set")
	ErrMissingPassword = errors.New("WEBSITE_PASSWORD must be set")
)

var (
	appConfig *Config
	configMu  sync.RWMutex
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.read_timeout", "30s")
	// Chat calls carry no timeout by default, so writes must outlast a slow
	// triage + plan + execute sequence.
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.cors_origins", []string{DefaultCORSOrigin})

	v.SetDefault("auth.password", "")

	v.SetDefault("ailink.default_provider", "groq")
	v.SetDefault("ailink.default_timeout", "0s")
	v.SetDefault("ailink.prompts_dir", "")
	v.SetDefault("ailink.models.triage", "llama-3.1-8b-instant")
	v.SetDefault("ailink.models.planner", "llama-3.3-70b-versatile")
	v.SetDefault("ailink.models.executor", DefaultExecutorModel)
	v.SetDefault("ailink.allowed_models", []string{
		"groq/compound",
		"groq/compound-mini",
		"llama-3.3-70b-versatile",
		"llama-3.1-8b-instant",
		"openai/gpt-oss-120b",
		"openai/gpt-oss-20b",
		"moonshotai/kimi-k2-instruct",
	})
	v.SetDefault("ailink.allowed_tools", []string{"browser_search", "code_interpreter", "visit_website"})
	v.SetDefault("ailink.providers.groq.enabled", true)
	v.SetDefault("ailink.providers.groq.ai_provider", "groq")
	v.SetDefault("ailink.providers.groq.base_url", GroqBaseURL)
	v.SetDefault("ailink.providers.groq.api_key", "")
	v.SetDefault("ailink.providers.openai.enabled", false)
	v.SetDefault("ailink.providers.openai.ai_provider", "openai")
	v.SetDefault("ailink.providers.openai.base_url", OpenAIBaseURL)
	v.SetDefault("ailink.providers.openai.api_key", "")

	v.SetDefault("images.enabled", true)
	v.SetDefault("images.api_key", "")
	v.SetDefault("images.base_url", PexelsBaseURL)
	v.SetDefault("images.timeout", "10s")

	v.SetDefault("deck.max_image_dimension", 1600)
	v.SetDefault("deck.jpeg_quality", 85)

	v.SetDefault("store.enabled", false)
	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "structured")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("health.enabled", true)
}

// BindEnv wires the prefixed environment (PROMPTDECK_SERVER_PORT, ...) and
// the bare variable names used by existing deployments.
func BindEnv(v *viper.Viper) {
	prefix := strings.TrimSuffix(appid.EnvPrefix, "_")
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("auth.password", appid.EnvPrefix+"AUTH_PASSWORD", "WEBSITE_PASSWORD")
	_ = v.BindEnv("ailink.providers.groq.api_key", appid.EnvPrefix+"GROQ_API_KEY", "GROQ_API_KEY")
	_ = v.BindEnv("ailink.providers.openai.api_key", appid.EnvPrefix+"OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("images.api_key", appid.EnvPrefix+"PEXELS_API_KEY", "PEXELS_API_KEY")
	_ = v.BindEnv("store.url", appid.EnvPrefix+"DB_URL")
	_ = v.BindEnv("store.auth_token", appid.EnvPrefix+"DB_AUTH_TOKEN")
	_ = v.BindEnv("logging.level", appid.EnvPrefix+"LOG_LEVEL")
}

// Load decodes the settings held by v into a Config and records it as the
// current configuration.
func Load(v *viper.Viper) (*Config, error) {
	cfg, err := Decode(v.AllSettings())
	if err != nil {
		return nil, err
	}
	setConfig(cfg)
	return cfg, nil
}

// Decode converts a raw settings map into a Config.
func Decode(settings map[string]any) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Server.CORSOrigins = trimList(cfg.Server.CORSOrigins)
	cfg.AILink.AllowedModels = trimList(cfg.AILink.AllowedModels)
	cfg.AILink.AllowedTools = trimList(cfg.AILink.AllowedTools)
	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}
	return cfg, nil
}

// Validate reports missing credentials. The site password is only required
// when the HTTP surface is served.
func (c *Config) Validate(requirePassword bool) error {
	var problems []error
	if strings.TrimSpace(c.ProviderAPIKey()) == "" {
		problems = append(problems, ErrMissingAPIKey)
	}
	if requirePassword && strings.TrimSpace(c.Auth.Password) == "" {
		problems = append(problems, ErrMissingPassword)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	return errors.Join(problems...)
}

// ProviderAPIKey returns the API key of the default provider.
func (c *Config) ProviderAPIKey() string {
	provider, ok := c.AILink.Providers[strings.ToLower(strings.TrimSpace(c.AILink.DefaultProvider))]
	if !ok {
		return ""
	}
	return provider.APIKey
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	configDir := gfconfig.GetAppConfigDir(appid.ConfigName)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}

// DefaultStorePath returns the XDG-compliant path to the history database.
func DefaultStorePath() string {
	dataDir := gfconfig.GetAppDataDir(appid.ConfigName)
	if strings.TrimSpace(dataDir) == "" {
		return "./" + appid.BinaryName + ".db"
	}
	return filepath.Join(dataDir, appid.BinaryName+".db")
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
