package ailink

import "time"

// Roles a model call can play in a generation.
const (
	RoleTriage   = "triage"
	RolePlanner  = "planner"
	RoleExecutor = "executor"
)

// Config defines provider and routing configuration for model calls.
type Config struct {
	DefaultProvider string `mapstructure:"default_provider"`

	// DefaultTimeout bounds each chat call. Zero leaves calls unbounded.
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`

	// PromptsDir overrides built-in prompts by slug.
	PromptsDir string `mapstructure:"prompts_dir"`

	Models        RoleModels `mapstructure:"models"`
	AllowedModels []string   `mapstructure:"allowed_models"`
	AllowedTools  []string   `mapstructure:"allowed_tools"`

	// Providers is keyed by a user-defined id; AIProvider selects the driver.
	Providers map[string]ProviderConfig `mapstructure:"providers"`

	// Routing optionally pins a role to a provider id.
	Routing map[string]string `mapstructure:"routing"`
}

// RoleModels names the default model for each role.
type RoleModels struct {
	Triage   string `mapstructure:"triage"`
	Planner  string `mapstructure:"planner"`
	Executor string `mapstructure:"executor"`
}

// ForRole returns the configured model for role.
func (m RoleModels) ForRole(role string) string {
	switch role {
	case RoleTriage:
		return m.Triage
	case RolePlanner:
		return m.Planner
	default:
		return m.Executor
	}
}

// ProviderConfig is a configured provider instance.
type ProviderConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// AIProvider is the driver identifier: "groq" or "openai".
	AIProvider string `mapstructure:"ai_provider"`
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`

	// Models optionally overrides RoleModels per role for this provider.
	Models map[string]string `mapstructure:"models"`
}
