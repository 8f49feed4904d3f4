package ailink

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/promptdeck/promptdeck/internal/ailink/driver"
	"github.com/promptdeck/promptdeck/internal/ailink/driver/groq"
	"github.com/promptdeck/promptdeck/internal/ailink/driver/openai"
)

// Providers builds drivers for configured providers and resolves the model
// to use for each role.
type Providers struct {
	cfg Config

	// HTTPClient is handed to drivers built after it is set.
	HTTPClient *http.Client

	mu      sync.Mutex
	drivers map[string]driver.Driver
}

// ResolvedProvider is the outcome of resolving a role.
type ResolvedProvider struct {
	ProviderID string
	Driver     driver.Driver
	Model      string
}

// NewProviders returns a provider registry for cfg.
func NewProviders(cfg Config) *Providers {
	return &Providers{cfg: cfg, drivers: map[string]driver.Driver{}}
}

// Config returns the registry configuration.
func (p *Providers) Config() Config {
	return p.cfg
}

// Register installs a pre-built driver for providerID, replacing any
// driver built from configuration.
func (p *Providers) Register(providerID string, drv driver.Driver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drivers[providerID] = drv
}

// Resolve picks the provider and model for role. A non-empty modelOverride
// wins over configured models.
func (p *Providers) Resolve(role, modelOverride string) (*ResolvedProvider, error) {
	if p == nil {
		return nil, fmt.Errorf("ailink provider registry not configured")
	}

	providerID, providerCfg, err := p.providerFor(role)
	if err != nil {
		return nil, err
	}
	drv, err := p.driverFor(providerID, providerCfg)
	if err != nil {
		return nil, err
	}

	model := strings.TrimSpace(modelOverride)
	if model == "" {
		model = strings.TrimSpace(providerCfg.Models[role])
	}
	if model == "" {
		model = strings.TrimSpace(p.cfg.Models.ForRole(role))
	}
	if model == "" {
		return nil, fmt.Errorf("no model configured for role %q", role)
	}

	return &ResolvedProvider{ProviderID: providerID, Driver: drv, Model: model}, nil
}

func (p *Providers) providerFor(role string) (string, ProviderConfig, error) {
	if id := strings.TrimSpace(p.cfg.Routing[role]); id != "" {
		return p.enabledProvider(id, fmt.Sprintf("role %q", role))
	}
	if id := strings.TrimSpace(p.cfg.DefaultProvider); id != "" {
		return p.enabledProvider(id, "default provider")
	}

	ids := make([]string, 0, len(p.cfg.Providers))
	for id, providerCfg := range p.cfg.Providers {
		if providerCfg.Enabled {
			ids = append(ids, id)
		}
	}
	switch len(ids) {
	case 0:
		return "", ProviderConfig{}, fmt.Errorf("no enabled providers configured")
	case 1:
		return ids[0], p.cfg.Providers[ids[0]], nil
	default:
		sort.Strings(ids)
		return "", ProviderConfig{}, fmt.Errorf("no default provider set; enabled providers: %s", strings.Join(ids, ", "))
	}
}

func (p *Providers) enabledProvider(id, purpose string) (string, ProviderConfig, error) {
	providerCfg, ok := p.cfg.Providers[id]
	if !ok {
		return "", ProviderConfig{}, fmt.Errorf("provider %q for %s not configured", id, purpose)
	}
	if !providerCfg.Enabled {
		return "", ProviderConfig{}, fmt.Errorf("provider %q for %s is disabled", id, purpose)
	}
	return id, providerCfg, nil
}

func (p *Providers) driverFor(providerID string, providerCfg ProviderConfig) (driver.Driver, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if drv, ok := p.drivers[providerID]; ok {
		return drv, nil
	}

	var drv driver.Driver
	switch kind := strings.ToLower(strings.TrimSpace(providerCfg.AIProvider)); kind {
	case "groq", "":
		drv = groq.NewClient(groq.Options{
			BaseURL:    providerCfg.BaseURL,
			APIKey:     providerCfg.APIKey,
			HTTPClient: p.HTTPClient,
			Timeout:    p.cfg.DefaultTimeout,
		})
	case "openai":
		client := openai.NewClient(providerCfg.BaseURL, providerCfg.APIKey)
		client.HTTPClient = p.HTTPClient
		client.Timeout = p.cfg.DefaultTimeout
		client.ProviderName = providerID
		drv = client
	default:
		return nil, fmt.Errorf("unsupported ai_provider %q for provider %q", kind, providerID)
	}

	p.drivers[providerID] = drv
	return drv, nil
}
