package config

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ProviderConfig manages payment provider configurations
type ProviderConfig struct {
	configs map[string]map[string]string
	storage *SQLiteStorage
	mu      sync.RWMutex
}

// NewProviderConfig creates an empty, memory-only provider configuration
func NewProviderConfig() *ProviderConfig {
	return &ProviderConfig{
		configs: make(map[string]map[string]string),
	}
}

// LoadFromEnv reads ACI and Shift4 credentials from the environment.
// environment is "production" when the app runs in production, "sandbox" otherwise.
func (c *ProviderConfig) LoadFromEnv(isProduction bool) {
	environment := "sandbox"
	if isProduction {
		environment = "production"
	}

	envConfigs := map[string]map[string]string{
		"aci": {
			"entityId":    GetEnv("ACI_ENTITY_ID", ""),
			"bearerToken": GetEnv("ACI_BEARER_TOKEN", ""),
			"paymentUrl":  GetEnv("ACI_PAYMENT_URL", ""),
			"environment": environment,
		},
		"shift4": {
			"apiKey":      GetEnv("SHIFT4_API_KEY", ""),
			"paymentUrl":  GetEnv("SHIFT4_PAYMENT_URL", ""),
			"environment": environment,
		},
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for name, values := range envConfigs {
		merged := c.configs[name]
		if merged == nil {
			merged = make(map[string]string)
		}
		for k, v := range values {
			if v != "" {
				merged[k] = v
			}
		}
		c.configs[name] = merged
	}
}

// AttachStorage overlays every stored provider config on top of the current
// values. Later SetConfig calls are written through to storage.
func (c *ProviderConfig) AttachStorage(storage *SQLiteStorage) error {
	if storage == nil {
		return fmt.Errorf("storage cannot be nil")
	}

	stored, err := storage.LoadAllProviderConfigs()
	if err != nil {
		return fmt.Errorf("failed to load configs from SQLite: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.storage = storage
	for name, values := range stored {
		merged := c.configs[name]
		if merged == nil {
			merged = make(map[string]string)
		}
		for k, v := range values {
			merged[k] = v
		}
		c.configs[name] = merged
	}

	return nil
}

// SetConfig replaces the keys of a provider, persisting them when storage is attached
func (c *ProviderConfig) SetConfig(providerName string, config map[string]string) error {
	if providerName == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if len(config) == 0 {
		return fmt.Errorf("config cannot be empty")
	}

	name := strings.ToLower(providerName)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.storage != nil {
		if err := c.storage.SaveProviderConfig(name, config); err != nil {
			return fmt.Errorf("failed to save config to SQLite: %w", err)
		}
	}

	c.configs[name] = copyConfig(config)
	return nil
}

// GetConfig returns a copy of the configuration of a provider
func (c *ProviderConfig) GetConfig(providerName string) (map[string]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	config, exists := c.configs[strings.ToLower(providerName)]
	if !exists {
		return nil, fmt.Errorf("no configuration found for provider: %s", providerName)
	}
	return copyConfig(config), nil
}

// GetAvailableProviders returns all providers that have configurations
func (c *ProviderConfig) GetAvailableProviders() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	providers := make([]string, 0, len(c.configs))
	for name := range c.configs {
		providers = append(providers, name)
	}
	sort.Strings(providers)
	return providers
}

// GetStats returns configuration and storage statistics
func (c *ProviderConfig) GetStats() map[string]any {
	stats := make(map[string]any)

	c.mu.RLock()
	stats["memory_configs"] = len(c.configs)
	storage := c.storage
	c.mu.RUnlock()

	if storage == nil {
		stats["sqlite"] = "not_available"
		return stats
	}

	sqliteStats, err := storage.GetStats()
	if err != nil {
		stats["sqlite_error"] = err.Error()
	} else {
		stats["sqlite"] = sqliteStats
	}
	return stats
}

func copyConfig(config map[string]string) map[string]string {
	configCopy := make(map[string]string, len(config))
	for k, v := range config {
		configCopy[k] = v
	}
	return configCopy
}
