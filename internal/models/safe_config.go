// Package models defines the core data structures for the meili_admin application.
package models

import (
	"fmt"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// SafeConfig provides thread-safe access to configuration. It uses RWMutex
// to allow concurrent reads while serializing writes. Pattern from
// Prometheus blackbox_exporter.
//
// SafeConfig enables dynamic configuration reload without restarting the
// exporter: operators can update credentials or the Meilisearch address via
// SIGHUP, and invalid configurations are rejected without affecting the
// running config.
type SafeConfig struct {
	mu sync.RWMutex
	C  *Config
}

// NewSafeConfig creates a new SafeConfig with the provided initial config.
// The config is stored by reference; the caller should not modify it after
// passing it to NewSafeConfig.
func NewSafeConfig(cfg *Config) *SafeConfig {
	return &SafeConfig{
		C: cfg,
	}
}

// Get returns the current configuration (read-locked).
// The returned pointer is safe to use until the next reload.
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.C
}

// ReloadConfig loads and validates a new configuration from the file.
// Validation happens before acquiring the write lock (fail-fast), so an
// invalid file never affects the running exporter.
//
// Returns:
//   - serverChanged: true if the Meilisearch connection settings changed,
//     which signals that the API client must be rebuilt
//   - err: error if the file cannot be read or validation fails
func (sc *SafeConfig) ReloadConfig(configPath string) (serverChanged bool, err error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return false, fmt.Errorf("config file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return false, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var newCfg Config
	if err := yaml.Unmarshal(data, &newCfg); err != nil {
		return false, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := newCfg.Validate(); err != nil {
		return false, fmt.Errorf("invalid configuration: %w", err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	serverChanged = sc.C.GetMeiliBaseURL() != newCfg.GetMeiliBaseURL() ||
		sc.C.MeiliServer.APIKey != newCfg.MeiliServer.APIKey ||
		sc.C.MeiliServer.InsecureSkipVerify != newCfg.MeiliServer.InsecureSkipVerify

	sc.C = &newCfg
	log.Infof("Configuration reloaded from %s (server changed: %v)", configPath, serverChanged)

	return serverChanged, nil
}
