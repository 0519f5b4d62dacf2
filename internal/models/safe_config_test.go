package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeConfigFile writes a YAML config into a temp dir and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const baseYAML = `
server:
  host: 0.0.0.0
  port: "2112"
meiliserver:
  host: meili.example.com
  port: "7700"
  apiKey: masterKey1234567
`

func TestSafeConfigGet(t *testing.T) {
	cfg := validConfig()
	sc := NewSafeConfig(cfg)

	require.Same(t, cfg, sc.Get())
}

func TestReloadConfigSameServer(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
	sc := NewSafeConfig(cfg)

	path := writeConfigFile(t, baseYAML)

	serverChanged, err := sc.ReloadConfig(path)
	require.NoError(t, err)
	require.False(t, serverChanged, "same connection settings must not force a client rebuild")
	require.NotSame(t, cfg, sc.Get())
}

func TestReloadConfigDetectsServerChange(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
	sc := NewSafeConfig(cfg)

	path := writeConfigFile(t, `
server:
  host: 0.0.0.0
  port: "2112"
meiliserver:
  host: other-meili.example.com
  port: "7700"
  apiKey: masterKey1234567
`)

	serverChanged, err := sc.ReloadConfig(path)
	require.NoError(t, err)
	require.True(t, serverChanged)
	require.Equal(t, "other-meili.example.com", sc.Get().MeiliServer.Host)
}

func TestReloadConfigDetectsAPIKeyChange(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
	sc := NewSafeConfig(cfg)

	path := writeConfigFile(t, `
server:
  host: 0.0.0.0
  port: "2112"
meiliserver:
  host: meili.example.com
  port: "7700"
  apiKey: rotatedKey1234567
`)

	serverChanged, err := sc.ReloadConfig(path)
	require.NoError(t, err)
	require.True(t, serverChanged)
}

func TestReloadConfigKeepsRunningConfigOnInvalidFile(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
	sc := NewSafeConfig(cfg)

	path := writeConfigFile(t, `
server:
  host: 0.0.0.0
  port: "not-a-port"
meiliserver:
  host: meili.example.com
  port: "7700"
`)

	_, err := sc.ReloadConfig(path)
	require.Error(t, err)
	require.Same(t, cfg, sc.Get(), "a failed reload must leave the running config untouched")
}

func TestReloadConfigMissingFile(t *testing.T) {
	sc := NewSafeConfig(validConfig())

	_, err := sc.ReloadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}

func TestReloadConfigUnparseableFile(t *testing.T) {
	sc := NewSafeConfig(validConfig())

	path := writeConfigFile(t, "{{ not yaml at all")

	_, err := sc.ReloadConfig(path)
	require.Error(t, err)
}
