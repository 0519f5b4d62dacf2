package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchConfigFileTriggersReload(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n"), 0o644))

	var reloads int32
	watcher, err := WatchConfigFile(configPath, func(path string) error {
		require.Equal(t, configPath, path)
		atomic.AddInt32(&reloads, 1)
		return nil
	})
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  port: \"2112\"\n"), 0o644))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&reloads) > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatchConfigFileIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n"), 0o644))

	var reloads int32
	watcher, err := WatchConfigFile(configPath, func(path string) error {
		atomic.AddInt32(&reloads, 1)
		return nil
	})
	require.NoError(t, err)
	defer watcher.Close()

	// Changes to sibling files in the watched directory must be filtered out
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))

	time.Sleep(200 * time.Millisecond)
	require.Zero(t, atomic.LoadInt32(&reloads))
}

func TestWatchConfigFileAtomicWrite(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n"), 0o644))

	var reloads int32
	watcher, err := WatchConfigFile(configPath, func(path string) error {
		atomic.AddInt32(&reloads, 1)
		return nil
	})
	require.NoError(t, err)
	defer watcher.Close()

	// Editor-style atomic replace: write temp file, then rename over target
	tmpPath := filepath.Join(dir, ".config.yaml.tmp")
	require.NoError(t, os.WriteFile(tmpPath, []byte("server:\n  port: \"2112\"\n"), 0o644))
	require.NoError(t, os.Rename(tmpPath, configPath))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&reloads) > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatchConfigFileMissingDirectory(t *testing.T) {
	_, err := WatchConfigFile("/nonexistent-dir/config.yaml", func(string) error { return nil })
	require.Error(t, err)
}
