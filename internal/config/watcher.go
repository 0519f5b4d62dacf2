// Package config provides configuration management utilities including
// file watching and signal handling for dynamic configuration reload.
package config

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// ReloadFunc is called when config reload is triggered. The configPath
// parameter is the path to the configuration file. Errors are logged but
// do not stop the watcher.
type ReloadFunc func(configPath string) error

// SetupSIGHUPHandler sets up a SIGHUP signal handler for config reload.
// SIGHUP is the standard Unix signal for configuration reload. Runs in a
// goroutine and returns immediately; the handler keeps listening after
// each reload.
//
// Usage:
//
//	SetupSIGHUPHandler("/path/to/config.yaml", server.ReloadConfig)
//	// Now: kill -HUP <pid> triggers reload
func SetupSIGHUPHandler(configPath string, reloadFn ReloadFunc) {
	// Buffered channel prevents signal loss if handler is busy
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)

	go func() {
		for {
			<-sighup
			log.Info("SIGHUP received, reloading configuration...")
			if err := reloadFn(configPath); err != nil {
				log.Errorf("Configuration reload failed: %v", err)
			}
		}
	}()

	log.Info("SIGHUP handler configured for config reload")
}

// WatchConfigFile watches the config file for changes and triggers reload.
//
// The directory is watched, not the file: editors use atomic writes (write
// to temp file, then rename), which replaces the inode and breaks
// file-level watching. Events are filtered to the config file name and
// reload fires on Write or Create.
//
// Returns the watcher for cleanup (caller should defer watcher.Close()).
func WatchConfigFile(configPath string, reloadFn ReloadFunc) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	configDir := filepath.Dir(configPath)
	configName := filepath.Base(configPath)

	if err := watcher.Add(configDir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) == configName {
					if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
						log.Info("Config file changed, reloading...")
						if err := reloadFn(configPath); err != nil {
							log.Errorf("Configuration reload failed: %v", err)
						}
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Errorf("File watcher error: %v", err)
			}
		}
	}()

	log.Infof("Watching config file: %s", configPath)
	return watcher, nil
}
