// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/paths.go
// Summary: Path helpers for texeltail configuration and the debug log.

package config

import (
	"os"
	"path/filepath"
)

const (
	appDirName     = "texeltail"
	configFileName = "config.yaml"
	logFileName    = ".texeltail.log"

	// LogDirEnv names the directory that receives the debug log.
	LogDirEnv = "TEXELTAIL_LOG_DIR"
)

func configRoot() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appDirName), nil
}

// DefaultConfigFile returns $XDG_CONFIG_HOME/texeltail/config.yaml (or the
// platform equivalent).
func DefaultConfigFile() (string, error) {
	root, err := configRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, configFileName), nil
}

// LogPath returns where the debug log goes: $TEXELTAIL_LOG_DIR when it names a
// directory, the home directory otherwise.
func LogPath() (string, error) {
	if dir := os.Getenv(LogDirEnv); dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return filepath.Join(dir, logFileName), nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, logFileName), nil
}
