package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "gntaxdb"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/gntaxdb by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files, including
// downloaded lineage payloads.
// Returns ~/.cache/gntaxdb by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// LineageCacheDir returns the directory where compressed lineage payloads
// are kept while a batch is parsed.
func LineageCacheDir(homeDir string) string {
	return filepath.Join(CacheDir(homeDir), "lineages")
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/gntaxdb/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/gntaxdb/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}
