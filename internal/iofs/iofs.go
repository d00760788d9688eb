// Package iofs prepares directories and files that GNtaxdb keeps in the
// user's home.
package iofs

import (
	"os"
	"path/filepath"

	"github.com/gnames/gntaxdb/internal/ioconfig"
	"github.com/gnames/gntaxdb/pkg/config"
)

// EnsureDirs creates config, cache, lineage cache and log directories.
func EnsureDirs(homeDir string) error {
	dirs := []string{
		config.ConfigDir(homeDir),
		config.CacheDir(homeDir),
		config.LineageCacheDir(homeDir),
		config.LogDir(homeDir),
	}
	for _, v := range dirs {
		if err := touchDir(v); err != nil {
			return err
		}
	}
	return nil
}

func touchDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return CreateDirError(dir, err)
	}

	return nil
}

// EnsureConfigFile writes a documented config.yaml with default values,
// unless the file already exists.
func EnsureConfigFile(homeDir string) error {
	configPath := config.ConfigFilePath(homeDir)

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	bs, err := ioconfig.Generate(config.New())
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, bs, 0644); err != nil {
		return CopyFileError(configPath, err)
	}

	return nil
}

// ClearDir removes all entries of a directory and keeps the directory.
func ClearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return touchDir(dir)
	}
	if err != nil {
		return ReadFileError(dir, err)
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if err = os.RemoveAll(path); err != nil {
			return RemoveFileError(path, err)
		}
	}
	return nil
}
