package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// renameio has no Windows support; fall back to a plain write.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
