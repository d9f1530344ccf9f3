package config

import (
	_ "embed"
	"os"
	"path/filepath"
)

const appName = "desktop-thingies"

//go:embed default.yaml
var defaultYAML []byte

var configNames = []string{"config.yaml", "config.yml", "config.tengo"}

// Default returns the built-in configuration.
func Default() (Spec, error) {
	return Parse(defaultYAML)
}

// DefaultPath finds the first config file under $XDG_CONFIG_HOME, falling
// back to ~/.config.
func DefaultPath() (string, bool) {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, appName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", appName))
	}
	for _, dir := range dirs {
		for _, name := range configNames {
			p := filepath.Join(dir, name)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p, true
			}
		}
	}
	return "", false
}

// Resolve loads the config at path, or the discovered default file when path
// is empty. It returns the path it loaded, which is empty when the built-in
// configuration was used.
func Resolve(path string) (Spec, string, error) {
	if path == "" {
		found, ok := DefaultPath()
		if !ok {
			spec, err := Default()
			return spec, "", err
		}
		path = found
	}
	spec, err := Load(path)
	if err != nil {
		return Spec{}, path, err
	}
	return spec, path, nil
}
