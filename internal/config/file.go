package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/quocvuong92/monaca-cli/internal/constants"
)

// ConfigFileName is the name of the config file
const ConfigFileName = "config.yaml"

// FileConfig represents the configuration file structure
type FileConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Proxy    string `yaml:"proxy,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
	NoColor  bool   `yaml:"no_color,omitempty"`
	MaxChain int    `yaml:"max_chain,omitempty"`
}

// GetConfigPaths returns the paths to check for config files (in order of priority)
func GetConfigPaths() []string {
	var paths []string

	// 1. Project directory
	paths = append(paths, filepath.Join(".", constants.ProjectInfoDir, ConfigFileName))

	// 2. User config directory
	if p, err := UserConfigPath(); err == nil {
		paths = append(paths, p)
	}

	// 3. Home directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(homeDir, ".config", constants.AppName, ConfigFileName)
		if len(paths) == 0 || paths[len(paths)-1] != p {
			paths = append(paths, p)
		}
	}

	return paths
}

// UserConfigPath is where "proxy set" and "proxy rm" persist their changes.
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, herr := os.UserHomeDir()
		if herr != nil {
			return "", fmt.Errorf("could not determine config directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, constants.AppName, ConfigFileName), nil
}

// LoadConfigFile loads the first config file found. It returns an empty
// config and an empty path when none exists.
func LoadConfigFile() (*FileConfig, string, error) {
	for _, path := range GetConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			cfg, err := loadConfigFromPath(path)
			return cfg, path, err
		}
	}

	return &FileConfig{}, "", nil
}

func loadConfigFromPath(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// ApplyFileConfig applies file configuration to the main Config
// File config has lower priority than environment variables and CLI flags
func (c *Config) ApplyFileConfig(fc *FileConfig) {
	if fc == nil {
		return
	}

	if c.Endpoint == "" && fc.Endpoint != "" {
		c.Endpoint = fc.Endpoint
	}
	if c.Proxy == "" && fc.Proxy != "" {
		c.Proxy = fc.Proxy
	}
	if c.LogLevel == "" && fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.NoColor {
		c.NoColor = true
	}
	if c.MaxChain == 0 && fc.MaxChain > 0 {
		c.MaxChain = fc.MaxChain
	}
}

// SaveProxy stores the proxy URL in the user config file, keeping other keys.
func SaveProxy(proxy string) (string, error) {
	if err := ValidateProxy(proxy); err != nil {
		return "", err
	}
	return updateUserConfig(func(fc *FileConfig) { fc.Proxy = proxy })
}

// RemoveProxy clears the proxy from the user config file.
func RemoveProxy() (string, error) {
	return updateUserConfig(func(fc *FileConfig) { fc.Proxy = "" })
}

func updateUserConfig(mutate func(*FileConfig)) (string, error) {
	path, err := UserConfigPath()
	if err != nil {
		return "", err
	}

	fc := &FileConfig{}
	if _, err := os.Stat(path); err == nil {
		loaded, err := loadConfigFromPath(path)
		if err != nil {
			return "", err
		}
		fc = loaded
	}

	mutate(fc)

	data, err := yaml.Marshal(fc)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}
