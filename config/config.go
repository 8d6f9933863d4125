// Package config loads the server configuration from config.yaml.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"

	"obesitylevel/logging"
)

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Model struct {
		BundlePath string `yaml:"bundle_path"`
		Watch      bool   `yaml:"watch"`
		CacheSize  int    `yaml:"cache_size"`
	} `yaml:"model"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log logging.Config `yaml:"log"`
}

// Load decodes path, applies defaults and then environment overrides.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	config.applyDefaults()
	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Http.Port == 0 {
		c.Http.Port = 8080
	}
	if c.Http.Timeout == 0 {
		c.Http.Timeout = 30 * time.Second
	}
	if len(c.Http.AllowedOrigins) == 0 {
		c.Http.AllowedOrigins = []string{"*"}
	}
	if c.Http.MaxBodyBytes == 0 {
		c.Http.MaxBodyBytes = 1 << 16
	}
	if c.Model.BundlePath == "" {
		c.Model.BundlePath = "models/obesity_bundle.json"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) applyEnv() error {
	if value, ok := os.LookupEnv("OBESITY_BUNDLE_PATH"); ok && value != "" {
		c.Model.BundlePath = value
	}
	if value, ok := os.LookupEnv("OBESITY_HTTP_PORT"); ok && value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("OBESITY_HTTP_PORT: %w", err)
		}
		c.Http.Port = port
	}
	if value, ok := os.LookupEnv("OBESITY_DB_PATH"); ok {
		c.Database.Path = value
	}
	return nil
}
