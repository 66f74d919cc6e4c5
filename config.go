package sockecho

import (
	"fmt"
	"os"

	"github.com/funglee2k22/sockecho-go/echolib/types"
	"github.com/goccy/go-yaml"
	log "github.com/rs/zerolog"
)

// Config is the on-disk configuration of the sockecho binary.
type Config struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`
}

func DefaultConfig() Config {
	return Config{
		Host:     types.DefaultHost,
		Port:     types.DefaultPort,
		LogLevel: log.InfoLevel.String(),
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig. Keys missing from
// the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.ServerConfig().Validate(); err != nil {
		return err
	}
	if c.LogLevel != "" {
		if _, err := log.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
		}
	}
	return nil
}

func (c Config) ServerConfig() types.ServerConfig {
	return types.ServerConfig{Host: c.Host, Port: c.Port}
}
