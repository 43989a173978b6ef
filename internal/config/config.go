package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Hub       HubConfig       `yaml:"hub"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type AnalyticsConfig struct {
	MaxEvents      int           `yaml:"max_events"`
	RecentWindow   time.Duration `yaml:"recent_window"`
	AlertThreshold int           `yaml:"alert_threshold"`
	AlertWindow    time.Duration `yaml:"alert_window"`
}

type HubConfig struct {
	ReplayCount       int           `yaml:"replay_count"`
	ConnectRetryDelay time.Duration `yaml:"connect_retry_delay"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 3000,
			Host: "0.0.0.0",
		},
		Analytics: AnalyticsConfig{
			MaxEvents:      1000,
			RecentWindow:   10 * time.Minute,
			AlertThreshold: 10,
			AlertWindow:    60 * time.Second,
		},
		Hub: HubConfig{
			ReplayCount:       50,
			ConnectRetryDelay: 100 * time.Millisecond,
		},
	}
}

// Load reads the YAML config at path, filling in defaults for any omitted
// fields. A missing file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
