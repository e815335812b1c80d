// Package config loads application configuration from defaults, an optional
// YAML file, and DATAPROF_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	Server  Server  `mapstructure:"server"`
	Storage Storage `mapstructure:"storage"`
	Insight Insight `mapstructure:"insight"`
	Metrics Metrics `mapstructure:"metrics"`
	Sector  Sector  `mapstructure:"sector"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `mapstructure:"addr"`
}

// Storage selects the run report backend. An empty Kind disables
// persistence: runs are profiled and returned but not stored.
type Storage struct {
	Kind string `mapstructure:"kind"`
	DSN  string `mapstructure:"dsn"`
}

// Insight configures the chat collaborator. An empty APIKey disables it;
// insights then come from the local fallback list.
type Insight struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Metrics selects the metrics backend: "datadog" or empty for none.
type Metrics struct {
	Backend    string        `mapstructure:"backend"`
	JobName    string        `mapstructure:"job_name"`
	Tags       string        `mapstructure:"tags"`
	FlushEvery time.Duration `mapstructure:"flush_every"`
}

// Sector configures domain detection. KeywordsFile optionally replaces the
// built-in sector catalogue.
type Sector struct {
	KeywordsFile string `mapstructure:"keywords_file"`
}

// Load resolves configuration. path names an optional YAML file; when empty,
// only defaults and environment variables apply. Environment variables use
// the DATAPROF_ prefix with underscores for nesting, e.g.
// DATAPROF_STORAGE_KIND=sqlite.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("storage.kind", "")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("insight.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("insight.api_key", "")
	v.SetDefault("insight.model", "llama-3.1-8b-instant")
	v.SetDefault("insight.timeout", 30*time.Second)
	v.SetDefault("metrics.backend", "")
	v.SetDefault("metrics.job_name", "dataprof")
	v.SetDefault("metrics.tags", "")
	v.SetDefault("metrics.flush_every", time.Minute)
	v.SetDefault("sector.keywords_file", "")

	v.SetEnvPrefix("DATAPROF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}
