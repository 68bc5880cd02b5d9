/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/tomoncle/bakery/database"
	"github.com/tomoncle/bakery/utils"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

// Config is the application configuration read from YAML.
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Log      LogConfig       `yaml:"log"`
	Database database.Config `yaml:"database"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Mode            string        `yaml:"mode"` // gin mode: debug, release, test
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	EnableMetrics   bool          `yaml:"enable_metrics"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in configuration: sqlite "app.db", port 5555.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            5555,
			Mode:            "release",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			EnableMetrics:   true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Database: *database.DefaultConfig(),
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error; the defaults are used.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies PORT, APP_PORT, GIN_MODE, ENABLE_METRICS, LOG_LEVEL,
// CONSOLE_LOG_FORMAT and APP_ENV. Database DB_* variables are applied by the database factory.
func (c *Config) applyEnv() {
	c.Server.Port = utils.EnvDefaultInt("PORT", c.Server.Port)
	c.Server.Port = utils.EnvDefaultInt("APP_PORT", c.Server.Port)
	c.Server.Mode = utils.EnvDefaultString("GIN_MODE", c.Server.Mode)
	c.Server.EnableMetrics = utils.EnvDefaultBool("ENABLE_METRICS", c.Server.EnableMetrics)
	c.Log.Level = utils.EnvDefaultString("LOG_LEVEL", c.Log.Level)
	c.Log.Format = utils.EnvDefaultString("CONSOLE_LOG_FORMAT", c.Log.Format)
	c.Database.DataInitConfig.Environment = utils.EnvDefaultString("APP_ENV", c.Database.DataInitConfig.Environment)
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server mode: %q", c.Server.Mode)
	}
	if c.Database.ConnectionConfig.Type == "" {
		return fmt.Errorf("database type cannot be empty")
	}
	return nil
}

// ConfigLoader exposes the database section to the database package.
func (c *Config) ConfigLoader() *database.Config {
	return &c.Database
}

var _ database.AbstractDatabaseConfigProvider = (*Config)(nil)
