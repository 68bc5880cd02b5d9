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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 5555, cfg.Server.Port)
	assert.Equal(t, ":5555", cfg.Server.Addr())
	assert.Equal(t, "sqlite", cfg.Database.ConnectionConfig.Type)
	assert.Equal(t, "app", cfg.Database.ConnectionConfig.DBName)
	assert.True(t, cfg.Database.DataMigrateConfig.EnableMigrateOnStartup)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 8080
  mode: debug
  read_timeout: 3s
log:
  level: debug
  format: json
database:
  connection_config:
    type: postgres
    host: db
    port: 5432
    dbname: bakery
    slow_query_time: 500ms
  data_init_config:
    environment: test
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "postgres", cfg.Database.ConnectionConfig.Type)
	assert.Equal(t, 500*time.Millisecond, cfg.Database.ConnectionConfig.SlowQueryTime)
	assert.Equal(t, "test", cfg.Database.DataInitConfig.Environment)
	assert.Same(t, &cfg.Database, cfg.ConfigLoader())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "6000")
	t.Setenv("GIN_MODE", "test")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("APP_ENV", "staging")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.Server.Port)
	assert.Equal(t, "test", cfg.Server.Mode)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "staging", cfg.Database.DataInitConfig.Environment)

	t.Setenv("APP_PORT", "7000")
	cfg, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoadEnableMetricsFromEnv(t *testing.T) {
	path := writeConfig(t, "server:\n  enable_metrics: true\n")

	t.Setenv("ENABLE_METRICS", "false")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Server.EnableMetrics)

	t.Setenv("ENABLE_METRICS", "not-a-bool")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Server.EnableMetrics, "unparsable values keep the file setting")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, "server:\n  port: 70000\n"))
	assert.ErrorContains(t, err, "invalid server port")

	_, err = Load(writeConfig(t, "server:\n  mode: fast\n"))
	assert.ErrorContains(t, err, "invalid server mode")

	_, err = Load(writeConfig(t, "server: [\n"))
	assert.ErrorContains(t, err, "failed to parse config file")
}
