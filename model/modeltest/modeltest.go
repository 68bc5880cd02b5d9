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

// Package modeltest opens throwaway in-memory databases with the bakery
// schema for tests.
package modeltest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomoncle/bakery/database"
	"github.com/tomoncle/bakery/model"
	"github.com/uptrace/bun"
)

// Config returns a migrated-on-open, single-connection in-memory sqlite
// configuration.
func Config(tb testing.TB) *database.Config {
	tb.Helper()
	cfg := database.DefaultConfig()
	c := &cfg.ConnectionConfig
	c.Type = "sqlite"
	c.DBName = ":memory:"
	c.MaxOpenConns = 1
	c.MaxIdleConns = 1
	c.ConnMaxLifetime = 0
	c.ConnMaxIdleTime = 0
	c.HealthCheckInterval = 0
	c.SlowQueryTime = 0
	cfg.DataMigrateConfig.EnableMigrateOnStartup = true
	cfg.DataMigrateConfig.ForeignKeyFile = ""
	cfg.DataInitConfig.Filepath = tb.TempDir()
	return cfg
}

// Open returns a factory over a fresh migrated database, closed when the
// test ends.
func Open(tb testing.TB) *database.BaseDatabaseFactory {
	tb.Helper()
	return OpenConfig(tb, Config(tb))
}

// OpenFile is Open over a sqlite file in a temp dir, for tests that need
// the data to outlive a single connection.
func OpenFile(tb testing.TB) *database.BaseDatabaseFactory {
	tb.Helper()
	cfg := Config(tb)
	cfg.ConnectionConfig.DBName = filepath.Join(tb.TempDir(), "bakery")
	return OpenConfig(tb, cfg)
}

// OpenConfig opens cfg with the bakery models and closes it when the test
// ends.
func OpenConfig(tb testing.TB, cfg *database.Config) *database.BaseDatabaseFactory {
	tb.Helper()
	factory, err := database.Open(context.Background(), cfg, model.Registry())
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = factory.Close() })
	return factory
}

// NewDB returns a fresh migrated database.
func NewDB(tb testing.TB) *bun.DB {
	tb.Helper()
	return Open(tb).GetDB()
}

// InsertBakery stores a bakery named name.
func InsertBakery(tb testing.TB, db *bun.DB, name string) *model.Bakery {
	tb.Helper()
	bakery := &model.Bakery{Name: name}
	_, err := db.NewInsert().Model(bakery).Returning("*").Exec(context.Background())
	require.NoError(tb, err)
	return bakery
}

// InsertBakedGood stores one good for bakeryID.
func InsertBakedGood(tb testing.TB, db *bun.DB, bakeryID int64, name string, price float64) *model.BakedGood {
	tb.Helper()
	good := &model.BakedGood{Name: name, Price: price, BakeryID: bakeryID}
	_, err := db.NewInsert().Model(good).Returning("*").Exec(context.Background())
	require.NoError(tb, err)
	return good
}
