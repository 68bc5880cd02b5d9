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

package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type testParent struct {
	bun.BaseModel `bun:"table:parents"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
}

type testChild struct {
	bun.BaseModel `bun:"table:children"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Name     string `bun:"name,notnull"`
	ParentID int64  `bun:"parent_id,notnull"`
}

func (*testChild) ForeignKeys() []ForeignKeyConstraint {
	return []ForeignKeyConstraint{{
		Table:           "children",
		Column:          "parent_id",
		ReferenceTable:  "parents",
		ReferenceColumn: "id",
		OnDelete:        "CASCADE",
	}}
}

// testRegistry registers the child first to prove priority, not insertion
// order, decides creation order.
func testRegistry() ModelRegistry {
	registry := NewModelRegistry()
	registry.Register(NewModelAdapter((*testChild)(nil), 20))
	registry.Register(NewModelAdapter((*testParent)(nil), 10))
	return registry
}

// memoryConfig returns a single-connection in-memory sqlite config; one
// connection keeps every query on the same database.
func memoryConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	c := &cfg.ConnectionConfig
	c.DBName = ":memory:"
	c.MaxOpenConns = 1
	c.MaxIdleConns = 1
	c.ConnMaxLifetime = 0
	c.ConnMaxIdleTime = 0
	c.HealthCheckInterval = 0
	c.SlowQueryTime = 0
	c.ConnectTimeout = 5 * time.Second
	cfg.DataMigrateConfig.ForeignKeyFile = ""
	cfg.DataInitConfig.Filepath = t.TempDir()
	return cfg
}

func connectMemory(t *testing.T, cfg *Config) AbstractDatabaseManager {
	t.Helper()
	manager := NewDatabaseManager(cfg, testRegistry())
	require.NoError(t, manager.Connect(context.Background()))
	t.Cleanup(func() { _ = manager.Disconnect() })
	return manager
}
