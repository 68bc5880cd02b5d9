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
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, ":memory:?"+sqliteForeignKeyParams, SQLiteDSN(":memory:"))
	assert.Equal(t, "app.db?"+sqliteForeignKeyParams, SQLiteDSN("app"))
	assert.Equal(t, "data/app.db?"+sqliteForeignKeyParams, SQLiteDSN("data/app.db"))
	assert.Equal(t, "file:app.db?"+sqliteForeignKeyParams, SQLiteDSN("file:app.db"))
	assert.Equal(t, "file:app.db?cache=shared&"+sqliteForeignKeyParams, SQLiteDSN("file:app.db?cache=shared"))
}

func TestConnectRejectsUnsupportedType(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.ConnectionConfig.Type = "oracle"
	manager := NewDatabaseManager(cfg, testRegistry())
	err := manager.Connect(context.Background())
	assert.ErrorContains(t, err, "unsupported database type")
	assert.Nil(t, manager.GetDB())
}

func TestManagerHealthAndStats(t *testing.T) {
	ctx := context.Background()
	manager := connectMemory(t, memoryConfig(t))

	require.NoError(t, manager.Ping(ctx))
	status := manager.HealthCheck(ctx)
	assert.True(t, status.Healthy)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, status.MaxOpenConns)
	assert.Equal(t, 1, manager.GetStats().MaxOpenConns)

	require.NoError(t, manager.Disconnect())
	assert.Error(t, manager.Ping(ctx))
	assert.False(t, manager.HealthCheck(ctx).Healthy)
	assert.Equal(t, &DBStats{}, manager.GetStats())
}

func TestFactoryAppliesEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_ENABLE_QUERY_LOG", "true")

	cfg := memoryConfig(t)
	factory := NewDatabaseFactory(nil)
	_, err := factory.CreateFromConfig(cfg, testRegistry())
	require.NoError(t, err)

	c := cfg.ConnectionConfig
	assert.Equal(t, "db.internal", c.Host)
	assert.Equal(t, 6543, c.Port)
	assert.Equal(t, 7, c.MaxOpenConns)
	assert.True(t, c.EnableQueryLog)
	assert.NotNil(t, factory.GetManager())
	assert.Nil(t, factory.GetDB(), "not connected yet")
}

func TestFactoryRejectsUnknownType(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.ConnectionConfig.Type = "mssql"
	_, err := NewDatabaseFactory(nil).CreateFromConfig(cfg, nil)
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestOpenMigratesOnStartup(t *testing.T) {
	ctx := context.Background()
	factory, err := Open(ctx, memoryConfig(t), testRegistry())
	require.NoError(t, err)
	defer factory.Close()

	_, err = factory.GetDB().NewInsert().Model(&testParent{Name: "p"}).Exec(ctx)
	require.NoError(t, err)
	assert.True(t, factory.GetHealthStatus(ctx).Healthy)
}

func TestQueryHookWritesStatements(t *testing.T) {
	ctx := context.Background()
	manager := connectMemory(t, memoryConfig(t))
	db := manager.GetDB()

	var buf bytes.Buffer
	db.AddQueryHook(NewQueryHook("BAKERY_TEST_SQL_LOG", &buf))

	var n int
	require.NoError(t, db.NewSelect().ColumnExpr("41 + 1").Scan(ctx, &n))
	assert.Equal(t, 42, n)
	assert.Contains(t, buf.String(), "[BUN]")
	assert.Contains(t, buf.String(), "41 + 1")

	buf.Reset()
	EnableBunSqlSilent(true)
	_, err := db.ExecContext(ctx, "SELECT 2")
	EnableBunSqlSilent(false)
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	t.Setenv("BAKERY_TEST_SQL_LOG", "0")
	_, err = db.ExecContext(ctx, "SELECT 3")
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestFactoryHandsOutPoolAfterReconnect(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig(t)
	cfg.ConnectionConfig.DBName = filepath.Join(t.TempDir(), "reconnect")
	factory, err := Open(ctx, cfg, testRegistry())
	require.NoError(t, err)
	defer factory.Close()

	var source DBProvider = factory
	before := source.GetDB()
	_, err = before.NewInsert().Model(&testParent{Name: "p"}).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, factory.GetManager().Reconnect(ctx))
	after := source.GetDB()
	require.NotNil(t, after)
	assert.NotSame(t, before, after)
	assert.Error(t, before.PingContext(ctx))

	n, err := after.NewSelect().Model((*testParent)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMigrateAndSeedFailWhenDatabaseUnreachable(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig(t)
	cfg.ConnectionConfig.DBName = filepath.Join(t.TempDir(), "missing", "dir", "app")

	_, err := Migrate(ctx, cfg, testRegistry())
	assert.ErrorContains(t, err, "failed to initialize database")
	assert.ErrorContains(t, Seed(ctx, cfg, testRegistry()), "failed to initialize database")
}
