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
	"fmt"
)

// Open creates a factory for cfg, connects, and applies the startup
// migration and seeding switches. The caller owns the returned factory and
// must Close it.
func Open(ctx context.Context, cfg *Config, registry ModelRegistry) (*BaseDatabaseFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	factory := NewDatabaseFactory(GetLogger())
	if _, err := factory.CreateFromConfig(cfg, registry); err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}

	err := factory.InitializeDatabase(ctx,
		cfg.DataMigrateConfig.EnableMigrateOnStartup,
		cfg.DataInitConfig.AutoInitOnStartup,
	)
	if err != nil {
		_ = factory.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return factory, nil
}

// Migrate connects and runs pending migrations regardless of the startup
// switch, then closes the connection.
func Migrate(ctx context.Context, cfg *Config, registry ModelRegistry) ([]Migration, error) {
	return withConnection(ctx, cfg, registry, func(ctx context.Context, factory *BaseDatabaseFactory) ([]Migration, error) {
		manager := factory.GetManager()
		if err := manager.RunMigrations(ctx); err != nil {
			return nil, err
		}
		mm := NewMigrationManager(manager.GetDB(), factory.logger, cfg, registry)
		return mm.GetAppliedMigrations(ctx)
	})
}

// Seed connects and executes the configured SQL seed files, then closes
// the connection.
func Seed(ctx context.Context, cfg *Config, registry ModelRegistry) error {
	_, err := withConnection(ctx, cfg, registry, func(ctx context.Context, factory *BaseDatabaseFactory) ([]Migration, error) {
		return nil, factory.GetManager().InitData(ctx)
	})
	return err
}

func withConnection(ctx context.Context, cfg *Config, registry ModelRegistry,
	fn func(context.Context, *BaseDatabaseFactory) ([]Migration, error)) ([]Migration, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	factory := NewDatabaseFactory(GetLogger())
	if _, err := factory.CreateFromConfig(cfg, registry); err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() { _ = factory.Close() }()
	if err := factory.InitializeDatabase(ctx, false, false); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return fn(ctx, factory)
}
