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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tomoncle/bakery/api"
	"github.com/tomoncle/bakery/config"
	"github.com/tomoncle/bakery/database"
	"github.com/tomoncle/bakery/model"
	"github.com/tomoncle/bakery/utils"
)

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "bakery",
		Short:        "Bakery GET-POST-PATCH-DELETE API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the YAML config file")

	load := func(cmd *cobra.Command) (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		utils.ConfigureConsoleOutput(cmd.ErrOrStderr())
		utils.ConfigureConsoleLogFormat(cfg.Log.Format)
		utils.ConfigureLogLevel(cfg.Log.Level)
		return cfg, nil
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := load(cmd)
				if err != nil {
					return err
				}
				return serve(cmd.Context(), cfg)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending schema migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := load(cmd)
				if err != nil {
					return err
				}
				applied, err := database.Migrate(cmd.Context(), &cfg.Database, nil)
				if err != nil {
					return err
				}
				for _, m := range applied {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %-22s %s\n", m.Version, m.Name, m.AppliedAt.Format("2006-01-02 15:04:05"))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Execute the SQL seed files for the configured environment",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := load(cmd)
				if err != nil {
					return err
				}
				return database.Seed(cmd.Context(), &cfg.Database, nil)
			},
		},
		&cobra.Command{
			Use:   "fk-export <path>",
			Short: "Write the effective foreign key constraints to a YAML file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := load(cmd)
				if err != nil {
					return err
				}
				fkm := database.NewConfigurableForeignKeyManager(database.GetLogger(), model.Registry(),
					cfg.Database.DataMigrateConfig.ForeignKeyFile)
				if errs := fkm.ValidateConstraints(); len(errs) > 0 {
					return fmt.Errorf("invalid foreign key constraints: %w", errors.Join(errs...))
				}
				if err := fkm.ExportToConfig(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d foreign keys to %s\n", len(fkm.ListAllConstraints()), args[0])
				return nil
			},
		},
	)
	return root
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := utils.NewLogger("SERVER")
	gin.SetMode(cfg.Server.Mode)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	factory, err := database.Open(ctx, &cfg.Database, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := factory.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close database")
		}
	}()

	deps := api.Dependencies{
		DB:     factory,
		Health: factory,
	}
	if cfg.Server.EnableMetrics {
		deps.Metrics = api.NewMetrics(factory)
	}

	srv := api.NewServer(api.NewRouter(deps), api.ServerOptions{
		Addr:            cfg.Server.Addr(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	errCh, err := srv.Start()
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr(), err)
	}

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal, shutting down")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	if err := srv.Stop(context.Background()); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
