/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/caddyserver/certmagic"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.elastic.co/apm/module/apmlogrus/v2"

	"github.com/blnkfinance/sieve/api"
	"github.com/blnkfinance/sieve/config"
	"github.com/blnkfinance/sieve/database"
	"github.com/blnkfinance/sieve/internal/cache"
	"github.com/blnkfinance/sieve/internal/traces"
	"github.com/blnkfinance/sieve/profile"
)

const certStoragePath = "./certmagic"

var apmHookOnce sync.Once

/*
serveTLS starts an HTTPS server with TLS enabled using CertMagic for automatic certificate management.
If no domain is specified, the server will default to running on localhost.
*/
func serveTLS(r *gin.Engine, conf config.ServerConfig) error {
	certmagic.DefaultACME.Agreed = true
	certmagic.DefaultACME.Email = conf.Email
	cfg := certmagic.NewDefault()
	cfg.Storage = &certmagic.FileStorage{Path: certStoragePath}

	domains := []string{conf.Domain}
	if conf.Domain == "" {
		logrus.Info("No domain specified, defaulting to localhost")
		domains = []string{"localhost"}
	}

	if err := cfg.ManageSync(context.Background(), domains); err != nil {
		return err
	}

	server := &http.Server{
		Addr:      ":" + conf.Port,
		Handler:   r,
		TLSConfig: cfg.TLSConfig(),
	}

	logrus.Infof("Starting HTTPS server on %s", conf.Port)
	if err := server.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTPS server: %w", err)
	}
	return nil
}

func startServer(router *gin.Engine, cfg config.ServerConfig) error {
	if cfg.SSL {
		return serveTLS(router, cfg)
	}
	logrus.Infof("Starting server on http://localhost:%s", cfg.Port)
	return router.Run(":" + cfg.Port)
}

func initializeTracing(ctx context.Context, cfg *config.Configuration) (func(context.Context) error, error) {
	if !cfg.EnableTelemetry {
		return func(context.Context) error { return nil }, nil
	}
	shutdown, err := traces.SetupOTelSDK(ctx, cfg.ProjectName)
	if err != nil {
		return nil, fmt.Errorf("error setting up OTel SDK: %w", err)
	}
	// error logs are reported to APM alongside the traces
	apmHookOnce.Do(func() {
		logrus.AddHook(&apmlogrus.Hook{})
	})
	return shutdown, nil
}

// initializeRouter connects the data source and choices cache, loads the
// catalog and builds the API router.
func initializeRouter(app *sieveInstance) (*gin.Engine, error) {
	if err := app.cnf.RequireDataSource(); err != nil {
		return nil, err
	}
	db, err := database.NewDataSource(app.cnf)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %w", err)
	}

	choices, err := cache.NewChoicesFromConfig(app.cnf)
	if err != nil {
		return nil, fmt.Errorf("error connecting choices cache: %w", err)
	}

	catalog, err := app.loadCatalog(profile.Options{Source: db, Cache: choices})
	if err != nil {
		return nil, err
	}
	logrus.WithField("resources", catalog.Names()).Info("profile catalog loaded")

	return api.NewAPI(catalog, db).Router(), nil
}

/*
serverCommands returns the Cobra command responsible for starting the sieve server.
*/
func serverCommands(app *sieveInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "start sieve server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			shutdown, err := initializeTracing(ctx, app.cnf)
			if err != nil {
				return err
			}
			defer func() {
				if err := shutdown(ctx); err != nil {
					logrus.Errorf("Error during shutdown: %v", err)
				}
			}()

			router, err := initializeRouter(app)
			if err != nil {
				return err
			}
			return startServer(router, app.cnf.Server)
		},
	}

	return cmd
}
