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
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blnkfinance/sieve/config"
	"github.com/blnkfinance/sieve/database"
	"github.com/blnkfinance/sieve/model"
	"github.com/blnkfinance/sieve/profile"
)

// Sieve represents the CLI application, encapsulating the root Cobra command.
type Sieve struct {
	cmd *cobra.Command
}

// sieveInstance holds what every command needs once the configuration is loaded.
type sieveInstance struct {
	cnf *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error using Logrus.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration before any command runs.
func preRun(app *sieveInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(*configFile); err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}
		app.cnf = cnf
		return nil
	}
}

// lazySource connects to the configured database on the first distinct-value
// lookup, so commands that never render filter choices work offline.
type lazySource struct {
	cnf *config.Configuration
}

func (l lazySource) Distinct(ctx context.Context, res *model.Resource, column string) ([]string, error) {
	if err := l.cnf.RequireDataSource(); err != nil {
		return nil, err
	}
	db, err := database.GetDBConnection(l.cnf)
	if err != nil {
		return nil, err
	}
	return db.Distinct(ctx, res, column)
}

// loadCatalog reads the configured profile file.
func (app *sieveInstance) loadCatalog(opts profile.Options) (*profile.Catalog, error) {
	opts.Namespace = app.cnf.Query.Namespace
	if opts.Source == nil {
		opts.Source = lazySource{cnf: app.cnf}
	}
	return profile.Load(app.cnf.Query.ProfileFile, opts)
}

// lookup loads the catalog and returns the named resource.
func (app *sieveInstance) lookup(name string) (*profile.Entry, error) {
	catalog, err := app.loadCatalog(profile.Options{})
	if err != nil {
		return nil, err
	}
	entry, ok := catalog.Get(name)
	if !ok {
		return nil, fmt.Errorf("resource %q is not declared in %s", name, app.cnf.Query.ProfileFile)
	}
	return entry, nil
}

// NewCLI creates the command-line interface and its subcommands.
func NewCLI() *Sieve {
	var configFile string
	app := &sieveInstance{}

	var rootCmd = &cobra.Command{
		Use:           "sieve",
		Short:         "Declarative scopes, filters, sorters and search for resource listings",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run:           func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./sieve.json", "Configuration file for sieve")
	rootCmd.PersistentPreRunE = preRun(app, &configFile)

	rootCmd.AddCommand(serverCommands(app))
	rootCmd.AddCommand(compileCommands(app))
	rootCmd.AddCommand(linkCommands(app))
	rootCmd.AddCommand(configCommands(app))

	return &Sieve{cmd: rootCmd}
}

// executeCLI runs the root command, handling any errors that occur during execution.
func (s Sieve) executeCLI() {
	if err := s.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
