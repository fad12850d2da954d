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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wacul/ptr"

	"github.com/blnkfinance/sieve"
	"github.com/blnkfinance/sieve/database"
	"github.com/blnkfinance/sieve/model"
	"github.com/blnkfinance/sieve/params"
)

// stateFromArgs extracts the listing state of the optional query argument.
func stateFromArgs(p *sieve.Profile, args []string) (sieve.State, error) {
	raw := ""
	if len(args) > 1 {
		raw = args[1]
	}
	m, err := params.ParseQuery(raw)
	if err != nil {
		return sieve.State{}, fmt.Errorf("invalid query %q: %w", raw, err)
	}
	return p.Extract(m), nil
}

/*
compileCommands returns the command printing the state extracted from a query
string and the SQL it compiles to in the configured dialect.
*/
func compileCommands(app *sieveInstance) *cobra.Command {
	var explain bool

	cmd := &cobra.Command{
		Use:   "compile <resource> [query]",
		Short: "print the state and SQL compiled from a listing query string",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := app.lookup(args[0])
			if err != nil {
				return err
			}
			state, err := stateFromArgs(entry.Profile, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			data, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "state: %s\n", data)

			if explain {
				recorded := entry.Profile.Apply(model.NewRecorder(), state)
				fmt.Fprintln(out, recorded.(model.Recorder).String())
				return nil
			}

			dialect, err := database.ParseDialect(app.cnf.DataSource.Driver)
			if err != nil {
				return err
			}
			q := entry.Profile.Apply(database.NewQuery(entry.Resource, dialect), state)
			query, queryArgs, err := q.(database.Query).ToSQL()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, query)
			fmt.Fprintf(out, "args: %v\n", queryArgs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "print the recorded steps instead of SQL")
	return cmd
}

/*
linkCommands returns the command printing the canonical URL of the state
reached from a query string by a sort, scope, search or filter change.
*/
func linkCommands(app *sieveInstance) *cobra.Command {
	var (
		sortField string
		reset     bool
		all       bool
		scope     string
		search    string
		clearKeys []string
		filters   map[string]string
		base      string
	)

	cmd := &cobra.Command{
		Use:   "link <resource> [query]",
		Short: "print the canonical URL of the next listing state",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := app.lookup(args[0])
			if err != nil {
				return err
			}
			state, err := stateFromArgs(entry.Profile, args)
			if err != nil {
				return err
			}

			delta := sieve.Delta{Sort: sortField, Reset: reset, Clear: clearKeys}
			switch {
			case all:
				delta.Scope = ptr.String("")
			case cmd.Flags().Changed("scope"):
				delta.Scope = ptr.String(scope)
			}
			if cmd.Flags().Changed("search") {
				delta.Search = ptr.String(search)
			}
			if len(filters) > 0 {
				delta.Filters = make(map[string]interface{}, len(filters))
				for key, value := range filters {
					delta.Filters[key] = value
				}
			}

			target := base
			if target == "" {
				target = "/resources/" + strings.ToLower(args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), entry.Profile.URL(target, state, delta))
			return nil
		},
	}
	cmd.Flags().StringVar(&sortField, "sort", "", "sorter to toggle")
	cmd.Flags().BoolVar(&reset, "reset", false, "remove the --sort sorter instead of toggling it")
	cmd.Flags().BoolVar(&all, "all", false, "select all records, ignoring the default scope")
	cmd.Flags().StringVar(&scope, "scope", "", "scope to select")
	cmd.Flags().StringVar(&search, "search", "", "search text to set")
	cmd.Flags().StringSliceVar(&clearKeys, "clear", nil, "filters to clear")
	cmd.Flags().StringToStringVar(&filters, "filter", nil, "filter values to set, as key=value")
	cmd.Flags().StringVar(&base, "base", "", "link target, defaults to /resources/<resource>")
	return cmd
}
