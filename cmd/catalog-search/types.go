// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/catalog-search/internal/catalog"
	"github.com/pdiddy/catalog-search/internal/match"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the item types a search can be filtered by",
	Long: `Types prints the portal item type names known to catalog-search. With
--filter-mode and --types it prints the resolved type filter instead, which is
what search would query.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rawMode, _ := cmd.Flags().GetString("filter-mode")
		mode, err := catalog.ParseFilterMode(rawMode)
		if err != nil {
			return err
		}
		set, _ := cmd.Flags().GetStringSlice("types")

		f, err := catalog.NewTypeFilter(mode, set)
		if err != nil {
			return err
		}
		for _, t := range f.Types() {
			fmt.Fprintln(os.Stdout, t)
		}
		fmt.Fprintf(os.Stderr, "%d types\n", f.Len())
		return nil
	},
}

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the fields search criteria can target",
	Run: func(cmd *cobra.Command, args []string) {
		for _, f := range match.Fields() {
			fmt.Fprintln(os.Stdout, f)
		}
	},
}

func init() {
	typesCmd.Flags().String("filter-mode", "all", "type filter mode: all, include, or exclude")
	typesCmd.Flags().StringSlice("types", nil, "item types for include/exclude (comma-separated)")

	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(fieldsCmd)
}
