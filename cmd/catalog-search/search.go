// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/catalog-search/internal/catalog"
	"github.com/pdiddy/catalog-search/internal/match"
	"github.com/pdiddy/catalog-search/internal/portal"
	"github.com/pdiddy/catalog-search/internal/report"
	"github.com/pdiddy/catalog-search/internal/secrets"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Fetch the catalog and list items matching field criteria",
	Long: `Search enumerates every catalog item of the selected types and prints the
items that satisfy at least one --field criterion. Without --field the whole
snapshot is printed.

Match modes:
  exact    case-sensitive equality
  partial  case-insensitive substring
  fuzzy    case-insensitive similarity ratio >= --fuzzy-threshold

Examples:
  catalog-search search --field title=parcels --mode partial
  catalog-search search --filter-mode include --types "Web Map,Dashboard" --field owner=gis_admin
  catalog-search search --field title="City Engine" --mode fuzzy --fuzzy-threshold 0.85 --json`,
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	addSearchFlags(f)

	if err := viper.BindPFlag("match.mode", f.Lookup("mode")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("match.fuzzy_threshold", f.Lookup("fuzzy-threshold")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(searchCmd)
}

func addSearchFlags(f *pflag.FlagSet) {
	f.String("filter-mode", "all", "type filter mode: all, include, or exclude")
	f.StringSlice("types", nil, "item types for include/exclude (comma-separated)")
	f.StringArray("field", nil, "criterion as field=value (repeatable; criteria are OR-ed)")
	f.String("mode", "", "match mode: exact, partial, fuzzy (or 1, 2, 3)")
	f.Float64("fuzzy-threshold", 0, "minimum similarity ratio for fuzzy matching, 0-1 (default 0.80)")
	f.Bool("json", false, "output matches as JSON")
	f.String("output", "", "also write a YAML run report to this file")
	f.String("sqlite", "", "also append the run to this SQLite database")
	f.String("metrics-addr", "", "serve Prometheus fetch metrics on this address while running (e.g. :9090)")
}

// searchParams holds validated search inputs.
type searchParams struct {
	filterMode catalog.FilterMode
	types      []string
	criteria   match.Criteria
	mode       match.Mode
	threshold  float64
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := searchParamsFromFlags(cmd, cfg.Match.Mode, cfg.Match.FuzzyThreshold)
	if err != nil {
		return err
	}

	client, err := portal.New(cfg.Portal, nil)
	if err != nil {
		return err
	}

	var metrics *catalog.Metrics
	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		reg := prometheus.NewRegistry()
		metrics = catalog.NewMetrics(reg)
		stop := serveMetrics(ctx, addr, reg)
		defer stop()
	}

	log.Info("fetching catalog",
		zap.String("portal", cfg.Portal.URL),
		zap.String("user", cfg.Portal.Username),
		zap.Stringer("filter_mode", p.filterMode))
	fmt.Fprintln(os.Stderr, "Searching for items...")

	res, err := catalog.NewFetcher(client, metrics).Fetch(ctx, p.filterMode, p.types)
	if err != nil {
		return fetchError(err)
	}
	fmt.Fprintf(os.Stderr, "%d portal items downloaded (%d queries).\n", len(res.Items), res.Stats.Queries())
	report.FormatWarnings(os.Stderr, res.Warnings)

	matches := res.Items
	if len(p.criteria) > 0 {
		matches, err = match.Match(res.Items, p.criteria, p.mode, p.threshold)
		if err != nil {
			return err
		}
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		if err := report.FormatJSON(os.Stdout, matches); err != nil {
			return err
		}
	} else {
		report.FormatTable(os.Stdout, matches)
	}

	return writeRunRecords(ctx, cmd, report.Report{
		Portal:         cfg.Portal.URL,
		FilterMode:     p.filterMode.String(),
		FilterTypes:    p.types,
		Criteria:       p.criteria,
		MatchMode:      string(p.mode),
		FuzzyThreshold: fuzzyOnly(p.mode, p.threshold),
		Fetched:        len(res.Items),
		Stats:          res.Stats,
		Warnings:       res.Warnings,
		Matches:        matches,
		Timestamp:      time.Now(),
	})
}

// fetchError wraps a failed fetch, pointing at the credentials when the
// portal rejected them.
func fetchError(err error) error {
	var apiErr *portal.APIError
	if errors.As(err, &apiErr) && apiErr.IsAuth() {
		return fmt.Errorf("fetching catalog: %w (check --token or the %s secret)", err, secrets.PortalToken)
	}
	return fmt.Errorf("fetching catalog: %w", err)
}

// searchParamsFromFlags validates every search input before any portal
// request is made.
func searchParamsFromFlags(cmd *cobra.Command, modeName string, threshold float64) (searchParams, error) {
	var p searchParams

	rawMode, _ := cmd.Flags().GetString("filter-mode")
	fm, err := catalog.ParseFilterMode(rawMode)
	if err != nil {
		return p, err
	}
	p.filterMode = fm
	p.types, _ = cmd.Flags().GetStringSlice("types")
	if fm == catalog.FilterAll && len(p.types) > 0 {
		return p, fmt.Errorf("--types requires --filter-mode include or exclude")
	}
	for _, t := range p.types {
		if !catalog.IsKnownType(t) {
			fmt.Fprintf(os.Stderr, "warning: %q is not a known item type and is ignored\n", t)
		}
	}

	fields, _ := cmd.Flags().GetStringArray("field")
	p.criteria, err = parseCriteria(fields)
	if err != nil {
		return p, err
	}

	p.mode, err = match.ParseMode(modeName)
	if err != nil {
		return p, err
	}
	p.threshold = threshold
	if p.mode == match.Fuzzy && (math.IsNaN(threshold) || threshold < 0 || threshold > 1) {
		return p, fmt.Errorf("%w: fuzzy threshold must be within [0,1], got %v", match.ErrConfiguration, threshold)
	}
	return p, nil
}

// parseCriteria turns field=value pairs into match criteria.
func parseCriteria(pairs []string) (match.Criteria, error) {
	c := match.Criteria{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --field %q: want field=value", pair)
		}
		if prev, dup := c[name]; dup {
			return nil, fmt.Errorf("field %q given twice (%q and %q)", name, prev, value)
		}
		c[name] = value
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func fuzzyOnly(mode match.Mode, threshold float64) float64 {
	if mode != match.Fuzzy {
		return 0
	}
	return threshold
}

func writeRunRecords(ctx context.Context, cmd *cobra.Command, r report.Report) error {
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		if err := report.WriteYAML(path, r); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Report written to", path)
	}
	if path, _ := cmd.Flags().GetString("sqlite"); path != "" {
		runID, err := report.ExportSQLite(ctx, path, r)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Run %d appended to %s\n", runID, path)
	}
	return nil
}

// serveMetrics exposes reg on addr until the returned stop func is called.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
