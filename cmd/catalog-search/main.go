// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the catalog-search CLI.
// It enumerates a portal's content catalog and filters it by field
// criteria; see the search, types, and fields subcommands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/catalog-search/internal/logger"
	"github.com/pdiddy/catalog-search/internal/secrets"
	"github.com/pdiddy/catalog-search/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from the secrets directory at startup.
var loadedSecrets secrets.Secrets

// log is the process logger, built once flags and config are parsed.
var log = zap.NewNop()

// rootCmd is the base command for the catalog-search CLI.
var rootCmd = &cobra.Command{
	Use:   "catalog-search",
	Short: "Enumerate and search a portal content catalog",
	Long: `catalog-search retrieves every content item of the selected types from a
portal whose search API caps each query at 500 results, falling back to
per-user and per-user-per-type queries where a query is truncated. The
snapshot is then filtered by field criteria using exact, partial, or fuzzy
matching.

Credentials are not negotiated here: supply a portal token with --token,
the CATALOG_SEARCH_PORTAL_TOKEN variable, or a .secrets/portal-token file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logger.NewLogger(viper.GetString("logging.env"), viper.GetString("logging.level"))
		if err != nil {
			return err
		}
		log = l

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, log)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			log.Debug("loaded secrets", zap.String("dir", dir), zap.Int("keys", len(s)))
		}

		cmd.SetContext(logger.ContextWithLogger(cmd.Context(), log))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./catalog-search.yaml or ~/.config/catalog-search/config.yaml)")
	pf.String("secrets-dir", ".secrets", "directory of credential key files")
	pf.String("portal-url", "", "portal base URL (e.g. https://geo.example.org/portal)")
	pf.String("token", "", "portal access token")
	pf.String("log-level", "", "log level: debug, info, warn, error")

	mustBind(pf, "portal.url", "portal-url")
	mustBind(pf, "portal.token", "token")
	mustBind(pf, "logging.level", "log-level")

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("portal.timeout", types.DefaultTimeout)
	v.SetDefault("portal.user_agent", types.DefaultUserAgent)
	v.SetDefault("portal.username", "")
	v.SetDefault("portal.rate_limit_retries", 0)
	v.SetDefault("match.mode", types.DefaultMatchMode)
	v.SetDefault("match.fuzzy_threshold", types.DefaultFuzzyThreshold)
	v.SetDefault("logging.env", types.DefaultLogEnv)
	v.SetDefault("logging.level", types.DefaultLogLevel)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("catalog-search")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "catalog-search"))
		}
	}

	viper.SetEnvPrefix("CATALOG_SEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the effective configuration from viper (flags,
// environment, config file) with secrets as fallbacks.
func loadConfig() (types.Config, error) {
	return configFrom(viper.GetViper(), loadedSecrets)
}

func configFrom(v *viper.Viper, s secrets.Secrets) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}

	cfg.Portal.URL = s.Or(secrets.PortalURL, cfg.Portal.URL)
	cfg.Portal.Token = s.Or(secrets.PortalToken, cfg.Portal.Token)
	cfg.Portal.Username = s.Or(secrets.PortalUsername, cfg.Portal.Username)

	// A threshold of 0 is a valid request once viper has a value for it.
	threshold := cfg.Match.FuzzyThreshold
	cfg.ApplyDefaults()
	if v.IsSet("match.fuzzy_threshold") {
		cfg.Match.FuzzyThreshold = threshold
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// mustBind binds a flag to a viper key; a missing flag is a programming error.
func mustBind(fs *pflag.FlagSet, key, flag string) {
	if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
		panic(err)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
