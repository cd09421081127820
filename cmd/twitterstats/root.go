package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Kudusch/twitter-user-stats/pkg/auth"
	"github.com/Kudusch/twitter-user-stats/pkg/config"
	"github.com/Kudusch/twitter-user-stats/pkg/logger"
	"github.com/Kudusch/twitter-user-stats/pkg/metrics"
	"github.com/Kudusch/twitter-user-stats/pkg/scraper"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile  string
	logLevel    string
	metricsAddr string
	dataDir     string
	bearerToken string
	accountName string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "twitterstats",
	Short: "Archive tweets and account statistics from the Twitter API v2",
	Long: `twitterstats retrieves tweets and account metadata through the
Twitter API v2 and flattens them into wide CSV tables.

A bearer token with academic research access is required for the
full-archive search endpoints. Provide it through:
  - Stored credentials (use 'twitterstats auth login')
  - The TWITTERSTATS_BEARER_TOKEN environment variable
  - A configuration file or the --bearer-token flag`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .twitterstats.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "address for the Prometheus /metrics listener")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for CSV output")
	rootCmd.PersistentFlags().StringVar(&bearerToken, "bearer-token", "", "Twitter API v2 bearer token")
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "", "use a specific stored account")

	rootCmd.SetVersionTemplate(`twitterstats {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// setup loads the configuration and initializes logging and metrics
func setup() (*config.Config, error) {
	flags := map[string]interface{}{
		"bearer-token": bearerToken,
		"data-dir":     dataDir,
		"log-level":    logLevel,
		"metrics-addr": metricsAddr,
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}

	if cfg.Twitter.BearerToken == "" {
		if account := storedAccount(); account != nil {
			cfg.Twitter.BearerToken = account.BearerToken
		}
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, err
	}
	metrics.StartServer(cfg.Metrics.Addr)

	return cfg, nil
}

// storedAccount resolves the bearer token from the credential stores.
// Any failure falls through to the token-missing error in newScraper.
func storedAccount() *auth.Account {
	manager, err := auth.NewManager()
	if err != nil {
		return nil
	}

	var account *auth.Account
	if accountName != "" {
		account, err = manager.Retrieve(accountName)
	} else {
		account, err = manager.RetrieveDefault()
	}
	if err != nil {
		return nil
	}
	return account
}

// newScraper builds the configured scraper for API-facing commands
func newScraper() (*scraper.Scraper, *config.Config, error) {
	cfg, err := setup()
	if err != nil {
		return nil, nil, err
	}

	if cfg.Twitter.BearerToken == "" {
		return nil, nil, fmt.Errorf("no bearer token configured: run 'twitterstats auth login' or set TWITTERSTATS_BEARER_TOKEN")
	}

	return scraper.New(cfg, logger.GetLogger()), cfg, nil
}

// commandContext returns a context cancelled by SIGINT so a long archive
// run can stop cleanly and leave its checkpoint behind.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
