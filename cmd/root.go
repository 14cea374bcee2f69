// Package cmd implements the command-line interface for leaguecrawl.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/standingshq/leaguecrawl/cmd/crawl"
	cmdindex "github.com/standingshq/leaguecrawl/cmd/index"
	"github.com/standingshq/leaguecrawl/cmd/schedule"
	cmdstandings "github.com/standingshq/leaguecrawl/cmd/standings"
	"github.com/standingshq/leaguecrawl/internal/config"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "leaguecrawl",
		Short: "A league standings crawler",
		Long: `leaguecrawl extracts league standings from server-rendered pages,
falling back from embedded state to discovered API endpoints to a rendered
DOM, and persists the normalized records to Elasticsearch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Parse flags early so --config and --debug are visible to initConfig.
	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("leaguecrawl version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(crawl.Command())
	rootCmd.AddCommand(schedule.Command())
	rootCmd.AddCommand(cmdstandings.Command())
	rootCmd.AddCommand(cmdindex.Command())
}

// initConfig reads the config file and environment variables into Viper.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	// Environment variables from a .env file are optional.
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: .env file not found: %v\n", err)
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr,
			"Warning: config file not found: %v (using defaults and environment variables)\n", err)
	}

	return bindEnvVars()
}

func setDefaults() {
	viper.SetDefault("user_agent", config.DefaultUserAgent)
	viper.SetDefault("request_timeout", config.DefaultRequestTimeout)
	viper.SetDefault("max_retries", config.DefaultMaxRetries)
	viper.SetDefault("retry_delay", config.DefaultRetryDelay)
	viper.SetDefault("backoff_multiplier", config.DefaultBackoffMultiplier)
	viper.SetDefault("rate_limit_max", config.DefaultRateLimitMax)
	viper.SetDefault("rate_limit_window", config.DefaultRateLimitWindow)
	viper.SetDefault("render_timeout", config.DefaultRenderTimeout)
	viper.SetDefault("schedule", config.DefaultSchedule)
	viper.SetDefault("elasticsearch.addresses", []string{"http://localhost:9200"})
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.encoding", "console")
}

// bindEnvVars maps well-known environment variable names to config keys.
func bindEnvVars() error {
	bindings := map[string][]string{
		"base_url":                {"CRAWLER_BASE_URL"},
		"league_ids":              {"CRAWLER_LEAGUE_IDS"},
		"log.level":               {"LOG_LEVEL"},
		"log.encoding":            {"LOG_FORMAT"},
		"elasticsearch.addresses": {"ELASTICSEARCH_HOSTS", "ELASTICSEARCH_ADDRESSES"},
		"elasticsearch.username":  {"ELASTICSEARCH_USERNAME"},
		"elasticsearch.password":  {"ELASTIC_PASSWORD", "ELASTICSEARCH_PASSWORD"},
		"elasticsearch.api_key":   {"ELASTICSEARCH_API_KEY"},
	}

	for key, envs := range bindings {
		input := append([]string{key}, envs...)
		if err := viper.BindEnv(input...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", envs[0], err)
		}
	}

	if debug {
		viper.Set("log.level", "debug")
	}

	return nil
}
