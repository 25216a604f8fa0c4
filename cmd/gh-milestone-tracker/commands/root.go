package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	"github.com/goblinsan/gh-milestone-tracker/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "gh-milestone-tracker"

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   appName,
		Short: "Track ecosystem project milestones stored in a GitHub repository",
		Long: `gh-milestone-tracker reads the projects data file kept in a GitHub
repository, queries its milestones, parses milestones.md documents and
assembles a changelog from the history of the data file. It can also run
as an MCP server over stdio.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			// Default action when no subcommand is specified
			cmd.Help()
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gh-milestone-tracker.yaml)")
	flags.String(config.KeyToken, "", "GitHub personal access token")
	flags.String(config.KeyOwner, "", "owner of the data repository")
	flags.String(config.KeyRepo, "", "name of the data repository")
	flags.String(config.KeyBranch, "", "branch holding the current data file")
	flags.String(config.KeyHistoryBranch, "", "branch whose history feeds the changelog")
	flags.String(config.KeyDataPath, "", "path of the projects data file in the repository")
	flags.Duration(config.KeyCacheTTL, 0, "how long fetched data is reused")
	flags.Duration(config.KeyChangelogTTL, 0, "how long an assembled changelog is reused")
	flags.String(config.KeyRedisAddr, "", "share the cache through redis at this address")
	flags.String(config.KeyLogLevel, "", "log level (debug, info, warn, error)")
	flags.String(config.KeyLogFormat, "", "log format (console or json)")
	flags.String(config.KeyWeekStart, "", "first day of the week for this-week queries")

	// Bind flags to viper
	for _, key := range []string{
		config.KeyToken, config.KeyOwner, config.KeyRepo, config.KeyBranch,
		config.KeyHistoryBranch, config.KeyDataPath, config.KeyCacheTTL,
		config.KeyChangelogTTL, config.KeyRedisAddr, config.KeyLogLevel,
		config.KeyLogFormat, config.KeyWeekStart,
	} {
		viper.BindPFlag(key, flags.Lookup(key))
	}
	config.SetDefaults(viper.GetViper())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		// Search config in home directory with name ".gh-milestone-tracker" (without extension),
		// then in the XDG config directory.
		viper.AddConfigPath(home)
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, appName))
		viper.SetConfigType("yaml")
		viper.SetConfigName("." + appName)
	}

	// Read in environment variables that match
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// now is replaced in tests.
var now = time.Now
