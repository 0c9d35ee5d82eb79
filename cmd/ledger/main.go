package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/config"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "ledger",
		Short: "📒 Personal finance health from a category timeline",
		Long: `spice-ledger: reads a wide monthly category timeline, classifies every
category against a YAML hierarchy and reports where the money goes.

Use it to compute savings rate, emergency runway and spending mix, pivot the
records any way you like, and get budget suggestions from your own history.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/ledger/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("hierarchy", "", "hierarchy YAML (default: $HOME/.config/ledger/hierarchy.yaml)")
	rootCmd.PersistentFlags().String("data", "", "timeline CSV (default: $HOME/.config/ledger/categories_timeline.csv)")
	rootCmd.PersistentFlags().String("balance", "", "current liquid balance used for the emergency runway")

	// Bind flags to viper
	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag(config.KeyHierarchyPath, rootCmd.PersistentFlags().Lookup("hierarchy"))
	_ = viper.BindPFlag(config.KeyDataPath, rootCmd.PersistentFlags().Lookup("data"))
	_ = viper.BindPFlag(config.KeyBalance, rootCmd.PersistentFlags().Lookup("balance"))

	// Add commands
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(recordsCmd())
	rootCmd.AddCommand(optionsCmd())
	rootCmd.AddCommand(metricsCmd())
	rootCmd.AddCommand(pivotCmd())
	rootCmd.AddCommand(topCmd())
	rootCmd.AddCommand(budgetCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down...")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	v := viper.GetViper()
	if err := config.Init(v, cfgFile); err != nil {
		return err
	}

	settings, err := config.Load(v)
	if err != nil {
		return err
	}

	level, err := common.ParseLevel(settings.LogLevel)
	if err != nil {
		return err
	}
	if err := common.SetupLogger(os.Stderr, level, settings.LogFormat); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	if used := v.ConfigFileUsed(); used != "" {
		common.LogDebug("Using config file", common.Fields{"path": used})
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ledger %s\n", version)
		},
	}
}
