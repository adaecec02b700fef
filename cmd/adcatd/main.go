// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/luxfi/adcat/pkg/config"
	"github.com/luxfi/adcat/pkg/exchange"
	"github.com/luxfi/adcat/pkg/log"
	"github.com/luxfi/adcat/pkg/storage"
)

var (
	configPath string

	// Version info
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "adcatd",
	Short: "adcat - disease category ad exchange",
	Long: `adcatd runs the category ad exchange: companies bid to own the ad
slot of a disease category, queries are attributed to categories, and
revenue is prorated over each ownership interval.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "adcatd %s (commit %s, built %s)\n", Version, GitCommit, BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (yaml, toml or json)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is what every command needs: the loaded config, a logger and the
// opened store.
type app struct {
	cfg   *config.Config
	log   log.Logger
	store *storage.Storage
}

func setup() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := log.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewStorage(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: logger, store: store}, nil
}

func (r *app) close() {
	if err := r.store.Close(); err != nil {
		r.log.Error("closing store", log.Error(err))
	}
	_ = r.log.Sync()
}

func (r *app) exchange(opts ...exchange.Option) (*exchange.Service, error) {
	all := append([]exchange.Option{exchange.WithLogger(r.log)}, opts...)
	return exchange.New(r.store, r.cfg.Exchange(), all...)
}
