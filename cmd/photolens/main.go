// Package main is the entry point for the photolens CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/photolens/photolens/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photolens",
		Short: "Semantic photo search",
		Long: `Photolens indexes photo collections by describing each photo with a
vision model and embedding the description, then answers image and text
queries by similarity in the shared embedding space.`,
	}

	cmd.AddCommand(indexCmd())
	cmd.AddCommand(addAspectCmd())
	cmd.AddCommand(searchCmd())
	cmd.AddCommand(searchTextCmd())
	cmd.AddCommand(photosCmd())
	cmd.AddCommand(deleteCmd())
	cmd.AddCommand(clearCmd())
	cmd.AddCommand(modelsCmd())
	cmd.AddCommand(serveCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig layers defaults, the optional YAML config file, the optional
// .env file and environment variables.
func loadConfig(envFile, configFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile, configFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
