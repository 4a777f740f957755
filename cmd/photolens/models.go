package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func modelsCmd() *cobra.Command {
	var (
		envFile    string
		configFile string
		filter     string
	)

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the models available on the configured endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(envFile, configFile)
			if err != nil {
				return err
			}

			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			models, err := client.Models.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(models) == 0 {
				fmt.Println("no models")
				return nil
			}

			for _, m := range models {
				fmt.Println(m)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&configFile, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&filter, "filter", "", "Case-insensitive substring filter")

	return cmd
}
