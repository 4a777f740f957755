package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func photosCmd() *cobra.Command {
	var (
		envFile    string
		configFile string
	)

	cmd := &cobra.Command{
		Use:   "photos",
		Short: "List the indexed photo paths",
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

			paths, err := client.Library.PhotoPaths(cmd.Context())
			if err != nil {
				return err
			}

			for _, p := range paths {
				fmt.Println(p)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&configFile, "config", "", "Path to YAML config file")

	return cmd
}

func deleteCmd() *cobra.Command {
	var (
		envFile    string
		configFile string
		aspect     string
	)

	cmd := &cobra.Command{
		Use:   "delete <photo-path>",
		Short: "Delete a photo's records from the index",
		Long: `Delete the record for a photo. With --aspect only that aspect's record
is removed; without it every record for the photo goes.`,
		Args: cobra.ExactArgs(1),
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

			removed, err := client.Library.Delete(cmd.Context(), args[0], aspect)
			if err != nil {
				return err
			}
			if removed == 0 {
				fmt.Println("no matching records")
				return nil
			}

			fmt.Printf("removed %d record(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&configFile, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&aspect, "aspect", "", "Only remove this aspect's record")

	return cmd
}

func clearCmd() *cobra.Command {
	var (
		envFile    string
		configFile string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all records from the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm("delete ALL records from the index?") {
				fmt.Println("aborted")
				return nil
			}

			cfg, err := loadConfig(envFile, configFile)
			if err != nil {
				return err
			}

			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Library.Clear(cmd.Context()); err != nil {
				return err
			}

			fmt.Println("index cleared")
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&configFile, "config", "", "Path to YAML config file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
