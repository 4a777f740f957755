package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/photolens/photolens/application/service"
)

func indexCmd() *cobra.Command {
	var (
		envFile    string
		configFile string
		aspect     string
		prompt     string
		workers    int
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "index <dir>",
		Short: "Index a photo collection",
		Long: `Index every image under the given directory: each photo is described by
the vision model, the description is embedded, and the record is stored in
the aspect index. Photos already indexed under the aspect are skipped unless
--force is given.`,
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

			if workers <= 0 {
				workers = cfg.IndexWorkers()
			}

			report, err := client.Indexing.Run(cmd.Context(), service.IndexParams{
				Dir:          args[0],
				Aspect:       aspect,
				Prompt:       prompt,
				Concurrency:  workers,
				SkipExisting: !force,
			})
			if err != nil {
				return err
			}

			printReport(report)
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&configFile, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&aspect, "aspect", "", "Aspect name for the records (default: default)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Custom describe prompt for the vision model")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent photos in flight")
	cmd.Flags().BoolVar(&force, "force", false, "Re-index photos that already have a record")

	return cmd
}

func addAspectCmd() *cobra.Command {
	var (
		envFile    string
		configFile string
		prompt     string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "add-aspect <dir> <aspect>",
		Short: "Index a collection under an additional aspect",
		Long: `Add an aspect to an already indexed collection. Typically paired with
--prompt so the vision model describes a different facet of each photo, e.g.
the people in it or the location.`,
		Args: cobra.ExactArgs(2),
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

			if workers <= 0 {
				workers = cfg.IndexWorkers()
			}

			report, err := client.Indexing.Run(cmd.Context(), service.IndexParams{
				Dir:          args[0],
				Aspect:       args[1],
				Prompt:       prompt,
				Concurrency:  workers,
				SkipExisting: true,
			})
			if err != nil {
				return err
			}

			printReport(report)
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&configFile, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Custom describe prompt for the vision model")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent photos in flight")

	return cmd
}

func printReport(report service.Report) {
	fmt.Printf("indexed %d, skipped %d, failed %d in %s\n",
		report.Indexed, report.Skipped, report.Failed, report.Duration.Round(time.Millisecond))

	if report.Failed == 0 {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PHOTO\tERROR")
	for _, item := range report.Items {
		if item.Status == service.ItemFailed {
			fmt.Fprintf(w, "%s\t%s\n", item.PhotoPath, item.Err)
		}
	}
	_ = w.Flush()
}
