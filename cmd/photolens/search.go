package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/photolens/photolens/application/service"
	"github.com/photolens/photolens/domain/photo"
)

func searchCmd() *cobra.Command {
	var (
		envFile    string
		configFile string
		aspect     string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "search <image>",
		Short: "Search the index with a query image",
		Long: `Search stored photos by similarity to a query image. The image is
described and embedded the same way indexed photos were, so results rank by
how close each stored description is to the query's.`,
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

			if limit <= 0 {
				limit = cfg.SearchLimit()
			}

			results, err := client.Search.ByImageFile(cmd.Context(), args[0], service.SearchParams{
				Aspect: aspect,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			printResults(results)
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&configFile, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&aspect, "aspect", "", "Restrict results to one aspect")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func searchTextCmd() *cobra.Command {
	var (
		envFile    string
		configFile string
		aspect     string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "search-text <query...>",
		Short: "Search the index with a text query",
		Args:  cobra.MinimumNArgs(1),
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

			if limit <= 0 {
				limit = cfg.SearchLimit()
			}

			results, err := client.Search.ByText(cmd.Context(), strings.Join(args, " "), service.SearchParams{
				Aspect: aspect,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			printResults(results)
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&configFile, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&aspect, "aspect", "", "Restrict results to one aspect")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func printResults(results []photo.Result) {
	if len(results) == 0 {
		fmt.Println("no matches")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DISTANCE\tASPECT\tPHOTO")
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%s\t%s\n", r.Distance(), r.AspectName(), r.PhotoPath())
	}
	_ = w.Flush()
}
