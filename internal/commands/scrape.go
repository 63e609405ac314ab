package commands

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newScrapeCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "scrape",
		Aliases: []string{"harvest"},
		Short:   "Harvest the source page once and update the store",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer e.Close()

			src, err := e.source()
			if err != nil {
				return err
			}

			res, err := e.harvester.RunSource(cmd.Context(), src)
			if asJSON && res != nil {
				if jerr := printJSON(cmd.OutOrStdout(), res); jerr != nil {
					return jerr
				}
				return err
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Harvested %d candidate(s) in %s\n",
				len(res.Candidates), res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond))
			fmt.Fprintf(out, "  added:     %d\n", res.Added)
			fmt.Fprintf(out, "  updated:   %d\n", res.Updated)
			fmt.Fprintf(out, "  unchanged: %d\n", res.Skipped)
			if res.Failed > 0 {
				fmt.Fprintf(out, "  failed:    %d\n", res.Failed)
			}
			if res.ParseFailures > 0 {
				fmt.Fprintf(out, "  %d item(s) had no usable date (run with --log-level debug for details)\n", res.ParseFailures)
			}
			fmt.Fprintf(out, "%d deadline(s) stored\n", res.Stored)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run result as JSON")
	return cmd
}
