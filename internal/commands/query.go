package commands

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var all, asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored deadlines by due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer e.Close()

			deadlines, err := e.store.ListDeadlines(cmd.Context(), !all)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), deadlines)
			}
			printDeadlines(cmd.OutOrStdout(), deadlines)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include deadlines that have passed")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <title-prefix>",
		Short: "Find deadlines whose title starts with a prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer e.Close()

			deadlines, err := e.store.SearchByTitlePrefix(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printDeadlines(cmd.OutOrStdout(), deadlines)
			return nil
		},
	}
}

func newUpcomingCmd(opts *rootOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Show deadlines and events coming up soon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}
			e, err := newEnv(cmd, opts, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer e.Close()

			deadlines, err := e.store.UpcomingDeadlines(cmd.Context(), time.Now(), time.Duration(days)*24*time.Hour)
			if err != nil {
				return err
			}
			printDeadlines(cmd.OutOrStdout(), deadlines)
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 7, "look-ahead window in days")
	return cmd
}

func newDuplicatesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicates",
		Short: "Report stored deadlines that look like duplicates",
		Long: `Lists pairs in the same category whose titles are long and share their
first half. Nothing is changed; use merge to resolve a pair.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer e.Close()

			pairs, err := e.engine.FindDuplicates(cmd.Context())
			if err != nil {
				return err
			}
			printPairs(cmd.OutOrStdout(), pairs)
			return nil
		},
	}
}

func newRunsCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent harvest runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer e.Close()

			runs, err := e.store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}
