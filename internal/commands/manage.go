package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// errAborted is returned when the user declines a confirmation.
var errAborted = errors.New("aborted")

// confirm asks a yes/no question unless skip is set.
func confirm(skip bool, title, description string) error {
	if skip {
		return nil
	}
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return fmt.Errorf("confirmation prompt: %w", err)
	}
	if !ok {
		return errAborted
	}
	return nil
}

func newMergeCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "merge <keep-id> <remove-id>",
		Short: "Resolve a duplicate by keeping one deadline and deleting the other",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			keep, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid keep id %q", args[0])
			}
			remove, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid remove id %q", args[1])
			}

			e, err := newEnv(cmd, opts, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer e.Close()

			kept, err := e.store.GetDeadline(cmd.Context(), keep)
			if err != nil {
				return fmt.Errorf("deadline %d: %w", keep, err)
			}
			dropped, err := e.store.GetDeadline(cmd.Context(), remove)
			if err != nil {
				return fmt.Errorf("deadline %d: %w", remove, err)
			}

			desc := fmt.Sprintf("keep   #%d %s (%s)\ndelete #%d %s (%s)",
				kept.ID, kept.Title, kept.DueDate.Format(dateLayout),
				dropped.ID, dropped.Title, dropped.DueDate.Format(dateLayout))
			if err := confirm(yes, "Merge these deadlines?", desc); err != nil {
				return err
			}

			if err := e.engine.Merge(cmd.Context(), keep, remove); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Kept #%d, removed #%d\n", keep, remove)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newCleanupCmd(opts *rootOptions) *cobra.Command {
	var (
		days int
		yes  bool
	)
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete deadlines that passed more than N days ago",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer e.Close()

			if !cmd.Flags().Changed("days") {
				days = e.cfg.Harvest.CleanupDays
			}
			if days < 0 {
				return fmt.Errorf("--days must not be negative, got %d", days)
			}

			title := fmt.Sprintf("Delete deadlines due more than %d day(s) ago?", days)
			if err := confirm(yes, title, "This cannot be undone."); err != nil {
				return err
			}

			n, err := e.engine.Cleanup(cmd.Context(), days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d deadline(s)\n", n)
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 30, "age in days past the due date (default from harvest.cleanup_days)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
