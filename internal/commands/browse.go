package commands

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/nhle/deadline-harvester/internal/app"
	"github.com/nhle/deadline-harvester/internal/harvest"
)

func newBrowseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the terminal deadline browser (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, opts)
		},
	}
}

func runBrowse(cmd *cobra.Command, opts *rootOptions) error {
	e, err := newEnv(cmd, opts, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer e.Close()

	// Log lines would tear the alternate screen.
	e.log.SetOutput(io.Discard)

	deps := app.Deps{Store: e.store, Engine: e.engine}
	if src, err := e.source(); err == nil {
		deps.Trigger = func(ctx context.Context) (*harvest.Result, error) {
			return e.harvester.RunSource(ctx, src)
		}
	}

	p := tea.NewProgram(app.New(deps), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err = p.Run()
	return err
}
