// Package commands implements the deadlines command line: one-off
// harvests, queries and maintenance against the store, the long-running
// server, and the terminal browser.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/nhle/deadline-harvester/internal/model"
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "deadlines",
		Short: "Harvest and track deadlines from a published deadline page",
		Long: `deadlines extracts dated items from a page that lists deadlines under
month headings, classifies them, and keeps a local store consistent across
repeated harvests.

Config: ~/.config/deadline-harvester/config.yaml
Env:    HARVESTER_SOURCE_URL, HARVESTER_DATABASE_URL, ...`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, opts)
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", model.DefaultConfigPath(), "path to the config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(opts),
		newScrapeCmd(opts),
		newListCmd(opts),
		newSearchCmd(opts),
		newUpcomingCmd(opts),
		newDuplicatesCmd(opts),
		newMergeCmd(opts),
		newCleanupCmd(opts),
		newRunsCmd(opts),
		newBrowseCmd(opts),
		newCredentialCmd(),
	)
	return root
}
