// Package cli implements the tagfsctl operator command tree: one
// subcommand per QH_* verb, each dialing a running daemon's transport
// endpoints directly rather than going through a client library.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the tagfsctl command tree.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "tagfsctl",
		Short:         "Operator CLI for a running tagfsd daemon",
		Long:          "tagfsctl sends control requests to a running tagfsd daemon over its operator transport endpoint: tagging, nesting, search, and lifecycle operations.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&flags.rootDir, "root", "", "storage root the target daemon was started with (required)")
	cmd.PersistentFlags().StringVar(&flags.endpointScheme, "endpoint-scheme", "", "transport endpoint filename prefix, if overridden on the daemon")
	cmd.MarkPersistentFlagRequired("root")

	cmd.AddCommand(newPingCommand(flags))
	cmd.AddCommand(newShutdownCommand(flags))
	cmd.AddCommand(newTagCommand(flags))
	cmd.AddCommand(newUntagCommand(flags))
	cmd.AddCommand(newNestCommand(flags))
	cmd.AddCommand(newUnnestCommand(flags))
	cmd.AddCommand(newStatsCommand(flags))
	cmd.AddCommand(newSearchCommand(flags))
	cmd.AddCommand(newCreateTagCommand(flags))
	cmd.AddCommand(newDeleteTagCommand(flags))
	cmd.AddCommand(newGetTagsCommand(flags))

	return cmd
}
