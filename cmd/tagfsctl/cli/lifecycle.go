package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taggablefs/tagfs/internal/dispatch"
)

func newPingCommand(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check whether the daemon is responding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(f)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.ping(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "daemon is alive")
			return nil
		},
	}
}

func newShutdownCommand(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "shutdown",
		Short: "Ask the daemon to flush the metadata store and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(f)
			if err != nil {
				return err
			}
			defer c.Close()

			reply, err := c.call(dispatch.QHExit, "")
			if err := ackOrError(reply, err); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "shutdown acknowledged")
			return nil
		},
	}
}
