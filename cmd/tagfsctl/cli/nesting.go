package cli

import (
	"github.com/spf13/cobra"

	"github.com/taggablefs/tagfs/internal/dispatch"
)

func newNestCommand(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "nest <child-tag-path> <parent-tag-path>",
		Short: "Add a nesting edge between two tags",
		Long:  "Makes <child-tag-path> appear as a child of <parent-tag-path> in the tag graph. Rejected if it would introduce a cycle.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(f)
			if err != nil {
				return err
			}
			defer c.Close()

			reply, err := c.call(dispatch.QHNest, args[0]+","+args[1])
			if err != nil {
				return err
			}
			if reply == dispatch.ReplyCycleErr {
				return errCyclic(args[0], args[1])
			}
			return ackOrError(reply, nil)
		},
	}
}

func newUnnestCommand(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "unnest <child-tag-path> <parent-tag-path>",
		Short: "Remove a nesting edge between two tags",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(f)
			if err != nil {
				return err
			}
			defer c.Close()

			reply, err := c.call(dispatch.QHUnnest, args[0]+","+args[1])
			return ackOrError(reply, err)
		},
	}
}
