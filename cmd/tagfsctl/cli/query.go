package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taggablefs/tagfs/internal/dispatch"
)

func errCyclic(child, parent string) error {
	return fmt.Errorf("nesting %q under %q would create a cycle", child, parent)
}

func newStatsCommand(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print a snapshot of file, tag, and blob counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(f)
			if err != nil {
				return err
			}
			defer c.Close()

			reply, err := c.call(dispatch.QHStats, "")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}
}

func newSearchCommand(f *rootFlags) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "search-tags <tag-path> [tag-path...]",
		Short: "List files matching a set of tags",
		Long:  "Lists files tagged with at least one of the given tags. With --strict, only files tagged with every given tag are listed.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(f)
			if err != nil {
				return err
			}
			defer c.Close()

			payload := boolFlag(strict)
			for _, tag := range args {
				payload += "," + tag
			}
			results, err := c.callMulti(dispatch.QHSearch, payload)
			if err != nil {
				return err
			}
			printLines(results)
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "require every listed tag, not just one")
	return cmd
}
