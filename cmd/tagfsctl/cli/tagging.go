package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taggablefs/tagfs/internal/dispatch"
)

func newTagCommand(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <path> <tag-path>",
		Short: "Tag a file or every file under a folder",
		Long:  "Applies the tag named by <tag-path> to the file at <path>, or to every file directly inside it if <path> names a folder (subfolders are not descended into). The tag is created if it does not already exist.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(f)
			if err != nil {
				return err
			}
			defer c.Close()

			reply, err := c.call(dispatch.QHTag, args[0]+","+args[1])
			return ackOrError(reply, err)
		},
	}
}

func newUntagCommand(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "untag <path> <tag-path>",
		Short: "Remove a tag from a file or every file under a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(f)
			if err != nil {
				return err
			}
			defer c.Close()

			reply, err := c.call(dispatch.QHUntag, args[0]+","+args[1])
			return ackOrError(reply, err)
		},
	}
}

func newCreateTagCommand(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "create-tag <tag-path>",
		Short: "Create a tag without applying it to any file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(f)
			if err != nil {
				return err
			}
			defer c.Close()

			reply, err := c.call(dispatch.QHCreateTag, args[0])
			return ackOrError(reply, err)
		},
	}
}

func newDeleteTagCommand(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-tag <tag-path>",
		Short: "Delete a tag that has no children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(f)
			if err != nil {
				return err
			}
			defer c.Close()

			reply, err := c.call(dispatch.QHDeleteTag, args[0])
			return ackOrError(reply, err)
		},
	}
}

func newGetTagsCommand(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get-tags <path>",
		Short: "List every tag applied to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(f)
			if err != nil {
				return err
			}
			defer c.Close()

			tags, err := c.callMulti(dispatch.QHGetTags, args[0])
			if err != nil {
				return err
			}
			if len(tags) == 1 && tags[0] == dispatch.ReplyInvalid {
				return fmt.Errorf("no such file: %s", args[0])
			}
			printLines(tags)
			return nil
		},
	}
}
