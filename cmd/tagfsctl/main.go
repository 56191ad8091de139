// Command tagfsctl is the operator CLI for a running tagfsd daemon.
package main

import (
	"fmt"
	"os"

	"github.com/taggablefs/tagfs/cmd/tagfsctl/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
