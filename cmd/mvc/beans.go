package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func beansCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "beans",
		Short: "List the registered lookup keys in insertion order",
		RunE: func(cmd *cobra.Command, args []string) error {
			application := newApp(opts, true)
			if err := application.Boot(); err != nil {
				warn(cmd, "%v", err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tTYPE")
			for _, key := range application.Bindings() {
				instance, _ := application.Lookup(key)
				fmt.Fprintf(tw, "%s\t%T\n", key, instance)
			}
			return tw.Flush()
		},
	}
}
