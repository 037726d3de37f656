package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func routesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the compiled route table in match order",
		RunE: func(cmd *cobra.Command, args []string) error {
			application := newApp(opts, true)
			if err := application.Boot(); err != nil {
				warn(cmd, "%v", err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATTERN\tHANDLER\tPARAMS")
			for _, r := range application.Table().Routes() {
				slots := make([]string, 0, len(r.Slots))
				for _, s := range r.Slots {
					slots = append(slots, s.String())
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Pattern, r.Handler(), strings.Join(slots, " "))
			}
			return tw.Flush()
		},
	}
}
