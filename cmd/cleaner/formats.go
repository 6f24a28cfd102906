package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/tableio"
)

func newFormatsCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported file formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FORMAT\tEXTENSIONS\tREAD\tWRITE")
			for _, f := range tableio.Formats() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					f.Name, strings.Join(f.Extensions, ", "), yesNo(f.Read != nil), yesNo(f.Write != nil))
			}
			return tw.Flush()
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
