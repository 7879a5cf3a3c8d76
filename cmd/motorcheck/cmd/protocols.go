package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"motorconf-go/services/motor"
	"motorconf-go/services/motor/config"
)

func newProtocolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "protocols",
		Short: "List motor protocols and their capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tbl := motor.DefaultTable()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PROTOCOL\tCATEGORY\tRATE HZ\tBITBANG\tDMA\tTELEMETRY\tEDT")
			for _, p := range config.Protocols() {
				c := tbl[p]
				bb := yesNo(c.SupportsBitbang)
				if c.RequiresBitbang {
					bb = "required"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d-%d\t%s\t%s\t%s\t%s\n", p, c.Category,
					c.MinRateHz, c.MaxRateHz, bb, yesNo(c.SupportsDMA),
					yesNo(c.SupportsTelemetry), yesNo(c.SupportsEDT))
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
