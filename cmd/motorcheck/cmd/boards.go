package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"motorconf-go/services/motor/platform"
)

func newBoardsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "boards [name]",
		Short: "List built-in boards, or print one as YAML",
		Long: `Without arguments, list the built-in boards. With a board name, print its
description in the format accepted by 'resolve --board-file'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBoards,
	}
	return c
}

func runBoards(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 1 {
		b, ok := platform.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown board %q", args[0])
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(b)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BOARD\tMOTORS\tPINS\tTIMERS\tBITBANG")
	for _, name := range platform.Names() {
		b, _ := platform.Lookup(name)
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%v\n", b.Name, b.MaxMotors(), len(b.Pins), len(b.Timers), b.BitbangTimers())
	}
	return tw.Flush()
}
