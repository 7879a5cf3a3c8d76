package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"motorconf-go/errcode"
	"motorconf-go/services/motor"
	"motorconf-go/services/motor/config"
	"motorconf-go/services/motor/platform"
)

type resolveOptions struct {
	board      string
	boardFile  string
	configPath string
	json       bool
	tieBreak   tieBreakValue
}

// report is the --json output of resolve.
type report struct {
	Board       string                      `json:"board"`
	State       string                      `json:"state"`
	Code        errcode.Code                `json:"code"`
	Error       string                      `json:"error,omitempty"`
	Resolved    *config.ResolvedMotorConfig `json:"resolved,omitempty"`
	Adjustments []motor.Adjustment          `json:"adjustments,omitempty"`
}

func newResolveCmd(lo *logOptions) *cobra.Command {
	o := &resolveOptions{board: platform.F405Ref.Name}
	c := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a motor config against a board",
		Long: `Resolve reads a motor output config (YAML, or JSON for *.json; "-" is
stdin) and resolves it against a built-in board or a board file. A rejected
config exits non-zero with its error code.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error { return runResolve(cmd, lo, o) },
	}
	f := c.Flags()
	f.StringVarP(&o.board, "board", "b", o.board, "built-in board name (see 'motorcheck boards')")
	f.StringVar(&o.boardFile, "board-file", "", "board description YAML; overrides --board")
	f.StringVarP(&o.configPath, "config", "c", "", "motor config file")
	f.BoolVar(&o.json, "json", false, "output as JSON")
	f.Var(&o.tieBreak, "tie-break", "bit-bang timer preference when Auto (shared, free, first)")
	_ = c.MarkFlagRequired("config")
	return c
}

func runResolve(cmd *cobra.Command, lo *logOptions, o *resolveOptions) error {
	logger := lo.logger(cmd)

	board, err := loadBoard(o)
	if err != nil {
		return err
	}
	raw, err := loadConfig(cmd.InOrStdin(), o.configPath)
	if err != nil {
		return err
	}
	logger.Debug("loaded", "board", board.Name, "config", o.configPath, "protocol", raw.Protocol)

	rep := report{Board: board.Name}
	res, rerr := motor.Resolve(raw, board, motor.WithTieBreak(config.TieBreak(o.tieBreak)))
	if rerr != nil {
		rep.State, rep.Code, rep.Error = "rejected", errcode.Of(rerr), rerr.Error()
		logger.Warn("rejected", "code", rep.Code, "err", rerr)
	} else {
		rep.State, rep.Code, rep.Resolved = "ok", errcode.OK, &res
		rep.Adjustments = motor.Diff(raw, res)
		for _, a := range rep.Adjustments {
			logger.Info("adjusted", "field", a.Field, "from", a.From, "to", a.To)
		}
	}

	out := cmd.OutOrStdout()
	if o.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else {
		printReport(out, rep)
	}
	if rerr != nil {
		return fmt.Errorf("config rejected: %w", rerr)
	}
	return nil
}

func loadBoard(o *resolveOptions) (*platform.Board, error) {
	if o.boardFile != "" {
		return platform.LoadBoardFile(o.boardFile)
	}
	b, ok := platform.Lookup(o.board)
	if !ok {
		return nil, fmt.Errorf("unknown board %q (known: %s)", o.board, strings.Join(platform.Names(), ", "))
	}
	return b, nil
}

func loadConfig(stdin io.Reader, path string) (config.MotorOutputConfig, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return config.MotorOutputConfig{}, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		r = f
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		b, err := io.ReadAll(r)
		if err != nil {
			return config.MotorOutputConfig{}, fmt.Errorf("read config: %w", err)
		}
		return config.DecodeJSON(b)
	}
	return config.DecodeYAML(r)
}

func printReport(w io.Writer, rep report) {
	if rep.Resolved == nil {
		fmt.Fprintf(w, "board %s: REJECTED (%s)\n  %s\n", rep.Board, rep.Code, rep.Error)
		return
	}
	res := rep.Resolved
	fmt.Fprintf(w, "board %s: OK\n", rep.Board)
	fmt.Fprintf(w, "  protocol   %s @ %d Hz\n", res.Protocol, res.UpdateRateHz)
	fmt.Fprintf(w, "  transport  %s", res.Transport)
	if res.Transport == config.TransportBitbang {
		fmt.Fprintf(w, " (%s)", res.BitbangTimer)
	}
	fmt.Fprintf(w, "\n  dma        %s\n", onOff(res.DMA, res.Burst))
	fmt.Fprintf(w, "  telemetry  %s (edt %s)\n\n", onOff(res.Telemetry, false), res.EDT)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MOTOR\tOUTPUT\tPIN\tTIMER\tCH\tDMA")
	for i, m := range res.Active() {
		ch, dma := "-", "-"
		if m.Channel != 0 {
			ch = fmt.Sprint(m.Channel)
		}
		if !m.DMA.IsZero() {
			dma = m.DMA.String()
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n", i, m.Output, m.Pin, m.Timer, ch, dma)
	}
	tw.Flush()

	if len(rep.Adjustments) > 0 {
		fmt.Fprintln(w, "\nadjusted:")
		for _, a := range rep.Adjustments {
			fmt.Fprintf(w, "  %s\n", a)
		}
	}
}

func onOff(on, burst bool) string {
	switch {
	case on && burst:
		return "on (burst)"
	case on:
		return "on"
	}
	return "off"
}

// ---- flag values ----

type tieBreakValue config.TieBreak

func (v *tieBreakValue) String() string { return config.TieBreak(*v).String() }

func (v *tieBreakValue) Set(s string) error {
	var tb config.TieBreak
	if err := tb.UnmarshalText([]byte(s)); err != nil {
		return err
	}
	*v = tieBreakValue(tb)
	return nil
}

func (v *tieBreakValue) Type() string { return "policy" }
