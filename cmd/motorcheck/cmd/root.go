package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

// logOptions are the persistent logging flags shared by every command.
type logOptions struct {
	level  levelValue
	format formatValue
	file   string
}

// NewRootCmd builds a fresh command tree; tests use one per case.
func NewRootCmd() *cobra.Command {
	lo := &logOptions{level: levelValue(log.InfoLevel)}

	root := &cobra.Command{
		Use:   "motorcheck",
		Short: "Check motor output configurations against a board",
		Long: `Resolve a motor output configuration (protocol, pins, bit-bang, DMA,
telemetry, output remap) against a board description and report the
descriptor the output driver would run from, or why it is rejected.

Examples:
  motorcheck resolve --board f405_ref --config quad.yaml
  motorcheck resolve --board-file myboard.yaml --config quad.yaml --json
  motorcheck boards
  motorcheck protocols`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.Var(&lo.level, "log-level", "log level (debug, info, warn, error)")
	pf.Var(&lo.format, "log-format", "log format (text, json, logfmt)")
	pf.StringVar(&lo.file, "log-file", "", "also write logs to this file, rotated")

	root.AddCommand(
		newResolveCmd(lo),
		newBoardsCmd(),
		newProtocolsCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logger builds the command logger. Diagnostics go to stderr so stdout stays
// machine-readable under --json.
func (lo *logOptions) logger(cmd *cobra.Command) *log.Logger {
	var w io.Writer = cmd.ErrOrStderr()
	if lo.file != "" {
		w = io.MultiWriter(w, &lumberjack.Logger{
			Filename:   lo.file,
			MaxSize:    5, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          "motorcheck",
		Level:           log.Level(lo.level),
		Formatter:       log.Formatter(lo.format),
		ReportTimestamp: lo.file != "",
	})
}

// ---- flag values ----

type levelValue log.Level

func (v *levelValue) String() string { return log.Level(*v).String() }

func (v *levelValue) Set(s string) error {
	l, err := log.ParseLevel(s)
	if err != nil {
		return err
	}
	*v = levelValue(l)
	return nil
}

func (v *levelValue) Type() string { return "level" }

type formatValue log.Formatter

var formatNames = map[string]log.Formatter{
	"text":   log.TextFormatter,
	"json":   log.JSONFormatter,
	"logfmt": log.LogfmtFormatter,
}

func (v *formatValue) String() string {
	for n, f := range formatNames {
		if f == log.Formatter(*v) {
			return n
		}
	}
	return "text"
}

func (v *formatValue) Set(s string) error {
	f, ok := formatNames[strings.ToLower(s)]
	if !ok {
		return fmt.Errorf("unknown log format %q", s)
	}
	*v = formatValue(f)
	return nil
}

func (v *formatValue) Type() string { return "format" }
