package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Zelldon/zdb-sub001/internal/config"
	"github.com/Zelldon/zdb-sub001/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text" | "dot"
	ConfigFile string
	LogLevel   string
	Quiet      bool

	// Config is resolved before any subcommand runs.
	Config   config.Config
	Logger   *zap.Logger
	resolved bool
}

// ValidFormats defines the allowed output formats. "dot" is only understood
// by log print.
var ValidFormats = []string{"text", "json", "dot"}

// NewRootCommand creates the root command for the zdb CLI.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

func newRootCommand() (*cobra.Command, *RootOptions) {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "zdb",
		Short: "zdb - inspect Zeebe partition data",
		Long: `A read-only inspector for the data directory of a Zeebe broker.

It reads replicated log segments and runtime or snapshot state without a
running broker, and prints what it finds as text or JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text, dot for log print)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress the read-only warning")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewStateCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd, opts
}

// resolve layers flags over the loaded config and installs the logger.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if !cmd.Flags().Changed("format") {
		o.Format = cfg.Output.Format
	} else if o.Format != "dot" {
		cfg.Output.Format = o.Format
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.Verbose {
		cfg.Log.Level = zapcore.DebugLevel.String()
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	lc, err := cfg.LoggerConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	// Logs go to stderr so they never mix with command output.
	log, err := lc.New(cmd.ErrOrStderr())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create logger", err)
	}

	o.Config = cfg
	o.Logger = log
	o.resolved = true
	cmd.SetContext(logger.NewContextWithLogger(cmd.Context(), log))
	return nil
}

// errorFormat is the output format for an error returned by the command tree.
// Errors raised before resolve ran, such as flag parse errors, still honour
// output.format from the config file.
func (o *RootOptions) errorFormat(cmd *cobra.Command) string {
	format := o.Format
	if !o.resolved {
		if f := cmd.PersistentFlags().Lookup("format"); f == nil || !f.Changed {
			format = "text"
			if cfg, err := config.Load(o.ConfigFile); err == nil {
				format = cfg.Output.Format
			}
		}
	}
	if format != "json" {
		return "text"
	}
	return format
}

// formatter returns an OutputFormatter bound to cmd's writers.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:  o.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: o.Verbose,
	}
}

// warnReadOnly logs the banner shown before reading broker data.
func (o *RootOptions) warnReadOnly(cmd *cobra.Command) {
	if o.Quiet {
		return
	}
	logger.FromContext(cmd.Context()).Warn(
		"read-only inspection, data may be inconsistent with a running broker")
}

// rejectDot fails commands that have no graph output.
func (o *RootOptions) rejectDot() error {
	if o.Format == "dot" {
		return NewExitError(ExitCommandError, "dot output is only supported by log print")
	}
	return nil
}
