package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Zelldon/zdb-sub001/internal/keyformat"
	"github.com/Zelldon/zdb-sub001/internal/state"
	"github.com/Zelldon/zdb-sub001/internal/store"
)

// StateOptions holds flags shared by the state commands.
type StateOptions struct {
	*RootOptions
	Path string
	Keys keyFlags
}

// NewStateCommand creates the state command group.
func NewStateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect runtime or snapshot state",
		Long: `Inspect the key-value state of a partition.

--path points at a runtime directory or at one snapshot directory, e.g.
<data>/raft-partition/partitions/1/snapshots/<snapshot-id>.`,
	}
	cmd.PersistentFlags().StringVarP(&opts.Path, "path", "p", "", "state directory (required)")
	_ = cmd.MarkPersistentFlagRequired("path")
	cmd.PersistentFlags().BoolVar(&opts.Keys.HexKeys, "hex-keys", false, "render every key as hex")
	cmd.PersistentFlags().StringVar(&opts.Keys.KeyFormat, "key-format", "", "render every key with this format (chars s, l, i, b, B)")
	cmd.MarkFlagsMutuallyExclusive("hex-keys", "key-format")

	cmd.AddCommand(newStateListCommand(opts))
	cmd.AddCommand(newStateStatsCommand(opts))
	cmd.AddCommand(newStateGetCommand(opts))
	cmd.AddCommand(newStateExportCommand(opts))
	cmd.AddCommand(newStateProcessCommand(opts))
	cmd.AddCommand(newStateIncidentCommand(opts))
	cmd.AddCommand(newStateBannedCommand(opts))
	cmd.AddCommand(newStateInstanceCommand(opts))
	cmd.AddCommand(newStateCheckCommand(opts))
	return cmd
}

func (o *StateOptions) open(cmd *cobra.Command) (*state.Reader, error) {
	if err := o.rejectDot(); err != nil {
		return nil, err
	}
	o.warnReadOnly(cmd)
	return o.openState(cmd.Context(), o.Path, o.Keys)
}

// rowsResult renders state rows as text.
type rowsResult []state.Row

func (r rowsResult) renderText(w io.Writer) error {
	for _, row := range r {
		fmt.Fprintf(w, "%s %s %s", row.Category, row.Key, row.Value)
		if row.Error != "" {
			fmt.Fprintf(w, " (%s)", row.Error)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func newStateListCommand(opts *StateOptions) *cobra.Command {
	var category, prefix string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List state entries",
		Long: `List state entries in key order with decoded keys and values.

--category takes a category name (JOBS) or id (15). --prefix takes the raw key
bytes as hex and applies after the category prefix.

Examples:
  zdb state list --path ./snapshots/1-1-1-1
  zdb state list --path ./runtime --category VARIABLES --format json
  zdb state list --path ./runtime --prefix 000000000000000f --hex-keys`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(category, prefix)
			if err != nil {
				return err
			}
			r, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			rows := rowsResult{}
			err = r.Each(filter, func(e state.Entry) error {
				rows = append(rows, state.Render(state.MsgpackJSON{}, e))
				return nil
			})
			if err != nil {
				return WrapExitError(ExitFailure, "failed to read state", err)
			}
			return opts.formatter(cmd).Success(rows)
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only list this category")
	cmd.Flags().StringVar(&prefix, "prefix", "", "only list keys starting with these hex bytes")
	return cmd
}

func parseFilter(category, prefix string) (state.Filter, error) {
	var f state.Filter
	if category != "" {
		c, err := keyformat.ParseCategory(category)
		if err != nil {
			return f, WrapExitError(ExitCommandError, "invalid --category", err)
		}
		f = state.ForCategory(c)
	}
	if prefix != "" {
		b, err := parseHex(prefix)
		if err != nil {
			return f, WrapExitError(ExitCommandError, "invalid --prefix", err)
		}
		f.Prefix = b
	}
	return f, nil
}

// statsResult renders per-category counts.
type statsResult struct {
	state.Stats
}

func (r statsResult) renderText(w io.Writer) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "CATEGORY\tENTRIES\tKEYS\tVALUES")
	for _, c := range r.Categories {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, count(c.Count), bytesOf(c.KeyBytes), bytesOf(c.ValueBytes))
	}
	fmt.Fprintf(tw, "TOTAL\t%s\t\t\n", count(r.Total))
	return tw.Flush()
}

func newStateStatsCommand(opts *StateOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count entries per category",
		Long: `Count the entries of every category and their key and value sizes.

Examples:
  zdb state stats --path ./snapshots/1-1-1-1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			stats, err := r.Stats()
			if err != nil {
				return WrapExitError(ExitFailure, "failed to read state", err)
			}
			if stats.Categories == nil {
				stats.Categories = []state.CategoryStats{}
			}
			return opts.formatter(cmd).Success(statsResult{stats})
		},
	}
}

func newStateGetCommand(opts *StateOptions) *cobra.Command {
	var (
		category string
		key      int64
		rawKey   string
	)
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Look up one state entry",
		Long: `Look up the entry with a long key in a category, or any entry by its raw
key bytes.

Examples:
  zdb state get --path ./runtime --category JOBS --key 2251799813685249
  zdb state get --path ./runtime --raw-key "00 00 00 00 00 00 00 0f 00 08 00 00 00 00 00 01"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			var (
				k     []byte
				value []byte
			)
			switch {
			case rawKey != "":
				if k, err = parseHex(rawKey); err != nil {
					return WrapExitError(ExitCommandError, "invalid --raw-key", err)
				}
				value, err = r.Get(k)
			case category != "" && cmd.Flags().Changed("key"):
				c, perr := keyformat.ParseCategory(category)
				if perr != nil {
					return WrapExitError(ExitCommandError, "invalid --category", perr)
				}
				k = keyformat.NewKey(c).Long(key).Bytes()
				value, err = r.GetLong(c, key)
			default:
				return NewExitError(ExitCommandError, "either --raw-key or both --category and --key are required")
			}
			if errors.Is(err, state.ErrNotFound) {
				return NewExitError(ExitFailure, fmt.Sprintf("no entry for key %s", keyformat.Hex(k)))
			}
			if err != nil {
				return WrapExitError(ExitFailure, "failed to read state", err)
			}
			row := state.Render(state.MsgpackJSON{}, r.Entry(k, value))
			return opts.formatter(cmd).Success(rowsResult{row})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "category name or id")
	cmd.Flags().Int64Var(&key, "key", 0, "long key within the category")
	cmd.Flags().StringVar(&rawKey, "raw-key", "", "full key as hex")
	cmd.MarkFlagsMutuallyExclusive("raw-key", "key")
	return cmd
}

func newStateExportCommand(opts *StateOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the state into a SQLite database",
		Long: `Write every state entry into a SQLite database.

Examples:
  zdb state export --path ./snapshots/1-1-1-1 --out ./zdb.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer r.Close()

			st, err := store.Open(out)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open export database", err)
			}
			defer st.Close()

			ex, err := st.BeginExport(ctx, store.KindState, opts.Path)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to start export", err)
			}
			err = r.Each(state.Filter{}, func(e state.Entry) error {
				return ex.WriteStateEntry(ctx, e, state.Render(state.MsgpackJSON{}, e))
			})
			if err == nil {
				err = ex.Finish(ctx)
			}
			if err != nil {
				_ = ex.Abort()
				return WrapExitError(ExitFailure, "export failed", err)
			}
			return finishExport(cmd, opts.RootOptions, st, ex, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "SQLite database to write (required)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
