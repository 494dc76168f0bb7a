package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zelldon/zdb-sub001/internal/inspect"
	"github.com/Zelldon/zdb-sub001/internal/journal"
	"github.com/Zelldon/zdb-sub001/internal/logger"
	"github.com/Zelldon/zdb-sub001/internal/store"
)

// LogOptions holds flags shared by the log commands.
type LogOptions struct {
	*RootOptions
	Path string
}

// NewLogCommand creates the log command group.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Inspect the replicated log of a partition",
		Long: `Inspect the replicated log of a partition.

--path points at a partition directory holding the journal segments, e.g.
<data>/raft-partition/partitions/1.`,
	}
	cmd.PersistentFlags().StringVarP(&opts.Path, "path", "p", "", "partition directory (required)")
	_ = cmd.MarkPersistentFlagRequired("path")

	cmd.AddCommand(newLogStatusCommand(opts))
	cmd.AddCommand(newLogPrintCommand(opts))
	cmd.AddCommand(newLogSearchCommand(opts))
	cmd.AddCommand(newLogExportCommand(opts))
	return cmd
}

// logStatusResult is the output of log status.
type logStatusResult struct {
	Path     string                `json:"path"`
	Segments []journal.SegmentInfo `json:"segments"`
	inspect.Status
}

func (r logStatusResult) renderText(w io.Writer) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Path:\t%s\n", r.Path)
	fmt.Fprintf(tw, "Segments:\t%s\n", count(len(r.Segments)))
	fmt.Fprintf(tw, "Scanned entries:\t%s\n", count(r.ScannedEntries))
	if r.ScannedEntries > 0 {
		fmt.Fprintf(tw, "Index range:\t%d - %d\n", r.LowestIndex, r.HighestIndex)
		fmt.Fprintf(tw, "Highest term:\t%d\n", r.HighestTerm)
		fmt.Fprintf(tw, "Record positions:\t%d - %d\n", r.LowestRecordPosition, r.HighestRecordPosition)
		fmt.Fprintf(tw, "Entry size:\tmin %s, max %s, avg %s\n",
			bytesOf(r.MinEntrySizeBytes), bytesOf(r.MaxEntrySizeBytes), bytesOf(int64(r.AvgEntrySizeBytes)))
	}
	if r.DecodeErrors > 0 {
		fmt.Fprintf(tw, "Decode errors:\t%s\n", count(r.DecodeErrors))
	}
	return tw.Flush()
}

func newLogStatusCommand(opts *LogOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize the log",
		Long: `Scan the whole log and report its index and position ranges, the highest
term and entry sizes.

Examples:
  zdb log status --path ./data/raft-partition/partitions/1
  zdb log status --path ./data/raft-partition/partitions/1 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.rejectDot(); err != nil {
				return err
			}
			opts.warnReadOnly(cmd)
			src, err := opts.openLog(cmd.Context(), opts.Path)
			if err != nil {
				return err
			}
			defer src.Close()

			status, err := inspect.ReadStatus(src.reader)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to read log", err)
			}
			return opts.formatter(cmd).Success(logStatusResult{
				Path:     opts.Path,
				Segments: src.journal.Segments(),
				Status:   status,
			})
		},
	}
}

// contentResult renders log content as text.
type contentResult struct {
	*inspect.Content
}

func (r contentResult) renderText(w io.Writer) error {
	for _, rec := range r.Records {
		writeRecordText(w, rec)
	}
	writeEntryErrors(w, r.Errors)
	return nil
}

func newLogPrintCommand(opts *LogOptions) *cobra.Command {
	var (
		from, to int64
		limit    int
		filter   string
	)
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print log entries",
		Long: `Print log entries with their decoded events.

--filter takes a CEL expression over index, term, kind, asqn, position,
sourcePosition, timestamp, key, recordType, valueType, intent and value.
Only matching events are printed.

Examples:
  zdb log print --path ./partitions/1 --from 100 --to 200
  zdb log print --path ./partitions/1 --filter 'valueType == "JOB" && intent == 1'
  zdb log print --path ./partitions/1 --format dot > log.dot`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := inspect.CompileFilter(filter)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --filter", err)
			}
			opts.warnReadOnly(cmd)
			src, err := opts.openLog(cmd.Context(), opts.Path)
			if err != nil {
				return err
			}
			defer src.Close()

			content, err := inspect.ReadContent(src.reader, inspect.Options{From: from, To: to, Filter: f, Limit: limit})
			if err != nil {
				return WrapExitError(ExitFailure, "failed to read log", err)
			}
			logger.FromContext(cmd.Context()).Debug("read log content",
				zap.Int("records", len(content.Records)),
				zap.Int("decodeErrors", len(content.Errors)))

			if opts.Format == "dot" {
				return inspect.WriteDOT(cmd.OutOrStdout(), content)
			}
			return opts.formatter(cmd).Success(contentResult{content})
		},
	}
	cmd.Flags().Int64Var(&from, "from", 0, "first index to print")
	cmd.Flags().Int64Var(&to, "to", 0, "last index to print (0 reads to the end)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of entries (0 is unlimited)")
	cmd.Flags().StringVar(&filter, "filter", "", "CEL expression selecting events")
	return cmd
}

// eventResult renders a single event found by position.
type eventResult struct {
	*inspect.Event
}

func (r eventResult) renderText(w io.Writer) error {
	writeEventText(w, r.Event)
	return nil
}

func newLogSearchCommand(opts *LogOptions) *cobra.Command {
	var position, index int64
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find a record by position or an entry by index",
		Long: `Find the record with the given position, or the entry with the given index.

Examples:
  zdb log search --path ./partitions/1 --position 4711
  zdb log search --path ./partitions/1 --index 12`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.rejectDot(); err != nil {
				return err
			}
			opts.warnReadOnly(cmd)
			src, err := opts.openLog(cmd.Context(), opts.Path)
			if err != nil {
				return err
			}
			defer src.Close()

			if cmd.Flags().Changed("position") {
				ev, err := inspect.SearchPosition(src.reader, position)
				if err != nil {
					return WrapExitError(ExitFailure, "failed to search log", err)
				}
				if ev == nil {
					return NewExitError(ExitFailure, fmt.Sprintf("no record with position %d", position))
				}
				return opts.formatter(cmd).Success(eventResult{ev})
			}

			content, err := inspect.SearchIndex(src.reader, index)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to search log", err)
			}
			if content == nil {
				return NewExitError(ExitFailure, fmt.Sprintf("no entry with index %d", index))
			}
			return opts.formatter(cmd).Success(contentResult{content})
		},
	}
	cmd.Flags().Int64Var(&position, "position", 0, "record position")
	cmd.Flags().Int64Var(&index, "index", 0, "entry index")
	cmd.MarkFlagsMutuallyExclusive("position", "index")
	cmd.MarkFlagsOneRequired("position", "index")
	return cmd
}

// exportResult reports a finished export.
type exportResult struct {
	ExportID string          `json:"exportId"`
	Output   string          `json:"output"`
	Entries  int64           `json:"entries"`
	Rows     store.RowCounts `json:"rows"`
}

func (r exportResult) renderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Exported %s entries to %s (export %s)\n", count(r.Entries), r.Output, r.ExportID)
	return err
}

func newLogExportCommand(opts *LogOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the log into a SQLite database",
		Long: `Write every entry and event of the log into a SQLite database.

Examples:
  zdb log export --path ./partitions/1 --out ./zdb.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.rejectDot(); err != nil {
				return err
			}
			opts.warnReadOnly(cmd)
			ctx := cmd.Context()
			src, err := opts.openLog(ctx, opts.Path)
			if err != nil {
				return err
			}
			defer src.Close()

			st, err := store.Open(out)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open export database", err)
			}
			defer st.Close()

			ex, err := st.BeginExport(ctx, store.KindLog, opts.Path)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to start export", err)
			}
			failed, err := inspect.Scan(src.reader, inspect.Options{}, func(rec inspect.Record) error {
				return ex.WriteLogEntry(ctx, rec)
			})
			for _, e := range failed {
				if err == nil {
					err = ex.WriteLogError(ctx, e)
				}
			}
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

func finishExport(cmd *cobra.Command, opts *RootOptions, st *store.Store, ex *store.Export, out string) error {
	rows, err := st.CountRows(cmd.Context(), ex.ID())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to count exported rows", err)
	}
	return opts.formatter(cmd).Success(exportResult{
		ExportID: ex.ID(),
		Output:   out,
		Entries:  ex.Count(),
		Rows:     rows,
	})
}
