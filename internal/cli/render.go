package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Zelldon/zdb-sub001/internal/inspect"
)

var printer = message.NewPrinter(language.English)

// count formats n with thousands separators.
func count[T ~int | ~int64](n T) string {
	return printer.Sprintf("%d", int64(n))
}

func bytesOf[T ~int | ~int64](n T) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeRecordText(w io.Writer, rec inspect.Record) {
	if len(rec.Entries) == 0 {
		fmt.Fprintf(w, "index=%d term=%d %s", rec.Index, rec.Term, rec.Kind)
		if len(rec.Members) > 0 {
			ids := make([]string, 0, len(rec.Members))
			for _, m := range rec.Members {
				ids = append(ids, m.ID)
			}
			fmt.Fprintf(w, " members=%s", strings.Join(ids, ","))
		}
		fmt.Fprintln(w)
		return
	}
	for i := range rec.Entries {
		fmt.Fprintf(w, "index=%d term=%d ", rec.Index, rec.Term)
		writeEventText(w, &rec.Entries[i])
	}
}

func writeEventText(w io.Writer, ev *inspect.Event) {
	fmt.Fprintf(w, "position=%d source=%d key=%d %s %s intent=%d %s",
		ev.Position, ev.SourcePosition, ev.Key, ev.RecordType, ev.ValueType, ev.Intent, ev.Value)
	if ev.ValueError != "" {
		fmt.Fprintf(w, " (%s)", ev.ValueError)
	}
	fmt.Fprintln(w)
}

func writeEntryErrors(w io.Writer, failed []inspect.EntryError) {
	for _, e := range failed {
		fmt.Fprintf(w, "index=%d error: %s\n", e.Index, e.Error)
	}
}
