package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"askai/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// WriteHistory writes history records to w in the requested format.
func WriteHistory(w io.Writer, records []store.Record, includeHeader bool, format string) error {
	format = strings.ToLower(format)
	switch format {
	case "", "table":
		return writeHistoryTable(w, records, includeHeader)
	case "plain":
		return writeHistoryPlain(w, records, includeHeader)
	case "json":
		return writeHistoryJSON(w, records)
	case "jsonl":
		return writeHistoryJSONL(w, records)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeHistoryPlain(w io.Writer, records []store.Record, includeHeader bool) error {
	if includeHeader {
		if _, err := fmt.Fprintln(w, "timestamp\tid\tmodel\toutcome\tprompt"); err != nil {
			return err
		}
	}

	for _, rec := range records {
		line := fmt.Sprintf(
			"%s\t%s\t%s\t%s\t%s",
			rec.Timestamp.Format(time.RFC3339),
			shortID(rec.ID),
			rec.Model,
			rec.Outcome,
			escapeNewlines(rec.Prompt),
		)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeHistoryJSON(w io.Writer, records []store.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func writeHistoryJSONL(w io.Writer, records []store.Record) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

func writeHistoryTable(w io.Writer, records []store.Record, includeHeader bool) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateRows = true
	tw.Style().Options.SeparateHeader = true
	tw.Style().Options.DrawBorder = true

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignCenter, AlignHeader: text.AlignCenter},
		{Number: 5, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 80},
	})

	if includeHeader {
		tw.AppendHeader(table.Row{"Timestamp", "ID", "Model", "Outcome", "Prompt"})
	}

	for _, rec := range records {
		tw.AppendRow(table.Row{
			rec.Timestamp.Format(time.RFC3339),
			shortID(rec.ID),
			rec.Model,
			rec.Outcome,
			escapeNewlines(rec.Prompt),
		})
	}

	if len(records) == 0 {
		tw.AppendRow(table.Row{"-", "(no records)", "-", "-", "-"})
	}

	_ = tw.Render()
	return nil
}

// shortID keeps the first UUID group; enough to address a record via show.
func shortID(id string) string {
	if idx := strings.IndexByte(id, '-'); idx > 0 {
		return id[:idx]
	}
	return id
}

func escapeNewlines(text string) string {
	return strings.ReplaceAll(text, "\n", "\\n")
}
