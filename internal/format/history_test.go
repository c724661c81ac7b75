package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"askai/internal/store"
)

func historyFixture() []store.Record {
	return []store.Record{
		{
			ID:        "b2c3d4e5-1111-2222-3333-444455556666",
			Timestamp: time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC),
			Model:     "gpt-4o-mini",
			Prompt:    "explain\ngoroutines",
			Answer:    "they are lightweight threads",
			Outcome:   "success",
		},
		{
			ID:        "a1b2c3d4-aaaa-bbbb-cccc-ddddeeeeffff",
			Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			Model:     "gpt-4o-mini",
			Prompt:    "what is Go?",
			Answer:    "",
			Outcome:   "rate_limited",
		},
	}
}

func TestWriteHistoryPlain(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, historyFixture(), true, "plain"); err != nil {
		t.Fatalf("write plain: %v", err)
	}

	want := "timestamp\tid\tmodel\toutcome\tprompt\n" +
		"2026-08-02T09:30:00Z\tb2c3d4e5\tgpt-4o-mini\tsuccess\texplain\\ngoroutines\n" +
		"2026-08-01T12:00:00Z\ta1b2c3d4\tgpt-4o-mini\trate_limited\twhat is Go?\n"
	if buf.String() != want {
		t.Fatalf("unexpected plain output:\n%s", buf.String())
	}
}

func TestWriteHistoryPlainNoHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, historyFixture(), false, "plain"); err != nil {
		t.Fatalf("write plain: %v", err)
	}
	if strings.Contains(buf.String(), "timestamp\tid") {
		t.Fatalf("header present despite includeHeader=false:\n%s", buf.String())
	}
}

func TestWriteHistoryTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, historyFixture(), true, "table"); err != nil {
		t.Fatalf("write table: %v", err)
	}

	out := buf.String()
	// StyleRounded upper-cases header cells.
	for _, want := range []string{"TIMESTAMP", "b2c3d4e5", "rate_limited", "what is Go?", "╭", "╰"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteHistoryTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, nil, true, "table"); err != nil {
		t.Fatalf("write table: %v", err)
	}
	if !strings.Contains(buf.String(), "(no records)") {
		t.Fatalf("empty table missing placeholder row:\n%s", buf.String())
	}
}

func TestWriteHistoryJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, historyFixture(), true, "json"); err != nil {
		t.Fatalf("write json: %v", err)
	}

	var decoded []store.Record
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(decoded))
	}
	if decoded[0].Prompt != "explain\ngoroutines" {
		t.Fatalf("prompt mangled in JSON output: %q", decoded[0].Prompt)
	}
}

func TestWriteHistoryJSONL(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, historyFixture(), true, "jsonl"); err != nil {
		t.Fatalf("write jsonl: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), buf.String())
	}
	for i, line := range lines {
		var rec store.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i+1, err)
		}
	}
}

func TestWriteHistoryUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHistory(&buf, historyFixture(), true, "yaml")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected unsupported-format error, got %v", err)
	}
}
