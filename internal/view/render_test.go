package view

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"askai/internal/model"
)

func sampleBlocks() []model.Block {
	return []model.Block{
		{Kind: model.BlockText, Text: "Here is an example:"},
		{Kind: model.BlockCode, Language: "go", Text: "package main\n\nfunc main() {}\n"},
		{Kind: model.BlockText, Text: "That is all."},
	}
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	err := Render(Exchange{Blocks: sampleBlocks()}, Options{
		Format:       "text",
		Wrap:         80,
		ForceNoColor: true,
		Out:          &buf,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Here is an example:", "That is all.", "─ go ", "package main", "func main() {}"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("colors present despite ForceNoColor:\n%q", out)
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	err := Render(Exchange{Blocks: sampleBlocks()}, Options{Format: "json", Out: &buf})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var decoded []model.Block
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(decoded))
	}
	if decoded[1].Language != "go" {
		t.Fatalf("code block lost its language: %+v", decoded[1])
	}
}

func TestRenderChatToBuffer(t *testing.T) {
	var buf bytes.Buffer
	err := Render(Exchange{
		Prompt:    "what is Go?",
		Blocks:    []model.Block{{Kind: model.BlockText, Text: "A programming language."}},
		Timestamp: time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC),
	}, Options{
		Format:       "chat",
		Wrap:         80,
		ForceNoColor: true,
		Out:          &buf,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"You · Aug 02 09:30", "Assistant · Aug 02 09:30", "what is Go?", "A programming language.", "╭", "╰"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Render(Exchange{}, Options{Format: "markdown", Out: &buf})
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected unsupported-format error, got %v", err)
	}
}

func TestRenderBlockLinesSeparatesBlocks(t *testing.T) {
	lines := renderBlockLines([]model.Block{
		{Kind: model.BlockText, Text: "a"},
		{Kind: model.BlockText, Text: "b"},
	}, 80, false)

	want := []string{"a", "", "b"}
	if len(lines) != len(want) {
		t.Fatalf("expected %v, got %v", want, lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestRenderCodeLinesNumbersAndBorders(t *testing.T) {
	block := model.Block{Kind: model.BlockCode, Language: "py", Text: "print(1)\nprint(2)\n"}
	lines := renderCodeLines(block, 80, false)

	if len(lines) != 4 {
		t.Fatalf("expected header, 2 code lines, footer; got %d lines: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "─ py ") {
		t.Fatalf("header missing language label: %q", lines[0])
	}
	if !strings.Contains(lines[1], "1  print(1)") {
		t.Fatalf("first line missing number: %q", lines[1])
	}
	if !strings.Contains(lines[2], "2  print(2)") {
		t.Fatalf("second line missing number: %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "╰") {
		t.Fatalf("footer missing: %q", lines[3])
	}
}

func TestRenderCodeLinesTruncatesWideLines(t *testing.T) {
	wide := strings.Repeat("x", 200)
	block := model.Block{Kind: model.BlockCode, Language: "text", Text: wide + "\n"}
	lines := renderCodeLines(block, 40, false)

	for _, line := range lines {
		if w := visibleWidth(line); w > 40 {
			t.Fatalf("line exceeds width %d: %q (%d)", 40, line, w)
		}
	}
}

func TestWrapText(t *testing.T) {
	cases := []struct {
		text  string
		width int
		want  []string
	}{
		{"abcdef", 3, []string{"abc", "def"}},
		{"short", 80, []string{"short"}},
		{"", 10, []string{""}},
		{"no wrap when width zero", 0, []string{"no wrap when width zero"}},
	}

	for _, tc := range cases {
		got := wrapText(tc.text, tc.width)
		if len(got) != len(tc.want) {
			t.Fatalf("wrapText(%q, %d) = %v, want %v", tc.text, tc.width, got, tc.want)
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Fatalf("wrapText(%q, %d)[%d] = %q, want %q", tc.text, tc.width, i, got[i], tc.want[i])
			}
		}
	}
}

func TestTruncateToWidthKeepsAnsiSequences(t *testing.T) {
	text := ansiUser + "colored" + ansiReset + " plain tail"
	got := truncateToWidth(text, 7)
	if visibleWidth(got) != 7 {
		t.Fatalf("expected visible width 7, got %d: %q", visibleWidth(got), got)
	}
	if !strings.HasPrefix(got, ansiUser) {
		t.Fatalf("leading ANSI sequence lost: %q", got)
	}
}

func TestVisibleWidthStripsAnsi(t *testing.T) {
	if w := visibleWidth(ansiUser + "abc" + ansiReset); w != 3 {
		t.Fatalf("expected width 3, got %d", w)
	}
}

func TestColorize(t *testing.T) {
	if got := colorize(false, ansiUser, "x"); got != "x" {
		t.Fatalf("disabled colorize altered text: %q", got)
	}
	if got := colorize(true, ansiUser, "x"); got != ansiUser+"x"+ansiReset {
		t.Fatalf("unexpected colorized text: %q", got)
	}
}
