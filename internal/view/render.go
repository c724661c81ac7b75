// Package view renders parsed answer blocks for the terminal.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"askai/internal/model"

	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Options defines the configurable parameters for rendering an exchange.
type Options struct {
	Format       string // text, chat, or json
	Wrap         int
	ForceColor   bool
	ForceNoColor bool
	Out          io.Writer
	OutFile      *os.File
}

// Exchange is one prompt/answer pair ready for display.
type Exchange struct {
	Prompt    string
	Blocks    []model.Block
	Timestamp time.Time
}

// Render writes the exchange according to the provided options.
func Render(ex Exchange, opts Options) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	formatMode := strings.ToLower(opts.Format)
	if formatMode == "" {
		formatMode = "text"
	}

	switch formatMode {
	case "text":
		useColor := resolveColorChoice(opts)
		width := determineWidth(opts.OutFile, opts.Wrap)
		return writeLines(opts.Out, renderBlockLines(ex.Blocks, width, useColor))

	case "chat":
		useColor := resolveColorChoice(opts)
		width := determineWidth(opts.OutFile, opts.Wrap)
		lines := renderChatExchange(ex, width, useColor)
		if len(lines) == 0 {
			return nil
		}
		if opts.OutFile != nil && isatty.IsTerminal(opts.OutFile.Fd()) {
			return pipeThroughPager(lines, useColor)
		}
		return writeLines(opts.Out, lines)

	case "json":
		enc := json.NewEncoder(opts.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(ex.Blocks)

	default:
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

// renderBlockLines renders blocks in document order, separated by blank
// lines. Text blocks wrap at width; code blocks become bordered boxes.
func renderBlockLines(blocks []model.Block, width int, useColor bool) []string {
	if width <= 0 {
		width = 80
	}

	lines := make([]string, 0, len(blocks)*4)
	for idx, block := range blocks {
		if idx > 0 {
			lines = append(lines, "")
		}
		switch block.Kind {
		case model.BlockCode:
			lines = append(lines, renderCodeLines(block, width, useColor)...)
		default:
			for _, raw := range strings.Split(block.Text, "\n") {
				lines = append(lines, wrapText(raw, width)...)
			}
		}
	}
	return lines
}

// renderCodeLines draws a code block as a box with a language label and
// right-aligned line numbers. Lines wider than the box are truncated.
func renderCodeLines(block model.Block, width int, useColor bool) []string {
	source := strings.TrimSuffix(block.Text, "\n")
	codeLines := strings.Split(source, "\n")
	numWidth := len(strconv.Itoa(len(codeLines)))

	innerWidth := 0
	for _, line := range codeLines {
		if w := visibleWidth(line); w > innerWidth {
			innerWidth = w
		}
	}

	gutter := numWidth + 2
	maxInner := width - gutter - 4
	if maxInner < 8 {
		maxInner = 8
	}
	if innerWidth > maxInner {
		innerWidth = maxInner
	}
	contentWidth := gutter + innerWidth

	label := block.Language
	headerPlain := "─ " + label + " "
	fill := contentWidth + 2 - visibleWidth(headerPlain)
	if fill < 0 {
		fill = 0
	}

	header := headerPlain
	if useColor {
		header = "─ " + colorize(true, ansiLanguage, label) + " "
	}

	border := func(s string) string { return colorize(useColor, ansiSeparator, s) }

	rows := make([]string, 0, len(codeLines)+2)
	rows = append(rows, border("╭")+header+border(strings.Repeat("─", fill)+"╮"))
	for i, line := range codeLines {
		if visibleWidth(line) > innerWidth {
			line = truncateToWidth(line, innerWidth)
		}
		pad := innerWidth - visibleWidth(line)
		num := fmt.Sprintf("%*d", numWidth, i+1)
		if useColor {
			num = colorize(true, ansiLineNumber, num)
		}
		rows = append(rows, fmt.Sprintf("%s %s  %s%s %s",
			border("│"), num, line, strings.Repeat(" ", pad), border("│")))
	}
	rows = append(rows, border("╰"+strings.Repeat("─", contentWidth+2)+"╯"))
	return rows
}

func writeLines(out io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

func determineWidth(out *os.File, wrap int) int {
	if wrap > 0 {
		return wrap
	}
	if out != nil {
		if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if colsStr := os.Getenv("COLUMNS"); colsStr != "" {
		if v, err := strconv.Atoi(colsStr); err == nil && v > 0 {
			return v
		}
	}
	return 80
}

func pipeThroughPager(lines []string, colorEnabled bool) error {
	text := strings.Join(lines, "\n")
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	pagerCmd := os.Getenv("PAGER")
	var cmd *exec.Cmd
	if pagerCmd == "" {
		args := []string{"less"}
		if colorEnabled {
			args = append(args, "-R")
		}
		cmd = exec.Command(args[0], args[1:]...) // #nosec G204
	} else {
		cmd = exec.Command("sh", "-c", pagerCmd) // #nosec G204
	}

	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create pager pipe: %w", err)
	}
	go func() {
		defer stdin.Close()
		io.WriteString(stdin, text) //nolint:errcheck
	}()

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run pager: %w", err)
	}

	return nil
}

const (
	ansiReset      = "\x1b[0m"
	ansiTimestamp  = "\x1b[38;5;245m"
	ansiSeparator  = "\x1b[38;5;240m"
	ansiAssistant  = "\x1b[38;5;44m"
	ansiUser       = "\x1b[38;5;220m"
	ansiLanguage   = "\x1b[38;5;44m"
	ansiLineNumber = "\x1b[38;5;245m"
)

func colorize(enabled bool, code string, text string) string {
	if !enabled {
		return text
	}
	return code + text + ansiReset
}

func resolveColorChoice(opts Options) bool {
	if opts.ForceColor {
		return true
	}
	if opts.ForceNoColor {
		return false
	}
	return shouldUseColorAuto(opts.Out)
}

func shouldUseColorAuto(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func visibleWidth(text string) int {
	clean := ansiPattern.ReplaceAllString(text, "")
	return runewidth.StringWidth(clean)
}
