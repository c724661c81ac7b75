// Package main provides the askai CLI for querying OpenAI-compatible
// chat-completion APIs from the terminal.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"askai/internal/chat"
	"askai/internal/format"
	"askai/internal/store"
	"askai/internal/view"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "dev"

const (
	defaultEndpoint     = "https://api.openai.com/v1/chat/completions"
	defaultModel        = "gpt-4o-mini"
	defaultSystemPrompt = "You are a helpful assistant. Keep answers concise and put code in fenced blocks."
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "askai",
	Short:   "Ask an OpenAI-compatible chat API from your terminal",
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging on stderr")

	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newShowCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "askai: %v\n", err)
		os.Exit(1)
	}
}

// newLogger returns the CLI logger: console output on stderr when verbose,
// disabled otherwise.
func newLogger() zerolog.Logger {
	if !verbose {
		return zerolog.Nop()
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(writer).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

func newAskCmd() *cobra.Command {
	var (
		endpoint     string
		modelName    string
		systemPrompt string
		timeoutSec   int
		retries      int
		formatFlag   string
		wrap         int
		forceColor   bool
		forceNoColor bool
		noHistory    bool
		historyFile  string
	)

	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: "Send a prompt and render the formatted answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if forceColor && forceNoColor {
				return errors.New("--color and --no-color cannot be used together")
			}

			prompt, err := resolvePrompt(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			// The flag always carries an explicit value, so 0 here really
			// means no retries.
			retryCount := retries
			if retryCount == 0 {
				retryCount = -1
			}

			// Config is assembled once here; the chat client reads nothing
			// from the environment itself.
			cfg := chat.Config{
				Endpoint:     firstNonEmpty(endpoint, os.Getenv("ASKAI_ENDPOINT"), defaultEndpoint),
				APIKey:       os.Getenv("ASKAI_API_KEY"),
				Model:        firstNonEmpty(modelName, os.Getenv("ASKAI_MODEL"), defaultModel),
				SystemPrompt: firstNonEmpty(systemPrompt, os.Getenv("ASKAI_SYSTEM_PROMPT"), defaultSystemPrompt),
				Temperature:  chat.DefaultTemperature,
				Timeout:      time.Duration(timeoutSec) * time.Second,
				MaxRetries:   retryCount,
			}

			client := chat.NewClient(newLogger())
			if probeURL := os.Getenv("ASKAI_PROBE_URL"); probeURL != "" {
				client.ProbeURL = probeURL
			}

			outcome := client.Complete(cmd.Context(), prompt, cfg)
			blocks := format.Parse(outcome.Message())

			outFile, _ := cmd.OutOrStdout().(*os.File)
			if err := view.Render(view.Exchange{
				Prompt:    prompt,
				Blocks:    blocks,
				Timestamp: time.Now(),
			}, view.Options{
				Format:       formatFlag,
				Wrap:         wrap,
				ForceColor:   forceColor,
				ForceNoColor: forceNoColor,
				Out:          cmd.OutOrStdout(),
				OutFile:      outFile,
			}); err != nil {
				return err
			}

			if !noHistory {
				rec := store.NewRecord(cfg.Model, prompt, outcome.Message(), string(outcome.Kind))
				if err := store.Append(historyPath(historyFile), rec); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err) //nolint:errcheck
				}
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&endpoint, "endpoint", "", "chat completions URL (env: ASKAI_ENDPOINT)")
	flags.StringVar(&modelName, "model", "", "model identifier (env: ASKAI_MODEL)")
	flags.StringVar(&systemPrompt, "system", "", "system prompt (env: ASKAI_SYSTEM_PROMPT)")
	flags.IntVar(&timeoutSec, "timeout", 45, "request timeout in seconds")
	flags.IntVar(&retries, "retries", chat.DefaultMaxRetries, "transport retries after the first attempt")
	flags.StringVar(&formatFlag, "format", "text", "output format: text, chat, or json")
	flags.IntVar(&wrap, "wrap", 0, "wrap output at the given column width")
	flags.BoolVar(&forceColor, "color", false, "force-enable ANSI colors even when stdout is not a TTY")
	flags.BoolVar(&forceNoColor, "no-color", false, "disable ANSI colors regardless of terminal detection")
	flags.BoolVar(&noHistory, "no-history", false, "do not record the exchange in the history file")
	flags.StringVar(&historyFile, "history-file", "", "override the history file (default: ~/.askai/history.jsonl)")

	return cmd
}

func newHistoryCmd() *cobra.Command {
	var (
		limit       int
		afterStr    string
		beforeStr   string
		formatFlag  string
		noHeader    bool
		promptWidth int
		historyFile string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent exchanges in reverse chronological order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var after, before *time.Time
			if afterStr != "" {
				t, err := time.Parse(time.RFC3339, afterStr)
				if err != nil {
					return fmt.Errorf("invalid --after value: %w", err)
				}
				after = &t
			}
			if beforeStr != "" {
				t, err := time.Parse(time.RFC3339, beforeStr)
				if err != nil {
					return fmt.Errorf("invalid --before value: %w", err)
				}
				before = &t
			}

			result, err := store.List(historyPath(historyFile), store.ListOptions{
				After:     after,
				Before:    before,
				Limit:     limit,
				MaxPrompt: promptWidth,
			})
			if err != nil {
				return err
			}

			errs := cmd.ErrOrStderr()
			for _, warn := range result.Warnings {
				fmt.Fprintf(errs, "warning: %v\n", warn) //nolint:errcheck
			}

			includeHeader := !noHeader
			return format.WriteHistory(cmd.OutOrStdout(), result.Records, includeHeader, strings.ToLower(formatFlag))
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&limit, "limit", 0, "limit number of records returned (0 means no limit)")
	flags.StringVar(&afterStr, "after", "", "include exchanges on/after the given RFC3339 timestamp")
	flags.StringVar(&beforeStr, "before", "", "include exchanges on/before the given RFC3339 timestamp")
	flags.StringVar(&formatFlag, "format", "table", "output format: table, plain, json, or jsonl")
	flags.BoolVar(&noHeader, "no-header", false, "omit header row for plain output")
	flags.IntVar(&promptWidth, "prompt-width", 160, "maximum characters included in the prompt column")
	flags.StringVar(&historyFile, "history-file", "", "override the history file (default: ~/.askai/history.jsonl)")

	return cmd
}

func newShowCmd() *cobra.Command {
	var (
		formatFlag   string
		wrap         int
		forceColor   bool
		forceNoColor bool
		historyFile  string
	)

	cmd := &cobra.Command{
		Use:   "show <record-id>",
		Short: "Re-render a stored exchange",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if forceColor && forceNoColor {
				return errors.New("--color and --no-color cannot be used together")
			}

			rec, err := store.Find(historyPath(historyFile), args[0])
			if err != nil {
				return err
			}

			outFile, _ := cmd.OutOrStdout().(*os.File)
			return view.Render(view.Exchange{
				Prompt:    rec.Prompt,
				Blocks:    format.Parse(rec.Answer),
				Timestamp: rec.Timestamp,
			}, view.Options{
				Format:       formatFlag,
				Wrap:         wrap,
				ForceColor:   forceColor,
				ForceNoColor: forceNoColor,
				Out:          cmd.OutOrStdout(),
				OutFile:      outFile,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&formatFlag, "format", "text", "output format: text, chat, or json")
	flags.IntVar(&wrap, "wrap", 0, "wrap output at the given column width")
	flags.BoolVar(&forceColor, "color", false, "force-enable ANSI colors even when stdout is not a TTY")
	flags.BoolVar(&forceNoColor, "no-color", false, "disable ANSI colors regardless of terminal detection")
	flags.StringVar(&historyFile, "history-file", "", "override the history file (default: ~/.askai/history.jsonl)")

	return cmd
}

// resolvePrompt joins the argument words, falling back to reading stdin.
func resolvePrompt(in io.Reader, args []string) (string, error) {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt != "" {
		return prompt, nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read prompt from stdin: %w", err)
	}
	prompt = strings.TrimSpace(string(data))
	if prompt == "" {
		return "", errors.New("prompt is empty")
	}
	return prompt, nil
}

func historyPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return store.DefaultPath()
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
