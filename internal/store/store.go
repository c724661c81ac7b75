// Package store persists the prompt/answer history as an append-only JSONL
// file.
package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNoHistory is returned by Last when the history file is empty or absent.
var ErrNoHistory = errors.New("history is empty")

// Record is one stored exchange. Failed calls are stored too; the outcome
// label tells them apart from answers.
type Record struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model"`
	Prompt    string    `json:"prompt"`
	Answer    string    `json:"answer"`
	Outcome   string    `json:"outcome"`
}

// NewRecord builds a Record with a fresh id and the current time.
func NewRecord(model, prompt, answer, outcome string) Record {
	return Record{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Model:     model,
		Prompt:    prompt,
		Answer:    answer,
		Outcome:   outcome,
	}
}

// DefaultPath returns the history file location, honoring ASKAI_HISTORY_FILE.
func DefaultPath() string {
	if path := os.Getenv("ASKAI_HISTORY_FILE"); path != "" {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".askai", "history.jsonl")
}

// Append writes rec as one JSONL line, creating the file and its parent
// directory when missing.
func Append(path string, rec Record) error {
	if path == "" {
		return errors.New("history path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(rec); err != nil {
		return fmt.Errorf("append history record: %w", err)
	}
	return nil
}

// ListOptions controls how history records are enumerated.
type ListOptions struct {
	After     *time.Time
	Before    *time.Time
	Limit     int
	MaxPrompt int
}

// ListResult contains records (newest first) and non-fatal warnings.
type ListResult struct {
	Records  []Record
	Warnings []error
}

// List reads the history file according to opts. A missing file yields an
// empty result. Corrupt lines are skipped and reported as warnings.
func List(path string, opts ListOptions) (ListResult, error) {
	var result ListResult

	err := iterate(path, func(line int, rec Record, parseErr error) {
		if parseErr != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("history line %d: %w", line, parseErr))
			return
		}
		if opts.After != nil && rec.Timestamp.Before(*opts.After) {
			return
		}
		if opts.Before != nil && rec.Timestamp.After(*opts.Before) {
			return
		}
		if opts.MaxPrompt > 0 {
			rec.Prompt = clip(rec.Prompt, opts.MaxPrompt)
		}
		result.Records = append(result.Records, rec)
	})
	if err != nil {
		return result, err
	}

	sort.SliceStable(result.Records, func(i, j int) bool {
		return result.Records[i].Timestamp.After(result.Records[j].Timestamp)
	})

	if opts.Limit > 0 && len(result.Records) > opts.Limit {
		result.Records = result.Records[:opts.Limit]
	}

	return result, nil
}

// Last returns the most recent record.
func Last(path string) (Record, error) {
	res, err := List(path, ListOptions{Limit: 1})
	if err != nil {
		return Record{}, err
	}
	if len(res.Records) == 0 {
		return Record{}, ErrNoHistory
	}
	return res.Records[0], nil
}

// Find returns the unique record whose id starts with idPrefix.
func Find(path, idPrefix string) (Record, error) {
	if idPrefix == "" {
		return Record{}, errors.New("record id is required")
	}

	var matches []Record
	err := iterate(path, func(_ int, rec Record, parseErr error) {
		if parseErr != nil {
			return
		}
		if strings.HasPrefix(rec.ID, idPrefix) {
			matches = append(matches, rec)
		}
	})
	if err != nil {
		return Record{}, err
	}

	switch len(matches) {
	case 0:
		return Record{}, fmt.Errorf("no history record matches %q", idPrefix)
	case 1:
		return matches[0], nil
	default:
		return Record{}, fmt.Errorf("record id %q is ambiguous (%d matches)", idPrefix, len(matches))
	}
}

func iterate(path string, fn func(line int, rec Record, parseErr error)) error {
	if path == "" {
		return errors.New("history path is required")
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open history file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	// Allow large answers such as long code listings.
	const maxCapacity = 8 * 1024 * 1024
	scanner.Buffer(make([]byte, 1024), maxCapacity)

	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			fn(line, Record{}, err)
			continue
		}
		fn(line, rec, nil)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan history: %w", err)
	}
	return nil
}

func clip(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen == 1 {
		return "…"
	}
	return string(runes[:maxLen-1]) + "…"
}
