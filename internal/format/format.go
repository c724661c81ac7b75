// Package format provides assistant reply segmentation and history output
// formatting.
package format

import (
	"regexp"
	"strings"

	"askai/internal/model"
)

// fencePattern matches one fenced code region: three backticks, an optional
// language tag, a newline, the body, and the closing backticks.
var fencePattern = regexp.MustCompile("(?s)```([A-Za-z0-9+#]*)\n(.*?)```")

// Parse splits an assistant reply into ordered text and code blocks. Text
// around fenced regions is trimmed and whitespace-only gaps are dropped.
// Input without a fenced region comes back as a single text block. Parse is
// pure and safe for concurrent use.
func Parse(content string) []model.Block {
	if content == "" {
		return nil
	}

	matches := fencePattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return []model.Block{{Kind: model.BlockText, Text: content}}
	}

	blocks := make([]model.Block, 0, len(matches)*2+1)
	cursor := 0
	for _, m := range matches {
		blocks = appendText(blocks, content[cursor:m[0]])

		language := content[m[2]:m[3]]
		if language == "" {
			language = "text"
		}
		blocks = append(blocks, model.Block{
			Kind:     model.BlockCode,
			Language: language,
			Text:     content[m[4]:m[5]],
		})
		cursor = m[1]
	}
	blocks = appendText(blocks, content[cursor:])

	return blocks
}

// appendText adds a text block for segment unless it is empty after trimming.
func appendText(blocks []model.Block, segment string) []model.Block {
	trimmed := strings.TrimSpace(segment)
	if trimmed == "" {
		return blocks
	}
	return append(blocks, model.Block{Kind: model.BlockText, Text: trimmed})
}
