// Package model provides the shared content types produced by the formatter
// and consumed by the renderers.
package model

// BlockKind discriminates the content block variants.
type BlockKind string

const (
	// BlockText is a literal prose/markdown span.
	BlockText BlockKind = "text"
	// BlockCode is a fenced code region.
	BlockCode BlockKind = "code"
)

// Block models one segment of an assistant reply. Blocks are immutable value
// objects; ordering within a slice matches document order.
type Block struct {
	Kind     BlockKind `json:"kind"`
	Language string    `json:"language,omitempty"`
	Text     string    `json:"text"`
}
