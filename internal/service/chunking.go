package service

import (
	"strings"

	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/linsalefe/pos-plataform/internal/tokenizer"
)

// DefaultChunkMaxTokens bounds the size of a knowledge chunk.
const DefaultChunkMaxTokens = 400

// TokenCounter counts tokens of text for a model.
type TokenCounter interface {
	Count(text, model string) int
}

// Chunker splits documents into paragraph-aligned chunks. Sizes are always
// measured with the reference model so that chunking is deterministic
// regardless of which chat model a channel uses.
type Chunker struct {
	counter   TokenCounter
	model     string
	maxTokens int
}

// NewChunker creates a Chunker. A non-positive maxTokens uses the default.
func NewChunker(counter TokenCounter, maxTokens int) *Chunker {
	if maxTokens <= 0 {
		maxTokens = DefaultChunkMaxTokens
	}
	return &Chunker{
		counter:   counter,
		model:     tokenizer.ReferenceModel,
		maxTokens: maxTokens,
	}
}

// MaxTokens returns the configured chunk budget.
func (c *Chunker) MaxTokens() int {
	return c.maxTokens
}

// Chunk greedily packs non-blank lines into chunks of at most maxTokens.
// A single line longer than the budget becomes its own oversized chunk.
// Blank input yields no chunks.
func (c *Chunker) Chunk(text, title string) []domain.ChunkDraft {
	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil
	}

	var drafts []domain.ChunkDraft
	seal := func(content string) {
		drafts = append(drafts, domain.ChunkDraft{
			Title:      title,
			Content:    content,
			ChunkIndex: len(drafts),
			TokenCount: c.counter.Count(content, c.model),
		})
	}

	current := ""
	for _, p := range paragraphs {
		candidate := p
		if current != "" {
			candidate = current + "\n" + p
		}
		if current != "" && c.counter.Count(candidate, c.model) > c.maxTokens {
			seal(current)
			current = p
			continue
		}
		current = candidate
	}
	if current != "" {
		seal(current)
	}

	return drafts
}

func splitParagraphs(text string) []string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if p := strings.TrimSpace(line); p != "" {
			out = append(out, p)
		}
	}
	return out
}
