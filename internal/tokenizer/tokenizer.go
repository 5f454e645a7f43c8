// Package tokenizer counts model tokens with the tiktoken vocabularies.
package tokenizer

import (
	"fmt"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// ReferenceModel sizes chunks independently of the channel's chat model.
const ReferenceModel = "gpt-4o"

func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Counter resolves one encoder per model name and reuses it.
// A model whose vocabulary cannot be resolved is remembered as such and
// counted with the length heuristic.
type Counter struct {
	mu       sync.RWMutex
	encoders map[string]*tiktoken.Tiktoken
}

// New creates an empty Counter.
func New() *Counter {
	return &Counter{encoders: make(map[string]*tiktoken.Tiktoken)}
}

var defaultCounter = New()

// Count counts tokens with the process-wide counter.
func Count(text, model string) int {
	return defaultCounter.Count(text, model)
}

// Count returns the number of tokens of text for model. It never fails:
// without a vocabulary the estimate is one token per four characters.
func (c *Counter) Count(text, model string) int {
	if text == "" {
		return 0
	}
	enc := c.encoder(model)
	if enc == nil {
		return Estimate(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// Estimate is the length heuristic used when no vocabulary is available.
func Estimate(text string) int {
	return utf8.RuneCountInString(text) / 4
}

func (c *Counter) encoder(model string) *tiktoken.Tiktoken {
	c.mu.RLock()
	enc, ok := c.encoders[model]
	c.mu.RUnlock()
	if ok {
		return enc
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.encoders[model]; ok {
		return enc
	}
	enc, err := resolve(model)
	if err != nil {
		slog.Warn("tokenizer: vocabulary unavailable, using length estimate",
			slog.String("model", model), slog.String("error", err.Error()))
		enc = nil
	}
	c.encoders[model] = enc
	return enc
}

func resolve(model string) (enc *tiktoken.Tiktoken, err error) {
	defer func() {
		if r := recover(); r != nil {
			enc, err = nil, fmt.Errorf("load vocabulary: %v", r)
		}
	}()
	return tiktoken.EncodingForModel(model)
}
