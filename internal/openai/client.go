package openai

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/linsalefe/pos-plataform/internal/domain"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// DefaultEmbeddingDimensions is the dimension of text-embedding-3-small vectors
	DefaultEmbeddingDimensions = 1536

	// blankContent stands in for an empty turn. The SDK drops an empty
	// content field and the API rejects an assistant turn without one.
	blankContent = " "
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when embedding has wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrZeroVector is returned when the backend answers with an all-zero vector
	ErrZeroVector = errors.New("embedding has zero norm")
)

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// ChatAPI defines the interface for chat completions.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req domain.CompletionRequest) (string, error)
}

// Client wraps the OpenAI API client. It is built once per process and
// shared by every component that embeds or generates text.
type Client struct {
	api        EmbeddingAPI
	chat       ChatAPI
	model      string
	dimensions int
}

type OpenAIAdapter struct {
	client  *openai.Client
	model   openai.EmbeddingModel
	limiter *rate.Limiter
}

func NewOpenAIAdapter(cfg Config) *OpenAIAdapter {
	model := cfg.EmbeddingModel
	if model == "" {
		model = DefaultEmbeddingModel
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond)*2+1)
	}
	return &OpenAIAdapter{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		limiter: limiter,
	}
}

func (a *OpenAIAdapter) wait(ctx context.Context) error {
	if a.limiter == nil {
		return nil
	}
	return a.limiter.Wait(ctx)
}

// CreateEmbeddings calls the OpenAI API to create embeddings
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: a.model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

// CreateChatCompletion runs one chat completion and returns the first
// choice's content. No choices yields an empty string.
func (a *OpenAIAdapter) CreateChatCompletion(ctx context.Context, req domain.CompletionRequest) (string, error) {
	if err := a.wait(ctx); err != nil {
		return "", err
	}
	resp, err := a.client.CreateChatCompletion(ctx, chatRequest(req))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func chatRequest(req domain.CompletionRequest) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		content := m.Content
		if content == "" {
			content = blankContent
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: content,
		})
	}
	return openai.ChatCompletionRequest{
		Model:               req.Model,
		Messages:            messages,
		Temperature:         wireTemperature(req.Temperature),
		MaxCompletionTokens: req.MaxTokens,
	}
}

// wireTemperature keeps a configured 0 on the wire. The SDK omits a zero
// temperature, which the API reads as its default of 1.
func wireTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

type Config struct {
	APIKey              string
	BaseURL             string
	EmbeddingModel      openai.EmbeddingModel
	EmbeddingDimensions int
	RequestsPerSecond   float64
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	adapter := NewOpenAIAdapter(cfg)
	return newClient(adapter, adapter, string(adapter.model), cfg.EmbeddingDimensions)
}

func newClient(api EmbeddingAPI, chat ChatAPI, model string, dimensions int) *Client {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	if model == "" {
		model = string(DefaultEmbeddingModel)
	}
	return &Client{
		api:        api,
		chat:       chat,
		model:      model,
		dimensions: dimensions,
	}
}

// EmbeddingModel returns the model every stored vector was produced with.
func (c *Client) EmbeddingModel() string {
	return c.model
}

// GenerateEmbedding generates an embedding for the given text. Every failure
// is reported as a *domain.EmbeddingError; the call is never retried.
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, c.embeddingError(ErrEmptyText)
	}

	embedding, err := c.api.CreateEmbeddings(ctx, text)
	if err != nil {
		return nil, c.embeddingError(fmt.Errorf("failed to create embedding: %w", err))
	}

	if len(embedding) != c.dimensions {
		return nil, c.embeddingError(fmt.Errorf("%w: expected %d, got %d", ErrWrongDimensions, c.dimensions, len(embedding)))
	}
	if domain.Norm(embedding) == 0 {
		return nil, c.embeddingError(ErrZeroVector)
	}

	return embedding, nil
}

// Complete runs one chat completion. An empty string with a nil error means
// the model produced no content.
func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	return c.chat.CreateChatCompletion(ctx, req)
}

func (c *Client) embeddingError(err error) error {
	return &domain.EmbeddingError{Model: c.model, Err: err}
}
