//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"hash/fnv"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linsalefe/pos-plataform/internal/api/handlers"
	"github.com/linsalefe/pos-plataform/internal/metrics"
	"github.com/linsalefe/pos-plataform/internal/openai"
	"github.com/linsalefe/pos-plataform/internal/repository"
	"github.com/linsalefe/pos-plataform/internal/server"
	"github.com/linsalefe/pos-plataform/internal/service"
	"github.com/linsalefe/pos-plataform/internal/storage"
	"github.com/linsalefe/pos-plataform/internal/testutil"
	"github.com/linsalefe/pos-plataform/internal/tokenizer"
)

const (
	testToken   = "e2e-secret"
	testChannel = int64(2)
	testContact = "5511999990000"

	// pricingFact is what the fake model answers when the prompt carries the
	// pricing document.
	pricingFact = "Mensalidade R$ 499"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	Pool       *pgxpool.Pool
	S3Client   *storage.S3Client
	ServerURL  string
	Replies    *service.ReplyService
	Model      *fakeModel
	HTTPClient *http.Client
}

// SetupE2EEnv starts Postgres and RustFS, wires the services against a fake
// OpenAI-compatible backend and serves the router.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "leadbot-documents",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	model := newFakeModel()
	modelSrv := httptest.NewServer(model)

	testutil.SeedChannel(ctx, t, pool, testChannel)
	testutil.SeedContact(ctx, t, pool, testContact, "Maria Souza", testChannel)

	ai := openai.NewClientWithConfig(openai.Config{APIKey: "test", BaseURL: modelSrv.URL + "/v1"})
	m := metrics.New("leadbot_e2e")

	chunkRepo := repository.NewKnowledgeChunkRepository(pool)
	configRepo := repository.NewAIConfigRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	summaryRepo := repository.NewSummaryRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	generator := service.NewResponseGenerator(ai, service.GeneratorConfig{}, m)
	retriever := service.NewKnowledgeRetriever(chunkRepo, ai, 0)
	assembler := service.NewContextAssembler(configRepo, repository.NewLeadRepository(pool), messageRepo,
		retriever, nil, service.DefaultAssemblerConfig(), m)
	summaries := service.NewSummaryService(messageRepo, generator, summaryRepo)
	replies := service.NewReplyService(assembler, generator, nil, txRunner, m)
	knowledge := service.NewKnowledgeService(chunkRepo, txRunner,
		service.NewChunker(tokenizer.New(), 0), ai, s3Client, m)

	router := server.NewRouter(server.RouterConfig{
		AuthValidator:   service.NewTokenAuthService(map[string]string{"e2e": testToken}),
		MetricsHandler:  m.Handler(),
		AIConfigHandler: handlers.NewAIConfigHandler(service.NewAIConfigService(configRepo)),
		DocumentHandler: handlers.NewDocumentHandler(knowledge),
		ContactHandler:  handlers.NewContactHandler(service.NewContactService(repository.NewContactRepository(pool), summaries)),
		ChatHandler:     handlers.NewChatHandler(replies, testChannel),
		SummaryHandler:  handlers.NewSummaryHandler(summaries),
		CalendarHandler: handlers.NewCalendarHandler(service.NewCalendarService(nil, "", nil), "Victória Amorim"),
	})
	apiSrv := httptest.NewServer(router)

	t.Cleanup(func() {
		apiSrv.Close()
		replies.Wait()
		modelSrv.Close()
	})

	return &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		Pool:       pool,
		S3Client:   s3Client,
		ServerURL:  apiSrv.URL,
		Replies:    replies,
		Model:      model,
		HTTPClient: apiSrv.Client(),
	}
}

// Do sends an authenticated request and decodes a JSON response into out.
func (e *E2ETestEnv) Do(method, path string, body any, out any) int {
	e.T.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.T.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	return e.send(method, path, reader, "application/json", out)
}

func (e *E2ETestEnv) send(method, path string, body io.Reader, contentType string, out any) int {
	e.T.Helper()

	req, err := http.NewRequest(method, e.ServerURL+path, body)
	if err != nil {
		e.T.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		e.T.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			e.T.Fatalf("failed to decode response of %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

// fakeModel serves the OpenAI embeddings and chat completion endpoints.
// Embeddings are a hashed bag of words so that texts sharing words are close.
type fakeModel struct {
	chatCalls atomic.Int32
	// emptyNext makes the next completion return no content.
	emptyNext atomic.Bool
}

func newFakeModel() *fakeModel {
	return &fakeModel{}
}

func (f *fakeModel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/embeddings"):
		f.embeddings(w, r)
	case strings.HasSuffix(r.URL.Path, "/chat/completions"):
		f.chat(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeModel) embeddings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Input []string `json:"input"`
		Model string   `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data := make([]map[string]any, 0, len(req.Input))
	for i, text := range req.Input {
		data = append(data, map[string]any{
			"object":    "embedding",
			"index":     i,
			"embedding": bagOfWords(text),
		})
	}
	writeJSON(w, map[string]any{"object": "list", "model": req.Model, "data": data})
}

func (f *fakeModel) chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.chatCalls.Add(1)
	content := "Posso te ajudar com mais alguma dúvida?"
	if len(req.Messages) > 0 && strings.Contains(req.Messages[0].Content, pricingFact) {
		content = "A mensalidade é R$ 499."
	}
	if f.emptyNext.CompareAndSwap(true, false) {
		content = ""
	}

	writeJSON(w, map[string]any{
		"id":     "chatcmpl-e2e",
		"object": "chat.completion",
		"model":  req.Model,
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
}

func bagOfWords(text string) []float32 {
	v := make([]float32, openai.DefaultEmbeddingDimensions)
	v[0] = 0.01
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(word, ".,!?:;")))
		v[1+int(h.Sum32())%(len(v)-1)]++
	}
	return v
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
