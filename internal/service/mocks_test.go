package service

import (
	"context"
	"sync"

	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockChunkStore struct {
	mock.Mock
}

func (m *MockChunkStore) ListChunksWithEmbedding(ctx context.Context, channelID int64) ([]domain.StoredChunk, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StoredChunk), args.Error(1)
}

func (m *MockChunkStore) ListDocuments(ctx context.Context, channelID int64) ([]domain.DocumentSummary, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentSummary), args.Error(1)
}

func (m *MockChunkStore) DeleteChunksByTitle(ctx context.Context, channelID int64, title string) (int64, error) {
	args := m.Called(ctx, channelID, title)
	return args.Get(0).(int64), args.Error(1)
}

type MockChunkWriter struct {
	mock.Mock
}

func (m *MockChunkWriter) InsertChunk(ctx context.Context, chunk *domain.DocumentChunk) error {
	args := m.Called(ctx, chunk)
	return args.Error(0)
}

func (m *MockChunkWriter) DeleteChunksByTitle(ctx context.Context, channelID int64, title string) (int64, error) {
	args := m.Called(ctx, channelID, title)
	return args.Get(0).(int64), args.Error(1)
}

type MockMessageWriter struct {
	mock.Mock
}

func (m *MockMessageWriter) InsertMessage(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockSummaryWriter struct {
	mock.Mock
}

func (m *MockSummaryWriter) RecordAIReply(ctx context.Context, contactID string, channelID int64, lead domain.LeadContext) error {
	args := m.Called(ctx, contactID, channelID, lead)
	return args.Error(0)
}

type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func (m *MockArchive) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	args := m.Called(ctx, prefix)
	return args.Int(0), args.Error(1)
}

type MockAIConfigStore struct {
	mock.Mock
}

func (m *MockAIConfigStore) GetAIConfig(ctx context.Context, channelID int64) (*domain.AIConfig, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AIConfig), args.Error(1)
}

func (m *MockAIConfigStore) UpsertAIConfig(ctx context.Context, cfg *domain.AIConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

type MockLeadStore struct {
	mock.Mock
}

func (m *MockLeadStore) GetContactName(ctx context.Context, contactID string) (string, bool, error) {
	args := m.Called(ctx, contactID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockLeadStore) GetLeadCourse(ctx context.Context, contactID string, channelID int64) (string, bool, error) {
	args := m.Called(ctx, contactID, channelID)
	return args.String(0), args.Bool(1), args.Error(2)
}

type MockMessageReader struct {
	mock.Mock
}

func (m *MockMessageReader) RecentMessages(ctx context.Context, contactID string, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, contactID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

type MockKnowledgeSearcher struct {
	mock.Mock
}

func (m *MockKnowledgeSearcher) Search(ctx context.Context, query string, channelID int64, topK int) ([]domain.ScoredChunk, error) {
	args := m.Called(ctx, query, channelID, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredChunk), args.Error(1)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) AvailableDates(ctx context.Context, calendarID string, daysAhead int) ([]domain.AvailableDate, error) {
	args := m.Called(ctx, calendarID, daysAhead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AvailableDate), args.Error(1)
}

func (m *MockScheduler) AvailableSlots(ctx context.Context, calendarID, date string) ([]domain.TimeSlot, error) {
	args := m.Called(ctx, calendarID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TimeSlot), args.Error(1)
}

func (m *MockScheduler) CreateEvent(ctx context.Context, calendarID string, event domain.CalendarEvent) (*domain.CreatedEvent, error) {
	args := m.Called(ctx, calendarID, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreatedEvent), args.Error(1)
}

type MockBooker struct {
	mock.Mock
}

func (m *MockBooker) Book(ctx context.Context, b domain.Booking) (*domain.CreatedEvent, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreatedEvent), args.Error(1)
}

type MockScheduleDetector struct {
	mock.Mock
}

func (m *MockScheduleDetector) DetectAndBook(ctx context.Context, reply string, lead domain.LeadContext, phone string) (*domain.CreatedEvent, error) {
	args := m.Called(ctx, reply, lead, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreatedEvent), args.Error(1)
}

type MockSummaryStore struct {
	mock.Mock
}

func (m *MockSummaryStore) UpdateSummary(ctx context.Context, contactID string, channelID int64, summary string) error {
	args := m.Called(ctx, contactID, channelID, summary)
	return args.Error(0)
}

func (m *MockSummaryStore) ListStale(ctx context.Context, limit int) ([]domain.ConversationSummary, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConversationSummary), args.Error(1)
}

type MockContactStore struct {
	mock.Mock
}

func (m *MockContactStore) SetAIActive(ctx context.Context, contactID string, active bool) (bool, error) {
	args := m.Called(ctx, contactID, active)
	return args.Bool(0), args.Error(1)
}

func (m *MockContactStore) HandOff(ctx context.Context, contactID string) (int64, bool, error) {
	args := m.Called(ctx, contactID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

type MockSummaryRefresher struct {
	mock.Mock
}

func (m *MockSummaryRefresher) Refresh(ctx context.Context, contactID string, channelID int64) (bool, error) {
	args := m.Called(ctx, contactID, channelID)
	return args.Bool(0), args.Error(1)
}

// scriptedBackend replays canned completions and records every request.
type scriptedBackend struct {
	mu       sync.Mutex
	replies  []scriptedReply
	requests []domain.CompletionRequest
}

type scriptedReply struct {
	text string
	err  error
}

func (b *scriptedBackend) Complete(_ context.Context, req domain.CompletionRequest) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req.Messages = append([]domain.Turn(nil), req.Messages...)
	b.requests = append(b.requests, req)
	if len(b.replies) == 0 {
		return "", nil
	}
	r := b.replies[0]
	b.replies = b.replies[1:]
	return r.text, r.err
}

func (b *scriptedBackend) calls() []domain.CompletionRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.CompletionRequest(nil), b.requests...)
}

func reply(text string) scriptedReply {
	return scriptedReply{text: text}
}

func failure(err error) scriptedReply {
	return scriptedReply{err: err}
}
