package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"github.com/linsalefe/pos-plataform/internal/domain"
	"github.com/linsalefe/pos-plataform/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockAIConfigService struct {
	mock.Mock
}

func (m *MockAIConfigService) Get(ctx context.Context, channelID int64) (*domain.AIConfig, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AIConfig), args.Error(1)
}

func (m *MockAIConfigService) Update(ctx context.Context, channelID int64, patch domain.AIConfigPatch) (*domain.AIConfig, error) {
	args := m.Called(ctx, channelID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AIConfig), args.Error(1)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, input service.UploadDocumentInput) (*service.UploadDocumentResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadDocumentResult), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, channelID int64) ([]domain.DocumentSummary, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentSummary), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, channelID int64, title string) (int64, error) {
	args := m.Called(ctx, channelID, title)
	return args.Get(0).(int64), args.Error(1)
}

type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) Toggle(ctx context.Context, contactID string, active bool) (*service.ContactState, error) {
	args := m.Called(ctx, contactID, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ContactState), args.Error(1)
}

type MockReplyService struct {
	mock.Mock
}

func (m *MockReplyService) Reply(ctx context.Context, in service.ReplyInput) (*service.ReplyResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReplyResult), args.Error(1)
}

func (m *MockReplyService) TestChat(ctx context.Context, in service.TestChatInput) (*service.TestChatResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TestChatResult), args.Error(1)
}

type MockSummaryService struct {
	mock.Mock
}

func (m *MockSummaryService) Summarize(ctx context.Context, contactID string) (string, bool, error) {
	args := m.Called(ctx, contactID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockSummaryService) Save(ctx context.Context, contactID string, channelID int64, summary string) error {
	args := m.Called(ctx, contactID, channelID, summary)
	return args.Error(0)
}

type MockCalendarService struct {
	mock.Mock
}

func (m *MockCalendarService) AvailableDates(ctx context.Context, daysAhead int) ([]domain.AvailableDate, error) {
	args := m.Called(ctx, daysAhead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AvailableDate), args.Error(1)
}

func (m *MockCalendarService) AvailableSlots(ctx context.Context, date string) ([]domain.TimeSlot, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TimeSlot), args.Error(1)
}

func (m *MockCalendarService) Book(ctx context.Context, b domain.Booking) (*domain.CreatedEvent, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreatedEvent), args.Error(1)
}

// newRequest builds a request carrying the given chi URL params.
func newRequest(method, target, body string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if len(params) == 0 {
		return req
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
