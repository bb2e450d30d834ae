package payment_webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	handleEvent "github.com/m04kA/SMC-OrderService/internal/usecase/handle_event"
)

// MockHandleEventUseCase мок use case обработки событий
type MockHandleEventUseCase struct {
	mock.Mock
}

func (m *MockHandleEventUseCase) Execute(ctx context.Context, req *handleEvent.Request) (*handleEvent.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*handleEvent.Response), args.Error(1)
}

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

func postEvent(t *testing.T, h *Handler, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader(raw))
	if token != "" {
		req.Header.Set("X-Webhook-Token", token)
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandler_Handle_Success(t *testing.T) {
	uc := &MockHandleEventUseCase{}
	h := NewHandler(uc, "secret", noopLogger{})

	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *handleEvent.Request) bool {
		return req.EventID == "evt-1" && req.EventType == "charge.succeeded" && req.OrderID == 7
	})).Return(&handleEvent.Response{
		EventID:     "evt-1",
		Outcome:     handleEvent.OutcomeApplied,
		OrderStatus: "completed",
	}, nil)

	rec := postEvent(t, h, "secret", WebhookRequest{
		EventID:   "evt-1",
		EventType: "charge.succeeded",
		OrderID:   7,
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp WebhookResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, handleEvent.OutcomeApplied, resp.Outcome)
	assert.Equal(t, "completed", resp.OrderStatus)
	uc.AssertExpectations(t)
}

func TestHandler_Handle_InvalidToken(t *testing.T) {
	uc := &MockHandleEventUseCase{}
	h := NewHandler(uc, "secret", noopLogger{})

	rec := postEvent(t, h, "wrong", WebhookRequest{EventID: "evt-1", EventType: "charge.succeeded", OrderID: 7})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestHandler_Handle_MissingToken(t *testing.T) {
	uc := &MockHandleEventUseCase{}
	h := NewHandler(uc, "secret", noopLogger{})

	rec := postEvent(t, h, "", WebhookRequest{EventID: "evt-1", EventType: "charge.succeeded", OrderID: 7})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_Handle_TokenCheckDisabled(t *testing.T) {
	uc := &MockHandleEventUseCase{}
	h := NewHandler(uc, "", noopLogger{})

	uc.On("Execute", mock.Anything, mock.Anything).
		Return(&handleEvent.Response{EventID: "evt-1", Outcome: handleEvent.OutcomeDuplicate}, nil)

	rec := postEvent(t, h, "", WebhookRequest{EventID: "evt-1", EventType: "charge.succeeded", OrderID: 7})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_Handle_InvalidBody(t *testing.T) {
	uc := &MockHandleEventUseCase{}
	h := NewHandler(uc, "secret", noopLogger{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader([]byte("{broken")))
	req.Header.Set("X-Webhook-Token", "secret")
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestHandler_Handle_InvalidEvent(t *testing.T) {
	uc := &MockHandleEventUseCase{}
	h := NewHandler(uc, "secret", noopLogger{})

	uc.On("Execute", mock.Anything, mock.Anything).Return(nil, handleEvent.ErrInvalidInput)

	rec := postEvent(t, h, "secret", WebhookRequest{EventID: "", EventType: "charge.succeeded", OrderID: 7})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Handle_ProcessingFailureReturns500(t *testing.T) {
	uc := &MockHandleEventUseCase{}
	h := NewHandler(uc, "secret", noopLogger{})

	// 500 сигналит шлюзу доставить событие повторно
	uc.On("Execute", mock.Anything, mock.Anything).Return(nil, handleEvent.ErrInternal)

	rec := postEvent(t, h, "secret", WebhookRequest{EventID: "evt-1", EventType: "charge.succeeded", OrderID: 7})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
