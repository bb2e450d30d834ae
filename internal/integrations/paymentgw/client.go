package paymentgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент платежного шлюза: регистрация платежного метода (нулевая
// авторизация), списание, возврат, отвязка метода.
// В рабочей конфигурации всегда оборачивается в ProtectedClient.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента платежного шлюза
func NewClient(baseURL, apiKey string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// CreateSetup регистрирует платежный инструмент клиента у шлюза нулевой
// авторизацией и возвращает долговременный payment_method_ref.
// Может вернуть Status == requires_action: это не отказ, а ожидание
// внеполосного подтверждения.
func (c *Client) CreateSetup(ctx context.Context, customerRef int64, instrumentRef string) (*SetupResult, error) {
	body := setupRequest{
		CustomerRef:   customerRef,
		InstrumentRef: instrumentRef,
		RequestID:     uuid.NewString(),
	}

	var result SetupResult
	if err := c.post(ctx, "/v1/setups", body, &result); err != nil {
		return nil, err
	}

	if result.Status == StatusDeclined {
		return nil, ErrCardDeclined
	}

	return &result, nil
}

// Charge инициирует списание с зарегистрированного платежного метода.
// Списание асинхронно: Status == pending означает, что итог придет
// webhook-событием charge.succeeded / charge.failed.
func (c *Client) Charge(ctx context.Context, paymentMethodRef string, amount int64) (*ChargeResult, error) {
	body := chargeRequest{
		PaymentMethodRef: paymentMethodRef,
		Amount:           amount,
		RequestID:        uuid.NewString(),
	}

	var result ChargeResult
	if err := c.post(ctx, "/v1/charges", body, &result); err != nil {
		return nil, err
	}

	if result.Status == StatusDeclined {
		return nil, ErrCardDeclined
	}

	return &result, nil
}

// Refund возвращает средства по списанию
func (c *Client) Refund(ctx context.Context, chargeRef string, amount int64) (*RefundResult, error) {
	body := refundRequest{
		ChargeRef: chargeRef,
		Amount:    amount,
		RequestID: uuid.NewString(),
	}

	var result RefundResult
	if err := c.post(ctx, "/v1/refunds", body, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// DetachPaymentMethod отвязывает платежный метод.
// Идемпотентен на стороне шлюза; используется компенсацией саги.
func (c *Client) DetachPaymentMethod(ctx context.Context, paymentMethodRef string) error {
	url := fmt.Sprintf("%s/v1/payment_methods/%s", c.baseURL, paymentMethodRef)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusNoContent, resp.StatusCode == http.StatusNotFound:
		// 404 считаем успехом: метод уже отвязан
		return nil
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: detach returned status %d", ErrGatewayUnavailable, resp.StatusCode)
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: detach returned status %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}
}

// post выполняет POST запрос к шлюзу и декодирует ответ
func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusCreated:
		// Продолжаем обработку
	case resp.StatusCode == http.StatusPaymentRequired, resp.StatusCode == http.StatusUnprocessableEntity:
		var gwErr gatewayError
		if err := json.NewDecoder(resp.Body).Decode(&gwErr); err == nil && gwErr.Code != "" {
			return fmt.Errorf("%w: %s", ErrCardDeclined, gwErr.Message)
		}
		return ErrCardDeclined
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: gateway returned 429", ErrRateLimited)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: gateway returned status %d", ErrGatewayUnavailable, resp.StatusCode)
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}
