package paymentgw

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Metrics интерфейс для фиксации исходящих вызовов шлюза
type Metrics interface {
	ObserveGatewayCall(operation, result string)
}

// ProtectionConfig настройки circuit breaker и квоты исходящих вызовов
type ProtectionConfig struct {
	BreakerMaxRequests int           // пробные вызовы в half-open
	BreakerInterval    time.Duration // окно подсчета отказов в closed
	BreakerCooldown    time.Duration // пауза в open до перехода в half-open
	BreakerMinRequests int           // минимум вызовов до оценки доли отказов
	FailureRatio       float64       // доля отказов, открывающая breaker
	RatePerSecond      float64       // квота исходящих вызовов
	RateBurst          int
}

// ProtectedClient оборачивает Client circuit breaker-ом и менеджером квоты.
// Декоратор прозрачен для саги: его отказы приходят как ErrGatewayUnavailable
// и ErrRateLimited, которые сага трактует как транзиентные - полный abort
// с компенсацией, без точечных ретраев внутри шага.
//
// Отказ карты (ErrCardDeclined) - бизнес-ответ шлюза, а не его недоступность,
// поэтому breaker такие вызовы считает успешными.
type ProtectedClient struct {
	client  *Client
	breaker *gobreaker.CircuitBreaker[any]
	limiter *rate.Limiter
	metrics Metrics
	log     Logger
}

// NewProtectedClient создает защищенный клиент платежного шлюза
func NewProtectedClient(client *Client, cfg ProtectionConfig, metrics Metrics, log Logger) *ProtectedClient {
	settings := gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: uint32(cfg.BreakerMaxRequests),
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < uint32(cfg.BreakerMinRequests) {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrCardDeclined)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("paymentgw: circuit breaker %s: %s -> %s", name, from, to)
		},
	}

	return &ProtectedClient{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		metrics: metrics,
		log:     log,
	}
}

// CreateSetup см. Client.CreateSetup
func (p *ProtectedClient) CreateSetup(ctx context.Context, customerRef int64, instrumentRef string) (*SetupResult, error) {
	result, err := p.call(ctx, "create_setup", func() (any, error) {
		return p.client.CreateSetup(ctx, customerRef, instrumentRef)
	})
	if err != nil {
		return nil, err
	}
	return result.(*SetupResult), nil
}

// Charge см. Client.Charge
func (p *ProtectedClient) Charge(ctx context.Context, paymentMethodRef string, amount int64) (*ChargeResult, error) {
	result, err := p.call(ctx, "charge", func() (any, error) {
		return p.client.Charge(ctx, paymentMethodRef, amount)
	})
	if err != nil {
		return nil, err
	}
	return result.(*ChargeResult), nil
}

// Refund см. Client.Refund
func (p *ProtectedClient) Refund(ctx context.Context, chargeRef string, amount int64) (*RefundResult, error) {
	result, err := p.call(ctx, "refund", func() (any, error) {
		return p.client.Refund(ctx, chargeRef, amount)
	})
	if err != nil {
		return nil, err
	}
	return result.(*RefundResult), nil
}

// DetachPaymentMethod см. Client.DetachPaymentMethod
func (p *ProtectedClient) DetachPaymentMethod(ctx context.Context, paymentMethodRef string) error {
	_, err := p.call(ctx, "detach_payment_method", func() (any, error) {
		return nil, p.client.DetachPaymentMethod(ctx, paymentMethodRef)
	})
	return err
}

// call применяет квоту и breaker к одному исходящему вызову
func (p *ProtectedClient) call(ctx context.Context, operation string, fn func() (any, error)) (any, error) {
	if !p.limiter.Allow() {
		p.observe(operation, "rate_limited")
		return nil, fmt.Errorf("%w: outbound quota exhausted", ErrRateLimited)
	}

	result, err := p.breaker.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			p.observe(operation, "breaker_open")
			return nil, fmt.Errorf("%w: circuit breaker open", ErrGatewayUnavailable)
		}
		p.observe(operation, "error")
		return nil, err
	}

	p.observe(operation, "ok")
	return result, nil
}

func (p *ProtectedClient) observe(operation, result string) {
	if p.metrics != nil {
		p.metrics.ObserveGatewayCall(operation, result)
	}
}
