package domain

import "time"

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	StatusDraft            OrderStatus = "draft"
	StatusAwaitingService  OrderStatus = "awaiting_service"
	StatusEnRoute          OrderStatus = "en_route"
	StatusInService        OrderStatus = "in_service"
	StatusQuotePending     OrderStatus = "quote_pending"
	StatusAwaitingApproval OrderStatus = "awaiting_approval"
	StatusCharging         OrderStatus = "charging"
	StatusCompleted        OrderStatus = "completed"
	StatusCanceled         OrderStatus = "canceled"
	StatusDisputed         OrderStatus = "disputed"
	StatusRefunded         OrderStatus = "refunded"
	StatusPaymentFailed    OrderStatus = "payment_failed"
)

// ServiceType determines which subset of the status graph an order uses
type ServiceType string

const (
	// ServiceCleaning однофазная услуга на месте (уборка, химчистка на дому)
	ServiceCleaning ServiceType = "cleaning"
	// ServiceWashDeliver многоэтапная услуга с забором и доставкой
	ServiceWashDeliver ServiceType = "wash_and_deliver"
)

// ActorRole роль инициатора действия над заказом
type ActorRole string

const (
	RoleCustomer ActorRole = "customer"
	RolePartner  ActorRole = "partner"
	RoleAdmin    ActorRole = "admin"
	RoleSystem   ActorRole = "system"
)

// Order represents a service order with deferred, quote-determined payment
type Order struct {
	ID          int64
	Version     int64
	CustomerRef int64
	ProviderID  int64
	ServiceType ServiceType
	Status      OrderStatus

	WindowStart time.Time
	WindowEnd   time.Time

	// Money in minor units
	EstimateAmount int64
	QuotedAmount   *int64 // set once at quote submission, immutable afterwards

	PaymentMethodRef    *string
	PaymentCustomerRef  *string
	SetupConfirmationID *string
	CardValidated       bool

	ReservationID string // capacity reservation backing this order

	GraceExpiresAt *time.Time // set when a charge fails, cleared on recovery

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Window возвращает временное окно заказа
func (o *Order) Window() TimeWindow {
	return TimeWindow{Start: o.WindowStart, End: o.WindowEnd}
}

// IsTerminal returns true if the order reached a terminal status
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case StatusCompleted, StatusCanceled, StatusRefunded:
		return true
	default:
		return false
	}
}

// IsConfirmed returns true once the booking transaction committed
func (o *Order) IsConfirmed() bool {
	return o.Status != StatusDraft && o.Status != StatusCanceled
}

// HasQuote returns true if a final quote has been submitted
func (o *Order) HasQuote() bool {
	return o.QuotedAmount != nil
}

// ChargeAmount возвращает сумму к списанию: котировку, если она есть, иначе смету
func (o *Order) ChargeAmount() int64 {
	if o.QuotedAmount != nil {
		return *o.QuotedAmount
	}
	return o.EstimateAmount
}

// QuoteVariancePercent относительное расхождение котировки и сметы в процентах.
// Возвращает 0, если котировки нет или смета нулевая.
func (o *Order) QuoteVariancePercent() float64 {
	if o.QuotedAmount == nil || o.EstimateAmount == 0 {
		return 0
	}
	diff := *o.QuotedAmount - o.EstimateAmount
	if diff < 0 {
		diff = -diff
	}
	return float64(diff) / float64(o.EstimateAmount) * 100
}

// ProviderOrdersFilter фильтр для заказов партнера
type ProviderOrdersFilter struct {
	ProviderID      int64
	Status          *OrderStatus
	WindowFrom      *time.Time
	WindowTo        *time.Time
	IncludeTerminal bool
}
