package models

import (
	"time"

	"github.com/m04kA/SMC-OrderService/internal/domain"
)

// OrderResponse карточка заказа для API
type OrderResponse struct {
	ID             int64   `json:"id"`
	Status         string  `json:"status"`
	CustomerRef    int64   `json:"customerRef"`
	ProviderID     int64   `json:"providerId"`
	ServiceType    string  `json:"serviceType"`
	WindowStart    string  `json:"windowStart"`
	WindowEnd      string  `json:"windowEnd"`
	EstimateAmount int64   `json:"estimateAmount"`
	QuotedAmount   *int64  `json:"quotedAmount,omitempty"`
	CardValidated  bool    `json:"cardValidated"`
	GraceExpiresAt *string `json:"graceExpiresAt,omitempty"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

// OrderListResponse список заказов
type OrderListResponse struct {
	Orders []*OrderResponse `json:"orders"`
	Total  int              `json:"total"`
}

// OrderEventResponse запись журнала переходов для API
type OrderEventResponse struct {
	ID         int64   `json:"id"`
	OrderID    int64   `json:"orderId"`
	FromStatus string  `json:"fromStatus"`
	ToStatus   string  `json:"toStatus"`
	Action     string  `json:"action"`
	ActorRole  string  `json:"actorRole"`
	Metadata   *string `json:"metadata,omitempty"`
	CreatedAt  string  `json:"createdAt"`
}

// OrderEventListResponse журнал переходов заказа
type OrderEventListResponse struct {
	Events []*OrderEventResponse `json:"events"`
	Total  int                   `json:"total"`
}

// FromDomain конвертирует доменный заказ в модель API
func FromDomain(o *domain.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:             o.ID,
		Status:         string(o.Status),
		CustomerRef:    o.CustomerRef,
		ProviderID:     o.ProviderID,
		ServiceType:    string(o.ServiceType),
		WindowStart:    o.WindowStart.Format(time.RFC3339),
		WindowEnd:      o.WindowEnd.Format(time.RFC3339),
		EstimateAmount: o.EstimateAmount,
		QuotedAmount:   o.QuotedAmount,
		CardValidated:  o.CardValidated,
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      o.UpdatedAt.Format(time.RFC3339),
	}
	if o.GraceExpiresAt != nil {
		s := o.GraceExpiresAt.Format(time.RFC3339)
		resp.GraceExpiresAt = &s
	}
	return resp
}

// FromDomainList конвертирует список заказов
func FromDomainList(orders []*domain.Order) *OrderListResponse {
	list := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		list = append(list, FromDomain(o))
	}
	return &OrderListResponse{Orders: list, Total: len(list)}
}

// FromDomainEvents конвертирует журнал переходов
func FromDomainEvents(events []*domain.OrderEvent) *OrderEventListResponse {
	list := make([]*OrderEventResponse, 0, len(events))
	for _, e := range events {
		list = append(list, &OrderEventResponse{
			ID:         e.ID,
			OrderID:    e.OrderID,
			FromStatus: string(e.FromStatus),
			ToStatus:   string(e.ToStatus),
			Action:     string(e.Action),
			ActorRole:  string(e.ActorRole),
			Metadata:   e.Metadata,
			CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		})
	}
	return &OrderEventListResponse{Events: list, Total: len(list)}
}
