package execute_booking

import (
	"time"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	executeBooking "github.com/m04kA/SMC-OrderService/internal/usecase/execute_booking"
)

// ExecuteBookingRequest HTTP request model
type ExecuteBookingRequest struct {
	ProviderID     int64  `json:"providerId"`
	ServiceType    string `json:"serviceType"`
	WindowStart    string `json:"windowStart"` // RFC3339
	WindowEnd      string `json:"windowEnd"`   // RFC3339
	EstimateAmount int64  `json:"estimateAmount"`
	InstrumentRef  string `json:"instrumentRef"`
}

// OrderResponse HTTP response model
type OrderResponse struct {
	ID              int64   `json:"id"`
	Status          string  `json:"status"`
	CustomerRef     int64   `json:"customerRef"`
	ProviderID      int64   `json:"providerId"`
	ServiceType     string  `json:"serviceType"`
	WindowStart     string  `json:"windowStart"`
	WindowEnd       string  `json:"windowEnd"`
	EstimateAmount  int64   `json:"estimateAmount"`
	CardValidated   bool    `json:"cardValidated"`
	Suspended       bool    `json:"suspended"`
	ClientActionURL *string `json:"clientActionUrl,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *ExecuteBookingRequest) ToUseCaseRequest(customerRef int64) (*executeBooking.Request, error) {
	windowStart, err := time.Parse(time.RFC3339, r.WindowStart)
	if err != nil {
		return nil, err
	}
	windowEnd, err := time.Parse(time.RFC3339, r.WindowEnd)
	if err != nil {
		return nil, err
	}

	return &executeBooking.Request{
		CustomerRef:    customerRef,
		ProviderID:     r.ProviderID,
		ServiceType:    domain.ServiceType(r.ServiceType),
		WindowStart:    windowStart,
		WindowEnd:      windowEnd,
		EstimateAmount: r.EstimateAmount,
		InstrumentRef:  r.InstrumentRef,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *executeBooking.Response) *OrderResponse {
	return &OrderResponse{
		ID:              resp.OrderID,
		Status:          resp.Status,
		CustomerRef:     resp.CustomerRef,
		ProviderID:      resp.ProviderID,
		ServiceType:     resp.ServiceType,
		WindowStart:     resp.WindowStart.Format(time.RFC3339),
		WindowEnd:       resp.WindowEnd.Format(time.RFC3339),
		EstimateAmount:  resp.EstimateAmount,
		CardValidated:   resp.CardValidated,
		Suspended:       resp.Suspended,
		ClientActionURL: resp.ClientActionURL,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
