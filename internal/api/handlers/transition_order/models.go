package transition_order

import (
	"time"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	transitionOrder "github.com/m04kA/SMC-OrderService/internal/usecase/transition_order"
)

// TransitionRequest HTTP request model
type TransitionRequest struct {
	Action  string  `json:"action"`
	Comment *string `json:"comment,omitempty"`
}

// TransitionResponse HTTP response model
type TransitionResponse struct {
	OrderID        int64   `json:"orderId"`
	Status         string  `json:"status"`
	ServiceType    string  `json:"serviceType"`
	EstimateAmount int64   `json:"estimateAmount"`
	QuotedAmount   *int64  `json:"quotedAmount,omitempty"`
	GraceExpiresAt *string `json:"graceExpiresAt,omitempty"`
	UpdatedAt      string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *TransitionRequest) ToUseCaseRequest(orderID, actorID int64, role domain.ActorRole) *transitionOrder.Request {
	return &transitionOrder.Request{
		OrderID: orderID,
		Action:  domain.Action(r.Action),
		ActorID: actorID,
		Role:    role,
		Comment: r.Comment,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *transitionOrder.Response) *TransitionResponse {
	out := &TransitionResponse{
		OrderID:        resp.OrderID,
		Status:         resp.Status,
		ServiceType:    resp.ServiceType,
		EstimateAmount: resp.EstimateAmount,
		QuotedAmount:   resp.QuotedAmount,
		UpdatedAt:      resp.UpdatedAt.Format(time.RFC3339),
	}
	if resp.GraceExpiresAt != nil {
		s := resp.GraceExpiresAt.Format(time.RFC3339)
		out.GraceExpiresAt = &s
	}
	return out
}
