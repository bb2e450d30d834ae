package submit_quote

import (
	"github.com/m04kA/SMC-OrderService/internal/domain"
	submitQuote "github.com/m04kA/SMC-OrderService/internal/usecase/submit_quote"
)

// SubmitQuoteRequest HTTP request model
type SubmitQuoteRequest struct {
	QuotedAmount int64 `json:"quotedAmount"`
}

// SubmitQuoteResponse HTTP response model
type SubmitQuoteResponse struct {
	OrderID          int64   `json:"orderId"`
	Status           string  `json:"status"`
	QuotedAmount     int64   `json:"quotedAmount"`
	EstimateAmount   int64   `json:"estimateAmount"`
	VariancePercent  float64 `json:"variancePercent"`
	RequiresApproval bool    `json:"requiresApproval"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *SubmitQuoteRequest) ToUseCaseRequest(orderID, actorID int64, role domain.ActorRole) *submitQuote.Request {
	return &submitQuote.Request{
		OrderID:      orderID,
		ActorID:      actorID,
		Role:         role,
		QuotedAmount: r.QuotedAmount,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *submitQuote.Response) *SubmitQuoteResponse {
	return &SubmitQuoteResponse{
		OrderID:          resp.OrderID,
		Status:           resp.Status,
		QuotedAmount:     resp.QuotedAmount,
		EstimateAmount:   resp.EstimateAmount,
		VariancePercent:  resp.VariancePercent,
		RequiresApproval: resp.RequiresApproval,
	}
}
