package transition_order

import (
	"time"

	"github.com/m04kA/SMC-OrderService/internal/domain"
)

// Request модель запроса на перевод заказа
type Request struct {
	OrderID int64
	Action  domain.Action
	ActorID int64
	Role    domain.ActorRole
	Comment *string // свободный комментарий инициатора, попадает в журнал переходов
}

// Response модель ответа со снимком заказа после перехода
type Response struct {
	OrderID        int64
	Status         string
	ServiceType    string
	EstimateAmount int64
	QuotedAmount   *int64
	GraceExpiresAt *time.Time
	UpdatedAt      time.Time
}

// fromOrder собирает ответ из заказа
func fromOrder(o *domain.Order) *Response {
	return &Response{
		OrderID:        o.ID,
		Status:         string(o.Status),
		ServiceType:    string(o.ServiceType),
		EstimateAmount: o.EstimateAmount,
		QuotedAmount:   o.QuotedAmount,
		GraceExpiresAt: o.GraceExpiresAt,
		UpdatedAt:      o.UpdatedAt,
	}
}
