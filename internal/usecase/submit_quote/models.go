package submit_quote

import (
	"github.com/m04kA/SMC-OrderService/internal/domain"
)

// Request модель запроса на выставление котировки
type Request struct {
	OrderID      int64
	ActorID      int64            // ID инициатора (партнер или админ)
	Role         domain.ActorRole // Роль инициатора
	QuotedAmount int64            // Финальная котировка в минорных единицах
}

// Response модель ответа с исходом котировки
type Response struct {
	OrderID         int64
	Status          string
	QuotedAmount    int64
	EstimateAmount  int64
	VariancePercent float64

	// RequiresApproval == true: расхождение превысило порог, списание
	// отложено до явной приемки котировки клиентом
	RequiresApproval bool
}

// fromOrder собирает ответ из заказа
func fromOrder(o *domain.Order, requiresApproval bool) *Response {
	return &Response{
		OrderID:          o.ID,
		Status:           string(o.Status),
		QuotedAmount:     o.ChargeAmount(),
		EstimateAmount:   o.EstimateAmount,
		VariancePercent:  o.QuoteVariancePercent(),
		RequiresApproval: requiresApproval,
	}
}
