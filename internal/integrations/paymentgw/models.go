package paymentgw

// Статусы операций платежного шлюза
const (
	StatusSucceeded      = "succeeded"
	StatusPending        = "pending"
	StatusRequiresAction = "requires_action"
	StatusDeclined       = "declined"
)

// SetupResult результат регистрации платежного метода (нулевая авторизация).
// При Status == requires_action клиенту нужно пройти внеполосную проверку
// (3-D Secure): ClientActionURL ведет на challenge, итог придет webhook-событием.
type SetupResult struct {
	PaymentMethodRef   string  `json:"payment_method_ref"`
	PaymentCustomerRef string  `json:"payment_customer_ref"`
	ConfirmationID     string  `json:"confirmation_id"`
	Status             string  `json:"status"`
	ClientActionURL    *string `json:"client_action_url,omitempty"`
}

// ChargeResult результат списания
type ChargeResult struct {
	ChargeRef string `json:"charge_ref"`
	Status    string `json:"status"`
}

// RefundResult результат возврата
type RefundResult struct {
	RefundRef string `json:"refund_ref"`
	Status    string `json:"status"`
}

// setupRequest тело запроса регистрации платежного метода
type setupRequest struct {
	CustomerRef   int64  `json:"customer_ref"`
	InstrumentRef string `json:"instrument_ref"`
	RequestID     string `json:"request_id"`
}

// chargeRequest тело запроса списания
type chargeRequest struct {
	PaymentMethodRef string `json:"payment_method_ref"`
	Amount           int64  `json:"amount"`
	RequestID        string `json:"request_id"`
}

// refundRequest тело запроса возврата
type refundRequest struct {
	ChargeRef string `json:"charge_ref"`
	Amount    int64  `json:"amount"`
	RequestID string `json:"request_id"`
}

// gatewayError тело ошибки шлюза
type gatewayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
