package execute_booking

import (
	"time"

	"github.com/m04kA/SMC-OrderService/internal/domain"
)

// Request модель запроса на бронирование
type Request struct {
	CustomerRef    int64              // ID клиента
	ProviderID     int64              // ID провайдера услуги
	ServiceType    domain.ServiceType // Тип услуги
	WindowStart    time.Time          // Начало окна обслуживания
	WindowEnd      time.Time          // Конец окна обслуживания (полуинтервал)
	EstimateAmount int64              // Предварительная смета в минорных единицах
	InstrumentRef  string             // Ссылка на платежный инструмент (токен карты)
}

// Window возвращает запрошенное окно обслуживания
func (r *Request) Window() domain.TimeWindow {
	return domain.TimeWindow{Start: r.WindowStart, End: r.WindowEnd}
}

// Response модель ответа с созданным заказом
type Response struct {
	OrderID        int64
	Status         string
	CustomerRef    int64
	ProviderID     int64
	ServiceType    string
	WindowStart    time.Time
	WindowEnd      time.Time
	EstimateAmount int64
	CardValidated  bool

	// Suspended == true: регистрация платежного метода ждет внеполосного
	// подтверждения (3-D Secure); заказ остается черновиком до callback-а
	Suspended       bool
	ClientActionURL *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// fromOrder собирает ответ из заказа
func fromOrder(o *domain.Order, suspended bool, clientActionURL *string) *Response {
	return &Response{
		OrderID:         o.ID,
		Status:          string(o.Status),
		CustomerRef:     o.CustomerRef,
		ProviderID:      o.ProviderID,
		ServiceType:     string(o.ServiceType),
		WindowStart:     o.WindowStart,
		WindowEnd:       o.WindowEnd,
		EstimateAmount:  o.EstimateAmount,
		CardValidated:   o.CardValidated,
		Suspended:       suspended,
		ClientActionURL: clientActionURL,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
