package domain

// Default configuration values
const (
	DefaultVarianceThresholdPercent = 20.0
	DefaultGracePeriodHours         = 24
	DefaultReservationUnits         = 1
)

// Business validation constants
const (
	MinEstimateAmount = 1          // минорные единицы
	MaxEstimateAmount = 100000000  // 1 млн в основной валюте
	MaxWindowHours    = 12
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// TerminalStatuses статусы, после которых заказ не меняется
var TerminalStatuses = []OrderStatus{
	StatusCompleted,
	StatusCanceled,
	StatusRefunded,
}

// ActiveStatuses статусы заказов, удерживающих резерв ёмкости
var ActiveStatuses = []OrderStatus{
	StatusAwaitingService,
	StatusEnRoute,
	StatusInService,
	StatusQuotePending,
	StatusAwaitingApproval,
	StatusCharging,
	StatusPaymentFailed,
	StatusDisputed,
}
