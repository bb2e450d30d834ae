package domain

// Action действие над заказом, разрешенное таблицей переходов.
// Замкнутое перечисление вместо строковых ключей времени выполнения:
// опечатка в действии - ошибка компиляции, а не баг в продакшене.
type Action string

const (
	ActionConfirmSetup     Action = "confirm_setup"     // платежный метод зарегистрирован, заказ подтвержден
	ActionStartRoute       Action = "start_route"       // курьер выехал за вещами (только многоэтапные услуги)
	ActionBeginService     Action = "begin_service"     // услуга начата
	ActionSubmitQuote      Action = "submit_quote"      // партнер выставил финальную котировку
	ActionRequireApproval  Action = "require_approval"  // котировка превысила порог, нужна явная приемка
	ActionApproveQuote     Action = "approve_quote"     // клиент/админ принял котировку
	ActionStartCharge      Action = "start_charge"      // списание инициировано
	ActionChargeSucceeded  Action = "charge_succeeded"  // шлюз подтвердил списание
	ActionChargeFailed     Action = "charge_failed"     // шлюз отклонил списание
	ActionRetryCharge      Action = "retry_charge"      // повтор списания после замены платежного метода
	ActionGraceExpired     Action = "grace_expired"     // grace-период истек без оплаты
	ActionCancel           Action = "cancel"            // отмена до завершения
	ActionOpenDispute      Action = "open_dispute"      // клиент оспорил списание
	ActionResolveDispute   Action = "resolve_dispute"   // спор закрыт в пользу исходного списания
	ActionRefundDispute    Action = "refund_dispute"    // спор закрыт возвратом средств
)
