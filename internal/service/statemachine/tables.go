package statemachine

import "github.com/m04kA/SMC-OrderService/internal/domain"

// transitionKey пара (текущий статус, действие)
type transitionKey struct {
	From   domain.OrderStatus
	Action domain.Action
}

// transitionRule целевой статус и роли, которым действие разрешено
type transitionRule struct {
	To    domain.OrderStatus
	Roles []domain.ActorRole
}

// transitionTable замкнутая таблица переходов одного типа услуги.
// Всё, чего нет в таблице - ErrInvalidTransition; никаких строковых
// статусов времени выполнения.
type transitionTable map[transitionKey]transitionRule

// sharedTransitions переходы, общие для всех типов услуг
func sharedTransitions() transitionTable {
	return transitionTable{
		// Завершение бронирования: платежный метод зарегистрирован
		{domain.StatusDraft, domain.ActionConfirmSetup}: {
			To:    domain.StatusAwaitingService,
			Roles: []domain.ActorRole{domain.RoleSystem},
		},
		{domain.StatusDraft, domain.ActionCancel}: {
			To:    domain.StatusCanceled,
			Roles: []domain.ActorRole{domain.RoleCustomer, domain.RoleAdmin, domain.RoleSystem},
		},
		{domain.StatusAwaitingService, domain.ActionCancel}: {
			To:    domain.StatusCanceled,
			Roles: []domain.ActorRole{domain.RoleCustomer, domain.RolePartner, domain.RoleAdmin},
		},

		// Котировка и списание
		{domain.StatusInService, domain.ActionSubmitQuote}: {
			To:    domain.StatusQuotePending,
			Roles: []domain.ActorRole{domain.RolePartner},
		},
		{domain.StatusQuotePending, domain.ActionStartCharge}: {
			To:    domain.StatusCharging,
			Roles: []domain.ActorRole{domain.RoleSystem},
		},
		{domain.StatusQuotePending, domain.ActionRequireApproval}: {
			To:    domain.StatusAwaitingApproval,
			Roles: []domain.ActorRole{domain.RoleSystem},
		},
		{domain.StatusAwaitingApproval, domain.ActionApproveQuote}: {
			To:    domain.StatusCharging,
			Roles: []domain.ActorRole{domain.RoleCustomer, domain.RoleAdmin},
		},
		{domain.StatusAwaitingApproval, domain.ActionCancel}: {
			To:    domain.StatusCanceled,
			Roles: []domain.ActorRole{domain.RoleCustomer, domain.RoleAdmin},
		},
		{domain.StatusCharging, domain.ActionChargeSucceeded}: {
			To:    domain.StatusCompleted,
			Roles: []domain.ActorRole{domain.RoleSystem},
		},
		{domain.StatusCharging, domain.ActionChargeFailed}: {
			To:    domain.StatusPaymentFailed,
			Roles: []domain.ActorRole{domain.RoleSystem},
		},

		// Восстановление после неуспешного списания (grace-период)
		{domain.StatusPaymentFailed, domain.ActionRetryCharge}: {
			To:    domain.StatusCharging,
			Roles: []domain.ActorRole{domain.RoleCustomer, domain.RoleAdmin, domain.RoleSystem},
		},
		{domain.StatusPaymentFailed, domain.ActionGraceExpired}: {
			To:    domain.StatusCanceled,
			Roles: []domain.ActorRole{domain.RoleSystem},
		},

		// Споры. DISPUTED поглощает котировочные действия: пока заказ
		// оспорен, пересмотр котировки не выполняется.
		{domain.StatusCompleted, domain.ActionOpenDispute}: {
			To:    domain.StatusDisputed,
			Roles: []domain.ActorRole{domain.RoleCustomer, domain.RoleAdmin},
		},
		{domain.StatusDisputed, domain.ActionResolveDispute}: {
			To:    domain.StatusCompleted,
			Roles: []domain.ActorRole{domain.RoleAdmin},
		},
		{domain.StatusDisputed, domain.ActionRefundDispute}: {
			To:    domain.StatusRefunded,
			Roles: []domain.ActorRole{domain.RoleAdmin, domain.RoleSystem},
		},
	}
}

// buildTables собирает таблицы переходов по типам услуг.
// Однофазная услуга начинается сразу на месте; многоэтапная проходит через
// EN_ROUTE и не может начать обслуживание, минуя выезд.
func buildTables() map[domain.ServiceType]transitionTable {
	cleaning := sharedTransitions()
	cleaning[transitionKey{domain.StatusAwaitingService, domain.ActionBeginService}] = transitionRule{
		To:    domain.StatusInService,
		Roles: []domain.ActorRole{domain.RolePartner},
	}

	washDeliver := sharedTransitions()
	washDeliver[transitionKey{domain.StatusAwaitingService, domain.ActionStartRoute}] = transitionRule{
		To:    domain.StatusEnRoute,
		Roles: []domain.ActorRole{domain.RolePartner},
	}
	washDeliver[transitionKey{domain.StatusEnRoute, domain.ActionBeginService}] = transitionRule{
		To:    domain.StatusInService,
		Roles: []domain.ActorRole{domain.RolePartner},
	}
	washDeliver[transitionKey{domain.StatusEnRoute, domain.ActionCancel}] = transitionRule{
		To:    domain.StatusCanceled,
		Roles: []domain.ActorRole{domain.RolePartner, domain.RoleAdmin},
	}

	return map[domain.ServiceType]transitionTable{
		domain.ServiceCleaning:    cleaning,
		domain.ServiceWashDeliver: washDeliver,
	}
}
