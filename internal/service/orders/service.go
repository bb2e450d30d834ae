package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-OrderService/internal/domain"
	orderRepo "github.com/m04kA/SMC-OrderService/internal/infra/storage/order"
	"github.com/m04kA/SMC-OrderService/internal/service/orders/models"
)

// Service read-сторона заказов: карточка заказа, списки клиента и партнера,
// журнал переходов. Принадлежность заказа инициатору проверяется здесь.
type Service struct {
	repo   OrderRepository
	logger Logger
}

// NewService создает новый экземпляр Service
func NewService(repo OrderRepository, logger Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// GetByID возвращает заказ, если инициатор вправе его видеть:
// клиент видит свои заказы, партнер - свои, админ - любые.
func (s *Service) GetByID(ctx context.Context, id int64, actorID int64, role domain.ActorRole) (*models.OrderResponse, error) {
	o, err := s.getChecked(ctx, id, actorID, role)
	if err != nil {
		return nil, err
	}
	return models.FromDomain(o), nil
}

// GetCustomerOrders возвращает заказы клиента, опционально по статусу
func (s *Service) GetCustomerOrders(ctx context.Context, customerRef int64, status *domain.OrderStatus) (*models.OrderListResponse, error) {
	list, err := s.repo.GetByCustomer(ctx, customerRef, status)
	if err != nil {
		s.logger.Error("GetCustomerOrders - customer=%d: %v", customerRef, err)
		return nil, fmt.Errorf("%w: GetCustomerOrders: %v", ErrInternal, err)
	}
	return models.FromDomainList(list), nil
}

// GetProviderOrders возвращает заказы партнера по фильтру.
// Терминальные статусы по умолчанию скрыты.
func (s *Service) GetProviderOrders(ctx context.Context, filter domain.ProviderOrdersFilter) (*models.OrderListResponse, error) {
	list, err := s.repo.GetByProviderWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetProviderOrders - provider=%d: %v", filter.ProviderID, err)
		return nil, fmt.Errorf("%w: GetProviderOrders: %v", ErrInternal, err)
	}
	return models.FromDomainList(list), nil
}

// GetOrderEvents возвращает журнал переходов заказа с той же проверкой
// доступа, что и карточка заказа
func (s *Service) GetOrderEvents(ctx context.Context, id int64, actorID int64, role domain.ActorRole) (*models.OrderEventListResponse, error) {
	if _, err := s.getChecked(ctx, id, actorID, role); err != nil {
		return nil, err
	}

	events, err := s.repo.ListEvents(ctx, id)
	if err != nil {
		s.logger.Error("GetOrderEvents - order=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetOrderEvents: %v", ErrInternal, err)
	}
	return models.FromDomainEvents(events), nil
}

func (s *Service) getChecked(ctx context.Context, id int64, actorID int64, role domain.ActorRole) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, orderRepo.ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: id=%d", ErrOrderNotFound, id)
		}
		s.logger.Error("getChecked - failed to load order id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: getChecked: %v", ErrInternal, err)
	}

	if err := checkAccess(o, actorID, role); err != nil {
		return nil, err
	}
	return o, nil
}

func checkAccess(o *domain.Order, actorID int64, role domain.ActorRole) error {
	switch role {
	case domain.RoleAdmin, domain.RoleSystem:
		return nil
	case domain.RoleCustomer:
		if o.CustomerRef == actorID {
			return nil
		}
	case domain.RolePartner:
		if o.ProviderID == actorID {
			return nil
		}
	}
	return fmt.Errorf("%w: order id=%d actor=%d role=%s", ErrAccessDenied, o.ID, actorID, role)
}
