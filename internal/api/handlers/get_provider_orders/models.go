package get_provider_orders

import (
	"strconv"
	"time"

	"github.com/m04kA/SMC-OrderService/internal/domain"
)

// ToProviderFilter собирает фильтр сервиса из path и query параметров
func ToProviderFilter(providerID int64, statusStr, fromStr, toStr, includeTerminalStr string) (domain.ProviderOrdersFilter, error) {
	filter := domain.ProviderOrdersFilter{ProviderID: providerID}

	if statusStr != "" {
		status := domain.OrderStatus(statusStr)
		filter.Status = &status
	}

	if fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return filter, err
		}
		filter.WindowFrom = &from
	}

	if toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return filter, err
		}
		filter.WindowTo = &to
	}

	if includeTerminalStr != "" {
		include, err := strconv.ParseBool(includeTerminalStr)
		if err != nil {
			return filter, err
		}
		filter.IncludeTerminal = include
	}

	return filter, nil
}
