package execute_booking

import "context"

// compensation компенсирующее действие одного завершенного шага саги
type compensation struct {
	step string
	fn   func(ctx context.Context) error
}

// compensationStack явный стек компенсаций: после каждого успешного шага
// сюда кладется его отмена, при провале стек разматывается в строго
// обратном порядке.
type compensationStack struct {
	items   []compensation
	metrics Metrics
	logger  Logger
}

func newCompensationStack(metrics Metrics, logger Logger) *compensationStack {
	return &compensationStack{
		items:   make([]compensation, 0, 4),
		metrics: metrics,
		logger:  logger,
	}
}

// push добавляет компенсацию завершенного шага
func (s *compensationStack) push(step string, fn func(ctx context.Context) error) {
	s.items = append(s.items, compensation{step: step, fn: fn})
}

// unwind выполняет компенсации в обратном порядке.
// Провал компенсации логируется и эскалируется метрикой, но размотка
// продолжается: висящий резерв или платежный метод - инцидент целостности
// данных, его нельзя молча проглотить, но и бросать остальные компенсации
// из-за него нельзя.
func (s *compensationStack) unwind(ctx context.Context) {
	for i := len(s.items) - 1; i >= 0; i-- {
		c := s.items[i]
		if err := c.fn(ctx); err != nil {
			s.logger.Error("compensation failed: step=%s error=%v - requires operator attention", c.step, err)
			if s.metrics != nil {
				s.metrics.ObserveCompensationFailure(c.step)
			}
			continue
		}
		s.logger.Info("compensation applied: step=%s", c.step)
	}
	s.items = s.items[:0]
}
