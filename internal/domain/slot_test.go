package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustWindow(startHour, endHour int) TimeWindow {
	day := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	return TimeWindow{
		Start: day.Add(time.Duration(startHour) * time.Hour),
		End:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestTimeWindow_IsValid(t *testing.T) {
	assert.True(t, mustWindow(10, 12).IsValid())
	assert.False(t, mustWindow(12, 10).IsValid())
	// Пустое окно невалидно
	assert.False(t, mustWindow(10, 10).IsValid())
}

func TestTimeWindow_Overlaps(t *testing.T) {
	base := mustWindow(10, 14)

	// Частичное пересечение с обеих сторон
	assert.True(t, base.Overlaps(mustWindow(8, 11)))
	assert.True(t, base.Overlaps(mustWindow(13, 16)))

	// Полное вложение
	assert.True(t, base.Overlaps(mustWindow(11, 12)))

	// Полуинтервал: окна, соприкасающиеся границами, не пересекаются
	assert.False(t, base.Overlaps(mustWindow(8, 10)))
	assert.False(t, base.Overlaps(mustWindow(14, 16)))

	assert.False(t, base.Overlaps(mustWindow(6, 8)))
}

func TestTimeWindow_Contains(t *testing.T) {
	base := mustWindow(10, 14)

	assert.True(t, base.Contains(mustWindow(10, 14)))
	assert.True(t, base.Contains(mustWindow(11, 13)))

	// Пересечение без вложения - не containment
	assert.False(t, base.Contains(mustWindow(9, 13)))
	assert.False(t, base.Contains(mustWindow(11, 15)))
}

func TestCapacitySlot_IsFull(t *testing.T) {
	slot := CapacitySlot{MaxUnits: 3, ReservedUnits: 2}
	assert.False(t, slot.IsFull())
	assert.Equal(t, 1, slot.AvailableUnits())

	slot.ReservedUnits = 3
	assert.True(t, slot.IsFull())
	assert.Equal(t, 0, slot.AvailableUnits())
}

func TestOrder_QuoteVariancePercent(t *testing.T) {
	quoted := int64(12000)
	o := Order{EstimateAmount: 10000, QuotedAmount: &quoted}
	assert.InDelta(t, 20.0, o.QuoteVariancePercent(), 0.001)

	// Расхождение симметрично: котировка ниже сметы считается так же
	lower := int64(8500)
	o.QuotedAmount = &lower
	assert.InDelta(t, 15.0, o.QuoteVariancePercent(), 0.001)

	o.QuotedAmount = nil
	assert.Zero(t, o.QuoteVariancePercent())
}

func TestOrder_ChargeAmount(t *testing.T) {
	o := Order{EstimateAmount: 10000}
	assert.Equal(t, int64(10000), o.ChargeAmount())

	quoted := int64(11500)
	o.QuotedAmount = &quoted
	assert.Equal(t, int64(11500), o.ChargeAmount())
}

func TestSagaRun_IsStale(t *testing.T) {
	now := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)
	ttl := 10 * time.Minute

	run := SagaRun{Status: SagaInProgress, UpdatedAt: now.Add(-15 * time.Minute)}
	assert.True(t, run.IsStale(now, ttl))

	run.UpdatedAt = now.Add(-5 * time.Minute)
	assert.False(t, run.IsStale(now, ttl))

	// Терминальные саги не бывают брошенными
	run.Status = SagaSucceeded
	run.UpdatedAt = now.Add(-time.Hour)
	assert.False(t, run.IsStale(now, ttl))
}
