package domain

import "time"

// TimeWindow полуинтервал [Start, End)
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// IsValid returns true if the window is non-empty
func (w TimeWindow) IsValid() bool {
	return w.Start.Before(w.End)
}

// Overlaps reports whether two half-open windows intersect:
// [a,b) and [c,d) overlap iff a < d && c < b.
// Touching boundaries (b == c) do not overlap, so two windows
// may legitimately share a start or end instant.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Contains reports whether other lies entirely inside w
func (w TimeWindow) Contains(other TimeWindow) bool {
	return !other.Start.Before(w.Start) && !other.End.After(w.End)
}

// CapacitySlot represents a bookable window of provider capacity
type CapacitySlot struct {
	ID            int64
	ProviderID    int64
	ServiceType   ServiceType
	WindowStart   time.Time
	WindowEnd     time.Time
	MaxUnits      int
	ReservedUnits int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Window возвращает временное окно слота
func (s *CapacitySlot) Window() TimeWindow {
	return TimeWindow{Start: s.WindowStart, End: s.WindowEnd}
}

// IsFull returns true if the slot has no free units
func (s *CapacitySlot) IsFull() bool {
	return s.ReservedUnits >= s.MaxUnits
}

// AvailableUnits возвращает число свободных единиц ёмкости
func (s *CapacitySlot) AvailableUnits() int {
	if s.ReservedUnits >= s.MaxUnits {
		return 0
	}
	return s.MaxUnits - s.ReservedUnits
}

// ReservationToken подтверждение резервирования единицы ёмкости.
// Release по токену идемпотентен: повторный вызов - no-op.
type ReservationToken struct {
	ID         string // uuid
	SlotID     int64
	ProviderID int64
	Units      int
	Released   bool
	CreatedAt  time.Time
}
