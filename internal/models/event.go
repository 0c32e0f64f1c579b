package models

import "time"

// EventType represents the kind of container movement.
type EventType string

const (
	EventTypeEntry       EventType = "entry"
	EventTypeExit        EventType = "exit"
	EventTypeMeasurement EventType = "measurement"
)

func (t EventType) String() string {
	return string(t)
}

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeEntry, EventTypeExit, EventTypeMeasurement:
		return true
	}
	return false
}

// Label returns the Portuguese display name.
func (t EventType) Label() string {
	switch t {
	case EventTypeEntry:
		return "Entrada"
	case EventTypeExit:
		return "Saída"
	case EventTypeMeasurement:
		return "Medição"
	default:
		return string(t)
	}
}

// Event is a recorded movement or measurement round for a container.
type Event struct {
	ID            string
	Type          EventType
	ContainerID   string
	ContainerCode string
	ClientName    string
	Date          time.Time
	Items         []EventItem
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
}

// EventItem is one line of an event.
type EventItem struct {
	PackingItemID string
	SKU           string
	Description   string
	Quantity      int
}

// TotalQuantity sums the quantities of the event lines.
func (e *Event) TotalQuantity() int {
	total := 0
	for _, item := range e.Items {
		total += item.Quantity
	}
	return total
}

// Clone returns a deep copy.
func (e *Event) Clone() *Event {
	cp := *e
	cp.Items = append([]EventItem(nil), e.Items...)
	return &cp
}

// Measurement is an immutable record of a manual measurement of one item.
type Measurement struct {
	ID            string
	ContainerID   string
	ContainerCode string
	ItemID        string
	SKU           string
	Date          time.Time
	Length        float64 // cm
	Width         float64 // cm
	Height        float64 // cm
	Weight        float64 // kg
	Volume        float64 // m3
	Notes         string
	MeasuredBy    string
	CreatedAt     time.Time
}

// Dimensions formats the measured dimensions as "LxWxH".
func (m *Measurement) Dimensions() string {
	return FormatDimensions(m.Length, m.Width, m.Height)
}

// Clone returns a copy.
func (m *Measurement) Clone() *Measurement {
	cp := *m
	return &cp
}
