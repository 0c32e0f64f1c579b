package store

import (
	"slices"
	"strings"

	"github.com/vectrastorage/vectra/internal/models"
)

// ============================================================================
// EVENTS
// ============================================================================

// AddEvent records a movement for a container. Entry events add to the
// current quantity of each referenced item, exit events subtract from it
// (never below zero) and measurement events only record history.
//
// Every referenced item must belong to the event's container; all of them
// are resolved before any quantity changes. An entry that would take the
// current quantity above the item quantity raises the quantity with it.
func (s *Store) AddEvent(input EventInput) (*models.Event, error) {
	if !input.Type.Valid() {
		return nil, models.NewValidation("type", "tipo de evento inválido: %s", input.Type)
	}
	c := s.container(input.ContainerID)
	if c == nil {
		return nil, models.NewNotFound(models.EntityContainer, input.ContainerID)
	}
	if len(input.Items) == 0 {
		return nil, models.NewValidation("items", "evento sem itens")
	}

	targets := make([]*models.PackingItem, len(input.Items))
	for i, in := range input.Items {
		if in.Quantity <= 0 {
			return nil, models.NewValidation("quantity", "quantidade deve ser positiva (item %d)", i+1)
		}
		item, err := resolveItem(c, in.PackingItemID, in.SKU)
		if err != nil {
			return nil, err
		}
		targets[i] = item
	}

	now := s.clock.Now()
	lines := make([]models.EventItem, len(input.Items))
	resized := false
	for i, in := range input.Items {
		item := targets[i]
		switch input.Type {
		case models.EventTypeEntry:
			item.CurrentQuantity += in.Quantity
			if item.CurrentQuantity > item.Quantity {
				item.Quantity = item.CurrentQuantity
				item.Recalculate()
				resized = true
			}
			item.UpdatedAt = now
		case models.EventTypeExit:
			item.CurrentQuantity = max(item.CurrentQuantity-in.Quantity, 0)
			item.UpdatedAt = now
		}
		lines[i] = models.EventItem{
			PackingItemID: item.ID,
			SKU:           item.SKU,
			Description:   item.DisplayDescription(),
			Quantity:      in.Quantity,
		}
	}
	if resized {
		c.Recalculate()
	}
	if input.Type != models.EventTypeMeasurement {
		c.UpdatedAt = now
	}

	date := input.Date
	if date.IsZero() {
		date = now
	}
	createdBy := input.CreatedBy
	if createdBy == "" {
		createdBy = s.operator
	}

	e := &models.Event{
		ID:            s.ids.NewID(),
		Type:          input.Type,
		ContainerID:   c.ID,
		ContainerCode: c.Code,
		ClientName:    c.ClientName,
		Date:          date,
		Items:         lines,
		Notes:         input.Notes,
		CreatedBy:     createdBy,
		CreatedAt:     now,
	}
	s.events = slices.Insert(s.events, 0, e)

	s.record(eventAction(input.Type), models.EntityEvent, e.ID, c.Code, map[string]any{
		"items":    len(lines),
		"quantity": e.TotalQuantity(),
	})
	return e.Clone(), nil
}

func eventAction(t models.EventType) string {
	switch t {
	case models.EventTypeEntry:
		return models.ActionRegisterEntry
	case models.EventTypeExit:
		return models.ActionRegisterExit
	default:
		return models.ActionRegisterMeasure
	}
}

// resolveItem finds an item of c by id, else by SKU.
func resolveItem(c *models.Container, itemID, sku string) (*models.PackingItem, error) {
	if itemID != "" {
		if item := c.Item(itemID); item != nil {
			return item, nil
		}
		return nil, models.NewNotFound(models.EntityItem, itemID)
	}
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, models.NewValidation("sku", "item não informado")
	}
	if item := c.ItemBySKU(sku); item != nil {
		return item, nil
	}
	return nil, models.NewNotFound(models.EntityItem, sku)
}

// Events returns all events, newest first.
func (s *Store) Events() []*models.Event {
	return cloneAll(s.events, (*models.Event).Clone)
}

// EventsByContainer returns the events of one container, newest first.
func (s *Store) EventsByContainer(containerID string) []*models.Event {
	var out []*models.Event
	for _, e := range s.events {
		if e.ContainerID == containerID {
			out = append(out, e.Clone())
		}
	}
	return out
}

// ============================================================================
// MEASUREMENTS
// ============================================================================

// AddMeasurement records a manual measurement of one item. Dimensions must be
// positive and weight non-negative; the volume is derived.
func (s *Store) AddMeasurement(input MeasurementInput) (*models.Measurement, error) {
	if input.Length <= 0 || input.Width <= 0 || input.Height <= 0 {
		return nil, models.NewValidation("dimensions", "dimensões devem ser positivas")
	}
	if input.Weight < 0 {
		return nil, models.NewValidation("weight", "peso não pode ser negativo")
	}
	c := s.container(input.ContainerID)
	if c == nil {
		return nil, models.NewNotFound(models.EntityContainer, input.ContainerID)
	}
	item, err := resolveItem(c, input.ItemID, input.SKU)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	date := input.Date
	if date.IsZero() {
		date = now
	}
	measuredBy := input.MeasuredBy
	if measuredBy == "" {
		measuredBy = s.operator
	}

	m := &models.Measurement{
		ID:            s.ids.NewID(),
		ContainerID:   c.ID,
		ContainerCode: c.Code,
		ItemID:        item.ID,
		SKU:           item.SKU,
		Date:          date,
		Length:        input.Length,
		Width:         input.Width,
		Height:        input.Height,
		Weight:        input.Weight,
		Volume:        models.UnitVolumeM3(input.Length, input.Width, input.Height),
		Notes:         input.Notes,
		MeasuredBy:    measuredBy,
		CreatedAt:     now,
	}
	s.measurements = slices.Insert(s.measurements, 0, m)

	s.record(models.ActionRegisterMeasure, models.EntityMeasurement, m.ID, item.SKU, map[string]any{
		"container":  c.Code,
		"dimensions": m.Dimensions(),
		"weight":     m.Weight,
	})
	return m.Clone(), nil
}

// Measurements returns all measurements, newest first.
func (s *Store) Measurements() []*models.Measurement {
	return cloneAll(s.measurements, (*models.Measurement).Clone)
}

// MeasurementsByContainer returns the measurements of one container, newest
// first.
func (s *Store) MeasurementsByContainer(containerID string) []*models.Measurement {
	var out []*models.Measurement
	for _, m := range s.measurements {
		if m.ContainerID == containerID {
			out = append(out, m.Clone())
		}
	}
	return out
}
