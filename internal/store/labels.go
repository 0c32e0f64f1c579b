package store

import (
	"slices"

	"github.com/vectrastorage/vectra/internal/models"
)

// ============================================================================
// LABELS
// ============================================================================

// GenerateLabel records a label for one item.
func (s *Store) GenerateLabel(input LabelInput) (*models.Label, error) {
	typ := input.Type
	if typ == "" {
		typ = models.LabelTypeStorage
	}
	if !typ.Valid() {
		return nil, models.NewValidation("type", "tipo de etiqueta inválido: %s", typ)
	}
	if input.Quantity < 0 {
		return nil, models.NewValidation("quantity", "quantidade não pode ser negativa")
	}
	c := s.container(input.ContainerID)
	if c == nil {
		return nil, models.NewNotFound(models.EntityContainer, input.ContainerID)
	}
	item := c.Item(input.ItemID)
	if item == nil {
		return nil, models.NewNotFound(models.EntityItem, input.ItemID)
	}

	qty := input.Quantity
	if qty == 0 {
		qty = item.CurrentQuantity
	}
	location := item.Location
	if location == "" {
		location = models.DefaultLabelLocation
	}

	l := &models.Label{
		ID:            s.ids.NewID(),
		Type:          typ,
		ContainerID:   c.ID,
		ItemID:        item.ID,
		SKU:           item.SKU,
		Description:   item.DisplayDescription(),
		ContainerCode: c.Code,
		ClientName:    c.ClientName,
		Location:      location,
		Barcode:       models.Barcode(item.SKU),
		Weight:        item.UnitWeight,
		Dimensions:    item.Dimensions(),
		Quantity:      qty,
		CreatedAt:     s.clock.Now(),
	}
	s.labels = slices.Insert(s.labels, 0, l)

	s.record(models.ActionGenerateLabel, models.EntityLabel, l.ID, l.SKU, map[string]any{
		"type":      string(l.Type),
		"container": l.ContainerCode,
	})
	return l.Clone(), nil
}

// MarkLabelPrinted stamps a label as printed by user (default operator).
func (s *Store) MarkLabelPrinted(id, user string) (*models.Label, error) {
	var l *models.Label
	for _, candidate := range s.labels {
		if candidate.ID == id {
			l = candidate
			break
		}
	}
	if l == nil {
		return nil, models.NewNotFound(models.EntityLabel, id)
	}
	if user == "" {
		user = s.operator
	}

	now := s.clock.Now()
	l.PrintedAt = &now
	l.PrintedBy = user

	s.recordAs(user, models.ActionPrintLabel, models.EntityLabel, l.ID, l.SKU, map[string]any{
		"container": l.ContainerCode,
	})
	return l.Clone(), nil
}

// Label returns a label by id.
func (s *Store) Label(id string) (*models.Label, error) {
	for _, l := range s.labels {
		if l.ID == id {
			return l.Clone(), nil
		}
	}
	return nil, models.NewNotFound(models.EntityLabel, id)
}

// Labels returns all labels, newest first.
func (s *Store) Labels() []*models.Label {
	return cloneAll(s.labels, (*models.Label).Clone)
}
