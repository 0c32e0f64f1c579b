package store

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vectrastorage/vectra/internal/models"
)

// ============================================================================
// CLIENTS
// ============================================================================

// AddClient registers a client.
func (s *Store) AddClient(input ClientInput) (*models.Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, models.NewValidation("name", "nome do cliente é obrigatório")
	}

	now := s.clock.Now()
	c := &models.Client{
		ID:        s.ids.NewID(),
		Name:      name,
		TaxID:     input.TaxID,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.clients = append(s.clients, c)
	s.record(models.ActionCreateClient, models.EntityClient, c.ID, c.Name, nil)
	return c.Clone(), nil
}

// UpdateClient applies patch to a client. A new name is copied to the
// client's containers and invoices.
func (s *Store) UpdateClient(id string, patch ClientPatch) (*models.Client, error) {
	c := s.client(id)
	if c == nil {
		return nil, models.NewNotFound(models.EntityClient, id)
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, models.NewValidation("name", "nome do cliente é obrigatório")
	}

	if patch.Name != nil {
		c.Name = strings.TrimSpace(*patch.Name)
		for _, ct := range s.containers {
			if ct.ClientID == id {
				ct.ClientName = c.Name
			}
		}
		for _, inv := range s.invoices {
			if inv.ClientID == id {
				inv.ClientName = c.Name
			}
		}
	}
	setIf(&c.TaxID, patch.TaxID)
	setIf(&c.Email, patch.Email)
	setIf(&c.Phone, patch.Phone)
	setIf(&c.Address, patch.Address)
	c.UpdatedAt = s.clock.Now()

	s.record(models.ActionUpdateClient, models.EntityClient, c.ID, c.Name, nil)
	return c.Clone(), nil
}

// Client returns a client by id.
func (s *Store) Client(id string) (*models.Client, error) {
	c := s.client(id)
	if c == nil {
		return nil, models.NewNotFound(models.EntityClient, id)
	}
	return c.Clone(), nil
}

// Clients returns all clients in registration order.
func (s *Store) Clients() []*models.Client {
	return cloneAll(s.clients, (*models.Client).Clone)
}

func (s *Store) client(id string) *models.Client {
	for _, c := range s.clients {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// resolveClient returns the client id and name a container or invoice should
// carry. A set id must exist and wins over the supplied name.
func (s *Store) resolveClient(id, name string) (string, string, error) {
	if id == "" {
		return "", name, nil
	}
	c := s.client(id)
	if c == nil {
		return "", "", models.NewNotFound(models.EntityClient, id)
	}
	return c.ID, c.Name, nil
}

// ============================================================================
// CONTAINERS
// ============================================================================

// AddContainer registers a container with no items. Duplicate codes are
// accepted.
func (s *Store) AddContainer(input ContainerInput) (*models.Container, error) {
	c, err := s.newContainer(input)
	if err != nil {
		return nil, err
	}
	s.containers = append(s.containers, c)
	s.record(models.ActionCreateContainer, models.EntityContainer, c.ID, c.Code, map[string]any{
		"client": c.ClientName,
		"type":   c.Type,
	})
	return c.Clone(), nil
}

func (s *Store) newContainer(input ContainerInput) (*models.Container, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, models.NewValidation("code", "código do contêiner é obrigatório")
	}
	if input.TotalVolume < 0 {
		return nil, models.NewValidation("totalVolume", "volume total não pode ser negativo")
	}
	if input.MonthlyPrice.IsNegative() {
		return nil, models.NewValidation("monthlyPrice", "preço mensal não pode ser negativo")
	}
	status := input.Status
	if status == "" {
		status = models.ContainerStatusActive
	}
	if !status.Valid() {
		return nil, models.NewValidation("status", "status inválido: %s", status)
	}
	clientID, clientName, err := s.resolveClient(input.ClientID, input.ClientName)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	since := input.Since
	if since.IsZero() {
		since = now
	}

	return &models.Container{
		ID:           s.ids.NewID(),
		Code:         code,
		Status:       status,
		ClientID:     clientID,
		ClientName:   clientName,
		Type:         input.Type,
		BillOfLading: input.BillOfLading,
		TotalVolume:  input.TotalVolume,
		Since:        since,
		MonthlyPrice: input.MonthlyPrice,
		Items:        []*models.PackingItem{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// UpdateContainer applies patch to a container and recomputes its occupation.
func (s *Store) UpdateContainer(id string, patch ContainerPatch) (*models.Container, error) {
	c := s.container(id)
	if c == nil {
		return nil, models.NewNotFound(models.EntityContainer, id)
	}

	if patch.Code != nil && strings.TrimSpace(*patch.Code) == "" {
		return nil, models.NewValidation("code", "código do contêiner é obrigatório")
	}
	if patch.TotalVolume != nil && *patch.TotalVolume < 0 {
		return nil, models.NewValidation("totalVolume", "volume total não pode ser negativo")
	}
	if patch.MonthlyPrice != nil && patch.MonthlyPrice.IsNegative() {
		return nil, models.NewValidation("monthlyPrice", "preço mensal não pode ser negativo")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, models.NewValidation("status", "status inválido: %s", *patch.Status)
	}

	clientID, clientName := c.ClientID, c.ClientName
	if patch.ClientID != nil {
		var err error
		clientID, clientName, err = s.resolveClient(*patch.ClientID, c.ClientName)
		if err != nil {
			return nil, err
		}
	}
	if patch.ClientName != nil && clientID == "" {
		clientName = *patch.ClientName
	}

	if patch.Code != nil {
		c.Code = strings.TrimSpace(*patch.Code)
	}
	c.ClientID, c.ClientName = clientID, clientName
	setIf(&c.Status, patch.Status)
	setIf(&c.Type, patch.Type)
	setIf(&c.BillOfLading, patch.BillOfLading)
	setIf(&c.TotalVolume, patch.TotalVolume)
	setIf(&c.MonthlyPrice, patch.MonthlyPrice)
	setIf(&c.Since, patch.Since)
	c.Recalculate()
	c.UpdatedAt = s.clock.Now()

	s.record(models.ActionUpdateContainer, models.EntityContainer, c.ID, c.Code, nil)
	return c.Clone(), nil
}

// DeleteContainer removes a container and its items.
func (s *Store) DeleteContainer(id string) error {
	i := slices.IndexFunc(s.containers, func(c *models.Container) bool { return c.ID == id })
	if i < 0 {
		return models.NewNotFound(models.EntityContainer, id)
	}
	c := s.containers[i]
	s.containers = slices.Delete(s.containers, i, i+1)
	s.record(models.ActionDeleteContainer, models.EntityContainer, c.ID, c.Code, map[string]any{
		"items": len(c.Items),
	})
	return nil
}

// Container returns a container by id.
func (s *Store) Container(id string) (*models.Container, error) {
	c := s.container(id)
	if c == nil {
		return nil, models.NewNotFound(models.EntityContainer, id)
	}
	return c.Clone(), nil
}

// ContainerByCode returns the first container with the given code.
func (s *Store) ContainerByCode(code string) (*models.Container, error) {
	c := s.containerByCode(code)
	if c == nil {
		return nil, models.NewNotFound(models.EntityContainer, code)
	}
	return c.Clone(), nil
}

// Containers returns all containers in registration order.
func (s *Store) Containers() []*models.Container {
	return cloneAll(s.containers, (*models.Container).Clone)
}

func (s *Store) container(id string) *models.Container {
	for _, c := range s.containers {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *Store) containerByCode(code string) *models.Container {
	code = strings.TrimSpace(code)
	for _, c := range s.containers {
		if strings.EqualFold(c.Code, code) {
			return c
		}
	}
	return nil
}

// ============================================================================
// ITEMS
// ============================================================================

// AddItemsToContainer appends items to a container and recomputes that
// container's used volume, total weight and occupation. Every item is
// validated before any is added.
func (s *Store) AddItemsToContainer(containerID string, items []ItemInput) ([]*models.PackingItem, error) {
	c := s.container(containerID)
	if c == nil {
		return nil, models.NewNotFound(models.EntityContainer, containerID)
	}
	for _, in := range items {
		if err := validateItem(in); err != nil {
			return nil, err
		}
	}

	added := s.appendItems(c, items)
	s.record(models.ActionAddItems, models.EntityContainer, c.ID, c.Code, map[string]any{
		"items": len(added),
	})
	return cloneAll(added, (*models.PackingItem).Clone), nil
}

func (s *Store) appendItems(c *models.Container, items []ItemInput) []*models.PackingItem {
	now := s.clock.Now()
	added := make([]*models.PackingItem, 0, len(items))
	for _, in := range items {
		origin := in.Origin
		if origin == "" {
			origin = "CHINA"
		}
		item := &models.PackingItem{
			ID:              s.ids.NewID(),
			ContainerID:     c.ID,
			SKU:             strings.TrimSpace(in.SKU),
			Description:     in.Description,
			DescriptionPt:   in.DescriptionPt,
			Quantity:        in.Quantity,
			CurrentQuantity: in.Quantity,
			UnitWeight:      in.UnitWeight,
			Length:          in.Length,
			Width:           in.Width,
			Height:          in.Height,
			NCM:             in.NCM,
			Origin:          origin,
			Brand:           in.Brand,
			Model:           in.Model,
			UnitPrice:       in.UnitPrice,
			Location:        in.Location,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		item.Recalculate()
		added = append(added, item)
	}
	c.Items = append(c.Items, added...)
	c.Recalculate()
	c.UpdatedAt = now
	return added
}

func validateItem(in ItemInput) error {
	if strings.TrimSpace(in.SKU) == "" {
		return models.NewValidation("sku", "SKU não informado")
	}
	if in.Quantity <= 0 {
		return models.NewValidation("quantity", "quantidade deve ser positiva (SKU %s)", in.SKU)
	}
	return validateMeasures(in.SKU, in.UnitWeight, in.Length, in.Width, in.Height, in.UnitPrice.IsNegative())
}

func validateMeasures(sku string, weight, length, width, height float64, negativePrice bool) error {
	switch {
	case weight < 0:
		return models.NewValidation("unitWeight", "peso não pode ser negativo (SKU %s)", sku)
	case length < 0 || width < 0 || height < 0:
		return models.NewValidation("dimensions", "dimensões não podem ser negativas (SKU %s)", sku)
	case negativePrice:
		return models.NewValidation("unitPrice", "preço não pode ser negativo (SKU %s)", sku)
	}
	return nil
}

// UpdateItem applies patch to an item and recomputes the item and container
// totals. Quantity must stay positive and CurrentQuantity within
// [0, Quantity]; lowering Quantity below CurrentQuantity lowers the latter.
func (s *Store) UpdateItem(containerID, itemID string, patch ItemPatch) (*models.PackingItem, error) {
	c := s.container(containerID)
	if c == nil {
		return nil, models.NewNotFound(models.EntityContainer, containerID)
	}
	item := c.Item(itemID)
	if item == nil {
		return nil, models.NewNotFound(models.EntityItem, itemID)
	}

	next := item.Clone()
	setIf(&next.Description, patch.Description)
	setIf(&next.DescriptionPt, patch.DescriptionPt)
	setIf(&next.Quantity, patch.Quantity)
	setIf(&next.CurrentQuantity, patch.CurrentQuantity)
	setIf(&next.UnitWeight, patch.UnitWeight)
	setIf(&next.Length, patch.Length)
	setIf(&next.Width, patch.Width)
	setIf(&next.Height, patch.Height)
	setIf(&next.NCM, patch.NCM)
	setIf(&next.Origin, patch.Origin)
	setIf(&next.Brand, patch.Brand)
	setIf(&next.Model, patch.Model)
	setIf(&next.UnitPrice, patch.UnitPrice)
	setIf(&next.Location, patch.Location)

	if next.Quantity <= 0 {
		return nil, models.NewValidation("quantity", "quantidade deve ser positiva (SKU %s)", next.SKU)
	}
	if next.CurrentQuantity < 0 {
		return nil, models.NewValidation("currentQuantity", "quantidade atual não pode ser negativa (SKU %s)", next.SKU)
	}
	if patch.CurrentQuantity != nil && next.CurrentQuantity > next.Quantity {
		return nil, models.NewValidation("currentQuantity", "quantidade atual excede a quantidade (SKU %s)", next.SKU)
	}
	if err := validateMeasures(next.SKU, next.UnitWeight, next.Length, next.Width, next.Height, next.UnitPrice.IsNegative()); err != nil {
		return nil, err
	}
	next.CurrentQuantity = min(next.CurrentQuantity, next.Quantity)

	next.Recalculate()
	next.UpdatedAt = s.clock.Now()
	*item = *next
	c.Recalculate()
	c.UpdatedAt = next.UpdatedAt

	s.record(models.ActionUpdateItem, models.EntityItem, item.ID, item.SKU, map[string]any{
		"container": c.Code,
	})
	return item.Clone(), nil
}

// RemoveItem deletes an item from a container and recomputes its totals.
func (s *Store) RemoveItem(containerID, itemID string) error {
	c := s.container(containerID)
	if c == nil {
		return models.NewNotFound(models.EntityContainer, containerID)
	}
	i := slices.IndexFunc(c.Items, func(p *models.PackingItem) bool { return p.ID == itemID })
	if i < 0 {
		return models.NewNotFound(models.EntityItem, itemID)
	}
	item := c.Items[i]
	c.Items = slices.Delete(c.Items, i, i+1)
	c.Recalculate()
	c.UpdatedAt = s.clock.Now()

	s.record(models.ActionRemoveItem, models.EntityItem, item.ID, item.SKU, map[string]any{
		"container": c.Code,
	})
	return nil
}

// ItemsBySKU finds items whose SKU contains query, ignoring case, across all
// containers.
func (s *Store) ItemsBySKU(query string) []models.ItemLocation {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []models.ItemLocation
	for _, c := range s.containers {
		for _, item := range c.Items {
			if strings.Contains(strings.ToLower(item.SKU), q) {
				out = append(out, models.ItemLocation{
					ContainerID:   c.ID,
					ContainerCode: c.Code,
					ClientName:    c.ClientName,
					Item:          item.Clone(),
				})
			}
		}
	}
	return out
}

// ============================================================================
// PACKING LIST UPLOAD
// ============================================================================

// uploadMonthlyPrice is the monthly price of containers created by an upload.
const uploadMonthlyPrice = 3200

// ProcessPackingListUpload adds parsed packing list items to the container
// with the given code, creating the container first when none exists. New
// containers take their volume from the capacity table.
func (s *Store) ProcessPackingListUpload(input UploadInput) (*models.Container, error) {
	if strings.TrimSpace(input.ContainerCode) == "" {
		return nil, models.NewValidation("code", "código do contêiner é obrigatório")
	}
	if len(input.Items) == 0 {
		return nil, models.NewValidation("items", "packing list sem itens")
	}
	for _, in := range input.Items {
		if err := validateItem(in); err != nil {
			return nil, err
		}
	}

	c := s.containerByCode(input.ContainerCode)
	if c == nil {
		volume := models.DefaultContainerVolume
		if capacity, ok := models.CapacityFor(input.ContainerType); ok {
			volume = capacity.VolumeM3
		}
		created, err := s.newContainer(ContainerInput{
			Code:         input.ContainerCode,
			Status:       models.ContainerStatusActive,
			ClientID:     input.ClientID,
			ClientName:   input.ClientName,
			Type:         input.ContainerType,
			BillOfLading: input.BillOfLading,
			TotalVolume:  volume,
			MonthlyPrice: decimal.NewFromInt(uploadMonthlyPrice),
		})
		if err != nil {
			return nil, err
		}
		s.containers = append(s.containers, created)
		s.record(models.ActionCreateContainer, models.EntityContainer, created.ID, created.Code, map[string]any{
			"client": created.ClientName,
			"type":   created.Type,
		})
		c = created
	}

	added := s.appendItems(c, input.Items)
	totalQty := 0
	for _, item := range added {
		totalQty += item.Quantity
	}
	s.record(models.ActionUploadPackingList, models.EntityContainer, c.ID, c.Code, map[string]any{
		"file":          input.FileName,
		"items":         len(added),
		"totalQuantity": totalQty,
	})
	return c.Clone(), nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
