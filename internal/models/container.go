package models

import (
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ContainerStatus represents the storage status of a container.
type ContainerStatus string

const (
	ContainerStatusActive   ContainerStatus = "active"
	ContainerStatusPartial  ContainerStatus = "partial"
	ContainerStatusInactive ContainerStatus = "inactive"
)

func (s ContainerStatus) String() string {
	return string(s)
}

// Valid reports whether s is a known status.
func (s ContainerStatus) Valid() bool {
	switch s {
	case ContainerStatusActive, ContainerStatusPartial, ContainerStatusInactive:
		return true
	}
	return false
}

// Label returns the Portuguese display name.
func (s ContainerStatus) Label() string {
	switch s {
	case ContainerStatusActive:
		return "Ativo"
	case ContainerStatusPartial:
		return "Parcial"
	case ContainerStatusInactive:
		return "Inativo"
	default:
		return string(s)
	}
}

// ContainerCapacity describes the nominal capacity of a container type.
type ContainerCapacity struct {
	Type        string
	VolumeM3    float64
	MaxWeightKg float64
}

// DefaultContainerVolume is used when a container type is not in the capacity table.
const DefaultContainerVolume = 67.7

// ContainerTypes lists the container types the yard handles.
var ContainerTypes = []ContainerCapacity{
	{Type: "Dry Box 20'", VolumeM3: 33.2, MaxWeightKg: 28000},
	{Type: "Dry Box 40'", VolumeM3: 67.7, MaxWeightKg: 26500},
	{Type: "Dry Box 40' HC", VolumeM3: 76.3, MaxWeightKg: 26500},
	{Type: "Reefer 20'", VolumeM3: 28.3, MaxWeightKg: 27500},
	{Type: "Reefer 40'", VolumeM3: 59.3, MaxWeightKg: 26000},
	{Type: "Reefer 40' HC", VolumeM3: 67.8, MaxWeightKg: 26000},
}

// CapacityFor looks up the capacity of a container type.
func CapacityFor(containerType string) (ContainerCapacity, bool) {
	for _, c := range ContainerTypes {
		if c.Type == containerType {
			return c, true
		}
	}
	return ContainerCapacity{}, false
}

// Container is a shipping container stored in the yard on behalf of a client.
type Container struct {
	ID           string
	Code         string // business key, e.g. "CMAU3754293"
	Status       ContainerStatus
	ClientID     string
	ClientName   string
	Type         string
	BillOfLading string
	Occupation   float64 // percent, 0-100
	TotalVolume  float64 // m3
	UsedVolume   float64 // m3
	TotalWeight  float64 // kg
	Since        time.Time
	MonthlyPrice decimal.Decimal
	Items        []*PackingItem
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Recalculate recomputes used volume, total weight and occupation from the
// container's current items.
func (c *Container) Recalculate() {
	var volume, weight float64
	for _, item := range c.Items {
		volume += item.TotalVolume
		weight += item.TotalWeight
	}
	c.UsedVolume = volume
	c.TotalWeight = weight
	c.Occupation = Occupation(c.UsedVolume, c.TotalVolume)
}

// Occupation returns used/total as a percentage clamped to 100.
// It is 0 when total is not positive.
func Occupation(used, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Min(used/total*100, 100)
}

// IsActive reports whether the container counts as occupied stock.
func (c *Container) IsActive() bool {
	return c.Status != ContainerStatusInactive
}

// FreeVolume returns the remaining volume, never negative.
func (c *Container) FreeVolume() float64 {
	return math.Max(c.TotalVolume-c.UsedVolume, 0)
}

// Item returns the item with the given id.
func (c *Container) Item(id string) *PackingItem {
	for _, item := range c.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// ItemBySKU returns the first item with the given SKU.
func (c *Container) ItemBySKU(sku string) *PackingItem {
	for _, item := range c.Items {
		if item.SKU == sku {
			return item
		}
	}
	return nil
}

// Clone returns a deep copy.
func (c *Container) Clone() *Container {
	cp := *c
	cp.Items = make([]*PackingItem, len(c.Items))
	for i, item := range c.Items {
		cp.Items[i] = item.Clone()
	}
	return &cp
}

// PackingItem is one SKU line inside a container.
type PackingItem struct {
	ID              string
	ContainerID     string
	SKU             string
	Description     string
	DescriptionPt   string
	Quantity        int
	CurrentQuantity int
	UnitWeight      float64 // kg
	TotalWeight     float64 // kg
	Length          float64 // cm
	Width           float64 // cm
	Height          float64 // cm
	UnitVolume      float64 // m3
	TotalVolume     float64 // m3
	NCM             string
	Origin          string
	Brand           string
	Model           string
	UnitPrice       decimal.Decimal
	TotalPrice      decimal.Decimal
	Location        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UnitVolumeM3 converts centimetre dimensions to cubic metres.
func UnitVolumeM3(length, width, height float64) float64 {
	return length * width * height / 1_000_000
}

// Recalculate derives the unit volume and the quantity-based totals.
func (p *PackingItem) Recalculate() {
	p.UnitVolume = UnitVolumeM3(p.Length, p.Width, p.Height)
	q := float64(p.Quantity)
	p.TotalVolume = p.UnitVolume * q
	p.TotalWeight = p.UnitWeight * q
	p.TotalPrice = p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// Dimensions renders the item dimensions in centimetres, e.g. "220x180x250cm".
func (p *PackingItem) Dimensions() string {
	return FormatDimensions(p.Length, p.Width, p.Height) + "cm"
}

// FormatDimensions joins length, width and height as "LxWxH", each with the
// fewest digits needed and never in exponent form.
func FormatDimensions(length, width, height float64) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return f(length) + "x" + f(width) + "x" + f(height)
}

// DisplayDescription prefers the Portuguese description.
func (p *PackingItem) DisplayDescription() string {
	if p.DescriptionPt != "" {
		return p.DescriptionPt
	}
	return p.Description
}

// Clone returns a copy.
func (p *PackingItem) Clone() *PackingItem {
	cp := *p
	return &cp
}

// ItemLocation is a search hit: an item together with the container holding it.
type ItemLocation struct {
	ContainerID   string
	ContainerCode string
	ClientName    string
	Item          *PackingItem
}
