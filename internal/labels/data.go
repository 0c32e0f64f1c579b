// Package labels renders item labels for thermal printers (ZPL), for screen
// preview (HTML) and for plain office printers (PDF sheet), and sends ZPL to
// network printers.
package labels

import (
	"strconv"
	"strings"
	"time"

	"github.com/vectrastorage/vectra/internal/models"
	"github.com/vectrastorage/vectra/internal/util"
)

// Data is the content printed on one label.
type Data struct {
	SKU           string
	Description   string
	ContainerCode string
	ClientName    string
	Location      string
	Weight        float64 // unit weight, kg
	Dimensions    string  // "LxWxHcm"
	Quantity      int
	Barcode       string
	Date          string // dd/mm/yyyy
}

// Destination is the consignee block of a shipping label.
type Destination struct {
	Name    string
	Address string
	City    string
	State   string
	CEP     string
}

// FromItem builds label data for an item stored in container c.
func FromItem(item *models.PackingItem, c *models.Container, quantity int, date time.Time) Data {
	location := item.Location
	if location == "" {
		location = models.DefaultLabelLocation
	}
	return Data{
		SKU:           item.SKU,
		Description:   item.DisplayDescription(),
		ContainerCode: c.Code,
		ClientName:    c.ClientName,
		Location:      location,
		Weight:        item.UnitWeight,
		Dimensions:    item.Dimensions(),
		Quantity:      quantity,
		Barcode:       models.Barcode(item.SKU),
		Date:          util.FormatDate(date),
	}
}

// FromLabel builds label data from a recorded label.
func FromLabel(l *models.Label) Data {
	return Data{
		SKU:           l.SKU,
		Description:   l.Description,
		ContainerCode: l.ContainerCode,
		ClientName:    l.ClientName,
		Location:      l.Location,
		Weight:        l.Weight,
		Dimensions:    l.Dimensions,
		Quantity:      l.Quantity,
		Barcode:       l.Barcode,
		Date:          util.FormatDate(l.CreatedAt),
	}
}

// number renders f with the fewest digits needed (2.5, 285).
func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// fieldData removes the ZPL command prefixes from free text so operator
// input cannot start a new command inside a ^FD field.
var fieldData = strings.NewReplacer("^", " ", "~", " ")
