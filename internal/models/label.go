package models

import (
	"strings"
	"time"
	"unicode"
)

// LabelType identifies a label layout.
type LabelType string

const (
	LabelTypeStorage  LabelType = "storage"
	LabelTypeShipping LabelType = "shipping"
	LabelTypeReturn   LabelType = "return"
)

func (t LabelType) String() string {
	return string(t)
}

// Valid reports whether t is a known label type.
func (t LabelType) Valid() bool {
	switch t {
	case LabelTypeStorage, LabelTypeShipping, LabelTypeReturn:
		return true
	}
	return false
}

// DefaultLabelLocation is printed when an item has no yard location yet.
const DefaultLabelLocation = "A DEFINIR"

// maxBarcodeLength bounds the Code128 payload printed on a label.
const maxBarcodeLength = 20

// Label records a generated item label and whether it was printed.
type Label struct {
	ID            string
	Type          LabelType
	ContainerID   string
	ItemID        string
	SKU           string
	Description   string
	ContainerCode string
	ClientName    string
	Location      string
	Barcode       string
	Weight        float64
	Dimensions    string
	Quantity      int
	CreatedAt     time.Time
	PrintedAt     *time.Time
	PrintedBy     string
}

// Printed reports whether the label has been sent to a printer.
func (l *Label) Printed() bool {
	return l.PrintedAt != nil
}

// Clone returns a deep copy.
func (l *Label) Clone() *Label {
	cp := *l
	if l.PrintedAt != nil {
		t := *l.PrintedAt
		cp.PrintedAt = &t
	}
	return &cp
}

// Barcode derives the Code128 payload from a SKU: ASCII letters and digits
// only, upper-cased, at most 20 characters.
func Barcode(sku string) string {
	var b strings.Builder
	for _, r := range sku {
		if r > unicode.MaxASCII {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			if b.Len() == maxBarcodeLength {
				break
			}
		}
	}
	return b.String()
}
