package labels

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

// SheetLayout describes an A4 sheet of adhesive labels.
type SheetLayout struct {
	Cols       int
	Rows       int
	MarginTop  float64 // mm
	MarginLeft float64 // mm
	GapX       float64 // mm
	GapY       float64 // mm
}

// DefaultSheetLayout fits 2x7 labels of roughly 100x38 mm on A4.
func DefaultSheetLayout() SheetLayout {
	return SheetLayout{Cols: 2, Rows: 7, MarginTop: 10, MarginLeft: 4, GapX: 2, GapY: 2}
}

const (
	pageWidthMM  = 210.0
	pageHeightMM = 297.0
)

// SheetPDF renders labels onto A4 pages, one cell per label, with the SKU,
// description and location as text and the barcode payload as a QR code.
func SheetPDF(labels []Data, layout SheetLayout) ([]byte, error) {
	if layout.Cols <= 0 || layout.Rows <= 0 {
		return nil, errors.New("sheet layout needs at least one row and column")
	}
	if len(labels) == 0 {
		return nil, errors.New("no labels to render")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Arial", "B", 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	availW := pageWidthMM - layout.MarginLeft*2
	availH := pageHeightMM - layout.MarginTop*2
	labelW := (availW - float64(layout.Cols-1)*layout.GapX) / float64(layout.Cols)
	labelH := (availH - float64(layout.Rows-1)*layout.GapY) / float64(layout.Rows)
	perPage := layout.Cols * layout.Rows

	imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}

	for i, d := range labels {
		if i%perPage == 0 {
			pdf.AddPage()
		}
		onPage := i % perPage
		x := layout.MarginLeft + float64(onPage%layout.Cols)*(labelW+layout.GapX)
		y := layout.MarginTop + float64(onPage/layout.Cols)*(labelH+layout.GapY)

		pdf.Rect(x, y, labelW, labelH, "D")

		qrSize := labelH * 0.8
		if payload := qrPayload(d); payload != "" {
			png, err := qrcode.Encode(payload, qrcode.Medium, 256)
			if err != nil {
				return nil, fmt.Errorf("encoding QR code for %s: %w", d.SKU, err)
			}
			name := fmt.Sprintf("qr_%d", i)
			pdf.RegisterImageOptionsReader(name, imgOptions, bytes.NewReader(png))
			pdf.ImageOptions(name, x+labelW-qrSize-2, y+(labelH-qrSize)/2, qrSize, qrSize, false, imgOptions, 0, "")
		}

		textW := labelW - qrSize - 6
		pdf.SetXY(x+2, y+2)
		pdf.SetFontSize(7)
		pdf.CellFormat(textW, 4, tr(truncate(d.ClientName, 30)), "", 2, "L", false, 0, "")
		pdf.SetX(x + 2)
		pdf.SetFontSize(13)
		pdf.CellFormat(textW, 7, tr(d.SKU), "", 2, "L", false, 0, "")
		pdf.SetX(x + 2)
		pdf.SetFontSize(7)
		pdf.MultiCell(textW, 3.5, tr(truncate(d.Description, 70)), "", "L", false)
		pdf.SetXY(x+2, y+labelH-11)
		pdf.CellFormat(textW, 4, tr(fmt.Sprintf("CTN: %s  LOC: %s", d.ContainerCode, d.Location)), "", 2, "L", false, 0, "")
		pdf.SetX(x + 2)
		pdf.CellFormat(textW, 4, tr(fmt.Sprintf("%skg | %s | QTD: %d", number(d.Weight), d.Dimensions, d.Quantity)), "", 0, "L", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("rendering label sheet: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing label sheet: %w", err)
	}
	return buf.Bytes(), nil
}

func qrPayload(d Data) string {
	if d.Barcode != "" {
		return d.Barcode
	}
	return d.SKU
}
