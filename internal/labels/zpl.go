package labels

import (
	"fmt"
	"math"
	"strings"

	"github.com/vectrastorage/vectra/internal/config"
)

// Return and shipping labels are printed on fixed stock (4"x2" and 4"x3" at
// 203 dpi).
const (
	returnWidthDots    = 812
	returnHeightDots   = 406
	shippingWidthDots  = 812
	shippingHeightDots = 609
)

// Dots converts a paper dimension in millimetres to printer dots.
func Dots(mm float64, dpi int) int {
	return int(math.Round(mm / 25.4 * float64(dpi)))
}

// zpl collects ZPL commands, one per line, between ^XA and ^XZ.
type zpl struct {
	b strings.Builder
}

func newZPL(widthDots, heightDots int) *zpl {
	z := &zpl{}
	z.line("^XA")
	z.line(fmt.Sprintf("^PW%d", widthDots))
	z.line(fmt.Sprintf("^LL%d", heightDots))
	return z
}

func (z *zpl) line(s string) {
	z.b.WriteString(s)
	z.b.WriteByte('\n')
}

// text places a scalable font field at (x, y) with the given font height.
func (z *zpl) text(x, y, size int, s string) {
	z.line(fmt.Sprintf("^FO%d,%d^A0N,%d,%d^FD%s^FS", x, y, size, size, fieldData.Replace(s)))
}

// barcode places a Code128 barcode of the given bar height with the
// interpretation line printed below.
func (z *zpl) barcode(x, y, height int, data string) {
	z.line(fmt.Sprintf("^FO%d,%d^BY2,2,%d^BCN,%d,Y,N,N^FD%s^FS", x, y, height, height, fieldData.Replace(data)))
}

func (z *zpl) String() string {
	return z.b.String() + "^XZ"
}

// StorageZPL renders the storage label sized from the configured paper.
func StorageZPL(d Data, cfg config.LabelsConfig) string {
	z := newZPL(Dots(cfg.PaperWidthMM, cfg.DPI), Dots(cfg.PaperHeightMM, cfg.DPI))
	z.text(20, 20, 30, truncate(d.ClientName, 25))
	z.text(20, 60, 45, d.SKU)
	z.text(20, 115, 25, truncate(d.Description, 35))
	z.barcode(20, 150, 60, d.Barcode)
	z.text(20, 230, 22, "Container: "+d.ContainerCode)
	z.text(20, 260, 22, "Local: "+d.Location)
	z.text(20, 290, 22, fmt.Sprintf("Peso: %skg  |  %s", number(d.Weight), d.Dimensions))
	z.text(20, 320, 22, fmt.Sprintf("Qtd: %d  |  Data: %s", d.Quantity, d.Date))
	return z.String()
}

// ReturnZPL renders a return-to-sender label.
func ReturnZPL(d Data, returnAddress string) string {
	z := newZPL(returnWidthDots, returnHeightDots)
	z.text(20, 20, 25, "DEVOLVER PARA:")
	z.text(20, 50, 30, truncate(returnAddress, 40))
	z.text(20, 90, 20, strings.Repeat("_", 40))
	z.text(20, 120, 40, d.SKU)
	z.text(20, 170, 25, truncate(d.Description, 35))
	z.barcode(20, 210, 60, d.Barcode)
	z.text(20, 290, 22, "Origem: "+d.ContainerCode)
	z.text(20, 320, 22, "Cliente: "+truncate(d.ClientName, 30))
	z.text(20, 350, 20, "Data: "+d.Date)
	return z.String()
}

// ShippingZPL renders an outbound shipping label for invoice (NF) nf.
func ShippingZPL(d Data, dest Destination, nf string) string {
	z := newZPL(shippingWidthDots, shippingHeightDots)
	z.text(20, 20, 35, "EXPEDICAO")
	z.text(20, 60, 25, "DESTINO:")
	z.text(20, 90, 28, truncate(dest.Name, 35))
	z.text(20, 125, 22, truncate(dest.Address, 40))
	z.text(20, 155, 22, fmt.Sprintf("%s/%s - CEP: %s", dest.City, dest.State, dest.CEP))
	z.text(20, 195, 20, strings.Repeat("_", 45))
	z.text(20, 225, 40, d.SKU)
	z.text(20, 275, 22, truncate(d.Description, 40))
	z.barcode(20, 310, 70, d.Barcode)
	z.text(20, 400, 22, "NF: "+nf)
	z.text(300, 400, 22, fmt.Sprintf("Peso: %skg", number(d.Weight)))
	z.text(20, 435, 20, fmt.Sprintf("Origem: %s | %s", d.ContainerCode, d.Date))
	return z.String()
}

// BatchZPL renders storage labels back to back.
func BatchZPL(labels []Data, cfg config.LabelsConfig) string {
	out := make([]string, len(labels))
	for i, d := range labels {
		out[i] = StorageZPL(d, cfg)
	}
	return strings.Join(out, "\n")
}
