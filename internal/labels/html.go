package labels

import (
	"bytes"
	"html/template"
)

var previewTemplate = template.Must(template.New("label").Funcs(template.FuncMap{"weight": number}).Parse(`<div class="label" style="width: 100mm; height: 50mm; padding: 3mm; border: 1px solid #000; font-family: 'Courier New', monospace; font-size: 10pt; box-sizing: border-box;">
  <div style="font-size: 8pt; color: #666; margin-bottom: 2mm;">{{.ClientName}}</div>
  <div style="font-size: 14pt; font-weight: bold; margin-bottom: 2mm;">{{.SKU}}</div>
  <div style="font-size: 9pt; margin-bottom: 3mm; max-height: 12mm; overflow: hidden;">{{.Description}}</div>
  <div style="text-align: center; margin: 3mm 0; font-family: 'Libre Barcode 128', cursive; font-size: 36pt;">{{.Barcode}}</div>
  <div style="display: flex; justify-content: space-between; font-size: 8pt;">
    <span>CTN: {{.ContainerCode}}</span>
    <span>LOC: {{.Location}}</span>
  </div>
  <div style="display: flex; justify-content: space-between; font-size: 8pt; margin-top: 1mm;">
    <span>{{weight .Weight}}kg | {{.Dimensions}}</span>
    <span>QTD: {{.Quantity}}</span>
  </div>
  <div style="font-size: 7pt; text-align: right; margin-top: 1mm; color: #666;">{{.Date}}</div>
</div>
`))

// HTML renders a 100x50 mm preview fragment of the label. Field values are
// escaped.
func HTML(d Data) (string, error) {
	var buf bytes.Buffer
	if err := previewTemplate.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
