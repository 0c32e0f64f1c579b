package packinglist

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type field int

const (
	fieldSKU field = iota
	fieldDescription
	fieldDescriptionPt
	fieldQuantity
	fieldUnitWeight
	fieldLength
	fieldWidth
	fieldHeight
	fieldNCM
	fieldOrigin
	fieldBrand
	fieldModel
	fieldUnitPrice
	fieldLocation
	fieldCount
)

// aliases lists the accepted header names per field, in priority order.
// Headers are normalised before lookup (see normalizeHeader).
var aliases = [fieldCount][]string{
	fieldSKU:           {"sku", "codigo", "code"},
	fieldDescription:   {"description", "descricao"},
	fieldDescriptionPt: {"descriptionpt", "descricao_pt"},
	fieldQuantity:      {"quantity", "quantidade", "qty"},
	fieldUnitWeight:    {"unitweight", "peso_unitario", "weight", "peso"},
	fieldLength:        {"length", "comprimento"},
	fieldWidth:         {"width", "largura"},
	fieldHeight:        {"height", "altura"},
	fieldNCM:           {"ncm"},
	fieldOrigin:        {"origin", "origem"},
	fieldBrand:         {"brand", "marca"},
	fieldModel:         {"model", "modelo"},
	fieldUnitPrice:     {"unitprice", "preco_unitario", "price", "preco"},
	fieldLocation:      {"location", "localizacao"},
}

// templateHeader is the header written by Template; its names are aliases.
var templateHeader = []string{
	"sku", "description", "descriptionPt", "quantity", "unitWeight", "length",
	"width", "height", "ncm", "origin", "brand", "model", "unitPrice", "location",
}

var templateExample = []string{
	"IT9528", "IMPULSE SERIES CROSSFIT RACK FULL CAGE", "RACK CROSSFIT GAIOLA COMPLETA",
	"2", "285", "220", "180", "250", "9506.91.00", "CHINA", "IMPULSE", "IT9528", "2850", "A1-01",
}

// Template returns a semicolon separated header and example row.
func Template() string {
	return strings.Join(templateHeader, ";") + "\n" + strings.Join(templateExample, ";") + "\n"
}

var whitespace = regexp.MustCompile(`\s+`)

// foldAccents maps "Descrição" to "Descricao".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// normalizeHeader lower-cases a header, folds accents, drops quotes and joins
// words with '_'.
func normalizeHeader(h string) string {
	h = foldAccents(strings.ToLower(strings.TrimSpace(h)))
	h = strings.NewReplacer(`"`, "", "'", "").Replace(h)
	return whitespace.ReplaceAllString(h, "_")
}

// columns maps each field to the record indexes of its aliases, in alias
// priority order.
type columns [fieldCount][]int

func mapColumns(header []string) columns {
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var cols columns
	for f, names := range aliases {
		for _, name := range names {
			if i, ok := index[name]; ok {
				cols[f] = append(cols[f], i)
			}
		}
	}
	return cols
}

// row is one record viewed through the column mapping.
type row struct {
	cols   *columns
	record []string
}

func (c *columns) row(record []string) row {
	return row{cols: c, record: record}
}

// get returns the first non-empty value among the field's aliases.
func (r row) get(f field) string {
	for _, i := range r.cols[f] {
		if i >= len(r.record) {
			continue
		}
		if v := strings.TrimSpace(strings.ReplaceAll(r.record[i], `"`, "")); v != "" {
			return v
		}
	}
	return ""
}
