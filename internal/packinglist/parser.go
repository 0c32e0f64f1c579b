// Package packinglist parses supplier packing lists (delimited text exports)
// into packing items ready to be stored in a container.
package packinglist

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vectrastorage/vectra/internal/models"
)

// Mode controls how questionable quantities are handled.
type Mode int

const (
	// Tolerant accepts a row with an invalid quantity as quantity 1 and
	// reports a warning. A missing quantity silently defaults to 1.
	Tolerant Mode = iota

	// Strict rejects rows that Tolerant would only warn about.
	Strict
)

// MaxQuantity is the largest quantity a row may declare. Larger values are
// treated as invalid quantities.
const MaxQuantity = math.MaxInt32

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "tolerant"
}

// DefaultOrigin is assumed when a row has no origin column.
const DefaultOrigin = "CHINA"

// Messages shown to operators.
const (
	msgEmptyFile       = "Arquivo CSV vazio ou sem dados"
	msgExcel           = "Arquivos Excel (.xlsx) requerem conversão para CSV. Por favor, exporte o arquivo como CSV."
	msgUnsupportedFile = "Formato de arquivo não suportado: .%s. Use .csv"
	msgMissingSKU      = "SKU não informado"
	msgBadQuantity     = "Quantidade inválida, assumindo 1"
	msgStrictQuantity  = "Quantidade inválida"
	msgFractional      = "Quantidade fracionária, arredondando para %d"
	msgStrictFraction  = "Quantidade fracionária não permitida"
)

// Summary totals a parsed packing list.
type Summary struct {
	TotalItems    int
	TotalQuantity int
	TotalWeight   float64 // kg
	TotalVolume   float64 // m3
}

// Result is the outcome of parsing one file. Success is true iff Errors is
// empty; warnings never make a parse fail.
type Result struct {
	Success  bool
	Items    []*models.PackingItem
	Errors   []*models.ValidationError
	Warnings []string
	Summary  Summary
}

// Err returns the row errors as an *models.ImportError, or nil on success.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return &models.ImportError{Errors: r.Errors, Warnings: r.Warnings}
}

// Messages returns the error messages in row order.
func (r *Result) Messages() []string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return msgs
}

func failed(msg string) *Result {
	return &Result{Errors: []*models.ValidationError{{Message: msg}}}
}

// Parser turns delimited packing list text into items.
type Parser struct {
	Mode Mode
}

// Parse reads a packing list in tolerant mode.
func Parse(r io.Reader) *Result {
	return Parser{Mode: Tolerant}.Parse(r)
}

// ParseFile parses a named upload in tolerant mode.
func ParseFile(name string, r io.Reader) *Result {
	return Parser{Mode: Tolerant}.ParseFile(name, r)
}

// ParseFile dispatches on the file extension. Only .csv and .txt are parsed;
// other formats produce a result error.
func (p Parser) ParseFile(name string, r io.Reader) *Result {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	switch ext {
	case "csv", "txt":
		return p.Parse(r)
	case "xlsx", "xls":
		return failed(msgExcel)
	default:
		return failed(fmt.Sprintf(msgUnsupportedFile, ext))
	}
}

// Parse reads a packing list. The first non-blank line is the header; the
// delimiter is ';' when the header contains one and ',' otherwise. Row
// numbers in messages count the header as line 1.
func (p Parser) Parse(r io.Reader) *Result {
	lines, err := nonBlankLines(r)
	if err != nil {
		return failed(fmt.Sprintf("Erro ao processar CSV: %v", err))
	}
	if len(lines) < 2 {
		return failed(msgEmptyFile)
	}

	comma := ','
	if strings.Contains(lines[0], ";") {
		comma = ';'
	}

	header, err := splitLine(lines[0], comma)
	if err != nil {
		return failed(fmt.Sprintf("Erro ao processar CSV: %v", err))
	}
	cols := mapColumns(header)

	res := &Result{}
	for i, text := range lines[1:] {
		line := i + 2
		record, err := splitLine(text, comma)
		if err != nil {
			res.Errors = append(res.Errors, &models.ValidationError{
				Field: "row", Message: fmt.Sprintf("formato inválido: %v", err), Line: line,
			})
			continue
		}
		if item := p.parseRow(cols.row(record), line, res); item != nil {
			res.Items = append(res.Items, item)
		}
	}

	for _, item := range res.Items {
		res.Summary.TotalItems++
		res.Summary.TotalQuantity += item.Quantity
		res.Summary.TotalWeight += item.TotalWeight
		res.Summary.TotalVolume += item.TotalVolume
	}
	res.Success = len(res.Errors) == 0
	return res
}

// splitLine reads the fields of one physical line. A quote left open runs to
// the end of its line and never swallows the following rows.
func splitLine(text string, comma rune) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	record, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []string{}, nil
	}
	return record, err
}

func nonBlankLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if len(lines) == 0 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func (p Parser) parseRow(r row, line int, res *Result) *models.PackingItem {
	sku := r.get(fieldSKU)
	if sku == "" {
		res.Errors = append(res.Errors, &models.ValidationError{Field: "sku", Message: msgMissingSKU, Line: line})
		return nil
	}

	qty, ok := p.quantity(r.get(fieldQuantity), line, res)
	if !ok {
		return nil
	}

	description := firstNonEmpty(r.get(fieldDescription), sku)
	item := &models.PackingItem{
		SKU:             sku,
		Description:     description,
		DescriptionPt:   firstNonEmpty(r.get(fieldDescriptionPt), r.get(fieldDescription), description),
		Quantity:        qty,
		CurrentQuantity: qty,
		UnitWeight:      ParseNumber(r.get(fieldUnitWeight)),
		Length:          ParseNumber(r.get(fieldLength)),
		Width:           ParseNumber(r.get(fieldWidth)),
		Height:          ParseNumber(r.get(fieldHeight)),
		NCM:             r.get(fieldNCM),
		Origin:          firstNonEmpty(r.get(fieldOrigin), DefaultOrigin),
		Brand:           r.get(fieldBrand),
		Model:           r.get(fieldModel),
		UnitPrice:       ParseDecimal(r.get(fieldUnitPrice)),
		Location:        r.get(fieldLocation),
	}
	item.Recalculate()
	return item
}

// quantity applies the quantity policy of the parser mode. It returns false
// when the row must be rejected.
func (p Parser) quantity(raw string, line int, res *Result) (int, bool) {
	if raw == "" {
		return 1, true
	}

	reject := func(msg string) (int, bool) {
		res.Errors = append(res.Errors, &models.ValidationError{Field: "quantity", Message: msg, Line: line})
		return 0, false
	}
	warn := func(msg string) {
		res.Warnings = append(res.Warnings, (&models.ValidationError{Message: msg, Line: line}).Error())
	}

	q := ParseNumber(raw)
	whole := math.Floor(q)
	if whole <= 0 || whole > MaxQuantity {
		if p.Mode == Strict {
			return reject(msgStrictQuantity)
		}
		warn(msgBadQuantity)
		return 1, true
	}
	if whole != q {
		if p.Mode == Strict {
			return reject(msgStrictFraction)
		}
		warn(fmt.Sprintf(msgFractional, int(whole)))
	}
	return int(whole), true
}

var numericPrefix = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)

// numberText cleans a numeric field: everything except digits, '.', ',' and
// '-' is dropped, the first comma becomes a dot and the longest numeric
// prefix is kept. It returns "" when no number remains.
func numberText(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			return r
		}
		return -1
	}, s)
	cleaned = strings.Replace(cleaned, ",", ".", 1)
	return numericPrefix.FindString(cleaned)
}

// ParseNumber parses a loosely formatted number ("12,5 kg", "R$ 2850"),
// returning 0 when nothing numeric is found.
func ParseNumber(s string) float64 {
	text := numberText(s)
	if text == "" {
		return 0
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseDecimal is ParseNumber for money values.
func ParseDecimal(s string) decimal.Decimal {
	text := numberText(s)
	if text == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
