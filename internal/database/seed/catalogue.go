// Package seed provides demo data for an empty warehouse.
package seed

import "github.com/shopspring/decimal"

// ClientSpec describes a demo client.
type ClientSpec struct {
	Name    string
	TaxID   string
	Email   string
	Phone   string
	Address string
}

// Clients are the demo customers, in registration order.
var Clients = []ClientSpec{
	{"IMPULSE FITNESS BRASIL", "12.345.678/0001-90", "contato@impulse.com.br", "(11) 99999-1111", "Av. Paulista, 1000 - Sao Paulo/SP"},
	{"TECH IMPORTS LTDA", "98.765.432/0001-10", "compras@techimports.com.br", "(11) 99999-2222", "Rua Vergueiro, 250 - Sao Paulo/SP"},
	{"GLOBAL TRADE CO", "11.222.333/0001-44", "logistica@globaltrade.com.br", "(11) 99999-3333", "Av. Conselheiro Nebias, 80 - Santos/SP"},
}

// Product is a catalogue line that can be stored in a container.
type Product struct {
	SKU         string
	Description string
	Weight      float64 // kg
	Length      float64 // cm
	Width       float64 // cm
	Height      float64 // cm
	NCM         string
	Brand       string
	Price       decimal.Decimal
}

// Products is the demo catalogue.
var Products = []Product{
	{"IT9528", "CROSSFIT RACK FULL CAGE", 285, 220, 180, 250, "9506.91.00", "IMPULSE", decimal.NewFromInt(2850)},
	{"IF2011", "MULTI-FUNCTIONAL TRAINER", 320, 180, 120, 220, "9506.91.00", "IMPULSE", decimal.NewFromInt(4100)},
	{"IT7022", "LEG PRESS 45 GRAUS", 210, 200, 130, 150, "9506.91.00", "IMPULSE", decimal.NewFromInt(3900)},
	{"ELEC001", "MONITOR LED 27\"", 5.5, 65, 45, 15, "8528.52.20", "GENERIC", decimal.NewFromInt(890)},
	{"ELEC002", "TECLADO MECANICO RGB", 1.2, 45, 15, 5, "8471.60.52", "GENERIC", decimal.NewFromInt(240)},
	{"FIT3301", "ESTEIRA ERGOMETRICA PRO", 160, 210, 90, 150, "9506.91.00", "IMPULSE", decimal.NewFromInt(7200)},
	{"FIT3302", "BICICLETA SPINNING", 55, 120, 60, 110, "9506.91.00", "IMPULSE", decimal.NewFromInt(1900)},
	{"HOME101", "CADEIRA ESCRITORIO", 14, 70, 65, 60, "9401.30.90", "GENERIC", decimal.NewFromInt(450)},
	{"HOME102", "MESA REGULAVEL", 38, 140, 75, 15, "9403.10.00", "GENERIC", decimal.NewFromInt(1300)},
	{"ELEC010", "NOTEBOOK 15 POL", 2.4, 50, 35, 10, "8471.30.12", "GENERIC", decimal.NewFromInt(3500)},
}

// OwnerPrefixes are container owner codes (ISO 6346 owner + category U).
var OwnerPrefixes = []string{"CMAU", "TEMU", "MSKU", "MSCU", "HLXU", "TGHU", "CSNU", "OOLU"}

// Aisles are the yard aisles item locations are drawn from.
var Aisles = []string{"A1", "A2", "B1", "B2", "C1"}
