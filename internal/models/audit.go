package models

import (
	"maps"
	"strings"
	"time"
)

// EntityType identifies the kind of entity an audit entry or error refers to.
type EntityType string

const (
	EntityContainer   EntityType = "container"
	EntityItem        EntityType = "item"
	EntityEvent       EntityType = "event"
	EntityMeasurement EntityType = "measurement"
	EntityInvoice     EntityType = "invoice"
	EntityClient      EntityType = "client"
	EntityLabel       EntityType = "label"
	EntitySettings    EntityType = "settings"
)

func (e EntityType) String() string {
	return string(e)
}

// AuditLog is one entry of the append-only audit trail.
type AuditLog struct {
	ID         string
	Action     string
	EntityType EntityType
	EntityID   string
	EntityName string
	User       string
	Details    map[string]any
	Timestamp  time.Time
}

// Clone returns a copy with its own details map.
func (a *AuditLog) Clone() *AuditLog {
	c := *a
	c.Details = maps.Clone(a.Details)
	return &c
}

// Audit actions recorded by the store.
const (
	ActionCreateContainer   = "Criou contêiner"
	ActionUpdateContainer   = "Atualizou contêiner"
	ActionDeleteContainer   = "Removeu contêiner"
	ActionAddItems          = "Adicionou itens"
	ActionUpdateItem        = "Atualizou item"
	ActionRemoveItem        = "Removeu item"
	ActionUploadPackingList = "Upload packing list"
	ActionRegisterEntry     = "Registrou entrada"
	ActionRegisterExit      = "Registrou saída"
	ActionRegisterMeasure   = "Registrou medição"
	ActionCreateInvoice     = "Gerou fatura"
	ActionUpdateInvoice     = "Atualizou fatura"
	ActionCreateClient      = "Cadastrou cliente"
	ActionUpdateClient      = "Atualizou cliente"
	ActionGenerateLabel     = "Gerou etiqueta"
	ActionPrintLabel        = "Imprimiu etiqueta"
	ActionUpdateSettings    = "Atualizou configurações"
)

// AuditFilter narrows an audit log listing.
type AuditFilter struct {
	EntityType EntityType // empty = all
	Search     string     // matched against action and entity name
}

// Matches reports whether the entry passes the filter.
func (f AuditFilter) Matches(a *AuditLog) bool {
	if f.EntityType != "" && a.EntityType != f.EntityType {
		return false
	}
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(a.Action), q) ||
		strings.Contains(strings.ToLower(a.EntityName), q)
}
