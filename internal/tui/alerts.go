package tui

import (
	"slices"
	"time"

	"github.com/vectrastorage/vectra/internal/util"
)

// AlertLevel is the severity of an operator notice.
type AlertLevel int

const (
	AlertInfo AlertLevel = iota
	AlertWarning
	AlertCritical
)

// Alert is a notice shown on the alert bar under the header.
type Alert struct {
	Level   AlertLevel
	Message string
	Time    time.Time
}

const (
	// maxAlerts is how many notices the bar keeps; older ones fall off.
	maxAlerts = 10
	// alertRotateTicks is how many ticks each alert stays on the bar.
	alertRotateTicks = 3
)

// AddAlert shows message on the alert bar, newest first.
func (a *App) AddAlert(level AlertLevel, message string) {
	a.alerts = slices.Insert(a.alerts, 0, Alert{Level: level, Message: message, Time: a.svc.Now()})
	a.alerts = a.alerts[:min(len(a.alerts), maxAlerts)]
	a.alertIndex = 0
}

// ClearAlerts empties the alert bar.
func (a *App) ClearAlerts() {
	a.alerts = nil
	a.alertIndex = 0
}

// rotateAlerts advances the bar to the next alert every alertRotateTicks
// ticks.
func (a *App) rotateAlerts() {
	a.ticks++
	if n := len(a.alerts); n > 1 && a.ticks%alertRotateTicks == 0 {
		a.alertIndex = (a.alertIndex + 1) % n
	}
}

// renderAlertBar shows the service clock and the current alert.
func (a *App) renderAlertBar() string {
	clock := a.theme.Value.Render(util.FormatDateTime(a.svc.Now()))
	if len(a.alerts) == 0 {
		return clock + a.theme.StatusDivider.Render() + a.theme.Muted.Render("Nenhum aviso")
	}

	alert := a.alerts[a.alertIndex%len(a.alerts)]
	style, prefix := a.theme.Alert, "INFO"
	switch alert.Level {
	case AlertWarning:
		style, prefix = a.theme.AlertWarn, "ATENÇÃO"
	case AlertCritical:
		style, prefix = a.theme.AlertCrit, "CRÍTICO"
	}
	return clock + a.theme.StatusDivider.Render() + style.Render(prefix+": "+alert.Message)
}
