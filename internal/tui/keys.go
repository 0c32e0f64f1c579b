package tui

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Key is the set of key names, as reported by tea.KeyMsg.String, that
// trigger one action.
type Key []string

// Matches reports whether msg is one of the key's names.
func (k Key) Matches(msg tea.KeyMsg) bool {
	return slices.Contains(k, msg.String())
}

// moduleKey switches to a module from anywhere outside forms and search.
type moduleKey struct {
	key    string
	label  string
	module Module
}

// KeyMap holds the bindings shared by every module.
type KeyMap struct {
	Up       Key
	Down     Key
	PageUp   Key
	PageDown Key

	Select Key
	Back   Key
	Quit   Key
	Help   Key
	Search Key
	Filter Key
	Toggle Key

	modules []moduleKey
}

// DefaultKeyMap returns the bindings of the yard terminal: vi style movement
// plus the function key row used by the scanners.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       Key{"up", "k"},
		Down:     Key{"down", "j"},
		PageUp:   Key{"pgup", "ctrl+u"},
		PageDown: Key{"pgdown", "ctrl+d"},

		Select: Key{"enter"},
		Back:   Key{"esc"},
		Quit:   Key{"q", "ctrl+c", "f10"},
		Help:   Key{"?", "f1"},
		Search: Key{"/"},
		Filter: Key{"f"},
		Toggle: Key{"tab"},

		modules: []moduleKey{
			{"f2", "Painel", ModuleDashboard},
			{"f3", "Contêineres", ModuleContainers},
			{"f4", "Movimentações", ModuleMovements},
			{"f5", "Faturamento", ModuleBilling},
			{"f6", "Auditoria", ModuleAudit},
		},
	}
}

// IsQuit reports whether msg asks to leave the application.
func (km KeyMap) IsQuit(msg tea.KeyMsg) bool {
	return km.Quit.Matches(msg)
}

// ModuleFor returns the module bound to msg, if any.
func (km KeyMap) ModuleFor(msg tea.KeyMsg) (Module, bool) {
	for _, mk := range km.modules {
		if msg.String() == mk.key {
			return mk.module, true
		}
	}
	return "", false
}

// StatusBarHelp lists the function keys for the footer.
func (km KeyMap) StatusBarHelp() string {
	parts := make([]string, 0, len(km.modules)+2)
	parts = append(parts, "[F1]Ajuda")
	for _, mk := range km.modules {
		parts = append(parts, fmt.Sprintf("[%s]%s", strings.ToUpper(mk.key), mk.label))
	}
	parts = append(parts, "[F10]Sair")
	return strings.Join(parts, " ")
}
