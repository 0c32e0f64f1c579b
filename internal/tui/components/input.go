package components

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// defaultLabelWidth is the label column of wide forms.
const defaultLabelWidth = 16

// Input is a single line text field.
type Input struct {
	label    string
	hint     string
	text     []rune
	caret    int
	width    int
	limit    int
	required bool
	focused  bool
	problem  string
	pal      Palette
}

// NewInput creates an empty, optional field 20 cells wide.
func NewInput(label string) *Input {
	return &Input{label: label, width: 20, limit: 100, pal: DefaultPalette()}
}

// SetValue replaces the text and puts the caret after it.
func (i *Input) SetValue(v string) *Input {
	i.text = []rune(v)
	i.caret = len(i.text)
	return i
}

// SetPlaceholder sets the hint shown while the field is empty.
func (i *Input) SetPlaceholder(p string) *Input {
	i.hint = p
	return i
}

// SetWidth sets the minimum display width.
func (i *Input) SetWidth(w int) *Input {
	i.width = w
	return i
}

// SetMaxLength caps the text at m characters.
func (i *Input) SetMaxLength(m int) *Input {
	i.limit = m
	return i
}

// SetRequired marks the field as mandatory.
func (i *Input) SetRequired(r bool) *Input {
	i.required = r
	return i
}

func (i *Input) SetPalette(p Palette) { i.pal = p }
func (i *Input) Focus(focused bool)   { i.focused = focused }
func (i *Input) Label() string        { return i.label }
func (i *Input) Value() string        { return string(i.text) }

// inputEdits are the editing keys; anything else printable is typed.
var inputEdits = map[string]func(*Input){
	"backspace": func(i *Input) {
		if i.caret > 0 {
			i.caret--
			i.text = slices.Delete(i.text, i.caret, i.caret+1)
		}
	},
	"delete": func(i *Input) {
		if i.caret < len(i.text) {
			i.text = slices.Delete(i.text, i.caret, i.caret+1)
		}
	},
	"left":   func(i *Input) { i.caret = max(i.caret-1, 0) },
	"right":  func(i *Input) { i.caret = min(i.caret+1, len(i.text)) },
	"home":   func(i *Input) { i.caret = 0 },
	"ctrl+a": func(i *Input) { i.caret = 0 },
	"end":    func(i *Input) { i.caret = len(i.text) },
	"ctrl+e": func(i *Input) { i.caret = len(i.text) },
}

// HandleKey edits the text when the field has focus.
func (i *Input) HandleKey(key string) {
	if !i.focused {
		return
	}
	if edit, ok := inputEdits[key]; ok {
		edit(i)
		return
	}
	r, size := utf8.DecodeRuneInString(key)
	if size == 0 || size != len(key) || !unicode.IsPrint(r) || len(i.text) >= i.limit {
		return
	}
	i.text = slices.Insert(i.text, i.caret, r)
	i.caret++
}

// Validate checks the required flag and records the problem for display.
func (i *Input) Validate() bool {
	i.problem = ""
	if i.required && strings.TrimSpace(string(i.text)) == "" {
		i.problem = "Obrigatório"
	}
	return i.problem == ""
}

// render draws the field after a label column labelWidth wide; 0 drops the
// label.
func (i *Input) render(labelWidth int) string {
	var shown string
	switch {
	case i.focused:
		shown = i.pal.Title.Render(string(i.text[:i.caret]) + "_" + string(i.text[i.caret:]))
	case len(i.text) == 0 && i.hint != "":
		shown = i.pal.Muted.Render(i.hint)
	default:
		shown = i.pal.Value.Render(string(i.text))
	}
	shown += strings.Repeat(" ", max(i.width-lipgloss.Width(shown), 0))

	if labelWidth > 0 {
		shown = labelCell(i.pal, i.label, i.required, labelWidth) + shown
	}
	if i.problem != "" {
		shown += " " + i.pal.Error.Render(i.problem)
	}
	return shown
}

// labelCell renders "Label*: " padded to width, the star marking required
// fields.
func labelCell(p Palette, label string, required bool, width int) string {
	if required {
		label += "*"
	}
	return p.Label.Width(width).Render(label+":") + " "
}
