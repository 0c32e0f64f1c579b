package components

import "fmt"

// Select picks one of a fixed list of options. Left and right step through
// them, space cycles.
type Select struct {
	label   string
	options []string
	idx     int
	focused bool
	pal     Palette
}

// NewSelect creates a select on its first option.
func NewSelect(label string, options []string) *Select {
	return &Select{label: label, options: options, pal: DefaultPalette()}
}

// SetSelected moves to option idx. Out of range indexes are ignored.
func (s *Select) SetSelected(idx int) *Select {
	if idx >= 0 && idx < len(s.options) {
		s.idx = idx
	}
	return s
}

func (s *Select) SetPalette(p Palette) { s.pal = p }
func (s *Select) Focus(focused bool)   { s.focused = focused }
func (s *Select) Label() string        { return s.label }

// Value is the chosen option, or "" when there are none.
func (s *Select) Value() string {
	if len(s.options) == 0 {
		return ""
	}
	return s.options[s.idx]
}

// HandleKey changes the option when the select has focus.
func (s *Select) HandleKey(key string) {
	if !s.focused || len(s.options) == 0 {
		return
	}
	switch key {
	case "left", "h":
		s.idx = max(s.idx-1, 0)
	case "right", "l":
		s.idx = min(s.idx+1, len(s.options)-1)
	case " ":
		s.idx = (s.idx + 1) % len(s.options)
	}
}

func (s *Select) render(labelWidth int) string {
	var out string
	if labelWidth > 0 {
		out = labelCell(s.pal, s.label, false, labelWidth)
	}
	if !s.focused {
		return out + s.pal.Value.Render(s.Value())
	}
	return out + s.pal.Title.Render("◂ "+s.Value()+" ▸") +
		s.pal.Muted.Render(fmt.Sprintf(" %d/%d", s.idx+1, len(s.options)))
}
