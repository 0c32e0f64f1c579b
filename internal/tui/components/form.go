package components

import "strings"

// FormField is a component a Form can hold.
type FormField interface {
	Focus(bool)
	HandleKey(string)
	Label() string
	Value() string
	SetPalette(Palette)
	render(labelWidth int) string
}

var (
	_ FormField = (*Input)(nil)
	_ FormField = (*Select)(nil)
)

// Form stacks fields under a title. Tab and Shift+Tab move between fields,
// Ctrl+S or Enter on the last field submits, Esc cancels.
type Form struct {
	title     string
	fields    []FormField
	active    int
	submitted bool
	cancelled bool
	err       string
	pal       Palette
}

// NewForm creates an empty form.
func NewForm(title string) *Form {
	return &Form{title: title, pal: DefaultPalette()}
}

// SetPalette sets the styles of the form and of fields added after it.
func (f *Form) SetPalette(p Palette) *Form {
	f.pal = p
	return f
}

// AddField appends a field. The first field gets focus.
func (f *Form) AddField(field FormField) *Form {
	field.SetPalette(f.pal)
	field.Focus(len(f.fields) == 0)
	f.fields = append(f.fields, field)
	return f
}

func (f *Form) Title() string     { return f.title }
func (f *Form) IsSubmitted() bool { return f.submitted }
func (f *Form) IsCancelled() bool { return f.cancelled }

// Value returns the trimmed value of the field labelled label, or "".
func (f *Form) Value(label string) string {
	for _, field := range f.fields {
		if field.Label() == label {
			return strings.TrimSpace(field.Value())
		}
	}
	return ""
}

// HandleKey routes a key to the form or to the focused field.
func (f *Form) HandleKey(key string) {
	switch key {
	case "tab", "down":
		f.move(1)
	case "shift+tab", "up":
		f.move(-1)
	case "ctrl+s":
		f.submit()
	case "esc":
		f.cancelled = true
	case "enter":
		if f.active == len(f.fields)-1 {
			f.submit()
		} else {
			f.move(1)
		}
	default:
		if len(f.fields) > 0 {
			f.fields[f.active].HandleKey(key)
		}
	}
}

// move shifts focus by delta fields, wrapping around.
func (f *Form) move(delta int) {
	n := len(f.fields)
	if n == 0 {
		return
	}
	f.fields[f.active].Focus(false)
	f.active = ((f.active+delta)%n + n) % n
	f.fields[f.active].Focus(true)
}

func (f *Form) submit() {
	valid := true
	for _, field := range f.fields {
		if in, ok := field.(*Input); ok && !in.Validate() {
			valid = false
		}
	}
	f.submitted = valid
	f.err = ""
	if !valid {
		f.err = "Preencha os campos obrigatórios"
	}
}

// Reopen clears the submitted state so the operator can correct a value the
// caller rejected.
func (f *Form) Reopen(err string) {
	f.submitted = false
	f.err = err
}

// RenderResponsive renders the form for a terminal width columns wide.
// Below 60 columns labels and key help shrink; 0 means wide.
func (f *Form) RenderResponsive(width int) string {
	labelWidth := defaultLabelWidth
	help := "Tab/↓:Próximo  Shift+Tab/↑:Anterior  ←→/Espaço:Opção  Ctrl+S:Salvar  Esc:Cancelar"
	if width > 0 && width < 60 {
		labelWidth = 10
		help = "Tab:Próx  Ctrl+S:Salvar  Esc:Sair"
	}

	lines := []string{f.pal.Title.Render("▌ " + f.title), ""}
	for _, field := range f.fields {
		lines = append(lines, field.render(labelWidth))
	}
	if f.err != "" {
		lines = append(lines, "", f.pal.Error.Render("Erro: "+f.err))
	}
	lines = append(lines, "", f.pal.Help.Render(help))
	return strings.Join(lines, "\n")
}
