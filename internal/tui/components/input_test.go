package components

import (
	"strings"
	"testing"
)

func TestInput_Editing(t *testing.T) {
	tests := []struct {
		name  string
		start string
		keys  []string
		want  string
		caret int
	}{
		{"types at the end", "TEMU", []string{"8", "8"}, "TEMU88", 6},
		{"accented letters", "", []string{"S", "a", "í", "d", "a", " ", "ç", "backspace", "left", "delete"}, "Saída", 5},
		{"inserts at caret", "ELEC01", []string{"left", "left", "0"}, "ELEC001", 5},
		{"home and end", "abc", []string{"home", "x", "end", "y"}, "xabcy", 5},
		{"emacs keys", "abc", []string{"ctrl+a", "delete", "ctrl+e", "backspace"}, "b", 1},
		{"backspace at start", "ab", []string{"home", "backspace"}, "ab", 0},
		{"caret stays in range", "ab", []string{"right", "right", "left", "left", "left"}, "ab", 0},
		{"ignores named keys", "ab", []string{"ctrl+x", "f5", "pgdown"}, "ab", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewInput("Campo").SetValue(tt.start)
			in.Focus(true)
			for _, k := range tt.keys {
				in.HandleKey(k)
			}
			if in.Value() != tt.want || in.caret != tt.caret {
				t.Errorf("got %q caret %d, want %q caret %d", in.Value(), in.caret, tt.want, tt.caret)
			}
		})
	}
}

func TestInput_IgnoresKeysWithoutFocus(t *testing.T) {
	in := NewInput("SKU").SetValue("ELEC")
	in.HandleKey("9")
	in.HandleKey("backspace")
	if in.Value() != "ELEC" {
		t.Errorf("unfocused input changed to %q", in.Value())
	}
}

func TestInput_MaxLength(t *testing.T) {
	in := NewInput("Código").SetMaxLength(11)
	in.Focus(true)
	for _, r := range "CMAU37542930" {
		in.HandleKey(string(r))
	}
	if in.Value() != "CMAU3754293" {
		t.Errorf("Value() = %q, want the first 11 characters", in.Value())
	}
}

func TestInput_Validate(t *testing.T) {
	tests := []struct {
		required bool
		value    string
		ok       bool
	}{
		{false, "", true},
		{true, "", false},
		{true, "   ", false},
		{true, "ACME", true},
	}
	for _, tt := range tests {
		in := NewInput("Cliente").SetRequired(tt.required).SetValue(tt.value)
		if got := in.Validate(); got != tt.ok {
			t.Errorf("Validate(required=%v, %q) = %v, want %v", tt.required, tt.value, got, tt.ok)
		}
		if shown := strings.Contains(in.render(16), "Obrigatório"); shown == tt.ok {
			t.Errorf("problem shown = %v for %q", shown, tt.value)
		}
	}
}

func TestInput_Render(t *testing.T) {
	in := NewInput("Preço").SetPlaceholder("3200,00").SetRequired(true)

	out := in.render(16)
	for _, want := range []string{"Preço*:", "3200,00"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}

	in.Focus(true)
	in.SetValue("12")
	in.HandleKey("left")
	out = in.render(0)
	if strings.Contains(out, "Preço") {
		t.Error("label column 0 should hide the label")
	}
	if !strings.Contains(out, "1_2") {
		t.Errorf("expected caret between digits in %q", out)
	}
	if strings.Contains(out, "3200,00") {
		t.Error("placeholder should hide while focused")
	}
}
