package tui

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
)

const screenTimeout = 5 * time.Second

// startTerminal runs the app over the demo yard in a headless terminal of the
// given size. The window size message comes from teatest, so the App starts
// unsized.
func startTerminal(t *testing.T, width, height int) *teatest.TestModel {
	t.Helper()
	return teatest.NewTestModel(t, New(newTestService(t, true)),
		teatest.WithInitialTermSize(width, height))
}

// expectScreen waits until every text has been drawn.
func expectScreen(t *testing.T, tm *teatest.TestModel, texts ...string) {
	t.Helper()
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		for _, s := range texts {
			if !bytes.Contains(out, []byte(s)) {
				return false
			}
		}
		return true
	}, teatest.WithDuration(screenTimeout))
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func fnKey(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

// step presses key then waits for the screen to show want.
type step struct {
	key  tea.KeyMsg
	want []string
}

func TestTerminalScripts(t *testing.T) {
	scripts := []struct {
		name          string
		width, height int
		steps         []step
	}{
		{
			name: "startup shows the dashboard", width: 120, height: 40,
			steps: []step{
				{want: []string{"PAINEL DE OPERAÇÕES", "Vectra Storage", "OCUPAÇÃO", "FINANCEIRO", "ÚLTIMAS MOVIMENTAÇÕES"}},
			},
		},
		{
			name: "function keys walk every module", width: 120, height: 40,
			steps: []step{
				{key: fnKey(tea.KeyF3), want: []string{"CONTÊINERES", "CMAU3754293"}},
				{key: fnKey(tea.KeyF4), want: []string{"MOVIMENTAÇÕES"}},
				{key: fnKey(tea.KeyTab), want: []string{"MEDIÇÕES"}},
				{key: fnKey(tea.KeyF5), want: []string{"FATURAMENTO"}},
				{key: fnKey(tea.KeyF6), want: []string{"AUDITORIA"}},
				{key: fnKey(tea.KeyF2), want: []string{"PAINEL DE OPERAÇÕES"}},
			},
		},
		{
			name: "help returns to the module it was opened from", width: 120, height: 40,
			steps: []step{
				{key: fnKey(tea.KeyF5), want: []string{"FATURAMENTO"}},
				{key: fnKey(tea.KeyF1), want: []string{"AJUDA"}},
				{key: fnKey(tea.KeyEscape), want: []string{"FATURAMENTO"}},
			},
		},
		{
			name: "container detail and back", width: 120, height: 40,
			steps: []step{
				{key: fnKey(tea.KeyF3), want: []string{"CMAU3754293"}},
				{key: fnKey(tea.KeyEnter), want: []string{"CONTÊINER "}},
				{key: fnKey(tea.KeyEscape)},
				{key: fnKey(tea.KeyF2), want: []string{"PAINEL DE OPERAÇÕES"}},
			},
		},
		{
			name: "sku search", width: 120, height: 40,
			steps: []step{
				{key: fnKey(tea.KeyF3), want: []string{"CONTÊINERES"}},
				{key: runeKey("/"), want: []string{"BUSCA"}},
				{key: runeKey("ELEC002")},
				{key: fnKey(tea.KeyEnter), want: []string{`SKU: "ELEC002"`}},
			},
		},
		{
			name: "new container form opens and cancels", width: 120, height: 40,
			steps: []step{
				{key: fnKey(tea.KeyF3), want: []string{"CONTÊINERES"}},
				{key: runeKey("a"), want: []string{"NOVO CONTÊINER"}},
				{key: fnKey(tea.KeyEscape)},
				{key: fnKey(tea.KeyF2), want: []string{"PAINEL DE OPERAÇÕES"}},
			},
		},
		{
			name: "declining the quit prompt keeps the app running", width: 120, height: 40,
			steps: []step{
				{key: runeKey("q"), want: []string{"CONFIRMAR SAÍDA"}},
				{key: runeKey("n")},
				{key: fnKey(tea.KeyF3), want: []string{"CONTÊINERES"}},
			},
		},
		{
			name: "scanner sized terminal", width: 50, height: 24,
			steps: []step{
				{want: []string{"PAINEL DE OPERAÇÕES"}},
				{key: fnKey(tea.KeyF3), want: []string{"CONTÊINERES"}},
			},
		},
		{
			name: "wide footer lists the function keys", width: 160, height: 40,
			steps: []step{
				{want: []string{"[F1]Ajuda", "[F3]Contêineres", "[F5]Faturamento", "[F10]Sair"}},
			},
		},
	}

	for _, sc := range scripts {
		t.Run(sc.name, func(t *testing.T) {
			tm := startTerminal(t, sc.width, sc.height)
			t.Cleanup(func() { tm.Quit() })

			for _, st := range sc.steps {
				if st.key.Type != 0 || len(st.key.Runes) > 0 {
					tm.Send(st.key)
				}
				if len(st.want) > 0 {
					expectScreen(t, tm, st.want...)
				}
			}
		})
	}
}

func TestTerminalQuit(t *testing.T) {
	tm := startTerminal(t, 120, 40)
	expectScreen(t, tm, "PAINEL DE OPERAÇÕES")

	tm.Send(fnKey(tea.KeyF10))
	expectScreen(t, tm, "CONFIRMAR SAÍDA")
	tm.Send(runeKey("s"))

	final, ok := tm.FinalModel(t, teatest.WithFinalTimeout(screenTimeout)).(*App)
	if !ok {
		t.Fatal("final model is not an *App")
	}
	if !final.quitting {
		t.Error("app should be quitting after confirming")
	}
}
