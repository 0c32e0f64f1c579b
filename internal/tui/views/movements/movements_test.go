package movements

import (
	"strings"
	"testing"
	"time"

	"github.com/vectrastorage/vectra/internal/models"
)

type fakeSource struct {
	events       []*models.Event
	measurements []*models.Measurement
}

func (f *fakeSource) Events() []*models.Event             { return f.events }
func (f *fakeSource) Measurements() []*models.Measurement { return f.measurements }

func newFakeSource() *fakeSource {
	day := time.Date(2024, 11, 18, 14, 30, 0, 0, time.UTC)
	return &fakeSource{
		events: []*models.Event{{
			ID: "e1", Type: models.EventTypeExit, ContainerCode: "TEMU8834521", ClientName: "TECH IMPORTS LTDA",
			Date: day, CreatedBy: "Operador",
			Items: []models.EventItem{{SKU: "ELEC001", Quantity: 20}, {SKU: "ELEC002", Quantity: 50}},
		}},
		measurements: []*models.Measurement{{
			ID: "m1", ContainerCode: "CMAU3754293", SKU: "IT9528", Date: day,
			Length: 220, Width: 180, Height: 250, Weight: 285, Volume: 9.9, MeasuredBy: "Admin",
		}},
	}
}

func TestView_EmptyRender(t *testing.T) {
	view := NewView(nil)
	view.Load()
	output := view.Render(120, 40)
	if !strings.Contains(output, "MOVIMENTAÇÕES") {
		t.Error("expected title in output")
	}
	if !strings.Contains(output, "Nenhuma movimentação registrada") {
		t.Error("expected empty state message")
	}
}

func TestView_Events(t *testing.T) {
	view := NewView(newFakeSource())
	view.Load()

	output := view.Render(140, 40)
	for _, want := range []string{"18/11/2024 14:30", "Saída", "TEMU8834521", "ELEC001 x20, ELEC002 x50", "70"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

func TestView_ToggleMeasurements(t *testing.T) {
	view := NewView(newFakeSource())
	view.Toggle()
	if view.Mode() != ModeMeasurements {
		t.Fatalf("Mode() = %v, want measurements", view.Mode())
	}
	view.Load()

	output := view.Render(120, 40)
	for _, want := range []string{"MEDIÇÕES", "IT9528", "220x180x250", "9,900"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output", want)
		}
	}

	view.Toggle()
	if view.Mode() != ModeEvents {
		t.Error("second Toggle() should return to events")
	}
}

func TestSummarize(t *testing.T) {
	if got := summarize(nil); got != "" {
		t.Errorf("summarize(nil) = %q, want empty", got)
	}
	got := summarize([]models.EventItem{{SKU: "A", Quantity: 1}})
	if got != "A x1" {
		t.Errorf("summarize() = %q, want %q", got, "A x1")
	}
}
