package components

import (
	"strings"
	"testing"
)

func TestStepsComponent_Update(t *testing.T) {
	s := NewStepsComponent([]string{"Check balance", "Find route"})

	s.Update("Check balance", StatusDone, "2 WETH")
	s.Update("Find route", StatusRunning, "")
	s.Update("Find route", StatusFailed, "no route")
	s.Update("Check balance", StatusDone, "")

	rows := s.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Detail != "2 WETH" {
		t.Errorf("expected detail to be kept, got %q", rows[0].Detail)
	}
	if rows[1].Status != StatusFailed || rows[1].Detail != "no route" {
		t.Errorf("unexpected row %+v", rows[1])
	}

	s.Update("Extra", StatusDone, "")
	if len(s.Rows()) != 3 {
		t.Errorf("expected unknown step to be appended")
	}

	view := s.View("*")
	if !strings.Contains(view, "Check balance") || !strings.Contains(view, "no route") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestDetailsComponent(t *testing.T) {
	d := NewDetailsComponent()
	if d.View() != "" {
		t.Errorf("expected empty view")
	}

	d.Set("Wallet", "0xabc")
	d.Set("Swap tx", "0x01")
	d.Set("Wallet", "0xdef")

	if v, _ := d.Get("Wallet"); v != "0xdef" {
		t.Errorf("expected replaced value, got %q", v)
	}

	view := d.View()
	if strings.Index(view, "Wallet") > strings.Index(view, "Swap tx") {
		t.Errorf("expected insertion order:\n%s", view)
	}
}
