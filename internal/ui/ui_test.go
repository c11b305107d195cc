package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestHeader_RenderKeepsParamOrder(t *testing.T) {
	out := NewHeader("Load symbols", "efidbg load-symbols",
		Param{"Boot log", "debug.log"},
		Param{"Arch", "IA32"},
		Param{"Build dir", "Build"},
	).SetWidth(80).Render()

	if !strings.Contains(out, "LOAD SYMBOLS") {
		t.Errorf("header missing uppercase title:\n%s", out)
	}
	i, j, k := strings.Index(out, "Boot log"), strings.Index(out, "Arch"), strings.Index(out, "Build dir")
	if i < 0 || j < 0 || k < 0 || !(i < j && j < k) {
		t.Errorf("params out of order (%d, %d, %d):\n%s", i, j, k, out)
	}
}

func TestResult_Render(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   []string
	}{
		{
			name:   "success",
			result: NewSuccessResult("3 modules loaded", Detail{"Script", "efi.gdb"}),
			want:   []string{"SUCCESS", "3 modules loaded", "Script:", "efi.gdb"},
		},
		{
			name:   "warning",
			result: NewWarningResult("No symbols loaded"),
			want:   []string{"WARNING", "No symbols loaded"},
		},
		{
			name:   "failure",
			result: NewFailureResult("Load failed", errors.New("boom"), []string{"Check debug.log"}),
			want:   []string{"FAILED", "Error: boom", "Troubleshooting:", "Check debug.log"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.SetWidth(80).Render()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("Render() missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestTranscript_Render(t *testing.T) {
	out := NewTranscript([]string{"file", "symbol-file", "add-symbol-file a.debug 0x1 -s .data 0x2"}).
		SetWidth(80).
		Render()

	for _, w := range []string{"gdb commands", "(gdb) symbol-file", "(gdb) add-symbol-file a.debug"} {
		if !strings.Contains(out, w) {
			t.Errorf("Render() missing %q:\n%s", w, out)
		}
	}
}

func TestRenderModuleTable(t *testing.T) {
	var buf bytes.Buffer
	RenderModuleTable(&buf, []ModuleRow{
		{Module: "DriverA.efi", Base: "0x00600000", Text: "0x601000", Data: "0x602000", Debug: "Build/IA32/DriverA.debug"},
	})

	out := buf.String()
	for _, w := range []string{"Module", "Debug file", "DriverA.efi", "0x601000", "Build/IA32/DriverA.debug"} {
		if !strings.Contains(out, w) {
			t.Errorf("table missing %q:\n%s", w, out)
		}
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf).SetWidth(70)

	p.Println("Looking for addresses in debug.log")
	p.PrintSkips([]SkipRow{{Module: "Shell.efi", Reason: "binary file for Shell.efi not found"}})

	out := buf.String()
	if !strings.HasPrefix(out, "Looking for addresses in debug.log\n") {
		t.Errorf("plain line altered:\n%s", out)
	}
	if !strings.Contains(out, "Shell.efi") {
		t.Errorf("skip table missing:\n%s", out)
	}
}

func press(m PickerModel, keys ...string) PickerModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(PickerModel)
	}
	return m
}

func pickerItems() []PickerItem {
	return []PickerItem{
		{Name: "PcdPeim.efi", Detail: "0x00000820120"},
		{Name: "DevicePathDxe.efi", Detail: "0x00007E9B000"},
		{Name: "HiiDatabase.efi", Detail: "0x00007E91000"},
	}
}

func TestPicker_ToggleAndConfirm(t *testing.T) {
	m := press(NewPickerModel("Drivers", pickerItems()), "down", " ", "down", "down", " ", "enter")

	if m.Canceled() {
		t.Fatal("picker reported cancel")
	}
	got := m.Selected()
	want := []string{"DevicePathDxe.efi", "HiiDatabase.efi"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Selected() = %v, want %v", got, want)
	}
}

func TestPicker_SelectAllAndNone(t *testing.T) {
	m := press(NewPickerModel("Drivers", pickerItems()), "a")
	if len(m.Selected()) != 3 {
		t.Errorf("after a: %d selected, want 3", len(m.Selected()))
	}
	m = press(m, "a")
	if len(m.Selected()) != 0 {
		t.Errorf("after a a: %d selected, want 0", len(m.Selected()))
	}
}

func TestPicker_Cancel(t *testing.T) {
	m := press(NewPickerModel("Drivers", pickerItems()), " ", "esc")
	if !m.Canceled() {
		t.Error("expected cancel")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestPicker_View(t *testing.T) {
	m := press(NewPickerModel("Drivers", pickerItems()), " ")
	view := m.View()
	for _, w := range []string{"Drivers", "1 of 3 selected", "PcdPeim.efi", "0x00007E91000"} {
		if !strings.Contains(view, w) {
			t.Errorf("View() missing %q:\n%s", w, view)
		}
	}
}
