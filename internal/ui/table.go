package ui

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// ModuleRow is one registered driver in the summary table.
type ModuleRow struct {
	Module string
	Base   string
	Text   string
	Data   string
	Debug  string
}

// SkipRow is one driver that was not registered.
type SkipRow struct {
	Module string
	Reason string
}

// RenderModuleTable writes the registered drivers as a table.
func RenderModuleTable(w io.Writer, rows []ModuleRow) {
	table := newTable(w)
	table.SetHeader([]string{"Module", "Base", ".text", ".data", "Debug file"})
	for _, r := range rows {
		table.Append([]string{r.Module, r.Base, r.Text, r.Data, r.Debug})
	}
	table.Render()
}

// RenderSkipTable writes the skipped drivers and why.
func RenderSkipTable(w io.Writer, rows []SkipRow) {
	table := newTable(w)
	table.SetHeader([]string{"Skipped", "Reason"})
	for _, r := range rows {
		table.Append([]string{r.Module, r.Reason})
	}
	table.Render()
}

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	return table
}
