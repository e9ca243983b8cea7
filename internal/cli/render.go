package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/JonMunkholm/ncmlookup/internal/database"
	"github.com/JonMunkholm/ncmlookup/internal/ncm"
)

// maxTextWidth wraps long description cells.
const maxTextWidth = 60

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderSheetReports(w io.Writer, snap *ncm.Snapshot) error {
	_, _ = fmt.Fprintf(w, "Workbook: %s\n", snap.Path)
	_, _ = fmt.Fprintf(w, "Modified: %s\n\n", snap.ModTime.Format("2006-01-02 15:04:05"))

	t := newTable(w)
	t.AppendHeader(table.Row{"Sheet", "Mode", "Annex", "Header row", "Rows before", "Rows after", "Unmapped"})
	for _, r := range snap.Sheets {
		header := fmt.Sprint(r.HeaderRow)
		if r.HeaderRow < 0 {
			header = "-"
		}
		t.AppendRow(table.Row{r.Name, r.ModeName, r.Label, header, r.RowsBefore, r.RowsAfter, len(r.Unmapped)})
	}
	t.AppendFooter(table.Row{"", "", "", "", "Total", snap.Table.Len(), ""})
	t.Render()
	return nil
}

func renderPage(w io.Writer, p ncm.Page) error {
	if len(p.Data) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := newTable(w)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: ncm.ColProductDescription.String(), WidthMax: maxTextWidth},
	})
	t.AppendHeader(table.Row{"ITEM", "ANEXO", ncm.ColProductDescription.String(), "NCM", "IBS", "CBS"})
	for _, r := range p.Data {
		t.AppendRow(table.Row{r.Item, r.Annex, r.ProductDescription, r.NCM, r.IBS, r.CBS})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "page %d/%d, %d rows\n", p.Page, p.TotalPages, p.TotalItems)
	return nil
}

func renderDetails(w io.Writer, d ncm.Details) error {
	if d.Count == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := newTable(w)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: ncm.ColProductDescription.String(), WidthMax: maxTextWidth},
		{Name: ncm.ColFullDescription.String(), WidthMax: maxTextWidth},
	})
	t.AppendHeader(table.Row{"ANEXO", "ITEM", "NCM", ncm.ColProductDescription.String(), ncm.ColFullDescription.String(), "IBS", "CBS"})
	for _, r := range d.Data {
		t.AppendRow(table.Row{r.Annex, r.Item, r.NCM, r.ProductDescription, r.FullDescription, r.IBS, r.CBS})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", d.Count)
	return nil
}

func renderMigrations(w io.Writer, current int64, states []database.MigrationState) error {
	t := newTable(w)
	t.AppendHeader(table.Row{"Version", "Migration", "Applied"})
	for _, s := range states {
		applied := "no"
		if s.Applied {
			applied = "yes"
		}
		t.AppendRow(table.Row{s.Version, filepath.Base(s.Source), applied})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "schema version: %d\n", current)
	return nil
}
