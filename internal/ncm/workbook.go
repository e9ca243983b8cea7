package ncm

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet read as raw text, no header assumed.
type Sheet struct {
	Name string
	Grid Grid
}

// SheetReader reads every sheet of a workbook in workbook order.
type SheetReader func(path string) ([]Sheet, error)

// ReaderFor picks the reader by file extension: legacy BIFF for .xls,
// OOXML for everything else.
func ReaderFor(path string) SheetReader {
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		return ReadXLS
	}
	return ReadXLSX
}

// ReadWorkbook reads path with the reader chosen by ReaderFor.
func ReadWorkbook(path string) ([]Sheet, error) {
	return ReaderFor(path)(path)
}

// ReadXLSX reads an OOXML workbook. Cell values are taken raw, without
// number formats, so rates come through as "0.18" rather than "18%".
func ReadXLSX(path string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", path, err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Grid: Grid(rows)})
	}
	return sheets, nil
}

// ReadXLS reads a legacy binary (BIFF) workbook.
func ReadXLS(path string) ([]Sheet, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls %s: %w", path, err)
	}

	var sheets []Sheet
	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}

		grid := make(Grid, 0, int(ws.MaxRow)+1)
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := ws.Row(r)
			if row == nil {
				grid = append(grid, nil)
				continue
			}
			last := row.LastCol()
			cells := make([]string, max(last, 0))
			for c := row.FirstCol(); c < last; c++ {
				cells[c] = row.Col(c)
			}
			grid = append(grid, cells)
		}
		sheets = append(sheets, Sheet{Name: ws.Name, Grid: grid})
	}
	return sheets, nil
}
