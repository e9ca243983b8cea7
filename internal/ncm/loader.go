package ncm

import (
	"log/slog"
)

// maxReportColumns bounds the raw header names kept per sheet report.
const maxReportColumns = 20

// SheetReport describes what happened to one sheet during a load.
type SheetReport struct {
	Name       string    `json:"name"`
	Mode       SheetMode `json:"-"`
	ModeName   string    `json:"mode"`
	Label      string    `json:"label"`
	HeaderRow  int       `json:"header_row"` // -1 when row 0 was assumed
	RowsBefore int       `json:"rows_before"`
	RowsAfter  int       `json:"rows_after"`
	Columns    []string  `json:"columns_before"`
	Unmapped   []string  `json:"unmapped_columns,omitempty"`
}

// BuildTable runs header detection and normalization over every sheet and
// concatenates the results in sheet order.
func BuildTable(sheets []Sheet, logger *slog.Logger) (*Table, []SheetReport) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		rows    []Row
		reports []SheetReport
	)
	for _, sh := range sheets {
		class := ClassifySheet(sh.Name)
		if class.Mode == ModeIgnored {
			logger.Debug("sheet ignored", "sheet", sh.Name)
			continue
		}

		header, body, hdrIdx := splitHeader(sh.Grid)
		res := NormalizeSheet(SheetInput{Header: header, Body: body, Class: class})

		report := SheetReport{
			Name:       sh.Name,
			Mode:       class.Mode,
			ModeName:   class.Mode.String(),
			Label:      class.Label,
			HeaderRow:  hdrIdx,
			RowsBefore: len(body),
			RowsAfter:  len(res.Rows),
			Columns:    header[:min(len(header), maxReportColumns)],
		}
		for _, col := range res.Unmapped {
			report.Unmapped = append(report.Unmapped, col.String())
		}
		reports = append(reports, report)

		if len(report.Unmapped) > 0 {
			logger.Warn("canonical columns without source mapping",
				"sheet", sh.Name,
				"columns", report.Unmapped,
			)
		}
		logger.Debug("sheet normalized",
			"sheet", sh.Name,
			"mode", report.ModeName,
			"label", report.Label,
			"header_row", report.HeaderRow,
			"rows_before", report.RowsBefore,
			"rows_after", report.RowsAfter,
			"columns_before", report.Columns,
		)

		rows = append(rows, res.Rows...)
	}

	return NewTable(rows), reports
}

// splitHeader locates the header row (falling back to row 0), and pads the
// header and every body row to the same width.
func splitHeader(g Grid) (header []string, body Grid, hdrIdx int) {
	hdrIdx = -1
	start := 0
	if idx, ok := DetectHeaderRow(g, DefaultHeaderScanRows); ok {
		hdrIdx = idx
		start = idx
	}
	if len(g) == 0 {
		return nil, nil, hdrIdx
	}

	width := g[start:].Width()
	header = pad(g[start], width)

	body = make(Grid, 0, len(g)-start-1)
	for _, r := range g[start+1:] {
		body = append(body, pad(r, width))
	}
	return header, body, hdrIdx
}

func pad(cells []string, width int) []string {
	out := make([]string, width)
	copy(out, cells)
	return out
}
