package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/csvgate/internal/validator"
)

// Sheet names in the XLSX export.
const (
	SheetFindings   = "Hallazgos"
	SheetWarnings   = "Avisos"
	SheetStructural = "Estructura"
)

// WriteXLSX writes a workbook. Structurally valid files get a findings sheet
// and, when there are warnings, a warnings sheet. A structural verdict gets
// its own sheet instead.
func WriteXLSX(w io.Writer, res validator.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if res.Structural != nil {
		if err := f.SetSheetName("Sheet1", SheetStructural); err != nil {
			return err
		}
		if err := writeSheet(f, SheetStructural, header, structuralHeader, structuralRecords(res.Structural)); err != nil {
			return err
		}
		return writeWorkbook(f, w)
	}

	if err := f.SetSheetName("Sheet1", SheetFindings); err != nil {
		return err
	}

	var findings, warnings [][]string
	if res.Report != nil {
		findings = make([][]string, len(res.Report.Findings))
		for i, fd := range res.Report.Findings {
			findings[i] = findingRecord(fd)
		}
		for _, wn := range res.Report.Warnings {
			rows := make([]string, len(wn.Rows))
			for i, r := range wn.Rows {
				rows[i] = strconv.Itoa(r)
			}
			warnings = append(warnings, []string{string(wn.Kind), wn.Message, strings.Join(rows, ", ")})
		}
	}

	if err := writeSheet(f, SheetFindings, header, findingHeader, findings); err != nil {
		return err
	}
	if len(warnings) > 0 {
		if _, err := f.NewSheet(SheetWarnings); err != nil {
			return err
		}
		if err := writeSheet(f, SheetWarnings, header, []string{"Tipo", "Mensaje", "Filas"}, warnings); err != nil {
			return err
		}
	}
	return writeWorkbook(f, w)
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, header []string, records [][]string) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, rec := range records {
		if err := setRow(f, sheet, i+2, rec); err != nil {
			return err
		}
	}

	for i, h := range header {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, columnWidth(h, records, i)); err != nil {
			return err
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// setRow writes values as text, except numeric row references in column A
// of the findings sheet, which stay numbers so the sheet sorts correctly.
func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
		if i == 0 && sheet == SheetFindings && row > 1 {
			if n, err := strconv.Atoi(v); err == nil {
				cells[i] = n
			}
		}
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	return f.SetSheetRow(sheet, cell, &cells)
}

func columnWidth(header string, records [][]string, col int) float64 {
	width := len([]rune(header))
	for _, rec := range records {
		if col < len(rec) {
			width = max(width, len([]rune(rec[col])))
		}
	}
	return float64(min(max(width+2, 8), 80))
}

func writeWorkbook(f *excelize.File, w io.Writer) error {
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
