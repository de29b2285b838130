package report

import (
	"encoding/csv"
	"io"

	"github.com/JonMunkholm/csvgate/internal/validator"
)

// utf8BOM makes spreadsheet tools open the export as UTF-8.
const utf8BOM = "\uFEFF"

// WriteCSV writes one line per finding. A structural verdict is written
// instead, one line per cause.
func WriteCSV(w io.Writer, res validator.Result) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)

	if res.Structural != nil {
		if err := cw.Write(structuralHeader); err != nil {
			return err
		}
		if err := cw.WriteAll(structuralRecords(res.Structural)); err != nil {
			return err
		}
		return cw.Error()
	}

	if err := cw.Write(findingHeader); err != nil {
		return err
	}
	if res.Report != nil {
		for _, f := range res.Report.Findings {
			if err := cw.Write(findingRecord(f)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
