package validator

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Materialize splits every data line into fields aligned with header. Short
// rows are right-padded with "". Blank lines are skipped but numbering stays
// source-line based, so the first data line is always row 2.
//
// Fields are split quote-aware here while CheckStructure counts raw commas.
// A line such as "7","a,b" under a three-column header therefore passes the
// width check, yields two fields and is padded to three without a short-row
// warning. Rows wider than header never reach this point; CheckStructure
// rejects them, and the guard below reports MalformedTable if one does.
func Materialize(doc *Document, header []string) (*Table, *StructuralError) {
	table := &Table{
		Header: header,
		Rows:   make([]Row, 0, len(doc.Lines)),
	}

	for i, line := range doc.Lines[1:] {
		if isBlankLine(line) {
			continue
		}
		lineNum := i + 2

		fields, err := parseLine(line)
		if err != nil {
			return nil, errMalformedTable(lineNum, err)
		}
		if len(fields) > len(header) {
			return nil, errMalformedTable(lineNum,
				fmt.Errorf("expected at most %d fields, got %d", len(header), len(fields)))
		}
		for len(fields) < len(header) {
			fields = append(fields, "")
		}
		table.Rows = append(table.Rows, Row{Number: lineNum, Fields: fields})
	}

	return table, nil
}

// parseLine reads a single record. Quotes are honoured the way encoding/csv
// does, but since each line is parsed on its own, embedded newlines are not.
func parseLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = []rune(Delimiter)[0]
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rec, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []string{""}, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}
