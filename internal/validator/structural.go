package validator

// structural.go runs the file-level checks. They execute in a fixed order
// and the first failure ends the run; later checks never see a file an
// earlier check rejected.

import (
	"strings"
)

const (
	// Delimiter is the only accepted field separator.
	Delimiter = ","

	disallowedDelimiter = ";"
	utf8BOM             = "\uFEFF"
)

// structuralState is shared by the ordered checks of one run.
type structuralState struct {
	doc       *Document
	profile   Profile
	header    []string // trimmed, BOM-stripped names
	width     int      // field count of the raw header line
	shortRows []int
}

type structuralCheck struct {
	name string
	run  func(*structuralState) *StructuralError
}

// structuralChecks is evaluated in order. Do not merge entries: callers
// render different remediation per kind.
var structuralChecks = []structuralCheck{
	{name: "disallowed-delimiter", run: checkDisallowedDelimiter},
	{name: "header-spacing", run: checkHeaderSpacing},
	{name: "split-header", run: splitHeader},
	{name: "header-completeness", run: checkRequiredHeaders},
	{name: "empty-column-name", run: checkEmptyColumnNames},
	{name: "row-width", run: checkRowWidths},
	{name: "column-prefix", run: checkColumnPrefixes},
}

// CheckStructure runs every structural check against doc. On success it
// returns the validated header and any short-row warning.
func CheckStructure(doc *Document, profile Profile) ([]string, []Warning, *StructuralError) {
	if doc == nil || len(doc.Lines) == 0 {
		return nil, nil, errEmptyFile()
	}

	st := &structuralState{doc: doc, profile: profile}
	for _, check := range structuralChecks {
		if serr := check.run(st); serr != nil {
			return nil, nil, serr
		}
	}

	var warnings []Warning
	if len(st.shortRows) > 0 {
		warnings = append(warnings, Warning{
			Kind:    WarningShortRows,
			Rows:    st.shortRows,
			Message: "Algunas filas tienen menos valores que columnas. Los campos faltantes se interpretarán como vacíos.",
		})
	}
	return st.header, warnings, nil
}

func checkDisallowedDelimiter(st *structuralState) *StructuralError {
	var lines []int
	for i, line := range st.doc.Lines {
		if strings.Contains(line, disallowedDelimiter) {
			lines = append(lines, i+1)
		}
	}
	if len(lines) > 0 {
		return errDisallowedDelimiter(lines)
	}
	return nil
}

func checkHeaderSpacing(st *structuralState) *StructuralError {
	raw := st.doc.Lines[0]
	if !strings.Contains(raw, Delimiter+" ") {
		return nil
	}
	var columns []string
	for _, part := range strings.Split(raw, Delimiter) {
		if strings.HasPrefix(part, " ") {
			columns = append(columns, strings.TrimSpace(part))
		}
	}
	return errHeaderSpacing(columns)
}

// splitHeader never fails; it prepares the names later checks rely on.
func splitHeader(st *structuralState) *StructuralError {
	parts := strings.Split(st.doc.Lines[0], Delimiter)
	st.width = len(parts)
	st.header = make([]string, len(parts))
	for i, p := range parts {
		st.header[i] = strings.TrimSpace(p)
	}
	st.header[0] = strings.TrimSpace(strings.TrimLeft(st.header[0], utf8BOM))
	return nil
}

func checkRequiredHeaders(st *structuralState) *StructuralError {
	present := make(map[string]bool, len(st.header))
	for _, h := range st.header {
		present[h] = true
	}
	var missing []string
	for _, col := range st.profile.RequiredHeaders {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return errMissingHeaderColumns(st.profile.Name, missing)
	}
	return nil
}

func checkEmptyColumnNames(st *structuralState) *StructuralError {
	var positions []int
	for i, h := range st.header {
		if h == "" {
			positions = append(positions, i+1)
		}
	}
	if len(positions) > 0 {
		return errEmptyColumnName(positions)
	}
	return nil
}

// checkRowWidths counts raw delimiter-separated fields per data line. Any
// overflow is fatal; short rows only produce a warning. A blank line counts
// as one field, so it is reported as short before Materialize drops it.
func checkRowWidths(st *structuralState) *StructuralError {
	var overflow []int
	for i, line := range st.doc.Lines[1:] {
		lineNum := i + 2
		n := strings.Count(line, Delimiter) + 1
		switch {
		case n > st.width:
			overflow = append(overflow, lineNum)
		case n < st.width:
			st.shortRows = append(st.shortRows, lineNum)
		}
	}
	if len(overflow) > 0 {
		return errRowOverflow(overflow)
	}
	return nil
}

func checkColumnPrefixes(st *structuralState) *StructuralError {
	if !st.profile.EnforcesPrefixes() {
		return nil
	}
	var invalid []string
	for _, h := range st.header {
		if !hasAcceptedPrefix(h, st.profile.Prefixes) {
			invalid = append(invalid, h)
		}
	}
	if len(invalid) > 0 {
		return errInvalidColumnPrefix(invalid, st.profile.Prefixes)
	}
	return nil
}

func hasAcceptedPrefix(column string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(column, p) {
			return true
		}
	}
	return false
}

// isBlankLine reports lines that carry no data at all. Materialize skips
// them.
func isBlankLine(line string) bool {
	return strings.TrimSpace(line) == ""
}
