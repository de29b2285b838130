// Package report exports a validation result as a downloadable file.
//
// Three formats are supported: CSV (findings only, one per line), XLSX
// (findings plus a sheet for warnings or the structural verdict) and JSON
// (the complete result). Writers never alter the result; row numbers are the
// 1-based source lines the engine reported.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csvgate/internal/validator"
)

// Format is an export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// ParseFormat accepts a format name or a file name whose extension names it.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimPrefix(ext, ".")
	}
	switch Format(name) {
	case FormatCSV, FormatXLSX, FormatJSON:
		return Format(name), nil
	}
	return "", fmt.Errorf("unsupported report format %q (use csv, xlsx or json)", s)
}

// ContentType returns the MIME type for HTTP responses.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// FileName derives the report name from the validated file's name.
func (f Format) FileName(source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "validacion"
	}
	return base + "_hallazgos." + string(f)
}

// Write renders res in format f.
func Write(w io.Writer, f Format, res validator.Result) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, res)
	case FormatXLSX:
		return WriteXLSX(w, res)
	case FormatJSON:
		return WriteJSON(w, res)
	default:
		return fmt.Errorf("unsupported report format %q", f)
	}
}

// WriteJSON writes the complete result, indented.
func WriteJSON(w io.Writer, res validator.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// ReasonLabel is the Spanish label shown for a finding reason.
func ReasonLabel(r validator.FindingReason) string {
	switch r {
	case validator.ReasonRequiredEmpty:
		return "Campo obligatorio vacío"
	case validator.ReasonTypeMismatch:
		return "Tipo de dato incorrecto"
	case validator.ReasonInvalidEnum:
		return "Valor no permitido"
	default:
		return string(r)
	}
}

var findingHeader = []string{"Fila", "Columna", "Valor", "Motivo", "Mensaje"}

func findingRecord(f validator.Finding) []string {
	return []string{strconv.Itoa(f.Row), f.Column, f.Value, ReasonLabel(f.Reason), f.Message}
}

var structuralHeader = []string{"Código", "Tipo", "Mensaje", "Filas", "Columnas", "Causa", "Solución"}

// structuralRecords yields one record per cause so both explanations of a
// two-cause error stay visible.
func structuralRecords(e *validator.StructuralError) [][]string {
	lines := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = strconv.Itoa(l)
	}
	base := []string{e.Code, string(e.Kind), e.Message, strings.Join(lines, ", "), strings.Join(e.Columns, ", ")}

	if len(e.Causes) == 0 {
		return [][]string{append(base, "", "")}
	}
	records := make([][]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		rec := append(append([]string{}, base...), c.Title, c.Remedy)
		records = append(records, rec)
	}
	return records
}
