package validator

// errors.go defines the file-level verdicts that stop a run before any cell
// is checked. Each kind keeps its own code, message and remediation causes so
// callers can render different guidance per case.

import (
	"fmt"
	"strconv"
	"strings"
)

// StructuralKind identifies which structural check failed.
type StructuralKind string

const (
	UnsupportedEncoding  StructuralKind = "UnsupportedEncoding"
	EmptyFile            StructuralKind = "EmptyFile"
	DisallowedDelimiter  StructuralKind = "DisallowedDelimiter"
	HeaderSpacing        StructuralKind = "HeaderSpacing"
	MissingHeaderColumns StructuralKind = "MissingHeaderColumns"
	EmptyColumnName      StructuralKind = "EmptyColumnName"
	RowOverflow          StructuralKind = "RowOverflow"
	InvalidColumnPrefix  StructuralKind = "InvalidColumnPrefix"
	MalformedTable       StructuralKind = "MalformedTable"
)

// Code returns the support reference for the kind.
func (k StructuralKind) Code() string {
	switch k {
	case UnsupportedEncoding:
		return "STR001"
	case EmptyFile:
		return "STR002"
	case DisallowedDelimiter:
		return "STR003"
	case HeaderSpacing:
		return "STR004"
	case MissingHeaderColumns:
		return "STR005"
	case EmptyColumnName:
		return "STR006"
	case RowOverflow:
		return "STR007"
	case InvalidColumnPrefix:
		return "STR008"
	case MalformedTable:
		return "STR009"
	default:
		return "STR000"
	}
}

// Cause is one likely explanation of a structural error and how to fix it.
type Cause struct {
	Title  string `json:"title"`
	Remedy string `json:"remedy"`
}

// StructuralError aborts a run. Lines holds 1-based source line numbers and
// Columns holds offending column names, whichever applies to the kind.
type StructuralError struct {
	Kind    StructuralKind `json:"kind"`
	Code    string         `json:"code"`
	Lines   []int          `json:"lines,omitempty"`
	Columns []string       `json:"columns,omitempty"`
	Message string         `json:"message"`
	Causes  []Cause        `json:"causes,omitempty"`
	Err     error          `json:"-"`
}

func (e *StructuralError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Lines) > 0 {
		b.WriteString(" (filas: ")
		b.WriteString(joinInts(e.Lines))
		b.WriteString(")")
	}
	if len(e.Columns) > 0 {
		b.WriteString(" (columnas: ")
		b.WriteString(strings.Join(e.Columns, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

func newStructural(kind StructuralKind, msg string, causes ...Cause) *StructuralError {
	return &StructuralError{Kind: kind, Code: kind.Code(), Message: msg, Causes: causes}
}

func errUnsupportedEncoding(err error) *StructuralError {
	e := newStructural(UnsupportedEncoding,
		"El archivo no está en un formato válido. Solo se aceptan CSV (delimitado por comas) y CSV UTF-8 (delimitado por comas).",
		Cause{
			Title:  "El archivo no es texto UTF-8 ni Latin-1",
			Remedy: "Guardá el archivo desde Excel como CSV UTF-8 (delimitado por comas).",
		})
	e.Err = err
	return e
}

func errEmptyFile() *StructuralError {
	return newStructural(EmptyFile,
		"El archivo está vacío.",
		Cause{
			Title:  "El archivo no contiene encabezado ni registros",
			Remedy: "Subí un CSV con el encabezado en la primera fila.",
		})
}

func errDisallowedDelimiter(lines []int) *StructuralError {
	e := newStructural(DisallowedDelimiter,
		"El archivo contiene el separador ';' (punto y coma), el cual no está permitido.",
		Cause{
			Title:  "El archivo CSV (delimitado por comas) se separó en columnas en Excel con 'Texto en columnas'",
			Remedy: "Abrí el archivo original (con todos los datos en la primera columna) y guardalo como CSV (delimitado por comas).",
		},
		Cause{
			Title:  "El archivo contiene ';' por error de tipeo en el encabezado o en un registro",
			Remedy: "Abrí el archivo original, corregí la fila indicada y guardalo como CSV delimitado por comas (,).",
		})
	e.Lines = lines
	return e
}

func errHeaderSpacing(columns []string) *StructuralError {
	e := newStructural(HeaderSpacing,
		"El encabezado contiene una coma seguida de un espacio (', ').",
		Cause{
			Title:  "Hay un espacio después de la coma: 'User.UserId, User.UserAttributes.Nombre'",
			Remedy: "Eliminá el espacio después de cada coma: 'User.UserId,User.UserAttributes.Nombre'.",
		})
	e.Lines = []int{1}
	e.Columns = columns
	return e
}

func errMissingHeaderColumns(project string, missing []string) *StructuralError {
	e := newStructural(MissingHeaderColumns,
		fmt.Sprintf("Faltan columnas obligatorias en el encabezado para el proyecto %s.", project),
		Cause{
			Title:  "El proyecto destino exige estas columnas en el encabezado",
			Remedy: "Agregá estas columnas al encabezado del archivo CSV.",
		})
	e.Lines = []int{1}
	e.Columns = missing
	return e
}

func errEmptyColumnName(positions []int) *StructuralError {
	e := newStructural(EmptyColumnName,
		"El archivo tiene columnas sin nombre en el encabezado.",
		Cause{
			Title:  "Hay una coma de más en el encabezado",
			Remedy: "Borrá la coma sobrante o agregá un nombre de columna.",
		})
	e.Lines = []int{1}
	for _, p := range positions {
		e.Columns = append(e.Columns, "#"+strconv.Itoa(p))
	}
	return e
}

func errRowOverflow(rows []int) *StructuralError {
	e := newStructural(RowOverflow,
		"Se detectaron filas con valores sobrantes (más valores en registros que columnas en el encabezado).",
		Cause{
			Title:  "Coma sobrante al final del registro",
			Remedy: "Eliminá la coma sobrante de la fila indicada.",
		},
		Cause{
			Title:  "Desfasaje de datos: un valor contiene comas (ej.: 'Gutierrez, Giuliana') y se interpreta como varias columnas",
			Remedy: "Quitá las comas internas del valor; la plataforma destino no acepta el registro así.",
		})
	e.Lines = rows
	return e
}

func errInvalidColumnPrefix(columns, prefixes []string) *StructuralError {
	e := newStructural(InvalidColumnPrefix,
		"Algunas columnas no tienen un prefijo válido. Prefijos permitidos: "+strings.Join(prefixes, ", ")+".",
		Cause{
			Title:  "El nombre de la columna no sigue la convención del proyecto",
			Remedy: "Agregá un prefijo válido a la columna, por ej.: User.UserAttributes.NombreColumnaCamelCase.",
		})
	e.Lines = []int{1}
	e.Columns = columns
	return e
}

func errMalformedTable(line int, err error) *StructuralError {
	e := newStructural(MalformedTable,
		"Error al leer el archivo CSV.",
		Cause{
			Title:  "Una fila no pudo interpretarse como CSV",
			Remedy: "Revisá las comillas de la fila indicada y volvé a guardar el archivo como CSV.",
		})
	if line > 0 {
		e.Lines = []int{line}
	}
	e.Err = err
	return e
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
