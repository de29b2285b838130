package validator

import (
	"fmt"
	"strings"
)

// DataKind is the expected data type of a column.
type DataKind int

const (
	KindText DataKind = iota
	KindInteger
	KindDecimal
	KindBoolean
	KindDate
	KindEmail
)

// AllKinds lists every DataKind in display order.
var AllKinds = []DataKind{KindText, KindInteger, KindDecimal, KindBoolean, KindDate, KindEmail}

// String returns the canonical English name of the kind.
func (k DataKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	case KindEmail:
		return "email"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Label returns the label users see in the upload form.
func (k DataKind) Label() string {
	switch k {
	case KindText:
		return "Texto"
	case KindInteger:
		return "Entero"
	case KindDecimal:
		return "Decimal"
	case KindBoolean:
		return "Booleano"
	case KindDate:
		return "Fecha (AAAA-MM-DD)"
	case KindEmail:
		return "Email (@)"
	default:
		return k.String()
	}
}

// ParseDataKind accepts either the English name or the form label of a kind,
// case-insensitively.
func ParseDataKind(s string) (DataKind, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, k := range AllKinds {
		if needle == k.String() || needle == strings.ToLower(k.Label()) {
			return k, nil
		}
	}
	switch needle {
	case "string", "texto":
		return KindText, nil
	case "int", "entero":
		return KindInteger, nil
	case "float", "number", "numeric":
		return KindDecimal, nil
	case "bool", "booleano":
		return KindBoolean, nil
	case "fecha":
		return KindDate, nil
	}
	return KindText, fmt.Errorf("unknown data kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k DataKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *DataKind) UnmarshalText(b []byte) error {
	parsed, err := ParseDataKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ColumnSelection is what the upload form supplies for one column.
type ColumnSelection struct {
	Type     DataKind `json:"type" yaml:"type"`
	Required bool     `json:"required" yaml:"required"`
}

// ColumnConfig maps column name to the user's selection. Columns with a fixed
// override ignore their entry.
type ColumnConfig map[string]ColumnSelection

// Document is the decoded file. It is never mutated after decoding.
type Document struct {
	Text     string
	Lines    []string
	Encoding string
}

// FixedRule marks columns whose policy does not come from the user.
type FixedRule int

const (
	FixedNone FixedRule = iota
	FixedIdentifier
	FixedChannelType
)

// ColumnPolicy is the resolved rule for one header column.
type ColumnPolicy struct {
	Name     string
	Index    int
	Kind     DataKind
	Required bool
	Fixed    FixedRule
	Allowed  []string // closed literal set, enforced when non-empty
}

// Row is one materialized data line. Fields are aligned with the header.
type Row struct {
	Number int // 1-based source line; the header is line 1
	Fields []string
}

// Table is the materialized file.
type Table struct {
	Header []string
	Rows   []Row
}

// FindingReason classifies a cell-level finding.
type FindingReason string

const (
	ReasonRequiredEmpty FindingReason = "required_empty"
	ReasonTypeMismatch  FindingReason = "type_mismatch"
	ReasonInvalidEnum   FindingReason = "invalid_enum"
)

// Finding is one semantic violation for one cell.
type Finding struct {
	Row      int           `json:"row"`
	Column   string        `json:"column"`
	Value    string        `json:"value"`
	Reason   FindingReason `json:"reason"`
	Message  string        `json:"message"`
	Expected string        `json:"expected,omitempty"`
	Allowed  []string      `json:"allowed,omitempty"`
}

// WarningKind classifies a non-fatal warning.
type WarningKind string

const WarningShortRows WarningKind = "short_rows"

// Warning is reported alongside findings and never blocks validation.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Rows    []int       `json:"rows"`
	Message string      `json:"message"`
}

// Report is the outcome of a file that passed structural validation.
type Report struct {
	Encoding string    `json:"encoding"`
	Header   []string  `json:"header"`
	RowCount int       `json:"rowCount"`
	Warnings []Warning `json:"warnings"`
	Findings []Finding `json:"findings"`
}

// Clean reports whether no cell violated its policy.
func (r *Report) Clean() bool {
	return len(r.Findings) == 0
}

// Result holds exactly one of Structural or Report.
type Result struct {
	Structural *StructuralError `json:"structural,omitempty"`
	Report     *Report          `json:"report,omitempty"`
}

// OK reports whether the file is structurally valid and has no findings.
func (r Result) OK() bool {
	return r.Structural == nil && r.Report != nil && r.Report.Clean()
}

// Outcome returns "structural", "findings" or "clean".
func (r Result) Outcome() string {
	switch {
	case r.Structural != nil:
		return "structural"
	case r.Report != nil && !r.Report.Clean():
		return "findings"
	default:
		return "clean"
	}
}
