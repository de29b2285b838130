package validator

// semantic.go checks every cell against its column policy. It never stops
// early: each violating cell becomes its own Finding.

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// contextCheckInterval is how often, in rows, cancellation is checked.
const contextCheckInterval = 100

// CheckCell applies policy p to value. It returns false when the cell is
// valid.
func CheckCell(p ColumnPolicy, rowNum int, value string) (Finding, bool) {
	f := Finding{Row: rowNum, Column: p.Name, Value: value}

	switch p.Fixed {
	case FixedIdentifier:
		if IsBlank(value) {
			if !p.Required {
				return Finding{}, false
			}
			f.Reason = ReasonRequiredEmpty
			f.Message = fmt.Sprintf("%s es obligatorio y no puede estar vacío", p.Name)
			return f, true
		}
		if _, ok := ParseIdentifier(value); !ok {
			f.Reason = ReasonTypeMismatch
			f.Expected = KindInteger.Label()
			f.Message = fmt.Sprintf("%s debe ser un número entero", p.Name)
			return f, true
		}
		return Finding{}, false

	case FixedChannelType:
		if len(p.Allowed) == 0 {
			break
		}
		if IsBlank(value) {
			f.Reason = ReasonRequiredEmpty
			f.Message = fmt.Sprintf("%s es obligatorio y no puede estar vacío", p.Name)
			return f, true
		}
		if !inSet(value, p.Allowed) {
			f.Reason = ReasonInvalidEnum
			f.Allowed = p.Allowed
			f.Message = "Valor inválido. Permitidos: " + strings.Join(p.Allowed, ", ")
			return f, true
		}
		return Finding{}, false
	}

	if IsBlank(value) {
		if !p.Required {
			return Finding{}, false
		}
		f.Reason = ReasonRequiredEmpty
		f.Message = "Campo vacío obligatorio"
		return f, true
	}
	if !Conforms(p.Kind, value) {
		f.Reason = ReasonTypeMismatch
		f.Expected = p.Kind.Label()
		f.Message = "No coincide con tipo " + p.Kind.Label()
		return f, true
	}
	return Finding{}, false
}

// CheckRows validates rows sequentially and returns findings in row, then
// header, order.
func CheckRows(ctx context.Context, rows []Row, policies []ColumnPolicy) ([]Finding, error) {
	var findings []Finding
	for i, row := range rows {
		if i%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for _, p := range policies {
			value := ""
			if p.Index < len(row.Fields) {
				value = row.Fields[p.Index]
			}
			if f, bad := CheckCell(p, row.Number, value); bad {
				findings = append(findings, f)
			}
		}
	}
	return findings, nil
}

// SortFindings orders findings by row number, then column name. The sort is
// stable so identical keys keep their discovery order.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Row != findings[j].Row {
			return findings[i].Row < findings[j].Row
		}
		return findings[i].Column < findings[j].Column
	})
}
