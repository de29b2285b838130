package validator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestValidate_RoundTripClean(t *testing.T) {
	data := []byte("User.UserId,User.UserAttributes.Name\n7,Ana\n")
	cfg := ColumnConfig{"User.UserAttributes.Name": {Type: KindText, Required: true}}

	res, err := Validate(context.Background(), data, ProjectSPVMarketing, cfg)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if res.Structural != nil {
		t.Fatalf("Structural = %v, want nil", res.Structural)
	}
	if !res.OK() {
		t.Errorf("OK() = false, findings = %+v", res.Report.Findings)
	}
	if res.Report.RowCount != 1 {
		t.Errorf("RowCount = %d, want 1", res.Report.RowCount)
	}
	if res.Outcome() != "clean" {
		t.Errorf("Outcome() = %q, want clean", res.Outcome())
	}
}

func TestValidate_BlankLinesWarnThenSkip(t *testing.T) {
	data := []byte("User.UserId,User.UserAttributes.Name\n7,Ana\n\n   \n8,Bob\n")

	res, err := Validate(context.Background(), data, ProjectSPVMarketing, nil)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if res.Structural != nil {
		t.Fatalf("Structural = %v, want nil", res.Structural)
	}
	if res.Report.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", res.Report.RowCount)
	}
	if len(res.Report.Warnings) != 1 {
		t.Fatalf("warnings = %+v, want one short-row warning", res.Report.Warnings)
	}
	if want := []int{3, 4}; !reflect.DeepEqual(res.Report.Warnings[0].Rows, want) {
		t.Errorf("short rows = %v, want %v", res.Report.Warnings[0].Rows, want)
	}
	if !res.OK() {
		t.Errorf("findings = %+v, want none", res.Report.Findings)
	}
}

func TestValidate_IdentifierMismatch(t *testing.T) {
	data := []byte("User.UserId,User.UserAttributes.Name\n7.5,Ana\n")

	res, err := Validate(context.Background(), data, ProjectSPVMarketing, nil)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if res.Report == nil {
		t.Fatalf("Report = nil, structural = %v", res.Structural)
	}
	if len(res.Report.Findings) != 1 {
		t.Fatalf("len(Findings) = %d, want 1: %+v", len(res.Report.Findings), res.Report.Findings)
	}
	f := res.Report.Findings[0]
	if f.Row != 2 || f.Column != ColumnUserID || f.Reason != ReasonTypeMismatch {
		t.Errorf("finding = %+v, want row 2 %s %s", f, ColumnUserID, ReasonTypeMismatch)
	}
	if f.Value != "7.5" {
		t.Errorf("Value = %q, want 7.5", f.Value)
	}
}

func TestValidate_IdentifierOverridesUserType(t *testing.T) {
	data := []byte("User.UserId,User.UserAttributes.Name\nabc,Ana\n,Bea\n")
	cfg := ColumnConfig{ColumnUserID: {Type: KindText, Required: false}}

	res, err := Validate(context.Background(), data, ProjectSPVMarketing, cfg)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	got := reasons(res.Report.Findings)
	want := []string{"2:User.UserId:type_mismatch", "3:User.UserId:required_empty"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("findings = %v, want %v", got, want)
	}
}

func TestValidate_ChannelType(t *testing.T) {
	data := []byte("ChannelType,Address\nsms,1\ntelegram,2\n,3\n EMAIL ,4\n")

	res, err := Validate(context.Background(), data, ProjectProspectos, nil)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	got := reasons(res.Report.Findings)
	want := []string{"3:ChannelType:invalid_enum", "4:ChannelType:required_empty"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("findings = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(res.Report.Findings[0].Allowed, ChannelTypes) {
		t.Errorf("Allowed = %v, want %v", res.Report.Findings[0].Allowed, ChannelTypes)
	}
}

func TestValidate_ChannelTypeFreeOutsideProspectos(t *testing.T) {
	data := []byte("User.UserId,ChannelType\n1,telegram\n2,\n")
	cfg := ColumnConfig{ColumnChannelType: {Type: KindInteger, Required: true}}

	res, err := Validate(context.Background(), data, ProjectSPVMarketing, cfg)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !res.OK() {
		t.Errorf("findings = %v, want none", reasons(res.Report.Findings))
	}
}

func TestValidate_ShortRowsPaddedAndWarned(t *testing.T) {
	data := []byte("ChannelType,Address,Name\nSMS,1,a\nSMS\n")
	cfg := ColumnConfig{"Name": {Type: KindText, Required: true}}

	res, err := Validate(context.Background(), data, ProjectProspectos, cfg)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(res.Report.Warnings) != 1 || !reflect.DeepEqual(res.Report.Warnings[0].Rows, []int{3}) {
		t.Errorf("warnings = %+v, want short row 3", res.Report.Warnings)
	}
	got := reasons(res.Report.Findings)
	want := []string{"3:Name:required_empty"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("findings = %v, want %v", got, want)
	}
}

func TestValidate_FindingsSortedByRowThenColumn(t *testing.T) {
	data := []byte("User.UserId,User.UserAttributes.Zeta,User.UserAttributes.Alpha\nx,a,b\n1,,\n")
	cfg := ColumnConfig{
		"User.UserAttributes.Zeta":  {Type: KindInteger, Required: true},
		"User.UserAttributes.Alpha": {Type: KindDate, Required: true},
	}

	res, err := Validate(context.Background(), data, ProjectSPVMarketing, cfg)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	got := reasons(res.Report.Findings)
	want := []string{
		"2:User.UserAttributes.Alpha:type_mismatch",
		"2:User.UserAttributes.Zeta:type_mismatch",
		"2:User.UserId:type_mismatch",
		"3:User.UserAttributes.Alpha:required_empty",
		"3:User.UserAttributes.Zeta:required_empty",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("findings = %v, want %v", got, want)
	}
}

func TestValidate_Structural(t *testing.T) {
	res, err := Validate(context.Background(), []byte("ChannelType;Address\n"), ProjectProspectos, nil)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if res.Structural == nil || res.Report != nil {
		t.Fatalf("got %+v, want structural only", res)
	}
	if res.Outcome() != "structural" {
		t.Errorf("Outcome() = %q, want structural", res.Outcome())
	}
}

func TestValidate_UnknownProject(t *testing.T) {
	if _, err := Validate(context.Background(), []byte("a\n"), "Nope", nil); err == nil {
		t.Error("Validate() error = nil, want unknown project")
	}
}

func TestValidate_ProjectNameCaseInsensitive(t *testing.T) {
	res, err := Validate(context.Background(), []byte("ChannelType,Address\nSMS,1\n"), "prospectos", nil)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !res.OK() {
		t.Errorf("OK() = false: %+v", res)
	}
}

func TestValidate_Latin1(t *testing.T) {
	// "Año" in ISO-8859-1: 0xF1 is not valid UTF-8 on its own.
	data := []byte("ChannelType,Address,A\xf1o\nSMS,1,2024\n")

	res, err := Validate(context.Background(), data, ProjectProspectos, nil)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if res.Report == nil {
		t.Fatalf("Report = nil, structural = %v", res.Structural)
	}
	if want := []string{"ChannelType", "Address", "Año"}; !reflect.DeepEqual(res.Report.Header, want) {
		t.Errorf("Header = %v, want %v", res.Report.Header, want)
	}
	if res.Report.Encoding != EncodingLatin1 {
		t.Errorf("Encoding = %q, want %q", res.Report.Encoding, EncodingLatin1)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	data := []byte("User.UserId,Metrics.Score\n1,x\nfoo,2\n,\n")
	cfg := ColumnConfig{"Metrics.Score": {Type: KindDecimal, Required: true}}

	first, err := Validate(context.Background(), data, ProjectSPVMarketing, cfg)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	second, err := Validate(context.Background(), data, ProjectSPVMarketing, cfg)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ between runs:\n%+v\n%+v", first.Report, second.Report)
	}
}

func TestEngine_ParallelMatchesSequential(t *testing.T) {
	data := largeFile(5000)
	cfg := ColumnConfig{
		"User.UserAttributes.Email": {Type: KindEmail, Required: true},
		"Metrics.Score":             {Type: KindInteger},
	}

	seq := New(Options{Workers: 1})
	par := New(Options{Workers: 4, ParallelThreshold: 10, ShardSize: 97})

	want, err := seq.Validate(context.Background(), data, ProjectSPVMarketing, cfg)
	if err != nil {
		t.Fatalf("sequential Validate() error = %v", err)
	}
	got, err := par.Validate(context.Background(), data, ProjectSPVMarketing, cfg)
	if err != nil {
		t.Fatalf("parallel Validate() error = %v", err)
	}
	if len(want.Report.Findings) == 0 {
		t.Fatal("fixture produced no findings")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parallel result differs: %d vs %d findings",
			len(got.Report.Findings), len(want.Report.Findings))
	}
}

func TestEngine_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, opts := range []Options{{Workers: 1}, {Workers: 4, ParallelThreshold: 10, ShardSize: 50}} {
		res, err := New(opts).Validate(ctx, largeFile(500), ProjectSPVMarketing, nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Workers=%d: error = %v, want context.Canceled", opts.Workers, err)
		}
		if res.Report != nil {
			t.Errorf("Workers=%d: partial report returned", opts.Workers)
		}
	}
}

func TestCheckCell_Messages(t *testing.T) {
	tests := []struct {
		name   string
		policy ColumnPolicy
		value  string
		bad    bool
		msg    string
	}{
		{
			name:   "required empty generic",
			policy: ColumnPolicy{Name: "Metrics.X", Kind: KindText, Required: true},
			value:  "  ",
			bad:    true,
			msg:    "Campo vacío obligatorio",
		},
		{
			name:   "optional empty",
			policy: ColumnPolicy{Name: "Metrics.X", Kind: KindInteger},
			value:  "",
		},
		{
			name:   "type mismatch label",
			policy: ColumnPolicy{Name: "Metrics.X", Kind: KindDate},
			value:  "ayer",
			bad:    true,
			msg:    "No coincide con tipo Fecha (AAAA-MM-DD)",
		},
		{
			name:   "identifier required",
			policy: ColumnPolicy{Name: ColumnUserID, Kind: KindInteger, Required: true, Fixed: FixedIdentifier},
			value:  "",
			bad:    true,
			msg:    "User.UserId es obligatorio y no puede estar vacío",
		},
		{
			name:   "identifier optional blank",
			policy: ColumnPolicy{Name: ColumnUserID, Kind: KindInteger, Fixed: FixedIdentifier},
			value:  "",
		},
		{
			name:   "identifier not integer",
			policy: ColumnPolicy{Name: ColumnUserID, Kind: KindInteger, Required: true, Fixed: FixedIdentifier},
			value:  "7.0",
			bad:    true,
			msg:    "User.UserId debe ser un número entero",
		},
		{
			name:   "channel type invalid",
			policy: ColumnPolicy{Name: ColumnChannelType, Required: true, Fixed: FixedChannelType, Allowed: ChannelTypes},
			value:  "FAX",
			bad:    true,
			msg:    "Valor inválido. Permitidos: " + strings.Join(ChannelTypes, ", "),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, bad := CheckCell(tt.policy, 2, tt.value)
			if bad != tt.bad {
				t.Fatalf("CheckCell() bad = %v, want %v (%+v)", bad, tt.bad, f)
			}
			if bad && f.Message != tt.msg {
				t.Errorf("Message = %q, want %q", f.Message, tt.msg)
			}
		})
	}
}

func reasons(findings []Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = fmt.Sprintf("%d:%s:%s", f.Row, f.Column, f.Reason)
	}
	return out
}

// largeFile builds an SPV file where every seventh row has a bad identifier
// and every eleventh has a missing email.
func largeFile(rows int) []byte {
	var b strings.Builder
	b.WriteString("User.UserId,User.UserAttributes.Email,Metrics.Score\n")
	for i := 0; i < rows; i++ {
		id := fmt.Sprintf("%d", i)
		if i%7 == 0 {
			id = fmt.Sprintf("id-%d", i)
		}
		email := fmt.Sprintf("u%d@example.com", i)
		if i%11 == 0 {
			email = ""
		}
		fmt.Fprintf(&b, "%s,%s,%d\n", id, email, i%5)
	}
	return []byte(b.String())
}
