package validator

import "testing"

func TestConforms(t *testing.T) {
	tests := []struct {
		kind  DataKind
		value string
		want  bool
	}{
		{KindText, "anything", true},
		{KindText, "   ", false},
		{KindInteger, "7", true},
		{KindInteger, "-12", true},
		{KindInteger, "7.0", true},
		{KindInteger, "7.5", false},
		{KindInteger, "abc", false},
		{KindDecimal, "3.14", true},
		{KindDecimal, "-2e3", true},
		{KindDecimal, ".5", true},
		{KindDecimal, "NaN", false},
		{KindDecimal, "Inf", false},
		{KindDecimal, "1,5", false},
		{KindBoolean, "true", true},
		{KindBoolean, "FALSE", true},
		{KindBoolean, "Sí", true},
		{KindBoolean, "no", true},
		{KindBoolean, "1", false},
		{KindDate, "2024-02-29", true},
		{KindDate, "2023-02-29", false},
		{KindDate, "2024-13-01", false},
		{KindDate, "01/02/2024", false},
		{KindDate, "2024-1-01", false},
		{KindEmail, "ana@example.com", true},
		{KindEmail, "ana.example.com", false},
		{KindEmail, "", false},
	}

	for _, tt := range tests {
		if got := Conforms(tt.kind, tt.value); got != tt.want {
			t.Errorf("Conforms(%s, %q) = %v, want %v", tt.kind, tt.value, got, tt.want)
		}
	}
}

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"7", true},
		{" 42 ", true},
		{"+3", true},
		{"7.0", false},
		{"7.5", false},
		{"1e3", false},
		{"", false},
	}

	for _, tt := range tests {
		if _, ok := ParseIdentifier(tt.value); ok != tt.want {
			t.Errorf("ParseIdentifier(%q) ok = %v, want %v", tt.value, ok, tt.want)
		}
	}
}

func TestParseDataKind(t *testing.T) {
	tests := []struct {
		in      string
		want    DataKind
		wantErr bool
	}{
		{"Integer", KindInteger, false},
		{"entero", KindInteger, false},
		{"Fecha (AAAA-MM-DD)", KindDate, false},
		{"email", KindEmail, false},
		{"Email (@)", KindEmail, false},
		{"bool", KindBoolean, false},
		{"Decimal", KindDecimal, false},
		{"texto", KindText, false},
		{"uuid", KindText, true},
	}

	for _, tt := range tests {
		got, err := ParseDataKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDataKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseDataKind(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDataKind_TextRoundTrip(t *testing.T) {
	for _, k := range AllKinds {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%s) error = %v", k, err)
		}
		var got DataKind
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q) error = %v", b, err)
		}
		if got != k {
			t.Errorf("round trip %s = %s", k, got)
		}
	}
}
