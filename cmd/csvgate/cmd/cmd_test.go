package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/csvgate/internal/validator"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestValidate_ExitCodes(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name       string
		project    string
		content    string
		wantCode   int
		wantStdout string
	}{
		{"clean", "Prospectos", "ChannelType,Address\nSMS,1\n", ExitClean, "OK: el archivo es válido"},
		{"findings", "Prospectos", "ChannelType,Address\nFAX,1\n,2\n", ExitFindings, "2 hallazgos"},
		{"structural", "SPV_Marketing", "User.UserId;Name\n1,a\n", ExitStructural, "ERROR DE ESTRUCTURA [STR003]"},
		{"empty file is structural", "Prospectos", "", ExitStructural, "STR002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name+".csv", tt.content)
			code, stdout, stderr := run(t, "validate", path, "--project", tt.project)
			if code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d\nstdout: %s\nstderr: %s", code, tt.wantCode, stdout, stderr)
			}
			if !strings.Contains(stdout, tt.wantStdout) {
				t.Errorf("stdout missing %q:\n%s", tt.wantStdout, stdout)
			}
		})
	}
}

func TestValidate_UsageErrors(t *testing.T) {
	dir := t.TempDir()
	csv := writeFile(t, dir, "a.csv", "ChannelType,Address\nSMS,1\n")
	badCols := writeFile(t, dir, "cols.yaml", "Edad:\n  type: uuid\n")

	tests := []struct {
		name       string
		args       []string
		wantStderr string
	}{
		{"missing project flag", []string{"validate", csv}, "project"},
		{"unknown project", []string{"validate", csv, "-p", "Ventas"}, "PRJ001"},
		{"missing file", []string{"validate", filepath.Join(dir, "nope.csv"), "-p", "Prospectos"}, "nope.csv"},
		{"bad report extension", []string{"validate", csv, "-p", "Prospectos", "--out", "r.pdf"}, "unsupported report format"},
		{"bad column config", []string{"validate", csv, "-p", "Prospectos", "--columns", badCols}, "VAL001"},
		{"too large", []string{"validate", csv, "-p", "Prospectos", "--max-size", "10B"}, "FILE001"},
		{"no arguments", []string{"validate", "-p", "Prospectos"}, "arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(t, tt.args...)
			if code != ExitUsage {
				t.Fatalf("exit code = %d, want %d (stderr: %s)", code, ExitUsage, stderr)
			}
			if !strings.Contains(stderr, tt.wantStderr) {
				t.Errorf("stderr missing %q: %s", tt.wantStderr, stderr)
			}
		})
	}
}

func TestNewValidateCmd_ProjectRequired(t *testing.T) {
	c := newValidateCmd(&globals{})
	f := c.Flags().Lookup("project")
	if f == nil {
		t.Fatal("project flag not defined")
	}
	if got := f.Annotations[cobra.BashCompOneRequiredFlag]; len(got) != 1 || got[0] != "true" {
		t.Errorf("project annotations = %v, want required", f.Annotations)
	}
}

func TestValidate_ColumnsAndReport(t *testing.T) {
	dir := t.TempDir()
	csv := writeFile(t, dir, "base.csv", "User.UserId,User.UserAttributes.Edad\n1,treinta\n2,40\n")
	cols := writeFile(t, dir, "cols.yaml", "User.UserAttributes.Edad:\n  type: Entero\n  required: true\n")
	out := filepath.Join(dir, "hallazgos.xlsx")

	code, stdout, stderr := run(t, "validate", csv, "-p", "spv_marketing", "--columns", cols, "--out", out, "--workers", "2")
	if code != ExitFindings {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, ExitFindings, stderr)
	}
	if !strings.Contains(stdout, "fila 2, User.UserAttributes.Edad") {
		t.Errorf("summary should list the finding:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Reporte: "+out) {
		t.Errorf("summary should name the report:\n%s", stdout)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Hallazgos")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("report rows = %d, want header plus 1 finding", len(rows))
	}
	if rows[1][1] != "User.UserAttributes.Edad" || rows[1][2] != "treinta" {
		t.Errorf("finding row = %v", rows[1])
	}
}

func TestValidate_JSONFromStdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stderr)
	root.SetArgs([]string{"validate", "-", "-p", "Prospectos", "--json", "--env-file", filepath.Join(t.TempDir(), "x.env")})
	root.SetIn(strings.NewReader("ChannelType,Address\nSMS,1\nGCM\n"))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	if code := exitCode(root.Execute(), &stderr); code != ExitClean {
		t.Fatalf("exit code = %d (stderr: %s)", code, stderr.String())
	}

	var res validator.Result
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		t.Fatalf("stdout is not a JSON result: %v\n%s", err, stdout.String())
	}
	if res.Report == nil || res.Report.RowCount != 2 {
		t.Fatalf("report = %+v", res.Report)
	}
	if len(res.Report.Warnings) != 1 {
		t.Errorf("warnings = %+v, want the short row", res.Report.Warnings)
	}
}

func TestValidate_SummaryLimit(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString("ChannelType,Address\n")
	for range 30 {
		b.WriteString("FAX,1\n")
	}
	csv := writeFile(t, dir, "many.csv", b.String())

	_, stdout, _ := run(t, "validate", csv, "-p", "Prospectos", "--limit", "5")
	if got := strings.Count(stdout, "  fila "); got != 5 {
		t.Errorf("listed %d findings, want 5", got)
	}
	if !strings.Contains(stdout, "... y 25 más") {
		t.Errorf("missing overflow line:\n%s", stdout)
	}
}

func TestListingCommands(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"projects"}, []string{"Prospectos", "SPV_Marketing", "User.UserAttributes."}},
		{[]string{"projects", "--json"}, []string{`"name": "Prospectos"`, `"requireUserId": true`}},
		{[]string{"kinds"}, []string{"integer", "Entero", "Fecha (AAAA-MM-DD)"}},
		{[]string{"version"}, []string{"csvgate v"}},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			code, stdout, stderr := run(t, tt.args...)
			if code != ExitClean {
				t.Fatalf("exit code = %d (stderr: %s)", code, stderr)
			}
			for _, want := range tt.want {
				if !strings.Contains(stdout, want) {
					t.Errorf("output missing %q:\n%s", want, stdout)
				}
			}
		})
	}
}
