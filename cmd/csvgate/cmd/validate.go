package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvgate/internal/core"
	"github.com/JonMunkholm/csvgate/internal/report"
	"github.com/JonMunkholm/csvgate/internal/validator"
)

type validateOptions struct {
	project  string
	columns  string
	out      string
	workers  int
	limit    int
	jsonOut  bool
	maxBytes string
}

func newValidateCmd(g *globals) *cobra.Command {
	opts := &validateOptions{}

	c := &cobra.Command{
		Use:   "validate ARCHIVO",
		Short: "Valida un archivo CSV",
		Long: `Valida un archivo CSV contra un proyecto destino.

La configuración de columnas (--columns) es un archivo YAML o JSON que
asigna a cada columna un tipo y si es obligatoria:

  User.UserAttributes.Edad:
    type: Entero
    required: true

Con --out se escribe además un reporte de hallazgos; el formato sale de
la extensión (.csv, .xlsx o .json). Usá "-" como ARCHIVO para leer de
la entrada estándar.

Ejemplos:
  csvgate validate contactos.csv --project Prospectos
  csvgate validate base.csv -p SPV_Marketing --columns columnas.yaml --out hallazgos.xlsx
  cat base.csv | csvgate validate - -p SPV_Marketing --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, g, opts, args[0])
		},
	}

	c.Flags().StringVarP(&opts.project, "project", "p", "", "Proyecto destino (obligatorio)")
	c.Flags().StringVarP(&opts.columns, "columns", "c", "", "Archivo de configuración de columnas (YAML o JSON)")
	c.Flags().StringVarP(&opts.out, "out", "o", "", "Archivo de reporte (.csv, .xlsx o .json)")
	c.Flags().IntVarP(&opts.workers, "workers", "w", -1, "Workers para archivos grandes (default: VALIDATION_WORKERS)")
	c.Flags().IntVar(&opts.limit, "limit", 20, "Hallazgos a mostrar en el resumen (0 = todos)")
	c.Flags().BoolVar(&opts.jsonOut, "json", false, "Imprimir el resultado completo en JSON")
	c.Flags().StringVar(&opts.maxBytes, "max-size", "", "Tamaño máximo del archivo (default: UPLOAD_MAX_FILE_SIZE)")
	// Fails only when the flag is not defined above.
	if err := c.MarkFlagRequired("project"); err != nil {
		panic(fmt.Sprintf("validate: %v", err))
	}
	return c
}

func runValidate(cmd *cobra.Command, g *globals, opts *validateOptions, path string) error {
	// Resolve output format first so a typo fails before the work is done
	var format report.Format
	if opts.out != "" {
		f, err := report.ParseFormat(opts.out)
		if err != nil {
			return err
		}
		format = f
	}

	profile, ok := validator.LookupProfile(opts.project)
	if !ok {
		return fmt.Errorf("%w: %q (disponibles: %s)", core.ErrUnknownProject, opts.project, projectNames())
	}

	columns := validator.ColumnConfig{}
	if opts.columns != "" {
		raw, err := os.ReadFile(opts.columns)
		if err != nil {
			return fmt.Errorf("leer configuración de columnas: %w", err)
		}
		if columns, err = core.ParseColumnConfig(raw); err != nil {
			return err
		}
	}

	data, name, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	if err := checkSize(g, opts, data); err != nil {
		return err
	}

	engineOpts := validator.Options{
		Workers:           g.cfg.Validation.Workers,
		ParallelThreshold: g.cfg.Validation.ParallelThreshold,
		ShardSize:         g.cfg.Validation.ShardSize,
	}
	if opts.workers >= 0 {
		engineOpts.Workers = opts.workers
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	slog.Debug("validating",
		"file", name,
		"project", profile.Name,
		"size", humanize.Bytes(uint64(len(data))),
		"columns", len(columns),
		"workers", engineOpts.Workers,
	)

	start := time.Now()
	res, err := validator.New(engineOpts).Validate(ctx, data, profile.Name, columns)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	slog.Debug("validation finished", "outcome", res.Outcome(), "duration_ms", elapsed.Milliseconds())

	stdout := cmd.OutOrStdout()
	if opts.jsonOut {
		if err := report.WriteJSON(stdout, res); err != nil {
			return err
		}
	} else {
		printSummary(stdout, summaryInfo{
			file:        name,
			project:     profile.Name,
			size:        len(data),
			fingerprint: core.Fingerprint(data),
			elapsed:     elapsed,
			limit:       opts.limit,
		}, res)
	}

	if format != "" {
		if err := writeReport(opts.out, format, res); err != nil {
			return err
		}
		if !opts.jsonOut {
			fmt.Fprintf(stdout, "Reporte: %s\n", opts.out)
		}
	}

	switch res.Outcome() {
	case "structural":
		return &exitError{code: ExitStructural}
	case "findings":
		return &exitError{code: ExitFindings}
	}
	return nil
}

// readInput reads the file, or stdin for "-".
func readInput(stdin io.Reader, path string) ([]byte, string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("leer entrada estándar: %w", err)
		}
		return data, "stdin", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("leer %s: %w", path, err)
	}
	return data, filepath.Base(path), nil
}

// checkSize applies the same limit as the server unless --max-size overrides
// it. An empty file is left to the engine, which reports it as structural.
func checkSize(g *globals, opts *validateOptions, data []byte) error {
	limit := g.cfg.Upload.MaxFileSize.Bytes()
	if opts.maxBytes != "" {
		n, err := humanize.ParseBytes(opts.maxBytes)
		if err != nil {
			return fmt.Errorf("--max-size: %w", err)
		}
		limit = int64(n)
	}
	if limit > 0 && int64(len(data)) > limit {
		return fmt.Errorf("%w: %s exceeds %s", core.ErrFileTooLarge,
			humanize.Bytes(uint64(len(data))), humanize.Bytes(uint64(limit)))
	}
	return nil
}

func writeReport(path string, format report.Format, res validator.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("crear reporte: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("cerrar reporte: %w", cerr)
		}
	}()

	if err := report.Write(f, format, res); err != nil {
		return fmt.Errorf("escribir reporte: %w", err)
	}
	return nil
}

type summaryInfo struct {
	file        string
	project     string
	size        int
	fingerprint string
	elapsed     time.Duration
	limit       int
}

func printSummary(w io.Writer, info summaryInfo, res validator.Result) {
	fmt.Fprintf(w, "Archivo:   %s (%s, %s)\n", info.file, humanize.Bytes(uint64(info.size)), info.fingerprint)
	fmt.Fprintf(w, "Proyecto:  %s\n", info.project)
	fmt.Fprintf(w, "Duración:  %s\n", info.elapsed.Round(time.Millisecond))

	if e := res.Structural; e != nil {
		fmt.Fprintf(w, "\nERROR DE ESTRUCTURA [%s] %s\n", e.Code, e.Message)
		if len(e.Lines) > 0 {
			fmt.Fprintf(w, "  Filas:    %s\n", joinInts(e.Lines))
		}
		if len(e.Columns) > 0 {
			fmt.Fprintf(w, "  Columnas: %s\n", strings.Join(e.Columns, ", "))
		}
		for i, c := range e.Causes {
			fmt.Fprintf(w, "  %d. %s\n     %s\n", i+1, c.Title, c.Remedy)
		}
		return
	}

	rep := res.Report
	if rep == nil {
		return
	}
	fmt.Fprintf(w, "Filas:     %s (%s)\n", humanize.Comma(int64(rep.RowCount)), rep.Encoding)
	for _, wn := range rep.Warnings {
		fmt.Fprintf(w, "Aviso:     %s (filas %s)\n", wn.Message, joinInts(wn.Rows))
	}

	if rep.Clean() {
		fmt.Fprintln(w, "\nOK: el archivo es válido")
		return
	}

	fmt.Fprintf(w, "\n%s hallazgos:\n", humanize.Comma(int64(len(rep.Findings))))
	for i, f := range rep.Findings {
		if info.limit > 0 && i == info.limit {
			fmt.Fprintf(w, "  ... y %s más (usá --out para el detalle completo)\n",
				humanize.Comma(int64(len(rep.Findings)-info.limit)))
			break
		}
		fmt.Fprintf(w, "  fila %d, %s: %s (valor %q)\n", f.Row, f.Column, f.Message, f.Value)
	}
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}

func projectNames() string {
	var names []string
	for _, p := range validator.Profiles() {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

// printJSON is shared by the listing commands.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
