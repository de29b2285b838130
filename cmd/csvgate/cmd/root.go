// Package cmd implements the csvgate command line.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvgate/internal/config"
	"github.com/JonMunkholm/csvgate/internal/core"
	"github.com/JonMunkholm/csvgate/internal/logging"
)

// Exit codes.
const (
	ExitClean      = 0
	ExitFindings   = 1
	ExitStructural = 2
	ExitUsage      = 3
)

// exitError carries a process exit code. A nil err means the outcome was
// already reported and nothing more is printed.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// globals holds the persistent flags.
type globals struct {
	envFile string
	verbose bool
	cfg     *config.Config
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "csvgate",
		Short: "Valida archivos CSV antes de importarlos",
		Long: `csvgate revisa un archivo CSV contra las reglas del proyecto destino
antes de importarlo a la plataforma de mensajería.

Primero se valida la estructura (codificación, separador, encabezado,
ancho de filas) y, si es correcta, cada celda según el tipo y la
obligatoriedad configurados para su columna.

Códigos de salida:
  0  archivo válido
  1  hay hallazgos por celda
  2  error de estructura
  3  error de uso o de lectura`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadDotEnv(g.envFile); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			level := cfg.Logging.Level
			if g.verbose {
				level = "debug"
			}
			// stdout carries results only
			logging.SetupWriter(stderr, level, cfg.Logging.Format)
			g.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "Archivo .env a cargar si existe")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Salida de diagnóstico en stderr")

	root.AddCommand(newValidateCmd(g))
	root.AddCommand(newProjectsCmd())
	root.AddCommand(newKindsCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the CLI with the process arguments and returns the exit code.
func Execute() int {
	return Run(os.Args[1:], os.Stdout, os.Stderr)
}

// Run executes the CLI with explicit arguments and streams.
func Run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return exitCode(root.Execute(), stderr)
}

// exitCode reports err on stderr and maps it to a process exit code.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return ExitClean
	}

	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			printError(stderr, exit.err)
		}
		return exit.code
	}

	printError(stderr, err)
	return ExitUsage
}

func printError(w io.Writer, err error) {
	if core.IsUserFacing(err) {
		fmt.Fprintf(w, "Error: %s\n  Detalle: %v\n", core.FormatUserError(err), err)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
