package cmd

import (
	"fmt"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvgate/internal/validator"
)

var (
	Version   = "0.1.0"
	GitCommit = "development"
	BuildDate = "unknown"
)

func newProjectsCmd() *cobra.Command {
	var asJSON bool

	c := &cobra.Command{
		Use:   "projects",
		Short: "Lista los proyectos destino y sus reglas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles := validator.Profiles()
			if asJSON {
				return printJSON(cmd.OutOrStdout(), profiles)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PROYECTO\tENCABEZADOS OBLIGATORIOS\tPREFIJOS\tDESCRIPCIÓN")
			for _, p := range profiles {
				prefixes := "-"
				if p.EnforcesPrefixes() {
					prefixes = strings.Join(p.Prefixes, " ")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, strings.Join(p.RequiredHeaders, ", "), prefixes, p.Description)
			}
			return tw.Flush()
		},
	}
	c.Flags().BoolVar(&asJSON, "json", false, "Salida en JSON")
	return c
}

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "Lista los tipos de dato para la configuración de columnas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIPO\tETIQUETA")
			for _, k := range validator.AllKinds {
				fmt.Fprintf(tw, "%s\t%s\n", k, k.Label())
			}
			return tw.Flush()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Muestra la versión",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "csvgate v%s\n", Version)
			fmt.Fprintf(w, "  Git Commit: %s\n", GitCommit)
			fmt.Fprintf(w, "  Build Date: %s\n", BuildDate)
			fmt.Fprintf(w, "  Go Version: %s\n", runtime.Version())
			fmt.Fprintf(w, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
