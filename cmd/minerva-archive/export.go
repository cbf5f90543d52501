package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/porticus-lab/minerva-archive/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the archive database as YAML or JSON",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("format", "f", "yaml", "output format: yaml or json")
	exportCmd.Flags().StringP("output", "o", "", "write to file (default: stdout)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	dbPath := filepath.Join(viper.GetString("output_dir"), store.DefaultFile)
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("no archive database at %s: %w", dbPath, err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	var out io.Writer = os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml":
		return st.ExportYAML(cmd.Context(), out)
	case "json":
		return st.ExportJSON(cmd.Context(), out)
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", format)
	}
}
