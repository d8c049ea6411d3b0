package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/quire/internal/archive"
	"github.com/mithrel/quire/internal/present/format"
)

func newExportCmd() *cobra.Command {
	var dir, file string
	var pageSize int
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export entries as Markdown files (--dir) or JSON/NDJSON (--file)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (dir == "") == (file == "") {
				return errors.New("exactly one of --dir or --file is required")
			}
			app := getApp(cmd)
			if pageSize <= 0 {
				pageSize = app.Cfg.GetInt("export.page_size")
			}
			if dir != "" {
				n, err := archive.ExportDir(cmd.Context(), app.Journal, dir, pageSize)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", n, dir)
				return nil
			}

			entries, err := archive.Entries(cmd.Context(), app.Journal, pageSize)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
				return err
			}
			f, err := os.Create(file)
			if err != nil {
				return err
			}
			if strings.EqualFold(filepath.Ext(file), ".json") {
				err = format.WriteJSONEntries(f, entries, true)
			} else {
				err = format.WriteNDJSONEntries(f, entries)
			}
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(entries), file)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory for one Markdown file per entry")
	cmd.Flags().StringVarP(&file, "file", "f", "", "output file; .json writes an array, anything else NDJSON")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "page size for export paging (0 uses config)")
	return cmd
}
