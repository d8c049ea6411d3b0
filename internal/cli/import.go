package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mithrel/quire/internal/archive"
)

func newImportCmd() *cobra.Command {
	var dir, file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import entries from Markdown files (--dir) or JSON/NDJSON (--file, - for stdin)",
		Long: "Import creates a new entry per record. Ids and timestamps in the input are ignored;\n" +
			"records that fail validation are skipped and reported on stderr.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (dir == "") == (file == "") {
				return errors.New("exactly one of --dir or --file is required")
			}
			app := getApp(cmd)

			var res archive.Result
			var err error
			if dir != "" {
				res, err = archive.ImportDir(cmd.Context(), app.Journal, dir)
			} else {
				var r io.Reader = cmd.InOrStdin()
				if file != "-" {
					f, ferr := os.Open(file)
					if ferr != nil {
						return ferr
					}
					defer f.Close()
					r = f
				}
				res, err = archive.ImportJSON(cmd.Context(), app.Journal, r)
			}
			for _, p := range res.Problems {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s\n", p)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported: %d\nSkipped: %d\n", res.Imported, res.Skipped)
			return err
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory of Markdown files with YAML frontmatter")
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON array or NDJSON file")
	return cmd
}
