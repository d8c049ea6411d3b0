package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/quire/internal/archive"
	"github.com/mithrel/quire/internal/editor"
	"github.com/mithrel/quire/internal/journal"
	"github.com/mithrel/quire/internal/present"
	"github.com/mithrel/quire/internal/util"
	"github.com/mithrel/quire/pkg/api"
)

const completionLimit = 200

func newEntryCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "entry",
		Aliases: []string{"e"},
		Short:   "Create, read, update and delete journal entries",
	}
	cmd.AddCommand(newEntryAddCmd())
	cmd.AddCommand(newEntryShowCmd(r))
	cmd.AddCommand(newEntryListCmd())
	cmd.AddCommand(newEntrySearchCmd())
	cmd.AddCommand(newEntryEditCmd(r))
	cmd.AddCommand(newEntryDeleteCmd(r))
	return cmd
}

// outputFlags are shared by the commands that print entries.
type outputFlags struct {
	mode      string
	indent    bool
	noHeaders bool
}

func (o *outputFlags) register(cmd *cobra.Command, def string, modes ...string) {
	cmd.Flags().StringVarP(&o.mode, "output", "o", def, "output mode: "+strings.Join(modes, "|"))
	cmd.Flags().BoolVar(&o.indent, "indent", false, "indent JSON output")
	cmd.Flags().BoolVar(&o.noHeaders, "noheaders", false, "hide column headers (plain/tui)")
	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return modes, cobra.ShellCompDirectiveNoFileComp
	})
}

func (o *outputFlags) options() (present.Options, error) {
	m, ok := present.ParseMode(o.mode)
	if !ok {
		return present.Options{}, fmt.Errorf("unknown output mode %q", o.mode)
	}
	return present.Options{Mode: m, JSONIndent: o.indent, Headers: !o.noHeaders}, nil
}

// parseEntryID reports malformed ids the same way as missing ones.
func parseEntryID(s string) (int64, error) {
	id, ok := api.ParseID(strings.TrimSpace(s))
	if !ok {
		return 0, fmt.Errorf("entry %s: %w", s, journal.ErrNotFound)
	}
	return id, nil
}

func (r *runner) completeEntryIDs(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	app, err := r.ensureApp(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	entries, err := app.Journal.List(cmd.Context(), completionLimit, 0)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return util.CompleteEntries(toComplete, entries, 20), cobra.ShellCompDirectiveNoFileComp
}

// readContent returns the Markdown given by --content or --file ("-" is stdin)
// and whether either flag was used.
func readContent(cmd *cobra.Command) (string, bool, error) {
	flags := cmd.Flags()
	if flags.Changed("content") && flags.Changed("file") {
		return "", false, errors.New("use either --content or --file, not both")
	}
	if flags.Changed("content") {
		s, err := flags.GetString("content")
		return s, true, err
	}
	if !flags.Changed("file") {
		return "", false, nil
	}
	path, err := flags.GetString("file")
	if err != nil {
		return "", false, err
	}
	var b []byte
	if path == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

func contentFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("content", "c", "", "Markdown content")
	cmd.Flags().StringP("file", "f", "", "read Markdown content from a file (- for stdin)")
}

// editEntry opens the editor on title and content and returns the result.
func editEntry(name, title, content string) (string, string, bool, error) {
	path, err := editor.PathFor(name)
	if err != nil {
		return "", "", false, err
	}
	out, changed, err := editor.Open(path, []byte(editor.ComposeEntry(title, content)))
	if err != nil {
		return "", "", false, err
	}
	t, c := editor.ParseEdited(string(out))
	return t, c, changed, nil
}

func newEntryAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a new entry; without content, opens $EDITOR",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			title := strings.TrimSpace(strings.Join(args, " "))
			content, ok, err := readContent(cmd)
			if err != nil {
				return err
			}
			if !ok {
				title, content, _, err = editEntry("new", title, "")
				if err != nil {
					return err
				}
				if title == "" && content == "" {
					return errors.New("empty entry; nothing saved")
				}
			}
			e, err := app.Journal.Create(cmd.Context(), title, content)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %d\n", e.ID)
			return nil
		},
	}
	contentFlags(cmd)
	return cmd
}

func newEntryShowCmd(r *runner) *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:               "show <id>",
		Short:             "Show an entry",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: r.completeEntryIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := out.options()
			if err != nil {
				return err
			}
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			e, err := getApp(cmd).Journal.Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("entry %d: %w", id, err)
			}
			return renderEntry(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), e, opts)
		},
	}
	out.register(cmd, "pretty", "plain", "pretty", "json", "ndjson", "html")
	return cmd
}

// pageFlags select a window of a listing, or every entry with --all.
type pageFlags struct {
	limit  int
	offset int
	all    bool
}

func (p *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&p.limit, "limit", "n", 20, "maximum entries to return")
	cmd.Flags().IntVar(&p.offset, "offset", 0, "entries to skip")
	cmd.Flags().BoolVar(&p.all, "all", false, "return every entry, paging with export.page_size")
}

func newEntryListCmd() *cobra.Command {
	var out outputFlags
	var page pageFlags
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List entries, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := out.options()
			if err != nil {
				return err
			}
			app := getApp(cmd)
			var entries []api.Entry
			if page.all {
				entries, err = archive.Entries(cmd.Context(), app.Journal, app.Cfg.GetInt("export.page_size"))
			} else {
				entries, err = app.Journal.List(cmd.Context(), page.limit, page.offset)
			}
			if err != nil {
				return err
			}
			opts.Delete = func(ctx context.Context, id int64) error {
				ok, err := app.Journal.Delete(ctx, id)
				if err == nil && !ok {
					err = journal.ErrNotFound
				}
				return err
			}
			return renderEntries(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), entries, opts)
		},
	}
	out.register(cmd, "tui", "plain", "json", "ndjson", "html", "tui")
	page.register(cmd)
	return cmd
}

func newEntrySearchCmd() *cobra.Command {
	var out outputFlags
	var page pageFlags
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find entries whose title or content contains the query, ignoring case",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := out.options()
			if err != nil {
				return err
			}
			app := getApp(cmd)
			q := strings.Join(args, " ")
			var entries []api.Entry
			if page.all {
				entries, err = archive.Entries(cmd.Context(), searcher{app.Journal, q}, app.Cfg.GetInt("export.page_size"))
			} else {
				entries, err = app.Journal.Search(cmd.Context(), q, page.limit, page.offset)
			}
			if err != nil {
				return err
			}
			return renderEntries(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), entries, opts)
		},
	}
	out.register(cmd, "plain", "plain", "json", "ndjson", "html", "tui")
	page.register(cmd)
	return cmd
}

// searcher pages through search results like a listing.
type searcher struct {
	j *journal.Service
	q string
}

func (s searcher) List(ctx context.Context, limit, offset int) ([]api.Entry, error) {
	return s.j.Search(ctx, s.q, limit, offset)
}

func newEntryEditCmd(r *runner) *cobra.Command {
	var title string
	var replace bool
	cmd := &cobra.Command{
		Use:               "edit <id>",
		Short:             "Edit an entry; without flags, opens $EDITOR",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: r.completeEntryIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			cur, err := app.Journal.Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("entry %d: %w", id, err)
			}

			var patch api.Patch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			content, ok, err := readContent(cmd)
			if err != nil {
				return err
			}
			if ok {
				patch.ContentMD = &content
			}
			mode := api.UpdatePartial
			if replace {
				mode = api.UpdateReplace
			}

			if patch.Empty() && !replace {
				t, c, changed, err := editEntry(api.FormatID(id), cur.Title, cur.ContentMD)
				if err != nil {
					return err
				}
				if !changed {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unchanged %d\n", id)
					return nil
				}
				patch = api.Patch{Title: &t, ContentMD: &c}
			}

			e, err := app.Journal.Update(cmd.Context(), id, patch, mode)
			if err != nil {
				return fmt.Errorf("entry %d: %w", id, err)
			}
			verb := "Updated"
			if e.UpdatedAt.Equal(cur.UpdatedAt) {
				verb = "Unchanged"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", verb, id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	contentFlags(cmd)
	cmd.Flags().BoolVar(&replace, "replace", false, "replace the whole entry; requires --title and content")
	return cmd
}

func newEntryDeleteCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:               "delete <id>...",
		Aliases:           []string{"rm"},
		Short:             "Delete entries",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: r.completeEntryIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			var missing []string
			for _, arg := range args {
				id, ok := api.ParseID(arg)
				if !ok {
					missing = append(missing, arg)
					continue
				}
				deleted, err := app.Journal.Delete(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !deleted {
					missing = append(missing, arg)
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d\n", id)
			}
			if len(missing) > 0 {
				return fmt.Errorf("entry %s: %w", strings.Join(missing, ", "), journal.ErrNotFound)
			}
			return nil
		},
	}
}
