package cli

import (
	"context"
	"io"
	"os"
	"os/exec"

	"golang.org/x/term"

	"github.com/mithrel/quire/internal/present"
	"github.com/mithrel/quire/pkg/api"
)

const defaultPager = "less -FRSX"

func renderEntries(ctx context.Context, out, errOut io.Writer, entries []api.Entry, opts present.Options) error {
	if opts.Mode == present.ModeTUI {
		if isTerminal(out) {
			return present.RenderEntries(ctx, out, entries, opts)
		}
		// no terminal to draw on
		opts.Mode = present.ModePlain
	}
	return withPager(ctx, out, errOut, func(w io.Writer) error {
		return present.RenderEntries(ctx, w, entries, opts)
	})
}

func renderEntry(ctx context.Context, out, errOut io.Writer, entry api.Entry, opts present.Options) error {
	return withPager(ctx, out, errOut, func(w io.Writer) error {
		return present.RenderEntry(ctx, w, entry, opts)
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// withPager pipes write through $PAGER when out is a terminal.
func withPager(ctx context.Context, out, errOut io.Writer, write func(io.Writer) error) error {
	if !isTerminal(out) {
		return write(out)
	}
	pager := os.Getenv("PAGER")
	if pager == "" {
		pager = defaultPager
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", pager)
	cmd.Stdout = out
	cmd.Stderr = errOut
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return write(out)
	}
	if err := cmd.Start(); err != nil {
		return write(out)
	}
	writeErr := write(stdin)
	_ = stdin.Close()
	waitErr := cmd.Wait()
	if writeErr != nil {
		return writeErr
	}
	return waitErr
}
