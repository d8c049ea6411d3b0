// Package editor round-trips an entry through the user's $VISUAL or $EDITOR.
package editor

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const TitlePrefix = "Title:"

// ComposeEntry creates the text presented to the editor.
func ComposeEntry(title, contentMD string) string {
	var b bytes.Buffer
	b.WriteString("# Quire entry\n")
	b.WriteString("# Lines starting with '#' above the '---' line are ignored.\n")
	b.WriteString("# Set the title, then write Markdown below the separator.\n")
	b.WriteString(TitlePrefix + " " + title + "\n")
	b.WriteString("---\n")
	if contentMD != "" {
		b.WriteString(contentMD)
		if !strings.HasSuffix(contentMD, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ParseEdited extracts the title and Markdown body from editor output.
// Everything after the first '---' line is body, '#' headings included.
func ParseEdited(s string) (title, contentMD string) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	head, body, found := strings.Cut(s, "\n---\n")
	if !found {
		if rest, ok := strings.CutPrefix(s, "---\n"); ok {
			head, body = "", rest
		} else {
			head, body = s, ""
		}
	}
	for _, line := range strings.Split(head, "\n") {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "#") {
			continue
		}
		if v, ok := strings.CutPrefix(t, TitlePrefix); ok {
			title = strings.TrimSpace(v)
		}
	}
	return title, strings.TrimSpace(body)
}

// PreferredEditor finds a suitable editor from env or common defaults.
func PreferredEditor() (string, error) {
	if v := os.Getenv("VISUAL"); v != "" {
		return v, nil
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e, nil
	}
	for _, cand := range []string{"nvim", "vim", "vi", "nano"} {
		if p, err := exec.LookPath(cand); err == nil {
			return p, nil
		}
	}
	return "", errors.New("no editor found; set $EDITOR or $VISUAL")
}

// PathFor returns the scratch file used to edit entry name ("new" for drafts).
func PathFor(name string) (string, error) {
	file := name + ".quire.md"
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		return filepath.Join(xdg, "quire", file), nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "quire", "edit", file), nil
}

// Open writes initial to path, runs the editor on it and returns the saved
// bytes and whether they differ from initial. The scratch file is removed.
func Open(path string, initial []byte) (final []byte, changed bool, err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, false, err
	}
	if err := os.WriteFile(path, initial, 0o600); err != nil {
		return nil, false, err
	}
	defer os.Remove(path)

	ed, err := PreferredEditor()
	if err != nil {
		return nil, false, err
	}
	// run through sh so editors configured with flags keep working
	cmd := exec.Command("sh", "-c", `$EDITORCMD "$FILEPATH"`)
	cmd.Env = append(os.Environ(), "EDITORCMD="+ed, "FILEPATH="+path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, false, err
	}
	out, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return out, !bytes.Equal(out, initial), nil
}

// FirstLine returns the first non-empty line squashed to single spaces and cut to max runes.
func FirstLine(s string, max int) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); max > 0 && len(r) > max {
		s = string(r[:max])
	}
	return s
}
