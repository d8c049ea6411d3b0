package archive

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/mithrel/quire/pkg/api"
)

type header struct {
	ID        int64     `yaml:"id,omitempty"`
	Title     string    `yaml:"title"`
	CreatedAt time.Time `yaml:"created_at,omitempty"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

// Document renders e as Markdown with a YAML frontmatter header.
func Document(e api.Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	h := header{ID: e.ID, Title: e.Title, CreatedAt: e.CreatedAt.UTC(), UpdatedAt: e.UpdatedAt.UTC()}
	if err := enc.Encode(h); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	buf.WriteString("---\n\n")
	buf.WriteString(e.ContentMD)
	return buf.Bytes(), nil
}

// ParseDocument splits a frontmatter document into its title and body.
// A document without frontmatter yields an empty title.
func ParseDocument(src []byte) (title, body string, err error) {
	var h header
	rest, err := frontmatter.Parse(bytes.NewReader(src), &h)
	if err != nil {
		return "", "", fmt.Errorf("parse frontmatter: %w", err)
	}
	return strings.TrimSpace(h.Title), strings.TrimLeft(string(rest), "\r\n"), nil
}

// FileName is the export file name for e.
func FileName(e api.Entry) string { return api.FormatID(e.ID) + ".md" }

// ExportDir writes every entry into dir, creating it if needed, and returns
// the number of files written.
func ExportDir(ctx context.Context, l Lister, dir string, pageSize int) (int, error) {
	entries, err := Entries(ctx, l, pageSize)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	for i, e := range entries {
		doc, err := Document(e)
		if err != nil {
			return i, err
		}
		if err := os.WriteFile(filepath.Join(dir, FileName(e)), doc, 0o644); err != nil {
			return i, err
		}
	}
	return len(entries), nil
}

// ImportDir creates an entry for every *.md file in dir, in file name order.
// Files that fail to parse or validate are counted as skipped.
func ImportDir(ctx context.Context, c Creator, dir string) (Result, error) {
	var res Result
	files, err := os.ReadDir(dir)
	if err != nil {
		return res, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".md") {
			continue
		}
		names = append(names, f.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		src, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return res, err
		}
		title, body, err := ParseDocument(src)
		if err != nil {
			res.Skipped++
			res.Problems = append(res.Problems, name+": "+err.Error())
			continue
		}
		if err := res.add(ctx, c, name, title, body); err != nil {
			return res, err
		}
	}
	return res, nil
}
