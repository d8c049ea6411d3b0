package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/quire/internal/db"
	"github.com/mithrel/quire/internal/journal"
	"github.com/mithrel/quire/pkg/api"
)

func newJournal(t *testing.T) *journal.Service {
	t.Helper()
	store, err := db.Open(context.Background(), "memory://")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return journal.New(store)
}

func TestDocumentRoundTrip(t *testing.T) {
	e := api.Entry{
		ID:        7,
		Title:     "Trip: day one",
		ContentMD: "# Hi\n\n- one\n- two\n",
		CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
	}
	doc, err := Document(e)
	require.NoError(t, err)
	s := string(doc)
	assert.True(t, strings.HasPrefix(s, "---\n"))
	assert.Contains(t, s, "id: 7\n")
	assert.Contains(t, s, "created_at: 2024-05-01T09:00:00Z\n")

	title, body, err := ParseDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, e.Title, title)
	assert.Equal(t, e.ContentMD, body)
}

func TestParseDocument_NoFrontmatter(t *testing.T) {
	title, body, err := ParseDocument([]byte("just text"))
	require.NoError(t, err)
	assert.Empty(t, title)
	assert.Equal(t, "just text", body)
}

func TestExportImportDir(t *testing.T) {
	ctx := context.Background()
	src := newJournal(t)
	for _, title := range []string{"first", "second", "third"} {
		_, err := src.Create(ctx, title, "body of "+title)
		require.NoError(t, err)
	}

	dir := filepath.Join(t.TempDir(), "out")
	n, err := ExportDir(ctx, src, dir, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 3)

	// a file that fails validation is skipped, not fatal
	require.NoError(t, os.WriteFile(filepath.Join(dir, "9.md"), []byte("---\ntitle: \"\"\n---\nno title"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	dst := newJournal(t)
	res, err := ImportDir(ctx, dst, dir)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Problems, 1)
	assert.True(t, strings.HasPrefix(res.Problems[0], "9.md: "))

	got, err := dst.Search(ctx, "body of second", 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "second", got[0].Title)
	assert.Equal(t, "<p>body of second</p>\n", got[0].ContentHTML)
}

func TestImportJSON(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name     string
		in       string
		imported int
		skipped  int
	}{
		{"array", `[{"title":"a","content_md":"x"},{"title":"b","content_md":"y"}]`, 2, 0},
		{"ndjson", "{\"title\":\"a\",\"content_md\":\"x\"}\n\n{\"title\":\"\",\"content_md\":\"y\"}\n", 1, 1},
		{"empty", "  \n", 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			j := newJournal(t)
			res, err := ImportJSON(ctx, j, strings.NewReader(tc.in))
			require.NoError(t, err)
			assert.Equal(t, tc.imported, res.Imported)
			assert.Equal(t, tc.skipped, res.Skipped)
			n, err := j.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, tc.imported, n)
		})
	}
}

func TestImportJSON_Malformed(t *testing.T) {
	_, err := ImportJSON(context.Background(), newJournal(t), strings.NewReader(`{"title":`))
	require.Error(t, err)
}
