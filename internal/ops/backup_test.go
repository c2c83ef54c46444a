package ops

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tuluyen/internal/model"
	"tuluyen/internal/state"
	"tuluyen/internal/storage"
)

func TestArchiveExtract_RoundTrip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "data")
	files := map[string]string{
		"state.json":          `{"character":{"name":"Kẻ Tu Luyện","level":3}}`,
		"backups/export.json": `{"version":2}`,
	}
	for rel, content := range files {
		path := filepath.Join(src, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	archive := filepath.Join(t.TempDir(), "out", "session.tar.gz")
	require.NoError(t, ArchiveDataDir(src, archive))

	restored := filepath.Join(t.TempDir(), "restored")
	require.NoError(t, ExtractArchive(archive, restored))

	for rel, want := range files {
		got, err := os.ReadFile(filepath.Join(restored, rel))
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}

func TestArchiveDataDir_MissingSource(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "out.tar.gz")
	assert.Error(t, ArchiveDataDir(filepath.Join(t.TempDir(), "nope"), archive))
}

func TestExtractArchive_RejectsTraversal(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "evil.tar.gz")
	f, err := os.Create(archive)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "../escape.json",
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     2,
	}))
	_, err = io.WriteString(tw, "{}")
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	err = ExtractArchive(archive, t.TempDir())
	assert.Error(t, err)
}

func TestExportImportSession_RoundTrip(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard, "", 0)
	store := storage.NewMemory()

	s := state.New()
	s.Character.Name = "Hàn Lập"
	s.Character.Level = 7
	s.Tasks = append(s.Tasks, model.Task{ID: "t1", Title: "Thiền định"})
	require.NoError(t, state.Save(ctx, store, s))

	blob, err := ExportSession(ctx, store, logger)
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	fresh := storage.NewMemory()
	require.NoError(t, ImportSession(ctx, fresh, blob))

	got, _ := state.Load(ctx, fresh, logger)
	assert.Equal(t, "Hàn Lập", got.Character.Name)
	assert.Equal(t, 7, got.Character.Level)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, "Thiền định", got.Tasks[0].Title)
}

func TestImportSession_RejectsGarbage(t *testing.T) {
	store := storage.NewMemory()
	assert.Error(t, ImportSession(context.Background(), store, "not a backup"))
}
