// Package ops holds the operational backup tooling: whole data directory
// archives for disaster recovery, and session blob export/import built on
// the same codec the API uses.
package ops

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"tuluyen/internal/backup"
	"tuluyen/internal/state"
	"tuluyen/internal/storage"
)

// ArchiveDataDir writes the whole data directory into a tar.gz archive.
// Symlinks are skipped so restores behave the same everywhere.
func ArchiveDataDir(srcDir, archivePath string) error {
	srcDir = filepath.Clean(strings.TrimSpace(srcDir))
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	if srcDir == "" || archivePath == "" {
		return fmt.Errorf("source dir and archive path are required")
	}
	info, err := os.Stat(srcDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("source is not a directory: %s", srcDir)
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	defer gz.Close()

	tw := tar.NewWriter(gz)
	defer tw.Close()

	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == srcDir {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = rel
		if info.IsDir() && !strings.HasSuffix(hdr.Name, "/") {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()

		_, err = io.Copy(tw, src)
		return err
	})
}

// ExtractArchive unpacks a data directory archive into targetDir. Entry
// paths are validated so a crafted archive cannot escape the target.
func ExtractArchive(archivePath, targetDir string) error {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	targetDir = filepath.Clean(strings.TrimSpace(targetDir))
	if archivePath == "" || targetDir == "" {
		return fmt.Errorf("archive path and target dir are required")
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		rel, err := sanitizeEntryPath(hdr.Name)
		if err != nil {
			return err
		}
		outPath := filepath.Join(targetDir, rel)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(outPath, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return err
			}
			dst, err := os.OpenFile(outPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(dst, tr); err != nil {
				_ = dst.Close()
				return err
			}
			if err := dst.Close(); err != nil {
				return err
			}
		default:
			// Other entry types are ignored.
		}
	}
	return nil
}

func sanitizeEntryPath(name string) (string, error) {
	name = filepath.Clean(strings.TrimSpace(name))
	if name == "." || name == "" {
		return "", fmt.Errorf("invalid archive entry path")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("invalid absolute archive entry path: %s", name)
	}
	if name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry escapes target: %s", name)
	}
	return name, nil
}

// ExportSession loads the saved session from a store and encodes it as the
// portable blob, the same format the HTTP backup endpoint serves.
func ExportSession(ctx context.Context, store storage.Store, logger *log.Logger) (string, error) {
	s, _ := state.Load(ctx, store, logger)
	return backup.Encode(s)
}

// ImportSession validates a blob and writes the restored session into the
// store, replacing whatever was there.
func ImportSession(ctx context.Context, store storage.Store, blob string) error {
	data, err := backup.Decode(blob)
	if err != nil {
		return err
	}
	next := backup.Restore(data)
	if err := state.Save(ctx, store, next); err != nil {
		return fmt.Errorf("save restored session: %w", err)
	}
	return nil
}
