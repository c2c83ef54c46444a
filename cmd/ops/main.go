// Command ops is the operational companion to the server: data directory
// archives, restore drills, and session blob export/import against a saved
// store.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tuluyen/internal/ops"
	"tuluyen/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "backup":
		err = cmdBackup(os.Args[2:])
	case "restore":
		err = cmdRestore(os.Args[2:])
	case "drill":
		err = cmdDrill(os.Args[2:])
	case "export":
		err = cmdExport(os.Args[2:])
	case "import":
		err = cmdImport(os.Args[2:])
	default:
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func cmdBackup(args []string) error {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	out := fs.String("out", "", "output archive path (.tar.gz)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *out == "" {
		ts := time.Now().UTC().Format("20060102T150405Z")
		*out = filepath.Join("backups", "tuluyen-"+ts+".tar.gz")
	}
	if err := ops.ArchiveDataDir(*dataDir, *out); err != nil {
		return err
	}
	fmt.Println(*out)
	return nil
}

func cmdRestore(args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	archive := fs.String("archive", "", "input backup archive (.tar.gz)")
	target := fs.String("target-dir", "data-restored", "restore target directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *archive == "" {
		return fmt.Errorf("archive is required")
	}
	return ops.ExtractArchive(*archive, *target)
}

// cmdDrill proves a backup is restorable: archive, extract, compare digests.
func cmdDrill(args []string) error {
	fs := flag.NewFlagSet("drill", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	workDir := fs.String("work-dir", os.TempDir(), "temporary workspace for drill artifacts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := os.MkdirAll(*workDir, 0o755); err != nil {
		return err
	}
	ts := time.Now().UTC().Format("20060102T150405Z")
	archive := filepath.Join(*workDir, "tuluyen-drill-"+ts+".tar.gz")
	restoreDir := filepath.Join(*workDir, "tuluyen-drill-restore-"+ts)

	if err := ops.ArchiveDataDir(*dataDir, archive); err != nil {
		return err
	}
	if err := ops.ExtractArchive(archive, restoreDir); err != nil {
		return err
	}

	srcDigest, err := dirDigest(*dataDir)
	if err != nil {
		return err
	}
	restoreDigest, err := dirDigest(restoreDir)
	if err != nil {
		return err
	}
	if srcDigest != restoreDigest {
		return fmt.Errorf("digest mismatch after restore: src=%s restored=%s", srcDigest, restoreDigest)
	}

	fmt.Println("backup:", archive)
	fmt.Println("restored:", restoreDir)
	fmt.Println("digest:", srcDigest)
	return nil
}

func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	backend := fs.String("storage", "file", "storage backend: file or sqlite")
	out := fs.String("out", "", "output file, defaults to stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, cleanup, err := openStore(*backend, *dataDir)
	if err != nil {
		return err
	}
	defer cleanup()

	blob, err := ops.ExportSession(context.Background(), store, log.Default())
	if err != nil {
		return err
	}
	if *out == "" {
		fmt.Println(blob)
		return nil
	}
	return os.WriteFile(*out, []byte(blob), 0o644)
}

func cmdImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	backend := fs.String("storage", "file", "storage backend: file or sqlite")
	in := fs.String("in", "", "backup blob file, defaults to stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var blob []byte
	var err error
	if *in == "" {
		blob, err = io.ReadAll(os.Stdin)
	} else {
		blob, err = os.ReadFile(*in)
	}
	if err != nil {
		return err
	}

	store, cleanup, err := openStore(*backend, *dataDir)
	if err != nil {
		return err
	}
	defer cleanup()

	return ops.ImportSession(context.Background(), store, strings.TrimSpace(string(blob)))
}

func openStore(backend, dataDir string) (storage.Store, func(), error) {
	switch backend {
	case "file":
		st, err := storage.NewFile(dataDir)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {}, nil
	case "sqlite":
		st, err := storage.NewSQLite(dataDir)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func dirDigest(root string) (string, error) {
	root = filepath.Clean(root)
	entries := []string{}
	if err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, filepath.ToSlash(rel))
		return nil
	}); err != nil {
		return "", err
	}
	sort.Strings(entries)

	h := sha256.New()
	for _, rel := range entries {
		_, _ = io.WriteString(h, rel)
		_, _ = io.WriteString(h, "\n")
		b, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return "", err
		}
		if _, err := h.Write(b); err != nil {
			return "", err
		}
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func printUsage() {
	fmt.Println("usage:")
	fmt.Println("  tuluyen-ops backup  --data-dir data --out backups/backup.tar.gz")
	fmt.Println("  tuluyen-ops restore --archive backups/backup.tar.gz --target-dir data-restored")
	fmt.Println("  tuluyen-ops drill   --data-dir data --work-dir /tmp")
	fmt.Println("  tuluyen-ops export  --data-dir data --storage file --out session.json")
	fmt.Println("  tuluyen-ops import  --data-dir data --storage file --in session.json")
}
