// Package shader discovers shader preset bundles on disk and keeps the
// combined system/custom catalog.
//
// A shader bundle is a directory holding a .slangp preset; the bundle's
// directory name is the shader's name:
//
//	Shaders/
//	  Pixellate/
//	    Pixellate.slangp
//	  CRT-Royale/
//	    crt-royale.slangp
//	    shaders/...
package shader

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefinitionExt is the file extension of a shader preset. Matching is case-sensitive.
const DefinitionExt = ".slangp"

// Entry is a discovered shader definition.
type Entry struct {
	// Name is the base name of the directory containing the preset.
	Name string `json:"name" yaml:"name"`
	// Path is the absolute path of the preset file.
	Path string `json:"path" yaml:"path"`
}

// EntryForPath builds an entry for an arbitrary preset path, naming it
// after the preset's parent directory.
func EntryForPath(path string) Entry {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return Entry{
		Name: filepath.Base(filepath.Dir(path)),
		Path: path,
	}
}

func (e Entry) String() string {
	return e.Name
}

// ScanRoot returns one entry per immediate subdirectory of root that holds a
// preset file. Hidden entries are skipped at both levels and the scan never
// descends further than one level.
//
// A missing or unreadable root yields no entries rather than an error.
// When a bundle holds several presets only the first one listed is used;
// which one that is must not be relied upon.
func ScanRoot(root string, logger *slog.Logger) []Entry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dirs, err := os.ReadDir(root)
	if err != nil {
		logger.Debug("shader root not readable", "root", root, "error", err)
		return nil
	}

	var entries []Entry
	for _, d := range dirs {
		if isHidden(d.Name()) || !isDir(root, d) {
			continue
		}

		bundle := filepath.Join(root, d.Name())
		preset, ok := findPreset(bundle, logger)
		if !ok {
			continue
		}

		entries = append(entries, EntryForPath(preset))
	}

	logger.Debug("scanned shader root", "root", root, "shaders", len(entries))
	return entries
}

// ScanSearchRoots scans each root and concatenates the results in root order.
// Roots are scanned concurrently; duplicate roots are scanned once.
func ScanSearchRoots(roots []string, logger *slog.Logger) []Entry {
	roots = uniqueRoots(roots)
	results := make([][]Entry, len(roots))

	var g errgroup.Group
	for i, root := range roots {
		g.Go(func() error {
			results[i] = ScanRoot(root, logger)
			return nil
		})
	}
	_ = g.Wait() // ScanRoot never fails

	var entries []Entry
	for _, r := range results {
		entries = append(entries, r...)
	}
	return entries
}

// findPreset returns the first non-hidden regular file in dir with DefinitionExt.
func findPreset(dir string, logger *slog.Logger) (string, bool) {
	files, err := os.ReadDir(dir)
	if err != nil {
		logger.Debug("shader bundle not readable", "dir", dir, "error", err)
		return "", false
	}

	var found string
	var ignored []string
	for _, f := range files {
		name := f.Name()
		if isHidden(name) || f.IsDir() || filepath.Ext(name) != DefinitionExt {
			continue
		}
		if found == "" {
			found = filepath.Join(dir, name)
			continue
		}
		ignored = append(ignored, name)
	}

	if len(ignored) > 0 {
		logger.Debug("shader bundle has several presets, using the first",
			"dir", dir, "used", filepath.Base(found), "ignored", ignored)
	}

	return found, found != ""
}

// isDir reports whether the directory entry is a directory, following symlinks.
func isDir(parent string, d os.DirEntry) bool {
	if d.IsDir() {
		return true
	}
	if d.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, d.Name()))
	return err == nil && info.IsDir()
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func uniqueRoots(roots []string) []string {
	seen := make(map[string]struct{}, len(roots))
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		if r == "" {
			continue
		}
		clean := filepath.Clean(r)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out
}
