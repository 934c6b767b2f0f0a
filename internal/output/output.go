// Package output plans and writes generated files.
package output

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrExists is returned when a file would be overwritten without Force and
// it does not carry the generated marker.
var ErrExists = errors.New("file exists")

// File is a generated file relative to Options.Root.
type File struct {
	RelPath string
	Content []byte
}

// Options controls how files are written.
type Options struct {
	Root   string // base directory; "" means the working directory
	Force  bool   // overwrite files not produced by the generator
	DryRun bool   // plan only
	// Marker identifies files the generator produced earlier. Such files are
	// overwritten without Force.
	Marker string
}

// PlannedFile describes a file the writer intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
	Exists  bool
}

// Result lists the planned files in path order.
type Result struct {
	Planned []PlannedFile
}

// Write plans files deterministically and, unless DryRun is set, writes each
// one atomically. All overwrite checks run before anything is written.
func Write(files []File, opts Options) (*Result, error) {
	sorted := append([]File(nil), files...)
	sort.Slice(sorted, func(i, j int) bool {
		return filepath.ToSlash(sorted[i].RelPath) < filepath.ToSlash(sorted[j].RelPath)
	})

	res := &Result{Planned: make([]PlannedFile, 0, len(sorted))}
	for _, f := range sorted {
		if strings.TrimSpace(f.RelPath) == "" {
			return nil, fmt.Errorf("output: empty file path")
		}
		p := filepath.Join(opts.Root, f.RelPath)
		exists, err := checkOverwrite(p, opts)
		if err != nil {
			return nil, err
		}
		res.Planned = append(res.Planned, PlannedFile{
			RelPath: filepath.ToSlash(f.RelPath),
			Size:    len(f.Content),
			Mode:    0o644,
			Exists:  exists,
		})
	}
	if opts.DryRun {
		return res, nil
	}
	for _, f := range sorted {
		if err := writeAtomic(filepath.Join(opts.Root, f.RelPath), f.Content); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func checkOverwrite(p string, opts Options) (bool, error) {
	st, err := os.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", p, err)
	}
	if st.IsDir() {
		return true, fmt.Errorf("output: %s is a directory", p)
	}
	if opts.Force {
		return true, nil
	}
	if opts.Marker != "" {
		if data, err := os.ReadFile(p); err == nil && bytes.Contains(head(data), []byte(opts.Marker)) {
			return true, nil
		}
	}
	return true, fmt.Errorf("%w: %s (use --force to overwrite)", ErrExists, p)
}

// head limits the marker search to the file banner.
func head(data []byte) []byte {
	const n = 512
	if len(data) > n {
		return data[:n]
	}
	return data
}

func writeAtomic(p string, content []byte) error {
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", p, err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return fmt.Errorf("write temp %s: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("close temp %s: %w", p, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("chmod %s: %w", p, err)
	}
	if err := os.Rename(name, p); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("rename %s: %w", p, err)
	}
	return nil
}
