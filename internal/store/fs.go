package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const stagingDir = ".staging"

// FS is a filesystem-backed Store rooted at one directory. Staged
// records live under <root>/.staging/<uuid> and are excluded from Walk;
// publishing is a single os.Rename, which is atomic within a filesystem.
type FS struct {
	root string
}

// NewFS opens (creating if needed) a store rooted at root.
func NewFS(root string) (*FS, error) {
	if err := os.MkdirAll(filepath.Join(root, stagingDir), 0o755); err != nil {
		return nil, fmt.Errorf("store: init root: %w", err)
	}
	return &FS{root: root}, nil
}

// Root returns the store's base directory.
func (s *FS) Root() string {
	return s.root
}

func (s *FS) Stage() (Staging, error) {
	dir := filepath.Join(s.root, stagingDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create staging dir: %w", err)
	}
	return &fsStaging{store: s, dir: dir}, nil
}

func (s *FS) Exists(location string) bool {
	_, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(location)))
	return err == nil
}

func (s *FS) FileExists(location, name string) bool {
	info, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(location), name))
	return err == nil && !info.IsDir()
}

func (s *FS) Walk(fn func(location string, raw []byte) error) error {
	return filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A folder vanishing mid-walk is not fatal to the listing.
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			// Dot-directories hold unpublished state.
			if strings.HasPrefix(d.Name(), ".") && path != s.root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != MetadataFile {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		rel, err := filepath.Rel(s.root, filepath.Dir(path))
		if err != nil {
			return err
		}
		return fn(filepath.ToSlash(rel), raw)
	})
}

type fsStaging struct {
	store *FS
	dir   string
}

func (st *fsStaging) WriteFile(name string, data []byte) error {
	clean := filepath.Base(name)
	if clean == "." || clean == ".." || clean == string(filepath.Separator) {
		return fmt.Errorf("store: invalid file name %q", name)
	}
	if err := os.WriteFile(filepath.Join(st.dir, clean), data, 0o644); err != nil {
		return fmt.Errorf("store: stage %s: %w", clean, err)
	}
	return nil
}

func (st *fsStaging) Publish(location string) error {
	target := filepath.Join(st.store.root, filepath.FromSlash(location))
	if _, err := os.Stat(target); err == nil {
		return ErrExists
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("store: prepare %s: %w", location, err)
	}
	if err := os.Rename(st.dir, target); err != nil {
		// Lost the race to another publisher of the same location.
		if _, statErr := os.Stat(target); statErr == nil {
			return ErrExists
		}
		return fmt.Errorf("store: publish %s: %w", location, err)
	}
	return nil
}

func (st *fsStaging) Discard() {
	os.RemoveAll(st.dir)
}
