package markdown

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// NoteFile is a markdown note discovered on disk.
type NoteFile struct {
	// Path is slash separated and relative to the loader root.
	Path     string
	Source   []byte
	Checksum [sha256.Size]byte
}

// LoaderConfig configures note discovery.
type LoaderConfig struct {
	// Pattern filters file names (defaults to "*.md"). Patterns containing a
	// slash are matched against the relative path instead of the base name.
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// Loader walks a filesystem for markdown notes.
type Loader struct {
	fs        fs.FS
	pattern   string
	recursive bool
}

// NewLoader constructs a Loader over filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	return &Loader{
		fs:        filesystem,
		pattern:   strings.ReplaceAll(pattern, "**/", ""),
		recursive: cfg.Recursive,
	}
}

// LoadFile reads a single note.
func (l *Loader) LoadFile(ctx context.Context, name string) (*NoteFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = path.Clean(strings.TrimPrefix(name, "./"))
	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", name, err)
	}
	return &NoteFile{
		Path:     name,
		Source:   data,
		Checksum: sha256.Sum256(data),
	}, nil
}

// LoadDirectory returns every note under dir matching the loader pattern,
// sorted by path.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]*NoteFile, error) {
	root := path.Clean(strings.TrimPrefix(dir, "./"))
	if root == "" {
		root = "."
	}

	var notes []*NoteFile
	err := fs.WalkDir(l.fs, root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != root && !l.recursive {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !l.matches(p) {
			return nil
		}
		note, err := l.LoadFile(ctx, p)
		if err != nil {
			return err
		}
		notes = append(notes, note)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(notes, func(i, j int) bool { return notes[i].Path < notes[j].Path })
	return notes, nil
}

func (l *Loader) matches(p string) bool {
	target := path.Base(p)
	if strings.Contains(l.pattern, "/") {
		target = p
	}
	ok, err := path.Match(l.pattern, target)
	return err == nil && ok
}
