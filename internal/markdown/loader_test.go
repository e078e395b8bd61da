package markdown

import (
	"context"
	"os"
	"testing"
	"testing/fstest"
)

func TestLoaderLoadDirectoryRecursive(t *testing.T) {
	loader := NewLoader(os.DirFS("testdata"), LoaderConfig{Recursive: true})

	notes, err := loader.LoadDirectory(context.Background(), "notes")
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}

	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if notes[0].Path != "notes/archive/old.md" || notes[1].Path != "notes/standup.md" {
		t.Fatalf("unexpected note order: %s, %s", notes[0].Path, notes[1].Path)
	}
}

func TestLoaderLoadDirectoryShallow(t *testing.T) {
	loader := NewLoader(os.DirFS("testdata"), LoaderConfig{})

	notes, err := loader.LoadDirectory(context.Background(), "./notes")
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}
	if len(notes) != 1 || notes[0].Path != "notes/standup.md" {
		t.Fatalf("expected only top-level note, got %+v", notes)
	}
}

func TestLoaderChecksumTracksContent(t *testing.T) {
	fsys := fstest.MapFS{
		"a.md": {Data: []byte("# A")},
		"b.md": {Data: []byte("# A")},
		"c.md": {Data: []byte("# C")},
	}
	loader := NewLoader(fsys, LoaderConfig{})
	ctx := context.Background()

	a, err := loader.LoadFile(ctx, "a.md")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	b, _ := loader.LoadFile(ctx, "b.md")
	c, _ := loader.LoadFile(ctx, "c.md")

	if a.Checksum != b.Checksum {
		t.Fatal("expected identical content to share a checksum")
	}
	if a.Checksum == c.Checksum {
		t.Fatal("expected different content to change the checksum")
	}
}

func TestLoaderHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := NewLoader(fstest.MapFS{"a.md": {Data: []byte("x")}}, LoaderConfig{})
	if _, err := loader.LoadFile(ctx, "a.md"); err == nil {
		t.Fatal("expected cancelled context to abort loading")
	}
}
