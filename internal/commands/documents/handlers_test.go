package documentscmd

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-doctree/internal/doctree"
	"github.com/goliatone/go-doctree/internal/markdown"
)

type recordingRegistry struct {
	handlers []any
	err      error
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	if r.err != nil {
		return r.err
	}
	r.handlers = append(r.handlers, handler)
	return nil
}

func newService() (doctree.Service, *doctree.MemoryStore) {
	store := doctree.NewMemoryStore()
	return doctree.NewService(store, store), store
}

func TestRebuildHandlerRebuildsAndReports(t *testing.T) {
	service, _ := newService()
	var observed *doctree.RebuildResult
	handler := NewRebuildDocumentHandler(service, nil, func(_ context.Context, result *doctree.RebuildResult) {
		observed = result
	})

	msg := RebuildDocumentCommand{DocumentID: uuid.New(), ProjectID: uuid.New(), Markdown: "# Title\n\nbody #tag"}
	if err := handler.Execute(context.Background(), msg); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if observed == nil || observed.DocumentID != msg.DocumentID || observed.TagsInserted != 1 {
		t.Fatalf("unexpected observed result %+v", observed)
	}

	tree, err := service.Load(context.Background(), msg.DocumentID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tree.Root.Kind != doctree.KindDocument || len(tree.Root.Children) != 2 {
		t.Fatalf("unexpected tree root %+v", tree.Root)
	}
}

func TestRebuildHandlerValidatesMessage(t *testing.T) {
	service, _ := newService()
	handler := NewRebuildDocumentHandler(service, nil, nil)

	err := handler.Execute(context.Background(), RebuildDocumentCommand{ProjectID: uuid.New()})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRebuildHandlerKeepsServiceErrorCategory(t *testing.T) {
	service, _ := newService()
	handler := NewRebuildDocumentHandler(service, nil, nil)

	err := handler.Execute(context.Background(), RebuildDocumentCommand{
		DocumentID: uuid.New(),
		ProjectID:  uuid.New(),
		Markdown:   string([]byte{0xff}),
	})
	if !goerrors.IsCategory(err, goerrors.CategoryBadInput) {
		t.Fatalf("expected bad input category from parse failure, got %v", err)
	}
	if doctree.ErrorCode(err) != doctree.CodeParseFailed {
		t.Fatalf("expected %s, got %s", doctree.CodeParseFailed, doctree.ErrorCode(err))
	}
}

func TestDeleteHandlerRemovesTree(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()
	docID := uuid.New()
	if _, err := service.Rebuild(ctx, doctree.RebuildInput{DocumentID: docID, ProjectID: uuid.New(), Markdown: "text"}); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	removed := -1
	handler := NewDeleteDocumentTreeHandler(service, nil, func(_ context.Context, id uuid.UUID, count int) {
		if id == docID {
			removed = count
		}
	})
	if err := handler.Execute(ctx, DeleteDocumentTreeCommand{DocumentID: docID}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed nodes, got %d", removed)
	}
	if _, err := service.Load(ctx, docID); !errors.Is(err, doctree.ErrDocumentNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	if err := handler.Execute(ctx, DeleteDocumentTreeCommand{}); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSyncHandlerRebuildsNotesWithStableIDs(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()
	projectID := uuid.New()
	notes := fstest.MapFS{
		"notes/a.md":         {Data: []byte("# A #shared")},
		"notes/b.md":         {Data: []byte("- item #shared")},
		"notes/ignore.txt":   {Data: []byte("#skipped")},
		"notes/deep/c.md":    {Data: []byte("nested")},
		"notes/deep/bad.txt": {Data: []byte{0xff}},
	}
	resolver := func(dir string) (fs.FS, error) {
		return fs.Sub(notes, dir)
	}

	var report *SyncReport
	handler := NewSyncDirectoryHandler(service, nil, resolver, func(_ context.Context, r *SyncReport) {
		report = r
	})

	if err := handler.Execute(ctx, SyncDirectoryCommand{ProjectID: projectID, Directory: "notes", Recursive: true}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if report == nil || len(report.Rebuilt) != 3 {
		t.Fatalf("expected 3 rebuilt notes, got %+v", report)
	}
	wantPaths := []string{"a.md", "b.md", "deep/c.md"}
	for i, p := range wantPaths {
		if report.Paths[i] != p {
			t.Fatalf("path %d: got %s want %s", i, report.Paths[i], p)
		}
		if report.Rebuilt[i].DocumentID != doctree.DocumentIDForPath(projectID, p) {
			t.Fatalf("document id for %s is not derived from its path", p)
		}
	}

	tags, err := service.ListTags(ctx, projectID)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != 1 || tags[0].TagName != "shared" {
		t.Fatalf("expected single shared tag, got %+v", tags)
	}
}

func TestSyncHandlerReportsFailedNotes(t *testing.T) {
	service, _ := newService()
	notes := fstest.MapFS{
		"good.md": {Data: []byte("fine")},
		"bad.md":  {Data: []byte{0xff, 0xfe}},
	}
	handler := NewSyncDirectoryHandler(service, nil, func(string) (fs.FS, error) { return notes, nil }, nil)

	err := handler.Execute(context.Background(), SyncDirectoryCommand{ProjectID: uuid.New(), Directory: "."})
	if err == nil {
		t.Fatalf("expected an error for the invalid note")
	}
	if !errors.Is(err, markdown.ErrInvalidUTF8) {
		t.Fatalf("expected the note's parse error, got %v", err)
	}
}

func TestRegisterDocumentCommands(t *testing.T) {
	service, _ := newService()
	registry := &recordingRegistry{}

	set, err := RegisterDocumentCommands(registry, service, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if set.Rebuild == nil || set.Delete == nil || set.Sync == nil {
		t.Fatalf("expected all handlers, got %+v", set)
	}
	if len(registry.handlers) != 3 {
		t.Fatalf("expected 3 registrations, got %d", len(registry.handlers))
	}

	if _, err := RegisterDocumentCommands(nil, nil, nil); err == nil {
		t.Fatalf("expected error for nil service")
	}

	failing := &recordingRegistry{err: errors.New("registry closed")}
	if _, err := RegisterDocumentCommands(failing, service, nil); err == nil {
		t.Fatalf("expected registry error to surface")
	}
}

func TestRegisterSyncCron(t *testing.T) {
	service, _ := newService()
	notes := fstest.MapFS{"a.md": {Data: []byte("cron #run")}}
	set, err := RegisterDocumentCommands(nil, service, nil, WithFSResolver(func(string) (fs.FS, error) { return notes, nil }))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	var job func() error
	registrar := func(_ command.HandlerConfig, fn any) error {
		job = fn.(func() error)
		return nil
	}
	msg := SyncDirectoryCommand{ProjectID: uuid.New(), Directory: "."}
	if err := RegisterSyncCron(registrar, set.Sync, command.HandlerConfig{}, msg); err != nil {
		t.Fatalf("register cron: %v", err)
	}
	if job == nil {
		t.Fatalf("expected cron job to be registered")
	}
	if err := job(); err != nil {
		t.Fatalf("run cron job: %v", err)
	}
	if tags, _ := service.ListTags(context.Background(), msg.ProjectID); len(tags) != 1 {
		t.Fatalf("expected cron sync to record a tag, got %d", len(tags))
	}
}

func TestSyncHandlerSkipsUnchangedNotes(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()
	projectID := uuid.New()
	notes := fstest.MapFS{
		"a.md": {Data: []byte("# A #alpha")},
		"b.md": {Data: []byte("# B #beta")},
	}

	var report *SyncReport
	set, err := RegisterDocumentCommands(nil, service, nil,
		WithFSResolver(func(string) (fs.FS, error) { return notes, nil }),
		WithSyncObserver(func(_ context.Context, r *SyncReport) { report = r }),
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	msg := SyncDirectoryCommand{ProjectID: projectID, Directory: "."}

	if err := set.Sync.Execute(ctx, msg); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if len(report.Rebuilt) != 2 || len(report.Unchanged) != 0 {
		t.Fatalf("first sync should rebuild both notes: %+v", report)
	}

	notes["b.md"] = &fstest.MapFile{Data: []byte("# B #beta #gamma")}
	if err := set.Sync.Execute(ctx, msg); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if len(report.Paths) != 1 || report.Paths[0] != "b.md" {
		t.Fatalf("only the edited note should rebuild, got %v", report.Paths)
	}
	if len(report.Unchanged) != 1 || report.Unchanged[0] != "a.md" {
		t.Fatalf("expected a.md unchanged, got %v", report.Unchanged)
	}

	force := msg
	force.Force = true
	if err := set.Sync.Execute(ctx, force); err != nil {
		t.Fatalf("forced sync: %v", err)
	}
	if len(report.Rebuilt) != 2 {
		t.Fatalf("forced sync should rebuild every note, got %v", report.Paths)
	}

	deleted := doctree.DocumentIDForPath(projectID, "a.md")
	if err := set.Delete.Execute(ctx, DeleteDocumentTreeCommand{DocumentID: deleted}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := set.Sync.Execute(ctx, msg); err != nil {
		t.Fatalf("sync after delete: %v", err)
	}
	if len(report.Paths) != 1 || report.Paths[0] != "a.md" {
		t.Fatalf("deleted note should be rebuilt, got %v", report.Paths)
	}
	if _, err := service.Load(ctx, deleted); err != nil {
		t.Fatalf("load restored note: %v", err)
	}
}
