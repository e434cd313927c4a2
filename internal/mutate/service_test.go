package mutate

import (
	"context"
	"errors"
	"testing"

	"github.com/ambercrest/portal-fm/internal/models"
	"github.com/ambercrest/portal-fm/internal/tree"
)

func strPtr(s string) *string { return &s }

// fakeBackend implements both the Lister the cache needs and the Mutator
// the service needs, applying mutations to its in-memory listing so that
// the follow-up rebuild observes them.
type fakeBackend struct {
	listing models.ScopeListing
	nextID  int
	failAll bool

	renamedFolders, renamedFiles []string
	deletedFolders, deletedFiles []string
	moves                        []string
	rebuilds                     int
}

var errInjected = errors.New("injected backend failure")

func (f *fakeBackend) ListScope(ctx context.Context, scope models.Scope) (*models.ScopeListing, error) {
	f.rebuilds++
	l := f.listing
	return &l, nil
}

func (f *fakeBackend) CreateFolder(ctx context.Context, scope models.Scope, parentID *string, name, description string) (*models.FolderRecord, error) {
	if f.failAll {
		return nil, errInjected
	}
	f.nextID++
	rec := models.FolderRecord{ID: name + "-id", Name: name, ParentID: parentID, Description: description}
	f.listing.Folders = append(f.listing.Folders, rec)
	return &rec, nil
}

func (f *fakeBackend) RenameFolder(ctx context.Context, folderID, name string) (*models.FolderRecord, error) {
	if f.failAll {
		return nil, errInjected
	}
	f.renamedFolders = append(f.renamedFolders, folderID)
	for i := range f.listing.Folders {
		if f.listing.Folders[i].ID == folderID {
			f.listing.Folders[i].Name = name
			return &f.listing.Folders[i], nil
		}
	}
	return nil, errors.New("no such folder")
}

func (f *fakeBackend) RenameFile(ctx context.Context, fileID, name string) (*models.FileRecord, error) {
	if f.failAll {
		return nil, errInjected
	}
	f.renamedFiles = append(f.renamedFiles, fileID)
	for i := range f.listing.Files {
		if f.listing.Files[i].ID == fileID {
			f.listing.Files[i].Name = name
			return &f.listing.Files[i], nil
		}
	}
	return nil, errors.New("no such file")
}

func (f *fakeBackend) MoveFile(ctx context.Context, fileID string, targetFolderID *string) error {
	if f.failAll {
		return errInjected
	}
	f.moves = append(f.moves, fileID)
	for i := range f.listing.Files {
		if f.listing.Files[i].ID == fileID {
			f.listing.Files[i].FolderID = targetFolderID
			return nil
		}
	}
	return errors.New("no such file")
}

func (f *fakeBackend) DeleteFolder(ctx context.Context, folderID string) error {
	if f.failAll {
		return errInjected
	}
	f.deletedFolders = append(f.deletedFolders, folderID)
	var kept []models.FolderRecord
	for _, rec := range f.listing.Folders {
		if rec.ID != folderID {
			kept = append(kept, rec)
		}
	}
	f.listing.Folders = kept
	return nil
}

func (f *fakeBackend) DeleteFile(ctx context.Context, fileID string) error {
	if f.failAll {
		return errInjected
	}
	f.deletedFiles = append(f.deletedFiles, fileID)
	var kept []models.FileRecord
	for _, rec := range f.listing.Files {
		if rec.ID != fileID {
			kept = append(kept, rec)
		}
	}
	f.listing.Files = kept
	return nil
}

func libScope() models.Scope {
	return models.Scope{Kind: models.ScopeLibrary, ID: "L"}
}

func newTestService(t *testing.T) (*Service, *fakeBackend, *tree.Cache) {
	t.Helper()
	backend := &fakeBackend{
		listing: models.ScopeListing{
			Folders: []models.FolderRecord{
				{ID: "A", Name: "Docs"},
				{ID: "B", Name: "Reports", ParentID: strPtr("A")},
			},
			Files: []models.FileRecord{
				{ID: "F1", Name: "Q1.pdf", FolderID: strPtr("B")},
			},
		},
	}
	cache := tree.NewCache(backend, nil)
	if err := cache.Rebuild(context.Background(), libScope()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	backend.rebuilds = 0
	return NewService(backend, cache, nil), backend, cache
}

func TestCreateFolderTriggersRebuild(t *testing.T) {
	svc, backend, cache := newTestService(t)

	parent := "A"
	folder, err := svc.CreateFolder(context.Background(), libScope(), &parent, "Archive", "old stuff")
	if err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}
	if folder.Name != "Archive" {
		t.Errorf("folder.Name = %q", folder.Name)
	}
	if backend.rebuilds != 1 {
		t.Errorf("rebuilds = %d, want 1", backend.rebuilds)
	}
	if _, ok := cache.FindByPath("/Docs/Archive"); !ok {
		t.Error("new folder should resolve after the rebuild")
	}
}

func TestCreateFolderRejectsBadName(t *testing.T) {
	svc, backend, _ := newTestService(t)

	if _, err := svc.CreateFolder(context.Background(), libScope(), nil, "a/b", ""); err == nil {
		t.Fatal("CreateFolder() should reject names with separators")
	}
	if backend.rebuilds != 0 {
		t.Error("validation failure must not reach the network or rebuild")
	}
}

// TestRenameDispatchesByKind: the service resolves the node's kind from the
// complete tree and calls the folder- or file-specific endpoint.
func TestRenameDispatchesByKind(t *testing.T) {
	svc, backend, _ := newTestService(t)

	if err := svc.Rename(context.Background(), "B", "Quarterly"); err != nil {
		t.Fatalf("Rename(folder) error = %v", err)
	}
	if len(backend.renamedFolders) != 1 || backend.renamedFolders[0] != "B" {
		t.Errorf("renamedFolders = %v", backend.renamedFolders)
	}

	if err := svc.Rename(context.Background(), "F1", "Q1-final.pdf"); err != nil {
		t.Fatalf("Rename(file) error = %v", err)
	}
	if len(backend.renamedFiles) != 1 || backend.renamedFiles[0] != "F1" {
		t.Errorf("renamedFiles = %v", backend.renamedFiles)
	}
}

func TestRenameUnknownIDIsNotFound(t *testing.T) {
	svc, backend, _ := newTestService(t)

	err := svc.Rename(context.Background(), "ghost", "anything")
	if !errors.Is(err, tree.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if backend.rebuilds != 0 {
		t.Error("failed resolve must not trigger a rebuild")
	}
}

func TestRemoveDispatchesByKind(t *testing.T) {
	svc, backend, cache := newTestService(t)

	if err := svc.Remove(context.Background(), "F1"); err != nil {
		t.Fatalf("Remove(file) error = %v", err)
	}
	if len(backend.deletedFiles) != 1 || backend.deletedFiles[0] != "F1" {
		t.Errorf("deletedFiles = %v", backend.deletedFiles)
	}

	if err := svc.Remove(context.Background(), "B"); err != nil {
		t.Fatalf("Remove(folder) error = %v", err)
	}
	if len(backend.deletedFolders) != 1 || backend.deletedFolders[0] != "B" {
		t.Errorf("deletedFolders = %v", backend.deletedFolders)
	}
	if _, ok := cache.FindByPath("/Docs/Reports"); ok {
		t.Error("deleted folder should be gone after the rebuild")
	}
}

func TestMoveFileToFolderAndRoot(t *testing.T) {
	svc, backend, cache := newTestService(t)

	a := "A"
	if err := svc.Move(context.Background(), "F1", &a); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if len(backend.moves) != 1 {
		t.Errorf("moves = %v", backend.moves)
	}
	if _, ok := cache.FindByPath("/Docs/Q1.pdf"); !ok {
		t.Error("moved file should resolve under its new parent")
	}

	if err := svc.Move(context.Background(), "F1", nil); err != nil {
		t.Fatalf("Move(root) error = %v", err)
	}
	if _, ok := cache.FindByPath("/Q1.pdf"); !ok {
		t.Error("file moved to root should resolve at the scope root")
	}
}

func TestMoveRejectsFolderSource(t *testing.T) {
	svc, _, _ := newTestService(t)

	if err := svc.Move(context.Background(), "B", nil); err == nil {
		t.Error("Move() should reject folder sources")
	}
}

func TestMoveRejectsFileTarget(t *testing.T) {
	svc, _, _ := newTestService(t)

	f1 := "F1"
	if err := svc.Move(context.Background(), "F1", &f1); err == nil {
		t.Error("Move() should reject file targets")
	}
}

// TestFailedMutationLeavesTreeUntouched: an API failure must leave the
// cached tree exactly as it was, with no rebuild.
func TestFailedMutationLeavesTreeUntouched(t *testing.T) {
	svc, backend, cache := newTestService(t)
	backend.failAll = true

	if _, err := svc.CreateFolder(context.Background(), libScope(), nil, "New", ""); !errors.Is(err, errInjected) {
		t.Errorf("CreateFolder() err = %v, want injected", err)
	}
	if err := svc.Remove(context.Background(), "F1"); !errors.Is(err, errInjected) {
		t.Errorf("Remove() err = %v, want injected", err)
	}

	if backend.rebuilds != 0 {
		t.Errorf("rebuilds = %d, want 0 after failures", backend.rebuilds)
	}
	if _, ok := cache.FindByPath("/Docs/Reports/Q1.pdf"); !ok {
		t.Error("prior tree must remain intact after failed mutations")
	}
}
