package nav

import (
	"context"
	"testing"

	"github.com/ambercrest/portal-fm/internal/models"
	"github.com/ambercrest/portal-fm/internal/tree"
)

type fakeLister struct {
	listing *models.ScopeListing
}

func (f *fakeLister) ListScope(ctx context.Context, scope models.Scope) (*models.ScopeListing, error) {
	return f.listing, nil
}

func strPtr(s string) *string { return &s }

func newTestController(t *testing.T) (*Controller, *fakeLister, *tree.Cache) {
	t.Helper()
	lister := &fakeLister{
		listing: &models.ScopeListing{
			Folders: []models.FolderRecord{
				{ID: "A", Name: "Docs"},
				{ID: "B", Name: "Reports", ParentID: strPtr("A")},
			},
			Files: []models.FileRecord{
				{ID: "F1", Name: "Q1.pdf", FolderID: strPtr("B")},
			},
		},
	}
	cache := tree.NewCache(lister, nil)
	if err := cache.Rebuild(context.Background(), models.Scope{Kind: models.ScopeLibrary, ID: "L"}); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	return NewController(cache, nil), lister, cache
}

func TestInitialState(t *testing.T) {
	ctrl, _, _ := newTestController(t)

	if !ctrl.AtRoot() {
		t.Error("new controller should be at root")
	}
	if ctrl.CurrentPath() != "/" {
		t.Errorf("CurrentPath() = %q, want /", ctrl.CurrentPath())
	}
}

func TestEnterFolder(t *testing.T) {
	ctrl, _, _ := newTestController(t)

	ctrl.EnterFolder("/Docs/Reports")

	if ctrl.CurrentPath() != "/Docs/Reports" {
		t.Errorf("CurrentPath() = %q", ctrl.CurrentPath())
	}
	if id := ctrl.CurrentFolderID(); id == nil || *id != "B" {
		t.Errorf("CurrentFolderID() = %v, want B", id)
	}

	view := ctrl.CurrentView()
	if len(view) != 1 || view[0].ID != "F1" {
		t.Errorf("CurrentView() = %+v, want exactly [F1]", view)
	}
}

// TestEnterFolderStalePath: navigating to a path that no longer exists
// (e.g. the folder was deleted and the tree rebuilt) must leave the state
// unchanged and must not panic.
func TestEnterFolderStalePath(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctrl.EnterFolder("/Docs")

	ctrl.EnterFolder("/Docs/Deleted")

	if ctrl.CurrentPath() != "/Docs" {
		t.Errorf("CurrentPath() = %q, want unchanged /Docs", ctrl.CurrentPath())
	}
	if id := ctrl.CurrentFolderID(); id == nil || *id != "A" {
		t.Errorf("CurrentFolderID() = %v, want unchanged A", id)
	}
}

func TestEnterFolderOnFileIsNoOp(t *testing.T) {
	ctrl, _, _ := newTestController(t)

	ctrl.EnterFolder("/Docs/Reports/Q1.pdf")

	if !ctrl.AtRoot() {
		t.Error("entering a file path should leave the controller at root")
	}
}

// TestViewConsistencyAfterRebuild: the current view is always derived from
// the latest complete tree, so entries added by a rebuild show up without
// any navigation.
func TestViewConsistencyAfterRebuild(t *testing.T) {
	ctrl, lister, cache := newTestController(t)
	ctrl.EnterFolder("/Docs/Reports")

	lister.listing.Files = append(lister.listing.Files,
		models.FileRecord{ID: "F2", Name: "Q2.pdf", FolderID: strPtr("B")})
	if err := cache.Rebuild(context.Background(), cache.Scope()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	view := ctrl.CurrentView()
	if len(view) != 2 {
		t.Fatalf("CurrentView() after rebuild = %d entries, want 2", len(view))
	}
}

func TestBreadcrumbTrail(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctrl.EnterFolder("/Docs")
	ctrl.EnterFolder("/Docs/Reports")

	trail := ctrl.BreadcrumbTrail()

	want := []Crumb{
		{Name: "Home", Path: "/"},
		{Name: "Docs", Path: "/Docs"},
		{Name: "Reports", Path: "/Docs/Reports"},
	}
	if len(trail) != len(want) {
		t.Fatalf("trail = %+v, want %+v", trail, want)
	}
	for i := range want {
		if trail[i] != want[i] {
			t.Errorf("trail[%d] = %+v, want %+v", i, trail[i], want[i])
		}
	}
}

func TestNavigateToBreadcrumb(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctrl.EnterFolder("/Docs/Reports")

	ctrl.NavigateToBreadcrumb("/Docs")
	if id := ctrl.CurrentFolderID(); id == nil || *id != "A" {
		t.Errorf("CurrentFolderID() = %v, want A", id)
	}

	ctrl.NavigateToBreadcrumb("/")
	if !ctrl.AtRoot() {
		t.Error("home breadcrumb should reset to root")
	}
	if ctrl.CurrentPath() != "/" {
		t.Errorf("CurrentPath() = %q, want /", ctrl.CurrentPath())
	}
}

func TestRootViewListsScopeRootEntries(t *testing.T) {
	ctrl, _, _ := newTestController(t)

	view := ctrl.CurrentView()
	if len(view) != 1 || view[0].ID != "A" {
		t.Errorf("root view = %+v, want [A]", view)
	}
}

func TestEnterFolderReportsOutcome(t *testing.T) {
	ctrl, _, _ := newTestController(t)

	if !ctrl.EnterFolder("/Docs") {
		t.Error("EnterFolder(/Docs) = false, want true")
	}
	// Re-entering the current folder is still a successful navigation.
	if !ctrl.EnterFolder("/Docs") {
		t.Error("EnterFolder on the current folder = false, want true")
	}
	if ctrl.EnterFolder("/Docs/Nope") {
		t.Error("EnterFolder on a missing path = true, want false")
	}
	if ctrl.EnterFolder("/Docs/Reports/Q1.pdf") {
		t.Error("EnterFolder on a file = true, want false")
	}
}
