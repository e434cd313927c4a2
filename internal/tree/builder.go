package tree

import (
	"github.com/ambercrest/portal-fm/internal/models"
)

// Snapshot is one complete, immutable materialization of a scope's tree:
// the root forest plus an id index built alongside it for O(1) lookup.
type Snapshot struct {
	Roots []*Node
	byID  map[string]*Node

	// DanglingIDs lists folder/file ids whose declared parent was absent
	// from the listing. They are attached at the scope root rather than
	// dropped; this guards against partial responses, but callers may want
	// to log it.
	DanglingIDs []string

	// CycleIDs lists folder ids that were part of a parent cycle. A cycle
	// is a data-integrity error; the members are reattached at the root so
	// the rest of the tree stays navigable.
	CycleIDs []string
}

// Build converts the flat listing of a scope into a nested forest with
// derived paths. The input order of siblings is preserved.
func Build(listing *models.ScopeListing) *Snapshot {
	snap := &Snapshot{
		byID: make(map[string]*Node, len(listing.Folders)+len(listing.Files)),
	}

	folderIDs := make(map[string]bool, len(listing.Folders))
	for _, f := range listing.Folders {
		folderIDs[f.ID] = true
	}

	// Group folders by parent and files by containing folder. A declared
	// parent that is absent from the listing counts as the root sentinel.
	const rootKey = ""
	foldersByParent := make(map[string][]models.FolderRecord)
	for _, f := range listing.Folders {
		key := rootKey
		if f.ParentID != nil {
			if folderIDs[*f.ParentID] {
				key = *f.ParentID
			} else {
				snap.DanglingIDs = append(snap.DanglingIDs, f.ID)
			}
		}
		foldersByParent[key] = append(foldersByParent[key], f)
	}

	filesByFolder := make(map[string][]models.FileRecord)
	for _, f := range listing.Files {
		key := rootKey
		if f.FolderID != nil {
			if folderIDs[*f.FolderID] {
				key = *f.FolderID
			} else {
				snap.DanglingIDs = append(snap.DanglingIDs, f.ID)
			}
		}
		filesByFolder[key] = append(filesByFolder[key], f)
	}

	built := make(map[string]bool, len(listing.Folders))
	snap.Roots = snap.expand(rootKey, foldersByParent, filesByFolder, built)

	// Folders never reached from the root grouping can only be members of
	// a parent cycle. Reattach them at the root so they stay reachable.
	for _, f := range listing.Folders {
		if built[f.ID] {
			continue
		}
		snap.CycleIDs = append(snap.CycleIDs, f.ID)
		node := snap.folderNode(f)
		node.Children = append(
			snap.expand(f.ID, foldersByParent, filesByFolder, built),
			snap.fileNodes(filesByFolder[f.ID])...,
		)
		snap.Roots = append(snap.Roots, node)
	}

	derivePaths(snap.Roots, "")

	return snap
}

// expand builds the subtrees of every folder whose parent key matches,
// followed by the files grouped under that key.
func (s *Snapshot) expand(parentKey string, foldersByParent map[string][]models.FolderRecord, filesByFolder map[string][]models.FileRecord, built map[string]bool) []*Node {
	var nodes []*Node
	for _, f := range foldersByParent[parentKey] {
		if built[f.ID] {
			// A folder listed under its own id, or repeated in the
			// listing. Expanding again would recurse forever.
			continue
		}
		built[f.ID] = true

		node := s.folderNode(f)
		node.Children = append(
			s.expand(f.ID, foldersByParent, filesByFolder, built),
			s.fileNodes(filesByFolder[f.ID])...,
		)
		nodes = append(nodes, node)
	}
	if parentKey == "" {
		nodes = append(nodes, s.fileNodes(filesByFolder[parentKey])...)
	}
	return nodes
}

func (s *Snapshot) folderNode(f models.FolderRecord) *Node {
	node := &Node{
		Kind:        KindFolder,
		ID:          f.ID,
		Name:        f.Name,
		ParentID:    f.ParentID,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
		OwnerID:     f.OwnerID,
	}
	s.byID[f.ID] = node
	return node
}

func (s *Snapshot) fileNodes(files []models.FileRecord) []*Node {
	var nodes []*Node
	for _, f := range files {
		node := &Node{
			Kind:      KindFile,
			ID:        f.ID,
			Name:      f.Name,
			ParentID:  f.FolderID,
			Size:      f.Size,
			MimeType:  f.MimeType,
			URL:       f.URL,
			UpdatedAt: f.UpdatedAt,
			OwnerID:   f.OwnerID,
		}
		s.byID[f.ID] = node
		nodes = append(nodes, node)
	}
	return nodes
}

// derivePaths walks the forest depth-first, setting each node's path to its
// parent's path plus "/" plus its own name.
func derivePaths(nodes []*Node, parentPath string) {
	for _, n := range nodes {
		n.Path = parentPath + "/" + n.Name
		if len(n.Children) > 0 {
			derivePaths(n.Children, n.Path)
		}
	}
}

// FindByID returns the node with the given id, if present.
func (s *Snapshot) FindByID(id string) (*Node, bool) {
	n, ok := s.byID[id]
	return n, ok
}

// Len returns the number of nodes in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.byID)
}
