// Package tree maintains the in-memory mirror of a scope's folder/file
// hierarchy: building the forest from flat listings, caching it, and
// resolving slash-delimited paths and ids against it.
package tree

import (
	"errors"
	"time"
)

// ErrNotFound indicates a path or id could not be resolved against the
// current snapshot. Lookups failing this way are surfaced to the user as a
// notice, never a crash.
var ErrNotFound = errors.New("node not found")

// NodeKind discriminates folder nodes from file nodes. An explicit tag
// instead of a "has children" check keeps a file from ever being walked as a
// folder.
type NodeKind int

const (
	KindFolder NodeKind = iota
	KindFile
)

func (k NodeKind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// Node is one entry of the cached tree: a folder or a file, per Kind.
// Nodes are snapshots of the last rebuild, not live views; a rebuild or a
// scope switch invalidates every previously returned Node.
type Node struct {
	Kind     NodeKind
	ID       string
	Name     string
	ParentID *string // nil = scope root

	// Path is derived from ancestry on every rebuild and is never
	// authoritative. Root-level nodes have "/" + Name.
	Path string

	// Folder fields
	Description string
	CreatedAt   time.Time
	Children    []*Node

	// File fields
	Size      int64
	MimeType  string
	URL       string
	UpdatedAt time.Time

	OwnerID string
}

// IsFolder reports whether the node is a folder.
func (n *Node) IsFolder() bool {
	return n.Kind == KindFolder
}
