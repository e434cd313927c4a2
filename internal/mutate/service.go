// Package mutate performs tree mutations (create folder, rename, move,
// delete) against the hierarchy API and keeps the tree cache in sync by a
// full rebuild after every successful call.
package mutate

import (
	"context"
	"fmt"

	"github.com/ambercrest/portal-fm/internal/logging"
	"github.com/ambercrest/portal-fm/internal/models"
	"github.com/ambercrest/portal-fm/internal/tree"
	"github.com/ambercrest/portal-fm/internal/validation"
)

// Mutator is the slice of the hierarchy API the service needs.
type Mutator interface {
	CreateFolder(ctx context.Context, scope models.Scope, parentID *string, name, description string) (*models.FolderRecord, error)
	RenameFolder(ctx context.Context, folderID, name string) (*models.FolderRecord, error)
	RenameFile(ctx context.Context, fileID, name string) (*models.FileRecord, error)
	MoveFile(ctx context.Context, fileID string, targetFolderID *string) error
	DeleteFolder(ctx context.Context, folderID string) error
	DeleteFile(ctx context.Context, fileID string) error
}

// Service wires mutations to the cache. Every operation follows the same
// shape: validate, call the API, rebuild the cache on success, and on
// failure return a typed error with the tree left untouched.
type Service struct {
	client Mutator
	cache  *tree.Cache
	logger *logging.Logger
}

// NewService creates a mutation service.
func NewService(client Mutator, cache *tree.Cache, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Service{
		client: client,
		cache:  cache,
		logger: logger,
	}
}

// CreateFolder creates a folder under parentID (nil = scope root).
func (s *Service) CreateFolder(ctx context.Context, scope models.Scope, parentID *string, name, description string) (*models.FolderRecord, error) {
	if err := validation.ValidateNodeName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateDescription(description); err != nil {
		return nil, err
	}

	folder, err := s.client.CreateFolder(ctx, scope, parentID, name, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create folder %q: %w", name, err)
	}

	if err := s.cache.Rebuild(ctx, scope); err != nil {
		// The mutation landed; only the refresh failed. Report it so the
		// user knows the view is stale.
		return folder, fmt.Errorf("folder created but reload failed: %w", err)
	}
	return folder, nil
}

// Rename renames the node with the given id. The node is resolved against
// the complete tree, never the current view: the target of a rename opened
// from a global action menu may not be in the displayed folder at all.
func (s *Service) Rename(ctx context.Context, nodeID, newName string) error {
	if err := validation.ValidateNodeName(newName); err != nil {
		return err
	}

	node, ok := s.cache.FindByID(nodeID)
	if !ok {
		return fmt.Errorf("rename %s: %w", nodeID, tree.ErrNotFound)
	}

	var err error
	if node.IsFolder() {
		_, err = s.client.RenameFolder(ctx, nodeID, newName)
	} else {
		_, err = s.client.RenameFile(ctx, nodeID, newName)
	}
	if err != nil {
		return fmt.Errorf("failed to rename %q: %w", node.Name, err)
	}

	if err := s.cache.Rebuild(ctx, s.cache.Scope()); err != nil {
		return fmt.Errorf("renamed but reload failed: %w", err)
	}
	return nil
}

// Move moves a file into targetFolderID (nil = scope root). Folders cannot
// be moved through the portal API; the server rejects it, and the check here
// keeps the error client-side and typed.
func (s *Service) Move(ctx context.Context, nodeID string, targetFolderID *string) error {
	node, ok := s.cache.FindByID(nodeID)
	if !ok {
		return fmt.Errorf("move %s: %w", nodeID, tree.ErrNotFound)
	}
	if node.IsFolder() {
		return fmt.Errorf("move %q: folders cannot be moved", node.Name)
	}
	if targetFolderID != nil {
		target, ok := s.cache.FindByID(*targetFolderID)
		if !ok {
			return fmt.Errorf("move target %s: %w", *targetFolderID, tree.ErrNotFound)
		}
		if !target.IsFolder() {
			return fmt.Errorf("move target %q is not a folder", target.Name)
		}
	}

	if err := s.client.MoveFile(ctx, nodeID, targetFolderID); err != nil {
		return fmt.Errorf("failed to move %q: %w", node.Name, err)
	}

	if err := s.cache.Rebuild(ctx, s.cache.Scope()); err != nil {
		return fmt.Errorf("moved but reload failed: %w", err)
	}
	return nil
}

// Remove deletes the node with the given id. Deleting a folder cascades to
// its descendants server-side; the client never deletes children itself.
func (s *Service) Remove(ctx context.Context, nodeID string) error {
	node, ok := s.cache.FindByID(nodeID)
	if !ok {
		return fmt.Errorf("delete %s: %w", nodeID, tree.ErrNotFound)
	}

	var err error
	if node.IsFolder() {
		err = s.client.DeleteFolder(ctx, nodeID)
	} else {
		err = s.client.DeleteFile(ctx, nodeID)
	}
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", node.Name, err)
	}

	if err := s.cache.Rebuild(ctx, s.cache.Scope()); err != nil {
		return fmt.Errorf("deleted but reload failed: %w", err)
	}
	return nil
}
