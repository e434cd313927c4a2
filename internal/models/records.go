// Package models contains the wire-level records exchanged with the portal
// hierarchy API.
package models

import "time"

// FolderRecord represents a folder as returned by the hierarchy API.
// ParentID is nil for folders at the root of their scope.
type FolderRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ParentID    *string   `json:"parentId"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	OwnerID     string    `json:"ownerId"`
}

// FileRecord represents a stored file as returned by the hierarchy API.
// FolderID is nil for files at the root of their scope.
type FileRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	FolderID  *string   `json:"folderId"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mimeType"`
	URL       string    `json:"url"`
	OwnerID   string    `json:"ownerId"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ScopeListing is the full flat listing of one scope, the input to a tree
// rebuild.
type ScopeListing struct {
	Folders []FolderRecord `json:"folders"`
	Files   []FileRecord   `json:"files"`
}

// UploadSession is the server-side handle for a chunked upload.
type UploadSession struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName"`
	ChunkSize   int64  `json:"chunkSize"`
	TotalChunks int    `json:"totalChunks"`
}

// CreateFolderRequest is the body for folder creation.
type CreateFolderRequest struct {
	Name        string  `json:"name"`
	ParentID    *string `json:"parentId"`
	Description string  `json:"description,omitempty"`
}

// RenameRequest is the body for folder and file renames.
type RenameRequest struct {
	Name string `json:"name"`
}

// MoveFileRequest is the body for moving a file into another folder.
// A nil target moves the file to the scope root.
type MoveFileRequest struct {
	FolderID *string `json:"folderId"`
}

// OpenSessionRequest is the body for opening a chunked upload session.
type OpenSessionRequest struct {
	FileName string  `json:"fileName"`
	Size     int64   `json:"size"`
	FolderID *string `json:"folderId"`
}
