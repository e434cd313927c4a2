// Package upload coordinates file upload batches against the portal
// hierarchy API: single-request uploads for small files, chunked sessions
// for large ones, with per-file progress and per-file outcomes.
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/ambercrest/portal-fm/internal/constants"
	"github.com/ambercrest/portal-fm/internal/logging"
	"github.com/ambercrest/portal-fm/internal/models"
)

// Uploader is the slice of the hierarchy API the coordinator needs.
type Uploader interface {
	UploadSingle(ctx context.Context, scope models.Scope, folderID *string, name string, r io.Reader) (*models.FileRecord, error)
	OpenUploadSession(ctx context.Context, scope models.Scope, folderID *string, name string, size int64) (*models.UploadSession, error)
	UploadChunk(ctx context.Context, sessionID string, index int, chunk []byte) error
	CompleteUploadSession(ctx context.Context, sessionID string) (*models.FileRecord, error)
}

// Status is the terminal state of one file in a batch.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// PendingFile is one file queued for upload. Open is called once when the
// file's turn comes; the reader is consumed sequentially and closed by the
// coordinator.
type PendingFile struct {
	Name string
	Size int64
	Open func(ctx context.Context) (io.ReadCloser, error)
}

// FromPath builds a PendingFile from a local path.
func FromPath(path string) (PendingFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return PendingFile{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return PendingFile{}, fmt.Errorf("%s is a directory", path)
	}
	return PendingFile{
		Name: filepath.Base(path),
		Size: info.Size(),
		Open: func(ctx context.Context) (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// Outcome is the per-file result of a batch. Partial-success batches are
// expected; callers surface outcomes file by file, never as one aggregate
// failure.
type Outcome struct {
	Name   string
	Status Status
	File   *models.FileRecord
	Err    error
}

// ProgressFunc receives per-file progress. percent is monotonically
// non-decreasing for a given file and reaches exactly 100 on success.
type ProgressFunc func(index int, name string, percent int)

// Coordinator runs upload batches. Files in a batch are uploaded
// sequentially in input order; chunks of one file are sent in index order,
// each awaited before the next. The coordinator never touches the tree
// cache — callers rebuild after a batch with at least one success.
type Coordinator struct {
	client    Uploader
	logger    *logging.Logger
	threshold int64 // files larger than this use a chunked session
	chunkSize int64

	mu      sync.Mutex
	cancels map[string]context.CancelFunc // batchID/name -> cancel
}

// NewCoordinator creates a coordinator with the default 5 MiB threshold.
func NewCoordinator(client Uploader, logger *logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Coordinator{
		client:    client,
		logger:    logger,
		threshold: constants.ChunkThreshold,
		chunkSize: constants.ChunkSize,
		cancels:   make(map[string]context.CancelFunc),
	}
}

// Upload runs one batch against targetFolderID (nil = scope root) and
// returns one outcome per input file, in input order. A single file's
// failure does not abort the rest of the batch. onProgress may be nil.
//
// The returned batch id can be used with CancelFile while the batch runs.
func (c *Coordinator) Upload(ctx context.Context, scope models.Scope, targetFolderID *string, files []PendingFile, onProgress ProgressFunc) (string, []Outcome) {
	batchID := uuid.NewString()
	outcomes := make([]Outcome, 0, len(files))

	for i, file := range files {
		fileCtx, cancel := context.WithCancel(ctx)
		c.registerCancel(batchID, file.Name, cancel)

		outcome := c.uploadOne(fileCtx, scope, targetFolderID, i, file, onProgress)

		c.unregisterCancel(batchID, file.Name)
		cancel()

		if outcome.Err != nil {
			c.logger.Error().Str("file", file.Name).Err(outcome.Err).Msg("upload failed")
		} else {
			c.logger.Info().Str("file", file.Name).Str("id", outcome.File.ID).Msg("upload complete")
		}
		outcomes = append(outcomes, outcome)
	}

	return batchID, outcomes
}

// CancelFile cancels the in-flight upload of one file in a running batch.
// Cancelling a file that already finished (or was never queued) is a no-op.
func (c *Coordinator) CancelFile(batchID, name string) {
	c.mu.Lock()
	cancel, ok := c.cancels[batchID+"/"+name]
	c.mu.Unlock()
	if ok {
		cancel()
	}
}

func (c *Coordinator) registerCancel(batchID, name string, cancel context.CancelFunc) {
	c.mu.Lock()
	c.cancels[batchID+"/"+name] = cancel
	c.mu.Unlock()
}

func (c *Coordinator) unregisterCancel(batchID, name string) {
	c.mu.Lock()
	delete(c.cancels, batchID+"/"+name)
	c.mu.Unlock()
}

// uploadOne uploads a single file, choosing the protocol by size.
func (c *Coordinator) uploadOne(ctx context.Context, scope models.Scope, folderID *string, index int, file PendingFile, onProgress ProgressFunc) Outcome {
	// Per-file monotonic progress guard: the coordinator never reports a
	// regress even if a retried chunk re-reports.
	last := -1
	report := func(percent int) {
		if onProgress == nil {
			return
		}
		if percent < last {
			percent = last
		}
		last = percent
		onProgress(index, file.Name, percent)
	}

	var record *models.FileRecord
	var err error
	if file.Size > c.threshold {
		record, err = c.uploadChunked(ctx, scope, folderID, file, report)
	} else {
		record, err = c.uploadSingle(ctx, scope, folderID, file, report)
	}

	if err != nil {
		return Outcome{Name: file.Name, Status: StatusError, Err: err}
	}
	return Outcome{Name: file.Name, Status: StatusSuccess, File: record}
}

func (c *Coordinator) uploadSingle(ctx context.Context, scope models.Scope, folderID *string, file PendingFile, report func(int)) (*models.FileRecord, error) {
	report(0)

	r, err := file.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer r.Close()

	record, err := c.client.UploadSingle(ctx, scope, folderID, file.Name, r)
	if err != nil {
		return nil, err
	}

	report(100)
	return record, nil
}

func (c *Coordinator) uploadChunked(ctx context.Context, scope models.Scope, folderID *string, file PendingFile, report func(int)) (*models.FileRecord, error) {
	totalChunks := int((file.Size + c.chunkSize - 1) / c.chunkSize)

	session, err := c.client.OpenUploadSession(ctx, scope, folderID, file.Name, file.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload session: %w", err)
	}

	r, err := file.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer r.Close()

	report(0)

	buf := make([]byte, c.chunkSize)
	for i := 0; i < totalChunks; i++ {
		// Cancellation is checked between chunks so a cancel lands at a
		// chunk boundary instead of mid-request.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("upload cancelled: %w", err)
		}

		n, err := io.ReadFull(r, buf)
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			// Only the last chunk may come up short. Running out of
			// bytes earlier, or an empty last chunk, means the file
			// shrank after it was sized; fail instead of padding the
			// session with empty chunks.
			if i < totalChunks-1 || n == 0 {
				return nil, fmt.Errorf("%s is shorter than its listed size, read %d of %d chunks", file.Name, i, totalChunks)
			}
			err = nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read chunk %d: %w", i, err)
		}

		if err := c.client.UploadChunk(ctx, session.ID, i, buf[:n]); err != nil {
			return nil, fmt.Errorf("chunk %d failed: %w", i, err)
		}

		report((i + 1) * 100 / totalChunks)
	}

	record, err := c.client.CompleteUploadSession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to complete upload session: %w", err)
	}
	return record, nil
}

// AnySuccess reports whether at least one file in a batch succeeded, which
// is the condition for triggering a tree rebuild afterwards.
func AnySuccess(outcomes []Outcome) bool {
	for _, o := range outcomes {
		if o.Status == StatusSuccess {
			return true
		}
	}
	return false
}
