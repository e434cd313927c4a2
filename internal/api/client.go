package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	nethttp "net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/ambercrest/portal-fm/internal/config"
	"github.com/ambercrest/portal-fm/internal/constants"
	"github.com/ambercrest/portal-fm/internal/http"
	"github.com/ambercrest/portal-fm/internal/models"
	"github.com/ambercrest/portal-fm/internal/ratelimit"
)

// retryLogger implements the retryablehttp.LeveledLogger interface.
// Only errors and warnings are surfaced; retry chatter at info/debug level
// would drown the console during flaky-network sessions.
type retryLogger struct{}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	log.Printf("[retry error] %s %v", msg, keysAndValues)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	log.Printf("[retry warn] %s %v", msg, keysAndValues)
}

// Client talks to the portal hierarchy API. It is the only component that
// knows the wire shape; everything above it works with models records.
type Client struct {
	httpClient  *nethttp.Client // JSON API calls, wrapped with retries
	chunkClient *nethttp.Client // chunk/upload payloads, long timeout
	baseURL     string
	apiToken    string
	branch      string
	limiter     *ratelimit.RateLimiter
}

// NewClient creates a new hierarchy API client from validated configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = http.NewAPIClient()
	retryClient.RetryMax = constants.RetryMax
	retryClient.RetryWaitMin = constants.RetryWaitMin
	retryClient.RetryWaitMax = constants.RetryWaitMax
	retryClient.Logger = &retryLogger{}

	chunkRetry := retryablehttp.NewClient()
	chunkRetry.HTTPClient = http.NewChunkClient()
	chunkRetry.RetryMax = constants.RetryMax
	chunkRetry.RetryWaitMin = constants.RetryWaitMin
	chunkRetry.RetryWaitMax = constants.RetryWaitMax
	chunkRetry.Logger = &retryLogger{}

	return &Client{
		httpClient:  retryClient.StandardClient(),
		chunkClient: chunkRetry.StandardClient(),
		baseURL:     strings.TrimSuffix(cfg.PortalURL, "/"),
		apiToken:    cfg.APIToken,
		branch:      cfg.Branch,
		limiter:     ratelimit.NewPortalRateLimiter(),
	}, nil
}

// scopePath returns the URL prefix for a scope's endpoints.
func scopePath(scope models.Scope) string {
	switch scope.Kind {
	case models.ScopeLibrary:
		return "/api/v1/libraries/" + url.PathEscape(scope.ID)
	case models.ScopeUserFiles:
		return "/api/v1/user-files/" + url.PathEscape(scope.ID)
	default:
		return "/api/v1/public-documents"
	}
}

// doRequest performs a JSON request with authentication and rate limiting.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*nethttp.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter cancelled: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := nethttp.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func (c *Client) setHeaders(req *nethttp.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Accept", "application/json")
	if c.branch != "" {
		req.Header.Set("X-Portal-Branch", c.branch)
	}
}

// statusError drains the response body into a StatusError.
func statusError(method, path string, resp *nethttp.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return &StatusError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}

// decodeInto decodes a JSON response body, closing it.
func decodeInto(resp *nethttp.Response, v interface{}) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ListScope retrieves the full flat listing of a scope: every folder and
// every file, regardless of depth. This is the input to a tree rebuild.
func (c *Client) ListScope(ctx context.Context, scope models.Scope) (*models.ScopeListing, error) {
	path := scopePath(scope) + "/tree/"

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != nethttp.StatusOK {
		defer resp.Body.Close()
		return nil, statusError("GET", path, resp)
	}

	var listing models.ScopeListing
	if err := decodeInto(resp, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// ListFolder retrieves the direct children of one folder. A nil folderID
// lists the scope root. Used as a lighter alternative to ListScope when only
// the current view is needed.
func (c *Client) ListFolder(ctx context.Context, scope models.Scope, folderID *string) (*models.ScopeListing, error) {
	path := scopePath(scope) + "/children/"
	if folderID != nil {
		path = scopePath(scope) + "/folders/" + url.PathEscape(*folderID) + "/children/"
	}

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != nethttp.StatusOK {
		defer resp.Body.Close()
		return nil, statusError("GET", path, resp)
	}

	var listing models.ScopeListing
	if err := decodeInto(resp, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// CreateFolder creates a folder under parentID (nil = scope root).
func (c *Client) CreateFolder(ctx context.Context, scope models.Scope, parentID *string, name, description string) (*models.FolderRecord, error) {
	path := scopePath(scope) + "/folders/"
	body := models.CreateFolderRequest{
		Name:        name,
		ParentID:    parentID,
		Description: description,
	}

	resp, err := c.doRequest(ctx, "POST", path, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != nethttp.StatusCreated && resp.StatusCode != nethttp.StatusOK {
		defer resp.Body.Close()
		err := statusError("POST", path, resp)
		if IsNameConflict(err) {
			return nil, fmt.Errorf("%w: %s", ErrNameConflict, name)
		}
		return nil, err
	}

	var folder models.FolderRecord
	if err := decodeInto(resp, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

// RenameFolder renames a folder.
func (c *Client) RenameFolder(ctx context.Context, folderID, name string) (*models.FolderRecord, error) {
	path := "/api/v1/folders/" + url.PathEscape(folderID) + "/"

	resp, err := c.doRequest(ctx, "PATCH", path, models.RenameRequest{Name: name})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != nethttp.StatusOK {
		defer resp.Body.Close()
		return nil, statusError("PATCH", path, resp)
	}

	var folder models.FolderRecord
	if err := decodeInto(resp, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

// RenameFile renames a file.
func (c *Client) RenameFile(ctx context.Context, fileID, name string) (*models.FileRecord, error) {
	path := "/api/v1/files/" + url.PathEscape(fileID) + "/"

	resp, err := c.doRequest(ctx, "PATCH", path, models.RenameRequest{Name: name})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != nethttp.StatusOK {
		defer resp.Body.Close()
		return nil, statusError("PATCH", path, resp)
	}

	var file models.FileRecord
	if err := decodeInto(resp, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// MoveFile moves a file into targetFolderID (nil = scope root).
func (c *Client) MoveFile(ctx context.Context, fileID string, targetFolderID *string) error {
	path := "/api/v1/files/" + url.PathEscape(fileID) + "/"

	resp, err := c.doRequest(ctx, "PATCH", path, models.MoveFileRequest{FolderID: targetFolderID})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return statusError("PATCH", path, resp)
	}
	return nil
}

// DeleteFolder deletes a folder. The server cascades the delete to the
// folder's descendants; the client never deletes children itself.
func (c *Client) DeleteFolder(ctx context.Context, folderID string) error {
	path := "/api/v1/folders/" + url.PathEscape(folderID) + "/"

	resp, err := c.doRequest(ctx, "DELETE", path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusNoContent && resp.StatusCode != nethttp.StatusOK {
		return statusError("DELETE", path, resp)
	}
	return nil
}

// DeleteFile deletes a file.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	path := "/api/v1/files/" + url.PathEscape(fileID) + "/"

	resp, err := c.doRequest(ctx, "DELETE", path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusNoContent && resp.StatusCode != nethttp.StatusOK {
		return statusError("DELETE", path, resp)
	}
	return nil
}

// UploadSingle uploads a small file in one multipart request. folderID nil
// places the file at the scope root. The chunk client is used because even
// "small" uploads are large relative to JSON calls.
func (c *Client) UploadSingle(ctx context.Context, scope models.Scope, folderID *string, name string, r io.Reader) (*models.FileRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter cancelled: %w", err)
	}

	path := scopePath(scope) + "/files/"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if folderID != nil {
		if err := mw.WriteField("folderId", *folderID); err != nil {
			return nil, fmt.Errorf("failed to build upload form: %w", err)
		}
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read upload payload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := nethttp.NewRequestWithContext(ctx, "POST", c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.chunkClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	if resp.StatusCode != nethttp.StatusCreated && resp.StatusCode != nethttp.StatusOK {
		defer resp.Body.Close()
		return nil, statusError("POST", path, resp)
	}

	var file models.FileRecord
	if err := decodeInto(resp, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// OpenUploadSession opens a chunked upload session for a large file.
func (c *Client) OpenUploadSession(ctx context.Context, scope models.Scope, folderID *string, name string, size int64) (*models.UploadSession, error) {
	path := scopePath(scope) + "/upload-sessions/"
	body := models.OpenSessionRequest{
		FileName: name,
		Size:     size,
		FolderID: folderID,
	}

	resp, err := c.doRequest(ctx, "POST", path, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != nethttp.StatusCreated && resp.StatusCode != nethttp.StatusOK {
		defer resp.Body.Close()
		return nil, statusError("POST", path, resp)
	}

	var session models.UploadSession
	if err := decodeInto(resp, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// UploadChunk sends one chunk of an open session. Chunks must be sent in
// index order; the server rejects gaps.
func (c *Client) UploadChunk(ctx context.Context, sessionID string, index int, chunk []byte) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter cancelled: %w", err)
	}

	path := fmt.Sprintf("/api/v1/upload-sessions/%s/chunks/%d/", url.PathEscape(sessionID), index)

	req, err := nethttp.NewRequestWithContext(ctx, "PUT", c.baseURL+path, bytes.NewReader(chunk))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.chunkClient.Do(req)
	if err != nil {
		return fmt.Errorf("chunk upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK && resp.StatusCode != nethttp.StatusNoContent {
		return statusError("PUT", path, resp)
	}
	return nil
}

// CompleteUploadSession finalizes a session after every chunk was accepted.
// The server reassembles the chunks and returns the resulting file record.
func (c *Client) CompleteUploadSession(ctx context.Context, sessionID string) (*models.FileRecord, error) {
	path := "/api/v1/upload-sessions/" + url.PathEscape(sessionID) + "/complete/"

	resp, err := c.doRequest(ctx, "POST", path, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != nethttp.StatusCreated && resp.StatusCode != nethttp.StatusOK {
		defer resp.Body.Close()
		return nil, statusError("POST", path, resp)
	}

	var file models.FileRecord
	if err := decodeInto(resp, &file); err != nil {
		return nil, err
	}
	return &file, nil
}
