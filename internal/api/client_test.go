package api

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ambercrest/portal-fm/internal/config"
	"github.com/ambercrest/portal-fm/internal/models"
)

func testClient(t *testing.T, handler nethttp.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		PortalURL: srv.URL,
		APIToken:  "test-token",
		Branch:    "head-office",
	}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client, srv
}

// TestNewClientRejectsInvalidConfig verifies that NewClient fails fast on an
// unusable configuration instead of producing a broken client.
func TestNewClientRejectsInvalidConfig(t *testing.T) {
	_, err := NewClient(&config.Config{PortalURL: "", APIToken: "t"})
	if err == nil {
		t.Fatal("NewClient() should return error for empty portal URL")
	}

	_, err = NewClient(&config.Config{PortalURL: "https://portal.example.com", APIToken: ""})
	if err == nil {
		t.Fatal("NewClient() should return error for empty token")
	}
}

func TestListScopeSendsAuthAndDecodesListing(t *testing.T) {
	var gotPath, gotAuth, gotBranch string

	client, _ := testClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBranch = r.Header.Get("X-Portal-Branch")
		json.NewEncoder(w).Encode(models.ScopeListing{
			Folders: []models.FolderRecord{{ID: "A", Name: "Docs"}},
			Files:   []models.FileRecord{{ID: "F1", Name: "Q1.pdf", Size: 42}},
		})
	}))

	listing, err := client.ListScope(context.Background(), models.Scope{Kind: models.ScopeLibrary, ID: "lib-9"})
	if err != nil {
		t.Fatalf("ListScope() error = %v", err)
	}

	if gotPath != "/api/v1/libraries/lib-9/tree/" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBranch != "head-office" {
		t.Errorf("X-Portal-Branch = %q", gotBranch)
	}
	if len(listing.Folders) != 1 || listing.Folders[0].ID != "A" {
		t.Errorf("folders = %+v", listing.Folders)
	}
	if len(listing.Files) != 1 || listing.Files[0].Size != 42 {
		t.Errorf("files = %+v", listing.Files)
	}
}

func TestListFolderPaths(t *testing.T) {
	var gotPath string
	client, _ := testClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(models.ScopeListing{})
	}))

	scope := models.Scope{Kind: models.ScopePublic}

	if _, err := client.ListFolder(context.Background(), scope, nil); err != nil {
		t.Fatalf("ListFolder(root) error = %v", err)
	}
	if gotPath != "/api/v1/public-documents/children/" {
		t.Errorf("root children path = %q", gotPath)
	}

	id := "B"
	if _, err := client.ListFolder(context.Background(), scope, &id); err != nil {
		t.Fatalf("ListFolder(B) error = %v", err)
	}
	if gotPath != "/api/v1/public-documents/folders/B/children/" {
		t.Errorf("folder children path = %q", gotPath)
	}
}

func TestCreateFolderConflict(t *testing.T) {
	client, _ := testClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusConflict)
		io.WriteString(w, `{"detail":"a folder with this name already exists"}`)
	}))

	_, err := client.CreateFolder(context.Background(), models.Scope{Kind: models.ScopeLibrary, ID: "L"}, nil, "Reports", "")
	if err == nil {
		t.Fatal("CreateFolder() should fail on 409")
	}
	if !IsNameConflict(err) {
		t.Errorf("IsNameConflict(%v) = false, want true", err)
	}
}

func TestDeleteFolderNotFound(t *testing.T) {
	client, _ := testClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusNotFound)
	}))

	err := client.DeleteFolder(context.Background(), "gone")
	if err == nil {
		t.Fatal("DeleteFolder() should fail on 404")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true", err)
	}
}

func TestUploadSingleMultipart(t *testing.T) {
	var gotFolderID, gotName, gotBody string

	client, _ := testClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		gotFolderID = r.FormValue("folderId")
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer f.Close()
		gotName = hdr.Filename
		body, _ := io.ReadAll(f)
		gotBody = string(body)

		w.WriteHeader(nethttp.StatusCreated)
		json.NewEncoder(w).Encode(models.FileRecord{ID: "F9", Name: hdr.Filename})
	}))

	folderID := "B"
	file, err := client.UploadSingle(context.Background(),
		models.Scope{Kind: models.ScopeLibrary, ID: "L"},
		&folderID, "notes.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("UploadSingle() error = %v", err)
	}

	if gotFolderID != "B" || gotName != "notes.txt" || gotBody != "hello" {
		t.Errorf("multipart fields = (%q, %q, %q)", gotFolderID, gotName, gotBody)
	}
	if file.ID != "F9" {
		t.Errorf("file.ID = %q, want F9", file.ID)
	}
}

func TestChunkedSessionRoundTrip(t *testing.T) {
	var chunkPaths []string
	var completed bool

	client, _ := testClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/upload-sessions/") && r.Method == "POST":
			var req models.OpenSessionRequest
			json.NewDecoder(r.Body).Decode(&req)
			w.WriteHeader(nethttp.StatusCreated)
			json.NewEncoder(w).Encode(models.UploadSession{
				ID:          "sess-1",
				FileName:    req.FileName,
				ChunkSize:   4,
				TotalChunks: 2,
			})
		case strings.Contains(r.URL.Path, "/chunks/") && r.Method == "PUT":
			chunkPaths = append(chunkPaths, r.URL.Path)
			w.WriteHeader(nethttp.StatusNoContent)
		case strings.HasSuffix(r.URL.Path, "/complete/") && r.Method == "POST":
			completed = true
			json.NewEncoder(w).Encode(models.FileRecord{ID: "F1", Name: "big.bin"})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))

	scope := models.Scope{Kind: models.ScopeUserFiles, ID: "u7"}
	session, err := client.OpenUploadSession(context.Background(), scope, nil, "big.bin", 8)
	if err != nil {
		t.Fatalf("OpenUploadSession() error = %v", err)
	}
	if session.ID != "sess-1" {
		t.Fatalf("session.ID = %q", session.ID)
	}

	for i, chunk := range [][]byte{[]byte("abcd"), []byte("efgh")} {
		if err := client.UploadChunk(context.Background(), session.ID, i, chunk); err != nil {
			t.Fatalf("UploadChunk(%d) error = %v", i, err)
		}
	}

	file, err := client.CompleteUploadSession(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("CompleteUploadSession() error = %v", err)
	}

	if !completed || file.ID != "F1" {
		t.Errorf("completed = %v, file = %+v", completed, file)
	}
	want := []string{
		"/api/v1/upload-sessions/sess-1/chunks/0/",
		"/api/v1/upload-sessions/sess-1/chunks/1/",
	}
	if len(chunkPaths) != 2 || chunkPaths[0] != want[0] || chunkPaths[1] != want[1] {
		t.Errorf("chunk paths = %v, want %v", chunkPaths, want)
	}
}
