package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/ambercrest/portal-fm/internal/api"
	"github.com/ambercrest/portal-fm/internal/config"
	"github.com/ambercrest/portal-fm/internal/models"
	"github.com/ambercrest/portal-fm/internal/mutate"
	"github.com/ambercrest/portal-fm/internal/tree"
)

// loadConfig loads the configuration file and applies flag overrides.
// Priority: flags > environment > config file.
func loadConfig() (*config.Config, error) {
	configPath := cfgFile
	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config: %w", err)
		}
		configPath = p
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if portalURL != "" {
		cfg.PortalURL = portalURL
	}
	if apiToken != "" {
		cfg.APIToken = apiToken
	}
	if branch != "" {
		cfg.Branch = branch
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveScope turns the scope selection flags into a Scope. Exactly one of
// --library, --user-files, --public must be set.
func resolveScope() (models.Scope, error) {
	var scopes []models.Scope
	if libraryID != "" {
		scopes = append(scopes, models.Scope{Kind: models.ScopeLibrary, ID: libraryID})
	}
	if userFilesID != "" {
		scopes = append(scopes, models.Scope{Kind: models.ScopeUserFiles, ID: userFilesID})
	}
	if publicDocs {
		scopes = append(scopes, models.Scope{Kind: models.ScopePublic})
	}

	switch len(scopes) {
	case 0:
		return models.Scope{}, fmt.Errorf("a scope is required: use --library ID, --user-files ID, or --public")
	case 1:
		return scopes[0], nil
	default:
		return models.Scope{}, fmt.Errorf("only one of --library, --user-files, --public may be set")
	}
}

// workspace bundles the client, hierarchy cache, and mutation service that
// most commands operate through.
type workspace struct {
	client  *api.Client
	cache   *tree.Cache
	mutator *mutate.Service
	scope   models.Scope
}

// newWorkspace builds a workspace and performs the initial hierarchy load.
func newWorkspace(ctx context.Context) (*workspace, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	scope, err := resolveScope()
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	log := GetLogger()
	cache := tree.NewCache(client, log)
	if err := cache.Rebuild(ctx, scope); err != nil {
		return nil, fmt.Errorf("failed to load hierarchy: %w", err)
	}

	return &workspace{
		client:  client,
		cache:   cache,
		mutator: mutate.NewService(client, cache, log),
		scope:   scope,
	}, nil
}

// resolveTarget resolves a node from --id or --path flags. Exactly one must
// be provided.
func (w *workspace) resolveTarget(id, path string) (*tree.Node, error) {
	switch {
	case id != "" && path != "":
		return nil, fmt.Errorf("use either --id or --path, not both")
	case id != "":
		node, ok := w.cache.FindByID(id)
		if !ok {
			return nil, fmt.Errorf("no entry with ID %q in %s", id, w.scope)
		}
		return node, nil
	case path != "":
		node, ok := w.cache.FindByPath(path)
		if !ok {
			return nil, fmt.Errorf("no entry at path %q in %s", path, w.scope)
		}
		return node, nil
	default:
		return nil, fmt.Errorf("--id or --path is required")
	}
}

// resolveFolderID resolves an optional destination folder path. An empty
// path means the scope root (nil ID).
func (w *workspace) resolveFolderID(path string) (*string, error) {
	if path == "" || path == "/" {
		return nil, nil
	}
	node, ok := w.cache.FindByPath(path)
	if !ok {
		return nil, fmt.Errorf("no folder at path %q in %s", path, w.scope)
	}
	if !node.IsFolder() {
		return nil, fmt.Errorf("%q is a file, not a folder", path)
	}
	id := node.ID
	return &id, nil
}

// formatSize renders a byte count for listings.
func formatSize(size int64) string {
	const (
		kib = 1024
		mib = 1024 * kib
		gib = 1024 * mib
	)
	switch {
	case size >= gib:
		return fmt.Sprintf("%.1f GiB", float64(size)/gib)
	case size >= mib:
		return fmt.Sprintf("%.1f MiB", float64(size)/mib)
	case size >= kib:
		return fmt.Sprintf("%.1f KiB", float64(size)/kib)
	default:
		return fmt.Sprintf("%d B", size)
	}
}

// printTree writes an indented listing of nodes and their descendants.
func printTree(w io.Writer, nodes []*tree.Node, depth int) {
	for _, n := range nodes {
		for i := 0; i < depth; i++ {
			fmt.Fprint(w, "  ")
		}
		if n.IsFolder() {
			fmt.Fprintf(w, "%s/  [%s]\n", n.Name, n.ID)
			printTree(w, n.Children, depth+1)
		} else {
			fmt.Fprintf(w, "%s  (%s)  [%s]\n", n.Name, formatSize(n.Size), n.ID)
		}
	}
}
