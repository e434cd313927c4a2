// Package nav owns "where the user currently is" inside a scope: the current
// path, the current folder id, the derived view, and the breadcrumb trail.
package nav

import (
	"strings"

	"github.com/ambercrest/portal-fm/internal/logging"
	"github.com/ambercrest/portal-fm/internal/tree"
)

// Crumb is one breadcrumb segment: the display name plus the accumulated
// path needed to navigate back to it.
type Crumb struct {
	Name string
	Path string
}

// Controller tracks the navigation state for one scope. It has two logical
// states: at the scope root (CurrentFolderID nil) or inside a folder. All
// transitions go through EnterFolder, NavigateToBreadcrumb or Reset.
//
// The controller never caches entries; the view is derived fresh from the
// tree cache on every call so it can never diverge from the complete tree
// after a rebuild.
type Controller struct {
	cache  *tree.Cache
	logger *logging.Logger

	currentPath     string
	currentFolderID *string
}

// NewController creates a controller positioned at the scope root.
func NewController(cache *tree.Cache, logger *logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Controller{
		cache:       cache,
		logger:      logger,
		currentPath: "/",
	}
}

// Reset returns to the scope root. Called on every scope switch.
func (c *Controller) Reset() {
	c.currentPath = "/"
	c.currentFolderID = nil
}

// CurrentPath returns the path of the folder the user is browsing.
func (c *Controller) CurrentPath() string {
	return c.currentPath
}

// CurrentFolderID returns the id of the current folder, nil at the root.
func (c *Controller) CurrentFolderID() *string {
	return c.currentFolderID
}

// AtRoot reports whether the controller is at the scope root.
func (c *Controller) AtRoot() bool {
	return c.currentFolderID == nil
}

// EnterFolder navigates to the folder at targetPath and reports whether the
// navigation happened. A path that no longer resolves (the tree may have
// just been rebuilt underneath a stale view) or that names a file leaves the
// state unchanged; this is a logged no-op, never a crash.
func (c *Controller) EnterFolder(targetPath string) bool {
	node, ok := c.cache.FindByPath(targetPath)
	if !ok {
		c.logger.Warn().Str("path", targetPath).Msg("folder not found; staying put")
		return false
	}
	if !node.IsFolder() {
		c.logger.Warn().Str("path", targetPath).Msg("not a folder; staying put")
		return false
	}

	c.currentPath = targetPath
	id := node.ID
	c.currentFolderID = &id
	return true
}

// NavigateToBreadcrumb handles a click on a breadcrumb segment. The home
// segment ("/" or empty) resets to the root; any other accumulated path is
// resolved like EnterFolder.
func (c *Controller) NavigateToBreadcrumb(accumulatedPath string) {
	if accumulatedPath == "" || accumulatedPath == "/" {
		c.Reset()
		return
	}
	c.EnterFolder(accumulatedPath)
}

// CurrentView returns the direct children of the current folder, derived
// fresh from the complete tree.
func (c *Controller) CurrentView() []*tree.Node {
	return c.cache.ChildrenOf(c.currentFolderID)
}

// BreadcrumbTrail splits the current path into ordered segments, pairing
// each with the sub-path that navigates back to it. The home segment is
// always first.
func (c *Controller) BreadcrumbTrail() []Crumb {
	trail := []Crumb{{Name: "Home", Path: "/"}}

	accumulated := ""
	for _, seg := range strings.Split(c.currentPath, "/") {
		if seg == "" {
			continue
		}
		accumulated += "/" + seg
		trail = append(trail, Crumb{Name: seg, Path: accumulated})
	}
	return trail
}
