// Package api provides the client for the portal hierarchy API.
package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNameConflict indicates the server rejected a create or rename because a
// sibling with the same name blocks it (the portal enforces this for some
// library types even though the tree model tolerates duplicates).
var ErrNameConflict = errors.New("name already in use")

// StatusError is returned for any non-success HTTP response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s failed: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the hierarchy API.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == 404
}

// IsNameConflict reports whether err indicates a duplicate-name rejection.
//
// Detected from:
//  1. A wrapped ErrNameConflict
//  2. HTTP 409 Conflict
//  3. Error messages containing "already exists" or "duplicate"
func IsNameConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNameConflict) {
		return true
	}

	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == 409 {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, indicator := range []string{"already exists", "duplicate", "name already in use"} {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}
