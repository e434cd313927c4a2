// Package validation provides client-side input validation for portal-fm.
// Names are validated before any network call is issued, so a bad name never
// reaches the hierarchy API.
package validation

import (
	"fmt"
	"strings"
)

// ErrEmptyName is returned when a required name field is empty or blank.
var ErrEmptyName = fmt.Errorf("name cannot be empty")

// ValidateNodeName validates a folder or file display name.
//
// Returns an error if the name:
//   - Is empty or only whitespace
//   - Contains path separators (/ or \)
//   - Contains null bytes or other control characters
//   - Is "." or ".."
//
// Path separators are rejected because node names become segments of
// slash-delimited navigation paths; a separator inside a name would corrupt
// path resolution.
func ValidateNodeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}

	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, '\\') {
		return fmt.Errorf("name cannot contain path separators: %q", name)
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("name contains control character: %q", name)
		}
	}

	if name == "." || name == ".." {
		return fmt.Errorf("name cannot be %q", name)
	}

	return nil
}

// ValidateDescription validates an optional folder description.
// Descriptions may be empty; only control characters other than newline and
// tab are rejected.
func ValidateDescription(desc string) error {
	for _, r := range desc {
		if (r < 0x20 && r != '\n' && r != '\t') || r == 0x7f {
			return fmt.Errorf("description contains control character")
		}
	}
	return nil
}
