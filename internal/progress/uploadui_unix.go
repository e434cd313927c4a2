//go:build !windows
// +build !windows

package progress

import "os"

// enableWindowsANSI is a no-op outside Windows; Unix terminals handle ANSI
// escape sequences natively.
func enableWindowsANSI(f *os.File) {}
