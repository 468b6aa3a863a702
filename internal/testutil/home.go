// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"runtime"
	"testing"
)

// SetConfigHome points the platform's user configuration directory at dir
// and returns the directory dlconfig will resolve under it, plus a cleanup
// function restoring the environment.
//
//   - Windows: APPDATA=dir
//   - macOS: HOME=dir, so the config lives in dir/Library/Application Support
//   - others: XDG_CONFIG_HOME=dir
func SetConfigHome(t testing.TB, dir, appName string) (string, func()) {
	t.Helper()

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(dir, appName), MustSetenv(t, "APPDATA", dir)
	case "darwin":
		return filepath.Join(dir, "Library", "Application Support", appName), MustSetenv(t, "HOME", dir)
	default:
		return filepath.Join(dir, appName), MustSetenv(t, "XDG_CONFIG_HOME", dir)
	}
}
