package gitx

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// statPath and lookPath are overridable in tests.
	statPath = os.Stat
	lookPath = exec.LookPath
)

// ConventionalPaths returns the usual git install locations for goos.
func ConventionalPaths(goos string) []string {
	switch goos {
	case "windows":
		return []string{
			`C:\Program Files\Git\cmd\git.exe`,
			`C:\Program Files (x86)\Git\cmd\git.exe`,
			`C:\Git\cmd\git.exe`,
		}
	case "darwin":
		return []string{
			"/usr/local/bin/git",
			"/usr/bin/git",
			"/opt/homebrew/bin/git",
		}
	default:
		return []string{
			"/usr/bin/git",
			"/usr/local/bin/git",
		}
	}
}

// LocateGit resolves the git executable. Configured candidates win, then the
// platform's conventional install paths, then PATH. Relative or blank
// candidates are ignored.
func LocateGit(candidates []string) (string, error) {
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" || !filepath.IsAbs(candidate) {
			continue
		}
		if isRegularFile(candidate) {
			return candidate, nil
		}
	}
	for _, candidate := range ConventionalPaths(runtime.GOOS) {
		if isRegularFile(candidate) {
			return candidate, nil
		}
	}
	if found, err := lookPath("git"); err == nil {
		return found, nil
	}
	return "", fmt.Errorf("%w (checked %d configured paths, conventional locations, and PATH)", ErrExecutableNotFound, len(candidates))
}

func isRegularFile(path string) bool {
	info, err := statPath(path)
	return err == nil && info.Mode().IsRegular()
}
