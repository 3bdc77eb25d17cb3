package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

func DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func HasGitRepo(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}

// RequireGitRepo returns an error unless path is a directory with a .git folder.
func RequireGitRepo(path string) error {
	if !DirectoryExists(path) {
		return fmt.Errorf("%s: %w", path, errNotDir)
	}
	if !HasGitRepo(path) {
		return fmt.Errorf("%s is not a git repository", path)
	}
	return nil
}
