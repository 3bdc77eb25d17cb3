package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOr(t *testing.T) {
	t.Setenv("RELEASERADAR_TEST_VALUE", "set")
	assert.Equal(t, "set", EnvOr("RELEASERADAR_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", EnvOr("RELEASERADAR_TEST_MISSING", "fallback"))
}

func TestRequireGitRepo(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, RequireGitRepo(filepath.Join(dir, "missing")))
	assert.Error(t, RequireGitRepo(dir))

	assert.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	assert.NoError(t, RequireGitRepo(dir))
	assert.True(t, HasGitRepo(dir))
}
