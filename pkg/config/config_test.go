package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
	})
}

func TestLoadWithoutEnvFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 90, cfg.Archive.CutoffDays)
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	contents := "PORT=9090\nDB_NAME=cpc_test\nARCHIVE_CUTOFF_DAYS=30\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(contents), 0o600))
	chdir(t, dir)
	// godotenv exports the file into the process environment.
	t.Cleanup(func() {
		for _, key := range []string{"PORT", "DB_NAME", "ARCHIVE_CUTOFF_DAYS"} {
			_ = os.Unsetenv(key)
		}
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "cpc_test", cfg.Database.Name)
	assert.Equal(t, 30, cfg.Archive.CutoffDays)
}

func TestLoadRejectsMalformedEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("not a key value line\n"), 0o600))
	chdir(t, dir)

	_, err := Load()
	require.Error(t, err)
}
