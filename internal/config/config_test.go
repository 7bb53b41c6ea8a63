package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), *cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "custom.yaml")
	data := "build_folder: out\npatchelf: /opt/patchelf/bin/patchelf\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(file, []byte(data), 0o600))

	t.Setenv("COSIMPKG_DIST_FOLDER", "package")

	cfg, err := Load(file)
	require.NoError(t, err)
	require.Equal(t, "out", cfg.BuildFolder)
	require.Equal(t, "package", cfg.DistFolder)
	require.Equal(t, "generators", cfg.GeneratorsFolder)
	require.Equal(t, "/opt/patchelf/bin/patchelf", cfg.Patchelf)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_WorkingDirectoryFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cosimpkg.yaml"), []byte("graph: graph.json\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "graph.json", cfg.Graph)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("patchelf: \"\"\n"), 0o600))
	_, err = Load(empty)
	require.ErrorIs(t, err, errEmptyField)
}
