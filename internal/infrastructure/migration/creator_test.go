package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"add products", "add_products"},
		{"Add-Lock  Columns", "add_lock_columns"},
		{"__trim__", "trim"},
		{"v2 index!", "v2_index"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("numbers after existing migrations", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"000001_create_products.up.sql", "000002_create_variants.up.sql"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
		}

		mf, err := CreateMigration(dir, "Add export index")
		require.NoError(t, err)

		assert.Equal(t, "000003", mf.Version)
		assert.Equal(t, filepath.Join(dir, "000003_add_export_index.up.sql"), mf.UpPath)
		assert.FileExists(t, mf.UpPath)
		assert.FileExists(t, mf.DownPath)

		content, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "-- Add export index")
	})

	t.Run("creates the directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "migrations")

		mf, err := CreateMigration(dir, "first")
		require.NoError(t, err)
		assert.Equal(t, "000001", mf.Version)
	})

	t.Run("rejects empty names", func(t *testing.T) {
		_, err := CreateMigration(t.TempDir(), "???")
		assert.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("lists up files sorted and ignores the rest", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"000002_b.up.sql", "000002_b.down.sql",
			"000001_a.up.sql", "000001_a.down.sql",
			"README.md",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
		}
		require.NoError(t, os.Mkdir(filepath.Join(dir, "000003_dir.up.sql"), 0o755))

		got, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_a", "000002_b"}, got)
	})

	t.Run("missing directory is empty", func(t *testing.T) {
		got, err := ListMigrations(filepath.Join(t.TempDir(), "missing"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestParseCount(t *testing.T) {
	n, err := ParseCount("")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = ParseCount("2")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = ParseCount("-1")
	assert.Error(t, err)
}

func TestFindMigrationsPath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "migrations"), 0o755))
	deep := filepath.Join(root, "internal", "infrastructure")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	assert.Equal(t, filepath.Join(root, "migrations"), FindMigrationsPath(deep))
}
