package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewFromURL(t *testing.T) {
	t.Run("unregistered database driver", func(t *testing.T) {
		_, err := NewFromURL("mysql://user@localhost/catalog", t.TempDir(), zap.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create migrate instance")
	})

	t.Run("missing migrations directory", func(t *testing.T) {
		_, err := NewFromURL("postgres://user@localhost:1/catalog?sslmode=disable", "/nonexistent/migrations", zap.NewNop())
		require.Error(t, err)
	})
}
