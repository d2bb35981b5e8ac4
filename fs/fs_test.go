package appfs

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS(t *testing.T) {
	migrations, err := fs.Glob(FS, "migrations/*.sql")
	require.NoError(t, err)
	assert.Contains(t, migrations, "migrations/00001_create_ledger.sql")
}
