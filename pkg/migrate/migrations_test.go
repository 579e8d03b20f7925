package migrate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMigrationsDir(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	err := ValidateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid migration filename")
}

func TestValidateDirRequiresGooseHeaders(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20250901120000_orders.sql"), []byte("CREATE TABLE x (id int);"), 0o644))

	err := ValidateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "+goose Up")
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Vendor Column!")
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "add_vendor_column")
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "")
	assert.Error(t, err)
}
