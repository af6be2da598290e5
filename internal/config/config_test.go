package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "lostfound.sqlite3", cfg.DB)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "Admin", cfg.AdminUser)
	assert.Empty(t, cfg.Log)
	assert.Equal(t, model.Fees{RegistrationFee: DefaultRegistrationFee, ClaimFee: DefaultClaimFee}, cfg.Fees())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`db: /var/lib/lostfound/data.sqlite3
addr: 127.0.0.1:9000
registration_fee: 20000
claim_fee: 1000
`), 0o644))

	t.Setenv("LOSTFOUND_CLAIM_FEE", "2500")
	t.Setenv("LOSTFOUND_ADMIN_USER", "root")

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/lostfound/data.sqlite3", cfg.DB)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, int64(20000), cfg.RegistrationFee)
	assert.Equal(t, int64(2500), cfg.ClaimFee, "environment overrides file")
	assert.Equal(t, "root", cfg.AdminUser)
}

func TestLoadSearchesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lostfound.yaml"), []byte("addr: :7000\n"), 0o644))

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsNegativeFee(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOSTFOUND_REGISTRATION_FEE", "-1")

	_, err := Load(New(), "")
	require.Error(t, err)
}
