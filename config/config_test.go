package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "biorel")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "biorel")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, "3.5.183", cfg.BioGRIDVersion)
	assert.Equal(t, "https://rest.uniprot.org", cfg.UniProtBaseURL)
	assert.Equal(t, 9606, cfg.UniProtTaxonID)
	assert.Equal(t, []string{"intact", "biogrid"}, cfg.Providers())
	assert.Equal(t, ".biorel", filepath.Base(cfg.CacheDir))
	assert.Equal(t, 4, cfg.KeepBackups)
	assert.False(t, cfg.ArchiveEnabled())
}

func TestLoadMissingRequired(t *testing.T) {
	for _, key := range []string{"DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME"} {
		// Setenv registers the restore, Unsetenv makes the key absent for envconfig.
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	_, err := Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: 6543}
	assert.Equal(t, "host=db user=u password=p dbname=n port=6543 sslmode=disable", cfg.DSN())
}

func TestProvidersTrimsAndLowers(t *testing.T) {
	cfg := &Config{EnabledProviders: " IntAct, ,BIOGRID "}
	assert.Equal(t, []string{"intact", "biogrid"}, cfg.Providers())
}
