package database

import (
	"io/fs"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lumina/core"
	appfs "github.com/trezcool/lumina/fs"
)

func TestDSN(t *testing.T) {
	conf := core.DatabaseConfig{
		Engine:   "postgres",
		Host:     "db",
		Port:     "5432",
		User:     "lumina",
		Password: "s3cr3t@",
		Name:     "lumina",
	}

	u, err := url.Parse(DSN(conf))
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db:5432", u.Host)
	assert.Equal(t, "/lumina", u.Path)
	pwd, _ := u.User.Password()
	assert.Equal(t, "s3cr3t@", pwd)
	assert.Equal(t, "require", u.Query().Get("sslmode"))

	conf.DisableTLS = true
	u, err = url.Parse(DSN(conf))
	require.NoError(t, err)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(appfs.FS, migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "00001_create_users.sql", entries[0].Name())
}
