package database

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:           "db.internal",
		Port:           5433,
		User:           "coach",
		Password:       "p@ss word",
		Name:           "coaching_center",
		ConnectTimeout: 2500 * time.Millisecond,
	})

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "db.internal:5433", u.Host)
	assert.Equal(t, "/coaching_center", u.Path)
	password, _ := u.User.Password()
	assert.Equal(t, "p@ss word", password)

	q := u.Query()
	assert.Equal(t, "disable", q.Get("sslmode"))
	assert.Equal(t, "UTC", q.Get("timezone"))
	assert.Equal(t, "2", q.Get("connect_timeout"))
	assert.Equal(t, applicationName, q.Get("application_name"))
}

func TestDSNKeepsExplicitSSLMode(t *testing.T) {
	u, err := url.Parse(DSN(config.DatabaseConfig{Host: "h", Port: 1, SSLMode: "require"}))
	require.NoError(t, err)
	assert.Equal(t, "require", u.Query().Get("sslmode"))
	assert.Empty(t, u.Query().Get("connect_timeout"))
}
