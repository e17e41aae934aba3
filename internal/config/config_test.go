package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9090"
  mode: debug
database:
  host: db
  port: 5433
  user: app
  password: secret
  dbname: orders
jwt:
  secret: file-secret
redis:
  addr: "redis:6379"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode, "defaults should survive partial files")
	assert.Equal(t, 60, cfg.JWT.ExpiresIn)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "order.exchange", cfg.AMQP.Exchange)
}

func TestLoadFile_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  dbname: orders
jwt:
  secret: file-secret
`)
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("DATABASE_PORT", "6543")
	t.Setenv("AMQP_URL", "amqp://guest:guest@mq:5672/")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.AMQP.URL)
}

func TestLoadFile_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing jwt secret",
			body: "database:\n  dbname: orders\n",
			want: "jwt.secret is required",
		},
		{
			name: "missing database name",
			body: "jwt:\n  secret: s\n",
			want: "database.dbname is required",
		},
		{
			name: "non-positive expiry",
			body: "jwt:\n  secret: s\n  expires_in: -1\ndatabase:\n  dbname: orders\n",
			want: "jwt.expires_in must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDatabaseConnectionStrings(t *testing.T) {
	db := Database{Host: "h", Port: 5432, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}

	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", db.DSN())
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", db.URL())
}
