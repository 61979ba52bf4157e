package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// isolate keeps a stray config.yaml or .env in the package dir out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("APP_CONFIG_FILE", "")
	t.Setenv("APP_CONFIG_NAME", "")
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNew_Defaults(t *testing.T) {
	isolate(t)
	c, err := New()
	require.NoError(t, err)
	require.Equal(t, EnvDev, c.Env)
	require.Equal(t, 8888, c.Server.Port)
	require.Equal(t, DBDriverPostgres, c.Database.Driver)
	require.True(t, c.Database.AutoMigrate)
	require.Equal(t, 5*time.Minute, c.Redis.TTL)
	require.Empty(t, c.Redis.URL)
	require.Equal(t, "BRL", c.Billing.DefaultCurrency)
	require.Equal(t, "financeplus", c.Auth.Issuer)
}

func TestNew_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("APP_DATABASE_DRIVER", "sqlite")
	t.Setenv("APP_DATABASE_DSN", "file:test.db")
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("APP_BILLING_DEFAULT_CURRENCY", "USD")

	c, err := New()
	require.NoError(t, err)
	require.Equal(t, DBDriverSQLite, c.Database.Driver)
	require.Equal(t, "file:test.db", c.Database.DSN)
	require.Equal(t, 9090, c.Server.Port)
	require.Equal(t, "USD", c.Billing.DefaultCurrency)
}

func TestNew_ConfigFile(t *testing.T) {
	isolate(t)
	t.Setenv("APP_CONFIG_FILE", writeConfig(t, `
env: prod
redis:
  url: redis://localhost:6379/0
  ttl: 30s
auth:
  jwt_secret: s3cret
plans:
  - id: pro
    name: Pro
    monthly_price: "39.90"
    features: [exports, goals]
    limits:
      accounts: 12
`))
	c, err := New()
	require.NoError(t, err)
	require.Equal(t, EnvProd, c.Env)
	require.Equal(t, 30*time.Second, c.Redis.TTL)
	require.Equal(t, "s3cret", c.Auth.JWTSecret)

	p := c.GetPlanByID("pro")
	require.NotNil(t, p)
	require.EqualValues(t, 12, p.Limits["accounts"])
	monthly, yearly, err := p.Prices()
	require.NoError(t, err)
	require.Equal(t, "39.9", monthly.String())
	require.True(t, yearly.IsZero())
	require.Nil(t, c.GetPlanByID("basic"))
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"driver", "database:\n  driver: mysql\n"},
		{"plan without id", "plans:\n  - name: Nameless\n"},
		{"price", "plans:\n  - id: pro\n    yearly_price: cheap\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv("APP_CONFIG_FILE", writeConfig(t, tt.body))
			_, err := New()
			require.Error(t, err)
		})
	}
}

func TestNew_MissingExplicitFile(t *testing.T) {
	isolate(t)
	t.Setenv("APP_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := New()
	require.Error(t, err)
}
