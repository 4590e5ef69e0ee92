package bizadmin_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/bizadmin"
)

func TestDefaultViper(t *testing.T) {
	t.Parallel()

	vip := bizadmin.DefaultViper()
	assert.NotEmpty(t, vip)

	// This test enforces the default values, so whenever they change,
	// make sure to also update the example config file!

	assert.Empty(t, vip.Get("organisation_name"))
	assert.Equal(t, "bizadmin", vip.GetString("application_name"))
	assert.Empty(t, vip.Get("instance_name"))

	assert.Equal(t, bizadmin.LocalEnv, bizadmin.Environment(vip.GetString("environment")))

	assert.Equal(t, 8080, vip.GetInt("http.port"))
	assert.Equal(t, []string{"*"}, vip.GetStringSlice("http.allow_origins"))
	assert.True(t, vip.GetBool("http.status_endpoint_enabled"))
	assert.Equal(t, 2223, vip.GetInt("http.status_endpoint_port"))

	assert.Equal(t, bizadmin.DriverMemory, vip.GetString("storage.driver"))

	assert.Equal(t, "bizadmin", vip.GetString("postgres.user"))
	assert.Equal(t, "secret", vip.GetString("postgres.password"))
	assert.Equal(t, "bizadmin", vip.GetString("postgres.database"))
	assert.Equal(t, "localhost", vip.GetString("postgres.host"))
	assert.Equal(t, 5432, vip.GetInt("postgres.port"))
	assert.Equal(t, "disable", vip.GetString("postgres.ssl_mode"))
	assert.Equal(t, 10, vip.GetInt("postgres.max_conns"))

	assert.Equal(t, bizadmin.DriverLRU, vip.GetString("cache.driver"))
	assert.Equal(t, 5*time.Minute, vip.GetDuration("cache.ttl"))

	assert.Equal(t, bizadmin.DriverLog, vip.GetString("mail.driver"))
	assert.Equal(t, "noreply@localhost", vip.GetString("mail.from_address"))

	assert.Equal(t, 5*time.Second, vip.GetDuration("jobs.poll_interval"))
	assert.Equal(t, 5, vip.GetInt("jobs.pool_size"))

	assert.Equal(t, "localhost", vip.GetString("otel.host"))
	assert.Equal(t, 4317, vip.GetInt("otel.port"))
}

func TestDefaultViper_CustomTypes(t *testing.T) {
	t.Parallel()

	t.Run("invalid environment", func(t *testing.T) {
		t.Parallel()

		vip := bizadmin.DefaultViper()
		vip.SetConfigFile("./testdata/config/invalid-config.yaml")
		err := vip.ReadInConfig()
		assert.NoError(t, err)

		conf := bizadmin.Config{}

		err = vip.Unmarshal(&conf)
		assert.ErrorIs(t, err, bizadmin.ErrConfigLoadFailed, "should fail when using unsupported enum values")
		assert.Contains(t, err.Error(), "use one of: ", "error message should list out all accepted environments")
	})

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		vip := bizadmin.DefaultViper()
		vip.SetConfigFile("./testdata/config/test-config.yaml")
		err := vip.ReadInConfig()
		assert.NoError(t, err)

		conf := bizadmin.Config{}

		err = vip.Unmarshal(&conf)
		require.NoError(t, err)

		assert.Equal(t, bizadmin.TestEnv, conf.Environment)
		assert.True(t, conf.Debug())
		assert.Equal(t, []string{"https://admin.example.com"}, conf.HTTP.AllowOrigins)
		assert.Equal(t, bizadmin.DriverPostgres, conf.Storage.Driver)
		assert.Equal(t, 30*time.Second, conf.Cache.TTL)
		assert.Equal(t, 250*time.Millisecond, conf.Jobs.PollInterval)
		assert.Equal(t, "Business Admin", conf.Mail.FromName)
	})

	t.Run("unmarshal secrets", func(t *testing.T) {
		t.Parallel()

		vip := bizadmin.DefaultViper()
		vip.SetConfigFile("./testdata/config/test-config.yaml")
		err := vip.ReadInConfig()
		assert.NoError(t, err)

		conf := bizadmin.Config{}

		err = vip.Unmarshal(&conf)
		assert.NoError(t, err)
		assert.Equal(t, "my-db-secret", conf.Postgres.Password.Secret())
		assert.Equal(t, "my-redis-secret", conf.Redis.Password.Secret())
		assert.Equal(t, "my-ses-secret", conf.Mail.SESSecret.Secret())
		assert.Equal(t, "******", conf.Mail.SESSecret.String())
	})

	t.Run("custom config", func(t *testing.T) {
		t.Parallel()

		type MyConfig struct {
			SomeStructField struct{ A string }
			bizadmin.Config `mapstructure:",squash"`
		}

		vip := bizadmin.DefaultViper()
		vip.SetConfigFile("./testdata/config/test-config.yaml")
		err := vip.ReadInConfig()
		assert.NoError(t, err)

		conf := MyConfig{}

		err = vip.Unmarshal(&conf)
		assert.NoError(t, err)
		assert.Equal(t, "my-db-secret", conf.Postgres.Password.Secret())
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults without config file", func(t *testing.T) {
		conf, err := bizadmin.LoadConfig(bizadmin.DefaultViper(), "")
		require.NoError(t, err)

		assert.Equal(t, bizadmin.LocalEnv, conf.Environment)
		assert.Equal(t, bizadmin.DriverMemory, conf.Storage.Driver)
		assert.Equal(t, "secret", conf.Postgres.Password.Secret())
	})

	t.Run("environment overwrites file", func(t *testing.T) {
		t.Setenv("BIZADMIN_HTTP_PORT", "9090")
		t.Setenv("BIZADMIN_POSTGRES_PASSWORD", "from-env")

		conf, err := bizadmin.LoadConfig(bizadmin.DefaultViper(), "./testdata/config/test-config.yaml")
		require.NoError(t, err)

		assert.Equal(t, 9090, conf.HTTP.Port)
		assert.Equal(t, "from-env", conf.Postgres.Password.Secret())
	})

	t.Run("missing file", func(t *testing.T) {
		conf, err := bizadmin.LoadConfig(bizadmin.DefaultViper(), "./testdata/config/does-not-exist.yaml")
		assert.ErrorIs(t, err, bizadmin.ErrConfigLoadFailed)
		assert.Nil(t, conf)
	})

	t.Run("invalid drivers", func(t *testing.T) {
		conf, err := bizadmin.LoadConfig(bizadmin.DefaultViper(), "./testdata/config/invalid-driver-config.yaml")
		assert.ErrorIs(t, err, bizadmin.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "storage.driver")
		assert.Contains(t, err.Error(), "mail.driver")
		assert.Contains(t, err.Error(), "mail.from_address")
		assert.Nil(t, conf)
	})
}
