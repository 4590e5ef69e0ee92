package bizadmin

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/go-arrower/bizadmin/secret"
)

// Config is a structure used for service configuration.
// It is intended to be mapped by viper.
type Config struct {
	OrganisationName string `mapstructure:"organisation_name"`
	ApplicationName  string `mapstructure:"application_name"`
	InstanceName     string `mapstructure:"instance_name"`

	Environment Environment `mapstructure:"environment"`

	HTTP     HTTP     `mapstructure:"http"`
	Storage  Storage  `mapstructure:"storage"`
	Postgres Postgres `mapstructure:"postgres"`
	Cache    Cache    `mapstructure:"cache"`
	Redis    Redis    `mapstructure:"redis"`
	Mail     Mail     `mapstructure:"mail"`
	Jobs     Jobs     `mapstructure:"jobs"`
	OTEL     OTEL     `mapstructure:"otel"`
}

// Debug is true for all environments a developer works in.
func (c Config) Debug() bool {
	return c.Environment == LocalEnv || c.Environment == TestEnv
}

const (
	LocalEnv       Environment = "local"
	TestEnv        Environment = "test"
	DevelopmentEnv Environment = "dev"
	ProductionEnv  Environment = "prod"
)

// Environments is the list of all supported environments.
func Environments() []Environment {
	return []Environment{LocalEnv, TestEnv, DevelopmentEnv, ProductionEnv}
}

type Environment string

// Drivers select the implementation of a dependency.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverLRU      = "lru"
	DriverRedis    = "redis"
	DriverLog      = "log"
	DriverSES      = "ses"
)

type (
	HTTP struct {
		Port                  int      `mapstructure:"port"                    json:"port"`
		AllowOrigins          []string `mapstructure:"allow_origins"           json:"allowOrigins"`
		StatusEndpointEnabled bool     `mapstructure:"status_endpoint_enabled" json:"-"`
		StatusEndpointPort    int      `mapstructure:"status_endpoint_port"    json:"-"`
	}

	// Storage selects where the data of all contexts is kept.
	// memory keeps it in process and, if Dir is set, writes it as JSON files into Dir.
	Storage struct {
		Driver string `mapstructure:"driver" json:"driver"`
		Dir    string `mapstructure:"dir"    json:"dir,omitempty"`
	}

	Postgres struct {
		User     string        `mapstructure:"user"      json:"user"`
		Password secret.Secret `mapstructure:"password"  json:"-"`
		Database string        `mapstructure:"database"  json:"database"`
		Host     string        `mapstructure:"host"      json:"host"`
		Port     int           `mapstructure:"port"      json:"port"`
		SSLMode  string        `mapstructure:"ssl_mode"  json:"sslMode"`
		MaxConns int           `mapstructure:"max_conns" json:"maxConns"`
	}

	Cache struct {
		Driver string        `mapstructure:"driver" json:"driver"`
		TTL    time.Duration `mapstructure:"ttl"    json:"ttl"`
		Size   int           `mapstructure:"size"   json:"size"`
	}

	Redis struct {
		Address  string        `mapstructure:"address"  json:"address"`
		Password secret.Secret `mapstructure:"password" json:"-"`
		DB       int           `mapstructure:"db"       json:"db"`
	}

	Mail struct {
		Driver      string        `mapstructure:"driver"         json:"driver"`
		FromAddress string        `mapstructure:"from_address"   json:"fromAddress"`
		FromName    string        `mapstructure:"from_name"      json:"fromName"`
		SESRegion   string        `mapstructure:"ses_region"     json:"sesRegion,omitempty"`
		SESKeyID    string        `mapstructure:"ses_access_key" json:"-"`
		SESSecret   secret.Secret `mapstructure:"ses_secret_key" json:"-"`
	}

	Jobs struct {
		Queue        string        `mapstructure:"queue"         json:"queue"`
		PollInterval time.Duration `mapstructure:"poll_interval" json:"pollInterval"`
		PoolSize     int           `mapstructure:"pool_size"     json:"poolSize"`
	}

	OTEL struct {
		Host     string `mapstructure:"host"     json:"host"`
		Port     int    `mapstructure:"port"     json:"port"`
		Hostname string `mapstructure:"hostname" json:"hostname"`
	}
)

// EnvPrefix is the prefix of all environment variables overwriting the configuration,
// e.g. BIZADMIN_POSTGRES_HOST.
const EnvPrefix = "BIZADMIN"

// DefaultViper returns a new viper instance with all default values
// from Config set. Values can be overwritten by environment variables.
func DefaultViper() *Viper {
	vip := viper.New()

	vip.SetEnvPrefix(EnvPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vip.AutomaticEnv()

	vip.SetDefault("organisation_name", "")
	vip.SetDefault("application_name", "bizadmin")
	vip.SetDefault("instance_name", "")

	vip.SetDefault("environment", "local")

	vip.SetDefault("http.port", 8080)
	vip.SetDefault("http.allow_origins", []string{"*"})
	vip.SetDefault("http.status_endpoint_enabled", true)
	vip.SetDefault("http.status_endpoint_port", 2223)

	vip.SetDefault("storage.driver", DriverMemory)
	vip.SetDefault("storage.dir", "")

	vip.SetDefault("postgres.user", "bizadmin")
	vip.SetDefault("postgres.password", "secret")
	vip.SetDefault("postgres.database", "bizadmin")
	vip.SetDefault("postgres.host", "localhost")
	vip.SetDefault("postgres.port", 5432)
	vip.SetDefault("postgres.ssl_mode", "disable")
	vip.SetDefault("postgres.max_conns", 10)

	vip.SetDefault("cache.driver", DriverLRU)
	vip.SetDefault("cache.ttl", "5m")
	vip.SetDefault("cache.size", 128)

	vip.SetDefault("redis.address", "localhost:6379")
	vip.SetDefault("redis.password", "")
	vip.SetDefault("redis.db", 0)

	vip.SetDefault("mail.driver", DriverLog)
	vip.SetDefault("mail.from_address", "noreply@localhost")
	vip.SetDefault("mail.from_name", "")
	vip.SetDefault("mail.ses_region", "eu-central-1")
	vip.SetDefault("mail.ses_access_key", "")
	vip.SetDefault("mail.ses_secret_key", "")

	vip.SetDefault("jobs.queue", "bizadmin")
	vip.SetDefault("jobs.poll_interval", "5s")
	vip.SetDefault("jobs.pool_size", 5)

	vip.SetDefault("otel.host", "localhost")
	vip.SetDefault("otel.port", 4317)
	vip.SetDefault("otel.hostname", "")

	return &Viper{Viper: vip}
}

var (
	ErrConfigLoadFailed = errors.New("loading configuration failed")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// Viper is a wrapper around viper.Viper for configuration loading.
// The only purpose is to overwrite the Unmarshal method,
// so that secret.Secret, Environment, and time.Duration are decoded
// without the developer having to think about it when using DefaultViper.
type Viper struct {
	*viper.Viper
}

func (vip *Viper) Unmarshal(rawVal any, opts ...viper.DecoderConfigOption) error {
	opts = append(opts, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		allowedEnvironmentHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)))

	err := vip.Viper.Unmarshal(rawVal, opts...)
	if err != nil {
		return fmt.Errorf("%w: could not decode configuration into struct: %v", ErrConfigLoadFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	return nil
}

// LoadConfig reads the optional config file and returns a valid Config.
// The file is searched as bizadmin.config.yaml in the working directory, if file is empty.
func LoadConfig(vip *Viper, file string) (*Config, error) {
	if file != "" {
		vip.SetConfigFile(file)
	} else {
		vip.SetConfigName("bizadmin.config")
		vip.SetConfigType("yaml")
		vip.AddConfigPath(".")
	}

	if err := vip.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: could not read config file: %v", ErrConfigLoadFailed, err) //nolint:errorlint,lll // prevent err in api
		}
	}

	conf := &Config{}
	if err := vip.Unmarshal(conf); err != nil {
		return nil, err
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

// Validate checks the drivers and the values they depend on.
func (c Config) Validate() error {
	var errs []error

	oneOf := func(key string, value string, allowed ...string) {
		if !slices.Contains(allowed, value) {
			errs = append(errs, fmt.Errorf("%w: %s %q, use one of: %s",
				ErrInvalidConfig, key, value, strings.Join(allowed, ", ")))
		}
	}

	oneOf("storage.driver", c.Storage.Driver, DriverMemory, DriverPostgres)
	oneOf("cache.driver", c.Cache.Driver, DriverLRU, DriverRedis)
	oneOf("mail.driver", c.Mail.Driver, DriverLog, DriverSES)

	if c.Mail.FromAddress == "" {
		errs = append(errs, fmt.Errorf("%w: mail.from_address is required", ErrInvalidConfig))
	}

	if c.Cache.Driver == DriverRedis && c.Redis.Address == "" {
		errs = append(errs, fmt.Errorf("%w: redis.address is required for the redis cache", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

func allowedEnvironmentHookFunc() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeOf(Environment("")) {
			return data, nil
		}

		env := Environments()

		value, _ := data.(string)
		if slices.Contains(env, Environment(value)) {
			return data, nil
		}

		e := make([]string, 0, len(env))
		for _, env := range env {
			e = append(e, string(env))
		}

		return data, fmt.Errorf("value is not allowed, use one of: %s", strings.Join(e, ", ")) //nolint:err113,lll // accept dynamic error
	}
}
