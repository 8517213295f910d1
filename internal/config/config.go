// Package config loads the feed configuration.
//
// Values are resolved in order: struct defaults, the YAML file, a .env file,
// then ARGOFEED_* environment variables. The result is validated before use.
package config

import (
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rxtech-lab/argo-feed/internal/currency"
	"github.com/rxtech-lab/argo-feed/internal/indicator"
	"github.com/rxtech-lab/argo-feed/internal/logger"
	"github.com/rxtech-lab/argo-feed/internal/marketdata/profile"
	"github.com/rxtech-lab/argo-feed/internal/types"
	"github.com/rxtech-lab/argo-feed/internal/version"
	"github.com/rxtech-lab/argo-feed/pkg/errors"
	"github.com/rxtech-lab/argo-feed/pkg/utils"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ARGOFEED"

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string `json:"addr" yaml:"addr" jsonschema:"description=Listen address of the HTTP API,default=:8080" default:":8080" validate:"required"`
	MetricsPath string `json:"metrics_path" yaml:"metrics_path" jsonschema:"description=Path the Prometheus handler is mounted on,default=/metrics" default:"/metrics" validate:"required,startswith=/"`
}

// Config is the complete feed configuration.
type Config struct {
	// Version is the argo-feed version the file was written for
	Version  string `json:"version,omitempty" yaml:"version" jsonschema:"description=argo-feed version the file targets,example=v0.3.0"`
	LogLevel string `json:"log_level" yaml:"log_level" jsonschema:"description=Minimum log level,enum=debug,enum=info,enum=warn,enum=error,default=info" default:"info" validate:"oneof=debug info warn error"`

	// FetchDelay is the simulated latency of every raw series fetch
	FetchDelay          time.Duration `json:"fetch_delay" yaml:"fetch_delay" jsonschema:"description=Simulated fetch latency in nanoseconds (YAML accepts 600ms style strings)" default:"600ms"`
	StepIntervalMinutes int           `json:"step_interval_minutes" yaml:"step_interval_minutes" jsonschema:"description=Minutes between generated points,default=5" default:"5" validate:"gt=0"`
	Seed                int64         `json:"seed" yaml:"seed" jsonschema:"description=Random walk seed; 0 seeds from the clock"`

	BollingerWindow int `json:"bollinger_window" yaml:"bollinger_window" jsonschema:"description=Bollinger Bands trailing window,default=10" default:"10" validate:"gt=0"`
	RSIPeriod       int `json:"rsi_period" yaml:"rsi_period" jsonschema:"description=RSI smoothing period,default=14" default:"14" validate:"gt=0"`

	Rates               map[types.Currency]float64      `json:"rates" yaml:"rates" jsonschema:"description=Conversion multiplier per display currency" validate:"required,dive,gt=0"`
	Profiles            map[types.Asset]profile.Profile `json:"profiles" yaml:"profiles" jsonschema:"description=Random walk seed profile per asset" validate:"dive"`
	DefaultProfile      profile.Profile                 `json:"default_profile" yaml:"default_profile" jsonschema:"description=Profile for assets without their own entry"`
	AllowDefaultProfile bool                            `json:"allow_default_profile" yaml:"allow_default_profile" jsonschema:"description=Use default_profile for unlisted assets instead of rejecting them,default=true" default:"true"`

	// RefreshSchedule is a cron spec for periodic regeneration. Empty disables it.
	RefreshSchedule string            `json:"refresh_schedule" yaml:"refresh_schedule" jsonschema:"description=Cron spec for scheduled refresh (e.g. @every 30s); empty disables it"`
	InitialFilters  types.FilterState `json:"initial_filters" yaml:"initial_filters" jsonschema:"description=Filters applied at startup"`
	Server          ServerConfig      `json:"server" yaml:"server"`
}

// SetDefaults fills the fields struct tags cannot express.
func (c *Config) SetDefaults() {
	if c.Rates == nil {
		c.Rates = currency.DefaultRates()
	}

	if c.Profiles == nil {
		c.Profiles = profile.BuiltinProfiles()
	}

	if c.DefaultProfile == (profile.Profile{}) {
		c.DefaultProfile = profile.DefaultProfile
	}

	if c.InitialFilters == (types.FilterState{}) {
		c.InitialFilters = types.DefaultFilterState()
	}
}

// envOverrides are read from the environment. Nil fields were not set.
type envOverrides struct {
	LogLevel            *string        `envconfig:"LOG_LEVEL"`
	FetchDelay          *time.Duration `envconfig:"FETCH_DELAY"`
	Seed                *int64         `envconfig:"SEED"`
	AllowDefaultProfile *bool          `envconfig:"ALLOW_DEFAULT_PROFILE"`
	RefreshSchedule     *string        `envconfig:"REFRESH_SCHEDULE"`
	Addr                *string        `envconfig:"ADDR"`
	Asset               *string        `envconfig:"ASSET"`
	Currency            *string        `envconfig:"CURRENCY"`
	Timeframe           *string        `envconfig:"TIMEFRAME"`
}

var validate = validator.New()

// Default returns the configuration used when no file is given.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to apply defaults", err)
	}

	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
// Environment variables are not consulted.
func Parse(data []byte) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load reads the YAML file at path (optional when empty), loads envFiles
// (".env" when none are given, missing files ignored), applies ARGOFEED_*
// overrides and validates the result.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config file %s", path)
		}
	}

	_ = godotenv.Load(envFiles...)

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to read environment overrides", err)
	}

	if env.LogLevel != nil {
		c.LogLevel = *env.LogLevel
	}

	if env.FetchDelay != nil {
		c.FetchDelay = *env.FetchDelay
	}

	if env.Seed != nil {
		c.Seed = *env.Seed
	}

	if env.AllowDefaultProfile != nil {
		c.AllowDefaultProfile = *env.AllowDefaultProfile
	}

	if env.RefreshSchedule != nil {
		c.RefreshSchedule = *env.RefreshSchedule
	}

	if env.Addr != nil {
		c.Server.Addr = *env.Addr
	}

	if env.Asset != nil {
		c.InitialFilters.Asset = types.Asset(*env.Asset)
	}

	if env.Currency != nil {
		c.InitialFilters.Currency = types.Currency(*env.Currency)
	}

	if env.Timeframe != nil {
		c.InitialFilters.Timeframe = types.Timeframe(*env.Timeframe)
	}

	return nil
}

// Validate checks field constraints, the rate table, the initial filters and
// version compatibility.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if c.FetchDelay < 0 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "fetch_delay must not be negative, got %s", c.FetchDelay)
	}

	if err := c.InitialFilters.Validate(); err != nil {
		return err
	}

	if _, ok := c.Rates[c.InitialFilters.Currency]; !ok {
		return errors.Newf(errors.ErrCodeUnknownCurrency, "initial currency %s has no rate", c.InitialFilters.Currency)
	}

	if err := version.CheckConfigCompatibility(version.GetVersion(), c.Version); err != nil {
		return err
	}

	return nil
}

// RateTable builds the currency table from Rates.
func (c *Config) RateTable() (*currency.Table, error) {
	return currency.NewTable(c.Rates)
}

// ProfileBook builds the asset profile book.
func (c *Config) ProfileBook(log *logger.Logger) *profile.Book {
	return profile.NewBook(c.Profiles, c.DefaultProfile, c.AllowDefaultProfile, log)
}

// Pipeline builds the indicator pipeline with the configured parameters.
func (c *Config) Pipeline() (*indicator.Pipeline, error) {
	return indicator.NewDefaultPipeline(c.BollingerWindow, c.RSIPeriod)
}

// JSONSchema returns the JSON schema of the configuration file.
func JSONSchema() (string, error) {
	return utils.ToJSONSchema(Config{})
}
