package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	Glassnode   GlassnodeConfig `mapstructure:"glassnode"`
	Output      OutputConfig    `mapstructure:"output"`
	Combine     CombineConfig   `mapstructure:"combine"`
	Log         LogConfig       `mapstructure:"log"`
	Postgres    PostgresConfig  `mapstructure:"postgres"`
}

type GlassnodeConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	APIKey          string        `mapstructure:"api_key"`
	APIKeyParameter string        `mapstructure:"api_key_parameter"` // SSM parameter read in prod when api_key is empty
	Timeout         time.Duration `mapstructure:"timeout"`
	CatalogFile     string        `mapstructure:"catalog_file"`
	CatalogPath     string        `mapstructure:"catalog_path"`
	Pacer           string        `mapstructure:"pacer"` // "batch" or "token_bucket"
	BatchSize       int           `mapstructure:"batch_size"`
	BatchPause      time.Duration `mapstructure:"batch_pause"`
	Rate            int           `mapstructure:"rate"` // token bucket size, refilled every rate_interval
	RateInterval    time.Duration `mapstructure:"rate_interval"`
	OnConflict      string        `mapstructure:"on_conflict"` // "overwrite", "reject" or "qualify"
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

type CombineConfig struct {
	StartDate    string `mapstructure:"start_date"`
	OutputDir    string `mapstructure:"output_dir"`
	DropNullRows bool   `mapstructure:"drop_null_rows"`
}

// Options defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "dev")

	v.SetDefault("glassnode.base_url", "https://api.glassnode.com")
	v.SetDefault("glassnode.timeout", 30*time.Second)
	v.SetDefault("glassnode.catalog_file", "endpoints.json")
	v.SetDefault("glassnode.catalog_path", "/v2/metrics/endpoints")
	v.SetDefault("glassnode.pacer", "batch")
	v.SetDefault("glassnode.batch_size", 120)
	v.SetDefault("glassnode.batch_pause", 60*time.Second)
	v.SetDefault("glassnode.rate", 120)
	v.SetDefault("glassnode.rate_interval", 500*time.Millisecond)
	v.SetDefault("glassnode.on_conflict", "overwrite")

	v.SetDefault("output.dir", ".")

	v.SetDefault("combine.start_date", "2008-12-31")
	v.SetDefault("combine.output_dir", ".")
	v.SetDefault("combine.drop_null_rows", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timezone", "UTC")
}

// Load loads application configuration using Viper.
// It reads configFile (or config.yaml from ./config when empty), a .env file
// if present, and overrides with environment variables.
// A missing config.yaml is not an error; defaults apply.
func Load(configFile string) (*Config, error) {
	// .env is optional, secrets usually live there during development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config") // config.yaml
		v.SetConfigType("yaml")
		pwd, _ := os.Getwd()
		v.AddConfigPath(filepath.Join(pwd, "config"))
		v.AddConfigPath(pwd)
	}

	// Support environment variables with dot notation (e.g., GLASSNODE_API_KEY)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Log.Environment == "" {
		cfg.Log.Environment = cfg.Environment
	}

	if cfg.Glassnode.APIKey == "" && cfg.Environment == "prod" && cfg.Glassnode.APIKeyParameter != "" {
		cfg.Glassnode.APIKey = getParameterStoreValue(cfg.Glassnode.APIKeyParameter, true)
	}

	return &cfg, nil
}

// StartTime parses combine.start_date as a UTC calendar day.
func (c CombineConfig) StartTime() (time.Time, error) {
	t, err := time.Parse(time.DateOnly, c.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid combine.start_date %q: %w", c.StartDate, err)
	}
	return t, nil
}
