package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/ffindustry/internal/fetcher"
	"github.com/sells-group/ffindustry/internal/industry"
)

// Config holds the full application configuration.
type Config struct {
	Table    TableConfig    `yaml:"table" mapstructure:"table"`
	Classify ClassifyConfig `yaml:"classify" mapstructure:"classify"`
	Assign   AssignConfig   `yaml:"assign" mapstructure:"assign"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// TableConfig locates the industry definition file.
type TableConfig struct {
	Path     string `yaml:"path" mapstructure:"path"`
	Encoding string `yaml:"encoding" mapstructure:"encoding"`
}

// ClassifyConfig controls the fallback label for unmatched SIC codes.
type ClassifyConfig struct {
	Fallback      bool   `yaml:"fallback" mapstructure:"fallback"`
	FallbackMode  string `yaml:"fallback_mode" mapstructure:"fallback_mode"`
	FallbackLabel string `yaml:"fallback_label" mapstructure:"fallback_label"`
}

// Classifier builds a classifier over t from the configured fallback policy.
func (c ClassifyConfig) Classifier(t *industry.Table) (industry.Classifier, error) {
	mode, err := industry.ParseFallbackMode(c.FallbackMode)
	if err != nil {
		return industry.Classifier{}, eris.Wrap(err, "config: classify.fallback_mode")
	}
	return industry.Classifier{
		Table:    t,
		Fallback: c.Fallback,
		Mode:     mode,
		Label:    c.FallbackLabel,
	}, nil
}

// AssignConfig configures firm-file classification.
type AssignConfig struct {
	SICColumn      string `yaml:"sic_column" mapstructure:"sic_column"`
	IndustryColumn string `yaml:"industry_column" mapstructure:"industry_column"`
	Sheet          string `yaml:"sheet" mapstructure:"sheet"`
	BatchSize      int    `yaml:"batch_size" mapstructure:"batch_size"`
}

// StoreConfig configures the optional database sink.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// FetchConfig configures downloads from the Fama-French data library.
type FetchConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	Dir         string `yaml:"dir" mapstructure:"dir"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FFIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("table.path", "")
	v.SetDefault("table.encoding", industry.DefaultEncoding)
	v.SetDefault("classify.fallback", false)
	v.SetDefault("classify.fallback_mode", "early")
	v.SetDefault("classify.fallback_label", industry.DefaultFallbackLabel)
	v.SetDefault("assign.sic_column", "sic")
	v.SetDefault("assign.industry_column", "ff_industry")
	v.SetDefault("assign.sheet", "")
	v.SetDefault("assign.batch_size", 500)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("fetch.base_url", fetcher.DefaultLibraryURL)
	v.SetDefault("fetch.user_agent", "ffindustry/1.0")
	v.SetDefault("fetch.dir", ".")
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.concurrency", 2)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are
// "table", "classify", "assign", "fetch" and "store".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "table":
		if c.Table.Path == "" {
			problems = append(problems, "table.path is required")
		}
	case "classify":
		if c.Table.Path == "" {
			problems = append(problems, "table.path is required")
		}
		if _, err := industry.ParseFallbackMode(c.Classify.FallbackMode); err != nil {
			problems = append(problems, "classify.fallback_mode must be early or after-scan")
		}
	case "assign":
		if c.Table.Path == "" {
			problems = append(problems, "table.path is required")
		}
		if _, err := industry.ParseFallbackMode(c.Classify.FallbackMode); err != nil {
			problems = append(problems, "classify.fallback_mode must be early or after-scan")
		}
		if strings.TrimSpace(c.Assign.SICColumn) == "" {
			problems = append(problems, "assign.sic_column is required")
		}
		if strings.TrimSpace(c.Assign.IndustryColumn) == "" {
			problems = append(problems, "assign.industry_column is required")
		}
		if c.Assign.BatchSize < 1 {
			problems = append(problems, "assign.batch_size must be >= 1")
		}
	case "fetch":
		if c.Fetch.Concurrency < 1 || c.Fetch.Concurrency > 8 {
			problems = append(problems, "fetch.concurrency must be between 1 and 8")
		}
		if c.Fetch.TimeoutSecs <= 0 {
			problems = append(problems, "fetch.timeout_secs must be > 0")
		}
	case "store":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
		if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
			problems = append(problems, "store.driver must be sqlite or postgres")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
