package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Decks   string        `yaml:"decks" mapstructure:"decks"`
	Rules   string        `yaml:"rules" mapstructure:"rules"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Verify  VerifyConfig  `yaml:"verify" mapstructure:"verify"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// OutputConfig locates the generated dataset artifacts.
type OutputConfig struct {
	DataDir   string `yaml:"data_dir" mapstructure:"data_dir"`
	AssetsDir string `yaml:"assets_dir" mapstructure:"assets_dir"`
	WorksCSV  string `yaml:"works_csv" mapstructure:"works_csv"`
	ReportMD  string `yaml:"report_md" mapstructure:"report_md"`
}

// ExtractConfig overrides the tuned extraction constants. Zero values keep
// the built-in defaults.
type ExtractConfig struct {
	MinYear     int `yaml:"min_year" mapstructure:"min_year"`
	MaxYear     int `yaml:"max_year" mapstructure:"max_year"`
	TitleMaxLen int `yaml:"title_max_len" mapstructure:"title_max_len"`
}

// VerifyConfig configures the source verification pass.
type VerifyConfig struct {
	MaxWorkers   int    `yaml:"max_workers" mapstructure:"max_workers"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	TopSources   int    `yaml:"top_sources" mapstructure:"top_sources"`
	SkipRowFrom  int    `yaml:"skip_row_from" mapstructure:"skip_row_from"`
	SkipRowTo    int    `yaml:"skip_row_to" mapstructure:"skip_row_to"`
	MaxBodyBytes int    `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// StoreConfig configures the fetch-cache backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the local review server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml and CURATOR_* environment
// variables, applying defaults for anything unset.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CURATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("decks", "decks.yaml")
	v.SetDefault("rules", "")
	v.SetDefault("output.data_dir", "app/data")
	v.SetDefault("output.assets_dir", "app/assets")
	v.SetDefault("output.works_csv", "works.csv")
	v.SetDefault("output.report_md", "report.md")
	v.SetDefault("verify.max_workers", 8)
	v.SetDefault("verify.timeout_secs", 12)
	v.SetDefault("verify.user_agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0 Safari/537.36")
	v.SetDefault("verify.top_sources", 4)
	v.SetDefault("verify.max_body_bytes", 200_000)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "screen_results/source_cache.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine; env and defaults still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
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
