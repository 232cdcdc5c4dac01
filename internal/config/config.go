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
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Split   SplitConfig   `yaml:"split" mapstructure:"split"`
	Sampler SamplerConfig `yaml:"sampler" mapstructure:"sampler"`
	Engine  EngineConfig  `yaml:"engine" mapstructure:"engine"`
	Fit     FitConfig     `yaml:"fit" mapstructure:"fit"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DataConfig describes the raw pooled trial table.
type DataConfig struct {
	Input        string   `yaml:"input" mapstructure:"input"`
	GroupKey     string   `yaml:"group_key" mapstructure:"group_key"`
	TreatmentKey string   `yaml:"treatment_key" mapstructure:"treatment_key"`
	Outcomes     []string `yaml:"outcomes" mapstructure:"outcomes"`
	TrialOrder   []string `yaml:"trial_order" mapstructure:"trial_order"`
	NATokens     []string `yaml:"na_tokens" mapstructure:"na_tokens"`
	Encoding     string   `yaml:"encoding" mapstructure:"encoding"`
	Delimiter    string   `yaml:"delimiter" mapstructure:"delimiter"`
	Sheet        string   `yaml:"sheet" mapstructure:"sheet"`
}

// SplitConfig controls the held-out test split used only by
// leave-one-trial-out cross-validation, never by the main fit.
type SplitConfig struct {
	TestFraction float64 `yaml:"test_fraction" mapstructure:"test_fraction"`
	Seed         uint64  `yaml:"seed" mapstructure:"seed"`
}

// SamplerConfig holds sampling parameters forwarded to the engine
// unchanged. Iteration count is single-sourced here: cache keys, engine
// requests, and reports all read the same value.
type SamplerConfig struct {
	Chains     int     `yaml:"chains" mapstructure:"chains"`
	Iterations int     `yaml:"iterations" mapstructure:"iterations"`
	Warmup     int     `yaml:"warmup" mapstructure:"warmup"`
	AdaptDelta float64 `yaml:"adapt_delta" mapstructure:"adapt_delta"`
	Seed       uint64  `yaml:"seed" mapstructure:"seed"`
}

// EngineConfig locates the external meta-analysis engine.
type EngineConfig struct {
	Command     string   `yaml:"command" mapstructure:"command"`
	Args        []string `yaml:"args" mapstructure:"args"`
	TimeoutMins int      `yaml:"timeout_mins" mapstructure:"timeout_mins"`
}

// FitConfig controls fit orchestration across outcomes.
type FitConfig struct {
	Pooling     string `yaml:"pooling" mapstructure:"pooling"`
	Variant     string `yaml:"variant" mapstructure:"variant"`
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
}

// CacheConfig configures the fitted-model cache.
type CacheConfig struct {
	Dir      string `yaml:"dir" mapstructure:"dir"`
	Disabled bool   `yaml:"disabled" mapstructure:"disabled"`
}

// StoreConfig configures the run-history database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
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
	v.SetEnvPrefix("TRIALS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.group_key", "site")
	v.SetDefault("data.treatment_key", "sms")
	v.SetDefault("data.outcomes", []string{"adopted_lime", "adopted_fertilizer"})
	v.SetDefault("data.trial_order", []string{"siaya", "kakamega", "bungoma", "busia", "vihiga", "migori"})
	v.SetDefault("data.na_tokens", []string{"", "NA", "na", "N/A", ".", "NULL"})
	v.SetDefault("data.delimiter", ",")
	v.SetDefault("split.test_fraction", 0.2)
	v.SetDefault("split.seed", 42)
	v.SetDefault("sampler.chains", 4)
	v.SetDefault("sampler.iterations", 10000)
	v.SetDefault("sampler.warmup", 2000)
	v.SetDefault("sampler.adapt_delta", 0.95)
	v.SetDefault("sampler.seed", 42)
	v.SetDefault("engine.command", "bhm-sample")
	v.SetDefault("engine.timeout_mins", 1440)
	v.SetDefault("fit.pooling", "partial")
	v.SetDefault("fit.variant", "aggregate")
	v.SetDefault("fit.concurrency", 1)
	v.SetDefault("cache.dir", ".trials-cache")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "trials.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
