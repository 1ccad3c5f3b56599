package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SettlementConfig tunes the settlement runner. It is loaded from a
// volume-mounted YAML file and hot-reloaded on change so batch sizes and
// periods can be adjusted without a restart.
type SettlementConfig struct {
	RunInterval     time.Duration `mapstructure:"runInterval"`
	BatchSize       int           `mapstructure:"batchSize"`
	PeriodDays      int           `mapstructure:"periodDays"`
	DefaultCurrency string        `mapstructure:"defaultCurrency"`
}

func DefaultSettlementConfig() SettlementConfig {
	return SettlementConfig{
		RunInterval:     time.Hour,
		BatchSize:       50,
		PeriodDays:      7,
		DefaultCurrency: "EUR",
	}
}

type SettlementConfigHolder struct {
	current atomic.Value // holds SettlementConfig
}

func NewSettlementConfigHolder() (*SettlementConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("settlement")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/payops/config")
	v.AddConfigPath("/etc/payops")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PAYOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultSettlementConfig()
		v.SetDefault("settlement.runInterval", defaults.RunInterval)
		v.SetDefault("settlement.batchSize", defaults.BatchSize)
		v.SetDefault("settlement.periodDays", defaults.PeriodDays)
		v.SetDefault("settlement.defaultCurrency", defaults.DefaultCurrency)
	}

	var cfg SettlementConfig
	if err := v.UnmarshalKey("settlement", &cfg); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if err := validateSettlementConfig(cfg); err != nil {
		return nil, err
	}

	holder := &SettlementConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated SettlementConfig
		if err := v.UnmarshalKey("settlement", &updated); err != nil {
			log.Printf("[settlement-config] reload failed: %v", err)
			return
		}
		updated = updated.withDefaults()
		if err := validateSettlementConfig(updated); err != nil {
			log.Printf("[settlement-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[settlement-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *SettlementConfigHolder) Get() SettlementConfig {
	return h.current.Load().(SettlementConfig)
}

// NewStaticSettlementConfigHolder wraps a fixed config without file
// watching. Used by tests and one-shot tooling.
func NewStaticSettlementConfigHolder(cfg SettlementConfig) *SettlementConfigHolder {
	holder := &SettlementConfigHolder{}
	holder.current.Store(cfg.withDefaults())
	return holder
}

func (c SettlementConfig) withDefaults() SettlementConfig {
	defaults := DefaultSettlementConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.PeriodDays <= 0 {
		c.PeriodDays = defaults.PeriodDays
	}
	if strings.TrimSpace(c.DefaultCurrency) == "" {
		c.DefaultCurrency = defaults.DefaultCurrency
	}
	return c
}

func validateSettlementConfig(cfg SettlementConfig) error {
	if cfg.PeriodDays > 31 {
		return errors.New("settlement period must not exceed one month")
	}
	if len(cfg.DefaultCurrency) != 3 {
		return errors.New("default currency must be a 3-letter code")
	}
	return nil
}
