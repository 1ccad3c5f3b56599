package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSettlementConfig_WithDefaults(t *testing.T) {
	cfg := SettlementConfig{}.withDefaults()
	assert.Equal(t, time.Hour, cfg.RunInterval)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 7, cfg.PeriodDays)
	assert.Equal(t, "EUR", cfg.DefaultCurrency)

	custom := SettlementConfig{RunInterval: 5 * time.Minute, BatchSize: 10, PeriodDays: 1, DefaultCurrency: "USD"}.withDefaults()
	assert.Equal(t, 5*time.Minute, custom.RunInterval)
	assert.Equal(t, 10, custom.BatchSize)
	assert.Equal(t, 1, custom.PeriodDays)
	assert.Equal(t, "USD", custom.DefaultCurrency)
}

func TestValidateSettlementConfig(t *testing.T) {
	assert.NoError(t, validateSettlementConfig(DefaultSettlementConfig()))

	tooLong := DefaultSettlementConfig()
	tooLong.PeriodDays = 45
	assert.Error(t, validateSettlementConfig(tooLong))

	badCurrency := DefaultSettlementConfig()
	badCurrency.DefaultCurrency = "EURO"
	assert.Error(t, validateSettlementConfig(badCurrency))
}

func TestStaticSettlementConfigHolder(t *testing.T) {
	holder := NewStaticSettlementConfigHolder(SettlementConfig{PeriodDays: 3})
	got := holder.Get()
	assert.Equal(t, 3, got.PeriodDays)
	assert.Equal(t, 50, got.BatchSize, "unset fields fall back to defaults")
}
