package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg := LoadFrom(viper.New())

	assert.Equal(t, "stockroom-api", cfg.App.Name)
	assert.Equal(t, "0.01", cfg.Pricing.PointValueRate.String())
	assert.Equal(t, []string{"Cash", "Bank Transfer", "M-Pesa", "Card"}, cfg.Payments.Methods)
	assert.Equal(t, 30*time.Second, cfg.Settlement.InFlightTTL)
	assert.Equal(t, 12*time.Hour, cfg.Drafts.TTL)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "none", cfg.Printer.Type)
}

func TestLoadFromOverrides(t *testing.T) {
	v := viper.New()
	v.Set("PRICING_POINT_VALUE_RATE", "0.25")
	v.Set("PAYMENT_METHODS", "Cash, Cheque ,")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("SETTLEMENT_INFLIGHT_TTL", "5s")

	cfg := LoadFrom(v)

	assert.Equal(t, "0.25", cfg.Pricing.PointValueRate.String())
	assert.Equal(t, []string{"Cash", "Cheque"}, cfg.Payments.Methods)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 5*time.Second, cfg.Settlement.InFlightTTL)
}

func TestLoadFromRejectsBadPointRate(t *testing.T) {
	v := viper.New()
	v.Set("PRICING_POINT_VALUE_RATE", "-1")

	cfg := LoadFrom(v)

	assert.Equal(t, "0.01", cfg.Pricing.PointValueRate.String())
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", User: "u", Password: "p", Name: "n", Port: "1", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=1 sslmode=disable TimeZone=UTC", db.DSN())
}
