package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresCoreSettings(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL":    "",
		"REDIS_URL":       "redis://localhost:6379",
		"ADMIN_API_TOKEN": "secret",
	})
	require.ErrorContains(t, err, "DATABASE_URL")

	_, err = LoadForTests(map[string]string{
		"DATABASE_URL":    "postgres://localhost/kashvi",
		"REDIS_URL":       "redis://localhost:6379",
		"ADMIN_API_TOKEN": "",
	})
	require.ErrorContains(t, err, "ADMIN_API_TOKEN")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":            "postgres://localhost/kashvi",
		"REDIS_URL":               "redis://localhost:6379",
		"ADMIN_API_TOKEN":         "secret",
		"PORT":                    "",
		"FREE_SHIPPING_THRESHOLD": "",
		"SHIPPING_FLAT_FEE":       "",
		"SILVER_RATE_CACHE_TTL":   "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, int64(1000), cfg.FreeShippingThreshold)
	require.Equal(t, int64(100), cfg.ShippingFlatFee)
	require.Equal(t, 30*time.Second, cfg.SilverRateCacheTTL)
	require.Equal(t, "INR", cfg.CurrencyCode)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":            "postgres://localhost/kashvi",
		"REDIS_URL":               "redis://localhost:6379",
		"ADMIN_API_TOKEN":         "secret",
		"PORT":                    "9090",
		"FREE_SHIPPING_THRESHOLD": "2500",
		"SHIPPING_FLAT_FEE":       "50",
		"CHECKOUT_RATE_MAX":       "3",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, int64(2500), cfg.FreeShippingThreshold)
	require.Equal(t, int64(50), cfg.ShippingFlatFee)
	require.Equal(t, 3, cfg.CheckoutRateMax)
}
