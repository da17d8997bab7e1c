package config

import (
	"errors"

	"github.com/spf13/viper"
)

// ClientConfig is what the state-store side of the system consumes: the
// backend endpoint, the bearer token and the cache key prefix. It is loaded
// purely from the hosting environment (STATECACHE_* variables), since the
// automation runner has no config file of its own.
type ClientConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	Token       string `mapstructure:"token"`
	CachePrefix string `mapstructure:"cache_prefix"`
}

// LoadClient reads ClientConfig from STATECACHE_ENDPOINT, STATECACHE_TOKEN
// and STATECACHE_CACHE_PREFIX.
func LoadClient() (*ClientConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("STATECACHE")
	v.AutomaticEnv()

	cfg := &ClientConfig{
		Endpoint:    v.GetString("ENDPOINT"),
		Token:       v.GetString("TOKEN"),
		CachePrefix: v.GetString("CACHE_PREFIX"),
	}
	if cfg.Endpoint == "" {
		return nil, errors.New("STATECACHE_ENDPOINT is not set")
	}
	if cfg.CachePrefix == "" {
		return nil, errors.New("STATECACHE_CACHE_PREFIX is not set")
	}
	return cfg, nil
}
