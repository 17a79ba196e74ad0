package repository

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// TTL is the retention window: a departure whose lastUpdated has aged
	// past it becomes eligible for automatic removal by the store.
	TTL time.Duration `mapstructure:"ttl"`
}

func newConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if sub := v.Sub("departures"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load departures config: %w", err)
		}
	}

	if cfg.TTL == 0 {
		cfg.TTL = 30 * 24 * time.Hour
	}
	return cfg, nil
}
