package cfg

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

const (
	ReplacerLRU   = "lru"
	ReplacerCache = "cache"
)

type Config struct {
	Environment string `split_words:"true" default:"dev"`

	DataPath string `split_words:"true" default:"pagevault.db"`

	PoolSize      uint64 `split_words:"true" default:"64"`
	NumInstances  uint32 `split_words:"true" default:"1"`
	InstanceIndex uint32 `split_words:"true" default:"0"`
	Replacer      string `default:"lru"`

	FlushInterval time.Duration `split_words:"true" default:"10s"`
	FlushWorkers  int           `split_words:"true" default:"1"`
}

// Load reads an optional .env file, then the PAGEVAULT_* environment.
func Load(envPath string) (Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return Config{}, errors.Wrapf(err, "load env file %q", envPath)
		}
	} else {
		// a missing default .env is fine, the environment still applies
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process("PAGEVAULT", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "process environment")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Environment != EnvDev && c.Environment != EnvProd {
		return errors.Errorf("invalid environment %q", c.Environment)
	}

	if c.PoolSize == 0 {
		return errors.New("pool size must be greater than zero")
	}

	if c.NumInstances == 0 {
		return errors.New("a pool has at least one instance")
	}

	if c.InstanceIndex >= c.NumInstances {
		return errors.Errorf(
			"instance index %d out of range for %d instances",
			c.InstanceIndex,
			c.NumInstances,
		)
	}

	if c.Replacer != ReplacerLRU && c.Replacer != ReplacerCache {
		return errors.Errorf("unknown replacer policy %q", c.Replacer)
	}

	if c.FlushInterval <= 0 {
		return errors.New("flush interval must be positive")
	}

	if c.FlushWorkers <= 0 {
		return errors.New("flush workers must be positive")
	}

	return nil
}
