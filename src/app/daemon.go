package app

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/srfbd/pagevault/src/bufferpool"
	"github.com/srfbd/pagevault/src/cfg"
	"github.com/srfbd/pagevault/src/flusher"
	"github.com/srfbd/pagevault/src/pkg/utils"
	"github.com/srfbd/pagevault/src/recovery"
	"github.com/srfbd/pagevault/src/storage/disk"
)

// DaemonEntrypoint owns a configured pool plus its flush daemon and runs it
// until the process is told to stop.
type DaemonEntrypoint struct {
	ConfigPath string

	cfg     cfg.Config
	log     *zap.SugaredLogger
	dm      *disk.Manager
	pool    *bufferpool.Manager
	flusher *flusher.Flusher
}

func (e *DaemonEntrypoint) Init(ctx context.Context) error {
	config, err := cfg.Load(e.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	e.cfg = config

	if e.cfg.Environment == cfg.EnvDev {
		e.log = utils.Must(zap.NewDevelopment()).Sugar()
	} else {
		e.log = utils.Must(zap.NewProduction()).Sugar()
	}

	e.dm, err = disk.New(afero.NewOsFs(), config.DataPath)
	if err != nil {
		return fmt.Errorf("open disk manager: %w", err)
	}

	e.pool = bufferpool.NewSharded(
		config.PoolSize,
		config.NumInstances,
		config.InstanceIndex,
		NewReplacer(config.Replacer, config.PoolSize),
		e.dm,
		recovery.NewLogManager(),
	)
	e.pool.SetLogger(e.log)

	e.flusher, err = flusher.New(e.pool, config.FlushInterval, config.FlushWorkers, e.log)
	if err != nil {
		return fmt.Errorf("create flusher: %w", err)
	}

	return nil
}

func (e *DaemonEntrypoint) Run(ctx context.Context) error {
	e.log.Infof(
		"pagevault is running: pool_size=%d instances=%d/%d replacer=%s",
		e.cfg.PoolSize,
		e.cfg.InstanceIndex,
		e.cfg.NumInstances,
		e.cfg.Replacer,
	)

	return e.flusher.Run(ctx)
}

func (e *DaemonEntrypoint) Close() (err error) {
	if e.flusher != nil {
		e.flusher.Close()
	}

	if e.pool != nil {
		e.pool.FlushAllPages()
	}

	if e.dm != nil {
		err = e.dm.Close()
	}

	if e.log != nil {
		if err != nil {
			e.log.Errorw("failed to close daemon", zap.Error(err))
		}

		logErr := e.log.Sync()
		if logErr != nil && err != nil {
			err = fmt.Errorf("%w, %w", err, logErr)
		} else if logErr != nil {
			err = logErr
		}
	}

	return
}

// NewReplacer builds the eviction policy named by the config.
func NewReplacer(policy string, capacity uint64) bufferpool.Replacer {
	switch policy {
	case cfg.ReplacerCache:
		return bufferpool.NewCacheReplacer(capacity)
	default:
		return bufferpool.NewLRUReplacer(capacity)
	}
}
