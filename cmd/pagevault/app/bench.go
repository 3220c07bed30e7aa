package app

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	daemon "github.com/srfbd/pagevault/src/app"
	"github.com/srfbd/pagevault/src/bufferpool"
	"github.com/srfbd/pagevault/src/cfg"
	"github.com/srfbd/pagevault/src/pkg/common"
	"github.com/srfbd/pagevault/src/recovery"
	"github.com/srfbd/pagevault/src/storage/disk"
)

func initBench() {
	var pages, fetches int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Runs a synthetic allocate/fetch workload against a pool",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := cfg.Load(rootCmd.Options.ConfigPath)
			if err != nil {
				return err
			}

			dm, err := disk.New(afero.NewOsFs(), config.DataPath)
			if err != nil {
				return err
			}
			defer dm.Close()

			pool := bufferpool.New(
				config.PoolSize,
				daemon.NewReplacer(config.Replacer, config.PoolSize),
				dm,
				recovery.NewLogManager(),
			)

			start := time.Now()

			ids := make([]common.PageID, 0, pages)
			for i := 0; i < pages; i++ {
				p, err := pool.NewPage()
				if err != nil {
					return err
				}

				copy(p.Data(), fmt.Sprintf("bench page %d", p.ID()))
				ids = append(ids, p.ID())

				if err := pool.UnpinPage(p.ID(), true); err != nil {
					return err
				}
			}

			if len(ids) == 0 {
				fmt.Printf("bench: no pages allocated, skipping fetches\n")
				return nil
			}

			rng := rand.New(rand.NewSource(time.Now().UnixNano()))
			for i := 0; i < fetches; i++ {
				pid := ids[rng.Intn(len(ids))]

				p, err := pool.FetchPage(pid)
				if err != nil {
					return err
				}

				_ = p.Data()[0]

				if err := pool.UnpinPage(pid, false); err != nil {
					return err
				}
			}

			pool.FlushAllPages()

			fmt.Printf(
				"bench: %d pages allocated, %d fetches in %s\n",
				pages,
				fetches,
				time.Since(start),
			)

			return nil
		},
	}

	cmd.Flags().IntVar(&pages, "pages", 1024, "pages to allocate")
	cmd.Flags().IntVar(&fetches, "fetches", 16384, "random fetches to perform")

	rootCmd.AddCommand(cmd)
}
