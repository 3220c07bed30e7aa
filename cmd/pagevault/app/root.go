package app

import (
	"context"

	"github.com/srfbd/pagevault/src/cli"
)

var rootCmd = cli.Init("pagevault")

func MustExecute(ctx context.Context) {
	initStart()
	initBench()
	rootCmd.MustExecute(ctx)
}
