package main

import (
	"context"

	"github.com/srfbd/pagevault/cmd/pagevault/app"
)

func main() {
	app.MustExecute(context.Background())
}
