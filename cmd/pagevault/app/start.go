package app

import (
	"github.com/spf13/cobra"

	daemon "github.com/srfbd/pagevault/src/app"
)

func initStart() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Starts the buffer pool daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return daemon.Run(cmd.Context(), &daemon.DaemonEntrypoint{
				ConfigPath: rootCmd.Options.ConfigPath,
			})
		},
	})
}
