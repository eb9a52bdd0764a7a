package cmd

import (
	"github.com/spf13/cobra"

	"teamplayer/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the TeamPlayer HTTP and websocket server",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
