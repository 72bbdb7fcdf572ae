package main

import (
	"github.com/spf13/cobra"

	"github.com/Jarvistrey/Jarvis-AI/internal/handler"
	"github.com/Jarvistrey/Jarvis-AI/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		addr := a.Config.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		cmd.Println(hintStyle.Render("listening on " + addr))
		return server.Run(cmd.Context(), server.New(addr, handler.NewRouter(a.Personas, a.Router, a.DefaultBackend())))
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from PORT, :8080)")
	rootCmd.AddCommand(serveCmd)
}
