package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"bookkeeper/internal/adapters/web"
	"bookkeeper/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		addr := serveAddr
		if addr == "" {
			addr = cfg.ListenAddr
		}
		log := logger.WithComponent("server")
		log.Info().Str("addr", addr).Msg("server starting")
		return http.ListenAndServe(addr, web.NewHandler(svc))
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from BOOKKEEPER_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
