package commands

import (
	"net/http"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ledgerly-dev/ledgerly/internal/config"
	"github.com/ledgerly-dev/ledgerly/internal/logging"
	"github.com/ledgerly-dev/ledgerly/internal/web"
)

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read-only JSON API over the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(repoRoot(cmd), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8470", "listen address")

	return cmd
}

func runServe(root, addr string) error {
	log := logging.New()

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return err
	}

	srv := web.NewServer(root, cfg, log)
	log.Info().Str("addr", addr).Msg("serving")
	return http.ListenAndServe(addr, srv.Router())
}
