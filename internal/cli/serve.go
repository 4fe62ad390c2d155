package cli

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrbadge/internal/batch"
	"github.com/cristianadrielbraun/qrbadge/internal/handlers"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			r, err := a.router()
			if err != nil {
				return err
			}
			a.log.WithField("addr", a.cfg.Server.Addr).Info("qrbadge listening")
			return r.Run(a.cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config or $PORT)")
	return cmd
}

// router wires the API onto a gin engine.
func (a *app) router() (*gin.Engine, error) {
	p, err := a.pipeline()
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.LoggerWithWriter(a.log.Writer()))
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = int64(max(1, a.cfg.Server.MaxUploadMB)) << 20

	h := handlers.New(p, batch.NewRunner(p, a.cfg.Batch.Workers, a.log), a.cfg, a.log)
	h.Register(r)
	return r, nil
}
