package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryan-buckman/pressroom/internal/apiclient"
	"github.com/bryan-buckman/pressroom/internal/config"
	"github.com/bryan-buckman/pressroom/internal/content"
	"github.com/bryan-buckman/pressroom/internal/server"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the public site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.RequireSite(); err != nil {
				return err
			}
			// Public pages never send the admin token.
			public := apiclient.New(a.cfg.APIURL, apiclient.WithLogger(a.log.Named("api")))
			pages, err := content.NewFetcher(public, a.log.Named("content"))
			if err != nil {
				return err
			}
			defer pages.Close()

			srv, err := server.New(public, pages, server.Config{
				SiteName:      a.cfg.SiteName,
				SiteURL:       a.cfg.SiteURL,
				SessionSecret: a.cfg.SessionSecret,
				Logger:        a.log.Named("server"),
			})
			if err != nil {
				return err
			}
			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)
			go purgeOn(cmd.Context(), hup, func() {
				public.Invalidate()
				pages.Purge()
				a.log.Info("caches purged")
			})

			a.log.Info("serving site", zap.String("listen", a.cfg.Listen), zap.String("api_url", a.cfg.APIURL))
			return srv.Start(cmd.Context(), a.cfg.Listen)
		},
	}
	cmd.Flags().String("listen", "", "address to listen on")
	_ = a.v.BindPFlag(config.KeyListen, cmd.Flags().Lookup("listen"))
	return cmd
}

// purgeOn runs purge for every signal received until ctx is done.
func purgeOn(ctx context.Context, sig <-chan os.Signal, purge func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			purge()
		}
	}
}
