package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkgfed/pkgfed/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr, name string

	cmd := &cobra.Command{
		Use:   "serve <dir>",
		Short: "Host a folder feed over HTTP",
		Long: `Serve exposes a folder of metadata documents as a remote feed, so other
pkgfed clients can add it to their catalogs with kind = "remote".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := &http.Server{
				Addr:              addr,
				Handler:           server.New(args[0], name, c.Logger).Router(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			go func() {
				<-cmd.Context().Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			c.Logger.Info("serving folder feed", "dir", args[0], "addr", addr)
			printInfo("Feed %q listening on %s", name, addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8720", "listen address")
	cmd.Flags().StringVar(&name, "name", "pkgfed-feed", "feed name echoed in the service index")

	return cmd
}
