package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Handler == nil {
				return fmt.Errorf("http interface is not configured")
			}
			if addr == "" && app.Config != nil {
				addr = app.Config.HTTP.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, addr, app.Handler, func(bound string) {
				fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", bound)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, defaults to http.addr")

	return cmd
}

// serve runs the server until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, addr string, h http.Handler, started func(addr string)) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if started != nil {
			started(addr)
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
