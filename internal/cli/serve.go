package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/candlewaker/internal/api"
)

func newServeCmd(rc *RootConfig) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the countdowns and the local JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.Config.API.Addr
			}
			srv := api.New(api.Config{
				Addr:           addr,
				AllowedOrigins: a.Config.API.AllowedOrigins,
				Log:            a.Log,
				Journal:        a.Journal,
				Tasks:          a.Tasks,
				Runner:         a.Runner,
			})

			a.Runner.Start()
			defer a.Runner.Stop()

			errc := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-errc:
				return err
			case <-quit:
			case <-commandContext(cmd).Done():
			}

			a.Log.Info().Msg("Shutting down...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
