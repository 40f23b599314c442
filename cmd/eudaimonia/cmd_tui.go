package main

import (
	"context"
	"errors"
	"time"

	"eudaimonia/client/live"
	"eudaimonia/cmd/eudaimonia/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var noLive bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive interface",
	RunE:  runTUI,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noLive, "no-live", false, "Do not subscribe to live updates")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}

	// Log lines would tear the full-screen UI.
	log := zap.NewNop()
	if verbose {
		log = logger
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if !noLive {
		listener, err := live.New(apiURL, s.store, s.api.Cache, log)
		if err != nil {
			return err
		}
		g.Go(func() error { return followLive(ctx, listener) })
	}
	g.Go(func() error {
		defer cancel()
		return tui.Run(ctx, tui.Options{API: s.api, Tokens: s.store, Log: log, Watch: !noLive})
	})
	return g.Wait()
}

// followLive keeps the listener running across sign-ins: a rejected token
// is retried because the user may sign in from the interface.
func followLive(ctx context.Context, l *live.Listener) error {
	for {
		err := l.Run(ctx)
		if !errors.Is(err, live.ErrUnauthorized) {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(5 * time.Second):
		}
	}
}
