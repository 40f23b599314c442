package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"eudaimonia/cache"
	"eudaimonia/client/api"
	"eudaimonia/client/apiclient"
	"eudaimonia/client/tokenstore"
	"eudaimonia/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultAPI = "http://localhost:3536"

var (
	// Global flags
	apiURL  string
	verbose bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "eudaimonia",
	Short: "Terminal client for the Eudaimonia social network",
	Long: `Browse Living Worlds, read and write posts and vote on proposals
from the terminal.

Run without arguments to start the interactive interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.NewConsole(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runTUI,
}

func init() {
	base := os.Getenv("EUDAIMONIA_API")
	if base == "" {
		base = defaultAPI
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", base, "Backend base URL (env EUDAIMONIA_API)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

// session is the client state shared by every subcommand: the saved token
// and an API bound to it.
type session struct {
	store *tokenstore.Store
	api   *api.API
}

func openSession() (*session, error) {
	path, err := tokenstore.DefaultPath()
	if err != nil {
		return nil, err
	}
	store := tokenstore.New(path)
	c := cache.New(cache.Options{Logger: logger})
	return &session{store: store, api: api.New(apiclient.New(apiURL, store), c)}, nil
}

// requireToken fails early with a hint instead of letting the server answer
// 401.
func (s *session) requireToken() error {
	if s.store.Token() == "" {
		return fmt.Errorf("not signed in; run `eudaimonia login <username>` first")
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
