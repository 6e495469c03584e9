package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/config"
)

type rootOptions struct {
	cfg     *config.Config
	verbose bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "dhaba",
		Short: "Shaurya Dhaba ordering server",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.cfg = config.Load()
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	serve := newServeCommand(opts)
	root.AddCommand(serve, newMenuCommand(opts), newMigrateCommand(opts), newHistoryCommand(opts))
	// Bare invocation starts the server.
	root.RunE = serve.RunE
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
