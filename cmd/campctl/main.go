// Command campctl administers camp sessions from the command line:
// schema migration, spreadsheet imports and session listing.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/colo/internal/application"
	"github.com/JonMunkholm/colo/internal/config"
	"github.com/JonMunkholm/colo/internal/logging"
)

// opener builds the application for one command run.
type opener func(ctx context.Context, opts application.Options) (*application.App, error)

// openFromEnv loads .env and the environment, then opens the configured store.
// Logs go to stderr so stdout stays machine readable.
func openFromEnv(verbose *bool) opener {
	return func(ctx context.Context, opts application.Options) (*application.App, error) {
		_ = godotenv.Load()

		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		level := cfg.Logging.Level
		if *verbose {
			level = "debug"
		}
		logging.SetupWriter(os.Stderr, level, cfg.Logging.Format)

		return application.Open(ctx, cfg, opts)
	}
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "campctl",
		Short:         "Administer camp sessions and their enrolled children",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(open),
		newImportCmd(open),
		newSessionsCmd(open),
		newChildrenCmd(open),
		newStatsCmd(open),
		newResetCmd(open),
	)
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	var verbose bool
	root := newRootCmd(openFromEnv(&verbose))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	if err := root.ExecuteContext(context.Background()); err != nil {
		slog.Debug("command failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
