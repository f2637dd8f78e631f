package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/colo/internal/admin"
	"github.com/JonMunkholm/colo/internal/application"
	db "github.com/JonMunkholm/colo/internal/database"
)

var errNeedsPostgres = errors.New("this command requires STORE_BACKEND=postgres")

func newMigrateCmd(open opener) *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if printOnly {
				_, err := fmt.Fprint(cmd.OutOrStdout(), db.Schema())
				return err
			}

			app, err := open(cmd.Context(), application.Options{Migrate: true})
			if err != nil {
				return err
			}
			defer app.Close()
			if app.Pool == nil {
				return errNeedsPostgres
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the schema instead of applying it")
	return cmd
}

func newStatsCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print row counts per table",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := open(cmd.Context(), application.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			if app.Pool == nil {
				return errNeedsPostgres
			}

			counts, err := (&admin.Admin{DB: db.New(app.Pool)}).Stats(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), counts)
		},
	}
}

func newResetCmd(open opener) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every session, child and membership",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("reset deletes all data; pass --yes to confirm")
			}
			app, err := open(cmd.Context(), application.Options{})
			if err != nil {
				return err
			}
			defer app.Close()
			if app.Pool == nil {
				return errNeedsPostgres
			}

			removed, err := (&admin.Admin{DB: db.New(app.Pool)}).ResetAll(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), removed)
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm the reset")
	return cmd
}
