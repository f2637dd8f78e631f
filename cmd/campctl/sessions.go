package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/colo/internal/application"
	"github.com/JonMunkholm/colo/internal/core"
)

func newSessionsCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List, create and delete sessions",
	}
	cmd.AddCommand(newSessionsListCmd(open), newSessionsCreateCmd(open), newSessionsDeleteCmd(open))
	return cmd
}

func newSessionsListCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions by start date",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := open(cmd.Context(), application.Options{})
			if err != nil {
				return err
			}
			defer app.Close()

			sessions, err := app.Service.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), sessions)
		},
	}
}

func newSessionsCreateCmd(open opener) *cobra.Command {
	var (
		req        core.SessionRequest
		start, end string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.StartDate, err = parseDateFlag("start", start); err != nil {
				return err
			}
			if req.EndDate, err = parseDateFlag("end", end); err != nil {
				return err
			}

			app, err := open(cmd.Context(), application.Options{})
			if err != nil {
				return err
			}
			defer app.Close()

			view, err := app.Service.CreateSession(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), view)
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Session name (required)")
	cmd.Flags().StringVar(&req.Description, "description", "", "Free text description")
	cmd.Flags().StringVar(&req.Location, "location", "", "Where the session takes place")
	cmd.Flags().StringVar(&start, "start", "", "Start date, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "End date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newSessionsDeleteCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a session, its memberships and the children left without one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid session ID %q", args[0])
			}

			app, err := open(cmd.Context(), application.Options{})
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Service.DeleteSession(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %d deleted\n", id)
			return nil
		},
	}
}

func newChildrenCmd(open opener) *cobra.Command {
	var sessionID int64

	cmd := &cobra.Command{
		Use:   "children",
		Short: "List the children enrolled in a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := open(cmd.Context(), application.Options{})
			if err != nil {
				return err
			}
			defer app.Close()

			children, err := app.Service.ListMemberships(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), children)
		},
	}
	cmd.Flags().Int64Var(&sessionID, "session", 0, "Session ID (required)")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}

func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", name, value)
	}
	return t, nil
}
