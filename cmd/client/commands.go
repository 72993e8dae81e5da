package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"stanbot/internal/app"
	"stanbot/internal/client/tcp"
	"stanbot/internal/domain"
)

var (
	quoteColor   = color.New(color.FgGreen, color.Bold)
	captionColor = color.New(color.FgHiBlack)
	warnColor    = color.New(color.FgYellow)
)

func newRootCmd() *cobra.Command {
	var sessionID string

	root := &cobra.Command{
		Use:   "stanbot-client",
		Short: "Talk to Stan, the robot that tells repository jokes",
		Long: `Connects to a stanbot server and clicks the robot.

The server address and timeouts come from the environment (SERVER_ADDR,
REQUEST_TIMEOUT, ...) or from the YAML file named by CONFIG_PATH.
Pass --session to continue a session opened earlier.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&sessionID, "session", "s", "", "resume this session instead of opening a new one")

	var clicks int
	clickCmd := &cobra.Command{
		Use:   "click",
		Short: "Click the robot and show its next joke",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if clicks < 1 {
				return fmt.Errorf("--count must be at least 1, got %d", clicks)
			}
			return withSession(cmd, sessionID, func(conn *tcp.Conn) error {
				for range clicks {
					snap, err := conn.Click()
					if err != nil {
						return err
					}
					renderSnapshot(cmd.OutOrStdout(), snap)
				}
				return nil
			})
		},
	}
	clickCmd.Flags().IntVarP(&clicks, "count", "n", 1, "number of clicks")

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Start the session over",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, sessionID, func(conn *tcp.Conn) error {
				snap, err := conn.Reset()
				if err != nil {
					return err
				}
				renderSnapshot(cmd.OutOrStdout(), snap)
				return nil
			})
		},
	}

	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Show the current joke and click count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, sessionID, func(conn *tcp.Conn) error {
				snap, err := conn.State()
				if err != nil {
					return err
				}
				renderSnapshot(cmd.OutOrStdout(), snap)
				return nil
			})
		},
	}

	endCmd := &cobra.Command{
		Use:   "end",
		Short: "Make the server forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if sessionID == "" {
				return fmt.Errorf("end needs --session")
			}
			return withSession(cmd, sessionID, func(conn *tcp.Conn) error {
				return conn.End()
			})
		},
	}

	randomCmd := &cobra.Command{
		Use:   "random",
		Short: "Show any joke without touching a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := app.Connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			quote, err := conn.Random()
			if err != nil {
				return err
			}
			quoteColor.Fprintf(cmd.OutOrStdout(), "%s\n", quote)
			return nil
		},
	}

	root.AddCommand(clickCmd, resetCmd, stateCmd, endCmd, randomCmd)
	return root
}

// withSession connects, opens or resumes the session and runs fn on it.
func withSession(cmd *cobra.Command, sessionID string, fn func(conn *tcp.Conn) error) error {
	conn, err := app.Connect(cmd.Context())
	if err != nil {
		return err
	}
	defer conn.Close()

	snap, err := conn.Hello(sessionID)
	if err != nil {
		if tcp.IsSessionNotFound(err) {
			return fmt.Errorf("session %s is unknown or expired; run without --session to start a new one", sessionID)
		}
		return err
	}

	if err := fn(conn); err != nil {
		return err
	}
	if sessionID == "" {
		captionColor.Fprintf(cmd.ErrOrStderr(), "session: %s\n", snap.Session)
	}
	return nil
}

func renderSnapshot(w io.Writer, snap domain.Snapshot) {
	if snap.Fallback {
		warnColor.Fprintf(w, "%s\n", snap.Quote)
	} else {
		quoteColor.Fprintf(w, "%s\n", snap.Quote)
	}
	if snap.Shown() {
		captionColor.Fprintf(w, "You clicked the robot %d %s\n", snap.Clicks, plural(snap.Clicks, "time", "times"))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
