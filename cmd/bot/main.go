package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

// errNotConfirmed is returned by rollover without --yes.
var errNotConfirmed = errors.New("rollover clears the roster; pass --yes to confirm")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "bot",
		Short:        "Weekly club meeting sign-up bot",
		Long:         "Collects attendance for the weekly club meeting over Telegram and resets the roster every week.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the weekly reset scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Print whether the next meeting takes place",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd.OutOrStdout())
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the current participants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), cmd.OutOrStdout())
		},
	}

	var confirmed bool
	rolloverCmd := &cobra.Command{
		Use:   "rollover",
		Short: "Archive and clear the roster now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errNotConfirmed
			}
			return runRollover(cmd.Context(), cmd.OutOrStdout())
		},
	}
	rolloverCmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm that the roster should be archived and cleared")

	root.AddCommand(serveCmd, statusCmd, listCmd, rolloverCmd)
	return root
}
