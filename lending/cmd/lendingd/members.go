package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/library-lending/lending-ledger/lending/activity"
)

func membersCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "members",
		Short: "Manage the SQLite members database",
	}

	c.AddCommand(membersSetCmd())
	c.AddCommand(membersGetCmd())

	return c
}

func membersSetCmd() *cobra.Command {
	var (
		dbPath   string
		inactive bool
	)

	c := &cobra.Command{
		Use:   "set <reader-id>",
		Short: "Create a member or change its active flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checker, err := activity.OpenSQLiteChecker(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = checker.Close() }()

			if err = checker.Upsert(cmd.Context(), args[0], !inactive); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s active=%t\n", args[0], !inactive)

			return err
		},
	}

	c.Flags().StringVar(&dbPath, "db", "members.db", "SQLite members database path")
	c.Flags().BoolVar(&inactive, "inactive", false, "mark the member as inactive")

	return c
}

func membersGetCmd() *cobra.Command {
	var dbPath string

	c := &cobra.Command{
		Use:   "get <reader-id>",
		Short: "Print whether a reader may borrow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checker, err := activity.OpenSQLiteChecker(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = checker.Close() }()

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s active=%t\n", args[0], checker.IsActive(args[0]))

			return err
		},
	}

	c.Flags().StringVar(&dbPath, "db", "members.db", "SQLite members database path")

	return c
}
