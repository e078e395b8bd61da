package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-doctree/internal/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the document tree schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRunner(cmd, func(runner *migrations.Runner) error {
			group, err := runner.Up(cmd.Context())
			if err != nil {
				return err
			}
			if group == nil {
				cmd.Println("Schema is up to date.")
				return nil
			}
			cmd.Printf("Applied %d migration(s) in group %d.\n", len(group.Migrations), group.ID)
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migration group",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRunner(cmd, func(runner *migrations.Runner) error {
			group, err := runner.Down(cmd.Context())
			if err != nil {
				return err
			}
			if group == nil {
				cmd.Println("Nothing to roll back.")
				return nil
			}
			cmd.Printf("Rolled back %d migration(s) from group %d.\n", len(group.Migrations), group.ID)
			return nil
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List applied and pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRunner(cmd, func(runner *migrations.Runner) error {
			status, err := runner.Status(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range status.Applied {
				cmd.Printf("applied  %s\n", name)
			}
			for _, name := range status.Pending {
				cmd.Printf("pending  %s\n", name)
			}
			return nil
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}

func withRunner(cmd *cobra.Command, fn func(*migrations.Runner) error) error {
	module, err := openModule(cmd)
	if err != nil {
		return err
	}
	defer module.Close()

	db := module.Container().DB()
	if db == nil {
		return errors.New("no database configured")
	}
	runner, err := migrations.NewRunner(db)
	if err != nil {
		return err
	}
	return fn(runner)
}
