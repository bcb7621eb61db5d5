package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dbloada/internal/engine"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [dir]",
	Short: "Empty the project's tables in the database, children first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, err := newLoader().Project(projectDir(args))
		if err != nil {
			return err
		}

		t, err := openTarget(ctx)
		if err != nil {
			return err
		}
		defer t.db.Close()

		fmt.Printf("🦅 Connected to %s (%s)\n", t.config.Name, t.config.Driver)

		cleaned, err := engine.Clean(ctx, t.db, t.dialect, p, t.schema, logger)
		if err != nil {
			return err
		}
		fmt.Printf("Cleaned %d/%d tables\n", cleaned, len(p.Tables))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(cleanCmd)
}
