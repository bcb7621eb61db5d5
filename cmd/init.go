package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dbloada/internal/fsys"
	"dbloada/internal/project"
	"dbloada/internal/scaffold"
)

var (
	initName  string
	initForce bool
	initSeed  int64
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a sample project with generated source data",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := projectDir(args)
		fs := fsys.NewOS(logger)
		s := scaffold.New(fs, project.NewYAMLStore(fs, logger), logger).WithSeed(initSeed)
		if err := s.Init(dir, initName, initForce); err != nil {
			return err
		}
		fmt.Printf("✨ Initialized sample project in %s\n", dir)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initName, "name", "", "project name (default: derived from the directory name)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "initialize even when the directory is not empty")
	initCmd.Flags().Int64Var(&initSeed, "seed", scaffold.DefaultSeed, "seed for the generated sample data")
}
