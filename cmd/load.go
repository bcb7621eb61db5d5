package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"

	"dbloada/internal/project"
	"dbloada/internal/table"
)

var summaryOnly bool

var loadCmd = &cobra.Command{
	Use:   "load [dir]",
	Short: "Materialize every table of a project and print it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		loaded, err := loadProject(cmd.Context(), projectDir(args))
		if err != nil {
			return err
		}

		fmt.Printf("\n📦 Project %s (%d tables)\n", loaded.Project.Name, len(loaded.Tables))
		for i, t := range loaded.Tables {
			if summaryOnly {
				fmt.Printf("[%02d/%02d] %-20s : %d rows, %d columns\n",
					i+1, len(loaded.Tables), t.Name, t.NumRows(), t.NumColumns())
				continue
			}
			fmt.Println(t.Render())
		}
		logger.Info("load done", "elapsed", time.Since(start))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(loadCmd)
	loadCmd.Flags().BoolVar(&summaryOnly, "summary", false, "print row and column counts only")
}

// loadProject materializes dir with a progress bar over its tables.
func loadProject(ctx context.Context, dir string) (*project.LoadedProject, error) {
	l := newLoader()
	p, err := l.Project(dir)
	if err != nil {
		return nil, err
	}
	total := len(p.Tables)

	progress := uiprogress.New()
	progress.Start()
	bar := progress.AddBar(max(total, 1)).AppendCompleted().PrependElapsed()
	bar.PrependFunc(func(b *uiprogress.Bar) string {
		return "Loading tables: "
	})
	l.Progress = func(*table.Table) {
		bar.Incr()
	}

	loaded, err := l.Materialize(ctx, dir, p)
	if total == 0 {
		bar.Incr()
	}
	progress.Stop()
	return loaded, err
}
