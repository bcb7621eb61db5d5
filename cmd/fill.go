package cmd

import (
	"fmt"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dbloada/internal/engine"
	"dbloada/internal/schema"
)

var fillCmd = &cobra.Command{
	Use:   "fill [dir]",
	Short: "Load a project and insert its tables into the database",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		loaded, err := loadProject(ctx, projectDir(args))
		if err != nil {
			return err
		}

		t, err := openTarget(ctx)
		if err != nil {
			return err
		}
		defer t.db.Close()

		fmt.Printf("🦅 Connected to %s (%s)\n", t.config.Name, t.config.Driver)

		total := engine.TotalRows(loaded)
		logger.Info("starting fill", "project", loaded.Project.Name, "tables", len(loaded.Tables), "rows", total)
		start := time.Now()

		progress := uiprogress.New()
		progress.Start()
		bar := progress.AddBar(max(total, 1)).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return "Inserting rows: "
		})

		results, err := engine.Pump(ctx, t.db, t.dialect, loaded, engine.Options{
			Schema:   t.schema,
			Truncate: viper.GetBool("fill.truncate"),
			NoCreate: viper.GetBool("fill.no_create"),
			Logger:   logger,
		}, func() {
			bar.Incr()
		})

		progress.Stop()

		if err != nil {
			return err
		}

		verifiedResults := engine.VerifyInjection(ctx, t.db, t.dialect, results)
		failed := printReport(verifiedResults)
		logger.Info("fill done", "elapsed", time.Since(start))

		if failed > 0 {
			return fmt.Errorf("%d of %d tables were not filled completely", failed, len(verifiedResults))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(fillCmd)

	fillCmd.Flags().Bool("truncate", false, "empty each table before inserting")
	fillCmd.Flags().Bool("no-create", false, "fail tables that do not exist instead of creating them")

	viper.BindPFlag("fill.truncate", fillCmd.Flags().Lookup("truncate"))
	viper.BindPFlag("fill.no_create", fillCmd.Flags().Lookup("no-create"))
}

// printReport prints one line per table in fill order and returns how many
// tables did not verify.
func printReport(results []schema.PumpResult) int {
	fmt.Println("\n📊 Summary Report (Dependency Order):")
	total, failed := 0, 0
	for i, r := range results {
		icon := "✓"
		statusDisplay := r.Status
		if r.Status == schema.StatusVerified {
			statusDisplay = "OK (Verified)"
		} else {
			icon = "!"
			failed++
		}

		fmt.Printf("[%s] [%02d/%02d] %-20s : %d rows (Target: %d) - %s\n",
			icon, i+1, len(results), r.TableName, r.Actual, r.Target, statusDisplay)
		if r.ErrorMsg != "" {
			fmt.Printf("    └ Error: %s\n", r.ErrorMsg)
		}
		total += r.Actual
	}
	fmt.Println("--------------------------------------------------")
	fmt.Printf("Total Rows: %d\n", total)
	return failed
}
