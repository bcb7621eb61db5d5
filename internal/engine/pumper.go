// Package engine pushes materialized project tables into a database.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"dbloada/internal/dialect"
	"dbloada/internal/project"
	"dbloada/internal/schema"
	"dbloada/internal/table"
)

type Options struct {
	// Schema is passed to the dialect when looking up existing tables.
	Schema string
	// Truncate empties each target table before inserting.
	Truncate bool
	// NoCreate fails tables that do not exist instead of creating them.
	NoCreate bool
	Logger   *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TotalRows is the number of rows Pump will try to insert, for sizing
// progress bars.
func TotalRows(loaded *project.LoadedProject) int {
	total := 0
	for _, t := range loaded.Tables {
		total += t.NumRows()
	}
	return total
}

// Pump writes every table of loaded into db, parents first. Each table is
// inserted in its own transaction, so a failing table leaves earlier ones
// in place and is reported in its PumpResult. The returned error is only
// set when the database cannot be inspected at all.
func Pump(ctx context.Context, db *sql.DB, d dialect.Dialect, loaded *project.LoadedProject, opts Options, onProgress func()) ([]schema.PumpResult, error) {
	logger := opts.logger()

	bySpec := make(map[*project.TableSpec]*table.Table, len(loaded.Tables))
	for i := range loaded.Project.Tables {
		bySpec[&loaded.Project.Tables[i]] = loaded.Tables[i]
	}

	existing, err := schema.ExistingTables(ctx, db, d, opts.Schema)
	if err != nil {
		return nil, err
	}

	ordered := schema.FromProject(loaded.Project)
	results := make([]schema.PumpResult, 0, len(ordered))
	// tables sharing a name are filled into the same target, emptied once
	truncated := schema.TableSet{}
	for _, st := range ordered {
		if st.BrokenCycle {
			logger.Warn("breaking relationship cycle", "table", st.Name, "dependencies", st.Dependencies)
		}
		data := bySpec[st.Spec]
		res := schema.PumpResult{TableName: st.Name, Target: data.NumRows(), Status: schema.StatusOK}

		truncate := opts.Truncate && !truncated.Contains(st.Name)
		truncated.Add(st.Name)
		inserted, err := pumpTable(ctx, db, d, st.Spec, data, existing, truncate, opts, onProgress)
		res.Actual = inserted
		if err != nil {
			res.Status = schema.StatusFailed
			res.ErrorMsg = err.Error()
			logger.Error("failed to fill table", "table", st.Name, "error", err)
		} else {
			logger.Info("filled table", "table", st.Name, "rows", inserted)
		}
		results = append(results, res)
	}
	return results, nil
}

func pumpTable(ctx context.Context, db *sql.DB, d dialect.Dialect, spec *project.TableSpec, data *table.Table,
	existing schema.TableSet, truncate bool, opts Options, onProgress func()) (int, error) {
	logger := opts.logger()

	values, err := ConvertRows(spec, data.Rows)
	if err != nil {
		return 0, err
	}

	if !existing.Contains(spec.Name) {
		if opts.NoCreate {
			return 0, fmt.Errorf("table '%s' does not exist", spec.Name)
		}
		query := d.CreateTableQuery(spec.Name, dialect.ColumnsFromSpec(*spec))
		logger.Debug("creating table", "table", spec.Name, "query", query)
		if _, err := db.ExecContext(ctx, query); err != nil {
			return 0, fmt.Errorf("failed to create table: %w", err)
		}
		existing.Add(spec.Name)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	if err := d.BeforePump(tx); err != nil {
		logger.Warn("BeforePump hook failed, continuing", "table", spec.Name, "error", err)
	}

	if truncate {
		if _, err := tx.ExecContext(ctx, d.TruncateQuery(spec.Name)); err != nil {
			return 0, fmt.Errorf("failed to truncate: %w", err)
		}
	}

	query := d.InsertQuery(spec.Name, spec.ColumnNames())
	inserted := 0
	for i, row := range values {
		if _, err := tx.ExecContext(ctx, query, row...); err != nil {
			return 0, fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
		inserted++
		if onProgress != nil {
			onProgress()
		}
	}

	if err := d.AfterPump(tx); err != nil {
		logger.Warn("AfterPump hook failed", "table", spec.Name, "error", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	tx = nil
	return inserted, nil
}

// VerifyInjection checks the actual row counts after pumping and returns results.
func VerifyInjection(ctx context.Context, db *sql.DB, d dialect.Dialect, results []schema.PumpResult) []schema.PumpResult {
	verifiedResults := make([]schema.PumpResult, 0, len(results))
	for _, res := range results {
		if res.Status == schema.StatusFailed {
			verifiedResults = append(verifiedResults, res)
			continue
		}

		var currentCount int
		err := db.QueryRowContext(ctx, d.CountQuery(res.TableName)).Scan(&currentCount)

		status := schema.StatusVerified
		if err != nil {
			status = fmt.Sprintf("VERIFY_FAIL: %v", err)
		} else if currentCount < res.Target {
			status = fmt.Sprintf("PARTIAL: %d/%d", currentCount, res.Target)
		}

		verifiedResults = append(verifiedResults, schema.PumpResult{
			TableName: res.TableName,
			Target:    res.Target,
			Actual:    currentCount,
			Status:    status,
			ErrorMsg:  res.ErrorMsg,
		})
	}
	return verifiedResults
}

// Clean empties the project's tables children first, skipping tables that
// do not exist. Failures are logged and the remaining tables still cleaned.
func Clean(ctx context.Context, db *sql.DB, d dialect.Dialect, p *project.Project, schemaName string, logger *slog.Logger) (int, error) {
	existing, err := schema.ExistingTables(ctx, db, d, schemaName)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	if err := d.BeforePump(tx); err != nil {
		logger.Warn("BeforePump hook failed, continuing", "error", err)
	}

	tables := schema.FromProject(p)
	cleaned := 0
	seen := schema.TableSet{}
	for i := len(tables) - 1; i >= 0; i-- {
		name := tables[i].Name
		if seen.Contains(name) {
			continue
		}
		seen.Add(name)
		if !existing.Contains(name) {
			logger.Debug("skipping missing table", "table", name)
			continue
		}
		if _, err := tx.ExecContext(ctx, d.TruncateQuery(name)); err != nil {
			logger.Warn("failed to clean table, continuing", "table", name, "error", err)
			continue
		}
		cleaned++
		logger.Info("cleaned table", "table", name)
	}

	if err := d.AfterPump(tx); err != nil {
		logger.Warn("AfterPump hook failed", "error", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit cleaning transaction: %w", err)
	}
	tx = nil
	return cleaned, nil
}
