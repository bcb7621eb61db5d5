package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"dbloada/internal/dialect"
	"dbloada/internal/project"
)

// ---------------------------------------------------------------------
// 1. Dependency Analysis
// ---------------------------------------------------------------------

// FromProject builds one Table per project table, with dependencies taken
// from the declared relationships, and returns them parents first.
// Relationships to the table itself or to tables outside the project add no
// dependency.
func FromProject(p *project.Project) []*Table {
	known := make(map[string]bool, len(p.Tables))
	for _, spec := range p.Tables {
		known[spec.Name] = true
	}

	tables := make([]*Table, 0, len(p.Tables))
	for i := range p.Tables {
		spec := &p.Tables[i]
		t := &Table{Name: spec.Name, Spec: spec, Dependencies: []string{}}
		seen := make(map[string]bool)
		for _, rel := range spec.Relationships {
			if rel.TargetTable == spec.Name || !known[rel.TargetTable] {
				continue
			}
			t.ForeignKeys = append(t.ForeignKeys, &ForeignKey{
				Name:      rel.Name,
				Column:    rel.SourceColumn,
				RefTable:  rel.TargetTable,
				RefColumn: rel.TargetColumn,
			})
			if !seen[rel.TargetTable] {
				seen[rel.TargetTable] = true
				t.Dependencies = append(t.Dependencies, rel.TargetTable)
			}
		}
		tables = append(tables, t)
	}
	return SortTablesByFKCount(tables)
}

// ---------------------------------------------------------------------
// 2. Schema Introspection
// ---------------------------------------------------------------------

// TableSet holds table names, matched case-insensitively.
type TableSet map[string]bool

func (s TableSet) Contains(name string) bool {
	return s[strings.ToUpper(name)]
}

func (s TableSet) Add(name string) {
	s[strings.ToUpper(name)] = true
}

// ExistingTables lists the base tables present in schemaName.
func ExistingTables(ctx context.Context, db *sql.DB, d dialect.Dialect, schemaName string) (TableSet, error) {
	target := d.GetSchemaName(schemaName)

	rows, err := db.QueryContext(ctx, d.GetTablesQuery(target), target)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	set := TableSet{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		set.Add(name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return set, nil
}

// ---------------------------------------------------------------------
// 3. Sorting Algorithm (Topological / Greedy)
// ---------------------------------------------------------------------

// SortTablesByFKCount sorts tables by dependency order.
// It handles circular dependencies by using a scoring system. Tables that
// share a name are all kept; a dependency on that name is satisfied once
// every one of them has been placed.
func SortTablesByFKCount(tables []*Table) []*Table {
	var sorted []*Table
	processed := make(map[*Table]bool, len(tables))

	byName := make(map[string][]*Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = append(byName[t.Name], t)
	}
	placed := make(map[string]int, len(byName))
	ready := func(name string) bool {
		n := len(byName[name])
		return n > 0 && placed[name] == n
	}
	place := func(t *Table) {
		sorted = append(sorted, t)
		processed[t] = true
		placed[t.Name]++
	}

	for len(sorted) < len(tables) {
		added := false

		// Pass 1: Add tables whose dependencies are fully satisfied
		for _, t := range tables {
			if processed[t] {
				continue
			}

			allDepsProcessed := true
			for _, depName := range t.Dependencies {
				if !ready(depName) {
					allDepsProcessed = false
					break
				}
			}

			if allDepsProcessed {
				place(t)
				added = true
			}
		}

		if added {
			continue
		}

		// Pass 2: No table added, so there is a cycle. Break it using a heuristic score.
		var bestTable *Table
		bestScore := 0

		for _, t := range tables {
			if processed[t] {
				continue
			}

			// Fewer unprocessed dependencies is better.
			score := 0
			for _, dep := range t.Dependencies {
				if !ready(dep) {
					score -= 100
				}
			}

			// Prefer a table that is directly part of a two-way cycle.
			if isCircular(t, byName, ready) {
				score += 500
			}

			// Tie-breaker: Name (Deterministic)
			if bestTable == nil || score > bestScore || (score == bestScore && t.Name < bestTable.Name) {
				bestScore = score
				bestTable = t
			}
		}

		bestTable.BrokenCycle = true
		place(bestTable)
	}

	return sorted
}

// isCircular reports whether one of t's unsatisfied dependencies depends on
// t in turn.
func isCircular(t *Table, byName map[string][]*Table, ready func(string) bool) bool {
	for _, depName := range t.Dependencies {
		if ready(depName) {
			continue
		}
		for _, dep := range byName[depName] {
			for _, candDep := range dep.Dependencies {
				if candDep == t.Name {
					return true
				}
			}
		}
	}
	return false
}
