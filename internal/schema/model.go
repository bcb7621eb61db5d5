package schema

import "dbloada/internal/project"

// Table is a project table as seen by the fill and clean commands.
type Table struct {
	Name         string
	Spec         *project.TableSpec
	ForeignKeys  []*ForeignKey
	Dependencies []string // tables that must be filled before this one

	// BrokenCycle is set when the table was placed before some of its
	// dependencies to break a relationship cycle.
	BrokenCycle bool
}

type ForeignKey struct {
	Name      string
	Column    string
	RefTable  string
	RefColumn string
}

// Pump statuses reported in PumpResult.Status.
const (
	StatusOK       = "OK"
	StatusFailed   = "FAILED"
	StatusVerified = "VERIFIED_OK"
)

// PumpResult is the outcome of pushing one table, used for reporting.
type PumpResult struct {
	TableName string
	Target    int
	Actual    int
	Status    string
	ErrorMsg  string
}
