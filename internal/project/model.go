package project

import (
	"fmt"
	"strconv"
	"strings"

	"dbloada/internal/table"
)

const (
	APIVersion = "project.dbloada.io/v1"
	Kind       = "DBLoadaProject"

	// FileName is the well-known project file inside a project directory.
	FileName = "dbloada.yaml"

	DefaultCharacterEncoding = "utf-8"
)

type Project struct {
	Name       string
	APIVersion string
	Tables     []TableSpec
}

// LoadedProject pairs a project with its materialized tables, in the same
// order as Project.Tables.
type LoadedProject struct {
	Project *Project
	Tables  []*table.Table
}

type TableSpec struct {
	Name          string
	Description   string
	HasHeader     bool
	Source        Source
	Columns       []ColumnSpec
	Relationships []RelationshipSpec
}

// ColumnNames returns the declared column names in declaration order.
func (t TableSpec) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Source is where a table's raw content comes from. The set of
// implementations is closed: FileSource and CmdSource.
type Source interface {
	Encoding() string
	isSource()
}

type FileSource struct {
	Filename          string
	CharacterEncoding string
}

func (s FileSource) Encoding() string { return s.CharacterEncoding }
func (FileSource) isSource()          {}

// CmdSource produces table content by running a command. With Stdout set the
// content is captured from the command's standard output, otherwise the
// command is expected to write it to the path substituted for TempPathToken.
type CmdSource struct {
	Command           string
	Args              []string
	Stdout            bool
	CharacterEncoding string
}

func (s CmdSource) Encoding() string { return s.CharacterEncoding }
func (CmdSource) isSource()          {}

type ColumnSpec struct {
	Name        string
	Description string
	Identifier  ColumnIdentifier
	Type        ColumnType
}

// ColumnIdentifier addresses a raw source column either by zero-based index
// or by header name.
type ColumnIdentifier struct {
	index  int
	name   string
	byName bool
}

func IndexIdentifier(i int) ColumnIdentifier { return ColumnIdentifier{index: i} }

func NameIdentifier(n string) ColumnIdentifier { return ColumnIdentifier{name: n, byName: true} }

// Index reports the index and whether the identifier is index based.
func (c ColumnIdentifier) Index() (int, bool) { return c.index, !c.byName }

// Name reports the header name and whether the identifier is name based.
func (c ColumnIdentifier) Name() (string, bool) { return c.name, c.byName }

func (c ColumnIdentifier) String() string {
	if c.byName {
		return strconv.Quote(c.name)
	}
	return strconv.Itoa(c.index)
}

type TypeKind string

const (
	TypeString TypeKind = "string"
	TypeInt64  TypeKind = "int64"
)

// ColumnType is the declared type of a column. MaxLength is only meaningful
// for strings; zero means unbounded.
type ColumnType struct {
	Kind      TypeKind
	MaxLength int
}

func StringType() ColumnType { return ColumnType{Kind: TypeString} }

func (t ColumnType) String() string {
	if t.Kind == TypeString && t.MaxLength > 0 {
		return fmt.Sprintf("string(%d)", t.MaxLength)
	}
	if t.Kind == "" {
		return string(TypeString)
	}
	return string(t.Kind)
}

// ParseColumnType accepts "string", "string(N)" and "int64".
func ParseColumnType(s string) (ColumnType, error) {
	trimmed := strings.TrimSpace(s)
	switch trimmed {
	case "", "string":
		return StringType(), nil
	case "int64":
		return ColumnType{Kind: TypeInt64}, nil
	}
	if strings.HasPrefix(trimmed, "string(") && strings.HasSuffix(trimmed, ")") {
		inner := trimmed[len("string(") : len(trimmed)-1]
		n, err := strconv.Atoi(inner)
		if err != nil || n <= 0 {
			return ColumnType{}, fmt.Errorf("invalid max length in type '%s'", trimmed)
		}
		return ColumnType{Kind: TypeString, MaxLength: n}, nil
	}
	return ColumnType{}, fmt.Errorf("unknown column type: '%s'", trimmed)
}

// RelationshipSpec is a declarative edge from one of this table's columns to
// a column of another table. It is carried as metadata and never checked.
type RelationshipSpec struct {
	Name         string
	Description  string
	SourceColumn string
	TargetTable  string
	TargetColumn string
}
