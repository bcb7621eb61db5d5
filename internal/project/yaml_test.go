package project_test

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"dbloada/internal/fsys"
	"dbloada/internal/project"

	"github.com/spf13/afero"
)

const citiesDoc = `apiVersion: project.dbloada.io/v1
kind: DBLoadaProject
metadata:
  name: geo
spec:
  tables:
    - name: cities
      description: city list
      hasHeader: true
      source:
        file:
          filename: cities.csv
      columns:
        - name: name
          description: city name
          columnIdentifier: Name
          type: string(64)
        - name: country
          description: country name
          columnIdentifier: 1
          type: string
      relationships:
        - name: city-country
          description: city belongs to country
          sourceColumn: country
          targetTable: countries
          targetColumn: name
    - name: numbers
      description: generated
      hasHeader: false
      source:
        cmd:
          command: sh
          args: ["-c", "seq 1 3 > $TEMP_CSV_PATH"]
          stdout: false
          characterEncoding: windows-1252
      columns:
        - name: n
          description: number
          columnIdentifier: 0
          type: int64
`

func sampleProject() *project.Project {
	return &project.Project{
		Name:       "geo",
		APIVersion: project.APIVersion,
		Tables: []project.TableSpec{
			{
				Name:        "cities",
				Description: "city list",
				HasHeader:   true,
				Source:      project.FileSource{Filename: "cities.csv", CharacterEncoding: "utf-8"},
				Columns: []project.ColumnSpec{
					{Name: "name", Description: "city name", Identifier: project.NameIdentifier("Name"), Type: project.ColumnType{Kind: project.TypeString, MaxLength: 64}},
					{Name: "country", Description: "country name", Identifier: project.IndexIdentifier(1), Type: project.StringType()},
				},
				Relationships: []project.RelationshipSpec{
					{Name: "city-country", Description: "city belongs to country", SourceColumn: "country", TargetTable: "countries", TargetColumn: "name"},
				},
			},
			{
				Name:        "numbers",
				Description: "generated",
				Source: project.CmdSource{
					Command:           "sh",
					Args:              []string{"-c", "seq 1 3 > $TEMP_CSV_PATH"},
					CharacterEncoding: "windows-1252",
				},
				Columns: []project.ColumnSpec{
					{Name: "n", Description: "number", Identifier: project.IndexIdentifier(0), Type: project.ColumnType{Kind: project.TypeInt64}},
				},
			},
		},
	}
}

func TestDeserialize(t *testing.T) {
	got, err := project.Deserialize(citiesDoc)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !reflect.DeepEqual(got, sampleProject()) {
		t.Errorf("mismatch:\n got  %#v\n want %#v", got, sampleProject())
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	want := sampleProject()
	out, err := project.Serialize(want)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	for _, s := range []string{"kind: DBLoadaProject", "name: geo", project.APIVersion, "columnIdentifier: 1", "columnIdentifier: Name"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
	got, err := project.Deserialize(out)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got  %#v\n want %#v", got, want)
	}
}

func TestDeserializeEmptySpec(t *testing.T) {
	p, err := project.Deserialize("apiVersion: project.dbloada.io/v1\nkind: DBLoadaProject\nmetadata:\n  name: empty\n")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "empty" || len(p.Tables) != 0 {
		t.Errorf("unexpected project %#v", p)
	}
}

func TestDeserializeErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(error) bool
	}{
		{
			name:    "wrong kind",
			content: "apiVersion: v1\nkind: WrongKind\nmetadata:\n  name: x\n",
			check: func(err error) bool {
				var ke *project.UnexpectedKindError
				return errors.As(err, &ke) && ke.Actual == "WrongKind"
			},
		},
		{
			name:    "malformed yaml",
			content: "kind: [unclosed",
			check: func(err error) bool {
				var se *project.SerializationError
				return errors.As(err, &se) && se.Op == "deserialize"
			},
		},
		{
			name: "negative index",
			content: strings.Replace(citiesDoc, "columnIdentifier: 1", "columnIdentifier: -1", 1),
			check: func(err error) bool {
				var se *project.SerializationError
				return errors.As(err, &se)
			},
		},
		{
			name:    "unknown type",
			content: strings.Replace(citiesDoc, "type: int64", "type: float", 1),
			check: func(err error) bool {
				var se *project.SerializationError
				return errors.As(err, &se) && strings.Contains(err.Error(), "unknown column type")
			},
		},
		{
			name:    "missing column identifier",
			content: strings.Replace(citiesDoc, "          columnIdentifier: 1\n", "", 1),
			check: func(err error) bool {
				var se *project.SerializationError
				return errors.As(err, &se) && strings.Contains(err.Error(), "column 'country': missing columnIdentifier")
			},
		},
		{
			name:    "null column identifier",
			content: strings.Replace(citiesDoc, "columnIdentifier: 1", "columnIdentifier: ~", 1),
			check: func(err error) bool {
				return err != nil && strings.Contains(err.Error(), "missing columnIdentifier")
			},
		},
		{
			name:    "missing source",
			content: strings.Replace(citiesDoc, "      source:\n        file:\n          filename: cities.csv\n", "", 1),
			check: func(err error) bool {
				return err != nil && strings.Contains(err.Error(), "missing source")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := project.Deserialize(tt.content)
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestQuotedNumericHeaderIsName(t *testing.T) {
	doc := strings.Replace(citiesDoc, "columnIdentifier: Name", `columnIdentifier: "2024"`, 1)
	p, err := project.Deserialize(doc)
	if err != nil {
		t.Fatal(err)
	}
	name, ok := p.Tables[0].Columns[0].Identifier.Name()
	if !ok || name != "2024" {
		t.Errorf("expected name identifier 2024, got %v", p.Tables[0].Columns[0].Identifier)
	}
}

func TestParseColumnType(t *testing.T) {
	tests := []struct {
		in      string
		want    project.ColumnType
		wantErr bool
	}{
		{in: "string", want: project.StringType()},
		{in: " string(10) ", want: project.ColumnType{Kind: project.TypeString, MaxLength: 10}},
		{in: "int64", want: project.ColumnType{Kind: project.TypeInt64}},
		{in: "string(x)", wantErr: true},
		{in: "string(0)", wantErr: true},
		{in: "bool", wantErr: true},
	}
	for _, tt := range tests {
		got, err := project.ParseColumnType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: err = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("%q: got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestYAMLStoreRoundTrip(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := project.NewYAMLStore(fsys.New(afero.NewMemMapFs(), logger), logger)

	want := sampleProject()
	if err := store.Save(want, "/p/dbloada.yaml"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load("/p/dbloada.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mismatch:\n got  %#v\n want %#v", got, want)
	}

	_, err = store.Load("/p/missing.yaml")
	var ae *fsys.AccessError
	if !errors.As(err, &ae) {
		t.Errorf("expected AccessError for missing file, got %v", err)
	}
}
