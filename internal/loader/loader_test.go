package loader_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"dbloada/internal/csvparse"
	"dbloada/internal/fsys"
	"dbloada/internal/loader"
	"dbloada/internal/project"
	"dbloada/internal/reader"
	"dbloada/internal/table"

	"github.com/spf13/afero"
)

const twoTables = `apiVersion: project.dbloada.io/v1
kind: DBLoadaProject
metadata:
  name: geo
spec:
  tables:
    - name: countries
      description: ""
      hasHeader: true
      source:
        file:
          filename: countries.csv
      columns:
        - name: name
          description: ""
          columnIdentifier: Name
          type: string
    - name: cities
      description: ""
      hasHeader: false
      source:
        file:
          filename: data/cities.csv
      columns:
        - name: name
          description: ""
          columnIdentifier: 0
          type: string
        - name: country
          description: ""
          columnIdentifier: 1
          type: string
`

func newLoader(t *testing.T, files map[string]string) *loader.Loader {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := afero.NewMemMapFs()
	if err := mem.MkdirAll("/proj", 0o755); err != nil {
		t.Fatal(err)
	}
	for path, content := range files {
		if err := afero.WriteFile(mem, path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	fs := fsys.New(mem, logger)
	parser := csvparse.NewParser(logger)
	dispatch := reader.NewDispatch(logger,
		reader.NewFileReader(fs, parser, logger),
		reader.NewCmdReader(parser, logger),
	)
	return loader.New(fs, project.NewYAMLStore(fs, logger), dispatch, logger)
}

func TestLoad(t *testing.T) {
	l := newLoader(t, map[string]string{
		"/proj/dbloada.yaml":    twoTables,
		"/proj/countries.csv":   "Name\nUK\nGermany\n",
		"/proj/data/cities.csv": "London,UK\nBerlin,Germany\n",
	})

	var seen []string
	l.Progress = func(tb *table.Table) { seen = append(seen, tb.Name) }

	lp, err := l.Load(context.Background(), "/proj")
	if err != nil {
		t.Fatal(err)
	}
	if lp.Project.Name != "geo" {
		t.Errorf("project name = %q", lp.Project.Name)
	}
	if len(lp.Tables) != len(lp.Project.Tables) {
		t.Fatalf("got %d tables for %d specs", len(lp.Tables), len(lp.Project.Tables))
	}
	for i, tb := range lp.Tables {
		if tb.Name != lp.Project.Tables[i].Name {
			t.Errorf("table %d = %q, want %q", i, tb.Name, lp.Project.Tables[i].Name)
		}
	}
	if want := [][]string{{"London", "UK"}, {"Berlin", "Germany"}}; !reflect.DeepEqual(lp.Tables[1].Rows, want) {
		t.Errorf("cities rows = %v", lp.Tables[1].Rows)
	}
	if want := []string{"countries", "cities"}; !reflect.DeepEqual(seen, want) {
		t.Errorf("progress = %v", seen)
	}
}

func TestLoadEmptyProject(t *testing.T) {
	l := newLoader(t, map[string]string{
		"/proj/dbloada.yaml": "apiVersion: project.dbloada.io/v1\nkind: DBLoadaProject\nmetadata:\n  name: empty\n",
	})
	lp, err := l.Load(context.Background(), "/proj")
	if err != nil {
		t.Fatal(err)
	}
	if len(lp.Tables) != 0 {
		t.Errorf("expected no tables, got %d", len(lp.Tables))
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := newLoader(t, nil).Load(context.Background(), "/nope")
		var e *loader.DirectoryNotFoundError
		if !errors.As(err, &e) || e.Path != "/nope" {
			t.Fatalf("expected DirectoryNotFoundError, got %v", err)
		}
	})

	t.Run("missing project file", func(t *testing.T) {
		_, err := newLoader(t, nil).Load(context.Background(), "/proj")
		var e *loader.ProjectFileNotFoundError
		if !errors.As(err, &e) || e.Path != "/proj/dbloada.yaml" {
			t.Fatalf("expected ProjectFileNotFoundError, got %v", err)
		}
	})

	t.Run("malformed project", func(t *testing.T) {
		l := newLoader(t, map[string]string{"/proj/dbloada.yaml": "kind: [unterminated"})
		_, err := l.Load(context.Background(), "/proj")
		var e *project.SerializationError
		if !errors.As(err, &e) {
			t.Fatalf("expected SerializationError, got %v", err)
		}
	})

	t.Run("second table missing", func(t *testing.T) {
		l := newLoader(t, map[string]string{
			"/proj/dbloada.yaml":  twoTables,
			"/proj/countries.csv": "Name\nUK\n",
		})
		calls := 0
		l.Progress = func(*table.Table) { calls++ }

		lp, err := l.Load(context.Background(), "/proj")
		if lp != nil {
			t.Errorf("expected no partial result, got %+v", lp)
		}
		var e *reader.ReadError
		if !errors.As(err, &e) || e.Table != "cities" {
			t.Fatalf("expected ReadError for cities, got %v", err)
		}
		if calls != 1 {
			t.Errorf("progress calls = %d, want 1", calls)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		l := newLoader(t, map[string]string{
			"/proj/dbloada.yaml":    twoTables,
			"/proj/countries.csv":   "Name\nUK\n",
			"/proj/data/cities.csv": "London,UK\n",
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := l.Load(ctx, "/proj"); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}

func TestProjectThenMaterialize(t *testing.T) {
	l := newLoader(t, map[string]string{
		"/proj/dbloada.yaml":    twoTables,
		"/proj/countries.csv":   "Name\nUK\n",
		"/proj/data/cities.csv": "London,UK\n",
	})

	p, err := l.Project("/proj")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(p.Tables))
	}

	loaded, err := l.Materialize(context.Background(), "/proj", p)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Project != p {
		t.Error("Materialize should keep the given project")
	}
	if v, _ := loaded.Tables[1].Cell(0, 0); v != "London" {
		t.Errorf("cities cell = %q", v)
	}
}
