package table_test

import (
	"strings"
	"testing"

	"dbloada/internal/table"
)

func TestAccessors(t *testing.T) {
	tbl := table.New("t", []string{"a", "b"}, [][]string{{"r0c0", "r0c1"}, {"r1c0", "r1c1"}})

	if tbl.NumRows() != 2 || tbl.NumColumns() != 2 {
		t.Fatalf("unexpected shape %dx%d", tbl.NumRows(), tbl.NumColumns())
	}
	if v, ok := tbl.Cell(1, 1); !ok || v != "r1c1" {
		t.Errorf("Cell(1,1) = %q, %v", v, ok)
	}
	if _, ok := tbl.Cell(0, 2); ok {
		t.Error("expected out of range column to report false")
	}
	if _, ok := tbl.Row(2); ok {
		t.Error("expected out of range row to report false")
	}
}

func TestRender(t *testing.T) {
	tbl := table.New("t", []string{"name", "id"}, [][]string{{"Alice", "1"}, {"Bob", "22"}})
	out := tbl.Render()

	if !strings.Contains(out, "Table: t (2 rows, 2 columns)") {
		t.Errorf("missing summary line:\n%s", out)
	}
	if !strings.Contains(out, "| Alice | 1  |") || !strings.Contains(out, "| Bob   | 22 |") {
		t.Errorf("columns not aligned:\n%s", out)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// summary, separator, header, separator, 2 rows, separator
	if len(lines) != 7 {
		t.Errorf("expected 7 lines, got %d", len(lines))
	}
}

func TestRenderEmpty(t *testing.T) {
	out := table.New("empty", []string{"col"}, nil).Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Errorf("expected 5 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "Table: empty (0 rows, 1 columns)") {
		t.Errorf("missing summary line:\n%s", out)
	}
}
