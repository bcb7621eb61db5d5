package server

import (
	"encoding/csv"
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const csvSuffix = ".csv"

// TableSummary is one entry of the GET /tables listing.
type TableSummary struct {
	Name    string `json:"name"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

// TableData is the JSON form of a materialized table.
type TableData struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"project": s.loaded.Project.Name,
	})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	summaries := make([]TableSummary, 0, len(s.loaded.Tables))
	for _, t := range s.loaded.Tables {
		summaries = append(summaries, TableSummary{Name: t.Name, Rows: t.NumRows(), Columns: t.NumColumns()})
	}
	writeJSON(w, http.StatusOK, summaries)
}

// handleTable serves /tables/{name} as JSON and /tables/{name}.csv as CSV.
// A table whose own name ends in .csv is still reachable as JSON.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if t, ok := s.tables[name]; ok {
		writeJSON(w, http.StatusOK, TableData{Name: t.Name, Columns: t.Columns, Rows: t.Rows})
		return
	}

	base, isCSV := strings.CutSuffix(name, csvSuffix)
	t, ok := s.tables[base]
	if !isCSV || !ok {
		s.respondError(w, r, &notFoundError{what: "table", name: base}, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": t.Name + csvSuffix}))
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		s.logger.Error("failed to write csv header", "table", t.Name, "error", err)
		return
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		s.logger.Error("failed to write csv rows", "table", t.Name, "error", err)
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, r, &notFoundError{what: "route", name: r.URL.Path}, http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
