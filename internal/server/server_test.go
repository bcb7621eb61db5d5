package server_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"dbloada/internal/project"
	"dbloada/internal/server"
	"dbloada/internal/table"
)

func newTestServer() *httptest.Server {
	loaded := &project.LoadedProject{
		Project: &project.Project{Name: "geo"},
		Tables: []*table.Table{
			table.New("countries", []string{"name", "code"}, [][]string{{"Spain", "ES"}, {"Germany", "DE"}}),
			table.New("cities", []string{"name", "country"}, [][]string{{"Málaga", "ES"}, {"Köln, Nord", "DE"}, {"Bilbao", "ES"}}),
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httptest.NewServer(server.New(loaded, logger))
}

func get(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp := get(t, ts, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["project"] != "geo" {
		t.Errorf("body = %v", body)
	}
}

func TestListTables(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp := get(t, ts, "/tables")
	var got []server.TableSummary
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	want := []server.TableSummary{
		{Name: "countries", Rows: 2, Columns: 2},
		{Name: "cities", Rows: 3, Columns: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestTableJSON(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp := get(t, ts, "/tables/cities")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var got server.TableData
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "cities" || len(got.Rows) != 3 || got.Rows[0][0] != "Málaga" {
		t.Errorf("unexpected table %+v", got)
	}
}

func TestTableCSV(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp := get(t, ts, "/tables/cities.csv")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	records, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"name", "country"}, {"Málaga", "ES"}, {"Köln, Nord", "DE"}, {"Bilbao", "ES"}}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("got %v", records)
	}
}

func TestNotFound(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	for _, path := range []string{"/tables/towns", "/tables/towns.csv", "/nowhere"} {
		t.Run(path, func(t *testing.T) {
			resp := get(t, ts, path)
			if resp.StatusCode != http.StatusNotFound {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			var body server.ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(body.Error, "not found") || body.RequestID == "" {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp := get(t, ts, "/tables/countries.csv")
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}

func TestShutdownBeforeStart(t *testing.T) {
	loaded := &project.LoadedProject{Project: &project.Project{Name: "empty"}}
	srv := server.New(loaded, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestCSVFilenameIsEscaped(t *testing.T) {
	loaded := &project.LoadedProject{
		Project: &project.Project{Name: "odd"},
		Tables:  []*table.Table{table.New(`say "hi"`, []string{"x"}, [][]string{{"1"}})},
	}
	ts := httptest.NewServer(server.New(loaded, slog.New(slog.NewTextHandler(io.Discard, nil))))
	defer ts.Close()

	resp := get(t, ts, "/tables/say%20%22hi%22.csv")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	disposition, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	if err != nil {
		t.Fatalf("malformed Content-Disposition %q: %v", resp.Header.Get("Content-Disposition"), err)
	}
	if disposition != "attachment" || params["filename"] != `say "hi".csv` {
		t.Errorf("disposition = %q, params = %v", disposition, params)
	}
}
