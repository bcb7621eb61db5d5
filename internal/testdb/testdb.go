// Package testdb is an in-memory database/sql driver for tests. It
// understands just enough of the statements the dialects generate, with
// identifiers quoted in the PostgreSQL style, to record tables and rows.
package testdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
)

var quotedIdent = regexp.MustCompile(`"((?:[^"]|"")*)"`)

// Server holds the tables shared by every connection opened from it.
type Server struct {
	mu     sync.Mutex
	tables map[string][][]any
	order  []string

	// FailInsert makes any INSERT into the named table fail.
	FailInsert string
	// Statements records every executed statement in order.
	Statements []string
}

func New() *Server {
	return &Server{tables: map[string][][]any{}}
}

// Open returns a *sql.DB backed by s.
func (s *Server) Open() *sql.DB {
	return sql.OpenDB(&connector{s: s})
}

// CreateTable adds an empty table as if it already existed.
func (s *Server) CreateTable(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createLocked(name)
}

// Rows returns a copy of the rows stored in table.
func (s *Server) Rows(table string) [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.tables[table]))
	copy(out, s.tables[table])
	return out
}

// Tables lists the existing tables in creation order.
func (s *Server) Tables() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

func (s *Server) createLocked(name string) {
	if _, ok := s.tables[name]; ok {
		return
	}
	s.tables[name] = nil
	s.order = append(s.order, name)
}

func firstIdent(query string) (string, error) {
	m := quotedIdent.FindStringSubmatch(query)
	if m == nil {
		return "", fmt.Errorf("testdb: no quoted identifier in %q", query)
	}
	return strings.ReplaceAll(m[1], `""`, `"`), nil
}

type connector struct {
	s *Server
}

func (c *connector) Connect(context.Context) (driver.Conn, error) {
	return &conn{s: c.s}, nil
}

func (c *connector) Driver() driver.Driver { return drv{} }

type drv struct{}

func (drv) Open(string) (driver.Conn, error) {
	return nil, errors.New("testdb: use Server.Open")
}

type conn struct {
	s       *Server
	pending []func()
	inTx    bool
}

func (c *conn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("testdb: prepared statements are not supported")
}

func (c *conn) Close() error { return nil }

func (c *conn) Begin() (driver.Tx, error) {
	c.inTx = true
	c.pending = nil
	return c, nil
}

func (c *conn) Commit() error {
	c.s.mu.Lock()
	for _, op := range c.pending {
		op()
	}
	c.s.mu.Unlock()
	c.pending, c.inTx = nil, false
	return nil
}

func (c *conn) Rollback() error {
	c.pending, c.inTx = nil, false
	return nil
}

func (c *conn) apply(op func()) {
	if c.inTx {
		c.pending = append(c.pending, op)
		return
	}
	c.s.mu.Lock()
	op()
	c.s.mu.Unlock()
}

func (c *conn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.s.mu.Lock()
	c.s.Statements = append(c.s.Statements, query)
	failInsert := c.s.FailInsert
	c.s.mu.Unlock()

	upper := strings.ToUpper(strings.TrimSpace(query))
	switch {
	case strings.HasPrefix(upper, "CREATE TABLE"):
		name, err := firstIdent(query)
		if err != nil {
			return nil, err
		}
		c.apply(func() { c.s.createLocked(name) })

	case strings.HasPrefix(upper, "INSERT INTO"):
		name, err := firstIdent(query)
		if err != nil {
			return nil, err
		}
		if name == failInsert {
			return nil, fmt.Errorf("testdb: insert into %s refused", name)
		}
		if !c.exists(name) {
			return nil, fmt.Errorf("testdb: table %s does not exist", name)
		}
		row := make([]any, len(args))
		for i, a := range args {
			row[i] = a.Value
		}
		c.apply(func() { c.s.tables[name] = append(c.s.tables[name], row) })

	case strings.HasPrefix(upper, "TRUNCATE"), strings.HasPrefix(upper, "DELETE FROM"):
		name, err := firstIdent(query)
		if err != nil {
			return nil, err
		}
		if !c.exists(name) {
			return nil, fmt.Errorf("testdb: table %s does not exist", name)
		}
		c.apply(func() { c.s.tables[name] = nil })
	}
	return driver.RowsAffected(1), nil
}

func (c *conn) exists(name string) bool {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	_, ok := c.s.tables[name]
	return ok
}

func (c *conn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	upper := strings.ToUpper(query)
	switch {
	case strings.Contains(upper, "SELECT COUNT(*)"):
		name, err := firstIdent(query)
		if err != nil {
			return nil, err
		}
		c.s.mu.Lock()
		rows, ok := c.s.tables[name]
		c.s.mu.Unlock()
		if !ok {
			return nil, fmt.Errorf("testdb: table %s does not exist", name)
		}
		return &rowSet{cols: []string{"count"}, values: [][]driver.Value{{int64(len(rows))}}}, nil

	case strings.Contains(upper, "TABLE_NAME"):
		rs := &rowSet{cols: []string{"table_name"}}
		for _, t := range c.s.Tables() {
			rs.values = append(rs.values, []driver.Value{t})
		}
		return rs, nil
	}
	return nil, fmt.Errorf("testdb: unsupported query %q", query)
}

var (
	_ driver.ExecerContext  = (*conn)(nil)
	_ driver.QueryerContext = (*conn)(nil)
)

type rowSet struct {
	cols   []string
	values [][]driver.Value
	pos    int
}

func (r *rowSet) Columns() []string { return r.cols }

func (r *rowSet) Close() error { return nil }

func (r *rowSet) Next(dest []driver.Value) error {
	if r.pos >= len(r.values) {
		return io.EOF
	}
	copy(dest, r.values[r.pos])
	r.pos++
	return nil
}
