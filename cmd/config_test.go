package cmd

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestGetActiveDBConfig(t *testing.T) {
	defer viper.Reset()

	viper.Set("databases", []map[string]any{
		{"name": "local", "driver": "mysql", "dsn": "root@/a", "active": false},
		{"name": "staging", "driver": "postgres", "dsn": "postgres://s", "schema": "loads", "active": true},
	})
	config, err := GetActiveDBConfig()
	if err != nil {
		t.Fatal(err)
	}
	if config.Name != "staging" || config.Driver != "postgres" || config.Schema != "loads" {
		t.Errorf("unexpected config %+v", config)
	}

	viper.Set("databases", []map[string]any{
		{"name": "a", "driver": "mysql", "dsn": "x", "active": true},
		{"name": "b", "driver": "mysql", "dsn": "y", "active": true},
	})
	if _, err := GetActiveDBConfig(); err == nil || !strings.Contains(err.Error(), "multiple") {
		t.Errorf("expected multiple-active error, got %v", err)
	}
}

func TestResolveDBConfigFallback(t *testing.T) {
	tests := []struct {
		dsn, driver string
		want        string
	}{
		{"postgres://u@h/db?sslmode=disable", "", "postgres"},
		{"root:root@tcp(127.0.0.1:3306)/shop", "", "mysql"},
		{"sqlserver://sa@h?database=shop", "sqlserver", "sqlserver"},
	}
	for _, tt := range tests {
		viper.Reset()
		viper.Set("database.dsn", tt.dsn)
		viper.Set("database.driver", tt.driver)

		config, err := resolveDBConfig()
		if err != nil {
			t.Fatalf("%s: %v", tt.dsn, err)
		}
		if config.Driver != tt.want || config.DSN != tt.dsn {
			t.Errorf("%s: got %+v", tt.dsn, config)
		}
	}
	viper.Reset()

	if _, err := resolveDBConfig(); err == nil || !strings.Contains(err.Error(), "database.dsn") {
		t.Errorf("expected missing dsn error, got %v", err)
	}
}

func TestProjectDir(t *testing.T) {
	defer viper.Reset()
	viper.Set("project.dir", "/srv/project")

	if got := projectDir(nil); got != "/srv/project" {
		t.Errorf("projectDir() = %q", got)
	}
	if got := projectDir([]string{"here"}); got != "here" {
		t.Errorf("projectDir(here) = %q", got)
	}
}
