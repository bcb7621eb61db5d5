package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"dbloada/internal/csvparse"
	"dbloada/internal/dialect"
	"dbloada/internal/fsys"
	"dbloada/internal/loader"
	"dbloada/internal/project"
	"dbloada/internal/reader"
)

type DBConfig struct {
	Name   string `mapstructure:"name"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Schema string `mapstructure:"schema"`
	Active bool   `mapstructure:"active"`
}

// GetActiveDBConfig returns the currently active database configuration.
func GetActiveDBConfig() (*DBConfig, error) {
	var configs []DBConfig

	if err := viper.UnmarshalKey("databases", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse databases config: %w", err)
	}

	var activeConfig *DBConfig
	count := 0

	for i := range configs {
		if configs[i].Active {
			activeConfig = &configs[i]
			count++
		}
	}

	if count == 0 {
		return nil, fmt.Errorf("no active database found in config (set active: true)")
	}
	if count > 1 {
		return nil, fmt.Errorf("multiple active databases found (only one can be active)")
	}

	return activeConfig, nil
}

// resolveDBConfig prefers the active entry of databases and falls back to
// database.dsn and database.driver.
func resolveDBConfig() (*DBConfig, error) {
	config, err := GetActiveDBConfig()
	if err == nil {
		return config, nil
	}

	dsn := viper.GetString("database.dsn")
	if dsn == "" {
		return nil, fmt.Errorf("%w, and database.dsn is not set", err)
	}
	driver := viper.GetString("database.driver")
	if driver == "" {
		if strings.Contains(dsn, "postgres") || strings.Contains(dsn, "sslmode") {
			driver = "postgres"
		} else {
			driver = "mysql"
		}
	}
	return &DBConfig{
		Name:   "cli",
		Driver: driver,
		DSN:    dsn,
		Schema: viper.GetString("database.schema"),
		Active: true,
	}, nil
}

// target is an open database plus what is needed to write SQL for it.
type target struct {
	config  *DBConfig
	db      *sql.DB
	dialect dialect.Dialect
	schema  string
}

func openTarget(ctx context.Context) (*target, error) {
	config, err := resolveDBConfig()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(config.Driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	d := dialect.GetDialect(config.Driver)
	schemaName := config.Schema
	if schemaName == "" && d.Name() == "mysql" {
		if err := db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&schemaName); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to get database name: %w", err)
		}
		if schemaName == "" {
			db.Close()
			return nil, fmt.Errorf("no database selected in DSN")
		}
	}

	logger.Info("connected to database", "name", config.Name, "driver", config.Driver, "dialect", d.Name())
	return &target{config: config, db: db, dialect: d, schema: schemaName}, nil
}

func newLoader() *loader.Loader {
	fs := fsys.NewOS(logger)
	parser := csvparse.NewParser(logger)
	dispatch := reader.NewDispatch(logger,
		reader.NewFileReader(fs, parser, logger),
		reader.NewCmdReader(parser, logger),
	)
	return loader.New(fs, project.NewYAMLStore(fs, logger), dispatch, logger)
}
