package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dbloada/internal/logging"
)

var (
	cfgFile string
	logger  = slog.New(slog.NewTextHandler(os.Stderr, nil))
	// closeLog flushes the log handlers opened by PersistentPreRunE.
	closeLog = func() {}
)

var RootCmd = &cobra.Command{
	Use:   "dbloada",
	Short: "Materialize CSV-backed projects and load them into databases",
	Long: `
     _ _     _                 _
  __| | |__ | | ___   __ _  __| | __ _
 / _' | '_ \| |/ _ \ / _' |/ _' |/ _' |
| (_| | |_) | | (_) | (_| | (_| | (_| |
 \__,_|_.__/|_|\___/ \__,_|\__,_|\__,_|

dbloada reads a project directory (dbloada.yaml plus its sources), turns
every declared table into rows and columns, and can push them into a
database or serve them over HTTP.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, closer, err := logging.Setup(os.Stderr, viper.GetString("log.level"), viper.GetString("log.seq_url"))
		if err != nil {
			return err
		}
		logger, closeLog = l, closer
		slog.SetDefault(logger)
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", "path", used)
		}
		return nil
	},
}

func Execute() {
	err := RootCmd.Execute()
	closeLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := RootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./dbloada-cli.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("seq-url", "", "Seq server URL; logs go to the console only when empty")
	flags.String("dsn", "", "Database Source Name (DSN), used when no database is marked active")
	flags.String("driver", "", "database driver for --dsn (mysql, postgres, pgx, sqlserver, oracle)")

	viper.BindPFlag("log.level", flags.Lookup("log-level"))
	viper.BindPFlag("log.seq_url", flags.Lookup("seq-url"))
	viper.BindPFlag("database.dsn", flags.Lookup("dsn"))
	viper.BindPFlag("database.driver", flags.Lookup("driver"))

	viper.SetDefault("log.level", "info")
	viper.SetDefault("project.dir", ".")
	viper.SetDefault("serve.addr", ":8080")
}

// initConfig reads in config file, .env and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// 1. Executable Directory (Priority 1)
		ex, err := os.Executable()
		if err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}

		// 2. Current Directory (Priority 2)
		viper.AddConfigPath(".")

		viper.SetConfigName("dbloada-cli")
		viper.SetConfigType("yaml")
	}

	// A missing .env is not an error.
	_ = godotenv.Load()

	viper.SetEnvPrefix("DBLOADA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}
}

// projectDir is the directory argument, falling back to project.dir.
func projectDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return viper.GetString("project.dir")
}
