// Package cli implements the doctree command line.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-doctree"
	"github.com/goliatone/go-doctree/internal/di"
	"github.com/goliatone/go-doctree/internal/runtimeconfig"
)

var (
	configPath  string
	envFile     string
	dsnFlag     string
	driverFlag  string
	logLevel    string
	autoMigrate bool
)

// moduleBuilder is swapped in tests.
var moduleBuilder = doctree.New

var rootCmd = &cobra.Command{
	Use:   "doctree",
	Short: "Parse markdown notes into stored document trees",
	Long: `doctree parses markdown notes into document trees, persists them
in sqlite or postgres and indexes the #hashtags they contain per project.`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before DOCTREE_* overrides")
	flags.StringVar(&dsnFlag, "dsn", "", "database connection string")
	flags.StringVar(&driverFlag, "driver", "", "storage driver (sqlite or postgres)")
	flags.StringVar(&logLevel, "log-level", "", "log level")
	flags.BoolVar(&autoMigrate, "migrate", false, "apply pending migrations before running")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves defaults, the config file, the dotenv file, DOCTREE_*
// variables and finally flags, in that order.
func loadConfig(cmd *cobra.Command) (runtimeconfig.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			explicit := cmd.Flags().Changed("env-file")
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return runtimeconfig.Config{}, fmt.Errorf("load %s: %w", envFile, err)
			}
		}
	}

	cfg := runtimeconfig.DefaultConfig()
	if configPath != "" {
		loaded, err := runtimeconfig.LoadFile(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if err := runtimeconfig.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}

	if dsnFlag != "" {
		cfg.Storage.DSN = dsnFlag
	}
	if driverFlag != "" {
		cfg.Storage.Driver = driverFlag
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, cfg.Validate()
}

// openModule builds a module whose console logs go to the command's stderr.
func openModule(cmd *cobra.Command, opts ...di.Option) (*doctree.Module, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	opts = append([]di.Option{di.WithLogWriter(cmd.ErrOrStderr())}, opts...)
	module, err := moduleBuilder(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if autoMigrate {
		if err := module.Migrate(cmd.Context()); err != nil {
			_ = module.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return module, nil
}
