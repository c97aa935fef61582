package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"lattice/kv"
	"lattice/schema"
	"lattice/store"
)

// Global flag values.
var (
	flagConfig  string
	flagSchema  string
	flagDriver  string
	flagAddr    string
	flagVerbose bool
)

// Initialized by PersistentPreRunE for all subcommands.
var (
	engine *store.Store
	client kv.Client
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lattice",
	Short: "Lattice persists typed records into a key-value store",
	Long: `Lattice persists typed records into a key-value store and keeps the
derived structures (lists, indexes, unique keys, sortable and searchable
projections) that make them queryable. Entity types are declared in a YAML
schema file.`,
	SilenceUsage:      true,
	PersistentPreRunE: initEngine,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if client != nil {
			return client.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ./lattice.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagSchema, "schema", "", "schema file (default from config: schema)")
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "", "kv driver: redis or memory (default from config: kv.driver)")
	rootCmd.PersistentFlags().StringVar(&flagAddr, "addr", "", "redis address (default from config: kv.addr)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(searchCmd)
}

// initEngine loads configuration, the schema registry and the store client.
// Precedence: flags > config file > environment (LATTICE_*).
func initEngine(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	v := viper.New()
	v.SetDefault("kv.driver", kv.DriverRedis)
	v.SetDefault("kv.addr", "localhost:6379")
	v.SetDefault("kv.db", 0)
	v.SetDefault("schema", "schema.yaml")
	v.SetEnvPrefix("LATTICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flagConfig != "" {
		v.SetConfigFile(flagConfig)
	} else {
		v.SetConfigName("lattice")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if flagConfig != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if flagDriver != "" {
		v.Set("kv.driver", flagDriver)
	}
	if flagAddr != "" {
		v.Set("kv.addr", flagAddr)
	}
	if flagSchema != "" {
		v.Set("schema", flagSchema)
	}

	schemaPath := v.GetString("schema")
	registry, err := schema.Load(schemaPath)
	if err != nil {
		return err
	}
	logger.Debug("schema loaded", "path", schemaPath, "entities", len(registry.Names()))

	cfg := kv.Config{
		Driver:   v.GetString("kv.driver"),
		Addr:     v.GetString("kv.addr"),
		Password: v.GetString("kv.password"),
		DB:       v.GetInt("kv.db"),
	}
	client, err = kv.NewClient(cfg)
	if err != nil {
		return err
	}
	logger.Debug("store client ready", "driver", cfg.Driver, "addr", cfg.Addr)

	engine = store.New(client, registry)
	return nil
}
