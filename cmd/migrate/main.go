package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/catalogsync/backend/internal/infrastructure/config"
	"github.com/catalogsync/backend/internal/infrastructure/logger"
	"github.com/catalogsync/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	var (
		migrationsPath string
		databaseURL    string
		logLevel       string
	)

	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: nearest ./migrations)")
	flag.StringVar(&databaseURL, "database-url", "", "Postgres URL to migrate (default: database settings from config)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if migrationsPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			log.Fatal("Failed to read working directory", zap.Error(err))
		}
		migrationsPath = migration.FindMigrationsPath(wd)
		if migrationsPath == "" {
			migrationsPath = "migrations"
		}
	}
	migrationsPath, err = filepath.Abs(migrationsPath)
	if err != nil {
		log.Fatal("Failed to get absolute path", zap.Error(err))
	}

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("migrations_path", migrationsPath),
	)

	// create and list work on files only
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name>")
		}
		mf, err := migration.CreateMigration(migrationsPath, args[1])
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return
	case "list":
		files, err := migration.ListMigrations(migrationsPath)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		if len(files) == 0 {
			log.Info("No migrations found")
			return
		}
		for _, f := range files {
			fmt.Println("  -", f)
		}
		return
	}

	m, err := openMigrator(databaseURL, migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	arg := ""
	if len(args) > 1 {
		arg = args[1]
	}

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}

	case "down":
		n, err := migration.ParseCount(arg)
		if err != nil {
			log.Fatal("Invalid step count", zap.Error(err))
		}
		if err := m.Down(n); err != nil {
			log.Fatal("Migration down failed", zap.Error(err))
		}

	case "goto":
		version, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			log.Fatal("Version required. Usage: migrate goto <version>", zap.String("value", arg))
		}
		if err := m.GoTo(uint(version)); err != nil {
			log.Fatal("Migration goto failed", zap.Error(err))
		}

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("Failed to get version", zap.Error(err))
		}
		if version == 0 {
			log.Info("No migrations applied")
			return
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))

	case "force":
		version, err := strconv.Atoi(arg)
		if err != nil {
			log.Fatal("Version required. Usage: migrate force <version>", zap.String("value", arg))
		}
		if err := m.Force(version); err != nil {
			log.Fatal("Force version failed", zap.Error(err))
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

// openMigrator migrates databaseURL when given, otherwise the configured
// database through a pinged connection.
func openMigrator(databaseURL, migrationsPath string, log *zap.Logger) (*migration.Migrator, error) {
	if databaseURL != "" {
		return migration.NewFromURL(databaseURL, migrationsPath, log)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	m, err := migration.New(db, migrationsPath, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}

func printUsage() {
	fmt.Println(`Catalog database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                Apply all pending migrations
  down [n]          Roll back n migrations (all when omitted)
  goto <version>    Migrate to a specific version
  version           Show current migration version
  force <version>   Force set migration version to clear a dirty state
  create <name>     Create a new migration file pair
  list              List available migrations

Flags:
  -path string          Path to migrations directory
  -database-url string  Postgres URL; overrides the configured database
  -log-level string     Log level: debug, info, warn, error (default: info)

Without -database-url, database settings come from config.toml, .env or
CATALOG_DATABASE_* variables.`)
}
