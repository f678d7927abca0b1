// Command migrate manages the database schema for the coffee payment backend.
//
// Usage:
//
//	migrate up                  apply all pending migrations
//	migrate down                roll back all migrations
//	migrate step -n <n>         apply n migrations (negative rolls back)
//	migrate version             print the current schema version
//	migrate force -v <version>  repair a dirty schema state
//	migrate create -name <name> create a new migration file pair
//	migrate list                list available migrations
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/kahawa/backend/internal/infrastructure/config"
	"github.com/kahawa/backend/internal/infrastructure/logger"
	"github.com/kahawa/backend/internal/infrastructure/migration"
)

const defaultMigrationsPath = "migrations"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}
	command := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(command, os.Args[2:], cfg, log); err != nil {
		log.Error("Command failed", zap.String("command", command), zap.Error(err))
		os.Exit(1)
	}
}

func run(command string, args []string, cfg *config.Config, log *zap.Logger) error {
	switch command {
	case "up":
		m, err := openMigrator(cfg, migrationsPath(args), log)
		if err != nil {
			return err
		}
		defer func() { _ = m.Close() }()
		return m.Up()

	case "down":
		m, err := openMigrator(cfg, migrationsPath(args), log)
		if err != nil {
			return err
		}
		defer func() { _ = m.Close() }()
		return m.Down()

	case "step":
		fs := flag.NewFlagSet("step", flag.ExitOnError)
		n := fs.Int("n", 1, "number of migrations to apply (negative rolls back)")
		path := fs.String("path", defaultMigrationsPath, "migrations directory")
		_ = fs.Parse(args)

		m, err := openMigrator(cfg, *path, log)
		if err != nil {
			return err
		}
		defer func() { _ = m.Close() }()
		return m.Steps(*n)

	case "version":
		m, err := openMigrator(cfg, migrationsPath(args), log)
		if err != nil {
			return err
		}
		defer func() { _ = m.Close() }()

		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			fmt.Println("no migrations applied")
			return nil
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)
		return nil

	case "force":
		fs := flag.NewFlagSet("force", flag.ExitOnError)
		v := fs.Int("v", -1, "version to force")
		path := fs.String("path", defaultMigrationsPath, "migrations directory")
		_ = fs.Parse(args)
		if *v < 0 {
			return fmt.Errorf("force requires -v <version>")
		}

		m, err := openMigrator(cfg, *path, log)
		if err != nil {
			return err
		}
		defer func() { _ = m.Close() }()
		return m.Force(*v)

	case "create":
		fs := flag.NewFlagSet("create", flag.ExitOnError)
		name := fs.String("name", "", "migration name, e.g. 'add supplier advances'")
		path := fs.String("path", defaultMigrationsPath, "migrations directory")
		_ = fs.Parse(args)
		if *name == "" {
			return fmt.Errorf("create requires -name <name>")
		}

		mf, err := migration.CreateMigration(*path, *name)
		if err != nil {
			return err
		}
		fmt.Printf("created %s\n", mf.UpPath)
		fmt.Printf("created %s\n", mf.DownPath)
		return nil

	case "list":
		migrations, err := migration.ListMigrations(migrationsPath(args))
		if err != nil {
			return err
		}
		if len(migrations) == 0 {
			fmt.Println("no migrations found")
			return nil
		}
		for _, name := range migrations {
			fmt.Println(name)
		}
		return nil

	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func migrationsPath(args []string) string {
	fs := flag.NewFlagSet("path", flag.ExitOnError)
	path := fs.String("path", defaultMigrationsPath, "migrations directory")
	_ = fs.Parse(args)
	return *path
}

func openMigrator(cfg *config.Config, path string, log *zap.Logger) (*migration.Migrator, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return migration.New(db, path, log)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate <command> [flags]

Commands:
  up                  apply all pending migrations
  down                roll back all migrations
  step -n <n>         apply n migrations (negative rolls back)
  version             print the current schema version
  force -v <version>  repair a dirty schema state
  create -name <name> create a new migration file pair
  list                list available migrations

Flags:
  -path <dir>         migrations directory (default "migrations")`)
}
