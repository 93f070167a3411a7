package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/doorsets/backend/internal/infrastructure/config"
	"github.com/doorsets/backend/internal/infrastructure/logger"
	"github.com/doorsets/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Migrations directory for create and list (default: database.migrationsPath or ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if migrationsPath == "" {
		migrationsPath = cfg.Database.MigrationsPath
	}
	if migrationsPath == "" {
		migrationsPath = defaultMigrationsPath
	}

	// create and list work on the source tree and need no database
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		f, err := migration.Create(migrationsPath, args[1], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.Uint("version", f.Version),
			zap.String("up_file", f.UpPath),
			zap.String("down_file", f.DownPath),
		)
		return
	case "list":
		entries, err := migration.List(migrationsPath)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		if len(entries) == 0 {
			entries, err = migration.EmbeddedVersions()
			if err != nil {
				log.Fatal("Failed to list embedded migrations", zap.Error(err))
			}
		}
		for _, e := range entries {
			fmt.Printf("  %06d  %s\n", e.Version, e.Name)
		}
		return
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	m, err := migration.New(db, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	if err := execute(m, command, args[1:]); err != nil {
		log.Fatal("Migration failed", zap.String("command", command), zap.Error(err))
	}
}

func execute(m *migration.Migrator, command string, args []string) error {
	switch command {
	case "up":
		return m.Up()
	case "down":
		if len(args) == 0 {
			return m.Down()
		}
		n, err := positive(args[0])
		if err != nil {
			return err
		}
		return m.Steps(-n)
	case "steps":
		if len(args) == 0 {
			return fmt.Errorf("usage: migrate steps <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n == 0 {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return m.Steps(n)
	case "goto":
		if len(args) == 0 {
			return fmt.Errorf("usage: migrate goto <version>")
		}
		v, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.GoTo(uint(v))
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version: %d\ndirty:   %t\n", version, dirty)
		return nil
	case "force":
		if len(args) == 0 {
			return fmt.Errorf("usage: migrate force <version>")
		}
		v, err := strconv.Atoi(args[0])
		if err != nil || v < -1 {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.Force(v)
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func positive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid step count %q", s)
	}
	return n, nil
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: migrate [flags] <command> [args]

Commands:
  up                 Apply all pending migrations
  down [n]           Roll back n migrations, or all of them
  steps <n>          Apply n migrations; negative n rolls back
  goto <version>     Migrate up or down to version
  version            Print the applied version and dirty flag
  force <version>    Set the version without running migrations (-1 clears it)
  create <name> [d]  Write a new up/down pair into the migrations directory
  list               List migrations

Flags:
`)
	flag.PrintDefaults()
}
