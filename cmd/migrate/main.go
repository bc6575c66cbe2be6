// Command migrate manages the water tracker's SQLite schema by hand, using
// the same embedded migrations the server applies at startup.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/sakif/water-tracker/internal/config"
	sqliteRepo "github.com/sakif/water-tracker/internal/repository/sqlite"
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		fatalf("loading configuration: %v", err)
	}

	db, err := sqliteRepo.Open(cfg.DBPath)
	if err != nil {
		fatalf("opening %s: %v", cfg.DBPath, err)
	}
	defer db.Close()

	switch args[0] {
	case "up":
		if err := db.MigrateUp(); err != nil {
			fatalf("up failed: %v", err)
		}
		slog.Info("migrations: up completed", "database", cfg.DBPath)

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				fatalf("down: invalid steps argument %q", args[1])
			}
			steps = n
		}
		if err := db.MigrateDown(steps); err != nil {
			fatalf("down failed: %v", err)
		}
		slog.Info("migrations: down completed", "steps", steps)

	case "version":
		v, dirty, err := db.MigrationVersion()
		if err != nil {
			fatalf("version failed: %v", err)
		}
		fmt.Printf("version: %d  dirty: %v\n", v, dirty)

	case "force":
		if len(args) < 2 {
			fatalf("force: version argument required")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			fatalf("force: invalid version %q", args[1])
		}
		if err := db.ForceVersion(v); err != nil {
			fatalf("force failed: %v", err)
		}
		slog.Info("migrations: forced", "version", v)

	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate <command> [args]

Commands:
  up           Apply all pending migrations
  down [N]     Roll back N migrations (default: 1)
  version      Print the current schema version
  force <V>    Record version V as applied and clear the dirty flag

Environment:
  DB_PATH      SQLite file (default: data/water_tracker.db)`)
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
