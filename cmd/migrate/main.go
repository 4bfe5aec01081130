// Command migrate applies or rolls back the article schema outside the server.
//
//	migrate up
//	migrate down
//	migrate goto 1
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/newsdesk-api/internal/config"
	"github.com/newsdesk-api/internal/database"
	"github.com/newsdesk-api/pkg/logger"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate [-path dir] up|down|goto <version>")
		flag.PrintDefaults()
	}
	path := flag.String("path", "", "migrations directory (defaults to MIGRATIONS_PATH)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load configuration:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	if *path == "" {
		*path = cfg.Server.MigrationsPath
	}

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	switch flag.Arg(0) {
	case "up":
		err = db.RunMigrations(*path)
	case "down":
		err = db.MigrateDown(*path)
	case "goto":
		var version uint64
		version, err = strconv.ParseUint(flag.Arg(1), 10, 32)
		if err != nil {
			flag.Usage()
			os.Exit(2)
		}
		err = db.MigrateToVersion(*path, uint(version))
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		log.Error().Err(err).Str("command", flag.Arg(0)).Msg("Migration failed")
		db.Close()
		os.Exit(1)
	}
}
