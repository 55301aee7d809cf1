package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	"github.com/Phambanam/tram-che-bien-sub000/pkg/config"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// Runs the SQL migrations under ./migrations: reference-table schema and
// catalog/unit seed data.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("goose: failed to load config: %v", err)
	}

	var migrationsDir string
	flag.StringVar(&migrationsDir, "dir", "./migrations", "directory with migration files")
	flag.Parse()

	db, err := sql.Open("postgres", cfg.DB.GetDSN())
	if err != nil {
		log.Fatalf("goose: failed to open DB: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Fatalf("goose: failed to close DB: %v", err)
		}
	}()

	if err := db.Ping(); err != nil {
		log.Fatalf("goose: failed to ping DB: %v", err)
	}

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}

	command := arguments[0]
	var args []string
	if len(arguments) > 1 {
		args = arguments[1:]
	}

	if err := goose.Run(command, db, migrationsDir, args...); err != nil {
		log.Fatalf("goose %v: %v", command, err)
	}

	fmt.Printf("goose %s success\n", command)
}
