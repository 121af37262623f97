package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"marketchat/config"
	"marketchat/internal/domain/chat"
	"marketchat/pkg/database"
)

const usage = `
Marketchat - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Run all migrations (GORM + SQL)
  status      Show database connection status

Flags:
  -migrations string   Path to migrations directory (default "migrations")

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go status
`

func main() {
	migrationsDir := flag.String("migrations", "migrations", "Path to migrations directory")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg := config.LoadConfig()
	database.Connect(cfg)
	defer database.Close()

	switch command {
	case "up":
		runMigrationsUp(*migrationsDir)
	case "status":
		showStatus()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp(migrationsDir string) {
	log.Println("Running migrations...")

	if err := database.DB.AutoMigrate(
		&chat.ChatRoom{},
		&chat.Message{},
	); err != nil {
		log.Fatalf("GORM migration failed: %v", err)
	}

	if err := database.ApplyRawMigrations(migrationsDir); err != nil {
		log.Fatalf("Raw migration failed: %v", err)
	}

	log.Println("Migrations completed successfully")
}

func showStatus() {
	log.Println("Checking database status...")

	if err := database.Ping(); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	for _, table := range []string{"chat_rooms", "messages"} {
		exists, err := database.TableExists(table)
		if err != nil {
			log.Printf("Error checking table %s: %v", table, err)
			continue
		}
		if exists {
			log.Printf("Table %-12s exists", table)
		} else {
			log.Printf("Table %-12s does not exist", table)
		}
	}
}
