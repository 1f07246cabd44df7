package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/stayadmin/homestay-editor/internal/config"
	"github.com/stayadmin/homestay-editor/internal/database"
)

// Child tables first so the counts below read naturally
var homestayTables = []string{
	"homestay_availability",
	"homestay_rooms",
	"homestays",
}

func main() {
	var (
		dbURLFlag string
		yes       bool
	)
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.BoolVar(&yes, "yes", false, "skip the production safety check")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// optional; avoids passing secrets on the command line
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}
	if os.Getenv("ENVIRONMENT") == "production" && !yes {
		logger.Fatal("Refusing to clear a production database without -yes")
	}

	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     5,
		MaxIdleConnections: 2,
	})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	logger.Info("Connected to database. Truncating homestay tables...")

	if _, err := db.Exec(database.TruncateHomestaysSQL); err != nil {
		logger.Fatalf("Failed to truncate tables: %v", err)
	}

	logger.Info("Homestay data cleared")

	fmt.Println("Post-clear row counts:")
	for _, table := range homestayTables {
		var count int
		if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			fmt.Printf("  %s: error: %v\n", table, err)
			continue
		}
		fmt.Printf("  %s: %d\n", table, count)
	}
}
