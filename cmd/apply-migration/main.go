package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"deskhive/internal/config"
	"deskhive/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("Usage: %s <migration_file.sql>", os.Args[0])
	}

	sqlContent, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to read migration file: %v", err)
	}

	cfg := config.Load()
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}
	defer db.Close()

	fmt.Printf("Connected to database: %s\n\n", cfg.Database.Database)

	statements := sqlStatements(string(sqlContent))
	for i, stmt := range statements {
		fmt.Printf("Executing statement %d/%d...\n", i+1, len(statements))
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("Failed to execute statement %d: %v\nStatement: %s", i+1, err, stmt[:min(100, len(stmt))])
		}
	}

	fmt.Println("Migration completed successfully")
}

// sqlStatements splits a migration file on ';' and drops empty chunks.
// Leading comment lines are stripped per chunk, so a commented header does
// not hide the statement below it.
func sqlStatements(content string) []string {
	var out []string
	for _, stmt := range strings.Split(content, ";") {
		stmt = strings.TrimSpace(stmt)
		for strings.HasPrefix(stmt, "--") {
			nl := strings.IndexByte(stmt, '\n')
			if nl < 0 {
				stmt = ""
				break
			}
			stmt = strings.TrimSpace(stmt[nl+1:])
		}
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
