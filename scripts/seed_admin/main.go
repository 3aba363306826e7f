// Command seed_admin provisions the first admin account so the back office
// is reachable on a fresh database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/harlowe-audio/studio-api/pkg/config"
	"github.com/harlowe-audio/studio-api/pkg/database"
)

func main() {
	var (
		email    string
		fullName string
		role     string
	)

	flag.StringVar(&email, "email", "", "admin email address")
	flag.StringVar(&fullName, "name", "Studio Admin", "display name")
	flag.StringVar(&role, "role", "ADMIN", "role (ADMIN or ASSISTANT)")
	flag.Parse()

	if email == "" {
		log.Fatal("usage: seed_admin -email admin@example.com [-name ...] [-role ...]")
	}
	if role != "ADMIN" && role != "ASSISTANT" {
		log.Fatalf("unknown role %q", role)
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("SEED_ADMIN_PASSWORD must be set")
	}
	if len(password) < 10 {
		log.Fatal("SEED_ADMIN_PASSWORD must be at least 10 characters")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close() //nolint:errcheck

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	_, err = db.Exec(`
		INSERT INTO users (id, email, password_hash, full_name, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
		ON CONFLICT (email) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    full_name = EXCLUDED.full_name,
		    role = EXCLUDED.role,
		    active = TRUE,
		    updated_at = EXCLUDED.updated_at`,
		id, email, string(hash), fullName, role, now)
	if err != nil {
		log.Fatalf("failed to upsert admin user: %v", err)
	}

	fmt.Printf("seeded %s (%s)\n", email, role)
}
