package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"tasksphere/internal/config"
	"tasksphere/pkg/database"
)

const usage = `
TaskSphere - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Run all pending migrations
  down        Roll back all applied migrations
  status      Show connection status and core tables
  seed        Create the admin user
  vacuum      Delete published outbox rows older than the retention window

Flags:
  -migrations string   Path to migrations directory (default "migrations")
  -admin-email string  Admin email for seeding (default ADMIN_EMAIL from the environment)
  -admin-pass string   Admin password for seeding (default "Admin@123!")
  -retention duration  Outbox retention for vacuum (default 168h)

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed
  go run cmd/migrate/main.go vacuum -retention 72h
`

func main() {
	migrationsDir := flag.String("migrations", "migrations", "Path to migrations directory")
	adminEmail := flag.String("admin-email", "", "Admin email for seeding (default ADMIN_EMAIL from the environment)")
	adminPass := flag.String("admin-pass", "Admin@123!", "Admin password for seeding")
	retention := flag.Duration("retention", 168*time.Hour, "Outbox retention for vacuum")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer pool.Close()

	switch command {
	case "up":
		runMigrationsUp(ctx, pool, *migrationsDir)
	case "down":
		runMigrationsDown(ctx, pool, *migrationsDir)
	case "status":
		showStatus(ctx, pool)
	case "seed":
		email := *adminEmail
		if email == "" {
			email = cfg.Auth.AdminEmail
		}
		runSeed(ctx, pool, email, *adminPass)
	case "vacuum":
		runVacuum(ctx, pool, *retention)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp(ctx context.Context, pool *pgxpool.Pool, dir string) {
	log.Println("🚀 Running migrations UP...")

	if err := database.ApplyMigrations(ctx, pool, dir); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	log.Println("✅ Migrations completed successfully!")
}

func runMigrationsDown(ctx context.Context, pool *pgxpool.Pool, dir string) {
	log.Println("⬇️  Rolling back migrations...")

	if err := database.RollbackMigrations(ctx, pool, dir); err != nil {
		log.Fatalf("❌ Rollback failed: %v", err)
	}

	log.Println("✅ Rollback completed successfully!")
}

func showStatus(ctx context.Context, pool *pgxpool.Pool) {
	log.Println("🔍 Checking database status...")

	if err := database.HealthCheck(ctx, pool); err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	log.Println("✅ Database connection: OK")

	tables := []string{"users", "projects", "issues", "sprints", "comments", "activity_logs", "attachments", "outbox_events"}
	for _, table := range tables {
		exists, err := database.TableExists(ctx, pool, table)
		if err != nil {
			log.Printf("⚠️  Error checking table %s: %v", table, err)
			continue
		}
		if exists {
			log.Printf("✅ Table %-15s exists", table)
		} else {
			log.Printf("❌ Table %-15s does not exist", table)
		}
	}
}

func runSeed(ctx context.Context, pool *pgxpool.Pool, email, password string) {
	log.Println("🌱 Seeding admin user...")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	var id int64
	err = pool.QueryRow(ctx, `
        INSERT INTO users (email, name, password_hash, role)
        VALUES ($1, 'Administrator', $2, 'ADMIN')
        ON CONFLICT (email) DO UPDATE SET role = 'ADMIN'
        RETURNING id`, email, string(hash)).Scan(&id)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✅ Admin user created/verified: %s (ID: %d)", email, id)
}

func runVacuum(ctx context.Context, pool *pgxpool.Pool, retention time.Duration) {
	cutoff := time.Now().Add(-retention)
	log.Printf("🧹 Deleting published outbox rows older than %s...", cutoff.Format(time.RFC3339))

	tag, err := pool.Exec(ctx, `
        DELETE FROM outbox_events
        WHERE published = true AND created_at < $1`, cutoff)
	if err != nil {
		log.Fatalf("❌ Vacuum failed: %v", err)
	}

	log.Printf("✅ Removed %d published rows", tag.RowsAffected())
}
