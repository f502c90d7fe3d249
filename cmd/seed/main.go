package main

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/gridmarket/gridmarket-api/config"
	"github.com/gridmarket/gridmarket-api/internal/domain/entity"
	"github.com/gridmarket/gridmarket-api/pkg/helpers"
)

// Seeds a Postgres database with the platform root account, one demo
// renter, one demo provider and a couple of GPU listings. Safe to run
// repeatedly.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	hasher := helpers.NewBcryptHasher()

	rootHash, err := hasher.Hash("rootpassword")
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	if _, err := db.Exec(`
		INSERT INTO users (id, username, email, password_hash, role, invite_code, invite_tree)
		VALUES ($1, 'root', 'root@gridmarket.local', $2, 'admin', $3, $4)
		ON CONFLICT (id) DO UPDATE SET invite_code = EXCLUDED.invite_code
	`, entity.RootUserID, rootHash, cfg.RootInviteCode, []string{entity.RootUserID}); err != nil {
		log.Fatalf("failed to seed root user: %v", err)
	}
	fmt.Printf("root account ensured: id=%s invite_code=%s\n", entity.RootUserID, cfg.RootInviteCode)

	renterID := seedUser(db, cfg, hasher, "demo_renter", "renter@gridmarket.local", entity.RoleRenter)
	providerID := seedUser(db, cfg, hasher, "demo_provider", "provider@gridmarket.local", entity.RoleProvider)
	fmt.Printf("demo accounts ensured: renter=%s provider=%s (password: password123)\n", renterID, providerID)

	seedInstance(db, providerID, "a100-west-1", "NVIDIA A100", 80, "us-west", 2.50)
	seedInstance(db, providerID, "rtx4090-eu-1", "NVIDIA RTX 4090", 24, "eu-central", 0.65)
	fmt.Println("demo listings ensured")
}

func seedUser(db *sql.DB, cfg *config.Config, hasher helpers.PasswordHasher, username, email string, role entity.Role) string {
	hash, err := hasher.Hash("password123")
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	code, err := helpers.GenInviteCode(cfg.InviteCodePrefix, helpers.InviteCodeRandLen)
	if err != nil {
		log.Fatalf("failed to generate invite code: %v", err)
	}
	id := uuid.NewString()
	tree := []string{entity.RootUserID, id}

	var got string
	err = db.QueryRow(`
		INSERT INTO users (id, username, email, password_hash, role, credits, invite_code, invited_by, invite_tree)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (username) DO UPDATE SET updated_at = now()
		RETURNING id
	`, id, username, email, hash, string(role), cfg.SignupCredits, code, entity.RootUserID, tree).Scan(&got)
	if err != nil {
		log.Fatalf("failed to seed user %s: %v", username, err)
	}
	return got
}

func seedInstance(db *sql.DB, providerID, name, gpuModel string, vramGB int, region string, pricePerHour float64) {
	_, err := db.Exec(`
		INSERT INTO instances (id, provider_id, name, gpu_model, vram_gb, region, price_per_hour, status)
		SELECT $1, $2, $3, $4, $5, $6, $7, 'available'
		WHERE NOT EXISTS (SELECT 1 FROM instances WHERE provider_id = $2 AND name = $3)
	`, uuid.NewString(), providerID, name, gpuModel, vramGB, region, pricePerHour)
	if err != nil {
		log.Fatalf("failed to seed instance %s: %v", name, err)
	}
}
