package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/docvault/docvault-backend/internal/db"
	"github.com/docvault/docvault-backend/internal/logger"
	"github.com/docvault/docvault-backend/internal/repos"
	"github.com/docvault/docvault-backend/internal/types"
	"github.com/docvault/docvault-backend/internal/utils"
)

// Seeds one user per role plus a second plain user, all with the same
// password and the default starting balance. Existing emails are skipped so
// the command is safe to re-run.
func main() {
	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}

	userRepo := repos.NewUserRepo(postgresService.DB(), log)

	password := utils.GetEnv("SEED_PASSWORD", "password123", log)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash seed password", "error", err)
		os.Exit(1)
	}

	seeds := []struct {
		email string
		role  string
	}{
		{"admin@example.com", types.RoleAdmin},
		{"support@example.com", types.RoleSupport},
		{"moderator@example.com", types.RoleModerator},
		{"user1@example.com", types.RoleUser},
		{"user2@example.com", types.RoleUser},
	}

	ctx := context.Background()
	for _, seed := range seeds {
		existing, err := userRepo.GetByEmails(ctx, nil, []string{seed.email})
		if err != nil {
			log.Error("Seed lookup failed", "email", seed.email, "error", err)
			os.Exit(1)
		}
		if len(existing) > 0 {
			log.Info("User already exists, skipping", "email", seed.email)
			continue
		}

		_, err = userRepo.Create(ctx, nil, []*types.User{{
			ID:       uuid.New(),
			Email:    seed.email,
			Password: string(hash),
			Role:     seed.role,
			Credits:  types.DefaultUserCredits,
		}})
		if err != nil {
			log.Error("Seed create failed", "email", seed.email, "error", err)
			os.Exit(1)
		}
		log.Info("Seeded user", "email", seed.email, "role", seed.role)
	}
}
