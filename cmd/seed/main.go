// Command seed bulk-loads user records into the record store. It is the
// trusted internal caller of the storage schema: records arrive with
// their password hashes already computed.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/jenca-cloud/users/internal/config"
	"github.com/jenca-cloud/users/internal/db"
	apperrors "github.com/jenca-cloud/users/internal/errors"
	"github.com/jenca-cloud/users/internal/model"
	"github.com/jenca-cloud/users/internal/repository"
)

// SeedUserData is one entry of the fixture document.
type SeedUserData struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

func main() {
	source := flag.String("source", "users.json", "fixture file path or http(s) URL")
	flag.Parse()

	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Connected to database")

	users, err := loadUsers(*source)
	if err != nil {
		log.Fatalf("Failed to load users: %v", err)
	}
	log.Printf("Loaded %d users from %s", len(users), *source)

	repo := repository.NewUserRepository(gormDB)
	created, skipped, err := seedUsers(context.Background(), repo, users)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", created)
	log.Printf("  - Existing users skipped: %d", skipped)
}

// loadUsers reads the fixture from a local file or an HTTP URL.
func loadUsers(source string) ([]SeedUserData, error) {
	var (
		body []byte
		err  error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		body, err = fetch(source)
	} else {
		body, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}

	var users []SeedUserData
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return users, nil
}

func fetch(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch fixture: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fixture URL returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// seedUsers creates each record, skipping emails that already exist.
// Records are immutable, so there is no update path: a conflicting
// fixture entry is reported and left alone.
func seedUsers(ctx context.Context, repo repository.UserRepository, users []SeedUserData) (created, skipped int, err error) {
	for _, item := range users {
		if item.Email == "" || item.PasswordHash == "" {
			log.Printf("Skipping entry with missing email or password_hash")
			skipped++
			continue
		}

		user := model.User{Email: item.Email, PasswordHash: item.PasswordHash}
		if err := repo.Create(ctx, &user); err != nil {
			if errors.Is(err, apperrors.ErrUserExists) {
				log.Printf("User %s already exists, skipping", item.Email)
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("error creating user %s: %w", item.Email, err)
		}
		created++
	}
	return created, skipped, nil
}
