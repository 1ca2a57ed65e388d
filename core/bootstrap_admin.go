package core

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
)

const bootstrapPasswordLength = 32

// BootstrapAdmin creates an initial admin user when none exists.
// It is idempotent: if an admin already exists, it does nothing.
func BootstrapAdmin(ctx context.Context, repo UserRepository, cfg Config) error {
	if !cfg.BootstrapAdminEnabled {
		return nil
	}

	has, err := repo.HasAdmin(ctx)
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	email := normalizeEmail(cfg.BootstrapAdminEmail)
	if email == "" {
		return errors.New("BOOTSTRAP_ADMIN_EMAIL is empty")
	}
	password, err := generatePassword(bootstrapPasswordLength)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = repo.Create(ctx, UserRecord{
		NamaDepan:    "Admin",
		NamaBelakang: "Desa",
		NomorHp:      "0000000000",
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleAdmin,
	})
	if err != nil {
		return err
	}

	if cfg.InitialAdminPasswordPath != "" {
		if err := os.WriteFile(cfg.InitialAdminPasswordPath, []byte(password+"\n"), 0o600); err != nil {
			return err
		}
		log.Printf("initial admin %s created; password written to %s", email, cfg.InitialAdminPasswordPath)
	} else {
		log.Printf("initial admin created email=%s password=%s", email, password)
	}
	return nil
}

func generatePassword(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("password length must be positive")
	}
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw)[:length], nil
}
