package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/user-management-api/config"
	"github.com/oksasatya/user-management-api/internal/application"
	"github.com/oksasatya/user-management-api/internal/bootstrap"
	"github.com/oksasatya/user-management-api/pkg/helpers"
)

// seed creates the admin account from ADMIN_* (or flags) in the configured store.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	name := flag.String("name", cfg.AdminName, "admin display name")
	email := flag.String("email", cfg.AdminEmail, "admin email")
	password := flag.String("password", cfg.AdminPassword, "admin password")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("admin email and password are required (ADMIN_EMAIL/ADMIN_PASSWORD or -email/-password)")
	}

	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	users, closeUsers, err := bootstrap.OpenUsers(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeUsers()

	svc := application.NewService(users, helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiresIn), logger)
	created, err := svc.EnsureAdmin(ctx, *name, *email, *password)
	if err != nil {
		closeUsers()
		log.Fatalf("seed admin: %v", err)
	}
	if created {
		fmt.Printf("seeded admin: email=%s name=%s\n", *email, *name)
		return
	}
	fmt.Printf("admin %s already exists, nothing to do\n", *email)
}
