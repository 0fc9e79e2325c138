package main

import (
	"flag"
	"fmt"
	"log"

	"postauto/pkg/config"
	"postauto/pkg/jwt"
)

// Mints an admin API token for the dashboard. The pipeline has no user
// accounts; access to the admin API is a bearer token signed with
// JWT_SECRET.
func main() {
	var (
		userID = flag.String("user", "admin", "user id to embed in the token")
		role   = flag.String("role", "admin", "role to embed in the token")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.JWTSecret == "your-secret-key-change-in-production" || cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	token, err := jwt.NewService(cfg.JWTSecret).GenerateToken(*userID, *role)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Println(token)
}
