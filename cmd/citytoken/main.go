// Command citytoken mints a bearer token for POST /api/v1/snapshots.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/mna11/ReadMe3D/internal/config"
	"github.com/mna11/ReadMe3D/internal/core/services"
)

func main() {
	subject := flag.String("subject", "profile-ci", "client the token is issued to")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to TOKEN_DURATION)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("Critical: JWT_SECRET is required")
	}

	duration := cfg.TokenDuration
	if *ttl > 0 {
		duration = *ttl
	}

	token, err := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, duration).GenerateToken(*subject, services.ScopeIngest)
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}

	log.Printf("Token for %s expires %s", *subject, time.Now().Add(duration).Format(time.RFC3339))
	fmt.Println(token)
}
