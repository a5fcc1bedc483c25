// Command devtoken mints bearer tokens for local testing. Users live outside
// this service, so each token simply carries a user ID as its subject.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-pipeline/pkg/config"
	pkgjwt "github.com/johnquangdev/meeting-pipeline/pkg/jwt"
)

func main() {
	count := flag.Int("n", 1, "number of users to mint tokens for")
	subject := flag.String("user", "", "mint a single token for this user ID")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	jwtManager := pkgjwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)

	var users []uuid.UUID
	if *subject != "" {
		id, err := uuid.Parse(*subject)
		if err != nil {
			log.Fatalf("Invalid user ID %q: %v", *subject, err)
		}
		users = append(users, id)
	} else {
		for i := 0; i < *count; i++ {
			users = append(users, uuid.New())
		}
	}

	log.Printf("🔑 Minting %d token(s), valid for %s", len(users), jwtManager.GetAccessExpiry())
	for _, id := range users {
		token, err := jwtManager.GenerateAccessToken(id)
		if err != nil {
			log.Fatalf("Failed to generate token for %s: %v", id, err)
		}
		fmt.Printf("%s\t%s\n", id, token)
	}
}
