package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-account/pkg/config"
	"github.com/tendant/simple-account/pkg/tokengenerator"
)

func main() {
	secret := flag.String("secret", config.GetEnvOrDefault("JWT_SECRET", "very-secure-jwt-secret"), "Secret key for signing the token (default $JWT_SECRET)")
	issuer := flag.String("issuer", config.GetEnvOrDefault("JWT_ISSUER", "simple-account"), "Issuer of the token (default $JWT_ISSUER)")
	accountID := flag.String("account", "", "Account ID (defaults to a random UUID)")
	username := flag.String("username", "test", "Username claim")
	email := flag.String("email", "test@example.com", "Email claim")
	verified := flag.Bool("verified", false, "email_verified claim")
	expiry := flag.Duration("expiry", config.GetEnvDuration("SESSION_EXPIRY", tokengenerator.DefaultSessionExpiry), "Token expiry duration (e.g., 30m, 1h, 24h)")
	outputFormat := flag.String("format", "compact", "Output format: compact, full, or debug")
	flag.Parse()

	id := uuid.New()
	if *accountID != "" {
		parsed, err := uuid.Parse(*accountID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid account ID: %v\n", err)
			os.Exit(1)
		}
		id = parsed
	}

	gen := tokengenerator.NewJwtTokenGenerator(*secret, *issuer, *expiry)
	tokenStr, expiresAt, err := gen.GenerateToken(tokengenerator.SessionSubject{
		AccountID:     id,
		Username:      *username,
		Email:         *email,
		EmailVerified: *verified,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to generate token: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "compact":
		fmt.Println(tokenStr)
	case "full":
		fmt.Printf("Token: %s\nExpires: %s\n", tokenStr, expiresAt.Format(time.RFC3339))
	case "debug":
		claims, err := gen.ParseToken(tokenStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to parse generated token: %v\n", err)
			os.Exit(1)
		}
		claimsJSON, _ := json.MarshalIndent(claims, "", "  ")
		fmt.Printf("Token: %s\n\n%s\n", tokenStr, claimsJSON)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown output format: %s\n", *outputFormat)
		os.Exit(1)
	}
}
