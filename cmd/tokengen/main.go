// Package main provides a CLI tool for generating bearer tokens for the credvault API.
// Tokens are signed with the dev key unless -key is given and will NOT work in production.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "credvault/internal/jwt_token"
	"credvault/internal/platform/config"
	id "credvault/pkg/domain"
)

type tokenOutput struct {
	Token     string            `json:"token"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]any    `json:"claims"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	fs := flag.NewFlagSet("tokengen", flag.ExitOnError)
	subject := fs.String("subject-id", "", "Subject ID (UUID). Generated if empty.")
	roleFlag := fs.String("role", "candidate", "Role: issuer, candidate or organization")
	ttl := fs.Duration("ttl", config.DefaultTokenTTL, "Token time-to-live")
	key := fs.String("key", config.DevSigningKey, "HS256 signing key")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	role, err := id.ParseRole(*roleFlag)
	exitOnErr(err)

	subjectID := id.NewSubjectID()
	if *subject != "" {
		subjectID, err = id.ParseSubjectID(*subject)
		exitOnErr(err)
	}

	svc := jwttoken.NewJWTService(*key, config.DefaultTokenIssuer, config.DefaultTokenAudience, *ttl)
	token, err := svc.GenerateToken(context.Background(), subjectID, role)
	exitOnErr(err)

	if *jsonOut {
		printJSON(tokenOutput{
			Token:     token,
			ExpiresIn: ttl.String(),
			Claims: map[string]any{
				"sub":  subjectID.String(),
				"role": role.String(),
			},
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
		return
	}

	fmt.Println("Bearer Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Subject:    %s\n", subjectID)
	fmt.Printf("Role:       %s\n", role)
	fmt.Printf("Expires In: %s\n", ttl.Round(time.Second))
	fmt.Println()
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/certificates")
}

func exitOnErr(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	exitOnErr(enc.Encode(v))
}
