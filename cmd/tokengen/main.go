// Package main provides a CLI tool for generating credentials for the sync
// endpoint in local and test environments.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"memberlink/internal/identity/models"
	"memberlink/internal/identity/principal"
)

const (
	defaultTokenTTL = time.Hour
	defaultAudience = "authenticated"
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in,omitempty"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	sessionCmd := flag.NewFlagSet("session", flag.ExitOnError)
	hashCmd := flag.NewFlagSet("hash-secret", flag.ExitOnError)

	sessionSubject := sessionCmd.String("subject", "", "Account ID. Generated if empty.")
	sessionEmail := sessionCmd.String("email", "admin@example.org", "Email claim")
	sessionRole := sessionCmd.String("role", models.RoleAdmin, "Role placed in app_metadata")
	sessionSecret := sessionCmd.String("secret", os.Getenv("DIRECTORY_JWT_SECRET"), "HS256 signing secret (default $DIRECTORY_JWT_SECRET)")
	sessionTTL := sessionCmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	sessionJSON := sessionCmd.Bool("json", false, "Output as JSON")

	hashSecret := hashCmd.String("secret", "", "Migration secret to hash")
	hashJSON := hashCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "session":
		_ = sessionCmd.Parse(os.Args[2:])
		generateSessionToken(*sessionSubject, *sessionEmail, *sessionRole, *sessionSecret, *sessionTTL, *sessionJSON)
	case "hash-secret":
		_ = hashCmd.Parse(os.Args[2:])
		generateSecretHash(*hashSecret, *hashJSON)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate credentials for the memberlink sync endpoint

Usage:
  tokengen <command> [flags]

Commands:
  session       Sign a directory session token (HS256 JWT)
  hash-secret   Hash a migration secret for MIGRATION_SECRET_HASH

Examples:
  # Admin session token signed with $DIRECTORY_JWT_SECRET
  tokengen session

  # Executive session token for a specific account
  tokengen session -role executive -email exec@example.org -ttl 15m

  # Hash a bootstrap migration secret
  tokengen hash-secret -secret "correct horse battery staple"`)
}

func generateSessionToken(subject, email, role, secret string, ttl time.Duration, asJSON bool) {
	if secret == "" {
		exitf("signing secret is required: pass -secret or set DIRECTORY_JWT_SECRET")
	}
	if subject == "" {
		subject = uuid.NewString()
	}

	token, err := principal.Issue(secret, principal.IssueParams{
		Subject:  subject,
		Email:    email,
		Role:     role,
		Audience: defaultAudience,
		TTL:      ttl,
	}, time.Now())
	if err != nil {
		exitf("failed to sign token: %v", err)
	}

	out := tokenOutput{
		Token:     token,
		Type:      "session",
		ExpiresIn: ttl.String(),
		Claims: map[string]any{
			"sub":          subject,
			"email":        email,
			"app_metadata": map[string]any{models.MetaRole: role},
		},
		Usage: map[string]string{
			"header": "Authorization: Bearer " + token,
		},
	}
	writeOutput(out, asJSON)
}

func generateSecretHash(secret string, asJSON bool) {
	if secret == "" {
		exitf("-secret is required")
	}
	hash, err := principal.HashMigrationSecret(secret)
	if err != nil {
		exitf("failed to hash secret: %v", err)
	}
	writeOutput(tokenOutput{
		Token: hash,
		Type:  "migration_secret_hash",
		Usage: map[string]string{
			"env":    "MIGRATION_SECRET_HASH=" + hash,
			"header": "Authorization: Bearer <secret>",
		},
	}, asJSON)
}

func writeOutput(out tokenOutput, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}
	fmt.Println(out.Token)
	for k, v := range out.Usage {
		fmt.Fprintf(os.Stderr, "%s: %s\n", k, v)
	}
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
