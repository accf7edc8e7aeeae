// Package main serves an in-memory directory admin API for local runs of
// the sync server. Point DIRECTORY_URL at it.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"memberlink/internal/identity/directory"
	"memberlink/internal/identity/directory/directorytest"
	"memberlink/internal/identity/migrate"
	"memberlink/internal/identity/models"
	"memberlink/internal/platform/httpserver"
	"memberlink/internal/platform/logger"
)

func main() {
	addr := flag.String("addr", ":9999", "Listen address")
	key := flag.String("service-key", "dev-service-key", "Service key callers must present")
	seed := flag.String("seed", "", "TOML roster whose members are seeded as confirmed accounts")
	pending := flag.Bool("pending", false, "Seed accounts as unconfirmed invites instead")
	flag.Parse()

	log := logger.New(os.Getenv("LOG_LEVEL"))

	dir := directory.NewInMemory(directory.WithLinkBase("http://localhost" + *addr))
	if *seed != "" {
		entries, err := migrate.FileRoster{Path: *seed}.Load()
		if err != nil {
			log.Error("failed to load seed roster", "error", err)
			os.Exit(1)
		}
		dir.Seed(seedAccounts(entries, !*pending, time.Now().UTC())...)
		log.Info("seeded directory", "accounts", len(entries))
	}

	srv := httpserver.New(*addr, directorytest.NewHandler(dir, *key), 30*time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("mock directory listening", "addr", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func seedAccounts(entries []models.RosterEntry, confirmed bool, now time.Time) []models.AuthAccount {
	out := make([]models.AuthAccount, 0, len(entries))
	for _, e := range entries {
		acc := models.AuthAccount{
			Email:        models.NormalizeEmail(e.Email),
			CreatedAt:    now,
			UserMetadata: map[string]any{models.MetaFullName: e.Name},
		}
		if e.Role != "" {
			acc.AppMetadata = map[string]any{models.MetaRole: e.Role}
		}
		if confirmed {
			acc.ConfirmedAt = &now
		} else {
			acc.InvitedAt = &now
		}
		out = append(out, acc)
	}
	return out
}
